package reviews

import (
	"context"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository exposes review persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reviews repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ExistsForOrder reports whether the buyer already reviewed the order.
func (r *Repository) ExistsForOrder(ctx context.Context, orderID, buyerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("order_id = ? AND buyer_id = ?", orderID, buyerID).
		Count(&count).Error
	return count > 0, err
}

type ratingAggregate struct {
	Avg decimal.Decimal `gorm:"column:avg"`
	Cnt int             `gorm:"column:cnt"`
}

// ProductAggregate folds every review for the product into avg/count.
func (r *Repository) ProductAggregate(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int, error) {
	var agg ratingAggregate
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return agg.Avg, agg.Cnt, nil
}

// SellerAggregate folds every review across the seller's products.
func (r *Repository) SellerAggregate(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, int, error) {
	var agg ratingAggregate
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt").
		Where("seller_id = ?", sellerID).
		Scan(&agg).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return agg.Avg, agg.Cnt, nil
}

type reviewsListQuery struct {
	ProductID  uuid.UUID
	Pagination pagination.Params
}

// ListByProduct pages through a product's reviews newest first with the
// author preloaded.
func (r *Repository) ListByProduct(ctx context.Context, query reviewsListQuery) ([]models.Review, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Preload("Buyer").
		Where("product_id = ?", query.ProductID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Review
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}
