package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmuriuki/agrimarket-backend/internal/notifications"
	"github.com/dmuriuki/agrimarket-backend/internal/orders"
	"github.com/dmuriuki/agrimarket-backend/internal/products"
	"github.com/dmuriuki/agrimarket-backend/internal/users"
	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/metrics"
	"github.com/dmuriuki/agrimarket-backend/pkg/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const aggregateScale = 2

type txRunner interface {
	WithTxRetry(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the review operations.
type Service interface {
	Create(ctx context.Context, buyerID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	ListByProduct(ctx context.Context, input ListByProductInput) (*ReviewListResult, error)
}

// ServiceParams bundles the review service dependencies.
type ServiceParams struct {
	Repo          *Repository
	Orders        *orders.Repository
	Products      *products.Repository
	Users         *users.Repository
	Notifications notifications.Repository
	Tx            txRunner
	Outbox        outboxPublisher
	Metrics       *metrics.MarketplaceMetrics
}

type service struct {
	repo          *Repository
	orders        *orders.Repository
	products      *products.Repository
	users         *users.Repository
	notifications notifications.Repository
	tx            txRunner
	outbox        outboxPublisher
	metrics       *metrics.MarketplaceMetrics
}

// NewService builds the review service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reviews repository required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{
		repo:          params.Repo,
		orders:        params.Orders,
		products:      params.Products,
		users:         params.Users,
		notifications: params.Notifications,
		tx:            params.Tx,
		outbox:        params.Outbox,
		metrics:       params.Metrics,
	}, nil
}

// Create inserts the review and recomputes the product and seller aggregates
// from scratch inside one retried transaction.
func (s *service) Create(ctx context.Context, buyerID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.OrderID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order and product ids required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		OrderID:   input.OrderID,
		BuyerID:   buyerID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		ImageURL:  input.ImageURL,
	}

	err := s.tx.WithTxRetry(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.WithTx(tx).FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "review not allowed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.BuyerID != buyerID || order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeValidation, "review not allowed")
		}
		ordered := false
		for _, item := range order.Items {
			if item.ProductID == input.ProductID {
				ordered = true
				break
			}
		}
		if !ordered {
			return pkgerrors.New(pkgerrors.CodeValidation, "review not allowed")
		}
		review.SellerID = order.SellerID

		txRepo := s.repo.WithTx(tx)
		exists, err := txRepo.ExistsForOrder(ctx, input.OrderID, buyerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "duplicate review")
		}

		if err := txRepo.Create(ctx, review); err != nil {
			// The unique index is the backstop for races past the read above.
			if db.IsUniqueViolation(err, "idx_reviews_order_buyer") {
				return pkgerrors.New(pkgerrors.CodeConflict, "duplicate review")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert review")
		}

		if err := s.writeAggregates(ctx, tx, txRepo, review); err != nil {
			return err
		}

		notification := &models.Notification{
			ID:      uuid.New(),
			UserID:  review.SellerID,
			Type:    enums.NotificationTypeReview,
			Title:   "New review received",
			Message: fmt.Sprintf("A buyer rated your product %d out of 5", review.Rating),
			RefID:   &review.ID,
		}
		if err := s.notifications.WithTx(tx).Create(ctx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewCreated,
			AggregateType: enums.AggregateReview,
			AggregateID:   review.ID,
			Actor:         &outbox.ActorRef{UserID: buyerID, Role: enums.UserRoleBuyer},
			Data: map[string]any{
				"review_id":  review.ID,
				"product_id": review.ProductID,
				"seller_id":  review.SellerID,
				"rating":     review.Rating,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	s.metrics.IncReviewCreated()
	return NewReviewDTO(review), nil
}

// writeAggregates recomputes both rating folds with a full scan so the stored
// aggregates always match the review rows that just committed.
func (s *service) writeAggregates(ctx context.Context, tx *gorm.DB, txRepo *Repository, review *models.Review) error {
	productAvg, productCount, err := txRepo.ProductAggregate(ctx, review.ProductID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate product rating")
	}
	if err := s.products.WithTx(tx).UpdateRatingAggregate(ctx, review.ProductID, productAvg.Round(aggregateScale), productCount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write product rating")
	}

	sellerAvg, sellerCount, err := txRepo.SellerAggregate(ctx, review.SellerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate seller rating")
	}
	if err := s.users.WithTx(tx).UpdateRatingAggregate(ctx, review.SellerID, sellerAvg.Round(aggregateScale), sellerCount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write seller rating")
	}
	return nil
}

// ListByProduct pages through a product's reviews, newest first.
func (s *service) ListByProduct(ctx context.Context, input ListByProductInput) (*ReviewListResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	rows, next, err := s.repo.ListByProduct(ctx, reviewsListQuery{
		ProductID:  input.ProductID,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list reviews")
	}

	dtos := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewReviewDTO(&rows[i]))
	}
	return &ReviewListResult{Reviews: dtos, NextCursor: next}, nil
}
