package articles

import (
	"context"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes article persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an articles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the article row.
func (r *Repository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// FindByID loads an article by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// FindBySlug loads a published article with its author.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("slug = ? AND published = ?", slug, true).
		First(&article).
		Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// SlugExists reports whether any article already uses the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// Save persists the mutated article row.
func (r *Repository) Save(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Save(article).Error
}

type articlesListQuery struct {
	Category   *enums.ArticleCategory
	Pagination pagination.Params
}

// List pages through published articles newest first.
func (r *Repository) List(ctx context.Context, query articlesListQuery) ([]models.Article, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Preload("Author").
		Where("published = ?", true)
	if query.Category != nil {
		qb = qb.Where("category = ?", *query.Category)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Article
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
