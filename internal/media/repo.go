package media

import (
	"context"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes media persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the media row.
func (r *Repository) Create(ctx context.Context, media *models.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

// FindByID loads a media row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// MarkReady flips the row to ready and records the final object size.
func (r *Repository) MarkReady(ctx context.Context, id uuid.UUID, sizeBytes int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("id = ? AND status = ?", id, enums.MediaStatusPending).
		UpdateColumns(map[string]any{
			"status":     enums.MediaStatusReady,
			"size_bytes": sizeBytes,
		})
	return result.RowsAffected, result.Error
}
