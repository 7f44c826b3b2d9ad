package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
)

// Media tracks an object behind a presigned GCS upload.
type Media struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID         `gorm:"column:owner_id;type:uuid;not null;index"`
	Kind      enums.MediaKind   `gorm:"column:kind;type:media_kind;not null"`
	GCSKey    string            `gorm:"column:gcs_key;not null;uniqueIndex"`
	MimeType  string            `gorm:"column:mime_type;not null"`
	SizeBytes int64             `gorm:"column:size_bytes;not null;default:0"`
	Status    enums.MediaStatus `gorm:"column:status;type:media_status;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
