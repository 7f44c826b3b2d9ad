package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmuriuki/agrimarket-backend/pkg/config"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// allowedMimeTypes maps upload content types to object name extensions.
var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type urlSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DefaultBucket() string
}

// PresignUploadInput is the payload for requesting a direct upload slot.
type PresignUploadInput struct {
	Kind        enums.MediaKind `json:"kind" validate:"required"`
	ContentType string          `json:"content_type" validate:"required"`
}

// PresignUploadResult carries the signed PUT URL and the tracked media row.
type PresignUploadResult struct {
	MediaID   uuid.UUID `json:"media_id"`
	UploadURL string    `json:"upload_url"`
	GCSKey    string    `json:"gcs_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmUploadInput marks a pending upload as landed.
type ConfirmUploadInput struct {
	MediaID   uuid.UUID `json:"media_id" validate:"required"`
	SizeBytes int64     `json:"size_bytes" validate:"gte=0"`
}

// MediaDTO is the transport shape for a media row.
type MediaDTO struct {
	ID          uuid.UUID         `json:"id"`
	Kind        enums.MediaKind   `json:"kind"`
	GCSKey      string            `json:"gcs_key"`
	MimeType    string            `json:"mime_type"`
	SizeBytes   int64             `json:"size_bytes"`
	Status      enums.MediaStatus `json:"status"`
	DownloadURL string            `json:"download_url,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Service defines the media upload operations.
type Service interface {
	PresignUpload(ctx context.Context, ownerID uuid.UUID, input PresignUploadInput) (*PresignUploadResult, error)
	ConfirmUpload(ctx context.Context, ownerID uuid.UUID, input ConfirmUploadInput) (*MediaDTO, error)
	Get(ctx context.Context, ownerID, mediaID uuid.UUID) (*MediaDTO, error)
}

// ServiceParams bundles the media service dependencies.
type ServiceParams struct {
	Repo   *Repository
	Signer urlSigner
	Config config.GCSConfig
}

type service struct {
	repo   *Repository
	signer urlSigner
	cfg    config.GCSConfig
}

// NewService builds the media service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media repository required")
	}
	if params.Signer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "url signer required")
	}
	return &service{repo: params.Repo, signer: params.Signer, cfg: params.Config}, nil
}

// PresignUpload records a pending media row and returns a signed PUT URL the
// client uploads to directly.
func (s *service) PresignUpload(ctx context.Context, ownerID uuid.UUID, input PresignUploadInput) (*PresignUploadResult, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	ext, ok := allowedMimeTypes[input.ContentType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported content type")
	}

	id := uuid.New()
	key := fmt.Sprintf("%s/%s/%s%s", input.Kind, ownerID, id, ext)

	expiry := s.cfg.UploadURLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	uploadURL, err := s.signer.SignedURL(s.signer.DefaultBucket(), key, input.ContentType, expiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	row := &models.Media{
		ID:       id,
		OwnerID:  ownerID,
		Kind:     input.Kind,
		GCSKey:   key,
		MimeType: input.ContentType,
		Status:   enums.MediaStatusPending,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert media")
	}

	return &PresignUploadResult{
		MediaID:   id,
		UploadURL: uploadURL,
		GCSKey:    key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// ConfirmUpload flips the pending row to ready once the client finished the
// PUT.
func (s *service) ConfirmUpload(ctx context.Context, ownerID uuid.UUID, input ConfirmUploadInput) (*MediaDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner identity missing")
	}
	if input.MediaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media id required")
	}

	row, err := s.loadOwned(ctx, ownerID, input.MediaID)
	if err != nil {
		return nil, err
	}
	if row.Status == enums.MediaStatusPending {
		if _, err := s.repo.MarkReady(ctx, row.ID, input.SizeBytes); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark media ready")
		}
		row.Status = enums.MediaStatusReady
		row.SizeBytes = input.SizeBytes
	}
	return s.toDTO(row), nil
}

// Get returns the media row with a signed read URL when the object is ready.
func (s *service) Get(ctx context.Context, ownerID, mediaID uuid.UUID) (*MediaDTO, error) {
	if ownerID == uuid.Nil || mediaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner and media ids required")
	}
	row, err := s.loadOwned(ctx, ownerID, mediaID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(row), nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, mediaID uuid.UUID) (*models.Media, error) {
	row, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	if row.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "media does not belong to user")
	}
	return row, nil
}

func (s *service) toDTO(row *models.Media) *MediaDTO {
	dto := &MediaDTO{
		ID:        row.ID,
		Kind:      row.Kind,
		GCSKey:    row.GCSKey,
		MimeType:  row.MimeType,
		SizeBytes: row.SizeBytes,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
	}
	if row.Status == enums.MediaStatusReady {
		expiry := s.cfg.DownloadURLExpiry
		if expiry <= 0 {
			expiry = time.Hour
		}
		if url, err := s.signer.SignedReadURL(s.signer.DefaultBucket(), row.GCSKey, expiry); err == nil {
			dto.DownloadURL = url
		}
	}
	return dto
}
