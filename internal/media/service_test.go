package media

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmuriuki/agrimarket-backend/pkg/config"
	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeSigner struct {
	bucket string
}

func (f *fakeSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s/%s?sig=upload", bucket, object), nil
}

func (f *fakeSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s/%s?sig=read", bucket, object), nil
}

func (f *fakeSigner) DefaultBucket() string {
	return f.bucket
}

func setupMediaTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS media (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  gcs_key TEXT NOT NULL UNIQUE,
  mime_type TEXT NOT NULL,
  size_bytes INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func buildMediaService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Signer: &fakeSigner{bucket: "agrimarket-media"},
		Config: config.GCSConfig{
			BucketName:        "agrimarket-media",
			UploadURLExpiry:   15 * time.Minute,
			DownloadURLExpiry: time.Hour,
		},
	})
	require.NoError(t, err)
	return svc
}

func TestPresignUploadTracksPendingRow(t *testing.T) {
	conn := setupMediaTestDB(t)
	svc := buildMediaService(t, conn)
	ctx := context.Background()
	ownerID := uuid.New()

	result, err := svc.PresignUpload(ctx, ownerID, PresignUploadInput{
		Kind:        enums.MediaKindProduct,
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Contains(t, result.UploadURL, "sig=upload")
	assert.True(t, strings.HasPrefix(result.GCSKey, "product/"+ownerID.String()+"/"))
	assert.True(t, strings.HasSuffix(result.GCSKey, ".jpg"))

	var row models.Media
	require.NoError(t, conn.First(&row, "id = ?", result.MediaID).Error)
	assert.Equal(t, enums.MediaStatusPending, row.Status)
	assert.Equal(t, ownerID, row.OwnerID)
}

func TestPresignUploadRejectsBadInput(t *testing.T) {
	conn := setupMediaTestDB(t)
	svc := buildMediaService(t, conn)
	ctx := context.Background()

	_, err := svc.PresignUpload(ctx, uuid.New(), PresignUploadInput{
		Kind:        enums.MediaKindProduct,
		ContentType: "application/pdf",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.PresignUpload(ctx, uuid.New(), PresignUploadInput{
		Kind:        enums.MediaKind("banner"),
		ContentType: "image/png",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestConfirmUploadFlipsToReady(t *testing.T) {
	conn := setupMediaTestDB(t)
	svc := buildMediaService(t, conn)
	ctx := context.Background()
	ownerID := uuid.New()

	presigned, err := svc.PresignUpload(ctx, ownerID, PresignUploadInput{
		Kind:        enums.MediaKindReview,
		ContentType: "image/png",
	})
	require.NoError(t, err)

	dto, err := svc.ConfirmUpload(ctx, ownerID, ConfirmUploadInput{
		MediaID:   presigned.MediaID,
		SizeBytes: 2048,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.MediaStatusReady, dto.Status)
	assert.Equal(t, int64(2048), dto.SizeBytes)
	assert.Contains(t, dto.DownloadURL, "sig=read")

	// Confirming twice stays ready and keeps the recorded size.
	dto, err = svc.ConfirmUpload(ctx, ownerID, ConfirmUploadInput{
		MediaID:   presigned.MediaID,
		SizeBytes: 9999,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2048), dto.SizeBytes)
}

func TestConfirmUploadOwnershipAndMissing(t *testing.T) {
	conn := setupMediaTestDB(t)
	svc := buildMediaService(t, conn)
	ctx := context.Background()
	ownerID := uuid.New()

	presigned, err := svc.PresignUpload(ctx, ownerID, PresignUploadInput{
		Kind:        enums.MediaKindAvatar,
		ContentType: "image/webp",
	})
	require.NoError(t, err)

	_, err = svc.ConfirmUpload(ctx, uuid.New(), ConfirmUploadInput{MediaID: presigned.MediaID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = svc.ConfirmUpload(ctx, ownerID, ConfirmUploadInput{MediaID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
