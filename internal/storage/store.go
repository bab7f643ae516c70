package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nadil1995/notehive2/internal/models"

	"github.com/google/uuid"
)

// Store abstracts the file backend. The server uses the S3 implementation
// when credentials are configured and falls back to local disk otherwise.
type Store interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// Delete removes a stored object. Used to roll back uploads the quota
	// accounting rejected.
	Delete(ctx context.Context, key string) error
	// SignedURL returns a time-limited download URL for a stored object.
	SignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ObjectKey builds the stored key for an upload: owner id, timestamp and a
// random component, then the original filename.
func ObjectKey(userID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%d-%s-%s", userID, time.Now().UnixMilli(), uuid.New(), filename)
}

var allowedMimes = map[string]string{
	"application/pdf":    models.FileTypePDF,
	"application/msword": models.FileTypeWord,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": models.FileTypeWord,
	"application/vnd.ms-excel": models.FileTypeExcel,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": models.FileTypeExcel,
	"image/jpeg":      models.FileTypeImage,
	"image/png":       models.FileTypeImage,
	"image/gif":       models.FileTypeImage,
	"image/webp":      models.FileTypeImage,
	"audio/mpeg":      models.FileTypeAudio,
	"audio/wav":       models.FileTypeAudio,
	"audio/ogg":       models.FileTypeAudio,
	"video/mp4":       models.FileTypeVideo,
	"video/mpeg":      models.FileTypeVideo,
	"video/quicktime": models.FileTypeVideo,
	"text/plain":      models.FileTypeOther,
	"text/csv":        models.FileTypeOther,
}

// AllowedMime reports whether the content type is accepted for upload.
func AllowedMime(contentType string) bool {
	_, ok := allowedMimes[contentType]
	return ok
}

// FileTypeFor maps a mime type onto the attachment type enum.
func FileTypeFor(contentType string) string {
	if t, ok := allowedMimes[contentType]; ok {
		return t
	}
	return models.FileTypeOther
}
