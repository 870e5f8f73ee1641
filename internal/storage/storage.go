// Package storage keeps uploaded file contents outside the database.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/custor/portal-api/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage writes and removes blobs addressed by key.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// New picks S3 when a bucket is configured and the local directory otherwise.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Storage, error) {
	if cfg.Bucket != "" {
		s3Storage, err := NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using S3 storage", zap.String("bucket", cfg.Bucket), zap.String("endpoint", cfg.Endpoint))
		return s3Storage, nil
	}

	local, err := NewLocalStorage(cfg.LocalDir)
	if err != nil {
		return nil, err
	}
	logger.Info("using local storage", zap.String("dir", cfg.LocalDir))
	return local, nil
}

// NewKey builds a collision-free key for a project file.
// Format: projects/{projectID}/{year}/{month}/{uuid}{ext}
func NewKey(projectID uint64, fileName string) string {
	now := time.Now().UTC()
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	return fmt.Sprintf("projects/%d/%s/%s/%s%s",
		projectID, now.Format("2006"), now.Format("01"), uuid.New().String(), ext)
}
