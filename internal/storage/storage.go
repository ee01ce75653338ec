package storage

import (
	"context"
	"errors"
	"fmt"

	"gopherai-insight/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore keeps uploaded dataset files. Paths are relative to the bucket.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
	Ping(ctx context.Context) error
}

const (
	BackendLocal = "local"
	BackendMinIO = "minio"
)

func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalStore(cfg.LocalDir, cfg.Bucket)
	case BackendMinIO:
		return NewMinIOStore(ctx, MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
