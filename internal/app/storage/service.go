/*
Package storage provides the blob backends that hold uploaded file bytes.

The default backend is a flat local directory served by the HTTP layer, which
keeps a LAN install self-contained; an S3-compatible backend is available for
deployments that already run object storage.
*/
package storage

import (
	"context"
	"fmt"

	"github.com/KYoiRyi/coLAN/internal/configs"
)

// BlobStore is the byte-storage contract the File Intake writes through.
type BlobStore interface {
	// Put stores the blob under the given key.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Delete removes the blob with the given key.
	Delete(ctx context.Context, key string) error

	// URL returns the address clients fetch the blob from.
	URL(key string) string
}

// NewBlobStore is the factory for BlobStore, selecting the implementation
// from the configured backend.
func NewBlobStore(cfg *configs.AppConfig) (BlobStore, error) {
	switch cfg.StorageBackend {
	case configs.StorageBackendLocal:
		return newLocalStore(cfg.UploadDir)
	case configs.StorageBackendS3:
		return newS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
