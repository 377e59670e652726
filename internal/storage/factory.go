package storage

import (
	"fmt"

	"lecture-sync/internal/storage/filesystem"
	"lecture-sync/internal/storage/garage"
	"lecture-sync/internal/storage/minio"
	"lecture-sync/pkg/storage"
)

// NewStorage crée une nouvelle instance de storage basée sur la configuration
func NewStorage(config *storage.StorageConfig) (storage.Storage, error) {
	switch config.Type {
	case "filesystem":
		return filesystem.NewFilesystemStorage(config.BasePath)
	case "garage":
		return garage.NewGarageStorage(config)
	case "minio":
		return minio.NewMinioStorage(config)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.Type)
	}
}
