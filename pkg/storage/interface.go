package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound est retourné (enveloppé) quand l'objet demandé n'existe pas
var ErrNotFound = errors.New("object not found")

// ObjectInfo décrit un fichier présent dans le storage
type ObjectInfo struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	ModTime     time.Time `json:"mod_time"`
}

// Storage définit l'interface des sources de fichiers média
type Storage interface {
	// Upload un fichier vers le storage
	Upload(ctx context.Context, path string, data io.Reader) error

	// Open ouvre un fichier en lecture ; l'appelant le ferme
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat retourne taille, type et date de modification
	Stat(ctx context.Context, path string) (*ObjectInfo, error)

	Exists(ctx context.Context, path string) (bool, error)

	Delete(ctx context.Context, path string) error

	// List liste les fichiers avec un préfixe donné
	List(ctx context.Context, prefix string) ([]string, error)
}

// StorageConfig contient la configuration du storage
type StorageConfig struct {
	Type      string // "filesystem", "garage" ou "minio"
	BasePath  string // Pour filesystem
	Endpoint  string // Pour S3/Garage/MinIO
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool // MinIO uniquement
}
