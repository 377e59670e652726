package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"lecture-sync/internal/validation"
	"lecture-sync/pkg/storage"
)

type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage crée une nouvelle instance de storage MinIO
func NewMinioStorage(cfg *storage.StorageConfig) (storage.Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	// minio-go attend "host:port" sans schéma
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &minioStorage{
		client: client,
		bucket: cfg.Bucket,
	}

	if err := s.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return s, nil
}

func (s *minioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("bucket %s does not exist and cannot be created: %w", s.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}

func (s *minioStorage) Upload(ctx context.Context, path string, data io.Reader) error {
	key := strings.TrimPrefix(path, "/")

	contentType := validation.MediaTypeFromExtension(key)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Taille inconnue : minio-go bascule en upload multipart
	_, err := s.client.PutObject(ctx, s.bucket, key, data, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}

	return nil
}

func (s *minioStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	key := strings.TrimPrefix(path, "/")

	// GetObject est paresseux : un Stat préalable remonte l'absence de l'objet
	if _, err := s.Stat(ctx, key); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s from bucket %s: %w", key, s.bucket, err)
	}
	return obj, nil
}

func (s *minioStorage) Stat(ctx context.Context, path string) (*storage.ObjectInfo, error) {
	key := strings.TrimPrefix(path, "/")

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("object %s: %w", key, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	contentType := info.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = validation.MediaTypeFromExtension(key)
	}

	return &storage.ObjectInfo{
		Path:        key,
		Size:        info.Size,
		ContentType: contentType,
		ModTime:     info.LastModified,
	}, nil
}

func (s *minioStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, strings.TrimPrefix(path, "/"), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence %s: %w", path, err)
	}
	return true, nil
}

func (s *minioStorage) Delete(ctx context.Context, path string) error {
	key := strings.TrimPrefix(path, "/")

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

func (s *minioStorage) List(ctx context.Context, prefix string) ([]string, error) {
	cleanPrefix := strings.TrimPrefix(prefix, "/")

	var objects []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    cleanPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", cleanPrefix, obj.Err)
		}
		objects = append(objects, obj.Key)
	}
	return objects, nil
}
