// Package garage lit les fichiers sources des uploads depuis un bucket
// S3-compatible (Garage, MinIO en mode S3, AWS).
package garage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lecture-sync/internal/validation"
	"lecture-sync/pkg/storage"
)

type sourceBucket struct {
	client *s3.Client
	bucket string
}

// NewGarageStorage se connecte au bucket et le crée s'il n'existe pas
func NewGarageStorage(cfg *storage.StorageConfig) (storage.Storage, error) {
	for name, value := range map[string]string{
		"endpoint":   cfg.Endpoint,
		"access key": cfg.AccessKey,
		"secret key": cfg.SecretKey,
		"bucket":     cfg.Bucket,
	} {
		if value == "" {
			return nil, fmt.Errorf("garage %s is required", name)
		}
	}

	ctx := context.Background()
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	b := &sourceBucket{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Garage n'accepte que le style path
			o.UsePathStyle = true
		}),
		bucket: cfg.Bucket,
	}

	if err := b.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *sourceBucket) ensureBucket(ctx context.Context) error {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err == nil {
		return nil
	}
	if _, err := b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return fmt.Errorf("bucket %s does not exist and cannot be created: %w", b.bucket, err)
	}
	return nil
}

// objectKey retire le "/" initial : les clés S3 sont relatives au bucket
func objectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

func isMissing(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

func (b *sourceBucket) Upload(ctx context.Context, path string, data io.Reader) error {
	key := objectKey(path)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentTypeFor(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, b.bucket, err)
	}
	return nil
}

func (b *sourceBucket) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	key := objectKey(path)
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	switch {
	case isMissing(err):
		return nil, fmt.Errorf("object %s: %w", key, storage.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("failed to open %s in bucket %s: %w", key, b.bucket, err)
	}
	return out.Body, nil
}

func (b *sourceBucket) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	return b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
}

func (b *sourceBucket) Stat(ctx context.Context, path string) (*storage.ObjectInfo, error) {
	key := objectKey(path)
	out, err := b.head(ctx, key)
	switch {
	case isMissing(err):
		return nil, fmt.Errorf("object %s: %w", key, storage.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", key, err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(key)
	}
	return &storage.ObjectInfo{
		Path:        key,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: contentType,
		ModTime:     aws.ToTime(out.LastModified),
	}, nil
}

func (b *sourceBucket) Exists(ctx context.Context, path string) (bool, error) {
	key := objectKey(path)
	_, err := b.head(ctx, key)
	switch {
	case isMissing(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return true, nil
}

func (b *sourceBucket) Delete(ctx context.Context, path string) error {
	key := objectKey(path)
	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, b.bucket, err)
	}
	return nil
}

func (b *sourceBucket) List(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(objectKey(prefix)),
	}

	keys := []string{}
	pages := s3.NewListObjectsV2Paginator(b.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// contentTypeFor déduit le type média de l'extension de la clé
func contentTypeFor(key string) string {
	if mediaType := validation.MediaTypeFromExtension(key); mediaType != "" {
		return mediaType
	}
	return "application/octet-stream"
}
