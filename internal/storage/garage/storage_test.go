// internal/storage/garage/storage_test.go
package garage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"lecture-sync/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func integrationConfig() *storage.StorageConfig {
	return &storage.StorageConfig{
		Type:      "garage",
		Endpoint:  envOr("TEST_GARAGE_ENDPOINT", "http://localhost:9000"),
		AccessKey: envOr("TEST_GARAGE_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("TEST_GARAGE_SECRET_KEY", "minioadmin"),
		Bucket:    envOr("TEST_GARAGE_BUCKET", "lectures-test"),
		Region:    envOr("TEST_GARAGE_REGION", "us-east-1"),
	}
}

func TestGarageSourcesIntegration(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION_TESTS") != "" {
		t.Skip("Skipping integration tests")
	}

	store, err := NewGarageStorage(integrationConfig())
	if err != nil {
		t.Skipf("Cannot connect to test Garage/MinIO server: %v", err)
	}
	ctx := context.Background()

	t.Cleanup(func() {
		keys, _ := store.List(ctx, "test/")
		for _, key := range keys {
			_ = store.Delete(ctx, key)
		}
	})

	t.Run("staged recording can be read back", func(t *testing.T) {
		content := "ID3 fake audio for garage"
		path := "/test/week1/intro.mp3"

		require.NoError(t, store.Upload(ctx, path, strings.NewReader(content)))

		info, err := store.Stat(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "test/week1/intro.mp3", info.Path)
		assert.Equal(t, int64(len(content)), info.Size)
		assert.Equal(t, "audio/mpeg", info.ContentType)

		rc, err := store.Open(ctx, path)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	})

	t.Run("list by course prefix", func(t *testing.T) {
		for _, key := range []string{
			"test/courses/algo/week1.mp3",
			"test/courses/algo/week2.mp3",
			"test/courses/db/week1.wav",
		} {
			require.NoError(t, store.Upload(ctx, key, strings.NewReader(key)))
		}

		all, err := store.List(ctx, "test/courses/")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		algo, err := store.List(ctx, "test/courses/algo/")
		require.NoError(t, err)
		assert.Len(t, algo, 2)
		for _, key := range algo {
			assert.True(t, strings.HasPrefix(key, "test/courses/algo/"))
		}
	})

	t.Run("delete removes the source", func(t *testing.T) {
		path := "test/to-delete.mp3"
		require.NoError(t, store.Upload(ctx, path, strings.NewReader("x")))
		require.NoError(t, store.Delete(ctx, path))

		exists, err := store.Exists(ctx, path)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("missing source maps to ErrNotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "test/missing.mp3")
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		_, err = store.Stat(ctx, "test/missing.mp3")
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		exists, err := store.Exists(ctx, "test/missing.mp3")
		assert.NoError(t, err)
		assert.False(t, exists)

		assert.NoError(t, store.Delete(ctx, "test/missing.mp3"))
	})
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"week1.mp3", "audio/mpeg"},
		{"week1.wav", "audio/wav"},
		{"week1.m4a", "audio/x-m4a"},
		{"week1.mp4", "video/mp4"},
		{"notes.unknown", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contentTypeFor(tt.key), tt.key)
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "uploads/a.mp3", objectKey("/uploads/a.mp3"))
	assert.Equal(t, "uploads/a.mp3", objectKey("uploads/a.mp3"))
}

func TestNewGarageStorageRequiresSettings(t *testing.T) {
	full := storage.StorageConfig{
		Type:      "garage",
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "lectures",
	}

	tests := []struct {
		name   string
		mutate func(*storage.StorageConfig)
		want   string
	}{
		{"endpoint", func(c *storage.StorageConfig) { c.Endpoint = "" }, "garage endpoint is required"},
		{"access key", func(c *storage.StorageConfig) { c.AccessKey = "" }, "garage access key is required"},
		{"secret key", func(c *storage.StorageConfig) { c.SecretKey = "" }, "garage secret key is required"},
		{"bucket", func(c *storage.StorageConfig) { c.Bucket = "" }, "garage bucket is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			_, err := NewGarageStorage(&cfg)
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)
		})
	}
}
