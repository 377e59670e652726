// Package cache conserve le dernier snapshot connu de chaque job. Il ne sert
// qu'à fournir un affichage initial : le backend reste la seule source de vérité.
package cache

import (
	"context"
	"fmt"
	"time"

	"lecture-sync/internal/config"
	"lecture-sync/pkg/models"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, id models.JobID) (*models.Job, bool, error)
	Set(ctx context.Context, job *models.Job) error
	SetMany(ctx context.Context, jobs []models.Job) error
	Delete(ctx context.Context, id models.JobID) error
}

// New construit le cache décrit par la configuration. Retourne nil pour le type "none".
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(cfg.TTL), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisCache(rdb, cfg.TTL), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
