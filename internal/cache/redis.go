package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lecture-sync/pkg/models"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "lecture-sync:job:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: defaultKeyPrefix,
	}
}

func (r *RedisCache) key(id models.JobID) string {
	return r.prefix + id.String()
}

func (r *RedisCache) Get(ctx context.Context, id models.JobID) (*models.Job, bool, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read job %s from redis: %w", id, err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached job %s: %w", id, err)
	}
	return &job, true, nil
}

func (r *RedisCache) Set(ctx context.Context, job *models.Job) error {
	if job == nil || job.ID == "" {
		return nil
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	if err := r.client.Set(ctx, r.key(job.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write job %s to redis: %w", job.ID, err)
	}
	return nil
}

func (r *RedisCache) SetMany(ctx context.Context, jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for i := range jobs {
		if jobs[i].ID == "" {
			continue
		}
		data, err := json.Marshal(&jobs[i])
		if err != nil {
			return fmt.Errorf("failed to encode job %s: %w", jobs[i].ID, err)
		}
		pipe.Set(ctx, r.key(jobs[i].ID), data, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write %d jobs to redis: %w", len(jobs), err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, id models.JobID) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete job %s from redis: %w", id, err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
