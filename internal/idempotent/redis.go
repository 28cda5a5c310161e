package idempotent

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository shares the processed-key window across instances
// through redis SETNX with a TTL, so the window ages out on its own.
type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = "drover:idempotent:"
	}
	return &RedisRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRepository) Add(ctx context.Context, key string) (bool, error) {
	added, err := r.client.SetNX(ctx, r.prefix+key, time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	return added, nil
}

func (r *RedisRepository) Contains(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis Exists failed: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRepository) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis Del failed: %w", err)
	}
	return nil
}
