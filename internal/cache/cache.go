// Package cache implements a Redis cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
)

type Cache interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
	GetJSON(ctx context.Context, key string, value any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	HGetJSON(ctx context.Context, key, field string, value any) (bool, error)
	HSetJSON(ctx context.Context, key, field string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type RedisCache struct {
	conn *redis.Client
	ttl  time.Duration
}

// NewRedisCache connects to the Redis server at addr. Keys written through the
// cache expire after ttl; a zero ttl keeps them forever.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisCache{conn: client, ttl: ttl}, nil
}

// Set stores a value in the cache.
func (rc *RedisCache) Set(ctx context.Context, key string, value any) error {
	return rc.conn.Set(ctx, key, value, rc.ttl).Err()
}

// Get retrieves a value from the cache. A missing key yields an empty string.
func (rc *RedisCache) Get(ctx context.Context, key string) (any, error) {
	value, err := rc.conn.Get(ctx, key).Result()
	if err == nil || errors.Is(err, redis.Nil) {
		return value, nil
	}

	return nil, err
}

// GetJSON retrieves a JSON string and unmarshals it into the given value. It
// reports false when the key does not exist.
func (rc *RedisCache) GetJSON(ctx context.Context, key string, value any) (bool, error) {
	s, err := rc.conn.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(s), value); err != nil {
		return false, fmt.Errorf("unmarshaling cached JSON for %q: %w", key, err)
	}
	return true, nil
}

// SetJSON stores a struct as a JSON string.
func (rc *RedisCache) SetJSON(ctx context.Context, key string, value any) error {
	t, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling JSON for cache key %q: %w", key, err)
	}
	return rc.Set(ctx, key, string(t))
}

// HGetJSON unmarshals one field of a hash into the given value. It reports
// false when either the key or the field does not exist.
func (rc *RedisCache) HGetJSON(ctx context.Context, key, field string, value any) (bool, error) {
	s, err := rc.conn.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(s), value); err != nil {
		return false, fmt.Errorf("unmarshaling cached JSON for %q/%q: %w", key, field, err)
	}
	return true, nil
}

// HSetJSON stores a struct as a JSON string in one field of a hash. The
// expiry applies to the whole hash and is refreshed on every write.
func (rc *RedisCache) HSetJSON(ctx context.Context, key, field string, value any) error {
	t, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling JSON for cache key %q/%q: %w", key, field, err)
	}

	_, err = rc.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, string(t))
		if rc.ttl > 0 {
			pipe.Expire(ctx, key, rc.ttl)
		}
		return nil
	})
	return err
}

// Delete removes keys from the cache.
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.conn.Del(ctx, keys...).Err()
}

// Close closes the connection to Redis.
func (rc *RedisCache) Close() error {
	return rc.conn.Close()
}
