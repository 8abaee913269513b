package localcache

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/angelmondragon/jewelry-admin/pkg/redis"
)

// KV is the subset of pkg/redis.Client the backend needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

// RedisBackend stores each cache key as a plain string without expiry.
type RedisBackend struct {
	kv KV
}

func NewRedisBackend(kv KV) *RedisBackend {
	return &RedisBackend{kv: kv}
}

func (r *RedisBackend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.kv.Get(ctx, r.kv.CacheKey(key))
	if errors.Is(err, pkgredis.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (r *RedisBackend) Write(ctx context.Context, key string, value []byte) error {
	return r.kv.Set(ctx, r.kv.CacheKey(key), string(value), 0)
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.kv.Del(ctx, r.kv.CacheKey(key))
}
