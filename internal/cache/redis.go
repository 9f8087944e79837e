package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/koustreak/pgmeta/internal/errs"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// RedisCache implements Cache on Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedis connects using cfg and pings the server.
func NewRedis(ctx context.Context, cfg *Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "connect to redis at "+cfg.Addr, err)
	}
	return NewRedisWithClient(client, cfg), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, cfg *Config) *RedisCache {
	return &RedisCache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

// Get returns the stored result for key.
func (r *RedisCache) Get(ctx context.Context, key string) (*typegen.Result, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapError(err, "cache get")
	}

	var res typegen.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		// A corrupt entry behaves as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return &res, true, nil
}

// Set stores res under key for the configured TTL. A zero TTL keeps the
// entry until evicted.
func (r *RedisCache) Set(ctx context.Context, key string, res *typegen.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "encode cache entry", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return mapError(err, "cache set")
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
