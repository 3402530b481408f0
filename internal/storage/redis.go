package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisNamespace = "wasteops"

type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Redis struct {
	store cmdable
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects and pings; the returned client must be closed by the caller.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, *redis.Client, error) {
	if opts.Addr == "" {
		return nil, nil, errors.New("redis address is required")
	}
	raw := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{store: raw}, raw, nil
}

func newRedisWith(store cmdable) *Redis {
	return &Redis{store: store}
}

func (r *Redis) key(key string) string {
	return redisNamespace + ":" + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if r.store == nil {
		return nil, ErrUnavailable
	}
	value, err := r.store.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if r.store == nil {
		return ErrUnavailable
	}
	if err := r.store.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.store == nil {
		return ErrUnavailable
	}
	if err := r.store.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
