package storage

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-cart/pkg/redis"
)

type redisBackend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(parts ...string) string
	Ping(ctx context.Context) error
}

// Redis stores each key under the client's cart namespace with a sliding TTL.
type Redis struct {
	client redisBackend
	ttl    time.Duration
}

func NewRedis(client redisBackend, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.GetBytes(ctx, r.client.CartKey(key))
	if errors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.CartKey(key), value, r.ttl)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
