package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"lunargen/core"
	"lunargen/export"
)

// Redis stores meshes in their packed binary form
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*Redis)

// WithTTL sets the expiration for cached meshes.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached meshes.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// NewRedis creates a Redis mesh cache connected to address.
func NewRedis(address, password string, db int, opts ...RedisOption) *Redis {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(rdb, opts...)
}

// NewRedisFromClient creates a Redis mesh cache from an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "lunargen:mesh:",
		ttl:    time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) (*core.Mesh, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	mesh, err := export.UnmarshalBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cached mesh %q: %w", key, err)
	}
	return mesh, nil
}

func (r *Redis) Put(ctx context.Context, key string, mesh *core.Mesh) error {
	data, err := export.MarshalBinary(mesh)
	if err != nil {
		return fmt.Errorf("failed to encode mesh: %w", err)
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Ping checks the connection
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
