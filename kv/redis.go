package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore is a Store backed by Redis. It holds one pooled client for its
// lifetime; no denylist state is cached between calls, so every Get reads
// the current value from Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a RedisStore from a Redis address (host:port).
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv: redis GET %q: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv: redis SET %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
