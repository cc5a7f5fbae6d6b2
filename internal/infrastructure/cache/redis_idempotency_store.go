package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore implements IdempotencyStore using Redis. Suitable
// when several instances share idempotency state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: "order:idempotency:",
	}, nil
}

// Remember stores the reference under the key unless the key is taken.
// SETNX makes the claim atomic; on a lost race the winner's reference is
// fetched and returned.
func (s *RedisIdempotencyStore) Remember(ctx context.Context, key, ref string, ttl time.Duration) (string, bool, error) {
	fullKey := s.keyPrefix + key

	stored, err := s.client.SetNX(ctx, fullKey, ref, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to store idempotency key: %w", err)
	}
	if stored {
		return ref, true, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return existing, false, nil
}

// Lookup returns the reference stored under the key, if any
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	ref, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	return ref, true, nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
