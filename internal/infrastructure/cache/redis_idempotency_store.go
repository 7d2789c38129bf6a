package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongquyngo/vti-production-sub002/internal/domain/shared"
	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const responseSuffix = ":response"

// RedisIdempotencyStore shares claimed keys and recorded responses across
// service instances
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewRedisIdempotencyStore wraps an existing client
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "prod:idem:"
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed claims key with SET NX so only one instance wins
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

// IsProcessed reports whether key is claimed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Release deletes the claim and any recorded response
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	k := s.keyPrefix + key
	if err := s.client.Del(ctx, k, k+responseSuffix).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// SaveResponse records the response and extends the claim in one pipeline
func (s *RedisIdempotencyStore) SaveResponse(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	k := s.keyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, k+responseSuffix, payload, ttl)
		pipe.Set(ctx, k, "1", ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save idempotent response: %w", err)
	}
	return nil
}

// GetResponse returns the recorded response, if any
func (s *RedisIdempotencyStore) GetResponse(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, s.keyPrefix+key+responseSuffix).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load idempotent response: %w", err)
	}
	return payload, true, nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var (
	_ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
	_ shared.ResponseStore    = (*RedisIdempotencyStore)(nil)
)
