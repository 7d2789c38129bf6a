package cache

import (
	"context"
	"testing"

	"github.com/hongquyngo/vti-production-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	idem := config.IdempotencyConfig{KeyPrefix: "test:"}
	// nothing listens on port 1
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("in-memory when redis is not configured", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(config.RedisConfig{}, idem).CreateStore(context.Background())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("falls back when redis is unreachable", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(unreachable, idem).CreateStore(context.Background())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("errors when fallback is disabled", func(t *testing.T) {
		_, err := NewIdempotencyStoreFactory(unreachable, idem, WithInMemoryFallback(false)).CreateStore(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}
