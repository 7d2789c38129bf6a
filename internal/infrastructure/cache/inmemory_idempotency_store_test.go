package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("second claim loses", func(t *testing.T) {
		first, err := store.MarkProcessed(ctx, "issue-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := store.MarkProcessed(ctx, "issue-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, second)

		processed, err := store.IsProcessed(ctx, "issue-1")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "issue-2", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		again, err := store.MarkProcessed(ctx, "issue-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, again)
	})

	t.Run("released claim can be taken again", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "issue-3", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "issue-3"))

		again, err := store.MarkProcessed(ctx, "issue-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, again)
	})
}

func TestInMemoryIdempotencyStore_Responses(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, found, err := store.GetResponse(ctx, "return-1")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = store.MarkProcessed(ctx, "return-1", time.Hour)
	require.NoError(t, err)
	_, found, err = store.GetResponse(ctx, "return-1")
	require.NoError(t, err)
	assert.False(t, found, "claimed but not yet answered")

	payload := []byte(`{"return_no":"MR-1"}`)
	require.NoError(t, store.SaveResponse(ctx, "return-1", payload, time.Hour))
	payload[0] = 'x'

	got, found, err := store.GetResponse(ctx, "return-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"return_no":"MR-1"}`, string(got))

	claimed, err := store.MarkProcessed(ctx, "return-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestInMemoryIdempotencyStore_Sweeper(t *testing.T) {
	store := newInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "short", time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "long", time.Hour)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return store.Size() == 1 }, time.Second, 5*time.Millisecond)
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(context.Background(), "same-key", time.Hour); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
