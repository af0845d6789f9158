package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Get(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "w1", "busy"))
	v, ok, err := store.Get(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "busy", v)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("w%d", i%5)
			_ = store.Set(ctx, key, "available")
			_, _, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		_, ok, _ := store.Get(ctx, fmt.Sprintf("w%d", i))
		assert.True(t, ok)
	}
}
