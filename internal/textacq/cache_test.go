package textacq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	source := []byte("%PDF-1.4 fake statement bytes")

	_, ok := cache.Get(source)
	assert.False(t, ok, "empty cache should miss")

	require.NoError(t, cache.Put(source, "07/25 2,301.24 DEPOSIT"))

	text, ok := cache.Get(source)
	require.True(t, ok)
	assert.Equal(t, "07/25 2,301.24 DEPOSIT", text)

	// Different content misses.
	_, ok = cache.Get([]byte("other bytes"))
	assert.False(t, ok)
}

func TestCache_ConcurrentPut(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	source := []byte("shared statement")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cache.Put(source, "identical ocr output"))
		}()
	}
	wg.Wait()

	text, ok := cache.Get(source)
	require.True(t, ok)
	assert.Equal(t, "identical ocr output", text)
}
