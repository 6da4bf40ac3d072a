package embed

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder counts how often the inner provider is actually hit.
type mockEmbedder struct {
	embedCalls atomic.Int64
	batchCalls atomic.Int64
	textsSeen  atomic.Int64
	dims       int
	failNext   atomic.Bool
}

var _ Embedder = (*mockEmbedder)(nil)

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: 4}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	vec := make([]float32, m.dims)
	for i := range vec {
		vec[i] = float32(len(text) + i)
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.failNext.Swap(false) {
		return nil, fmt.Errorf("mock failure")
	}
	m.embedCalls.Add(1)
	m.textsSeen.Add(1)
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.failNext.Swap(false) {
		return nil, fmt.Errorf("mock failure")
	}
	m.batchCalls.Add(1)
	m.textsSeen.Add(int64(len(texts)))
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = m.vectorFor(t)
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-model" }
func (m *mockEmbedder) Close() error      { return nil }

func TestCachedEmbedderHit(t *testing.T) {
	mock := newMockEmbedder()
	cached := NewCachedEmbedder(mock, 100)
	ctx := context.Background()

	first, err := cached.Embed(ctx, "hello world")
	require.NoError(t, err)

	second, err := cached.Embed(ctx, "hello world")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), mock.embedCalls.Load())
}

func TestCachedEmbedderBatchMixedHits(t *testing.T) {
	mock := newMockEmbedder()
	cached := NewCachedEmbedder(mock, 100)
	ctx := context.Background()

	// Warm the cache with one of the three texts.
	_, err := cached.Embed(ctx, "bb")
	require.NoError(t, err)

	vectors, err := cached.EmbedBatch(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Only the two misses reached the provider.
	assert.Equal(t, int64(3), mock.textsSeen.Load())

	// Output order matches input order.
	assert.Equal(t, mock.vectorFor("a"), vectors[0])
	assert.Equal(t, mock.vectorFor("bb"), vectors[1])
	assert.Equal(t, mock.vectorFor("ccc"), vectors[2])
}

func TestCachedEmbedderAllHitsSkipProvider(t *testing.T) {
	mock := newMockEmbedder()
	cached := NewCachedEmbedder(mock, 100)
	ctx := context.Background()

	texts := []string{"x", "y"}
	_, err := cached.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Equal(t, int64(1), mock.batchCalls.Load())

	_, err = cached.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mock.batchCalls.Load())
}

func TestCachedEmbedderErrorNotCached(t *testing.T) {
	mock := newMockEmbedder()
	cached := NewCachedEmbedder(mock, 100)
	ctx := context.Background()

	mock.failNext.Store(true)
	_, err := cached.Embed(ctx, "flaky")
	require.Error(t, err)

	// The failure must not poison the cache.
	vec, err := cached.Embed(ctx, "flaky")
	require.NoError(t, err)
	assert.Equal(t, mock.vectorFor("flaky"), vec)
}

func TestCachedEmbedderPassthrough(t *testing.T) {
	mock := newMockEmbedder()
	cached := NewCachedEmbedder(mock, 100)

	assert.Equal(t, mock.Dimensions(), cached.Dimensions())
	assert.Equal(t, mock.ModelName(), cached.ModelName())
	assert.Same(t, mock, cached.Inner())
}
