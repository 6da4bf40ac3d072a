package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEmbedderDeterministic(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "func handleRequest(w http.ResponseWriter)")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "func handleRequest(w http.ResponseWriter)")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestStaticEmbedderDimensions(t *testing.T) {
	e := NewStaticEmbedder()
	assert.Equal(t, StaticDimensions, e.Dimensions())

	vec, err := e.Embed(context.Background(), "some code")
	require.NoError(t, err)
	assert.Len(t, vec, StaticDimensions)
}

func TestStaticEmbedderUnitNorm(t *testing.T) {
	e := NewStaticEmbedder()

	vec, err := e.Embed(context.Background(), "normalize this vector please")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 0.001)
}

func TestStaticEmbedderEmptyText(t *testing.T) {
	e := NewStaticEmbedder()

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, vec, StaticDimensions)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestStaticEmbedderDistinguishesTexts(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "database connection pooling")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "render html template")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStaticEmbedderBatchOrder(t *testing.T) {
	e := NewStaticEmbedder()
	ctx := context.Background()

	texts := []string{"alpha", "beta", "gamma"}
	vectors, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i])
	}
}

func TestStaticEmbedderClosed(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "after close")
	assert.Error(t, err)
}

func TestSplitCodeToken(t *testing.T) {
	assert.Equal(t, []string{"handle", "Request"}, splitCodeToken("handleRequest"))
	assert.Equal(t, []string{"snake", "case", "name"}, splitCodeToken("snake_case_name"))
	assert.Equal(t, []string{"simple"}, splitCodeToken("simple"))
}
