// Package embed provides vector embedding providers: a remote
// batch provider, a local deterministic provider, and caching
// wrappers around either.
package embed

import (
	"context"
	"time"
)

// Common embedding constants.
const (
	// DefaultModel is the default remote embedding model.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimensions is the embedding dimension for DefaultModel.
	DefaultDimensions = 1536

	// DefaultTimeout is the per-request timeout for remote embedding
	// calls. There is no retry policy; a failed call propagates so the
	// indexer can skip the file.
	DefaultTimeout = 60 * time.Second

	// StaticDimensions is the embedding dimension for the local
	// hash-projection embedder.
	StaticDimensions = 256
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result
	// has the same length and order as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}
