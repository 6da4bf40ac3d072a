// Package store holds (chunk, vector) pairs and answers similarity
// queries with optional metadata filters.
package store

import (
	"fmt"
	"math"

	"github.com/codescope/codescope/internal/chunk"
)

// SearchResult is one ranked similarity hit. Produced per query, never
// persisted.
type SearchResult struct {
	Chunk *chunk.Chunk
	Score float64 // Cosine similarity
	Rank  int     // 0-based position in the result list
}

// Filters restrict which chunks are candidates for ranking. All active
// predicates must pass; a chunk failing any of them is excluded
// entirely, not down-ranked. Zero values deactivate a predicate.
type Filters struct {
	// FilePathPrefix matches chunks whose file path starts with it.
	FilePathPrefix string

	// Language matches the chunk language exactly.
	Language string

	// Kind matches the chunk kind exactly.
	Kind chunk.Kind
}

// Match reports whether the chunk passes every active predicate.
func (f *Filters) Match(c *chunk.Chunk) bool {
	if f == nil {
		return true
	}
	if f.FilePathPrefix != "" && !hasPrefix(c.FilePath, f.FilePathPrefix) {
		return false
	}
	if f.Language != "" && c.Language != f.Language {
		return false
	}
	if f.Kind != "" && c.Kind != f.Kind {
		return false
	}
	return true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// VectorStore persists chunks with their embeddings and answers
// nearest-neighbor queries by exact cosine similarity.
type VectorStore interface {
	// Add stores a chunk. The chunk must carry an embedding, and its
	// dimensionality must match the store's.
	Add(c *chunk.Chunk) error

	// AddBatch stores multiple chunks.
	AddBatch(chunks []*chunk.Chunk) error

	// Search returns up to topK results in strictly descending score
	// order; ties are broken by ascending chunk ID. Filters, when
	// non-nil, are applied before scoring.
	Search(query []float32, topK int, filters *Filters) ([]*SearchResult, error)

	// Delete removes a chunk and its vector. Returns whether the
	// chunk existed. A deleted chunk never appears in a search issued
	// after Delete returns.
	Delete(chunkID string) (bool, error)

	// Clear removes all chunks.
	Clear() error

	// Count returns the number of stored chunks.
	Count() int

	// Dimensions returns the dimensionality of the stored vectors,
	// or 0 when the store is empty.
	Dimensions() int

	// GetChunk returns the chunk with the given ID, or nil.
	GetChunk(chunkID string) *chunk.Chunk

	// GetChunksByFile returns all chunks for a file path.
	GetChunksByFile(filePath string) []*chunk.Chunk
}

// ErrDimensionMismatch indicates a vector whose dimensionality differs
// from the store's. Mixing dimensionalities is a checked error, never
// silent corruption.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// CosineSimilarity computes the normalized dot product of two vectors.
// A zero-norm vector scores 0; this never divides by zero and never
// returns an error.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
