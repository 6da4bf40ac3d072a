package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/codescope/codescope/internal/chunk"
)

// MemoryStore is an in-memory vector store using exact cosine
// similarity over a linear scan of all stored vectors.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  map[string]*chunk.Chunk
	vectors map[string][]float32
	dims    int // Dimensionality of the first stored vector, 0 if empty
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks:  make(map[string]*chunk.Chunk),
		vectors: make(map[string][]float32),
	}
}

// Add stores a chunk with its embedding.
func (s *MemoryStore) Add(c *chunk.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(c)
}

func (s *MemoryStore) addLocked(c *chunk.Chunk) error {
	if c.Embedding == nil {
		return fmt.Errorf("chunk %s has no embedding", c.ID)
	}
	if s.dims == 0 {
		s.dims = len(c.Embedding)
	} else if len(c.Embedding) != s.dims {
		return ErrDimensionMismatch{Expected: s.dims, Got: len(c.Embedding)}
	}

	s.chunks[c.ID] = c
	s.vectors[c.ID] = c.Embedding
	return nil
}

// AddBatch stores multiple chunks.
func (s *MemoryStore) AddBatch(chunks []*chunk.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if err := s.addLocked(c); err != nil {
			return err
		}
	}
	return nil
}

// Search scores every candidate passing the filters and returns the
// topK in descending score order. Equal scores are ordered by
// ascending chunk ID so results are stable across runs.
func (s *MemoryStore) Search(query []float32, topK int, filters *Filters) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 || topK <= 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
	}
	candidates := make([]scored, 0, len(s.vectors))

	for id, vec := range s.vectors {
		c := s.chunks[id]
		if !filters.Match(c) {
			continue
		}
		candidates = append(candidates, scored{id: id, score: CosineSimilarity(query, vec)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	results := make([]*SearchResult, topK)
	for rank := 0; rank < topK; rank++ {
		results[rank] = &SearchResult{
			Chunk: s.chunks[candidates[rank].id],
			Score: candidates[rank].score,
			Rank:  rank,
		}
	}
	return results, nil
}

// Delete removes a chunk and its vector together.
func (s *MemoryStore) Delete(chunkID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chunks[chunkID]; !ok {
		return false, nil
	}
	delete(s.chunks, chunkID)
	delete(s.vectors, chunkID)
	if len(s.chunks) == 0 {
		s.dims = 0
	}
	return true, nil
}

// Clear removes all chunks.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = make(map[string]*chunk.Chunk)
	s.vectors = make(map[string][]float32)
	s.dims = 0
	return nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Dimensions returns the dimensionality of the stored vectors, or 0
// when the store is empty.
func (s *MemoryStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// GetChunk returns the chunk with the given ID, or nil.
func (s *MemoryStore) GetChunk(chunkID string) *chunk.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[chunkID]
}

// GetChunksByFile returns all chunks belonging to a file, ordered by
// start line.
func (s *MemoryStore) GetChunksByFile(filePath string) []*chunk.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []*chunk.Chunk
	for _, c := range s.chunks {
		if c.FilePath == filePath {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].StartLine < chunks[j].StartLine
	})
	return chunks
}

// snapshot copies the store contents for serialization.
func (s *MemoryStore) snapshot() (map[string]*chunk.Chunk, map[string][]float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make(map[string]*chunk.Chunk, len(s.chunks))
	vectors := make(map[string][]float32, len(s.vectors))
	for id, c := range s.chunks {
		chunks[id] = c
	}
	for id, v := range s.vectors {
		vectors[id] = v
	}
	return chunks, vectors
}
