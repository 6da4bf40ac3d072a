package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/codescope/codescope/internal/chunk"
)

// Backing file names inside the storage directory.
const (
	chunksFileName  = "chunks.json"
	vectorsFileName = "vectors.json"
)

// chunkRecord is the serialized form of a chunk, as consumed by
// downstream tooling. Embeddings live in the vectors file.
type chunkRecord struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	FilePath   string `json:"file_path"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	ChunkKind  string `json:"chunk_kind"`
	Language   string `json:"language,omitempty"`
	SymbolName string `json:"symbol_name,omitempty"`
}

// FileStore is a durable vector store. It mirrors an in-memory store
// to two serialized files, one for chunk metadata and one for
// vectors, rewritten after every mutation and reloaded on
// construction. Missing or unreadable files start the store empty.
type FileStore struct {
	dir  string
	lock *flock.Flock
	mem  *MemoryStore
}

var _ VectorStore = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at dir, loading any
// previously persisted state.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".store.lock")),
		mem:  NewMemoryStore(),
	}
	s.load()
	return s, nil
}

// load reads both backing files. Any failure starts the store empty.
func (s *FileStore) load() {
	chunksData, err := os.ReadFile(filepath.Join(s.dir, chunksFileName))
	if err != nil {
		return
	}
	vectorsData, err := os.ReadFile(filepath.Join(s.dir, vectorsFileName))
	if err != nil {
		return
	}

	var records map[string]chunkRecord
	var vectors map[string][]float32
	if err := json.Unmarshal(chunksData, &records); err != nil {
		slog.Warn("chunk index unreadable, starting empty",
			slog.String("dir", s.dir), slog.String("error", err.Error()))
		return
	}
	if err := json.Unmarshal(vectorsData, &vectors); err != nil {
		slog.Warn("vector index unreadable, starting empty",
			slog.String("dir", s.dir), slog.String("error", err.Error()))
		return
	}

	for id, rec := range records {
		vec, ok := vectors[id]
		if !ok {
			continue
		}
		c := &chunk.Chunk{
			ID:         id,
			Content:    rec.Content,
			FilePath:   rec.FilePath,
			StartLine:  rec.StartLine,
			EndLine:    rec.EndLine,
			Kind:       chunk.Kind(rec.ChunkKind),
			Language:   rec.Language,
			SymbolName: rec.SymbolName,
			Embedding:  vec,
		}
		if err := s.mem.Add(c); err != nil {
			slog.Warn("skipping persisted chunk",
				slog.String("id", id), slog.String("error", err.Error()))
		}
	}
}

// save rewrites both backing files atomically.
func (s *FileStore) save() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock store: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	chunks, vectors := s.mem.snapshot()

	records := make(map[string]chunkRecord, len(chunks))
	for id, c := range chunks {
		records[id] = chunkRecord{
			ID:         c.ID,
			Content:    c.Content,
			FilePath:   c.FilePath,
			StartLine:  c.StartLine,
			EndLine:    c.EndLine,
			ChunkKind:  string(c.Kind),
			Language:   c.Language,
			SymbolName: c.SymbolName,
		}
	}

	if err := writeJSON(filepath.Join(s.dir, chunksFileName), records); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.dir, vectorsFileName), vectors)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp, path)
}

// Add stores a chunk and persists.
func (s *FileStore) Add(c *chunk.Chunk) error {
	if err := s.mem.Add(c); err != nil {
		return err
	}
	return s.save()
}

// AddBatch stores multiple chunks and persists once.
func (s *FileStore) AddBatch(chunks []*chunk.Chunk) error {
	if err := s.mem.AddBatch(chunks); err != nil {
		return err
	}
	return s.save()
}

// Search delegates to the in-memory state.
func (s *FileStore) Search(query []float32, topK int, filters *Filters) ([]*SearchResult, error) {
	return s.mem.Search(query, topK, filters)
}

// Delete removes a chunk and persists when something was removed.
func (s *FileStore) Delete(chunkID string) (bool, error) {
	found, err := s.mem.Delete(chunkID)
	if err != nil || !found {
		return found, err
	}
	return true, s.save()
}

// Clear removes all chunks and persists the empty state.
func (s *FileStore) Clear() error {
	if err := s.mem.Clear(); err != nil {
		return err
	}
	return s.save()
}

// Count returns the number of stored chunks.
func (s *FileStore) Count() int {
	return s.mem.Count()
}

// Dimensions returns the dimensionality of the stored vectors, or 0
// when the store is empty.
func (s *FileStore) Dimensions() int {
	return s.mem.Dimensions()
}

// GetChunk returns the chunk with the given ID, or nil.
func (s *FileStore) GetChunk(chunkID string) *chunk.Chunk {
	return s.mem.GetChunk(chunkID)
}

// GetChunksByFile returns all chunks belonging to a file.
func (s *FileStore) GetChunksByFile(filePath string) []*chunk.Chunk {
	return s.mem.GetChunksByFile(filePath)
}
