// Package index orchestrates chunking, embedding, and vector storage
// with content-addressed change detection.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/codescope/codescope/internal/chunk"
	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/embed"
	apperrors "github.com/codescope/codescope/internal/errors"
	"github.com/codescope/codescope/internal/scanner"
	"github.com/codescope/codescope/internal/store"
)

// ProgressFunc receives a fraction-complete value in (0, 1] after each
// batch of files during directory indexing.
type ProgressFunc func(fraction float64)

// Indexer composes the chunker, the embedding provider, and the
// vector store. One Indexer instance is driven by a single logical
// caller at a time; concurrent IndexDirectory calls on the same
// instance must be serialized by the caller.
type Indexer struct {
	cfg      *config.Config
	chunker  *chunk.Chunker
	embedder embed.Embedder
	storage  store.VectorStore

	mu           sync.Mutex
	fingerprints map[string]string // file path -> content hash
	stats        Stats
}

// New creates an indexer. If storage is nil, a store is constructed
// from the config: file-backed when storage.path is set, in-memory
// otherwise. A persisted store whose vectors do not match the
// embedder's dimensionality is rejected.
func New(cfg *config.Config, embedder embed.Embedder, storage store.VectorStore) (*Indexer, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if storage == nil {
		if cfg.Storage.Path != "" {
			fs, err := store.NewFileStore(cfg.Storage.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to open vector store: %w", err)
			}
			storage = fs
		} else {
			storage = store.NewMemoryStore()
		}
	}

	if dims := storage.Dimensions(); dims != 0 && dims != embedder.Dimensions() {
		return nil, store.ErrDimensionMismatch{Expected: dims, Got: embedder.Dimensions()}
	}

	return &Indexer{
		cfg: cfg,
		chunker: chunk.New(chunk.Options{
			MaxChunkSize:      cfg.Chunking.MaxChunkSize,
			MinChunkSize:      cfg.Chunking.MinChunkSize,
			Overlap:           cfg.Chunking.Overlap,
			RespectBoundaries: cfg.Chunking.RespectBoundaries,
		}),
		embedder:     embedder,
		storage:      storage,
		fingerprints: make(map[string]string),
	}, nil
}

// fingerprint hashes file bytes for change detection.
func fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:16]
}

// IndexFile chunks, embeds, and stores a single file. If content is
// nil the file is read from disk; a missing file indexes nothing.
// Unless force is set, a file whose content hash matches the recorded
// fingerprint is skipped entirely. The fingerprint is updated only
// after the chunks have been stored, so a failed file is retried on
// the next run.
func (ix *Indexer) IndexFile(ctx context.Context, path string, content []byte, force bool) ([]*chunk.Chunk, error) {
	if content == nil {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, apperrors.Skippable(apperrors.CategoryIO, "failed to read "+path, err)
		}
		content = data
	}

	hash := fingerprint(content)
	if !force {
		ix.mu.Lock()
		unchanged := ix.fingerprints[path] == hash
		ix.mu.Unlock()
		if unchanged {
			return nil, nil
		}
	}

	chunks, err := ix.chunker.ChunkFile(path, content)
	if err != nil {
		return nil, apperrors.Skippable(apperrors.CategoryChunking, "failed to chunk "+path, err)
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, apperrors.New(apperrors.CategoryEmbedding, "failed to embed "+path, err)
		}
		for i, c := range chunks {
			c.Embedding = vectors[i]
		}
	}

	// Drop chunks from the previous version of this file that no
	// longer exist. This runs even when the new content produces no
	// chunks at all, so a file emptied of code sheds its old chunks.
	// Unchanged chunks keep their content-addressed IDs and are simply
	// overwritten below.
	newIDs := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		newIDs[c.ID] = true
	}
	for _, old := range ix.storage.GetChunksByFile(path) {
		if !newIDs[old.ID] {
			if _, err := ix.storage.Delete(old.ID); err != nil {
				return nil, fmt.Errorf("failed to remove stale chunk: %w", err)
			}
		}
	}

	if len(chunks) > 0 {
		if err := ix.storage.AddBatch(chunks); err != nil {
			return nil, apperrors.New(apperrors.CategoryStorage, "failed to store "+path, err)
		}
	}

	ix.mu.Lock()
	ix.fingerprints[path] = hash
	ix.stats.TotalChunks += len(chunks)
	for _, c := range chunks {
		ix.stats.TotalCharacters += len(c.Content)
		lang := c.Language
		if lang == "" {
			lang = "unknown"
		}
		if ix.stats.Languages == nil {
			ix.stats.Languages = make(map[string]int)
		}
		ix.stats.Languages[lang]++
	}
	ix.mu.Unlock()

	return chunks, nil
}

// IndexDirectory discovers all matching files under root up front,
// then indexes them in fixed-size batches. A single file failing to
// chunk, embed, or store is skipped; it never aborts the remaining
// batches. The progress callback, when non-nil, receives a
// fraction-complete value after each batch.
func (ix *Indexer) IndexDirectory(ctx context.Context, root string, force bool, progress ProgressFunc) (*Stats, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	start := time.Now()

	files, err := scanner.Discover(root, scanner.Options{
		Extensions:     ix.cfg.Files.Extensions,
		IgnorePatterns: ix.cfg.Files.IgnorePatterns,
	})
	if err != nil {
		return nil, err
	}

	ix.mu.Lock()
	ix.stats.TotalFiles += len(files)
	ix.mu.Unlock()

	batchSize := ix.cfg.Embedding.BatchSize
	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}

		for _, path := range files[i:end] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if _, err := ix.IndexFile(ctx, path, nil, force); err != nil {
				slog.Warn("skipping file",
					slog.String("path", path),
					slog.Bool("skippable", apperrors.IsSkippable(err)),
					slog.String("error", err.Error()))
			}
		}

		if progress != nil {
			progress(float64(end) / float64(len(files)))
		}
	}

	ix.mu.Lock()
	ix.stats.LastDuration = time.Since(start)
	ix.stats.LastUpdated = time.Now().UTC()
	ix.mu.Unlock()

	stats := ix.Stats()
	return &stats, nil
}

// Search embeds the query and runs a filtered similarity search.
// This is the only entry point external collaborators call.
func (ix *Indexer) Search(ctx context.Context, query string, topK int, filePathFilter, languageFilter string) ([]*store.SearchResult, error) {
	vec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var filters *store.Filters
	if filePathFilter != "" || languageFilter != "" {
		filters = &store.Filters{
			FilePathPrefix: filePathFilter,
			Language:       languageFilter,
		}
	}

	return ix.storage.Search(vec, topK, filters)
}

// RemoveFile deletes every chunk belonging to a file and forgets its
// fingerprint. Returns the number of chunks removed.
func (ix *Indexer) RemoveFile(path string) (int, error) {
	chunks := ix.storage.GetChunksByFile(path)
	for _, c := range chunks {
		if _, err := ix.storage.Delete(c.ID); err != nil {
			return 0, fmt.Errorf("failed to delete chunk %s: %w", c.ID, err)
		}
	}

	ix.mu.Lock()
	delete(ix.fingerprints, path)
	ix.mu.Unlock()

	return len(chunks), nil
}

// Clear resets the vector store, the fingerprint table, and the
// statistics together.
func (ix *Indexer) Clear() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.storage.Clear(); err != nil {
		return err
	}
	ix.fingerprints = make(map[string]string)
	ix.stats = Stats{}
	return nil
}

// Stats returns a copy of the current statistics. TotalChunks reflects
// the live store count.
func (ix *Indexer) Stats() Stats {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.stats.TotalChunks = ix.storage.Count()

	out := ix.stats
	out.Languages = make(map[string]int, len(ix.stats.Languages))
	for k, v := range ix.stats.Languages {
		out.Languages[k] = v
	}
	return out
}

// Store exposes the underlying vector store to the search facade.
func (ix *Indexer) Store() store.VectorStore {
	return ix.storage
}

// Config returns the indexer configuration.
func (ix *Indexer) Config() *config.Config {
	return ix.cfg
}
