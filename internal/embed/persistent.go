package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// PersistentCachedEmbedder wraps an Embedder with a content-addressed
// cache that is serialized to disk after every mutation and reloaded
// on construction. A corrupt or unreadable cache file degrades to an
// empty cache; it never blocks construction. The caching policy is
// the same as CachedEmbedder; only durability is added.
type PersistentCachedEmbedder struct {
	inner Embedder
	path  string
	lock  *flock.Flock

	mu    sync.Mutex
	cache map[string][]float32
}

var _ Embedder = (*PersistentCachedEmbedder)(nil)

// NewPersistentCachedEmbedder creates a persistently cached embedder
// backed by the JSON file at path.
func NewPersistentCachedEmbedder(inner Embedder, path string) (*PersistentCachedEmbedder, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	e := &PersistentCachedEmbedder{
		inner: inner,
		path:  path,
		lock:  flock.New(path + ".lock"),
		cache: make(map[string][]float32),
	}
	e.load()
	return e, nil
}

// load reads the cache file. Any failure leaves the cache empty.
func (e *PersistentCachedEmbedder) load() {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return
	}

	var cache map[string][]float32
	if err := json.Unmarshal(data, &cache); err != nil {
		slog.Warn("embedding cache unreadable, starting empty",
			slog.String("path", e.path),
			slog.String("error", err.Error()))
		return
	}
	e.cache = cache
}

// save writes the cache atomically: temp file, then rename. Callers
// hold e.mu.
func (e *PersistentCachedEmbedder) save() error {
	if err := e.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock cache file: %w", err)
	}
	defer func() { _ = e.lock.Unlock() }()

	data, err := json.Marshal(e.cache)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return os.Rename(tmp, e.path)
}

// Embed returns the cached embedding if present, otherwise computes,
// caches, and persists it.
func (e *PersistentCachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text, e.inner.ModelName())

	e.mu.Lock()
	if vec, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return vec, nil
	}
	e.mu.Unlock()

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[key] = vec
	err = e.save()
	e.mu.Unlock()
	if err != nil {
		slog.Warn("failed to persist embedding cache", slog.String("error", err.Error()))
	}

	return vec, nil
}

// EmbedBatch embeds only the cache misses and persists once after the
// batch. Output order matches input order.
func (e *PersistentCachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	missIndices := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	e.mu.Lock()
	for i, text := range texts {
		if vec, ok := e.cache[cacheKey(text, e.inner.ModelName())]; ok {
			results[i] = vec
		} else {
			missIndices = append(missIndices, i)
			missTexts = append(missTexts, text)
		}
	}
	e.mu.Unlock()

	if len(missTexts) == 0 {
		return results, nil
	}

	vectors, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	for j, idx := range missIndices {
		results[idx] = vectors[j]
		e.cache[cacheKey(texts[idx], e.inner.ModelName())] = vectors[j]
	}
	err = e.save()
	e.mu.Unlock()
	if err != nil {
		slog.Warn("failed to persist embedding cache", slog.String("error", err.Error()))
	}

	return results, nil
}

// Dimensions returns the embedding dimension (passthrough).
func (e *PersistentCachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// ModelName returns the model identifier (passthrough).
func (e *PersistentCachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}

// Close closes the inner embedder.
func (e *PersistentCachedEmbedder) Close() error {
	return e.inner.Close()
}

// CacheLen reports the number of cached embeddings.
func (e *PersistentCachedEmbedder) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}
