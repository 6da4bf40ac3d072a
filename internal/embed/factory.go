package embed

import (
	"fmt"
	"time"
)

// Provider identifiers accepted by the factory.
const (
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

// Options selects and configures an embedding provider.
type Options struct {
	Provider   string // openai or static
	Model      string
	Dimensions int
	BaseURL    string
	APIKey     string
	Timeout    time.Duration

	// CacheSize bounds the in-memory cache. CachePath, when set,
	// switches to the persistent cache instead.
	CacheSize int
	CachePath string
}

// New creates an embedder for the configured provider, wrapped with
// caching. Provider selection happens here, at construction time;
// everything downstream sees only the Embedder interface.
func New(opts Options) (Embedder, error) {
	var inner Embedder
	switch opts.Provider {
	case ProviderStatic:
		inner = NewStaticEmbedder()
	case ProviderOpenAI, "":
		inner = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     opts.APIKey,
			BaseURL:    opts.BaseURL,
			Model:      opts.Model,
			Dimensions: opts.Dimensions,
			Timeout:    opts.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", opts.Provider)
	}

	if opts.CachePath != "" {
		return NewPersistentCachedEmbedder(inner, opts.CachePath)
	}
	return NewCachedEmbedder(inner, opts.CacheSize), nil
}
