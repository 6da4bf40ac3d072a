// Package config loads and validates codescope configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the per-project config file name.
const DefaultFileName = ".codescope.yaml"

// Config is the complete codescope configuration.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking" json:"chunking"`
	Files     FilesConfig     `yaml:"files" json:"files"`
	Embedding EmbeddingConfig `yaml:"embedding" json:"embedding"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// ChunkingConfig controls how files are split into chunks. Sizes are
// in characters.
type ChunkingConfig struct {
	MaxChunkSize      int  `yaml:"max_chunk_size" json:"max_chunk_size"`
	MinChunkSize      int  `yaml:"min_chunk_size" json:"min_chunk_size"`
	Overlap           int  `yaml:"overlap" json:"overlap"`
	RespectBoundaries bool `yaml:"respect_boundaries" json:"respect_boundaries"`
}

// FilesConfig controls file discovery.
type FilesConfig struct {
	// Extensions is the include-list of file extensions to index.
	Extensions []string `yaml:"extensions" json:"extensions"`

	// IgnorePatterns are path substrings to skip.
	IgnorePatterns []string `yaml:"ignore_patterns" json:"ignore_patterns"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider" json:"provider"` // openai or static
	Model      string        `yaml:"model" json:"model"`
	Dimensions int           `yaml:"dimensions" json:"dimensions"`
	BatchSize  int           `yaml:"batch_size" json:"batch_size"`
	BaseURL    string        `yaml:"base_url" json:"base_url"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	CacheSize  int           `yaml:"cache_size" json:"cache_size"`
	CachePath  string        `yaml:"cache_path" json:"cache_path"`
}

// StorageConfig configures index persistence. An empty Path keeps the
// index in memory only.
type StorageConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			MaxChunkSize:      1500,
			MinChunkSize:      100,
			Overlap:           50,
			RespectBoundaries: true,
		},
		Files: FilesConfig{
			Extensions: []string{
				".py", ".js", ".ts", ".tsx", ".jsx",
				".go", ".rs", ".java", ".rb", ".php", ".md",
			},
			IgnorePatterns: []string{
				"node_modules", ".git", "__pycache__", ".venv", "venv",
				"dist", "build", ".next", "target",
				".pytest_cache", ".mypy_cache",
			},
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
			BatchSize:  50,
			Timeout:    60 * time.Second,
			CacheSize:  10000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when
// the file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProject loads the config for a project root, looking for
// .codescope.yaml inside it.
func LoadProject(root string) (*Config, error) {
	return Load(filepath.Join(root, DefaultFileName))
}

// applyEnvOverrides applies CODESCOPE_* environment variables, which
// take priority over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODESCOPE_EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("CODESCOPE_EMBEDDING_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv("CODESCOPE_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Embedding.Dimensions = n
		}
	}
	if v := os.Getenv("CODESCOPE_EMBEDDING_BASE_URL"); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv("CODESCOPE_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CODESCOPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Chunking.MaxChunkSize <= 0 {
		return fmt.Errorf("chunking.max_chunk_size must be positive, got %d", c.Chunking.MaxChunkSize)
	}
	if c.Chunking.MinChunkSize < 0 {
		return fmt.Errorf("chunking.min_chunk_size must not be negative, got %d", c.Chunking.MinChunkSize)
	}
	if c.Chunking.MinChunkSize > c.Chunking.MaxChunkSize {
		return fmt.Errorf("chunking.min_chunk_size (%d) exceeds max_chunk_size (%d)",
			c.Chunking.MinChunkSize, c.Chunking.MaxChunkSize)
	}
	if c.Chunking.Overlap >= c.Chunking.MaxChunkSize {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than max_chunk_size (%d)",
			c.Chunking.Overlap, c.Chunking.MaxChunkSize)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	return nil
}
