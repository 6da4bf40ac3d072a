package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/embed"
	"github.com/codescope/codescope/internal/index"
)

func newTestSearch(t *testing.T, files map[string]string) (*SemanticSearch, map[string]string) {
	t.Helper()

	cfg := config.Default()
	cfg.Chunking.MinChunkSize = 5
	cfg.Embedding.Provider = "static"
	cfg.Files.Extensions = []string{".py"}

	ix, err := index.New(cfg, embed.NewStaticEmbedder(), nil)
	require.NoError(t, err)

	dir := t.TempDir()
	paths := make(map[string]string, len(files))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths[name] = path
	}

	_, err = ix.IndexDirectory(context.Background(), dir, false, nil)
	require.NoError(t, err)

	return New(ix), paths
}

func TestFind(t *testing.T) {
	s, _ := newTestSearch(t, map[string]string{
		"auth.py":   "def authenticate_user(token):\n    return verify_signature(token)\n",
		"render.py": "def render_html_template(name):\n    return template_engine.render(name)\n",
	})

	locations, err := s.Find(context.Background(), "authenticate user token", 5, 0.1, "", "")
	require.NoError(t, err)
	require.NotEmpty(t, locations)

	assert.Contains(t, locations[0].FilePath, "auth.py")
	assert.Equal(t, "authenticate_user", locations[0].SymbolName)
	assert.Greater(t, locations[0].Score, 0.1)
}

func TestFindMinScoreDropsWeakMatches(t *testing.T) {
	s, _ := newTestSearch(t, map[string]string{
		"auth.py": "def authenticate_user(token):\n    return verify_signature(token)\n",
	})

	// An impossibly high threshold filters everything out.
	locations, err := s.Find(context.Background(), "completely unrelated zebra walrus", 5, 0.999, "", "")
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestFindSimilar(t *testing.T) {
	s, paths := newTestSearch(t, map[string]string{
		"a.py": "def parse_json_config(path):\n    return json.load(open(path))\n",
		"b.py": "def parse_yaml_config(path):\n    return yaml.load(open(path))\n",
		"c.py": "def draw_chart(canvas):\n    canvas.paint()\n",
	})

	locations, err := s.FindSimilar(context.Background(), paths["a.py"], 1, 2)
	require.NoError(t, err)
	require.NotEmpty(t, locations)

	// The source chunk itself is excluded.
	for _, loc := range locations {
		assert.NotEqual(t, paths["a.py"], loc.FilePath)
	}
	assert.Contains(t, locations[0].FilePath, "b.py")
}

func TestFindSimilarUnknownLocation(t *testing.T) {
	s, paths := newTestSearch(t, map[string]string{
		"a.py": "def f():\n    return 0\n",
	})

	// Unknown file: empty result, not an error.
	locations, err := s.FindSimilar(context.Background(), "missing.py", 1, 5)
	require.NoError(t, err)
	assert.Empty(t, locations)

	// Known file, line outside every chunk.
	locations, err = s.FindSimilar(context.Background(), paths["a.py"], 9999, 5)
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestGetContext(t *testing.T) {
	s, _ := newTestSearch(t, map[string]string{
		"auth.py": "def authenticate_user(token):\n    return verify_signature(token)\n",
	})

	block, err := s.GetContext(context.Background(), "authenticate user token", 2000, 0.1)
	require.NoError(t, err)
	require.NotEmpty(t, block)

	assert.Contains(t, block, "auth.py")
	assert.Contains(t, block, "```python")
	assert.Contains(t, block, "authenticate_user")
	assert.True(t, strings.HasPrefix(block, "# "))
}

func TestGetContextRespectsBudget(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 8; i++ {
		name := string(rune('a'+i)) + ".py"
		files[name] = "def authenticate_user_" + string(rune('a'+i)) + "(token):\n    return verify_signature(token)\n"
	}
	s, _ := newTestSearch(t, files)

	// 40 tokens is roughly 160 characters; at most one block fits.
	block, err := s.GetContext(context.Background(), "authenticate user token", 40, 0.0)
	require.NoError(t, err)
	assert.LessOrEqual(t, strings.Count(block, "```python"), 1)

	// A generous budget packs more blocks.
	wide, err := s.GetContext(context.Background(), "authenticate user token", 4000, 0.0)
	require.NoError(t, err)
	assert.Greater(t, strings.Count(wide, "```python"), 1)
}

func TestExplainCodebase(t *testing.T) {
	s, _ := newTestSearch(t, map[string]string{
		"a.py": "def f():\n    return 0\n",
		"b.py": "def g():\n    return 1\n",
	})

	summary := s.ExplainCodebase(10)
	assert.Contains(t, summary, "# Codebase Summary")
	assert.Contains(t, summary, "**Total Files**: 2")
	assert.Contains(t, summary, "python")
}

func TestExplainCodebaseCapsLanguages(t *testing.T) {
	s, _ := newTestSearch(t, map[string]string{
		"a.py": "def f():\n    return 0\n",
	})

	summary := s.ExplainCodebase(0)
	// A zero cap means no limit; python still listed.
	assert.Contains(t, summary, "python")
}
