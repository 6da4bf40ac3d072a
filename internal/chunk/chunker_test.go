package chunk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonTwoFuncs = "import os\n\ndef alpha():\n    return 1\n\ndef beta():\n    return 2\n"

func TestComputeID(t *testing.T) {
	id := ComputeID("src/main.py", "def main(): pass")

	assert.Len(t, id, 16)
	assert.Equal(t, id, ComputeID("src/main.py", "def main(): pass"))

	// Same content at a different path is a different chunk.
	assert.NotEqual(t, id, ComputeID("src/other.py", "def main(): pass"))
	assert.NotEqual(t, id, ComputeID("src/main.py", "def main(): return"))
}

func TestChunkFileBoundaries(t *testing.T) {
	c := New(Options{MaxChunkSize: 1500, MinChunkSize: 5, Overlap: 50, RespectBoundaries: true})

	chunks, err := c.ChunkFile("app.py", []byte(pythonTwoFuncs))
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// Preamble before the first declaration carries no symbol.
	assert.Equal(t, "import os", chunks[0].Content)
	assert.Equal(t, KindBlock, chunks[0].Kind)
	assert.Empty(t, chunks[0].SymbolName)
	assert.Equal(t, 1, chunks[0].StartLine)

	assert.Equal(t, "def alpha():\n    return 1", chunks[1].Content)
	assert.Equal(t, KindFunction, chunks[1].Kind)
	assert.Equal(t, "alpha", chunks[1].SymbolName)
	assert.Equal(t, 3, chunks[1].StartLine)

	assert.Equal(t, "beta", chunks[2].SymbolName)
	assert.Equal(t, "python", chunks[2].Language)

	for _, ch := range chunks {
		assert.NotEmpty(t, ch.ID)
		assert.LessOrEqual(t, ch.StartLine, ch.EndLine)
	}
}

func TestChunkFileTwoFunctionsSmallLimits(t *testing.T) {
	c := New(Options{MaxChunkSize: 100, MinChunkSize: 10, Overlap: 50, RespectBoundaries: true})

	chunks, err := c.ChunkFile("two.py", []byte(pythonTwoFuncs))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		assert.Equal(t, "python", ch.Language)
		assert.LessOrEqual(t, len(ch.Content), 100)
	}
}

func TestChunkFileArrowFunctions(t *testing.T) {
	src := "const add = (a, b) => a + b\n\nconst f = x => x * 2\n"
	c := New(Options{MaxChunkSize: 1500, MinChunkSize: 5, Overlap: 50, RespectBoundaries: true})

	chunks, err := c.ChunkFile("util.js", []byte(src))
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "add", chunks[0].SymbolName)
	assert.Equal(t, KindFunction, chunks[0].Kind)

	// The bare single-identifier parameter form is a boundary too.
	assert.Equal(t, "f", chunks[1].SymbolName)
	assert.Equal(t, KindFunction, chunks[1].Kind)
	assert.Equal(t, "javascript", chunks[1].Language)
}

func TestChunkFileSmallSpansDiscardedExceptTrailing(t *testing.T) {
	// Both inner spans are under the minimum; only the trailing span
	// survives because the tail is always flushed.
	c := New(Options{MaxChunkSize: 1500, MinChunkSize: 50, Overlap: 50, RespectBoundaries: true})

	chunks, err := c.ChunkFile("app.py", []byte(pythonTwoFuncs))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "beta", chunks[0].SymbolName)
}

func TestChunkFileOversizedResplit(t *testing.T) {
	var b strings.Builder
	b.WriteString("def big():\n")
	for i := 0; i < 40; i++ {
		b.WriteString("    value = compute_something_useful(1234567890)\n")
	}

	c := New(Options{MaxChunkSize: 400, MinChunkSize: 10, Overlap: 50, RespectBoundaries: true})

	chunks, err := c.ChunkFile("big.py", []byte(b.String()))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, 1, chunks[0].StartLine)
	for i, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), 400)
		if i > 0 {
			// Overlap means the next chunk starts at or before the
			// previous end, never after a gap.
			assert.LessOrEqual(t, ch.StartLine, chunks[i-1].EndLine+1)
		}
	}
}

func TestChunkFileEmptyContent(t *testing.T) {
	c := New(DefaultOptions())

	chunks, err := c.ChunkFile("empty.py", []byte("   \n\t\n"))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkFileMissingFile(t *testing.T) {
	c := New(DefaultOptions())

	chunks, err := c.ChunkFile(filepath.Join(t.TempDir(), "nope.py"), nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkFileUnknownLanguageFallsBackToSize(t *testing.T) {
	c := New(Options{MaxChunkSize: 1500, MinChunkSize: 100, Overlap: 50, RespectBoundaries: true})

	// Short content below the minimum is still kept when it is the
	// only chunk the file would produce.
	chunks, err := c.ChunkFile("notes.txt", []byte("short note"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, KindBlock, chunks[0].Kind)
	assert.Empty(t, chunks[0].Language)
}

func TestChunkDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte(pythonTwoFuncs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "utils.py"), []byte("def helper():\n    return 42\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not code"), 0o644))

	c := New(Options{MaxChunkSize: 1500, MinChunkSize: 5, Overlap: 50, RespectBoundaries: true})

	chunks, err := c.ChunkDirectory(dir, []string{".py"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	files := make(map[string]bool)
	for _, ch := range chunks {
		files[filepath.Base(ch.FilePath)] = true
	}
	assert.True(t, files["main.py"])
	assert.True(t, files["utils.py"])
	assert.False(t, files["readme.txt"])
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "python", DetectLanguage(".py"))
	assert.Equal(t, "typescript", DetectLanguage(".tsx"))
	assert.Equal(t, "go", DetectLanguage(".go"))
	assert.Empty(t, DetectLanguage(".xyz"))
}

func TestChunkLineCount(t *testing.T) {
	ch := &Chunk{StartLine: 3, EndLine: 7, Content: "abc"}
	assert.Equal(t, 5, ch.LineCount())
	assert.Equal(t, 3, ch.CharCount())
}
