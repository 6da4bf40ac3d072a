// Package chunk splits source files into semantically bounded chunks
// suitable for embedding and retrieval.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Chunk size defaults, in characters.
const (
	DefaultMaxChunkSize = 1500
	DefaultMinChunkSize = 100
	DefaultOverlap      = 50

	// overlapCharsPerLine approximates how many characters one source
	// line contributes when converting the overlap budget to lines.
	overlapCharsPerLine = 50
)

// Kind classifies what a chunk represents.
type Kind string

const (
	KindFile      Kind = "file"
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindDocstring Kind = "docstring"
	KindComment   Kind = "comment"
	KindImport    Kind = "import"
	KindBlock     Kind = "block"
)

// Chunk is a contiguous slice of a source file with location metadata.
type Chunk struct {
	ID         string    // Content-addressed: SHA256(file_path + ":" + content)[:16]
	Content    string    // Raw chunk text
	FilePath   string    // Owning file
	StartLine  int       // 1-indexed
	EndLine    int       // Inclusive
	Kind       Kind      // block, function, class, etc.
	Language   string    // Detected language, empty if unknown
	SymbolName string    // Enclosing symbol, if known
	Embedding  []float32 // Attached by the embedding provider
	CreatedAt  time.Time
}

// LineCount returns the number of lines the chunk spans.
func (c *Chunk) LineCount() int {
	return c.EndLine - c.StartLine + 1
}

// CharCount returns the chunk content length in characters.
func (c *Chunk) CharCount() int {
	return len(c.Content)
}

// ComputeID derives the content-addressed chunk identifier. Identical
// content at the same path always yields the same ID, which is what
// makes de-duplication across re-index runs work.
func ComputeID(filePath, content string) string {
	sum := sha256.Sum256([]byte(filePath + ":" + content))
	return hex.EncodeToString(sum[:])[:16]
}
