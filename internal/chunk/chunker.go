package chunk

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codescope/codescope/internal/scanner"
)

// Options configures chunking behavior. Sizes are in characters.
type Options struct {
	MaxChunkSize      int
	MinChunkSize      int
	Overlap           int
	RespectBoundaries bool
}

// DefaultOptions returns the standard chunking configuration.
func DefaultOptions() Options {
	return Options{
		MaxChunkSize:      DefaultMaxChunkSize,
		MinChunkSize:      DefaultMinChunkSize,
		Overlap:           DefaultOverlap,
		RespectBoundaries: true,
	}
}

// Chunker splits source text at semantic boundaries when the language
// is known, falling back to size-based splitting otherwise.
type Chunker struct {
	opts Options
}

// New creates a chunker. Zero numeric options are replaced with
// defaults; RespectBoundaries is honored as given.
func New(opts Options) *Chunker {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = DefaultMaxChunkSize
	}
	if opts.MinChunkSize <= 0 {
		opts.MinChunkSize = DefaultMinChunkSize
	}
	if opts.Overlap <= 0 {
		opts.Overlap = DefaultOverlap
	}
	return &Chunker{opts: opts}
}

// ChunkFile splits a file into chunks. If content is nil the file is
// read from disk; a missing file yields no chunks rather than an
// error. Empty or whitespace-only content yields no chunks.
func (c *Chunker) ChunkFile(filePath string, content []byte) ([]*Chunk, error) {
	if content == nil {
		data, err := os.ReadFile(filePath)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		content = data
	}

	text := string(content)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	language := DetectLanguage(strings.ToLower(filepath.Ext(filePath)))

	if c.opts.RespectBoundaries {
		if patterns, ok := boundaryPatterns[language]; ok {
			return c.chunkWithBoundaries(filePath, text, language, patterns), nil
		}
	}
	return c.chunkBySize(filePath, text, language, 1, true), nil
}

// boundary marks one semantic declaration in the source text.
type boundary struct {
	offset int
	kind   Kind
	name   string
}

// chunkWithBoundaries builds chunks from the spans between declaration
// sites. Spans shorter than MinChunkSize are discarded, except the
// trailing span which is always flushed once no boundaries remain.
func (c *Chunker) chunkWithBoundaries(filePath, text, language string, patterns []boundaryPattern) []*Chunk {
	boundaries := findBoundaries(text, patterns)
	if len(boundaries) == 0 {
		return c.chunkBySize(filePath, text, language, 1, true)
	}

	totalLines := strings.Count(text, "\n") + 1
	var chunks []*Chunk

	// Span before the first boundary carries no symbol.
	prevPos := 0
	prevKind := KindBlock
	prevName := ""
	for _, b := range boundaries {
		if b.offset > prevPos {
			span := strings.TrimSpace(text[prevPos:b.offset])
			if len(span) >= c.opts.MinChunkSize {
				startLine := strings.Count(text[:prevPos], "\n") + 1
				endLine := strings.Count(text[:b.offset], "\n")
				chunks = append(chunks, newChunk(filePath, span, startLine, endLine, prevKind, language, prevName))
			}
		}
		prevPos = b.offset
		prevKind = b.kind
		prevName = b.name
	}

	// Trailing span: flushed regardless of the minimum size.
	if prevPos < len(text) {
		span := strings.TrimSpace(text[prevPos:])
		if span != "" {
			startLine := strings.Count(text[:prevPos], "\n") + 1
			chunks = append(chunks, newChunk(filePath, span, startLine, totalLines, prevKind, language, prevName))
		}
	}

	// Re-split anything over the size limit, keeping absolute line
	// numbers intact.
	final := make([]*Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if len(ch.Content) > c.opts.MaxChunkSize {
			final = append(final, c.chunkBySize(filePath, ch.Content, language, ch.StartLine, false)...)
		} else {
			final = append(final, ch)
		}
	}
	return final
}

// findBoundaries scans the text for all declaration matches, ordered
// by offset. Equal offsets are ordered by symbol name so chunk output
// is deterministic.
func findBoundaries(text string, patterns []boundaryPattern) []boundary {
	var boundaries []boundary
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			name := ""
			if len(m) >= 4 && m[2] >= 0 {
				name = text[m[2]:m[3]]
			}
			boundaries = append(boundaries, boundary{offset: m[0], kind: p.kind, name: name})
		}
	}
	sort.Slice(boundaries, func(i, j int) bool {
		if boundaries[i].offset != boundaries[j].offset {
			return boundaries[i].offset < boundaries[j].offset
		}
		return boundaries[i].name < boundaries[j].name
	})
	return boundaries
}

// chunkBySize accumulates lines until the next line would exceed
// MaxChunkSize, then flushes and re-includes the trailing overlap
// lines to preserve context across the split. baseLine is the absolute
// line number of the first line of text. The final remainder is
// dropped when it is below MinChunkSize, unless dropSmallTail is false
// or it would be the only chunk produced.
func (c *Chunker) chunkBySize(filePath, text, language string, baseLine int, dropSmallTail bool) []*Chunk {
	lines := strings.Split(text, "\n")
	var chunks []*Chunk
	var current []string
	currentSize := 0
	startLine := 1

	flush := func(endLine int) {
		content := strings.Join(current, "\n")
		chunks = append(chunks, newChunk(filePath, content,
			baseLine+startLine-1, baseLine+endLine-1, KindBlock, language, ""))
	}

	for i, line := range lines {
		lineNo := i + 1
		lineSize := len(line) + 1 // newline

		if currentSize+lineSize > c.opts.MaxChunkSize && len(current) > 0 {
			flush(lineNo - 1)

			// Seed the next chunk with the trailing overlap lines,
			// at least one line.
			overlapLines := c.opts.Overlap / overlapCharsPerLine
			if overlapLines < 1 {
				overlapLines = 1
			}
			if overlapLines > len(current) {
				overlapLines = len(current)
			}
			current = append([]string(nil), current[len(current)-overlapLines:]...)
			currentSize = 0
			for _, l := range current {
				currentSize += len(l) + 1
			}
			startLine = lineNo - len(current)
		}

		current = append(current, line)
		currentSize += lineSize
	}

	if len(current) > 0 {
		content := strings.Join(current, "\n")
		keep := len(content) >= c.opts.MinChunkSize || len(chunks) == 0 || !dropSmallTail
		if keep {
			flush(len(lines))
		}
	}

	return chunks
}

// ChunkDirectory walks root and chunks every file whose extension is
// in extensions, skipping paths containing any ignore substring. A
// file that fails to chunk is skipped; it never aborts the walk.
func (c *Chunker) ChunkDirectory(root string, extensions, ignorePatterns []string) ([]*Chunk, error) {
	if len(extensions) == 0 {
		extensions = SupportedExtensions()
	}

	files, err := scanner.Discover(root, scanner.Options{
		Extensions:     extensions,
		IgnorePatterns: ignorePatterns,
	})
	if err != nil {
		return nil, err
	}

	var all []*Chunk
	for _, path := range files {
		chunks, err := c.ChunkFile(path, nil)
		if err != nil {
			slog.Warn("skipping file that failed to chunk",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		all = append(all, chunks...)
	}
	return all, nil
}

func newChunk(filePath, content string, startLine, endLine int, kind Kind, language, symbolName string) *Chunk {
	return &Chunk{
		ID:         ComputeID(filePath, content),
		Content:    content,
		FilePath:   filePath,
		StartLine:  startLine,
		EndLine:    endLine,
		Kind:       kind,
		Language:   language,
		SymbolName: symbolName,
		CreatedAt:  time.Now().UTC(),
	}
}
