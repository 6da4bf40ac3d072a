// Package search is the high-level semantic search facade: score
// thresholds, similar-code lookup, and token-budgeted context packing
// on top of the indexer.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/codescope/codescope/internal/index"
	"github.com/codescope/codescope/internal/store"
)

// Defaults for the facade operations.
const (
	DefaultMinScore = 0.5

	// contextOverFetch is how many candidates GetContext retrieves
	// before packing under the character budget.
	contextOverFetch = 20

	// charsPerToken approximates the character cost of one token.
	charsPerToken = 4
)

// CodeLocation is a ranked code location returned to callers.
type CodeLocation struct {
	FilePath   string  `json:"file_path"`
	StartLine  int     `json:"start_line"`
	EndLine    int     `json:"end_line"`
	Content    string  `json:"content"`
	Language   string  `json:"language,omitempty"`
	SymbolName string  `json:"symbol_name,omitempty"`
	Score      float64 `json:"score"`
}

// SemanticSearch answers natural-language queries over an indexed
// codebase.
type SemanticSearch struct {
	indexer *index.Indexer
}

// New creates a semantic search facade over the given indexer.
func New(indexer *index.Indexer) *SemanticSearch {
	return &SemanticSearch{indexer: indexer}
}

// Find returns code locations matching a natural-language query,
// dropping results scoring below minScore.
func (s *SemanticSearch) Find(ctx context.Context, query string, topK int, minScore float64, filePattern, language string) ([]*CodeLocation, error) {
	results, err := s.indexer.Search(ctx, query, topK, filePattern, language)
	if err != nil {
		return nil, err
	}

	var locations []*CodeLocation
	for _, r := range results {
		if r.Score < minScore {
			continue
		}
		locations = append(locations, toLocation(r))
	}
	return locations, nil
}

// FindSimilar finds code similar to the chunk containing the given
// line of the given file, excluding that chunk itself. An unknown
// path or a line outside every chunk yields an empty result, not an
// error.
func (s *SemanticSearch) FindSimilar(ctx context.Context, filePath string, lineNumber, topK int) ([]*CodeLocation, error) {
	var target *store.SearchResult
	for _, c := range s.indexer.Store().GetChunksByFile(filePath) {
		if c.StartLine <= lineNumber && lineNumber <= c.EndLine {
			target = &store.SearchResult{Chunk: c}
			break
		}
	}
	if target == nil || target.Chunk.Embedding == nil {
		return nil, nil
	}

	// Over-fetch by one so excluding the source still fills topK.
	results, err := s.indexer.Store().Search(target.Chunk.Embedding, topK+1, nil)
	if err != nil {
		return nil, err
	}

	var locations []*CodeLocation
	for _, r := range results {
		if r.Chunk.ID == target.Chunk.ID {
			continue
		}
		locations = append(locations, toLocation(r))
		if len(locations) == topK {
			break
		}
	}
	return locations, nil
}

// GetContext assembles relevant chunks into a formatted context block
// bounded by an approximate token budget. Blocks are appended
// greedily in rank order; packing stops before the budget would be
// exceeded rather than truncating a block mid-way.
func (s *SemanticSearch) GetContext(ctx context.Context, query string, maxTokens int, minScore float64) (string, error) {
	maxChars := maxTokens * charsPerToken

	results, err := s.indexer.Search(ctx, query, contextOverFetch, "", "")
	if err != nil {
		return "", err
	}

	var parts []string
	totalChars := 0
	for _, r := range results {
		if r.Score < minScore {
			continue
		}

		c := r.Chunk
		block := fmt.Sprintf("# %s:%d-%d\n```%s\n%s\n```",
			c.FilePath, c.StartLine, c.EndLine, c.Language, c.Content)

		if totalChars+len(block) > maxChars {
			break
		}
		parts = append(parts, block)
		totalChars += len(block)
	}

	return strings.Join(parts, "\n\n"), nil
}

// ExplainCodebase renders the current index statistics as a short
// human-readable summary, listing at most maxLanguages languages by
// descending chunk count.
func (s *SemanticSearch) ExplainCodebase(maxLanguages int) string {
	stats := s.indexer.Stats()

	var b strings.Builder
	b.WriteString("# Codebase Summary\n\n")
	fmt.Fprintf(&b, "- **Total Files**: %d\n", stats.TotalFiles)
	fmt.Fprintf(&b, "- **Total Chunks**: %d\n", stats.TotalChunks)
	fmt.Fprintf(&b, "- **Total Characters**: %d\n", stats.TotalCharacters)
	b.WriteString("\n## Languages\n\n")

	type langCount struct {
		lang  string
		count int
	}
	langs := make([]langCount, 0, len(stats.Languages))
	for lang, count := range stats.Languages {
		langs = append(langs, langCount{lang, count})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].count != langs[j].count {
			return langs[i].count > langs[j].count
		}
		return langs[i].lang < langs[j].lang
	})

	for i, lc := range langs {
		if maxLanguages > 0 && i >= maxLanguages {
			break
		}
		fmt.Fprintf(&b, "- %s: %d chunks\n", lc.lang, lc.count)
	}

	return b.String()
}

func toLocation(r *store.SearchResult) *CodeLocation {
	return &CodeLocation{
		FilePath:   r.Chunk.FilePath,
		StartLine:  r.Chunk.StartLine,
		EndLine:    r.Chunk.EndLine,
		Content:    r.Chunk.Content,
		Language:   r.Chunk.Language,
		SymbolName: r.Chunk.SymbolName,
		Score:      r.Score,
	}
}
