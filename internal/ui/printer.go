package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/codescope/codescope/internal/index"
	"github.com/codescope/codescope/internal/search"
)

// Printer formats search results and index statistics for the CLI.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter creates a printer for w. Color is disabled when w is not
// a terminal, when NO_COLOR is set, or when noColor is true.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	plain := noColor || DetectNoColor() || !IsTTY(w)
	return &Printer{out: w, styles: GetStyles(plain)}
}

// Results prints ranked code locations.
func (p *Printer) Results(locations []*search.CodeLocation) {
	if len(locations) == 0 {
		fmt.Fprintln(p.out, p.styles.Dim.Render("No results."))
		return
	}

	for i, loc := range locations {
		header := fmt.Sprintf("%s:%d-%d", loc.FilePath, loc.StartLine, loc.EndLine)
		fmt.Fprintf(p.out, "%d. %s %s\n",
			i+1,
			p.styles.Path.Render(header),
			p.styles.Score.Render(fmt.Sprintf("(%.3f)", loc.Score)))

		if loc.SymbolName != "" {
			fmt.Fprintf(p.out, "   %s %s\n",
				p.styles.Label.Render("symbol:"),
				p.styles.Symbol.Render(loc.SymbolName))
		}

		for _, line := range previewLines(loc.Content, 5) {
			fmt.Fprintf(p.out, "   %s\n", p.styles.Dim.Render(line))
		}
		fmt.Fprintln(p.out)
	}
}

// Stats prints aggregate index statistics.
func (p *Printer) Stats(stats *index.Stats) {
	fmt.Fprintln(p.out, p.styles.Header.Render("Index Statistics"))
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("files:"), stats.TotalFiles)
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("chunks:"), stats.TotalChunks)
	fmt.Fprintf(p.out, "  %s %d\n", p.styles.Label.Render("characters:"), stats.TotalCharacters)
	if !stats.LastUpdated.IsZero() {
		fmt.Fprintf(p.out, "  %s %s\n", p.styles.Label.Render("updated:"),
			stats.LastUpdated.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(p.out, "  %s %s\n", p.styles.Label.Render("duration:"),
			stats.LastDuration.Round(time.Millisecond).String())
	}
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, p.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// previewLines returns up to max lines of content, marking truncation.
func previewLines(content string, max int) []string {
	lines := strings.Split(content, "\n")
	if len(lines) <= max {
		return lines
	}
	preview := make([]string, 0, max+1)
	preview = append(preview, lines[:max]...)
	preview = append(preview, fmt.Sprintf("... (%d more lines)", len(lines)-max))
	return preview
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
