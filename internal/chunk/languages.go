package chunk

import "regexp"

// languageByExtension maps file extensions to language tags.
var languageByExtension = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".go":    "go",
	".rs":    "rust",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".c":     "c",
	".h":     "c",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".md":    "markdown",
	".sql":   "sql",
	".sh":    "shell",
	".bash":  "shell",
	".yml":   "yaml",
	".yaml":  "yaml",
	".json":  "json",
	".toml":  "toml",
}

// boundaryPattern is one language-specific declaration pattern. Kind is
// the coarse classification attached to the matched declaration.
type boundaryPattern struct {
	re   *regexp.Regexp
	kind Kind
}

// boundaryPatterns holds the semantic-boundary declarations per
// language. Languages without an entry fall back to size-based
// chunking. Patterns anchor at line start ((?m) multi-line mode) and
// capture the declared symbol name.
var boundaryPatterns = map[string][]boundaryPattern{
	"python": {
		{regexp.MustCompile(`(?m)^class\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?m)^(?:async\s+)?def\s+(\w+)`), KindFunction},
	},
	"javascript": {
		{regexp.MustCompile(`(?m)^(?:export\s+)?class\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?m)^(?:export\s+)?(?:async\s+)?function\s+(\w+)`), KindFunction},
		{regexp.MustCompile(`(?m)^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:\([^)]*\)|[^=])\s*=>`), KindFunction},
	},
	"typescript": {
		{regexp.MustCompile(`(?m)^(?:export\s+)?class\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?m)^(?:export\s+)?interface\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?m)^(?:export\s+)?type\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?m)^(?:export\s+)?(?:async\s+)?function\s+(\w+)`), KindFunction},
	},
	"go": {
		{regexp.MustCompile(`(?m)^func\s+(?:\([^)]+\)\s+)?(\w+)`), KindFunction},
		{regexp.MustCompile(`(?m)^type\s+(\w+)`), KindClass},
	},
	"rust": {
		{regexp.MustCompile(`(?m)^(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`), KindFunction},
		{regexp.MustCompile(`(?m)^(?:pub\s+)?struct\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?m)^(?:pub\s+)?enum\s+(\w+)`), KindClass},
		{regexp.MustCompile(`(?m)^impl(?:<[^>]+>)?\s+(\w+)`), KindClass},
	},
}

// DetectLanguage returns the language tag for a file extension, or the
// empty string when the extension is unknown.
func DetectLanguage(ext string) string {
	return languageByExtension[ext]
}

// SupportedExtensions returns every extension with a language mapping.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(languageByExtension))
	for ext := range languageByExtension {
		exts = append(exts, ext)
	}
	return exts
}
