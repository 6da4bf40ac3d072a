// Package scanner discovers indexable files under a project root.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the largest file the scanner will report.
// Anything bigger is almost certainly generated or binary content.
const DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

// DefaultIgnorePatterns are path substrings excluded from discovery:
// dependency trees, VCS metadata, and build output.
var DefaultIgnorePatterns = []string{
	"node_modules",
	".git",
	"__pycache__",
	".venv",
	"venv",
	"dist",
	"build",
	".next",
	"target",
	".pytest_cache",
	".mypy_cache",
}

// Options configures a discovery walk.
type Options struct {
	// Extensions is the include-list of file extensions (with dot).
	// Empty means every file is considered.
	Extensions []string

	// IgnorePatterns are substrings; a path containing any of them is
	// skipped. Nil means DefaultIgnorePatterns.
	IgnorePatterns []string

	// MaxFileSize caps file size in bytes. Zero means DefaultMaxFileSize.
	MaxFileSize int64
}

// Discover walks root and returns the sorted list of files passing the
// extension include-list and ignore filters. A missing root yields an
// empty list rather than an error; unreadable entries are skipped.
func Discover(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", root)
	}

	ignore := opts.IgnorePatterns
	if ignore == nil {
		ignore = DefaultIgnorePatterns
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	extSet := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extSet[strings.ToLower(ext)] = true
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it, never abort the walk.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if containsAny(path, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if len(extSet) > 0 && !extSet[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("directory walk failed: %w", walkErr)
	}

	sort.Strings(files)
	return files, nil
}

func containsAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}
