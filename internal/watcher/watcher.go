package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/codescope/codescope/internal/index"
)

// Options configures the watcher.
type Options struct {
	// Root is the directory tree to watch.
	Root string

	// Extensions is the include-list of file extensions.
	Extensions []string

	// IgnorePatterns are path substrings to skip.
	IgnorePatterns []string

	// DebounceWindow coalesces rapid events per path.
	DebounceWindow time.Duration
}

// Watcher re-indexes files as they change on disk. Modified and
// created files are re-indexed through the indexer's change
// detection; deleted files are removed from the index.
type Watcher struct {
	indexer   *index.Indexer
	opts      Options
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
}

// New creates a watcher over root, watching every directory in the
// tree that is not ignored.
func New(indexer *index.Indexer, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}

	w := &Watcher{
		indexer:   indexer,
		opts:      opts,
		fsw:       fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
	}

	if err := w.addDirs(opts.Root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addDirs registers root and all non-ignored subdirectories.
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Warn("failed to watch directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return nil
	})
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Translate raw fsnotify events into debounced file events.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return nil
				}
				w.handleRaw(ev)
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return nil
				}
				slog.Warn("watch error", slog.String("error", err.Error()))
			}
		}
	})

	// Apply debounced batches to the index.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case batch := <-w.debouncer.Events():
				w.apply(ctx, batch)
			}
		}
	})

	err := g.Wait()
	w.debouncer.Stop()
	_ = w.fsw.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleRaw filters and classifies one raw filesystem event.
func (w *Watcher) handleRaw(ev fsnotify.Event) {
	if w.ignored(ev.Name) {
		return
	}

	// New directories must be added to the watch set.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addDirs(ev.Name)
			return
		}
	}

	if !w.included(ev.Name) {
		return
	}

	var op Operation
	switch {
	case ev.Op.Has(fsnotify.Create):
		op = OpCreate
	case ev.Op.Has(fsnotify.Write):
		op = OpModify
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		op = OpDelete
	default:
		return
	}

	w.debouncer.Add(FileEvent{Path: ev.Name, Operation: op, Timestamp: time.Now()})
}

// apply updates the index for one debounced batch.
func (w *Watcher) apply(ctx context.Context, batch []FileEvent) {
	for _, ev := range batch {
		switch ev.Operation {
		case OpDelete:
			removed, err := w.indexer.RemoveFile(ev.Path)
			if err != nil {
				slog.Warn("failed to remove file from index",
					slog.String("path", ev.Path),
					slog.String("error", err.Error()))
				continue
			}
			slog.Info("removed from index",
				slog.String("path", ev.Path),
				slog.Int("chunks", removed))
		default:
			chunks, err := w.indexer.IndexFile(ctx, ev.Path, nil, false)
			if err != nil {
				slog.Warn("failed to re-index file",
					slog.String("path", ev.Path),
					slog.String("error", err.Error()))
				continue
			}
			if len(chunks) > 0 {
				slog.Info("re-indexed",
					slog.String("path", ev.Path),
					slog.Int("chunks", len(chunks)))
			}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	for _, p := range w.opts.IgnorePatterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func (w *Watcher) included(path string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.opts.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
