// Package watcher imports whatever lands in the inbox directory.
//
// Each top-level entry of the inbox (a file or a whole directory) is queued
// when it appears or changes and imported once it has been quiet for the
// debounce interval. Entries already present at startup are imported
// immediately.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"steamdrop/internal/importer"
	"steamdrop/internal/logging"
)

// DefaultDebounce is used when Options.Debounce is not positive.
const DefaultDebounce = 750 * time.Millisecond

// ImportFunc performs an import of the given paths.
type ImportFunc func(ctx context.Context, paths []string) importer.Result

// Options configures a Watcher.
type Options struct {
	Dir      string
	Debounce time.Duration
	// RemoveAfterCopy deletes sources that were copied successfully and prunes
	// directories left empty.
	RemoveAfterCopy bool
}

// Watcher watches one inbox directory.
type Watcher struct {
	opts     Options
	doImport ImportFunc
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// New constructs a watcher.
func New(opts Options, doImport ImportFunc, logger *slog.Logger) (*Watcher, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("inbox directory required")
	}
	if doImport == nil {
		return nil, errors.New("import function required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		opts:     opts,
		doImport: doImport,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		pending:  make(map[string]time.Time),
	}, nil
}

// Run watches until ctx is cancelled and then returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.opts.Dir); err != nil {
		return fmt.Errorf("watch inbox: %w", err)
	}
	w.logger.Info("watching inbox",
		logging.String("dir", w.opts.Dir),
		logging.Duration("debounce", w.opts.Debounce),
		logging.Bool("remove_after_copy", w.opts.RemoveAfterCopy))

	if existing := w.existingEntries(); len(existing) > 0 {
		w.process(ctx, existing)
	}

	tick := w.opts.Debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("fs watcher closed")
			}
			w.handleEvent(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("fs watcher closed")
			}
			logging.WarnWithContext(w.logger, "inbox watcher error", "watcher_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some inbox changes may be missed until the next event"))
		case <-ticker.C:
			if ready := w.takeReady(time.Now()); len(ready) > 0 {
				w.process(ctx, ready)
			}
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	top := w.topLevel(event.Name)
	if top == "" {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fsw, event.Name); err != nil {
				w.logger.Debug("watch subdirectory failed",
					logging.String("dir", event.Name),
					logging.Error(err))
			}
		}
	}
	w.mu.Lock()
	w.pending[top] = time.Now()
	w.mu.Unlock()
}

// topLevel maps path to the inbox entry that contains it.
func (w *Watcher) topLevel(path string) string {
	rel, err := filepath.Rel(w.opts.Dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	first := strings.SplitN(rel, string(filepath.Separator), 2)[0]
	if strings.HasPrefix(first, ".") {
		return ""
	}
	return filepath.Join(w.opts.Dir, first)
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) existingEntries() []string {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(w.opts.Dir, e.Name()))
	}
	return paths
}

// takeReady removes and returns entries quiet for at least the debounce.
func (w *Watcher) takeReady(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.opts.Debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func (w *Watcher) process(ctx context.Context, paths []string) {
	result := w.doImport(ctx, paths)
	w.logger.Info("imported inbox entries",
		logging.Int("entries", len(paths)),
		logging.Int("copied", len(result.Copied)),
		logging.Int("errors", len(result.Errors)))

	if !w.opts.RemoveAfterCopy {
		return
	}
	for _, copied := range result.Copied {
		if err := os.Remove(copied.Source); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(w.logger, "failed to remove imported file", "inbox_cleanup_failed",
				logging.String("path", copied.Source),
				logging.Error(err),
				logging.String(logging.FieldImpact, "the file stays in the inbox and is imported again on restart"))
		}
	}
	for _, top := range paths {
		pruneEmptyDirs(top)
	}
}

// pruneEmptyDirs removes root and its subdirectories when they hold no files.
func pruneEmptyDirs(root string) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return
	}
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	for i := len(dirs) - 1; i >= 0; i-- {
		// Fails harmlessly for directories that still hold files.
		_ = os.Remove(dirs[i])
	}
}
