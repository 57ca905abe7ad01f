package namecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"steamdrop/internal/logging"
)

// JSONStore keeps the cache in memory and mirrors it to a JSON file.
//
// Several processes may share one file. Mutations re-read the file under
// the lock and apply the change to what is on disk, and reads pick up the
// file again whenever it was replaced since the last look.
type JSONStore struct {
	path    string
	logger  *slog.Logger
	lock    *flock.Flock
	mu      sync.Mutex
	entries map[string]string
	seen    os.FileInfo
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore loads path into a new store. If path is empty the store is
// memory-only. Load failures are logged and start an empty cache.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	logger = logging.NewComponentLogger(logger, "namecache")

	s := &JSONStore{
		path:    path,
		logger:  logger,
		entries: make(map[string]string),
	}
	if path == "" {
		return s
	}
	s.lock = flock.New(path + ".lock")

	s.seen = s.stat()
	entries, err := s.read()
	if err != nil {
		s.warnLoad(err)
		return s
	}
	s.entries = entries
	s.logger.Debug("loaded name cache",
		logging.Int("entry_count", len(s.entries)),
		logging.String("path", s.path))
	return s
}

// Lookup returns the cached name for id.
func (s *JSONStore) Lookup(id string) (string, bool) {
	id = normalizeID(id)
	if id == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	name, found := s.entries[id]
	return name, found
}

// Store records name for id and persists the cache.
func (s *JSONStore) Store(id, name string) error {
	id = normalizeID(id)
	if id == "" {
		return errors.New("app id cannot be empty")
	}

	err := s.mutate(func(entries map[string]string) error {
		entries[id] = name
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("cached app name",
		logging.AppID(id),
		logging.String("name", name),
		logging.Bool("negative", name == ""))
	return nil
}

// Remove deletes id and persists the change.
func (s *JSONStore) Remove(id string) error {
	id = normalizeID(id)
	if id == "" {
		return errors.New("app id cannot be empty")
	}

	return s.mutate(func(entries map[string]string) error {
		if _, exists := entries[id]; !exists {
			return fmt.Errorf("app id %q not found in name cache", id)
		}
		delete(entries, id)
		return nil
	})
}

// Clear removes all entries and persists the empty cache.
func (s *JSONStore) Clear() error {
	return s.mutate(func(entries map[string]string) error {
		clear(entries)
		return nil
	})
}

// List returns all entries sorted by id.
func (s *JSONStore) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()

	entries := make([]Entry, 0, len(s.entries))
	for id, name := range s.entries {
		entries = append(entries, Entry{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Count returns the number of cached ids, negative entries included.
func (s *JSONStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh()
	return len(s.entries)
}

// Close is a no-op; every mutation is already on disk.
func (s *JSONStore) Close() error {
	return nil
}

// mutate applies op to the current file contents under the cross-process
// lock and writes the result back. A failing op leaves the file untouched.
func (s *JSONStore) mutate(op func(map[string]string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return op(s.entries)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	entries, err := s.read()
	if err != nil {
		s.warnLoad(err)
		entries = make(map[string]string)
	}
	if err := op(entries); err != nil {
		return err
	}
	if err := s.write(entries); err != nil {
		return fmt.Errorf("persist name cache: %w", err)
	}
	s.entries = entries
	s.seen = s.stat()
	return nil
}

// refresh reloads the file when another writer replaced it. Callers hold mu.
func (s *JSONStore) refresh() {
	if s.path == "" {
		return
	}
	current := s.stat()
	if sameSnapshot(s.seen, current) {
		return
	}
	entries, err := s.read()
	if err != nil {
		s.logger.Debug("name cache reload failed; keeping loaded entries",
			logging.Error(err),
			logging.String("path", s.path))
		return
	}
	s.entries = entries
	s.seen = current
}

func (s *JSONStore) stat() os.FileInfo {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil
	}
	return info
}

func sameSnapshot(a, b os.FileInfo) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return os.SameFile(a, b) && a.Size() == b.Size() && a.ModTime().Equal(b.ModTime())
}

func (s *JSONStore) read() (map[string]string, error) {
	entries := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse cache file: %w", err)
	}
	for id, name := range raw {
		if id = normalizeID(id); id != "" {
			entries[id] = name
		}
	}
	return entries, nil
}

// write replaces the file atomically. Callers hold the file lock.
func (s *JSONStore) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *JSONStore) warnLoad(err error) {
	logging.WarnWithContext(s.logger, "failed to load name cache",
		"namecache_load_failed",
		logging.Error(err),
		logging.String("path", s.path),
		logging.String(logging.FieldErrorHint, "the file is rewritten on the next resolution"),
		logging.String(logging.FieldImpact, "previously resolved names will be looked up again"))
}
