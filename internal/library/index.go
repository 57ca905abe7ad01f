package library

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"steamdrop/internal/appid"
	"steamdrop/internal/classify"
	"steamdrop/internal/logging"
)

// ErrUnknownApp is returned when an operation names an id the index does not
// contain.
var ErrUnknownApp = errors.New("app id not in library")

// Entry is one installed app.
type Entry struct {
	ID          string
	Name        string
	ScriptPaths []string
}

// Resolved reports whether the entry carries a real display name.
func (e Entry) Resolved() bool {
	return !appid.IsPlaceholder(e.ID, e.Name)
}

func (e Entry) clone() Entry {
	e.ScriptPaths = slices.Clone(e.ScriptPaths)
	return e
}

// NameSource supplies previously resolved names during a rebuild.
type NameSource interface {
	Lookup(id string) (string, bool)
}

// Index is safe for concurrent use.
type Index struct {
	names  NameSource
	logger *slog.Logger

	mu      sync.RWMutex
	order   []string
	entries map[string]*Entry

	obsMu     sync.Mutex
	observers map[int]func(Change)
	nextObs   int
}

// New returns an empty index. names may be nil.
func New(names NameSource, logger *slog.Logger) *Index {
	return &Index{
		names:     names,
		logger:    logging.NewComponentLogger(logger, "library"),
		entries:   make(map[string]*Entry),
		observers: make(map[int]func(Change)),
	}
}

// Rebuild rescans scriptDir (non-recursively) and replaces the index. A
// missing or unreadable directory yields an empty index. It returns the new
// entry count.
func (idx *Index) Rebuild(scriptDir string) int {
	files := listScripts(scriptDir, idx.logger)

	order := make([]string, 0, len(files))
	grouped := make(map[string]*Entry, len(files))
	for _, path := range files {
		id := appid.Extract(path)
		if id == "" {
			idx.logger.Debug("script has no app id", logging.String("path", path))
			continue
		}
		entry, ok := grouped[id]
		if !ok {
			entry = &Entry{ID: id}
			grouped[id] = entry
			order = append(order, id)
		}
		entry.ScriptPaths = append(entry.ScriptPaths, path)
	}

	idx.mu.Lock()
	previous := idx.entries
	for _, id := range order {
		grouped[id].Name = idx.seedName(id, previous[id])
	}
	changed := !sameEntries(previous, grouped)
	idx.entries = grouped
	idx.order = order
	idx.mu.Unlock()

	idx.logger.Debug("rebuilt library index",
		logging.String("script_dir", scriptDir),
		logging.Int("script_files", len(files)),
		logging.Int("entries", len(order)))

	if changed {
		idx.notify(Change{Kind: ChangeRebuilt})
	}
	return len(order)
}

func (idx *Index) seedName(id string, prev *Entry) string {
	if prev != nil && !appid.IsPlaceholder(id, prev.Name) {
		return prev.Name
	}
	if idx.names != nil {
		if name, found := idx.names.Lookup(id); found && name != "" {
			return name
		}
	}
	return appid.Placeholder(id)
}

func listScripts(dir string, logger *slog.Logger) []string {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logger, "failed to list script directory", "library_list_failed",
				logging.String("script_dir", dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the script directory"),
				logging.String(logging.FieldImpact, "the library is shown empty"))
		}
		return nil
	}
	var files []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if classify.Classify(path) == classify.KindScript {
			files = append(files, path)
		}
	}
	return files
}

func sameEntries(a, b map[string]*Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for id, ea := range a {
		eb, ok := b[id]
		if !ok || ea.Name != eb.Name || !slices.Equal(ea.ScriptPaths, eb.ScriptPaths) {
			return false
		}
	}
	return true
}

// Entries returns a copy of every entry in discovery order.
func (idx *Index) Entries() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Entry, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.entries[id].clone())
	}
	return out
}

// Get returns a copy of the entry for id.
func (idx *Index) Get(id string) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	entry, ok := idx.entries[id]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.order)
}

// SetName replaces the display name of an existing entry. Unknown ids, empty
// names and unchanged names are ignored. It reports whether the entry changed.
func (idx *Index) SetName(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	idx.mu.Lock()
	entry, ok := idx.entries[id]
	if !ok || entry.Name == name {
		idx.mu.Unlock()
		return false
	}
	entry.Name = name
	idx.mu.Unlock()

	idx.notify(Change{Kind: ChangeName, ID: id, Name: name})
	return true
}

// Placeholders returns the ids still showing a placeholder name, sorted.
func (idx *Index) Placeholders() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var ids []string
	for _, id := range idx.order {
		if appid.IsPlaceholder(id, idx.entries[id].Name) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Search returns entries whose name or id contains query, ignoring case.
// An empty query matches everything. Results are ordered by name.
func (idx *Index) Search(query string) []Entry {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))

	type match struct {
		key   string
		entry Entry
	}
	idx.mu.RLock()
	matches := make([]match, 0, len(idx.order))
	for _, id := range idx.order {
		entry := idx.entries[id]
		folded := fold.String(entry.Name)
		if needle == "" || strings.Contains(folded, needle) || strings.Contains(id, needle) {
			matches = append(matches, match{key: folded, entry: entry.clone()})
		}
	}
	idx.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].key != matches[j].key {
			return matches[i].key < matches[j].key
		}
		return matches[i].entry.ID < matches[j].entry.ID
	})
	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}
