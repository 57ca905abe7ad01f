package namecache

import (
	"fmt"
	"log/slog"
	"strings"
)

// Entry is one cached mapping. Name is empty for negative entries.
type Entry struct {
	ID   string
	Name string
}

// Negative reports whether the entry records a confirmed failed lookup.
func (e Entry) Negative() bool {
	return e.Name == ""
}

// Store is the persistent name cache used by the resolver.
type Store interface {
	// Lookup returns the cached name and whether the id has been attempted.
	Lookup(id string) (string, bool)
	// Store records name for id (empty name = negative) and persists it.
	Store(id, name string) error
	// Remove forgets id so the next resolution hits the catalog again.
	Remove(id string) error
	// Clear drops every entry.
	Clear() error
	// List returns all entries sorted by id.
	List() []Entry
	Count() int
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open constructs the store for backend at path.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewJSONStore(path, logger), nil
	case BackendSQLite:
		return OpenSQLite(path, logger)
	default:
		return nil, fmt.Errorf("unsupported name cache backend %q", backend)
	}
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
