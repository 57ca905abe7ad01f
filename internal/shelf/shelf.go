// Package shelf wires the library, importer, resolver and refresher into the
// single surface used by the command line and the daemon.
package shelf

import (
	"context"
	"log/slog"

	"steamdrop/internal/appid"
	"steamdrop/internal/catalog"
	"steamdrop/internal/importer"
	"steamdrop/internal/library"
	"steamdrop/internal/logging"
	"steamdrop/internal/namecache"
	"steamdrop/internal/refresher"
	"steamdrop/internal/resolver"
)

// Dirs and DirsFunc are shared with the importer.
type (
	Dirs     = importer.Dirs
	DirsFunc = importer.DirsFunc
)

// Options carries the collaborators and tuning for New.
type Options struct {
	Dirs      DirsFunc
	Cache     namecache.Store
	Catalog   catalog.Looker
	Resolver  resolver.Options
	Refresher refresher.Options
	MaxDepth  int
	Logger    *slog.Logger
}

// Shelf is the collaborator interface over one Steam installation.
type Shelf struct {
	dirs      DirsFunc
	cache     namecache.Store
	index     *library.Index
	importer  *importer.Importer
	resolver  *resolver.Resolver
	refresher *refresher.Refresher
	logger    *slog.Logger
}

// New builds a shelf. The index starts empty; call Rebuild to load it.
func New(opts Options) *Shelf {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = namecache.NewJSONStore("", logger)
	}
	index := library.New(opts.Cache, logger)
	res := resolver.New(opts.Cache, opts.Catalog, opts.Resolver, logger)
	return &Shelf{
		dirs:      opts.Dirs,
		cache:     opts.Cache,
		index:     index,
		importer:  importer.New(opts.Dirs, index, opts.MaxDepth, logger),
		resolver:  res,
		refresher: refresher.New(index, res, opts.Refresher, logger),
		logger:    logging.NewComponentLogger(logger, "shelf"),
	}
}

// Dirs returns the current destinations.
func (s *Shelf) Dirs() Dirs {
	return s.dirs()
}

// Import copies paths into the destinations and rebuilds the library. New
// entries are handed to the refresher without waiting for its idle timer.
func (s *Shelf) Import(ctx context.Context, paths []string) importer.Result {
	result := s.importer.Import(ctx, paths)
	if len(result.Copied) > 0 {
		s.refresher.Wake()
	}
	return result
}

// Rebuild rescans the script destination and returns the entry count.
func (s *Shelf) Rebuild() int {
	return s.index.Rebuild(s.dirs().ScriptDir)
}

// Remove deletes the files for id and rebuilds the library, even when some
// deletions failed.
func (s *Shelf) Remove(id string, includeManifests bool) (int, error) {
	dirs := s.dirs()
	removed, err := s.index.Remove(id, includeManifests, dirs.ManifestDir)
	s.index.Rebuild(dirs.ScriptDir)
	return removed, err
}

// Resolve returns the display name for id and records it in the library.
func (s *Shelf) Resolve(ctx context.Context, id string) string {
	return s.apply(id, s.resolver.Resolve(ctx, id))
}

// ForceResolve retries an id whose previous lookups all failed.
func (s *Shelf) ForceResolve(ctx context.Context, id string) string {
	return s.apply(id, s.resolver.ForceResolve(ctx, id))
}

func (s *Shelf) apply(id, name string) string {
	if !appid.IsPlaceholder(id, name) {
		s.index.SetName(id, name)
	}
	return name
}

// Subscribe registers fn for library changes.
func (s *Shelf) Subscribe(fn func(library.Change)) (cancel func()) {
	return s.index.Subscribe(fn)
}

// Entries returns every library entry.
func (s *Shelf) Entries() []library.Entry {
	return s.index.Entries()
}

// Get returns the entry for id.
func (s *Shelf) Get(id string) (library.Entry, bool) {
	return s.index.Get(id)
}

// Search filters entries by name or id.
func (s *Shelf) Search(query string) []library.Entry {
	return s.index.Search(query)
}

// Placeholders lists ids still waiting for a name.
func (s *Shelf) Placeholders() []string {
	return s.index.Placeholders()
}

// MatchingManifests lists the manifests a removal with manifests would delete.
func (s *Shelf) MatchingManifests(id string) ([]string, error) {
	return library.MatchingManifests(s.dirs().ManifestDir, id)
}

// Refresher exposes the background resolver loop.
func (s *Shelf) Refresher() *refresher.Refresher {
	return s.refresher
}

// Cache exposes the name cache.
func (s *Shelf) Cache() namecache.Store {
	return s.cache
}
