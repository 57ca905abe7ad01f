package shelf

import (
	"fmt"
	"log/slog"
	"time"

	"steamdrop/internal/catalog"
	"steamdrop/internal/config"
	"steamdrop/internal/namecache"
	"steamdrop/internal/refresher"
	"steamdrop/internal/resolver"
)

// Open builds a shelf from configuration, opening the configured name cache
// and catalog client, and loads the library. Callers Close the shelf.
func Open(cfg *config.Config, logger *slog.Logger) (*Shelf, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cache, err := namecache.Open(cfg.NameCache.Backend, cfg.NameCache.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open name cache: %w", err)
	}
	client, err := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.Country, cfg.Catalog.Language, cfg.Catalog.UserAgent)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("create catalog client: %w", err)
	}

	s := New(Options{
		Dirs: func() Dirs {
			return Dirs{ScriptDir: cfg.ScriptDir(), ManifestDir: cfg.ManifestDir()}
		},
		Cache:   cache,
		Catalog: client,
		Resolver: resolver.Options{
			MaxAttempts:    cfg.Catalog.MaxAttempts,
			AttemptTimeout: time.Duration(cfg.Catalog.AttemptTimeoutSeconds) * time.Second,
			RetryPause:     time.Duration(cfg.Catalog.RetryPauseMillis) * time.Millisecond,
		},
		Refresher: refresher.Options{
			BatchSize: cfg.Refresher.BatchSize,
			Pace:      time.Duration(cfg.Refresher.PaceMillis) * time.Millisecond,
			Idle:      time.Duration(cfg.Refresher.IdleSeconds) * time.Second,
		},
		MaxDepth: cfg.Import.MaxDepth,
		Logger:   logger,
	})
	s.Rebuild()
	return s, nil
}

// Close releases the name cache.
func (s *Shelf) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}
