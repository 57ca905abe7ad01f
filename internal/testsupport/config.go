package testsupport

import (
	"path/filepath"
	"testing"

	"steamdrop/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a fresh temp directory: a fake Steam
// install under steam/, state and logs alongside it, and a JSON name cache.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Steam.Path = filepath.Join(base, "steam")
	cfgVal.NameCache.Path = filepath.Join(base, "cache", "name_cache.json")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.RetryPauseMillis = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCatalogURL points the catalog at a test server.
func WithCatalogURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.BaseURL = url
	}
}

// WithSQLiteCache switches the name cache to the SQLite backend.
func WithSQLiteCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.NameCache.Backend = config.BackendSQLite
		b.cfg.NameCache.Path = filepath.Join(b.baseDir, "cache", "name_cache.db")
	}
}

// WithInbox enables the watched inbox under the temp root.
func WithInbox() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.InboxDir = filepath.Join(b.baseDir, "inbox")
		b.cfg.Import.DebounceMillis = 20
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Steam.Path)
}
