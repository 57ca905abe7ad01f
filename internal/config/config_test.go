package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"steamdrop/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv(config.SteamPathEnv, "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantSteam := filepath.Join(tempHome, ".steam", "steam")
	if cfg.Steam.Path != wantSteam {
		t.Fatalf("unexpected steam path: got %q want %q", cfg.Steam.Path, wantSteam)
	}
	if cfg.ScriptDir() != filepath.Join(wantSteam, "config", "stplug-in") {
		t.Fatalf("unexpected script dir: %q", cfg.ScriptDir())
	}
	if cfg.ManifestDir() != filepath.Join(wantSteam, "depotcache") {
		t.Fatalf("unexpected manifest dir: %q", cfg.ManifestDir())
	}
	if cfg.NameCache.Path != filepath.Join(tempHome, ".cache", "steamdrop", "name_cache.json") {
		t.Fatalf("unexpected name cache path: %q", cfg.NameCache.Path)
	}
	if cfg.Catalog.MaxAttempts != 3 || cfg.Catalog.RetryPauseMillis != 350 || cfg.Catalog.AttemptTimeoutSeconds != 6 {
		t.Fatalf("unexpected catalog retry defaults: %+v", cfg.Catalog)
	}
	if cfg.Refresher.BatchSize != 8 || cfg.Refresher.PaceMillis != 250 || cfg.Refresher.IdleSeconds != 2 {
		t.Fatalf("unexpected refresher defaults: %+v", cfg.Refresher)
	}
	if cfg.Import.MaxDepth != 6 {
		t.Fatalf("unexpected import depth: %d", cfg.Import.MaxDepth)
	}
}

func TestLoadDetectsSteamInstall(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.SteamPathEnv, "")

	install := filepath.Join(tempHome, ".local", "share", "Steam")
	if err := os.MkdirAll(install, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Steam.Path != install {
		t.Fatalf("expected detected install %q, got %q", install, cfg.Steam.Path)
	}
}

func TestLoadEnvOverridesSteamPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	override := filepath.Join(tempHome, "games", "Steam")
	t.Setenv(config.SteamPathEnv, override)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Steam.Path != override {
		t.Fatalf("expected env override %q, got %q", override, cfg.Steam.Path)
	}
}

func TestLoadFromFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.SteamPathEnv, "")

	cfgVal := config.Default()
	cfgVal.Steam.Path = "~/steam-root"
	cfgVal.Steam.ManifestDir = "~/manifests"
	cfgVal.NameCache.Backend = "SQLite"
	cfgVal.Refresher.BatchSize = 4
	cfgVal.Logging.Format = "JSON"

	data, err := toml.Marshal(cfgVal)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(tempHome, "custom.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Steam.Path != filepath.Join(tempHome, "steam-root") {
		t.Fatalf("unexpected steam path: %q", cfg.Steam.Path)
	}
	if cfg.ManifestDir() != filepath.Join(tempHome, "manifests") {
		t.Fatalf("expected manifest override, got %q", cfg.ManifestDir())
	}
	if cfg.ScriptDir() != filepath.Join(tempHome, "steam-root", "config", "stplug-in") {
		t.Fatalf("unexpected script dir: %q", cfg.ScriptDir())
	}
	if cfg.NameCache.Backend != config.BackendSQLite {
		t.Fatalf("expected normalized backend, got %q", cfg.NameCache.Backend)
	}
	if !strings.HasSuffix(cfg.NameCache.Path, "name_cache.db") {
		t.Fatalf("expected sqlite cache path, got %q", cfg.NameCache.Path)
	}
	if cfg.Refresher.BatchSize != 4 {
		t.Fatalf("expected batch size 4, got %d", cfg.Refresher.BatchSize)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.NameCache.Backend = "redis" }, "name_cache.backend"},
		{"attempts", func(c *config.Config) { c.Catalog.MaxAttempts = 0 }, "catalog.max_attempts"},
		{"timeout", func(c *config.Config) { c.Catalog.AttemptTimeoutSeconds = -1 }, "catalog.attempt_timeout_seconds"},
		{"base url", func(c *config.Config) { c.Catalog.BaseURL = "not a url" }, "catalog.base_url"},
		{"batch", func(c *config.Config) { c.Refresher.BatchSize = 0 }, "refresher.batch_size"},
		{"depth", func(c *config.Config) { c.Import.MaxDepth = 0 }, "import.max_depth"},
		{"same dirs", func(c *config.Config) {
			c.Steam.ScriptDir = "/tmp/shared"
			c.Steam.ManifestDir = "/tmp/shared"
		}, "must differ"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Steam.Path = "/opt/steam"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesDestinations(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Steam.Path = filepath.Join(base, "steam")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Import.InboxDir = filepath.Join(base, "inbox")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.ScriptDir(), cfg.ManifestDir(), cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Import.InboxDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.SteamPathEnv, "")

	path := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
