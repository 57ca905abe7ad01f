package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Steam locates the Steam installation and the two destination directories.
type Steam struct {
	Path        string `toml:"path"`
	ScriptDir   string `toml:"script_dir"`   // Default: <path>/config/stplug-in
	ManifestDir string `toml:"manifest_dir"` // Default: <path>/depotcache
}

// Catalog configures the remote store lookup used for display names.
type Catalog struct {
	BaseURL               string `toml:"base_url"`
	Country               string `toml:"country"`
	Language              string `toml:"language"`
	UserAgent             string `toml:"user_agent"`
	AttemptTimeoutSeconds int    `toml:"attempt_timeout_seconds"`
	MaxAttempts           int    `toml:"max_attempts"`
	RetryPauseMillis      int    `toml:"retry_pause_millis"`
}

// NameCache selects the persistent id -> name cache backend.
type NameCache struct {
	Backend string `toml:"backend"` // "json" or "sqlite"
	Path    string `toml:"path"`
}

// Refresher controls the background name resolution loop.
type Refresher struct {
	BatchSize   int `toml:"batch_size"`
	PaceMillis  int `toml:"pace_millis"`
	IdleSeconds int `toml:"idle_seconds"`
}

// Import controls how dropped paths are walked.
type Import struct {
	MaxDepth        int    `toml:"max_depth"`
	InboxDir        string `toml:"inbox_dir"`
	DebounceMillis  int    `toml:"debounce_millis"`
	RemoveAfterCopy bool   `toml:"remove_after_copy"`
}

// Paths contains directories owned by steamdrop itself.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Notifications configures optional ntfy push messages from the daemon.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for steamdrop.
//
// Configuration sections by subsystem:
//   - Steam: installation path and destination directories
//   - Catalog: store lookup endpoint, timeouts, and retry policy
//   - NameCache: persisted id -> name mapping
//   - Refresher: background resolution batch and pacing
//   - Import: walk depth and the watched inbox
//   - Paths: state and log directories
//   - Notifications: ntfy topic for daemon events
//   - Logging: log format and level
type Config struct {
	Steam     Steam         `toml:"steam"`
	Catalog   Catalog       `toml:"catalog"`
	NameCache NameCache     `toml:"name_cache"`
	Refresher Refresher     `toml:"refresher"`
	Import    Import        `toml:"import"`
	Paths     Paths         `toml:"paths"`
	Notify    Notifications `toml:"notifications"`
	Logging   Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("steamdrop.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ScriptDir returns the destination directory for script files.
func (c *Config) ScriptDir() string {
	if dir := strings.TrimSpace(c.Steam.ScriptDir); dir != "" {
		return dir
	}
	return filepath.Join(c.Steam.Path, "config", "stplug-in")
}

// ManifestDir returns the destination directory for manifest files.
func (c *Config) ManifestDir() string {
	if dir := strings.TrimSpace(c.Steam.ManifestDir); dir != "" {
		return dir
	}
	return filepath.Join(c.Steam.Path, "depotcache")
}

// LockPath returns the single-instance lock file used by the run loop.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "steamdrop.lock")
}

// EnsureDirectories creates the state and log directories. The Steam
// destinations are created on a best-effort basis so commands keep working
// while the Steam library sits on unmounted storage.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	_ = os.MkdirAll(c.ScriptDir(), 0o755)
	_ = os.MkdirAll(c.ManifestDir(), 0o755)
	if strings.TrimSpace(c.Import.InboxDir) != "" {
		if err := os.MkdirAll(c.Import.InboxDir, 0o755); err != nil {
			return fmt.Errorf("create inbox directory %q: %w", c.Import.InboxDir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultNameCachePath(backend string) string {
	name := "name_cache.json"
	if backend == BackendSQLite {
		name = "name_cache.db"
	}
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "steamdrop", name)
	}
	return "~/.cache/steamdrop/" + name
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
