package config

import (
	"fmt"
	"os"
	"strings"

	"steamdrop/internal/steam"
)

func (c *Config) normalize() error {
	if err := c.normalizeSteam(); err != nil {
		return err
	}
	c.normalizeCatalog()
	if err := c.normalizeNameCache(); err != nil {
		return err
	}
	if err := c.normalizeImport(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Notify.NtfyTopic = strings.TrimSpace(c.Notify.NtfyTopic)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeSteam() error {
	if value, ok := os.LookupEnv(SteamPathEnv); ok && strings.TrimSpace(value) != "" {
		c.Steam.Path = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Steam.Path) == "" {
		if detected, ok := steam.DetectInstall(); ok {
			c.Steam.Path = detected
		} else {
			c.Steam.Path = defaultSteamPath
		}
	}
	var err error
	if c.Steam.Path, err = expandPath(strings.TrimSpace(c.Steam.Path)); err != nil {
		return fmt.Errorf("steam.path: %w", err)
	}
	if c.Steam.ScriptDir, err = expandPath(strings.TrimSpace(c.Steam.ScriptDir)); err != nil {
		return fmt.Errorf("steam.script_dir: %w", err)
	}
	if c.Steam.ManifestDir, err = expandPath(strings.TrimSpace(c.Steam.ManifestDir)); err != nil {
		return fmt.Errorf("steam.manifest_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.BaseURL = strings.TrimSpace(c.Catalog.BaseURL)
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	c.Catalog.Country = strings.ToLower(strings.TrimSpace(c.Catalog.Country))
	c.Catalog.Language = strings.ToLower(strings.TrimSpace(c.Catalog.Language))
	c.Catalog.UserAgent = strings.TrimSpace(c.Catalog.UserAgent)
	if c.Catalog.UserAgent == "" {
		c.Catalog.UserAgent = defaultCatalogUserAgent
	}
}

func (c *Config) normalizeNameCache() error {
	c.NameCache.Backend = strings.ToLower(strings.TrimSpace(c.NameCache.Backend))
	if c.NameCache.Backend == "" {
		c.NameCache.Backend = BackendJSON
	}
	if strings.TrimSpace(c.NameCache.Path) == "" {
		c.NameCache.Path = defaultNameCachePath(c.NameCache.Backend)
	}
	var err error
	if c.NameCache.Path, err = expandPath(c.NameCache.Path); err != nil {
		return fmt.Errorf("name_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeImport() error {
	var err error
	if c.Import.InboxDir, err = expandPath(strings.TrimSpace(c.Import.InboxDir)); err != nil {
		return fmt.Errorf("import.inbox_dir: %w", err)
	}
	if c.Import.DebounceMillis <= 0 {
		c.Import.DebounceMillis = defaultImportDebounceMillis
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
