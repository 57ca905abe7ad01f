package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSteam(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateNameCache(); err != nil {
		return err
	}
	if err := c.validateRefresher(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSteam() error {
	if c.Steam.Path == "" {
		return errors.New("steam.path must be set")
	}
	if c.ScriptDir() == c.ManifestDir() {
		return fmt.Errorf("steam.script_dir and steam.manifest_dir must differ (both %q)", c.ScriptDir())
	}
	return nil
}

func (c *Config) validateCatalog() error {
	parsed, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("catalog.base_url %q is not an absolute URL", c.Catalog.BaseURL)
	}
	if c.Catalog.AttemptTimeoutSeconds <= 0 {
		return errors.New("catalog.attempt_timeout_seconds must be positive")
	}
	if c.Catalog.MaxAttempts <= 0 {
		return errors.New("catalog.max_attempts must be positive")
	}
	if c.Catalog.RetryPauseMillis < 0 {
		return errors.New("catalog.retry_pause_millis must not be negative")
	}
	return nil
}

func (c *Config) validateNameCache() error {
	switch c.NameCache.Backend {
	case BackendJSON, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("name_cache.backend: unsupported value %q (want %q or %q)", c.NameCache.Backend, BackendJSON, BackendSQLite)
	}
}

func (c *Config) validateRefresher() error {
	if c.Refresher.BatchSize <= 0 {
		return errors.New("refresher.batch_size must be positive")
	}
	if c.Refresher.PaceMillis < 0 {
		return errors.New("refresher.pace_millis must not be negative")
	}
	if c.Refresher.IdleSeconds <= 0 {
		return errors.New("refresher.idle_seconds must be positive")
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.MaxDepth <= 0 {
		return errors.New("import.max_depth must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notify.NtfyTopic != "" {
		parsed, err := url.Parse(c.Notify.NtfyTopic)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("notifications.ntfy_topic %q is not an absolute URL", c.Notify.NtfyTopic)
		}
	}
	if c.Notify.RequestTimeoutSeconds <= 0 {
		return errors.New("notifications.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
