package config

const (
	defaultConfigPath            = "~/.config/steamdrop/config.toml"
	defaultSteamPath             = "~/.steam/steam"
	defaultCatalogBaseURL        = "https://store.steampowered.com/api/appdetails"
	defaultCatalogCountry        = "us"
	defaultCatalogLanguage       = "en"
	defaultCatalogUserAgent      = "Mozilla/5.0"
	defaultAttemptTimeoutSeconds = 6
	defaultMaxAttempts           = 3
	defaultRetryPauseMillis      = 350
	defaultRefresherBatchSize    = 8
	defaultRefresherPaceMillis   = 250
	defaultRefresherIdleSeconds  = 2
	defaultImportMaxDepth        = 6
	defaultImportDebounceMillis  = 750
	defaultStateDir              = "~/.local/share/steamdrop"
	defaultLogDir                = "~/.local/share/steamdrop/logs"
	defaultNtfyTimeoutSeconds    = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"

	// BackendJSON stores the name cache as a single JSON object.
	BackendJSON = "json"
	// BackendSQLite stores the name cache in a SQLite database.
	BackendSQLite = "sqlite"

	// SteamPathEnv overrides steam.path when set.
	SteamPathEnv = "STEAMDROP_STEAM_PATH"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Catalog: Catalog{
			BaseURL:               defaultCatalogBaseURL,
			Country:               defaultCatalogCountry,
			Language:              defaultCatalogLanguage,
			UserAgent:             defaultCatalogUserAgent,
			AttemptTimeoutSeconds: defaultAttemptTimeoutSeconds,
			MaxAttempts:           defaultMaxAttempts,
			RetryPauseMillis:      defaultRetryPauseMillis,
		},
		NameCache: NameCache{
			Backend: BackendJSON,
		},
		Refresher: Refresher{
			BatchSize:   defaultRefresherBatchSize,
			PaceMillis:  defaultRefresherPaceMillis,
			IdleSeconds: defaultRefresherIdleSeconds,
		},
		Import: Import{
			MaxDepth:       defaultImportMaxDepth,
			DebounceMillis: defaultImportDebounceMillis,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Notify: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
