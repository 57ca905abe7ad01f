package preflight

import (
	"context"

	"steamdrop/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Blocking reports whether a failed result should stop the daemon.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Optional
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckSteamInstall(cfg.Steam.Path),
		CheckDirectoryAccess("Script directory", cfg.ScriptDir()),
		CheckDirectoryAccess("Manifest directory", cfg.ManifestDir()),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckNameCache(cfg.NameCache.Backend, cfg.NameCache.Path),
	}

	if cfg.Import.InboxDir != "" {
		inbox := CheckDirectoryAccess("Inbox", cfg.Import.InboxDir)
		inbox.Optional = true
		results = append(results, inbox)
	}

	results = append(results,
		CheckAccount(cfg.Steam.Path),
		CheckCatalog(ctx, cfg.Catalog),
	)
	return results
}

// Failed returns the blocking failures in results.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Blocking() {
			failed = append(failed, r)
		}
	}
	return failed
}
