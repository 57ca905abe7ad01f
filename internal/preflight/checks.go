package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"steamdrop/internal/catalog"
	"steamdrop/internal/config"
	"steamdrop/internal/steam"
)

// reachabilityAppID is a long-lived store entry used to test catalog reachability.
const reachabilityAppID = "10"

// CheckSteamInstall verifies that the configured Steam root exists.
func CheckSteamInstall(path string) Result {
	const name = "Steam install"
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckNameCache verifies that the cache file can be created or rewritten.
func CheckNameCache(backend, path string) Result {
	name := fmt.Sprintf("Name cache (%s)", backend)
	if path == "" {
		return Result{Name: name, Detail: "no path configured"}
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
		}
		if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	}

	// Not created yet: the nearest existing ancestor must be writable.
	dir := filepath.Dir(path)
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, dir, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckAccount reports the Steam account that was signed in most recently.
func CheckAccount(steamPath string) Result {
	const name = "Steam account"
	account, err := steam.CurrentAccount(steamPath)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	return Result{Name: name, Optional: true, Passed: true, Detail: account.DisplayName()}
}

// CheckCatalog verifies that the store catalog answers lookups. An answer
// without data still counts as reachable.
func CheckCatalog(ctx context.Context, cfg config.Catalog) Result {
	const name = "Store catalog"

	timeout := time.Duration(cfg.AttemptTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client, err := catalog.New(cfg.BaseURL, cfg.Country, cfg.Language, cfg.UserAgent,
		catalog.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := client.AppName(checkCtx, reachabilityAppID); err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return Result{Name: name, Detail: summarizeCatalogError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}

func summarizeCatalogError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "lookup timed out (catalog unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "lookup timed out (catalog unreachable)"
	}
	return err.Error()
}
