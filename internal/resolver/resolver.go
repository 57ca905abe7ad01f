// Package resolver turns app ids into display names using a persistent
// name cache in front of the store catalog.
//
// A cached non-empty name is returned without touching the network. A cached
// empty name is a confirmed failure and yields the placeholder unless the
// caller forces a new attempt. Concurrent calls for the same id, forced or
// not, share one in-flight resolution.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"steamdrop/internal/appid"
	"steamdrop/internal/catalog"
	"steamdrop/internal/logging"
	"steamdrop/internal/namecache"
)

const (
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 6 * time.Second
	DefaultRetryPause     = 350 * time.Millisecond
)

// Options tunes the retry policy. Zero values select the defaults.
type Options struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryPause     time.Duration
}

// Resolver resolves ids through the cache and catalog.
type Resolver struct {
	cache   namecache.Store
	catalog catalog.Looker
	logger  *slog.Logger
	opts    Options
	group   singleflight.Group

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a resolver around cache and looker.
func New(cache namecache.Store, looker catalog.Looker, opts Options, logger *slog.Logger) *Resolver {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.RetryPause < 0 {
		opts.RetryPause = 0
	}
	return &Resolver{
		cache:   cache,
		catalog: looker,
		logger:  logging.NewComponentLogger(logger, "resolver"),
		opts:    opts,
		sleep:   sleepContext,
	}
}

// Resolve returns the display name for id, or its placeholder when the id
// cannot be resolved.
func (r *Resolver) Resolve(ctx context.Context, id string) string {
	return r.resolve(ctx, id, false)
}

// ForceResolve ignores a negative cache entry and queries the catalog again.
// A cached non-empty name is still returned as-is.
func (r *Resolver) ForceResolve(ctx context.Context, id string) string {
	return r.resolve(ctx, id, true)
}

// Unresolvable reports whether id carries a negative cache entry.
func (r *Resolver) Unresolvable(id string) bool {
	name, found := r.cache.Lookup(id)
	return found && name == ""
}

// outcome is the shared result of one in-flight resolution.
type outcome struct {
	name      string
	cancelled bool
}

func (r *Resolver) resolve(ctx context.Context, id string, force bool) string {
	if name, found := r.cache.Lookup(id); found {
		if name != "" {
			return name
		}
		if !force {
			return appid.Placeholder(id)
		}
	}

	// Forced and plain calls share the id key, so at most one attempt loop
	// runs per id. The loop runs under the context of the caller that started
	// it; a joined caller whose own context is still live starts a new flight
	// when that one was cancelled.
	for {
		ch := r.group.DoChan(id, func() (any, error) {
			return r.fetch(ctx, id), nil
		})
		select {
		case <-ctx.Done():
			return appid.Placeholder(id)
		case res := <-ch:
			out := res.Val.(outcome)
			if out.cancelled && ctx.Err() == nil {
				continue
			}
			return out.name
		}
	}
}

// fetch runs the attempt loop and records the outcome. It re-checks the cache
// so a caller that queued behind a completed resolution does not repeat it.
func (r *Resolver) fetch(ctx context.Context, id string) outcome {
	if name, found := r.cache.Lookup(id); found && name != "" {
		return outcome{name: name}
	}
	cancelled := outcome{name: appid.Placeholder(id), cancelled: true}

	var lastErr error
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			// Cancellation is not a confirmed failure; leave the cache alone.
			return cancelled
		}
		name, err := r.attempt(ctx, id)
		if err == nil {
			r.store(id, name)
			r.logger.Info("resolved app name",
				logging.AppID(id),
				logging.String("name", name),
				logging.Int("attempt", attempt))
			return outcome{name: name}
		}
		if ctx.Err() != nil {
			return cancelled
		}
		lastErr = err
		r.logger.Debug("catalog attempt failed",
			logging.AppID(id),
			logging.Int("attempt", attempt),
			logging.Error(err))

		if attempt < r.opts.MaxAttempts {
			if err := r.sleep(ctx, r.opts.RetryPause); err != nil {
				return cancelled
			}
		}
	}

	r.store(id, "")
	attrs := []logging.Attr{
		logging.AppID(id),
		logging.Int("attempts", r.opts.MaxAttempts),
		logging.String(logging.FieldErrorHint, "use resolve --force once the store lists the app"),
		logging.String(logging.FieldImpact, "the app keeps its placeholder name"),
	}
	if lastErr != nil {
		attrs = append(attrs, logging.Error(lastErr))
	}
	logging.WarnWithContext(r.logger, "app name unresolved", "resolve_exhausted", attrs...)
	return outcome{name: appid.Placeholder(id)}
}

func (r *Resolver) attempt(ctx context.Context, id string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.opts.AttemptTimeout)
	defer cancel()
	name, err := r.catalog.AppName(attemptCtx, id)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", catalog.ErrNotFound
	}
	return name, nil
}

func (r *Resolver) store(id, name string) {
	if err := r.cache.Store(id, name); err != nil {
		logging.WarnWithContext(r.logger, "failed to persist app name", "namecache_store_failed",
			logging.AppID(id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the lookup will be repeated next run"))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

