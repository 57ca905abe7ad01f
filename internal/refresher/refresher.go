// Package refresher resolves placeholder names in the background.
//
// Each cycle takes up to BatchSize placeholder ids from the library, skipping
// ids the resolver has already given up on, resolves them one at a time with
// a pause between ids, and writes real names back.
// When nothing is pending, or a whole batch produced no new name, the loop
// waits for the idle interval or a Wake call. The refresher only ever changes
// names; membership belongs to rebuilds.
package refresher

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"steamdrop/internal/appid"
	"steamdrop/internal/logging"
)

const (
	DefaultBatchSize = 8
	DefaultPace      = 250 * time.Millisecond
	DefaultIdle      = 2 * time.Second
)

// Resolver returns a display name or the placeholder for an id.
// Unresolvable reports ids whose lookups already failed for good; they are
// skipped until something clears that record.
type Resolver interface {
	Resolve(ctx context.Context, id string) string
	Unresolvable(id string) bool
}

// Library is the subset of the index the refresher touches.
type Library interface {
	Placeholders() []string
	SetName(id, name string) bool
}

// Options tunes batching and pacing. Zero values select the defaults.
type Options struct {
	BatchSize int
	Pace      time.Duration
	Idle      time.Duration
}

// Refresher drives background resolution.
type Refresher struct {
	library  Library
	resolver Resolver
	opts     Options
	logger   *slog.Logger
	wake     chan struct{}

	resolved atomic.Int64
	cycles   atomic.Int64
}

// New constructs a refresher.
func New(lib Library, resolver Resolver, opts Options, logger *slog.Logger) *Refresher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Pace < 0 {
		opts.Pace = 0
	}
	if opts.Idle <= 0 {
		opts.Idle = DefaultIdle
	}
	return &Refresher{
		library:  lib,
		resolver: resolver,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "refresher"),
		wake:     make(chan struct{}, 1),
	}
}

// Wake ends the current idle wait early. It never blocks.
func (r *Refresher) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Stats reports lifetime counters.
type Stats struct {
	Cycles   int64
	Resolved int64
}

// Stats returns a snapshot of the counters.
func (r *Refresher) Stats() Stats {
	return Stats{Cycles: r.cycles.Load(), Resolved: r.resolved.Load()}
}

// Run loops until ctx is cancelled and then returns ctx.Err().
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started",
		logging.Int("batch_size", r.opts.BatchSize),
		logging.Duration("pace", r.opts.Pace),
		logging.Duration("idle", r.opts.Idle))
	defer r.logger.Info("refresher stopped", logging.Int64("resolved", r.resolved.Load()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pending := r.candidates()
		if len(pending) == 0 {
			r.waitIdle(ctx)
			continue
		}
		// Ids the resolver cannot name stay placeholders; idle instead of
		// spinning on them.
		if r.runBatch(ctx, pending) == 0 {
			r.waitIdle(ctx)
		}
	}
}

// RunOnce processes a single batch and returns how many names were updated.
func (r *Refresher) RunOnce(ctx context.Context) int {
	pending := r.candidates()
	if len(pending) == 0 {
		return 0
	}
	return r.runBatch(ctx, pending)
}

// candidates lists placeholder ids that are still worth a lookup, in
// library order.
func (r *Refresher) candidates() []string {
	placeholders := r.library.Placeholders()
	out := placeholders[:0:0]
	for _, id := range placeholders {
		if !r.resolver.Unresolvable(id) {
			out = append(out, id)
		}
	}
	return out
}

func (r *Refresher) runBatch(ctx context.Context, pending []string) int {
	r.cycles.Add(1)
	batch := pending
	if len(batch) > r.opts.BatchSize {
		batch = batch[:r.opts.BatchSize]
	}
	r.logger.Debug("resolving batch",
		logging.Int("batch", len(batch)),
		logging.Int("pending", len(pending)))

	updated := 0
	for i, id := range batch {
		if ctx.Err() != nil {
			break
		}
		name := r.resolver.Resolve(ctx, id)
		if !appid.IsPlaceholder(id, name) && r.library.SetName(id, name) {
			updated++
			r.resolved.Add(1)
		}
		if i < len(batch)-1 && !r.pause(ctx, r.opts.Pace) {
			break
		}
	}
	return updated
}

// pause waits d and reports whether the loop should continue.
func (r *Refresher) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *Refresher) waitIdle(ctx context.Context) {
	timer := time.NewTimer(r.opts.Idle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-r.wake:
	case <-timer.C:
	}
}
