package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"steamdrop/internal/classify"
	"steamdrop/internal/config"
	"steamdrop/internal/importer"
	"steamdrop/internal/library"
	"steamdrop/internal/logging"
	"steamdrop/internal/notifications"
	"steamdrop/internal/refresher"
	"steamdrop/internal/shelf"
	"steamdrop/internal/watcher"
)

// Daemon runs the refresher and inbox watcher for one shelf.
type Daemon struct {
	cfg    *config.Config
	shelf  *shelf.Shelf
	notify notifications.Service
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	unsub   func()
	started time.Time
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Entries      int
	Pending      int
	Refresher    refresher.Stats
	InboxDir     string
	LockFilePath string
	Uptime       time.Duration
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, s *shelf.Shelf, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || s == nil {
		return nil, errors.New("daemon requires config and shelf")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		shelf:    s,
		notify:   notifications.NewService(cfg),
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another steamdrop instance is already running")
	}

	var w *watcher.Watcher
	if inbox := d.cfg.Import.InboxDir; inbox != "" {
		w, err = watcher.New(watcher.Options{
			Dir:             inbox,
			Debounce:        time.Duration(d.cfg.Import.DebounceMillis) * time.Millisecond,
			RemoveAfterCopy: d.cfg.Import.RemoveAfterCopy,
		}, d.importInbox, d.logger)
		if err != nil {
			_ = d.lock.Unlock()
			return fmt.Errorf("create inbox watcher: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.started = time.Now()
	d.unsub = d.shelf.Subscribe(d.logChange)

	entries := d.shelf.Rebuild()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.shelf.Refresher().Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("refresher exited", logging.Error(err))
		}
	}()

	if w != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logging.WarnWithContext(d.logger, "inbox watcher stopped", "watcher_stopped",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that the inbox directory exists and is readable"),
					logging.String(logging.FieldImpact, "files dropped into the inbox are not imported"))
				d.publish(context.WithoutCancel(runCtx), notifications.EventError, notifications.Payload{
					"context": "inbox watcher",
					"error":   err,
				})
			}
		}()
	}

	d.running.Store(true)
	d.logger.Info("steamdrop daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("entries", entries),
		logging.Bool("inbox", w != nil))
	return nil
}

// Stop cancels the loops, waits for them, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if d.unsub != nil {
		d.unsub()
		d.unsub = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("steamdrop daemon stopped")
}

// Close stops the daemon and releases the shelf.
func (d *Daemon) Close() error {
	d.Stop()
	return d.shelf.Close()
}

// Status returns a snapshot of runtime information.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		Entries:      len(d.shelf.Entries()),
		Pending:      len(d.shelf.Placeholders()),
		Refresher:    d.shelf.Refresher().Stats(),
		InboxDir:     d.cfg.Import.InboxDir,
		LockFilePath: d.lockPath,
	}
	if status.Running {
		status.Uptime = time.Since(d.started)
	}
	return status
}

func (d *Daemon) logChange(change library.Change) {
	switch change.Kind {
	case library.ChangeName:
		d.logger.Info("app name resolved",
			logging.AppID(change.ID),
			logging.String("name", change.Name))
	case library.ChangeRebuilt:
		d.logger.Info("library updated",
			logging.Int("entries", len(d.shelf.Entries())),
			logging.Int("pending", len(d.shelf.Placeholders())))
	}
}

// importInbox imports paths found in the inbox and reports the outcome.
func (d *Daemon) importInbox(ctx context.Context, paths []string) importer.Result {
	result := d.shelf.Import(ctx, paths)

	if copied := len(result.Copied); copied > 0 {
		source := ""
		if len(paths) == 1 {
			source = paths[0]
		}
		d.publish(ctx, notifications.EventImportCompleted, notifications.Payload{
			"scripts":   result.Count(classify.KindScript),
			"manifests": result.Count(classify.KindManifest),
			"source":    source,
		})
	}
	if failed := len(result.Errors); failed > 0 {
		d.publish(ctx, notifications.EventImportFailed, notifications.Payload{
			"failed": failed,
			"detail": result.Errors[0].Error(),
		})
	}
	return result
}

func (d *Daemon) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := d.notify.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(d.logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "the event is only recorded in the log"))
	}
}
