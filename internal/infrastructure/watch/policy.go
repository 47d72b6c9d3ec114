package watch

import (
	"context"
	"log/slog"
	"time"
)

var newPolicyWatcher = NewFSWatcher

// PolicyReloader re-reads the policy and activates it. It must keep the
// previous policy when the new one is invalid.
type PolicyReloader interface {
	Reload() error
}

// WatchPolicy reloads the policy whenever file changes inside dir. It runs
// until ctx is cancelled.
func WatchPolicy(ctx context.Context, dir, file string, reloader PolicyReloader, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := newPolicyWatcher(250*time.Millisecond, NameFilter{file}, func(ev ChangeEvent) {
		if err := reloader.Reload(); err != nil {
			logger.Error("policy: reload failed, keeping previous policy", "path", ev.Path, "err", err)
			return
		}
		logger.Info("policy: reloaded", "path", ev.Path, "op", ev.Op)
	})
	if err != nil {
		return err
	}
	w.WithLogger(logger)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}

	logger.Info("policy: watching for changes", "dir", dir, "file", file)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
