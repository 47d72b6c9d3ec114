package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent is the last filesystem change seen in a debounce window.
type ChangeEvent struct {
	Path string
	Op   string
}

// FSWatcher watches directories rather than files, so atomic saves that
// replace the inode keep being observed.
type FSWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	filter   NameFilter
	onChange func(ChangeEvent)
	logger   *slog.Logger
}

func NewFSWatcher(debounce time.Duration, filter NameFilter, onChange func(ChangeEvent)) (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 250 * time.Millisecond
	}
	return &FSWatcher{
		watcher:  w,
		debounce: debounce,
		filter:   filter,
		onChange: onChange,
		logger:   slog.Default(),
	}, nil
}

// WithLogger replaces the default logger.
func (w *FSWatcher) WithLogger(l *slog.Logger) *FSWatcher {
	w.logger = l
	return w
}

func (w *FSWatcher) Add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// Close releases the fsnotify watcher. Run closes it on return, so Close is
// only needed when Run is never started.
func (w *FSWatcher) Close() error {
	return w.watcher.Close()
}

// Run blocks until ctx is cancelled. Watcher errors are logged and the loop
// keeps going.
func (w *FSWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	changes := newCoalescer(w.debounce, func(ev ChangeEvent) {
		if w.onChange != nil {
			w.onChange(ev)
		}
	})
	defer changes.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			op := opName(event.Op)
			if op == "" || !w.filter.Matches(event.Name) {
				continue
			}
			changes.Push(ChangeEvent{Path: event.Name, Op: op})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch: fsnotify error", "err", err)
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
