package devreload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// Option customises a watch.
type Option func(*watcher)

// WithDebounce overrides DefaultDebounce. Zero delivers every event.
func WithDebounce(d time.Duration) Option {
	return func(w *watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(logger *log.Logger) Option {
	return func(w *watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

type watcher struct {
	debounce time.Duration
	logger   *log.Logger
}

// Watch calls onChange with the changed path whenever a file under path is
// written, created, removed or renamed. path may be a directory or a single
// file; for a file its parent directory is watched so editors that replace
// the file on save keep triggering. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(string), options ...Option) error {
	if onChange == nil {
		return errors.New("devreload: onChange is required")
	}
	w := &watcher{debounce: DefaultDebounce, logger: log.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}

	target, filter, err := resolveTarget(path)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("devreload: create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(target); err != nil {
		return fmt.Errorf("devreload: watch %s: %w", target, err)
	}

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) || (filter != "" && filepath.Clean(event.Name) != filter) {
				continue
			}
			if w.debounce == 0 {
				onChange(event.Name)
				continue
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			onChange(pending)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("devreload: fsnotify error: %v", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}
