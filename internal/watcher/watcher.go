// Package watcher reports files arriving in, changing in, and leaving a
// watched directory tree. It exists so the staging area can be ingested the
// moment an upload finishes rather than on the next sweep.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
)

// Watcher delivers settled file events from the watched tree.
type Watcher struct {
	backend backend
	logger  *slog.Logger
}

// New picks the best backend for the platform: inotify with IN_CLOSE_WRITE
// on Linux, where the kernel tells us a writer has finished, and fsnotify
// with settle debouncing everywhere else.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	var (
		b   backend
		err error
	)
	if runtime.GOOS == "linux" {
		b, err = newLinuxBackend(logger, opts)
		logger.Info("watching with inotify IN_CLOSE_WRITE")
	} else {
		b, err = newFallbackBackend(logger, opts)
		logger.Info("watching with fsnotify settle debouncing", "platform", runtime.GOOS)
	}
	if err != nil {
		return nil, fmt.Errorf("create watch backend: %w", err)
	}

	return &Watcher{
		backend: b,
		logger:  logger,
	}, nil
}

// Watch monitors a file or directory. Directories are watched recursively,
// including directories created later.
func (w *Watcher) Watch(path string) error {
	return w.backend.Watch(path)
}

// Start blocks delivering events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	return w.backend.Start(ctx)
}

// Stop releases the watches and closes the event channels.
func (w *Watcher) Stop() error {
	return w.backend.Stop()
}

// Events returns the channel of settled file events.
func (w *Watcher) Events() <-chan Event {
	return w.backend.Events()
}

// Errors returns the channel of backend errors.
func (w *Watcher) Errors() <-chan error {
	return w.backend.Errors()
}
