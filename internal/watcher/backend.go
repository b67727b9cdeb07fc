package watcher

import "context"

// backend is the platform-specific watch implementation. The Linux build
// talks to inotify directly so a file is reported only once the uploader
// has closed it; every other platform goes through fsnotify with settle
// debouncing.
type backend interface {
	// Watch monitors a file or directory. Directories are watched
	// recursively.
	Watch(path string) error

	// Start blocks delivering events until ctx is cancelled or Stop is
	// called.
	Start(ctx context.Context) error

	// Stop releases the watch descriptors and closes the channels.
	Stop() error

	Events() <-chan Event
	Errors() <-chan error
}
