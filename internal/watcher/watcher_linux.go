//go:build linux

package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linuxBackend watches with raw inotify. IN_CLOSE_WRITE means the kernel
// reports a file only after its writer closed it, so no settle timer is
// needed: an event is an upload that finished.
type linuxBackend struct {
	logger  *slog.Logger
	watches map[string]int
	wdPaths map[int]string
	events  chan Event
	errors  chan error
	done    chan struct{}
	opts    Options
	wg      sync.WaitGroup
	fd      int
	mu      sync.RWMutex
}

func newLinuxBackend(logger *slog.Logger, opts Options) (*linuxBackend, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}

	return &linuxBackend{
		logger:  logger,
		opts:    opts,
		fd:      fd,
		watches: make(map[string]int),
		wdPaths: make(map[int]string),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch monitors a file or directory.
func (b *linuxBackend) Watch(path string) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat watch path: %w", err)
	}

	if info.IsDir() {
		return b.watchDir(path)
	}
	return b.watchFile(path)
}

// watchDir adds watches for a directory and everything under it, skipping
// ignored subtrees. Unreadable entries are logged and skipped so one bad
// permission does not abort the walk.
func (b *linuxBackend) watchDir(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			b.logger.Warn("cannot access path", "path", p, "error", err)
			return nil
		}

		if b.opts.shouldIgnore(p) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// inotify watches live on directories; files inherit them.
		if !info.IsDir() {
			return nil
		}

		if err := b.addWatch(p); err != nil {
			b.logger.Error("cannot add watch", "path", p, "error", err)
			return nil
		}

		return nil
	})
}

// watchFile monitors a single file through its parent directory.
func (b *linuxBackend) watchFile(path string) error {
	dir := filepath.Dir(path)
	return b.addWatch(dir)
}

// addWatch registers one directory with inotify. Adding a path twice is a
// no-op.
func (b *linuxBackend) addWatch(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.watches[path]; exists {
		return nil
	}

	// IN_CLOSE_WRITE: a writer finished with a file.
	// IN_MOVED_TO: a finished file was moved in.
	// IN_CREATE: a subdirectory appeared and needs its own watch.
	// IN_DELETE / IN_MOVED_FROM: an entry left this directory.
	// IN_DELETE_SELF: the watched directory itself went away.
	mask := unix.IN_CLOSE_WRITE | unix.IN_MOVED_TO | unix.IN_CREATE | unix.IN_DELETE | unix.IN_DELETE_SELF | unix.IN_MOVED_FROM

	wd, err := unix.InotifyAddWatch(b.fd, path, uint32(mask))
	if err != nil {
		return fmt.Errorf("inotify_add_watch %s: %w", path, err)
	}

	b.watches[path] = wd
	b.wdPaths[wd] = path
	b.logger.Debug("watch added", "path", path, "wd", wd)

	return nil
}

// removeWatch drops a directory's watch. The directory may already be gone,
// so the kernel call's error is ignored.
func (b *linuxBackend) removeWatch(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wd, exists := b.watches[path]
	if !exists {
		return
	}

	//nolint:gosec // G115: wd is a small non-negative int from inotify
	_, _ = unix.InotifyRmWatch(b.fd, uint32(wd))

	delete(b.watches, path)
	delete(b.wdPaths, wd)
	b.logger.Debug("watch removed", "path", path, "wd", wd)
}

// Start blocks delivering events until ctx is cancelled.
func (b *linuxBackend) Start(ctx context.Context) error {
	b.wg.Add(1)
	go b.readEvents(ctx)

	<-ctx.Done()
	return nil
}

// readEvents drains the inotify descriptor and feeds the parser.
func (b *linuxBackend) readEvents(ctx context.Context) {
	defer b.wg.Done()

	buf := make([]byte, unix.SizeofInotifyEvent*100)

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		default:
			n, err := unix.Read(b.fd, buf)
			if err != nil {
				if err == unix.EINTR || err == unix.EAGAIN {
					continue
				}
				b.errors <- fmt.Errorf("read inotify events: %w", err)
				return
			}

			if n < unix.SizeofInotifyEvent {
				continue
			}

			b.parseEvents(buf[:n])
		}
	}
}

// parseEvents walks a buffer of packed inotify records, resolving each watch
// descriptor back to the directory it was registered for.
func (b *linuxBackend) parseEvents(buf []byte) {
	offset := 0
	for offset < len(buf) {
		//nolint:gosec // G103: required to decode the kernel's packed records
		event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
		offset += unix.SizeofInotifyEvent + int(event.Len)

		b.mu.RLock()
		dir, ok := b.wdPaths[int(event.Wd)]
		b.mu.RUnlock()

		if !ok {
			continue
		}

		name := ""
		if event.Len > 0 {
			nameBytes := buf[offset-int(event.Len) : offset]
			name = string(nameBytes[:clen(nameBytes)])
		}

		b.processEvent(filepath.Join(dir, name), event.Mask)
	}
}

// processEvent turns one inotify record into a watcher event.
func (b *linuxBackend) processEvent(path string, mask uint32) {
	if b.opts.shouldIgnore(path) {
		return
	}

	// A new subdirectory needs its own watch before anything lands in it.
	if mask&unix.IN_CREATE != 0 {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if err := b.watchDir(path); err != nil {
				b.logger.Warn("cannot watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if mask&unix.IN_DELETE != 0 {
		b.logger.Debug("entry deleted", "path", path)
		b.emitEvent(Event{
			Type: EventRemoved,
			Path: path,
		})
		return
	}

	if mask&unix.IN_DELETE_SELF != 0 {
		b.logger.Debug("watched directory deleted", "path", path)
		b.emitEvent(Event{
			Type: EventRemoved,
			Path: path,
		})
		b.removeWatch(path)
		return
	}

	if mask&unix.IN_MOVED_FROM != 0 {
		b.logger.Debug("entry moved away", "path", path)
		b.emitEvent(Event{
			Type: EventRemoved,
			Path: path,
		})
		return
	}

	// Writer closed the file, or a finished file was moved in. Either way
	// the bytes are complete.
	if mask&(unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO) != 0 {
		b.emitArrival(path)
	}
}

// emitArrival stats a completed file and publishes it.
func (b *linuxBackend) emitArrival(path string) {
	info, err := os.Stat(path)
	if err != nil {
		b.logger.Warn("cannot stat arrived file", "path", path, "error", err)
		return
	}

	if info.IsDir() {
		return
	}

	b.emitEvent(Event{
		Type:    EventAdded,
		Path:    path,
		Inode:   getInode(info.Sys()),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

func (b *linuxBackend) emitEvent(event Event) {
	select {
	case b.events <- event:
	case <-b.done:
	}
}

func (b *linuxBackend) Events() <-chan Event {
	return b.events
}

func (b *linuxBackend) Errors() <-chan error {
	return b.errors
}

// Stop closes the inotify descriptor and the channels.
func (b *linuxBackend) Stop() error {
	close(b.done)

	b.wg.Wait()

	var closeErr error
	if b.fd >= 0 {
		closeErr = unix.Close(b.fd)
	}

	close(b.events)
	close(b.errors)

	return closeErr
}

// clen returns the length of a null-terminated byte slice.
func clen(n []byte) int {
	for i := 0; i < len(n); i++ {
		if n[i] == 0 {
			return i
		}
	}
	return len(n)
}

// newFallbackBackend only exists to satisfy the compiler on Linux; New
// never selects it here.
func newFallbackBackend(_ *slog.Logger, _ Options) (backend, error) {
	return nil, fmt.Errorf("fallback backend not available on Linux")
}
