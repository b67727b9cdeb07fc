package watcher

import "time"

// EventType classifies a change in the watched tree.
type EventType int

const (
	// EventAdded means a new file has fully arrived and is safe to read.
	EventAdded EventType = iota
	// EventModified means an existing file changed and has settled again.
	EventModified
	// EventRemoved means a file disappeared from the watched tree.
	EventRemoved
	// EventMoved means a file changed paths within the watched tree.
	EventMoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	case EventMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// Event describes one settled change. Size and ModTime are captured at the
// moment the file stopped changing, so consumers can hash and register the
// file without re-statting it first.
type Event struct {
	Type EventType

	// Path is the file's current location.
	Path string

	// OldPath is the previous location, set only for moves.
	OldPath string

	// Inode identifies the file across renames on platforms that expose it.
	Inode uint64

	Size    int64
	ModTime time.Time
}
