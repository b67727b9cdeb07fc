package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventAdded, "added"},
		{EventModified, "modified"},
		{EventRemoved, "removed"},
		{EventMoved, "moved"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eventType.String())
		})
	}
}

func TestEvent_Creation(t *testing.T) {
	now := time.Now()
	event := Event{
		Type:    EventAdded,
		Path:    "/staging/incoming/sunset.jpg",
		Inode:   12345,
		Size:    1024,
		ModTime: now,
	}

	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, "/staging/incoming/sunset.jpg", event.Path)
	assert.Equal(t, uint64(12345), event.Inode)
	assert.Equal(t, int64(1024), event.Size)
	assert.Equal(t, now, event.ModTime)
}

func TestEvent_MoveEvent(t *testing.T) {
	event := Event{
		Type:    EventMoved,
		Path:    "/staging/sorted/sunset.jpg",
		OldPath: "/staging/incoming/sunset.jpg",
		Inode:   12345,
	}

	assert.Equal(t, EventMoved, event.Type)
	assert.Equal(t, "/staging/sorted/sunset.jpg", event.Path)
	assert.Equal(t, "/staging/incoming/sunset.jpg", event.OldPath)
	assert.Equal(t, uint64(12345), event.Inode)
}
