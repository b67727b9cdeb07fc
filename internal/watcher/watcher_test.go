package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	w, err := New(logger, Options{})
	require.NoError(t, err)
	require.NotNil(t, w)

	err = w.Stop()
	assert.NoError(t, err)
}

func TestWatcher_Watch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	w, err := New(logger, Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	staging := t.TempDir()
	err = w.Watch(staging)
	assert.NoError(t, err)
}

func TestWatcher_FileArrival(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	opts := Options{
		SettleDelay: 50 * time.Millisecond,
	}

	w, err := New(logger, opts)
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	staging := t.TempDir()
	err = w.Watch(staging)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Start(ctx) //nolint:errcheck // Test goroutine

	// Drop an upload into the staging area.
	payload := []byte("not really jpeg bytes")
	uploaded := filepath.Join(staging, "sunset.jpg")
	err = os.WriteFile(uploaded, payload, 0o644)
	require.NoError(t, err)

	select {
	case event := <-w.Events():
		assert.Equal(t, uploaded, event.Path)
		assert.Equal(t, int64(len(payload)), event.Size)
		assert.NotZero(t, event.Inode)
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for arrival event")
	}
}

func TestWatcher_FileDeletion(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	w, err := New(logger, Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	staging := t.TempDir()
	uploaded := filepath.Join(staging, "report.pdf")

	// The file exists before watching starts.
	err = os.WriteFile(uploaded, []byte("pdf payload"), 0o644)
	require.NoError(t, err)

	err = w.Watch(staging)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Start(ctx) //nolint:errcheck // Test goroutine

	err = os.Remove(uploaded)
	require.NoError(t, err)

	select {
	case event := <-w.Events():
		assert.Equal(t, EventRemoved, event.Type)
		assert.Equal(t, uploaded, event.Path)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for deletion event")
	}
}

func TestWatcher_IgnoreHidden(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	opts := Options{
		IgnoreHidden: true,
		SettleDelay:  50 * time.Millisecond,
	}

	w, err := New(logger, opts)
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	staging := t.TempDir()
	err = w.Watch(staging)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Start(ctx) //nolint:errcheck // Test goroutine

	// A dotfile an uploader might leave behind.
	hiddenFile := filepath.Join(staging, ".sync-state")
	err = os.WriteFile(hiddenFile, []byte("bookkeeping"), 0o644)
	require.NoError(t, err)

	// A real upload.
	uploaded := filepath.Join(staging, "logo.png")
	err = os.WriteFile(uploaded, []byte("png payload"), 0o644)
	require.NoError(t, err)

	// Only the real upload produces an event.
	select {
	case event := <-w.Events():
		assert.Equal(t, uploaded, event.Path)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event for hidden file: %+v", event)
	case <-time.After(200 * time.Millisecond):
		// Hidden file stayed silent.
	}
}
