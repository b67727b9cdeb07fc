//go:build linux

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

func TestLinuxBackend_FileArrival(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	opts := Options{
		IgnoreHidden: true,
	}
	opts.setDefaults()

	b, err := newLinuxBackend(logger, opts)
	require.NoError(t, err)
	defer b.Stop()

	staging := t.TempDir()
	err = b.Watch(staging)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	assetFile := filepath.Join(staging, "sunset.jpg")
	payload := []byte("not really jpeg bytes")
	err = os.WriteFile(assetFile, payload, 0644)
	require.NoError(t, err)

	// IN_CLOSE_WRITE fires as soon as the writer closes, no settle wait.
	select {
	case event := <-b.Events():
		assert.Equal(t, EventAdded, event.Type)
		assert.Equal(t, assetFile, event.Path)
		assert.Equal(t, int64(len(payload)), event.Size)
		assert.NotZero(t, event.Inode)
	case err := <-b.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for close-write event")
	}
}

func TestLinuxBackend_FileDeletion(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	opts := Options{}
	opts.setDefaults()

	b, err := newLinuxBackend(logger, opts)
	require.NoError(t, err)
	defer b.Stop()

	staging := t.TempDir()
	assetFile := filepath.Join(staging, "report.pdf")

	err = os.WriteFile(assetFile, []byte("pdf payload"), 0644)
	require.NoError(t, err)

	err = b.Watch(staging)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	err = os.Remove(assetFile)
	require.NoError(t, err)

	select {
	case event := <-b.Events():
		assert.Equal(t, EventRemoved, event.Type)
		assert.Equal(t, assetFile, event.Path)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for deletion event")
	}
}

func TestLinuxBackend_NewDirectoryWatching(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	opts := Options{}
	opts.setDefaults()

	b, err := newLinuxBackend(logger, opts)
	require.NoError(t, err)
	defer b.Stop()

	staging := t.TempDir()
	err = b.Watch(staging)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	batchDir := filepath.Join(staging, "shoot-2026-08")
	err = os.Mkdir(batchDir, 0755)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	assetFile := filepath.Join(batchDir, "frame-001.jpg")
	err = os.WriteFile(assetFile, []byte("jpeg payload"), 0644)
	require.NoError(t, err)

	select {
	case event := <-b.Events():
		assert.Equal(t, assetFile, event.Path)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for event in new directory")
	}
}

func TestLinuxBackend_IgnoreHidden(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	opts := Options{
		IgnoreHidden: true,
	}
	opts.setDefaults()

	b, err := newLinuxBackend(logger, opts)
	require.NoError(t, err)
	defer b.Stop()

	staging := t.TempDir()
	err = b.Watch(staging)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	// Sync tools drop dotfiles next to the uploads; those stay invisible.
	hiddenFile := filepath.Join(staging, ".sync-state")
	err = os.WriteFile(hiddenFile, []byte("sync metadata"), 0644)
	require.NoError(t, err)

	assetFile := filepath.Join(staging, "logo.png")
	err = os.WriteFile(assetFile, []byte("png payload"), 0644)
	require.NoError(t, err)

	select {
	case event := <-b.Events():
		assert.Equal(t, assetFile, event.Path)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	select {
	case event := <-b.Events():
		t.Fatalf("unexpected event for hidden file: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}
