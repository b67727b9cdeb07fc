package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault-server/internal/domain"
)

func newTestDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := NewDisk(domain.DiskStaging, t.TempDir())
	require.NoError(t, err)
	return d
}

func TestNewDisk(t *testing.T) {
	t.Run("creates root directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "staging")
		d, err := NewDisk(domain.DiskStaging, root)
		require.NoError(t, err)
		assert.Equal(t, root, d.Root())
		assert.DirExists(t, root)
	})

	t.Run("empty root rejected", func(t *testing.T) {
		_, err := NewDisk(domain.DiskStaging, "")
		assert.Error(t, err)
	})
}

func TestDiskWriteReadDelete(t *testing.T) {
	d := newTestDisk(t)

	require.NoError(t, d.Write("sub/dir/file.txt", []byte("hello")))
	assert.True(t, d.Exists("sub/dir/file.txt"))

	data, err := d.Read("sub/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	size, err := d.Size("sub/dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	require.NoError(t, d.Delete("sub/dir/file.txt"))
	assert.False(t, d.Exists("sub/dir/file.txt"))

	// Deleting again is not an error.
	assert.NoError(t, d.Delete("sub/dir/file.txt"))
}

func TestDiskPathEscapeRejected(t *testing.T) {
	d := newTestDisk(t)

	_, err := d.Read("../outside.txt")
	assert.Error(t, err)

	err = d.Write("../../etc/passwd", []byte("nope"))
	assert.Error(t, err)

	_, err = d.Read("/abs/path")
	assert.Error(t, err)
}

func TestDiskHash(t *testing.T) {
	d := newTestDisk(t)
	content := []byte("integrity check payload")
	require.NoError(t, d.Write("file.bin", content))

	got, err := d.Hash("file.bin")
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestDiskHashMissingFile(t *testing.T) {
	d := newTestDisk(t)
	_, err := d.Hash("missing.bin")
	assert.Error(t, err)
}

func TestDiskMoveTo(t *testing.T) {
	src := newTestDisk(t)
	dst, err := NewDisk(domain.DiskAssets, t.TempDir())
	require.NoError(t, err)

	require.NoError(t, src.Write("upload.jpg", []byte("pixels")))
	require.NoError(t, src.MoveTo("upload.jpg", dst, "processed/2026/08/31/upload.jpg"))

	assert.False(t, src.Exists("upload.jpg"))
	data, err := dst.Read("processed/2026/08/31/upload.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)
}

func TestNewDisks(t *testing.T) {
	base := t.TempDir()
	disks, err := NewDisks(
		filepath.Join(base, "staging"),
		filepath.Join(base, "assets"),
		filepath.Join(base, "previews"),
	)
	require.NoError(t, err)

	got, err := disks.ByName(domain.DiskAssets)
	require.NoError(t, err)
	assert.Same(t, disks.Assets, got)

	_, err = disks.ByName("tape")
	assert.Error(t, err)
}

func TestProductionPath(t *testing.T) {
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "processed/2026/08/31/asset-abc.pdf", ProductionPath("asset-abc", "pdf", at))
	assert.Equal(t, "processed/2026/08/31/asset-abc", ProductionPath("asset-abc", "", at))
}

func TestDiskWritePermissions(t *testing.T) {
	d := newTestDisk(t)
	require.NoError(t, d.Write("f.txt", []byte("x")))

	info, err := os.Stat(d.Path("f.txt"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
}
