// Package storage provides the filesystem disks backing the asset pipeline:
// staging for fresh uploads, assets for promoted production files, and
// previews for generated derivatives.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mediavault/mediavault-server/internal/domain"
)

// Disk manages file operations rooted at a single directory.
// All relative paths are resolved against the root and must not escape it.
type Disk struct {
	name string
	root string
}

// NewDisk creates a disk rooted at root, creating the directory if needed.
func NewDisk(name domain.Disk, root string) (*Disk, error) {
	if root == "" {
		return nil, fmt.Errorf("disk %s: root path cannot be empty", name)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", name, err)
	}

	return &Disk{name: string(name), root: root}, nil
}

// Name returns the disk's logical name.
func (d *Disk) Name() string { return d.name }

// Root returns the disk's root directory.
func (d *Disk) Root() string { return d.root }

// Path resolves a relative path against the disk root.
// Path components that would escape the root are rejected by resolve.
func (d *Disk) Path(rel string) string {
	return filepath.Join(d.root, filepath.FromSlash(rel))
}

func (d *Disk) resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("disk %s: path cannot be empty", d.name)
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("disk %s: path %q escapes disk root", d.name, rel)
	}
	return filepath.Join(d.root, cleaned), nil
}

// Exists reports whether a file exists at the relative path.
func (d *Disk) Exists(rel string) bool {
	path, err := d.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Size returns the size in bytes of the file at the relative path.
func (d *Disk) Size(rel string) (int64, error) {
	path, err := d.resolve(rel)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("disk %s: stat %s: %w", d.name, rel, err)
	}
	return info.Size(), nil
}

// Read returns the contents of the file at the relative path.
func (d *Disk) Read(rel string) ([]byte, error) {
	path, err := d.resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //#nosec G304 -- path is resolved within the disk root
	if err != nil {
		return nil, fmt.Errorf("disk %s: read %s: %w", d.name, rel, err)
	}
	return data, nil
}

// Write stores data at the relative path, creating parent directories as needed.
func (d *Disk) Write(rel string, data []byte) error {
	path, err := d.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("disk %s: mkdir for %s: %w", d.name, rel, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //#nosec G306 -- previews are served publicly
		return fmt.Errorf("disk %s: write %s: %w", d.name, rel, err)
	}
	return nil
}

// Delete removes the file at the relative path. Missing files are not an error.
func (d *Disk) Delete(rel string) error {
	path, err := d.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("disk %s: delete %s: %w", d.name, rel, err)
	}
	return nil
}

// Hash computes the SHA-256 of the file at the relative path in a single
// streaming pass and returns it hex-encoded.
func (d *Disk) Hash(rel string) (string, error) {
	path, err := d.resolve(rel)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path) //#nosec G304 -- path is resolved within the disk root
	if err != nil {
		return "", fmt.Errorf("disk %s: open %s: %w", d.name, rel, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("disk %s: hash %s: %w", d.name, rel, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MoveTo moves a file from this disk to dst. It renames when both disks share
// a filesystem and falls back to copy-then-remove across devices. The parent
// directory on dst is created as needed.
func (d *Disk) MoveTo(srcRel string, dst *Disk, dstRel string) error {
	srcPath, err := d.resolve(srcRel)
	if err != nil {
		return err
	}
	dstPath, err := dst.resolve(dstRel)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("disk %s: mkdir for %s: %w", dst.name, dstRel, err)
	}

	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}

	// Cross-device fallback: copy then remove.
	src, err := os.Open(srcPath) //#nosec G304 -- path is resolved within the disk root
	if err != nil {
		return fmt.Errorf("disk %s: open %s: %w", d.name, srcRel, err)
	}
	defer src.Close()

	out, err := os.Create(dstPath) //#nosec G304 -- path is resolved within the disk root
	if err != nil {
		return fmt.Errorf("disk %s: create %s: %w", dst.name, dstRel, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dstPath)
		return fmt.Errorf("copy %s to %s: %w", srcRel, dstRel, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("disk %s: close %s: %w", dst.name, dstRel, err)
	}

	return os.Remove(srcPath)
}

// Disks bundles the three application disks.
type Disks struct {
	Staging  *Disk
	Assets   *Disk
	Previews *Disk
}

// NewDisks creates the staging, assets, and previews disks.
func NewDisks(stagingRoot, assetsRoot, previewsRoot string) (*Disks, error) {
	staging, err := NewDisk(domain.DiskStaging, stagingRoot)
	if err != nil {
		return nil, err
	}
	assets, err := NewDisk(domain.DiskAssets, assetsRoot)
	if err != nil {
		return nil, err
	}
	previews, err := NewDisk(domain.DiskPreviews, previewsRoot)
	if err != nil {
		return nil, err
	}
	return &Disks{Staging: staging, Assets: assets, Previews: previews}, nil
}

// ByName returns the disk with the given logical name.
func (d *Disks) ByName(name domain.Disk) (*Disk, error) {
	switch name {
	case domain.DiskStaging:
		return d.Staging, nil
	case domain.DiskAssets:
		return d.Assets, nil
	case domain.DiskPreviews:
		return d.Previews, nil
	default:
		return nil, fmt.Errorf("unknown disk %q", name)
	}
}

// ProductionPath builds the date-partitioned production path for an asset,
// e.g. processed/2026/08/31/asset-abc123.pdf.
func ProductionPath(assetID, extension string, at time.Time) string {
	filename := assetID
	if extension != "" {
		filename += "." + extension
	}
	return filepath.ToSlash(filepath.Join("processed", at.Format("2006"), at.Format("01"), at.Format("02"), filename))
}
