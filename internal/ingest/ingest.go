// Package ingest watches the staging area and registers new files as
// queued assets. Discovery is two-pronged: a startup sweep catches files
// that arrived while the server was down, and a filesystem watcher catches
// everything after that.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/id"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/storage"
	"github.com/mediavault/mediavault-server/internal/store"
	"github.com/mediavault/mediavault-server/internal/watcher"
)

// ErrDuplicate is returned when a file's digest matches an already
// registered asset. The staged copy is left in place for the operator.
var ErrDuplicate = errors.New("asset already ingested")

// Notifier wakes the pipeline when a new asset is queued.
type Notifier interface {
	NotifyNewAsset()
}

// Service owns staging-area discovery.
type Service struct {
	st     store.Store
	disks  *storage.Disks
	notify Notifier
	log    *logger.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	watcher *watcher.Watcher
}

// New creates the ingest service. notify may be nil in tools that only
// sweep.
func New(st store.Store, disks *storage.Disks, notify Notifier, log *logger.Logger) *Service {
	return &Service{
		st:     st,
		disks:  disks,
		notify: notify,
		log:    log.WithComponent("ingest"),
	}
}

// Start sweeps the staging area for files that arrived while the server
// was down, then begins watching it. Runs until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.Sweep(s.ctx); err != nil {
		return fmt.Errorf("staging sweep: %w", err)
	}

	w, err := watcher.New(s.log.Logger, watcher.Options{})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Watch(s.disks.Staging.Root()); err != nil {
		return fmt.Errorf("watch staging: %w", err)
	}
	s.watcher = w

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := w.Start(s.ctx); err != nil && s.ctx.Err() == nil {
			s.log.Error("watcher stopped", "error", err)
		}
	}()
	go s.consume(w)

	s.log.Info("watching staging area", "path", s.disks.Staging.Root())
	return nil
}

// Stop halts the watcher and waits for event handling to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	s.wg.Wait()
}

func (s *Service) consume(w *watcher.Watcher) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			if ev.Type != watcher.EventAdded && ev.Type != watcher.EventModified {
				continue
			}
			if _, err := s.IngestFile(s.ctx, ev.Path); err != nil && !errors.Is(err, ErrDuplicate) {
				s.log.Error("ingest failed", "path", ev.Path, "error", err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			s.log.Warn("watcher error", "error", err)
		}
	}
}

// Sweep walks the staging area and ingests every file not yet registered.
// Duplicates are skipped quietly; anything else is logged and the walk
// continues.
func (s *Service) Sweep(ctx context.Context) error {
	root := s.disks.Staging.Root()
	discovered := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipName(d.Name()) && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if skipName(d.Name()) {
			return nil
		}

		_, ierr := s.IngestFile(ctx, path)
		switch {
		case ierr == nil:
			discovered++
		case errors.Is(ierr, ErrDuplicate):
		default:
			s.log.Warn("sweep ingest failed", "path", path, "error", ierr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if discovered > 0 {
		s.log.Info("staging sweep complete", "ingested", discovered)
	}
	return nil
}

// IngestFile registers one staged file as a queued asset. The path must be
// inside the staging area. Returns ErrDuplicate when the digest matches an
// existing asset.
func (s *Service) IngestFile(ctx context.Context, path string) (*domain.Asset, error) {
	staging := s.disks.Staging

	rel, err := filepath.Rel(staging.Root(), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("path %s is outside the staging area", path)
	}
	rel = filepath.ToSlash(rel)

	name := filepath.Base(path)
	if skipName(name) {
		return nil, fmt.Errorf("ignored file %s", name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return nil, fmt.Errorf("not an ingestible file: %s", path)
	}

	sum, err := staging.Hash(rel)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", rel, err)
	}

	if existing, err := s.st.GetAssetBySHA256(ctx, sum); err == nil {
		s.log.Info("duplicate upload skipped",
			"filename", name, "existing", existing.ID)
		return existing, ErrDuplicate
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	mime := detectMIME(path)
	now := time.Now().UTC()

	asset := &domain.Asset{
		ID:               id.MustGenerate("asset"),
		OriginalFilename: name,
		FileExtension:    domain.ExtensionOf(name),
		FileSize:         info.Size(),
		MimeType:         mime,
		SHA256Hash:       sum,
		UploadSource:     "watch",
		IngestedAt:       now,
		PipelineStatus:   domain.PipelineQueued,
		PreviewStatus:    domain.PreviewPending,
		ReviewStatus:     domain.ReviewNone,
		StorageDisk:      string(domain.DiskStaging),
		StoragePath:      rel,
	}
	if err := s.st.CreateAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}

	s.recordUploaded(ctx, asset)
	s.log.Info("asset ingested",
		"asset", asset.ID, "filename", name, "size", info.Size(), "mime", mime)

	if s.notify != nil {
		s.notify.NotifyNewAsset()
	}
	return asset, nil
}

func (s *Service) recordUploaded(ctx context.Context, asset *domain.Asset) {
	act := &domain.Activity{
		AssetID: asset.ID,
		Type:    domain.ActivityUploaded,
		Message: fmt.Sprintf("Asset uploaded: %s", asset.OriginalFilename),
	}
	if err := s.st.CreateActivity(ctx, act); err != nil {
		s.log.Warn("record upload activity", "asset", asset.ID, "error", err)
	}
}

// detectMIME sniffs the content type from the file's bytes, falling back
// to application/octet-stream when the file cannot be read.
func detectMIME(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	// Strip parameters like "; charset=utf-8"
	return strings.SplitN(mt.String(), ";", 2)[0]
}

// skipName filters out scratch files uploaders and editors leave behind.
func skipName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tmp", ".temp", ".part", ".crdownload":
		return true
	}
	return name == "Thumbs.db"
}
