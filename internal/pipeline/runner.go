// Package pipeline runs ingested assets through the processing stages:
// hash verification, preview rendering, AI tagging, taxonomy normalization,
// search indexing, and promotion to production storage.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mediavault/mediavault-server/internal/classify"
	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/preview"
	"github.com/mediavault/mediavault-server/internal/storage"
	"github.com/mediavault/mediavault-server/internal/store"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// pollInterval is how often idle workers look for queued assets.
const pollInterval = 5 * time.Second

// errCancelled halts a run when a user cancellation is observed at a stage
// boundary. It is not a failure; the asset keeps its cancelled status.
var errCancelled = errors.New("cancelled by user")

// Classifier produces a classification for one asset. The remote client
// implements it; tests substitute a fake.
type Classifier interface {
	Classify(ctx context.Context, req classify.Request) (*classify.Result, error)
}

// Indexer receives completed assets for search indexing. Indexing is
// advisory; errors are logged and never fail the pipeline.
type Indexer interface {
	Index(asset *domain.Asset, tags []*domain.Tag) error
}

// Runner owns the worker pool that drains queued assets through the
// pipeline. Workers claim assets with a compare-and-swap on the queued
// status, so multiple workers never process the same asset.
type Runner struct {
	st         store.Store
	disks      *storage.Disks
	previews   *preview.Engine
	classifier Classifier
	tax        *taxonomy.Service
	index      Indexer
	cfg        config.PipelineConfig
	ai         config.AIConfig
	log        *logger.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	jobNotify chan struct{}

	mu     sync.Mutex
	resume []string // assets stranded mid-stage by a previous shutdown
}

// New creates a pipeline runner. index may be nil when search is disabled.
func New(
	st store.Store,
	disks *storage.Disks,
	previews *preview.Engine,
	classifier Classifier,
	tax *taxonomy.Service,
	index Indexer,
	cfg config.PipelineConfig,
	ai config.AIConfig,
	log *logger.Logger,
) *Runner {
	return &Runner{
		st:         st,
		disks:      disks,
		previews:   previews,
		classifier: classifier,
		tax:        tax,
		index:      index,
		cfg:        cfg,
		ai:         ai,
		log:        log.WithComponent("pipeline"),
		jobNotify:  make(chan struct{}, 1),
	}
}

// Start recovers assets stranded mid-stage by a previous shutdown, then
// launches the worker pool. Workers run until Stop.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if err := r.recoverStranded(r.ctx); err != nil {
		return err
	}

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.log.Info("pipeline started", "workers", workers)

	r.NotifyNewAsset()
	return nil
}

// Stop cancels the workers and waits for in-flight assets to halt. Assets
// interrupted mid-stage keep their current status and are recovered on the
// next Start.
func (r *Runner) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
	r.log.Info("pipeline stopped")
}

// NotifyNewAsset wakes an idle worker. Non-blocking; a pending notification
// already covers any number of new assets.
func (r *Runner) NotifyNewAsset() {
	select {
	case r.jobNotify <- struct{}{}:
	default:
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	r.log.Debug("worker started", "worker", id)

	for {
		select {
		case <-r.ctx.Done():
			r.log.Debug("worker stopped", "worker", id)
			return
		case <-r.jobNotify:
			r.processNext(id)
		case <-time.After(pollInterval):
			r.processNext(id)
		}
	}
}

// processNext claims and runs one asset: first anything left over from a
// previous shutdown, then the oldest queued asset. Claiming a queued asset
// is the queued -> hashing transition; losing that race just means another
// worker got there first.
func (r *Runner) processNext(workerID int) {
	if asset := r.popStranded(); asset != nil {
		r.run(asset, workerID)
		r.NotifyNewAsset()
		return
	}

	queued, err := r.st.ListAssetsByStatus(r.ctx, domain.PipelineQueued)
	if err != nil {
		if r.ctx.Err() == nil {
			r.log.Error("list queued assets", "error", err)
		}
		return
	}

	for _, asset := range queued {
		err := r.st.TransitionStatus(r.ctx, asset.ID, domain.PipelineQueued, domain.PipelineHashing)
		if errors.Is(err, store.ErrStaleStatus) {
			continue
		}
		if err != nil {
			if r.ctx.Err() == nil {
				r.log.Error("claim asset", "asset", asset.ID, "error", err)
			}
			return
		}
		asset.PipelineStatus = domain.PipelineHashing
		r.run(asset, workerID)
		r.NotifyNewAsset()
		return
	}
}

// recoverStranded collects assets left mid-stage by a previous process.
// Their statuses are forward-only, so instead of resetting them the workers
// resume each asset from the stage it was in.
func (r *Runner) recoverStranded(ctx context.Context) error {
	stages := []domain.PipelineStatus{
		domain.PipelineHashing,
		domain.PipelinePreviewing,
		domain.PipelineTagging,
		domain.PipelineClassifying,
		domain.PipelineIndexing,
	}

	var ids []string
	for _, stage := range stages {
		assets, err := r.st.ListAssetsByStatus(ctx, stage)
		if err != nil {
			return err
		}
		for _, a := range assets {
			ids = append(ids, a.ID)
		}
	}

	if len(ids) > 0 {
		r.log.Info("recovering assets stranded mid-pipeline", "count", len(ids))
		r.mu.Lock()
		r.resume = ids
		r.mu.Unlock()
	}
	return nil
}

func (r *Runner) popStranded() *domain.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.resume) > 0 {
		id := r.resume[0]
		r.resume = r.resume[1:]

		asset, err := r.st.GetAsset(r.ctx, id)
		if err != nil {
			r.log.Warn("stranded asset lookup failed", "asset", id, "error", err)
			continue
		}
		if asset.PipelineStatus.IsTerminal() || asset.PipelineStatus == domain.PipelineQueued {
			continue
		}
		return asset
	}
	return nil
}

// run drives one claimed asset through its remaining stages, retrying a
// bounded number of times on infrastructure errors. A cancellation halts
// quietly; anything else after the last attempt marks the asset failed.
func (r *Runner) run(asset *domain.Asset, workerID int) {
	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.Timeout)
	defer cancel()

	log := r.log.WithAsset(asset.ID)
	log.Info("processing asset", "worker", workerID,
		"filename", asset.OriginalFilename, "stage", asset.PipelineStatus)

	attempts := r.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = r.process(ctx, asset)
		if err == nil || errors.Is(err, errCancelled) || ctx.Err() != nil {
			break
		}
		log.Warn("pipeline attempt failed", "attempt", attempt, "error", err)
	}

	switch {
	case err == nil:
		log.Info("asset processed", "filename", asset.OriginalFilename)
	case errors.Is(err, errCancelled):
		log.Info("pipeline halted by cancellation")
	case r.ctx.Err() != nil:
		// Shutdown interrupted the run. The asset keeps its current stage
		// and is recovered on the next start.
		log.Info("pipeline interrupted by shutdown", "stage", asset.PipelineStatus)
	default:
		r.fail(asset, err)
	}
}
