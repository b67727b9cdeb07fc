package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/mediavault/mediavault-server/internal/classify"
	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/ingest"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/pipeline"
	"github.com/mediavault/mediavault-server/internal/preview"
	"github.com/mediavault/mediavault-server/internal/storage"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// ProvideClassifier provides the AI classification client. With no API key
// configured the client reports ErrDisabled and the pipeline falls back to
// extension/MIME classification.
func ProvideClassifier(i do.Injector) (*classify.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.AI.Enabled() {
		log.Info("AI classification disabled, using file-type fallback")
	}
	return classify.New(cfg.AI, log), nil
}

// PipelineHandle wraps the pipeline runner with shutdown capability.
type PipelineHandle struct {
	*pipeline.Runner
}

// Shutdown implements do.Shutdownable.
func (h *PipelineHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvidePipeline provides the started asset-processing pipeline.
func ProvidePipeline(i do.Injector) (*PipelineHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	disks := do.MustInvoke[*storage.Disks](i)
	previews := do.MustInvoke[*preview.Engine](i)
	classifier := do.MustInvoke[*classify.Client](i)
	tax := do.MustInvoke[*taxonomy.Service](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)

	runner := pipeline.New(storeHandle.Store, disks, previews, classifier, tax,
		idx.Index, cfg.Pipeline, cfg.AI, log)
	if err := runner.Start(context.Background()); err != nil {
		return nil, err
	}

	return &PipelineHandle{Runner: runner}, nil
}

// IngestHandle wraps the ingest service with shutdown capability.
type IngestHandle struct {
	*ingest.Service
}

// Shutdown implements do.Shutdownable.
func (h *IngestHandle) Shutdown() error {
	if h.Service != nil {
		h.Service.Stop()
	}
	return nil
}

// ProvideIngest provides the staging-directory ingest service. Disabled via
// the watch-staging setting, in which case the handle is empty.
func ProvideIngest(i do.Injector) (*IngestHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	disks := do.MustInvoke[*storage.Disks](i)
	pipelineHandle := do.MustInvoke[*PipelineHandle](i)

	if !cfg.Pipeline.WatchStaging {
		log.Info("Staging watcher disabled")
		return &IngestHandle{}, nil
	}

	svc := ingest.New(storeHandle.Store, disks, pipelineHandle.Runner, log)
	if err := svc.Start(context.Background()); err != nil {
		return nil, err
	}

	return &IngestHandle{Service: svc}, nil
}
