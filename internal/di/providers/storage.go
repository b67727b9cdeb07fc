package providers

import (
	"github.com/samber/do/v2"

	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/preview"
	"github.com/mediavault/mediavault-server/internal/storage"
)

// ProvideDisks provides the staging, assets, and previews storage disks.
func ProvideDisks(i do.Injector) (*storage.Disks, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	disks, err := storage.NewDisks(
		cfg.Storage.StagingPath,
		cfg.Storage.AssetsPath,
		cfg.Storage.PreviewsPath,
	)
	if err != nil {
		return nil, err
	}

	log.Info("Storage disks ready",
		"staging", cfg.Storage.StagingPath,
		"assets", cfg.Storage.AssetsPath,
		"previews", cfg.Storage.PreviewsPath,
	)

	return disks, nil
}

// ProvidePreviewEngine provides the preview rendering engine.
func ProvidePreviewEngine(i do.Injector) (*preview.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	disks := do.MustInvoke[*storage.Disks](i)

	return preview.NewEngine(disks.Previews, cfg.Pipeline, log), nil
}
