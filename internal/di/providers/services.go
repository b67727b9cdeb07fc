package providers

import (
	"github.com/samber/do/v2"

	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/service"
)

// ProvideAssetService provides the asset application service.
func ProvideAssetService(i do.Injector) (*service.AssetService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	pipelineHandle := do.MustInvoke[*PipelineHandle](i)
	searchSvc := do.MustInvoke[*service.SearchService](i)

	return service.NewAssetService(storeHandle.Store, pipelineHandle.Runner, searchSvc, log), nil
}

// ProvideActivityService provides the activity feed service.
func ProvideActivityService(i do.Injector) (*service.ActivityService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewActivityService(storeHandle.Store, log), nil
}
