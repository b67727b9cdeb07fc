// Package di provides dependency injection configuration for the MediaVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mediavault/mediavault-server/internal/classify"
	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/di/providers"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/preview"
	"github.com/mediavault/mediavault-server/internal/service"
	"github.com/mediavault/mediavault-server/internal/storage"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideTaxonomy)

	// Storage layer
	do.Provide(injector, providers.ProvideDisks)
	do.Provide(injector, providers.ProvidePreviewEngine)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Workers
	do.Provide(injector, providers.ProvideClassifier)
	do.Provide(injector, providers.ProvidePipeline)
	do.Provide(injector, providers.ProvideIngest)

	// Business services
	do.Provide(injector, providers.ProvideAssetService)
	do.Provide(injector, providers.ProvideActivityService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*taxonomy.Service](injector)
	_ = do.MustInvoke[*storage.Disks](injector)
	_ = do.MustInvoke[*preview.Engine](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Workers
	_ = do.MustInvoke[*classify.Client](injector)
	_ = do.MustInvoke[*providers.PipelineHandle](injector)
	_ = do.MustInvoke[*providers.IngestHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.AssetService](injector)
	_ = do.MustInvoke[*service.ActivityService](injector)

	// Server last, once everything it depends on is up
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
