package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/search"
	"github.com/mediavault/mediavault-server/internal/service"
	"github.com/mediavault/mediavault-server/internal/store"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.NewIndex(search.Options{
		DataPath: filepath.Join(cfg.Storage.BasePath, "search"),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{Index: idx}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	idx := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tax := do.MustInvoke[*taxonomy.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(idx.Index, storeHandle.Store, tax, log), nil
}

// TriggerSearchReindexIfNeeded rebuilds the search index in the background
// when the index is empty but the store already has assets. This recovers
// from a deleted or corrupted index directory without blocking startup.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	page, err := storeHandle.ListAssets(ctx, store.AssetFilter{}, store.PaginationParams{Limit: 1})
	if err != nil || len(page.Items) == 0 {
		return
	}

	log.Info("Search index is empty but assets exist, triggering initial reindex")

	go func() {
		indexed, err := searchService.ReindexAll(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", indexed)
	}()
}
