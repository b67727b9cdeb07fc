package service

import (
	"context"
	"fmt"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/search"
	"github.com/mediavault/mediavault-server/internal/store"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// SearchService bridges the search index with the store and the taxonomy.
// Queries are expanded through the synonym rules before they hit the index,
// so a search for "hamburger" finds assets tagged with the canonical
// "burger".
type SearchService struct {
	index  *search.Index
	store  store.Store
	tax    *taxonomy.Service
	logger *logger.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, st store.Store, tax *taxonomy.Service, log *logger.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  st,
		tax:    tax,
		logger: log.WithComponent("search"),
	}
}

// Search executes a query with synonym expansion applied.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Query != "" && s.tax != nil {
		params.ExpandedTerms = s.tax.Snapshot().ExpandSearchTerms(params.Query)
	}
	return s.index.Search(ctx, params)
}

// IndexAsset reindexes a single asset with its current tags.
func (s *SearchService) IndexAsset(ctx context.Context, asset *domain.Asset) error {
	tags, err := s.store.GetAssetTags(ctx, asset.ID)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	return s.index.Index(asset, tags)
}

// DeleteAsset removes an asset from the index.
func (s *SearchService) DeleteAsset(assetID string) error {
	return s.index.Delete(assetID)
}

// ReindexAll rebuilds the index from the store. Used after mapping changes
// or index corruption; walks every asset page by page.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	total := 0
	params := store.DefaultPaginationParams()
	for {
		page, err := s.store.ListAssets(ctx, store.AssetFilter{}, params)
		if err != nil {
			return total, fmt.Errorf("list assets: %w", err)
		}

		docs := make([]*search.AssetDocument, 0, len(page.Items))
		for _, asset := range page.Items {
			tags, err := s.store.GetAssetTags(ctx, asset.ID)
			if err != nil {
				return total, fmt.Errorf("load tags for %s: %w", asset.ID, err)
			}
			docs = append(docs, search.AssetToDocument(asset, tags))
		}
		if err := s.index.IndexDocuments(docs); err != nil {
			return total, fmt.Errorf("index batch: %w", err)
		}
		total += len(docs)

		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	s.logger.Info("search index rebuilt", "assets", total)
	return total, nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
