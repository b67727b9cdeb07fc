// Package service contains the application services that sit between the
// HTTP layer and the store, pipeline, and search index.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mediavault/mediavault-server/internal/domain"
	domainerrors "github.com/mediavault/mediavault-server/internal/errors"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/store"
)

// Retagger re-runs classification for a completed asset. The pipeline
// runner implements it.
type Retagger interface {
	Retag(ctx context.Context, assetID string) error
}

// AssetService exposes asset queries, pipeline control, and the manual
// review workflow.
type AssetService struct {
	store    store.Store
	retagger Retagger
	search   *SearchService
	logger   *logger.Logger
}

// NewAssetService creates a new asset service. retagger and search may be
// nil when the pipeline or index is not wired, in which case Retag returns
// an error and review decisions skip reindexing.
func NewAssetService(st store.Store, retagger Retagger, search *SearchService, log *logger.Logger) *AssetService {
	return &AssetService{
		store:    st,
		retagger: retagger,
		search:   search,
		logger:   log.WithComponent("assets"),
	}
}

// AssetDetail bundles an asset with its tags for read endpoints.
type AssetDetail struct {
	Asset *domain.Asset `json:"asset"`
	Tags  []*domain.Tag `json:"tags"`
}

// GetAsset returns one asset with its tags.
func (s *AssetService) GetAsset(ctx context.Context, assetID string) (*AssetDetail, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("asset %s not found", assetID)
		}
		return nil, err
	}
	tags, err := s.store.GetAssetTags(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return &AssetDetail{Asset: asset, Tags: tags}, nil
}

// ListAssets returns a page of assets, optionally filtered by group and
// pipeline or review status.
func (s *AssetService) ListAssets(ctx context.Context, filter store.AssetFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Asset], error) {
	params.Validate()
	return s.store.ListAssets(ctx, filter, params)
}

// GetStatus returns the current pipeline status for an asset.
func (s *AssetService) GetStatus(ctx context.Context, assetID string) (domain.PipelineStatus, error) {
	status, err := s.store.GetPipelineStatus(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return "", domainerrors.NotFoundf("asset %s not found", assetID)
	}
	return status, err
}

// Cancel requests cancellation of a running pipeline. The asset moves to
// cancelled immediately; a worker mid-stage observes the new status at its
// next stage boundary and halts. Terminal assets cannot be cancelled.
func (s *AssetService) Cancel(ctx context.Context, assetID string) error {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("asset %s not found", assetID)
		}
		return err
	}

	if err := s.store.RequestCancel(ctx, assetID); err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			return domainerrors.Conflict(fmt.Sprintf("asset %s already %s", assetID, asset.PipelineStatus))
		}
		return err
	}

	s.recordActivity(ctx, assetID, domain.ActivityPipelineCancelled,
		fmt.Sprintf("Pipeline cancelled for: %s", asset.OriginalFilename), map[string]any{
			"stage": string(asset.PipelineStatus),
		})
	s.logger.WithAsset(assetID).Info("pipeline cancellation requested",
		"stage", asset.PipelineStatus)
	return nil
}

// Retag re-runs classification and taxonomy normalization for a completed
// asset.
func (s *AssetService) Retag(ctx context.Context, assetID string) error {
	if s.retagger == nil {
		return domainerrors.Internal("retagging is not available")
	}
	return s.retagger.Retag(ctx, assetID)
}

// ListReviewQueue returns assets awaiting manual review.
func (s *AssetService) ListReviewQueue(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Asset], error) {
	params.Validate()
	return s.store.ListAssets(ctx, store.AssetFilter{ReviewStatus: domain.ReviewPending}, params)
}

// Review records a manual review decision for an asset. Only pending assets
// can be decided; approving also marks every non-manual tag auto-approved.
func (s *AssetService) Review(ctx context.Context, assetID string, approve bool, reason string) (*domain.Asset, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("asset %s not found", assetID)
		}
		return nil, err
	}
	if asset.ReviewStatus != domain.ReviewPending {
		return nil, domainerrors.Conflict(fmt.Sprintf("asset %s is not pending review (%s)", assetID, asset.ReviewStatus))
	}

	now := time.Now().UTC()
	if approve {
		asset.ReviewStatus = domain.ReviewApproved
	} else {
		asset.ReviewStatus = domain.ReviewRejected
	}
	if reason != "" {
		asset.ReviewReason = reason
	}
	asset.ReviewedAt = &now
	asset.Touch()
	if err := s.store.UpdateAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}

	if approve {
		if err := s.approveTags(ctx, asset.ID); err != nil {
			s.logger.WithAsset(asset.ID).Warn("approving tags failed", "error", err)
		}
	}

	if s.search != nil {
		if err := s.search.IndexAsset(ctx, asset); err != nil {
			s.logger.WithAsset(asset.ID).Warn("reindex after review failed", "error", err)
		}
	}

	s.logger.WithAsset(asset.ID).Info("review decision recorded",
		"status", asset.ReviewStatus)
	return asset, nil
}

// approveTags flags all AI tags on the asset as approved.
func (s *AssetService) approveTags(ctx context.Context, assetID string) error {
	tags, err := s.store.GetAssetTags(ctx, assetID)
	if err != nil {
		return err
	}
	changed := false
	for _, t := range tags {
		if !t.AutoApproved {
			t.AutoApproved = true
			t.Touch()
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.store.ReplaceAssetTags(ctx, assetID, tags)
}

// DeleteTag removes a single tag from an asset, typically as part of manual
// curation during review.
func (s *AssetService) DeleteTag(ctx context.Context, assetID, tagID string) error {
	if err := s.store.DeleteAssetTag(ctx, assetID, tagID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("tag %s not found on asset %s", tagID, assetID)
		}
		return err
	}
	if s.search != nil {
		asset, err := s.store.GetAsset(ctx, assetID)
		if err == nil {
			if err := s.search.IndexAsset(ctx, asset); err != nil {
				s.logger.WithAsset(assetID).Warn("reindex after tag delete failed", "error", err)
			}
		}
	}
	return nil
}

func (s *AssetService) recordActivity(ctx context.Context, assetID string, typ domain.ActivityType, message string, detail map[string]any) {
	act := &domain.Activity{
		AssetID: assetID,
		Type:    typ,
		Message: message,
	}
	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			act.Detail = string(data)
		}
	}
	if err := s.store.CreateActivity(ctx, act); err != nil {
		s.logger.WithAsset(assetID).Warn("recording activity failed",
			"type", typ, "error", err)
	}
}
