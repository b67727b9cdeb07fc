package service

import (
	"context"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/store"
)

const defaultActivityLimit = 50

// ActivityService reads the append-only audit log.
type ActivityService struct {
	store  store.Store
	logger *logger.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(st store.Store, log *logger.Logger) *ActivityService {
	return &ActivityService{
		store:  st,
		logger: log.WithComponent("activity"),
	}
}

// ListForAsset returns the audit trail for one asset, newest first.
func (s *ActivityService) ListForAsset(ctx context.Context, assetID string, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return s.store.ListAssetActivities(ctx, assetID, limit)
}

// ListRecent returns the most recent activity across all assets.
func (s *ActivityService) ListRecent(ctx context.Context, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return s.store.ListRecentActivities(ctx, limit)
}
