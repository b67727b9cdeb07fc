package store

import (
	"context"

	"github.com/mediavault/mediavault-server/internal/domain"
)

// AssetFilter narrows ListAssets results. Zero values mean "no filter".
type AssetFilter struct {
	PipelineStatus domain.PipelineStatus
	ReviewStatus   domain.ReviewStatus
	GroupCode      string
}

// Store is the persistence interface for assets, tags, taxonomy, and activity.
type Store interface {
	// Assets
	CreateAsset(ctx context.Context, a *domain.Asset) error
	GetAsset(ctx context.Context, assetID string) (*domain.Asset, error)
	GetAssetBySHA256(ctx context.Context, hash string) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, a *domain.Asset) error
	DeleteAsset(ctx context.Context, assetID string) error
	ListAssets(ctx context.Context, filter AssetFilter, params PaginationParams) (*PaginatedResult[*domain.Asset], error)
	ListAssetsByStatus(ctx context.Context, status domain.PipelineStatus) ([]*domain.Asset, error)

	// Pipeline status. GetPipelineStatus is the cheap re-read used at stage
	// boundaries; TransitionStatus is a compare-and-swap that fails with
	// ErrStaleStatus when the stored status no longer matches from.
	GetPipelineStatus(ctx context.Context, assetID string) (domain.PipelineStatus, error)
	TransitionStatus(ctx context.Context, assetID string, from, to domain.PipelineStatus) error
	RequestCancel(ctx context.Context, assetID string) error

	// Tags
	ReplaceAssetTags(ctx context.Context, assetID string, tags []*domain.Tag) error
	GetAssetTags(ctx context.Context, assetID string) ([]*domain.Tag, error)
	DeleteAssetTag(ctx context.Context, assetID, tagID string) error

	// Taxonomy
	ListVocabularyTerms(ctx context.Context) ([]*domain.VocabularyTerm, error)
	ListSynonymRules(ctx context.Context) ([]*domain.SynonymRule, error)
	UpsertVocabularyTerm(ctx context.Context, term *domain.VocabularyTerm) error
	UpsertSynonymRule(ctx context.Context, rule *domain.SynonymRule) error
	CountVocabularyTerms(ctx context.Context) (int, error)

	// Activity
	CreateActivity(ctx context.Context, act *domain.Activity) error
	ListAssetActivities(ctx context.Context, assetID string, limit int) ([]*domain.Activity, error)
	ListRecentActivities(ctx context.Context, limit int) ([]*domain.Activity, error)

	Close() error
}
