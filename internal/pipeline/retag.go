package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediavault/mediavault-server/internal/classify"
	"github.com/mediavault/mediavault-server/internal/domain"
	domainerrors "github.com/mediavault/mediavault-server/internal/errors"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// Retag re-runs classification and taxonomy normalization for an asset that
// has already completed the pipeline, replacing its tags, group, and
// description in place. The pipeline status is not touched; retagging is an
// audit pass over a finished asset, so the fuzzy threshold is stricter than
// the one used on first classification and the asset goes back to pending
// review.
func (r *Runner) Retag(ctx context.Context, assetID string) error {
	asset, err := r.st.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.PipelineStatus != domain.PipelineDone {
		return domainerrors.Validationf("asset %s is %s, only completed assets can be retagged",
			assetID, asset.PipelineStatus)
	}

	log := r.log.WithAsset(asset.ID)
	snap := r.tax.Snapshot()

	req := classify.Request{
		Filename:   asset.OriginalFilename,
		Extension:  asset.FileExtension,
		MIME:       asset.MimeType,
		Size:       asset.FileSize,
		Vocabulary: snap.PromptContext(asset.IsDocument()),
		IsDocument: asset.IsDocument(),
	}
	req.Image, req.ImageMIME = r.classificationImage(asset)

	res, err := r.classifier.Classify(ctx, req)
	if err != nil || len(res.Tags) == 0 {
		if errors.Is(err, classify.ErrDisabled) {
			log.Debug("classification disabled, retag falls back to file type")
		} else if err != nil {
			log.Warn("retag classification failed, using fallback", "error", err)
		} else {
			log.Warn("retag classification returned no tags, using fallback")
		}
		res = classify.Fallback(asset.FileExtension, asset.MimeType)
	}

	in := taxonomy.Input{
		Group:           res.Group,
		GroupConfidence: res.GroupConfidence,
		IsDocument:      asset.IsDocument(),
		Tags:            res.Tags,
	}
	norm := snap.Normalize(in, taxonomy.Options{
		FuzzyThreshold:        taxonomy.FuzzyAcceptAudit,
		AutoApproveConfidence: r.ai.ConfidenceThreshold,
	})

	tags := make([]*domain.Tag, 0, len(norm.Tags))
	for _, t := range norm.Tags {
		tags = append(tags, &domain.Tag{
			AssetID:      asset.ID,
			Label:        t.Label,
			Facet:        t.Facet,
			Confidence:   t.Confidence,
			AutoApproved: t.AutoApproved,
		})
	}
	if err := r.st.ReplaceAssetTags(ctx, asset.ID, tags); err != nil {
		return fmt.Errorf("store retagged tags: %w", err)
	}

	// A fallback result never overwrites a group that a real classification
	// (or a reviewer) already assigned.
	if !res.Fallback || asset.GroupClassification == "" {
		asset.GroupClassification = norm.Group
		asset.GroupConfidence = norm.GroupConfidence
	}
	if res.Description != "" {
		asset.Description = res.Description
	}
	asset.ReviewStatus = domain.ReviewPending
	asset.ReviewedAt = nil
	switch {
	case res.Fallback:
		asset.ReviewReason = "Fallback classification from file type"
	case norm.NeedsReview && norm.ReviewReason != "":
		asset.ReviewReason = norm.ReviewReason
	default:
		asset.ReviewReason = "Retagged, awaiting re-review"
	}
	asset.Touch()
	if err := r.st.UpdateAsset(ctx, asset); err != nil {
		return fmt.Errorf("update asset: %w", err)
	}

	if r.index != nil {
		if err := r.index.Index(asset, tags); err != nil {
			log.Warn("search reindex after retag failed", "error", err)
		}
	}

	r.recordActivity(asset.ID, domain.ActivityAITagged,
		fmt.Sprintf("Retagged: %s", asset.OriginalFilename), map[string]any{
			"group":    asset.GroupClassification,
			"tags":     len(tags),
			"vision":   res.VisionUsed,
			"fallback": res.Fallback,
		})

	log.Info("asset retagged", "group", asset.GroupClassification, "tags", len(tags))
	return nil
}
