package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mediavault/mediavault-server/internal/classify"
	"github.com/mediavault/mediavault-server/internal/domain"
	domainerrors "github.com/mediavault/mediavault-server/internal/errors"
	"github.com/mediavault/mediavault-server/internal/storage"
	"github.com/mediavault/mediavault-server/internal/store"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// maxInlineImageBytes caps originals sent to the vision model when no
// rendered preview exists.
const maxInlineImageBytes = 20 << 20

// process resumes an asset from its stored stage and runs the remaining
// stages in order. The status is re-read before every stage so a user
// cancellation is honored at the next boundary; completed stages keep their
// rows and files.
func (r *Runner) process(ctx context.Context, asset *domain.Asset) error {
	for {
		status, err := r.st.GetPipelineStatus(ctx, asset.ID)
		if err != nil {
			return err
		}
		asset.PipelineStatus = status

		switch status {
		case domain.PipelineHashing:
			if err := r.verifyHash(asset); err != nil {
				return err
			}
			if err := r.advance(ctx, asset, domain.PipelinePreviewing); err != nil {
				return err
			}

		case domain.PipelinePreviewing:
			if err := r.renderPreview(ctx, asset); err != nil {
				return err
			}
			if err := r.advance(ctx, asset, domain.PipelineTagging); err != nil {
				return err
			}

		case domain.PipelineTagging:
			if err := r.tag(ctx, asset); err != nil {
				return err
			}
			if err := r.advance(ctx, asset, domain.PipelineClassifying); err != nil {
				return err
			}

		case domain.PipelineClassifying:
			if err := r.applyTaxonomy(ctx, asset); err != nil {
				return err
			}
			if err := r.advance(ctx, asset, domain.PipelineIndexing); err != nil {
				return err
			}

		case domain.PipelineIndexing:
			return r.finish(ctx, asset)

		case domain.PipelineCancelled:
			return errCancelled

		default:
			// done, failed, or a status another process owns.
			return nil
		}
	}
}

// verifyHash recomputes the file's SHA-256 and compares it with the digest
// recorded at ingest. A missing file or a mismatch is fatal; the asset never
// advances with compromised bytes.
func (r *Runner) verifyHash(asset *domain.Asset) error {
	disk, err := r.disks.ByName(domain.Disk(asset.StorageDisk))
	if err != nil {
		return err
	}
	if !disk.Exists(asset.StoragePath) {
		return domainerrors.SourceMissingf("source file missing: %s:%s", asset.StorageDisk, asset.StoragePath)
	}

	sum, err := disk.Hash(asset.StoragePath)
	if err != nil {
		return fmt.Errorf("hash %s: %w", asset.StoragePath, err)
	}
	if !strings.EqualFold(sum, asset.SHA256Hash) {
		return domainerrors.HashMismatchf("hash mismatch for %s: stored %s, computed %s",
			asset.OriginalFilename, asset.SHA256Hash, sum)
	}
	return nil
}

// renderPreview generates the thumbnail and preview derivatives. Preview
// failure never blocks the pipeline; the outcome is recorded and the asset
// moves on.
func (r *Runner) renderPreview(ctx context.Context, asset *domain.Asset) error {
	disk, err := r.disks.ByName(domain.Disk(asset.StorageDisk))
	if err != nil {
		return err
	}

	out := r.previews.Generate(ctx, disk.Path(asset.StoragePath), asset)
	asset.PreviewStatus = out.Status
	asset.ThumbnailPath = out.ThumbnailPath
	asset.PreviewPath = out.PreviewPath
	asset.BlurHash = out.BlurHash

	return r.saveAsset(ctx, asset)
}

// tag asks the classifier for a group, tags, and a description, falling
// back to extension/MIME-derived tags when the remote call is disabled,
// fails, or returns nothing usable. The raw result is persisted so the
// taxonomy stage can resume from storage after a crash.
func (r *Runner) tag(ctx context.Context, asset *domain.Asset) error {
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

	log := r.log.WithAsset(asset.ID)

	res, err := r.classifier.Classify(ctx, req)
	if err != nil || len(res.Tags) == 0 {
		if errors.Is(err, classify.ErrDisabled) {
			log.Debug("classification disabled, using fallback")
		} else if err != nil {
			log.Warn("classification failed, using fallback", "error", err)
		} else {
			log.Warn("classification returned no tags, using fallback")
		}
		res = classify.Fallback(asset.FileExtension, asset.MimeType)
	}

	tags := make([]*domain.Tag, 0, len(res.Tags))
	for _, t := range res.Tags {
		tags = append(tags, &domain.Tag{
			AssetID:    asset.ID,
			Label:      t.Label,
			Facet:      t.Facet,
			Confidence: t.Confidence,
		})
	}
	if err := r.st.ReplaceAssetTags(ctx, asset.ID, tags); err != nil {
		return fmt.Errorf("store tags: %w", err)
	}

	asset.GroupClassification = res.Group
	asset.GroupConfidence = res.GroupConfidence
	asset.Description = res.Description
	switch {
	case res.Fallback:
		asset.ReviewReason = "Fallback classification from file type"
	case res.NeedsReview:
		asset.ReviewReason = "AI classification needs review"
	}
	if err := r.saveAsset(ctx, asset); err != nil {
		return err
	}

	message := fmt.Sprintf("AI tagged: %s", asset.OriginalFilename)
	if res.Fallback {
		message = fmt.Sprintf("Fallback tags applied: %s", asset.OriginalFilename)
	}
	r.recordActivity(asset.ID, domain.ActivityAITagged, message, map[string]any{
		"group":    res.Group,
		"tags":     len(res.Tags),
		"vision":   res.VisionUsed,
		"fallback": res.Fallback,
	})
	return nil
}

// classificationImage picks the bytes sent to the vision model: the rendered
// JPEG preview when one exists, otherwise the original for reasonably sized
// images. Documents and videos without a preview go metadata-only.
func (r *Runner) classificationImage(asset *domain.Asset) ([]byte, string) {
	if asset.PreviewStatus == domain.PreviewDone && strings.HasSuffix(asset.PreviewPath, ".jpg") {
		previews, err := r.disks.ByName(domain.DiskPreviews)
		if err == nil {
			if data, err := previews.Read(asset.PreviewPath); err == nil {
				return data, "image/jpeg"
			}
		}
	}

	if asset.IsImage() && asset.FileSize > 0 && asset.FileSize <= maxInlineImageBytes {
		disk, err := r.disks.ByName(domain.Disk(asset.StorageDisk))
		if err == nil {
			if data, err := disk.Read(asset.StoragePath); err == nil {
				return data, asset.MimeType
			}
		}
	}
	return nil, ""
}

// applyTaxonomy normalizes the stored tags against the controlled
// vocabulary: synonym rewrites, fuzzy correction, the uncontrolled-term
// review gate, and group voting. Tags are read back from storage rather
// than passed in memory so the stage is resumable.
func (r *Runner) applyTaxonomy(ctx context.Context, asset *domain.Asset) error {
	stored, err := r.st.GetAssetTags(ctx, asset.ID)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}

	in := taxonomy.Input{
		Group:           asset.GroupClassification,
		GroupConfidence: asset.GroupConfidence,
		IsDocument:      asset.IsDocument(),
		Tags:            make([]taxonomy.RawTag, 0, len(stored)),
	}
	for _, t := range stored {
		in.Tags = append(in.Tags, taxonomy.RawTag{
			Label:      t.Label,
			Facet:      t.Facet,
			Confidence: t.Confidence,
		})
	}

	res := r.tax.Snapshot().Normalize(in, taxonomy.Options{
		FuzzyThreshold:        taxonomy.FuzzyAcceptClassify,
		AutoApproveConfidence: r.ai.ConfidenceThreshold,
	})

	tags := make([]*domain.Tag, 0, len(res.Tags))
	corrected := 0
	for _, t := range res.Tags {
		if t.Corrected {
			corrected++
		}
		tags = append(tags, &domain.Tag{
			AssetID:      asset.ID,
			Label:        t.Label,
			Facet:        t.Facet,
			Confidence:   t.Confidence,
			AutoApproved: t.AutoApproved,
		})
	}
	if err := r.st.ReplaceAssetTags(ctx, asset.ID, tags); err != nil {
		return fmt.Errorf("store normalized tags: %w", err)
	}

	asset.GroupClassification = res.Group
	asset.GroupConfidence = res.GroupConfidence
	if res.NeedsReview && res.ReviewReason != "" {
		asset.ReviewReason = res.ReviewReason
	}
	if err := r.saveAsset(ctx, asset); err != nil {
		return err
	}

	if corrected > 0 || res.GroupCorrected {
		r.recordActivity(asset.ID, domain.ActivityTaxonomyCorrected,
			fmt.Sprintf("Taxonomy corrected: %s", asset.OriginalFilename), map[string]any{
				"corrected_tags":  corrected,
				"group_corrected": res.GroupCorrected,
				"unknown_terms":   res.UnknownTerms,
			})
	}
	return nil
}

// finish runs the last stage: advisory search indexing, promotion of the
// file to the production disk, and the transition to done with the asset
// queued for review.
func (r *Runner) finish(ctx context.Context, asset *domain.Asset) error {
	log := r.log.WithAsset(asset.ID)

	if r.index != nil {
		tags, err := r.st.GetAssetTags(ctx, asset.ID)
		if err != nil {
			return fmt.Errorf("load tags for indexing: %w", err)
		}
		if err := r.index.Index(asset, tags); err != nil {
			log.Warn("search indexing failed", "error", err)
		}
	}

	if err := r.promote(asset); err != nil {
		return err
	}

	if err := r.advance(ctx, asset, domain.PipelineDone); err != nil {
		return err
	}
	asset.ReviewStatus = domain.ReviewPending
	asset.Touch()
	if err := r.st.UpdateAsset(ctx, asset); err != nil {
		return err
	}

	r.recordActivity(asset.ID, domain.ActivityPipelineCompleted,
		fmt.Sprintf("Pipeline completed for: %s", asset.OriginalFilename), map[string]any{
			"group":          asset.GroupClassification,
			"preview_status": string(asset.PreviewStatus),
		})
	return nil
}

// promote moves the file from staging onto the production disk under a
// date-partitioned path. Idempotent: an asset already on the production
// disk is left where it is, so a resumed run never double-moves.
func (r *Runner) promote(asset *domain.Asset) error {
	if domain.Disk(asset.StorageDisk) == domain.DiskAssets {
		return nil
	}

	src, err := r.disks.ByName(domain.Disk(asset.StorageDisk))
	if err != nil {
		return err
	}
	dst, err := r.disks.ByName(domain.DiskAssets)
	if err != nil {
		return err
	}

	dstRel := storage.ProductionPath(asset.ID, asset.FileExtension, time.Now().UTC())
	if err := src.MoveTo(asset.StoragePath, dst, dstRel); err != nil {
		return fmt.Errorf("promote to production: %w", err)
	}

	asset.StorageDisk = string(domain.DiskAssets)
	asset.StoragePath = dstRel
	return nil
}

// advance transitions the asset to the next stage. A compare-and-swap miss
// means someone changed the status underneath us; a cancellation halts the
// run, anything else is an error.
func (r *Runner) advance(ctx context.Context, asset *domain.Asset, to domain.PipelineStatus) error {
	err := r.st.TransitionStatus(ctx, asset.ID, asset.PipelineStatus, to)
	if err == nil {
		asset.PipelineStatus = to
		return nil
	}
	if errors.Is(err, store.ErrStaleStatus) {
		status, serr := r.st.GetPipelineStatus(ctx, asset.ID)
		if serr != nil {
			return serr
		}
		if status == domain.PipelineCancelled {
			return errCancelled
		}
		return fmt.Errorf("status changed to %s during %s", status, asset.PipelineStatus)
	}
	return err
}

// saveAsset persists in-stage field updates. The status is re-read first so
// a write never reverts a cancellation that landed mid-stage.
func (r *Runner) saveAsset(ctx context.Context, asset *domain.Asset) error {
	status, err := r.st.GetPipelineStatus(ctx, asset.ID)
	if err != nil {
		return err
	}
	if status == domain.PipelineCancelled {
		return errCancelled
	}
	asset.PipelineStatus = status
	asset.Touch()
	return r.st.UpdateAsset(ctx, asset)
}

// fail marks the asset failed and records the error. Runs outside the
// per-asset context so a timeout still gets recorded.
func (r *Runner) fail(asset *domain.Asset, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log := r.log.WithAsset(asset.ID)
	log.Error("pipeline failed", "filename", asset.OriginalFilename,
		"stage", asset.PipelineStatus, "error", cause)

	status, err := r.st.GetPipelineStatus(ctx, asset.ID)
	if err != nil {
		log.Error("read status for failure", "error", err)
		return
	}
	if status.IsTerminal() {
		return
	}
	if err := r.st.TransitionStatus(ctx, asset.ID, status, domain.PipelineFailed); err != nil {
		log.Error("mark asset failed", "error", err)
		return
	}
	asset.PipelineStatus = domain.PipelineFailed

	r.recordActivity(asset.ID, domain.ActivityPipelineFailed,
		fmt.Sprintf("Pipeline failed for: %s", asset.OriginalFilename), map[string]any{
			"stage": string(status),
			"error": cause.Error(),
		})
}

// recordActivity appends an audit record. Best effort; activity loss is
// logged but never fails a stage.
func (r *Runner) recordActivity(assetID string, typ domain.ActivityType, message string, detail map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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
	if err := r.st.CreateActivity(ctx, act); err != nil {
		r.log.Warn("record activity", "asset", assetID, "type", typ, "error", err)
	}
}
