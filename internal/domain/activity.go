package domain

import "time"

// ActivityType represents the kind of pipeline event being recorded.
type ActivityType string

// Activity types recorded by the pipeline.
const (
	// ActivityUploaded is recorded when an asset enters the staging area.
	ActivityUploaded ActivityType = "uploaded"

	// ActivityAITagged is recorded after the classification client stores
	// its result (or its fallback) for an asset.
	ActivityAITagged ActivityType = "ai_tagged"

	// ActivityTaxonomyCorrected is recorded when the taxonomy engine
	// rewrites tags or the group classification.
	ActivityTaxonomyCorrected ActivityType = "taxonomy_corrected"

	// ActivityPipelineCompleted is recorded when an asset reaches done.
	ActivityPipelineCompleted ActivityType = "pipeline_completed"

	// ActivityPipelineFailed is recorded when an asset reaches failed.
	ActivityPipelineFailed ActivityType = "pipeline_failed"

	// ActivityPipelineCancelled is recorded when a user cancellation is
	// honored at a stage boundary.
	ActivityPipelineCancelled ActivityType = "pipeline_cancelled"
)

// Activity is one append-only audit record for an asset. Activities are
// immutable once created; detail is denormalized for rendering without joins.
type Activity struct {
	ID        string       `json:"id"`
	AssetID   string       `json:"asset_id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Detail    string       `json:"detail,omitempty"` // JSON blob with event-specific properties
	CreatedAt time.Time    `json:"created_at"`
}
