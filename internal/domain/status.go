// Package domain defines the core types for assets, tags, taxonomy, and the
// processing pipeline state machine.
package domain

// PipelineStatus represents the stage an asset occupies in the processing pipeline.
type PipelineStatus string

// Pipeline stages in execution order, plus the absorbing terminal states.
const (
	PipelineQueued      PipelineStatus = "queued"
	PipelineHashing     PipelineStatus = "hashing"
	PipelinePreviewing  PipelineStatus = "previewing"
	PipelineTagging     PipelineStatus = "tagging"
	PipelineClassifying PipelineStatus = "classifying"
	PipelineIndexing    PipelineStatus = "indexing"
	PipelineDone        PipelineStatus = "done"
	PipelineFailed      PipelineStatus = "failed"
	PipelineCancelled   PipelineStatus = "cancelled"
)

// stageOrder maps each forward stage to its position in the pipeline.
// Terminal states are not part of the forward order.
var stageOrder = map[PipelineStatus]int{
	PipelineQueued:      0,
	PipelineHashing:     1,
	PipelinePreviewing:  2,
	PipelineTagging:     3,
	PipelineClassifying: 4,
	PipelineIndexing:    5,
	PipelineDone:        6,
}

// IsTerminal reports whether the status is absorbing (done, failed, cancelled).
func (s PipelineStatus) IsTerminal() bool {
	return s == PipelineDone || s == PipelineFailed || s == PipelineCancelled
}

// CanTransition reports whether moving from s to next is a legal transition.
// Transitions are strictly forward through the stage order; failed and
// cancelled are reachable from any non-terminal state and absorb everything.
func (s PipelineStatus) CanTransition(next PipelineStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == PipelineFailed || next == PipelineCancelled {
		return true
	}
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// PreviewStatus represents the outcome of preview generation for an asset.
type PreviewStatus string

// Preview generation outcomes.
const (
	PreviewPending     PreviewStatus = "pending"
	PreviewDone        PreviewStatus = "done"
	PreviewUnsupported PreviewStatus = "unsupported"
	PreviewFailed      PreviewStatus = "failed"
)

// ReviewStatus represents where an asset sits in the manual review workflow.
type ReviewStatus string

// Review workflow states.
const (
	ReviewNone     ReviewStatus = "none"
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)
