package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyOpts() Options {
	return Options{FuzzyThreshold: FuzzyAcceptClassify, AutoApproveConfidence: 0.70}
}

func TestNormalizeSynonymRoundTrip(t *testing.T) {
	snap := testSnapshot(t)

	res := snap.Normalize(Input{
		Group:           "FOOD",
		GroupConfidence: 0.90,
		Tags:            []RawTag{{Label: "Hamburger", Confidence: 0.95}},
	}, classifyOpts())

	require.Len(t, res.Tags, 1)
	tag := res.Tags[0]
	assert.Equal(t, "burger", tag.Label)
	assert.True(t, tag.Controlled)
	assert.True(t, tag.Corrected)
	assert.True(t, tag.AutoApproved)
	assert.Equal(t, "FOOD", res.Group)
	assert.False(t, res.GroupCorrected)
	assert.False(t, res.NeedsReview)
}

func TestNormalizeFuzzyCorrection(t *testing.T) {
	snap := testSnapshot(t)

	t.Run("audit threshold corrects close plural", func(t *testing.T) {
		res := snap.Normalize(Input{
			Group: "FOOD", GroupConfidence: 0.90,
			Tags: []RawTag{{Label: "burgers", Confidence: 0.60}},
		}, Options{FuzzyThreshold: FuzzyAcceptAudit, AutoApproveConfidence: 0.70})

		require.Len(t, res.Tags, 1)
		assert.Equal(t, "burger", res.Tags[0].Label)
		assert.True(t, res.Tags[0].Controlled)
		// Below the auto-approve confidence.
		assert.False(t, res.Tags[0].AutoApproved)
		assert.Empty(t, res.UnknownTerms)
	})

	t.Run("unknown term kept but not approved", func(t *testing.T) {
		res := snap.Normalize(Input{
			Group: "FOOD", GroupConfidence: 0.90,
			Tags: []RawTag{{Label: "xylophone", Confidence: 0.99}},
		}, classifyOpts())

		require.Len(t, res.Tags, 1)
		assert.Equal(t, "xylophone", res.Tags[0].Label)
		assert.False(t, res.Tags[0].Controlled)
		assert.False(t, res.Tags[0].AutoApproved)
		assert.Equal(t, []string{"xylophone"}, res.UnknownTerms)
		assert.False(t, res.NeedsReview, "a single unknown term is not enough for review")
	})
}

func TestNormalizeUnknownTermReviewGate(t *testing.T) {
	snap := testSnapshot(t)

	res := snap.Normalize(Input{
		Group: "NATURE", GroupConfidence: 0.90,
		Tags: []RawTag{
			{Label: "quixotic", Confidence: 0.9},
			{Label: "zeppelin", Confidence: 0.8},
			{Label: "vortex", Confidence: 0.7},
			{Label: "lake", Confidence: 0.9},
		},
	}, classifyOpts())

	assert.True(t, res.NeedsReview)
	assert.Contains(t, res.ReviewReason, "Multiple uncontrolled terms")
	assert.Contains(t, res.ReviewReason, "quixotic")
	assert.Len(t, res.UnknownTerms, 3)
	// The valid group survives; review is about the terms.
	assert.Equal(t, "NATURE", res.Group)
}

func TestNormalizeGroupVoting(t *testing.T) {
	snap := testSnapshot(t)

	t.Run("invalid group corrected by vote", func(t *testing.T) {
		res := snap.Normalize(Input{
			Group: "BUSINESS", GroupConfidence: 0.50,
			Tags: []RawTag{
				{Label: "hamburger", Confidence: 0.9},
				{Label: "espresso", Confidence: 0.9},
			},
		}, classifyOpts())

		assert.Equal(t, "FOOD", res.Group)
		assert.True(t, res.GroupCorrected)
		assert.InDelta(t, 1.0, res.GroupConfidence, 1e-9)
	})

	t.Run("high-confidence valid group is kept", func(t *testing.T) {
		res := snap.Normalize(Input{
			Group: "NATURE", GroupConfidence: 0.90,
			Tags: []RawTag{
				{Label: "hamburger", Confidence: 0.9},
				{Label: "espresso", Confidence: 0.9},
			},
		}, classifyOpts())

		assert.Equal(t, "NATURE", res.Group)
		assert.False(t, res.GroupCorrected)
	})

	t.Run("valid group with mid confidence is not overwritten", func(t *testing.T) {
		// Confidence 0.70 sits between the overwrite cutoff (0.60) and the
		// keep cutoff (0.80): voting runs but may not replace the group.
		res := snap.Normalize(Input{
			Group: "NATURE", GroupConfidence: 0.70,
			Tags: []RawTag{
				{Label: "hamburger", Confidence: 0.9},
				{Label: "espresso", Confidence: 0.9},
			},
		}, classifyOpts())

		assert.Equal(t, "NATURE", res.Group)
		assert.False(t, res.GroupCorrected)
	})

	t.Run("low-confidence valid group can be replaced", func(t *testing.T) {
		res := snap.Normalize(Input{
			Group: "FOOD", GroupConfidence: 0.30,
			Tags: []RawTag{{Label: "woods", Confidence: 0.9}},
		}, classifyOpts())

		assert.Equal(t, "NATURE", res.Group)
		assert.True(t, res.GroupCorrected)
	})

	t.Run("no votes falls back to category default", func(t *testing.T) {
		res := snap.Normalize(Input{
			Group: "", GroupConfidence: 0,
			Tags: []RawTag{{Label: "lake", Confidence: 0.9}},
		}, classifyOpts())

		assert.Equal(t, DefaultVisualGroup, res.Group)
		assert.InDelta(t, fallbackGroupConfidence, res.GroupConfidence, 1e-9)
		assert.True(t, res.NeedsReview)
	})

	t.Run("document default differs", func(t *testing.T) {
		res := snap.Normalize(Input{
			Group: "", GroupConfidence: 0, IsDocument: true,
			Tags: []RawTag{{Label: "sop", Confidence: 0.9}},
		}, classifyOpts())

		assert.Equal(t, DefaultDocumentGroup, res.Group)
	})
}

func TestNormalizeDedup(t *testing.T) {
	snap := testSnapshot(t)

	res := snap.Normalize(Input{
		Group: "FOOD", GroupConfidence: 0.90,
		Tags: []RawTag{
			{Label: "hamburger", Confidence: 0.60},
			{Label: "Burger", Confidence: 0.95},
			{Label: "cheeseburger", Confidence: 0.40},
		},
	}, classifyOpts())

	require.Len(t, res.Tags, 1)
	assert.Equal(t, "burger", res.Tags[0].Label)
	assert.InDelta(t, 0.95, res.Tags[0].Confidence, 1e-9)
}

func TestNormalizeEmptyInput(t *testing.T) {
	snap := testSnapshot(t)

	res := snap.Normalize(Input{}, classifyOpts())

	assert.Empty(t, res.Tags)
	assert.Equal(t, DefaultVisualGroup, res.Group)
	assert.True(t, res.NeedsReview)
}

func TestNormalizeBlankLabelsSkipped(t *testing.T) {
	snap := testSnapshot(t)

	res := snap.Normalize(Input{
		Group: "FOOD", GroupConfidence: 0.90,
		Tags: []RawTag{{Label: "   ", Confidence: 0.9}, {Label: "burger", Confidence: 0.9}},
	}, classifyOpts())

	require.Len(t, res.Tags, 1)
	assert.Equal(t, "burger", res.Tags[0].Label)
}
