package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault-server/internal/domain"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	terms := []*domain.VocabularyTerm{
		{TermType: domain.TermKeyword, GroupCode: "FOOD", Label: "Burger", IsActive: true},
		{TermType: domain.TermKeyword, GroupCode: "FOOD", Label: "Coffee", IsActive: true},
		{TermType: domain.TermKeyword, GroupCode: "NATURE", Label: "Mountain", IsActive: true},
		{TermType: domain.TermKeyword, GroupCode: "NATURE", Label: "Lake", IsActive: true},
		{TermType: domain.TermKeyword, GroupCode: "NATURE", Label: "Forest", IsActive: true},
		{TermType: domain.TermKeyword, GroupCode: "SPEC", Label: "Icon", IsActive: true},
		{TermType: domain.TermDocKeyword, GroupCode: "DOC-OPS", Label: "SOP", IsActive: true},
	}
	rules := []*domain.SynonymRule{
		{RawTerm: "hamburger", Canonical: "Burger", GroupHint: "FOOD", IsActive: true},
		{RawTerm: "cheeseburger", Canonical: "Burger", GroupHint: "FOOD", IsActive: true},
		{RawTerm: "espresso", Canonical: "Coffee", GroupHint: "FOOD", IsActive: true},
		{RawTerm: "woods", Canonical: "Forest", GroupHint: "NATURE", IsActive: true},
	}
	return buildSnapshot(terms, rules)
}

func TestMatchingChars(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"burger", "burger", 6},
		{"burgers", "burger", 6},
		{"mountin", "mountain", 7},
		{"", "anything", 0},
		{"abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, matchingChars(tt.a, tt.b))
		})
	}
}

func TestSimilarityRatio(t *testing.T) {
	assert.InDelta(t, 1.0, similarityRatio("lake", "lake"), 1e-9)
	assert.InDelta(t, 12.0/13.0, similarityRatio("burgers", "burger"), 1e-9)
	assert.InDelta(t, 0.0, similarityRatio("abc", "xyz"), 1e-9)
}

func TestFindClosestTerm(t *testing.T) {
	snap := testSnapshot(t)

	t.Run("exact match scores 1.0", func(t *testing.T) {
		m := snap.FindClosestTerm("Burger")
		require.NotNil(t, m)
		assert.Equal(t, "Burger", m.Label)
		assert.Equal(t, "FOOD", m.GroupCode)
		assert.InDelta(t, 1.0, m.Score, 1e-9)
	})

	t.Run("plural corrected above audit threshold", func(t *testing.T) {
		m := snap.FindClosestTerm("burgers")
		require.NotNil(t, m)
		assert.Equal(t, "Burger", m.Label)
		assert.GreaterOrEqual(t, m.Score, FuzzyAcceptAudit)
	})

	t.Run("typo matched by similarity", func(t *testing.T) {
		m := snap.FindClosestTerm("mountin")
		require.NotNil(t, m)
		assert.Equal(t, "Mountain", m.Label)
		assert.GreaterOrEqual(t, m.Score, FuzzyAcceptClassify)
	})

	t.Run("unrelated term has no match", func(t *testing.T) {
		assert.Nil(t, snap.FindClosestTerm("xylophone"))
	})

	t.Run("empty term has no match", func(t *testing.T) {
		assert.Nil(t, snap.FindClosestTerm("   "))
	})
}
