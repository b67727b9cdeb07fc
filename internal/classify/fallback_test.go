package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback(t *testing.T) {
	t.Run("jpg maps to media group", func(t *testing.T) {
		res := Fallback("jpg", "image/jpeg")

		assert.Equal(t, "MEDIA", res.Group)
		assert.InDelta(t, FallbackGroupConfidence, res.GroupConfidence, 1e-9)
		assert.True(t, res.NeedsReview)
		assert.True(t, res.Fallback)
		assert.False(t, res.VisionUsed)

		labels := make([]string, 0, len(res.Tags))
		for _, tag := range res.Tags {
			assert.InDelta(t, FallbackTagConfidence, tag.Confidence, 1e-9)
			labels = append(labels, tag.Label)
		}
		assert.Contains(t, labels, "photograph")
		assert.Contains(t, labels, "raster-image")
	})

	t.Run("spreadsheet maps to data document group", func(t *testing.T) {
		res := Fallback("xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		assert.Equal(t, "DOC-DATA", res.Group)
		labels := make([]string, 0, len(res.Tags))
		for _, tag := range res.Tags {
			labels = append(labels, tag.Label)
		}
		assert.Contains(t, labels, "spreadsheet")
		assert.Contains(t, labels, "document")
	})

	t.Run("unknown extension gets unclassified tag", func(t *testing.T) {
		res := Fallback("xyz", "")

		assert.Equal(t, "SPEC", res.Group)
		require.Len(t, res.Tags, 1)
		assert.Equal(t, "unclassified", res.Tags[0].Label)
	})

	t.Run("dot prefix and case are normalized", func(t *testing.T) {
		res := Fallback(".PDF", "application/pdf")
		assert.Equal(t, "DOC-OPS", res.Group)
	})

	t.Run("duplicate labels collapsed", func(t *testing.T) {
		// pdf's extension tags already include "document"; the MIME tag must
		// not duplicate it.
		res := Fallback("pdf", "application/pdf")
		seen := make(map[string]int)
		for _, tag := range res.Tags {
			seen[tag.Label]++
		}
		assert.Equal(t, 1, seen["document"])
	})
}
