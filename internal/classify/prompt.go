package classify

import (
	"fmt"
	"strings"

	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// systemPrompt builds the taxonomy-grounded system prompt. The vocabulary
// listing comes pre-serialized from the taxonomy snapshot so the prompt stays
// in sync with vocabulary edits without rebuilding it per call.
func systemPrompt(isDocument bool, vocabulary string, confidenceThreshold float64) string {
	groupField := "primary_group"
	if isDocument {
		groupField = "doc_group"
	}

	groups := taxonomy.GroupsFor(isDocument)
	codes := make([]string, len(groups))
	for i, g := range groups {
		codes[i] = g.Code
	}

	return fmt.Sprintf(`You are a digital asset classifier for a media company. When an image is provided, LOOK AT IT CAREFULLY and base your classification on what you SEE in the image — not just the filename.

Classify the asset using ONLY terms from the taxonomy below.

GROUPS (pick one %[1]s): %[2]s

TAXONOMY (Group: allowed tags):
%[3]s

Return ONLY valid JSON (no markdown, no fences):
{"%[1]s":"CODE","group_confidence":90,"tags":[{"term":"Tag","facet":"Category","confidence":85}],"description":"One sentence","needs_review":false}

Rules:
- Pick 8-15 tags from the taxonomy above. Use exact term labels. Be comprehensive — tag content, style, mood, subject, setting.
- The %[1]s MUST match what the image actually shows (e.g. a lake photo → NATURE, food → FOOD, office → GENBUS).
- Set needs_review=true if uncertain (confidence < %[4]d).
- group_confidence and tag confidence are 0-100.
- description: 1-2 factual sentences describing what is VISIBLE in the asset.`,
		groupField, strings.Join(codes, ", "), vocabulary, int(confidenceThreshold*100))
}
