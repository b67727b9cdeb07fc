package classify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// Reasoning models wrap their answer in think tags; most models also ignore
// the no-fences instruction at least some of the time.
var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceOpen  = regexp.MustCompile("(?m)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("(?m)\\s*```\\s*$")
)

// rawResult is the provider's answer before group resolution and confidence
// normalization. Older prompt revisions used "group" and "tag" field names;
// both are still accepted.
type rawResult struct {
	PrimaryGroup    string   `json:"primary_group"`
	DocGroup        string   `json:"doc_group"`
	Group           string   `json:"group"`
	GroupConfidence float64  `json:"group_confidence"`
	Tags            []rawTag `json:"tags"`
	Description     string   `json:"description"`
	NeedsReview     bool     `json:"needs_review"`
}

type rawTag struct {
	Term       string  `json:"term"`
	Tag        string  `json:"tag"`
	Facet      string  `json:"facet"`
	Confidence float64 `json:"confidence"`
}

// parseContent decodes the model's answer. A group field and a tags field
// are both required; anything less is ErrUnusable and triggers the fallback
// path upstream.
func parseContent(content string) (*rawResult, error) {
	cleaned := thinkBlock.ReplaceAllString(content, "")
	cleaned = fenceOpen.ReplaceAllString(cleaned, "")
	cleaned = fenceClose.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusable, err)
	}

	_, hasTags := probe["tags"]
	hasGroup := false
	for _, key := range []string{"primary_group", "doc_group", "group"} {
		if _, ok := probe[key]; ok {
			hasGroup = true
			break
		}
	}
	if !hasGroup || !hasTags {
		return nil, fmt.Errorf("%w: missing group or tags field", ErrUnusable)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusable, err)
	}
	return &raw, nil
}

// normalizeConfidence accepts scores on either a 0-1 or 0-100 scale.
func normalizeConfidence(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// interpret converts a parsed answer into a Result: picks the group field
// for the asset's category, resolves it to a valid code (forcing review when
// it cannot be resolved), and normalizes all confidence scores.
func interpret(raw *rawResult, isDocument bool) *Result {
	res := &Result{
		GroupConfidence: normalizeConfidence(raw.GroupConfidence),
		Description:     strings.TrimSpace(raw.Description),
		NeedsReview:     raw.NeedsReview,
	}

	for _, t := range raw.Tags {
		label := strings.TrimSpace(t.Term)
		if label == "" {
			label = strings.TrimSpace(t.Tag)
		}
		if label == "" {
			continue
		}
		res.Tags = append(res.Tags, taxonomy.RawTag{
			Label:      label,
			Facet:      strings.TrimSpace(t.Facet),
			Confidence: normalizeConfidence(t.Confidence),
		})
	}

	group := raw.PrimaryGroup
	if isDocument {
		group = raw.DocGroup
	}
	if group == "" {
		group = raw.Group
	}

	resolved, ok := ResolveGroupCode(group, isDocument)
	if !ok {
		resolved = taxonomy.DefaultGroup(isDocument)
		res.NeedsReview = true
	}
	res.Group = resolved

	return res
}
