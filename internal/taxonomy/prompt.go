package taxonomy

import (
	"strings"

	"github.com/mediavault/mediavault-server/internal/domain"
)

// Keyword caps keep the serialized taxonomy inside a reasonable prompt size.
const (
	visualPromptKeywords = 40
	docPromptKeywords    = 30
)

// buildPromptContext serializes the vocabulary for the AI system prompt,
// one line per group: "CODE (Label): keyword, keyword, ...".
func buildPromptContext(terms []*domain.VocabularyTerm, isDocument bool) string {
	wantType := domain.TermKeyword
	limit := visualPromptKeywords
	if isDocument {
		wantType = domain.TermDocKeyword
		limit = docPromptKeywords
	}

	byGroup := make(map[string][]string)
	seen := make(map[string]bool)
	for _, term := range terms {
		if term.TermType != wantType {
			continue
		}
		key := term.GroupCode + "|" + term.NormalizedLabel()
		if seen[key] {
			continue
		}
		seen[key] = true
		if len(byGroup[term.GroupCode]) < limit {
			byGroup[term.GroupCode] = append(byGroup[term.GroupCode], term.Label)
		}
	}

	var lines []string
	for _, g := range GroupsFor(isDocument) {
		keywords := strings.Join(byGroup[g.Code], ", ")
		lines = append(lines, g.Code+" ("+g.Label+"): "+keywords)
	}

	return strings.Join(lines, "\n")
}
