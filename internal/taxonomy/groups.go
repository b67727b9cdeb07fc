// Package taxonomy provides the controlled vocabulary, synonym normalization,
// fuzzy term matching, and group-classification correction applied to AI
// output before tags are stored.
package taxonomy

// GroupDef describes one classification group.
type GroupDef struct {
	Code        string
	Label       string
	Description string
}

// VisualGroups are the primary groups for images, videos, and vector art.
var VisualGroups = []GroupDef{
	{"FOOD", "Food & Beverage", "Farm-to-fork: agriculture, ingredients, packaged goods, grocery, foodservice, restaurants, cooking, beverages"},
	{"MEDIA", "Media & Entertainment", "Media industry: broadcast, streaming, print, digital publishing, social, podcasts, production, talent"},
	{"GENBUS", "General Business", "General business: meetings, office, factories, retail, transport (work context)"},
	{"GEO", "Geography & Places", "Location: US regions, states, cities/markets, skylines, landmarks, place context"},
	{"NATURE", "Nature & Environment", "Nature & environment: landscapes, water, weather, climate, ecosystems, seasons"},
	{"LIFE", "Lifestyle", "Lifestyle: family, leisure, sports, travel, hobbies, wellness, home life"},
	{"SPEC", "Specialty", "Specialty: concepts, icons, diagrams, infographics, patterns, abstract backgrounds"},
}

// DocGroups are the groups for document assets (pdf, office, plain text).
var DocGroups = []GroupDef{
	{"DOC-CLIENT", "Client Deliverables", "Final or near-final client-facing outputs"},
	{"DOC-MKT", "Marketing & Sales", "Decks, one-pagers, messaging, proposals"},
	{"DOC-WEB", "Web & Content Ops", "Wireframes, IA, web specs, content plans"},
	{"DOC-DATA", "Data & Analysis", "Analyses, notebook exports, charts, methodology"},
	{"DOC-PROD", "Product & BPM", "PRDs, alignment docs, workflows"},
	{"DOC-OPS", "Operations", "SOPs, onboarding, checklists"},
	{"DOC-LEGAL", "Legal & Contracts", "MSAs, SOWs, NDAs (restricted)"},
	{"DOC-CLD", "Logical Layer Docs", "Logical layer docs and schemas (highly restricted)"},
}

// Default groups used when no valid classification survives correction.
const (
	DefaultVisualGroup   = "SPEC"
	DefaultDocumentGroup = "DOC-OPS"
)

var (
	visualGroupCodes = groupCodeSet(VisualGroups)
	docGroupCodes    = groupCodeSet(DocGroups)
)

func groupCodeSet(defs []GroupDef) map[string]bool {
	set := make(map[string]bool, len(defs))
	for _, d := range defs {
		set[d.Code] = true
	}
	return set
}

// IsValidGroup reports whether code is a legal group for the asset category.
func IsValidGroup(code string, isDocument bool) bool {
	if isDocument {
		return docGroupCodes[code]
	}
	return visualGroupCodes[code]
}

// DefaultGroup returns the fallback group for the asset category.
func DefaultGroup(isDocument bool) string {
	if isDocument {
		return DefaultDocumentGroup
	}
	return DefaultVisualGroup
}

// GroupsFor returns the group definitions for the asset category.
func GroupsFor(isDocument bool) []GroupDef {
	if isDocument {
		return DocGroups
	}
	return VisualGroups
}
