package taxonomy

import (
	"context"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/store"
)

// KeywordSeed defines one controlled keyword for seeding.
type KeywordSeed struct {
	Label string
	Facet string
}

// GroupKeywordSeed groups keywords under a group code.
type GroupKeywordSeed struct {
	GroupCode string
	Keywords  []KeywordSeed
}

// SynonymSeed defines one built-in synonym rule.
type SynonymSeed struct {
	Raw       string
	Canonical string
	GroupHint string
}

// DefaultVisualKeywords is the built-in keyword vocabulary for visual assets.
// Stewards extend it through the taxonomy tables after initial setup.
var DefaultVisualKeywords = []GroupKeywordSeed{
	{
		GroupCode: "FOOD",
		Keywords: []KeywordSeed{
			{"Burger", "Dishes"}, {"Pizza", "Dishes"}, {"Sandwich", "Dishes"},
			{"Salad", "Dishes"}, {"Dessert", "Dishes"}, {"Breakfast", "Dishes"},
			{"Coffee", "Beverages"}, {"Soft Drink", "Beverages"}, {"Juice", "Beverages"},
			{"Fresh Produce", "Ingredients"}, {"Meat", "Ingredients"}, {"Dairy", "Ingredients"},
			{"Restaurant", "Foodservice"}, {"Kitchen", "Foodservice"}, {"Grocery Store", "Retail"},
			{"Food Packaging", "Packaging"}, {"Farm", "Agriculture"},
		},
	},
	{
		GroupCode: "MEDIA",
		Keywords: []KeywordSeed{
			{"Broadcast Studio", "Production"}, {"Camera Crew", "Production"},
			{"Podcast", "Formats"}, {"Streaming", "Formats"}, {"Print Media", "Formats"},
			{"Social Media", "Formats"}, {"News Anchor", "Talent"}, {"Influencer", "Talent"},
			{"Editing Suite", "Production"}, {"Microphone", "Equipment"},
			{"Raster Image", "Formats"}, {"Vector Art", "Formats"}, {"Video Frame", "Formats"},
		},
	},
	{
		GroupCode: "GENBUS",
		Keywords: []KeywordSeed{
			{"Meeting", "Workplace"}, {"Office", "Workplace"}, {"Presentation", "Workplace"},
			{"Handshake", "Workplace"}, {"Factory", "Industry"}, {"Warehouse", "Industry"},
			{"Retail Store", "Commerce"}, {"Checkout", "Commerce"}, {"Delivery Truck", "Transport"},
			{"Laptop", "Technology"}, {"Whiteboard", "Workplace"}, {"Team", "People"},
		},
	},
	{
		GroupCode: "GEO",
		Keywords: []KeywordSeed{
			{"Skyline", "Urban"}, {"Landmark", "Urban"}, {"Downtown", "Urban"},
			{"Bridge", "Urban"}, {"Highway", "Infrastructure"}, {"Airport", "Infrastructure"},
			{"Midwest", "Regions"}, {"Northeast", "Regions"}, {"South", "Regions"},
			{"West Coast", "Regions"}, {"Map", "Reference"},
		},
	},
	{
		GroupCode: "NATURE",
		Keywords: []KeywordSeed{
			{"Mountain", "Landscapes"}, {"Forest", "Landscapes"}, {"Desert", "Landscapes"},
			{"Lake", "Water"}, {"River", "Water"}, {"Ocean", "Water"}, {"Waterfall", "Water"},
			{"Sunset", "Light"}, {"Sunrise", "Light"}, {"Storm", "Weather"}, {"Snow", "Weather"},
			{"Wildlife", "Ecosystems"}, {"Wildflowers", "Ecosystems"}, {"Autumn", "Seasons"},
		},
	},
	{
		GroupCode: "LIFE",
		Keywords: []KeywordSeed{
			{"Family", "People"}, {"Children", "People"}, {"Seniors", "People"},
			{"Running", "Sports"}, {"Cycling", "Sports"}, {"Yoga", "Wellness"},
			{"Travel", "Leisure"}, {"Beach Vacation", "Leisure"}, {"Camping", "Leisure"},
			{"Cooking At Home", "Home"}, {"Gardening", "Home"}, {"Pets", "Home"},
		},
	},
	{
		GroupCode: "SPEC",
		Keywords: []KeywordSeed{
			{"Icon", "Graphics"}, {"Infographic", "Graphics"}, {"Diagram", "Graphics"},
			{"Pattern", "Backgrounds"}, {"Abstract Background", "Backgrounds"},
			{"Texture", "Backgrounds"}, {"Logo", "Graphics"}, {"Illustration", "Graphics"},
			{"Concept Art", "Concepts"},
		},
	},
}

// DefaultDocKeywords is the built-in keyword vocabulary for document assets.
var DefaultDocKeywords = []GroupKeywordSeed{
	{
		GroupCode: "DOC-CLIENT",
		Keywords: []KeywordSeed{
			{"Final Deliverable", "Stage"}, {"Client Report", "Type"},
			{"Executive Summary", "Type"}, {"Case Study", "Type"},
		},
	},
	{
		GroupCode: "DOC-MKT",
		Keywords: []KeywordSeed{
			{"Pitch Deck", "Type"}, {"One Pager", "Type"}, {"Proposal", "Type"},
			{"Messaging Framework", "Type"}, {"Sales Sheet", "Type"},
		},
	},
	{
		GroupCode: "DOC-WEB",
		Keywords: []KeywordSeed{
			{"Wireframe", "Type"}, {"Sitemap", "Type"}, {"Content Plan", "Type"},
			{"Web Spec", "Type"},
		},
	},
	{
		GroupCode: "DOC-DATA",
		Keywords: []KeywordSeed{
			{"Analysis", "Type"}, {"Dashboard Export", "Type"}, {"Methodology", "Type"},
			{"Spreadsheet", "Type"}, {"Chart Pack", "Type"},
		},
	},
	{
		GroupCode: "DOC-PROD",
		Keywords: []KeywordSeed{
			{"PRD", "Type"}, {"Workflow", "Type"}, {"Alignment Doc", "Type"},
			{"Roadmap", "Type"},
		},
	},
	{
		GroupCode: "DOC-OPS",
		Keywords: []KeywordSeed{
			{"SOP", "Type"}, {"Checklist", "Type"}, {"Onboarding Guide", "Type"},
			{"Runbook", "Type"}, {"Policy", "Type"},
		},
	},
	{
		GroupCode: "DOC-LEGAL",
		Keywords: []KeywordSeed{
			{"MSA", "Type"}, {"SOW", "Type"}, {"NDA", "Type"}, {"Contract", "Type"},
		},
	},
	{
		GroupCode: "DOC-CLD",
		Keywords: []KeywordSeed{
			{"Schema", "Type"}, {"Logical Model", "Type"}, {"Data Dictionary", "Type"},
		},
	},
}

// DefaultSynonyms are the built-in synonym rules (raw → canonical, with an
// optional group hint used by the group vote).
var DefaultSynonyms = []SynonymSeed{
	{"hamburger", "Burger", "FOOD"},
	{"cheeseburger", "Burger", "FOOD"},
	{"burgers", "Burger", "FOOD"},
	{"fries", "Burger", "FOOD"},
	{"soda", "Soft Drink", "FOOD"},
	{"pop", "Soft Drink", "FOOD"},
	{"espresso", "Coffee", "FOOD"},
	{"latte", "Coffee", "FOOD"},
	{"supermarket", "Grocery Store", "FOOD"},
	{"diner", "Restaurant", "FOOD"},
	{"cafe", "Restaurant", "FOOD"},
	{"tv studio", "Broadcast Studio", "MEDIA"},
	{"newsroom", "Broadcast Studio", "MEDIA"},
	{"vlog", "Social Media", "MEDIA"},
	{"photo", "Raster Image", "MEDIA"},
	{"photograph", "Raster Image", "MEDIA"},
	{"bitmap", "Raster Image", "MEDIA"},
	{"conference", "Meeting", "GENBUS"},
	{"boardroom", "Meeting", "GENBUS"},
	{"workplace", "Office", "GENBUS"},
	{"plant", "Factory", "GENBUS"},
	{"semi truck", "Delivery Truck", "GENBUS"},
	{"cityscape", "Skyline", "GEO"},
	{"monument", "Landmark", "GEO"},
	{"freeway", "Highway", "GEO"},
	{"woods", "Forest", "NATURE"},
	{"woodland", "Forest", "NATURE"},
	{"sea", "Ocean", "NATURE"},
	{"creek", "River", "NATURE"},
	{"dusk", "Sunset", "NATURE"},
	{"dawn", "Sunrise", "NATURE"},
	{"fall foliage", "Autumn", "NATURE"},
	{"kids", "Children", "LIFE"},
	{"elderly", "Seniors", "LIFE"},
	{"jogging", "Running", "LIFE"},
	{"vacation", "Travel", "LIFE"},
	{"holiday", "Travel", "LIFE"},
	{"glyph", "Icon", "SPEC"},
	{"pictogram", "Icon", "SPEC"},
	{"chart", "Infographic", "SPEC"},
	{"graph", "Infographic", "SPEC"},
	{"flowchart", "Diagram", "SPEC"},
	{"wallpaper", "Abstract Background", "SPEC"},
	{"swatch", "Pattern", "SPEC"},
	{"slide deck", "Pitch Deck", "DOC-MKT"},
	{"powerpoint", "Pitch Deck", "DOC-MKT"},
	{"standard operating procedure", "SOP", "DOC-OPS"},
	{"master services agreement", "MSA", "DOC-LEGAL"},
	{"statement of work", "SOW", "DOC-LEGAL"},
	{"non-disclosure agreement", "NDA", "DOC-LEGAL"},
	{"erd", "Schema", "DOC-CLD"},
}

// seedDefaults loads the built-in vocabulary into an empty store.
// Returns the number of terms written.
func seedDefaults(ctx context.Context, st store.Store) (int, error) {
	written := 0
	order := 0

	upsertGroup := func(g GroupDef, termType domain.TermType) error {
		order++
		return st.UpsertVocabularyTerm(ctx, &domain.VocabularyTerm{
			TermType:    termType,
			GroupCode:   g.Code,
			Label:       g.Label,
			Description: g.Description,
			SortOrder:   order,
			IsActive:    true,
		})
	}

	for _, g := range VisualGroups {
		if err := upsertGroup(g, domain.TermPrimaryGroup); err != nil {
			return written, err
		}
		written++
	}
	for _, g := range DocGroups {
		if err := upsertGroup(g, domain.TermDocGroup); err != nil {
			return written, err
		}
		written++
	}

	upsertKeywords := func(seeds []GroupKeywordSeed, termType domain.TermType) error {
		for _, group := range seeds {
			for _, kw := range group.Keywords {
				order++
				err := st.UpsertVocabularyTerm(ctx, &domain.VocabularyTerm{
					TermType:  termType,
					GroupCode: group.GroupCode,
					Facet:     kw.Facet,
					Label:     kw.Label,
					SortOrder: order,
					IsActive:  true,
				})
				if err != nil {
					return err
				}
				written++
			}
		}
		return nil
	}

	if err := upsertKeywords(DefaultVisualKeywords, domain.TermKeyword); err != nil {
		return written, err
	}
	if err := upsertKeywords(DefaultDocKeywords, domain.TermDocKeyword); err != nil {
		return written, err
	}

	for _, syn := range DefaultSynonyms {
		err := st.UpsertSynonymRule(ctx, &domain.SynonymRule{
			RawTerm:   syn.Raw,
			Canonical: syn.Canonical,
			GroupHint: syn.GroupHint,
			IsActive:  true,
		})
		if err != nil {
			return written, err
		}
	}

	return written, nil
}
