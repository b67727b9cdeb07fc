package classify

import (
	"strings"

	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// groupAliases maps labels the model commonly returns instead of the real
// group codes.
var groupAliases = map[string]string{
	"FOOD GROUP":       "FOOD",
	"MEDIA GROUP":      "MEDIA",
	"BUSINESS":         "GENBUS",
	"GEN BUSINESS":     "GENBUS",
	"GENERAL BUSINESS": "GENBUS",
	"LOCATION":         "GEO",
	"GEOGRAPHY":        "GEO",
	"LIFESTYLE":        "LIFE",
	"SPECIALTY":        "SPEC",
	"CONCEPTS":         "SPEC",

	"CLIENT":     "DOC-CLIENT",
	"MARKETING":  "DOC-MKT",
	"WEB":        "DOC-WEB",
	"DATA":       "DOC-DATA",
	"PRODUCT":    "DOC-PROD",
	"OPERATIONS": "DOC-OPS",
	"LEGAL":      "DOC-LEGAL",
	"CLOUD":      "DOC-CLD",
}

// ResolveGroupCode maps a model-returned group label to a valid code for the
// asset's category, trying the code itself first and then the alias table.
func ResolveGroupCode(raw string, isDocument bool) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", false
	}
	if taxonomy.IsValidGroup(code, isDocument) {
		return code, true
	}
	if alias, ok := groupAliases[code]; ok && taxonomy.IsValidGroup(alias, isDocument) {
		return alias, true
	}
	return "", false
}
