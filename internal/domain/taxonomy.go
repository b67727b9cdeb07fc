package domain

import (
	"strings"
	"time"
)

// TermType classifies entries in the controlled vocabulary.
type TermType string

// Vocabulary term types.
const (
	TermPrimaryGroup TermType = "primary_group"
	TermDocGroup     TermType = "doc_group"
	TermKeyword      TermType = "keyword"
	TermDocKeyword   TermType = "doc_keyword"
)

// VocabularyTerm is one immutable entry of the controlled vocabulary.
// Terms are loaded once into a snapshot and queried read-only.
type VocabularyTerm struct {
	ID          string   `json:"id"`
	TermType    TermType `json:"term_type"`
	GroupCode   string   `json:"group_code"`
	Facet       string   `json:"facet,omitempty"`
	Label       string   `json:"label"`
	ParentCode  string   `json:"parent_code,omitempty"`
	Description string   `json:"description,omitempty"`
	SortOrder   int      `json:"sort_order"`
	IsActive    bool     `json:"is_active"`
}

// NormalizedLabel returns the lowercase label used for membership checks.
func (t *VocabularyTerm) NormalizedLabel() string {
	return strings.ToLower(strings.TrimSpace(t.Label))
}

// SynonymRule maps a raw free-text term to a canonical controlled term,
// optionally carrying a group hint used by the group-vote pass.
// Rules are never exposed to the end user as tags.
type SynonymRule struct {
	ID        string    `json:"id"`
	RawTerm   string    `json:"raw_term"`
	Canonical string    `json:"canonical_term"`
	GroupHint string    `json:"group_hint,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
