package domain

import (
	"strings"
	"time"
)

// Tag is a single classification term attached to an asset.
// Labels are stored lowercase; the taxonomy engine normalizes raw AI output
// to canonical controlled terms and deduplicates per asset.
type Tag struct {
	ID           string    `json:"id"`
	AssetID      string    `json:"asset_id"`
	Label        string    `json:"label"`
	Facet        string    `json:"facet,omitempty"`
	Confidence   float64   `json:"confidence"` // 0.0 - 1.0
	AutoApproved bool      `json:"auto_approved"`
	IsManual     bool      `json:"is_manual"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizedLabel returns the lowercase trimmed label used for dedup and
// vocabulary lookups.
func (t *Tag) NormalizedLabel() string {
	return strings.ToLower(strings.TrimSpace(t.Label))
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}
