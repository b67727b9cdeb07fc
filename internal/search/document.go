// Package search provides full-text asset search using Bleve.
// Assets are indexed with their normalized tags and group classification so
// queries can combine free text, taxonomy filters, and facet counts.
package search

import (
	"github.com/mediavault/mediavault-server/internal/domain"
)

// AssetDocument is the flattened form of an asset in the Bleve index.
//
// Tag labels and the group code are denormalized into the document so a
// single query covers text, taxonomy, and facet filters without touching
// the store. The index is rebuilt from the store whenever the mapping
// changes, so the denormalized copies never drift for long.
type AssetDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"` // original filename
	MimeType string `json:"mime_type"`

	Description string   `json:"description,omitempty"`
	Group       string   `json:"group,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Facets      []string `json:"facets,omitempty"`

	Extension     string `json:"extension,omitempty"`
	ReviewStatus  string `json:"review_status,omitempty"`
	PreviewStatus string `json:"preview_status,omitempty"`

	FileSize   int64 `json:"file_size,omitempty"`
	IngestedAt int64 `json:"ingested_at"` // Unix millis
	UpdatedAt  int64 `json:"updated_at"`  // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve would otherwise index Go struct field names, which do not match
// the mapping.
func (d *AssetDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"name":        d.Name,
		"mime_type":   d.MimeType,
		"ingested_at": d.IngestedAt,
		"updated_at":  d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Group != "" {
		m["group"] = d.Group
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.Facets) > 0 {
		m["facets"] = d.Facets
	}
	if d.Extension != "" {
		m["extension"] = d.Extension
	}
	if d.ReviewStatus != "" {
		m["review_status"] = d.ReviewStatus
	}
	if d.PreviewStatus != "" {
		m["preview_status"] = d.PreviewStatus
	}
	if d.FileSize > 0 {
		m["file_size"] = d.FileSize
	}

	return m
}

// AssetToDocument flattens an asset and its tags into an index document.
// Tag labels are deduplicated; facet names ride along for facet counts.
func AssetToDocument(asset *domain.Asset, tags []*domain.Tag) *AssetDocument {
	doc := &AssetDocument{
		ID:            asset.ID,
		Name:          asset.OriginalFilename,
		MimeType:      asset.MimeType,
		Description:   asset.Description,
		Group:         asset.GroupClassification,
		Extension:     asset.FileExtension,
		ReviewStatus:  string(asset.ReviewStatus),
		PreviewStatus: string(asset.PreviewStatus),
		FileSize:      asset.FileSize,
		IngestedAt:    asset.IngestedAt.UnixMilli(),
		UpdatedAt:     asset.UpdatedAt.UnixMilli(),
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		label := tag.NormalizedLabel()
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		doc.Tags = append(doc.Tags, label)
		if tag.Facet != "" {
			doc.Facets = append(doc.Facets, tag.Facet)
		}
	}

	return doc
}
