package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Disk is a logical storage disk name. An asset's file lives on exactly one
// disk at a time and moves from staging to assets when the pipeline completes.
type Disk string

const (
	DiskStaging  Disk = "staging"
	DiskAssets   Disk = "assets"
	DiskPreviews Disk = "previews"
)

// documentExtensions are the file extensions classified against the document
// group codes rather than the visual ones.
var documentExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "pptx": true,
	"xlsx": true, "xls": true, "txt": true, "csv": true, "rtf": true,
}

// Asset is the persistent record for one ingested file and its processing state.
type Asset struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	FileExtension    string    `json:"file_extension"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	SHA256Hash       string    `json:"sha256_hash"`
	UploadSource     string    `json:"upload_source"`
	IngestedAt       time.Time `json:"ingested_at"`

	// Classification
	GroupClassification string  `json:"group_classification,omitempty"`
	GroupConfidence     float64 `json:"group_confidence,omitempty"`
	Description         string  `json:"description,omitempty"`

	// Processing state
	PipelineStatus PipelineStatus `json:"pipeline_status"`
	PreviewStatus  PreviewStatus  `json:"preview_status"`
	ReviewStatus   ReviewStatus   `json:"review_status"`
	ReviewReason   string         `json:"review_reason,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`

	// Storage location (mutable across stages)
	StorageDisk   string `json:"storage_disk"`
	StoragePath   string `json:"storage_path"`
	PreviewPath   string `json:"preview_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
	BlurHash      string `json:"blur_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (a *Asset) Touch() {
	a.UpdatedAt = time.Now()
}

// IsDocument reports whether the asset is classified against document groups
// (pdf, office, plain text) rather than visual groups.
func (a *Asset) IsDocument() bool {
	return IsDocumentExtension(a.FileExtension)
}

// IsImage reports whether the declared MIME type is an image type.
func (a *Asset) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// IsDocumentExtension reports whether ext (without dot, any case) belongs to
// the document category.
func IsDocumentExtension(ext string) bool {
	return documentExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// ExtensionOf extracts the lowercase extension of a filename without the dot.
func ExtensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
