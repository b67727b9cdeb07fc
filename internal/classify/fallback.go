package classify

import (
	"strings"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

// Fixed low confidences signal to reviewers that no model was involved.
const (
	FallbackTagConfidence   = 0.45
	FallbackGroupConfidence = 0.30
)

var fallbackGroups = map[string]string{
	"jpg": "MEDIA", "jpeg": "MEDIA", "jfif": "MEDIA", "png": "MEDIA", "gif": "MEDIA",
	"webp": "MEDIA", "svg": "SPEC", "bmp": "MEDIA", "tiff": "MEDIA", "tif": "MEDIA",
	"psd": "MEDIA", "ai": "SPEC", "eps": "SPEC",
	"mp4": "MEDIA", "mov": "MEDIA", "avi": "MEDIA", "mkv": "MEDIA",
	"pdf": "DOC-OPS", "doc": "DOC-OPS", "docx": "DOC-OPS",
	"xls": "DOC-DATA", "xlsx": "DOC-DATA", "csv": "DOC-DATA",
	"pptx": "DOC-MKT", "txt": "DOC-OPS", "rtf": "DOC-OPS",
}

var fallbackTags = map[string][]string{
	"jpg": {"photograph", "image", "jpeg"}, "jpeg": {"photograph", "image", "jpeg"},
	"png": {"image", "graphic", "png"}, "gif": {"image", "animated", "gif"},
	"webp": {"image", "web", "webp"}, "svg": {"vector", "graphic", "scalable"},
	"psd": {"photoshop", "design", "layered"}, "ai": {"illustrator", "vector", "design"},
	"eps": {"vector", "print", "encapsulated"}, "tiff": {"image", "print", "high-quality"},
	"tif": {"image", "print", "high-quality"},
	"mp4": {"video", "media", "clip"}, "mov": {"video", "media", "quicktime"},
	"pdf": {"document", "portable", "pdf"}, "doc": {"document", "word", "text"},
	"docx": {"document", "word", "text"},
	"xls":  {"spreadsheet", "data", "excel"}, "xlsx": {"spreadsheet", "data", "excel"},
}

// Fallback derives a classification purely from extension and MIME type.
// It is the terminal safety net when the remote service is disabled,
// unreachable, or returned garbage: it never fails and always routes the
// asset to manual review.
func Fallback(ext, mime string) *Result {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	group, ok := fallbackGroups[ext]
	if !ok {
		group = taxonomy.DefaultGroup(domain.IsDocumentExtension(ext))
	}

	labels := fallbackTags[ext]
	if len(labels) == 0 {
		labels = []string{"unclassified"}
	}

	switch {
	case strings.HasPrefix(mime, "image/"):
		labels = append(labels, "raster-image")
	case strings.HasPrefix(mime, "video/"):
		labels = append(labels, "video-content")
	case strings.HasPrefix(mime, "application/"):
		labels = append(labels, "document")
	}

	res := &Result{
		Group:           group,
		GroupConfidence: FallbackGroupConfidence,
		NeedsReview:     true,
		Fallback:        true,
	}

	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true
		res.Tags = append(res.Tags, taxonomy.RawTag{
			Label:      label,
			Confidence: FallbackTagConfidence,
		})
	}

	return res
}
