// Package classify calls a remote vision/text classification service and
// turns its structured output into controlled-vocabulary candidates. Every
// failure mode degrades to the extension/MIME fallback; the package never
// blocks an asset's pipeline on a provider problem.
package classify

import (
	"errors"

	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

var (
	// ErrDisabled means no API key is configured.
	ErrDisabled = errors.New("classification disabled: no API key configured")
	// ErrRateLimited means the provider returned 429.
	ErrRateLimited = errors.New("classification service rate limited")
	// ErrUnauthorized means the provider rejected the API key.
	ErrUnauthorized = errors.New("classification service rejected credentials")
	// ErrServer means the provider returned a 5xx status.
	ErrServer = errors.New("classification service error")
	// ErrUnusable means the response could not be decoded into a usable result.
	ErrUnusable = errors.New("unusable classification response")
)

// Request describes one asset to classify. Image carries the rendered
// preview bytes when available; without them the client falls back to a
// metadata-only call.
type Request struct {
	Filename   string
	Extension  string
	MIME       string
	Size       int64
	Image      []byte
	ImageMIME  string
	Vocabulary string // serialized taxonomy listing for the system prompt
	IsDocument bool
}

// Result is a classification outcome, remote or fallback.
type Result struct {
	Group           string
	GroupConfidence float64
	Tags            []taxonomy.RawTag
	Description     string
	NeedsReview     bool

	// VisionUsed is true when the result came from a call that saw the
	// image bytes, false for text-only and fallback results.
	VisionUsed bool
	// Fallback is true for extension/MIME-derived results.
	Fallback bool
}
