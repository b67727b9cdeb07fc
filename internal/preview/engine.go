// Package preview renders thumbnails and medium-size previews for every
// supported asset format. Native raster formats are resized in-process; PDF,
// vector, video, and office formats go through external tools with per-format
// fallback chains. A missing tool never fails an asset, it just degrades the
// result to "unsupported".
package preview

import (
	"context"
	"os"
	"path"
	"strings"
	"time"

	"github.com/mediavault/mediavault-server/internal/config"
	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/storage"
	"github.com/mediavault/mediavault-server/internal/util"
)

// Output is the result of one preview run. Paths are relative to the
// previews disk and empty unless Status is done.
type Output struct {
	Status        domain.PreviewStatus
	ThumbnailPath string
	PreviewPath   string
	BlurHash      string
}

type handlerFunc func(ctx context.Context, source, dir, base string) (*Output, error)

// Engine renders previews onto the previews disk.
type Engine struct {
	previews     *storage.Disk
	tools        *Tools
	thumbSize    int
	previewWidth int
	toolTimeout  time.Duration
	log          *logger.Logger
}

// NewEngine creates a preview engine writing to the previews disk.
func NewEngine(previews *storage.Disk, cfg config.PipelineConfig, log *logger.Logger) *Engine {
	engineLog := log.WithComponent("preview")
	return &Engine{
		previews:     previews,
		tools:        NewTools(cfg.ToolTimeout, engineLog),
		thumbSize:    cfg.ThumbnailSize,
		previewWidth: cfg.PreviewWidth,
		toolTimeout:  cfg.ToolTimeout,
		log:          engineLog,
	}
}

// Generate renders a thumbnail and preview for the asset's source file.
// It never returns an error: tool and render failures are folded into the
// Output status so the caller can record them and move on.
func (e *Engine) Generate(ctx context.Context, source string, asset *domain.Asset) *Output {
	ext := strings.ToLower(strings.TrimPrefix(asset.FileExtension, "."))

	handler := e.handlerFor(ext)
	if handler == nil {
		e.log.Info("no preview handler for extension", "asset", asset.ID, "ext", ext)
		return &Output{Status: domain.PreviewUnsupported}
	}

	if _, err := os.Stat(source); err != nil {
		e.log.Warn("preview source missing", "asset", asset.ID, "path", source)
		return &Output{Status: domain.PreviewFailed}
	}

	base := previewBase(asset.OriginalFilename, asset.ID)
	dir := time.Now().UTC().Format("2006/01/02")

	out, err := handler(ctx, source, dir, base)
	if err != nil {
		e.log.Error("preview generation failed", "asset", asset.ID, "ext", ext, "error", err)
		return &Output{Status: domain.PreviewFailed}
	}
	if out == nil {
		e.log.Info("no preview tool available", "asset", asset.ID, "ext", ext)
		return &Output{Status: domain.PreviewUnsupported}
	}

	out.Status = domain.PreviewDone

	// Best effort; a preview without a placeholder hash is still a preview.
	if hash, err := e.computeBlurHash(out.ThumbnailPath); err == nil {
		out.BlurHash = hash
	}

	return out
}

// handlerFor maps an extension to its handler family.
func (e *Engine) handlerFor(ext string) handlerFunc {
	switch ext {
	case "jpg", "jpeg", "jfif", "png", "gif", "webp", "bmp":
		return e.renderRaster
	case "tiff", "tif":
		return e.renderTIFF
	case "psd":
		return e.renderFlattened
	case "pdf":
		return e.renderPDF
	case "svg":
		return e.renderSVG
	case "ai":
		return e.renderIllustrator
	case "eps":
		return e.renderEPS
	case "mp4", "mov", "avi", "mkv":
		return e.renderVideo
	case "doc", "docx", "xls", "xlsx", "pptx":
		return e.renderOffice
	default:
		return nil
	}
}

// previewBase builds the shared filename stem for an asset's derivatives.
func previewBase(originalFilename, assetID string) string {
	stem := originalFilename
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	slug := util.Slugify(stem)
	if slug == "" {
		return assetID
	}
	return slug + "-" + assetID
}

// tempFile creates a scoped temp file path with the given suffix. The file
// itself is created so converters that refuse to overwrite get a real target.
func tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

// derivativePaths returns the relative thumb and preview paths for a base name.
func derivativePaths(dir, base, previewExt string) (thumb, prev string) {
	return path.Join(dir, base+"-thumb.jpg"), path.Join(dir, base+"-preview."+previewExt)
}
