package preview

import (
	"context"
	"os"
	"path"
	"strconv"
)

// renderSVG stores the vector source verbatim as the preview so capable
// browsers render the original, and rasterizes a thumbnail via Inkscape or
// ImageMagick. With no rasterizer installed the SVG serves as both.
func (e *Engine) renderSVG(ctx context.Context, source, dir, base string) (*Output, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	svgRel := path.Join(dir, base+"-preview.svg")
	if err := e.previews.Write(svgRel, data); err != nil {
		return nil, err
	}

	if thumb, ok := e.rasterizeVectorThumb(ctx, source, dir, base); ok {
		return &Output{ThumbnailPath: thumb, PreviewPath: svgRel}, nil
	}

	return &Output{ThumbnailPath: svgRel, PreviewPath: svgRel}, nil
}

// rasterizeVectorThumb renders an SVG thumbnail, reporting false when no
// tool produced one.
func (e *Engine) rasterizeVectorThumb(ctx context.Context, source, dir, base string) (string, bool) {
	tmp, err := tempFile("mediavault-svg-*.png")
	if err != nil {
		return "", false
	}
	defer os.Remove(tmp)

	rendered := false
	if e.tools.Has("inkscape") {
		err := e.tools.Run(ctx, "inkscape",
			"--export-type=png", "--export-width="+strconv.Itoa(e.thumbSize),
			"--export-filename="+tmp, source)
		rendered = err == nil && fileExists(tmp)
	}
	if !rendered {
		if cmd := e.tools.First("magick", "convert"); cmd != "" {
			size := strconv.Itoa(e.thumbSize)
			err := e.tools.Run(ctx, cmd, "-density", "150", "-resize", size+"x"+size, source, tmp)
			rendered = err == nil && fileExists(tmp)
		}
	}
	if !rendered {
		return "", false
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return "", false
	}
	thumbRel := path.Join(dir, base+"-thumb.png")
	if err := e.previews.Write(thumbRel, data); err != nil {
		return "", false
	}
	return thumbRel, true
}

// renderIllustrator rasterizes Adobe Illustrator files with Inkscape; modern
// .ai files are PDF-compatible, so the PDF chain is the fallback.
func (e *Engine) renderIllustrator(ctx context.Context, source, dir, base string) (*Output, error) {
	if e.tools.Has("inkscape") {
		tmp, err := tempFile("mediavault-ai-*.png")
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp)

		err = e.tools.RunFor(ctx, 2*e.toolTimeout, "inkscape",
			"--export-type=png", "--export-width="+strconv.Itoa(e.previewWidth),
			"--export-filename="+tmp, source)
		if err == nil && fileExists(tmp) {
			return e.fromIntermediate(tmp, dir, base)
		}
	}

	return e.renderPDF(ctx, source, dir, base)
}

// renderEPS prefers Ghostscript, with Inkscape as the alternate.
func (e *Engine) renderEPS(ctx context.Context, source, dir, base string) (*Output, error) {
	tmp, err := tempFile("mediavault-eps-*.png")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	if gs := e.tools.First("gs", "gswin64c"); gs != "" {
		err := e.tools.Run(ctx, gs,
			"-dNOPAUSE", "-dBATCH", "-sDEVICE=png16m", "-r150",
			"-sOutputFile="+tmp, source)
		if err == nil && fileExists(tmp) {
			return e.fromIntermediate(tmp, dir, base)
		}
	}

	if e.tools.Has("inkscape") {
		err := e.tools.RunFor(ctx, 2*e.toolTimeout, "inkscape",
			"--export-type=png", "--export-width="+strconv.Itoa(e.previewWidth),
			"--export-filename="+tmp, source)
		if err == nil && fileExists(tmp) {
			return e.fromIntermediate(tmp, dir, base)
		}
	}

	return nil, nil
}
