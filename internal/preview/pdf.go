package preview

import (
	"context"
	"os"
	"strings"
)

// renderPDF rasterizes the first page at 150 dpi, trying Poppler, then
// Ghostscript, then ImageMagick.
func (e *Engine) renderPDF(ctx context.Context, source, dir, base string) (*Output, error) {
	tmp, err := tempFile("mediavault-pdf-*.png")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	if e.tools.Has("pdftoppm") {
		// pdftoppm appends .png to its output base itself.
		tmpBase := strings.TrimSuffix(tmp, ".png")
		err := e.tools.Run(ctx, "pdftoppm", "-png", "-r", "150", "-singlefile", source, tmpBase)
		if err == nil && fileExists(tmp) {
			return e.fromIntermediate(tmp, dir, base)
		}
	}

	if gs := e.tools.First("gs", "gswin64c"); gs != "" {
		err := e.tools.Run(ctx, gs,
			"-dNOPAUSE", "-dBATCH", "-dFirstPage=1", "-dLastPage=1",
			"-sDEVICE=png16m", "-r150", "-sOutputFile="+tmp, source)
		if err == nil && fileExists(tmp) {
			return e.fromIntermediate(tmp, dir, base)
		}
	}

	if cmd := e.tools.First("magick", "convert"); cmd != "" {
		err := e.tools.Run(ctx, cmd, source+"[0]", "-density", "150", "-flatten", tmp)
		if err == nil && fileExists(tmp) {
			return e.fromIntermediate(tmp, dir, base)
		}
	}

	return nil, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
