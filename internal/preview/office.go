package preview

import (
	"context"
	"os"
	"path/filepath"
)

// renderOffice converts the document to PDF with headless LibreOffice and
// hands the result to the PDF chain.
func (e *Engine) renderOffice(ctx context.Context, source, dir, base string) (*Output, error) {
	cmd := e.tools.First("libreoffice", "soffice")
	if cmd == "" {
		return nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "mediavault-office-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	err = e.tools.RunFor(ctx, 2*e.toolTimeout, cmd,
		"--headless", "--convert-to", "pdf", "--outdir", tmpDir, source)
	if err != nil {
		e.log.Debug("office conversion failed", "source", source, "error", err)
		return nil, nil
	}

	pdfs, err := filepath.Glob(filepath.Join(tmpDir, "*.pdf"))
	if err != nil || len(pdfs) == 0 {
		return nil, nil
	}

	return e.renderPDF(ctx, pdfs[0], dir, base)
}
