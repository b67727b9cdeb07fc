package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const jpegQuality = 85

// renderRaster handles formats the in-process decoders understand.
func (e *Engine) renderRaster(_ context.Context, source, dir, base string) (*Output, error) {
	img, err := decodeImage(source)
	if err != nil {
		return nil, err
	}
	return e.writeDerivatives(img, dir, base)
}

// renderTIFF prefers ImageMagick, which flattens multi-page and layered
// files; single-layer files decode natively when no tool is installed.
func (e *Engine) renderTIFF(ctx context.Context, source, dir, base string) (*Output, error) {
	if out, err := e.renderFlattened(ctx, source, dir, base); out != nil && err == nil {
		return out, nil
	}
	img, err := decodeImage(source)
	if err != nil {
		return nil, err
	}
	return e.writeDerivatives(img, dir, base)
}

// renderFlattened rasterizes the first layer/page via ImageMagick.
func (e *Engine) renderFlattened(ctx context.Context, source, dir, base string) (*Output, error) {
	cmd := e.tools.First("magick", "convert")
	if cmd == "" {
		return nil, nil
	}

	tmp, err := tempFile("mediavault-flatten-*.png")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	if err := e.tools.Run(ctx, cmd, source+"[0]", "-flatten", tmp); err != nil || !fileExists(tmp) {
		e.log.Debug("flatten produced no output", "source", source, "error", err)
		return nil, nil
	}
	return e.fromIntermediate(tmp, dir, base)
}

// fromIntermediate turns a tool-produced raster file into the two
// derivatives and removes it.
func (e *Engine) fromIntermediate(tmpPath, dir, base string) (*Output, error) {
	defer os.Remove(tmpPath)

	img, err := decodeImage(tmpPath)
	if err != nil {
		return nil, err
	}
	return e.writeDerivatives(img, dir, base)
}

// writeDerivatives writes the thumbnail (fit within a square box) and the
// medium preview (width-capped, never upscaled) as JPEG.
func (e *Engine) writeDerivatives(img image.Image, dir, base string) (*Output, error) {
	thumbRel, previewRel := derivativePaths(dir, base, "jpg")

	if err := e.saveJPEG(fitWithin(img, e.thumbSize, e.thumbSize), thumbRel); err != nil {
		return nil, fmt.Errorf("write thumbnail: %w", err)
	}
	if err := e.saveJPEG(capWidth(img, e.previewWidth), previewRel); err != nil {
		return nil, fmt.Errorf("write preview: %w", err)
	}

	return &Output{ThumbnailPath: thumbRel, PreviewPath: previewRel}, nil
}

// saveJPEG composites onto white (JPEG has no alpha) and writes to the
// previews disk.
func (e *Engine) saveJPEG(img image.Image, rel string) error {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return err
	}
	return e.previews.Write(rel, buf.Bytes())
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// fitWithin scales the image down to fit inside maxW x maxH, preserving
// aspect ratio and never upscaling.
func fitWithin(img image.Image, maxW, maxH int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	return resize(img, int(float64(w)*scale), int(float64(h)*scale))
}

// capWidth constrains only the width, preserving aspect ratio and never
// upscaling beyond the source's native width.
func capWidth(img image.Image, maxW int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= maxW {
		return img
	}
	newH := int(float64(h) * float64(maxW) / float64(w))
	return resize(img, maxW, newH)
}

func resize(img image.Image, w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}
