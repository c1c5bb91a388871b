package converter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"

	"github.com/jung-kurt/gofpdf"
)

// Image places a single raster image on one page, scaled to fit with a
// 10mm margin and centered. Landscape images get a landscape page.
type Image struct{}

func NewImage() *Image { return &Image{} }

func (i *Image) Name() string { return "image" }

func (i *Image) Accepts(format string) bool {
	switch format {
	case "jpg", "jpeg", "png", "gif":
		return true
	}
	return false
}

var gofpdfImageTypes = map[string]string{
	"jpeg": "JPG",
	"png":  "PNG",
	"gif":  "GIF",
}

func (i *Image) Convert(_ context.Context, input []byte, _ string, _ string) ([]byte, error) {
	// sniff the real type; the extension may lie
	cfg, kind, err := image.DecodeConfig(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	tp, ok := gofpdfImageTypes[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported image type %q", kind)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	orientation := "P"
	if cfg.Width > cfg.Height {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	opts := gofpdf.ImageOptions{ImageType: tp}
	pdf.RegisterImageOptionsReader("upload", opts, bytes.NewReader(input))
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("register image: %w", err)
	}
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	pageWidth -= 20
	pageHeight -= 20

	imageWidth, imageHeight := float64(cfg.Width), float64(cfg.Height)
	scale := math.Min(pageWidth/imageWidth, pageHeight/imageHeight)
	width := imageWidth * scale
	height := imageHeight * scale
	x := (pageWidth-width)/2 + 10
	y := (pageHeight-height)/2 + 10

	pdf.ImageOptions("upload", x, y, width, height, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
