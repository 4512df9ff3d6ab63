package images

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Watermarker stamps uploaded product images before they reach storage
type Watermarker interface {
	Apply(source io.Reader) (io.Reader, error)
}

// OverlayWatermarker blends a fixed overlay image into the bottom-right
// corner of each upload.
type OverlayWatermarker struct {
	overlay image.Image
	opacity float64
}

// NewOverlayWatermarker loads the overlay image from disk
func NewOverlayWatermarker(overlayPath string, opacity float64) (*OverlayWatermarker, error) {
	overlay, err := imaging.Open(overlayPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open watermark overlay: %w", err)
	}
	return &OverlayWatermarker{overlay: overlay, opacity: opacity}, nil
}

// Apply decodes the source, stamps the overlay and re-encodes as JPEG
func (w *OverlayWatermarker) Apply(source io.Reader) (io.Reader, error) {
	img, err := imaging.Decode(source)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	overlayBounds := w.overlay.Bounds()
	position := image.Pt(
		bounds.Dx()-overlayBounds.Dx()-10,
		bounds.Dy()-overlayBounds.Dy()-10,
	)
	stamped := imaging.Overlay(img, w.overlay, position, w.opacity)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, stamped, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("failed to encode watermarked image: %w", err)
	}
	return &buf, nil
}
