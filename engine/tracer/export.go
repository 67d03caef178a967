package tracer

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// toNRGBA wraps the tracer image's pixel buffer in an image.NRGBA without copying.
func toNRGBA(img *Image) *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pixels,
		Stride: int(img.Width) * 4,
		Rect:   image.Rect(0, 0, int(img.Width), int(img.Height)),
	}
}

// ExportPNG encodes the image as PNG to the given writer.
//
// Parameters:
//   - img: the image to encode
//   - w: the destination writer
//
// Returns:
//   - error: an error if encoding fails
func ExportPNG(img *Image, w io.Writer) error {
	if img == nil {
		return fmt.Errorf("image must not be nil")
	}
	if err := png.Encode(w, toNRGBA(img)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// ExportScaledPNG rescales the image to the given dimensions with Catmull-Rom
// filtering and encodes the result as PNG to the given writer.
//
// Parameters:
//   - img: the image to rescale and encode
//   - w: the destination writer
//   - width, height: the output dimensions in pixels
//
// Returns:
//   - error: an error if the dimensions are zero or encoding fails
func ExportScaledPNG(img *Image, w io.Writer, width, height uint32) error {
	if img == nil {
		return fmt.Errorf("image must not be nil")
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("output dimensions must be non-zero, got %dx%d", width, height)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), toNRGBA(img), toNRGBA(img).Bounds(), draw.Over, nil)

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
