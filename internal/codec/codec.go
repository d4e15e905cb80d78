// Package codec converts between raster images and normalized float
// grids. It owns all image decoding, resampling, and lossless encoding
// so the numeric core never touches an imaging library.
package codec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/disintegration/gift"
	"golang.org/x/image/tiff"

	"github.com/MeKo-Tech/concretegen/internal/grid"
)

// ErrUnsupportedInput marks an externally supplied bump image that
// cannot be decoded or resampled.
var ErrUnsupportedInput = errors.New("unsupported input image")

// Format selects the lossless output raster format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
)

// ParseFormat validates a CLI/config format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatTIFF:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid format %q: must be 'png' or 'tiff'", s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatTIFF {
		return ".tiff"
	}
	return ".png"
}

// DecodeHeightField decodes an image into a luminance grid in [0,1],
// resampled to width x height. Source resolution is arbitrary;
// resampling is bilinear.
func DecodeHeightField(r io.Reader, width, height int) (*grid.Grid, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedInput, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedInput)
	}

	if bounds.Dx() != width || bounds.Dy() != height {
		g := gift.New(gift.Resize(width, height, gift.LinearResampling))
		resized := image.NewNRGBA(g.Bounds(bounds))
		g.Draw(resized, img)
		img = resized
		bounds = img.Bounds()
	}

	out := grid.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			out.Pix[y*width+x] = float64(c.Y) / 65535.0
		}
	}
	return out, nil
}

// EncodeHeightField writes a grid as an 8-bit grayscale raster.
// Samples are clamped to [0,1] before quantization.
func EncodeHeightField(w io.Writer, g *grid.Grid, format Format) error {
	img := image.NewGray(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(grid.Clamp01(g.Pix[y*g.W+x])*255 + 0.5)})
		}
	}
	return encode(w, img, format)
}

// EncodeNormalMap writes a normal-map image losslessly.
func EncodeNormalMap(w io.Writer, img image.Image, format Format) error {
	return encode(w, img, format)
}

func encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatTIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("failed to encode tiff: %w", err)
		}
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	}
	return nil
}
