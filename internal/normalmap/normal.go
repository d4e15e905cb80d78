// Package normalmap derives tangent-space normal images from height
// fields via toroidal central differences.
package normalmap

import (
	"image"
	"math"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/MeKo-Tech/concretegen/internal/grid"
)

// Params control normal derivation.
type Params struct {
	// Strength scales the height gradients; larger values exaggerate
	// relief. Must be positive.
	Strength float64
	// InvertY flips the green channel for left-handed (DirectX-style)
	// tangent spaces; false matches the OpenGL convention.
	InvertY bool
}

// Derive converts a height field in [0,1] to an RGB normal map.
//
// Gradients are central differences against toroidally wrapped
// neighbors, so the normal map tiles exactly like the bump field. Each
// unit normal component is mapped from [-1,1] to a byte with rounding;
// a flat field yields (128,128,255) everywhere.
func Derive(bump *grid.Grid, p Params) *image.NRGBA {
	w, h := bump.W, bump.H
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	parallel.For(h, func(y, _ int) {
		up := grid.Wrap(y-1, h)
		down := grid.Wrap(y+1, h)
		for x := 0; x < w; x++ {
			left := grid.Wrap(x-1, w)
			right := grid.Wrap(x+1, w)

			dx := (bump.Pix[y*w+right] - bump.Pix[y*w+left]) * 0.5 * p.Strength
			dy := (bump.Pix[down*w+x] - bump.Pix[up*w+x]) * 0.5 * p.Strength

			nx := -dx
			ny := dy
			if p.InvertY {
				ny = -dy
			}
			nz := 1.0

			length := math.Sqrt(nx*nx + ny*ny + nz*nz)

			i := img.PixOffset(x, y)
			img.Pix[i] = componentByte(nx / length)
			img.Pix[i+1] = componentByte(ny / length)
			img.Pix[i+2] = componentByte(nz / length)
			img.Pix[i+3] = 255
		}
	})

	return img
}

// componentByte maps a normal component from [-1,1] to [0,255],
// rounding so that 0 lands exactly on 128.
func componentByte(c float64) uint8 {
	return uint8(grid.Clamp01(c*0.5+0.5)*255 + 0.5)
}
