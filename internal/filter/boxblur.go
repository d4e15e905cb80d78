// Package filter provides toroidal smoothing primitives shared by the
// synthesis stages.
package filter

import "github.com/MeKo-Tech/concretegen/internal/grid"

// BoxBlur smooths a grid with a separable box kernel of width
// 2*radius+1, wrapping toroidally instead of special-casing edges.
// Each pass runs a horizontal then a vertical sweep over the previous
// pass's full output; higher pass counts approximate a Gaussian.
// radius <= 0 or passes <= 0 returns the input unchanged.
func BoxBlur(g *grid.Grid, radius, passes int) *grid.Grid {
	if radius <= 0 || passes <= 0 {
		return g
	}

	w, h := g.W, g.H
	src := g.Clone()
	tmp := grid.New(w, h)
	window := float64(2*radius + 1)

	for p := 0; p < passes; p++ {
		// Horizontal sweep.
		for y := 0; y < h; y++ {
			row := src.Pix[y*w : (y+1)*w]
			out := tmp.Pix[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				sum := 0.0
				for k := -radius; k <= radius; k++ {
					sum += row[grid.Wrap(x+k, w)]
				}
				out[x] = sum / window
			}
		}

		// Vertical sweep over the horizontally blurred buffer.
		for y := 0; y < h; y++ {
			out := src.Pix[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				sum := 0.0
				for k := -radius; k <= radius; k++ {
					sum += tmp.Pix[grid.Wrap(y+k, h)*w+x]
				}
				out[x] = sum / window
			}
		}
	}

	return src
}
