// Package seam repairs the tiling of externally supplied height fields.
// Generated fields are toroidal by construction and never need this.
package seam

import (
	"github.com/MeKo-Tech/concretegen/internal/filter"
	"github.com/MeKo-Tech/concretegen/internal/grid"
)

// Stitch blends each border band of the field toward its mirrored
// opposite so the left/right and top/bottom edges meet, then applies a
// light blur and a min-max renormalization to erase residual blending
// artifacts.
//
// margin is clamped to [1, min(W,H)/2]. Within the band, the blend is
// strongest at the edge (both sides meet at their average) and fades to
// nothing at the band's inner end. Both sides of each pair are written
// from pre-pass values, so there is no directional bias. The vertical
// pass runs on the output of the horizontal pass. The operation is not
// exactly idempotent but is stable under reapplication.
func Stitch(g *grid.Grid, margin int) *grid.Grid {
	w, h := g.W, g.H

	maxMargin := w
	if h < w {
		maxMargin = h
	}
	maxMargin /= 2
	if margin < 1 {
		margin = 1
	}
	if margin > maxMargin {
		margin = maxMargin
	}

	// Horizontal pass: columns [0,margin) against their mirrors.
	out := g.Clone()
	for y := 0; y < h; y++ {
		row := g.Pix[y*w : (y+1)*w]
		dst := out.Pix[y*w : (y+1)*w]
		for x := 0; x < margin; x++ {
			mirror := w - 1 - x
			t := float64(x) / float64(margin)
			a := 0.5 * (1 - t)
			dst[x] = row[x] + a*(row[mirror]-row[x])
			dst[mirror] = row[mirror] + a*(row[x]-row[mirror])
		}
	}

	// Vertical pass on the horizontally corrected data.
	src := out
	out = src.Clone()
	for y := 0; y < margin; y++ {
		mirror := h - 1 - y
		t := float64(y) / float64(margin)
		a := 0.5 * (1 - t)
		for x := 0; x < w; x++ {
			v := src.Pix[y*w+x]
			m := src.Pix[mirror*w+x]
			out.Pix[y*w+x] = v + a*(m-v)
			out.Pix[mirror*w+x] = m + a*(v-m)
		}
	}

	out = filter.BoxBlur(out, 1, 1)
	out.Normalize()
	return out
}
