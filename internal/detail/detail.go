// Package detail synthesizes a band-limited micro-detail field (fine
// aggregate grain plus sparse pits) suitable for blending onto any base
// height field without shifting its overall tone.
package detail

import (
	"github.com/MeKo-Tech/concretegen/internal/filter"
	"github.com/MeKo-Tech/concretegen/internal/grid"
	"github.com/MeKo-Tech/concretegen/internal/noise"
)

// pitSeedOffset decorrelates the pit-mask noise from the grain noise,
// continuing the seed ladder used by the base synthesis layers.
const pitSeedOffset = 101

// Params control the detail layer.
type Params struct {
	GrainCells          int     // lattice cells of the fine grain fBm
	PitCells            int     // lattice cells of the pit-mask fBm
	PitDensity          float64 // fraction of pixels turned into pits, in [0,1]
	HighPassSmallRadius int     // less-blurred copy radius
	HighPassLargeRadius int     // more-blurred copy radius
}

// Generate produces a zero-mean detail field in [-1,1] with peak
// magnitude 1.
//
// The grain and a sparse pit mask are combined, high-passed by
// difference-of-blur, re-centered to exactly zero mean, and rescaled so
// the largest magnitude is 1. The high pass removes any large-scale
// bias from the noise layers; a fully degenerate (constant) field
// degrades to flat zero via the epsilon floor instead of dividing by
// zero.
func Generate(w, h int, seed int64, p Params) *grid.Grid {
	grain := noise.Fractal(w, h, noise.FractalParams{
		Octaves:    5,
		BaseCellsX: p.GrainCells,
		BaseCellsY: p.GrainCells,
		Lacunarity: 2.0,
		Gain:       0.55,
		Seed:       seed,
	})

	pitsNoise := noise.Fractal(w, h, noise.FractalParams{
		Octaves:    2,
		BaseCellsX: p.PitCells,
		BaseCellsY: p.PitCells,
		Lacunarity: 2.0,
		Gain:       0.6,
		Seed:       seed + pitSeedOffset,
	})

	threshold := 1 - grid.Clamp01(p.PitDensity)
	combined := grid.New(w, h)
	for i := range combined.Pix {
		pit := 0.0
		if pitsNoise.Pix[i] > threshold {
			pit = -1
		}
		combined.Pix[i] = 0.8*(grain.Pix[i]-0.5) + 0.2*pit
	}

	// High pass via difference-of-blur.
	blurSmall := filter.BoxBlur(combined, p.HighPassSmallRadius, 1)
	blurLarge := filter.BoxBlur(combined, p.HighPassLargeRadius, 1)
	out := grid.New(w, h)
	for i := range out.Pix {
		out.Pix[i] = blurSmall.Pix[i] - blurLarge.Pix[i]
	}

	// Exact zero mean, then peak magnitude 1.
	mean := out.Mean()
	maxAbs := 0.0
	for i := range out.Pix {
		out.Pix[i] -= mean
		if a := out.Pix[i]; a > maxAbs {
			maxAbs = a
		} else if -a > maxAbs {
			maxAbs = -a
		}
	}
	if maxAbs < 1e-6 {
		maxAbs = 1e-6
	}
	for i := range out.Pix {
		out.Pix[i] /= maxAbs
	}
	return out
}
