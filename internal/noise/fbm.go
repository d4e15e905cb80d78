package noise

import (
	"math"
	"sync"

	"github.com/MeKo-Tech/concretegen/internal/grid"
)

// seedStride decorrelates octaves: octave i draws its lattice from
// Seed + i*seedStride.
const seedStride = 31

// FractalParams configure a multi-octave value-noise accumulation.
type FractalParams struct {
	Octaves    int
	BaseCellsX int
	BaseCellsY int
	Lacunarity float64
	Gain       float64
	Seed       int64
}

// Fractal accumulates Octaves layers of value noise (fBm) into a grid
// in [0,1]. Octave i uses max(1, floor(baseCells*Lacunarity^i)) cells
// per axis and amplitude Gain^i. The final division by the amplitude
// sum (floored at 1e-6) is the sole normalization step and keeps the
// output bounded for any octave count or gain.
func Fractal(w, h int, p FractalParams) *grid.Grid {
	layers := make([]*grid.Grid, p.Octaves)

	// Octave layers share no state and are computed concurrently,
	// joined before the weighted sum.
	var wg sync.WaitGroup
	for i := 0; i < p.Octaves; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scale := math.Pow(p.Lacunarity, float64(i))
			cx := int(float64(p.BaseCellsX) * scale)
			cy := int(float64(p.BaseCellsY) * scale)
			if cx < 1 {
				cx = 1
			}
			if cy < 1 {
				cy = 1
			}
			layers[i] = Value(w, h, cx, cy, p.Seed+int64(i)*seedStride)
		}(i)
	}
	wg.Wait()

	out := grid.New(w, h)
	amp := 1.0
	normSum := 0.0
	for _, layer := range layers {
		for j, v := range layer.Pix {
			out.Pix[j] += amp * v
		}
		normSum += amp
		amp *= p.Gain
	}

	if normSum < 1e-6 {
		normSum = 1e-6
	}
	for j := range out.Pix {
		out.Pix[j] /= normSum
	}
	return out
}
