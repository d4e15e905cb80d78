// Package noise generates deterministic, toroidally tileable lattice
// value noise and multi-octave fractal accumulations of it.
package noise

import (
	"math"
	"math/rand"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/MeKo-Tech/concretegen/internal/grid"
)

// smootherStep is the quintic ease t^3*(t*(6t-15)+10); zero first and
// second derivatives at 0 and 1.
func smootherStep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// Value generates interpolated lattice value noise in [0,1].
//
// The lattice is a cellsY x cellsX array of uniform draws from a
// generator seeded with seed, filled in row-major order. The draw order
// is part of the contract: identical seed and cell counts reproduce the
// identical field. Corner lookups wrap modulo the cell counts, so the
// result tiles exactly at the image boundary.
func Value(w, h, cellsX, cellsY int, seed int64) *grid.Grid {
	if cellsX < 1 {
		cellsX = 1
	}
	if cellsY < 1 {
		cellsY = 1
	}

	rng := rand.New(rand.NewSource(seed))
	lattice := make([]float64, cellsY*cellsX)
	for i := range lattice {
		lattice[i] = rng.Float64()
	}

	out := grid.New(w, h)
	parallel.For(h, func(y, _ int) {
		row := out.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			row[x] = sampleLattice(lattice, cellsX, cellsY, w, h, x, y)
		}
	})

	return out
}

// sampleLattice evaluates the interpolated lattice at pixel (x, y).
// It accepts coordinates outside [0,w)x[0,h); the corner wrap makes
// the field periodic with period w and h.
func sampleLattice(lattice []float64, cellsX, cellsY, w, h, x, y int) float64 {
	fy := float64(y) / float64(h) * float64(cellsY)
	yi := int(math.Floor(fy))
	ty := smootherStep(fy - float64(yi))
	y0 := grid.Wrap(yi, cellsY)
	y1 := grid.Wrap(yi+1, cellsY)

	fx := float64(x) / float64(w) * float64(cellsX)
	xi := int(math.Floor(fx))
	tx := smootherStep(fx - float64(xi))
	x0 := grid.Wrap(xi, cellsX)
	x1 := grid.Wrap(xi+1, cellsX)

	v00 := lattice[y0*cellsX+x0]
	v10 := lattice[y0*cellsX+x1]
	v01 := lattice[y1*cellsX+x0]
	v11 := lattice[y1*cellsX+x1]

	a := grid.Lerp(v00, v10, tx)
	b := grid.Lerp(v01, v11, tx)
	return grid.Lerp(a, b, ty)
}
