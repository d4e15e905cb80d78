// Package grid provides the float height-field buffer shared by all
// texture synthesis stages. Every coordinate access is toroidal, so a
// grid tiles seamlessly in both directions.
package grid

import "math"

// Grid is a rectangular buffer of float samples stored row-major.
// Pix has length W*H; sample (x, y) lives at Pix[y*W+x].
type Grid struct {
	W   int
	H   int
	Pix []float64
}

// New allocates a zero-valued grid. Dimensions must be positive;
// callers validate at the pipeline boundary.
func New(w, h int) *Grid {
	return &Grid{W: w, H: h, Pix: make([]float64, w*h)}
}

// Wrap maps an arbitrary index onto [0, n) toroidally. This is the
// single place wraparound is implemented; every neighbor and lattice
// lookup goes through it.
func Wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Idx returns the flat offset of (x, y) without wrapping.
func (g *Grid) Idx(x, y int) int { return y*g.W + x }

// At returns the sample at (x, y) with toroidal wraparound.
func (g *Grid) At(x, y int) float64 {
	return g.Pix[Wrap(y, g.H)*g.W+Wrap(x, g.W)]
}

// Set writes the sample at (x, y) with toroidal wraparound.
func (g *Grid) Set(x, y int, v float64) {
	g.Pix[Wrap(y, g.H)*g.W+Wrap(x, g.W)] = v
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := New(g.W, g.H)
	copy(out.Pix, g.Pix)
	return out
}

// Fill sets every sample to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Pix {
		g.Pix[i] = v
	}
}

// Mean returns the arithmetic mean over all samples.
func (g *Grid) Mean() float64 {
	sum := 0.0
	for _, v := range g.Pix {
		sum += v
	}
	return sum / float64(len(g.Pix))
}

// MinMax returns the smallest and largest sample values.
func (g *Grid) MinMax() (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range g.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalize rescales all samples to [0,1] by min-max. A constant grid
// degrades to all zeros instead of dividing by zero.
func (g *Grid) Normalize() {
	min, max := g.MinMax()
	span := max - min
	if span < 1e-6 {
		span = 1e-6
	}
	for i, v := range g.Pix {
		g.Pix[i] = (v - min) / span
	}
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
