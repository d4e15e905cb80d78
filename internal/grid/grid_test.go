package grid

import (
	"math"
	"testing"
)

func TestWrap(t *testing.T) {
	cases := []struct {
		i, n, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 0},
		{5, 4, 1},
		{-1, 4, 3},
		{-4, 4, 0},
		{-5, 4, 3},
	}
	for _, c := range cases {
		if got := Wrap(c.i, c.n); got != c.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", c.i, c.n, got, c.want)
		}
	}
}

func TestAtSetToroidal(t *testing.T) {
	g := New(4, 3)
	g.Set(0, 0, 0.5)

	if got := g.At(4, 0); got != 0.5 {
		t.Errorf("At(4,0) = %v, want wrap to At(0,0) = 0.5", got)
	}
	if got := g.At(0, 3); got != 0.5 {
		t.Errorf("At(0,3) = %v, want wrap to At(0,0) = 0.5", got)
	}
	if got := g.At(-4, -3); got != 0.5 {
		t.Errorf("At(-4,-3) = %v, want wrap to At(0,0) = 0.5", got)
	}
}

func TestNormalizeRange(t *testing.T) {
	g := New(2, 2)
	copy(g.Pix, []float64{-1, 0, 1, 3})
	g.Normalize()

	min, max := g.MinMax()
	if min != 0 || max != 1 {
		t.Errorf("normalized range = [%v, %v], want [0, 1]", min, max)
	}
}

func TestNormalizeConstantGrid(t *testing.T) {
	g := New(3, 3)
	g.Fill(0.7)
	g.Normalize()

	for i, v := range g.Pix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Pix[%d] = %v after normalizing a constant grid", i, v)
		}
		if v != 0 {
			t.Fatalf("Pix[%d] = %v, want 0 for constant input", i, v)
		}
	}
}

func TestMean(t *testing.T) {
	g := New(2, 2)
	copy(g.Pix, []float64{0, 1, 2, 3})
	if got := g.Mean(); got != 1.5 {
		t.Errorf("Mean() = %v, want 1.5", got)
	}
}

func TestCloneIndependent(t *testing.T) {
	g := New(2, 2)
	g.Fill(1)
	c := g.Clone()
	c.Set(0, 0, 9)

	if g.At(0, 0) != 1 {
		t.Error("mutating a clone changed the original")
	}
}
