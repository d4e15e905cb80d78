// Package blend combines a base height field with a detail field.
package blend

import (
	"fmt"

	"github.com/MeKo-Tech/concretegen/internal/grid"
)

// Mode selects how the detail field modulates the base.
type Mode int

const (
	// Additive adds strength-scaled detail onto the base.
	Additive Mode = iota
	// Multiplicative scales the base by 1 + strength*detail.
	Multiplicative
)

// ParseMode maps a CLI/config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "additive", "add":
		return Additive, nil
	case "multiplicative", "multiply", "mul":
		return Multiplicative, nil
	default:
		return Additive, fmt.Errorf("invalid blend mode %q: must be 'additive' or 'multiplicative'", s)
	}
}

func (m Mode) String() string {
	if m == Multiplicative {
		return "multiplicative"
	}
	return "additive"
}

// Apply blends detail (in [-1,1]) into base (in [0,1]) elementwise and
// clamps the result to [0,1]. The two grids must share dimensions.
func Apply(base, detail *grid.Grid, mode Mode, strength float64) (*grid.Grid, error) {
	if base.W != detail.W || base.H != detail.H {
		return nil, fmt.Errorf("dimension mismatch: base %dx%d, detail %dx%d", base.W, base.H, detail.W, detail.H)
	}

	out := grid.New(base.W, base.H)
	switch mode {
	case Multiplicative:
		for i := range out.Pix {
			out.Pix[i] = grid.Clamp01(base.Pix[i] * (1 + strength*detail.Pix[i]))
		}
	default:
		for i := range out.Pix {
			out.Pix[i] = grid.Clamp01(base.Pix[i] + strength*detail.Pix[i])
		}
	}
	return out, nil
}
