// Package pipeline orchestrates the concrete texture synthesis stages:
// base field synthesis (or intake of an external bump field), seam
// repair, micro-detail generation, blending, and normal-map derivation.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/MeKo-Tech/concretegen/internal/blend"
	"github.com/MeKo-Tech/concretegen/internal/detail"
	"github.com/MeKo-Tech/concretegen/internal/filter"
	"github.com/MeKo-Tech/concretegen/internal/grid"
	"github.com/MeKo-Tech/concretegen/internal/noise"
	"github.com/MeKo-Tech/concretegen/internal/normalmap"
	"github.com/MeKo-Tech/concretegen/internal/seam"
)

// ErrInvalidDimension is returned before any computation when the
// requested output dimensions are not positive.
var ErrInvalidDimension = errors.New("width and height must be positive")

// Seed offsets decorrelate the synthesis layers from one another.
const (
	grainSeedOffset  = 101
	pitSeedOffset    = 202
	stainSeedOffset  = 303
	detailSeedOffset = 404
)

// BaseParams shape the synthesized concrete base field.
type BaseParams struct {
	Scale          float64 // cell-count multiplier: base uses 8*Scale cells, grain 32*Scale
	BaseDepth      float64 // weight of the low-frequency undulation
	GrainStrength  float64 // weight of the fine aggregate layer
	PitDensity     float64 // fraction of pixels dug out as pits, in [0,1]
	PitDepth       float64 // how deep pits cut into the surface
	StainStrength  float64 // amplitude of the multiplicative stain layer
	TrowelStrength float64 // 0..1; boosts then clamps the surface for flat troweled tops
	BlurRadius     int     // final smoothing radius
	BlurPasses     int     // final smoothing passes
}

// Params configure one pipeline run.
type Params struct {
	Width  int
	Height int
	Seed   int64

	Base           BaseParams
	Detail         detail.Params
	DetailStrength float64
	BlendMode      blend.Mode
	Normal         normalmap.Params

	// Source is an optional externally decoded bump field, already
	// resampled to Width x Height by the codec. When nil the base is
	// synthesized from Base.
	Source *grid.Grid
	// StitchSource repairs the tiling of Source before use.
	StitchSource bool
	SeamMargin   int
}

// Result carries both pipeline outputs. They are produced together or
// not at all.
type Result struct {
	Bump   *grid.Grid
	Normal *image.NRGBA
}

// DefaultParams returns the documented defaults for a synthesis run.
func DefaultParams(width, height int, seed int64) Params {
	return Params{
		Width:  width,
		Height: height,
		Seed:   seed,
		Base: BaseParams{
			Scale:          5.0,
			BaseDepth:      0.55,
			GrainStrength:  0.35,
			PitDensity:     0.02,
			PitDepth:       0.20,
			StainStrength:  0.2,
			TrowelStrength: 0,
			BlurRadius:     1,
			BlurPasses:     1,
		},
		Detail: detail.Params{
			GrainCells:          64,
			PitCells:            24,
			PitDensity:          0.02,
			HighPassSmallRadius: 1,
			HighPassLargeRadius: 4,
		},
		DetailStrength: 0.25,
		BlendMode:      blend.Additive,
		Normal:         normalmap.Params{Strength: 3.0, InvertY: true},
		SeamMargin:     32,
	}
}

// Run executes one synthesis pass. It is a pure function of its
// parameters: no I/O, no retained state, and the returned grids are
// never aliased to any input.
func Run(p Params) (Result, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return Result{}, fmt.Errorf("%w: got %dx%d", ErrInvalidDimension, p.Width, p.Height)
	}
	if p.Normal.Strength <= 0 {
		return Result{}, fmt.Errorf("normal strength must be positive, got %v", p.Normal.Strength)
	}

	var base *grid.Grid
	if p.Source != nil {
		if p.Source.W != p.Width || p.Source.H != p.Height {
			return Result{}, fmt.Errorf("source field is %dx%d, want %dx%d (resample before running the pipeline)",
				p.Source.W, p.Source.H, p.Width, p.Height)
		}
		base = p.Source
		if p.StitchSource {
			base = seam.Stitch(base, p.SeamMargin)
		}
	} else {
		base = synthesizeBase(p.Width, p.Height, p.Seed, p.Base)
	}

	det := detail.Generate(p.Width, p.Height, p.Seed+detailSeedOffset, p.Detail)

	bump, err := blend.Apply(base, det, p.BlendMode, p.DetailStrength)
	if err != nil {
		return Result{}, fmt.Errorf("failed to blend detail: %w", err)
	}

	normal := normalmap.Derive(bump, p.Normal)
	return Result{Bump: bump, Normal: normal}, nil
}

// synthesizeBase composes the concrete surface from four fBm layers:
// low-frequency undulation, fine aggregate grain, a sparse pit mask,
// and a broad stain multiplier. An optional trowel boost flattens the
// peaks before the pits are subtracted, so pits dig into the flat tops.
func synthesizeBase(w, h int, seed int64, p BaseParams) *grid.Grid {
	baseCells := cellCount(8 * p.Scale)
	grainCells := cellCount(32 * p.Scale)

	base := noise.Fractal(w, h, noise.FractalParams{
		Octaves: 4, BaseCellsX: baseCells, BaseCellsY: baseCells,
		Lacunarity: 2.0, Gain: 0.55, Seed: seed,
	})
	grain := noise.Fractal(w, h, noise.FractalParams{
		Octaves: 5, BaseCellsX: grainCells, BaseCellsY: grainCells,
		Lacunarity: 2.0, Gain: 0.55, Seed: seed + grainSeedOffset,
	})
	pits := noise.Fractal(w, h, noise.FractalParams{
		Octaves: 1, BaseCellsX: 128, BaseCellsY: 128,
		Lacunarity: 2.0, Gain: 1.0, Seed: seed + pitSeedOffset,
	})
	stains := noise.Fractal(w, h, noise.FractalParams{
		Octaves: 3, BaseCellsX: 4, BaseCellsY: 4,
		Lacunarity: 2.0, Gain: 0.6, Seed: seed + stainSeedOffset,
	})

	pitThreshold := 1 - grid.Clamp01(p.PitDensity)
	trowelMult := 1 + 2*p.TrowelStrength

	out := grid.New(w, h)
	for i := range out.Pix {
		surface := p.BaseDepth*base.Pix[i] + p.GrainStrength*grain.Pix[i]
		if p.TrowelStrength > 0 {
			surface *= trowelMult
			if surface > 1 {
				surface = 1
			}
		}

		if pits.Pix[i] > pitThreshold {
			surface -= p.PitDepth
		}

		stain := grid.Clamp01((1 - p.StainStrength) + p.StainStrength*stains.Pix[i])
		out.Pix[i] = surface * stain
	}

	out = filter.BoxBlur(out, p.BlurRadius, p.BlurPasses)
	out.Normalize()
	return out
}

func cellCount(v float64) int {
	c := int(v)
	if c < 1 {
		c = 1
	}
	return c
}
