package rendering

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lunargen/core"
)

// Action is a viewer command bound to a key
type Action int

const (
	NoAction Action = iota
	MoreCraters
	FewerCraters
	HigherMountains
	LowerMountains
	Reseed
	ToggleWireframe
)

const (
	craterStep   = 0.25
	mountainStep = 0.125 // One mountain per step
)

func (a Action) String() string {
	switch a {
	case MoreCraters:
		return "more craters"
	case FewerCraters:
		return "fewer craters"
	case HigherMountains:
		return "more mountains"
	case LowerMountains:
		return "fewer mountains"
	case Reseed:
		return "reseed"
	case ToggleWireframe:
		return "wireframe"
	default:
		return "none"
	}
}

// ActionForKey maps the viewer's letter keys to actions
func ActionForKey(key rune) Action {
	switch key {
	case 'C', 'c':
		return MoreCraters
	case 'V', 'v':
		return FewerCraters
	case 'M', 'm':
		return HigherMountains
	case 'N', 'n':
		return LowerMountains
	case 'R', 'r':
		return Reseed
	case 'W', 'w':
		return ToggleWireframe
	default:
		return NoAction
	}
}

// Apply returns params changed by a. The bool reports whether the surface
// must be regenerated. Densities never go below zero; seed is used by Reseed.
func (a Action) Apply(params core.GenerationParams, seed uint64) (core.GenerationParams, bool) {
	switch a {
	case MoreCraters:
		params.CraterDensity += craterStep
	case FewerCraters:
		params.CraterDensity = math.Max(0, params.CraterDensity-craterStep)
	case HigherMountains:
		params.MountainHeight += mountainStep
	case LowerMountains:
		params.MountainHeight = math.Max(0, params.MountainHeight-mountainStep)
	case Reseed:
		params = params.WithSeed(seed)
	default:
		return params, false
	}
	return params, true
}

// RGBA is a colour with 8-bit channels
type RGBA struct {
	R, G, B, A uint8
}

// ParseColor reads "#rrggbb" or "#rrggbbaa"
func ParseColor(s string) (RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return RGBA{}, fmt.Errorf("invalid colour %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
