package terrain

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"

	"lunargen/core"
)

// ReliefField is the small-amplitude base terrain applied to every vertex
// before features. Values are on the unit sphere.
type ReliefField interface {
	// Relief evaluates the field at polar angle phi and azimuth theta.
	Relief(phi, theta float64) float64
	// Bound is the largest absolute value Relief can return.
	Bound() float64
}

// Octave is one frequency band of a relief field
type Octave struct {
	Frequency float64
	Amplitude float64
}

// DefaultOctaves is the lunar relief table: four doubling octaves plus a
// fine texture band.
var DefaultOctaves = []Octave{
	{Frequency: 12, Amplitude: 0.015},
	{Frequency: 24, Amplitude: 0.008},
	{Frequency: 48, Amplitude: 0.004},
	{Frequency: 96, Amplitude: 0.002},
	{Frequency: 200, Amplitude: 0.001},
}

func amplitudeSum(octaves []Octave) float64 {
	sum := 0.0
	for _, o := range octaves {
		sum += math.Abs(o.Amplitude)
	}
	return sum
}

// SineRelief sums sin(f*phi + f*theta) * a over its octaves.
type SineRelief struct {
	octaves []Octave
	bound   float64
}

// NewSineRelief builds a sinusoidal relief field. Every frequency must be a
// whole number so the field wraps without a seam where theta crosses ±π.
func NewSineRelief(octaves []Octave) (*SineRelief, error) {
	for i, o := range octaves {
		if o.Frequency != math.Trunc(o.Frequency) || math.IsInf(o.Frequency, 0) {
			return nil, &core.ParamError{
				Field:  fmt.Sprintf("octaves[%d].frequency", i),
				Reason: "must be a whole number to wrap at theta = ±π",
				Value:  o.Frequency,
			}
		}
	}
	own := make([]Octave, len(octaves))
	copy(own, octaves)
	return &SineRelief{octaves: own, bound: amplitudeSum(own)}, nil
}

// DefaultSineRelief returns the field built from DefaultOctaves
func DefaultSineRelief() *SineRelief {
	r, _ := NewSineRelief(DefaultOctaves)
	return r
}

func (r *SineRelief) Relief(phi, theta float64) float64 {
	sum := 0.0
	for _, o := range r.octaves {
		sum += math.Sin(o.Frequency*phi+o.Frequency*theta) * o.Amplitude
	}
	return sum
}

func (r *SineRelief) Bound() float64 { return r.bound }

// noiseScale converts an octave frequency to a 3D noise coordinate scale on
// the unit sphere.
const noiseScale = 0.25

// SimplexRelief sums OpenSimplex noise sampled on the unit direction. It has
// no seam because it never looks at theta directly.
type SimplexRelief struct {
	octaves []Octave
	noise   []opensimplex.Noise
	bound   float64
}

// NewSimplexRelief seeds one OpenSimplex generator per octave
func NewSimplexRelief(seed int64, octaves []Octave) *SimplexRelief {
	r := &SimplexRelief{
		octaves: octaves,
		noise:   make([]opensimplex.Noise, len(octaves)),
		bound:   amplitudeSum(octaves),
	}
	for i := range octaves {
		r.noise[i] = opensimplex.New(seed + int64(i))
	}
	return r
}

func (r *SimplexRelief) Relief(phi, theta float64) float64 {
	dir := core.SphericalToCartesian(core.Spherical{Phi: phi, Theta: theta})
	sum := 0.0
	for i, o := range r.octaves {
		p := dir.Mul(o.Frequency * noiseScale)
		n := mgl64.Clamp(r.noise[i].Eval3(p.X(), p.Y(), p.Z()), -1, 1)
		sum += n * o.Amplitude
	}
	return sum
}

func (r *SimplexRelief) Bound() float64 { return r.bound }

// PerlinRelief samples fractal Perlin noise on the unit direction and scales
// it to the amplitude budget of the octave table.
type PerlinRelief struct {
	noise *perlin.Perlin
	scale float64
	bound float64
}

// NewPerlinRelief creates a Perlin relief whose output is bounded by the
// amplitude sum of octaves. The lowest octave frequency sets the base scale.
func NewPerlinRelief(seed int64, octaves []Octave) *PerlinRelief {
	base := 1.0
	if len(octaves) > 0 {
		base = octaves[0].Frequency
	}
	return &PerlinRelief{
		noise: perlin.NewPerlin(2, 2, int32(max(len(octaves), 1)), seed),
		scale: base * noiseScale,
		bound: amplitudeSum(octaves),
	}
}

func (r *PerlinRelief) Relief(phi, theta float64) float64 {
	p := core.SphericalToCartesian(core.Spherical{Phi: phi, Theta: theta}).Mul(r.scale)
	n := mgl64.Clamp(r.noise.Noise3D(p.X(), p.Y(), p.Z()), -1, 1)
	return n * r.bound
}

func (r *PerlinRelief) Bound() float64 { return r.bound }

// NewRelief returns the relief field for kind. Noise fields are seeded from
// the generation seed so they are reproducible alongside the sites.
func NewRelief(kind core.ReliefKind, seed uint64) (ReliefField, error) {
	switch kind {
	case "", core.ReliefSine:
		return DefaultSineRelief(), nil
	case core.ReliefSimplex:
		return NewSimplexRelief(int64(seed), DefaultOctaves), nil
	case core.ReliefPerlin:
		return NewPerlinRelief(int64(seed), DefaultOctaves), nil
	default:
		return nil, &core.ParamError{Field: "relief", Reason: "unknown relief kind", Value: kind}
	}
}
