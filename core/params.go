package core

import (
	"errors"
	"fmt"
	"math"
)

// ReliefKind selects the base terrain noise evaluated before features.
type ReliefKind string

const (
	ReliefSine    ReliefKind = "sine"
	ReliefSimplex ReliefKind = "simplex"
	ReliefPerlin  ReliefKind = "perlin"
)

// Sampling selects how feature sites are distributed on the sphere.
type Sampling string

const (
	// SamplingAngular draws phi and theta uniformly, which over-samples the poles.
	SamplingAngular Sampling = "angular"
	// SamplingArea draws cos(phi) uniformly, giving equal density per unit area.
	SamplingArea Sampling = "area"
)

// MinSegments is the smallest accepted latitude or longitude segment count.
const MinSegments = 3

// GenerationParams controls one procedural surface generation
type GenerationParams struct {
	Size           float64    `json:"size" yaml:"size" mapstructure:"size"`                               // Base radius
	CraterDensity  float64    `json:"craterDensity" yaml:"craterDensity" mapstructure:"craterDensity"`    // Scales crater count (x100)
	MountainHeight float64    `json:"mountainHeight" yaml:"mountainHeight" mapstructure:"mountainHeight"` // Scales mountain count (x8)
	LatSegments    int        `json:"latSegments" yaml:"latSegments" mapstructure:"latSegments"`
	LonSegments    int        `json:"lonSegments" yaml:"lonSegments" mapstructure:"lonSegments"`
	Seed           *uint64    `json:"seed,omitempty" yaml:"seed,omitempty" mapstructure:"seed"`
	Relief         ReliefKind `json:"relief,omitempty" yaml:"relief,omitempty" mapstructure:"relief"`
	Sampling       Sampling   `json:"sampling,omitempty" yaml:"sampling,omitempty" mapstructure:"sampling"`
}

// DefaultParams mirrors the reference planet: unit radius, 128x128 segments.
func DefaultParams() GenerationParams {
	return GenerationParams{
		Size:           1,
		CraterDensity:  1,
		MountainHeight: 0.1,
		LatSegments:    128,
		LonSegments:    128,
		Relief:         ReliefSine,
		Sampling:       SamplingAngular,
	}
}

// WithSeed returns a copy of p pinned to seed.
func (p GenerationParams) WithSeed(seed uint64) GenerationParams {
	p.Seed = &seed
	return p
}

// Seeded reports whether the params carry an explicit seed.
func (p GenerationParams) Seeded() bool {
	return p.Seed != nil
}

// Validate checks every field and returns all failures joined together.
// Each failure wraps ErrInvalidParameter.
func (p GenerationParams) Validate() error {
	var errs []error

	if !(p.Size > 0) || math.IsInf(p.Size, 0) {
		errs = append(errs, &ParamError{Field: "size", Reason: "must be a finite value > 0", Value: p.Size})
	}
	if !(p.CraterDensity >= 0) || math.IsInf(p.CraterDensity, 0) {
		errs = append(errs, &ParamError{Field: "craterDensity", Reason: "must be a finite value >= 0", Value: p.CraterDensity})
	}
	if !(p.MountainHeight >= 0) || math.IsInf(p.MountainHeight, 0) {
		errs = append(errs, &ParamError{Field: "mountainHeight", Reason: "must be a finite value >= 0", Value: p.MountainHeight})
	}
	if p.LatSegments < MinSegments {
		errs = append(errs, &ParamError{Field: "latSegments", Reason: fmt.Sprintf("must be >= %d", MinSegments), Value: p.LatSegments})
	}
	if p.LonSegments < MinSegments {
		errs = append(errs, &ParamError{Field: "lonSegments", Reason: fmt.Sprintf("must be >= %d", MinSegments), Value: p.LonSegments})
	}
	if p.LatSegments >= MinSegments && p.LonSegments >= MinSegments && !SphereFits(p.LatSegments, p.LonSegments) {
		errs = append(errs, segmentsTooLarge(p.LatSegments, p.LonSegments))
	}

	switch p.Relief {
	case "", ReliefSine, ReliefSimplex, ReliefPerlin:
	default:
		errs = append(errs, &ParamError{Field: "relief", Reason: "unknown relief kind", Value: p.Relief})
	}
	switch p.Sampling {
	case "", SamplingAngular, SamplingArea:
	default:
		errs = append(errs, &ParamError{Field: "sampling", Reason: "unknown sampling mode", Value: p.Sampling})
	}

	return errors.Join(errs...)
}

// Normalized returns p with an empty relief or sampling replaced by the
// default it stands for.
func (p GenerationParams) Normalized() GenerationParams {
	if p.Relief == "" {
		p.Relief = ReliefSine
	}
	if p.Sampling == "" {
		p.Sampling = SamplingAngular
	}
	return p
}

// GeometryKey identifies the geometry a set of params produces. Two params
// with equal keys generate bit-identical meshes. Unseeded params have no
// stable key and return ok=false.
func (p GenerationParams) GeometryKey() (key string, ok bool) {
	if p.Seed == nil {
		return "", false
	}
	n := p.Normalized()
	return fmt.Sprintf("s%x-c%x-m%x-%dx%d-%s-%s-%d",
		math.Float64bits(n.Size),
		math.Float64bits(n.CraterDensity),
		math.Float64bits(n.MountainHeight),
		n.LatSegments, n.LonSegments, n.Relief, n.Sampling, *n.Seed), true
}
