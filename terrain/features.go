package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"lunargen/core"
)

// SiteKind distinguishes raised and depressed features
type SiteKind int

const (
	Mountain SiteKind = iota
	Crater
)

func (k SiteKind) String() string {
	switch k {
	case Mountain:
		return "mountain"
	case Crater:
		return "crater"
	default:
		return "unknown"
	}
}

// CraterTier is the size class a crater was drawn from
type CraterTier int

const (
	NoTier CraterTier = iota // Mountains
	Small
	Medium
	Large
)

func (t CraterTier) String() string {
	switch t {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return "none"
	}
}

// Site is one randomly placed mountain or crater on the unit sphere
type Site struct {
	Position  mgl64.Vec3 // Unit vector
	Radius    float64    // Chord radius of influence
	Magnitude float64    // Height for mountains, depth for craters
	Kind      SiteKind
	Tier      CraterTier
}

const (
	// MountainsPerUnit is the mountain count per unit of mountain height
	MountainsPerUnit = 8
	// CratersPerUnit is the crater count per unit of crater density
	CratersPerUnit = 100

	mountainMinHeight  = 0.03
	mountainHeightSpan = 0.08
	mountainMinRadius  = 0.1
	mountainRadiusSpan = 0.2
)

type tierSpec struct {
	tier       CraterTier
	cumulative float64 // Upper bound of the tier draw
	minRadius  float64
	radiusSpan float64
	minDepth   float64
	depthSpan  float64
}

// craterTiers yields 70% small, 20% medium and 10% large craters.
var craterTiers = []tierSpec{
	{tier: Small, cumulative: 0.7, minRadius: 0.01, radiusSpan: 0.03, minDepth: 0.003, depthSpan: 0.01},
	{tier: Medium, cumulative: 0.9, minRadius: 0.03, radiusSpan: 0.05, minDepth: 0.008, depthSpan: 0.02},
	{tier: Large, cumulative: 1.0, minRadius: 0.05, radiusSpan: 0.1, minDepth: 0.015, depthSpan: 0.03},
}

// MountainCount returns floor(mountainHeight * MountainsPerUnit)
func MountainCount(mountainHeight float64) int {
	return int(math.Floor(mountainHeight * MountainsPerUnit))
}

// CraterCount returns floor(craterDensity * CratersPerUnit)
func CraterCount(craterDensity float64) int {
	return int(math.Floor(craterDensity * CratersPerUnit))
}

// randomDirection draws a point on the unit sphere. Angular sampling picks
// phi and theta uniformly and therefore crowds the poles; area sampling picks
// cos(phi) uniformly instead.
func randomDirection(rng RandomSource, sampling core.Sampling) mgl64.Vec3 {
	var phi float64
	if sampling == core.SamplingArea {
		phi = math.Acos(1 - 2*rng.Float64())
	} else {
		phi = rng.Float64() * math.Pi
	}
	theta := rng.Float64() * math.Pi * 2
	return core.SphericalToCartesian(core.Spherical{Phi: phi, Theta: theta})
}

// PlaceMountains draws count mountain sites
func PlaceMountains(rng RandomSource, count int, sampling core.Sampling) []Site {
	sites := make([]Site, 0, count)
	for i := 0; i < count; i++ {
		pos := randomDirection(rng, sampling)
		height := mountainMinHeight + rng.Float64()*mountainHeightSpan
		radius := mountainMinRadius + rng.Float64()*mountainRadiusSpan

		sites = append(sites, Site{
			Position:  pos,
			Radius:    radius,
			Magnitude: height,
			Kind:      Mountain,
		})
	}
	return sites
}

// PlaceCraters draws count crater sites from the three size tiers
func PlaceCraters(rng RandomSource, count int, sampling core.Sampling) []Site {
	sites := make([]Site, 0, count)
	for i := 0; i < count; i++ {
		pos := randomDirection(rng, sampling)

		draw := rng.Float64()
		spec := craterTiers[len(craterTiers)-1]
		for _, t := range craterTiers {
			if draw < t.cumulative {
				spec = t
				break
			}
		}

		radius := spec.minRadius + rng.Float64()*spec.radiusSpan
		depth := spec.minDepth + rng.Float64()*spec.depthSpan

		sites = append(sites, Site{
			Position:  pos,
			Radius:    radius,
			Magnitude: depth,
			Kind:      Crater,
			Tier:      spec.tier,
		})
	}
	return sites
}

// PlaceFeatures scatters mountains and then craters. The order of draws is
// fixed so a seeded source always yields the same sites.
func PlaceFeatures(rng RandomSource, mountainHeight, craterDensity float64, sampling core.Sampling) []Site {
	sites := PlaceMountains(rng, MountainCount(mountainHeight), sampling)
	return append(sites, PlaceCraters(rng, CraterCount(craterDensity), sampling)...)
}

// CountKinds returns the number of mountains and craters in sites
func CountKinds(sites []Site) (mountains, craters int) {
	for _, s := range sites {
		if s.Kind == Mountain {
			mountains++
		} else {
			craters++
		}
	}
	return mountains, craters
}
