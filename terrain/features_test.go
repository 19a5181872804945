package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunargen/core"
)

func TestFeatureCounts(t *testing.T) {
	tests := []struct {
		height, density    float64
		mountains, craters int
	}{
		{0, 0, 0, 0},
		{0.1, 1.0, 0, 100},
		{0.125, 0.5, 1, 50},
		{1.0, 0.019, 8, 1},
		{2.99, 2.999, 23, 299},
	}

	for _, tc := range tests {
		sites := PlaceFeatures(NewRandomSource(1), tc.height, tc.density, core.SamplingAngular)
		m, c := CountKinds(sites)
		assert.Equal(t, tc.mountains, m, "mountains for height %v", tc.height)
		assert.Equal(t, tc.craters, c, "craters for density %v", tc.density)
	}
}

func TestMountainRanges(t *testing.T) {
	sites := PlaceMountains(NewRandomSource(3), 500, core.SamplingAngular)
	require.Len(t, sites, 500)

	for _, s := range sites {
		assert.Equal(t, Mountain, s.Kind)
		assert.Equal(t, NoTier, s.Tier)
		assert.InDelta(t, 1, s.Position.Len(), 1e-12)
		assert.GreaterOrEqual(t, s.Magnitude, 0.03)
		assert.Less(t, s.Magnitude, 0.11)
		assert.GreaterOrEqual(t, s.Radius, 0.1)
		assert.Less(t, s.Radius, 0.3)
	}
}

func TestCraterTierRanges(t *testing.T) {
	ranges := map[CraterTier][4]float64{
		Small:  {0.01, 0.04, 0.003, 0.013},
		Medium: {0.03, 0.08, 0.008, 0.028},
		Large:  {0.05, 0.15, 0.015, 0.045},
	}

	for _, s := range PlaceCraters(NewRandomSource(5), 2000, core.SamplingAngular) {
		r, ok := ranges[s.Tier]
		require.True(t, ok, "crater without tier")
		assert.Equal(t, Crater, s.Kind)
		assert.GreaterOrEqual(t, s.Radius, r[0])
		assert.Less(t, s.Radius, r[1])
		assert.GreaterOrEqual(t, s.Magnitude, r[2])
		assert.Less(t, s.Magnitude, r[3])
	}
}

func TestCraterTierProportions(t *testing.T) {
	const n = 10000
	counts := map[CraterTier]int{}
	for _, s := range PlaceCraters(NewRandomSource(11), n, core.SamplingAngular) {
		counts[s.Tier]++
	}

	// Four standard deviations of a binomial at this sample size
	want := map[CraterTier]float64{Small: 0.7, Medium: 0.2, Large: 0.1}
	for tier, p := range want {
		tol := 4 * math.Sqrt(p*(1-p)/n)
		assert.InDelta(t, p, float64(counts[tier])/n, tol, "tier %s", tier)
	}
}

func TestPlaceFeaturesDeterministic(t *testing.T) {
	a := PlaceFeatures(NewRandomSource(99), 1, 1, core.SamplingAngular)
	b := PlaceFeatures(NewRandomSource(99), 1, 1, core.SamplingAngular)
	c := PlaceFeatures(NewRandomSource(100), 1, 1, core.SamplingAngular)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSamplingPolarDensity(t *testing.T) {
	// Fraction of sites in the polar caps above |y| > 0.9. Area sampling puts
	// 10% there; angular sampling puts 2*acos(0.9)/π ≈ 28.7% there.
	const n = 20000
	polar := func(sampling core.Sampling) float64 {
		count := 0
		for _, s := range PlaceCraters(NewRandomSource(17), n, sampling) {
			if math.Abs(s.Position.Y()) > 0.9 {
				count++
			}
		}
		return float64(count) / n
	}

	assert.InDelta(t, 0.10, polar(core.SamplingArea), 0.015)
	assert.InDelta(t, 2*math.Acos(0.9)/math.Pi, polar(core.SamplingAngular), 0.015)
}
