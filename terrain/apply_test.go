package terrain

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunargen/core"
)

func TestFalloffBoundary(t *testing.T) {
	for _, s := range []Site{
		{Position: mgl64.Vec3{1, 0, 0}, Radius: 0.2, Magnitude: 0.05, Kind: Mountain},
		{Position: mgl64.Vec3{1, 0, 0}, Radius: 0.03, Magnitude: 0.01, Kind: Crater, Tier: Small},
	} {
		assert.Equal(t, 1.0, s.Falloff(0))
		assert.Equal(t, 0.0, s.Falloff(s.Radius), "%s boundary", s.Kind)
		assert.Equal(t, 0.0, s.Contribution(s.Radius))
		assert.Equal(t, 0.0, s.Contribution(s.Radius*1.5))
		assert.Equal(t, 0.0, s.Contribution(2))
	}
}

func TestContributionCurves(t *testing.T) {
	m := Site{Radius: 0.2, Magnitude: 0.1, Kind: Mountain}
	assert.InDelta(t, 0.1, m.Contribution(0), 1e-15)
	assert.InDelta(t, 0.1*0.25, m.Contribution(0.1), 1e-15)

	c := Site{Radius: 0.1, Magnitude: 0.02, Kind: Crater}
	assert.InDelta(t, -0.02, c.Contribution(0), 1e-15)
	assert.InDelta(t, -0.02*math.Pow(0.5, 1.8), c.Contribution(0.05), 1e-15)
}

func TestSurfaceEffectOnSiteCentre(t *testing.T) {
	dir := core.SphericalToCartesian(core.Spherical{Phi: 1.1, Theta: 0.4})
	crater := Site{Position: dir, Radius: 0.05, Magnitude: 0.012, Kind: Crater, Tier: Small}

	assert.InDelta(t, -0.012, SurfaceEffect(nil, []Site{crater}, dir), 1e-15)

	relief := DefaultSineRelief()
	want := relief.Relief(1.1, 0.4) - 0.012
	assert.InDelta(t, want, SurfaceEffect(relief, []Site{crater}, dir), 1e-12)
}

func TestSurfaceEffectSumsOverlappingSites(t *testing.T) {
	dir := mgl64.Vec3{0, 0, 1}
	near := core.SphericalToCartesian(core.Spherical{Phi: math.Pi/2 - 0.02, Theta: math.Pi / 2})
	d := core.ChordDistance(dir, near)

	sites := []Site{
		{Position: dir, Radius: 0.2, Magnitude: 0.05, Kind: Mountain},
		{Position: near, Radius: 0.1, Magnitude: 0.01, Kind: Crater},
		{Position: mgl64.Vec3{0, 0, -1}, Radius: 0.3, Magnitude: 0.1, Kind: Mountain},
	}
	want := 0.05 - 0.01*math.Pow(1-d/0.1, 1.8)
	assert.InDelta(t, want, SurfaceEffect(nil, sites, dir), 1e-12)
}

func TestApplyFeaturesZeroOutsideRadius(t *testing.T) {
	mesh, err := core.GenerateSphere(1, 24, 24)
	require.NoError(t, err)
	original := mesh.Clone()

	site := Site{Position: mgl64.Vec3{0, 1, 0}, Radius: 0.3, Magnitude: 0.05, Kind: Mountain}
	degenerate, err := ApplyFeatures(context.Background(), mesh, nil, []Site{site})
	require.NoError(t, err)
	assert.Nil(t, degenerate)

	for i := range mesh.Vertices {
		dir := core.Vec3To64(original.Vertices[i].Normal)
		if core.ChordDistance(dir, site.Position) >= site.Radius {
			assert.Equal(t, original.Vertices[i].Position, mesh.Vertices[i].Position, "vertex %d moved", i)
		}
	}
	// North pole sits on the site centre
	assert.InDelta(t, 1.05, float64(mesh.Vertices[0].Position.Y()), 1e-6)
}

func TestApplyFeaturesIndependentOfSize(t *testing.T) {
	mesh, err := core.GenerateSphere(10, 8, 8)
	require.NoError(t, err)

	south := mgl64.Vec3{0, -1, 0}
	crater := Site{Position: south, Radius: 0.1, Magnitude: 0.02, Kind: Crater}
	_, err = ApplyFeatures(context.Background(), mesh, nil, []Site{crater})
	require.NoError(t, err)

	// The pole drops by exactly the crater depth at any radius
	last := mesh.Vertices[mesh.VertexCount()-1]
	assert.InDelta(t, -9.98, float64(last.Position.Y()), 1e-5)
}

func TestApplyFeaturesReportsDegenerate(t *testing.T) {
	mesh, err := core.GenerateSphere(1, 8, 8)
	require.NoError(t, err)

	spike := Site{Position: mgl64.Vec3{0, 1, 0}, Radius: 0.2, Magnitude: 0.8, Kind: Mountain}
	degenerate, err := ApplyFeatures(context.Background(), mesh, nil, []Site{spike})
	require.NoError(t, err)
	require.NotNil(t, degenerate)

	assert.ErrorIs(t, degenerate, core.ErrNumericDegenerate)
	assert.Equal(t, 1, degenerate.Count)
	assert.InDelta(t, 0.8, degenerate.MaxAbs, 1e-12)
}

func TestApplyFeaturesCancelled(t *testing.T) {
	mesh, err := core.GenerateSphere(1, 8, 8)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ApplyFeatures(ctx, mesh, DefaultSineRelief(), nil)
	assert.ErrorIs(t, err, core.ErrGenerationAborted)
	assert.ErrorIs(t, err, context.Canceled)
}
