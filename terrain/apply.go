package terrain

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"lunargen/core"
)

const (
	mountainFalloffPower = 2.0
	craterFalloffPower   = 1.8

	// DegenerateBound is the total unit-sphere displacement beyond which a
	// vertex is reported as numerically degenerate.
	DegenerateBound = 0.5

	// cancelCheckInterval is how many vertices are processed between context checks
	cancelCheckInterval = 1024
)

// Falloff weights a site's effect at chord distance d. It is 1 at the centre
// and exactly 0 for d >= radius.
func (s Site) Falloff(d float64) float64 {
	if d >= s.Radius {
		return 0
	}
	power := mountainFalloffPower
	if s.Kind == Crater {
		power = craterFalloffPower
	}
	return math.Pow(1-d/s.Radius, power)
}

// Contribution is the signed displacement the site adds at chord distance d:
// positive for mountains, negative for craters.
func (s Site) Contribution(d float64) float64 {
	effect := s.Falloff(d) * s.Magnitude
	if s.Kind == Crater {
		return -effect
	}
	return effect
}

// SurfaceEffect returns the total unit-sphere displacement at direction dir:
// the relief plus the contribution of every site whose radius covers dir.
func SurfaceEffect(relief ReliefField, sites []Site, dir mgl64.Vec3) float64 {
	angles := core.CartesianToSpherical(dir)
	total := 0.0
	if relief != nil {
		total = relief.Relief(angles.Phi, angles.Theta)
	}
	for i := range sites {
		d := core.ChordDistance(dir, sites[i].Position)
		if d < sites[i].Radius {
			total += sites[i].Contribution(d)
		}
	}
	return total
}

// ApplyFeatures pushes every vertex along its current normal by the surface
// effect at its direction. The effect is an absolute offset and does not grow
// with the sphere radius. Normals must still be the
// pre-deformation radial normals; they are left untouched so the caller must
// recompute them afterwards.
//
// The cost is O(vertices x sites). Vertices whose effect reaches
// DegenerateBound are summarised in the returned DegenerateError, which is nil
// when none were seen. A cancelled context aborts with ErrGenerationAborted and
// leaves the mesh partially displaced, so callers must discard it.
func ApplyFeatures(ctx context.Context, mesh *core.Mesh, relief ReliefField, sites []Site) (*core.DegenerateError, error) {
	var degenerate *core.DegenerateError

	for i := range mesh.Vertices {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", core.ErrGenerationAborted, err)
			}
		}

		v := &mesh.Vertices[i]
		normal := core.Vec3To64(v.Normal).Normalize()
		effect := SurfaceEffect(relief, sites, normal)

		if math.Abs(effect) >= DegenerateBound {
			if degenerate == nil {
				degenerate = &core.DegenerateError{Bound: DegenerateBound}
			}
			degenerate.Count++
			degenerate.MaxAbs = math.Max(degenerate.MaxAbs, math.Abs(effect))
		}

		pos := core.Vec3To64(v.Position).Add(normal.Mul(effect))
		v.Position = core.Vec3To32(pos)
	}

	return degenerate, nil
}
