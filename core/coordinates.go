package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Spherical represents a direction on the unit sphere.
// Y points to the north pole, theta is measured from +X toward +Z.
type Spherical struct {
	Phi   float64 // Polar angle in radians [0, π], 0 = north pole
	Theta float64 // Azimuthal angle in radians (-π, π]
}

// SphericalToCartesian converts a spherical direction to a unit vector
func SphericalToCartesian(s Spherical) mgl64.Vec3 {
	sinPhi := math.Sin(s.Phi)

	return mgl64.Vec3{
		sinPhi * math.Cos(s.Theta),
		math.Cos(s.Phi),
		sinPhi * math.Sin(s.Theta),
	}
}

// CartesianToSpherical converts a vector to its spherical direction.
// The length of v is ignored.
func CartesianToSpherical(v mgl64.Vec3) Spherical {
	r := v.Len()

	// Handle special case of origin
	if r < 1e-12 {
		return Spherical{}
	}

	return Spherical{
		Phi:   math.Acos(mgl64.Clamp(v.Y()/r, -1, 1)),
		Theta: math.Atan2(v.Z(), v.X()),
	}
}

// ChordDistance is the straight-line distance between two points
func ChordDistance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// AngularDistance returns the great-circle angle in radians between two
// directions. Both vectors must be unit length.
func AngularDistance(a, b mgl64.Vec3) float64 {
	return math.Acos(mgl64.Clamp(a.Dot(b), -1, 1))
}

// ChordToAngle converts a chord length on the unit sphere to the angle it subtends
func ChordToAngle(chord float64) float64 {
	return 2 * math.Asin(mgl64.Clamp(chord/2, 0, 1))
}
