package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereVertexCount returns the vertex count GenerateSphere produces
func SphereVertexCount(latSegments, lonSegments int) int {
	return 2 + (latSegments-1)*lonSegments
}

// MaxVertexCount is the largest mesh addressable by uint32 indices
const MaxVertexCount = math.MaxUint32

// SphereFits reports whether a sphere with the given segment counts stays
// within MaxVertexCount. Segment counts must already be >= MinSegments.
func SphereFits(latSegments, lonSegments int) bool {
	rings := uint64(latSegments - 1)
	return rings <= (MaxVertexCount-2)/uint64(lonSegments)
}

// SphereTriangleCount returns the triangle count GenerateSphere produces
func SphereTriangleCount(latSegments, lonSegments int) int {
	return 2 * lonSegments * (latSegments - 1)
}

// GenerateSphere builds a UV sphere of the given radius.
//
// Vertex 0 is the north pole, followed by latSegments-1 rings of lonSegments
// vertices each, followed by the south pole. The seam at theta = ±π shares
// vertices with theta = 0 so there are no duplicated columns, and the poles
// are single vertices joined to the first and last ring by triangle fans.
// Normals are the normalized positions.
func GenerateSphere(radius float64, latSegments, lonSegments int) (*Mesh, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, &ParamError{Field: "size", Reason: "must be a finite value > 0", Value: radius}
	}
	if latSegments < MinSegments {
		return nil, &ParamError{Field: "latSegments", Reason: fmt.Sprintf("must be >= %d", MinSegments), Value: latSegments}
	}
	if lonSegments < MinSegments {
		return nil, &ParamError{Field: "lonSegments", Reason: fmt.Sprintf("must be >= %d", MinSegments), Value: lonSegments}
	}
	if !SphereFits(latSegments, lonSegments) {
		return nil, segmentsTooLarge(latSegments, lonSegments)
	}

	vertexCount := SphereVertexCount(latSegments, lonSegments)
	mesh := &Mesh{
		Vertices: make([]Vertex, 0, vertexCount),
		Indices:  make([]uint32, 0, 3*SphereTriangleCount(latSegments, lonSegments)),
	}

	addVertex := func(dir mgl64.Vec3) {
		n := Vec3To32(dir)
		mesh.Vertices = append(mesh.Vertices, Vertex{
			Position: Vec3To32(dir.Mul(radius)),
			Normal:   n,
		})
	}

	// North pole
	addVertex(mgl64.Vec3{0, 1, 0})

	// Rings between the poles
	for ring := 1; ring < latSegments; ring++ {
		phi := float64(ring) * math.Pi / float64(latSegments)
		for seg := 0; seg < lonSegments; seg++ {
			theta := float64(seg)*2.0*math.Pi/float64(lonSegments) - math.Pi
			addVertex(SphericalToCartesian(Spherical{Phi: phi, Theta: theta}))
		}
	}

	// South pole
	addVertex(mgl64.Vec3{0, -1, 0})

	north := uint32(0)
	south := uint32(vertexCount - 1)
	ringStart := func(ring int) uint32 {
		return uint32(1 + (ring-1)*lonSegments)
	}
	lon := uint32(lonSegments)

	// North cap
	first := ringStart(1)
	for seg := uint32(0); seg < lon; seg++ {
		next := (seg + 1) % lon
		mesh.Indices = append(mesh.Indices, north, first+next, first+seg)
	}

	// Quads between rings
	for ring := 1; ring < latSegments-1; ring++ {
		upper := ringStart(ring)
		lower := ringStart(ring + 1)
		for seg := uint32(0); seg < lon; seg++ {
			next := (seg + 1) % lon
			a := upper + seg
			b := upper + next
			c := lower + seg
			d := lower + next

			mesh.Indices = append(mesh.Indices, a, b, c)
			mesh.Indices = append(mesh.Indices, b, d, c)
		}
	}

	// South cap
	last := ringStart(latSegments - 1)
	for seg := uint32(0); seg < lon; seg++ {
		next := (seg + 1) % lon
		mesh.Indices = append(mesh.Indices, last+seg, last+next, south)
	}

	return mesh, nil
}

// Vec3To32 narrows a float64 vector to float32
func Vec3To32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Vec3To64 widens a float32 vector to float64
func Vec3To64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func segmentsTooLarge(latSegments, lonSegments int) *ParamError {
	return &ParamError{
		Field:  "segments",
		Reason: fmt.Sprintf("%dx%d exceeds %d vertices", latSegments, lonSegments, uint64(MaxVertexCount)),
	}
}
