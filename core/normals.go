package core

import "github.com/go-gl/mathgl/mgl32"

// RecomputeNormals rebuilds every vertex normal from the current positions.
//
// Each normal is the area-weighted average of the faces around the vertex:
// the unnormalized cross products of adjacent triangles are summed and the
// sum is normalized. Vertices that end up with no usable face contribution
// fall back to their radial direction.
func RecomputeNormals(m *Mesh) {
	acc := make([]mgl32.Vec3, len(m.Vertices))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		ia, ib, ic := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		a := m.Vertices[ia].Position
		b := m.Vertices[ib].Position
		c := m.Vertices[ic].Position

		// Length of the cross product is twice the triangle area
		face := b.Sub(a).Cross(c.Sub(a))

		acc[ia] = acc[ia].Add(face)
		acc[ib] = acc[ib].Add(face)
		acc[ic] = acc[ic].Add(face)
	}

	for i := range m.Vertices {
		n := acc[i]
		if n.Len() < 1e-20 {
			n = m.Vertices[i].Position
		}
		if n.Len() == 0 {
			m.Vertices[i].Normal = mgl32.Vec3{0, 1, 0}
			continue
		}
		m.Vertices[i].Normal = n.Normalize()
	}
}
