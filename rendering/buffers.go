package rendering

import (
	"lunargen/core"
)

// MaxIndexedVertices is the largest vertex count addressable by 16-bit indices
const MaxIndexedVertices = 1<<16 - 1

// Buffers are mesh arrays laid out for upload to a GPU that only accepts
// 16-bit indices. Indices is nil when the mesh was expanded into a plain
// triangle list.
type Buffers struct {
	Positions []float32
	Normals   []float32
	Indices   []uint16
}

// VertexCount returns the number of vertices in the buffers
func (b *Buffers) VertexCount() int { return len(b.Positions) / 3 }

// TriangleCount returns the number of triangles drawn from the buffers
func (b *Buffers) TriangleCount() int {
	if b.Indices != nil {
		return len(b.Indices) / 3
	}
	return b.VertexCount() / 3
}

// NewBuffers packs m for upload. Meshes with more vertices than 16-bit
// indices can reach are expanded so every triangle owns its three vertices.
func NewBuffers(m *core.Mesh) *Buffers {
	if m.VertexCount() <= MaxIndexedVertices {
		b := &Buffers{
			Positions: m.Positions(),
			Normals:   m.Normals(),
			Indices:   make([]uint16, len(m.Indices)),
		}
		for i, idx := range m.Indices {
			b.Indices[i] = uint16(idx)
		}
		return b
	}

	n := len(m.Indices)
	b := &Buffers{
		Positions: make([]float32, 0, n*3),
		Normals:   make([]float32, 0, n*3),
	}
	for _, idx := range m.Indices {
		v := m.Vertices[idx]
		b.Positions = append(b.Positions, v.Position[0], v.Position[1], v.Position[2])
		b.Normals = append(b.Normals, v.Normal[0], v.Normal[1], v.Normal[2])
	}
	return b
}
