package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one GPU-ready mesh vertex
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3 // Unit length
}

// FloatsPerVertex is the interleaved stride of Mesh.Interleaved.
const FloatsPerVertex = 6

// Mesh is an indexed triangle mesh. Every three indices form one triangle,
// wound counter-clockwise when seen from outside.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// VertexCount returns the number of vertices
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Triangle returns the vertex indices of triangle i
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
}

// Interleaved returns position and normal data as one float32 slice laid out
// [px, py, pz, nx, ny, nz] per vertex, ready for a vertex buffer upload.
func (m *Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for _, v := range m.Vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
		out = append(out, v.Normal[0], v.Normal[1], v.Normal[2])
	}
	return out
}

// Positions returns the flat xyz position buffer
func (m *Mesh) Positions() []float32 {
	out := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
	}
	return out
}

// Normals returns the flat xyz normal buffer
func (m *Mesh) Normals() []float32 {
	out := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		out = append(out, v.Normal[0], v.Normal[1], v.Normal[2])
	}
	return out
}

// Clone returns a deep copy that can be mutated independently
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  make([]uint32, len(m.Indices)),
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Indices, m.Indices)
	return c
}

// RadiusRange returns the smallest and largest vertex distance from the origin
func (m *Mesh) RadiusRange() (minR, maxR float64) {
	if len(m.Vertices) == 0 {
		return 0, 0
	}
	minR, maxR = math.MaxFloat64, 0
	for _, v := range m.Vertices {
		r := float64(v.Position.Len())
		minR = math.Min(minR, r)
		maxR = math.Max(maxR, r)
	}
	return minR, maxR
}

// MeshData is the JSON form of a mesh sent to web renderers
type MeshData struct {
	Type     string       `json:"type"`
	Vertices [][3]float32 `json:"vertices"`
	Normals  [][3]float32 `json:"normals"`
	Indices  []uint32     `json:"indices"`
	Seed     uint64       `json:"seed"`
	Stats    *Stats       `json:"stats,omitempty"`
}

// Stats summarises a generated mesh
type Stats struct {
	Vertices   int     `json:"vertices"`
	Triangles  int     `json:"triangles"`
	Mountains  int     `json:"mountains"`
	Craters    int     `json:"craters"`
	MinRadius  float64 `json:"minRadius"`
	MaxRadius  float64 `json:"maxRadius"`
	DurationMs float64 `json:"durationMs"`
}

// NewMeshData converts a mesh into its JSON form
func NewMeshData(m *Mesh, seed uint64, stats *Stats) MeshData {
	data := MeshData{
		Type:     "mesh",
		Vertices: make([][3]float32, len(m.Vertices)),
		Normals:  make([][3]float32, len(m.Vertices)),
		Indices:  m.Indices,
		Seed:     seed,
		Stats:    stats,
	}
	for i, v := range m.Vertices {
		data.Vertices[i] = [3]float32(v.Position)
		data.Normals[i] = [3]float32(v.Normal)
	}
	return data
}

// Mesh rebuilds a mesh from its JSON form
func (d MeshData) Mesh() *Mesh {
	m := &Mesh{
		Vertices: make([]Vertex, len(d.Vertices)),
		Indices:  d.Indices,
	}
	for i := range d.Vertices {
		m.Vertices[i].Position = mgl32.Vec3(d.Vertices[i])
		if i < len(d.Normals) {
			m.Vertices[i].Normal = mgl32.Vec3(d.Normals[i])
		}
	}
	return m
}
