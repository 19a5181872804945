package export

import (
	"bufio"
	"fmt"
	"io"

	"lunargen/core"
)

// WriteOBJ writes m as a Wavefront OBJ with per-vertex normals
func WriteOBJ(w io.Writer, m *core.Mesh, comment string) error {
	bw := bufio.NewWriter(w)

	if comment != "" {
		fmt.Fprintf(bw, "# %s\n", comment)
	}
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Position[0], v.Position[1], v.Position[2])
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal[0], v.Normal[1], v.Normal[2])
	}

	// OBJ indices are 1-based
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a+1, a+1, b+1, b+1, c+1, c+1)
	}

	return bw.Flush()
}
