package export

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"

	"lunargen/core"
)

// Binary layout, little-endian:
//
//	magic   [4]byte "LGMB"
//	version uint16
//	nverts  uint32
//	nidx    uint32
//	verts   nverts * 6 float32 (px py pz nx ny nz)
//	indices nidx uint32
const (
	binaryVersion = 1
	headerSize    = 4 + 2 + 4 + 4

	// chunkElements bounds each read, so buffers grow with the data actually
	// present rather than with the counts a header claims
	chunkElements = 1 << 16
)

var binaryMagic = [4]byte{'L', 'G', 'M', 'B'}

// ErrBadFormat is returned when decoding data that is not a valid mesh buffer
var ErrBadFormat = errors.New("bad mesh buffer")

type header struct {
	Magic    [4]byte
	Version  uint16
	Vertices uint32
	Indices  uint32
}

// WriteBinary encodes m to w in the packed GPU buffer layout
func WriteBinary(w io.Writer, m *core.Mesh) error {
	bw := bufio.NewWriter(w)

	h := header{
		Magic:    binaryMagic,
		Version:  binaryVersion,
		Vertices: uint32(len(m.Vertices)),
		Indices:  uint32(len(m.Indices)),
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, m.Interleaved()); err != nil {
		return fmt.Errorf("failed to write vertices: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, m.Indices); err != nil {
		return fmt.Errorf("failed to write indices: %w", err)
	}
	return bw.Flush()
}

// MarshalBinary encodes m into a byte slice
func MarshalBinary(m *core.Mesh) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize + 4*(len(m.Vertices)*core.FloatsPerVertex+len(m.Indices)))
	if err := WriteBinary(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadBinary decodes a mesh written by WriteBinary
func ReadBinary(r io.Reader) (*core.Mesh, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadFormat, err)
	}
	if h.Magic != binaryMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadFormat, h.Magic[:])
	}
	if h.Version != binaryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, h.Version)
	}
	if h.Indices%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices", ErrBadFormat, h.Indices)
	}
	payload := 4 * (int64(h.Vertices)*core.FloatsPerVertex + int64(h.Indices))
	if lr, ok := r.(interface{ Len() int }); ok && int64(lr.Len()) < payload {
		return nil, fmt.Errorf("%w: header claims %d bytes, %d remain", ErrBadFormat, payload, lr.Len())
	}

	floats, err := readChunked[float32](r, int(h.Vertices)*core.FloatsPerVertex)
	if err != nil {
		return nil, fmt.Errorf("%w: vertices: %w", ErrBadFormat, err)
	}
	indices, err := readChunked[uint32](r, int(h.Indices))
	if err != nil {
		return nil, fmt.Errorf("%w: indices: %w", ErrBadFormat, err)
	}

	m := &core.Mesh{
		Vertices: make([]core.Vertex, h.Vertices),
		Indices:  indices,
	}
	for i := range m.Vertices {
		f := floats[i*core.FloatsPerVertex:]
		m.Vertices[i] = core.Vertex{
			Position: mgl32.Vec3{f[0], f[1], f[2]},
			Normal:   mgl32.Vec3{f[3], f[4], f[5]},
		}
	}
	for _, idx := range indices {
		if idx >= h.Vertices {
			return nil, fmt.Errorf("%w: index %d out of range", ErrBadFormat, idx)
		}
	}
	return m, nil
}

func readChunked[T float32 | uint32](r io.Reader, n int) ([]T, error) {
	out := make([]T, 0, min(n, chunkElements))
	buf := make([]T, min(n, chunkElements))
	for len(out) < n {
		step := buf[:min(n-len(out), len(buf))]
		if err := binary.Read(r, binary.LittleEndian, step); err != nil {
			return nil, err
		}
		out = append(out, step...)
	}
	return out, nil
}

// UnmarshalBinary decodes a mesh from a byte slice
func UnmarshalBinary(data []byte) (*core.Mesh, error) {
	return ReadBinary(bytes.NewReader(data))
}
