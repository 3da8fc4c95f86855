// Package mesh provides unit-sphere template geometry and the procedural
// generator that deforms it into irregular asteroid surfaces.
package mesh

import (
	"math"

	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// UnitSphereTolerance bounds |‖v‖² - 1| for every vertex of a template
const UnitSphereTolerance = 1e-3

// Mesh is an indexed triangle list
type Mesh struct {
	Vertices []physics.Vector3D
	Indices  []uint32
}

// Clone returns a deep copy of the mesh
func (m Mesh) Clone() Mesh {
	out := Mesh{
		Vertices: make([]physics.Vector3D, len(m.Vertices)),
		Indices:  make([]uint32, len(m.Indices)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Indices, m.Indices)
	return out
}

// VertexCount returns the number of vertices
func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of whole triangles in the index list
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no vertices
func (m Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// IsUnitSphere reports whether every vertex lies on the unit sphere
func (m Mesh) IsUnitSphere() bool {
	if m.IsEmpty() {
		return false
	}
	for _, v := range m.Vertices {
		if math.Abs(v.LengthSquared()-1) >= UnitSphereTolerance {
			return false
		}
	}
	return true
}

// indicesValid reports whether the index list forms whole triangles that
// reference existing vertices
func (m Mesh) indicesValid() bool {
	if len(m.Indices)%3 != 0 {
		return false
	}
	n := uint32(len(m.Vertices))
	for _, idx := range m.Indices {
		if idx >= n {
			return false
		}
	}
	return true
}
