package mesh

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// DefaultTemplateCount is the number of distinct base shapes shared by the field
const DefaultTemplateCount = 25

// DefaultSubdivisions gives 642 vertices per template
const DefaultSubdivisions = 3

var icosahedronFaces = []uint32{
	0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
	1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
	3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
	4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
}

// Icosahedron returns the 12-vertex regular icosahedron on the unit sphere
func Icosahedron() Mesh {
	t := (1 + math.Sqrt(5)) / 2
	raw := []physics.Vector3D{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}

	m := Mesh{
		Vertices: make([]physics.Vector3D, len(raw)),
		Indices:  make([]uint32, len(icosahedronFaces)),
	}
	for i, v := range raw {
		m.Vertices[i] = v.Normalize()
	}
	copy(m.Indices, icosahedronFaces)
	return m
}

// Subdivide splits every triangle into four, pushing new vertices back onto
// the unit sphere. Shared edges share their midpoint.
func Subdivide(m Mesh) Mesh {
	out := Mesh{
		Vertices: make([]physics.Vector3D, len(m.Vertices), len(m.Vertices)*4),
		Indices:  make([]uint32, 0, len(m.Indices)*4),
	}
	copy(out.Vertices, m.Vertices)

	midpoints := make(map[uint64]uint32)
	midpoint := func(a, b uint32) uint32 {
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		key := uint64(lo)<<32 | uint64(hi)
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		mid := out.Vertices[a].Add(out.Vertices[b]).Normalize()
		idx := uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, mid)
		midpoints[key] = idx
		return idx
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		out.Indices = append(out.Indices,
			a, ab, ca,
			b, bc, ab,
			c, ca, bc,
			ab, bc, ca,
		)
	}
	return out
}

// Icosphere returns an icosahedron subdivided the given number of times
func Icosphere(levels int) Mesh {
	m := Icosahedron()
	for i := 0; i < levels; i++ {
		m = Subdivide(m)
	}
	return m
}

// TemplateSet builds count unit-sphere templates, each a randomly oriented
// copy of the same icosphere so that vertex layouts differ per template
func TemplateSet(rng *rand.Rand, count, levels int) []Mesh {
	if count <= 0 {
		return nil
	}

	base := Icosphere(levels)
	templates := make([]Mesh, count)
	for i := range templates {
		axis := physics.RandomUnitVector(rng)
		q := mgl64.QuatRotate(rng.Float64()*2*math.Pi, axis.Vec3())

		m := base.Clone()
		for j, v := range m.Vertices {
			m.Vertices[j] = physics.FromVec3(q.Rotate(v.Vec3())).Normalize()
		}
		templates[i] = m
	}
	return templates
}
