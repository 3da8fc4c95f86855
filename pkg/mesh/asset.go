package mesh

import (
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// Asset is immutable, draw-ready geometry. The zero value is an unbuilt
// asset; only the generator produces ready ones.
type Asset struct {
	vertices  []physics.Vector3D
	normals   []physics.Vector3D
	indices   []uint32
	radii     []float64
	minRadius float64
	maxRadius float64
	ready     bool
}

// IsReady reports whether the asset is fully built
func (a *Asset) IsReady() bool {
	return a != nil && a.ready
}

// VertexCount returns the number of vertices, zero when unbuilt
func (a *Asset) VertexCount() int {
	if !a.IsReady() {
		return 0
	}
	return len(a.vertices)
}

// TriangleCount returns the number of triangles, zero when unbuilt
func (a *Asset) TriangleCount() int {
	if !a.IsReady() {
		return 0
	}
	return len(a.indices) / 3
}

// Vertices returns a copy of the vertex positions
func (a *Asset) Vertices() []physics.Vector3D {
	if !a.IsReady() {
		return nil
	}
	out := make([]physics.Vector3D, len(a.vertices))
	copy(out, a.vertices)
	return out
}

// Positions returns vertex positions as a flat xyz float32 slice
func (a *Asset) Positions() []float32 {
	if !a.IsReady() {
		return nil
	}
	return flatten(a.vertices)
}

// Normals returns per-vertex normals as a flat xyz float32 slice
func (a *Asset) Normals() []float32 {
	if !a.IsReady() {
		return nil
	}
	return flatten(a.normals)
}

// Indices returns a copy of the triangle index list
func (a *Asset) Indices() []uint32 {
	if !a.IsReady() {
		return nil
	}
	out := make([]uint32, len(a.indices))
	copy(out, a.indices)
	return out
}

// Radii returns a copy of the per-vertex distances from the origin
func (a *Asset) Radii() []float64 {
	if !a.IsReady() {
		return nil
	}
	out := make([]float64, len(a.radii))
	copy(out, a.radii)
	return out
}

// MinRadius returns the smallest vertex distance
func (a *Asset) MinRadius() float64 {
	if !a.IsReady() {
		return 0
	}
	return a.minRadius
}

// MaxRadius returns the largest vertex distance, usable as a bounding sphere
func (a *Asset) MaxRadius() float64 {
	if !a.IsReady() {
		return 0
	}
	return a.maxRadius
}

func flatten(vs []physics.Vector3D) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return out
}

// vertexNormals averages adjacent face normals, oriented away from the origin
func vertexNormals(vertices []physics.Vector3D, indices []uint32) []physics.Vector3D {
	normals := make([]physics.Vector3D, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		face := vertices[b].Sub(vertices[a]).Cross(vertices[c].Sub(vertices[a]))
		normals[a] = normals[a].Add(face)
		normals[b] = normals[b].Add(face)
		normals[c] = normals[c].Add(face)
	}

	for i, n := range normals {
		if n.IsZero() {
			n = vertices[i]
		}
		if n.Dot(vertices[i]) < 0 {
			n = n.Negate()
		}
		normals[i] = n.Normalize()
	}
	return normals
}
