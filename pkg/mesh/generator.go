package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-blackhole/pkg/noise"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// Generation errors
var (
	ErrEmptyTemplate   = errors.New("template mesh has no vertices")
	ErrNotUnitSphere   = errors.New("template mesh is not a unit sphere")
	ErrInvalidRadii    = errors.New("invalid asteroid radii")
	ErrInvalidIndices  = errors.New("template mesh has invalid indices")
	ErrNoiseFieldUnset = errors.New("generator has no noise field")
)

// Generator deforms unit-sphere templates with a noise field
type Generator struct {
	field noise.Field
}

// NewGenerator creates a generator sampling the given field
func NewGenerator(field noise.Field) *Generator {
	return &Generator{field: field}
}

// Generate displaces every template vertex to a radius between inner and
// outer picked by the noise at vertex+noiseOffset. The template is not
// modified. On error no asset is returned.
func (g *Generator) Generate(template Mesh, inner, outer float64, noiseOffset physics.Vector3D) (*Asset, error) {
	if g == nil || g.field == nil {
		return nil, ErrNoiseFieldUnset
	}
	if err := validateRadii(inner, outer); err != nil {
		return nil, err
	}
	if template.IsEmpty() {
		return nil, ErrEmptyTemplate
	}
	if !template.IsUnitSphere() {
		return nil, ErrNotUnitSphere
	}
	if !template.indicesValid() {
		return nil, fmt.Errorf("%w: %d indices for %d vertices",
			ErrInvalidIndices, len(template.Indices), len(template.Vertices))
	}

	work := template.Clone()
	mid := (inner + outer) / 2
	half := (outer - inner) / 2
	radii := make([]float64, len(work.Vertices))
	minR, maxR := math.Inf(1), math.Inf(-1)

	for i, v := range work.Vertices {
		p := v.Add(noiseOffset)
		n := noise.Clamp(g.field.Sample(p.X, p.Y, p.Z))
		r := clampRadius(mid+n*half, inner, outer)

		work.Vertices[i] = v.Normalize().Scale(r)
		radii[i] = r
		minR = math.Min(minR, r)
		maxR = math.Max(maxR, r)
	}

	return &Asset{
		vertices:  work.Vertices,
		normals:   vertexNormals(work.Vertices, work.Indices),
		indices:   work.Indices,
		radii:     radii,
		minRadius: minR,
		maxRadius: maxR,
		ready:     true,
	}, nil
}

func validateRadii(inner, outer float64) error {
	if math.IsNaN(inner) || math.IsNaN(outer) || math.IsInf(outer, 0) {
		return fmt.Errorf("%w: inner=%v outer=%v", ErrInvalidRadii, inner, outer)
	}
	if inner < 0 {
		return fmt.Errorf("%w: inner radius %v is negative", ErrInvalidRadii, inner)
	}
	if inner > outer {
		return fmt.Errorf("%w: inner radius %v exceeds outer radius %v", ErrInvalidRadii, inner, outer)
	}
	return nil
}

func clampRadius(r, inner, outer float64) float64 {
	if r < inner {
		return inner
	}
	if r > outer {
		return outer
	}
	return r
}
