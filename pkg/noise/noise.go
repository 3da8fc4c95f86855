// Package noise provides deterministic 3D scalar fields used to roughen
// asteroid surfaces. Every field returns values in [-1, 1] and holds no
// mutable state after construction, so one instance may be shared freely.
package noise

import (
	"github.com/ojrac/opensimplex-go"
)

// Default parameters for asteroid surfaces
const (
	DefaultFrequency = 0.6
	DefaultAmplitude = 1.0
)

// Field is a pure function from a point in space to a value in [-1, 1]
type Field interface {
	Sample(x, y, z float64) float64
}

// FieldFunc adapts an ordinary function to the Field interface
type FieldFunc func(x, y, z float64) float64

// Sample calls f(x, y, z)
func (f FieldFunc) Sample(x, y, z float64) float64 {
	return f(x, y, z)
}

// Constant returns a field with the same value everywhere, clamped to [-1, 1]
func Constant(value float64) Field {
	v := Clamp(value)
	return FieldFunc(func(x, y, z float64) float64 { return v })
}

// SimplexField samples OpenSimplex noise scaled by frequency and amplitude
type SimplexField struct {
	source    opensimplex.Noise
	seed      int64
	frequency float64
	amplitude float64
}

// NewSimplexField creates a simplex noise field
func NewSimplexField(seed int64, frequency, amplitude float64) *SimplexField {
	return &SimplexField{
		source:    opensimplex.New(seed),
		seed:      seed,
		frequency: frequency,
		amplitude: amplitude,
	}
}

// Sample returns amplitude * noise(frequency * p), clamped to [-1, 1]
func (f *SimplexField) Sample(x, y, z float64) float64 {
	v := f.source.Eval3(x*f.frequency, y*f.frequency, z*f.frequency)
	return Clamp(v * f.amplitude)
}

// Seed returns the seed the field was built with
func (f *SimplexField) Seed() int64 { return f.seed }

// Frequency returns the spatial frequency of the field
func (f *SimplexField) Frequency() float64 { return f.frequency }

// Amplitude returns the output scale of the field
func (f *SimplexField) Amplitude() float64 { return f.amplitude }

// Clamp limits v to [-1, 1]
func Clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
