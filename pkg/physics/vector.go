// pkg/physics/vector.go
package physics

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector3D represents a 3D vector with x, y and z components
type Vector3D struct {
	X float64
	Y float64
	Z float64
}

// Unit axis vectors
var (
	UnitX = Vector3D{X: 1}
	UnitY = Vector3D{Y: 1}
	UnitZ = Vector3D{Z: 1}
)

// Add returns the sum of two vectors
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub returns the difference between two vectors
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return Vector3D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector3D) Scale(factor float64) Vector3D {
	return Vector3D{
		X: v.X * factor,
		Y: v.Y * factor,
		Z: v.Z * factor,
	}
}

// Negate returns the vector pointing the opposite way
func (v Vector3D) Negate() Vector3D {
	return Vector3D{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of two vectors
func (v Vector3D) Dot(other Vector3D) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vector3D) Cross(other Vector3D) Vector3D {
	return Vector3D{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the vector
func (v Vector3D) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector3D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Distance returns the distance between two vectors
func (v Vector3D) Distance(other Vector3D) float64 {
	return v.Sub(other).Length()
}

// IsZero reports whether all components are exactly zero
func (v Vector3D) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsUnit reports whether the vector has length 1 within tolerance
func (v Vector3D) IsUnit(tolerance float64) bool {
	return math.Abs(v.LengthSquared()-1) < tolerance
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to the zero vector.
func (v Vector3D) Normalize() Vector3D {
	length := v.Length()
	if length == 0 {
		return Vector3D{}
	}
	return Vector3D{
		X: v.X / length,
		Y: v.Y / length,
		Z: v.Z / length,
	}
}

// WithLength returns a vector in the same direction with the given length.
// The zero vector stays zero.
func (v Vector3D) WithLength(length float64) Vector3D {
	return v.Normalize().Scale(length)
}

// Projection returns the component of v parallel to onto.
// A zero onto vector yields the zero vector.
func (v Vector3D) Projection(onto Vector3D) Vector3D {
	denom := onto.LengthSquared()
	if denom == 0 {
		return Vector3D{}
	}
	return onto.Scale(v.Dot(onto) / denom)
}

// Rejection returns the component of v perpendicular to onto.
// A zero onto vector leaves v unchanged.
func (v Vector3D) Rejection(onto Vector3D) Vector3D {
	return v.Sub(v.Projection(onto))
}

// Vec3 converts the vector to a mathgl vector
func (v Vector3D) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromVec3 creates a vector from a mathgl vector
func FromVec3(v mgl64.Vec3) Vector3D {
	return Vector3D{X: v[0], Y: v[1], Z: v[2]}
}

// RandomUnitVector returns a vector distributed uniformly on the unit sphere
func RandomUnitVector(rng *rand.Rand) Vector3D {
	// Inverse-CDF on z plus uniform azimuth gives an even spread
	z := rng.Float64()*2 - 1
	azimuth := rng.Float64() * 2 * math.Pi
	ring := math.Sqrt(1 - z*z)
	return Vector3D{
		X: ring * math.Cos(azimuth),
		Y: ring * math.Sin(azimuth),
		Z: z,
	}
}

// RandomSphereVector returns a vector distributed uniformly inside the unit ball
func RandomSphereVector(rng *rand.Rand) Vector3D {
	return RandomUnitVector(rng).Scale(math.Cbrt(rng.Float64()))
}
