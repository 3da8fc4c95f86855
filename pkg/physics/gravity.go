// pkg/physics/gravity.go
package physics

import "math"

const (
	// GravitationalConstant in m^3 kg^-1 s^-2
	GravitationalConstant = 6.67408e-11
	// BlackHoleMass is the default mass of the central body in kg
	BlackHoleMass = 5.0e16
)

// GravityWell is a fixed point mass at the origin.
// Bodies feel its pull; it never feels theirs.
type GravityWell struct {
	G    float64
	Mass float64
}

// DefaultGravityWell returns the black hole used by the simulation
func DefaultGravityWell() GravityWell {
	return GravityWell{G: GravitationalConstant, Mass: BlackHoleMass}
}

// Mu returns the standard gravitational parameter G*M
func (w GravityWell) Mu() float64 {
	return w.G * w.Mass
}

// Acceleration returns the pull on a body at position, a = G*M/d^2 toward
// the origin. A body exactly at the origin gets the zero vector.
func (w GravityWell) Acceleration(position Vector3D) Vector3D {
	distanceSquared := position.LengthSquared()
	if distanceSquared == 0 {
		return Vector3D{}
	}
	magnitude := w.Mu() / distanceSquared
	return position.Negate().Normalize().Scale(magnitude)
}

// CircularSpeed returns the tangential speed for a circular orbit through
// position, s = sqrt(G*M/d). Zero at the origin.
func (w GravityWell) CircularSpeed(position Vector3D) float64 {
	distance := position.Length()
	if distance == 0 {
		return 0
	}
	return math.Sqrt(w.Mu() / distance)
}
