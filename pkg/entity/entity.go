// pkg/entity/entity.go
package entity

import (
	"sync/atomic"

	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

// Kind names the concrete variant behind an Entity
type Kind int

const (
	KindAsteroid Kind = iota
	KindSpaceship
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindAsteroid:
		return "asteroid"
	case KindSpaceship:
		return "spaceship"
	default:
		return "unknown"
	}
}

// Entity is the closed set of simulated objects. Only *Asteroid and
// *Spaceship implement it.
type Entity interface {
	GetID() ID
	Kind() Kind
	GetBody() *Body
	GetPosition() physics.Vector3D
	Update(deltaTime float64)
	Render(r Renderer)
	sealed()
}

// Body is the state shared by every entity variant
type Body struct {
	ID       ID
	Frame    physics.Frame
	Velocity physics.Vector3D
	Mass     float64
	Well     physics.GravityWell
}

// GetID returns the entity's unique identifier
func (b *Body) GetID() ID {
	return b.ID
}

// GetBody returns the shared body record
func (b *Body) GetBody() *Body {
	return b
}

// GetPosition returns the entity's position
func (b *Body) GetPosition() physics.Vector3D {
	return b.Frame.Position
}

// ComputeAcceleration returns the gravitational pull toward the origin
func (b *Body) ComputeAcceleration() physics.Vector3D {
	return b.Well.Acceleration(b.Frame.Position)
}

// ComputeCircularSpeed returns the speed of a circular orbit at the current distance
func (b *Body) ComputeCircularSpeed() float64 {
	return b.Well.CircularSpeed(b.Frame.Position)
}

// UpdateVelocity applies an acceleration for deltaTime seconds
func (b *Body) UpdateVelocity(acceleration physics.Vector3D, deltaTime float64) {
	b.Velocity = b.Velocity.Add(acceleration.Scale(deltaTime))
}

// Update integrates gravity with semi-implicit Euler
func (b *Body) Update(deltaTime float64) {
	state := physics.MotionState{Position: b.Frame.Position, Velocity: b.Velocity}
	physics.Integrate(&state, b.ComputeAcceleration(), deltaTime)
	b.Frame.Position = state.Position
	b.Velocity = state.Velocity
}

func (a *Asteroid) sealed()  {}
func (s *Spaceship) sealed() {}

// Render dispatches to the renderer method for the variant
func (a *Asteroid) Render(r Renderer) {
	r.RenderAsteroid(a)
}

func (s *Spaceship) Render(r Renderer) {
	r.RenderSpaceship(s)
}

var nextID atomic.Uint64

// GenerateID returns a process-unique entity ID
func GenerateID() ID {
	return ID(nextID.Add(1))
}
