package entity

import (
	"github.com/opd-ai/go-blackhole/pkg/mesh"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// Spaceship handling constants
const (
	ShipMass          = 1000.0
	ShipAcceleration  = 10.0 // m/s^2
	QuickThrustFactor = 10.0
	TurnRate          = 0.02 // radians per input sample

	CameraTrailDistance = 20.0
	CameraHeight        = 5.0

	// Predicted path defaults match a 100 second look-ahead
	PathSteps    = 100
	PathTimeStep = 1.0
)

// ShipStartPosition is where the player spawns
var ShipStartPosition = physics.Vector3D{X: -1000}

// Spaceship is the player-controlled entity
type Spaceship struct {
	Body
	Model *mesh.Asset // shared, may be nil
}

// NewSpaceship creates a ship at the start position facing +X with +Y up
func NewSpaceship(well physics.GravityWell, model *mesh.Asset) *Spaceship {
	return &Spaceship{
		Body: Body{
			ID:    GenerateID(),
			Frame: physics.NewFrame(ShipStartPosition, physics.UnitX, physics.UnitY),
			Mass:  ShipMass,
			Well:  well,
		},
		Model: model,
	}
}

// Kind returns KindSpaceship
func (s *Spaceship) Kind() Kind {
	return KindSpaceship
}

// Update integrates gravity and position
func (s *Spaceship) Update(deltaTime float64) {
	s.Body.Update(deltaTime)
}

func (s *Spaceship) RotateAroundForward(radians float64) {
	s.Frame.RotateAroundForward(radians)
}

func (s *Spaceship) RotateAroundRight(radians float64) {
	s.Frame.RotateAroundRight(radians)
}

func (s *Spaceship) RotateAroundUp(radians float64) {
	s.Frame.RotateAroundUp(radians)
}

// AccelerateForward thrusts along the forward axis; sign is +1 or -1
func (s *Spaceship) AccelerateForward(sign int, deltaTime float64) {
	s.UpdateVelocity(s.Frame.Forward.Scale(ShipAcceleration*float64(sign)), deltaTime)
}

// AccelerateForwardQuick is forward thrust at QuickThrustFactor times the normal rate
func (s *Spaceship) AccelerateForwardQuick(sign int, deltaTime float64) {
	s.UpdateVelocity(s.Frame.Forward.Scale(ShipAcceleration*QuickThrustFactor*float64(sign)), deltaTime)
}

func (s *Spaceship) AccelerateRight(sign int, deltaTime float64) {
	s.UpdateVelocity(s.Frame.Right().Scale(ShipAcceleration*float64(sign)), deltaTime)
}

func (s *Spaceship) AccelerateUp(sign int, deltaTime float64) {
	s.UpdateVelocity(s.Frame.Up.Scale(ShipAcceleration*float64(sign)), deltaTime)
}

// CameraFrame returns the third-person camera: behind and above the ship,
// oriented like it
func (s *Spaceship) CameraFrame() physics.Frame {
	pos := s.Frame.Position.
		Add(s.Frame.Forward.Scale(-CameraTrailDistance)).
		Add(s.Frame.Up.Scale(CameraHeight))
	return physics.Frame{Position: pos, Forward: s.Frame.Forward, Up: s.Frame.Up}
}

// PredictPath returns the positions a coasting copy of the ship would pass
// through over steps ticks of deltaTime. The ship itself is not changed.
func (s *Spaceship) PredictPath(steps int, deltaTime float64) []physics.Vector3D {
	if steps <= 0 {
		return nil
	}
	ghost := s.Body
	path := make([]physics.Vector3D, steps)
	for i := range path {
		ghost.Update(deltaTime)
		path[i] = ghost.Frame.Position
	}
	return path
}
