package entity

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-blackhole/pkg/mesh"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// Asteroid randomization constants
const (
	RotationRateMax = 0.25 // radians per second
	NoiseOffsetMax  = 1.0e4
	RockDensity     = 2710.0 // kg per cubic meter

	// Orbit speed multiplier is drawn from [MinOrbitMultiplier, MinOrbitMultiplier+1]
	MinOrbitMultiplier = 0.5
)

// ErrInvariant reports an entity in a state it can never legally reach
var ErrInvariant = errors.New("entity invariant violated")

// Asteroid is a spinning rock on a gravity-driven orbit
type Asteroid struct {
	Body
	InnerRadius  float64
	OuterRadius  float64
	RotationAxis physics.Vector3D
	RotationRate float64
	NoiseOffset  physics.Vector3D
	Mesh         *mesh.Asset
}

// AsteroidConfig holds the caller-chosen parameters of a new asteroid
type AsteroidConfig struct {
	Position    physics.Vector3D
	InnerRadius float64
	OuterRadius float64
	Template    mesh.Mesh
	Well        physics.GravityWell
}

// NewAsteroid creates an asteroid with randomized spin, attitude and orbit
// velocity and generates its mesh. All randomness comes from rng.
func NewAsteroid(rng *rand.Rand, gen *mesh.Generator, cfg AsteroidConfig) (*Asteroid, error) {
	a := &Asteroid{
		Body: Body{
			ID:    GenerateID(),
			Frame: physics.IdentityFrame(cfg.Position),
			Well:  cfg.Well,
		},
		InnerRadius:  cfg.InnerRadius,
		OuterRadius:  cfg.OuterRadius,
		RotationAxis: physics.RandomUnitVector(rng),
		// product of two draws biases toward slow spin
		RotationRate: rng.Float64() * rng.Float64() * RotationRateMax,
		NoiseOffset:  physics.RandomSphereVector(rng).Scale(NoiseOffsetMax),
	}

	asset, err := gen.Generate(cfg.Template, cfg.InnerRadius, cfg.OuterRadius, a.NoiseOffset)
	if err != nil {
		return nil, fmt.Errorf("generating asteroid mesh: %w", err)
	}
	a.Mesh = asset

	for i := 0; i < 2; i++ {
		a.Frame.RotateAroundForward(rng.Float64() * 2 * math.Pi)
		a.Frame.RotateAroundUp(rng.Float64() * 2 * math.Pi)
		a.Frame.RotateAroundRight(rng.Float64() * 2 * math.Pi)
	}

	a.Mass = AsteroidMass(cfg.InnerRadius, cfg.OuterRadius)

	// Tangent to the radius so the asteroid orbits instead of falling in
	toOrigin := a.Frame.Position.Negate()
	tangent := physics.RandomUnitVector(rng).Rejection(toOrigin).Normalize()
	multiplier := float64(rng.IntN(101))/100 + MinOrbitMultiplier
	a.Velocity = tangent.Scale(a.ComputeCircularSpeed() * multiplier)

	return a, nil
}

// AsteroidMass approximates mass from the radii and rock density
func AsteroidMass(inner, outer float64) float64 {
	return (math.Pi / 6) * outer * outer * inner * RockDensity
}

// Kind returns KindAsteroid
func (a *Asteroid) Kind() Kind {
	return KindAsteroid
}

// Update integrates the orbit, then spins the asteroid about its axis
func (a *Asteroid) Update(deltaTime float64) {
	a.Body.Update(deltaTime)
	a.Frame.RotateAroundAxis(a.RotationAxis, a.RotationRate*deltaTime)
}

// Invariant returns an error wrapping ErrInvariant when the asteroid is malformed
func (a *Asteroid) Invariant() error {
	switch {
	case a.InnerRadius < 0:
		return fmt.Errorf("%w: asteroid %d inner radius %v is negative", ErrInvariant, a.ID, a.InnerRadius)
	case a.InnerRadius > a.OuterRadius:
		return fmt.Errorf("%w: asteroid %d inner radius %v exceeds outer %v", ErrInvariant, a.ID, a.InnerRadius, a.OuterRadius)
	case !a.RotationAxis.IsUnit(physics.OrthonormalTolerance):
		return fmt.Errorf("%w: asteroid %d rotation axis %v is not unit", ErrInvariant, a.ID, a.RotationAxis)
	case a.RotationRate < 0:
		return fmt.Errorf("%w: asteroid %d rotation rate %v is negative", ErrInvariant, a.ID, a.RotationRate)
	case !a.Mesh.IsReady():
		return fmt.Errorf("%w: asteroid %d mesh is not built", ErrInvariant, a.ID)
	case !a.Frame.IsOrthonormal(physics.OrthonormalTolerance):
		return fmt.Errorf("%w: asteroid %d frame is not orthonormal", ErrInvariant, a.ID)
	}
	return nil
}
