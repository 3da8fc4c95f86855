package engine

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// buildField creates a complete asteroid set. Positions lie in a thick
// shell around the hole and sizes skew small.
func (s *SimulationState) buildField() ([]*entity.Asteroid, error) {
	fc := s.Config.FieldConfig
	minDistance := fc.DiskRadius * fc.MinDistanceFraction
	maxDistance := fc.DiskRadius * fc.MaxDistanceFraction

	asteroids := make([]*entity.Asteroid, 0, fc.AsteroidCount)
	for i := 0; i < fc.AsteroidCount; i++ {
		distance := s.uniform(minDistance, maxDistance)
		position := physics.RandomUnitVector(s.rng).Scale(distance)

		outer := math.Min(
			s.uniform(fc.MinOuterRadius, fc.MaxOuterRadius),
			s.uniform(fc.MinOuterRadius, fc.MaxOuterRadius),
		)
		inner := outer * s.uniform(fc.MinInnerFraction, fc.MaxInnerFraction)

		a, err := entity.NewAsteroid(s.rng, s.generator, entity.AsteroidConfig{
			Position:    position,
			InnerRadius: inner,
			OuterRadius: outer,
			Template:    s.templates[i%len(s.templates)],
			Well:        s.well,
		})
		if err != nil {
			return nil, fmt.Errorf("creating asteroid %d: %w", i, err)
		}
		asteroids = append(asteroids, a)
	}
	return asteroids, nil
}

func (s *SimulationState) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
