// pkg/engine/state.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/opd-ai/go-blackhole/pkg/config"
	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/event"
	"github.com/opd-ai/go-blackhole/pkg/logging"
	"github.com/opd-ai/go-blackhole/pkg/mesh"
	"github.com/opd-ai/go-blackhole/pkg/noise"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// ShipModelRadius is the size of the generated player model
const ShipModelRadius = 4.0

// SimulationState owns everything a running simulation mutates. The loop
// goroutine is the only writer; EntityLock lets health checks and
// renderers read consistently from other goroutines.
type SimulationState struct {
	Config      *config.SimulationConfig
	Asteroids   []*entity.Asteroid
	Player      *entity.Spaceship
	Camera      physics.Frame
	Input       InputState
	Debug       bool
	TimeScale   float64
	CurrentTick uint64
	Generation  uint64 // incremented by every field reset
	Seed        int64
	Stats       Stats
	EventBus    *event.Bus
	EntityLock  sync.RWMutex

	rng       *rand.Rand
	well      physics.GravityWell
	field     noise.Field
	generator *mesh.Generator
	templates []mesh.Mesh
	prevInput InputState
	logger    *logging.Logger
	ctx       context.Context
}

// Option customizes a SimulationState at construction
type Option func(*SimulationState)

// WithRand injects the random source used for templates and the field
func WithRand(rng *rand.Rand) Option {
	return func(s *SimulationState) { s.rng = rng }
}

// WithNoiseField replaces the configured simplex field
func WithNoiseField(field noise.Field) Option {
	return func(s *SimulationState) { s.field = field }
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *SimulationState) { s.logger = logger }
}

// WithEventBus shares an existing event bus
func WithEventBus(bus *event.Bus) Option {
	return func(s *SimulationState) { s.EventBus = bus }
}

// WithContext sets the context used for log correlation
func WithContext(ctx context.Context) Option {
	return func(s *SimulationState) { s.ctx = ctx }
}

// NewSimulation validates cfg, builds the shared templates and the player,
// then generates the first asteroid field
func NewSimulation(cfg *config.SimulationConfig, opts ...Option) (*SimulationState, error) {
	if cfg == nil {
		return nil, errors.New("nil simulation config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &SimulationState{
		Config:    cfg,
		TimeScale: 1,
		Seed:      cfg.Seed,
		well: physics.GravityWell{
			G:    cfg.PhysicsConfig.GravitationalConstant,
			Mass: cfg.PhysicsConfig.BlackHoleMass,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.logger == nil {
		s.logger = logging.NewLogger()
	}
	if s.EventBus == nil {
		s.EventBus = event.NewEventBus()
	}
	if s.rng == nil {
		if s.Seed == 0 {
			s.Seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)^0x9e3779b97f4a7c15))
	}
	if s.field == nil {
		nc := cfg.NoiseConfig
		s.field = noise.NewSimplexField(nc.Seed, nc.Frequency, nc.Amplitude)
	}
	s.generator = mesh.NewGenerator(s.field)

	fc := cfg.FieldConfig
	s.templates = mesh.TemplateSet(s.rng, fc.TemplateCount, fc.TemplateSubdivisions)

	shipModel, err := mesh.NewGenerator(noise.Constant(0)).
		Generate(mesh.Icosphere(1), ShipModelRadius, ShipModelRadius, physics.Vector3D{})
	if err != nil {
		return nil, fmt.Errorf("building ship model: %w", err)
	}
	s.Player = entity.NewSpaceship(s.well, shipModel)
	s.Camera = s.Player.CameraFrame()

	if err := s.ResetField(); err != nil {
		return nil, err
	}

	s.logger.Info(s.ctx, "simulation created",
		"seed", s.Seed,
		"asteroids", len(s.Asteroids),
		"templates", len(s.templates),
		"template_vertices", s.templates[0].VertexCount(),
	)
	return s, nil
}

// ResetField discards every asteroid and generates a fresh field. The
// camera returns to the origin until the next tick. On error the old
// field is kept.
func (s *SimulationState) ResetField() error {
	s.EntityLock.Lock()
	ev, err := s.resetFieldLocked()
	s.EntityLock.Unlock()

	if err != nil {
		s.logger.Error(s.ctx, "field reset failed", err, "generation", s.Generation)
		return err
	}
	s.EventBus.Publish(ev)
	return nil
}

func (s *SimulationState) resetFieldLocked() (event.Event, error) {
	asteroids, err := s.buildField()
	if err != nil {
		return nil, err
	}

	s.Asteroids = asteroids
	s.Camera = physics.IdentityFrame(physics.Vector3D{})
	s.Generation++

	s.logger.Info(s.ctx, "asteroid field generated",
		"asteroids", len(asteroids),
		"generation", s.Generation,
	)
	return event.NewFieldEvent(s, len(asteroids), s.Generation), nil
}

// Tick advances every entity by dt seconds of simulated time. Asteroids
// update first, then the player, then the camera follows the player.
func (s *SimulationState) Tick(dt float64) {
	s.EntityLock.Lock()
	defer s.EntityLock.Unlock()

	for _, a := range s.Asteroids {
		a.Update(dt)
	}
	s.Player.Update(dt)
	s.Camera = s.Player.CameraFrame()
	s.CurrentTick++
}

// TickDelta returns the simulated seconds of one tick at the current time scale
func (s *SimulationState) TickDelta() float64 {
	return s.TimeScale / float64(s.Config.LoopConfig.UpdatesPerSecond)
}

// Entities returns every entity, asteroids first
func (s *SimulationState) Entities() []entity.Entity {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	out := make([]entity.Entity, 0, len(s.Asteroids)+1)
	for _, a := range s.Asteroids {
		out = append(out, a)
	}
	return append(out, s.Player)
}

// CheckInvariants returns every asteroid invariant violation joined together
func (s *SimulationState) CheckInvariants() error {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	var errs []error
	for _, a := range s.Asteroids {
		if err := a.Invariant(); err != nil {
			errs = append(errs, err)
		}
	}
	if !s.Player.Frame.IsOrthonormal(physics.OrthonormalTolerance) {
		errs = append(errs, fmt.Errorf("%w: player frame is not orthonormal", entity.ErrInvariant))
	}
	return errors.Join(errs...)
}

// Templates returns the number of shared template meshes
func (s *SimulationState) Templates() int {
	return len(s.templates)
}

// Logger returns the state's logger
func (s *SimulationState) Logger() *logging.Logger {
	return s.logger
}

// Context returns the context used for log correlation
func (s *SimulationState) Context() context.Context {
	return s.ctx
}
