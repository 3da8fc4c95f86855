// pkg/engine/state_test.go
package engine

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-blackhole/pkg/config"
	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/event"
	"github.com/opd-ai/go-blackhole/pkg/logging"
	"github.com/opd-ai/go-blackhole/pkg/noise"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

const epsilon = 1e-9

func testConfig() *config.SimulationConfig {
	cfg := config.DefaultConfig()
	cfg.Seed = 42
	cfg.FieldConfig.AsteroidCount = 6
	cfg.FieldConfig.TemplateCount = 3
	cfg.FieldConfig.TemplateSubdivisions = 1
	cfg.ShipConfig.PathSteps = 10
	return cfg
}

func newTestSimulation(t *testing.T, cfg *config.SimulationConfig, opts ...Option) *SimulationState {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	s, err := NewSimulation(cfg, opts...)
	if err != nil {
		t.Fatalf("NewSimulation() failed: %v", err)
	}
	return s
}

func TestNewSimulation(t *testing.T) {
	s := newTestSimulation(t, nil)

	if len(s.Asteroids) != 6 {
		t.Errorf("Expected 6 asteroids, got %d", len(s.Asteroids))
	}
	if s.Templates() != 3 {
		t.Errorf("Expected 3 templates, got %d", s.Templates())
	}
	if s.Player == nil {
		t.Fatal("Expected player to be created")
	}
	if !s.Player.Model.IsReady() {
		t.Error("Expected player model to be ready")
	}
	if s.Generation != 1 {
		t.Errorf("Expected generation 1, got %d", s.Generation)
	}
	if s.TimeScale != 1 {
		t.Errorf("Expected time scale 1, got %v", s.TimeScale)
	}
	if s.CurrentTick != 0 {
		t.Errorf("Expected tick 0, got %d", s.CurrentTick)
	}
	if err := s.CheckInvariants(); err != nil {
		t.Errorf("Expected valid field, got %v", err)
	}
}

func TestNewSimulationFieldLayout(t *testing.T) {
	cfg := testConfig()
	cfg.FieldConfig.AsteroidCount = 40
	s := newTestSimulation(t, cfg)

	fc := cfg.FieldConfig
	for i, a := range s.Asteroids {
		d := a.GetPosition().Length()
		if d < fc.DiskRadius*fc.MinDistanceFraction-epsilon || d > fc.DiskRadius*fc.MaxDistanceFraction+epsilon {
			t.Errorf("Asteroid %d: distance %v outside shell", i, d)
		}
		if a.OuterRadius < fc.MinOuterRadius || a.OuterRadius > fc.MaxOuterRadius {
			t.Errorf("Asteroid %d: outer radius %v outside range", i, a.OuterRadius)
		}
		ratio := a.InnerRadius / a.OuterRadius
		if ratio < fc.MinInnerFraction-epsilon || ratio > fc.MaxInnerFraction+epsilon {
			t.Errorf("Asteroid %d: inner fraction %v outside range", i, ratio)
		}
	}
}

func TestNewSimulationErrors(t *testing.T) {
	if _, err := NewSimulation(nil); err == nil {
		t.Error("Expected error for nil config")
	}

	cfg := testConfig()
	cfg.LoopConfig.UpdatesPerSecond = 0
	_, err := NewSimulation(cfg, WithLogger(logging.Discard()))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewSimulationReproducible(t *testing.T) {
	a := newTestSimulation(t, nil)
	b := newTestSimulation(t, nil)

	for i := range a.Asteroids {
		pa, pb := a.Asteroids[i].GetPosition(), b.Asteroids[i].GetPosition()
		if pa != pb {
			t.Errorf("Asteroid %d: expected same position for same seed, got %v and %v", i, pa, pb)
		}
		if a.Asteroids[i].OuterRadius != b.Asteroids[i].OuterRadius {
			t.Errorf("Asteroid %d: expected same outer radius for same seed", i)
		}
	}
}

func TestSandboxField(t *testing.T) {
	cfg := testConfig()
	cfg.FieldConfig.AsteroidCount = 0
	s := newTestSimulation(t, cfg)

	if len(s.Asteroids) != 0 {
		t.Errorf("Expected empty field, got %d asteroids", len(s.Asteroids))
	}
	s.Tick(1.0 / 60)
	if s.CurrentTick != 1 {
		t.Errorf("Expected tick 1, got %d", s.CurrentTick)
	}
}

func TestResetField(t *testing.T) {
	s := newTestSimulation(t, nil)
	var resets []*event.FieldEvent
	s.EventBus.Subscribe(event.FieldReset, func(e event.Event) {
		resets = append(resets, e.(*event.FieldEvent))
	})

	first := s.Asteroids
	if err := s.ResetField(); err != nil {
		t.Fatalf("ResetField() failed: %v", err)
	}
	second := s.Asteroids
	if err := s.ResetField(); err != nil {
		t.Fatalf("ResetField() failed: %v", err)
	}
	third := s.Asteroids

	for _, field := range [][]*entity.Asteroid{second, third} {
		if len(field) != 6 {
			t.Errorf("Expected 6 asteroids after reset, got %d", len(field))
		}
		for _, a := range field {
			if err := a.Invariant(); err != nil {
				t.Errorf("Expected valid asteroid after reset, got %v", err)
			}
		}
	}

	if first[0] == second[0] || first[0].GetPosition() == second[0].GetPosition() {
		t.Error("Expected reset to discard the previous asteroids")
	}
	if second[0].GetPosition() == third[0].GetPosition() {
		t.Error("Expected consecutive resets to be independently randomized")
	}

	if s.Generation != 3 {
		t.Errorf("Expected generation 3, got %d", s.Generation)
	}
	if len(resets) != 2 {
		t.Fatalf("Expected 2 reset events, got %d", len(resets))
	}
	if resets[1].Generation != 3 || resets[1].AsteroidCount != 6 {
		t.Errorf("Expected event for generation 3 with 6 asteroids, got %+v", resets[1])
	}
}

func TestResetFieldMovesCameraToOrigin(t *testing.T) {
	s := newTestSimulation(t, nil)
	s.Tick(1.0 / 60)
	shipPos := s.Player.GetPosition()

	if err := s.ResetField(); err != nil {
		t.Fatalf("ResetField() failed: %v", err)
	}
	if !s.Camera.Position.IsZero() {
		t.Errorf("Expected camera at origin after reset, got %v", s.Camera.Position)
	}
	if s.Player.GetPosition() != shipPos {
		t.Error("Expected reset to leave the ship in place")
	}
}

func TestTick(t *testing.T) {
	s := newTestSimulation(t, nil)
	dt := 1.0 / 60

	expectedAsteroid := s.Asteroids[0].Body
	expectedAsteroid.Update(dt)
	expectedShip := s.Player.Body
	expectedShip.Update(dt)

	s.Tick(dt)

	if s.CurrentTick != 1 {
		t.Errorf("Expected tick 1, got %d", s.CurrentTick)
	}
	if s.Asteroids[0].GetPosition() != expectedAsteroid.Frame.Position {
		t.Errorf("Expected asteroid at %v, got %v", expectedAsteroid.Frame.Position, s.Asteroids[0].GetPosition())
	}
	if s.Player.GetPosition() != expectedShip.Frame.Position {
		t.Errorf("Expected ship at %v, got %v", expectedShip.Frame.Position, s.Player.GetPosition())
	}
	if s.Camera != s.Player.CameraFrame() {
		t.Error("Expected camera to follow the ship after a tick")
	}
}

func TestTickDelta(t *testing.T) {
	s := newTestSimulation(t, nil)
	if math.Abs(s.TickDelta()-1.0/60) > epsilon {
		t.Errorf("Expected tick delta 1/60, got %v", s.TickDelta())
	}
	s.TimeScale = 10
	if math.Abs(s.TickDelta()-10.0/60) > epsilon {
		t.Errorf("Expected tick delta 10/60, got %v", s.TickDelta())
	}
}

func TestApplyInputThrust(t *testing.T) {
	dt := 1.0 / 60
	a := entity.ShipAcceleration * dt

	tests := []struct {
		name     string
		input    InputState
		expected physics.Vector3D
	}{
		{"Forward", InputState{ThrustForward: true}, physics.Vector3D{X: a}},
		{"Backward", InputState{ThrustBackward: true}, physics.Vector3D{X: -a}},
		{"Quick", InputState{QuickThrust: true}, physics.Vector3D{X: a * entity.QuickThrustFactor}},
		{"Up", InputState{ThrustUp: true}, physics.Vector3D{Y: a}},
		{"Down", InputState{ThrustDown: true}, physics.Vector3D{Y: -a}},
		{"Right", InputState{ThrustRight: true}, physics.Vector3D{Z: a}},
		{"Left", InputState{ThrustLeft: true}, physics.Vector3D{Z: -a}},
		{"Opposed", InputState{ThrustForward: true, ThrustBackward: true}, physics.Vector3D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSimulation(t, nil)
			s.ApplyInput(tt.input)

			v := s.Player.Velocity
			if v.Sub(tt.expected).Length() > epsilon {
				t.Errorf("Expected velocity %v, got %v", tt.expected, v)
			}
		})
	}
}

func TestApplyInputRotation(t *testing.T) {
	tests := []struct {
		name  string
		input InputState
		check func(f physics.Frame) bool
	}{
		{"YawLeft", InputState{YawLeft: true}, func(f physics.Frame) bool { return f.Forward.Z < 0 }},
		{"YawRight", InputState{YawRight: true}, func(f physics.Frame) bool { return f.Forward.Z > 0 }},
		{"PitchUp", InputState{PitchUp: true}, func(f physics.Frame) bool { return f.Forward.Y != 0 }},
		{"RollRight", InputState{RollRight: true}, func(f physics.Frame) bool { return f.Up.Z != 0 && math.Abs(f.Forward.X-1) < epsilon }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSimulation(t, nil)
			s.ApplyInput(tt.input)

			f := s.Player.Frame
			if !tt.check(f) {
				t.Errorf("Unexpected frame after %s: %+v", tt.name, f)
			}
			if !f.IsOrthonormal(physics.OrthonormalTolerance) {
				t.Error("Expected orthonormal frame after rotation")
			}
		})
	}
}

func TestApplyInputDebugToggle(t *testing.T) {
	s := newTestSimulation(t, nil)
	var toggles []bool
	s.EventBus.Subscribe(event.DebugToggled, func(e event.Event) {
		toggles = append(toggles, e.(*event.ToggleEvent).Enabled)
	})

	held := InputState{ToggleDebug: true}
	s.ApplyInput(held)
	s.ApplyInput(held)
	s.ApplyInput(held)
	if !s.Debug {
		t.Error("Expected debug on after first press")
	}

	s.ApplyInput(InputState{})
	s.ApplyInput(held)
	if s.Debug {
		t.Error("Expected debug off after second press")
	}

	if len(toggles) != 2 || !toggles[0] || toggles[1] {
		t.Errorf("Expected toggle events [true false], got %v", toggles)
	}
}

func TestApplyInputFastForward(t *testing.T) {
	s := newTestSimulation(t, nil)
	var changes []*event.TimeScaleEvent
	s.EventBus.Subscribe(event.TimeScaleChanged, func(e event.Event) {
		changes = append(changes, e.(*event.TimeScaleEvent))
	})

	// thrust on the first fast-forward sample still uses the old scale
	s.ApplyInput(InputState{FastForward: true, ThrustForward: true})
	if s.TimeScale != 10 {
		t.Errorf("Expected time scale 10, got %v", s.TimeScale)
	}
	expected := entity.ShipAcceleration / 60
	if math.Abs(s.Player.Velocity.X-expected) > epsilon {
		t.Errorf("Expected velocity %v, got %v", expected, s.Player.Velocity.X)
	}

	s.ApplyInput(InputState{FastForward: true, ThrustForward: true})
	expected += entity.ShipAcceleration * 10 / 60
	if math.Abs(s.Player.Velocity.X-expected) > epsilon {
		t.Errorf("Expected velocity %v, got %v", expected, s.Player.Velocity.X)
	}

	s.ApplyInput(InputState{})
	if s.TimeScale != 1 {
		t.Errorf("Expected time scale back to 1, got %v", s.TimeScale)
	}

	if len(changes) != 2 {
		t.Fatalf("Expected 2 scale changes, got %d", len(changes))
	}
	if changes[0].OldScale != 1 || changes[0].NewScale != 10 {
		t.Errorf("Expected 1 -> 10, got %v -> %v", changes[0].OldScale, changes[0].NewScale)
	}
}

func TestApplyInputReset(t *testing.T) {
	s := newTestSimulation(t, nil)

	held := InputState{Reset: true}
	s.ApplyInput(held)
	s.ApplyInput(held)
	if s.Generation != 2 {
		t.Errorf("Expected one reset while held, got generation %d", s.Generation)
	}

	s.ApplyInput(InputState{})
	s.ApplyInput(held)
	if s.Generation != 3 {
		t.Errorf("Expected second reset after release, got generation %d", s.Generation)
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestSimulation(t, nil)
	s.Tick(1.0 / 60)

	snap := s.Snapshot()
	if snap.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", snap.Tick)
	}
	if snap.AsteroidCount != 6 {
		t.Errorf("Expected 6 asteroids, got %d", snap.AsteroidCount)
	}
	if snap.PlayerPosition != s.Player.GetPosition() {
		t.Error("Expected snapshot player position to match")
	}
	if len(snap.PredictedPath) != 10 {
		t.Errorf("Expected 10 path points, got %d", len(snap.PredictedPath))
	}
	if math.Abs(snap.PlayerSpeed-s.Player.Velocity.Length()) > epsilon {
		t.Error("Expected snapshot speed to match velocity")
	}
}

type recordingRenderer struct {
	calls []string
	hud   []Snapshot
}

func (r *recordingRenderer) RenderAsteroid(*entity.Asteroid)   { r.calls = append(r.calls, "asteroid") }
func (r *recordingRenderer) RenderSpaceship(*entity.Spaceship) { r.calls = append(r.calls, "ship") }
func (r *recordingRenderer) Clear()                            { r.calls = append(r.calls, "clear") }
func (r *recordingRenderer) Present()                          { r.calls = append(r.calls, "present") }
func (r *recordingRenderer) RenderHUD(s Snapshot) {
	r.calls = append(r.calls, "hud")
	r.hud = append(r.hud, s)
}

func TestRender(t *testing.T) {
	cfg := testConfig()
	cfg.FieldConfig.AsteroidCount = 2
	s := newTestSimulation(t, cfg)

	r := &recordingRenderer{}
	s.Render(r)

	expected := []string{"clear", "asteroid", "asteroid", "ship", "hud", "present"}
	if len(r.calls) != len(expected) {
		t.Fatalf("Expected calls %v, got %v", expected, r.calls)
	}
	for i := range expected {
		if r.calls[i] != expected[i] {
			t.Errorf("Call %d: expected %s, got %s", i, expected[i], r.calls[i])
		}
	}
	if len(r.hud) != 1 || r.hud[0].AsteroidCount != 2 {
		t.Error("Expected HUD to receive a snapshot of the frame")
	}
}

func TestEntities(t *testing.T) {
	s := newTestSimulation(t, nil)
	all := s.Entities()

	if len(all) != 7 {
		t.Fatalf("Expected 7 entities, got %d", len(all))
	}
	if all[6].Kind() != entity.KindSpaceship {
		t.Errorf("Expected player last, got %s", all[6].Kind())
	}
}

func TestCheckInvariantsReportsViolations(t *testing.T) {
	s := newTestSimulation(t, nil)
	s.Asteroids[2].RotationRate = -1
	s.Asteroids[4].InnerRadius = s.Asteroids[4].OuterRadius + 1

	err := s.CheckInvariants()
	if !errors.Is(err, entity.ErrInvariant) {
		t.Fatalf("Expected ErrInvariant, got %v", err)
	}
}

func TestInvariantsHoldOverTime(t *testing.T) {
	s := newTestSimulation(t, nil)
	for i := 0; i < 600; i++ {
		s.ApplyInput(InputState{ThrustForward: i%3 == 0, YawLeft: i%5 == 0, RollRight: i%7 == 0})
		s.Tick(1.0 / 60)
	}
	if err := s.CheckInvariants(); err != nil {
		t.Errorf("Expected invariants to hold after 600 ticks, got %v", err)
	}
}

func TestWithOptions(t *testing.T) {
	bus := event.NewEventBus()
	rng := rand.New(rand.NewPCG(7, 7))
	s := newTestSimulation(t, nil,
		WithEventBus(bus),
		WithRand(rng),
		WithNoiseField(noise.Constant(0)),
	)

	if s.EventBus != bus {
		t.Error("Expected injected event bus")
	}
	for i, a := range s.Asteroids {
		mid := (a.InnerRadius + a.OuterRadius) / 2
		for _, r := range a.Mesh.Radii() {
			if math.Abs(r-mid) > 1e-6 {
				t.Fatalf("Asteroid %d: expected flat noise to give radius %v, got %v", i, mid, r)
			}
		}
	}
}

// TestSimulationRaceCondition runs readers against the tick goroutine
func TestSimulationRaceCondition(t *testing.T) {
	s := newTestSimulation(t, nil)

	var wg sync.WaitGroup
	done := make(chan bool)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				s.ApplyInput(InputState{ThrustForward: true, Reset: i%50 == 0})
				s.Tick(1.0 / 60)
			}
		}
	}()

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Snapshot()
				_ = s.CheckInvariants()
				s.Render(&recordingRenderer{})
				time.Sleep(100 * time.Microsecond)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()
}
