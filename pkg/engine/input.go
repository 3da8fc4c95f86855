package engine

import (
	"github.com/opd-ai/go-blackhole/pkg/event"
)

// InputState is one sample of the player controls
type InputState struct {
	QuickThrust    bool
	ThrustForward  bool
	ThrustBackward bool
	ThrustUp       bool
	ThrustDown     bool
	ThrustRight    bool
	ThrustLeft     bool
	RollRight      bool
	RollLeft       bool
	PitchUp        bool
	PitchDown      bool
	YawLeft        bool
	YawRight       bool
	ToggleDebug    bool
	FastForward    bool
	Reset          bool
}

// InputSource supplies the current control state once per loop invocation
type InputSource interface {
	Poll() InputState
}

// InputFunc adapts a function to InputSource
type InputFunc func() InputState

// Poll calls f
func (f InputFunc) Poll() InputState {
	return f()
}

// NoInput is an InputSource with nothing pressed
var NoInput InputSource = InputFunc(func() InputState { return InputState{} })

// ApplyInput applies thrust and rotation for one input sample, then the
// mode switches. Debug toggling and reset fire once per press.
func (s *SimulationState) ApplyInput(in InputState) {
	var events []event.Event
	reset := false

	s.EntityLock.Lock()
	s.Input = in
	dt := s.TickDelta()
	p := s.Player

	if in.QuickThrust {
		p.AccelerateForwardQuick(1, dt)
	}
	if in.ThrustForward {
		p.AccelerateForward(1, dt)
	}
	if in.ThrustBackward {
		p.AccelerateForward(-1, dt)
	}
	if in.ThrustUp {
		p.AccelerateUp(1, dt)
	}
	if in.ThrustDown {
		p.AccelerateUp(-1, dt)
	}
	if in.ThrustRight {
		p.AccelerateRight(1, dt)
	}
	if in.ThrustLeft {
		p.AccelerateRight(-1, dt)
	}

	turn := s.Config.ShipConfig.TurnRate
	if in.RollRight {
		p.RotateAroundForward(turn)
	}
	if in.RollLeft {
		p.RotateAroundForward(-turn)
	}
	if in.PitchUp {
		p.RotateAroundRight(turn)
	}
	if in.PitchDown {
		p.RotateAroundRight(-turn)
	}
	if in.YawLeft {
		p.RotateAroundUp(turn)
	}
	if in.YawRight {
		p.RotateAroundUp(-turn)
	}

	if in.ToggleDebug && !s.prevInput.ToggleDebug {
		s.Debug = !s.Debug
		events = append(events, event.NewToggleEvent(event.DebugToggled, s, s.Debug))
	}

	scale := 1.0
	if in.FastForward {
		scale = s.Config.LoopConfig.FastForwardScale
	}
	if scale != s.TimeScale {
		events = append(events, event.NewTimeScaleEvent(s, s.TimeScale, scale))
		s.TimeScale = scale
	}

	if in.Reset && !s.prevInput.Reset {
		reset = true
	}
	s.prevInput = in
	s.EntityLock.Unlock()

	for _, ev := range events {
		s.EventBus.Publish(ev)
	}
	if reset {
		// ResetField logs its own failure and keeps the old field
		_ = s.ResetField()
	}
}
