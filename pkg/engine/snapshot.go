package engine

import (
	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// Snapshot is a read-only copy of the values front ends display
type Snapshot struct {
	Tick           uint64
	Generation     uint64
	AsteroidCount  int
	PlayerPosition physics.Vector3D
	PlayerVelocity physics.Vector3D
	PlayerSpeed    float64
	Camera         physics.Frame
	Debug          bool
	TimeScale      float64
	PredictedPath  []physics.Vector3D
	Stats          Stats
}

// HUDRenderer is implemented by renderers that draw an overlay from the
// snapshot after the entities of a frame
type HUDRenderer interface {
	RenderHUD(s Snapshot)
}

// Snapshot copies the display state
func (s *SimulationState) Snapshot() Snapshot {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()
	return s.snapshotLocked()
}

func (s *SimulationState) snapshotLocked() Snapshot {
	sc := s.Config.ShipConfig
	return Snapshot{
		Tick:           s.CurrentTick,
		Generation:     s.Generation,
		AsteroidCount:  len(s.Asteroids),
		PlayerPosition: s.Player.GetPosition(),
		PlayerVelocity: s.Player.Velocity,
		PlayerSpeed:    s.Player.Velocity.Length(),
		Camera:         s.Camera,
		Debug:          s.Debug,
		TimeScale:      s.TimeScale,
		PredictedPath:  s.Player.PredictPath(sc.PathSteps, sc.PathTimeStep),
		Stats:          s.Stats,
	}
}

// Render draws one frame: Clear, every asteroid, the player, the HUD if
// the renderer has one, then Present
func (s *SimulationState) Render(r entity.Renderer) {
	s.EntityLock.RLock()
	defer s.EntityLock.RUnlock()

	r.Clear()
	for _, a := range s.Asteroids {
		a.Render(r)
	}
	s.Player.Render(r)
	if hud, ok := r.(HUDRenderer); ok {
		hud.RenderHUD(s.snapshotLocked())
	}
	r.Present()
}
