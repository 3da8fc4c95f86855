// pkg/render/renderer.go
package render

import (
	"context"
	"sync/atomic"

	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/logging"
)

// NullRenderer draws nothing. It logs every call at debug level and counts
// presented frames, which makes it the renderer for headless runs.
type NullRenderer struct {
	logger *logging.Logger
	frames atomic.Uint64
}

// NewNullRenderer creates a NullRenderer. A nil logger uses the default.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{
		logger: logger,
	}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	ctx := context.Background()
	d.logger.Debug(ctx, "Clear called")
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	ctx := context.Background()
	n := d.frames.Add(1)
	d.logger.Debug(ctx, "Present called", "frame", n)
}

// RenderAsteroid implements entity.Renderer.
func (d *NullRenderer) RenderAsteroid(asteroid *entity.Asteroid) {
	ctx := context.Background()
	if asteroid == nil {
		d.logger.Debug(ctx, "RenderAsteroid called with nil asteroid")
		return
	}
	d.logger.Debug(ctx, "RenderAsteroid called",
		"asteroid_id", asteroid.ID,
		"distance", asteroid.GetPosition().Length(),
		"outer_radius", asteroid.OuterRadius,
	)
}

// RenderSpaceship implements entity.Renderer.
func (d *NullRenderer) RenderSpaceship(ship *entity.Spaceship) {
	ctx := context.Background()
	if ship == nil {
		d.logger.Debug(ctx, "RenderSpaceship called with nil ship")
		return
	}
	d.logger.Debug(ctx, "RenderSpaceship called",
		"ship_id", ship.ID,
		"speed", ship.Velocity.Length(),
	)
}

// RenderHUD implements engine.HUDRenderer.
func (d *NullRenderer) RenderHUD(s engine.Snapshot) {
	ctx := context.Background()
	d.logger.Debug(ctx, "RenderHUD called",
		"tick", s.Tick,
		"frame_rate", s.Stats.FrameRate,
		"physics_rate", s.Stats.PhysicsRate,
	)
}

// Frames returns the number of frames presented
func (d *NullRenderer) Frames() uint64 {
	return d.frames.Load()
}
