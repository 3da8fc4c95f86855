// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-blackhole/pkg/engine"
	"github.com/opd-ai/go-blackhole/pkg/entity"
	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// Draw sizes. The black hole and ship have no physical extent, so these
// only decide how large they look.
const (
	BlackHoleDrawRadius = 150.0 // world units
	ShipDrawRadius      = 2.0   // world units
	MinAsteroidPixels   = 1.0
	MarkerPixels        = 2.0
	debugAxisMargin     = 50.0
)

var (
	asteroidColor = color.RGBA{150, 140, 130, 255}
	pathColor     = color.RGBA{0, 200, 0, 255}
	axisColor     = color.RGBA{220, 0, 0, 255}
	spriteTint    = color.RGBA{255, 255, 255, 255}
)

// spriteSink is the part of common.RenderSystem the renderer uses
type spriteSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// sprite is one retained render entity
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

func newSprite(sink spriteSink, drawable common.Drawable, c color.Color) *sprite {
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.Drawable = drawable
	s.Color = c
	s.Hidden = true
	sink.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	return s
}

// place centers the sprite on p with a diameter of 2*radius pixels
func (s *sprite) place(p Projection, radius float32) {
	size := 2 * radius
	s.Position = engo.Point{X: p.X - radius, Y: p.Y - radius}
	s.Width = size
	s.Height = size
	if s.Drawable != nil && s.Drawable.Width() > 0 && s.Drawable.Height() > 0 {
		s.Scale = engo.Point{X: size / s.Drawable.Width(), Y: size / s.Drawable.Height()}
	}
	s.Hidden = false
}

// bodyMark is an asteroid seen during the current frame
type bodyMark struct {
	id       entity.ID
	position physics.Vector3D
	axis     physics.Vector3D
	radius   float64
}

// EngoRenderer implements entity.Renderer and engine.HUDRenderer on engo's
// render system. Entities are collected between Clear and Present and
// projected in Present, once the ship has set the camera frame.
type EngoRenderer struct {
	sink   spriteSink
	camera *CameraSystem
	assets *AssetManager
	hud    *HUDSystem

	asteroids map[entity.ID]*sprite
	marks     []bodyMark
	ship      *sprite
	hole      *sprite
	path      []*sprite
	axes      []*sprite

	shipPos  physics.Vector3D
	shipSeen bool
	snapshot *engine.Snapshot
}

// NewEngoRenderer creates a renderer adding its entities to sink. hud may
// be nil.
func NewEngoRenderer(sink spriteSink, camera *CameraSystem, assets *AssetManager, hud *HUDSystem) *EngoRenderer {
	return &EngoRenderer{
		sink:      sink,
		camera:    camera,
		assets:    assets,
		hud:       hud,
		asteroids: make(map[entity.ID]*sprite),
	}
}

// Clear implements entity.Renderer
func (r *EngoRenderer) Clear() {
	r.marks = r.marks[:0]
	r.shipSeen = false
	r.snapshot = nil
}

// RenderAsteroid implements entity.Renderer
func (r *EngoRenderer) RenderAsteroid(a *entity.Asteroid) {
	if a == nil {
		return
	}
	r.marks = append(r.marks, bodyMark{
		id:       a.ID,
		position: a.GetPosition(),
		axis:     a.RotationAxis,
		radius:   a.OuterRadius,
	})
}

// RenderSpaceship implements entity.Renderer. The ship's chase camera
// becomes the view for this frame.
func (r *EngoRenderer) RenderSpaceship(s *entity.Spaceship) {
	if s == nil {
		return
	}
	r.camera.SetFrame(s.CameraFrame())
	r.shipPos = s.GetPosition()
	r.shipSeen = true
}

// RenderHUD implements engine.HUDRenderer
func (r *EngoRenderer) RenderHUD(s engine.Snapshot) {
	r.snapshot = &s
	if r.hud != nil {
		r.hud.SetSnapshot(s)
	}
}

// Present implements entity.Renderer
func (r *EngoRenderer) Present() {
	if r.hole == nil {
		r.hole = newSprite(r.sink, r.assets.BlackHoleSprite(), spriteTint)
	}
	r.placeBody(r.hole, physics.Vector3D{}, BlackHoleDrawRadius, 0)

	r.presentAsteroids()

	if r.ship == nil {
		r.ship = newSprite(r.sink, r.assets.ShipSprite(), spriteTint)
	}
	if r.shipSeen {
		r.placeBody(r.ship, r.shipPos, ShipDrawRadius, 0)
	} else {
		r.ship.Hidden = true
	}

	var path []physics.Vector3D
	debug := false
	if r.snapshot != nil {
		path = r.snapshot.PredictedPath
		debug = r.snapshot.Debug
	}
	r.path = r.presentMarkers(r.path, path, pathColor)

	var axes []physics.Vector3D
	if debug {
		axes = make([]physics.Vector3D, len(r.marks))
		for i, m := range r.marks {
			axes[i] = m.position.Add(m.axis.Scale(m.radius + debugAxisMargin))
		}
	}
	r.axes = r.presentMarkers(r.axes, axes, axisColor)
}

// presentAsteroids places one sprite per asteroid seen this frame and drops
// sprites of asteroids that are gone
func (r *EngoRenderer) presentAsteroids() {
	live := make(map[entity.ID]struct{}, len(r.marks))
	for _, m := range r.marks {
		live[m.id] = struct{}{}
		s, ok := r.asteroids[m.id]
		if !ok {
			s = newSprite(r.sink, common.Circle{}, asteroidColor)
			r.asteroids[m.id] = s
		}
		r.placeBody(s, m.position, m.radius, MinAsteroidPixels)
	}
	for id, s := range r.asteroids {
		if _, ok := live[id]; !ok {
			r.sink.Remove(s.BasicEntity)
			delete(r.asteroids, id)
		}
	}
}

// presentMarkers places fixed-size dots at points, growing the pool as
// needed and hiding the rest
func (r *EngoRenderer) presentMarkers(pool []*sprite, points []physics.Vector3D, c color.Color) []*sprite {
	for len(pool) < len(points) {
		pool = append(pool, newSprite(r.sink, common.Circle{}, c))
	}
	for i, s := range pool {
		if i >= len(points) {
			s.Hidden = true
			continue
		}
		if p, ok := r.camera.Project(points[i], 0); ok {
			s.place(p, MarkerPixels)
		} else {
			s.Hidden = true
		}
	}
	return pool
}

func (r *EngoRenderer) placeBody(s *sprite, pos physics.Vector3D, radius float64, minPixels float32) {
	p, ok := r.camera.Project(pos, radius)
	if !ok {
		s.Hidden = true
		return
	}
	px := p.Radius
	if px < minPixels {
		px = minPixels
	}
	s.place(p, px)
}

// AsteroidSprites returns the number of retained asteroid entities
func (r *EngoRenderer) AsteroidSprites() int {
	return len(r.asteroids)
}
