// pkg/render/engo/camera.go
package engo

import (
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-blackhole/pkg/physics"
)

// Perspective defaults for the chase camera
const (
	DefaultFieldOfView = 60.0 // vertical, degrees
	DefaultNear        = 1.0
	DefaultFar         = 100000.0
)

// Projection is a world point mapped onto the window
type Projection struct {
	X, Y   float32 // pixels, origin top-left
	Radius float32 // pixels
	Depth  float64 // distance along the view axis
}

// CameraSystem projects world points through the ship's camera frame onto
// the window
type CameraSystem struct {
	frame physics.Frame

	fieldOfView float64
	near        float64
	far         float64

	width  float64
	height float64

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32
}

// NewCameraSystem creates a camera for a width by height pixel viewport
func NewCameraSystem(width, height float64) *CameraSystem {
	return &CameraSystem{
		frame:       physics.IdentityFrame(physics.Vector3D{}),
		fieldOfView: DefaultFieldOfView,
		near:        DefaultNear,
		far:         DefaultFar,
		width:       width,
		height:      height,
		zoom:        1.0,
		minZoom:     0.25,
		maxZoom:     4.0,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {
	// Not used for camera system
}

// Update follows window resizes and zoom input
func (cs *CameraSystem) Update(dt float32) {
	if w, h := float64(engo.GameWidth()), float64(engo.GameHeight()); w > 0 && h > 0 {
		cs.SetViewport(w, h)
	}
	cs.handleZoomInput()
}

// handleZoomInput processes zoom-related input
func (cs *CameraSystem) handleZoomInput() {
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1.0 + scrollY*0.1))
	}
	if engo.Input.Button("resetZoom").JustPressed() {
		cs.SetZoom(1.0)
	}
}

// SetFrame places the camera
func (cs *CameraSystem) SetFrame(frame physics.Frame) {
	cs.frame = frame
}

// Frame returns the camera placement
func (cs *CameraSystem) Frame() physics.Frame {
	return cs.frame
}

// SetViewport sets the window size in pixels
func (cs *CameraSystem) SetViewport(width, height float64) {
	cs.width = width
	cs.height = height
}

// Viewport returns the window size in pixels
func (cs *CameraSystem) Viewport() (float64, float64) {
	return cs.width, cs.height
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

// clampZoom ensures zoom is within valid bounds
func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

// GetZoomLimits returns the current zoom limits
func (cs *CameraSystem) GetZoomLimits() (float32, float32) {
	return cs.minZoom, cs.maxZoom
}

// projectionMatrix is the perspective transform for the current viewport
func (cs *CameraSystem) projectionMatrix() mgl64.Mat4 {
	aspect := 1.0
	if cs.height > 0 {
		aspect = cs.width / cs.height
	}
	return mgl64.Perspective(mgl64.DegToRad(cs.fieldOfView), aspect, cs.near, cs.far)
}

// focalLength is the projected size of one world unit at unit depth, in
// half-heights
func (cs *CameraSystem) focalLength() float64 {
	return 1 / math.Tan(mgl64.DegToRad(cs.fieldOfView)/2)
}

// Project maps a sphere of the given world radius onto the window. It
// reports false when the sphere lies outside the depth range or entirely
// off screen.
func (cs *CameraSystem) Project(pos physics.Vector3D, radius float64) (Projection, bool) {
	eye := cs.frame.ViewMatrix().Mul4x1(pos.Vec3().Vec4(1))
	depth := -eye.Z()
	if depth < cs.near || depth > cs.far {
		return Projection{}, false
	}

	clip := cs.projectionMatrix().Mul4x1(eye)
	ndcX, ndcY := clip.X()/clip.W(), clip.Y()/clip.W()

	zoom := float64(cs.zoom)
	halfW, halfH := cs.width/2, cs.height/2
	x := halfW + ndcX*halfW*zoom
	y := halfH - ndcY*halfH*zoom
	r := radius * cs.focalLength() * halfH / depth * zoom

	if x+r < 0 || x-r > cs.width || y+r < 0 || y-r > cs.height {
		return Projection{}, false
	}
	return Projection{X: float32(x), Y: float32(y), Radius: float32(r), Depth: depth}, true
}

// SetupCameraControls sets up camera control key bindings
func SetupCameraControls() {
	engo.Input.RegisterButton("resetZoom", engo.KeyR)
}
