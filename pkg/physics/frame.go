// pkg/physics/frame.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrthonormalTolerance is the slack allowed when checking frame axes
const OrthonormalTolerance = 1e-6

// Frame is a position plus an orthonormal orientation.
// Local +X maps to Forward, +Y to Up and +Z to Right.
type Frame struct {
	Position Vector3D
	Forward  Vector3D
	Up       Vector3D
}

// NewFrame creates a frame, orthonormalizing the supplied axes.
// A degenerate pair (zero or parallel) falls back to the world axes.
func NewFrame(position, forward, up Vector3D) Frame {
	f := Frame{Position: position, Forward: forward, Up: up}
	f.orthonormalize()
	return f
}

// IdentityFrame returns a frame at position facing +X with +Y up
func IdentityFrame(position Vector3D) Frame {
	return Frame{Position: position, Forward: UnitX, Up: UnitY}
}

// Right returns the right-hand axis of the frame
func (f Frame) Right() Vector3D {
	return f.Forward.Cross(f.Up)
}

// Translate moves the frame by offset
func (f *Frame) Translate(offset Vector3D) {
	f.Position = f.Position.Add(offset)
}

// RotateAroundForward rolls the frame
func (f *Frame) RotateAroundForward(radians float64) {
	f.RotateAroundAxis(f.Forward, radians)
}

// RotateAroundUp yaws the frame
func (f *Frame) RotateAroundUp(radians float64) {
	f.RotateAroundAxis(f.Up, radians)
}

// RotateAroundRight pitches the frame
func (f *Frame) RotateAroundRight(radians float64) {
	f.RotateAroundAxis(f.Right(), radians)
}

// RotateAroundAxis rotates the orientation around an arbitrary world axis.
// The position is not changed. A zero axis leaves the frame untouched.
func (f *Frame) RotateAroundAxis(axis Vector3D, radians float64) {
	if radians == 0 || axis.IsZero() {
		return
	}
	q := mgl64.QuatRotate(radians, axis.Normalize().Vec3())
	f.Forward = FromVec3(q.Rotate(f.Forward.Vec3()))
	f.Up = FromVec3(q.Rotate(f.Up.Vec3()))
	f.orthonormalize()
}

// IsOrthonormal reports whether the axes are unit length and mutually orthogonal
func (f Frame) IsOrthonormal(tolerance float64) bool {
	if !f.Forward.IsUnit(tolerance) || !f.Up.IsUnit(tolerance) {
		return false
	}
	return math.Abs(f.Forward.Dot(f.Up)) < tolerance
}

// Matrix returns the model transform for drawing an object in this frame
func (f Frame) Matrix() mgl64.Mat4 {
	fw, up, right, p := f.Forward, f.Up, f.Right(), f.Position
	return mgl64.Mat4{
		fw.X, fw.Y, fw.Z, 0,
		up.X, up.Y, up.Z, 0,
		right.X, right.Y, right.Z, 0,
		p.X, p.Y, p.Z, 1,
	}
}

// ViewMatrix returns the camera transform looking along Forward
func (f Frame) ViewMatrix() mgl64.Mat4 {
	eye := f.Position.Vec3()
	return mgl64.LookAtV(eye, eye.Add(f.Forward.Vec3()), f.Up.Vec3())
}

// orthonormalize re-derives Up from Forward so rounding never accumulates
func (f *Frame) orthonormalize() {
	f.Forward = f.Forward.Normalize()
	if f.Forward.IsZero() {
		f.Forward = UnitX
	}
	right := f.Forward.Cross(f.Up).Normalize()
	if right.IsZero() {
		// Up was zero or parallel to Forward; pick any perpendicular
		right = f.Forward.Cross(UnitY).Normalize()
		if right.IsZero() {
			right = f.Forward.Cross(UnitZ).Normalize()
		}
	}
	f.Up = right.Cross(f.Forward).Normalize()
}
