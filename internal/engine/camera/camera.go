// Package camera provides the viewer's perspective camera.
package camera

import "github.com/go-gl/mathgl/mgl32"

// Clip planes and field-of-view limits.
const (
	Near    = 0.1
	Far     = 100.0
	MinFovY = 10.0
	MaxFovY = 120.0
)

// Camera is a position plus a vertical field of view. It has no orientation:
// it always looks down -Z.
type Camera struct {
	Position mgl32.Vec3
	FovY     float32 // degrees

	// Sensitivity
	MoveSpeed float32 // units per input step
	ZoomSpeed float32 // degrees per input step
}

// New creates a camera at pos with the given field of view.
func New(pos mgl32.Vec3, fovY float32) Camera {
	return Camera{
		Position:  pos,
		FovY:      fovY,
		MoveSpeed: 0.25,
		ZoomSpeed: 2.5,
	}
}

// Projection returns the right-handed perspective projection for a
// width x height viewport. Degenerate sizes are clamped to one pixel.
func (c Camera) Projection(width, height int32) mgl32.Mat4 {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	aspect := float32(width) / float32(height)
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, Near, Far)
}

// View translates the world by -Position.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.Translate3D(-c.Position[0], -c.Position[1], -c.Position[2])
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection(width, height int32) mgl32.Mat4 {
	return c.Projection(width, height).Mul4(c.View())
}

// HandleMovement pans the camera by whole input steps along each axis.
func (c *Camera) HandleMovement(right, up, back float32) {
	c.Position = c.Position.Add(mgl32.Vec3{right, up, back}.Mul(c.MoveSpeed))
}

// HandleZoom narrows (positive delta) or widens the field of view.
func (c *Camera) HandleZoom(delta float32) {
	c.FovY = mgl32.Clamp(c.FovY-delta*c.ZoomSpeed, MinFovY, MaxFovY)
}
