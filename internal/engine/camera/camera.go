// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-vr/pkg/math"
)

// FreeCamera is a camera with a free position and quaternion orientation.
// It looks down its local -Z axis with +Y up.
type FreeCamera struct {
	position    math.Vec3
	orientation math.Quat

	// Projection
	FovY float32 // Vertical field of view (radians)
	Near float32
	Far  float32
}

// NewFreeCamera creates a camera at position looking down -Z.
func NewFreeCamera(position math.Vec3) *FreeCamera {
	return &FreeCamera{
		position:    position,
		orientation: math.QuatIdentity(),
		FovY:        float32(gomath.Pi / 3), // 60 degrees
		Near:        0.1,
		Far:         1000.0,
	}
}

// Position returns the camera position in world space.
func (c *FreeCamera) Position() math.Vec3 {
	return c.position
}

// SetPosition moves the camera.
func (c *FreeCamera) SetPosition(p math.Vec3) {
	c.position = p
}

// Orientation returns the camera orientation.
func (c *FreeCamera) Orientation() math.Quat {
	return c.orientation
}

// SetOrientation sets the camera orientation.
func (c *FreeCamera) SetOrientation(q math.Quat) {
	c.orientation = q
}

// ViewMatrix returns the view matrix for this camera.
func (c *FreeCamera) ViewMatrix() math.Mat4 {
	return math.ViewFromPose(c.position, c.orientation)
}

// ProjectionMatrix returns the perspective projection for the given viewport.
func (c *FreeCamera) ProjectionMatrix(width, height int) math.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *FreeCamera) ViewProjection(width, height int) math.Mat4 {
	return c.ProjectionMatrix(width, height).Mul(c.ViewMatrix())
}
