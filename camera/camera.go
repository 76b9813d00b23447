// Package camera provides the 3D viewer camera used for smoke visibility culling.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Up is the world up axis; height is measured along Z.
var Up = mgl32.Vec3{0, 0, 1}

type plane struct {
	a, b, c, d float32
}

// Camera is a perspective camera looking from Position toward Target.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3

	// Vertical field of view in degrees
	FOV       float32
	Aspect    float32
	Near, Far float32

	planes [6]plane
	dirty  bool
}

// New creates a camera and computes its frustum.
func New(position, target mgl32.Vec3, fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Position: position,
		Target:   target,
		FOV:      fov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
		dirty:    true,
	}
	c.update()
	return c
}

// MoveTo places the camera at position looking at target.
func (c *Camera) MoveTo(position, target mgl32.Vec3) {
	c.Position = position
	c.Target = target
	c.dirty = true
}

// Resize updates the aspect ratio from viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportH <= 0 {
		return
	}
	c.Aspect = viewportW / viewportH
	c.dirty = true
}

// Orbit rotates the camera position around the target by angle radians about the up axis.
func (c *Camera) Orbit(angle float32) {
	offset := c.Position.Sub(c.Target)
	rot := mgl32.HomogRotate3DZ(angle)
	c.Position = c.Target.Add(mgl32.TransformCoordinate(offset, rot))
	c.dirty = true
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, Up)
}

// Projection returns the projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// SphereVisible reports whether a sphere intersects the view frustum.
// Conservative: spheres near frustum corners may report visible.
func (c *Camera) SphereVisible(center mgl32.Vec3, radius float32) bool {
	if c.dirty {
		c.update()
	}
	for _, p := range c.planes {
		if p.a*center.X()+p.b*center.Y()+p.c*center.Z()+p.d < -radius {
			return false
		}
	}
	return true
}

// update rebuilds the frustum planes from projection*view.
// Planes are stored in order: left, right, bottom, top, near, far.
func (c *Camera) update() {
	clip := c.Projection().Mul4(c.View())

	// Matrix is in column-major order in mgl32
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	c.planes[0] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	c.planes[1] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	c.planes[2] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	c.planes[3] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	c.planes[4] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	c.planes[5] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	c.dirty = false
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}
