package app

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	V "diesel.com/drape/vector"
)

//Trackball camera orbiting Target. Angles in radians
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	Left     float32 //rotation around the y axis
	Up       float32 //rotation around the x axis
	Fovy     float32 //degrees
}

const (
	zoomStep    = 0.4
	minDistance = 1
	maxDistance = 200
	maxUp       = math.Pi/2 - 0.01
)

func NewCamera(target V.Vec32, distance float32) *Camera {
	return &Camera{
		Target:   mgl32.Vec3(target),
		Distance: mgl32.Clamp(distance, minDistance, maxDistance),
		Fovy:     70,
	}
}

//Rotate by a cursor delta in pixels, one degree per pixel
func (c *Camera) Rotate(dx float64, dy float64) {
	c.Left += mgl32.DegToRad(float32(dx))
	c.Up = mgl32.Clamp(c.Up+mgl32.DegToRad(float32(dy)), -maxUp, maxUp)
}

//Zoom moves toward the target for positive scroll offsets
func (c *Camera) Zoom(offset float64) {
	c.Distance = mgl32.Clamp(c.Distance-float32(offset)*zoomStep, minDistance, maxDistance)
}

//Eye position in world space
func (c *Camera) Eye() mgl32.Vec3 {
	su, cu := math.Sincos(float64(c.Up))
	sl, cl := math.Sincos(float64(c.Left))
	dir := mgl32.Vec3{-float32(cu * sl), float32(su), float32(cu * cl)}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

//Projection for a framebuffer of width x height pixels
func (c *Camera) Projection(width int, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fovy), aspect, 0.1, 2*maxDistance)
}
