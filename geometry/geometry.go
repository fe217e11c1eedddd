package geometry

import (
	Vec "diesel.com/drape/vector"
)

const (
	EPSILON = 0.00001
)

//drape geometry library - sphere colliders acting on cloth particles plus the
//mesh topology and line primitives the viewer streams to the GPU.
//Colliders run in world coordinates so no modelview / projection transforms

//Sphere collider. Target is where Center is easing toward between steps
type Sphere struct {
	Center Vec.Vec32
	Target Vec.Vec32
	Radius float32
}

//ColliderSet immutable during a step. RadiusDelta widens every sphere's contact shell
type ColliderSet struct {
	Spheres     []Sphere
	RadiusDelta float32
	Multiplier  float32
}

func NewSphere(center Vec.Vec32, radius float32) Sphere {
	return Sphere{Center: center, Target: center, Radius: radius}
}

//Force pushes p away from the sphere center with 1/(1+dist^2) falloff once p is
//within Radius+delta. Reports whether a contact happened.
func (s *Sphere) Force(p Vec.Vec32, delta float32, multiplier float32) (Vec.Vec32, bool) {
	dir := Vec.Sub(p, s.Center)
	dist := Vec.Length(dir)
	if dist >= s.Radius+delta {
		return Vec.Vec32{}, false
	}

	return Vec.Scale(Vec.Normalize(dir), multiplier/(1+dist*dist)), true
}

//Ease moves Center toward Target by factor (0 stays, 1 snaps)
func (s *Sphere) Ease(factor float32) {
	s.Center = Vec.Mix(s.Center, s.Target, factor)
}

//Force sums every sphere's contribution on p. contacts counts spheres touching p
func (c *ColliderSet) Force(p Vec.Vec32) (force Vec.Vec32, contacts int) {
	for i := range c.Spheres {
		f, hit := c.Spheres[i].Force(p, c.RadiusDelta, c.Multiplier)
		if hit {
			force.Add(f)
			contacts++
		}
	}
	return force, contacts
}

func (c *ColliderSet) Ease(factor float32) {
	for i := range c.Spheres {
		c.Spheres[i].Ease(factor)
	}
}

//Clone deep copies the sphere slice so renderers can hold a snapshot
func (c ColliderSet) Clone() ColliderSet {
	spheres := make([]Sphere, len(c.Spheres))
	copy(spheres, c.Spheres)
	c.Spheres = spheres
	return c
}
