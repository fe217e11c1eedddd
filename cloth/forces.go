package cloth

import (
	"math/rand"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"diesel.com/drape/geometry"
	"diesel.com/drape/spatial"
	V "diesel.com/drape/vector"
)

const (
	//ErrTypeEmptyBucket - a particle queried a voxel that does not hold its own position
	ErrTypeEmptyBucket = "cloth_empty_bucket"

	//Floor on spring length, avoids dividing by a collapsed spring
	springEpsilon = 1e-4
)

//HookForce - elastic force on P1 from a spring of stiffness K and rest length L to P2
func HookForce(K float32, L float32, P1 V.Vec32, P2 V.Vec32) V.Vec32 {
	d := V.Sub(P2, P1)
	dist := d.Length()
	if dist < springEpsilon {
		dist = springEpsilon
	}
	return V.Scale(d, K*(1-L/dist))
}

//BrakeForce - damping of the relative velocity between two particles over dt
func BrakeForce(v float32, dt float32, v1 V.Vec32, v2 V.Vec32) V.Vec32 {
	return V.Scale(V.Sub(v2, v1), v/dt)
}

//RepulseForce pushes pos away from a distinct neighbour closer than maxDst.
//Falloff is 1/(1+dst^2)
func RepulseForce(pos V.Vec32, other V.Vec32, maxDst float32, multiplier float32) (V.Vec32, bool) {
	if other == pos {
		return V.Vec32{}, false
	}
	dir := V.Sub(pos, other)
	dst := dir.Length()
	if dst >= maxDst {
		return V.Vec32{}, false
	}
	return V.Scale(V.Normalize(dir), multiplier/(1+dst*dst)), true
}

//applyExternal adds gravity and a random wind gust to every free particle
func (c *Cloth) applyExternal(gravity V.Vec32, wind float32, rnd *rand.Rand) {
	for k := 0; k < c.Count; k++ {
		if c.Fixed(k) {
			continue
		}
		c.Forces[k].Add(gravity)
		c.Forces[k].Add(V.Scale(V.RandomUnit(rnd), wind))
	}
}

//applySprings accumulates structural, shear and bend springs plus damping.
//Neighbours outside the grid are skipped
func (c *Cloth) applySprings(springs Springs, dt float32) {
	gw := c.Grid.GridWidth
	gh := c.Grid.GridHeight

	for j := 0; j < gh; j++ {
		for i := 0; i < gw; i++ {
			k := c.Index(i, j)
			if c.Fixed(k) {
				continue
			}

			pos := c.Positions[k]
			vel := c.Velocities[k]
			for _, l := range c.links {
				ni := i + l.di
				nj := j + l.dj
				if ni < 0 || ni >= gw || nj < 0 || nj >= gh {
					continue
				}

				n := c.Index(ni, nj)
				K, D := springs.Tier(l.tier)
				c.Forces[k].Add(HookForce(K, l.rest, pos, c.Positions[n]))
				c.Forces[k].Add(BrakeForce(D, dt, vel, c.Velocities[n]))
			}
		}
	}
}

//applyRepulsion queries the voxel of every free particle and pushes it away
//from close neighbours sharing the voxel. The index must hold every position.
func (c *Cloth) applyRepulsion(index *spatial.Octree[V.Vec32], maxDst float32, multiplier float32) (int, error) {
	contacts := 0
	for k := 0; k < c.Count; k++ {
		if c.Fixed(k) {
			continue
		}

		pos := c.Positions[k]
		bucket, err := index.Get(pos)
		if err != nil {
			return contacts, err
		}
		if len(bucket) == 0 {
			return contacts, errors.New("particle voxel is empty").
				WithType(ErrTypeEmptyBucket).
				WithTag("particle", k).
				WithTag("position", pos)
		}

		for _, other := range bucket {
			if f, ok := RepulseForce(pos, other, maxDst, multiplier); ok {
				c.Forces[k].Add(f)
				contacts++
			}
		}
	}
	return contacts, nil
}

//applySpheres adds the collider response to every free particle
func (c *Cloth) applySpheres(colliders *geometry.ColliderSet) int {
	contacts := 0
	for k := 0; k < c.Count; k++ {
		if c.Fixed(k) {
			continue
		}
		f, n := colliders.Force(c.Positions[k])
		if n > 0 {
			c.Forces[k].Add(f)
			contacts += n
		}
	}
	return contacts
}

//integrate - semi implicit Euler over every particle, pinned ones included.
//Clears all forces
func (c *Cloth) integrate(dt float32) {
	for k := 0; k < c.Count; k++ {
		c.Velocities[k].AddScaled(c.Forces[k], dt/c.Masses[k])
		c.Positions[k].AddScaled(c.Velocities[k], dt)
		c.Forces[k].Clear()
	}
}
