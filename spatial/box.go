package spatial

import (
	V "diesel.com/drape/vector"
)

//Box is an axis aligned voxel: Center +/- Extent/2 on every axis.
//Extent is the full size of the box, not the half size.
type Box struct {
	Center V.Vec32
	Extent V.Vec32
}

func (b Box) Min() V.Vec32 {
	return V.Sub(b.Center, V.Scale(b.Extent, 0.5))
}

func (b Box) Max() V.Vec32 {
	return V.Add(b.Center, V.Scale(b.Extent, 0.5))
}

//Contains tests the closed box, so points on a face are inside. NaN is never inside.
func (b Box) Contains(p V.Vec32) bool {
	for i := 0; i < 3; i++ {
		half := b.Extent[i] / 2
		if !(p[i] <= b.Center[i]+half && p[i] >= b.Center[i]-half) {
			return false
		}
	}
	return true
}

//Octant returns child box i. Bit 0 selects the high x half, bit 1 high y, bit 2 high z.
func (b Box) Octant(i int) Box {
	offset := V.Scale(b.Extent, 0.25)
	center := b.Center
	for axis := 0; axis < 3; axis++ {
		if i&(1<<axis) != 0 {
			center[axis] += offset[axis]
		} else {
			center[axis] -= offset[axis]
		}
	}
	return Box{Center: center, Extent: V.Scale(b.Extent, 0.5)}
}

//octantOf picks the single child owning p. A point on a splitting plane
//belongs to the high side, so every point has exactly one owner.
func (b Box) octantOf(p V.Vec32) int {
	oct := 0
	for axis := 0; axis < 3; axis++ {
		if p[axis] >= b.Center[axis] {
			oct |= 1 << axis
		}
	}
	return oct
}
