package geometry

import (
	"math"

	Vec "diesel.com/drape/vector"
)

type Triangle struct {
	Verts [3]Vec.Vec32
}

func InitTriangle(a Vec.Vec32, b Vec.Vec32, c Vec.Vec32) Triangle {
	return Triangle{Verts: [3]Vec.Vec32{a, b, c}}
}

//Normal of the counter clockwise winding
func (tri *Triangle) Normal() Vec.Vec32 {
	N := Vec.Cross(Vec.Sub(tri.Verts[1], tri.Verts[0]), Vec.Sub(tri.Verts[2], tri.Verts[0]))
	return Vec.Normalize(N)
}

//GridIndices triangulates a gw x gh row major particle grid, two triangles per cell
func GridIndices(gw int, gh int) []uint32 {
	if gw < 2 || gh < 2 {
		return nil
	}

	indices := make([]uint32, 0, (gw-1)*(gh-1)*6)
	for j := 0; j < gh-1; j++ {
		for i := 0; i < gw-1; i++ {
			a := uint32(j*gw + i)
			b := a + 1
			c := a + uint32(gw)
			d := c + 1
			indices = append(indices, a, b, d, a, d, c)
		}
	}
	return indices
}

//GridNormals accumulates face normals onto the vertices of an indexed mesh
func GridNormals(pos []Vec.Vec32, indices []uint32) []Vec.Vec32 {
	normals := make([]Vec.Vec32, len(pos))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		tri := InitTriangle(pos[a], pos[b], pos[c])
		n := tri.Normal()
		normals[a].Add(n)
		normals[b].Add(n)
		normals[c].Add(n)
	}
	for i := range normals {
		normals[i] = Vec.Normalize(normals[i])
	}
	return normals
}

//BoxLines returns the 12 edges of an axis aligned box as 24 line endpoints
func BoxLines(center Vec.Vec32, extent Vec.Vec32) []Vec.Vec32 {
	x := center[0]
	y := center[1]
	z := center[2]

	p := extent[0] / 2
	q := extent[1] / 2
	s := extent[2] / 2

	corners := [8]Vec.Vec32{
		{x - p, y - q, z - s}, //LBB
		{x + p, y - q, z - s}, //RBB
		{x - p, y + q, z - s}, //LBT
		{x + p, y + q, z - s}, //RBT
		{x - p, y - q, z + s}, //LFB
		{x + p, y - q, z + s}, //RFB
		{x - p, y + q, z + s}, //LFT
		{x + p, y + q, z + s}, //RFT
	}

	//Corners differing in exactly one bit share an edge
	lines := make([]Vec.Vec32, 0, 24)
	for a := 0; a < 8; a++ {
		for bit := 1; bit < 8; bit <<= 1 {
			if b := a | bit; b != a {
				lines = append(lines, corners[a], corners[b])
			}
		}
	}
	return lines
}

//SphereLines approximates a sphere by three great circles as line endpoints
func (s *Sphere) SphereLines(segments int) []Vec.Vec32 {
	if segments < 3 {
		segments = 3
	}

	lines := make([]Vec.Vec32, 0, segments*6)
	point := func(plane int, a float64) Vec.Vec32 {
		u := float32(math.Cos(a)) * s.Radius
		v := float32(math.Sin(a)) * s.Radius
		p := s.Center
		switch plane {
		case 0:
			p[0] += u
			p[1] += v
		case 1:
			p[1] += u
			p[2] += v
		default:
			p[0] += u
			p[2] += v
		}
		return p
	}

	step := 2 * math.Pi / float64(segments)
	for plane := 0; plane < 3; plane++ {
		for i := 0; i < segments; i++ {
			lines = append(lines, point(plane, float64(i)*step), point(plane, float64(i+1)*step))
		}
	}
	return lines
}
