package utils

import (
	"github.com/aukilabs/go-tooling/pkg/errors"

	V "diesel.com/drape/vector"
)

//Application specific positional data transfer. Vec32 slices are flattened
//into float32 streams laid out the way the GL vertex buffers expect them.

//FlattenPositions writes x, y, z of every position into dst, growing it if needed
func FlattenPositions(dst []float32, pos []V.Vec32) []float32 {
	dst = grow(dst, len(pos)*3)
	for i, p := range pos {
		copy(dst[i*3:], p[:])
	}
	return dst
}

//Interleave writes position / normal pairs as 6 floats per vertex
func Interleave(dst []float32, pos []V.Vec32, normals []V.Vec32) ([]float32, error) {
	if len(pos) != len(normals) {
		return dst, errors.Newf("position and normal count mismatch: %d != %d", len(pos), len(normals))
	}

	dst = grow(dst, len(pos)*6)
	for i := range pos {
		copy(dst[i*6:], pos[i][:])
		copy(dst[i*6+3:], normals[i][:])
	}
	return dst, nil
}

//Scales Position List Points Around an Origin
func ScalePositions(pos []V.Vec32, origin V.Vec32, scale float32) {
	for i := range pos {
		v := pos[i]
		v.Sub(origin)
		v.Scale(scale)
		v.Add(origin)
		pos[i] = v
	}
}

func grow(dst []float32, n int) []float32 {
	if cap(dst) < n {
		return make([]float32, n)
	}
	return dst[:n]
}
