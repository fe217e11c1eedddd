package spatial

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"

	V "diesel.com/drape/vector"
)

func TestBoxContains(t *testing.T) {
	box := Box{Center: V.Vec32{0, 0, 0}, Extent: V.Vec32{4, 4, 4}}

	require.True(t, box.Contains(V.Vec32{0, 0, 0}))
	require.True(t, box.Contains(V.Vec32{2, 2, 2}))
	require.True(t, box.Contains(V.Vec32{-2, -2, -2}))
	require.False(t, box.Contains(V.Vec32{2.001, 0, 0}))
	require.False(t, box.Contains(V.Vec32{0, -2.5, 0}))
	require.False(t, box.Contains(V.Vec32{float32(math.NaN()), 0, 0}))
	require.Equal(t, V.Vec32{-2, -2, -2}, box.Min())
	require.Equal(t, V.Vec32{2, 2, 2}, box.Max())
}

func TestBoxOctants(t *testing.T) {
	box := Box{Center: V.Vec32{1, -1, 0}, Extent: V.Vec32{4, 8, 2}}

	for i := 0; i < 8; i++ {
		child := box.Octant(i)
		require.Equal(t, V.Vec32{2, 4, 1}, child.Extent)
		require.True(t, box.Contains(child.Center))
		require.Equal(t, i, box.octantOf(child.Center))
	}

	require.Equal(t, V.Vec32{0, -3, -0.5}, box.Octant(0).Center)
	require.Equal(t, V.Vec32{2, 1, 0.5}, box.Octant(7).Center)
}

func TestOctreeGetOnEmptyIndex(t *testing.T) {
	o := New[int](7, V.Vec32{0, -10, 0}, V.Vec32{50, 50, 50})

	bucket, err := o.Get(V.Vec32{1, 1, 1})
	require.NoError(t, err)
	require.Empty(t, bucket)
	require.Equal(t, 1, o.Nodes())
	require.Equal(t, 0, o.Len())
}

func TestOctreeOutOfBounds(t *testing.T) {
	o := New[int](2, V.Vec32{}, V.Vec32{4, 4, 4})
	outside := V.Vec32{0, 10, 0}

	err := o.Add(1, outside)
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeOutOfBounds))

	err = o.Remove(1, outside)
	require.Error(t, err)
	require.Equal(t, ErrTypeOutOfBounds, errors.Type(err))

	_, err = o.Get(outside)
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeOutOfBounds))

	require.Equal(t, 0, o.Len())
	require.Equal(t, 1, o.Nodes())
}

func TestOctreeAddGetRemove(t *testing.T) {
	o := New[string](2, V.Vec32{}, V.Vec32{4, 4, 4})
	p := V.Vec32{0.5, 0.5, 0.5}

	require.NoError(t, o.Add("a", p))
	require.NoError(t, o.Add("b", p))
	require.Equal(t, 1+8+8, o.Nodes())

	bucket, err := o.Get(p)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, bucket)

	require.NoError(t, o.Remove("a", p))
	require.Equal(t, 1, o.Len())
	bucket, err = o.Get(p)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, bucket)

	require.NoError(t, o.Remove("b", p))
	require.Equal(t, 0, o.Len())
	require.Equal(t, 1, o.Nodes())

	bucket, err = o.Get(p)
	require.NoError(t, err)
	require.Empty(t, bucket)
}

func TestOctreeRemoveErasesAllOccurrences(t *testing.T) {
	o := New[int](3, V.Vec32{}, V.Vec32{8, 8, 8})
	p := V.Vec32{-1, 2, 3}

	require.NoError(t, o.Add(7, p))
	require.NoError(t, o.Add(7, p))
	require.NoError(t, o.Add(8, p))
	require.NoError(t, o.Remove(7, p))

	bucket, err := o.Get(p)
	require.NoError(t, err)
	require.Equal(t, []int{8}, bucket)
	require.Equal(t, 1, o.Len())
}

func TestOctreeRemoveUnmaterialized(t *testing.T) {
	o := New[int](4, V.Vec32{}, V.Vec32{8, 8, 8})

	require.NoError(t, o.Remove(1, V.Vec32{1, 1, 1}))
	require.Equal(t, 1, o.Nodes())

	require.NoError(t, o.Add(1, V.Vec32{-3, -3, -3}))
	nodes := o.Nodes()
	require.NoError(t, o.Remove(1, V.Vec32{3, 3, 3}))
	require.Equal(t, nodes, o.Nodes())
	require.Equal(t, 1, o.Len())
}

func TestOctreePruneKeepsOccupiedSiblings(t *testing.T) {
	o := New[int](2, V.Vec32{}, V.Vec32{4, 4, 4})
	a := V.Vec32{0.5, 0.5, 0.5}
	b := V.Vec32{1.5, 1.5, 1.5}

	require.NoError(t, o.Add(1, a))
	require.NoError(t, o.Add(2, b))
	require.NoError(t, o.Remove(1, a))

	bucket, err := o.Get(b)
	require.NoError(t, err)
	require.Equal(t, []int{2}, bucket)
	require.Equal(t, 1+8+8, o.Nodes())

	require.NoError(t, o.Remove(2, b))
	require.Equal(t, 1, o.Nodes())
}

func TestOctreeSplittingPlaneOwnership(t *testing.T) {
	o := New[int](3, V.Vec32{}, V.Vec32{8, 8, 8})
	points := []V.Vec32{
		{0, 0, 0},
		{2, 0, -2},
		{4, 4, 4},
		{-4, -4, -4},
		{1, -2, 3},
	}

	for i, p := range points {
		require.NoError(t, o.Add(i, p))
		bucket, err := o.Get(p)
		require.NoError(t, err)
		require.Contains(t, bucket, i)
	}
	for i, p := range points {
		require.NoError(t, o.Remove(i, p))
	}
	require.Equal(t, 0, o.Len())
	require.Equal(t, 1, o.Nodes())
}

func TestOctreeDepthZero(t *testing.T) {
	o := New[int](0, V.Vec32{}, V.Vec32{2, 2, 2})

	require.NoError(t, o.Add(1, V.Vec32{0.5, 0, 0}))
	require.NoError(t, o.Add(2, V.Vec32{-0.5, 0, 0}))
	require.Equal(t, 1, o.Nodes())

	bucket, err := o.Get(V.Vec32{0.9, 0.9, 0.9})
	require.NoError(t, err)
	require.ElementsMatch(t, []int{1, 2}, bucket)
}

func TestOctreePairedInsertRemove(t *testing.T) {
	rnd := rand.New(rand.NewSource(295275912632))
	o := New[V.Vec32](5, V.Vec32{0, -10, 0}, V.Vec32{50, 50, 50})

	random := func() V.Vec32 {
		return V.Vec32{
			rnd.Float32()*50 - 25,
			rnd.Float32()*50 - 35,
			rnd.Float32()*50 - 25,
		}
	}

	resident := make([]V.Vec32, 40)
	for i := range resident {
		resident[i] = random()
		require.NoError(t, o.Add(resident[i], resident[i]))
	}
	before := snapshot(o)
	nodes := o.Nodes()

	for round := 0; round < 5; round++ {
		batch := make([]V.Vec32, 200)
		for i := range batch {
			batch[i] = random()
			require.NoError(t, o.Add(batch[i], batch[i]))
		}
		require.Equal(t, len(resident)+len(batch), o.Len())

		for _, p := range batch {
			require.NoError(t, o.Remove(p, p))
		}
		require.Equal(t, len(resident), o.Len())
		require.Equal(t, nodes, o.Nodes())
		require.Equal(t, before, snapshot(o))
	}

	for _, p := range resident {
		bucket, err := o.Get(p)
		require.NoError(t, err)
		require.Contains(t, bucket, p)
	}
}

func TestOctreeWalk(t *testing.T) {
	o := New[int](2, V.Vec32{}, V.Vec32{4, 4, 4})
	require.NoError(t, o.Add(1, V.Vec32{1, 1, 1}))

	visited := 0
	leaves := 0
	o.Walk(func(box Box, depth int, bucket []int) bool {
		visited++
		if depth == 0 && len(bucket) > 0 {
			leaves++
			require.True(t, box.Contains(V.Vec32{1, 1, 1}))
		}
		return true
	})
	require.Equal(t, o.Nodes(), visited)
	require.Equal(t, 1, leaves)

	visited = 0
	o.Walk(func(Box, int, []int) bool {
		visited++
		return false
	})
	require.Equal(t, 1, visited)
}

func TestOctreeReset(t *testing.T) {
	o := New[int](3, V.Vec32{}, V.Vec32{8, 8, 8})
	for i := 0; i < 9; i++ {
		require.NoError(t, o.Add(i, V.Vec32{float32(i) - 4, 0, 0}))
	}
	require.Equal(t, 9, o.Len())
	require.Greater(t, o.Nodes(), 1)

	o.Reset()
	require.Equal(t, 0, o.Len())
	require.Equal(t, 1, o.Nodes())
	require.Equal(t, Box{Extent: V.Vec32{8, 8, 8}}, o.Bounds())

	require.NoError(t, o.Add(42, V.Vec32{1, 1, 1}))
	bucket, err := o.Get(V.Vec32{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, []int{42}, bucket)
}

func snapshot(o *Octree[V.Vec32]) []string {
	var s []string
	o.Walk(func(box Box, depth int, bucket []V.Vec32) bool {
		s = append(s, fmt.Sprintf("%d %s %s %d", depth, box.Center, box.Extent, len(bucket)))
		return true
	})
	return s
}

func BenchmarkOctreeTick(b *testing.B) {
	rnd := rand.New(rand.NewSource(295275912632))
	o := New[V.Vec32](7, V.Vec32{0, -10, 0}, V.Vec32{50, 50, 50})

	points := make([]V.Vec32, 70*30)
	for i := range points {
		points[i] = V.Vec32{rnd.Float32()*8 - 4, rnd.Float32() * -3, rnd.Float32() - 0.5}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range points {
			o.Add(p, p)
		}
		for _, p := range points {
			o.Get(p)
		}
		for _, p := range points {
			o.Remove(p, p)
		}
	}
}
