//Octree storage for point associated values. Nodes are materialized lazily on
//insertion and pruned again once a subtree holds nothing, so a per tick
//populate / query / drain cycle only ever allocates the occupied region.
package spatial

import (
	"github.com/aukilabs/go-tooling/pkg/errors"

	V "diesel.com/drape/vector"
)

const (
	//ErrTypeOutOfBounds is reported when a position lies outside the root voxel
	ErrTypeOutOfBounds = "octree_out_of_bounds"
)

type nodeID int32

const (
	rootID nodeID = 0
	noNode nodeID = -1
)

type node[T comparable] struct {
	depth    int
	box      Box
	parent   nodeID     //back reference into the arena, never owning
	children *[8]nodeID //nil until the first descending insertion
	bucket   []T        //only used at depth 0
}

//Octree buckets values of any comparable type by position. Depth 0 nodes are
//leaves and the only level holding values. All nodes live in one arena slice;
//parents and children reference each other by index.
type Octree[T comparable] struct {
	nodes []node[T]
	free  []nodeID
	count int
}

//New allocates the root voxel only. depth = n gives at most 8^n leaves.
func New[T comparable](depth int, center V.Vec32, extent V.Vec32) *Octree[T] {
	if depth < 0 {
		depth = 0
	}
	o := &Octree[T]{nodes: make([]node[T], 1, 64)}
	o.nodes[rootID] = node[T]{
		depth:  depth,
		box:    Box{Center: center, Extent: extent},
		parent: noNode,
	}
	return o
}

//Bounds returns the root voxel
func (o *Octree[T]) Bounds() Box {
	return o.nodes[rootID].box
}

//Depth of the root
func (o *Octree[T]) Depth() int {
	return o.nodes[rootID].depth
}

//Contains reports whether p lies in the closed root box
func (o *Octree[T]) Contains(p V.Vec32) bool {
	return o.nodes[rootID].box.Contains(p)
}

//Len is the number of stored values
func (o *Octree[T]) Len() int {
	return o.count
}

//Nodes is the number of materialized nodes, root included
func (o *Octree[T]) Nodes() int {
	return len(o.nodes) - len(o.free)
}

//Add stores value in the leaf owning p, building the path down to it.
func (o *Octree[T]) Add(value T, p V.Vec32) error {
	if !o.Contains(p) {
		return o.outOfBounds("add", p)
	}

	id := rootID
	for o.nodes[id].depth > 0 {
		o.initChildren(id)
		n := &o.nodes[id]
		id = n.children[n.box.octantOf(p)]
	}

	leaf := &o.nodes[id]
	leaf.bucket = append(leaf.bucket, value)
	o.count++
	return nil
}

//Remove erases every occurrence of value from the leaf owning p. When the leaf
//is left empty the ancestors are walked to the root and unused subtrees dropped.
//Removing from a region that was never materialized is a no-op.
func (o *Octree[T]) Remove(value T, p V.Vec32) error {
	if !o.Contains(p) {
		return o.outOfBounds("remove", p)
	}

	id := rootID
	for o.nodes[id].depth > 0 {
		n := &o.nodes[id]
		if n.children == nil {
			return nil
		}
		id = n.children[n.box.octantOf(p)]
	}

	leaf := &o.nodes[id]
	kept := leaf.bucket[:0]
	for _, v := range leaf.bucket {
		if v != value {
			kept = append(kept, v)
		}
	}
	var zero T
	for i := len(kept); i < len(leaf.bucket); i++ {
		leaf.bucket[i] = zero
	}
	o.count -= len(leaf.bucket) - len(kept)
	leaf.bucket = kept

	if len(kept) == 0 {
		o.prune(leaf.parent)
	}
	return nil
}

//Get returns the bucket of the voxel owning p. A node whose children were never
//built answers with its own, empty, bucket; Get never materializes nodes.
//The returned slice aliases the index and is only valid until the next Add/Remove.
func (o *Octree[T]) Get(p V.Vec32) ([]T, error) {
	if !o.Contains(p) {
		return nil, o.outOfBounds("get", p)
	}

	id := rootID
	for {
		n := &o.nodes[id]
		if n.depth == 0 || n.children == nil {
			return n.bucket, nil
		}
		id = n.children[n.box.octantOf(p)]
	}
}

//Walk visits every materialized node, parents before children. Returning false
//from fn stops the walk.
func (o *Octree[T]) Walk(fn func(box Box, depth int, bucket []T) bool) {
	stack := []nodeID{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &o.nodes[id]
		if !fn(n.box, n.depth, n.bucket) {
			return
		}
		if n.children != nil {
			for i := 7; i >= 0; i-- {
				stack = append(stack, n.children[i])
			}
		}
	}
}

//Reset drops every child and value, keeping the root voxel.
func (o *Octree[T]) Reset() {
	clear(o.nodes[1:])
	o.nodes = o.nodes[:1]
	root := &o.nodes[rootID]
	root.children = nil
	clear(root.bucket)
	root.bucket = root.bucket[:0]
	o.free = o.free[:0]
	o.count = 0
}

func (o *Octree[T]) initChildren(id nodeID) {
	if o.nodes[id].children != nil || o.nodes[id].depth == 0 {
		return
	}

	box := o.nodes[id].box
	depth := o.nodes[id].depth
	var children [8]nodeID
	for i := range children {
		children[i] = o.alloc(depth-1, box.Octant(i), id)
	}
	o.nodes[id].children = &children
}

//prune walks from id to the root. A node whose 8 children are all childless
//and empty gives its children back to the arena.
func (o *Octree[T]) prune(id nodeID) {
	for id != noNode {
		n := &o.nodes[id]
		if n.children != nil && o.unused(n.children) {
			for _, child := range n.children {
				o.release(child)
			}
			n.children = nil
		}
		id = n.parent
	}
}

func (o *Octree[T]) unused(children *[8]nodeID) bool {
	for _, child := range children {
		c := &o.nodes[child]
		if c.children != nil || len(c.bucket) > 0 {
			return false
		}
	}
	return true
}

func (o *Octree[T]) alloc(depth int, box Box, parent nodeID) nodeID {
	n := node[T]{depth: depth, box: box, parent: parent}
	if last := len(o.free) - 1; last >= 0 {
		id := o.free[last]
		o.free = o.free[:last]
		n.bucket = o.nodes[id].bucket[:0]
		o.nodes[id] = n
		return id
	}
	o.nodes = append(o.nodes, n)
	return nodeID(len(o.nodes) - 1)
}

func (o *Octree[T]) release(id nodeID) {
	o.nodes[id].children = nil
	o.nodes[id].parent = noNode
	o.free = append(o.free, id)
}

func (o *Octree[T]) outOfBounds(op string, p V.Vec32) error {
	root := o.nodes[rootID].box
	return errors.Newf("cannot %s at %s: outside octree bounds (center = %s, extent = %s)", op, p, root.Center, root.Extent).
		WithType(ErrTypeOutOfBounds).
		WithTag("op", op).
		WithTag("position", p).
		WithTag("center", root.Center).
		WithTag("extent", root.Extent)
}
