// Package octree implements the hybrid spatial tree: an axis-aligned octree
// whose leaves each hold a small BSP tree over the polygons in that region.
//
// Nodes are stored in a slice and address their children by index. A node is
// either subdivided into exactly eight children or it is a leaf that may own
// a mini-BSP. Dynamic polygons hang off nodes separately and never change the
// static partition.
package octree

import (
	"octbsp/internal/bsp"
	"octbsp/internal/core"
	"octbsp/internal/polygon"
)

// NodeID indexes a node in the octree arena
type NodeID int32

// NoNode marks a missing node or an empty octree
const NoNode NodeID = -1

const (
	// DefaultBSPNum is the polygon count at or below which a region stops
	// subdividing and becomes a mini-BSP leaf.
	DefaultBSPNum = 20
	// DefaultMaxDepth caps subdivision regardless of polygon count
	DefaultMaxDepth = 10
)

type node struct {
	bounds core.AABB3D
	center core.Vector3D
	depth  int
	parent NodeID

	leaf     bool
	children [8]NodeID
	minibsp  *bsp.Tree

	// polygons that reached this region during the build, before splits
	// inside the mini-BSP
	count int

	dynamic []polygon.Polygon
	extent  core.AABB3D
}

// Octree is a coarse octree over fine mini-BSP leaves
type Octree struct {
	nodes []node
	root  NodeID

	bounds   core.AABB3D
	bspNum   int
	maxDepth int
	mode     bsp.Mode
	bspOpts  []bsp.Option

	splits  int
	dynamic int

	// choices records the splitter decisions of every mini-BSP in leaf
	// creation order; replay feeds them back during LoadCache.
	choices [][]int32
	replay  [][]int32
}

// Option configures an Octree
type Option func(*Octree)

// WithMaxDepth caps the subdivision depth
func WithMaxDepth(depth int) Option {
	return func(o *Octree) {
		o.maxDepth = depth
	}
}

// WithBSPOptions passes options to every mini-BSP built at the leaves
func WithBSPOptions(opts ...bsp.Option) Option {
	return func(o *Octree) {
		o.bspOpts = append(o.bspOpts, opts...)
	}
}

// New creates an empty octree covering bounds. Regions holding bspNum
// polygons or fewer become mini-BSP leaves built with mode. An empty or zero
// bounds box is replaced by the bounds of the polygons passed to Build.
func New(bounds core.AABB3D, bspNum int, mode bsp.Mode, opts ...Option) *Octree {
	if bounds == (core.AABB3D{}) {
		bounds = core.EmptyAABB3D()
	}
	o := &Octree{
		root:     NoNode,
		bounds:   bounds,
		bspNum:   bspNum,
		maxDepth: DefaultMaxDepth,
		mode:     mode,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.bspNum < 1 {
		o.bspNum = 1
	}
	if o.maxDepth < 0 {
		o.maxDepth = 0
	}
	return o
}

// Bounds is the box covered by the root node
func (o *Octree) Bounds() core.AABB3D {
	return o.bounds
}

// BSPNum is the leaf polygon threshold
func (o *Octree) BSPNum() int {
	return o.bspNum
}

// MaxDepth is the subdivision depth limit
func (o *Octree) MaxDepth() int {
	return o.maxDepth
}

// Mode is the splitter mode used by the mini-BSPs
func (o *Octree) Mode() bsp.Mode {
	return o.mode
}

// Root returns the root node, or NoNode before Build
func (o *Octree) Root() NodeID {
	return o.root
}

// IsEmpty reports whether the octree has no nodes
func (o *Octree) IsEmpty() bool {
	return o.root == NoNode
}

// NodeCount is the number of nodes in the arena
func (o *Octree) NodeCount() int {
	return len(o.nodes)
}

func (o *Octree) valid(id NodeID) bool {
	ok := id >= 0 && int(id) < len(o.nodes)
	core.Assert(ok, "octree node id out of range")
	return ok
}

// NodeBounds returns the octant box of a node
func (o *Octree) NodeBounds(id NodeID) core.AABB3D {
	if !o.valid(id) {
		return core.EmptyAABB3D()
	}
	return o.nodes[id].bounds
}

// Extent is the node box grown by any dynamic polygons stored at the node
// that stick out of it.
func (o *Octree) Extent(id NodeID) core.AABB3D {
	if !o.valid(id) {
		return core.EmptyAABB3D()
	}
	return o.nodes[id].extent
}

// Center returns the midpoint of a node's box
func (o *Octree) Center(id NodeID) core.Vector3D {
	if !o.valid(id) {
		return core.Vector3D{}
	}
	return o.nodes[id].center
}

// Depth returns the depth of a node; the root has depth 0
func (o *Octree) Depth(id NodeID) int {
	if !o.valid(id) {
		return -1
	}
	return o.nodes[id].depth
}

// Parent returns the parent of a node, NoNode for the root
func (o *Octree) Parent(id NodeID) NodeID {
	if !o.valid(id) {
		return NoNode
	}
	return o.nodes[id].parent
}

// IsLeaf reports whether a node has no children
func (o *Octree) IsLeaf(id NodeID) bool {
	if !o.valid(id) {
		return false
	}
	return o.nodes[id].leaf
}

// Children returns the eight children of a node indexed by octant. Leaves
// return NoNode in every slot.
func (o *Octree) Children(id NodeID) [8]NodeID {
	none := [8]NodeID{NoNode, NoNode, NoNode, NoNode, NoNode, NoNode, NoNode, NoNode}
	if !o.valid(id) || o.nodes[id].leaf {
		return none
	}
	return o.nodes[id].children
}

// MiniBSP returns the tree stored at a leaf, nil for interior nodes and empty
// leaves.
func (o *Octree) MiniBSP(id NodeID) *bsp.Tree {
	if !o.valid(id) {
		return nil
	}
	return o.nodes[id].minibsp
}

// RegionCount is the number of polygons that reached a node during the build
func (o *Octree) RegionCount(id NodeID) int {
	if !o.valid(id) {
		return 0
	}
	return o.nodes[id].count
}

// DynamicPolygons returns the dynamic polygons attached to a node
func (o *Octree) DynamicPolygons(id NodeID) []polygon.Polygon {
	if !o.valid(id) {
		return nil
	}
	return o.nodes[id].dynamic
}

// Polygons returns every polygon the octree holds: mini-BSP contents,
// fragments included, followed by the dynamic polygons.
func (o *Octree) Polygons() []polygon.Polygon {
	var out, dyn []polygon.Polygon
	for i := range o.nodes {
		n := &o.nodes[i]
		if n.minibsp != nil {
			out = append(out, n.minibsp.Polygons()...)
		}
		dyn = append(dyn, n.dynamic...)
	}
	return append(out, dyn...)
}

// LeafAt returns the leaf whose box contains pos, or NoNode when pos lies
// outside the octree.
func (o *Octree) LeafAt(pos core.Vector3D) NodeID {
	if o.root == NoNode || !o.nodes[o.root].bounds.Contains(pos) {
		return NoNode
	}
	id := o.root
	for !o.nodes[id].leaf {
		id = o.nodes[id].children[octantOf(pos, o.nodes[id].center)]
	}
	return id
}

// octantOf returns the child index of the octant holding p. Bits 2, 1 and 0
// are set for the max side of X, Y and Z.
func octantOf(p, center core.Vector3D) int {
	i := 0
	if p[0] >= center[0] {
		i |= 4
	}
	if p[1] >= center[1] {
		i |= 2
	}
	if p[2] >= center[2] {
		i |= 1
	}
	return i
}
