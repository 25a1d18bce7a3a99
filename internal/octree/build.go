package octree

import (
	"octbsp/internal/bsp"
	"octbsp/internal/core"
	"octbsp/internal/polygon"

	"github.com/rs/zerolog/log"
)

// Build partitions polygons top-down. Polygons straddling an octant boundary
// are split, and regions that hold at most BSPNum polygons, or that reach the
// depth limit, become leaves with a mini-BSP over their share of polygons.
// The octree takes its own references; callers keep theirs.
//
// The bounds given to New are grown to enclose every polygon.
func (o *Octree) Build(polygons []polygon.Polygon) {
	o.Clear()

	bounds := o.bounds
	for _, p := range polygons {
		bounds = bounds.Union(polygon.Bounds(p))
	}
	if bounds.IsEmpty() {
		bounds = core.AABB3D{}
	}
	o.bounds = bounds

	work := make([]polygon.Polygon, len(polygons))
	copy(work, polygons)
	for _, p := range work {
		p.IncRefCount()
	}

	o.root = o.build(work, bounds, 0, NoNode)
	o.replay = nil

	stats := o.Statistics()
	log.Debug().
		Int("polygons", len(polygons)).
		Int("nodes", stats.Nodes).
		Int("leaves", stats.Leaves).
		Int("splits", o.splits).
		Int("bsp_num", o.bspNum).
		Msg("octree built")
	instrumentBuild(stats)
}

// Clear releases every polygon held by the octree, dynamic ones included,
// and drops all nodes.
func (o *Octree) Clear() {
	o.RemoveDynamicPolygons()
	for i := range o.nodes {
		if t := o.nodes[i].minibsp; t != nil {
			t.Clear()
		}
	}
	clear(o.nodes)
	o.nodes = o.nodes[:0]
	o.root = NoNode
	o.splits = 0
	o.choices = o.choices[:0]
}

func (o *Octree) newNode(bounds core.AABB3D, depth int, parent NodeID) NodeID {
	o.nodes = append(o.nodes, node{
		bounds: bounds,
		center: bounds.Center(),
		depth:  depth,
		parent: parent,
		extent: bounds,
	})
	return NodeID(len(o.nodes) - 1)
}

// build owns one reference to each polygon in polys and hands it on to the
// mini-BSP or the children.
func (o *Octree) build(polys []polygon.Polygon, bounds core.AABB3D, depth int, parent NodeID) NodeID {
	id := o.newNode(bounds, depth, parent)
	o.nodes[id].count = len(polys)

	if len(polys) <= o.bspNum || depth >= o.maxDepth {
		o.makeLeaf(id, polys)
		return id
	}

	center := o.nodes[id].center
	var octants [8][]polygon.Polygon
	octants[0] = polys
	// Cut along X into bit 2, then Y into bit 1, then Z into bit 0.
	for _, axis := range [3]core.Axis{core.AxisX, core.AxisY, core.AxisZ} {
		bit := 4 >> axis
		pl := core.AxisPlane(axis, center[axis])
		for i := 0; i < 8; i++ {
			if i&bit != 0 || octants[i] == nil {
				continue
			}
			octants[i], octants[i|bit] = o.splitRegion(octants[i], pl, axis)
		}
	}

	var children [8]NodeID
	for i := range children {
		children[i] = o.build(octants[i], bounds.Octant(i, center), depth+1, id)
	}
	o.nodes[id].children = children
	return id
}

// splitRegion separates polys into the back (min) and front (max) side of an
// axis plane. A polygon lying on the plane goes to the side its normal faces.
func (o *Octree) splitRegion(polys []polygon.Polygon, pl core.Plane, axis core.Axis) (back, front []polygon.Polygon) {
	for _, p := range polys {
		switch p.Classify(pl) {
		case polygon.Front:
			front = append(front, p)
		case polygon.Back:
			back = append(back, p)
		case polygon.SamePlane:
			if p.Plane().Normal[axis] >= 0 {
				front = append(front, p)
			} else {
				back = append(back, p)
			}
		case polygon.SplitNeeded:
			f, b := p.SplitWithPlane(pl)
			if f != nil {
				front = append(front, f)
			}
			if b != nil {
				back = append(back, b)
			}
			polygon.Release(p)
			o.splits++
		}
	}
	return back, front
}

func (o *Octree) makeLeaf(id NodeID, polys []polygon.Polygon) {
	o.nodes[id].leaf = true
	for i := range o.nodes[id].children {
		o.nodes[id].children[i] = NoNode
	}
	if len(polys) == 0 {
		return
	}

	t := bsp.NewTree(o.mode, o.bspOpts...)
	if len(o.replay) > 0 {
		choices := o.replay[0]
		o.replay = o.replay[1:]
		t.BuildFromChoices(polys, choices)
	} else {
		t.Build(polys)
	}
	o.choices = append(o.choices, t.Choices())

	// The mini-BSP took its own references.
	for _, p := range polys {
		polygon.Release(p)
	}
	o.nodes[id].minibsp = t
}
