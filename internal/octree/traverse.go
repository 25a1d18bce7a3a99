package octree

import (
	"slices"

	"octbsp/internal/core"
	"octbsp/internal/polygon"
)

// CullFunc decides whether the subtree below node is worth visiting.
// Returning false prunes the node, its mini-BSP and all of its children.
type CullFunc func(o *Octree, node NodeID) bool

// Front2Back visits polygon groups nearest to pos first. With near the octant
// holding pos, child near^k is visited for k = 0..7, so the opposite octant
// comes last. Leaves hand over to their mini-BSP. It returns true when the
// visitor stopped the traversal.
func (o *Octree) Front2Back(pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	if o.root == NoNode {
		return false
	}
	return o.front2back(o.root, pos, visit, cull)
}

// Back2Front is the exact reverse of Front2Back
func (o *Octree) Back2Front(pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	if o.root == NoNode {
		return false
	}
	return o.back2front(o.root, pos, visit, cull)
}

func (o *Octree) front2back(id NodeID, pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	if cull != nil && !cull(o, id) {
		return false
	}
	n := &o.nodes[id]

	if len(n.dynamic) > 0 && visit(sortedByDistance(n.dynamic, pos, false), false) {
		return true
	}

	if n.leaf {
		return n.minibsp != nil && n.minibsp.Front2Back(pos, visit, nil)
	}

	near := octantOf(pos, n.center)
	for k := 0; k < 8; k++ {
		if o.front2back(n.children[near^k], pos, visit, cull) {
			return true
		}
	}
	return false
}

func (o *Octree) back2front(id NodeID, pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	if cull != nil && !cull(o, id) {
		return false
	}
	n := &o.nodes[id]

	if n.leaf {
		if n.minibsp != nil && n.minibsp.Back2Front(pos, visit, nil) {
			return true
		}
	} else {
		near := octantOf(pos, n.center)
		for k := 7; k >= 0; k-- {
			if o.back2front(n.children[near^k], pos, visit, cull) {
				return true
			}
		}
	}

	return len(n.dynamic) > 0 && visit(sortedByDistance(n.dynamic, pos, true), false)
}

// sortedByDistance orders a copy of polys by the distance of their vertex
// average to pos.
func sortedByDistance(polys []polygon.Polygon, pos core.Vector3D, farthestFirst bool) []polygon.Polygon {
	out := slices.Clone(polys)
	dist := func(p polygon.Polygon) float64 {
		d := polygon.Center(p).Sub(pos)
		return d.Dot(d)
	}
	slices.SortStableFunc(out, func(a, b polygon.Polygon) int {
		da, db := dist(a), dist(b)
		if farthestFirst {
			da, db = db, da
		}
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	return out
}

// FrustumCuller prunes nodes whose extent lies outside f
func FrustumCuller(f core.Frustum) CullFunc {
	return func(o *Octree, id NodeID) bool {
		return f.IntersectsAABB(o.Extent(id))
	}
}

// IntersectSegment returns the polygon nearest to start that the segment
// start-end passes through, and the hit point. Dynamic polygons take part.
func (o *Octree) IntersectSegment(start, end core.Vector3D) (polygon.Polygon, core.Vector3D, bool) {
	var (
		best  polygon.Polygon
		bestT float64
	)
	consider := func(p polygon.Polygon) {
		if t, ok := polygon.SegmentHit(p, start, end); ok && (best == nil || t < bestT) {
			best, bestT = p, t
		}
	}

	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := &o.nodes[id]
		if !n.extent.IntersectsSegment(start, end) {
			return
		}
		for _, p := range n.dynamic {
			consider(p)
		}
		if n.leaf {
			if n.minibsp != nil {
				if p, _, ok := n.minibsp.IntersectSegment(start, end); ok {
					consider(p)
				}
			}
			return
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	if o.root != NoNode {
		walk(o.root)
	}

	if best == nil {
		return nil, core.Vector3D{}, false
	}
	return best, start.Add(end.Sub(start).Mul(bestT)), true
}
