package bsp

import (
	"octbsp/internal/core"
	"octbsp/internal/polygon"
)

// CullFunc decides whether the subtree below node is worth visiting.
// Returning false skips the node and all of its children.
type CullFunc func(t *Tree, node NodeID) bool

// Front2Back visits polygon groups nearest to pos first. It returns true when
// the visitor stopped the traversal.
func (t *Tree) Front2Back(pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	return t.front2back(t.root, pos, visit, cull)
}

// Back2Front visits polygon groups farthest from pos first, the order a
// painter's algorithm needs. It returns true when the visitor stopped the
// traversal.
func (t *Tree) Back2Front(pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	return t.back2front(t.root, pos, visit, cull)
}

func (t *Tree) front2back(id NodeID, pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	if id == NoNode {
		return false
	}
	if cull != nil && !cull(t, id) {
		return false
	}

	n := &t.nodes[id]
	if !n.hasSplitter {
		return len(n.polygons) > 0 && visit(n.polygons, false)
	}

	near, far := n.front, n.back
	if n.splitter.Classify(pos) < 0 {
		near, far = far, near
	}

	if t.front2back(near, pos, visit, cull) {
		return true
	}
	if visit(n.polygons, true) {
		return true
	}
	return t.front2back(far, pos, visit, cull)
}

func (t *Tree) back2front(id NodeID, pos core.Vector3D, visit polygon.Visitor, cull CullFunc) bool {
	if id == NoNode {
		return false
	}
	if cull != nil && !cull(t, id) {
		return false
	}

	n := &t.nodes[id]
	if !n.hasSplitter {
		return len(n.polygons) > 0 && visit(n.polygons, false)
	}

	near, far := n.front, n.back
	if n.splitter.Classify(pos) < 0 {
		near, far = far, near
	}

	if t.back2front(far, pos, visit, cull) {
		return true
	}
	if visit(n.polygons, true) {
		return true
	}
	return t.back2front(near, pos, visit, cull)
}

// FrustumCuller prunes nodes whose polygons all lie outside f
func FrustumCuller(f core.Frustum) CullFunc {
	return func(t *Tree, id NodeID) bool {
		return f.IntersectsAABB(t.Bounds(id))
	}
}

// IntersectSegment returns the polygon nearest to start that the segment
// start-end passes through, and the hit point.
func (t *Tree) IntersectSegment(start, end core.Vector3D) (polygon.Polygon, core.Vector3D, bool) {
	var (
		best  polygon.Polygon
		bestT float64
	)

	cull := func(t *Tree, id NodeID) bool {
		return t.Bounds(id).IntersectsSegment(start, end)
	}

	// Front to back from start: the first group containing a hit holds the
	// nearest one, later groups cannot lie in front of it.
	t.Front2Back(start, func(polys []polygon.Polygon, _ bool) bool {
		for _, p := range polys {
			if hitT, ok := polygon.SegmentHit(p, start, end); ok && (best == nil || hitT < bestT) {
				best, bestT = p, hitT
			}
		}
		return best != nil
	}, cull)

	if best == nil {
		return nil, core.Vector3D{}, false
	}
	return best, start.Add(end.Sub(start).Mul(bestT)), true
}
