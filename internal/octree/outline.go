package octree

import (
	"octbsp/internal/core"
)

// outlineCorners lists, for each of the 27 viewer positions around a box,
// the corners forming the silhouette of the box as seen from there, counter
// clockwise from the viewer's side. The index is xi*9 + yi*3 + zi with 0
// below the box on that axis, 1 within its extent and 2 above it. Corners are
// numbered as in core.AABB3D.Corner.
var outlineCorners = [27][]int{
	{3, 2, 6, 4, 5, 1},
	{0, 4, 5, 1, 3, 2},
	{0, 4, 5, 7, 3, 2},
	{0, 1, 3, 2, 6, 4},
	{0, 1, 3, 2},
	{0, 1, 5, 7, 3, 2},
	{0, 1, 3, 7, 6, 4},
	{0, 1, 3, 7, 6, 2},
	{0, 1, 5, 7, 6, 2},
	{0, 2, 6, 4, 5, 1},
	{0, 4, 5, 1},
	{0, 4, 5, 7, 3, 1},
	{0, 2, 6, 4},
	nil,
	{1, 5, 7, 3},
	{0, 2, 3, 7, 6, 4},
	{2, 3, 7, 6},
	{1, 5, 7, 6, 2, 3},
	{0, 2, 6, 7, 5, 1},
	{0, 4, 6, 7, 5, 1},
	{0, 4, 6, 7, 3, 1},
	{0, 2, 6, 7, 5, 4},
	{4, 6, 7, 5},
	{1, 5, 4, 6, 7, 3},
	{0, 2, 3, 7, 5, 4},
	{2, 3, 7, 5, 4, 6},
	{1, 5, 4, 6, 2, 3},
}

// OutlineIndex classifies pos against box on each axis and returns the
// 0..26 index into the outline table. 13 means pos is inside the box.
func OutlineIndex(box core.AABB3D, pos core.Vector3D) int {
	idx := 0
	for axis := 0; axis < 3; axis++ {
		side := 1
		switch {
		case pos[axis] < box.Min[axis]:
			side = 0
		case pos[axis] > box.Max[axis]:
			side = 2
		}
		idx = idx*3 + side
	}
	return idx
}

// OutlineCorners returns the corner indices of table entry idx
func OutlineCorners(idx int) []int {
	if idx < 0 || idx >= len(outlineCorners) {
		core.Assert(false, "outline index out of range")
		return nil
	}
	return append([]int(nil), outlineCorners[idx]...)
}

// ConvexOutline returns the silhouette of box seen from pos: four vertices
// when pos faces one side, six otherwise, none when pos is inside.
func ConvexOutline(box core.AABB3D, pos core.Vector3D) []core.Vector3D {
	corners := outlineCorners[OutlineIndex(box, pos)]
	if len(corners) == 0 {
		return nil
	}
	out := make([]core.Vector3D, len(corners))
	for i, c := range corners {
		out[i] = box.Corner(c)
	}
	return out
}

// GetConvexOutline returns the outline of a node's box as seen from pos
func (o *Octree) GetConvexOutline(id NodeID, pos core.Vector3D) []core.Vector3D {
	if !o.valid(id) {
		return nil
	}
	return ConvexOutline(o.nodes[id].bounds, pos)
}
