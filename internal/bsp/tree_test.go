package bsp

import (
	"testing"

	"octbsp/internal/core"
	"octbsp/internal/polygon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// box face corner rings, counter-clockwise seen from outside
var boxFaces = [6][4]int{
	{0, 1, 3, 2}, // -X
	{4, 6, 7, 5}, // +X
	{0, 4, 5, 1}, // -Y
	{2, 3, 7, 6}, // +Y
	{0, 2, 6, 4}, // -Z
	{1, 5, 7, 3}, // +Z
}

func addBox(c *Container, b core.AABB3D, inward bool, tag string) []polygon.Polygon {
	var out []polygon.Polygon
	for i, face := range boxFaces {
		ring := make([]core.Vector3D, 4)
		for j, corner := range face {
			ring[j] = b.Corner(corner)
		}
		if inward {
			ring[0], ring[1], ring[2], ring[3] = ring[3], ring[2], ring[1], ring[0]
		}
		out = append(out, c.NewPolygon(ring, faceTag{tag, i}))
	}
	return out
}

type faceTag struct {
	box  string
	face int
}

func quad(c *Container, name string, pts ...core.Vector3D) polygon.Polygon {
	return c.NewPolygon(pts, name)
}

func originators(polys []polygon.Polygon) map[any]int {
	out := map[any]int{}
	for _, p := range polys {
		out[p.UnsplitPolygon().(*Polygon).Originator()]++
	}
	return out
}

func TestPolygonVertexArrayDoubles(t *testing.T) {
	c := NewContainer()
	p := c.NewPolygon([]core.Vector3D{
		core.Vec3(0, 0, 0), core.Vec3(1, 0, 0), core.Vec3(1, 1, 0), core.Vec3(0, 1, 0),
	}, nil)
	require.Equal(t, 4, p.VertexCount())
	require.Equal(t, 4, p.Capacity())

	p.AddVertex(core.Vec3(-1, 0.5, 0))
	require.Equal(t, 5, p.VertexCount())
	require.Equal(t, 8, p.Capacity())
	require.LessOrEqual(t, p.VertexCount(), p.Capacity())
	require.Equal(t, core.Vec3(0, 0, 0), p.Vertex(0))
}

func TestEmptyTree(t *testing.T) {
	tree := NewTree(MinimizeSplits)
	tree.Build(nil)

	require.True(t, tree.IsEmpty())
	require.Equal(t, NoNode, tree.Root())
	require.False(t, tree.Front2Back(core.Vec3(0, 0, 0), func([]polygon.Polygon, bool) bool {
		t.Fatal("visitor called on empty tree")
		return true
	}, nil))
	require.Equal(t, Stats{}, tree.Statistics())
}

func TestTraversalOrderParallelQuads(t *testing.T) {
	c := NewContainer()
	low := quad(c, "low", core.Vec3(0, 0, 0), core.Vec3(1, 0, 0), core.Vec3(1, 1, 0), core.Vec3(0, 1, 0))
	high := quad(c, "high", core.Vec3(0, 0, 5), core.Vec3(1, 0, 5), core.Vec3(1, 1, 5), core.Vec3(0, 1, 5))

	tree := NewTree(MinimizeSplits)
	tree.Build([]polygon.Polygon{low, high})

	var order []polygon.Polygon
	collect := func(polys []polygon.Polygon, _ bool) bool {
		order = append(order, polys...)
		return false
	}

	viewer := core.Vec3(0.5, 0.5, 10)
	require.False(t, tree.Front2Back(viewer, collect, nil))
	require.Equal(t, []polygon.Polygon{high, low}, order)

	order = nil
	tree.Back2Front(viewer, collect, nil)
	require.Equal(t, []polygon.Polygon{low, high}, order)

	order = nil
	tree.Front2Back(core.Vec3(0.5, 0.5, -10), collect, nil)
	require.Equal(t, []polygon.Polygon{low, high}, order)
}

func TestTraversalStopsEarly(t *testing.T) {
	c := NewContainer()
	polys := addBox(c, core.AABB3D{Min: core.Vec3(0, 0, 0), Max: core.Vec3(1, 1, 1)}, false, "box")

	tree := NewTree(MinimizeSplits)
	tree.Build(polys)

	calls := 0
	stopped := tree.Front2Back(core.Vec3(-5, 0.5, 0.5), func(group []polygon.Polygon, samePlane bool) bool {
		calls++
		require.True(t, samePlane)
		require.Equal(t, faceTag{"box", 0}, group[0].(*Polygon).Originator())
		return true
	}, nil)
	require.True(t, stopped)
	require.Equal(t, 1, calls)
}

func TestRoomBecomesConvexLeaf(t *testing.T) {
	c := NewContainer()
	polys := addBox(c, core.AABB3D{Min: core.Vec3(0, 0, 0), Max: core.Vec3(4, 4, 4)}, true, "room")

	tree := NewTree(MinimizeSplits)
	tree.Build(polys)

	stats := tree.Statistics()
	require.Equal(t, 1, stats.Nodes)
	require.Equal(t, 1, stats.ConvexLeaves)
	require.Equal(t, 6, stats.Polygons)
	require.Equal(t, 0, stats.Splits)

	_, ok := tree.Splitter(tree.Root())
	require.False(t, ok)

	groups := 0
	tree.Back2Front(core.Vec3(2, 2, 2), func(group []polygon.Polygon, samePlane bool) bool {
		groups++
		require.False(t, samePlane)
		require.Len(t, group, 6)
		return false
	}, nil)
	require.Equal(t, 1, groups)
}

func crossingQuads(c *Container) (polygon.Polygon, polygon.Polygon) {
	wall := quad(c, "wall", core.Vec3(0, 0, -1), core.Vec3(0, 1, -1), core.Vec3(0, 1, 1), core.Vec3(0, 0, 1))
	floor := quad(c, "floor", core.Vec3(-1, 0, 0), core.Vec3(1, 0, 0), core.Vec3(1, 1, 0), core.Vec3(-1, 1, 0))
	return wall, floor
}

func TestSplitFragmentsTraceBackAndReturnToPool(t *testing.T) {
	c := NewContainer()
	wall, floor := crossingQuads(c)

	tree := NewTree(MinimizeSplits)
	tree.Build([]polygon.Polygon{wall, floor})

	stats := tree.Statistics()
	require.Equal(t, 1, stats.Splits)
	require.Equal(t, 3, stats.Polygons)

	stored := tree.Polygons()
	require.Equal(t, map[any]int{"wall": 1, "floor": 2}, originators(stored))
	sides := map[polygon.Classification]int{}
	for _, p := range stored {
		if p.UnsplitPolygon() == floor {
			assert.NotSame(t, floor, p)
			sides[p.Classify(wall.Plane())]++
		}
	}
	require.Equal(t, map[polygon.Classification]int{polygon.Front: 1, polygon.Back: 1}, sides)

	// Tree holds one reference on the wall, the split floor went back to the
	// container's single reference.
	require.Equal(t, 2, wall.RefCount())
	require.Equal(t, 1, floor.RefCount())
	require.Equal(t, 4, c.Pool().Created())

	tree.Clear()
	require.Equal(t, 1, wall.RefCount())
	require.Equal(t, 2, c.Pool().FreeCount())
	require.Equal(t, 2, c.Pool().InUse())

	// Rebuilding reuses the pooled fragments instead of allocating.
	tree.Rebuild([]polygon.Polygon{wall, floor})
	require.Equal(t, 4, c.Pool().Created())
	require.Equal(t, 0, c.Pool().FreeCount())
}

func TestChoicesReplayReproducesTree(t *testing.T) {
	c := NewContainer()
	var polys []polygon.Polygon
	polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(0, 0, 0), Max: core.Vec3(2, 2, 2)}, false, "a")...)
	polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(1, 1, 1), Max: core.Vec3(3, 3, 3)}, false, "b")...)

	first := NewTree(BalanceAndSplits)
	first.Build(polys)
	choices := first.Choices()
	require.Len(t, choices, first.NodeCount())

	second := NewTree(Random, WithSeed(42))
	second.BuildFromChoices(polys, choices)

	require.Equal(t, first.Statistics(), second.Statistics())
	require.Equal(t, choices, second.Choices())
	for id := NodeID(0); int(id) < first.NodeCount(); id++ {
		p1, ok1 := first.Splitter(id)
		p2, ok2 := second.Splitter(id)
		require.Equal(t, ok1, ok2)
		require.True(t, p1.ApproxEqual(p2))
	}
}

func TestReplayIgnoresInvalidChoices(t *testing.T) {
	c := NewContainer()
	var polys []polygon.Polygon
	polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(0, 0, 0), Max: core.Vec3(2, 2, 2)}, false, "a")...)
	polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(1, 1, 1), Max: core.Vec3(3, 3, 3)}, false, "b")...)

	fresh := NewTree(MinimizeSplits)
	fresh.Build(polys)

	for name, choices := range map[string][]int32{
		"negative":     {-2, 0, 0},
		"out of range": {int32(len(polys)), 0},
	} {
		t.Run(name, func(t *testing.T) {
			tree := NewTree(MinimizeSplits)
			require.NotPanics(t, func() { tree.BuildFromChoices(polys, choices) })
			require.Equal(t, fresh.Statistics(), tree.Statistics())
			require.Len(t, originators(tree.Polygons()), len(polys))
		})
	}
}

func TestEveryModeKeepsAllPolygons(t *testing.T) {
	modes := []Mode{
		MinimizeSplits, MostOnSplitter, Random, Balanced,
		AlmostMinimizeSplits, AlmostBalanced, BalanceAndSplits, AlmostBalanceAndSplits,
	}

	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			c := NewContainer()
			var polys []polygon.Polygon
			polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(0, 0, 0), Max: core.Vec3(2, 2, 2)}, false, "a")...)
			polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(1, 1, 1), Max: core.Vec3(3, 3, 3)}, false, "b")...)
			polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(-4, -4, -4), Max: core.Vec3(6, 6, 6)}, true, "room")...)

			tree := NewTree(mode, WithCandidates(4))
			tree.Build(polys)

			// Every stored polygon traces back to exactly the input set.
			got := originators(tree.Polygons())
			require.Len(t, got, len(polys))
			for _, p := range polys {
				require.Contains(t, got, p.(*Polygon).Originator())
			}

			// A full traversal visits every stored polygon once.
			visited := 0
			tree.Back2Front(core.Vec3(5, 5, 5), func(group []polygon.Polygon, _ bool) bool {
				visited += len(group)
				return false
			}, nil)
			require.Equal(t, tree.Statistics().Polygons, visited)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Almost-Balanced")
	require.NoError(t, err)
	require.Equal(t, AlmostBalanced, m)

	_, err = ParseMode("fastest")
	require.Error(t, err)
}

func TestIntersectSegment(t *testing.T) {
	c := NewContainer()
	polys := addBox(c, core.AABB3D{Min: core.Vec3(0, 0, 0), Max: core.Vec3(1, 1, 1)}, false, "box")

	tree := NewTree(MinimizeSplits)
	tree.Build(polys)

	hit, point, ok := tree.IntersectSegment(core.Vec3(0.5, 0.5, 5), core.Vec3(0.5, 0.5, -5))
	require.True(t, ok)
	require.Equal(t, faceTag{"box", 5}, hit.(*Polygon).Originator())
	require.InDelta(t, 1, point[2], 1e-9)

	_, _, ok = tree.IntersectSegment(core.Vec3(5, 5, 5), core.Vec3(6, 6, 6))
	require.False(t, ok)
}

func TestFrustumCuller(t *testing.T) {
	c := NewContainer()
	var polys []polygon.Polygon
	polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(-1, -1, -1), Max: core.Vec3(1, 1, 1)}, false, "near")...)
	polys = append(polys, addBox(c, core.AABB3D{Min: core.Vec3(-1, -1, 50), Max: core.Vec3(1, 1, 52)}, false, "behind")...)

	tree := NewTree(MinimizeSplits)
	tree.Build(polys)

	eye := core.Vec3(0, 0, 10)
	f := core.PerspectiveFrustum(eye, core.Vec3(0, 0, 0), core.Vec3(0, 1, 0), 60, 1, 0.1, 100)

	seen := map[string]bool{}
	tree.Front2Back(eye, func(group []polygon.Polygon, _ bool) bool {
		for _, p := range group {
			if f.IntersectsAABB(polygon.Bounds(p)) {
				seen[p.UnsplitPolygon().(*Polygon).Originator().(faceTag).box] = true
			}
		}
		return false
	}, FrustumCuller(f))

	require.True(t, seen["near"])
	require.False(t, seen["behind"])
}
