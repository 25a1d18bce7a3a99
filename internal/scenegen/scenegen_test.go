package scenegen

import (
	"math/rand"
	"testing"

	"octbsp/internal/bsp"
	"octbsp/internal/core"
	"octbsp/internal/polygon"

	"github.com/stretchr/testify/require"
)

func TestBoxFacesPointOutward(t *testing.T) {
	c := bsp.NewContainer()
	b := core.AABB3D{Min: core.Vec3(0, 0, 0), Max: core.Vec3(2, 2, 2)}
	center := b.Center()

	for _, p := range Box(c, b, "box") {
		require.Greater(t, -p.Plane().Classify(center), 0.0, "face %v", p.(*bsp.Polygon).Originator())
	}
	for _, p := range Room(c, b, "room") {
		require.Greater(t, p.Plane().Classify(center), 0.0, "face %v", p.(*bsp.Polygon).Originator())
	}
}

func TestGrid(t *testing.T) {
	c := bsp.NewContainer()
	tiles := Grid(c, core.Vec3(0, 1, 0), 3, 2, 5, "floor")
	require.Len(t, tiles, 6)

	for _, p := range tiles {
		n := p.Plane().Normal
		require.InDelta(t, 1, n[1], 1e-9)
		b := polygon.Bounds(p)
		require.InDelta(t, 5, b.Size()[0], 1e-9)
		require.InDelta(t, 5, b.Size()[2], 1e-9)
	}
	require.Equal(t, Face{Object: "floor", Index: 5}, tiles[5].(*bsp.Polygon).Originator())
}

func TestRandomBoxesStayInArea(t *testing.T) {
	c := bsp.NewContainer()
	area := core.AABB3D{Min: core.Vec3(-10, -10, -10), Max: core.Vec3(10, 10, 10)}
	polys := RandomBoxes(c, rand.New(rand.NewSource(7)), 20, area, 1, 4)
	require.Len(t, polys, 120)

	for _, p := range polys {
		b := polygon.Bounds(p)
		require.True(t, area.Contains(b.Min) && area.Contains(b.Max))
	}
}

func TestLevelIsRepeatable(t *testing.T) {
	a := Level(bsp.NewContainer(), 3, 10)
	b := Level(bsp.NewContainer(), 3, 10)
	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, polygon.Vertices(a[i]), polygon.Vertices(b[i]))
	}
}
