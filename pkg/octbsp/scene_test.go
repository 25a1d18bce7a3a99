package octbsp

import (
	"bytes"
	"sync"
	"testing"

	"octbsp/internal/core"
	"octbsp/internal/octree"
	"octbsp/internal/polygon"
	"octbsp/internal/scenegen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene(t *testing.T) *Scene {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BSPNum = 8
	cfg.MaxDepth = 5
	s := NewScene(cfg)
	s.AddRoom(core.NewAABB3D(core.Vec3(-10, 0, -10), core.Vec3(10, 10, 10)), "room")
	s.AddBox(core.NewAABB3D(core.Vec3(2, 0, 2), core.Vec3(4, 2, 4)), "crate")
	s.AddBox(core.NewAABB3D(core.Vec3(-6, 0, -6), core.Vec3(-4, 3, -4)), "pillar")
	require.NoError(t, s.Build())
	t.Cleanup(s.Close)
	return s
}

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene(nil)
	require.Equal(t, 20, s.Config().BSPNum)
	require.Equal(t, 10, s.Config().MaxDepth)

	_, err := s.Stats()
	require.ErrorIs(t, err, ErrNotBuilt)
	_, err = s.PaintersOrder(core.Vec3(0, 0, 0))
	require.ErrorIs(t, err, ErrNotBuilt)
	_, err = s.AddDynamic([]core.Vector3D{core.Vec3(0, 0, 0), core.Vec3(1, 0, 0), core.Vec3(0, 1, 0)}, nil)
	require.ErrorIs(t, err, ErrNotBuilt)
}

func TestAddPolygonRejectsDegenerate(t *testing.T) {
	s := NewScene(nil)
	_, err := s.AddPolygon([]core.Vector3D{core.Vec3(0, 0, 0), core.Vec3(1, 0, 0)}, nil)
	require.ErrorIs(t, err, ErrDegenerate)

	_, err = s.AddPolygon([]core.Vector3D{core.Vec3(0, 0, 0), core.Vec3(1, 0, 0), core.Vec3(2, 0, 0)}, nil)
	require.ErrorIs(t, err, ErrDegenerate)

	p, err := s.AddPolygon([]core.Vector3D{core.Vec3(0, 0, 0), core.Vec3(1, 0, 0), core.Vec3(0, 1, 0)}, "tri")
	require.NoError(t, err)
	require.Equal(t, 3, p.VertexCount())
	require.Equal(t, 1, s.PolygonCount())
}

func TestPaintersOrderCoversScene(t *testing.T) {
	s := testScene(t)

	order, err := s.PaintersOrder(core.Vec3(0, 5, 0))
	require.NoError(t, err)

	seen := map[scenegen.Face]bool{}
	for _, p := range order {
		seen[faceOf(p)] = true
	}
	require.Len(t, seen, 18)
}

func TestBuildDropsDynamic(t *testing.T) {
	s := testScene(t)

	door, err := s.AddDynamic([]core.Vector3D{
		core.Vec3(0, 0, -1), core.Vec3(0, 0, 1), core.Vec3(0, 3, 1), core.Vec3(0, 3, -1),
	}, "door")
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.DynamicPolygons)

	hit, ok, err := s.Raycast(core.Vec3(-1, 1.5, 0.3), core.Vec3(1, 1.5, 0.3))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "door", hit.Originator)
	require.Same(t, door, hit.Polygon)
	require.InDelta(t, 0, hit.Point.X(), 1e-9)

	require.NoError(t, s.Build())
	stats, err = s.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.DynamicPolygons)
}

func TestClearDynamic(t *testing.T) {
	s := testScene(t)
	for i := 0; i < 3; i++ {
		x := float64(i)
		_, err := s.AddDynamic([]core.Vector3D{
			core.Vec3(x, 1, 0), core.Vec3(x+0.5, 1, 0), core.Vec3(x+0.5, 2, 0),
		}, i)
		require.NoError(t, err)
	}
	s.ClearDynamic()

	stats, err := s.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.DynamicPolygons)
	require.Zero(t, s.dynamic.Pool().InUse())
}

func TestVisibleKeepsFrontToBackOrder(t *testing.T) {
	s := testScene(t)
	eye := core.Vec3(0, 1, 9)
	f := core.PerspectiveFrustum(eye, core.Vec3(0, 1, 0), core.Vec3(0, 1, 0), 60, 1, 0.1, 100)

	visible, err := s.Visible(eye, f)
	require.NoError(t, err)
	require.NotEmpty(t, visible)

	all, err := s.PaintersOrder(eye)
	require.NoError(t, err)
	assert.Less(t, len(visible), len(all))

	found := false
	for _, p := range visible {
		if faceOf(p).Object == "crate" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOutline(t *testing.T) {
	s := testScene(t)

	outline, err := s.Outline(core.Vec3(100, 100, 100), core.Vec3(-50, 5, 0))
	require.NoError(t, err)
	require.Len(t, outline, 4)

	outline, err = s.Outline(core.Vec3(0, 5, 0), core.Vec3(0, 5, 0))
	require.NoError(t, err)
	require.Empty(t, outline)
}

func TestCacheRoundTrip(t *testing.T) {
	s := testScene(t)
	want, err := s.Stats()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.SaveCache(&buf))
	data := buf.Bytes()

	require.NoError(t, s.LoadCache(bytes.NewReader(data)))
	got, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, want.Nodes, got.Nodes)
	require.Equal(t, want.Leaves, got.Leaves)

	s.AddBox(core.NewAABB3D(core.Vec3(6, 0, 6), core.Vec3(7, 1, 7)), "late")
	err = s.LoadCache(bytes.NewReader(data))
	require.ErrorIs(t, err, octree.ErrCacheMismatch)

	// the scene still falls back to a full build
	order, err := s.PaintersOrder(core.Vec3(0, 5, 0))
	require.NoError(t, err)
	require.NotEmpty(t, order)
}

func TestConcurrentQueries(t *testing.T) {
	s := testScene(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pos := core.Vec3(float64(i)-4, 5, 0)
			_, err := s.Front2Back(pos, func([]polygon.Polygon, bool) bool { return false }, nil)
			assert.NoError(t, err)
			_, _, err = s.Raycast(pos, core.Vec3(pos.X(), -1, 0))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func faceOf(p polygon.Polygon) scenegen.Face {
	return originatorOf(p).(scenegen.Face)
}
