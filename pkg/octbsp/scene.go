// Package octbsp is the public entry point: a Scene collects static polygons,
// builds the hybrid octree/BSP over them and answers visibility ordered
// traversals, outline and segment queries. A Scene is safe for concurrent
// use; queries share a read lock and mutations take the write lock.
package octbsp

import (
	"errors"
	"fmt"
	"io"

	"octbsp/internal/bsp"
	"octbsp/internal/config"
	"octbsp/internal/core"
	"octbsp/internal/octree"
	"octbsp/internal/polygon"
	"octbsp/internal/scenegen"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

var (
	// ErrNotBuilt is returned by queries issued before Build
	ErrNotBuilt = errors.New("scene has not been built")
	// ErrDegenerate is returned for polygons without a usable plane
	ErrDegenerate = errors.New("degenerate polygon")
)

// Config holds configuration for a Scene
type Config struct {
	// Bounds fixes the octree box. A zero or empty box follows the polygons.
	Bounds      core.AABB3D
	Mode        bsp.Mode
	BSPNum      int
	MaxDepth    int
	Candidates  int
	SplitWeight int
	Seed        int64
}

// DefaultConfig returns the configuration built from the embedded defaults
func DefaultConfig() *Config {
	return ConfigFrom(config.Default())
}

// ConfigFrom converts a loaded configuration file
func ConfigFrom(c config.Config) *Config {
	return &Config{
		Bounds:      c.OctreeBounds(),
		Mode:        c.Mode(),
		BSPNum:      c.Octree.BSPNum,
		MaxDepth:    c.Octree.MaxDepth,
		Candidates:  c.BSP.Candidates,
		SplitWeight: c.BSP.SplitWeight,
		Seed:        c.BSP.Seed,
	}
}

// Hit is the result of a segment query
type Hit struct {
	Polygon    polygon.Polygon
	Point      core.Vector3D
	Originator any
}

// Scene owns the polygons and the tree built over them
type Scene struct {
	mu     deadlock.RWMutex
	config *Config

	static  *bsp.Container
	dynamic *bsp.Container
	tree    *octree.Octree
	built   bool
}

// NewScene creates an empty scene
func NewScene(cfg *Config) *Scene {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Scene{
		config:  cfg,
		static:  bsp.NewContainer(),
		dynamic: bsp.NewContainer(),
	}
}

// Config returns the scene configuration
func (s *Scene) Config() *Config {
	return s.config
}

// AddPolygon adds a static convex polygon. The vertices must wind
// counter-clockwise as seen from the front. The scene has to be rebuilt for
// the polygon to show up.
func (s *Scene) AddPolygon(vertices []core.Vector3D, originator any) (polygon.Polygon, error) {
	if err := checkPolygon(vertices); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.built = false
	return s.static.NewPolygon(vertices, originator), nil
}

// AddBox adds the outward facing faces of b as static polygons
func (s *Scene) AddBox(b core.AABB3D, name string) []polygon.Polygon {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.built = false
	return scenegen.Box(s.static, b, name)
}

// AddRoom adds the inward facing faces of b as static polygons
func (s *Scene) AddRoom(b core.AABB3D, name string) []polygon.Polygon {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.built = false
	return scenegen.Room(s.static, b, name)
}

// AddLevel adds the procedural test level
func (s *Scene) AddLevel(seed int64, boxes int) []polygon.Polygon {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.built = false
	return scenegen.Level(s.static, seed, boxes)
}

func checkPolygon(vertices []core.Vector3D) error {
	if len(vertices) < 3 {
		return fmt.Errorf("%w: %d vertices", ErrDegenerate, len(vertices))
	}
	if core.PlaneFromPoints(vertices).Normal.Len() < core.Epsilon {
		return fmt.Errorf("%w: vertices are collinear", ErrDegenerate)
	}
	return nil
}

func (s *Scene) newOctree() *octree.Octree {
	opts := []bsp.Option{bsp.WithSeed(s.config.Seed), bsp.WithSplitWeight(s.config.SplitWeight)}
	if s.config.Candidates > 0 {
		opts = append(opts, bsp.WithCandidates(s.config.Candidates))
	}
	return octree.New(s.config.Bounds, s.config.BSPNum, s.config.Mode,
		octree.WithMaxDepth(s.config.MaxDepth),
		octree.WithBSPOptions(opts...))
}

// Build (re)creates the tree over the static polygons. Dynamic polygons are
// dropped.
func (s *Scene) Build() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.BSPNum < 1 {
		return fmt.Errorf("invalid bsp_num %d", s.config.BSPNum)
	}

	s.clearDynamicLocked()
	if s.tree != nil {
		s.tree.Clear()
	}
	s.tree = s.newOctree()
	s.tree.Build(s.static.Polygons())
	s.built = true

	stats := s.tree.Statistics()
	log.Info().
		Int("polygons", s.static.Len()).
		Int("nodes", stats.Nodes).
		Int("leaves", stats.Leaves).
		Str("mode", s.config.Mode.String()).
		Msg("scene built")
	return nil
}

// SaveCache writes the built tree so LoadCache can restore it quickly
func (s *Scene) SaveCache(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.built {
		return ErrNotBuilt
	}
	return s.tree.Cache(w, s.static.Polygons())
}

// LoadCache rebuilds the tree from a cache written by SaveCache for the same
// polygons and configuration. On a mismatch the scene falls back to a full
// Build and the octree.ErrCacheMismatch error is returned alongside.
func (s *Scene) LoadCache(r io.Reader) error {
	s.mu.Lock()
	s.clearDynamicLocked()
	if s.tree != nil {
		s.tree.Clear()
	}
	s.tree = s.newOctree()
	err := s.tree.LoadCache(r, s.static.Polygons())
	if err == nil {
		s.built = true
		s.mu.Unlock()
		return nil
	}
	s.built = false
	s.mu.Unlock()

	log.Warn().Err(err).Msg("octree cache rejected, rebuilding")
	if buildErr := s.Build(); buildErr != nil {
		return buildErr
	}
	return err
}

// AddDynamic attaches a polygon that can be moved every frame without
// rebuilding the tree. It lives until ClearDynamic or the next Build.
func (s *Scene) AddDynamic(vertices []core.Vector3D, originator any) (polygon.Polygon, error) {
	if err := checkPolygon(vertices); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.built {
		return nil, ErrNotBuilt
	}
	p := s.dynamic.NewPolygon(vertices, originator)
	s.tree.AddDynamicPolygons([]polygon.Polygon{p})
	return p, nil
}

// ClearDynamic removes every dynamic polygon
func (s *Scene) ClearDynamic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearDynamicLocked()
}

func (s *Scene) clearDynamicLocked() {
	if s.tree != nil {
		s.tree.RemoveDynamicPolygons()
	}
	s.dynamic.Clear()
}

// Front2Back visits polygon groups nearest to pos first
func (s *Scene) Front2Back(pos core.Vector3D, visit polygon.Visitor, cull octree.CullFunc) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.built {
		return false, ErrNotBuilt
	}
	return s.tree.Front2Back(pos, visit, cull), nil
}

// Back2Front visits polygon groups farthest from pos first
func (s *Scene) Back2Front(pos core.Vector3D, visit polygon.Visitor, cull octree.CullFunc) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.built {
		return false, ErrNotBuilt
	}
	return s.tree.Back2Front(pos, visit, cull), nil
}

// PaintersOrder returns every polygon in back to front order from pos
func (s *Scene) PaintersOrder(pos core.Vector3D) ([]polygon.Polygon, error) {
	var out []polygon.Polygon
	_, err := s.Back2Front(pos, func(group []polygon.Polygon, _ bool) bool {
		out = append(out, group...)
		return false
	}, nil)
	return out, err
}

// Visible returns the polygons in front to back order from eye whose octree
// region intersects the frustum.
func (s *Scene) Visible(eye core.Vector3D, f core.Frustum) ([]polygon.Polygon, error) {
	var out []polygon.Polygon
	_, err := s.Front2Back(eye, func(group []polygon.Polygon, _ bool) bool {
		for _, p := range group {
			if f.IntersectsAABB(polygon.Bounds(p)) {
				out = append(out, p)
			}
		}
		return false
	}, octree.FrustumCuller(f))
	return out, err
}

// Outline returns the silhouette of the leaf region containing target as
// seen from pos, or of the whole scene when target is outside it.
func (s *Scene) Outline(target, pos core.Vector3D) ([]core.Vector3D, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.built {
		return nil, ErrNotBuilt
	}
	node := s.tree.LeafAt(target)
	if node == octree.NoNode {
		node = s.tree.Root()
	}
	return s.tree.GetConvexOutline(node, pos), nil
}

// Raycast returns the nearest polygon hit by the segment start-end
func (s *Scene) Raycast(start, end core.Vector3D) (Hit, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.built {
		return Hit{}, false, ErrNotBuilt
	}
	p, point, ok := s.tree.IntersectSegment(start, end)
	if !ok {
		return Hit{}, false, nil
	}
	return Hit{Polygon: p, Point: point, Originator: originatorOf(p)}, true, nil
}

// originatorOf follows split fragments back to the polygon the caller added
func originatorOf(p polygon.Polygon) any {
	if bp, ok := p.UnsplitPolygon().(*bsp.Polygon); ok {
		return bp.Originator()
	}
	return nil
}

// Stats returns the tree statistics
func (s *Scene) Stats() (octree.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.built {
		return octree.Stats{}, ErrNotBuilt
	}
	return s.tree.Statistics(), nil
}

// PolygonCount is the number of static polygons added so far
func (s *Scene) PolygonCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.static.Len()
}

// Close releases the tree and all polygons
func (s *Scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearDynamicLocked()
	if s.tree != nil {
		s.tree.Clear()
		s.tree = nil
	}
	s.static.Clear()
	s.built = false
}
