// Package bsp implements the binary space partitioning tree used on its own
// and as the mini-BSP stored at octree leaves.
//
// Nodes live in a slice and refer to their children by index. A node either
// has a splitting plane, with the polygons lying on that plane and optional
// front/back children, or it is a convex leaf holding a set of polygons that
// are all in front of each other.
package bsp

import (
	"math/rand"

	"octbsp/internal/core"
	"octbsp/internal/polygon"

	"github.com/rs/zerolog/log"
)

// NodeID indexes a node in the tree arena
type NodeID int32

// NoNode marks a missing child or an empty tree
const NoNode NodeID = -1

// convexLeafChoice is recorded in the choice list for nodes that became
// convex leaves instead of picking a splitter.
const convexLeafChoice = -1

type node struct {
	splitter    core.Plane
	hasSplitter bool
	polygons    []polygon.Polygon
	front, back NodeID
	depth       int
	bounds      core.AABB3D
}

// Tree is a BSP tree over polygon.Polygon values
type Tree struct {
	nodes []node
	root  NodeID

	mode          Mode
	maxCandidates int
	splitWeight   int
	seed          int64
	rng           *rand.Rand

	choices []int32
	replay  []int32
	splits  int
}

// Option configures a Tree
type Option func(*Tree)

// WithCandidates caps the number of splitters evaluated by the "almost" modes
func WithCandidates(n int) Option {
	return func(t *Tree) {
		t.maxCandidates = n
	}
}

// WithSplitWeight sets how many units of imbalance one split costs in the
// balance-and-splits modes.
func WithSplitWeight(w int) Option {
	return func(t *Tree) {
		t.splitWeight = w
	}
}

// WithSeed seeds the random splitter mode
func WithSeed(seed int64) Option {
	return func(t *Tree) {
		t.seed = seed
	}
}

// NewTree creates an empty tree using mode to pick splitters
func NewTree(mode Mode, opts ...Option) *Tree {
	t := &Tree{
		root:          NoNode,
		mode:          mode,
		maxCandidates: 20,
		splitWeight:   3,
		seed:          1,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.rng = rand.New(rand.NewSource(t.seed))
	return t
}

// Mode returns the splitter selection mode
func (t *Tree) Mode() Mode {
	return t.mode
}

// Build partitions polygons. The tree takes a reference to every polygon it
// stores; fragments created by splits are owned by the tree. Building with no
// polygons leaves an empty tree.
func (t *Tree) Build(polygons []polygon.Polygon) {
	t.Clear()
	if len(polygons) == 0 {
		return
	}

	work := make([]polygon.Polygon, len(polygons))
	copy(work, polygons)
	for _, p := range work {
		p.IncRefCount()
	}

	t.root = t.build(work, 0)
	t.computeBounds(t.root)
	t.replay = nil

	log.Debug().
		Str("mode", t.mode.String()).
		Int("polygons", len(polygons)).
		Int("nodes", len(t.nodes)).
		Int("splits", t.splits).
		Msg("bsp tree built")
	instrumentBuild(len(polygons), t.splits)
}

// Rebuild discards the current partition and builds again from polygons
func (t *Tree) Rebuild(polygons []polygon.Polygon) {
	t.rng = rand.New(rand.NewSource(t.seed))
	t.Build(polygons)
}

// Choices returns the splitter decisions of the last build in node creation
// order. Feeding them to BuildFromChoices with the same polygons reproduces
// the tree without evaluating splitters.
func (t *Tree) Choices() []int32 {
	out := make([]int32, len(t.choices))
	copy(out, t.choices)
	return out
}

// BuildFromChoices builds like Build but takes splitter decisions from
// choices. When the list runs out the configured mode takes over.
func (t *Tree) BuildFromChoices(polygons []polygon.Polygon, choices []int32) {
	replay := make([]int32, len(choices))
	copy(replay, choices)
	t.Clear()
	t.replay = replay
	t.Build(polygons)
}

// Clear releases every polygon held by the tree and empties it
func (t *Tree) Clear() {
	for i := range t.nodes {
		for _, p := range t.nodes[i].polygons {
			polygon.Release(p)
		}
	}
	clear(t.nodes)
	t.nodes = t.nodes[:0]
	t.root = NoNode
	t.choices = t.choices[:0]
	t.splits = 0
}

// IsEmpty reports whether the tree holds no nodes
func (t *Tree) IsEmpty() bool {
	return t.root == NoNode
}

// Root returns the root node, or NoNode for an empty tree
func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) newNode(depth int) NodeID {
	t.nodes = append(t.nodes, node{front: NoNode, back: NoNode, depth: depth})
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) nextChoice(polys []polygon.Polygon) int32 {
	if len(t.replay) > 0 {
		c := t.replay[0]
		t.replay = t.replay[1:]
		if c == convexLeafChoice || (c >= 0 && int(c) < len(polys)) {
			return c
		}
		// The recorded decisions no longer fit, evaluate from here on.
		log.Debug().Int32("choice", c).Int("polygons", len(polys)).Msg("dropping replayed splitters")
		t.replay = nil
	}
	if isConvexSet(polys) {
		return convexLeafChoice
	}
	return int32(t.selectSplitter(polys))
}

func (t *Tree) build(polys []polygon.Polygon, depth int) NodeID {
	id := t.newNode(depth)

	choice := t.nextChoice(polys)
	t.choices = append(t.choices, choice)
	if choice == convexLeafChoice {
		t.nodes[id].polygons = polys
		return id
	}

	splitter := polys[choice]
	plane := splitter.Plane()
	onPlane := []polygon.Polygon{splitter}
	var front, back []polygon.Polygon

	for i, p := range polys {
		if i == int(choice) {
			continue
		}
		switch p.Classify(plane) {
		case polygon.SamePlane:
			onPlane = append(onPlane, p)
		case polygon.Front:
			front = append(front, p)
		case polygon.Back:
			back = append(back, p)
		case polygon.SplitNeeded:
			f, b := p.SplitWithPlane(plane)
			if f != nil {
				front = append(front, f)
			}
			if b != nil {
				back = append(back, b)
			}
			polygon.Release(p)
			t.splits++
		}
	}

	t.nodes[id].splitter = plane
	t.nodes[id].hasSplitter = true
	t.nodes[id].polygons = onPlane

	frontID, backID := NoNode, NoNode
	if len(front) > 0 {
		frontID = t.build(front, depth+1)
	}
	if len(back) > 0 {
		backID = t.build(back, depth+1)
	}
	t.nodes[id].front = frontID
	t.nodes[id].back = backID
	return id
}

// isConvexSet reports whether every polygon lies in front of (or on) the plane
// of every other polygon. Such a set needs no further splitting.
func isConvexSet(polys []polygon.Polygon) bool {
	for i, p := range polys {
		plane := p.Plane()
		for j, q := range polys {
			if i == j {
				continue
			}
			switch q.Classify(plane) {
			case polygon.Front, polygon.SamePlane:
			default:
				return false
			}
		}
	}
	return true
}

func (t *Tree) computeBounds(id NodeID) core.AABB3D {
	if id == NoNode {
		return core.EmptyAABB3D()
	}
	b := core.EmptyAABB3D()
	for _, p := range t.nodes[id].polygons {
		b = b.Union(polygon.Bounds(p))
	}
	b = b.Union(t.computeBounds(t.nodes[id].front))
	b = b.Union(t.computeBounds(t.nodes[id].back))
	t.nodes[id].bounds = b
	return b
}

// Polygons returns every polygon stored in the tree, fragments included
func (t *Tree) Polygons() []polygon.Polygon {
	var out []polygon.Polygon
	for i := range t.nodes {
		out = append(out, t.nodes[i].polygons...)
	}
	return out
}

// NodeCount is the number of nodes in the arena
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// Splitter returns the splitting plane of a node; ok is false for convex
// leaves.
func (t *Tree) Splitter(id NodeID) (pl core.Plane, ok bool) {
	if !t.valid(id) {
		return core.Plane{}, false
	}
	return t.nodes[id].splitter, t.nodes[id].hasSplitter
}

// Children returns the front and back children of a node
func (t *Tree) Children(id NodeID) (front, back NodeID) {
	if !t.valid(id) {
		return NoNode, NoNode
	}
	return t.nodes[id].front, t.nodes[id].back
}

// Bounds returns the bounding box of all polygons below a node
func (t *Tree) Bounds(id NodeID) core.AABB3D {
	if !t.valid(id) {
		return core.EmptyAABB3D()
	}
	return t.nodes[id].bounds
}

// Depth returns the depth of a node; the root has depth 0
func (t *Tree) Depth(id NodeID) int {
	if !t.valid(id) {
		return -1
	}
	return t.nodes[id].depth
}

func (t *Tree) valid(id NodeID) bool {
	ok := id >= 0 && int(id) < len(t.nodes)
	core.Assert(ok, "bsp node id out of range")
	return ok
}
