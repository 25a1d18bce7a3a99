package bsp

import (
	"github.com/rs/zerolog/log"
)

// Stats summarizes the shape of a tree
type Stats struct {
	Nodes           int `json:"nodes"`
	ConvexLeaves    int `json:"convex_leaves"`
	MaxDepth        int `json:"max_depth"`
	Polygons        int `json:"polygons"`
	Splits          int `json:"splits"`
	MaxNodePolygons int `json:"max_node_polygons"`
}

// Statistics walks the arena and gathers node counts, depth and polygon
// distribution.
func (t *Tree) Statistics() Stats {
	s := Stats{Splits: t.splits}
	for i := range t.nodes {
		n := &t.nodes[i]
		s.Nodes++
		if !n.hasSplitter {
			s.ConvexLeaves++
		}
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
		s.Polygons += len(n.polygons)
		if len(n.polygons) > s.MaxNodePolygons {
			s.MaxNodePolygons = len(n.polygons)
		}
	}
	return s
}

// Add merges o into s, keeping maxima
func (s *Stats) Add(o Stats) {
	s.Nodes += o.Nodes
	s.ConvexLeaves += o.ConvexLeaves
	s.Polygons += o.Polygons
	s.Splits += o.Splits
	s.MaxDepth = max(s.MaxDepth, o.MaxDepth)
	s.MaxNodePolygons = max(s.MaxNodePolygons, o.MaxNodePolygons)
}

// Log writes the statistics as one info event
func (s Stats) Log() {
	log.Info().
		Int("nodes", s.Nodes).
		Int("convex_leaves", s.ConvexLeaves).
		Int("max_depth", s.MaxDepth).
		Int("polygons", s.Polygons).
		Int("splits", s.Splits).
		Int("max_node_polygons", s.MaxNodePolygons).
		Msg("bsp statistics")
}
