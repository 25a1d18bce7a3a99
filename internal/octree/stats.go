package octree

import (
	"math/bits"

	"octbsp/internal/bsp"

	"github.com/rs/zerolog/log"
)

// HistogramBuckets is the number of buckets in Stats.LeafHistogram
const HistogramBuckets = 8

// Stats summarizes an octree for tuning BSPNum
type Stats struct {
	Nodes           int `json:"nodes"`
	Leaves          int `json:"leaves"`
	EmptyLeaves     int `json:"empty_leaves"`
	MaxDepth        int `json:"max_depth"`
	Polygons        int `json:"polygons"`
	Splits          int `json:"splits"`
	DynamicPolygons int `json:"dynamic_polygons"`
	MaxLeafPolygons int `json:"max_leaf_polygons"`

	// LeafHistogram counts leaves by polygon count: bucket 0 holds empty
	// leaves, bucket k holds leaves with 2^(k-1) to 2^k-1 polygons and the
	// last bucket everything above.
	LeafHistogram [HistogramBuckets]int `json:"leaf_histogram"`

	BSP bsp.Stats `json:"bsp"`
}

// Statistics walks every node and aggregates the mini-BSP statistics
func (o *Octree) Statistics() Stats {
	s := Stats{Splits: o.splits, DynamicPolygons: o.dynamic}
	for i := range o.nodes {
		n := &o.nodes[i]
		s.Nodes++
		s.MaxDepth = max(s.MaxDepth, n.depth)
		if !n.leaf {
			continue
		}

		s.Leaves++
		count := 0
		if n.minibsp != nil {
			ts := n.minibsp.Statistics()
			s.BSP.Add(ts)
			count = ts.Polygons
		}
		if count == 0 {
			s.EmptyLeaves++
		}
		s.Polygons += count
		s.MaxLeafPolygons = max(s.MaxLeafPolygons, count)
		s.LeafHistogram[histogramBucket(count)]++
	}
	return s
}

func histogramBucket(count int) int {
	return min(bits.Len(uint(count)), HistogramBuckets-1)
}

// Log writes the statistics as one info event
func (s Stats) Log() {
	log.Info().
		Int("nodes", s.Nodes).
		Int("leaves", s.Leaves).
		Int("empty_leaves", s.EmptyLeaves).
		Int("max_depth", s.MaxDepth).
		Int("polygons", s.Polygons).
		Int("splits", s.Splits).
		Int("dynamic_polygons", s.DynamicPolygons).
		Int("max_leaf_polygons", s.MaxLeafPolygons).
		Ints("leaf_histogram", s.LeafHistogram[:]).
		Int("bsp_nodes", s.BSP.Nodes).
		Int("bsp_splits", s.BSP.Splits).
		Msg("octree statistics")
}
