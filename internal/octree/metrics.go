package octree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octbsp_octree_builds_total",
		Help: "The total number of octree builds.",
	})

	nodesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octbsp_octree_nodes",
		Help: "Number of nodes in the most recently built octree.",
	})

	leavesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octbsp_octree_leaves",
		Help: "Number of leaves in the most recently built octree.",
	})

	dynamicPolygons = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octbsp_octree_dynamic_polygons",
		Help: "Number of dynamic polygons currently attached to all octrees.",
	})

	cacheLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "octbsp_octree_cache_loads_total",
		Help: "The total number of octree cache loads by result.",
	}, []string{"result"})
)

func instrumentBuild(s Stats) {
	buildsTotal.Inc()
	nodesGauge.Set(float64(s.Nodes))
	leavesGauge.Set(float64(s.Leaves))
}
