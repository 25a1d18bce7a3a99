package bsp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bspBuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octbsp_bsp_builds_total",
		Help: "The total number of BSP trees built.",
	})

	bspPolygonsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octbsp_bsp_polygons_total",
		Help: "The total number of polygons handed to BSP builds.",
	})

	bspSplitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octbsp_bsp_splits_total",
		Help: "The total number of polygon splits made while building BSP trees.",
	})
)

func instrumentBuild(polygons, splits int) {
	bspBuildsTotal.Inc()
	bspPolygonsTotal.Add(float64(polygons))
	bspSplitsTotal.Add(float64(splits))
}
