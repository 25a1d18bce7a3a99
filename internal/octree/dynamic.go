package octree

import (
	"octbsp/internal/core"
	"octbsp/internal/polygon"

	"github.com/rs/zerolog/log"
)

// AddDynamicPolygons attaches polygons to the smallest node whose box fully
// encloses each of them, leaving the static partition untouched. Polygons
// that do not fit inside the root box are kept at the root. The octree takes
// a reference to every polygon until RemoveDynamicPolygons.
func (o *Octree) AddDynamicPolygons(polys []polygon.Polygon) {
	if o.root == NoNode {
		o.Build(nil)
	}

	added := 0
	for _, p := range polys {
		if p == nil {
			continue
		}
		p.IncRefCount()
		added++

		b := polygon.Bounds(p)
		id := o.root
		for !o.nodes[id].leaf {
			child := o.nodes[id].children[octantOf(b.Center(), o.nodes[id].center)]
			if !containsBox(o.nodes[child].bounds, b) {
				break
			}
			id = child
		}

		n := &o.nodes[id]
		n.dynamic = append(n.dynamic, p)
		n.extent = n.extent.Union(b)
	}
	o.dynamic += added

	log.Debug().Int("added", added).Int("dynamic", o.dynamic).Msg("dynamic polygons added")
	dynamicPolygons.Add(float64(added))
}

// RemoveDynamicPolygons releases every dynamic polygon. The static nodes and
// their mini-BSPs are not affected.
func (o *Octree) RemoveDynamicPolygons() {
	if o.dynamic == 0 {
		return
	}
	for i := range o.nodes {
		n := &o.nodes[i]
		for _, p := range n.dynamic {
			polygon.Release(p)
		}
		n.dynamic = nil
		n.extent = n.bounds
	}

	log.Debug().Int("removed", o.dynamic).Msg("dynamic polygons removed")
	dynamicPolygons.Sub(float64(o.dynamic))
	o.dynamic = 0
}

// DynamicCount is the number of dynamic polygons currently attached
func (o *Octree) DynamicCount() int {
	return o.dynamic
}

func containsBox(outer, inner core.AABB3D) bool {
	return outer.Contains(inner.Min) && outer.Contains(inner.Max)
}
