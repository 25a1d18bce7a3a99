package bsp

import (
	"octbsp/internal/core"
	"octbsp/internal/polygon"
)

// Container groups the polygons handed to a tree and owns the pool their
// split fragments are allocated from. The container holds one reference to
// every polygon created through NewPolygon.
type Container struct {
	pool     *polygon.Pool[*Polygon]
	polygons []*Polygon
}

// NewContainer creates an empty container
func NewContainer() *Container {
	c := &Container{}
	c.pool = polygon.NewPool(func() *Polygon {
		return &Polygon{container: c}
	})
	return c
}

func (c *Container) alloc() *Polygon {
	return c.pool.Alloc()
}

// NewPolygon creates a polygon from a vertex ring. The plane is derived from
// the winding (counter-clockwise faces front).
func (c *Container) NewPolygon(vertices []core.Vector3D, originator any) *Polygon {
	p := c.alloc()
	for _, v := range vertices {
		p.AddVertex(v)
	}
	p.ComputePlane()
	p.originator = originator
	c.polygons = append(c.polygons, p)
	return p
}

// Polygons returns the container's polygons as the tree interface
func (c *Container) Polygons() []polygon.Polygon {
	out := make([]polygon.Polygon, len(c.polygons))
	for i, p := range c.polygons {
		out[i] = p
	}
	return out
}

// Len is the number of polygons created through NewPolygon
func (c *Container) Len() int {
	return len(c.polygons)
}

// Bounds returns the bounding box of every polygon in the container
func (c *Container) Bounds() core.AABB3D {
	b := core.EmptyAABB3D()
	for _, p := range c.polygons {
		for _, v := range p.Vertices() {
			b = b.AddPoint(v)
		}
	}
	return b
}

// Clear releases the container's references. Polygons still held by a tree
// stay alive until that tree is cleared.
func (c *Container) Clear() {
	for _, p := range c.polygons {
		p.Release()
	}
	c.polygons = nil
}

// Pool exposes the fragment pool, mainly for statistics
func (c *Container) Pool() *polygon.Pool[*Polygon] {
	return c.pool
}
