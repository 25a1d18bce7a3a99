// Package polygon defines the capability interface shared by every polygon
// kind that can be stored in the spatial trees, together with the
// classify/split primitives and the reusable object pool.
package polygon

import (
	"octbsp/internal/core"
)

// Classification is the position of a polygon relative to a plane
type Classification int

const (
	SamePlane Classification = iota
	Front
	Back
	SplitNeeded
)

func (c Classification) String() string {
	switch c {
	case SamePlane:
		return "same-plane"
	case Front:
		return "front"
	case Back:
		return "back"
	case SplitNeeded:
		return "split-needed"
	default:
		return "unknown"
	}
}

// Kind identifies the concrete polygon implementation
type Kind int

const (
	KindUnknown Kind = iota
	KindBSP

	// KindUser is the first value available to polygon kinds defined outside
	// this module.
	KindUser Kind = 100
)

// Polygon is any convex polygon usable in the spatial trees.
//
// Reference counts track how many holders (containers, trees, pools) keep the
// polygon alive. Trees take a reference for every polygon they store and give
// it back through Release when they are cleared.
type Polygon interface {
	// Plane is the supporting plane of the polygon.
	Plane() core.Plane
	VertexCount() int
	Vertex(i int) core.Vector3D

	// Classify tests every vertex against pl.
	Classify(pl core.Plane) Classification
	// SplitWithPlane cuts the polygon in two. Either side is nil when it
	// would be degenerate. Both halves keep the original winding and hold
	// one reference owned by the caller.
	SplitWithPlane(pl core.Plane) (front, back Polygon)
	// Covers reports whether this polygon could completely obscure other.
	Covers(other Polygon) bool
	// UnsplitPolygon returns the polygon this one was split from, or itself.
	UnsplitPolygon() Polygon
	Kind() Kind

	IncRefCount()
	DecRefCount() int
	RefCount() int
}

// Releaser is implemented by polygons that know how to give themselves back
// to the pool they came from.
type Releaser interface {
	Release()
}

// Release drops one reference to p, returning it to its pool when the
// implementation supports that.
func Release(p Polygon) {
	if p == nil {
		return
	}
	if r, ok := p.(Releaser); ok {
		r.Release()
		return
	}
	p.DecRefCount()
}

// Visitor receives polygon groups in traversal order. samePlane is true when
// every polygon in the group lies on one splitting plane. Returning true stops
// the traversal.
type Visitor func(polygons []Polygon, samePlane bool) bool

// Vertices copies the vertices of p
func Vertices(p Polygon) []core.Vector3D {
	out := make([]core.Vector3D, p.VertexCount())
	for i := range out {
		out[i] = p.Vertex(i)
	}
	return out
}

// Bounds returns the bounding box of p
func Bounds(p Polygon) core.AABB3D {
	b := core.EmptyAABB3D()
	for i := 0; i < p.VertexCount(); i++ {
		b = b.AddPoint(p.Vertex(i))
	}
	return b
}

// Center returns the vertex average of p
func Center(p Polygon) core.Vector3D {
	var c core.Vector3D
	n := p.VertexCount()
	if n == 0 {
		return c
	}
	for i := 0; i < n; i++ {
		c = c.Add(p.Vertex(i))
	}
	return c.Mul(1 / float64(n))
}
