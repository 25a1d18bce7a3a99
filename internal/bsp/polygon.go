package bsp

import (
	"octbsp/internal/core"
	"octbsp/internal/polygon"
)

const initialVertices = 4

// Polygon is the polygon representation used while building trees: a flat
// vertex array it owns exclusively, the supporting plane and a non-owning
// reference to the engine polygon it was created for.
type Polygon struct {
	polygon.RefCounter

	vertices    []core.Vector3D
	numVertices int
	maxVertices int

	plane      core.Plane
	originator any
	unsplit    polygon.Polygon
	container  *Container
}

// AddVertex appends v, doubling the vertex array when it is full, and returns
// the index of the new vertex.
func (p *Polygon) AddVertex(v core.Vector3D) int {
	if p.numVertices >= p.maxVertices {
		newMax := p.maxVertices * 2
		if newMax == 0 {
			newMax = initialVertices
		}
		grown := make([]core.Vector3D, newMax)
		copy(grown, p.vertices[:p.numVertices])
		p.vertices = grown
		p.maxVertices = newMax
	}
	p.vertices[p.numVertices] = v
	p.numVertices++
	return p.numVertices - 1
}

// Capacity is the number of vertices the array holds before growing
func (p *Polygon) Capacity() int {
	return p.maxVertices
}

// Vertices returns the live part of the vertex array. The slice is only valid
// until the next AddVertex.
func (p *Polygon) Vertices() []core.Vector3D {
	return p.vertices[:p.numVertices]
}

// ComputePlane derives the supporting plane from the vertex ring
func (p *Polygon) ComputePlane() {
	p.plane = core.PlaneFromPoints(p.Vertices())
}

// Originator is the engine polygon this polygon stands for
func (p *Polygon) Originator() any {
	return p.originator
}

// Container returns the container that allocated p
func (p *Polygon) Container() *Container {
	return p.container
}

func (p *Polygon) Plane() core.Plane {
	return p.plane
}

func (p *Polygon) VertexCount() int {
	return p.numVertices
}

func (p *Polygon) Vertex(i int) core.Vector3D {
	core.Assert(i >= 0 && i < p.numVertices, "vertex index out of range")
	return p.vertices[i]
}

func (p *Polygon) Classify(pl core.Plane) polygon.Classification {
	return polygon.ClassifyPoints(p.Vertices(), pl)
}

// SplitWithPlane allocates both halves from the container pool. A half with
// fewer than three vertices is returned to the pool and reported as nil.
func (p *Polygon) SplitWithPlane(pl core.Plane) (polygon.Polygon, polygon.Polygon) {
	front := p.container.alloc()
	back := p.container.alloc()

	polygon.SplitPoints(p.Vertices(), pl,
		func(v core.Vector3D) { front.AddVertex(v) },
		func(v core.Vector3D) { back.AddVertex(v) })

	var f, b polygon.Polygon
	for _, half := range []*Polygon{front, back} {
		if half.numVertices < 3 {
			half.Release()
			continue
		}
		half.plane = p.plane
		half.originator = p.originator
		half.unsplit = p.UnsplitPolygon()
		if half == front {
			f = half
		} else {
			b = half
		}
	}
	return f, b
}

// Covers is conservative: p covers other only when other lies on the same
// plane and inside p.
func (p *Polygon) Covers(other polygon.Polygon) bool {
	return polygon.CoversPoints(p.Vertices(), p.plane, polygon.Vertices(other))
}

func (p *Polygon) UnsplitPolygon() polygon.Polygon {
	if p.unsplit != nil {
		return p.unsplit
	}
	return p
}

func (p *Polygon) Kind() polygon.Kind {
	return polygon.KindBSP
}

// Release gives one reference back to the container pool
func (p *Polygon) Release() {
	if p.container == nil {
		p.DecRefCount()
		return
	}
	p.container.pool.Free(p)
}

// Reset clears the polygon for reuse, keeping the vertex array
func (p *Polygon) Reset() {
	p.numVertices = 0
	p.plane = core.Plane{}
	p.originator = nil
	p.unsplit = nil
}
