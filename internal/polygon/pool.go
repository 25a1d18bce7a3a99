package polygon

import (
	"octbsp/internal/core"
)

// RefCounter is embedded by polygon implementations to provide the reference
// counting half of the Polygon interface.
type RefCounter struct {
	refs int
}

func (r *RefCounter) IncRefCount() {
	r.refs++
}

// DecRefCount drops one reference and returns the remaining count. The count
// never goes below zero.
func (r *RefCounter) DecRefCount() int {
	core.Assert(r.refs > 0, "reference count underflow")
	if r.refs > 0 {
		r.refs--
	}
	return r.refs
}

func (r *RefCounter) RefCount() int {
	return r.refs
}

// Resetter is implemented by pooled objects that clear their state before
// going back on the free list.
type Resetter interface {
	Reset()
}

// Pool hands out polygons, reusing freed instances before asking the factory
// for new ones. Freed objects are never destroyed, only parked on the free
// list.
type Pool[T Polygon] struct {
	factory func() T
	free    []T

	created int
	inUse   int
}

// NewPool creates a pool that builds new instances with factory
func NewPool[T Polygon](factory func() T) *Pool[T] {
	return &Pool[T]{factory: factory}
}

// Alloc returns an instance holding exactly one reference
func (p *Pool[T]) Alloc() T {
	var obj T
	if n := len(p.free); n > 0 {
		obj = p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
	} else {
		obj = p.factory()
		p.created++
	}

	core.Assert(obj.RefCount() == 0, "pooled polygon still referenced")
	obj.IncRefCount()
	p.inUse++
	return obj
}

// Free drops one reference to obj. When no references remain the object is
// reset and moved to the free list.
func (p *Pool[T]) Free(obj T) {
	if obj.RefCount() == 0 {
		core.Assert(false, "double free of pooled polygon")
		return
	}
	if obj.DecRefCount() > 0 {
		return
	}

	if r, ok := any(obj).(Resetter); ok {
		r.Reset()
	}
	p.free = append(p.free, obj)
	p.inUse--
}

// Created is the number of instances the factory has built
func (p *Pool[T]) Created() int {
	return p.created
}

// InUse is the number of instances handed out and not yet freed
func (p *Pool[T]) InUse() int {
	return p.inUse
}

// FreeCount is the number of instances waiting on the free list
func (p *Pool[T]) FreeCount() int {
	return len(p.free)
}
