package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the distance under which a point counts as lying on a plane
const Epsilon = 0.001

// Vector3D represents a 3D coordinate/vector
type Vector3D = mgl64.Vec3

// Vec3 builds a Vector3D from its components
func Vec3(x, y, z float64) Vector3D {
	return Vector3D{x, y, z}
}

// Axis selects one of the three coordinate axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// AABB3D (Axis-Aligned Bounding Box) represents a box in 3D space
type AABB3D struct {
	Min, Max Vector3D
}

// NewAABB3D creates a box from two opposite corners in any order
func NewAABB3D(a, b Vector3D) AABB3D {
	return AABB3D{
		Min: Vec3(math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])),
		Max: Vec3(math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])),
	}
}

// EmptyAABB3D returns a box that contains nothing; AddPoint grows it
func EmptyAABB3D() AABB3D {
	inf := math.Inf(1)
	return AABB3D{
		Min: Vec3(inf, inf, inf),
		Max: Vec3(-inf, -inf, -inf),
	}
}

// IsEmpty reports whether max < min on any axis
func (b AABB3D) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// AddPoint returns the box grown to include p
func (b AABB3D) AddPoint(p Vector3D) AABB3D {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes
func (b AABB3D) Union(o AABB3D) AABB3D {
	if o.IsEmpty() {
		return b
	}
	return b.AddPoint(o.Min).AddPoint(o.Max)
}

// Center returns the box midpoint
func (b AABB3D) Center() Vector3D {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis
func (b AABB3D) Size() Vector3D {
	return b.Max.Sub(b.Min)
}

// Corner returns one of the eight box corners. Corners are numbered with
// bit 2 selecting Max.X, bit 1 Max.Y and bit 0 Max.Z, so corner 0 is Min and
// corner 7 is Max.
func (b AABB3D) Corner(i int) Vector3D {
	c := b.Min
	if i&4 != 0 {
		c[0] = b.Max[0]
	}
	if i&2 != 0 {
		c[1] = b.Max[1]
	}
	if i&1 != 0 {
		c[2] = b.Max[2]
	}
	return c
}

// Octant returns the child box i when the box is cut at center. The bit
// layout matches Corner: bit 2 is the high X half, bit 1 high Y, bit 0 high Z.
func (b AABB3D) Octant(i int, center Vector3D) AABB3D {
	child := AABB3D{Min: b.Min, Max: center}
	for axis, bit := range [3]int{4, 2, 1} {
		if i&bit != 0 {
			child.Min[axis] = center[axis]
			child.Max[axis] = b.Max[axis]
		}
	}
	return child
}

// Pad grows the box by d on every side
func (b AABB3D) Pad(d float64) AABB3D {
	return AABB3D{
		Min: b.Min.Sub(Vec3(d, d, d)),
		Max: b.Max.Add(Vec3(d, d, d)),
	}
}

// Contains reports whether p lies inside or on the box
func (b AABB3D) Contains(p Vector3D) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Intersects reports whether two boxes overlap
func (b AABB3D) Intersects(o AABB3D) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// IntersectsSegment reports whether the segment start-end touches the box
// (slab test).
func (b AABB3D) IntersectsSegment(start, end Vector3D) bool {
	tmin, tmax := 0.0, 1.0
	dir := end.Sub(start)
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if start[i] < b.Min[i] || start[i] > b.Max[i] {
				return false
			}
			continue
		}
		t1 := (b.Min[i] - start[i]) / dir[i]
		t2 := (b.Max[i] - start[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// Plane represents a plane in 3D space (Normal·p + Distance = 0). Points
// with a positive signed distance are in front of the plane.
type Plane struct {
	Normal   Vector3D
	Distance float64
}

// NewPlane creates the plane with the given normal through point
func NewPlane(normal, point Vector3D) Plane {
	return Plane{Normal: normal, Distance: -normal.Dot(point)}
}

// AxisPlane returns the plane perpendicular to axis at value, facing the
// positive direction of the axis.
func AxisPlane(axis Axis, value float64) Plane {
	var n Vector3D
	n[axis] = 1
	return Plane{Normal: n, Distance: -value}
}

// PlaneFromPoints computes a normalized plane from a polygon outline using
// Newell's method. Counter-clockwise winding (right-handed) faces the viewer.
func PlaneFromPoints(points []Vector3D) Plane {
	if len(points) < 3 {
		return Plane{}
	}

	var normal, centroid Vector3D
	for i, cur := range points {
		next := points[(i+1)%len(points)]
		normal[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		normal[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		normal[2] += (cur[0] - next[0]) * (cur[1] + next[1])
		centroid = centroid.Add(cur)
	}
	centroid = centroid.Mul(1 / float64(len(points)))

	length := normal.Len()
	if length == 0 {
		return Plane{}
	}
	normal = normal.Mul(1 / length)
	return NewPlane(normal, centroid)
}

// Classify returns the signed distance from p to the plane
func (pl Plane) Classify(p Vector3D) float64 {
	return pl.Normal.Dot(p) + pl.Distance
}

// Side snaps the signed distance of p to -1, 0 or 1 using Epsilon
func (pl Plane) Side(p Vector3D) int {
	return SnapSide(pl.Classify(p))
}

// SnapSide turns a signed distance into -1, 0 or 1 using Epsilon
func SnapSide(d float64) int {
	switch {
	case d > Epsilon:
		return 1
	case d < -Epsilon:
		return -1
	default:
		return 0
	}
}

// Flip returns the same plane facing the other way
func (pl Plane) Flip() Plane {
	return Plane{Normal: pl.Normal.Mul(-1), Distance: -pl.Distance}
}

// IsZero reports whether the plane is degenerate
func (pl Plane) IsZero() bool {
	return pl.Normal.Dot(pl.Normal) == 0
}

// ApproxEqual compares two planes within Epsilon
func (pl Plane) ApproxEqual(o Plane) bool {
	return pl.Normal.ApproxEqualThreshold(o.Normal, Epsilon) &&
		math.Abs(pl.Distance-o.Distance) < Epsilon
}

// IntersectSegment returns the parameter t in [0,1] where the segment
// start-end crosses the plane.
func (pl Plane) IntersectSegment(start, end Vector3D) (float64, bool) {
	denom := pl.Normal.Dot(end.Sub(start))
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := -pl.Classify(start) / denom
	if t < 0 || t > 1 {
		return t, false
	}
	return t, true
}
