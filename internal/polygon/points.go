package polygon

import (
	"octbsp/internal/core"
)

// ClassifyPoints classifies a vertex ring against pl. Distances within
// core.Epsilon are treated as zero.
func ClassifyPoints(points []core.Vector3D, pl core.Plane) Classification {
	front, back := 0, 0
	for _, p := range points {
		switch pl.Side(p) {
		case 1:
			front++
		case -1:
			back++
		}
	}

	switch {
	case front == 0 && back == 0:
		return SamePlane
	case back == 0:
		return Front
	case front == 0:
		return Back
	default:
		return SplitNeeded
	}
}

// SplitPoints walks the vertex ring and hands every vertex to the side it is
// on. Vertices on the plane go to both sides, and an intersection point is
// emitted to both sides wherever consecutive vertices change sign.
func SplitPoints(points []core.Vector3D, pl core.Plane, emitFront, emitBack func(core.Vector3D)) {
	n := len(points)
	if n == 0 {
		return
	}

	dist := make([]float64, n)
	side := make([]int, n)
	for i, p := range points {
		dist[i] = pl.Classify(p)
		side[i] = core.SnapSide(dist[i])
	}

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a := points[i]

		if side[i] >= 0 {
			emitFront(a)
		}
		if side[i] <= 0 {
			emitBack(a)
		}

		if side[i]*side[j] < 0 {
			t := dist[i] / (dist[i] - dist[j])
			cut := a.Add(points[j].Sub(a).Mul(t))
			emitFront(cut)
			emitBack(cut)
		}
	}
}

// ConvexContains reports whether p, assumed to lie on pl, is inside the convex
// vertex ring (edges included, within core.Epsilon).
func ConvexContains(points []core.Vector3D, pl core.Plane, p core.Vector3D) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		edge := b.Sub(a)
		if edge.Cross(p.Sub(a)).Dot(pl.Normal) < -core.Epsilon*edge.Len() {
			return false
		}
	}
	return true
}

// CoversPoints reports whether the coverer ring completely hides the covered
// ring: both must share a plane and every covered vertex must lie inside the
// coverer.
func CoversPoints(coverer []core.Vector3D, pl core.Plane, covered []core.Vector3D) bool {
	if len(covered) == 0 || ClassifyPoints(covered, pl) != SamePlane {
		return false
	}
	for _, p := range covered {
		if !ConvexContains(coverer, pl, p) {
			return false
		}
	}
	return true
}

// SegmentHit intersects the segment start-end with a convex polygon and
// returns the segment parameter of the hit.
func SegmentHit(p Polygon, start, end core.Vector3D) (float64, bool) {
	pl := p.Plane()
	t, ok := pl.IntersectSegment(start, end)
	if !ok {
		return 0, false
	}
	hit := start.Add(end.Sub(start).Mul(t))
	if !ConvexContains(Vertices(p), pl, hit) {
		return 0, false
	}
	return t, true
}
