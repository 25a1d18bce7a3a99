package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Frustum holds the six planes of a view frustum (left, right, bottom, top,
// near, far) with normals pointing inward.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the frustum planes from a combined
// view-projection matrix (Gribb/Hartmann).
func FrustumFromMatrix(vp mgl64.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	rows := [6]mgl64.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}

	var f Frustum
	for i, r := range rows {
		f.Planes[i] = normalizePlane(Plane{Normal: r.Vec3(), Distance: r[3]})
	}
	return f
}

// PerspectiveFrustum builds the frustum of a camera at eye looking at
// center.
func PerspectiveFrustum(eye, center, up Vector3D, fovy, aspect, near, far float64) Frustum {
	proj := mgl64.Perspective(mgl64.DegToRad(fovy), aspect, near, far)
	view := mgl64.LookAtV(eye, center, up)
	return FrustumFromMatrix(proj.Mul4(view))
}

func normalizePlane(p Plane) Plane {
	length := p.Normal.Len()
	if length == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / length), Distance: p.Distance / length}
}

// ContainsPoint reports whether p is inside all six planes
func (f Frustum) ContainsPoint(p Vector3D) bool {
	for _, pl := range f.Planes {
		if pl.Classify(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB checks the box against all six planes using the positive
// vertex. The test is conservative: boxes near frustum corners may pass.
func (f Frustum) IntersectsAABB(b AABB3D) bool {
	for _, pl := range f.Planes {
		positive := b.Min
		for i := 0; i < 3; i++ {
			if pl.Normal[i] >= 0 {
				positive[i] = b.Max[i]
			}
		}

		if pl.Classify(positive) < 0 {
			return false
		}
	}
	return true
}
