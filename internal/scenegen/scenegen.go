// Package scenegen builds simple polygon scenes: boxes, rooms and floor
// grids. The CLI, the examples and the tree tests use it to get repeatable
// input.
package scenegen

import (
	"fmt"
	"math/rand"

	"octbsp/internal/bsp"
	"octbsp/internal/core"
	"octbsp/internal/polygon"
)

// BoxFaces lists the corner rings of the six box faces, counter-clockwise
// seen from outside: -X, +X, -Y, +Y, -Z, +Z.
var BoxFaces = [6][4]int{
	{0, 1, 3, 2},
	{4, 6, 7, 5},
	{0, 4, 5, 1},
	{2, 3, 7, 6},
	{0, 2, 6, 4},
	{1, 5, 7, 3},
}

// Face is the originator attached to every generated polygon
type Face struct {
	Object string
	Index  int
}

func (f Face) String() string {
	return fmt.Sprintf("%s#%d", f.Object, f.Index)
}

// Box adds the six outward facing faces of b
func Box(c *bsp.Container, b core.AABB3D, name string) []polygon.Polygon {
	return box(c, b, name, false)
}

// Room adds the six faces of b facing inward, as seen by a viewer inside
func Room(c *bsp.Container, b core.AABB3D, name string) []polygon.Polygon {
	return box(c, b, name, true)
}

func box(c *bsp.Container, b core.AABB3D, name string, inward bool) []polygon.Polygon {
	out := make([]polygon.Polygon, 0, len(BoxFaces))
	for i, face := range BoxFaces {
		ring := make([]core.Vector3D, len(face))
		for j, corner := range face {
			if inward {
				corner = face[len(face)-1-j]
			}
			ring[j] = b.Corner(corner)
		}
		out = append(out, c.NewPolygon(ring, Face{Object: name, Index: i}))
	}
	return out
}

// Grid adds nx by nz upward facing square tiles of the given size on the
// plane y = origin.Y, starting at origin.
func Grid(c *bsp.Container, origin core.Vector3D, nx, nz int, size float64, name string) []polygon.Polygon {
	out := make([]polygon.Polygon, 0, nx*nz)
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			x0 := origin[0] + float64(i)*size
			z0 := origin[2] + float64(k)*size
			y := origin[1]
			ring := []core.Vector3D{
				core.Vec3(x0, y, z0),
				core.Vec3(x0, y, z0+size),
				core.Vec3(x0+size, y, z0+size),
				core.Vec3(x0+size, y, z0),
			}
			out = append(out, c.NewPolygon(ring, Face{Object: name, Index: i*nz + k}))
		}
	}
	return out
}

// RandomBoxes scatters n boxes with edge lengths between minSize and maxSize
// inside area. The same rng seed always gives the same scene.
func RandomBoxes(c *bsp.Container, rng *rand.Rand, n int, area core.AABB3D, minSize, maxSize float64) []polygon.Polygon {
	var out []polygon.Polygon
	span := area.Size()
	for i := 0; i < n; i++ {
		var size, lo core.Vector3D
		for axis := 0; axis < 3; axis++ {
			size[axis] = minSize + rng.Float64()*(maxSize-minSize)
			room := span[axis] - size[axis]
			if room < 0 {
				size[axis], room = span[axis], 0
			}
			lo[axis] = area.Min[axis] + rng.Float64()*room
		}
		b := core.AABB3D{Min: lo, Max: lo.Add(size)}
		out = append(out, Box(c, b, fmt.Sprintf("box%d", i))...)
	}
	return out
}

// Level builds the standard test scene: an inward facing room holding a
// floor grid and count random boxes.
func Level(c *bsp.Container, seed int64, count int) []polygon.Polygon {
	bounds := core.AABB3D{Min: core.Vec3(-50, 0, -50), Max: core.Vec3(50, 30, 50)}
	rng := rand.New(rand.NewSource(seed))

	polys := Room(c, bounds, "room")
	polys = append(polys, Grid(c, core.Vec3(-40, 0.5, -40), 8, 8, 10, "floor")...)
	inner := core.AABB3D{Min: core.Vec3(-45, 1, -45), Max: core.Vec3(45, 25, 45)}
	polys = append(polys, RandomBoxes(c, rng, count, inner, 1, 8)...)
	return polys
}
