package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Overlaps reports whether the two boxes intersect on all three axes.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max.X() >= b.Min.X() && a.Min.X() <= b.Max.X() &&
		a.Max.Y() >= b.Min.Y() && a.Min.Y() <= b.Max.Y() &&
		a.Max.Z() >= b.Min.Z() && a.Min.Z() <= b.Max.Z()
}

// Contains reports whether p lies inside the box.
func (a AABB) Contains(p mgl64.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// Unbounded reports whether the box extends to infinity on any axis,
// as is the case for plane geometry.
func (a AABB) Unbounded() bool {
	for i := 0; i < 3; i++ {
		if math.IsInf(a.Min[i], -1) || math.IsInf(a.Max[i], 1) {
			return true
		}
	}
	return false
}

// aabbOfPoints builds the bounding box of a point cloud transformed by t.
func aabbOfPoints(points []mgl64.Vec3, t Transform) AABB {
	w := t.Apply(points[0])
	box := AABB{Min: w, Max: w}
	for _, p := range points[1:] {
		w = t.Apply(p)
		for i := 0; i < 3; i++ {
			box.Min[i] = math.Min(box.Min[i], w[i])
			box.Max[i] = math.Max(box.Max[i], w[i])
		}
	}
	return box
}
