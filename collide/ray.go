package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// RayHit reports the nearest geom intersected by a ray.
type RayHit struct {
	Geom     *actor.Geom
	Pos      mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// RayCast fires a ray from origin along dir (need not be unit length)
// up to maxDist and returns the nearest hit. filter may be nil;
// returning false from it excludes a geom from the query.
func (s *Space) RayCast(origin, dir mgl64.Vec3, maxDist float64, filter func(*actor.Geom) bool) (RayHit, bool) {
	l := dir.Len()
	if l < contactEpsilon {
		return RayHit{}, false
	}
	dir = dir.Mul(1 / l)

	best := RayHit{Distance: maxDist}
	found := false

	s.Geoms(func(g *actor.Geom) {
		if filter != nil && !filter(g) {
			return
		}
		if t, n, ok := rayGeom(origin, dir, best.Distance, g); ok {
			best = RayHit{
				Geom:     g,
				Pos:      origin.Add(dir.Mul(t)),
				Normal:   n,
				Distance: t,
			}
			found = true
		}
	})
	return best, found
}

func rayGeom(origin, dir mgl64.Vec3, maxDist float64, g *actor.Geom) (float64, mgl64.Vec3, bool) {
	switch shape := g.Shape().(type) {
	case *actor.Sphere:
		return raySphere(origin, dir, maxDist, g.Position(), shape.Radius)
	case *actor.Plane:
		return rayPlane(origin, dir, maxDist, shape)
	case *actor.Box:
		return rayBox(origin, dir, maxDist, g, shape)
	default:
		// Capsules, cylinders, and meshes fall back to their AABB;
		// precise enough for picking.
		return rayAABB(origin, dir, maxDist, g.AABB())
	}
}

func raySphere(origin, dir mgl64.Vec3, maxDist float64, center mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	m := origin.Sub(center)
	b := m.Dot(dir)
	c := m.Dot(m) - radius*radius
	if c > 0 && b > 0 {
		return 0, mgl64.Vec3{}, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, mgl64.Vec3{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		t = 0 // started inside
	}
	if t >= maxDist {
		return 0, mgl64.Vec3{}, false
	}
	hit := origin.Add(dir.Mul(t))
	n := hit.Sub(center)
	if nl := n.Len(); nl > contactEpsilon {
		n = n.Mul(1 / nl)
	}
	return t, n, true
}

func rayPlane(origin, dir mgl64.Vec3, maxDist float64, p *actor.Plane) (float64, mgl64.Vec3, bool) {
	n := p.Normal.Normalize()
	denom := dir.Dot(n)
	if math.Abs(denom) < contactEpsilon {
		return 0, mgl64.Vec3{}, false
	}
	t := (p.Offset - origin.Dot(n)) / denom
	if t < 0 || t >= maxDist {
		return 0, mgl64.Vec3{}, false
	}
	if denom > 0 {
		n = n.Mul(-1)
	}
	return t, n, true
}

func rayBox(origin, dir mgl64.Vec3, maxDist float64, g *actor.Geom, box *actor.Box) (float64, mgl64.Vec3, bool) {
	// Slab test in the box's local frame.
	tr := g.Placement()
	localO := tr.ApplyInverse(origin)
	localD := tr.Rotation.Conjugate().Rotate(dir)
	h := box.Size.Mul(0.5)

	tmin, tmax := 0.0, maxDist
	axis, axisSign := -1, 1.0
	for i := 0; i < 3; i++ {
		if math.Abs(localD[i]) < contactEpsilon {
			if localO[i] < -h[i] || localO[i] > h[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		inv := 1 / localD[i]
		t1 := (-h[i] - localO[i]) * inv
		t2 := (h[i] - localO[i]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			axis, axisSign = i, sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, mgl64.Vec3{}, false
		}
	}
	if axis < 0 {
		// Ray starts inside the box.
		return 0, dir.Mul(-1), true
	}
	var localN mgl64.Vec3
	localN[axis] = axisSign
	return tmin, tr.Rotation.Rotate(localN), true
}

func rayAABB(origin, dir mgl64.Vec3, maxDist float64, bb actor.AABB) (float64, mgl64.Vec3, bool) {
	tmin, tmax := 0.0, maxDist
	axis, axisSign := -1, 1.0
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < contactEpsilon {
			if origin[i] < bb.Min[i] || origin[i] > bb.Max[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (bb.Min[i] - origin[i]) * inv
		t2 := (bb.Max[i] - origin[i]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			axis, axisSign = i, sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, mgl64.Vec3{}, false
		}
	}
	if axis < 0 {
		return 0, dir.Mul(-1), true
	}
	var n mgl64.Vec3
	n[axis] = axisSign
	return tmin, n, true
}
