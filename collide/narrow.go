package collide

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// MaxContacts is the hard cap on contact points generated for one geom
// pair. Excess points are silently dropped.
const MaxContacts = 8

const contactEpsilon = 1e-9

// Contact is one narrow-phase contact point. Normal is the direction
// that separates the first geom of the colliding pair; Depth is the
// penetration along it.
type Contact struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}

func flip(cs []Contact) []Contact {
	for i := range cs {
		cs[i].Normal = cs[i].Normal.Mul(-1)
	}
	return cs
}

func capContacts(cs []Contact, max int) []Contact {
	if max > MaxContacts {
		max = MaxContacts
	}
	if len(cs) > max {
		cs = cs[:max]
	}
	return cs
}

// Collide generates up to max contact points between two geoms. Contact
// normals separate geom a. Cylinders colliding with anything other than
// a plane are treated as their swept-sphere hull.
func Collide(a, b *actor.Geom, max int) []Contact {
	ta, tb := a.Placement(), b.Placement()

	switch sa := a.Shape().(type) {
	case *actor.Plane:
		if _, ok := b.Shape().(*actor.Plane); ok {
			return nil
		}
		return capContacts(flip(collideWithPlane(b, sa)), max)
	case *actor.TriMesh:
		return capContacts(flip(collideWithMesh(b, sa, ta)), max)
	case *actor.Sphere:
		switch sb := b.Shape().(type) {
		case *actor.Plane:
			return capContacts(collideWithPlane(a, sb), max)
		case *actor.TriMesh:
			return capContacts(collideWithMesh(a, sb, tb), max)
		case *actor.Sphere:
			return capContacts(collideSpheres(ta.Position, sa.Radius, tb.Position, sb.Radius), max)
		case *actor.Box:
			return capContacts(collideSphereBox(ta.Position, sa.Radius, b, sb), max)
		default:
			seg, r := segmentOf(b)
			return capContacts(collideSphereSegment(ta.Position, sa.Radius, seg, r), max)
		}
	case *actor.Box:
		switch sb := b.Shape().(type) {
		case *actor.Plane:
			return capContacts(collideWithPlane(a, sb), max)
		case *actor.TriMesh:
			return capContacts(collideWithMesh(a, sb, tb), max)
		case *actor.Sphere:
			return capContacts(flip(collideSphereBox(tb.Position, sb.Radius, a, sa)), max)
		case *actor.Box:
			return capContacts(collideBoxes(a, sa, b, sb), max)
		default:
			seg, r := segmentOf(b)
			return capContacts(flip(collideSegmentBox(seg, r, a, sa)), max)
		}
	default: // capsule or cylinder hull
		segA, rA := segmentOf(a)
		switch sb := b.Shape().(type) {
		case *actor.Plane:
			return capContacts(collideWithPlane(a, sb), max)
		case *actor.TriMesh:
			return capContacts(collideWithMesh(a, sb, tb), max)
		case *actor.Sphere:
			return capContacts(flip(collideSphereSegment(tb.Position, sb.Radius, segA, rA)), max)
		case *actor.Box:
			return capContacts(collideSegmentBox(segA, rA, b, sb), max)
		default:
			segB, rB := segmentOf(b)
			return capContacts(collideSegments(segA, rA, segB, rB), max)
		}
	}
}

// segment is a world-space line segment.
type segment struct {
	a, b mgl64.Vec3
}

// segmentOf returns the core segment and radius of a capsule or
// cylinder geom (the cylinder's flat caps are approximated by the
// swept-sphere hull away from planes).
func segmentOf(g *actor.Geom) (segment, float64) {
	t := g.Placement()
	var half, r float64
	switch s := g.Shape().(type) {
	case *actor.Capsule:
		half, r = s.Length/2, s.Radius
	case *actor.Cylinder:
		half, r = s.Length/2, s.Radius
	default:
		return segment{t.Position, t.Position}, 0
	}
	axis := t.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
	return segment{
		a: t.Position.Sub(axis.Mul(half)),
		b: t.Position.Add(axis.Mul(half)),
	}, r
}

// collideWithPlane clips the geom's contact feature against an
// infinite plane. Normals separate the geom (push it out of the plane).
func collideWithPlane(g *actor.Geom, p *actor.Plane) []Contact {
	t := g.Placement()
	n := p.Normal.Normalize()

	// The supporting feature in local space, facing into the plane.
	localDir := t.Rotation.Conjugate().Rotate(n.Mul(-1))
	feature := g.Shape().ContactFeature(localDir)
	if feature == nil {
		return nil
	}

	// Spheres and capsules carry their radius in the feature points
	// already (Support includes it), boxes and cylinders are polytopes;
	// either way the world point's signed distance decides.
	var contacts []Contact
	for _, lp := range feature {
		w := t.Apply(lp)
		sep := w.Dot(n) - p.Offset
		if sep >= 0 {
			continue
		}
		contacts = append(contacts, Contact{
			Pos:    w.Sub(n.Mul(sep)),
			Normal: n,
			Depth:  -sep,
		})
		if len(contacts) == MaxContacts {
			break
		}
	}
	return contacts
}

func collideSpheres(pa mgl64.Vec3, ra float64, pb mgl64.Vec3, rb float64) []Contact {
	d := pa.Sub(pb)
	dist := d.Len()
	depth := ra + rb - dist
	if depth <= 0 {
		return nil
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > contactEpsilon {
		n = d.Mul(1 / dist)
	}
	return []Contact{{
		Pos:    pb.Add(n.Mul(rb - depth/2)),
		Normal: n,
		Depth:  depth,
	}}
}

func collideSphereBox(center mgl64.Vec3, radius float64, boxGeom *actor.Geom, box *actor.Box) []Contact {
	t := boxGeom.Placement()
	local := t.ApplyInverse(center)
	h := box.Size.Mul(0.5)

	clamped := local
	inside := true
	for i := 0; i < 3; i++ {
		if clamped[i] < -h[i] {
			clamped[i] = -h[i]
			inside = false
		} else if clamped[i] > h[i] {
			clamped[i] = h[i]
			inside = false
		}
	}

	if inside {
		// Centre inside the box: push out through the nearest face.
		best, bestDist := 0, math.Inf(1)
		sign := 1.0
		for i := 0; i < 3; i++ {
			if d := h[i] - local[i]; d < bestDist {
				best, bestDist, sign = i, d, 1
			}
			if d := local[i] + h[i]; d < bestDist {
				best, bestDist, sign = i, d, -1
			}
		}
		localN := mgl64.Vec3{}
		localN[best] = sign
		n := t.Rotation.Rotate(localN)
		return []Contact{{
			Pos:    center,
			Normal: n,
			Depth:  bestDist + radius,
		}}
	}

	delta := local.Sub(clamped)
	dist := delta.Len()
	depth := radius - dist
	if depth <= 0 {
		return nil
	}
	n := t.Rotation.Rotate(delta.Mul(1 / dist))
	return []Contact{{
		Pos:    t.Apply(clamped),
		Normal: n,
		Depth:  depth,
	}}
}

func collideSphereSegment(center mgl64.Vec3, radius float64, seg segment, segRadius float64) []Contact {
	p := closestPointOnSegment(center, seg)
	return collideSpheres(center, radius, p, segRadius)
}

func collideSegments(sa segment, ra float64, sb segment, rb float64) []Contact {
	pa, pb := closestPointsSegments(sa, sb)
	contacts := collideSpheres(pa, ra, pb, rb)

	// Parallel shafts rest on a line; add the endpoint spheres so the
	// pair doesn't pivot on a single point.
	da := sa.b.Sub(sa.a)
	db := sb.b.Sub(sb.a)
	if da.Len() > contactEpsilon && db.Len() > contactEpsilon {
		cross := da.Normalize().Cross(db.Normalize())
		if cross.Len() < 1e-3 {
			for _, end := range []mgl64.Vec3{sa.a, sa.b} {
				q := closestPointOnSegment(end, sb)
				contacts = append(contacts, collideSpheres(end, ra, q, rb)...)
			}
		}
	}
	return contacts
}

func collideSegmentBox(seg segment, radius float64, boxGeom *actor.Geom, box *actor.Box) []Contact {
	// Sample the capsule shaft against the box. Three samples are
	// enough for stable resting: both caps plus the midpoint.
	samples := []mgl64.Vec3{
		seg.a,
		seg.a.Add(seg.b).Mul(0.5),
		seg.b,
	}
	var contacts []Contact
	for _, p := range samples {
		contacts = append(contacts, collideSphereBox(p, radius, boxGeom, box)...)
	}
	return contacts
}

func collideWithMesh(g *actor.Geom, mesh *actor.TriMesh, meshT actor.Transform) []Contact {
	// Mesh collisions reduce to a swept sphere against each triangle.
	// Boxes use their bounding sphere; good enough for scenery contact.
	var centers []mgl64.Vec3
	var radius float64

	t := g.Placement()
	switch s := g.Shape().(type) {
	case *actor.Sphere:
		centers, radius = []mgl64.Vec3{t.Position}, s.Radius
	case *actor.Box:
		centers, radius = []mgl64.Vec3{t.Position}, s.Size.Len()/2
	default:
		seg, r := segmentOf(g)
		centers, radius = []mgl64.Vec3{seg.a, seg.a.Add(seg.b).Mul(0.5), seg.b}, r
	}

	var contacts []Contact
	for i := 0; i < mesh.TriangleCount(); i++ {
		a, b, c := mesh.Triangle(i, meshT)
		for _, center := range centers {
			p := closestPointOnTriangle(center, a, b, c)
			d := center.Sub(p)
			dist := d.Len()
			depth := radius - dist
			if depth <= 0 || dist < contactEpsilon {
				continue
			}
			contacts = append(contacts, Contact{
				Pos:    p,
				Normal: d.Mul(1 / dist),
				Depth:  depth,
			})
			if len(contacts) == MaxContacts {
				return contacts
			}
		}
	}
	return contacts
}

func closestPointOnSegment(p mgl64.Vec3, s segment) mgl64.Vec3 {
	ab := s.b.Sub(s.a)
	denom := ab.Dot(ab)
	if denom < contactEpsilon {
		return s.a
	}
	t := p.Sub(s.a).Dot(ab) / denom
	t = math.Max(0, math.Min(1, t))
	return s.a.Add(ab.Mul(t))
}

// closestPointsSegments returns the closest pair of points between two
// segments (Ericson, Real-Time Collision Detection §5.1.9).
func closestPointsSegments(s1, s2 segment) (mgl64.Vec3, mgl64.Vec3) {
	d1 := s1.b.Sub(s1.a)
	d2 := s2.b.Sub(s2.a)
	r := s1.a.Sub(s2.a)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < contactEpsilon && e < contactEpsilon:
		s, t = 0, 0
	case a < contactEpsilon:
		t = math.Max(0, math.Min(1, f/e))
	default:
		c := d1.Dot(r)
		if e < contactEpsilon {
			s = math.Max(0, math.Min(1, -c/a))
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > contactEpsilon {
				s = math.Max(0, math.Min(1, (b*f-c*e)/denom))
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = math.Max(0, math.Min(1, -c/a))
			} else if t > 1 {
				t = 1
				s = math.Max(0, math.Min(1, (b-c)/a))
			}
		}
	}
	return s1.a.Add(d1.Mul(s)), s2.a.Add(d2.Mul(t))
}

// closestPointOnTriangle returns the point of triangle abc closest to p
// (Ericson §5.1.5).
func closestPointOnTriangle(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
