package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// featureEpsilon decides when a support direction is considered aligned
// with a face or edge rather than a single vertex.
const featureEpsilon = 1e-6

// capRingSegments is the number of rim points sampled when a cylinder
// rests on one of its flat caps.
const capRingSegments = 8

// Shape is the collision geometry attached to a Geom. All queries are
// in the shape's local frame; the Geom supplies the world placement.
type Shape interface {
	// BoundingBox returns the world-space AABB for the shape placed at t.
	BoundingBox(t Transform) AABB
	// Support returns the local point of the shape furthest along dir.
	Support(dir mgl64.Vec3) mgl64.Vec3
	// ContactFeature returns the local points of the face, edge or
	// vertex of the shape most aligned with dir. Used by plane contact
	// generation; shapes with no meaningful feature return nil.
	ContactFeature(dir mgl64.Vec3) []mgl64.Vec3
}

// Box is a rectangular solid described by its full side lengths.
type Box struct {
	Size mgl64.Vec3
}

func (b *Box) half() mgl64.Vec3 {
	return b.Size.Mul(0.5)
}

func (b *Box) BoundingBox(t Transform) AABB {
	h := b.half()
	corners := make([]mgl64.Vec3, 0, 8)
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				corners = append(corners, mgl64.Vec3{sx * h.X(), sy * h.Y(), sz * h.Z()})
			}
		}
	}
	return aabbOfPoints(corners, t)
}

func (b *Box) Support(dir mgl64.Vec3) mgl64.Vec3 {
	h := b.half()
	for i := 0; i < 3; i++ {
		if dir[i] < 0 {
			h[i] = -h[i]
		}
	}
	return h
}

func (b *Box) ContactFeature(dir mgl64.Vec3) []mgl64.Vec3 {
	h := b.half()

	// Per axis: pick the supporting sign, leaving the axis free when the
	// direction is perpendicular to it. One free axis gives an edge, two
	// give a face.
	var fixed [3]float64
	var free []int
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > featureEpsilon:
			fixed[i] = 1
		case dir[i] < -featureEpsilon:
			fixed[i] = -1
		default:
			free = append(free, i)
		}
	}

	point := func(s [3]float64) mgl64.Vec3 {
		return mgl64.Vec3{s[0] * h.X(), s[1] * h.Y(), s[2] * h.Z()}
	}

	switch len(free) {
	case 0:
		return []mgl64.Vec3{point(fixed)}
	case 1:
		lo, hi := fixed, fixed
		lo[free[0]], hi[free[0]] = -1, 1
		return []mgl64.Vec3{point(lo), point(hi)}
	case 2:
		// Face corners in ring order so clippers see a convex quad.
		points := make([]mgl64.Vec3, 0, 4)
		for _, s := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			signs := fixed
			signs[free[0]], signs[free[1]] = s[0], s[1]
			points = append(points, point(signs))
		}
		return points
	default:
		// Degenerate direction: every corner, as the two Z rings.
		points := make([]mgl64.Vec3, 0, 8)
		for _, sz := range []float64{-1, 1} {
			for _, s := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
				points = append(points, point([3]float64{s[0], s[1], sz}))
			}
		}
		return points
	}
}

// Sphere is a ball of the given radius centred on the local origin.
type Sphere struct {
	Radius float64
}

func (s *Sphere) BoundingBox(t Transform) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: t.Position.Sub(r), Max: t.Position.Add(r)}
}

func (s *Sphere) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return safeNormalize(dir).Mul(s.Radius)
}

func (s *Sphere) ContactFeature(dir mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(dir)}
}

// Cylinder is a flat-capped cylinder aligned with the local Z axis.
type Cylinder struct {
	Radius float64
	Length float64
}

func (c *Cylinder) BoundingBox(t Transform) AABB {
	// Conservative: bound the cylinder by its enclosing capsule sphere.
	r := math.Hypot(c.Radius, c.Length/2)
	e := mgl64.Vec3{r, r, r}
	return AABB{Min: t.Position.Sub(e), Max: t.Position.Add(e)}
}

func (c *Cylinder) Support(dir mgl64.Vec3) mgl64.Vec3 {
	p := radialSupport(dir, c.Radius)
	if dir.Z() < 0 {
		p[2] = -c.Length / 2
	} else {
		p[2] = c.Length / 2
	}
	return p
}

func (c *Cylinder) ContactFeature(dir mgl64.Vec3) []mgl64.Vec3 {
	h := c.Length / 2
	axial := math.Abs(dir.Z())
	radial := math.Hypot(dir.X(), dir.Y())

	switch {
	case radial < featureEpsilon || axial > radial*10:
		// Resting on a cap: sample the rim of the supporting cap.
		z := h
		if dir.Z() < 0 {
			z = -h
		}
		points := make([]mgl64.Vec3, 0, capRingSegments)
		for i := 0; i < capRingSegments; i++ {
			a := 2 * math.Pi * float64(i) / capRingSegments
			points = append(points, mgl64.Vec3{c.Radius * math.Cos(a), c.Radius * math.Sin(a), z})
		}
		return points
	case axial < featureEpsilon:
		// Lying on the side: the contact is a line along the hull.
		p := radialSupport(dir, c.Radius)
		return []mgl64.Vec3{
			{p.X(), p.Y(), -h},
			{p.X(), p.Y(), h},
		}
	default:
		// Tilted: a single point on the supporting cap edge.
		return []mgl64.Vec3{c.Support(dir)}
	}
}

// Capsule is a cylinder with hemispherical ends, aligned with the local
// Z axis. Length is the length of the cylindrical section only.
type Capsule struct {
	Radius float64
	Length float64
}

func (c *Capsule) BoundingBox(t Transform) AABB {
	ends := []mgl64.Vec3{{0, 0, -c.Length / 2}, {0, 0, c.Length / 2}}
	box := aabbOfPoints(ends, t)
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	box.Min = box.Min.Sub(r)
	box.Max = box.Max.Add(r)
	return box
}

func (c *Capsule) Support(dir mgl64.Vec3) mgl64.Vec3 {
	p := safeNormalize(dir).Mul(c.Radius)
	if dir.Z() < 0 {
		p[2] -= c.Length / 2
	} else {
		p[2] += c.Length / 2
	}
	return p
}

func (c *Capsule) ContactFeature(dir mgl64.Vec3) []mgl64.Vec3 {
	// Both end spheres pushed along dir; points above the contact plane
	// are discarded by the clipper.
	n := safeNormalize(dir).Mul(c.Radius)
	h := c.Length / 2
	return []mgl64.Vec3{
		n.Add(mgl64.Vec3{0, 0, -h}),
		n.Add(mgl64.Vec3{0, 0, h}),
	}
}

// Plane is an infinite half-space boundary satisfying dot(Normal, p) =
// Offset. Plane geoms are always static.
type Plane struct {
	Normal mgl64.Vec3
	Offset float64
}

func (p *Plane) BoundingBox(Transform) AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{-inf, -inf, -inf},
		Max: mgl64.Vec3{inf, inf, inf},
	}
}

func (p *Plane) Support(mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{} }

func (p *Plane) ContactFeature(mgl64.Vec3) []mgl64.Vec3 { return nil }

// TriMesh is an arbitrary triangle soup, intended for static scenery.
// Indices holds triangle corners as triples into Vertices.
type TriMesh struct {
	Vertices []mgl64.Vec3
	Indices  []int32
}

func (m *TriMesh) BoundingBox(t Transform) AABB {
	if len(m.Vertices) == 0 {
		return AABB{Min: t.Position, Max: t.Position}
	}
	return aabbOfPoints(m.Vertices, t)
}

func (m *TriMesh) Support(dir mgl64.Vec3) mgl64.Vec3 {
	var best mgl64.Vec3
	bestDot := math.Inf(-1)
	for _, v := range m.Vertices {
		if d := v.Dot(dir); d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

func (m *TriMesh) ContactFeature(mgl64.Vec3) []mgl64.Vec3 { return nil }

// Triangle returns the world-space corners of triangle i under t.
func (m *TriMesh) Triangle(i int, t Transform) (a, b, c mgl64.Vec3) {
	a = t.Apply(m.Vertices[m.Indices[3*i]])
	b = t.Apply(m.Vertices[m.Indices[3*i+1]])
	c = t.Apply(m.Vertices[m.Indices[3*i+2]])
	return
}

// TriangleCount returns the number of triangles in the mesh.
func (m *TriMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// radialSupport returns the point on a radius-r circle in the local XY
// plane furthest along dir, with Z left at zero.
func radialSupport(dir mgl64.Vec3, r float64) mgl64.Vec3 {
	d := math.Hypot(dir.X(), dir.Y())
	if d < featureEpsilon {
		return mgl64.Vec3{r, 0, 0}
	}
	return mgl64.Vec3{dir.X() / d * r, dir.Y() / d * r, 0}
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if l := v.Len(); l > featureEpsilon {
		return v.Mul(1 / l)
	}
	return mgl64.Vec3{0, 0, 1}
}
