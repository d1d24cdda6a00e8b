package collide

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

func geomAt(s actor.Shape, pos mgl64.Vec3) *actor.Geom {
	g := actor.NewGeom(s)
	g.SetPosition(pos)
	return g
}

func TestSphereSphere(t *testing.T) {
	a := geomAt(&actor.Sphere{Radius: 1}, mgl64.Vec3{0, 1.5, 0})
	b := geomAt(&actor.Sphere{Radius: 1}, mgl64.Vec3{0, 0, 0})

	cs := Collide(a, b, MaxContacts)
	if len(cs) != 1 {
		t.Fatalf("contacts = %d, want 1", len(cs))
	}
	if !mgl64.FloatEqualThreshold(cs[0].Depth, 0.5, 1e-9) {
		t.Errorf("depth = %v, want 0.5", cs[0].Depth)
	}
	if cs[0].Normal.Y() < 0.99 {
		t.Errorf("normal = %v, want +Y", cs[0].Normal)
	}
}

func TestSphereSphereSeparated(t *testing.T) {
	a := geomAt(&actor.Sphere{Radius: 1}, mgl64.Vec3{0, 3, 0})
	b := geomAt(&actor.Sphere{Radius: 1}, mgl64.Vec3{})
	if cs := Collide(a, b, MaxContacts); cs != nil {
		t.Fatalf("contacts = %v, want none", cs)
	}
}

func TestSpherePlane(t *testing.T) {
	sphere := geomAt(&actor.Sphere{Radius: 1}, mgl64.Vec3{0, 0.75, 0})
	ground := geomAt(&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{})

	cs := Collide(sphere, ground, MaxContacts)
	if len(cs) != 1 {
		t.Fatalf("contacts = %d, want 1", len(cs))
	}
	if !mgl64.FloatEqualThreshold(cs[0].Depth, 0.25, 1e-9) {
		t.Errorf("depth = %v, want 0.25", cs[0].Depth)
	}
	if cs[0].Normal.Y() < 0.99 {
		t.Errorf("normal = %v, want +Y separating the sphere", cs[0].Normal)
	}

	// Swapped argument order flips the normal.
	cs = Collide(ground, sphere, MaxContacts)
	if len(cs) != 1 {
		t.Fatalf("contacts = %d, want 1", len(cs))
	}
	if cs[0].Normal.Y() > -0.99 {
		t.Errorf("normal = %v, want -Y separating the plane side", cs[0].Normal)
	}
}

func TestBoxPlaneRestingFace(t *testing.T) {
	box := geomAt(&actor.Box{Size: mgl64.Vec3{2, 2, 2}}, mgl64.Vec3{0, 0.9, 0})
	ground := geomAt(&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{})

	cs := Collide(box, ground, MaxContacts)
	if len(cs) != 4 {
		t.Fatalf("contacts = %d, want 4 (full face)", len(cs))
	}
	for _, c := range cs {
		if !mgl64.FloatEqualThreshold(c.Depth, 0.1, 1e-9) {
			t.Errorf("depth = %v, want 0.1", c.Depth)
		}
		if math.Abs(c.Pos.Y()) > 1e-9 {
			t.Errorf("contact pos %v not on plane", c.Pos)
		}
	}
}

func TestSphereBoxFace(t *testing.T) {
	box := geomAt(&actor.Box{Size: mgl64.Vec3{2, 2, 2}}, mgl64.Vec3{})
	sphere := geomAt(&actor.Sphere{Radius: 0.5}, mgl64.Vec3{0, 1.25, 0})

	cs := Collide(sphere, box, MaxContacts)
	if len(cs) != 1 {
		t.Fatalf("contacts = %d, want 1", len(cs))
	}
	if !mgl64.FloatEqualThreshold(cs[0].Depth, 0.25, 1e-9) {
		t.Errorf("depth = %v, want 0.25", cs[0].Depth)
	}
	if cs[0].Normal.Y() < 0.99 {
		t.Errorf("normal = %v, want +Y", cs[0].Normal)
	}
}

func TestSphereBoxDeepCenter(t *testing.T) {
	box := geomAt(&actor.Box{Size: mgl64.Vec3{2, 2, 2}}, mgl64.Vec3{})
	sphere := geomAt(&actor.Sphere{Radius: 0.25}, mgl64.Vec3{0, 0.9, 0})

	cs := Collide(sphere, box, MaxContacts)
	if len(cs) != 1 {
		t.Fatalf("contacts = %d, want 1", len(cs))
	}
	if cs[0].Normal.Y() < 0.99 {
		t.Errorf("normal = %v, want +Y out of nearest face", cs[0].Normal)
	}
	if cs[0].Depth <= 0.25 {
		t.Errorf("depth = %v, want > radius for an embedded centre", cs[0].Depth)
	}
}

func TestBoxBoxStackedFaces(t *testing.T) {
	lower := geomAt(&actor.Box{Size: mgl64.Vec3{2, 2, 2}}, mgl64.Vec3{})
	upper := geomAt(&actor.Box{Size: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{0, 1.4, 0})

	cs := Collide(upper, lower, MaxContacts)
	if len(cs) != 4 {
		t.Fatalf("contacts = %d, want 4", len(cs))
	}
	for _, c := range cs {
		if c.Normal.Y() < 0.99 {
			t.Errorf("normal = %v, want +Y separating the upper box", c.Normal)
		}
		if !mgl64.FloatEqualThreshold(c.Depth, 0.1, 1e-6) {
			t.Errorf("depth = %v, want 0.1", c.Depth)
		}
	}
}

func TestBoxBoxTiltedEdgeOnSlab(t *testing.T) {
	slab := geomAt(&actor.Box{Size: mgl64.Vec3{10, 1, 10}}, mgl64.Vec3{})

	// Unit box tilted 45 degrees about X so its bottom edge (parallel to
	// X) sinks 0.1 into the slab top at y = 0.5.
	box := actor.NewGeom(&actor.Box{Size: mgl64.Vec3{1, 1, 1}})
	box.SetOffset(mgl64.Vec3{2, 0.5 + math.Sqrt2/2 - 0.1, 0},
		mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}))

	cases := []struct {
		name    string
		cs      []Contact
		normalY float64
	}{
		{"slab first", Collide(slab, box, MaxContacts), -1},
		{"box first", Collide(box, slab, MaxContacts), 1},
	}
	for _, tc := range cases {
		if len(tc.cs) == 0 {
			t.Fatalf("%s: no contacts", tc.name)
		}
		for _, c := range tc.cs {
			if c.Normal.Y()*tc.normalY < 0.99 {
				t.Errorf("%s: normal = %v, want Y sign %v", tc.name, c.Normal, tc.normalY)
			}
			// The resting edge spans x in [1.5, 2.5] at z == 0; contacts
			// anywhere else mean the wrong face got clipped.
			if math.Abs(c.Pos.X()-2) > 0.6 || math.Abs(c.Pos.Z()) > 1e-6 {
				t.Errorf("%s: contact at %v, want under the box edge", tc.name, c.Pos)
			}
			if !mgl64.FloatEqualThreshold(c.Depth, 0.1, 1e-6) {
				t.Errorf("%s: depth = %v, want 0.1", tc.name, c.Depth)
			}
		}
	}
}

func TestBoxBoxCornerOnSlab(t *testing.T) {
	slab := geomAt(&actor.Box{Size: mgl64.Vec3{10, 1, 10}}, mgl64.Vec3{})

	// Generic rotation gives a unique lowest corner; plant it 0.1 deep.
	q := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 0, 1}).Mul(
		mgl64.QuatRotate(0.7, mgl64.Vec3{1, 0, 0}))
	shape := &actor.Box{Size: mgl64.Vec3{1, 1, 1}}
	corner := shape.Support(q.Conjugate().Rotate(mgl64.Vec3{0, -1, 0}))
	drop := -q.Rotate(corner).Y()
	center := mgl64.Vec3{2, 0.5 + drop - 0.1, 1}
	box := actor.NewGeom(shape)
	box.SetOffset(center, q)

	want := center.Add(q.Rotate(corner))

	cases := []struct {
		name    string
		cs      []Contact
		normalY float64
	}{
		{"slab first", Collide(slab, box, MaxContacts), -1},
		{"box first", Collide(box, slab, MaxContacts), 1},
	}
	for _, tc := range cases {
		if len(tc.cs) != 1 {
			t.Fatalf("%s: contacts = %d, want 1", tc.name, len(tc.cs))
		}
		c := tc.cs[0]
		if c.Normal.Y()*tc.normalY < 0.99 {
			t.Errorf("%s: normal = %v, want Y sign %v", tc.name, c.Normal, tc.normalY)
		}
		if c.Pos.Sub(want).Len() > 0.15 {
			t.Errorf("%s: contact at %v, want near the corner %v", tc.name, c.Pos, want)
		}
		if !mgl64.FloatEqualThreshold(c.Depth, 0.1, 1e-6) {
			t.Errorf("%s: depth = %v, want 0.1", tc.name, c.Depth)
		}
	}
}

func TestBoxBoxSeparatedByRotation(t *testing.T) {
	a := geomAt(&actor.Box{Size: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{})
	b := actor.NewGeom(&actor.Box{Size: mgl64.Vec3{1, 1, 1}})
	body := actor.NewBody()
	body.SetMass(actor.BoxMass(1, 1, 1, 1))
	b.SetBody(body)
	body.SetPosition(mgl64.Vec3{1.6, 0, 0})
	body.SetRotation(mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))

	// At 45 degrees the diagonal reaches sqrt(2)/2 ~ 0.707, so the
	// corner overlaps the unit cube at a 1.6 gap (0.5+0.707 > 1.6 is
	// false): separated.
	if cs := Collide(a, b, MaxContacts); cs != nil {
		t.Fatalf("contacts = %v, want none", cs)
	}
}

func TestBoxBoxContactCap(t *testing.T) {
	lower := geomAt(&actor.Box{Size: mgl64.Vec3{4, 2, 4}}, mgl64.Vec3{})
	upper := geomAt(&actor.Box{Size: mgl64.Vec3{4, 2, 4}}, mgl64.Vec3{0, 1.9, 0})

	cs := Collide(upper, lower, 2)
	if len(cs) > 2 {
		t.Fatalf("contacts = %d, want at most 2", len(cs))
	}
}

func TestCapsulePlane(t *testing.T) {
	// Capsule lying along X, radius 0.5, resting slightly below the
	// ground plane: both end spheres touch.
	g := actor.NewGeom(&actor.Capsule{Radius: 0.5, Length: 2})
	b := actor.NewBody()
	b.SetMass(actor.CapsuleMass(1, 0.5, 2))
	g.SetBody(b)
	b.SetPosition(mgl64.Vec3{0, 0.4, 0})
	b.SetRotation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	ground := geomAt(&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{})

	cs := Collide(g, ground, MaxContacts)
	if len(cs) != 2 {
		t.Fatalf("contacts = %d, want 2 (both caps)", len(cs))
	}
	for _, c := range cs {
		if !mgl64.FloatEqualThreshold(c.Depth, 0.1, 1e-9) {
			t.Errorf("depth = %v, want 0.1", c.Depth)
		}
	}
}

func TestCapsuleCapsuleCrossed(t *testing.T) {
	// Two capsules crossed at right angles, overlapping at the centre.
	a := actor.NewGeom(&actor.Capsule{Radius: 0.5, Length: 2})
	ba := actor.NewBody()
	ba.SetMass(actor.CapsuleMass(1, 0.5, 2))
	a.SetBody(ba)
	ba.SetPosition(mgl64.Vec3{0, 0.8, 0})
	ba.SetRotation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	// The second capsule keeps its default Z alignment.
	b := actor.NewGeom(&actor.Capsule{Radius: 0.5, Length: 2})
	bb := actor.NewBody()
	bb.SetMass(actor.CapsuleMass(1, 0.5, 2))
	b.SetBody(bb)
	bb.SetPosition(mgl64.Vec3{0, 0, 0})

	cs := Collide(a, b, MaxContacts)
	if len(cs) != 1 {
		t.Fatalf("contacts = %d, want 1", len(cs))
	}
	if !mgl64.FloatEqualThreshold(cs[0].Depth, 0.2, 1e-9) {
		t.Errorf("depth = %v, want 0.2", cs[0].Depth)
	}
	if cs[0].Normal.Y() < 0.99 {
		t.Errorf("normal = %v, want +Y", cs[0].Normal)
	}
}

func TestCylinderPlaneCapRing(t *testing.T) {
	cyl := geomAt(&actor.Cylinder{Radius: 1, Length: 2}, mgl64.Vec3{0, 0, 0.9})
	ground := geomAt(&actor.Plane{Normal: mgl64.Vec3{0, 0, 1}}, mgl64.Vec3{})

	cs := Collide(cyl, ground, MaxContacts)
	if len(cs) == 0 {
		t.Fatal("no contacts for a cylinder standing through the floor")
	}
	if len(cs) > MaxContacts {
		t.Fatalf("contacts = %d, exceeds cap %d", len(cs), MaxContacts)
	}
	for _, c := range cs {
		if c.Normal.Z() < 0.99 {
			t.Errorf("normal = %v, want +Z", c.Normal)
		}
		if !mgl64.FloatEqualThreshold(c.Depth, 0.1, 1e-9) {
			t.Errorf("depth = %v, want 0.1", c.Depth)
		}
	}
}

func TestSphereTriMesh(t *testing.T) {
	mesh := geomAt(&actor.TriMesh{
		Vertices: []mgl64.Vec3{{-5, 0, -5}, {5, 0, -5}, {5, 0, 5}, {-5, 0, 5}},
		Indices:  []int32{0, 1, 2, 0, 2, 3},
	}, mgl64.Vec3{})
	sphere := geomAt(&actor.Sphere{Radius: 1}, mgl64.Vec3{1, 0.6, 1})

	cs := Collide(sphere, mesh, MaxContacts)
	if len(cs) == 0 {
		t.Fatal("no contacts against mesh floor")
	}
	best := cs[0]
	for _, c := range cs[1:] {
		if c.Depth > best.Depth {
			best = c
		}
	}
	if !mgl64.FloatEqualThreshold(best.Depth, 0.4, 1e-9) {
		t.Errorf("depth = %v, want 0.4", best.Depth)
	}
	if best.Normal.Y() < 0.99 {
		t.Errorf("normal = %v, want +Y", best.Normal)
	}
}

func TestClosestPointOnTriangle(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{2, 0, 0}
	c := mgl64.Vec3{0, 2, 0}

	tests := []struct {
		p, want mgl64.Vec3
	}{
		{mgl64.Vec3{0.5, 0.5, 5}, mgl64.Vec3{0.5, 0.5, 0}}, // interior
		{mgl64.Vec3{-1, -1, 0}, a},                          // vertex region
		{mgl64.Vec3{3, 0, 0}, b},                            // vertex region
		{mgl64.Vec3{1, -1, 0}, mgl64.Vec3{1, 0, 0}},         // edge ab
	}
	for _, tc := range tests {
		got := closestPointOnTriangle(tc.p, a, b, c)
		if !got.ApproxEqualThreshold(tc.want, 1e-9) {
			t.Errorf("closest(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}
