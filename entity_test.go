package mechsim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/clist"
)

func TestFreeEntityReleasesEverything(t *testing.T) {
	clk := &fakeClock{}
	ctx := testContext(t, clk)

	e := ctx.CreateDumbbell(mgl64.Vec3{0, 5, 0}, 0.4, 1, 10)
	shapes := e.Geoms()
	if len(shapes) != 3 {
		t.Fatalf("dumbbell has %d shapes, want 3", len(shapes))
	}
	for _, g := range shapes {
		if InfoOf(g) == nil {
			t.Fatal("shape missing metadata")
		}
	}
	if ctx.Objects.Count() != 1 {
		t.Fatalf("objects = %d, want 1", ctx.Objects.Count())
	}
	if ctx.Space.Len() != 3 {
		t.Fatalf("space tracks %d geoms, want 3", ctx.Space.Len())
	}

	body := e.Body
	ctx.FreeEntity(e)

	if ctx.Objects.Count() != 0 {
		t.Errorf("objects = %d after free, want 0", ctx.Objects.Count())
	}
	if ctx.Space.Len() != 0 {
		t.Errorf("space tracks %d geoms after free, want 0", ctx.Space.Len())
	}
	for _, g := range shapes {
		if InfoOf(g) != nil {
			t.Error("metadata survived the free")
		}
		if g.Body() != nil {
			t.Error("shape still attached to the dead body")
		}
	}
	if len(ctx.World.Bodies()) != 0 {
		t.Errorf("world still tracks %d bodies", len(ctx.World.Bodies()))
	}
	if EntityOf(body) != nil {
		t.Error("body still back-references the freed entity")
	}
	if e.Node() != nil {
		t.Error("entity still references its registry node")
	}
}

func TestFreeEveryThirdDuringIteration(t *testing.T) {
	clk := &fakeClock{}
	ctx := testContext(t, clk)

	var made []*Entity
	for i := 0; i < 300; i++ {
		made = append(made, ctx.CreateSphere(mgl64.Vec3{float64(i), 5, 0}, 0.4, 1))
	}

	i := 0
	for node := ctx.Objects.Head(); node != nil; {
		next := node.Next()
		if i%3 == 0 {
			ctx.FreeEntity(node.Data)
		}
		node = next
		i++
	}

	if n := ctx.Objects.Count(); n != 200 {
		t.Fatalf("survivors = %d, want 200", n)
	}

	// Survivors keep their original relative order.
	want := 0
	ctx.Objects.IterateForward(func(n *clist.Node[*Entity]) {
		for want%3 == 0 {
			want++
		}
		if n.Data != made[want] {
			t.Fatalf("survivor out of order at original index %d", want)
		}
		want++
	})
}

func TestCreateRandomEntityHonorsMask(t *testing.T) {
	clk := &fakeClock{}
	ctx := testContext(t, clk)

	for i := 0; i < 50; i++ {
		e := ctx.CreateRandomEntity(mgl64.Vec3{0, 5, 0}, SphereShape|DumbbellShape)
		switch len(e.Geoms()) {
		case 1, 3:
		default:
			t.Fatalf("entity has %d shapes, want a sphere (1) or dumbbell (3)", len(e.Geoms()))
		}
		if m := e.Body.Mass(); m != randomEntityMass {
			t.Fatalf("mass = %v, want %v", m, float64(randomEntityMass))
		}
	}
}

func TestSetEntityHewAndSurfaces(t *testing.T) {
	clk := &fakeClock{}
	ctx := testContext(t, clk)

	e := ctx.CreateDumbbell(mgl64.Vec3{}, 0.4, 1, 10)

	red := Color{1, 0, 0, 1}
	SetEntityHew(e, red)
	SetEntitySurfaces(e, &Surfaces[Rubber])
	for _, g := range e.Geoms() {
		gi := InfoOf(g)
		if gi.Hew != red {
			t.Errorf("hew = %+v, want red", gi.Hew)
		}
		if gi.Surface != &Surfaces[Rubber] {
			t.Errorf("surface not set to rubber")
		}
	}
}

func TestNewGeomInfoDefaults(t *testing.T) {
	gi := NewGeomInfo(true, nil, 2, 3)
	if !gi.Collidable {
		t.Error("collidable flag lost")
	}
	if gi.Hew != White {
		t.Errorf("hew = %+v, want white", gi.Hew)
	}
	if gi.Surface != DefaultSurface {
		t.Error("surface not defaulted to wood")
	}
	if gi.UVScaleU != 2 || gi.UVScaleV != 3 {
		t.Errorf("uv scale = %v %v, want 2 3", gi.UVScaleU, gi.UVScaleV)
	}
	if gi.Trigger != nil || gi.Texture != nil || gi.Visual != nil {
		t.Error("optional fields not zeroed")
	}
}

func TestContextFreeTearsDownWorld(t *testing.T) {
	clk := &fakeClock{}
	ctx := testContext(t, clk)

	for i := 0; i < 10; i++ {
		ctx.CreateRandomEntity(mgl64.Vec3{float64(i), 5, 0}, AllShapes)
	}
	ctx.CreateStaticPlane(mgl64.Vec3{0, 1, 0}, 0)
	ctx.CreateStaticBox(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 1, 1})

	ctx.Free()

	if !ctx.Objects.IsEmpty() || !ctx.Statics.IsEmpty() {
		t.Fatal("registries not empty after Free")
	}
	if ctx.Space.Len() != 0 {
		t.Fatalf("space tracks %d geoms after Free", ctx.Space.Len())
	}
	if len(ctx.World.Bodies()) != 0 {
		t.Fatalf("world tracks %d bodies after Free", len(ctx.World.Bodies()))
	}
}

func TestPickEntity(t *testing.T) {
	clk := &fakeClock{}
	ctx := testContext(t, clk)

	ctx.CreateStaticPlane(mgl64.Vec3{0, 1, 0}, 0)
	target := ctx.CreateSphere(mgl64.Vec3{0, 2, 0}, 0.5, 1)

	e, hit, ok := ctx.PickEntity(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, -1, 0}, 100)
	if !ok || e != target {
		t.Fatalf("picked %v ok=%v, want the sphere", e, ok)
	}
	if !mgl64.FloatEqualThreshold(hit.Pos.Y(), 2.5, 1e-9) {
		t.Errorf("hit at y=%v, want 2.5", hit.Pos.Y())
	}

	// A miss to the side hits nothing pickable (the plane is static).
	if _, _, ok := ctx.PickEntity(mgl64.Vec3{50, 10, 0}, mgl64.Vec3{0, -1, 0}, 100); ok {
		t.Fatal("picked something where only the plane lies")
	}
}
