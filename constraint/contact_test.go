package constraint

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

func solverBody(pos mgl64.Vec3) *actor.Body {
	b := actor.NewBody()
	b.SetMass(actor.SphereMass(1, 0.5))
	b.SetPosition(pos)
	return b
}

func iterate(c Constraint, dt float64, n int) {
	c.Prepare(dt)
	for i := 0; i < n; i++ {
		c.SolveVelocity(dt)
	}
}

const solveDt = 1.0 / 240

func TestContactStopsApproach(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0.5, 0})
	b.Velocity = mgl64.Vec3{0, -5, 0}

	c := &Contact{
		BodyA:  b,
		Pos:    mgl64.Vec3{0, 0, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: math.Inf(1)},
	}
	iterate(c, solveDt, 10)

	if vy := b.Velocity.Y(); math.Abs(vy) > 1e-6 {
		t.Fatalf("vy = %v after contact, want ~0 (no bounce)", vy)
	}
}

func TestContactRestitution(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0.5, 0})
	b.Velocity = mgl64.Vec3{0, -5, 0}

	c := &Contact{
		BodyA:  b,
		Pos:    mgl64.Vec3{0, 0, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: math.Inf(1), Bounce: 0.85, BounceVel: 0.1},
	}
	iterate(c, solveDt, 20)

	if vy := b.Velocity.Y(); !mgl64.FloatEqualThreshold(vy, 4.25, 1e-6) {
		t.Fatalf("vy = %v, want 4.25 (0.85 * 5)", vy)
	}
}

func TestContactBounceVelThreshold(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0.5, 0})
	b.Velocity = mgl64.Vec3{0, -0.05, 0}

	c := &Contact{
		BodyA:  b,
		Pos:    mgl64.Vec3{0, 0, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: math.Inf(1), Bounce: 0.85, BounceVel: 0.1},
	}
	iterate(c, solveDt, 10)

	// Below the threshold the impact is killed, not bounced.
	if vy := b.Velocity.Y(); math.Abs(vy) > 1e-6 {
		t.Fatalf("vy = %v, want ~0 below the bounce threshold", vy)
	}
}

func TestContactFrictionStopsSlide(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0.5, 0})
	b.Velocity = mgl64.Vec3{1, -0.1, 0}

	c := &Contact{
		BodyA:  b,
		Pos:    mgl64.Vec3{0, 0, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: math.Inf(1)},
	}
	iterate(c, solveDt, 20)

	// Unbounded friction brings the contact point to rest: the sphere
	// rolls instead of sliding.
	surfaceVel := b.Velocity.Add(b.AngularVelocity.Cross(mgl64.Vec3{0, -0.5, 0}))
	if vx := surfaceVel.X(); math.Abs(vx) > 1e-3 {
		t.Fatalf("contact point vx = %v, want ~0 under unbounded friction", vx)
	}
	if vx := b.Velocity.X(); vx >= 1 {
		t.Fatalf("vx = %v, friction did not slow the slide", vx)
	}
}

func TestContactFrictionCoulombLimit(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0.5, 0})
	b.Velocity = mgl64.Vec3{1, -0.1, 0}

	c := &Contact{
		BodyA:  b,
		Pos:    mgl64.Vec3{0, 0, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: 0.5},
	}
	iterate(c, solveDt, 20)

	// Normal impulse stops 0.1 m/s, so friction can shave at most
	// mu * 0.1 = 0.05 m/s off the slide.
	if vx := b.Velocity.X(); vx < 0.95-1e-6 {
		t.Fatalf("vx = %v, friction exceeded the Coulomb limit", vx)
	}
	if vx := b.Velocity.X(); vx >= 1 {
		t.Fatalf("vx = %v, friction did nothing", vx)
	}
}

func TestContactFrictionlessIce(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0.5, 0})
	b.Velocity = mgl64.Vec3{1, -0.1, 0}

	c := &Contact{
		BodyA:  b,
		Pos:    mgl64.Vec3{0, 0, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: 0},
	}
	iterate(c, solveDt, 10)

	if vx := b.Velocity.X(); !mgl64.FloatEqualThreshold(vx, 1, 1e-9) {
		t.Fatalf("vx = %v, want exactly 1 with zero friction", vx)
	}
}

func TestContactSlipToleratesVelocity(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0.5, 0})
	b.Velocity = mgl64.Vec3{0.01, -0.1, 0}

	// A huge slip coefficient makes the allowed tangential velocity
	// larger than the actual slide, so friction must not act at all.
	c := &Contact{
		BodyA:  b,
		Pos:    mgl64.Vec3{0, 0, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: math.Inf(1), Slip1: 10, Slip2: 10},
	}
	iterate(c, solveDt, 10)

	if vx := b.Velocity.X(); !mgl64.FloatEqualThreshold(vx, 0.01, 1e-9) {
		t.Fatalf("vx = %v, want 0.01 untouched inside the slip allowance", vx)
	}
}

func TestContactBetweenTwoBodies(t *testing.T) {
	a := solverBody(mgl64.Vec3{0, 1, 0})
	b := solverBody(mgl64.Vec3{0, 0, 0})
	a.Velocity = mgl64.Vec3{0, -2, 0}

	c := &Contact{
		BodyA:  a,
		BodyB:  b,
		Pos:    mgl64.Vec3{0, 0.5, 0},
		Normal: mgl64.Vec3{0, 1, 0},
		Params: ContactParams{Mu: math.Inf(1)},
	}
	iterate(c, solveDt, 10)

	// Equal masses share the momentum; approach must stop.
	rel := a.Velocity.Sub(b.Velocity).Y()
	if math.Abs(rel) > 1e-6 {
		t.Fatalf("relative vy = %v, want ~0", rel)
	}
	sum := a.Velocity.Y() + b.Velocity.Y()
	if !mgl64.FloatEqualThreshold(sum, -2, 1e-9) {
		t.Fatalf("momentum not conserved: sum vy = %v, want -2", sum)
	}
}

func TestGroupEmptyReuses(t *testing.T) {
	var g Group
	g.Add(&Contact{})
	g.Add(&Contact{})
	if g.Len() != 2 {
		t.Fatalf("Len = %d, want 2", g.Len())
	}
	g.Empty()
	if g.Len() != 0 {
		t.Fatalf("Len = %d after Empty, want 0", g.Len())
	}
	n := 0
	g.Each(func(Constraint) { n++ })
	if n != 0 {
		t.Fatalf("Each visited %d constraints after Empty", n)
	}
}
