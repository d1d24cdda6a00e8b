package constraint

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBallJointPinsAnchor(t *testing.T) {
	b := solverBody(mgl64.Vec3{1, 0, 0})
	b.Velocity = mgl64.Vec3{0, -1, 0}

	j := NewBall(nil, b, mgl64.Vec3{0, 0, 0})
	iterate(j, solveDt, 20)

	// The anchor point must not move; the body may still rotate about
	// it.
	rB := mgl64.Vec3{0, 0, 0}.Sub(b.Position())
	anchorVel := b.Velocity.Add(b.AngularVelocity.Cross(rB))
	if anchorVel.Len() > 1e-6 {
		t.Fatalf("anchor velocity = %v, want ~0", anchorVel)
	}
}

func TestBallJointBetweenBodies(t *testing.T) {
	a := solverBody(mgl64.Vec3{-1, 0, 0})
	b := solverBody(mgl64.Vec3{1, 0, 0})
	a.Velocity = mgl64.Vec3{0, 2, 0}

	j := NewBall(a, b, mgl64.Vec3{0, 0, 0})
	iterate(j, solveDt, 30)

	rA := mgl64.Vec3{}.Sub(a.Position())
	rB := mgl64.Vec3{}.Sub(b.Position())
	rel := a.Velocity.Add(a.AngularVelocity.Cross(rA)).
		Sub(b.Velocity.Add(b.AngularVelocity.Cross(rB)))
	if rel.Len() > 1e-6 {
		t.Fatalf("relative anchor velocity = %v, want ~0", rel)
	}
}

func TestHingeMotorReachesVelocity(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0, 0})

	j := NewHinge(nil, b, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1})
	j.SetMotor(-2, 100)
	iterate(j, solveDt, 30)

	// The motor drives the relative velocity (world - body) about the
	// axis to -2, so the body spins at +2.
	if wz := b.AngularVelocity.Z(); !mgl64.FloatEqualThreshold(wz, 2, 1e-6) {
		t.Fatalf("wz = %v, want 2", wz)
	}
	// Off-axis spin stays locked.
	if w := b.AngularVelocity; math.Abs(w.X()) > 1e-9 || math.Abs(w.Y()) > 1e-9 {
		t.Fatalf("off-axis angular velocity = %v, want zero", w)
	}
}

func TestHingeLocksOffAxisSpin(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0, 0})
	b.AngularVelocity = mgl64.Vec3{3, 1, 5}

	j := NewHinge(nil, b, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1})
	iterate(j, solveDt, 20)

	w := b.AngularVelocity
	if math.Abs(w.X()) > 1e-6 || math.Abs(w.Y()) > 1e-6 {
		t.Fatalf("off-axis angular velocity = %v, want zero", w)
	}
	if !mgl64.FloatEqualThreshold(w.Z(), 5, 1e-6) {
		t.Fatalf("wz = %v, want the free axis untouched (5)", w.Z())
	}
}

func TestHingeMotorTorqueLimit(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0, 0})

	j := NewHinge(nil, b, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1})
	j.SetMotor(-1000, 0.1)
	iterate(j, solveDt, 10)

	// Sphere inertia 0.1; max impulse per step 0.1*dt gives at most
	// dt angular velocity change.
	if wz := b.AngularVelocity.Z(); wz > 0.1*solveDt/0.1+1e-9 {
		t.Fatalf("wz = %v, motor exceeded its torque budget", wz)
	}
}

func TestSliderAllowsAxisMotionOnly(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0, 0})
	b.Velocity = mgl64.Vec3{1, 2, 3}
	b.AngularVelocity = mgl64.Vec3{1, 1, 1}

	j := NewSlider(nil, b, mgl64.Vec3{1, 0, 0})
	iterate(j, solveDt, 30)

	if v := b.Velocity; math.Abs(v.Y()) > 1e-6 || math.Abs(v.Z()) > 1e-6 {
		t.Fatalf("perpendicular velocity = %v, want zero", v)
	}
	if vx := b.Velocity.X(); !mgl64.FloatEqualThreshold(vx, 1, 1e-6) {
		t.Fatalf("vx = %v, want the slide axis untouched (1)", vx)
	}
	if w := b.AngularVelocity; w.Len() > 1e-6 {
		t.Fatalf("angular velocity = %v, want fully locked", w)
	}
}

func TestSliderStops(t *testing.T) {
	b := solverBody(mgl64.Vec3{0, 0, 0})

	j := NewSlider(nil, b, mgl64.Vec3{1, 0, 0})
	j.SetStops(-0.5, 0.5)

	// Past the high stop and still moving outward.
	b.SetPosition(mgl64.Vec3{0.7, 0, 0})
	b.Velocity = mgl64.Vec3{1, 0, 0}
	iterate(j, solveDt, 20)

	if vx := b.Velocity.X(); vx > 0 {
		t.Fatalf("vx = %v, stop did not arrest outward motion", vx)
	}

	// Inside the range the axis stays free.
	b.SetPosition(mgl64.Vec3{0, 0, 0})
	b.Velocity = mgl64.Vec3{1, 0, 0}
	iterate(j, solveDt, 20)
	if vx := b.Velocity.X(); !mgl64.FloatEqualThreshold(vx, 1, 1e-6) {
		t.Fatalf("vx = %v inside the stops, want 1", vx)
	}
}

func TestSliderPosition(t *testing.T) {
	b := solverBody(mgl64.Vec3{2, 0, 0})
	j := NewSlider(nil, b, mgl64.Vec3{0, 1, 0})

	if p := j.Position(); math.Abs(p) > 1e-12 {
		t.Fatalf("initial position = %v, want 0", p)
	}
	b.SetPosition(mgl64.Vec3{2, 1.5, 0})
	if p := j.Position(); !mgl64.FloatEqualThreshold(p, 1.5, 1e-12) {
		t.Fatalf("position = %v, want 1.5", p)
	}
}

func TestFixedWeldStopsAllMotion(t *testing.T) {
	b := solverBody(mgl64.Vec3{3, 1, 0})
	b.Velocity = mgl64.Vec3{1, 2, 3}
	b.AngularVelocity = mgl64.Vec3{4, 5, 6}

	j := NewFixed(nil, b)
	iterate(j, solveDt, 30)

	if v := b.Velocity; v.Len() > 1e-6 {
		t.Fatalf("velocity = %v after weld, want zero", v)
	}
	if w := b.AngularVelocity; w.Len() > 1e-6 {
		t.Fatalf("angular velocity = %v after weld, want zero", w)
	}
}

func TestJointBodiesAccessor(t *testing.T) {
	a := solverBody(mgl64.Vec3{})
	b := solverBody(mgl64.Vec3{1, 0, 0})

	joints := []Joint{
		NewBall(a, b, mgl64.Vec3{}),
		NewHinge(a, b, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}),
		NewSlider(a, b, mgl64.Vec3{1, 0, 0}),
		NewFixed(a, b),
	}
	for _, j := range joints {
		ja, jb := j.Bodies()
		if ja != a || jb != b {
			t.Fatalf("Bodies() = %v %v, want the construction pair", ja, jb)
		}
	}
}
