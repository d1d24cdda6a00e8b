package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// Joint is a permanent constraint between two bodies. Either side may
// be nil, attaching the other body to the static world.
type Joint interface {
	Constraint
	Bodies() (*actor.Body, *actor.Body)
}

// jointERP is the position-error fraction recovered per step for all
// joint types.
const jointERP = 0.2

func localRotate(b *actor.Body, v mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return v
	}
	return b.Transform.Rotation.Rotate(v)
}

func localPoint(b *actor.Body, world mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return world
	}
	return b.Transform.ApplyInverse(world)
}

func worldPoint(b *actor.Body, local mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return local
	}
	return b.Transform.Apply(local)
}

func rotation(b *actor.Body) mgl64.Quat {
	if b == nil {
		return mgl64.QuatIdent()
	}
	return b.Transform.Rotation
}

// Ball keeps one anchor point of each body coincident.
type Ball struct {
	bodyA, bodyB   *actor.Body
	localA, localB mgl64.Vec3

	rA, rB mgl64.Vec3
	mass   mgl64.Mat3
	bias   mgl64.Vec3
}

// NewBall creates a ball-and-socket joint at the world-space anchor.
func NewBall(a, b *actor.Body, anchor mgl64.Vec3) *Ball {
	return &Ball{
		bodyA:  a,
		bodyB:  b,
		localA: localPoint(a, anchor),
		localB: localPoint(b, anchor),
	}
}

func (j *Ball) Bodies() (*actor.Body, *actor.Body) { return j.bodyA, j.bodyB }

func (j *Ball) Prepare(dt float64) {
	pA := worldPoint(j.bodyA, j.localA)
	pB := worldPoint(j.bodyB, j.localB)
	j.rA = pA.Sub(position(j.bodyA))
	j.rB = pB.Sub(position(j.bodyB))
	j.mass = massMatrix(j.bodyA, j.bodyB, j.rA, j.rB)
	j.bias = pA.Sub(pB).Mul(jointERP / dt)
}

func (j *Ball) SolveVelocity(dt float64) {
	rel := velocityAt(j.bodyA, j.rA).Sub(velocityAt(j.bodyB, j.rB))
	lambda := solveMat3(j.mass, rel.Add(j.bias).Mul(-1))
	applyImpulse(j.bodyA, lambda, j.rA)
	applyImpulse(j.bodyB, lambda.Mul(-1), j.rB)
}

// Hinge keeps an anchor coincident and the bodies' rotation restricted
// to one shared axis. An optional velocity motor drives that axis.
type Hinge struct {
	bodyA, bodyB   *actor.Body
	localA, localB mgl64.Vec3
	axisA, axisB   mgl64.Vec3

	// Motor drives the relative angular velocity about the axis toward
	// MotorVel, with impulse per step bounded by FMax*dt.
	MotorVel float64
	FMax     float64

	rA, rB   mgl64.Vec3
	mass     mgl64.Mat3
	bias     mgl64.Vec3
	axis     mgl64.Vec3
	u1, u2   mgl64.Vec3
	massU1   float64
	massU2   float64
	biasU1   float64
	biasU2   float64
	massAxis float64
	motorAcc float64
}

// NewHinge creates a hinge at the world anchor rotating about the world
// axis.
func NewHinge(a, b *actor.Body, anchor, axis mgl64.Vec3) *Hinge {
	axis = axis.Normalize()
	return &Hinge{
		bodyA:  a,
		bodyB:  b,
		localA: localPoint(a, anchor),
		localB: localPoint(b, anchor),
		axisA:  rotation(a).Conjugate().Rotate(axis),
		axisB:  rotation(b).Conjugate().Rotate(axis),
	}
}

func (j *Hinge) Bodies() (*actor.Body, *actor.Body) { return j.bodyA, j.bodyB }

// SetMotor configures the axis velocity motor. A zero fMax disables it.
func (j *Hinge) SetMotor(vel, fMax float64) {
	j.MotorVel = vel
	j.FMax = fMax
}

func (j *Hinge) Prepare(dt float64) {
	pA := worldPoint(j.bodyA, j.localA)
	pB := worldPoint(j.bodyB, j.localB)
	j.rA = pA.Sub(position(j.bodyA))
	j.rB = pB.Sub(position(j.bodyB))
	j.mass = massMatrix(j.bodyA, j.bodyB, j.rA, j.rB)
	j.bias = pA.Sub(pB).Mul(jointERP / dt)

	aA := localRotate(j.bodyA, j.axisA)
	aB := localRotate(j.bodyB, j.axisB)
	j.axis = aA
	j.u1, j.u2 = tangentBasis(aA)

	iSum := addMat3(invInertia(j.bodyA), invInertia(j.bodyB))
	j.massU1 = iSum.Mul3x1(j.u1).Dot(j.u1)
	j.massU2 = iSum.Mul3x1(j.u2).Dot(j.u2)
	j.massAxis = iSum.Mul3x1(aA).Dot(aA)

	// Axis misalignment projected on the two free directions.
	err := aB.Cross(aA)
	j.biasU1 = err.Dot(j.u1) * jointERP / dt
	j.biasU2 = err.Dot(j.u2) * jointERP / dt

	j.motorAcc = 0
}

func (j *Hinge) SolveVelocity(dt float64) {
	// Point constraint.
	rel := velocityAt(j.bodyA, j.rA).Sub(velocityAt(j.bodyB, j.rB))
	lambda := solveMat3(j.mass, rel.Add(j.bias).Mul(-1))
	applyImpulse(j.bodyA, lambda, j.rA)
	applyImpulse(j.bodyB, lambda.Mul(-1), j.rB)

	// Keep the axes aligned.
	relW := angularVelocity(j.bodyA).Sub(angularVelocity(j.bodyB))
	if j.massU1 > 1e-10 {
		l1 := -(relW.Dot(j.u1) + j.biasU1) / j.massU1
		applyAngularImpulse(j.bodyA, j.u1.Mul(l1))
		applyAngularImpulse(j.bodyB, j.u1.Mul(-l1))
	}
	relW = angularVelocity(j.bodyA).Sub(angularVelocity(j.bodyB))
	if j.massU2 > 1e-10 {
		l2 := -(relW.Dot(j.u2) + j.biasU2) / j.massU2
		applyAngularImpulse(j.bodyA, j.u2.Mul(l2))
		applyAngularImpulse(j.bodyB, j.u2.Mul(-l2))
	}

	// Motor about the axis.
	if j.FMax > 0 && j.massAxis > 1e-10 {
		relW = angularVelocity(j.bodyA).Sub(angularVelocity(j.bodyB))
		l := (j.MotorVel - relW.Dot(j.axis)) / j.massAxis
		limit := j.FMax * dt
		old := j.motorAcc
		j.motorAcc = mgl64.Clamp(old+l, -limit, limit)
		l = j.motorAcc - old
		applyAngularImpulse(j.bodyA, j.axis.Mul(l))
		applyAngularImpulse(j.bodyB, j.axis.Mul(-l))
	}
}

// Slider locks the bodies' relative rotation and allows translation
// only along one axis, optionally bounded by stops.
type Slider struct {
	bodyA, bodyB *actor.Body
	axisA        mgl64.Vec3
	localA       mgl64.Vec3 // bodyB origin in bodyA frame at creation
	relRot0      mgl64.Quat

	// LoStop and HiStop bound the translation along the axis. They
	// default to unlimited.
	LoStop, HiStop float64

	axis     mgl64.Vec3
	u1, u2   mgl64.Vec3
	rA, rB   mgl64.Vec3
	massU1   float64
	massU2   float64
	massAxis float64
	biasU1   float64
	biasU2   float64
	biasRot  mgl64.Vec3
	massRot  mgl64.Mat3
	stopBias float64
	stopSign float64
	stopAcc  float64
}

// NewSlider creates a slider joint along the world axis, with the
// current relative placement as the zero position.
func NewSlider(a, b *actor.Body, axis mgl64.Vec3) *Slider {
	axis = axis.Normalize()
	return &Slider{
		bodyA:   a,
		bodyB:   b,
		axisA:   rotation(a).Conjugate().Rotate(axis),
		localA:  localPoint(a, position(b)),
		relRot0: rotation(a).Conjugate().Mul(rotation(b)),
		LoStop:  math.Inf(-1),
		HiStop:  math.Inf(1),
	}
}

func (j *Slider) Bodies() (*actor.Body, *actor.Body) { return j.bodyA, j.bodyB }

// SetStops bounds the slide position. lo must not exceed hi.
func (j *Slider) SetStops(lo, hi float64) {
	j.LoStop, j.HiStop = lo, hi
}

// Position returns the current displacement along the axis from the
// creation pose.
func (j *Slider) Position() float64 {
	axis := localRotate(j.bodyA, j.axisA)
	ref := worldPoint(j.bodyA, j.localA)
	return position(j.bodyB).Sub(ref).Dot(axis)
}

func (j *Slider) Prepare(dt float64) {
	j.axis = localRotate(j.bodyA, j.axisA)
	j.u1, j.u2 = tangentBasis(j.axis)

	// Offsets to the shared reference point, which rides on the axis.
	ref := worldPoint(j.bodyA, j.localA).Add(j.axis.Mul(j.Position()))
	j.rA = ref.Sub(position(j.bodyA))
	j.rB = ref.Sub(position(j.bodyB))

	j.massU1 = effectiveMass(j.bodyA, j.bodyB, j.rA, j.rB, j.u1)
	j.massU2 = effectiveMass(j.bodyA, j.bodyB, j.rA, j.rB, j.u2)
	j.massAxis = effectiveMass(j.bodyA, j.bodyB, j.rA, j.rB, j.axis)
	j.massRot = addMat3(invInertia(j.bodyA), invInertia(j.bodyB))

	// Perpendicular drift of bodyB off the slide axis.
	off := position(j.bodyB).Sub(worldPoint(j.bodyA, j.localA))
	j.biasU1 = off.Dot(j.u1) * jointERP / dt
	j.biasU2 = off.Dot(j.u2) * jointERP / dt

	// Relative rotation drift from the creation pose, small-angle.
	qErr := rotation(j.bodyA).Conjugate().Mul(rotation(j.bodyB)).Mul(j.relRot0.Conjugate())
	errVec := localRotate(j.bodyA, qErr.V.Mul(2))
	if qErr.W < 0 {
		errVec = errVec.Mul(-1)
	}
	j.biasRot = errVec.Mul(jointERP / dt)

	// Stops.
	j.stopBias = 0
	j.stopSign = 0
	pos := j.Position()
	if pos <= j.LoStop {
		j.stopSign = 1
		j.stopBias = (j.LoStop - pos) * jointERP / dt
	} else if pos >= j.HiStop {
		j.stopSign = -1
		j.stopBias = (pos - j.HiStop) * jointERP / dt
	}
	j.stopAcc = 0
}

func (j *Slider) SolveVelocity(dt float64) {
	// Lock rotation.
	relW := angularVelocity(j.bodyB).Sub(angularVelocity(j.bodyA))
	lw := solveMat3(j.massRot, relW.Add(j.biasRot).Mul(-1))
	applyAngularImpulse(j.bodyB, lw)
	applyAngularImpulse(j.bodyA, lw.Mul(-1))

	// Cancel velocity perpendicular to the axis.
	rel := velocityAt(j.bodyB, j.rB).Sub(velocityAt(j.bodyA, j.rA))
	if j.massU1 > 1e-10 {
		l := -(rel.Dot(j.u1) + j.biasU1) / j.massU1
		applyImpulse(j.bodyB, j.u1.Mul(l), j.rB)
		applyImpulse(j.bodyA, j.u1.Mul(-l), j.rA)
	}
	rel = velocityAt(j.bodyB, j.rB).Sub(velocityAt(j.bodyA, j.rA))
	if j.massU2 > 1e-10 {
		l := -(rel.Dot(j.u2) + j.biasU2) / j.massU2
		applyImpulse(j.bodyB, j.u2.Mul(l), j.rB)
		applyImpulse(j.bodyA, j.u2.Mul(-l), j.rA)
	}

	// Stop impulse pushes back into range, one-sided.
	if j.stopSign != 0 && j.massAxis > 1e-10 {
		rel = velocityAt(j.bodyB, j.rB).Sub(velocityAt(j.bodyA, j.rA))
		va := rel.Dot(j.axis) * j.stopSign
		l := (j.stopBias - va) / j.massAxis
		old := j.stopAcc
		j.stopAcc = math.Max(0, old+l)
		l = (j.stopAcc - old) * j.stopSign
		applyImpulse(j.bodyB, j.axis.Mul(l), j.rB)
		applyImpulse(j.bodyA, j.axis.Mul(-l), j.rA)
	}
}

// Fixed welds two bodies (or a body to the world) in their current
// relative placement.
type Fixed struct {
	bodyA, bodyB *actor.Body
	localA       mgl64.Vec3
	relRot0      mgl64.Quat

	rA, rB  mgl64.Vec3
	mass    mgl64.Mat3
	bias    mgl64.Vec3
	massRot mgl64.Mat3
	biasRot mgl64.Vec3
}

// NewFixed welds the bodies at their current placement.
func NewFixed(a, b *actor.Body) *Fixed {
	return &Fixed{
		bodyA:   a,
		bodyB:   b,
		localA:  localPoint(a, position(b)),
		relRot0: rotation(a).Conjugate().Mul(rotation(b)),
	}
}

func (j *Fixed) Bodies() (*actor.Body, *actor.Body) { return j.bodyA, j.bodyB }

func (j *Fixed) Prepare(dt float64) {
	target := worldPoint(j.bodyA, j.localA)
	j.rA = target.Sub(position(j.bodyA))
	j.rB = mgl64.Vec3{}
	j.mass = massMatrix(j.bodyA, j.bodyB, j.rA, j.rB)
	j.bias = position(j.bodyB).Sub(target).Mul(jointERP / dt)

	j.massRot = addMat3(invInertia(j.bodyA), invInertia(j.bodyB))
	qErr := rotation(j.bodyA).Conjugate().Mul(rotation(j.bodyB)).Mul(j.relRot0.Conjugate())
	errVec := localRotate(j.bodyA, qErr.V.Mul(2))
	if qErr.W < 0 {
		errVec = errVec.Mul(-1)
	}
	j.biasRot = errVec.Mul(jointERP / dt)
}

func (j *Fixed) SolveVelocity(dt float64) {
	relW := angularVelocity(j.bodyB).Sub(angularVelocity(j.bodyA))
	lw := solveMat3(j.massRot, relW.Add(j.biasRot).Mul(-1))
	applyAngularImpulse(j.bodyB, lw)
	applyAngularImpulse(j.bodyA, lw.Mul(-1))

	rel := velocityAt(j.bodyB, j.rB).Sub(velocityAt(j.bodyA, j.rA))
	lambda := solveMat3(j.mass, rel.Add(j.bias).Mul(-1))
	applyImpulse(j.bodyB, lambda, j.rB)
	applyImpulse(j.bodyA, lambda.Mul(-1), j.rA)
}
