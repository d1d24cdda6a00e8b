package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body is a dynamic rigid body. It owns zero or more attached Geoms;
// static collision geometry has no body at all (Geom.Body() == nil).
//
// Bodies are created through engine.World.NewBody so the world can
// integrate them; the lifetime of the body and its geoms is decided by
// whoever created it, typically the entity layer.
type Body struct {
	Transform       Transform
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	// Disabled bodies are skipped by integration and broad phase until
	// something wakes them (auto-disable).
	Disabled  bool
	IdleSteps int

	force  mgl64.Vec3
	torque mgl64.Vec3

	mass       float64
	invMass    float64
	invInertia mgl64.Mat3

	geoms []*Geom
	data  any
}

// NewBody creates a free-standing body with unit mass at the origin.
// Prefer engine.World.NewBody, which also registers the body for
// integration.
func NewBody() *Body {
	b := &Body{Transform: NewTransform(mgl64.Vec3{})}
	b.SetMass(SphereMass(1, 1))
	return b
}

// SetMass assigns the body's mass distribution. The centre of mass is
// assumed to coincide with the body origin; composite distributions
// should be built so it does (see Mass.Add).
func (b *Body) SetMass(m Mass) {
	b.mass = m.Value
	if m.Value > 0 {
		b.invMass = 1 / m.Value
		b.invInertia = m.I.Inv()
	} else {
		b.invMass = 0
		b.invInertia = mgl64.Mat3{}
	}
}

// Mass returns the body's total mass.
func (b *Body) Mass() float64 { return b.mass }

// InvMass returns 1/mass, or zero for an immovable body.
func (b *Body) InvMass() float64 { return b.invMass }

// InvInertiaWorld returns the inverse inertia tensor rotated into world
// space.
func (b *Body) InvInertiaWorld() mgl64.Mat3 {
	r := b.Transform.Rotation.Mat4().Mat3()
	return r.Mul3(b.invInertia).Mul3(r.Transpose())
}

// SetPosition moves the body and its attached geoms.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.Transform.Position = p
	b.UpdateGeoms()
}

// Position returns the body origin in world space.
func (b *Body) Position() mgl64.Vec3 { return b.Transform.Position }

// SetRotation orients the body with a unit quaternion.
func (b *Body) SetRotation(q mgl64.Quat) {
	b.Transform.Rotation = q.Normalize()
	b.UpdateGeoms()
}

// SetEuler orients the body from XYZ Euler angles in radians.
func (b *Body) SetEuler(rx, ry, rz float64) {
	b.SetRotation(mgl64.AnglesToQuat(rx, ry, rz, mgl64.XYZ))
}

// AddForce accumulates a world-space force through the centre of mass
// for the next integration step and wakes the body.
func (b *Body) AddForce(f mgl64.Vec3) {
	b.Enable()
	b.force = b.force.Add(f)
}

// AddTorque accumulates a world-space torque for the next integration
// step and wakes the body.
func (b *Body) AddTorque(tq mgl64.Vec3) {
	b.Enable()
	b.torque = b.torque.Add(tq)
}

// AddForceAt accumulates a force applied at a world point, producing
// torque about the centre of mass.
func (b *Body) AddForceAt(f, point mgl64.Vec3) {
	b.AddForce(f)
	r := point.Sub(b.Transform.Position)
	b.torque = b.torque.Add(r.Cross(f))
}

// ClearAccumulators zeroes the pending force and torque.
func (b *Body) ClearAccumulators() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// Enable wakes the body.
func (b *Body) Enable() {
	b.Disabled = false
	b.IdleSteps = 0
}

// Disable puts the body to sleep, zeroing its motion.
func (b *Body) Disable() {
	b.Disabled = true
	b.IdleSteps = 0
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.ClearAccumulators()
}

// SetData attaches an opaque owner reference (the entity layer stores
// its Entity here).
func (b *Body) SetData(d any) { b.data = d }

// Data returns the opaque owner reference.
func (b *Body) Data() any { return b.data }

// Geoms returns the geoms attached to this body. The returned slice is
// the body's own; callers iterating while detaching must capture it
// first.
func (b *Body) Geoms() []*Geom { return b.geoms }

// IntegrateForces advances velocity by gravity plus the accumulated
// forces over dt, then clears the accumulators.
func (b *Body) IntegrateForces(dt float64, gravity mgl64.Vec3) {
	if b.Disabled || b.invMass == 0 {
		return
	}
	b.Velocity = b.Velocity.Add(gravity.Add(b.force.Mul(b.invMass)).Mul(dt))
	b.AngularVelocity = b.AngularVelocity.Add(b.InvInertiaWorld().Mul3x1(b.torque).Mul(dt))
	b.ClearAccumulators()
}

// IntegratePosition advances the transform by the current velocities
// over dt and refreshes the attached geoms.
func (b *Body) IntegratePosition(dt float64) {
	if b.Disabled {
		return
	}
	b.Transform.Position = b.Transform.Position.Add(b.Velocity.Mul(dt))

	omega := mgl64.Quat{W: 0, V: b.AngularVelocity}
	dq := omega.Mul(b.Transform.Rotation).Scale(0.5 * dt)
	b.Transform.Rotation = b.Transform.Rotation.Add(dq).Normalize()

	b.UpdateGeoms()
}

// UpdateGeoms recomputes the world AABB of every attached geom.
func (b *Body) UpdateGeoms() {
	for _, g := range b.geoms {
		g.UpdateAABB()
	}
}

// Idle reports whether the body is moving slower than the given linear
// and angular thresholds.
func (b *Body) Idle(linear, angular float64) bool {
	return b.Velocity.Len() < linear && b.AngularVelocity.Len() < angular
}

// AlignZTo rotates the body so its local Z axis points along dir. A
// near-zero dir is a degenerate request and leaves the orientation
// unchanged.
func (b *Body) AlignZTo(dir mgl64.Vec3) {
	l := dir.Len()
	if l < featureEpsilon {
		return
	}
	d := dir.Mul(1 / l)
	z := mgl64.Vec3{0, 0, 1}

	dot := z.Dot(d)
	switch {
	case dot > 1-featureEpsilon:
		b.SetRotation(mgl64.QuatIdent())
	case dot < -1+featureEpsilon:
		// Opposite direction: rotate half a turn about any perpendicular.
		b.SetRotation(mgl64.QuatRotate(math.Pi, mgl64.Vec3{1, 0, 0}))
	default:
		axis := z.Cross(d).Normalize()
		b.SetRotation(mgl64.QuatRotate(math.Acos(dot), axis))
	}
}
