package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// ContactParams is the blended surface behaviour of one contact.
type ContactParams struct {
	// Mu is the Coulomb friction coefficient. math.Inf(1) means the
	// tangential impulse is never clamped.
	Mu float64
	// Bounce is the restitution coefficient; BounceVel the minimum
	// incoming normal speed before any bounce is applied.
	Bounce    float64
	BounceVel float64
	// Slip1 and Slip2 are force-dependent slip coefficients along the
	// two friction directions: the contact tolerates a tangential
	// velocity proportional to the normal force.
	Slip1 float64
	Slip2 float64
	// SoftERP and SoftCFM soften the penetration correction: ERP sets
	// the fraction of remaining depth corrected per step, CFM mixes
	// compliance into the normal constraint.
	SoftERP float64
	SoftCFM float64
}

// Contact is one contact point between the surfaces of two bodies.
// Either body may be nil, standing for the static world. Normal points
// from B toward A.
type Contact struct {
	BodyA *actor.Body
	BodyB *actor.Body

	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64

	Params ContactParams

	rA, rB   mgl64.Vec3
	t1, t2   mgl64.Vec3
	massN    float64
	massT1   float64
	massT2   float64
	bias     float64
	restVel  float64
	impulseN float64
	impulseT [2]float64
}

// allowed penetration before the bias kicks in, in meters
const contactSlop = 0.005

func (c *Contact) Prepare(dt float64) {
	c.rA = c.Pos.Sub(position(c.BodyA))
	c.rB = c.Pos.Sub(position(c.BodyB))
	c.t1, c.t2 = tangentBasis(c.Normal)

	c.massN = effectiveMass(c.BodyA, c.BodyB, c.rA, c.rB, c.Normal)
	c.massN += c.Params.SoftCFM / dt
	c.massT1 = effectiveMass(c.BodyA, c.BodyB, c.rA, c.rB, c.t1)
	c.massT2 = effectiveMass(c.BodyA, c.BodyB, c.rA, c.rB, c.t2)

	erp := c.Params.SoftERP
	if erp == 0 {
		erp = 0.2
	}
	c.bias = erp / dt * math.Max(0, c.Depth-contactSlop)

	// Restitution targets the approach speed at the start of the step.
	vn := velocityAt(c.BodyA, c.rA).Sub(velocityAt(c.BodyB, c.rB)).Dot(c.Normal)
	c.restVel = 0
	if c.Params.Bounce > 0 && -vn > c.Params.BounceVel {
		c.restVel = -c.Params.Bounce * vn
	}

	c.impulseN = 0
	c.impulseT[0] = 0
	c.impulseT[1] = 0
}

func (c *Contact) SolveVelocity(dt float64) {
	if c.massN < 1e-10 {
		return
	}

	// Normal: push the approach speed to max(bias, restitution target),
	// accumulated impulse clamped to stay repulsive.
	rel := velocityAt(c.BodyA, c.rA).Sub(velocityAt(c.BodyB, c.rB))
	vn := rel.Dot(c.Normal)

	target := math.Max(c.bias, c.restVel)
	lambda := (target - vn) / c.massN
	old := c.impulseN
	c.impulseN = math.Max(0, old+lambda)
	lambda = c.impulseN - old

	jn := c.Normal.Mul(lambda)
	applyImpulse(c.BodyA, jn, c.rA)
	applyImpulse(c.BodyB, jn.Mul(-1), c.rB)

	if c.impulseN == 0 {
		return
	}

	c.solveFriction(c.t1, &c.impulseT[0], c.massT1, c.Params.Slip1, dt)
	c.solveFriction(c.t2, &c.impulseT[1], c.massT2, c.Params.Slip2, dt)
}

// solveFriction cancels tangential velocity along dir up to the
// Coulomb limit. A slip coefficient lets a residual velocity
// proportional to the normal force through, which keeps rolling
// contacts from sticking dead.
func (c *Contact) solveFriction(dir mgl64.Vec3, accum *float64, mass, slip, dt float64) {
	if mass < 1e-10 {
		return
	}
	rel := velocityAt(c.BodyA, c.rA).Sub(velocityAt(c.BodyB, c.rB))
	vt := rel.Dot(dir)

	allowed := slip * c.impulseN / dt
	residual := vt
	if math.Abs(residual) <= allowed {
		return
	}
	residual -= math.Copysign(allowed, residual)

	lambda := -residual / mass
	old := *accum
	if math.IsInf(c.Params.Mu, 1) {
		*accum = old + lambda
	} else {
		limit := c.Params.Mu * c.impulseN
		*accum = mgl64.Clamp(old+lambda, -limit, limit)
	}
	lambda = *accum - old

	jt := dir.Mul(lambda)
	applyImpulse(c.BodyA, jt, c.rA)
	applyImpulse(c.BodyB, jt.Mul(-1), c.rB)
}
