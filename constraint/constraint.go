// Package constraint implements velocity-level constraints solved by
// sequential impulses: contact points with friction and restitution,
// and the permanent joints (ball, hinge, slider, fixed).
package constraint

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// Constraint is one velocity constraint between two bodies. Prepare is
// called once per step before the solver iterates; SolveVelocity is
// called once per iteration.
type Constraint interface {
	Prepare(dt float64)
	SolveVelocity(dt float64)
}

// Group collects transient constraints (contacts) created during one
// step so they can be dropped together afterwards.
type Group struct {
	constraints []Constraint
}

func (g *Group) Add(c Constraint) {
	g.constraints = append(g.constraints, c)
}

// Empty discards all constraints, keeping the backing storage.
func (g *Group) Empty() {
	g.constraints = g.constraints[:0]
}

func (g *Group) Len() int { return len(g.constraints) }

// Each calls fn for every constraint in insertion order.
func (g *Group) Each(fn func(Constraint)) {
	for _, c := range g.constraints {
		fn(c)
	}
}

// invMass returns the inverse mass of b, treating nil as the immovable
// world frame.
func invMass(b *actor.Body) float64 {
	if b == nil {
		return 0
	}
	return b.InvMass()
}

func invInertia(b *actor.Body) mgl64.Mat3 {
	if b == nil {
		return mgl64.Mat3{}
	}
	return b.InvInertiaWorld()
}

func position(b *actor.Body) mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.Position()
}

// velocityAt returns the world velocity of the point at offset r from
// the body centre.
func velocityAt(b *actor.Body, r mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.Velocity.Add(b.AngularVelocity.Cross(r))
}

func angularVelocity(b *actor.Body) mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.AngularVelocity
}

// applyImpulse applies impulse j at offset r from the body centre.
func applyImpulse(b *actor.Body, j, r mgl64.Vec3) {
	if b == nil || b.InvMass() == 0 {
		return
	}
	b.Velocity = b.Velocity.Add(j.Mul(b.InvMass()))
	b.AngularVelocity = b.AngularVelocity.Add(b.InvInertiaWorld().Mul3x1(r.Cross(j)))
}

func applyAngularImpulse(b *actor.Body, j mgl64.Vec3) {
	if b == nil || b.InvMass() == 0 {
		return
	}
	b.AngularVelocity = b.AngularVelocity.Add(b.InvInertiaWorld().Mul3x1(j))
}

// effectiveMass returns the scalar effective mass of a unit constraint
// along dir at offsets rA, rB.
func effectiveMass(a, b *actor.Body, rA, rB, dir mgl64.Vec3) float64 {
	m := invMass(a) + invMass(b)
	ra := rA.Cross(dir)
	rb := rB.Cross(dir)
	m += invInertia(a).Mul3x1(ra).Dot(ra)
	m += invInertia(b).Mul3x1(rb).Dot(rb)
	return m
}

// skewSymmetric returns the cross-product matrix of v, column-major.
func skewSymmetric(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		0, v.Z(), -v.Y(),
		-v.Z(), 0, v.X(),
		v.Y(), -v.X(), 0,
	}
}

// massMatrix builds the 3x3 effective mass matrix for a point-to-point
// constraint at offsets rA, rB.
func massMatrix(a, b *actor.Body, rA, rB mgl64.Vec3) mgl64.Mat3 {
	m := invMass(a) + invMass(b)
	k := mgl64.Diag3(mgl64.Vec3{m, m, m})

	sA := skewSymmetric(rA)
	k = addMat3(k, sA.Mul3(invInertia(a)).Mul3(sA.Transpose()))
	sB := skewSymmetric(rB)
	k = addMat3(k, sB.Mul3(invInertia(b)).Mul3(sB.Transpose()))
	return k
}

func addMat3(a, b mgl64.Mat3) mgl64.Mat3 {
	for i := range a {
		a[i] += b[i]
	}
	return a
}

// solveMat3 solves k*x = rhs, returning zero when k is singular (both
// bodies immovable).
func solveMat3(k mgl64.Mat3, rhs mgl64.Vec3) mgl64.Vec3 {
	if k.Det() == 0 {
		return mgl64.Vec3{}
	}
	return k.Inv().Mul3x1(rhs)
}

// tangentBasis returns two unit vectors orthogonal to n and each other.
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if mgl64.Abs(n.X()) > 0.707 {
		t1 = mgl64.Vec3{n.Y(), -n.X(), 0}
	} else {
		t1 = mgl64.Vec3{0, n.Z(), -n.Y()}
	}
	t1 = t1.Normalize()
	return t1, n.Cross(t1)
}
