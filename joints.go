package mechsim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/constraint"
)

// CreateRotor hinges an entity to the world at the given anchor and
// axis and spins it with a velocity motor. Jointed pairs are excluded
// from contact generation, so the rotor never collides with whatever
// it is mounted on.
func (ctx *Context) CreateRotor(e *Entity, anchor, axis mgl64.Vec3, vel, fMax float64) *constraint.Hinge {
	h := constraint.NewHinge(nil, e.Body, anchor, axis)
	h.SetMotor(vel, fMax)
	ctx.World.AddJoint(h)
	return h
}

// CreatePiston connects two entities with a slider along axis. Piston
// shafts run metal on metal.
func (ctx *Context) CreatePiston(cylinder, rod *Entity, axis mgl64.Vec3) *constraint.Slider {
	s := constraint.NewSlider(cylinder.Body, rod.Body, axis)
	SetEntitySurfaces(cylinder, &Surfaces[Metal])
	SetEntitySurfaces(rod, &Surfaces[Metal])
	ctx.World.AddJoint(s)
	return s
}

// SetPistonLimits bounds the piston's travel.
func SetPistonLimits(s *constraint.Slider, lo, hi float64) {
	s.SetStops(lo, hi)
}

// PinEntityToWorld welds an entity in place at its current placement.
func (ctx *Context) PinEntityToWorld(e *Entity) *constraint.Fixed {
	f := constraint.NewFixed(nil, e.Body)
	ctx.World.AddJoint(f)
	return f
}

// RemoveJoint detaches a joint created by the helpers above.
func (ctx *Context) RemoveJoint(j constraint.Joint) {
	ctx.World.RemoveJoint(j)
}
