package mechsim

import (
	"github.com/codifies/mechsim/actor"
	"github.com/codifies/mechsim/collide"
	"github.com/codifies/mechsim/constraint"
)

// maxContactsPerPair caps the contact points generated for one shape
// pair per slice; excess points are dropped.
const maxContactsPerPair = 8

// wakeVelocity is the speed an awake body must have before a contact
// wakes its sleeping partner. Below it, resting piles stay asleep.
const wakeVelocity = 0.05

// nearCallback classifies one broad-phase candidate pair and, for
// physical pairs, synthesizes contact constraints into the transient
// group. It runs once per candidate pair per slice.
func (ctx *Context) nearCallback(g1, g2 *actor.Geom) {
	b1, b2 := g1.Body(), g2.Body()

	// Jointed bodies handle their interaction through the joint.
	if b1 != nil && b2 != nil && ctx.World.Connected(b1, b2) {
		return
	}

	gi1, gi2 := InfoOf(g1), InfoOf(g2)

	// Trigger shapes report the overlap instead of colliding. Only the
	// first trigger fires, once per pair per slice.
	if gi1 != nil && gi1.Trigger != nil {
		gi1.Trigger(g1, g2)
		return
	}
	if gi2 != nil && gi2.Trigger != nil {
		gi2.Trigger(g2, g1)
		return
	}

	if gi1 != nil && !gi1.Collidable {
		return
	}
	if gi2 != nil && !gi2.Collidable {
		return
	}

	points := collide.Collide(g1, g2, maxContactsPerPair)
	if len(points) == 0 {
		return
	}

	surf := blendSurfaces(surfaceOf(gi1), surfaceOf(gi2))
	params := constraint.ContactParams{
		Mu:        surf.Friction,
		Bounce:    surf.Bounce,
		BounceVel: surf.BounceVel,
		Slip1:     surf.Slip1,
		Slip2:     surf.Slip2,
		SoftERP:   contactSoftERP,
		SoftCFM:   contactSoftCFM,
	}

	ctx.wakeOnContact(b1, b2)

	for _, p := range points {
		ctx.contacts.Add(&constraint.Contact{
			BodyA:  b1,
			BodyB:  b2,
			Pos:    p.Pos,
			Normal: p.Normal,
			Depth:  p.Depth,
			Params: params,
		})
	}
}

func surfaceOf(gi *GeomInfo) *Surface {
	if gi == nil {
		return nil
	}
	return gi.Surface
}

// wakeOnContact wakes a sleeping body when its partner is moving fast
// enough to matter. Contacts between a sleeper and a near-still body
// leave the sleeper alone, so settled piles stay settled.
func (ctx *Context) wakeOnContact(b1, b2 *actor.Body) {
	wake := func(sleeper, other *actor.Body) {
		if sleeper == nil || !sleeper.Disabled || other == nil {
			return
		}
		if other.Velocity.Len() > wakeVelocity || other.AngularVelocity.Len() > wakeVelocity {
			sleeper.Enable()
		}
	}
	wake(b1, b2)
	wake(b2, b1)
}

// LastContacts reports how many contact constraints the most recent
// slice produced.
func (ctx *Context) LastContacts() int { return ctx.lastContacts }
