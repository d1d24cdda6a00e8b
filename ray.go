package mechsim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
	"github.com/codifies/mechsim/collide"
)

// RayCast fires a ray into the world and returns the nearest hit.
func (ctx *Context) RayCast(origin, dir mgl64.Vec3, maxLen float64) (collide.RayHit, bool) {
	return ctx.Space.RayCast(origin, dir, maxLen, nil)
}

// PickEntity fires a ray and returns the entity it hits first,
// skipping statics, triggers, and non-collidable shapes. The hit
// carries the surface point and normal.
func (ctx *Context) PickEntity(origin, dir mgl64.Vec3, maxLen float64) (*Entity, collide.RayHit, bool) {
	hit, ok := ctx.Space.RayCast(origin, dir, maxLen, func(g *actor.Geom) bool {
		if g.Body() == nil {
			return false
		}
		gi := InfoOf(g)
		if gi != nil && (gi.Trigger != nil || !gi.Collidable) {
			return false
		}
		return EntityOf(g.Body()) != nil
	})
	if !ok {
		return nil, hit, false
	}
	return EntityOf(hit.Geom.Body()), hit, true
}
