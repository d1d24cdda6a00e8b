package mechsim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// Geom-only constructors build a metadata-carrying shape without a
// body, for composites and hand-assembled statics. The caller attaches
// it to a body (or places it) and registers it with ctx.Space.

// CreateBoxGeom builds a detached box shape with default metadata.
func CreateBoxGeom(size mgl64.Vec3) *actor.Geom {
	g := actor.NewGeom(&actor.Box{Size: size})
	g.SetData(NewGeomInfo(true, nil, 1, 1))
	return g
}

// CreateSphereGeom builds a detached sphere shape with default
// metadata.
func CreateSphereGeom(radius float64) *actor.Geom {
	g := actor.NewGeom(&actor.Sphere{Radius: radius})
	g.SetData(NewGeomInfo(true, nil, 1, 1))
	return g
}

// CreateCylinderGeom builds a detached cylinder shape with default
// metadata.
func CreateCylinderGeom(radius, length float64) *actor.Geom {
	g := actor.NewGeom(&actor.Cylinder{Radius: radius, Length: length})
	g.SetData(NewGeomInfo(true, nil, 1, 1))
	return g
}

// AttachGeom wires a detached geom onto an entity at the given offset
// and registers it with the broad phase.
func (ctx *Context) AttachGeom(e *Entity, g *actor.Geom, offset mgl64.Vec3) {
	g.SetBody(e.Body)
	if offset != (mgl64.Vec3{}) {
		g.SetOffset(offset, mgl64.QuatIdent())
	}
	ctx.Space.Add(g)
}
