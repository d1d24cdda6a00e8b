package mechsim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
	"github.com/codifies/mechsim/clist"
)

// makeStatic registers a bodiless geom with metadata on the statics
// list and the broad phase.
func (ctx *Context) makeStatic(shape actor.Shape, pos mgl64.Vec3) *clist.Node[*actor.Geom] {
	g := actor.NewGeom(shape)
	g.SetData(NewGeomInfo(true, nil, 1, 1))
	g.SetPosition(pos)
	ctx.Space.Add(g)
	return ctx.Statics.Add(g)
}

// CreateStaticBox places an immovable box. size holds full edge
// lengths.
func (ctx *Context) CreateStaticBox(pos, size mgl64.Vec3) *clist.Node[*actor.Geom] {
	return ctx.makeStatic(&actor.Box{Size: size}, pos)
}

// CreateStaticSphere places an immovable sphere, typically a trigger
// volume.
func (ctx *Context) CreateStaticSphere(pos mgl64.Vec3, radius float64) *clist.Node[*actor.Geom] {
	return ctx.makeStatic(&actor.Sphere{Radius: radius}, pos)
}

// CreateStaticPlane places an infinite ground plane satisfying
// dot(normal, p) = offset.
func (ctx *Context) CreateStaticPlane(normal mgl64.Vec3, offset float64) *clist.Node[*actor.Geom] {
	return ctx.makeStatic(&actor.Plane{Normal: normal, Offset: offset}, mgl64.Vec3{})
}

// CreateStaticTrimesh places immovable triangle-mesh scenery. The mesh
// is referenced, not copied; callers must not mutate it afterwards.
func (ctx *Context) CreateStaticTrimesh(mesh *actor.TriMesh, pos mgl64.Vec3) *clist.Node[*actor.Geom] {
	node := ctx.makeStatic(mesh, pos)
	if gi := InfoOf(node.Data); gi != nil {
		gi.Mesh = mesh
	}
	return node
}

// FreeStatic destroys one static shape: broad phase, metadata, and
// registry node. Mid-iteration callers must advance their cursor
// first.
func (ctx *Context) FreeStatic(node *clist.Node[*actor.Geom]) {
	g := node.Data
	ctx.Space.Remove(g)
	g.SetData(nil)
	ctx.Statics.Delete(&node)
}
