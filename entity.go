package mechsim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
	"github.com/codifies/mechsim/clist"
)

// Entity wraps one engine body and its registry linkage. Entities are
// created through the Context constructors and die in FreeEntity; a
// freed entity must never be touched again.
type Entity struct {
	Body *actor.Body

	// Data is a free slot for gameplay state.
	Data any

	node *clist.Node[*Entity]
}

// Node returns the entity's registry node, for callers that sort or
// splice the live list.
func (e *Entity) Node() *clist.Node[*Entity] { return e.node }

// Geoms returns the entity's collision shapes.
func (e *Entity) Geoms() []*actor.Geom { return e.Body.Geoms() }

// SetEntityHew tints every shape of the entity.
func SetEntityHew(e *Entity, hew Color) {
	for _, g := range e.Body.Geoms() {
		if gi := InfoOf(g); gi != nil {
			gi.Hew = hew
		}
	}
}

// SetEntitySurfaces assigns one material to every shape of the entity.
func SetEntitySurfaces(e *Entity, s *Surface) {
	for _, g := range e.Body.Geoms() {
		if gi := InfoOf(g); gi != nil {
			gi.Surface = s
		}
	}
}

// SetBodyOrientation aligns the body's Z axis with dir. A zero dir is
// a no-op rather than an error.
func SetBodyOrientation(b *actor.Body, dir mgl64.Vec3) {
	b.AlignZTo(dir)
}

// CreateBaseEntity allocates a body with no shapes yet, registers it
// on the live list, and returns the wrapping entity. The body carries
// a back-reference to the entity in its data slot.
func (ctx *Context) CreateBaseEntity() *Entity {
	e := &Entity{Body: ctx.World.NewBody()}
	e.Body.SetData(e)
	e.node = ctx.Objects.Add(e)
	return e
}

// EntityOf returns the entity owning a body, or nil for bodies created
// outside the lifecycle manager.
func EntityOf(b *actor.Body) *Entity {
	if b == nil {
		return nil
	}
	e, _ := b.Data().(*Entity)
	return e
}

// attachGeom wires a shape onto the entity's body with fresh metadata
// and registers it with the broad phase.
func (ctx *Context) attachGeom(e *Entity, shape actor.Shape, offset mgl64.Vec3) *actor.Geom {
	g := actor.NewGeom(shape)
	g.SetData(NewGeomInfo(true, nil, 1, 1))
	g.SetBody(e.Body)
	if offset != (mgl64.Vec3{}) {
		g.SetOffset(offset, mgl64.QuatIdent())
	}
	ctx.Space.Add(g)
	return g
}

// CreateBox creates a box entity. size holds the full edge lengths.
func (ctx *Context) CreateBox(pos, size mgl64.Vec3, mass float64) *Entity {
	e := ctx.CreateBaseEntity()
	e.Body.SetMass(actor.BoxMass(mass, size.X(), size.Y(), size.Z()))
	ctx.attachGeom(e, &actor.Box{Size: size}, mgl64.Vec3{})
	e.Body.SetPosition(pos)
	return e
}

// CreateSphere creates a sphere entity.
func (ctx *Context) CreateSphere(pos mgl64.Vec3, radius, mass float64) *Entity {
	e := ctx.CreateBaseEntity()
	e.Body.SetMass(actor.SphereMass(mass, radius))
	ctx.attachGeom(e, &actor.Sphere{Radius: radius}, mgl64.Vec3{})
	e.Body.SetPosition(pos)
	return e
}

// CreateCylinder creates a flat-capped cylinder entity aligned with
// its local Z axis.
func (ctx *Context) CreateCylinder(pos mgl64.Vec3, radius, length, mass float64) *Entity {
	e := ctx.CreateBaseEntity()
	e.Body.SetMass(actor.CylinderMass(mass, radius, length))
	ctx.attachGeom(e, &actor.Cylinder{Radius: radius, Length: length}, mgl64.Vec3{})
	e.Body.SetPosition(pos)
	return e
}

// CreateCapsule creates a capsule entity aligned with its local Z
// axis. length is the cylindrical section only.
func (ctx *Context) CreateCapsule(pos mgl64.Vec3, radius, length, mass float64) *Entity {
	e := ctx.CreateBaseEntity()
	e.Body.SetMass(actor.CapsuleMass(mass, radius, length))
	ctx.attachGeom(e, &actor.Capsule{Radius: radius, Length: length}, mgl64.Vec3{})
	e.Body.SetPosition(pos)
	return e
}

// CreateDumbbell creates a composite entity: a connecting cylinder
// with a sphere on each end. Half the mass goes to the shaft, a
// quarter to each end.
func (ctx *Context) CreateDumbbell(pos mgl64.Vec3, radius, shaftLen, mass float64) *Entity {
	e := ctx.CreateBaseEntity()

	shaftRadius := radius / 2
	m := actor.CylinderMass(mass/2, shaftRadius, shaftLen)
	for _, sign := range []float64{-1, 1} {
		end := actor.SphereMass(mass/4, radius)
		end.Translate(mgl64.Vec3{0, 0, sign * shaftLen / 2})
		m.Add(end)
	}
	e.Body.SetMass(m)

	ctx.attachGeom(e, &actor.Cylinder{Radius: shaftRadius, Length: shaftLen}, mgl64.Vec3{})
	ctx.attachGeom(e, &actor.Sphere{Radius: radius}, mgl64.Vec3{0, 0, -shaftLen / 2})
	ctx.attachGeom(e, &actor.Sphere{Radius: radius}, mgl64.Vec3{0, 0, shaftLen / 2})
	e.Body.SetPosition(pos)
	return e
}

// ShapeMask selects which shapes CreateRandomEntity may produce.
type ShapeMask uint

const (
	BoxShape ShapeMask = 1 << iota
	SphereShape
	CylinderShape
	CapsuleShape
	DumbbellShape

	AllShapes = BoxShape | SphereShape | CylinderShape | CapsuleShape | DumbbellShape
)

const randomEntityMass = 10

// CreateRandomEntity creates one entity of a shape drawn uniformly
// from the mask, with randomized dimensions. An empty mask gets a box.
func (ctx *Context) CreateRandomEntity(pos mgl64.Vec3, mask ShapeMask) *Entity {
	if mask == 0 {
		mask = BoxShape
	}
	var kinds []ShapeMask
	for _, k := range []ShapeMask{BoxShape, SphereShape, CylinderShape, CapsuleShape, DumbbellShape} {
		if mask&k != 0 {
			kinds = append(kinds, k)
		}
	}
	switch kinds[ctx.rng.Intn(len(kinds))] {
	case SphereShape:
		return ctx.CreateSphere(pos, ctx.Rnd(0.25, 0.5), randomEntityMass)
	case CylinderShape:
		return ctx.CreateCylinder(pos, ctx.Rnd(0.25, 0.5), ctx.Rnd(0.5, 1), randomEntityMass)
	case CapsuleShape:
		return ctx.CreateCapsule(pos, ctx.Rnd(0.25, 0.5), ctx.Rnd(0.5, 1), randomEntityMass)
	case DumbbellShape:
		return ctx.CreateDumbbell(pos, ctx.Rnd(0.25, 0.4), ctx.Rnd(0.5, 1), randomEntityMass)
	default:
		s := ctx.Rnd(0.5, 1)
		return ctx.CreateBox(pos, mgl64.Vec3{s, s, s}, randomEntityMass)
	}
}

// FreeEntity destroys an entity: every shape is pulled from the broad
// phase and loses its metadata, the body is removed from the world,
// and the registry node is unlinked. Callers iterating the live list
// must advance their cursor before freeing the current entry.
func (ctx *Context) FreeEntity(e *Entity) {
	for _, g := range append([]*actor.Geom(nil), e.Body.Geoms()...) {
		ctx.Space.Remove(g)
		g.SetData(nil)
		g.SetBody(nil)
	}
	ctx.World.RemoveBody(e.Body)
	e.Body.SetData(nil)

	ctx.Objects.Delete(&e.node)
	e.Body = nil
}
