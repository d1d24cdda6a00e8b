package mechsim

import "github.com/codifies/mechsim/actor"

// Color is an RGBA tint in [0,1] channels.
type Color struct {
	R, G, B, A float64
}

// White is the neutral tint assigned to new metadata.
var White = Color{1, 1, 1, 1}

// Texture is an opaque handle into the caller's rendering layer. The
// framework only stores it.
type Texture struct {
	ID int
}

// Model is an opaque renderable-model handle, overriding the default
// per-shape visual when set.
type Model struct {
	ID int
}

// TriggerFunc reports an overlap with a trigger shape. trigger is the
// shape carrying the callback, intruder the shape that entered it. A
// trigger pair never produces physical contact.
type TriggerFunc func(trigger, intruder *actor.Geom)

// GeomInfo is the per-shape metadata riding in each geom's data slot.
// Every collidable shape attached to a tracked body or the statics
// list carries one.
type GeomInfo struct {
	// Collidable shapes generate contacts; non-collidable shapes are
	// skipped entirely by the resolver.
	Collidable bool

	// Texture is the shape's visual, nil for an invisible shape that
	// still collides. Visual overrides the default per-shape model.
	Texture  *Texture
	Visual   *Model
	UVScaleU float64
	UVScaleV float64

	// Hew tints the rendered shape.
	Hew Color

	// Trigger, when set, suppresses physical resolution and reports
	// the overlap instead.
	Trigger TriggerFunc

	// Surface selects the material; nil falls back to DefaultSurface.
	Surface *Surface

	// Mesh holds the collision triangles of a static trimesh shape.
	Mesh *actor.TriMesh

	// Data is a free slot for the caller.
	Data any
}

// NewGeomInfo creates shape metadata with the neutral tint and the
// default material.
func NewGeomInfo(collidable bool, tex *Texture, uvU, uvV float64) *GeomInfo {
	return &GeomInfo{
		Collidable: collidable,
		Texture:    tex,
		UVScaleU:   uvU,
		UVScaleV:   uvV,
		Hew:        White,
		Surface:    DefaultSurface,
	}
}

// InfoOf fetches the metadata of a geom, nil when none is attached.
func InfoOf(g *actor.Geom) *GeomInfo {
	gi, _ := g.Data().(*GeomInfo)
	return gi
}
