package actor

import "github.com/go-gl/mathgl/mgl64"

// AllBits is the default category/collide mask: collide with everything.
const AllBits = ^uint32(0)

// Geom is one collision shape placed in the world, either attached to a
// Body (following its transform, optionally at an offset) or static
// (carrying its own placement).
//
// The Data slot carries per-shape metadata owned by the entity layer;
// the geom itself never inspects it.
type Geom struct {
	// CategoryBits and CollideBits gate broad-phase pairing: two geoms
	// pair only if one's category intersects the other's collide mask.
	CategoryBits uint32
	CollideBits  uint32

	shape Shape
	body  *Body

	// Placement for a static geom; offset from the body when attached.
	local Transform

	aabb AABB
	data any
}

// NewGeom creates a detached geom at the origin with the given shape.
func NewGeom(s Shape) *Geom {
	g := &Geom{
		shape:        s,
		local:        NewTransform(mgl64.Vec3{}),
		CategoryBits: AllBits,
		CollideBits:  AllBits,
	}
	g.UpdateAABB()
	return g
}

// Shape returns the geom's collision shape.
func (g *Geom) Shape() Shape { return g.shape }

// Body returns the owning body, or nil for static geometry.
func (g *Geom) Body() *Body { return g.body }

// SetBody attaches the geom to b with a zero offset, or detaches it
// when b is nil. Detaching keeps the geom's current world placement.
func (g *Geom) SetBody(b *Body) {
	if g.body == b {
		return
	}
	if g.body != nil {
		// Keep the world placement on detach.
		world := g.Placement()
		geoms := g.body.geoms
		for i, other := range geoms {
			if other == g {
				g.body.geoms = append(geoms[:i], geoms[i+1:]...)
				break
			}
		}
		g.local = world
	}
	g.body = b
	if b != nil {
		g.local = NewTransform(mgl64.Vec3{})
		b.geoms = append(b.geoms, g)
	}
	g.UpdateAABB()
}

// SetOffset places the geom relative to its body. For a detached geom
// this sets the world placement directly.
func (g *Geom) SetOffset(pos mgl64.Vec3, rot mgl64.Quat) {
	g.local = Transform{Position: pos, Rotation: rot.Normalize()}
	g.UpdateAABB()
}

// SetPosition places a static geom in the world, or adjusts the offset
// position of an attached one.
func (g *Geom) SetPosition(p mgl64.Vec3) {
	g.local.Position = p
	g.UpdateAABB()
}

// Placement returns the geom's world transform.
func (g *Geom) Placement() Transform {
	if g.body == nil {
		return g.local
	}
	bt := g.body.Transform
	return Transform{
		Position: bt.Apply(g.local.Position),
		Rotation: bt.Rotation.Mul(g.local.Rotation).Normalize(),
	}
}

// Position returns the geom's world position.
func (g *Geom) Position() mgl64.Vec3 { return g.Placement().Position }

// AABB returns the cached world bounding box. It is refreshed by body
// integration and by placement setters.
func (g *Geom) AABB() AABB { return g.aabb }

// UpdateAABB recomputes the cached world bounding box.
func (g *Geom) UpdateAABB() {
	g.aabb = g.shape.BoundingBox(g.Placement())
}

// SetData attaches opaque per-shape metadata.
func (g *Geom) SetData(d any) { g.data = d }

// Data returns the attached metadata, or nil.
func (g *Geom) Data() any { return g.data }

// ShouldCollide applies the category/collide bit filter to a pair.
func (g *Geom) ShouldCollide(other *Geom) bool {
	return g.CategoryBits&other.CollideBits != 0 ||
		other.CategoryBits&g.CollideBits != 0
}
