package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid placement in 3D space.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform at pos.
func NewTransform(pos mgl64.Vec3) Transform {
	return Transform{
		Position: pos,
		Rotation: mgl64.QuatIdent(),
	}
}

// Apply maps a local point into world space.
func (t Transform) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// ApplyInverse maps a world point into local space.
func (t Transform) ApplyInverse(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world.Sub(t.Position))
}
