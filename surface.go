package mechsim

import "math"

// SurfaceKind indexes the fixed material table.
type SurfaceKind int

const (
	Wood SurfaceKind = iota
	Metal
	Ice
	Rubber
	Earth

	SurfaceCount
)

func (k SurfaceKind) String() string {
	switch k {
	case Wood:
		return "wood"
	case Metal:
		return "metal"
	case Ice:
		return "ice"
	case Rubber:
		return "rubber"
	case Earth:
		return "earth"
	}
	return "unknown"
}

// Surface is one immutable set of material coefficients. Entities
// reference table entries by pointer; the table is never mutated.
type Surface struct {
	// Friction is the Coulomb friction coefficient.
	Friction float64
	// Bounce is restitution; BounceVel the minimum incoming speed
	// before any bounce occurs.
	Bounce    float64
	BounceVel float64
	// Slip1 and Slip2 are force-dependent slip coefficients along the
	// two friction directions.
	Slip1 float64
	Slip2 float64
}

// Surfaces is the material table. Index with a SurfaceKind.
var Surfaces = [SurfaceCount]Surface{
	Wood:   {Friction: 2.60, Bounce: 0.02, BounceVel: 0.1, Slip1: 0.001, Slip2: 0.001},
	Metal:  {Friction: 2.8, Bounce: 0.005, BounceVel: 0.05, Slip1: 0.001, Slip2: 0.001},
	Ice:    {Friction: 0.4, Bounce: 0, BounceVel: 0, Slip1: 0.05, Slip2: 0.05},
	Rubber: {Friction: 2.80, Bounce: 0.85, BounceVel: 0.1, Slip1: 0.0005, Slip2: 0.0005},
	Earth:  {Friction: 2.9, Bounce: 0.05, BounceVel: 0.1, Slip1: 0.0005, Slip2: 0.0005},
}

// DefaultSurface is assigned to metadata that never sets one.
var DefaultSurface = &Surfaces[Wood]

// Contact softness shared by every synthesized contact.
const (
	contactSoftERP = 0.1
	contactSoftCFM = 0.001
)

// blendSurfaces combines the materials of two touching shapes into one
// contact specification: geometric-mean friction, averaged restitution
// and slip, and the stricter of the two bounce thresholds.
func blendSurfaces(a, b *Surface) Surface {
	if a == nil {
		a = DefaultSurface
	}
	if b == nil {
		b = DefaultSurface
	}
	return Surface{
		Friction:  math.Sqrt(a.Friction * b.Friction),
		Bounce:    (a.Bounce + b.Bounce) / 2,
		BounceVel: math.Max(a.BounceVel, b.BounceVel),
		Slip1:     (a.Slip1 + b.Slip1) / 2,
		Slip2:     (a.Slip2 + b.Slip2) / 2,
	}
}
