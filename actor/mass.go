package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mass describes a mass distribution: total mass, centre of mass
// relative to the body origin, and the inertia tensor about the body
// origin. Composite bodies build their distribution with Translate and
// Add before assigning it with Body.SetMass.
type Mass struct {
	Value  float64
	Center mgl64.Vec3
	I      mgl64.Mat3
}

// BoxMass returns the distribution of a solid box with the given total
// mass and full side lengths.
func BoxMass(total, lx, ly, lz float64) Mass {
	f := total / 12.0
	return Mass{
		Value: total,
		I: diag3(
			f*(ly*ly+lz*lz),
			f*(lx*lx+lz*lz),
			f*(lx*lx+ly*ly),
		),
	}
}

// SphereMass returns the distribution of a solid sphere.
func SphereMass(total, radius float64) Mass {
	i := 0.4 * total * radius * radius
	return Mass{Value: total, I: diag3(i, i, i)}
}

// CylinderMass returns the distribution of a solid cylinder aligned
// with the Z axis.
func CylinderMass(total, radius, length float64) Mass {
	ixy := total * (3*radius*radius + length*length) / 12.0
	iz := 0.5 * total * radius * radius
	return Mass{Value: total, I: diag3(ixy, ixy, iz)}
}

// CapsuleMass returns the distribution of a capsule aligned with the Z
// axis: a cylinder of the given length plus two hemispherical caps.
func CapsuleMass(total, radius, length float64) Mass {
	// Split the total by volume between the cylinder and the sphere the
	// two caps form.
	cylVol := math.Pi * radius * radius * length
	capVol := 4.0 / 3.0 * math.Pi * radius * radius * radius
	mCyl := total * cylVol / (cylVol + capVol)
	mCap := total - mCyl

	m := CylinderMass(mCyl, radius, length)
	caps := SphereMass(mCap, radius)
	// Caps sit at the cylinder ends; split the sphere between them.
	half := caps
	half.Value /= 2
	half.I = half.I.Mul(0.5)
	top := half
	top.Translate(mgl64.Vec3{0, 0, length / 2})
	bottom := half
	bottom.Translate(mgl64.Vec3{0, 0, -length / 2})
	m.Add(top)
	m.Add(bottom)
	m.Center = mgl64.Vec3{}
	return m
}

// Translate displaces the distribution by d, applying the parallel axis
// adjustment to the inertia tensor.
func (m *Mass) Translate(d mgl64.Vec3) {
	m.I = m.I.Add(parallelAxis(m.Value, d))
	m.Center = m.Center.Add(d)
}

// Add merges another distribution, expressed in the same body frame,
// into this one.
func (m *Mass) Add(o Mass) {
	total := m.Value + o.Value
	if total > 0 {
		m.Center = m.Center.Mul(m.Value).Add(o.Center.Mul(o.Value)).Mul(1 / total)
	}
	m.I = m.I.Add(o.I)
	m.Value = total
}

// parallelAxis is the inertia contribution of mass v displaced by d:
// v * (|d|^2 E - d d^T).
func parallelAxis(v float64, d mgl64.Vec3) mgl64.Mat3 {
	dd := d.Dot(d)
	outer := mgl64.Mat3{
		d.X() * d.X(), d.X() * d.Y(), d.X() * d.Z(),
		d.Y() * d.X(), d.Y() * d.Y(), d.Y() * d.Z(),
		d.Z() * d.X(), d.Z() * d.Y(), d.Z() * d.Z(),
	}
	return diag3(dd, dd, dd).Sub(outer).Mul(v)
}

func diag3(x, y, z float64) mgl64.Mat3 {
	return mgl64.Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, z,
	}
}
