// Package vmath provides the small component-wise vector and quaternion
// operations the engine relies on. Quaternion addition and scaling are kept
// as explicit functions rather than methods on a wrapper type, so the
// integrator's formulas read the same as their textbook form.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// QuatAdd returns the component-wise sum of two quaternions.
// This is NOT rotation composition; it is the raw arithmetic used when
// integrating a quaternion derivative.
func QuatAdd(a, b mgl64.Quat) mgl64.Quat {
	return mgl64.Quat{
		W: a.W + b.W,
		V: a.V.Add(b.V),
	}
}

// QuatScale returns q with every component multiplied by s.
func QuatScale(q mgl64.Quat, s float64) mgl64.Quat {
	return mgl64.Quat{
		W: q.W * s,
		V: q.V.Mul(s),
	}
}

// MulElem returns the component-wise product of a and b.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

// DivElem returns the component-wise quotient a/b. Axes where b is zero
// contribute zero instead of Inf/NaN; this is the guard used when dividing
// angular momentum by a diagonal inertia tensor with locked axes.
func DivElem(a, b mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		if b[i] != 0 {
			out[i] = a[i] / b[i]
		}
	}
	return out
}

// Reflect mirrors v about the plane whose unit normal is n.
func Reflect(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// SafeNormalize returns v scaled to unit length, or fallback when v has
// zero length. The fallback keeps collision normals well defined for
// coincident centers.
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	lenSq := v.Dot(v)
	if lenSq == 0 {
		return fallback
	}
	return v.Mul(1 / math.Sqrt(lenSq))
}

// Spin returns the quaternion derivative dq/dt for a body rotating at
// angularVelocity while oriented by rotation:
//
//	dq/dt = 0.5 * quat{0, ω} * q
func Spin(angularVelocity mgl64.Vec3, rotation mgl64.Quat) mgl64.Quat {
	omega := mgl64.Quat{W: 0, V: angularVelocity}
	return QuatScale(omega.Mul(rotation), 0.5)
}
