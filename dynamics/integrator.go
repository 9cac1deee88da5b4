package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound/vmath"
)

// derivative is one RK4 stage evaluation: the rate of change of position,
// momentum, orientation and angular momentum.
type derivative struct {
	velocity mgl64.Vec3
	force    mgl64.Vec3
	spin     mgl64.Quat
	torque   mgl64.Vec3
}

// Integrate advances the body's pose and momenta over dt with a four-stage
// Runge-Kutta evaluation of the accumulated forces. Gravity contributes
// gravity*mass when the body simulates it. The accumulators are read but
// not cleared; the system resets them after all bodies have integrated.
func Integrate(rb *RigidBody, dt float64, gravity mgl64.Vec3) {
	if !rb.Enabled {
		return
	}

	k1 := evaluate(rb, 0, derivative{}, gravity)
	k2 := evaluate(rb, dt/2, k1, gravity)
	k3 := evaluate(rb, dt/2, k2, gravity)
	k4 := evaluate(rb, dt, k3, gravity)

	velocity := simpson(k1.velocity, k2.velocity, k3.velocity, k4.velocity)
	force := simpson(k1.force, k2.force, k3.force, k4.force)
	torque := simpson(k1.torque, k2.torque, k3.torque, k4.torque)
	spin := simpsonQuat(k1.spin, k2.spin, k3.spin, k4.spin)

	rb.Position = rb.Position.Add(velocity.Mul(dt))
	rb.Momentum = rb.Momentum.Add(force.Mul(dt))
	rb.AngularMomentum = rb.AngularMomentum.Add(torque.Mul(dt))

	// Quaternion integration is component-wise addition of the spin
	// derivative, renormalized to stay on the unit sphere.
	rb.Rotation = vmath.QuatAdd(rb.Rotation, vmath.QuatScale(spin, dt)).Normalize()
}

// evaluate computes the stage derivative at the state perturbed by the
// previous stage's derivative over dt. Drag is a linear resistance term
// subtracted from force, proportional to the (perturbed) momentum.
func evaluate(rb *RigidBody, dt float64, prev derivative, gravity mgl64.Vec3) derivative {
	momentum := rb.Momentum.Add(prev.force.Mul(dt))
	angularMomentum := rb.AngularMomentum.Add(prev.torque.Mul(dt))
	rotation := vmath.QuatAdd(rb.Rotation, vmath.QuatScale(prev.spin, dt))

	var d derivative

	d.velocity = momentum.Mul(rb.inverseMass)

	d.force = rb.force.
		Add(rb.acceleration.Mul(rb.mass)).
		Sub(momentum.Mul(rb.drag))
	if rb.SimulateGravity {
		d.force = d.force.Add(gravity.Mul(rb.mass))
	}

	d.torque = rb.torque.
		Add(rb.angularAcceleration.Mul(rb.mass)).
		Sub(angularMomentum.Mul(rb.angularDrag))

	omega := vmath.DivElem(angularMomentum, rb.InertiaTensor)
	d.spin = vmath.Spin(omega, rotation)

	return d
}

// simpson applies the RK4 weighting (k1 + 2*k2 + 2*k3 + k4) / 6.
func simpson(k1, k2, k3, k4 mgl64.Vec3) mgl64.Vec3 {
	return k1.Add(k2.Add(k3).Mul(2)).Add(k4).Mul(1.0 / 6.0)
}

func simpsonQuat(k1, k2, k3, k4 mgl64.Quat) mgl64.Quat {
	sum := vmath.QuatAdd(k1, vmath.QuatScale(vmath.QuatAdd(k2, k3), 2))
	sum = vmath.QuatAdd(sum, k4)
	return vmath.QuatScale(sum, 1.0/6.0)
}
