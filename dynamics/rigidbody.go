// Package dynamics holds the rigid-body state model, the collider shapes
// attached to bodies, and the RK4 integrator that advances both. Body and
// shape live in one package because inertia computation flows both ways:
// a body derives its tensor from its first attached shape.
package dynamics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound/vmath"
)

const (
	// MinMass is the clamp floor for body mass. Mass is strictly positive
	// at all times so the cached inverse stays finite.
	MinMass = 1e-5

	// DefaultFixedStep is the simulation tick assumed for converting
	// impulses into equivalent forces until the host registers the body
	// with a system carrying its own step.
	DefaultFixedStep = 1.0 / 50.0
)

// ForceMode selects how AddForceAtPoint applies its input.
type ForceMode int

const (
	// ForceModeForce is a mass-scaled continuous force.
	ForceModeForce ForceMode = iota
	// ForceModeAcceleration is a mass-independent continuous acceleration.
	ForceModeAcceleration
	// ForceModeImpulse is a mass-scaled instantaneous impulse, consumed by
	// the integrator this step only.
	ForceModeImpulse
	// ForceModeVelocityChange is a mass-independent instantaneous velocity
	// change, consumed this step only.
	ForceModeVelocityChange
)

// RigidBody is the simulated state of one physical entity: pose, momentum,
// and the per-step force accumulators the integrator consumes.
type RigidBody struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3

	Momentum        mgl64.Vec3
	AngularMomentum mgl64.Vec3

	// CenterOfMass is the local offset torque lever arms are measured
	// from. Recomputed from attached shapes by ResetCenterOfMass.
	CenterOfMass mgl64.Vec3

	// InertiaTensor is diagonal, one moment per local axis. A zero
	// component locks rotation about that axis.
	InertiaTensor mgl64.Vec3

	// SimulateGravity makes the integrator and the friction model treat
	// the body as falling under the system's gravity vector.
	SimulateGravity bool

	// Enabled gates simulation. Shapes attached to a disabled body are
	// treated as static by the registry and the response solver.
	Enabled bool

	mass        float64
	inverseMass float64
	drag        float64
	angularDrag float64

	// sleepThreshold is reserved for a sleeping model; today it only
	// selects between static and kinetic friction regimes.
	sleepThreshold float64

	fixedStep float64

	force               mgl64.Vec3
	acceleration        mgl64.Vec3
	torque              mgl64.Vec3
	angularAcceleration mgl64.Vec3

	shapes []*Shape
}

// NewRigidBody creates an enabled, gravity-simulating body of the given
// mass at the origin. Mass is clamped per SetMass.
func NewRigidBody(mass float64) *RigidBody {
	rb := &RigidBody{
		Rotation:        mgl64.QuatIdent(),
		Scale:           mgl64.Vec3{1, 1, 1},
		SimulateGravity: true,
		Enabled:         true,
		fixedStep:       DefaultFixedStep,
	}
	rb.SetMass(mass)
	rb.ResetInertiaTensor()
	return rb
}

// SetMass assigns the body's mass, clamping non-positive values to MinMass,
// and refreshes the cached inverse. Passing a non-positive mass is a
// caller bug; the clamp keeps the invariant mass > 0 regardless.
func (rb *RigidBody) SetMass(mass float64) {
	if mass < MinMass {
		mass = MinMass
	}
	rb.mass = mass
	rb.inverseMass = 1 / mass
}

func (rb *RigidBody) Mass() float64 {
	return rb.mass
}

func (rb *RigidBody) InverseMass() float64 {
	return rb.inverseMass
}

// SetDrag sets the linear drag coefficient, clamped to >= 0. Drag is a
// first-order resistance term proportional to momentum, not an exponential
// decay.
func (rb *RigidBody) SetDrag(drag float64) {
	rb.drag = math.Max(0, drag)
}

func (rb *RigidBody) Drag() float64 {
	return rb.drag
}

// SetAngularDrag sets the angular drag coefficient, clamped to >= 0.
func (rb *RigidBody) SetAngularDrag(drag float64) {
	rb.angularDrag = math.Max(0, drag)
}

func (rb *RigidBody) AngularDrag() float64 {
	return rb.angularDrag
}

// SetSleepThreshold sets the force magnitude below which friction switches
// to its static coefficient. Clamped to >= 0.
func (rb *RigidBody) SetSleepThreshold(threshold float64) {
	rb.sleepThreshold = math.Max(0, threshold)
}

func (rb *RigidBody) SleepThreshold() float64 {
	return rb.sleepThreshold
}

// SetFixedStep sets the simulation tick used to convert impulses into
// forces. Non-positive values are ignored. Called by the system at
// registration so every body shares the host's step.
func (rb *RigidBody) SetFixedStep(dt float64) {
	if dt > 0 {
		rb.fixedStep = dt
	}
}

func (rb *RigidBody) FixedStep() float64 {
	return rb.fixedStep
}

// Velocity derives the body's linear velocity from its momentum.
func (rb *RigidBody) Velocity() mgl64.Vec3 {
	return rb.Momentum.Mul(rb.inverseMass)
}

// AngularVelocity derives the rotation rate from angular momentum,
// component-wise against the diagonal inertia tensor. Locked (zero-inertia)
// axes contribute zero.
func (rb *RigidBody) AngularVelocity() mgl64.Vec3 {
	return vmath.DivElem(rb.AngularMomentum, rb.InertiaTensor)
}

// Spin returns the quaternion derivative of the current orientation under
// the current angular velocity.
func (rb *RigidBody) Spin() mgl64.Quat {
	return vmath.Spin(rb.AngularVelocity(), rb.Rotation)
}

// AddForce accumulates a continuous force for this step.
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	rb.force = rb.force.Add(force)
}

// AddAcceleration accumulates a mass-independent continuous acceleration.
func (rb *RigidBody) AddAcceleration(acceleration mgl64.Vec3) {
	rb.acceleration = rb.acceleration.Add(acceleration)
}

func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	rb.torque = rb.torque.Add(torque)
}

func (rb *RigidBody) AddAngularAcceleration(acceleration mgl64.Vec3) {
	rb.angularAcceleration = rb.angularAcceleration.Add(acceleration)
}

// AddImpulse converts an instantaneous impulse into the equivalent force
// over one fixed step, so the integrator consumes it this step only.
func (rb *RigidBody) AddImpulse(impulse mgl64.Vec3) {
	rb.force = rb.force.Add(impulse.Mul(1 / rb.fixedStep))
}

// AddAngularImpulse converts an instantaneous angular impulse into the
// equivalent torque over one fixed step.
func (rb *RigidBody) AddAngularImpulse(impulse mgl64.Vec3) {
	rb.torque = rb.torque.Add(impulse.Mul(1 / rb.fixedStep))
}

// AddForceAtPoint applies force at a world-space point, decomposing it into
// a linear contribution plus the torque force x ((position + centerOfMass)
// - point). The mode selects continuous vs instantaneous and mass-scaled vs
// mass-independent semantics. An unknown mode is a programming error.
func (rb *RigidBody) AddForceAtPoint(force, point mgl64.Vec3, mode ForceMode) {
	lever := rb.Position.Add(rb.CenterOfMass).Sub(point)
	torque := force.Cross(lever)

	switch mode {
	case ForceModeForce:
		rb.AddForce(force)
		rb.AddTorque(torque)
	case ForceModeAcceleration:
		rb.AddAcceleration(force)
		rb.AddAngularAcceleration(torque)
	case ForceModeImpulse:
		rb.AddImpulse(force)
		rb.AddAngularImpulse(torque)
	case ForceModeVelocityChange:
		rb.AddAcceleration(force.Mul(1 / rb.fixedStep))
		rb.AddAngularAcceleration(torque.Mul(1 / rb.fixedStep))
	default:
		panic("dynamics: unknown force mode")
	}
}

// ResetAccumulators zeroes all four force buffers. The system calls this
// exactly once per step, after integration has consumed them.
func (rb *RigidBody) ResetAccumulators() {
	rb.force = mgl64.Vec3{}
	rb.acceleration = mgl64.Vec3{}
	rb.torque = mgl64.Vec3{}
	rb.angularAcceleration = mgl64.Vec3{}
}

// AccumulatedForce returns the force buffered for the current step.
func (rb *RigidBody) AccumulatedForce() mgl64.Vec3 {
	return rb.force
}

func (rb *RigidBody) AccumulatedTorque() mgl64.Vec3 {
	return rb.torque
}

// Attach links a shape to the body and recomputes inertia and center of
// mass. A shape still attached to another body must be detached there
// first.
func (rb *RigidBody) Attach(s *Shape) {
	s.Body = rb
	rb.shapes = append(rb.shapes, s)
	rb.ResetInertiaTensor()
	rb.ResetCenterOfMass()
}

// Detach unlinks a shape and recomputes inertia and center of mass.
// Detaching an unattached shape is a no-op.
func (rb *RigidBody) Detach(s *Shape) {
	k := -1
	for i, attached := range rb.shapes {
		if attached == s {
			k = i
			break
		}
	}
	if k == -1 {
		return
	}
	rb.shapes = append(rb.shapes[:k], rb.shapes[k+1:]...)
	s.Body = nil
	rb.ResetInertiaTensor()
	rb.ResetCenterOfMass()
}

func (rb *RigidBody) Shapes() []*Shape {
	return rb.shapes
}

// ResetInertiaTensor recomputes the diagonal tensor from the first attached
// shape. Compound bodies are not modeled; with no shapes attached the body
// falls back to a uniform sphere whose radius is the average world scale,
// (Scale.X + Scale.Y + Scale.Z) / 3.
func (rb *RigidBody) ResetInertiaTensor() {
	if len(rb.shapes) > 0 {
		rb.InertiaTensor = rb.shapes[0].ComputeInertia(rb.mass)
		return
	}

	radius := (rb.Scale.X() + rb.Scale.Y() + rb.Scale.Z()) / 3
	i := (2.0 / 5.0) * rb.mass * radius * radius
	rb.InertiaTensor = mgl64.Vec3{i, i, i}
}

// ResetCenterOfMass recomputes the local center of mass as the average of
// the attached shape centers, or zero with none attached.
func (rb *RigidBody) ResetCenterOfMass() {
	if len(rb.shapes) == 0 {
		rb.CenterOfMass = mgl64.Vec3{}
		return
	}

	var sum mgl64.Vec3
	for _, s := range rb.shapes {
		sum = sum.Add(s.Center)
	}
	rb.CenterOfMass = sum.Mul(1 / float64(len(rb.shapes)))
}
