package rebound

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound/dynamics"
	"github.com/rebound-engine/rebound/material"
	"github.com/rebound-engine/rebound/vmath"
)

// resolveContact drives the contact lifecycle state machine for one
// narrow-phase hit. First contact gets the full position and momentum
// correction; continued contact gets friction only, so resting contacts do
// not re-absorb the collision impulse every step.
func (s *System) resolveContact(c Contact) {
	// Staticness is read live: disabling both bodies after registration
	// leaves the pair in the dynamic buckets, but two static shapes are
	// never resolved against each other.
	if c.A.Static() && c.B.Static() {
		return
	}

	first := !c.A.Touching(c.B.Handle()) && !c.B.Touching(c.A.Handle())

	if first {
		if c.A.Static() || c.B.Static() {
			s.staticResponse(c)
		} else {
			s.impulseResponse(c)
		}
		c.A.MarkTouching(c.B.Handle())
		c.B.MarkTouching(c.A.Handle())
		s.events.queue(CollisionEnter, c.A, c.B)
	} else {
		s.applyContactFriction(c)
		s.events.queue(CollisionStay, c.A, c.B)
	}
}

// separatePair clears persisted touching state after a miss. Emits the
// collision-exit notification when the pair was touching before.
func (s *System) separatePair(a, b *dynamics.Shape) {
	if !a.Touching(b.Handle()) && !b.Touching(a.Handle()) {
		return
	}
	a.ClearTouching(b.Handle())
	b.ClearTouching(a.Handle())
	s.events.queue(CollisionExit, a, b)
}

// impulseResponse resolves a dynamic-dynamic contact: depenetration split
// evenly between the bodies, then a restitution-scaled momentum exchange,
// then friction on both sides.
func (s *System) impulseResponse(c Contact) {
	bodyA := c.A.Body
	bodyB := c.B.Body

	// Each body retreats half the penetration along the normal, applied
	// exactly once per contact.
	half := c.Normal.Mul(c.Penetration / 2)
	bodyA.Position = bodyA.Position.Sub(half)
	bodyB.Position = bodyB.Position.Add(half)

	combA, combB := material.CombinePair(c.A.Material, c.B.Material)

	massA := bodyA.Mass()
	massB := bodyB.Mass()
	velA := bodyA.Velocity()
	velB := bodyB.Velocity()

	// Restitution-scaled conservation-of-momentum exchange. The formula
	// yields the outgoing speeds; the outgoing directions come from
	// reflecting each body's incoming velocity about the normal (negated
	// for A, whose side of the contact faces -normal).
	v1 := bodyA.Momentum.
		Add(bodyB.Momentum.Mul(2)).
		Sub(velA.Mul(massB)).
		Mul(combA.Restitution / (massA + massB))
	v2 := velA.Sub(velB).Mul(combB.Restitution).Add(v1)

	dirA := vmath.Reflect(vmath.SafeNormalize(velA, c.Normal), c.Normal.Mul(-1))
	dirB := vmath.Reflect(vmath.SafeNormalize(velB, c.Normal.Mul(-1)), c.Normal)

	bodyA.Momentum = dirA.Mul(v1.Len() * massA)
	bodyB.Momentum = dirB.Mul(v2.Len() * massB)

	// Angular exchange: the same formula with per-axis inertia standing in
	// for mass and angular momentum for momentum. Component-wise division
	// guards locked axes.
	inertiaSum := bodyA.InertiaTensor.Add(bodyB.InertiaTensor)
	omegaA := bodyA.AngularVelocity()
	omegaB := bodyB.AngularVelocity()

	w1 := vmath.DivElem(
		bodyA.AngularMomentum.
			Add(bodyB.AngularMomentum.Mul(2)).
			Sub(vmath.MulElem(omegaA, bodyB.InertiaTensor)),
		inertiaSum,
	).Mul(combA.Restitution)
	w2 := omegaA.Sub(omegaB).Mul(combB.Restitution).Add(w1)

	dirWA := vmath.Reflect(vmath.SafeNormalize(omegaA, c.Normal), c.Normal.Mul(-1))
	dirWB := vmath.Reflect(vmath.SafeNormalize(omegaB, c.Normal.Mul(-1)), c.Normal)

	bodyA.AngularMomentum = vmath.MulElem(dirWA.Mul(w1.Len()), bodyA.InertiaTensor)
	bodyB.AngularMomentum = vmath.MulElem(dirWB.Mul(w2.Len()), bodyB.InertiaTensor)

	s.applyFriction(bodyA, c.Point, combA)
	s.applyFriction(bodyB, c.Point, combB)
}

// staticResponse resolves a contact against an immovable shape: the dynamic
// body is fully displaced out of penetration and its momenta reflect about
// the normal, scaled by the dynamic side's combined restitution.
func (s *System) staticResponse(c Contact) {
	dyn := c.A
	away := c.Normal.Mul(-1) // A retreats against the A->B normal
	if dyn.Static() {
		dyn = c.B
		away = c.Normal
	}
	body := dyn.Body
	if body == nil {
		return
	}

	body.Position = body.Position.Add(away.Mul(c.Penetration))

	var comb material.Combined
	if dyn == c.A {
		comb, _ = material.CombinePair(c.A.Material, c.B.Material)
	} else {
		_, comb = material.CombinePair(c.A.Material, c.B.Material)
	}

	body.Momentum = vmath.Reflect(body.Momentum, c.Normal).Mul(comb.Restitution)
	body.AngularMomentum = vmath.Reflect(body.AngularMomentum, c.Normal).Mul(comb.Restitution)

	s.applyFriction(body, c.Point, comb)
}

// applyContactFriction applies surface friction for a persisting contact
// without re-running the momentum exchange.
func (s *System) applyContactFriction(c Contact) {
	combA, combB := material.CombinePair(c.A.Material, c.B.Material)
	if !c.A.Static() {
		s.applyFriction(c.A.Body, c.Point, combA)
	}
	if !c.B.Static() {
		s.applyFriction(c.B.Body, c.Point, combB)
	}
}

// applyFriction opposes the body's effective motion at the contact point.
// The normal-force magnitude is approximated from the angle between the
// contact line and the downward axis; below the body's sleep threshold the
// static coefficient resists initial motion, above it the kinetic
// coefficient applies.
func (s *System) applyFriction(body *dynamics.RigidBody, point mgl64.Vec3, comb material.Combined) {
	var gravForce mgl64.Vec3
	if body.SimulateGravity {
		gravForce = s.Gravity.Mul(body.Mass())
	}

	down := vmath.SafeNormalize(s.Gravity, mgl64.Vec3{0, -1, 0})
	lineDir := vmath.SafeNormalize(point.Sub(body.Position), down)

	normalMag := gravForce.Len() * lineDir.Dot(down)
	if normalMag <= 0 {
		return
	}

	effective := body.Momentum.Mul(1 / body.FixedStep()).Add(gravForce)

	coefficient := comb.KineticFriction
	threshold := body.SleepThreshold()
	if effective.Dot(effective) < threshold*threshold {
		coefficient = comb.StaticFriction
	}

	direction := vmath.SafeNormalize(effective, mgl64.Vec3{})
	body.AddForce(direction.Mul(-coefficient * normalMag))

	// The supporting normal force keeps gravity and the drag term
	// consistent through the integrator.
	body.AddForce(lineDir.Mul(-normalMag))
}
