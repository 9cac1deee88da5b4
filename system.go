// Package rebound is a minimal impulse-based rigid-body physics engine:
// rigid bodies under continuous forces and impulses, RK4 integration of
// linear and angular motion, sphere/plane narrow-phase detection, and an
// impulse-based response model with friction and restitution.
//
// A System is driven by the host's fixed-step loop in three phases per
// tick: PreUpdate (detection + response), MainUpdate (integration),
// PostUpdate (event dispatch). Execution is single-threaded; registration
// changes must happen between steps.
package rebound

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound/dynamics"
	"github.com/rebound-engine/rebound/material"
)

// DefaultFixedStep is the simulation tick a new system assumes.
const DefaultFixedStep = dynamics.DefaultFixedStep

var (
	// ErrNilSystem is returned when registering against a nil system;
	// a body or shape cannot function without a host system.
	ErrNilSystem = errors.New("rebound: no physics system to register with")
	// ErrNilObject is returned when registering a nil body or shape.
	ErrNilObject = errors.New("rebound: cannot register a nil object")
)

// System owns the registries and runs the simulation step phases. Hosts
// construct one System and pass it to every component requiring
// registration; there is no process-wide default instance.
type System struct {
	// Gravity is read by the integrator (as an acceleration on bodies
	// with SimulateGravity) and by the friction model (for normal force
	// estimation). Mutable between steps.
	Gravity mgl64.Vec3

	// FixedStep is the host tick length, used to convert impulses into
	// forces. Copied to every body at registration.
	FixedStep float64

	// Materials resolves shape material identifiers. Optional; unresolved
	// identifiers fall back to the neutral default material.
	Materials material.Provider

	registry *SpatialRegistry
	bodies   []*dynamics.RigidBody
	events   events
}

// NewSystem returns a system with standard gravity and the default fixed
// step. The material provider may be nil.
func NewSystem(materials material.Provider) *System {
	return &System{
		Gravity:   mgl64.Vec3{0, -9.80665, 0},
		FixedStep: DefaultFixedStep,
		Materials: materials,
		registry:  NewSpatialRegistry(),
		events:    newEvents(),
	}
}

// Registry exposes the shape registry, mainly for hosts that want to
// resolve touching-set handles.
func (s *System) Registry() *SpatialRegistry {
	return s.registry
}

// Subscribe adds a listener for a collision event type. Listeners are
// invoked during PostUpdate.
func (s *System) Subscribe(eventType EventType, listener EventListener) {
	s.events.subscribe(eventType, listener)
}

// RegisterBody adds a rigid body to the simulation and aligns its impulse
// conversion with the system step. Registering twice is a no-op.
func (s *System) RegisterBody(rb *dynamics.RigidBody) error {
	if s == nil {
		return ErrNilSystem
	}
	if rb == nil {
		return ErrNilObject
	}
	for _, existing := range s.bodies {
		if existing == rb {
			return nil
		}
	}
	rb.SetFixedStep(s.FixedStep)
	s.bodies = append(s.bodies, rb)
	return nil
}

// DeregisterBody removes a body. Removing an unregistered body, or removing
// from a nil system, is a no-op.
func (s *System) DeregisterBody(rb *dynamics.RigidBody) {
	if s == nil {
		return
	}
	k := -1
	for i, existing := range s.bodies {
		if existing == rb {
			k = i
			break
		}
	}
	if k != -1 {
		s.bodies = append(s.bodies[:k], s.bodies[k+1:]...)
	}
}

// RegisterShape files a shape into the spatial registry and resolves its
// material identifier through the provider. An unknown identifier leaves
// the material absent, which the solver treats as the neutral default.
func (s *System) RegisterShape(shape *dynamics.Shape) (dynamics.Handle, error) {
	if s == nil {
		return dynamics.Handle{}, ErrNilSystem
	}
	if shape == nil {
		return dynamics.Handle{}, ErrNilObject
	}

	if shape.Material == nil && shape.MaterialName != "" && s.Materials != nil {
		if m, ok := s.Materials.Lookup(shape.MaterialName); ok {
			shape.Material = &m
		}
	}

	return s.registry.Add(shape), nil
}

// DeregisterShape removes a shape from the registry and clears any
// touching state referencing it. Removing an unregistered shape, or
// removing from a nil system, is a no-op.
func (s *System) DeregisterShape(shape *dynamics.Shape) {
	if s == nil || shape == nil {
		return
	}
	for _, h := range shape.TouchingHandles() {
		if other := s.registry.Resolve(h); other != nil {
			other.ClearTouching(shape.Handle())
		}
		shape.ClearTouching(h)
	}
	s.registry.Remove(shape)
}

// Bodies returns the registered bodies in registration order.
func (s *System) Bodies() []*dynamics.RigidBody {
	return s.bodies
}

// PreUpdate runs collision detection and response for every candidate
// pair. The iteration order is fixed for determinism: dynamic shapes in
// registration order, each tested against the later dynamic shapes and
// then against every static shape.
func (s *System) PreUpdate(dt float64) {
	dynamicShapes := s.registry.DynamicShapes()
	staticShapes := s.registry.StaticShapes()

	for _, shape := range dynamicShapes {
		shape.ComputeAABB()
	}
	for _, shape := range staticShapes {
		shape.ComputeAABB()
	}

	for i, a := range dynamicShapes {
		for _, b := range dynamicShapes[i+1:] {
			s.processPair(a, b)
		}
		for _, b := range staticShapes {
			s.processPair(a, b)
		}
	}
}

func (s *System) processPair(a, b *dynamics.Shape) {
	c, hit, testable := testPair(a, b)
	if !testable {
		return
	}
	if hit {
		s.resolveContact(c)
	} else {
		s.separatePair(a, b)
	}
}

// MainUpdate integrates every registered body over dt and then clears its
// force accumulators, exactly once, after the integrator has consumed
// them.
func (s *System) MainUpdate(dt float64) {
	for _, rb := range s.bodies {
		dynamics.Integrate(rb, dt, s.Gravity)
		rb.ResetAccumulators()
	}
}

// PostUpdate dispatches the collision events buffered during PreUpdate.
func (s *System) PostUpdate(dt float64) {
	_ = dt // reserved for listeners that will want the step length
	s.events.flush()
}

// Step runs one full simulation tick: detection + response, integration,
// then event dispatch.
func (s *System) Step(dt float64) {
	s.PreUpdate(dt)
	s.MainUpdate(dt)
	s.PostUpdate(dt)
}
