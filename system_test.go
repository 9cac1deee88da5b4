package rebound

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound/dynamics"
	"github.com/rebound-engine/rebound/material"
)

// mapProvider is a Provider backed by a plain map, the shape a host asset
// database would take.
type mapProvider map[string]material.Material

func (p mapProvider) Lookup(name string) (material.Material, bool) {
	m, ok := p[name]
	return m, ok
}

// =============================================================================
// Registration
// =============================================================================

func TestRegisterBody_NilChecks(t *testing.T) {
	var nilSystem *System
	if err := nilSystem.RegisterBody(dynamics.NewRigidBody(1)); err != ErrNilSystem {
		t.Errorf("nil system: err = %v, want ErrNilSystem", err)
	}

	s := NewSystem(nil)
	if err := s.RegisterBody(nil); err != ErrNilObject {
		t.Errorf("nil body: err = %v, want ErrNilObject", err)
	}
}

func TestRegisterShape_NilChecks(t *testing.T) {
	var nilSystem *System
	if _, err := nilSystem.RegisterShape(dynamics.NewSphere(1)); err != ErrNilSystem {
		t.Errorf("nil system: err = %v, want ErrNilSystem", err)
	}

	s := NewSystem(nil)
	if _, err := s.RegisterShape(nil); err != ErrNilObject {
		t.Errorf("nil shape: err = %v, want ErrNilObject", err)
	}
}

func TestDeregister_NilSystemNoop(t *testing.T) {
	// Deregistration mirrors removal-on-miss: a nil system is a no-op,
	// not a panic, matching the error-returning register half.
	var nilSystem *System
	nilSystem.DeregisterBody(dynamics.NewRigidBody(1))
	nilSystem.DeregisterShape(dynamics.NewSphere(1))
}

func TestRegisterBody_Idempotent(t *testing.T) {
	s := NewSystem(nil)
	rb := dynamics.NewRigidBody(1)

	if err := s.RegisterBody(rb); err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}
	if err := s.RegisterBody(rb); err != nil {
		t.Fatalf("second RegisterBody: %v", err)
	}
	if len(s.Bodies()) != 1 {
		t.Errorf("len(Bodies) = %d after double registration, want 1", len(s.Bodies()))
	}
}

func TestRegisterBody_AlignsFixedStep(t *testing.T) {
	s := NewSystem(nil)
	s.FixedStep = 1.0 / 120

	rb := dynamics.NewRigidBody(1)
	if err := s.RegisterBody(rb); err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}
	if rb.FixedStep() != 1.0/120 {
		t.Errorf("body fixed step = %v, want the system's 1/120", rb.FixedStep())
	}
}

func TestDeregisterBody_UnregisteredNoop(t *testing.T) {
	s := NewSystem(nil)
	if err := s.RegisterBody(dynamics.NewRigidBody(1)); err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}

	s.DeregisterBody(dynamics.NewRigidBody(1))
	if len(s.Bodies()) != 1 {
		t.Errorf("len(Bodies) = %d, deregistering a stranger must not remove anything", len(s.Bodies()))
	}
}

func TestRegisterShape_ResolvesMaterialName(t *testing.T) {
	rubber := material.New(0.9, 1.1, 0.8, material.CombineAverage, material.CombineMaximum)
	s := NewSystem(mapProvider{"rubber": rubber})

	shape := dynamics.NewSphere(1)
	shape.MaterialName = "rubber"
	if _, err := s.RegisterShape(shape); err != nil {
		t.Fatalf("RegisterShape: %v", err)
	}

	if shape.Material == nil {
		t.Fatal("material not resolved from provider")
	}
	if *shape.Material != rubber {
		t.Errorf("resolved material = %+v, want %+v", *shape.Material, rubber)
	}
}

func TestRegisterShape_UnknownMaterialNameLeftUnresolved(t *testing.T) {
	s := NewSystem(mapProvider{})

	shape := dynamics.NewSphere(1)
	shape.MaterialName = "vantablack"
	if _, err := s.RegisterShape(shape); err != nil {
		t.Fatalf("RegisterShape: %v", err)
	}
	if shape.Material != nil {
		t.Error("unknown identifier must leave the material absent")
	}
}

func TestDeregisterShape_ClearsTouchingBothWays(t *testing.T) {
	s := NewSystem(nil)

	_, shapeA := newBodySphere(t, s, 1, 1, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{})
	plane := newStaticPlane(t, s, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, nil)

	s.PreUpdate(DefaultFixedStep)
	if !shapeA.Touching(plane.Handle()) {
		t.Fatal("pair should be touching before deregistration")
	}

	s.DeregisterShape(shapeA)

	if plane.Touching(shapeA.Handle()) {
		t.Error("surviving shape still records the removed shape as touching")
	}
	if len(shapeA.TouchingHandles()) != 0 {
		t.Error("removed shape keeps touching state")
	}
	if s.Registry().Resolve(shapeA.Handle()) != nil {
		t.Error("removed shape still resolvable through the registry")
	}
}

// =============================================================================
// Events
// =============================================================================

func TestEvents_EnterStayExit(t *testing.T) {
	s := NewSystem(nil)

	body, _ := newBodySphere(t, s, 1, 1, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{})
	newStaticPlane(t, s, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, nil)

	var enters, stays, exits int
	s.Subscribe(CollisionEnter, func(Event) { enters++ })
	s.Subscribe(CollisionStay, func(Event) { stays++ })
	s.Subscribe(CollisionExit, func(Event) { exits++ })

	s.Step(DefaultFixedStep) // first contact: full response, depenetrates
	if enters != 1 || stays != 0 || exits != 0 {
		t.Fatalf("after contact: enter=%d stay=%d exit=%d, want 1/0/0", enters, stays, exits)
	}

	// Hold the overlap for one more step: continued contact.
	body.Position = mgl64.Vec3{0, 0.5, 0}
	s.Step(DefaultFixedStep)
	if enters != 1 || stays != 1 || exits != 0 {
		t.Fatalf("after hold: enter=%d stay=%d exit=%d, want 1/1/0", enters, stays, exits)
	}

	// Move clear of the plane: separation.
	body.Position = mgl64.Vec3{0, 5, 0}
	s.Step(DefaultFixedStep)
	if enters != 1 || stays != 1 || exits != 1 {
		t.Fatalf("after separation: enter=%d stay=%d exit=%d, want 1/1/1", enters, stays, exits)
	}
}

func TestEvents_DispatchedInPostUpdate(t *testing.T) {
	s := NewSystem(nil)

	newBodySphere(t, s, 1, 1, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{})
	newStaticPlane(t, s, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, nil)

	fired := 0
	s.Subscribe(CollisionEnter, func(Event) { fired++ })

	s.PreUpdate(DefaultFixedStep)
	s.MainUpdate(DefaultFixedStep)
	if fired != 0 {
		t.Fatal("events must not fire before PostUpdate")
	}
	s.PostUpdate(DefaultFixedStep)
	if fired != 1 {
		t.Errorf("fired = %d after PostUpdate, want 1", fired)
	}
}

// =============================================================================
// End to end
// =============================================================================

// A sphere coasting toward a static offset plane bounces back with half its
// speed and comes to rest outside the surface.
func TestStep_SphereBouncesOffOffsetPlane(t *testing.T) {
	wall := material.New(0, 0, 0.5, material.CombineMultiply, material.CombineMultiply)

	s := NewSystem(nil)
	body, _ := newBodySphere(t, s, 1, 1, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 5})
	newStaticPlane(t, s, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 9}, &wall)

	var enters, exits int
	s.Subscribe(CollisionEnter, func(Event) { enters++ })
	s.Subscribe(CollisionExit, func(Event) { exits++ })

	for i := 0; i < 100; i++ {
		s.Step(0.02)
	}

	if !vec3AlmostEqual(body.Momentum, mgl64.Vec3{0, 0, -2.5}, 1e-9) {
		t.Errorf("momentum = %v, want (0,0,-2.5): reflected and halved", body.Momentum)
	}
	if body.Position.Z() > 8+1e-9 {
		t.Errorf("position.Z = %v, want <= 8: sphere must stay outside the plane", body.Position.Z())
	}
	if enters != 1 {
		t.Errorf("enter events = %d, want exactly one bounce", enters)
	}
	if exits != 1 {
		t.Errorf("exit events = %d, want one separation after the bounce", exits)
	}
}

// A resting sphere sandwiched on a plane under gravity must not sink: the
// first contact absorbs the fall and subsequent steps only apply friction.
func TestStep_RestingContactDoesNotTunnel(t *testing.T) {
	floor := material.New(0.6, 0.7, 0, material.CombineMultiply, material.CombineMultiply)

	s := NewSystem(nil)

	rb := dynamics.NewRigidBody(1)
	rb.Position = mgl64.Vec3{0, 1.05, 0}
	sphere := dynamics.NewSphere(1)
	rb.Attach(sphere)
	if err := s.RegisterBody(rb); err != nil {
		t.Fatalf("RegisterBody: %v", err)
	}
	if _, err := s.RegisterShape(sphere); err != nil {
		t.Fatalf("RegisterShape: %v", err)
	}
	newStaticPlane(t, s, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, &floor)

	for i := 0; i < 200; i++ {
		s.Step(0.02)
	}

	if rb.Position.Y() < 0.5 {
		t.Errorf("position.Y = %v: sphere sank through the floor", rb.Position.Y())
	}
}
