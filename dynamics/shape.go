package dynamics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound/material"
)

// Kind identifies a collider variant. The set is closed: the narrow phase
// dispatches through a table indexed by the two kinds.
type Kind int

const (
	KindSphere Kind = iota
	KindPlane

	// KindCount sizes the collision dispatch table.
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "Sphere"
	case KindPlane:
		return "Plane"
	}
	return "Kind(?)"
}

// Handle is an opaque, generation-checked reference to a registered shape.
// The zero Handle is never valid: the registry starts generations at 1.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Valid reports whether h was ever issued by a registry.
func (h Handle) Valid() bool {
	return h.Generation != 0
}

// Shape is a collider: a tagged variant over {sphere, plane}. A shape with
// no attached body (or a disabled body) is static and immovable. The
// variant payload fields are only meaningful for their kind; a sphere
// ignores Up, a plane ignores Radius.
type Shape struct {
	Kind   Kind
	Center mgl64.Vec3 // local offset from the owning transform

	Radius float64    // sphere
	Up     mgl64.Vec3 // plane local up axis, unit length

	// Own transform, used when no body is attached.
	Position mgl64.Vec3
	Rotation mgl64.Quat

	// Body is the owning rigid body, or nil for an immovable shape.
	Body *RigidBody

	// MaterialName is resolved against the host's material provider when
	// the shape is registered. A nil Material means no override; the
	// response solver then combines against the neutral default.
	MaterialName string
	Material     *material.Material

	handle   Handle
	touching map[Handle]struct{}
	aabb     AABB
}

// NewSphere returns a sphere collider. A negative radius is clamped to zero.
func NewSphere(radius float64) *Shape {
	return &Shape{
		Kind:     KindSphere,
		Radius:   math.Max(0, radius),
		Rotation: mgl64.QuatIdent(),
		touching: make(map[Handle]struct{}),
	}
}

// NewPlane returns an infinite plane collider oriented by up (normalized;
// a zero vector falls back to +Y). The shape's world position is a point on
// the plane.
func NewPlane(up mgl64.Vec3) *Shape {
	if up.Dot(up) == 0 {
		up = mgl64.Vec3{0, 1, 0}
	}
	return &Shape{
		Kind:     KindPlane,
		Up:       up.Normalize(),
		Rotation: mgl64.QuatIdent(),
		touching: make(map[Handle]struct{}),
	}
}

// Static reports whether the shape is immovable: no attached body, or the
// body is disabled.
func (s *Shape) Static() bool {
	return s.Body == nil || !s.Body.Enabled
}

// WorldPosition returns the shape's center in world space, transformed
// through the owning body when one is attached.
func (s *Shape) WorldPosition() mgl64.Vec3 {
	if s.Body != nil {
		return s.Body.Position.Add(s.Body.Rotation.Rotate(s.Center))
	}
	return s.Position.Add(s.Rotation.Rotate(s.Center))
}

// WorldUp returns the plane's up axis in world space.
func (s *Shape) WorldUp() mgl64.Vec3 {
	if s.Body != nil {
		return s.Body.Rotation.Rotate(s.Up)
	}
	return s.Rotation.Rotate(s.Up)
}

func (s *Shape) Handle() Handle {
	return s.handle
}

// SetHandle records the registry handle. Called by the registry only.
func (s *Shape) SetHandle(h Handle) {
	s.handle = h
}

// Touching reports whether the shape with handle h was in contact with s on
// the previous detection pass.
func (s *Shape) Touching(h Handle) bool {
	_, ok := s.touching[h]
	return ok
}

func (s *Shape) MarkTouching(h Handle) {
	if s.touching == nil {
		s.touching = make(map[Handle]struct{})
	}
	s.touching[h] = struct{}{}
}

func (s *Shape) ClearTouching(h Handle) {
	delete(s.touching, h)
}

// TouchingHandles returns the handles of all shapes currently recorded as
// touching s. The order is unspecified; callers needing determinism must
// sort.
func (s *Shape) TouchingHandles() []Handle {
	out := make([]Handle, 0, len(s.touching))
	for h := range s.touching {
		out = append(out, h)
	}
	return out
}

// ComputeInertia returns the diagonal inertia tensor for a body of the
// given mass using this shape. A plane is rotationally immovable, which is
// expressed as a zero tensor: the component-wise division guard then yields
// zero angular velocity on every axis.
func (s *Shape) ComputeInertia(mass float64) mgl64.Vec3 {
	switch s.Kind {
	case KindSphere:
		i := (2.0 / 5.0) * mass * s.Radius * s.Radius
		return mgl64.Vec3{i, i, i}
	case KindPlane:
		return mgl64.Vec3{}
	}
	panic("dynamics: inertia for unknown shape kind " + s.Kind.String())
}

// ComputeAABB refreshes the shape's cached bounding box from its current
// world transform. Planes are unbounded, so their box never rejects a pair.
func (s *Shape) ComputeAABB() {
	switch s.Kind {
	case KindSphere:
		pos := s.WorldPosition()
		r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
		s.aabb = AABB{Min: pos.Sub(r), Max: pos.Add(r)}
	case KindPlane:
		inf := math.Inf(1)
		s.aabb = AABB{
			Min: mgl64.Vec3{-inf, -inf, -inf},
			Max: mgl64.Vec3{inf, inf, inf},
		}
	}
}

func (s *Shape) AABB() AABB {
	return s.aabb
}
