// Package material defines the immutable friction/restitution records used
// by the collision response solver, together with the pairwise combination
// rules that merge the two sides of a contact.
package material

import (
	"fmt"
	"math"
)

// CombineRule selects how one side of a contact merges its own coefficient
// with the opposing side's raw coefficient.
type CombineRule int

const (
	CombineAverage CombineRule = iota
	CombineMultiply
	CombineMaximum
	CombineMinimum
)

func (r CombineRule) String() string {
	switch r {
	case CombineAverage:
		return "Average"
	case CombineMultiply:
		return "Multiply"
	case CombineMaximum:
		return "Maximum"
	case CombineMinimum:
		return "Minimum"
	}
	return fmt.Sprintf("CombineRule(%d)", int(r))
}

// Combine merges two coefficients under the rule. An unrecognized rule is a
// programming error and panics.
func (r CombineRule) Combine(a, b float64) float64 {
	switch r {
	case CombineAverage:
		return (a + b) / 2
	case CombineMultiply:
		return a * b
	case CombineMaximum:
		return math.Max(a, b)
	case CombineMinimum:
		return math.Min(a, b)
	}
	panic("material: unknown combine rule " + r.String())
}

// Material is an immutable friction/restitution record. Build one with New
// so out-of-range coefficients are clamped; the zero value is a frictionless
// perfectly-inelastic material.
type Material struct {
	KineticFriction float64 // >= 0
	StaticFriction  float64 // >= 0
	Restitution     float64 // in [0, 1]

	FrictionCombine    CombineRule
	RestitutionCombine CombineRule
}

// New returns a material with the given coefficients clamped to their valid
// ranges: friction to >= 0, restitution to [0, 1].
func New(kineticFriction, staticFriction, restitution float64, frictionCombine, restitutionCombine CombineRule) Material {
	return Material{
		KineticFriction:    math.Max(0, kineticFriction),
		StaticFriction:     math.Max(0, staticFriction),
		Restitution:        math.Min(1, math.Max(0, restitution)),
		FrictionCombine:    frictionCombine,
		RestitutionCombine: restitutionCombine,
	}
}

// Default is the material assumed when a shape carries no override:
// perfectly elastic, frictionless, and transparent to the other side's
// coefficients (Multiply with restitution 1 and friction 0 lets an authored
// opposing material pass through unchanged).
func Default() Material {
	return Material{
		KineticFriction:    0,
		StaticFriction:     0,
		Restitution:        1,
		FrictionCombine:    CombineMultiply,
		RestitutionCombine: CombineMultiply,
	}
}

// Resolve maps an optional material reference to a concrete record,
// substituting Default for an absent override.
func Resolve(m *Material) Material {
	if m == nil {
		return Default()
	}
	return *m
}

// Combined holds one contact side's merged coefficients.
type Combined struct {
	KineticFriction float64
	StaticFriction  float64
	Restitution     float64
}

// CombineWith merges m against the opposing material, using m's own rules
// against the opponent's raw coefficients. Combination is directional: the
// other side performs its own CombineWith using its rules.
func (m Material) CombineWith(other Material) Combined {
	return Combined{
		KineticFriction: m.FrictionCombine.Combine(m.KineticFriction, other.KineticFriction),
		StaticFriction:  m.FrictionCombine.Combine(m.StaticFriction, other.StaticFriction),
		Restitution:     m.RestitutionCombine.Combine(m.Restitution, other.Restitution),
	}
}

// CombinePair resolves both optional sides of a contact and returns the
// combined coefficients for each.
func CombinePair(a, b *Material) (forA, forB Combined) {
	ma := Resolve(a)
	mb := Resolve(b)
	return ma.CombineWith(mb), mb.CombineWith(ma)
}

// Provider resolves a material by identifier. It is implemented by the host
// (asset pipeline, registry, ...); the engine only consumes it. A false
// second return means the identifier is unknown and the caller should fall
// back to Default.
type Provider interface {
	Lookup(name string) (Material, bool)
}
