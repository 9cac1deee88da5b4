package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/rebound-engine/rebound"
	"github.com/rebound-engine/rebound/dynamics"
	"github.com/rebound-engine/rebound/material"
)

// materials is the asset table a host would normally load from disk.
type materials map[string]material.Material

func (m materials) Lookup(name string) (material.Material, bool) {
	mat, ok := m[name]
	return mat, ok
}

// SetupScene builds a floor plane and a bouncing ball above it.
func SetupScene() (*rebound.System, *dynamics.RigidBody) {
	system := rebound.NewSystem(materials{
		"rubber": material.New(0.4, 0.6, 0.8, material.CombineMultiply, material.CombineMultiply),
		"stone":  material.New(0.8, 0.9, 1.0, material.CombineMultiply, material.CombineMultiply),
	})

	floor := dynamics.NewPlane(mgl64.Vec3{0, 1, 0})
	floor.MaterialName = "stone"
	if _, err := system.RegisterShape(floor); err != nil {
		panic(err)
	}

	ball := dynamics.NewRigidBody(2.0)
	ball.Position = mgl64.Vec3{0, 8, 0}

	sphere := dynamics.NewSphere(0.5)
	sphere.MaterialName = "rubber"
	ball.Attach(sphere)

	if err := system.RegisterBody(ball); err != nil {
		panic(err)
	}
	if _, err := system.RegisterShape(sphere); err != nil {
		panic(err)
	}

	return system, ball
}

func main() {
	fmt.Println("Bouncing ball demo")
	fmt.Println("==================")

	system, ball := SetupScene()

	system.Subscribe(rebound.CollisionEnter, func(e rebound.Event) {
		fmt.Printf("  >> contact: %s hits %s at %v\n",
			e.A.Kind, e.B.Kind, e.A.WorldPosition())
	})
	system.Subscribe(rebound.CollisionExit, func(e rebound.Event) {
		fmt.Printf("  << separated: %s leaves %s\n", e.A.Kind, e.B.Kind)
	})

	const steps = 300

	for step := 0; step < steps; step++ {
		system.Step(rebound.DefaultFixedStep)

		if step%25 == 0 {
			fmt.Printf("t=%5.2fs  position=%v  velocity=%v\n",
				float64(step+1)*rebound.DefaultFixedStep,
				ball.Position, ball.Velocity())
		}
	}

	fmt.Println("Done.")
}
