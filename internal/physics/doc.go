// Package physics implements the rigid-body world that backs every demo.
//
// A [World] owns bodies, a constraint arena and a table of contact
// materials, and advances them with a fixed timestep:
//
//   - [Body]: a rigid body with a tagged [Shape] (point, sphere, box, plane)
//   - [ConstraintSpec]: distance, pivot and steerable wheel constraints
//   - [ConstraintHandle]: stable reference into the arena; disabling a
//     constraint flips a flag and never invalidates its handle
//   - [ContactMaterial]: friction, restitution, stiffness and relaxation
//     for a pair of material names
//
// Each fixed pass runs pre-step hooks, accumulates gravity and drive
// torques, generates contacts, solves constraints and contacts with a
// projected Gauss-Seidel solver in SPOOK form, then integrates.
//
// # Stepping
//
// [World.Step] feeds the frame time into an accumulator and runs at most
// maxSubSteps fixed passes:
//
//	w, _ := physics.NewWorld(physics.DefaultConfig())
//	ball, _ := w.AddBody(physics.BodyOptions{Mass: 1, Shape: physics.Sphere(0.5)})
//	passes, _ := w.Step(1.0/240, frameDt, 20)
//
// Stepping is deterministic: the same sequence of passes over the same
// initial state produces bit-identical results.
//
// # Diagnostics
//
// Deep penetration, stretched distance constraints and non-finite state are
// recorded as [dynamo.Warning] values and logged; they never stop stepping.
package physics
