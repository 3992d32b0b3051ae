// Package dynamo provides the primitives shared by the physics world, the
// render side and the interaction layer.
//
// The package defines the vocabulary every other package speaks:
//
//   - [Transform]: position + orientation copied from bodies to proxies
//   - [Motion]: the integrable state of one rigid body
//   - [Integrator]: advances a [Motion] by one fixed timestep
//   - [Ray]: a world-space pick ray
//   - [ConfigError] and [Warning]: the error taxonomy
//
// # Example
//
//	m := dynamo.Motion{Position: mgl64.Vec3{0, 5, 0}, InvMass: 1}
//	m.Force = mgl64.Vec3{0, -9.82, 0}
//	integrators.NewSemiImplicitEuler().Integrate(&m, 1.0/60)
//
// # Thread Safety
//
// Nothing in this package is synchronised. Values are owned by the tick
// goroutine that steps the world.
package dynamo
