// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// solution of initial value problems dX/dt = f(X, t):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides
//   - [Integrator] and [AdaptiveIntegrator]: numerical steppers
//   - [Metric]: per-sample observers folded into the [Result]
//   - [Simulator]: advances a system and samples it at output times
//
// # Example
//
//	dyn, _ := models.NewFirstOrder(params)
//	sim := dynamo.New(dyn, integrators.NewRK45(), dynamo.DefaultConfig())
//	result, err := sim.Run(ctx, dynamo.State{c0}, times)
//
// Integration is adaptive: the simulator takes as many internal steps as the
// error control demands and lands exactly on every requested output time.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe.
package dynamo
