// Package dynamo provides core simulation primitives for actuator-driven
// dynamical systems.
//
// The package defines the fundamental interfaces and types shared by the
// physics models, integrators and the simulator:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t)); evaluation
//     can fail when an actuator's internal solve does
//   - [Stateful]: systems whose actuators keep history across steps
//   - [Linearizable]: systems that supply a Jacobian for implicit steps
//   - [Integrator]: numerical stepper interface
//   - [Controller]: activation source
//
// # Example
//
//	sys := physics.NewHangingMass(m, 50)
//	s := sim.New(sys, integrators.NewRK4(), control.NewConstant(1))
//	result, _ := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Systems hold mutable actuator state and are NOT thread-safe. Parallel work
// uses one system per goroutine, see [ParallelFor].
package dynamo
