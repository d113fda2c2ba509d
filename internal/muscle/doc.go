// Package muscle implements a pennated Hill-type musculotendon actuator.
//
// Given the total length l of a muscle-tendon unit, its lengthening rate
// ldot and an activation a, a [Muscle] returns the axial force together with
// dF/dl and dF/dldot for an integrator's tangent stiffness and damping.
//
// With an elastic tendon every query solves for the muscle length lm at
// which the fiber force, projected through the pennation angle, balances the
// tendon force:
//
//	fiber(lm, vm(lm)) * cos(lm) = tendon(l - lm)
//
// The root is bracketed on [0, l - T], where T is the tendon slack length,
// and refined with the method named in [Config]. The fiber velocity vm comes
// from the previous step (see [VelocityMode]), so a Muscle carries history
// that must be advanced exactly once per accepted step with
// [Muscle.AdvanceState]. Derivatives come from implicit differentiation of
// the balance at the solved root and never trigger a second solve.
//
// With a rigid tendon the muscle length is l - T and everything is closed
// form. Switching modes with [Muscle.SetRigidTendon] bumps
// [Muscle.StateVersion]; checkpoints written by [Muscle.GetState] are only
// accepted by a muscle with the same version.
//
// # Example
//
//	m, _ := muscle.New(muscle.DefaultParams(), curves.DeGroote2016(), muscle.DefaultConfig())
//	f, err := m.ComputeForce(0.31, 0, 1)
//	...
//	m.AdvanceState(t, t+dt)
//
// # Thread Safety
//
// A Muscle is owned by one goroutine. Independent muscles share nothing and
// can be evaluated in parallel.
package muscle
