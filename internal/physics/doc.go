// Package physics provides actuator-driven mechanical models for
// simulation.
//
// Each model implements [dynamo.System] around one or more muscles:
//
//   - [HangingMass]: a load suspended below a single muscle-tendon unit
//   - [AntagonistPair]: a mass held between two opposing units
//
// Both also implement [dynamo.Stateful] to advance muscle history,
// [dynamo.Linearizable] from the muscle tangents, [dynamo.Probe] for per-step
// readings and [dynamo.Configurable] for parameter sweeps. Muscle parameters
// are exposed under their yaml names, e.g. "max_iso_force".
package physics
