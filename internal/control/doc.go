// Package control provides activation sources for muscle-driven systems.
//
// Controllers implement the [dynamo.Controller] interface and return one
// activation in [0, 1] per actuator:
//
//   - [Constant], [Step], [Ramp], [Sine], [Twitch]: open-loop profiles
//   - [PID]: holds the actuator length at a target
//   - [ManualController]: activations set interactively
//   - [None]: every actuator relaxed
//   - [Mux]: one profile per actuator for multi-muscle systems
//
// # Usage
//
//	ctrl := control.NewMux(control.NewSine(0.5, 0.3, 2), control.NewConstant(0.2))
//	s := sim.New(pair, integrators.NewRK4(), ctrl)
//
// [PID] implements [dynamo.Configurable] for live tuning.
package control
