package control

import (
	"math"

	"github.com/san-kum/musclesim/internal/dynamo"
)

func clamp01(a float64) float64 {
	return min(max(a, 0), 1)
}

// Constant holds a fixed activation.
type Constant struct {
	Level float64
}

func NewConstant(level float64) *Constant {
	return &Constant{Level: level}
}

func (c *Constant) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{clamp01(c.Level)}
}

// Step switches from Before to After at time At.
type Step struct {
	Before float64
	After  float64
	At     float64
}

func NewStep(before, after, at float64) *Step {
	return &Step{Before: before, After: after, At: at}
}

func (s *Step) Compute(x dynamo.State, t float64) dynamo.Control {
	if t < s.At {
		return dynamo.Control{clamp01(s.Before)}
	}
	return dynamo.Control{clamp01(s.After)}
}

// Ramp moves linearly from From to To over [Start, Start+Duration].
type Ramp struct {
	From     float64
	To       float64
	Start    float64
	Duration float64
}

func NewRamp(from, to, start, duration float64) *Ramp {
	return &Ramp{From: from, To: to, Start: start, Duration: duration}
}

func (r *Ramp) Compute(x dynamo.State, t float64) dynamo.Control {
	switch {
	case t <= r.Start:
		return dynamo.Control{clamp01(r.From)}
	case r.Duration <= 0 || t >= r.Start+r.Duration:
		return dynamo.Control{clamp01(r.To)}
	}
	s := (t - r.Start) / r.Duration
	return dynamo.Control{clamp01(r.From + s*(r.To-r.From))}
}

// Sine oscillates around Mean; the result is clipped to [0, 1].
type Sine struct {
	Mean      float64
	Amplitude float64
	Frequency float64
	Phase     float64
}

func NewSine(mean, amplitude, frequency float64) *Sine {
	return &Sine{Mean: mean, Amplitude: amplitude, Frequency: frequency}
}

func (s *Sine) Compute(x dynamo.State, t float64) dynamo.Control {
	a := s.Mean + s.Amplitude*math.Sin(2*math.Pi*s.Frequency*t+s.Phase)
	return dynamo.Control{clamp01(a)}
}

// Twitch is a single alpha-function pulse starting at Onset that peaks at
// Peak after Rise seconds.
type Twitch struct {
	Peak  float64
	Onset float64
	Rise  float64
}

func NewTwitch(peak, onset, rise float64) *Twitch {
	return &Twitch{Peak: peak, Onset: onset, Rise: rise}
}

func (tw *Twitch) Compute(x dynamo.State, t float64) dynamo.Control {
	s := t - tw.Onset
	if s <= 0 || tw.Rise <= 0 {
		return dynamo.Control{0}
	}
	r := s / tw.Rise
	return dynamo.Control{clamp01(tw.Peak * r * math.Exp(1-r))}
}

// Mux concatenates the channels of several controllers, one per actuator.
type Mux []dynamo.Controller

func NewMux(ctrls ...dynamo.Controller) Mux {
	return Mux(ctrls)
}

func (m Mux) Compute(x dynamo.State, t float64) dynamo.Control {
	var u dynamo.Control
	for _, c := range m {
		u = append(u, c.Compute(x, t)...)
	}
	return u
}
