package sim

import (
	"github.com/san-kum/musclesim/internal/dynamo"
)

// Frame is what one step recorded at its start.
type Frame struct {
	State   dynamo.State
	Control dynamo.Control
	Outputs dynamo.Outputs
	Time    float64
}

// Session steps a simulator one step at a time, in the same order as Run,
// for front ends that pace the simulation themselves. cfg.Duration is not
// used.
type Session struct {
	s     *Simulator
	x     dynamo.State
	t     float64
	dt    float64
	steps int
	check bool
}

func (s *Simulator) NewSession(x0 dynamo.State, cfg dynamo.Config) (*Session, error) {
	cfg.Duration = max(cfg.Duration, cfg.Dt)
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}
	return &Session{
		s:     s,
		x:     x0.Clone(),
		t:     cfg.Start,
		dt:    cfg.Dt,
		check: cfg.ValidateState,
	}, nil
}

// Step settles the system at the current state, records the frame and
// integrates one step. On error the session stays at the failed step.
func (ss *Session) Step() (Frame, error) {
	u, out, err := ss.s.settle(ss.x, ss.t)
	if err != nil {
		return Frame{}, ss.s.fail(ss.steps, ss.t, ss.x, err)
	}
	frame := Frame{State: ss.x.Clone(), Control: u, Outputs: out, Time: ss.t}

	for _, m := range ss.s.metrics {
		m.Observe(ss.x, u, ss.t, out)
	}
	for _, obs := range ss.s.observers {
		obs.OnStep(ss.x, u, ss.t, out)
	}

	newX, err := ss.s.step(ss.x, u, ss.t, ss.dt)
	if err != nil {
		return frame, ss.s.fail(ss.steps, ss.t, ss.x, err)
	}
	if ss.check && !newX.IsValid() {
		return frame, ss.s.fail(ss.steps, ss.t+ss.dt, newX, dynamo.ErrInvalidState)
	}

	ss.x = newX
	ss.t += ss.dt
	ss.steps++
	return frame, nil
}

func (ss *Session) State() dynamo.State { return ss.x.Clone() }
func (ss *Session) Time() float64       { return ss.t }
func (ss *Session) Steps() int          { return ss.steps }
func (ss *Session) Dt() float64         { return ss.dt }
