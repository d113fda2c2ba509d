package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/musclesim/internal/dynamo"
)

type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	log        *slog.Logger
}

func New(sys dynamo.System, integrator dynamo.Integrator, controller dynamo.Controller) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		log:        slog.New(slog.DiscardHandler),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger)      { s.log = l }
func (s *Simulator) System() dynamo.System         { return s.sys }

// Run integrates from x0 at cfg.Start for cfg.Duration. Each step evaluates
// the system at the start of the step with that step's control, records the
// outputs, advances actuator history once and then takes the integrator
// step. The state, control and output slices of the result are aligned.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &dynamo.Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps+1),
		Outputs:  make([]dynamo.Outputs, 0, steps+1),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := cfg.Start
	dt := cfg.Dt

	s.log.Debug("run started", "steps", steps, "dt", dt, "start", t)

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u, out, err := s.settle(x, t)
		if err != nil {
			return result, s.fail(i, t, x, err)
		}

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Outputs = append(result.Outputs, out)
		result.Times = append(result.Times, t)

		if i == steps {
			break
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t, out)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t, out)
		}

		newX, err := s.step(x, u, t, dt)
		if err != nil {
			return result, s.fail(i, t, x, err)
		}

		if cfg.ValidateState && !newX.IsValid() {
			return result, s.fail(i, t+dt, newX, dynamo.ErrInvalidState)
		}

		x = newX
		t += dt
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug("run finished", "steps", result.StepsTaken, "t", t)
	return result, nil
}

// settle evaluates the system at (x, t) so actuators hold the equilibrium
// for the state about to be stepped from.
func (s *Simulator) settle(x dynamo.State, t float64) (dynamo.Control, dynamo.Outputs, error) {
	u := s.controller.Compute(x, t)
	if _, err := s.sys.Derive(x, u, t); err != nil {
		return nil, nil, err
	}
	var out dynamo.Outputs
	if p, ok := s.sys.(dynamo.Probe); ok {
		out = p.Outputs().Clone()
	}
	return u, out, nil
}

func (s *Simulator) step(x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, error) {
	if st, ok := s.sys.(dynamo.Stateful); ok {
		st.AdvanceState(t, t+dt)
	}
	return s.integrator.Step(s.sys, x, u, t, dt)
}

func (s *Simulator) fail(step int, t float64, x dynamo.State, err error) error {
	s.log.Warn("simulation step failed", "step", step, "t", t, "err", err)
	return &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: err}
}

func (s *Simulator) validateConfig(x0 dynamo.State, cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if len(x0) != s.sys.StateDim() {
		return fmt.Errorf("%w: state has %d values, system expects %d",
			dynamo.ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	return nil
}

// RunWithCallback steps until the duration elapses or callback returns
// false. It records nothing; callers observe through the callback.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(dynamo.State, dynamo.Control, float64, dynamo.Outputs) bool) error {
	if err := s.validateConfig(x0, cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := cfg.Start
	dt := cfg.Dt
	end := cfg.Start + cfg.Duration

	for i := 0; t < end-dt/2; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u, out, err := s.settle(x, t)
		if err != nil {
			return s.fail(i, t, x, err)
		}

		if !callback(x, u, t, out) {
			return nil
		}

		newX, err := s.step(x, u, t, dt)
		if err != nil {
			return s.fail(i, t, x, err)
		}
		x = newX
		t += dt

		if cfg.ValidateState && !x.IsValid() {
			return s.fail(i, t, x, dynamo.ErrInvalidState)
		}
	}

	return nil
}
