package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/control"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/sim"
	"github.com/san-kum/musclesim/internal/storage"
)

var (
	ErrNotSetup         = errors.New("experiment: not set up")
	ErrCheckpointModel  = errors.New("experiment: checkpoint belongs to another model")
	ErrCheckpointLayout = errors.New("experiment: checkpoint does not match the actuators")
)

// Experiment is one configured run: a system, its actuators, an integrator
// and an activation source.
type Experiment struct {
	cfg *config.Config
	reg *Registry
	log *slog.Logger

	sys        dynamo.System
	muscles    []*muscle.Muscle
	controller dynamo.Controller
	simulator  *sim.Simulator

	start float64
	x0    dynamo.State
}

func New(cfg *config.Config, reg *Registry) *Experiment {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Experiment{
		cfg: cfg,
		reg: reg,
		log: slog.New(slog.DiscardHandler),
	}
}

func (e *Experiment) SetLogger(l *slog.Logger) { e.log = l }

// Setup builds the system from the configuration. The controller replaces
// the configured activation profiles when it is not nil.
func (e *Experiment) Setup(controller dynamo.Controller) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	build, err := e.reg.MuscleBuilder(e.cfg, e.log)
	if err != nil {
		return err
	}

	model, err := e.reg.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	sys, muscles, err := model(e.cfg, build)
	if err != nil {
		return err
	}

	integrator, err := e.reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	if controller == nil {
		controller, err = e.activation(sys.ControlDim())
		if err != nil {
			return err
		}
	}

	e.sys = sys
	e.muscles = muscles
	e.controller = controller
	e.simulator = sim.New(sys, integrator, controller)
	e.simulator.SetLogger(e.log)
	for _, m := range e.reg.DefaultMetrics(e.cfg.Model, e.cfg) {
		e.simulator.AddMetric(m)
	}
	e.x0 = dynamo.State(e.cfg.GetInitState())
	e.start = 0
	return nil
}

func (e *Experiment) activation(dim int) (dynamo.Controller, error) {
	channels := []config.ActivationConfig{e.cfg.Activation, e.cfg.AntagonistActivation}
	ctrls := make([]dynamo.Controller, 0, dim)
	for i := 0; i < dim; i++ {
		c, err := e.reg.GetActivation(channels[min(i, len(channels)-1)], e.cfg)
		if err != nil {
			return nil, err
		}
		ctrls = append(ctrls, c)
	}
	if len(ctrls) == 1 {
		return ctrls[0], nil
	}
	return control.NewMux(ctrls...), nil
}

func (e *Experiment) simConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Start:         e.start,
		ValidateState: true,
	}
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	e.log.Debug("running experiment",
		"model", e.cfg.Model,
		"integrator", e.cfg.Integrator,
		"dt", e.cfg.Dt,
		"duration", e.cfg.Duration,
		"start", e.start,
	)
	return e.simulator.Run(ctx, e.x0.Clone(), e.simConfig())
}

func (e *Experiment) RunWithCallback(ctx context.Context, callback func(dynamo.State, dynamo.Control, float64, dynamo.Outputs) bool) error {
	if e.simulator == nil {
		return ErrNotSetup
	}
	return e.simulator.RunWithCallback(ctx, e.x0.Clone(), e.simConfig(), callback)
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Muscles() []*muscle.Muscle { return e.muscles }
func (e *Experiment) System() dynamo.System     { return e.sys }
func (e *Experiment) Config() *config.Config    { return e.cfg }

// Checkpoint captures the actuators' solver history together with the
// system state x at time t. Taken after Run, with the last recorded state
// and time, a run restored from it continues exactly where this one ended.
func (e *Experiment) Checkpoint(name string, t float64, x dynamo.State) (*storage.Checkpoint, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	cp := &storage.Checkpoint{
		Name:  name,
		Model: e.cfg.Model,
		Time:  t,
		State: x.Clone(),
	}
	for _, m := range e.muscles {
		buf := muscle.NewDataBuffer()
		m.GetState(buf)
		cp.Actuators = append(cp.Actuators, buf)
	}
	return cp, nil
}

// Restore loads a checkpoint into the actuators and makes the next run start
// from its state and time.
func (e *Experiment) Restore(cp *storage.Checkpoint) error {
	if e.simulator == nil {
		return ErrNotSetup
	}
	if cp.Model != e.cfg.Model {
		return fmt.Errorf("%w: %s, running %s", ErrCheckpointModel, cp.Model, e.cfg.Model)
	}
	if len(cp.Actuators) != len(e.muscles) || len(cp.State) != e.sys.StateDim() {
		return fmt.Errorf("%w: %d actuators and %d states, want %d and %d",
			ErrCheckpointLayout, len(cp.Actuators), len(cp.State), len(e.muscles), e.sys.StateDim())
	}
	for i, buf := range cp.Actuators {
		if buf == nil {
			return fmt.Errorf("%w: actuator %d has no state", ErrCheckpointLayout, i)
		}
	}

	// a failure part way through puts the earlier actuators back
	saved := make([]*muscle.DataBuffer, len(e.muscles))
	for i, m := range e.muscles {
		saved[i] = muscle.NewDataBuffer()
		m.GetState(saved[i])
	}
	for i, m := range e.muscles {
		cp.Actuators[i].ResetOffsets()
		if err := m.SetState(cp.Actuators[i]); err != nil {
			for j := range i {
				_ = e.muscles[j].SetState(saved[j])
			}
			return fmt.Errorf("actuator %d: %w", i, err)
		}
	}
	e.x0 = dynamo.State(cp.State).Clone()
	e.start = cp.Time
	return nil
}

// Metadata describes the run for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	params := make(map[string]float64)
	if c, ok := e.sys.(dynamo.Configurable); ok {
		params = c.GetParams()
	}
	profiles := []string{e.cfg.Activation.Profile}
	if e.sys != nil && e.sys.ControlDim() > 1 {
		profiles = append(profiles, e.cfg.AntagonistActivation.Profile)
	}
	return storage.RunMetadata{
		Model:      e.cfg.Model,
		Dt:         e.cfg.Dt,
		Duration:   e.cfg.Duration,
		Integrator: e.cfg.Integrator,
		Activation: strings.Join(profiles, "+"),
		Curves:     e.cfg.Curves.Set,
		Solver:     e.cfg.Solver.Method,
		Velocity:   e.cfg.Solver.Velocity,
		Params:     params,
	}
}

// SetParams applies named parameters to the configured system.
func (e *Experiment) SetParams(params map[string]float64) error {
	if e.simulator == nil {
		return ErrNotSetup
	}
	c, ok := e.sys.(dynamo.Configurable)
	if !ok {
		return fmt.Errorf("model %s has no tunable parameters", e.cfg.Model)
	}
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if err := c.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	return nil
}

// Session starts a step-at-a-time run from the configured or restored
// state.
func (e *Experiment) Session() (*sim.Session, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	return e.simulator.NewSession(e.x0.Clone(), e.simConfig())
}
