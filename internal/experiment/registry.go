package experiment

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/control"
	"github.com/san-kum/musclesim/internal/curves"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/integrators"
	"github.com/san-kum/musclesim/internal/metrics"
	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/physics"
)

// ModelFunc builds a system and returns the actuators it owns in checkpoint
// order.
type ModelFunc func(cfg *config.Config, build MuscleFunc) (dynamo.System, []*muscle.Muscle, error)

// MuscleFunc builds one actuator with the given parameters.
type MuscleFunc func(p muscle.Params) (*muscle.Muscle, error)

type Registry struct {
	models      map[string]ModelFunc
	integrators map[string]func() dynamo.Integrator
	profiles    map[string]func(a config.ActivationConfig, cfg *config.Config) dynamo.Controller
	curves      map[string]func(c config.CurvesConfig) (curves.CurveSet, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]ModelFunc),
		integrators: make(map[string]func() dynamo.Integrator),
		profiles:    make(map[string]func(config.ActivationConfig, *config.Config) dynamo.Controller),
		curves:      make(map[string]func(config.CurvesConfig) (curves.CurveSet, error)),
	}

	r.models["hanging"] = func(cfg *config.Config, build MuscleFunc) (dynamo.System, []*muscle.Muscle, error) {
		m, err := build(cfg.Muscle)
		if err != nil {
			return nil, nil, err
		}
		h := physics.NewHangingMass(m, cfg.Load.Mass)
		if cfg.Load.Gravity != 0 {
			h.Gravity = cfg.Load.Gravity
		}
		return h, []*muscle.Muscle{m}, nil
	}
	r.models["antagonist"] = func(cfg *config.Config, build MuscleFunc) (dynamo.System, []*muscle.Muscle, error) {
		ag, err := build(cfg.Muscle)
		if err != nil {
			return nil, nil, fmt.Errorf("agonist: %w", err)
		}
		an, err := build(cfg.AntagonistParams())
		if err != nil {
			return nil, nil, fmt.Errorf("antagonist: %w", err)
		}
		gap := cfg.Load.Gap
		if gap <= 0 {
			gap = physics.DefaultGap
		}
		return physics.NewAntagonistPair(ag, an, cfg.Load.Mass, gap), []*muscle.Muscle{ag, an}, nil
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["symplectic"] = func() dynamo.Integrator { return integrators.NewSymplecticEuler() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["backward"] = func() dynamo.Integrator { return integrators.NewBackwardEuler() }

	r.profiles["constant"] = func(a config.ActivationConfig, _ *config.Config) dynamo.Controller {
		return control.NewConstant(a.Level)
	}
	r.profiles["step"] = func(a config.ActivationConfig, _ *config.Config) dynamo.Controller {
		return control.NewStep(a.Level, a.Final, a.At)
	}
	r.profiles["ramp"] = func(a config.ActivationConfig, _ *config.Config) dynamo.Controller {
		return control.NewRamp(a.Level, a.Final, a.At, a.Rise)
	}
	r.profiles["sine"] = func(a config.ActivationConfig, _ *config.Config) dynamo.Controller {
		s := control.NewSine(a.Level, a.Amplitude, a.Frequency)
		s.Phase = a.Phase
		return s
	}
	r.profiles["twitch"] = func(a config.ActivationConfig, _ *config.Config) dynamo.Controller {
		return control.NewTwitch(a.Level, a.At, a.Rise)
	}
	r.profiles["pid"] = func(a config.ActivationConfig, cfg *config.Config) dynamo.Controller {
		p := cfg.ControllerParams
		pid := control.NewPID(p.Kp, p.Ki, p.Kd, p.Target)
		pid.Bias = a.Level
		return pid
	}
	r.profiles["none"] = func(config.ActivationConfig, *config.Config) dynamo.Controller {
		return control.NewNone(1)
	}

	r.curves["degroote"] = func(config.CurvesConfig) (curves.CurveSet, error) {
		return curves.DeGroote2016(), nil
	}
	r.curves["stiff"] = func(c config.CurvesConfig) (curves.CurveSet, error) {
		if c.Stiffness <= 0 {
			return curves.CurveSet{}, fmt.Errorf("stiff curves need a positive stiffness, got %g", c.Stiffness)
		}
		return curves.Stiff(c.Stiffness), nil
	}
	r.curves["tabulated"] = func(c config.CurvesConfig) (curves.CurveSet, error) {
		knots := c.Knots
		if knots <= 0 {
			knots = config.DefaultKnots
		}
		return curves.Tabulated(curves.DeGroote2016(), knots)
	}

	return r
}

func (r *Registry) GetModel(name string) (ModelFunc, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetActivation(a config.ActivationConfig, cfg *config.Config) (dynamo.Controller, error) {
	name := a.Profile
	if name == "" {
		name = "constant"
	}
	fn, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown activation profile: %s", name)
	}
	return fn(a, cfg), nil
}

func (r *Registry) GetCurves(c config.CurvesConfig) (curves.CurveSet, error) {
	name := c.Set
	if name == "" {
		name = "degroote"
	}
	fn, ok := r.curves[name]
	if !ok {
		return curves.CurveSet{}, fmt.Errorf("unknown curve set: %s", name)
	}
	return fn(c)
}

func (r *Registry) ListModels() []string      { return sortedKeys(r.models) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListProfiles() []string    { return sortedKeys(r.profiles) }
func (r *Registry) ListCurves() []string      { return sortedKeys(r.curves) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultMetrics returns the metrics recorded for every run of model.
func (r *Registry) DefaultMetrics(model string, cfg *config.Config) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewActivationEffort(),
		metrics.NewMaxResidual(),
		metrics.NewSolverIterations(),
	}
	switch model {
	case "antagonist":
		ms = append(ms,
			metrics.NewPeakForce("agonist_force"),
			metrics.NewPeakForce("antagonist_force"),
			metrics.NewMeanForce("net_force"),
			metrics.NewLengthRange(0, cfg.Load.Gap),
		)
	default:
		ms = append(ms,
			metrics.NewPeakForce(metrics.DefaultForceKey),
			metrics.NewMeanForce(metrics.DefaultForceKey),
			metrics.NewWork(metrics.DefaultForceKey),
			metrics.NewLengthRange(cfg.Muscle.TendonSlackLength, cfg.Muscle.TendonSlackLength+3*cfg.Muscle.OptFiberLength),
		)
	}
	return ms
}

// MuscleBuilder returns a constructor for actuators with the configured
// curves and solver. Each call builds an independent muscle.
func (r *Registry) MuscleBuilder(cfg *config.Config, log *slog.Logger) (MuscleFunc, error) {
	cs, err := r.GetCurves(cfg.Curves)
	if err != nil {
		return nil, err
	}
	mc, err := cfg.MuscleConfig()
	if err != nil {
		return nil, err
	}
	mc.Logger = log
	return func(p muscle.Params) (*muscle.Muscle, error) {
		return muscle.New(p, cs, mc)
	}, nil
}
