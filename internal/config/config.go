package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/roots"
)

const (
	DefaultDt       = 0.001
	DefaultDuration = 1.0
	DefaultLength   = 0.3
	DefaultLevel    = 0.25
	DefaultKnots    = 40
	DefaultKp       = 20.0
	DefaultKi       = 5.0
	DefaultKd       = 0.5
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Model                string           `yaml:"model"`
	Integrator           string           `yaml:"integrator"`
	Dt                   float64          `yaml:"dt"`
	Duration             float64          `yaml:"duration"`
	Muscle               muscle.Params    `yaml:"muscle"`
	Antagonist           *muscle.Params   `yaml:"antagonist,omitempty"`
	Solver               SolverConfig     `yaml:"solver"`
	Curves               CurvesConfig     `yaml:"curves"`
	Load                 LoadConfig       `yaml:"load"`
	InitState            InitStateConfig  `yaml:"init_state"`
	Activation           ActivationConfig `yaml:"activation"`
	AntagonistActivation ActivationConfig `yaml:"antagonist_activation"`
	ControllerParams     ControllerConfig `yaml:"controller_params"`
}

type SolverConfig struct {
	Method        string `yaml:"method"`
	Velocity      string `yaml:"velocity"`
	MaxIterations int    `yaml:"max_iterations"`
}

// CurvesConfig picks the curve set: "degroote", "stiff" (tendon stiffness
// scaled by Stiffness) or "tabulated" (Hermite splines with Knots knots).
type CurvesConfig struct {
	Set       string  `yaml:"set"`
	Stiffness float64 `yaml:"stiffness,omitempty"`
	Knots     int     `yaml:"knots,omitempty"`
}

type LoadConfig struct {
	Mass    float64 `yaml:"mass"`
	Gravity float64 `yaml:"gravity"`
	Gap     float64 `yaml:"gap"`
}

type InitStateConfig struct {
	Length float64 `yaml:"length"`
	Rate   float64 `yaml:"rate"`
}

// ActivationConfig describes one activation channel. The meaning of the
// shared fields depends on Profile:
//
//	constant  Level
//	step      Level until At, then Final
//	ramp      Level to Final over Rise seconds from At
//	sine      Level + Amplitude*sin(2*pi*Frequency*t + Phase)
//	twitch    pulse of height Level starting at At, peaking after Rise
//	pid       hold the length at ControllerParams.Target
//	none      zero
type ActivationConfig struct {
	Profile   string  `yaml:"profile"`
	Level     float64 `yaml:"level"`
	Final     float64 `yaml:"final,omitempty"`
	At        float64 `yaml:"at,omitempty"`
	Rise      float64 `yaml:"rise,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	Frequency float64 `yaml:"frequency,omitempty"`
	Phase     float64 `yaml:"phase,omitempty"`
}

type ControllerConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "hanging",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Muscle:     muscle.DefaultParams(),
		Solver: SolverConfig{
			Method:        roots.MethodNewton.String(),
			Velocity:      muscle.VelocityFromLength.String(),
			MaxIterations: muscle.DefaultMaxIterations,
		},
		Curves: CurvesConfig{Set: "degroote", Stiffness: 1, Knots: DefaultKnots},
		Load: LoadConfig{
			Mass:    20,
			Gravity: 9.81,
			Gap:     0.64,
		},
		InitState:            InitStateConfig{Length: DefaultLength},
		Activation:           ActivationConfig{Profile: "constant", Level: DefaultLevel},
		AntagonistActivation: ActivationConfig{Profile: "constant", Level: DefaultLevel},
		ControllerParams: ControllerConfig{
			Kp:     DefaultKp,
			Ki:     DefaultKi,
			Kd:     DefaultKd,
			Target: DefaultLength,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Antagonist != nil {
		p := *c.Antagonist
		out.Antagonist = &p
	}
	return &out
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if c.Load.Mass <= 0 {
		return fmt.Errorf("%w: load mass must be positive, got %g", ErrInvalidConfig, c.Load.Mass)
	}
	if err := c.Muscle.Validate(); err != nil {
		return fmt.Errorf("%w: muscle: %w", ErrInvalidConfig, err)
	}
	if err := c.AntagonistParams().Validate(); err != nil {
		return fmt.Errorf("%w: antagonist: %w", ErrInvalidConfig, err)
	}
	if _, err := c.MuscleConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AntagonistParams returns the antagonist's parameters, which default to
// the agonist's.
func (c *Config) AntagonistParams() muscle.Params {
	if c.Antagonist != nil {
		return *c.Antagonist
	}
	return c.Muscle
}

// MuscleConfig translates the solver section.
func (c *Config) MuscleConfig() (muscle.Config, error) {
	mc := muscle.DefaultConfig()
	method, err := roots.ParseMethod(c.Solver.Method)
	if err != nil {
		return mc, err
	}
	velocity, err := muscle.ParseVelocityMode(c.Solver.Velocity)
	if err != nil {
		return mc, err
	}
	mc.Method = method
	mc.Velocity = velocity
	if c.Solver.MaxIterations > 0 {
		mc.MaxIterations = c.Solver.MaxIterations
	}
	return mc, nil
}

func (c *Config) GetInitState() []float64 {
	l := c.InitState.Length
	if c.Model == "antagonist" && l == 0 {
		l = c.Load.Gap / 2
	}
	return []float64{l, c.InitState.Rate}
}

func (c *Config) GetControllerParams() map[string]float64 {
	return map[string]float64{
		"kp":     c.ControllerParams.Kp,
		"ki":     c.ControllerParams.Ki,
		"kd":     c.ControllerParams.Kd,
		"target": c.ControllerParams.Target,
	}
}
