package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/roots"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "hanging" {
		t.Errorf("expected model hanging, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("hanging", "rigid")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.Muscle.RigidTendon {
		t.Error("rigid preset should have a rigid tendon")
	}

	cfg.Dt = 1
	if again := GetPreset("hanging", "rigid"); again.Dt == 1 {
		t.Error("presets should be returned as fresh copies")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("hanging", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "hold")
	if cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("hanging")
	if len(presets) == 0 {
		t.Error("expected presets for hanging")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for model := range Presets {
		for _, name := range ListPresets(model) {
			cfg := GetPreset(model, name)
			if cfg.Model != model {
				t.Errorf("%s/%s: model field is %s", model, name, cfg.Model)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func TestGetInitState(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetInitState(); len(got) != 2 || got[0] != DefaultLength {
		t.Errorf("unexpected hanging init state %v", got)
	}

	cfg.Model = "antagonist"
	cfg.InitState.Length = 0
	if got := cfg.GetInitState(); got[0] != cfg.Load.Gap/2 {
		t.Errorf("antagonist should start centered, got %v", got)
	}
}

func TestMuscleConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver = SolverConfig{Method: "brent", Velocity: "tendon", MaxIterations: 50}

	mc, err := cfg.MuscleConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.Method != roots.MethodBrent || mc.Velocity != muscle.VelocityFromTendon || mc.MaxIterations != 50 {
		t.Errorf("unexpected solver config %+v", mc)
	}

	cfg.Solver.Method = "secant"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"massless load", func(c *Config) { c.Load.Mass = 0 }},
		{"bad muscle", func(c *Config) { c.Muscle.OptFiberLength = 0 }},
		{"bad antagonist", func(c *Config) {
			p := muscle.DefaultParams()
			p.MaxIsoForce = -1
			c.Antagonist = &p
		}},
		{"bad velocity", func(c *Config) { c.Solver.Velocity = "sideways" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("antagonist", "alternate")
	p := muscle.DefaultParams()
	p.MaxIsoForce = 800
	cfg.Antagonist = &p

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Model != "antagonist" {
		t.Errorf("expected model antagonist, got %s", loaded.Model)
	}
	if loaded.AntagonistActivation.Phase != cfg.AntagonistActivation.Phase {
		t.Errorf("phase did not round trip: %g", loaded.AntagonistActivation.Phase)
	}
	if loaded.AntagonistParams().MaxIsoForce != 800 {
		t.Errorf("antagonist params did not round trip: %+v", loaded.Antagonist)
	}
	if loaded.Muscle != cfg.Muscle {
		t.Errorf("muscle params did not round trip: %+v", loaded.Muscle)
	}
}
