package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/storage"
)

func shortPreset(t *testing.T, model, name string, duration float64) *config.Config {
	t.Helper()
	cfg := config.GetPreset(model, name)
	require.NotNil(t, cfg, "%s/%s", model, name)
	cfg.Duration = duration
	return cfg
}

func TestRunEveryPreset(t *testing.T) {
	for model := range config.Presets {
		for _, name := range config.ListPresets(model) {
			t.Run(model+"/"+name, func(t *testing.T) {
				exp := New(shortPreset(t, model, name, 0.05), nil)
				require.NoError(t, exp.Setup(nil))

				result, err := exp.Run(context.Background())
				require.NoError(t, err)
				assert.Len(t, result.States, 51)
				for _, x := range result.States {
					assert.True(t, x.IsValid())
				}
			})
		}
	}
}

func TestRunEveryIntegrator(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.ListIntegrators() {
		t.Run(name, func(t *testing.T) {
			cfg := shortPreset(t, "hanging", "hold", 0.02)
			cfg.Integrator = name
			exp := New(cfg, reg)
			require.NoError(t, exp.Setup(nil))
			_, err := exp.Run(context.Background())
			require.NoError(t, err)
		})
	}
}

func TestCurveSets(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.ListCurves() {
		t.Run(name, func(t *testing.T) {
			cfg := shortPreset(t, "hanging", "hold", 0.02)
			cfg.Curves.Set = name
			cfg.Curves.Stiffness = 10
			exp := New(cfg, reg)
			require.NoError(t, exp.Setup(nil))
			_, err := exp.Run(context.Background())
			require.NoError(t, err)
		})
	}
}

func TestUnknownNames(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"model", func(c *config.Config) { c.Model = "pendulum" }},
		{"integrator", func(c *config.Config) { c.Integrator = "rk45" }},
		{"profile", func(c *config.Config) { c.Activation.Profile = "square" }},
		{"curves", func(c *config.Config) { c.Curves.Set = "linear" }},
		{"stiffness", func(c *config.Config) { c.Curves = config.CurvesConfig{Set: "stiff"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, New(cfg, nil).Setup(nil))
		})
	}
}

func TestRunBeforeSetup(t *testing.T) {
	exp := New(config.DefaultConfig(), nil)
	_, err := exp.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotSetup)
}

func TestAntagonistChannels(t *testing.T) {
	exp := New(shortPreset(t, "antagonist", "alternate", 0.1), nil)
	require.NoError(t, exp.Setup(nil))
	require.Len(t, exp.Muscles(), 2)

	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	u := result.Controls[len(result.Controls)-1]
	require.Len(t, u, 2)
	assert.InDelta(t, 1.0, u[0]+u[1], 1e-12, "opposite phases should sum to twice the mean")
	assert.Contains(t, result.Outputs[0], "agonist_force")
	assert.Contains(t, result.Outputs[0], "antagonist_force")
}

func TestCheckpointResume(t *testing.T) {
	ctx := context.Background()
	st := storage.New(t.TempDir())

	whole := New(shortPreset(t, "hanging", "sine", 0.2), nil)
	require.NoError(t, whole.Setup(nil))
	full, err := whole.Run(ctx)
	require.NoError(t, err)

	first := New(shortPreset(t, "hanging", "sine", 0.1), nil)
	require.NoError(t, first.Setup(nil))
	part, err := first.Run(ctx)
	require.NoError(t, err)

	last := len(part.States) - 1
	cp, err := first.Checkpoint("half", part.Times[last], part.States[last])
	require.NoError(t, err)
	require.NoError(t, st.SaveCheckpoint(cp))

	loaded, err := st.LoadCheckpoint("half")
	require.NoError(t, err)

	second := New(shortPreset(t, "hanging", "sine", 0.1), nil)
	require.NoError(t, second.Setup(nil))
	require.NoError(t, second.Restore(loaded))
	rest, err := second.Run(ctx)
	require.NoError(t, err)

	want := full.States[len(full.States)-1]
	got := rest.States[len(rest.States)-1]
	for i := range want {
		assert.Equal(t, math.Float64bits(want[i]), math.Float64bits(got[i]), "component %d", i)
	}
	assert.Equal(t, full.Times[len(full.Times)-1], rest.Times[len(rest.Times)-1])
}

func TestRestoreMismatch(t *testing.T) {
	hanging := New(shortPreset(t, "hanging", "hold", 0.01), nil)
	require.NoError(t, hanging.Setup(nil))
	_, err := hanging.Run(context.Background())
	require.NoError(t, err)
	cp, err := hanging.Checkpoint("x", 0.01, hanging.x0)
	require.NoError(t, err)

	pair := New(shortPreset(t, "antagonist", "cocontract", 0.01), nil)
	require.NoError(t, pair.Setup(nil))
	assert.ErrorIs(t, pair.Restore(cp), ErrCheckpointModel)

	cp.Model = "antagonist"
	assert.ErrorIs(t, pair.Restore(cp), ErrCheckpointLayout)

	rigid := New(shortPreset(t, "hanging", "rigid", 0.01), nil)
	require.NoError(t, rigid.Setup(nil))
	cp.Model = "hanging"
	assert.ErrorIs(t, rigid.Restore(cp), muscle.ErrStateVersion)
}

func TestRestoreFailureLeavesActuators(t *testing.T) {
	src := New(shortPreset(t, "antagonist", "alternate", 0.02), nil)
	require.NoError(t, src.Setup(nil))
	result, err := src.Run(context.Background())
	require.NoError(t, err)
	last := len(result.States) - 1
	cp, err := src.Checkpoint("pair", result.Times[last], result.States[last])
	require.NoError(t, err)
	cp.Actuators[1].D = cp.Actuators[1].D[:len(cp.Actuators[1].D)-1]

	dst := New(shortPreset(t, "antagonist", "alternate", 0.01), nil)
	require.NoError(t, dst.Setup(nil))
	_, err = dst.Run(context.Background())
	require.NoError(t, err)
	before := make([]muscle.EquilibriumState, len(dst.Muscles()))
	for i, m := range dst.Muscles() {
		before[i], _ = m.EquilibriumState()
	}
	x0, start := dst.x0.Clone(), dst.start

	assert.ErrorIs(t, dst.Restore(cp), muscle.ErrStateBuffer)
	for i, m := range dst.Muscles() {
		after, _ := m.EquilibriumState()
		assert.Equal(t, before[i], after, "actuator %d", i)
	}
	assert.Equal(t, x0, dst.x0)
	assert.Equal(t, start, dst.start)
}

func TestMetadata(t *testing.T) {
	exp := New(shortPreset(t, "antagonist", "alternate", 0.01), nil)
	require.NoError(t, exp.Setup(nil))

	meta := exp.Metadata()
	assert.Equal(t, "antagonist", meta.Model)
	assert.Equal(t, "sine+sine", meta.Activation)
	assert.Contains(t, meta.Params, "agonist_max_iso_force")
	assert.Contains(t, meta.Params, "mass")
}
