package optim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/experiment"
)

func builder() func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.Duration = 0.05
		exp := experiment.New(cfg, nil)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		return exp, exp.SetParams(params)
	}
}

func TestGridSearchPeakForce(t *testing.T) {
	g := NewGridSearch([]string{"max_iso_force"}, [][]float64{{500, 1000, 2000}})
	g.Maximize = true

	best, val, trials, err := g.Search(context.Background(), builder(), "peak_force")
	require.NoError(t, err)

	assert.Len(t, trials, 3)
	assert.Equal(t, 2000.0, best["max_iso_force"])
	for _, tr := range trials {
		assert.LessOrEqual(t, tr.Value, val)
	}
}

func TestGridSearchVisitsEveryCombination(t *testing.T) {
	g := NewGridSearch([]string{"mass", "fiber_damping"}, [][]float64{{10, 20}, {0, 0.05, 0.1}})

	_, _, trials, err := g.Search(context.Background(), builder(), "activation_effort")
	require.NoError(t, err)
	require.Len(t, trials, 6)

	seen := make(map[[2]float64]bool)
	for _, tr := range trials {
		seen[[2]float64{tr.Params["mass"], tr.Params["fiber_damping"]}] = true
	}
	assert.Len(t, seen, 6)
}

func TestGridSearchAllFail(t *testing.T) {
	g := NewGridSearch([]string{"mass"}, [][]float64{{-1, 0}})

	_, _, trials, err := g.Search(context.Background(), builder(), "peak_force")
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
	assert.Len(t, trials, 2)
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch([]string{"mass"}, [][]float64{{20}})
	_, _, _, err := g.Search(context.Background(), builder(), "lyapunov")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch([]string{"mass"}, [][]float64{{10, 20}})
	_, _, _, err := g.Search(ctx, builder(), "peak_force")
	assert.ErrorIs(t, err, context.Canceled)
}
