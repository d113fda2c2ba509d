package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestParseGrid(t *testing.T) {
	tests := []struct {
		arg     string
		name    string
		values  []float64
		wantErr bool
	}{
		{"mass=10,20,40", "mass", []float64{10, 20, 40}, false},
		{"fiber_damping= 0, 0.1", "fiber_damping", []float64{0, 0.1}, false},
		{"mass", "", nil, true},
		{"=1,2", "", nil, true},
		{"mass=1,x", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, values, err := parseGrid(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %t, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if name != tt.name || len(values) != len(tt.values) {
				t.Fatalf("got %s %v", name, values)
			}
			for i := range values {
				if values[i] != tt.values[i] {
					t.Errorf("value %d: expected %g, got %g", i, tt.values[i], values[i])
				}
			}
		})
	}
}

func TestResolveConfigFlagsOverridePreset(t *testing.T) {
	cmd := &cobra.Command{}
	addModelFlags(cmd)
	preset = "twitch"
	defer func() { preset = "" }()

	if err := cmd.Flags().Set("time", "0.2"); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd, "hanging")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.Duration != 0.2 {
		t.Errorf("expected flag duration 0.2, got %g", cfg.Duration)
	}
	if cfg.Activation.Profile != "twitch" {
		t.Errorf("expected preset profile twitch, got %s", cfg.Activation.Profile)
	}
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	cmd := &cobra.Command{}
	addModelFlags(cmd)
	preset = "nope"
	defer func() { preset = "" }()

	if _, err := resolveConfig(cmd, "hanging"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
