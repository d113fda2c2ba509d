package config

import (
	"math"
	"slices"
)

var Presets = map[string]map[string]func() *Config{
	"hanging": {
		"hold": func() *Config {
			return DefaultConfig()
		},
		"twitch": func() *Config {
			c := DefaultConfig()
			c.Duration = 0.5
			c.InitState.Length = 0.31
			c.Activation = ActivationConfig{Profile: "twitch", Level: 1, At: 0.05, Rise: 0.04}
			return c
		},
		"sine": func() *Config {
			c := DefaultConfig()
			c.Duration = 2
			c.Activation = ActivationConfig{Profile: "sine", Level: 0.4, Amplitude: 0.3, Frequency: 2}
			return c
		},
		"rigid": func() *Config {
			c := DefaultConfig()
			c.Muscle.RigidTendon = true
			c.Activation = ActivationConfig{Profile: "step", Level: 0.2, Final: 0.8, At: 0.2}
			return c
		},
		"pennated": func() *Config {
			c := DefaultConfig()
			c.Muscle.OptPennationAngle = math.Pi / 9
			c.Muscle.FiberDamping = 0.1
			c.Activation = ActivationConfig{Profile: "ramp", Level: 0.1, Final: 0.9, At: 0.1, Rise: 0.5}
			return c
		},
		"hold-pid": func() *Config {
			c := DefaultConfig()
			c.Duration = 2
			c.Activation = ActivationConfig{Profile: "pid"}
			c.ControllerParams.Target = 0.29
			return c
		},
	},
	"antagonist": {
		"cocontract": func() *Config {
			c := DefaultConfig()
			c.Model = "antagonist"
			c.Load.Mass = 10
			c.InitState.Length = 0.3
			c.Activation = ActivationConfig{Profile: "constant", Level: 0.5}
			c.AntagonistActivation = ActivationConfig{Profile: "constant", Level: 0.5}
			return c
		},
		"alternate": func() *Config {
			c := DefaultConfig()
			c.Model = "antagonist"
			c.Load.Mass = 10
			c.Duration = 2
			c.InitState.Length = 0.32
			c.Activation = ActivationConfig{Profile: "sine", Level: 0.5, Amplitude: 0.4, Frequency: 1}
			c.AntagonistActivation = ActivationConfig{Profile: "sine", Level: 0.5, Amplitude: 0.4, Frequency: 1, Phase: math.Pi}
			return c
		},
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	build, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
