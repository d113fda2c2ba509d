package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/musclesim/internal/config"
)

var (
	dataDir  string
	logLevel string
	logger   = slog.New(slog.DiscardHandler)

	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	activation string
	level      float64
	length     float64
	mass       float64
	curveSet   string
	solver     string
	velocity   string
	rigid      bool

	saveCheckpoint string
	resumeFrom     string

	columns    []string
	outPath    string
	frameSteps int
	tuneParams []string
	metric     string
	maximize   bool
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "musclesim",
		Short:         "hill-type muscle simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr("MUSCLESIM_DATA", ".musclesim"), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("MUSCLESIM_LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().StringVar(&saveCheckpoint, "checkpoint", "", "save a checkpoint with this name at the end of the run")
	runCmd.Flags().StringVar(&resumeFrom, "resume", "", "continue from the named checkpoint")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", nil, "columns to plot (default: forces, fiber lengths and x0)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	curvesCmd := &cobra.Command{
		Use:   "curves",
		Short: "plot the muscle curves",
		RunE:  plotCurves,
	}
	curvesCmd.Flags().StringVar(&curveSet, "curves", "degroote", "curve set (degroote, stiff, tabulated)")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "compare analytic force derivatives with finite differences",
		RunE:  checkDerivatives,
	}
	addMuscleFlags(checkCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "steady force over a grid of lengths and activations",
		RunE:  sweep,
	}
	addMuscleFlags(sweepCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameSteps, "steps", 0, "simulation steps per frame (default real time)")

	checkpointCmd := &cobra.Command{
		Use:   "checkpoint [name]",
		Short: "show a saved checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  showCheckpoint,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addModelFlags(compareCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search model parameters for the best metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tune,
	}
	addModelFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "parameter grid as name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metric, "metric", "max_residual", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, curvesCmd,
		checkCmd, sweepCmd, liveCmd, checkpointCmd, compareCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupLogging() error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return nil
}

func addMuscleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&curveSet, "curves", "degroote", "curve set (degroote, stiff, tabulated)")
	cmd.Flags().StringVar(&solver, "solver", "newton", "root finder (newton, brent, bisect)")
	cmd.Flags().StringVar(&velocity, "velocity", "length", "fiber velocity coupling (length, tendon, known)")
	cmd.Flags().BoolVar(&rigid, "rigid", false, "rigid tendon")
}

func addModelFlags(cmd *cobra.Command) {
	addMuscleFlags(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&activation, "activation", "constant", "activation profile")
	cmd.Flags().Float64Var(&level, "level", config.DefaultLevel, "activation level")
	cmd.Flags().Float64Var(&length, "length", config.DefaultLength, "initial actuator length")
	cmd.Flags().Float64Var(&mass, "mass", 20, "load mass")
}

// resolveConfig layers the configuration: defaults, then the preset, then
// the config file, then flags the user set explicitly.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if model != "" {
		cfg.Model = model
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if model != "" {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("activation") {
		cfg.Activation.Profile = activation
	}
	if flags.Changed("level") {
		cfg.Activation.Level = level
	}
	if flags.Changed("length") {
		cfg.InitState.Length = length
	}
	if flags.Changed("mass") {
		cfg.Load.Mass = mass
	}
	if flags.Changed("curves") {
		cfg.Curves.Set = curveSet
	}
	if flags.Changed("solver") {
		cfg.Solver.Method = solver
	}
	if flags.Changed("velocity") {
		cfg.Solver.Velocity = velocity
	}
	if flags.Changed("rigid") {
		cfg.Muscle.RigidTendon = rigid
		if cfg.Antagonist != nil {
			cfg.Antagonist.RigidTendon = rigid
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("resolved config", "model", cfg.Model, "preset", preset, "file", configFile)
	return cfg, nil
}
