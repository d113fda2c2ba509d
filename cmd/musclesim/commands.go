package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/control"
	"github.com/san-kum/musclesim/internal/curves"
	"github.com/san-kum/musclesim/internal/derivcheck"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/experiment"
	"github.com/san-kum/musclesim/internal/muscle"
	"github.com/san-kum/musclesim/internal/optim"
	"github.com/san-kum/musclesim/internal/sim"
	"github.com/san-kum/musclesim/internal/storage"
	"github.com/san-kum/musclesim/internal/viz"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	exp.SetLogger(logger)
	if err := exp.Setup(nil); err != nil {
		return err
	}

	if resumeFrom != "" {
		cp, err := st.LoadCheckpoint(resumeFrom)
		if err != nil {
			return err
		}
		if err := exp.Restore(cp); err != nil {
			return fmt.Errorf("resume %s: %w", resumeFrom, err)
		}
		fmt.Printf("resuming from %s at t=%.4fs\n", cp.Name, cp.Time)
	}

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			fmt.Printf("failed at step %d (t=%.4fs), state %v\n", simErr.Step, simErr.Time, simErr.State)
		}
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(exp.Metadata(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for _, name := range sortedNames(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}

	if saveCheckpoint != "" {
		last := len(result.States) - 1
		cp, err := exp.Checkpoint(saveCheckpoint, result.Times[last], result.States[last])
		if err != nil {
			return err
		}
		cp.Preset = preset
		if err := st.SaveCheckpoint(cp); err != nil {
			return err
		}
		fmt.Printf("\ncheckpoint: %s (t=%.4fs)\n", cp.Name, cp.Time)
	}

	return nil
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tACTIVATION\tSOLVER")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%s/%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Activation,
			run.Solver,
			run.Velocity,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	table, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	if len(table.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(table.Rows))

	names := columns
	if len(names) == 0 {
		for _, c := range table.Columns {
			if c == "x0" || strings.HasSuffix(c, "force") || strings.HasSuffix(c, "fiber_length") {
				names = append(names, c)
			}
		}
	}

	for _, name := range names {
		data := table.Column(name)
		if data == nil {
			fmt.Printf("no column %q\n\n", name)
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	table, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	return table.WriteCSV(os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath != "" {
		if err := st.ExportJSON(args[0], outPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	return st.ExportJSONTo(args[0], os.Stdout)
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := slices.Sorted(maps.Keys(config.Presets))
	if len(args) > 0 {
		models = args
	}

	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			cfg := config.GetPreset(model, p)
			fmt.Printf("  %-12s %s\n", p, dimStyle.Render(describeActivation(cfg.Activation)))
		}
	}
	return nil
}

func describeActivation(a config.ActivationConfig) string {
	switch a.Profile {
	case "step":
		return fmt.Sprintf("step %.2f -> %.2f at %.2fs", a.Level, a.Final, a.At)
	case "ramp":
		return fmt.Sprintf("ramp %.2f -> %.2f from %.2fs over %.2fs", a.Level, a.Final, a.At, a.Rise)
	case "sine":
		return fmt.Sprintf("sine %.2f ± %.2f at %.1f Hz", a.Level, a.Amplitude, a.Frequency)
	case "twitch":
		return fmt.Sprintf("twitch %.2f at %.2fs rising %.3fs", a.Level, a.At, a.Rise)
	case "pid":
		return "pid length hold"
	}
	return fmt.Sprintf("%s %.2f", a.Profile, a.Level)
}

func plotCurves(cmd *cobra.Command, args []string) error {
	cs, err := experiment.NewRegistry().GetCurves(config.CurvesConfig{
		Set:       curveSet,
		Stiffness: 10,
		Knots:     config.DefaultKnots,
	})
	if err != nil {
		return err
	}

	plots := []struct {
		name   string
		c      curves.Curve
		x0, x1 float64
	}{
		{"active force-length (normalized fiber length)", cs.ActiveForceLength, 0.3, 1.8},
		{"passive force-length (normalized fiber length)", cs.PassiveForceLength, 0.8, 1.8},
		{"force-velocity (normalized fiber velocity)", cs.ForceVelocity, -1, 1},
		{"tendon force-length (normalized tendon length)", cs.TendonForceLength, 0.99, 1.06},
	}
	for _, p := range plots {
		_, ys := curves.Sample(p.c, p.x0, p.x1, 80)
		fmt.Println(asciigraph.Plot(ys,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s on [%.2f, %.2f]", p.name, p.x0, p.x1)),
		))
		fmt.Println()
	}
	return nil
}

func muscleFactory(cmd *cobra.Command) (func() (*muscle.Muscle, error), *config.Config, error) {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return nil, nil, err
	}
	build, err := experiment.NewRegistry().MuscleBuilder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return func() (*muscle.Muscle, error) { return build(cfg.Muscle) }, cfg, nil
}

func checkDerivatives(cmd *cobra.Command, args []string) error {
	build, cfg, err := muscleFactory(cmd)
	if err != nil {
		return err
	}

	results, err := derivcheck.CheckAll(build, derivcheck.Grid(cfg.Muscle), derivcheck.DefaultOptions())
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		status := okStyle.Render("ok  ")
		if !r.OK {
			status = failStyle.Render("FAIL")
			failed++
		}
		fmt.Printf("%s l=%.4f ldot=%+.3f a=%.1f  dF/dl %12.6g %s  dF/dldot %12.6g %s\n",
			status, r.Length, r.Rate, r.Activation,
			r.AnalyticLength, dimStyle.Render(fmt.Sprintf("(%.1e)", r.ErrLength)),
			r.AnalyticRate, dimStyle.Render(fmt.Sprintf("(%.1e)", r.ErrRate)),
		)
	}

	fmt.Printf("\n%d/%d points agree\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d derivative checks failed", failed)
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	build, cfg, err := muscleFactory(cmd)
	if err != nil {
		return err
	}

	slack := cfg.Muscle.TendonSlackLength
	lo := cfg.Muscle.OptFiberLength
	lengths := make([]float64, 9)
	for i := range lengths {
		lengths[i] = slack + lo*(0.4+0.15*float64(i))
	}
	activations := []float64{0, 0.25, 0.5, 0.75, 1}

	points, err := sim.Sweep(build, lengths, activations, 0)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "length\t")
	for _, a := range activations {
		fmt.Fprintf(w, "a=%.2f\t", a)
	}
	fmt.Fprintln(w)

	for i, l := range lengths {
		fmt.Fprintf(w, "%.4f\t", l)
		for j := range activations {
			p := points[j*len(lengths)+i]
			if p.Err != nil {
				fmt.Fprint(w, "err\t")
				continue
			}
			fmt.Fprintf(w, "%.1f\t", p.Force)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	manual := control.NewManual(2)
	manual.SetControl(dynamo.Control{cfg.Activation.Level, cfg.AntagonistActivation.Level})
	if err := exp.Setup(manual); err != nil {
		return err
	}

	session, err := exp.Session()
	if err != nil {
		return err
	}

	steps := frameSteps
	if steps <= 0 {
		steps = max(1, int(math.Round(1/(30*cfg.Dt))))
	}

	m := viz.NewModel(cfg.Model, exp.System(), session, manual, steps)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func showCheckpoint(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	cp, err := st.LoadCheckpoint(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "name\t%s\n", cp.Name)
	fmt.Fprintf(w, "model\t%s\n", cp.Model)
	if cp.Preset != "" {
		fmt.Fprintf(w, "preset\t%s\n", cp.Preset)
	}
	fmt.Fprintf(w, "created\t%s\n", cp.Created.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "time\t%.6fs\n", cp.Time)
	fmt.Fprintf(w, "state\t%v\n", cp.State)
	for i, buf := range cp.Actuators {
		version, rigid := 0, false
		if buf.ZSize() >= 2 {
			version, rigid = buf.Z[0], buf.Z[1] == 1
		}
		fmt.Fprintf(w, "actuator %d\tversion %d, rigid %t, %d doubles, %d ints\n",
			i, version, rigid, buf.DSize(), buf.ZSize())
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.2fs)\n\n", base.Model, base.Dt, base.Duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-12s\n", "integrator", "final_x0", "max_residual", "iterations", "time_ms")
	fmt.Println(strings.Repeat("-", 66))

	for _, name := range args[1:] {
		cfg := base.Clone()
		cfg.Integrator = name

		exp := experiment.New(cfg, nil)
		exp.SetLogger(logger)
		if err := exp.Setup(nil); err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)

		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		finalX0 := result.States[len(result.States)-1][0]
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f  %12.2f\n", name, finalX0,
			result.Metrics["max_residual"], result.Metrics["solver_iterations"],
			float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func tune(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	names := make([]string, 0, len(tuneParams))
	ranges := make([][]float64, 0, len(tuneParams))
	for _, arg := range tuneParams {
		name, values, err := parseGrid(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		exp := experiment.New(base.Clone(), nil)
		exp.SetLogger(logger)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		return exp, exp.SetParams(params)
	}

	best, val, trials, err := g.Search(context.Background(), build, metric)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), metric)
	for _, tr := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%.4g\t", tr.Params[n])
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "%s\n", failStyle.Render("error"))
			logger.Warn("trial failed", "params", tr.Params, "err", tr.Err)
			continue
		}
		fmt.Fprintf(w, "%.6g\n", tr.Value)
	}
	w.Flush()
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at", metric, val)
	for _, n := range names {
		fmt.Printf(" %s=%.4g", n, best[n])
	}
	fmt.Println()
	return nil
}

// parseGrid reads "name=v1,v2,...".
func parseGrid(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --param %q, want name=v1,v2,...", arg)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in --param %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
