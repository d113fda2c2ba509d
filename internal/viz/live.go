package viz

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/musclesim/internal/control"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/sim"
)

const (
	canvasWidth     = 36
	canvasHeight    = 20
	historyCapacity = 300
	frameRate       = 30
	nudge           = 0.05
)

type TickMsg time.Time

// Model is the Bubble Tea model of the live view. Activation comes from a
// ManualController the keys nudge.
type Model struct {
	name    string
	sys     dynamo.System
	session *sim.Session
	manual  *control.ManualController

	stepsPerFrame int
	running       bool
	err           error
	frame         sim.Frame

	forceKeys []string
	fiberKeys []string
	forces    [][]float64
	fibers    [][]float64

	channel       int
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	canvas   *Canvas
	theme    int
	style    styles
	showHelp bool
}

// NewModel builds a live view. stepsPerFrame simulation steps are taken per
// redraw; with frameRate redraws per second a value of 1/(frameRate*dt) runs
// in real time.
func NewModel(name string, sys dynamo.System, session *sim.Session, manual *control.ManualController, stepsPerFrame int) Model {
	params := make(map[string]float64)
	if c, ok := sys.(dynamo.Configurable); ok {
		params = c.GetParams()
	}
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		initialParams[k] = v
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return Model{
		name:          name,
		sys:           sys,
		session:       session,
		manual:        manual,
		stepsPerFrame: max(stepsPerFrame, 1),
		running:       true,
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		style:         newStyles(Themes[0]),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "up", "k":
			m.manual.Nudge(m.channel, nudge)
		case "down", "j":
			m.manual.Nudge(m.channel, -nudge)
		case "left", "h":
			m.cycleChannel(-1)
		case "right", "l":
			m.cycleChannel(1)
		case "tab":
			m.cycleParam()
		case "+", "=":
			m.adjustParam(1.05)
		case "-", "_":
			m.adjustParam(0.95)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.style = newStyles(Themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) cycleChannel(dir int) {
	n := m.sys.ControlDim()
	if n == 0 {
		return
	}
	m.channel = (m.channel + dir + n) % n
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if val == 0 {
		val = 1e-3 * factor
	}
	c, ok := m.sys.(dynamo.Configurable)
	if !ok {
		return
	}
	if err := c.SetParam(key, val); err != nil {
		return
	}
	m.params[key] = val
}

// advance runs one frame worth of steps and records the last one.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		frame, err := m.session.Step()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.frame = frame
	}
	if m.forceKeys == nil {
		m.forceKeys = seriesKeys(m.frame.Outputs, "force")
		m.fiberKeys = seriesKeys(m.frame.Outputs, "fiber_length")
		m.forces = make([][]float64, len(m.forceKeys))
		m.fibers = make([][]float64, len(m.fiberKeys))
	}
	for i, k := range m.forceKeys {
		m.forces[i] = push(m.forces[i], m.frame.Outputs[k])
	}
	for i, k := range m.fiberKeys {
		m.fibers[i] = push(m.fibers[i], m.frame.Outputs[k])
	}
}

func push(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// seriesKeys lists the outputs named suffix or ending in "_"+suffix.
func seriesKeys(out dynamo.Outputs, suffix string) []string {
	var keys []string
	for k := range out {
		if k == suffix || strings.HasSuffix(k, "_"+suffix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (m Model) View() string {
	m.draw()
	canvasView := m.style.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.style.header.Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = m.style.warn.Render("FAILED: " + m.err.Error())
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	theme := Themes[m.theme]
	if plot := m.plot(m.forces, "force [N]", theme); plot != "" {
		s.WriteString(plot + "\n\n")
	}
	if plot := m.plot(m.fibers, "fiber length [m]", theme); plot != "" {
		s.WriteString(plot + "\n\n")
	}

	out := m.frame.Outputs
	s.WriteString(m.row("Time", fmt.Sprintf("%.3fs", m.frame.Time)))
	for _, k := range m.forceKeys {
		s.WriteString(m.row(k, fmt.Sprintf("%.1f N", out[k])))
	}
	for _, k := range seriesKeys(out, "residual") {
		s.WriteString(m.row(k, fmt.Sprintf("%.2e", out[k])))
	}
	for _, k := range seriesKeys(out, "iterations") {
		s.WriteString(m.row(k, fmt.Sprintf("%.0f", out[k])))
	}

	s.WriteString("\nACTIVATION\n")
	u := m.manual.Compute(nil, m.frame.Time)
	for i, a := range u[:min(len(u), m.sys.ControlDim())] {
		line := fmt.Sprintf("u%d %s %.2f", i, Bar(a, 16), a)
		if i == m.channel {
			s.WriteString(m.style.selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.style.value.Render(line) + "\n")
		}
	}

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(m.style.label.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-26s %.4g", k, m.params[k])
		if i == m.selected {
			s.WriteString(m.style.selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.style.label.UnsetWidth().Render(line) + "\n")
		}
	}

	s.WriteString(m.style.help.Render("SP:Pause ↑↓:Activation ←→:Channel\nTab:Param +-:Tune T:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.style.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space       pause or resume
  Up/K Down/J raise or lower the selected activation by 0.05
  Left/Right  select the activation channel
  Tab         select the next parameter
  + / -       scale the selected parameter by 5%
  T           next color theme
  Q           quit
`

func (m Model) row(label, value string) string {
	return m.style.label.Render(label) + m.style.value.Render(value) + "\n"
}

func (m Model) plot(series [][]float64, caption string, theme Theme) string {
	var data [][]float64
	for _, s := range series {
		if len(s) > 1 {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		return ""
	}
	colors := theme.Plot
	if len(colors) > len(data) {
		colors = colors[:len(data)]
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(5),
		asciigraph.Width(36),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

// draw renders the actuators for the current frame. The hanging model is
// drawn vertically from a ceiling anchor, the antagonist pair horizontally
// between two walls.
func (m *Model) draw() {
	m.canvas.Clear()
	out := m.frame.Outputs
	if out == nil {
		return
	}
	cw, ch := m.canvas.Dots()
	u := m.manual.Compute(nil, m.frame.Time)
	act := func(i int) float64 {
		if i < len(u) {
			return u[i]
		}
		return 0
	}

	if _, ok := out["agonist_force"]; ok {
		gap := m.params["gap"]
		if gap <= 0 || len(m.frame.State) == 0 {
			return
		}
		y := ch / 2
		left, right := 2, cw-3
		scale := float64(right-left) / gap
		x := left + int(math.Round(m.frame.State[0]*scale))
		m.canvas.DrawLine(left, y-8, left, y+8)
		m.canvas.DrawLine(right, y-8, right, y+8)
		m.drawActuator(left, y, x, y, scale, out, "agonist_", act(0))
		m.drawActuator(right, y, x, y, scale, out, "antagonist_", act(1))
		m.canvas.DrawBox(x, y, 6, 8)
		return
	}

	if len(m.frame.State) == 0 {
		return
	}
	x := cw / 2
	top := 2
	scale := float64(ch-12) / math.Max(0.5, m.frame.State[0]*1.2)
	y := top + int(math.Round(m.frame.State[0]*scale))
	m.canvas.DrawLine(x-10, top, x+10, top)
	m.drawActuator(x, top, x, y, scale, out, "", act(0))
	m.canvas.DrawBox(x, y+4, 10, 8)
}

// drawActuator draws the tendon as a straight segment from the anchor and
// the fiber as a zigzag to the end point.
func (m *Model) drawActuator(x0, y0, x1, y1 int, scale float64, out dynamo.Outputs, prefix string, a float64) {
	dx, dy := float64(x1-x0), float64(y1-y0)
	length := math.Hypot(dx, dy)
	if length < 1 {
		return
	}
	tendon := math.Min(out[prefix+"tendon_length"]*scale, length)
	tx := x0 + int(math.Round(dx/length*tendon))
	ty := y0 + int(math.Round(dy/length*tendon))
	m.canvas.DrawLine(x0, y0, tx, ty)
	m.canvas.DrawZigzag(tx, ty, x1, y1, 5, 1+3*a)
}
