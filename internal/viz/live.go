package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/systree/internal/metrics"
	"github.com/san-kum/systree/internal/predict"
	"github.com/san-kum/systree/internal/storage"
	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width         = 80
	height        = 24
	trailLength   = 80
	historyLength = 120
)

// speeds are the selectable root steps per frame.
var speeds = []float64{0.125, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64}

type TickMsg time.Time

type Options struct {
	Name         string
	FPS          int
	Speed        float64
	Theme        string
	PredictSteps int
	Collector    *metrics.Collector
}

// Model drives a tree from the frame clock and draws it.
type Model struct {
	name      string
	tree      *systree.Tree
	initial   *systree.Tree
	collector *metrics.Collector

	fps      int
	speedIdx int
	acc      float64
	running  bool
	frames   int

	canvas      *Canvas
	view        Viewport
	initialView Viewport
	theme       Theme

	owners []string
	follow int
	last   map[string]systree.Report
	prev   map[string]systree.Report
	trails map[string][]r2.Vec

	activity []float64
	distance []float64

	predictor    *predict.Predictor
	predictSteps int
	showHelp     bool
}

func NewModel(tree *systree.Tree, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.PredictSteps <= 0 {
		opts.PredictSteps = 500
	}
	if opts.Collector != nil {
		tree.SetObserver(opts.Collector)
	}

	m := Model{
		name:         opts.Name,
		tree:         tree,
		initial:      tree.Clone(),
		collector:    opts.Collector,
		fps:          opts.FPS,
		speedIdx:     closestSpeed(opts.Speed),
		running:      true,
		canvas:       NewCanvas(width, height),
		theme:        GetTheme(opts.Theme),
		follow:       -1,
		predictSteps: opts.PredictSteps,
	}
	m.load()
	return m
}

func closestSpeed(s float64) int {
	best := 0
	for i, v := range speeds {
		if math.Abs(v-s) < math.Abs(speeds[best]-s) {
			best = i
		}
	}
	return best
}

// load seeds the display state from the current tree.
func (m *Model) load() {
	m.last = make(map[string]systree.Report)
	m.prev = make(map[string]systree.Report)
	m.trails = make(map[string][]r2.Vec)
	m.activity = m.activity[:0]
	m.distance = m.distance[:0]
	m.acc = 0

	bodies := m.tree.Bodies()
	m.owners = storage.Owners(bodies)
	for _, r := range bodies {
		m.last[r.Body.Owner] = r
		m.prev[r.Body.Owner] = r
	}
	if m.follow >= len(m.owners) {
		m.follow = -1
	}

	w, h := m.canvas.Dots()
	m.initialView = Fit(m.extent(bodies), w, h)
	m.view = m.initialView
}

func (m *Model) extent(bodies []systree.Report) float64 {
	t := float64(m.tree.Time())
	e := 0.0
	for _, r := range bodies {
		e = math.Max(e, r2.Norm(r.Body.Position))
	}
	for _, s := range m.tree.Sources() {
		e = math.Max(e, r2.Norm(s.Position(t))+s.Source.Radius)
	}
	if e == 0 {
		m.tree.Walk(func(v systree.NodeView) {
			if v.Depth == 0 {
				e = v.Radius
			}
		})
	}
	return e
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopPrediction()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.record(len(m.step()))
			}
		case "r":
			m.reset()
		case "+", "=":
			m.speedIdx = min(m.speedIdx+1, len(speeds)-1)
		case "-", "_":
			m.speedIdx = max(m.speedIdx-1, 0)
		case "tab":
			if len(m.owners) > 0 {
				m.follow = (m.follow + 1) % len(m.owners)
				m.distance = m.distance[:0]
			}
		case "esc":
			m.follow = -1
			m.view.Center = r2.Vec{}
		case "p":
			m.startPrediction()
		case "z":
			m.view = m.view.Zoom(0.8)
		case "x":
			m.view = m.view.Zoom(1.25)
		case "up", "k":
			m.pan(0, 1)
		case "down", "j":
			m.pan(0, -1)
		case "left", "h":
			m.pan(-1, 0)
		case "right", "l":
			m.pan(1, 0)
		case "c":
			m.trails = make(map[string][]r2.Vec)
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-52, 20)
		h := max(msg.Height-4, 8)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running {
			m.advance()
		}
		m.frames++
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) pan(dx, dy float64) {
	step := 10 * m.view.Scale
	m.view.Center = r2.Add(m.view.Center, r2.Vec{X: dx * step, Y: dy * step})
}

// advance runs as many root steps as the speed allows this frame. The
// fractional remainder becomes the interpolation factor.
func (m *Model) advance() {
	m.acc += speeds[m.speedIdx]
	n := 0
	for m.acc >= 1 {
		n += len(m.step())
		m.acc--
	}
	m.record(n)
}

func (m *Model) record(reports int) {
	m.activity = appendBounded(m.activity, float64(reports), historyLength)
	if o, ok := m.following(); ok {
		m.distance = appendBounded(m.distance, r2.Norm(m.last[o].Body.Position), historyLength)
	}
}

func (m *Model) step() []systree.Report {
	var reports []systree.Report
	if m.collector != nil {
		reports = m.collector.Step(m.tree)
	} else {
		reports = m.tree.Step()
	}
	for _, r := range reports {
		o := r.Body.Owner
		if p, ok := m.last[o]; ok {
			m.prev[o] = p
		} else {
			m.prev[o] = r
			m.owners = append(m.owners, o)
		}
		m.last[o] = r
		m.trails[o] = appendBounded(m.trails[o], r.Body.Position, trailLength)
	}
	return reports
}

func appendBounded[T any](s []T, v T, n int) []T {
	s = append(s, v)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

func (m *Model) reset() {
	m.stopPrediction()
	m.tree = m.initial.Clone()
	if m.collector != nil {
		m.tree.SetObserver(m.collector)
	}
	m.load()
}

func (m *Model) startPrediction() {
	o, ok := m.following()
	if !ok {
		return
	}
	m.stopPrediction()
	m.predictor = predict.Start(context.Background(), m.tree, o, m.predictSteps)
}

func (m *Model) stopPrediction() {
	if m.predictor != nil {
		m.predictor.Cancel()
		m.predictor = nil
	}
}

func (m Model) following() (string, bool) {
	if m.follow < 0 || m.follow >= len(m.owners) {
		return "", false
	}
	return m.owners[m.follow], true
}

// position interpolates between the last two reports of owner.
func (m Model) position(owner string) r2.Vec {
	cur, prev := m.last[owner], m.prev[owner]
	b := systree.Body{PrevPosition: prev.Body.Position, Position: cur.Body.Position}
	return b.Interpolate(math.Min(math.Max(m.acc, 0), 1))
}

func (m Model) Time() int64         { return m.tree.Time() }
func (m Model) Running() bool       { return m.running }
func (m Model) Speed() float64      { return speeds[m.speedIdx] }
func (m Model) Tree() *systree.Tree { return m.tree }

func (m Model) Following() string {
	o, _ := m.following()
	return o
}

func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Dots()

	view := m.view
	if o, ok := m.following(); ok {
		view.Center = m.position(o)
	}

	m.tree.Walk(func(v systree.NodeView) {
		if v.Depth == 0 {
			return
		}
		x, y := view.Project(v.Chain.Sum(float64(v.Time)), w, h)
		m.canvas.DrawCircle(x, y, view.Dots(v.Radius), true)
	})

	t := float64(m.tree.Time())
	for _, s := range m.tree.Sources() {
		x, y := view.Project(s.Position(t), w, h)
		m.canvas.FillCircle(x, y, min(view.Dots(s.Source.Radius), 6))
	}

	for _, trail := range m.trails {
		for _, p := range trail {
			m.canvas.Set(view.Project(p, w, h))
		}
	}

	if m.predictor != nil {
		for i, r := range m.predictor.Path() {
			if i%2 == 0 {
				m.canvas.Set(view.Project(r.Body.Position, w, h))
			}
		}
	}

	for _, o := range m.owners {
		x, y := view.Project(m.position(o), w, h)
		m.canvas.FillCircle(x, y, 1)
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(m.theme.Bodies).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%d", m.tree.Time()))
	row("Speed", fmt.Sprintf("%gx @ %d fps", speeds[m.speedIdx], m.fps))
	row("Bodies", fmt.Sprintf("%d", m.tree.Count()))
	row("Integrator", m.tree.Integrator().Name())
	if m.collector != nil {
		sum := m.collector.Summary()
		row("Steps", fmt.Sprintf("%.0f", sum["steps"]))
		row("Migrations", fmt.Sprintf("%.0f down / %.0f up", sum["descents"], sum["ascents"]))
	}
	s.WriteString("\n" + MetricLabel.Render("Activity") + Sparkline(m.activity, 28) + "\n")

	if o, ok := m.following(); ok {
		r := m.last[o]
		s.WriteString("\n" + Separator(36) + "\n")
		row("Following", o)
		row("Position", fmt.Sprintf("(%.1f, %.1f)", r.Body.Position.X, r.Body.Position.Y))
		row("Speed", fmt.Sprintf("%.3f", r2.Norm(r.Body.Velocity)))
		if len(m.distance) > 1 {
			chart := asciigraph.Plot(m.distance, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("distance"))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
	}

	if m.predictor != nil {
		done := float64(m.predictor.Len()) / float64(m.predictSteps)
		select {
		case <-m.predictor.Done():
			done = 1
		default:
		}
		row("Predict", ProgressBar(done, 20))
	}

	s.WriteString(KeyHint.Render("SP:Pause N:Step R:Reset Q:Quit\n+/-:Speed Tab:Follow P:Predict\nZ/X:Zoom ←↑↓→:Pan ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step while paused ║
║  R        - Reset to the start       ║
║  + / -    - Faster / slower          ║
║  Tab      - Follow next body         ║
║  Esc      - Stop following           ║
║  P        - Predict followed body    ║
║  Z / X    - Zoom in / out            ║
║  Arrows   - Pan                      ║
║  C        - Clear trails             ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view in the terminal's alternate screen.
func Run(tree *systree.Tree, opts Options) error {
	_, err := tea.NewProgram(NewModel(tree, opts), tea.WithAltScreen()).Run()
	return err
}
