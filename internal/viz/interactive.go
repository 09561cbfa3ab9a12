package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/systree/internal/config"
	"github.com/san-kum/systree/internal/integrators"
)

var (
	pickTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// param is one adjustable launch setting.
type param struct {
	name  string
	value float64
	step  float64
	min   float64
}

type picker struct {
	state    int
	cursor   int
	presets  []string
	selected string
	err      error

	params      []param
	paramCursor int
	integrator  int
	editing     bool
	editBuf     string

	live Model
}

func NewPicker() *picker {
	return &picker{presets: config.ListPresets()}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			next, cmd := m.live.Update(msg)
			m.live = next.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m picker) handleKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		m.selected = m.presets[m.cursor]
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
		m.params = []param{
			{name: "speed", value: 1, step: 0.5, min: 0.125},
			{name: "fps", value: 30, step: 5, min: 1},
			{name: "predict", value: 500, step: 100, min: 10},
		}
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				p := &m.params[m.paramCursor]
				p.value = max(val, p.min)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.params[m.paramCursor].value)
	case "left", "h":
		p := &m.params[m.paramCursor]
		p.value = max(p.value-p.step, p.min)
	case "right", "l":
		m.params[m.paramCursor].value += m.params[m.paramCursor].step
	case "i":
		m.integrator = (m.integrator + 1) % len(integrators.Names())
	case "s":
		return m.start()
	}
	return m, nil
}

func (m picker) value(name string) float64 {
	for _, p := range m.params {
		if p.name == name {
			return p.value
		}
	}
	return 0
}

func (m picker) start() (picker, tea.Cmd) {
	sc := config.GetPreset(m.selected)
	if sc == nil {
		m.err = fmt.Errorf("unknown preset %q", m.selected)
		return m, nil
	}
	tree, err := sc.Build()
	if err != nil {
		m.err = err
		return m, nil
	}
	if integ, ok := integrators.ByName(integrators.Names()[m.integrator]); ok {
		tree.SetIntegrator(integ)
	}

	m.live = NewModel(tree, Options{
		Name:         sc.Name,
		FPS:          int(m.value("fps")),
		Speed:        m.value("speed"),
		PredictSteps: int(m.value("predict")),
	})
	m.state = stateSim
	return m, m.live.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pickKey.Render(pairs[i]) + pickInactive.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("SYSTREE") + "\n    " + pickSub.Render("nested orbital systems") + "\n    " + pickSub.Render("──────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := ""
		if sc := config.GetPreset(name); sc != nil {
			desc = sc.Description
		}
		if len(desc) > 48 {
			desc = desc[:45] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-10s", name)), pickValue.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", pickInactive.Render(fmt.Sprintf("  %-10s", name)), Subtle.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	desc := ""
	if sc := config.GetPreset(m.selected); sc != nil {
		desc = sc.Description
	}
	b.WriteString("\n\n    " + pickTitle.Render(strings.ToUpper(m.selected)) + "\n    " + pickSub.Render(desc) + "\n    " + pickSub.Render("──────────────────────") + "\n\n")
	for i, p := range m.params {
		val := fmt.Sprintf("%8g", p.value)
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-10s", p.name)), pickValue.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", pickInactive.Render(fmt.Sprintf("  %-10s", p.name)), Subtle.Render(val)))
		}
	}
	b.WriteString(fmt.Sprintf("\n      %s %s\n", pickInactive.Render(fmt.Sprintf("%-10s", "integrator")), pickValue.Render(integrators.Names()[m.integrator])))
	if m.err != nil {
		b.WriteString("\n    " + StatusPaused.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "i", "integrator", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive() error {
	_, err := tea.NewProgram(NewPicker(), tea.WithAltScreen()).Run()
	return err
}
