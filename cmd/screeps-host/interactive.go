package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/screeps-wasm/host"
	"github.com/wippyai/screeps-wasm/layout"
	"github.com/wippyai/screeps-wasm/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

type modelState int

const (
	stateIdle modelState = iota
	stateInputTicks
)

type stepperModel struct {
	ctx      context.Context
	inst     *runtime.Instance
	rec      *runtime.Recorder
	last     *runtime.TickReport
	err      error
	filename string
	input    textinput.Model
	calls    viewport.Model
	world    string
	ran      int
	width    int
	tick     uint32
	state    modelState
	busy     bool
}

// tickedMsg carries a world snapshot taken on the stepping goroutine, so
// View never reads the world while ticks run.
type tickedMsg struct {
	err     error
	world   string
	reports []*runtime.TickReport
	tick    uint32
}

func newStepperModel(ctx context.Context, filename string, inst *runtime.Instance, rec *runtime.Recorder) *stepperModel {
	ti := textinput.New()
	ti.Placeholder = "10"
	ti.Prompt = "ticks: "
	ti.CharLimit = 6
	ti.Width = 10

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 100, 30
	}
	return &stepperModel{
		ctx:      ctx,
		inst:     inst,
		rec:      rec,
		filename: filename,
		input:    ti,
		calls:    viewport.New(width-4, max(height-16, 5)),
		width:    width,
		world:    worldLines(inst.World()),
		tick:     inst.World().Tick(),
	}
}

func (m *stepperModel) Init() tea.Cmd {
	return nil
}

// step runs n ticks. Budget overruns and traps are reported, not fatal.
func (m *stepperModel) step(n int) tea.Cmd {
	return func() tea.Msg {
		var out tickedMsg
		out.err = m.inst.Run(m.ctx, n, func(r *runtime.TickReport) error {
			out.reports = append(out.reports, r)
			if m.rec != nil {
				return m.rec.Record(r)
			}
			return nil
		})
		out.world = worldLines(m.inst.World())
		out.tick = m.inst.World().Tick()
		return out
	}
}

func (m *stepperModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.calls.Width = msg.Width - 4
		m.calls.Height = max(msg.Height-16, 5)

	case tea.KeyMsg:
		if m.state == stateInputTicks {
			switch msg.String() {
			case "enter":
				n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
				if err != nil || n <= 0 {
					n = 10
				}
				m.state = stateIdle
				m.input.Blur()
				m.input.SetValue("")
				if m.busy {
					return m, nil
				}
				m.busy = true
				return m, m.step(n)
			case "esc":
				m.state = stateIdle
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "n", " ":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.step(1)
		case "r":
			m.state = stateInputTicks
			return m, m.input.Focus()
		}

	case tickedMsg:
		m.busy = false
		m.err = msg.err
		m.world = msg.world
		m.tick = msg.tick
		m.ran += len(msg.reports)
		if len(msg.reports) > 0 {
			m.last = msg.reports[len(msg.reports)-1]
			m.calls.SetContent(callLines(m.last))
			m.calls.GotoTop()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.calls, cmd = m.calls.Update(msg)
	return m, cmd
}

func (m *stepperModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Screeps Host"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	fmt.Fprintf(&b, "  tick %d  (%d run)", m.tick, m.ran)
	if m.busy {
		b.WriteString(helpStyle.Render("  running..."))
	}
	b.WriteString("\n\n")

	b.WriteString(paneStyle.Width(max(m.width-4, 20)).Render(m.world))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	if m.last != nil {
		b.WriteString(summarize(m.last, true))
		b.WriteString("\n\n")
		b.WriteString(m.calls.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateInputTicks {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))
	} else {
		b.WriteString(helpStyle.Render("n/space step • r run n ticks • ↑/↓ scroll • q quit"))
	}
	return b.String()
}

func worldLines(w *host.World) string {
	var lines []string
	for _, o := range w.Objects() {
		line := fmt.Sprintf("%-24s %s %s", o.ID, kindStyle.Render(fmt.Sprintf("%-10s", o.Kind)), o.Room)
		switch o.Kind {
		case layout.KindSpawn:
			line += fmt.Sprintf("  energy %d/%d  %s", o.Energy, o.EnergyCapacity, o.State())
			if o.Spawning != nil {
				line += fmt.Sprintf(" %q %d/%d", o.Spawning.Name, o.Spawning.RemainingTime, o.Spawning.NeedTime)
			}
		case layout.KindExtension:
			line += fmt.Sprintf("  energy %d/%d", o.Energy, o.EnergyCapacity)
		case layout.KindContainer:
			line += fmt.Sprintf("  store %d/%d  decay %d", o.Store.Energy, o.Store.Capacity, o.TicksToDecay)
		case layout.KindController:
			line += fmt.Sprintf("  level %d  %d/%d", o.Level, o.Progress, o.ProgressTotal)
		case layout.KindRoad:
			line += fmt.Sprintf("  decay %d", o.TicksToDecay)
		}
		lines = append(lines, line)
	}
	for _, c := range w.Creeps() {
		lines = append(lines, fmt.Sprintf("%-24s %s %s  born %d", c.Name, kindStyle.Render(fmt.Sprintf("%-10s", "creep")), c.Room, c.Born))
	}
	if len(lines) == 0 {
		return helpStyle.Render("empty world")
	}
	return strings.Join(lines, "\n")
}

func callLines(r *runtime.TickReport) string {
	var b strings.Builder
	for _, c := range r.Calls {
		fmt.Fprintf(&b, "#%-4d %s %s", c.Seq, funcStyle.Render(fmt.Sprintf("%-24s", c.Func)), c.Status)
		if c.Detail != "" {
			b.WriteString("  " + helpStyle.Render(c.Detail))
		}
		b.WriteString("\n")
	}
	for _, room := range rooms(r) {
		fmt.Fprintf(&b, "%s: %d visuals\n", room, len(r.Visuals[room]))
	}
	return b.String()
}

func runInteractive(ctx context.Context, filename string, inst *runtime.Instance, rec *runtime.Recorder) error {
	p := tea.NewProgram(newStepperModel(ctx, filename, inst, rec), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
