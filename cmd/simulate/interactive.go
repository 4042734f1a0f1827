package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostexec/host"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	snapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelect modelState = iota
	stateStepping
)

type interactiveModel struct {
	scenarios []scenario
	selected  int
	state     modelState

	sim     *host.Simulator
	steps   []step
	stepIdx int
	stepErr error

	events viewport.Model
	width  int
	height int
	sized  bool
}

func newInteractiveModel(scenarios []scenario) *interactiveModel {
	return &interactiveModel{
		scenarios: scenarios,
		state:     stateSelect,
		events:    viewport.New(80, 10),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sized = true
		m.resizeEvents()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.scenarios)-1 {
				m.selected++
			}

		case "enter", "n":
			switch m.state {
			case stateSelect:
				m.startScenario()
			case stateStepping:
				m.runStep()
			}

		case "r":
			if m.state == stateStepping {
				m.startScenario()
			}

		case "esc":
			if m.state == stateStepping {
				m.state = stateSelect
				m.sim = nil
				m.steps = nil
			}
		}
	}

	if m.state == stateStepping {
		var cmd tea.Cmd
		m.events, cmd = m.events.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) startScenario() {
	sc := m.scenarios[m.selected]
	m.sim, m.steps = sc.build()
	m.stepIdx = 0
	m.stepErr = nil
	m.state = stateStepping
	m.resizeEvents()
	m.refreshEvents()
}

func (m *interactiveModel) runStep() {
	if m.stepIdx >= len(m.steps) {
		return
	}
	m.stepErr = m.steps[m.stepIdx].run()
	m.stepIdx++
	m.refreshEvents()
}

func (m *interactiveModel) refreshEvents() {
	var b strings.Builder
	for _, e := range m.sim.Events() {
		b.WriteString(eventStyle.Render(e))
		b.WriteString("\n")
	}
	m.events.SetContent(b.String())
	m.events.GotoBottom()
}

func (m *interactiveModel) resizeEvents() {
	if !m.sized || m.sim == nil {
		return
	}
	// Leave room for the title, step list, snapshot and help lines.
	h := m.height - len(m.steps) - 9
	if h < 3 {
		h = 3
	}
	m.events.Width = m.width - 2
	m.events.Height = h
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Host Simulator"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		b.WriteString("Select a scenario:\n\n")
		for i, sc := range m.scenarios {
			line := fmt.Sprintf("%-10s %s", sc.name, sc.description)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter start • q quit"))

	case stateStepping:
		sc := m.scenarios[m.selected]
		b.WriteString(stepStyle.Render(sc.name))
		b.WriteString("  " + sc.description + "\n\n")

		for i, st := range m.steps {
			marker := "  "
			switch {
			case i < m.stepIdx:
				marker = "✓ "
			case i == m.stepIdx:
				marker = "> "
			}
			b.WriteString(marker + st.label + "\n")
		}
		b.WriteString("\n")

		b.WriteString(m.events.View())
		b.WriteString("\n")

		snap := m.sim.Executor().Snapshot()
		b.WriteString(snapStyle.Render(formatSnapshot(snap) +
			fmt.Sprintf(" outstanding=%d", m.sim.PendingCalls())))
		b.WriteString("\n")

		if m.stepErr != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("trap: %v", m.stepErr)))
			b.WriteString("\n")
		}

		if m.stepIdx >= len(m.steps) {
			b.WriteString(helpStyle.Render("done • r restart • esc back • q quit"))
		} else {
			b.WriteString(helpStyle.Render("enter/n step • r restart • esc back • q quit"))
		}
	}

	return b.String()
}

func runInteractive(scenarios []scenario) error {
	p := tea.NewProgram(newInteractiveModel(scenarios), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
