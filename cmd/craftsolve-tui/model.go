// Command craftsolve-tui runs a solve locally and renders a live view
// of elapsed-time/node-count/best-quality statistics while it runs: a
// bubbletea model driven by messages a background solve goroutine
// sends into the program.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/craftsolver/solver"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// progressMsg is sent on every solver.Progress callback invocation.
type progressMsg solver.Progress

// solutionMsg is sent whenever the solver reports an improved solution.
type solutionMsg solver.Solution

// doneMsg is sent once when the solve finishes, successfully or not.
type doneMsg struct {
	solution solver.Solution
	err      error
}

// model is the bubbletea model driving the live solve view. The best
// rotation found so far scrolls inside a viewport so long macros stay
// readable while the solve keeps running.
type model struct {
	started  time.Time
	progress solver.Progress
	rotation viewport.Model
	best     solver.Solution
	hasBest  bool
	finished bool
	err      error
}

func newModel() model {
	vp := viewport.New(60, 10)
	vp.SetContent("")
	return model{started: time.Now(), rotation: vp}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.rotation.Width = msg.Width - 4
		m.rotation.Height = msg.Height - 8
		return m, nil
	case progressMsg:
		m.progress = solver.Progress(msg)
		return m, nil
	case solutionMsg:
		m.best = solver.Solution(msg)
		m.hasBest = true
		m.rotation.SetContent(renderRotation(m.best))
		return m, nil
	case doneMsg:
		m.finished = true
		m.err = msg.err
		if msg.err == nil {
			m.best = msg.solution
			m.hasBest = true
			m.rotation.SetContent(renderRotation(m.best))
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.rotation.ScrollUp(1)
		case "down", "j":
			m.rotation.ScrollDown(1)
		}
	}
	return m, nil
}

func renderRotation(s solver.Solution) string {
	var b strings.Builder
	step := 1
	for _, combo := range s.Macro {
		for _, action := range combo.Actions() {
			fmt.Fprintf(&b, "%2d. %s\n", step, action)
			step++
		}
	}
	return b.String()
}

func (m model) View() string {
	out := headerStyle.Render(" craftsolve ") + "\n\n"
	out += labelStyle.Render("elapsed: ") + time.Since(m.started).Round(time.Millisecond).String() + "\n"
	out += labelStyle.Render("nodes expanded: ") + fmt.Sprintf("%d", m.progress.NodesExpanded) + "\n"
	out += labelStyle.Render("best quality: ") + fmt.Sprintf("%d", m.progress.BestQuality) + "\n\n"

	if m.hasBest {
		out += labelStyle.Render("best rotation:") + "\n"
		out += m.rotation.View() + "\n"
	}

	switch {
	case m.finished && m.err != nil:
		out += errorStyle.Render(fmt.Sprintf("solve failed: %v", m.err)) + "\n"
	case m.finished:
		out += successStyle.Render(fmt.Sprintf("solved in %d steps, quality %d", len(m.best.Actions()), m.best.Final.Quality)) + "\n"
	default:
		out += infoStyle.Render("solving... (press q to quit)") + "\n"
	}
	return out
}
