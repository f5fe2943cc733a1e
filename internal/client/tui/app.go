// Package tui is the terminal reviewer panel built on bubbletea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fundingintake/internal/client/reviewer"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headingStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sensitiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	headerHeight = 2
	footerHeight = 2
)

// snapshotMsg tells the model the reviewer view changed.
type snapshotMsg struct{}

// Model is the reviewer panel. Keys: r refresh, b back to form, q quit.
type Model struct {
	view    *reviewer.View
	updates <-chan reviewer.Snapshot

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	snap     reviewer.Snapshot

	backToForm bool
}

// New returns a model over view. updates receives every view change; wire
// it with reviewer.WithOnChange and Notifier.
func New(view *reviewer.View, updates <-chan reviewer.Snapshot) Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{view: view, updates: updates, spinner: s, snap: view.Snapshot()}
}

// Notifier returns a non-blocking callback for reviewer.WithOnChange and the
// channel it feeds.
func Notifier() (func(reviewer.Snapshot), <-chan reviewer.Snapshot) {
	ch := make(chan reviewer.Snapshot, 16)
	return func(s reviewer.Snapshot) {
		select {
		case ch <- s:
		default:
		}
	}, ch
}

// BackToForm reports whether the reviewer chose to leave for the form.
func (m Model) BackToForm() bool { return m.backToForm }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh(), m.waitForSnapshot())
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		m.view.Refresh()
		return nil
	}
}

func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.updates; !ok {
			return nil
		}
		return snapshotMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.view.Close()
			return m, tea.Quit
		case "b", "esc":
			m.backToForm = true
			m.view.Close()
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}
	case tea.WindowSizeMsg:
		height := msg.Height - headerHeight - footerHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.content())
	case snapshotMsg:
		m.snap = m.view.Snapshot()
		if m.ready {
			m.viewport.SetContent(m.content())
		}
		cmds = append(cmds, m.waitForSnapshot())
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.ready && m.snap.Status == reviewer.StatusLoading {
			m.viewport.SetContent(m.content())
		}
		cmds = append(cmds, cmd)
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Reviewer Panel - Submissions"))
	b.WriteString("\n\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.content())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) help() string {
	if m.snap.Status == reviewer.StatusError {
		return "r: try again • b: back to form • q: quit"
	}
	return "r: refresh • b: back to form • ↑/↓: scroll • q: quit"
}

func (m Model) content() string {
	switch m.snap.Status {
	case reviewer.StatusIdle, reviewer.StatusLoading:
		return m.spinner.View() + " Loading submissions..."
	case reviewer.StatusError:
		return errorStyle.Render("Error: " + m.snap.Message)
	case reviewer.StatusEmpty:
		return "No submissions yet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d submission(s)\n", len(m.snap.Records))
	for _, rec := range m.snap.Records {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render(reviewer.Heading(rec)))
		b.WriteString("\n")
		for _, s := range reviewer.Sections(rec) {
			style := sectionStyle
			if s.Sensitive {
				style = sensitiveStyle
			}
			b.WriteString("  " + style.Render(s.Title) + "\n")
			for _, r := range s.Rows {
				fmt.Fprintf(&b, "    %s: %s\n", r.Label, r.Value)
			}
		}
	}
	return b.String()
}
