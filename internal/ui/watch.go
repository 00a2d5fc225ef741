package ui

import (
	"fmt"
	"strings"
	"time"

	"punch/internal/period"
	"punch/internal/track"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// WatchKeyMap defines the key bindings for the watch view.
type WatchKeyMap struct {
	Quit key.Binding
	Stop key.Binding
}

// NewWatchKeyMap returns the default watch key bindings.
func NewWatchKeyMap() WatchKeyMap {
	return WatchKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop session"),
		),
	}
}

// refreshMsg carries a reloaded tracking state into the model.
type refreshMsg struct {
	status *track.Status
	today  int
	err    error
}

// tickMsg drives the once-per-second clock update.
type tickMsg time.Time

// Model is the bubbletea model for the live watch view.
type Model struct {
	tracker  *track.Tracker
	styles   *Styles
	keys     WatchKeyMap
	status   *track.Status
	today    int // minutes logged today, excluding the running session
	err      error
	quitting bool
}

// NewModel creates a watch model for the given tracker.
func NewModel(tracker *track.Tracker, styles *Styles) Model {
	return Model{
		tracker: tracker,
		styles:  styles,
		keys:    NewWatchKeyMap(),
	}
}

// Init starts the refresh/tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.tracker.Status()
		if err != nil {
			return refreshMsg{err: err}
		}
		summary, err := m.tracker.Summary(period.Day, m.tracker.Store().Now(), "")
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{status: status, today: summary.TotalMinutes}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Stop):
			if m.status != nil && m.status.Tracking {
				if _, err := m.tracker.Stop(false); err != nil {
					m.err = err
					return m, nil
				}
				return m, m.refreshCmd()
			}
		}
	case refreshMsg:
		m.status = msg.status
		m.today = msg.today
		m.err = msg.err
	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())
	}
	return m, nil
}

// View renders the watch display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("punch") + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
	case m.status == nil:
		b.WriteString(m.styles.Muted.Render("loading...") + "\n")
	case !m.status.Tracking:
		b.WriteString(m.styles.Idle.Render("no active session") + "\n")
	default:
		elapsed := time.Since(m.status.StartedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		b.WriteString(m.styles.Project.Render(m.status.Project) + "\n")
		if m.status.Description != "" {
			b.WriteString(m.styles.Muted.Render(m.status.Description) + "\n")
		}
		b.WriteString(m.styles.Duration.Render(formatClock(elapsed)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(
		fmt.Sprintf("today: %s", period.FormatDuration(m.today))) + "\n")
	b.WriteString(m.styles.Muted.Render("x stop · q quit") + "\n")

	return m.styles.Frame.Render(b.String())
}

// formatClock renders a live duration as h:mm:ss.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	mn := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, mn, s)
}

// Run starts the watch view and blocks until the user quits.
func Run(tracker *track.Tracker, styles *Styles) error {
	p := tea.NewProgram(NewModel(tracker, styles))
	_, err := p.Run()
	return err
}
