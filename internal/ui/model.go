package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/network"
	"github.com/amalg/go-snakepilot/internal/pathfind"
)

const (
	// boostRate is the tick rate of the speed boost key.
	boostRate = 25
	// turboRate is clamped to the session's maximum tick rate.
	turboRate = 1 << 16
)

// stateUpdateMsg carries a new game state from the session.
type stateUpdateMsg game.GameState

// noticeMsg carries a server-side rejection to show in the HUD.
type noticeMsg string

// errMsg carries a fatal error.
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// Model is the Bubbletea model for the session viewer.
type Model struct {
	session  Session
	state    *game.GameState
	notice   string
	err      error
	quitting bool
}

// NewModel creates a viewer for the given session.
func NewModel(session Session) Model {
	return Model{session: session}
}

// Init starts listening for state updates and, for remote sessions, rejections.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForState(m.session)}
	if cmd := waitForNotice(m.session); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles key presses and session messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateUpdateMsg:
		state := game.GameState(msg)
		m.state = &state
		return m, waitForState(m.session)

	case noticeMsg:
		m.notice = string(msg)
		return m, waitForNotice(m.session)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the board with the HUD beside it.
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	if m.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Render("Error: "+m.err.Error()) + "\n"
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		RenderBoard(m.state),
		"  ",
		RenderHUD(m.state, m.notice),
	) + "\n"
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd network.CommandMsg

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "w":
		cmd = network.CommandMsg{Command: network.CommandSteer, Direction: pathfind.Up}
	case "down", "s":
		cmd = network.CommandMsg{Command: network.CommandSteer, Direction: pathfind.Down}
	case "left", "a":
		cmd = network.CommandMsg{Command: network.CommandSteer, Direction: pathfind.Left}
	case "right", "d":
		cmd = network.CommandMsg{Command: network.CommandSteer, Direction: pathfind.Right}
	case "k":
		cmd = network.CommandMsg{Command: network.CommandPause}
	case "j":
		cmd = network.CommandMsg{Command: network.CommandStep}
	case "h":
		cmd = network.CommandMsg{Command: network.CommandSpeed, Speed: m.toggleRate(boostRate)}
	case "g":
		cmd = network.CommandMsg{Command: network.CommandSpeed, Speed: m.toggleRate(turboRate)}
	case " ":
		cmd = network.CommandMsg{Command: network.CommandAutopilot}
	case "r":
		cmd = network.CommandMsg{Command: network.CommandRestart}
	default:
		return m, nil
	}

	if err := m.session.Send(cmd); err != nil {
		m.notice = err.Error()
	} else {
		m.notice = ""
	}
	return m, nil
}

// toggleRate requests rate, or the default rate (0) if the session already
// runs faster than the configured speed.
func (m Model) toggleRate(rate int) int {
	if m.state == nil {
		return rate
	}
	if rate == boostRate && m.state.TickRate == boostRate {
		return 0
	}
	if rate == turboRate && m.state.TickRate > boostRate {
		return 0
	}
	return rate
}

func waitForState(session Session) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-session.StateChan()
		if !ok {
			return errMsg{err: fmt.Errorf("session closed")}
		}
		return stateUpdateMsg(state)
	}
}

// waitForNotice returns nil for sessions that cannot report rejections.
func waitForNotice(session Session) tea.Cmd {
	es, ok := session.(interface{ Errors() <-chan string })
	if !ok {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-es.Errors()
		if !ok {
			return nil
		}
		return noticeMsg(msg)
	}
}
