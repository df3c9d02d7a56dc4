package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/network"
	"github.com/amalg/go-snakepilot/internal/pathfind"
)

type fakeSession struct {
	states chan game.GameState
	sent   []network.CommandMsg
	err    error
}

func newFakeSession() *fakeSession {
	return &fakeSession{states: make(chan game.GameState, 1)}
}

func (f *fakeSession) StateChan() <-chan game.GameState { return f.states }

func (f *fakeSession) Send(msg network.CommandMsg) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func sampleState() game.GameState {
	return game.GameState{
		Width:  5,
		Height: 4,
		Snake: game.Snake{
			Head:     game.Position{X: 2, Y: 1},
			Velocity: pathfind.VelocityOf(pathfind.Right),
			Body:     []game.Position{{X: 1, Y: 1}, {X: 0, Y: 1}},
		},
		Food:       game.Position{X: 4, Y: 3},
		Score:      2,
		BestScore:  5,
		Percentage: 10,
		Round:      3,
		Autopilot:  true,
		TickRate:   10,
		LastMove:   pathfind.Right,
		MoveSource: game.SourcePath,
		Expanded:   7,
		PathLen:    4,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderBoard(t *testing.T) {
	assert.Equal(t, "Waiting for game state...", RenderBoard(nil))

	state := sampleState()
	out := RenderBoard(&state)
	assert.Contains(t, out, "▶▶")
	assert.Contains(t, out, "●●")
	assert.Contains(t, out, "██")
}

func TestRenderHUD(t *testing.T) {
	assert.Empty(t, RenderHUD(nil, ""))

	state := sampleState()
	out := RenderHUD(&state, "unknown command")
	assert.Contains(t, out, "Round 3")
	assert.Contains(t, out, "Best:")
	assert.Contains(t, out, "via path")
	assert.Regexp(t, `Path:[^\n]* 4\b`, out)
	assert.Contains(t, out, "unknown command")

	state.Status = game.StatusPaused
	assert.Contains(t, RenderHUD(&state, ""), "PAUSED")

	state.Status = game.StatusOver
	assert.Contains(t, RenderHUD(&state, ""), "CRASHED")
}

func TestModelKeys(t *testing.T) {
	session := newFakeSession()
	var model tea.Model = NewModel(session)

	keys := []tea.KeyMsg{
		{Type: tea.KeyUp},
		runes("a"),
		runes("k"),
		runes("j"),
		runes(" "),
		runes("r"),
		runes("x"),
	}
	for _, k := range keys {
		model, _ = model.Update(k)
	}

	require.Len(t, session.sent, 6)
	assert.Equal(t, network.CommandMsg{Command: network.CommandSteer, Direction: pathfind.Up}, session.sent[0])
	assert.Equal(t, network.CommandMsg{Command: network.CommandSteer, Direction: pathfind.Left}, session.sent[1])
	assert.Equal(t, network.CommandPause, session.sent[2].Command)
	assert.Equal(t, network.CommandStep, session.sent[3].Command)
	assert.Equal(t, network.CommandAutopilot, session.sent[4].Command)
	assert.Equal(t, network.CommandRestart, session.sent[5].Command)
}

func TestModelSpeedToggle(t *testing.T) {
	session := newFakeSession()
	var model tea.Model = NewModel(session)

	state := sampleState()
	model, _ = model.Update(stateUpdateMsg(state))
	model, _ = model.Update(runes("h"))
	assert.Equal(t, boostRate, session.sent[0].Speed)

	state.TickRate = boostRate
	model, _ = model.Update(stateUpdateMsg(state))
	model, _ = model.Update(runes("h"))
	assert.Equal(t, 0, session.sent[1].Speed)

	model, _ = model.Update(runes("g"))
	assert.Equal(t, turboRate, session.sent[2].Speed)

	state.TickRate = 60
	model, _ = model.Update(stateUpdateMsg(state))
	model, _ = model.Update(runes("g"))
	assert.Equal(t, 0, session.sent[3].Speed)
}

func TestModelShowsSendError(t *testing.T) {
	session := newFakeSession()
	session.err = errors.New("connection reset")
	var model tea.Model = NewModel(session)

	model, _ = model.Update(stateUpdateMsg(sampleState()))
	model, _ = model.Update(runes("k"))
	assert.Contains(t, model.View(), "connection reset")
}

func TestModelQuit(t *testing.T) {
	var model tea.Model = NewModel(newFakeSession())
	model, cmd := model.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, "Bye.\n", model.View())
}

func TestLocalSession(t *testing.T) {
	config := game.DefaultConfig()
	config.Seed = 11
	engine := game.NewEngine(config)
	ls := NewLocalSession(engine)

	initial := <-ls.StateChan()
	assert.Equal(t, config.Width, initial.Width)

	require.NoError(t, ls.Send(network.CommandMsg{Command: network.CommandPause}))
	assert.Error(t, ls.Send(network.CommandMsg{Command: network.CommandSteer}))
}
