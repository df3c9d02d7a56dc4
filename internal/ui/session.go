package ui

import (
	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/network"
)

// Session is what the viewer drives: a stream of states and a command sink.
// *network.Client satisfies it for remote sessions.
type Session interface {
	StateChan() <-chan game.GameState
	Send(msg network.CommandMsg) error
}

// LocalSession runs an engine in-process and feeds the viewer directly.
type LocalSession struct {
	engine  *game.Engine
	stateCh chan game.GameState
}

// NewLocalSession attaches to the engine's tick callback. The caller still
// starts the engine with Run.
func NewLocalSession(engine *game.Engine) *LocalSession {
	ls := &LocalSession{
		engine:  engine,
		stateCh: make(chan game.GameState, 1),
	}
	ls.stateCh <- engine.GetStateCopy()

	engine.OnTick(func(state game.GameState) {
		// Keep only the newest state; the viewer redraws at its own pace
		select {
		case ls.stateCh <- state:
		default:
			select {
			case <-ls.stateCh:
			default:
			}
			select {
			case ls.stateCh <- state:
			default:
			}
		}
	})
	return ls
}

// StateChan returns the state stream.
func (ls *LocalSession) StateChan() <-chan game.GameState {
	return ls.stateCh
}

// Send converts and queues a command for the next tick.
func (ls *LocalSession) Send(msg network.CommandMsg) error {
	cmd, err := msg.ToCommand("local")
	if err != nil {
		return err
	}
	ls.engine.EnqueueCommand(cmd)
	return nil
}
