package game

import (
	"log"

	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// Snapshot converts a game state into the pathfinder's read-only inputs.
func Snapshot(state GameState, blockSize int) (pathfind.Board, pathfind.Agent, pathfind.Target) {
	body := make([]pathfind.Cell, len(state.Snake.Body))
	for i, b := range state.Snake.Body {
		body[i] = b.Cell()
	}

	board := pathfind.Board{Width: state.Width, Height: state.Height, Scale: blockSize}
	agent := pathfind.Agent{
		Head:     state.Snake.Head.Cell(),
		Velocity: state.Snake.Velocity,
		Body:     body,
	}
	target := pathfind.Target{Cell: state.Food.Cell()}
	return board, agent, target
}

// autopilot asks the pathfinder for this tick's move and steers toward it.
// A trapped snake keeps its velocity and crashes on advance.
func (e *Engine) autopilot() {
	board, agent, target := Snapshot(*e.State, e.Config.BlockSize)
	decision, err := e.pathfinder.Decide(&board, &agent, &target)
	if err != nil {
		log.Printf("[ENGINE] Autopilot error: %v", err)
		return
	}

	e.State.Expanded = decision.Expanded
	e.State.PathLen = decision.PathLen
	switch {
	case decision.Direction == pathfind.None:
		e.State.MoveSource = SourceTrapped
	case decision.Found:
		e.State.MoveSource = SourcePath
	default:
		e.State.MoveSource = SourceFallback
	}

	e.steer(decision.Direction)
}
