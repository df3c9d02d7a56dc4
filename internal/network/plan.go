package network

import (
	"encoding/json"
	"fmt"

	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// Plan requests use the browser game's pixel-space shape: positions are the
// top-left pixel of a cell and the board is given in cells plus a block size.

// PlanBoard is the board in cells plus the pixel size of one cell.
type PlanBoard struct {
	PosX      int `json:"posX"`
	PosY      int `json:"posY"`
	BlockSize int `json:"blockSize"`
}

// PlanSnake is the snake head, its speed, and body segments as [x, y] pixels.
type PlanSnake struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	SpeedX int      `json:"speedX"`
	SpeedY int      `json:"speedY"`
	Body   [][2]int `json:"body"`
}

// PlanFood is the food position in pixels.
type PlanFood struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PlanRequest is one snapshot to plan a move for. Missing parts stay nil and
// are reported by the pathfinder's argument validation.
type PlanRequest struct {
	Board *PlanBoard `json:"board"`
	Snake *PlanSnake `json:"snake"`
	Food  *PlanFood  `json:"food"`
}

// PlanResponse carries the move, null when the snake has no legal move.
type PlanResponse struct {
	Direction pathfind.Direction `json:"direction"`
	Error     string             `json:"error,omitempty"`
}

// Snapshot converts the pixel-space request into pathfinder inputs.
func (r PlanRequest) Snapshot() (*pathfind.Board, *pathfind.Agent, *pathfind.Target) {
	var (
		board  *pathfind.Board
		agent  *pathfind.Agent
		target *pathfind.Target
	)

	grid := pathfind.Board{}
	if r.Board != nil {
		grid = pathfind.Board{Width: r.Board.PosX, Height: r.Board.PosY, Scale: r.Board.BlockSize}
		board = &grid
	}
	if r.Snake != nil {
		body := make([]pathfind.Cell, len(r.Snake.Body))
		for i, part := range r.Snake.Body {
			body[i] = grid.CellAt(part[0], part[1])
		}
		agent = &pathfind.Agent{
			Head:     grid.CellAt(r.Snake.X, r.Snake.Y),
			Velocity: pathfind.Velocity{X: r.Snake.SpeedX, Y: r.Snake.SpeedY},
			Body:     body,
		}
	}
	if r.Food != nil {
		target = &pathfind.Target{Cell: grid.CellAt(r.Food.X, r.Food.Y)}
	}
	return board, agent, target
}

// Plan answers a single request.
func Plan(planner *pathfind.Pathfinder, req PlanRequest) PlanResponse {
	board, agent, target := req.Snapshot()
	dir, err := planner.NextMove(board, agent, target)
	if err != nil {
		return PlanResponse{Error: err.Error()}
	}
	return PlanResponse{Direction: dir}
}

// PlanJSON decodes a raw request and answers it.
func PlanJSON(planner *pathfind.Pathfinder, data []byte) PlanResponse {
	var req PlanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return PlanResponse{Error: fmt.Sprintf("malformed request: %v", err)}
	}
	return Plan(planner, req)
}
