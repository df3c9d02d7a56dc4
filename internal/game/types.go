package game

import (
	"fmt"

	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// Position is a 0-indexed board coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell converts p to the pathfinder's 1-indexed grid.
func (p Position) Cell() pathfind.Cell {
	return pathfind.Cell{X: p.X + 1, Y: p.Y + 1}
}

// Step returns the neighbouring position in direction d.
func (p Position) Step(d pathfind.Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// CommandType identifies a control command.
type CommandType int

const (
	CmdSteer     CommandType = iota // Manual direction change, disables autopilot
	CmdPause                        // Toggle pause
	CmdStep                         // Advance one tick while paused
	CmdSpeed                        // Set tick rate; 0 restores the configured rate
	CmdAutopilot                    // Toggle autopilot
	CmdRestart                      // Start a new round immediately
)

// Command is a control input processed on the next tick.
type Command struct {
	Source string
	Type   CommandType
	Dir    pathfind.Direction // Only relevant for CmdSteer
	Speed  int                // Only relevant for CmdSpeed
}

// Snake is the head, its velocity, and the trailing body.
// Body[0] is the segment directly behind the head.
type Snake struct {
	Head     Position          `json:"head"`
	Velocity pathfind.Velocity `json:"velocity"`
	Body     []Position        `json:"body"`
}

// Len returns the number of occupied cells including the head.
func (s Snake) Len() int {
	return len(s.Body) + 1
}

// Occupies reports whether p is the head or any body segment.
func (s Snake) Occupies(p Position) bool {
	if s.Head == p {
		return true
	}
	for _, b := range s.Body {
		if b == p {
			return true
		}
	}
	return false
}

// GameStatus represents the current round phase.
type GameStatus int

const (
	StatusRunning GameStatus = iota // Snake moving
	StatusPaused                    // Frozen until resumed or stepped
	StatusOver                      // Snake crashed or filled the board
)

func (s GameStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusOver:
		return "over"
	}
	return "unknown"
}

// MoveSource records who chose the last move.
type MoveSource string

const (
	SourcePath     MoveSource = "path"     // Pathfinder found a route to the food
	SourceFallback MoveSource = "fallback" // No route, greedy safe move
	SourceTrapped  MoveSource = "trapped"  // No legal move at all
	SourceManual   MoveSource = "manual"   // Player steering
)

// GameState is the authoritative state of a session, owned by the Engine.
// Concurrency protection is handled by the Engine's mutex, not by this struct.
type GameState struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Snake      Snake              `json:"snake"`
	Food       Position           `json:"food"`
	Score      int                `json:"score"`
	BestScore  int                `json:"best_score"`
	Percentage int                `json:"percentage"` // Board coverage of the score
	Round      int                `json:"round"`
	Tick       uint64             `json:"tick"`
	Status     GameStatus         `json:"status"`
	Won        bool               `json:"won,omitempty"` // Board filled
	Autopilot  bool               `json:"autopilot"`
	TickRate   int                `json:"tick_rate"`
	LastMove   pathfind.Direction `json:"last_move"`
	MoveSource MoveSource         `json:"move_source,omitempty"`
	Expanded   int                `json:"expanded"` // Cells expanded by the last search
	PathLen    int                `json:"path_len"` // Moves to the food on the last found path
}

// Config holds configurable parameters for a session.
type Config struct {
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	TickRate          int    `json:"tick_rate"` // Ticks per second
	MaxTickRate       int    `json:"max_tick_rate"`
	BlockSize         int    `json:"block_size"` // Pixel size of a cell for pixel-space clients
	Seed              uint64 `json:"seed"`       // 0 picks a time-based seed
	Autopilot         bool   `json:"autopilot"`
	OpenArea          bool   `json:"open_area"` // Fallback prefers larger free regions
	RestartOnDeath    bool   `json:"restart_on_death"`
	RestartDelayTicks int    `json:"restart_delay_ticks"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Width:             20,
		Height:            15,
		TickRate:          10,
		MaxTickRate:       60,
		BlockSize:         50,
		Autopilot:         true,
		RestartOnDeath:    true,
		RestartDelayTicks: 10,
	}
}

// Validate reports configuration values the engine cannot run with.
func (c Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("board must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	if c.TickRate < 1 {
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.MaxTickRate != 0 && c.MaxTickRate < c.TickRate {
		return fmt.Errorf("max tick rate %d below tick rate %d", c.MaxTickRate, c.TickRate)
	}
	return nil
}
