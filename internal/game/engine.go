package game

import (
	"log"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// Engine is the authoritative game loop. It owns the state, asks the
// pathfinder for a move every tick while autopilot is on, and applies
// control commands queued by viewers.
type Engine struct {
	State      *GameState
	Config     Config
	commands   chan Command
	done       chan struct{}
	mu         sync.Mutex
	onTick     func(GameState) // Callback after each tick with a COPY of state
	rng        *rand.Rand
	pathfinder *pathfind.Pathfinder
	overAt     uint64 // Tick at which the current round ended
	stepping   bool   // One paused tick requested
}

// NewEngine creates a new engine and starts the first round.
func NewEngine(config Config) *Engine {
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var options []pathfind.Option
	if config.OpenArea {
		options = append(options, pathfind.WithScorer(pathfind.OpenArea{}))
	}

	e := &Engine{
		Config:     config,
		commands:   make(chan Command, 256),
		done:       make(chan struct{}),
		rng:        rand.New(rand.NewSource(seed)),
		pathfinder: pathfind.New(options...),
		State: &GameState{
			Width:     config.Width,
			Height:    config.Height,
			Autopilot: config.Autopilot,
			TickRate:  config.TickRate,
		},
	}
	e.newRound()
	return e
}

// OnTick sets a callback that is invoked after every tick with a copy of the state.
// Used by the network server and the local viewer.
func (e *Engine) OnTick(fn func(GameState)) {
	e.onTick = fn
}

// Run starts the game loop at the current tick rate, following rate changes.
// This blocks until Stop() is called.
func (e *Engine) Run() {
	rate := e.tickRate()
	ticker := time.NewTicker(tickInterval(rate))
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.tick()
			if r := e.tickRate(); r != rate {
				rate = r
				ticker.Reset(tickInterval(rate))
			}
		}
	}
}

func tickInterval(rate int) time.Duration {
	if rate < 1 {
		rate = 1
	}
	return time.Second / time.Duration(rate)
}

func (e *Engine) tickRate() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.State.TickRate
}

// Stop halts the game loop. Safe to call more than once.
func (e *Engine) Stop() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// EnqueueCommand queues a control command for the next tick.
func (e *Engine) EnqueueCommand(c Command) {
	select {
	case e.commands <- c:
	default:
		// Drop command if buffer is full (prevents blocking)
	}
}

// tick processes one game tick: drain commands, step the simulation, publish.
// The state is copied under the lock and the callback runs after it is released.
func (e *Engine) tick() {
	e.mu.Lock()

	e.drainCommands()
	e.step()

	stateCopy := e.copyStateLocked()
	e.mu.Unlock()

	if e.onTick != nil {
		e.onTick(stateCopy)
	}
}

// step advances the simulation by one tick according to the round status.
func (e *Engine) step() {
	st := e.State

	switch st.Status {
	case StatusOver:
		st.Tick++
		if e.Config.RestartOnDeath && st.Tick-e.overAt >= uint64(e.Config.RestartDelayTicks) {
			e.newRound()
		}
		return
	case StatusPaused:
		if !e.stepping {
			return
		}
		e.stepping = false
	}

	st.Tick++
	if st.Autopilot {
		e.autopilot()
	} else {
		st.MoveSource = SourceManual
		st.Expanded = 0
		st.PathLen = 0
	}
	e.advance()
	st.LastMove = st.Snake.Velocity.Direction()
}

// drainCommands processes all queued commands.
func (e *Engine) drainCommands() {
	for {
		select {
		case c := <-e.commands:
			e.apply(c)
		default:
			return
		}
	}
}

func (e *Engine) apply(c Command) {
	st := e.State
	switch c.Type {
	case CmdSteer:
		if e.steer(c.Dir) {
			st.Autopilot = false
			st.MoveSource = SourceManual
		}
	case CmdPause:
		switch st.Status {
		case StatusRunning:
			st.Status = StatusPaused
		case StatusPaused:
			st.Status = StatusRunning
		}
	case CmdStep:
		if st.Status == StatusPaused {
			e.stepping = true
		}
	case CmdSpeed:
		st.TickRate = e.clampRate(c.Speed)
	case CmdAutopilot:
		st.Autopilot = !st.Autopilot
	case CmdRestart:
		log.Printf("[ENGINE] Restart requested by %s", c.Source)
		e.newRound()
	}
}

// clampRate maps a requested rate onto [1, MaxTickRate]; 0 restores the default.
func (e *Engine) clampRate(rate int) int {
	if rate <= 0 {
		return e.Config.TickRate
	}
	if e.Config.MaxTickRate > 0 && rate > e.Config.MaxTickRate {
		return e.Config.MaxTickRate
	}
	return rate
}

// newRound respawns the snake and the food, keeping cross-round totals.
func (e *Engine) newRound() {
	st := e.State
	st.Round++
	st.Snake = NewSnake(e.Config, e.rng)
	st.Score = 0
	st.Percentage = 0
	st.Status = StatusRunning
	st.Won = false
	st.LastMove = pathfind.None
	st.MoveSource = ""
	st.Expanded = 0
	st.PathLen = 0
	e.stepping = false

	food, ok := PlaceFood(st.Width, st.Height, st.Snake, e.rng)
	if !ok {
		st.Won = true
		e.endRound("no room for food", st.Snake.Head)
		return
	}
	st.Food = food
}

// GetStateCopy returns a deep copy of the game state safe for serialization.
func (e *Engine) GetStateCopy() GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyStateLocked()
}

// copyStateLocked creates a deep copy of the game state.
// MUST be called while e.mu is held.
func (e *Engine) copyStateLocked() GameState {
	stateCopy := *e.State

	bodyCopy := make([]Position, len(e.State.Snake.Body))
	copy(bodyCopy, e.State.Snake.Body)
	stateCopy.Snake.Body = bodyCopy

	return stateCopy
}
