package pathfind

import (
	"errors"
	"fmt"
	"log"

	"github.com/zyedidia/generic/mapset"
)

// Argument validation errors. They are the only errors the pathfinder returns;
// an unreachable target or a trapped snake are ordinary results.
var (
	ErrInvalidBoard  = errors.New("invalid board")
	ErrInvalidAgent  = errors.New("invalid agent")
	ErrInvalidTarget = errors.New("invalid target")
)

// Options configures a Pathfinder.
type Options struct {
	// Scorer, when set, breaks fallback distance ties toward higher scores.
	Scorer Scorer
	// Logger receives one trace line per decision. Nil disables tracing.
	Logger *log.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithScorer sets the secondary fallback scoring term.
func WithScorer(scorer Scorer) Option {
	return func(options *Options) { options.Scorer = scorer }
}

// WithLogger traces every decision to logger.
func WithLogger(logger *log.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// Pathfinder computes the next move for a snake head. It holds only its
// options, so one value can serve any number of independent callers.
type Pathfinder struct {
	options Options
}

// New creates a Pathfinder with the given options applied.
func New(options ...Option) *Pathfinder {
	var opts Options
	for _, option := range options {
		option(&opts)
	}
	return &Pathfinder{options: opts}
}

// Decision is the outcome of one call.
type Decision struct {
	Direction Direction `json:"direction"`
	// Found is true when the search reached the target; false means the
	// direction came from the fallback (or is None).
	Found    bool `json:"found"`
	PathLen  int  `json:"path_len"`
	Expanded int  `json:"expanded"`
}

// ComputeNextMove returns the next move with default options.
func ComputeNextMove(board *Board, agent *Agent, target *Target) (Direction, error) {
	return New().NextMove(board, agent, target)
}

// NextMove returns the first step of a shortest path from the head to the
// target, a safe local move when no path exists, or None when every
// neighbour is illegal.
func (p *Pathfinder) NextMove(board *Board, agent *Agent, target *Target) (Direction, error) {
	decision, err := p.Decide(board, agent, target)
	if err != nil {
		return None, err
	}
	return decision.Direction, nil
}

// Decide is NextMove with search statistics.
func (p *Pathfinder) Decide(board *Board, agent *Agent, target *Target) (Decision, error) {
	if err := validate(board, agent, target); err != nil {
		return Decision{}, err
	}

	blocked := blockedFunc(*board, agent.Body)
	result := search(agent.Head, target.Cell, *board, blocked, agent.Velocity.Direction().Opposite())

	decision := Decision{
		Direction: result.first,
		Found:     result.found,
		PathLen:   result.length,
		Expanded:  result.expanded,
	}
	if !result.found {
		decision.Direction = p.SafeMove(*board, *agent, target.Cell)
	}

	if p.options.Logger != nil {
		mode := "path"
		if !decision.Found {
			mode = "fallback"
		}
		p.options.Logger.Printf("[PATHFIND] head=%s target=%s mode=%s move=%s len=%d expanded=%d",
			agent.Head, target.Cell, mode, decision.Direction, decision.PathLen, decision.Expanded)
	}
	return decision, nil
}

func validate(board *Board, agent *Agent, target *Target) error {
	if board == nil {
		return fmt.Errorf("%w: expected object", ErrInvalidBoard)
	}
	if board.Width < 1 || board.Height < 1 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidBoard, board.Width, board.Height)
	}
	if agent == nil {
		return fmt.Errorf("%w: expected object", ErrInvalidAgent)
	}
	if target == nil {
		return fmt.Errorf("%w: expected object", ErrInvalidTarget)
	}
	return nil
}

// blockedFunc reports a cell as blocked when it is off the board or on the body.
func blockedFunc(board Board, body []Cell) func(Cell) bool {
	occupied := mapset.New[Cell]()
	for _, c := range body {
		occupied.Put(c)
	}
	return func(c Cell) bool {
		return !board.Contains(c) || occupied.Has(c)
	}
}

// Search runs A* from start to goal and returns the first move of a shortest
// path. The bool is false when goal is unreachable. start == goal yields
// (None, true): there is no edge leaving start.
func Search(start, goal Cell, board Board, isBlocked func(Cell) bool) (Direction, bool) {
	result := search(start, goal, board, isBlocked, None)
	return result.first, result.found
}

type searchResult struct {
	first    Direction
	found    bool
	length   int
	expanded int
}

// cameFromEntry is the best known predecessor and the move taken out of it.
type cameFromEntry struct {
	from Cell
	dir  Direction
}

// search is the A* loop. forbidden is a move never taken out of start, used to
// keep the head from reversing into the cell it just left.
func search(start, goal Cell, board Board, isBlocked func(Cell) bool, forbidden Direction) searchResult {
	var result searchResult

	capacity := board.Cells()
	gScore := make(map[Cell]int, capacity)
	cameFrom := make(map[Cell]cameFromEntry, capacity)
	closed := mapset.New[Cell]()
	frontier := NewFrontier(capacity)

	gScore[start] = 0
	frontier.Push(start, Manhattan(start, goal))

	for !frontier.Empty() {
		current, _ := frontier.Pop()
		if closed.Has(current) {
			// Stale copy of a cell reached later by a cheaper path.
			continue
		}
		if current == goal {
			result.found = true
			result.length = gScore[current]
			result.first = firstMove(cameFrom, current, start)
			return result
		}

		closed.Put(current)
		result.expanded++

		for _, dir := range directions {
			if current == start && dir == forbidden {
				continue
			}
			next := current.Step(dir)
			if closed.Has(next) || isBlocked(next) {
				continue
			}

			tentative := gScore[current] + 1
			if best, seen := gScore[next]; seen && tentative >= best {
				continue
			}
			cameFrom[next] = cameFromEntry{from: current, dir: dir}
			gScore[next] = tentative
			frontier.Push(next, tentative+Manhattan(next, goal))
		}
	}

	return result
}

// firstMove walks cameFrom back from goal and returns the move that left start.
func firstMove(cameFrom map[Cell]cameFromEntry, goal, start Cell) Direction {
	current := goal
	for {
		entry, ok := cameFrom[current]
		if !ok {
			return None
		}
		if entry.from == start {
			return entry.dir
		}
		current = entry.from
	}
}
