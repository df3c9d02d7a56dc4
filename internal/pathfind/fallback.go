package pathfind

import "github.com/zyedidia/generic/mapset"

// Scorer is a secondary ranking for fallback candidates. Higher is better.
// isBlocked already treats the head as occupied.
type Scorer interface {
	Score(board Board, isBlocked func(Cell) bool, candidate Cell) int
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(board Board, isBlocked func(Cell) bool, candidate Cell) int

func (f ScorerFunc) Score(board Board, isBlocked func(Cell) bool, candidate Cell) int {
	return f(board, isBlocked, candidate)
}

// SafeMove picks a legal neighbour of the head without looking further ahead.
//
// Candidates off the board, on the body, or reversing the current velocity
// are rejected. The survivor closest to target (Manhattan) wins; with a Scorer
// configured, equal distances go to the higher score. Remaining ties resolve
// in the fixed order Up, Down, Left, Right. None means the head is trapped.
func (p *Pathfinder) SafeMove(board Board, agent Agent, target Cell) Direction {
	blocked := blockedFunc(board, agent.Body)
	occupied := func(c Cell) bool { return c == agent.Head || blocked(c) }

	best := None
	bestDistance, bestScore := 0, 0
	for _, dir := range directions {
		next := agent.Head.Step(dir)
		if !board.Contains(next) {
			continue
		}
		if agent.Velocity.Reverses(dir) {
			continue
		}
		if blocked(next) {
			continue
		}

		distance := Manhattan(next, target)
		score := 0
		if p.options.Scorer != nil {
			score = p.options.Scorer.Score(board, occupied, next)
		}
		if best == None || distance < bestDistance || (distance == bestDistance && score > bestScore) {
			best, bestDistance, bestScore = dir, distance, score
		}
	}
	return best
}

// OpenArea scores a candidate by the number of free cells reachable from it,
// so the fallback prefers the larger pocket when distances tie.
type OpenArea struct {
	// Limit caps the flood fill. Zero means the whole board.
	Limit int
}

func (o OpenArea) Score(board Board, isBlocked func(Cell) bool, candidate Cell) int {
	if isBlocked(candidate) {
		return 0
	}
	limit := o.Limit
	if limit <= 0 {
		limit = board.Cells()
	}

	visited := mapset.New[Cell]()
	visited.Put(candidate)
	queue := []Cell{candidate}
	for len(queue) > 0 && visited.Size() < limit {
		current := queue[0]
		queue = queue[1:]
		for _, dir := range directions {
			next := current.Step(dir)
			if visited.Has(next) || isBlocked(next) {
				continue
			}
			visited.Put(next)
			queue = append(queue, next)
			if visited.Size() >= limit {
				break
			}
		}
	}
	return visited.Size()
}
