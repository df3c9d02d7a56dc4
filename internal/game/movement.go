package game

import (
	"log"

	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// steer changes the snake's velocity. Reversing straight back into the
// previous cell is ignored, as is None.
func (e *Engine) steer(dir pathfind.Direction) bool {
	s := &e.State.Snake
	if dir == pathfind.None || s.Velocity.Reverses(dir) {
		return false
	}
	s.Velocity = pathfind.VelocityOf(dir)
	return true
}

// advance moves the snake one cell along its velocity.
// Movement ends the round on the board edge or the snake's own body; eating
// the food grows the body by one and places new food.
func (e *Engine) advance() {
	st := e.State
	s := &st.Snake

	dir := s.Velocity.Direction()
	if dir == pathfind.None {
		// Not moving yet
		return
	}

	newHead := s.Head.Step(dir)
	ate := newHead == st.Food

	// Shift the body forward; keep the tail when growing
	newBody := make([]Position, 0, len(s.Body)+1)
	newBody = append(newBody, s.Head)
	newBody = append(newBody, s.Body...)
	if !ate {
		newBody = newBody[:len(newBody)-1]
	}

	if !InBounds(newHead, st.Width, st.Height) {
		e.endRound("wall", newHead)
		return
	}
	for _, b := range newBody {
		if b == newHead {
			e.endRound("self", newHead)
			return
		}
	}

	s.Head = newHead
	s.Body = newBody

	if !ate {
		return
	}

	st.Score++
	if st.Score > st.BestScore {
		st.BestScore = st.Score
	}
	st.Percentage = st.Score * 100 / (st.Width * st.Height)

	food, ok := PlaceFood(st.Width, st.Height, *s, e.rng)
	if !ok {
		// Nothing left to eat
		st.Won = true
		e.endRound("board filled", newHead)
		return
	}
	st.Food = food
}

// endRound marks the round over and schedules a restart if configured.
func (e *Engine) endRound(reason string, at Position) {
	e.State.Status = StatusOver
	e.overAt = e.State.Tick
	log.Printf("[ENGINE] Round %d over at (%d,%d): %s, score %d (%d%%)",
		e.State.Round, at.X, at.Y, reason, e.State.Score, e.State.Percentage)
}
