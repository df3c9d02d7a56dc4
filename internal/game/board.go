package game

import (
	"golang.org/x/exp/rand"
)

// NewSnake spawns a stationary, body-less snake on a random cell.
//
// The spawn is kept one cell away from the border when the board allows it,
// so the first autopilot move is never forced into a wall.
func NewSnake(config Config, rng *rand.Rand) Snake {
	x := spawnCoord(config.Width, rng)
	y := spawnCoord(config.Height, rng)
	return Snake{
		Head: Position{X: x, Y: y},
		Body: make([]Position, 0),
	}
}

func spawnCoord(size int, rng *rand.Rand) int {
	if size <= 2 {
		return rng.Intn(size)
	}
	return 1 + rng.Intn(size-2)
}

// PlaceFood picks a random free cell for the food.
// The bool is false when the snake fills the whole board.
func PlaceFood(width, height int, snake Snake, rng *rand.Rand) (Position, bool) {
	free := freeCells(width, height, snake)
	if len(free) == 0 {
		return Position{}, false
	}
	return free[rng.Intn(len(free))], true
}

// freeCells lists every position not occupied by the snake, row by row.
func freeCells(width, height int, snake Snake) []Position {
	occupied := make(map[Position]bool, snake.Len())
	occupied[snake.Head] = true
	for _, b := range snake.Body {
		occupied[b] = true
	}

	capacity := width*height - len(occupied)
	if capacity < 0 {
		capacity = 0
	}
	free := make([]Position, 0, capacity)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := Position{X: x, Y: y}
			if !occupied[pos] {
				free = append(free, pos)
			}
		}
	}
	return free
}

// InBounds reports whether p lies on a width x height board.
func InBounds(p Position, width, height int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height
}
