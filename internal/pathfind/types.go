package pathfind

import (
	"encoding/json"
	"fmt"
)

// Cell is a 1-indexed grid coordinate. Y grows downward, so Up is Y-1.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighbouring cell in direction d.
func (c Cell) Step(d Direction) Cell {
	dx, dy := d.Delta()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Manhattan returns |dx| + |dy| between two cells.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is a single head move. None is the "no legal move" result.
type Direction int

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// directions is the neighbour expansion order and the fallback tie-break order.
var directions = [...]Direction{Up, Down, Left, Right}

// Directions returns the four moves in tie-break order.
func Directions() []Direction {
	return directions[:]
}

var directionNames = map[Direction]string{
	Up:    "Up",
	Down:  "Down",
	Left:  "Left",
	Right: "Right",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "None"
}

// Delta returns the unit offset of the move.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse move. None stays None.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return None
}

// ParseDirection accepts the tokens produced by String.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

// MarshalJSON encodes None as null and every other move as its token.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == None {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Velocity is the current per-tick motion of the head. At most one axis is
// nonzero, each in {-1, 0, 1}.
type Velocity struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// VelocityOf returns the velocity produced by moving in d.
func VelocityOf(d Direction) Velocity {
	dx, dy := d.Delta()
	return Velocity{X: dx, Y: dy}
}

// Direction returns the move matching v, or None when v is stationary.
func (v Velocity) Direction() Direction {
	for _, d := range directions {
		if VelocityOf(d) == v {
			return d
		}
	}
	return None
}

// Reverses reports whether moving in d would turn straight back into the cell
// the head just left.
func (v Velocity) Reverses(d Direction) bool {
	if v == (Velocity{}) || d == None {
		return false
	}
	dx, dy := d.Delta()
	return dx == -v.X && dy == -v.Y
}

// Board is the per-call grid snapshot. Scale is the cell size in pixels and is
// only used to convert pixel-space coordinates into cells.
type Board struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Scale  int `json:"scale,omitempty"`
}

// Contains reports whether c lies within [1, Width] x [1, Height].
func (b Board) Contains(c Cell) bool {
	return c.X >= 1 && c.Y >= 1 && c.X <= b.Width && c.Y <= b.Height
}

// Cells returns the number of cells on the board.
func (b Board) Cells() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// CellAt converts a pixel-space top-left corner to its 1-indexed cell.
func (b Board) CellAt(px, py int) Cell {
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	return Cell{X: px/scale + 1, Y: py/scale + 1}
}

// Agent is the snake as seen by the pathfinder. Body order does not matter.
type Agent struct {
	Head     Cell     `json:"head"`
	Velocity Velocity `json:"velocity"`
	Body     []Cell   `json:"body"`
}

// Target is the cell the search tries to reach.
type Target struct {
	Cell Cell `json:"cell"`
}
