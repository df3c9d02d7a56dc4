package pathfind

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pocketAgent sits at (3,3) on a 5x5 board with Up and Down walled off. Left
// leads into a two-cell pocket, Right into the rest of the board, and both are
// three steps from (3,5).
func pocketAgent() Agent {
	return Agent{
		Head: Cell{X: 3, Y: 3},
		Body: []Cell{
			{X: 3, Y: 2}, {X: 3, Y: 4},
			{X: 2, Y: 2}, {X: 2, Y: 4},
			{X: 1, Y: 2}, {X: 1, Y: 4},
		},
	}
}

func TestSafeMoveTieBreakOrder(t *testing.T) {
	got := New().SafeMove(Board{Width: 5, Height: 5}, pocketAgent(), Cell{X: 3, Y: 5})
	assert.Equal(t, Left, got)
}

func TestSafeMoveOpenAreaPrefersLargerRegion(t *testing.T) {
	p := New(WithScorer(OpenArea{}))
	got := p.SafeMove(Board{Width: 5, Height: 5}, pocketAgent(), Cell{X: 3, Y: 5})
	assert.Equal(t, Right, got)
}

func TestSafeMoveDistanceBeatsScore(t *testing.T) {
	// A scorer that loves Up cannot override a strictly closer Down.
	upLover := ScorerFunc(func(_ Board, _ func(Cell) bool, c Cell) int {
		if c == (Cell{X: 3, Y: 2}) {
			return 100
		}
		return 0
	})
	p := New(WithScorer(upLover))
	got := p.SafeMove(Board{Width: 5, Height: 5}, Agent{Head: Cell{X: 3, Y: 3}}, Cell{X: 3, Y: 5})
	assert.Equal(t, Down, got)
}

func TestSafeMoveRejections(t *testing.T) {
	b := Board{Width: 5, Height: 5}
	p := New()

	t.Run("bounds", func(t *testing.T) {
		got := p.SafeMove(b, Agent{Head: Cell{X: 1, Y: 1}}, Cell{X: 1, Y: 0})
		assert.Contains(t, []Direction{Down, Right}, got)
	})

	t.Run("reversal", func(t *testing.T) {
		// Target is straight behind, but the head is moving right.
		agent := Agent{Head: Cell{X: 3, Y: 3}, Velocity: Velocity{X: 1}}
		got := p.SafeMove(b, agent, Cell{X: 1, Y: 3})
		assert.NotEqual(t, Left, got)
		assert.Equal(t, Up, got)
	})

	t.Run("body", func(t *testing.T) {
		// Down would tie with Left and win on order, but it is occupied.
		agent := Agent{Head: Cell{X: 3, Y: 3}, Body: []Cell{{X: 3, Y: 4}}}
		got := p.SafeMove(b, agent, Cell{X: 2, Y: 5})
		assert.Equal(t, Left, got)
	})

	t.Run("trapped", func(t *testing.T) {
		agent := Agent{Head: Cell{X: 1, Y: 1}, Velocity: Velocity{Y: -1}, Body: []Cell{{X: 2, Y: 1}, {X: 1, Y: 2}}}
		assert.Equal(t, None, p.SafeMove(b, agent, Cell{X: 5, Y: 5}))
	})
}

func TestOpenAreaLimit(t *testing.T) {
	b := Board{Width: 10, Height: 10}
	free := func(c Cell) bool { return !b.Contains(c) }

	assert.Equal(t, 100, OpenArea{}.Score(b, free, Cell{X: 5, Y: 5}))
	assert.Equal(t, 12, OpenArea{Limit: 12}.Score(b, free, Cell{X: 5, Y: 5}))
	assert.Equal(t, 0, OpenArea{}.Score(b, func(Cell) bool { return true }, Cell{X: 5, Y: 5}))
}

func TestDirectionJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Direction `json:"a"`
		B Direction `json:"b"`
	}{A: Left, B: None})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"Left","b":null}`, string(data))

	var decoded struct {
		A Direction `json:"a"`
		B Direction `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"Down","b":null}`), &decoded))
	assert.Equal(t, Down, decoded.A)
	assert.Equal(t, None, decoded.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"Sideways"}`), &decoded))
}

func TestVelocity(t *testing.T) {
	assert.True(t, Velocity{X: 1}.Reverses(Left))
	assert.False(t, Velocity{X: 1}.Reverses(Up))
	assert.False(t, Velocity{}.Reverses(Left))
	assert.Equal(t, Up, Velocity{Y: -1}.Direction())
	assert.Equal(t, None, Velocity{}.Direction())
	assert.Equal(t, Velocity{X: -1}, VelocityOf(Left))
}

func TestBoardCellAt(t *testing.T) {
	b := Board{Width: 10, Height: 10, Scale: 50}
	assert.Equal(t, Cell{X: 1, Y: 1}, b.CellAt(0, 0))
	assert.Equal(t, Cell{X: 3, Y: 2}, b.CellAt(100, 50))
	assert.Equal(t, Cell{X: 4, Y: 5}, Board{}.CellAt(3, 4))
}
