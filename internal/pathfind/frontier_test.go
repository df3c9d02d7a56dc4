package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontierStartsEmpty(t *testing.T) {
	f := NewFrontier(4)
	assert.True(t, f.Empty())
	assert.Equal(t, 0, f.Len())
}

func TestFrontierPopsLowestPriorityFirst(t *testing.T) {
	f := NewFrontier(0)
	f.Push(Cell{X: 1, Y: 1}, 10)
	f.Push(Cell{X: 2, Y: 2}, 5)
	f.Push(Cell{X: 3, Y: 3}, 15)
	require.Equal(t, 3, f.Len())

	c, p := f.Pop()
	assert.Equal(t, Cell{X: 2, Y: 2}, c)
	assert.Equal(t, 5, p)
	c, _ = f.Pop()
	assert.Equal(t, Cell{X: 1, Y: 1}, c)
	c, _ = f.Pop()
	assert.Equal(t, Cell{X: 3, Y: 3}, c)
	assert.True(t, f.Empty())
}

func TestFrontierEqualPriorities(t *testing.T) {
	f := NewFrontier(2)
	f.Push(Cell{X: 1, Y: 1}, 5)
	f.Push(Cell{X: 2, Y: 2}, 5)

	first, _ := f.Pop()
	second, _ := f.Pop()
	assert.ElementsMatch(t, []Cell{{X: 1, Y: 1}, {X: 2, Y: 2}}, []Cell{first, second})
}

func TestFrontierKeepsDuplicates(t *testing.T) {
	f := NewFrontier(2)
	cell := Cell{X: 4, Y: 4}
	f.Push(cell, 9)
	f.Push(cell, 3)
	require.Equal(t, 2, f.Len())

	c, p := f.Pop()
	assert.Equal(t, cell, c)
	assert.Equal(t, 3, p)
	c, p = f.Pop()
	assert.Equal(t, cell, c)
	assert.Equal(t, 9, p)
}

func TestFrontierPopEmptyPanics(t *testing.T) {
	f := NewFrontier(0)
	assert.Panics(t, func() { f.Pop() })
}
