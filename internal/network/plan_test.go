package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amalg/go-snakepilot/internal/pathfind"
)

func TestPlanJSONPixelSnapshot(t *testing.T) {
	planner := pathfind.New()

	// Head at cell (5,5), food at (5,4) on a 10x10 board of 50px cells
	resp := PlanJSON(planner, []byte(`{
		"board": {"posX": 10, "posY": 10, "blockSize": 50},
		"snake": {"x": 200, "y": 200, "speedX": 0, "speedY": 0, "body": []},
		"food":  {"x": 200, "y": 150}
	}`))
	assert.Empty(t, resp.Error)
	assert.Equal(t, pathfind.Up, resp.Direction)
}

func TestPlanJSONBodyInPixels(t *testing.T) {
	planner := pathfind.New()

	// Head (3,3) walled on three sides by body cells (3,2), (4,3), (3,4)
	resp := PlanJSON(planner, []byte(`{
		"board": {"posX": 5, "posY": 5, "blockSize": 50},
		"snake": {"x": 100, "y": 100, "speedX": 0, "speedY": 0,
		          "body": [[100, 50], [150, 100], [100, 150]]},
		"food":  {"x": 0, "y": 0}
	}`))
	assert.Empty(t, resp.Error)
	assert.Equal(t, pathfind.Left, resp.Direction)
}

func TestPlanJSONTrapped(t *testing.T) {
	resp := PlanJSON(pathfind.New(), []byte(`{
		"board": {"posX": 3, "posY": 3, "blockSize": 10},
		"snake": {"x": 10, "y": 10, "body": [[10, 0], [20, 10], [10, 20], [0, 10]]},
		"food":  {"x": 0, "y": 0}
	}`))
	assert.Empty(t, resp.Error)
	assert.Equal(t, pathfind.None, resp.Direction)
}

func TestPlanJSONMissingArguments(t *testing.T) {
	planner := pathfind.New()

	resp := PlanJSON(planner, []byte(`{"snake": {"x": 0, "y": 0}, "food": {"x": 0, "y": 0}}`))
	assert.Equal(t, "invalid board: expected object", resp.Error)

	resp = PlanJSON(planner, []byte(`{"board": {"posX": 5, "posY": 5, "blockSize": 50}, "food": {"x": 0, "y": 0}}`))
	assert.Equal(t, "invalid agent: expected object", resp.Error)

	resp = PlanJSON(planner, []byte(`{"board": {"posX": 5, "posY": 5, "blockSize": 50}, "snake": {"x": 0, "y": 0}}`))
	assert.Equal(t, "invalid target: expected object", resp.Error)
}

func TestPlanJSONMalformed(t *testing.T) {
	resp := PlanJSON(pathfind.New(), []byte(`{"board":`))
	assert.Contains(t, resp.Error, "malformed request")
	assert.Equal(t, pathfind.None, resp.Direction)
}
