package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zyedidia/generic/mapset"

	"github.com/amalg/go-snakepilot/internal/game"
)

var (
	emptyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#1a1a2e"))

	headStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#00ff88")).
			Foreground(lipgloss.Color("#0b3d2a")).
			Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1f9e5a")).
			Foreground(lipgloss.Color("#1f9e5a"))

	crashedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#666666")).
			Foreground(lipgloss.Color("#666666"))

	foodStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)

	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44aaff")).
			Bold(true)

	overStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)

	wonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true).
			Blink(true)

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// headGlyph shows the direction of travel.
var headGlyph = map[string]string{
	"Up":    "▲▲",
	"Down":  "▼▼",
	"Left":  "◀◀",
	"Right": "▶▶",
}

// RenderBoard draws the board. Each cell is two characters wide.
func RenderBoard(state *game.GameState) string {
	if state == nil || state.Width == 0 || state.Height == 0 {
		return "Waiting for game state..."
	}

	body := mapset.New[game.Position]()
	for _, p := range state.Snake.Body {
		body.Put(p)
	}

	segment := bodyStyle
	if state.Status == game.StatusOver && !state.Won {
		segment = crashedStyle
	}

	rows := make([]string, 0, state.Height)
	for y := 0; y < state.Height; y++ {
		var sb strings.Builder
		for x := 0; x < state.Width; x++ {
			pos := game.Position{X: x, Y: y}
			switch {
			case pos == state.Snake.Head:
				glyph, ok := headGlyph[state.Snake.Velocity.Direction().String()]
				if !ok {
					glyph = "■■"
				}
				sb.WriteString(headStyle.Render(glyph))
			case body.Has(pos):
				sb.WriteString(segment.Render("██"))
			case pos == state.Food:
				sb.WriteString(foodStyle.Render("●●"))
			default:
				sb.WriteString(emptyStyle.Render("  "))
			}
		}
		rows = append(rows, sb.String())
	}

	return strings.Join(rows, "\n")
}

// RenderHUD shows score, round status and what drove the last move.
func RenderHUD(state *game.GameState, notice string) string {
	if state == nil {
		return ""
	}

	parts := []string{titleStyle.Render("SNAKE AUTOPILOT"), ""}

	switch {
	case state.Won:
		parts = append(parts, wonStyle.Render("BOARD FILLED"))
	case state.Status == game.StatusOver:
		parts = append(parts, overStyle.Render(fmt.Sprintf("CRASHED, round %d over", state.Round)))
	case state.Status == game.StatusPaused:
		parts = append(parts, pausedStyle.Render("PAUSED  [j] step"))
	default:
		parts = append(parts, labelStyle.Render(fmt.Sprintf("Round %d", state.Round)))
	}
	parts = append(parts, "")

	pilot := "off"
	if state.Autopilot {
		pilot = "on"
	}
	source := string(state.MoveSource)
	if source == "" {
		source = "-"
	}

	parts = append(parts,
		fmt.Sprintf("%s %d (%d%%)", labelStyle.Render("Score:"), state.Score, state.Percentage),
		fmt.Sprintf("%s %d", labelStyle.Render("Best: "), state.BestScore),
		fmt.Sprintf("%s %d", labelStyle.Render("Length:"), state.Snake.Len()),
		"",
		fmt.Sprintf("%s %s", labelStyle.Render("Autopilot:"), pilot),
		fmt.Sprintf("%s %s via %s", labelStyle.Render("Last move:"), state.LastMove, source),
		fmt.Sprintf("%s %d", labelStyle.Render("Expanded: "), state.Expanded),
		fmt.Sprintf("%s %d", labelStyle.Render("Path:     "), state.PathLen),
		fmt.Sprintf("%s %d/s", labelStyle.Render("Speed:    "), state.TickRate),
	)

	if notice != "" {
		parts = append(parts, "", noticeStyle.Render(notice))
	}

	parts = append(parts, "",
		helpStyle.Render("WASD/Arrows: steer | Space: autopilot"),
		helpStyle.Render("K: pause | J: step | H: boost | G: turbo"),
		helpStyle.Render("R: restart | Q: quit"),
	)

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}
