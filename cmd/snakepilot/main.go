package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/ui"
)

func main() {
	width := flag.Int("width", 20, "Board width in cells")
	height := flag.Int("height", 15, "Board height in cells")
	speed := flag.Int("speed", 10, "Ticks per second")
	seed := flag.Uint64("seed", 0, "RNG seed for spawn and food (0: time based)")
	manual := flag.Bool("manual", false, "Start with autopilot off")
	openArea := flag.Bool("open-area", false, "Fallback prefers moves into larger free regions")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	flag.Parse()

	// Any stderr output corrupts the TUI, so logs go to a file or nowhere
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	config := game.DefaultConfig()
	config.Width = *width
	config.Height = *height
	config.TickRate = *speed
	if config.MaxTickRate < config.TickRate {
		config.MaxTickRate = config.TickRate
	}
	config.Seed = *seed
	config.Autopilot = !*manual
	config.OpenArea = *openArea
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	engine := game.NewEngine(config)
	session := ui.NewLocalSession(engine)
	go engine.Run()
	defer engine.Stop()

	p := tea.NewProgram(ui.NewModel(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		engine.Stop()
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
