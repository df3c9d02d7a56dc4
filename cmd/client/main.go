package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-snakepilot/internal/discovery"
	"github.com/amalg/go-snakepilot/internal/network"
	"github.com/amalg/go-snakepilot/internal/ui"
)

func main() {
	addr := flag.String("addr", "", "Server address (e.g., 192.168.1.5:9999); empty browses the LAN")
	name := flag.String("name", "Spectator", "Your name")
	browseTimeout := flag.Duration("browse-timeout", 3*time.Second, "How long to listen for sessions when --addr is empty")
	flag.Parse()

	target := *addr
	if target == "" {
		session, err := browse(*browseTimeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to find a session: %v\n", err)
			fmt.Fprintln(os.Stderr, "Usage: client [--addr <host:port>] [--name <name>]")
			os.Exit(1)
		}
		target = session.GameAddr
	}

	fmt.Printf("Connecting to %s as %s...\n", target, *name)

	client, err := network.NewClient(target, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("Joined session %s as %s\n", client.SessionID(), client.SpectatorID())
	fmt.Println("Starting TUI...")
	time.Sleep(500 * time.Millisecond)

	p := tea.NewProgram(ui.NewModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// browse listens for advertisements and returns the first session by name.
func browse(timeout time.Duration) (discovery.SessionInfo, error) {
	l := discovery.NewListener()
	if err := l.Start(); err != nil {
		return discovery.SessionInfo{}, err
	}
	defer l.Stop()

	fmt.Printf("Browsing for sessions (%s)...\n", timeout)
	time.Sleep(timeout)

	sessions := l.Sessions()
	if len(sessions) == 0 {
		return discovery.SessionInfo{}, fmt.Errorf("no sessions advertised within %s", timeout)
	}
	for _, s := range sessions {
		fmt.Printf("  %-16s %dx%d  %d watching  %s (host %s)\n",
			s.SessionName, s.Width, s.Height, s.Spectators, s.GameAddr, s.HostName)
	}
	return sessions[0], nil
}
