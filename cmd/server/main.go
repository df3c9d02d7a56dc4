package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-snakepilot/internal/discovery"
	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/network"
	"github.com/amalg/go-snakepilot/internal/ui"
)

func main() {
	port := flag.Int("port", 9999, "TCP port for spectators")
	httpPort := flag.Int("http-port", 8080, "HTTP port for the WebSocket endpoints (0 disables them)")
	name := flag.String("name", "Host", "Session name")
	width := flag.Int("width", 20, "Board width in cells")
	height := flag.Int("height", 15, "Board height in cells")
	speed := flag.Int("speed", 10, "Ticks per second")
	seed := flag.Uint64("seed", 0, "RNG seed for spawn and food (0: time based)")
	openArea := flag.Bool("open-area", false, "Fallback prefers moves into larger free regions")
	noDiscovery := flag.Bool("no-discovery", false, "Do not advertise the session on the LAN")
	logFile := flag.String("log", "", "Log file path (default: discard server logs)")
	flag.Parse()

	// Redirect log output before any server goroutine starts.
	// Anything written to stderr corrupts Bubbletea's rendering.
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
	config.OpenArea = *openArea
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("0.0.0.0:%d", *port)
	httpAddr := ""
	if *httpPort > 0 {
		httpAddr = fmt.Sprintf("0.0.0.0:%d", *httpPort)
	}

	server := network.NewServer(addr, httpAddr, config)
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}

	var advertiser *discovery.Advertiser
	if !*noDiscovery {
		advertiser = startAdvertiser(server, *name, config, *port, *httpPort)
	}

	shutdown := func() {
		if advertiser != nil {
			advertiser.Stop()
		}
		server.Stop()
	}

	// Give the TCP listener time to be fully ready
	time.Sleep(200 * time.Millisecond)

	// Watch the session through the same protocol as remote spectators
	client, err := network.NewClient(fmt.Sprintf("127.0.0.1:%d", *port), *name)
	if err != nil {
		shutdown()
		fmt.Fprintf(os.Stderr, "Failed to connect as host: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Snake autopilot session %q (%s) on port %d\n", *name, server.SessionID(), *port)
	printLocalAddrs(*port)
	if httpAddr != "" {
		fmt.Printf("WebSocket endpoints: ws://<host>:%d/ws/plan and /ws/state\n", *httpPort)
	}
	fmt.Println("\nStarting TUI...")
	time.Sleep(500 * time.Millisecond)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		client.Close()
		shutdown()
		os.Exit(0)
	}()

	p := tea.NewProgram(ui.NewModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		client.Close()
		shutdown()
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	client.Close()
	shutdown()
}

// startAdvertiser announces the session and keeps its spectator count current.
func startAdvertiser(server *network.Server, name string, config game.Config, port, httpPort int) *discovery.Advertiser {
	host, _ := os.Hostname()
	ip := localIPv4()

	info := discovery.SessionInfo{
		SessionID:   server.SessionID(),
		SessionName: name,
		HostName:    host,
		Width:       config.Width,
		Height:      config.Height,
		GameAddr:    fmt.Sprintf("%s:%d", ip, port),
	}
	if httpPort > 0 {
		info.WSAddr = fmt.Sprintf("%s:%d", ip, httpPort)
	}

	advertiser := discovery.NewAdvertiser(info)
	if err := advertiser.Start(); err != nil {
		log.Printf("[DISCOVERY] Advertising disabled: %v", err)
		return nil
	}

	go func() {
		ticker := time.NewTicker(discovery.AdvertiseInterval)
		defer ticker.Stop()
		for range ticker.C {
			advertiser.UpdateSpectators(server.SpectatorCount())
		}
	}()

	return advertiser
}

// localIPv4 returns the first non-loopback IPv4 address, or loopback.
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	return "127.0.0.1"
}

// printLocalAddrs prints the addresses spectators can connect to.
func printLocalAddrs(port int) {
	fmt.Println("Spectators can connect using:")
	fmt.Printf("  127.0.0.1:%d (this machine)\n", port)

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				fmt.Printf("  %s:%d\n", ipnet.IP.String(), port)
			}
		}
	}
}
