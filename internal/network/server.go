package network

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// Server hosts a session: it runs the engine, streams state to TCP
// spectators and WebSocket feeds, and serves remote plan requests.
type Server struct {
	engine     *game.Engine
	planner    *pathfind.Pathfinder
	sessionID  string
	addr       string
	httpAddr   string
	listener   net.Listener
	httpLn     net.Listener
	httpServer *http.Server
	clients    map[string]*clientConn
	feeds      map[string]*wsConn // /ws/state subscribers
	plans      map[string]*wsConn // open /ws/plan connections
	mu         sync.RWMutex
	done       chan struct{}
}

// clientConn represents a connected spectator.
type clientConn struct {
	conn net.Conn
	id   string
	name string
	mu   sync.Mutex
}

// NewServer creates a new session server. An empty httpAddr disables the
// WebSocket endpoints.
func NewServer(addr, httpAddr string, config game.Config) *Server {
	engine := game.NewEngine(config)

	// Remote plan requests are traced; the engine's own per-tick decisions are not
	options := []pathfind.Option{pathfind.WithLogger(log.Default())}
	if config.OpenArea {
		options = append(options, pathfind.WithScorer(pathfind.OpenArea{}))
	}

	s := &Server{
		engine:    engine,
		planner:   pathfind.New(options...),
		sessionID: uuid.NewString(),
		addr:      addr,
		httpAddr:  httpAddr,
		clients:   make(map[string]*clientConn),
		feeds:     make(map[string]*wsConn),
		plans:     make(map[string]*wsConn),
		done:      make(chan struct{}),
	}

	// Broadcast callback receives a pre-copied state from the engine
	engine.OnTick(func(state game.GameState) {
		s.broadcastState(state)
		s.broadcastFeeds(state)
	})

	return s
}

// Engine returns the underlying game engine.
func (s *Server) Engine() *game.Engine {
	return s.engine
}

// SessionID returns the random identifier of this session.
func (s *Server) SessionID() string {
	return s.sessionID
}

// Addr returns the TCP listen address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the WebSocket listen address once started, or "".
func (s *Server) HTTPAddr() string {
	if s.httpLn == nil {
		return s.httpAddr
	}
	return s.httpLn.Addr().String()
}

// SpectatorCount returns the number of attached TCP spectators and feeds.
func (s *Server) SpectatorCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients) + len(s.feeds)
}

// Handler returns the HTTP mux with the WebSocket endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/plan", s.handlePlan)
	mux.HandleFunc("/ws/state", s.handleState)
	return mux
}

// Start begins accepting connections and running the game loop.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.Printf("[SERVER] Session %s listening on %s", s.sessionID, s.listener.Addr())

	if s.httpAddr != "" {
		s.httpLn, err = net.Listen("tcp", s.httpAddr)
		if err != nil {
			s.listener.Close()
			return fmt.Errorf("listen http: %w", err)
		}
		s.httpServer = &http.Server{Handler: s.Handler()}
		go func() {
			if err := s.httpServer.Serve(s.httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[SERVER] HTTP serve error: %v", err)
			}
		}()
		log.Printf("[SERVER] WebSocket endpoints on %s", s.httpLn.Addr())
	}

	// Start game engine in background
	go s.engine.Run()

	// Accept connections
	go s.acceptLoop()

	return nil
}

// Stop shuts down the server. Safe to call more than once.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}

	s.engine.Stop()
	if s.listener != nil {
		s.listener.Close()
	}
	if s.httpServer != nil {
		s.httpServer.Close()
	}

	// Hijacked WebSocket connections outlive httpServer.Close
	s.mu.RLock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	for _, wc := range s.feeds {
		wc.conn.Close()
	}
	for _, wc := range s.plans {
		wc.conn.Close()
	}
	s.mu.RUnlock()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("[SERVER] Accept error: %v", err)
				continue
			}
		}
		go s.handleClient(conn)
	}
}

func (s *Server) handleClient(conn net.Conn) {
	defer conn.Close()

	// Read join message
	env, err := Decode(conn)
	if err != nil {
		log.Printf("[SERVER] Failed to read join message: %v", err)
		return
	}
	if env.Type != MsgJoin {
		log.Printf("[SERVER] Expected join message, got %s", env.Type)
		Encode(conn, MsgError, ErrorMsg{Message: "expected join message"})
		return
	}

	var joinMsg JoinMsg
	if err := DecodePayload(env, &joinMsg); err != nil {
		log.Printf("[SERVER] Failed to decode join message: %v", err)
		return
	}

	cc := &clientConn{
		conn: conn,
		id:   uuid.NewString(),
		name: joinMsg.Name,
	}
	s.mu.Lock()
	s.clients[cc.id] = cc
	s.mu.Unlock()

	log.Printf("[SERVER] Spectator joined: %s (%s)", cc.name, cc.id)

	welcome := WelcomeMsg{
		SpectatorID: cc.id,
		SessionID:   s.sessionID,
		Config:      s.engine.Config,
	}
	if err := s.send(cc, MsgWelcome, welcome); err != nil {
		log.Printf("[SERVER] Failed to send welcome: %v", err)
		s.removeClient(cc.id)
		return
	}

	s.send(cc, MsgState, StateMsg{State: s.engine.GetStateCopy()})

	// Read commands loop
	for {
		select {
		case <-s.done:
			s.removeClient(cc.id)
			return
		default:
		}

		env, err := Decode(conn)
		if err != nil {
			log.Printf("[SERVER] Spectator %s disconnected: %v", cc.id, err)
			s.removeClient(cc.id)
			return
		}

		switch env.Type {
		case MsgCommand:
			var msg CommandMsg
			if err := DecodePayload(env, &msg); err != nil {
				log.Printf("[SERVER] Invalid command from %s: %v", cc.id, err)
				continue
			}
			cmd, err := msg.ToCommand(cc.name)
			if err != nil {
				s.send(cc, MsgError, ErrorMsg{Message: err.Error()})
				continue
			}
			s.engine.EnqueueCommand(cmd)
		default:
			log.Printf("[SERVER] Unknown message type from %s: %s", cc.id, env.Type)
		}
	}
}

func (s *Server) removeClient(id string) {
	s.mu.Lock()
	if cc, ok := s.clients[id]; ok {
		cc.conn.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()
	log.Printf("[SERVER] Spectator removed: %s", id)
}

func (s *Server) broadcastState(state game.GameState) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cc := range s.clients {
		if err := s.send(cc, MsgState, StateMsg{State: state}); err != nil {
			log.Printf("[SERVER] Failed to send state to %s: %v", cc.id, err)
		}
	}
}

func (s *Server) send(cc *clientConn, msgType MsgType, payload interface{}) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return Encode(cc.conn, msgType, payload)
}
