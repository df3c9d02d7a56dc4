package network

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/amalg/go-snakepilot/internal/game"
)

// wsConn serialises writes to one WebSocket connection.
type wsConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handlePlan answers every text message with a planned move. The connection
// carries no session state; each message is an independent snapshot.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Plan upgrade failed: %v", err)
		return
	}

	wc := &wsConn{id: uuid.NewString(), conn: conn}
	if !s.register(s.plans, wc, "plan") {
		conn.Close()
		return
	}
	defer s.unregister(s.plans, wc.id, "plan")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Plan connection closed: %v", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := PlanJSON(s.planner, data)
		if resp.Error != "" {
			log.Printf("[WS] Plan request rejected: %s", resp.Error)
		}
		if err := wc.writeJSON(resp); err != nil {
			log.Printf("[WS] Plan write failed: %v", err)
			return
		}
	}
}

// handleState streams the session state after every tick.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] State upgrade failed: %v", err)
		return
	}

	// The initial state goes out before registering so no tick broadcast can precede it
	wc := &wsConn{id: uuid.NewString(), conn: conn}
	if err := wc.writeJSON(StateMsg{State: s.engine.GetStateCopy()}); err != nil {
		conn.Close()
		return
	}
	if !s.register(s.feeds, wc, "state") {
		conn.Close()
		return
	}
	defer s.unregister(s.feeds, wc.id, "state")

	// Drain until the peer goes away; the feed is write-only
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// register tracks wc so Stop can close it. It refuses once the server is stopping.
func (s *Server) register(conns map[string]*wsConn, wc *wsConn, kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	conns[wc.id] = wc
	log.Printf("[WS] %s connection attached: %s", kind, wc.id)
	return true
}

func (s *Server) unregister(conns map[string]*wsConn, id, kind string) {
	s.mu.Lock()
	if wc, ok := conns[id]; ok {
		wc.conn.Close()
		delete(conns, id)
		log.Printf("[WS] %s connection detached: %s", kind, id)
	}
	s.mu.Unlock()
}

func (s *Server) broadcastFeeds(state game.GameState) {
	s.mu.RLock()
	feeds := make([]*wsConn, 0, len(s.feeds))
	for _, wc := range s.feeds {
		feeds = append(feeds, wc)
	}
	s.mu.RUnlock()

	msg := StateMsg{State: state}
	for _, wc := range feeds {
		if err := wc.writeJSON(msg); err != nil {
			log.Printf("[WS] Failed to send state to %s: %v", wc.id, err)
			s.unregister(s.feeds, wc.id, "state")
		}
	}
}
