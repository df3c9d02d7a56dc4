package network

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/pathfind"
)

// Client attaches to a session server as a spectator. It receives state
// updates and can send control commands.
type Client struct {
	conn        net.Conn
	spectatorID string
	sessionID   string
	config      game.Config
	stateCh     chan game.GameState
	errCh       chan string
	done        chan struct{}
	mu          sync.Mutex
}

// NewClient connects to the server and completes the join handshake.
func NewClient(addr, name string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	c := &Client{
		conn:    conn,
		stateCh: make(chan game.GameState, 10),
		errCh:   make(chan string, 10),
		done:    make(chan struct{}),
	}

	if err := Encode(conn, MsgJoin, JoinMsg{Name: name}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send join: %w", err)
	}

	env, err := Decode(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}

	if env.Type == MsgError {
		var errMsg ErrorMsg
		DecodePayload(env, &errMsg)
		conn.Close()
		return nil, fmt.Errorf("server error: %s", errMsg.Message)
	}
	if env.Type != MsgWelcome {
		conn.Close()
		return nil, fmt.Errorf("expected welcome, got %s", env.Type)
	}

	var welcome WelcomeMsg
	if err := DecodePayload(env, &welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode welcome: %w", err)
	}

	c.spectatorID = welcome.SpectatorID
	c.sessionID = welcome.SessionID
	c.config = welcome.Config

	go c.receiveLoop()

	return c, nil
}

// SpectatorID returns the identifier assigned by the server.
func (c *Client) SpectatorID() string {
	return c.spectatorID
}

// SessionID returns the identifier of the joined session.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Config returns the session configuration received from the server.
func (c *Client) Config() game.Config {
	return c.config
}

// StateChan returns a channel that yields state updates. It is closed when
// the connection ends.
func (c *Client) StateChan() <-chan game.GameState {
	return c.stateCh
}

// Errors returns server error messages, e.g. rejected commands.
func (c *Client) Errors() <-chan string {
	return c.errCh
}

// Send sends a control command to the server.
func (c *Client) Send(msg CommandMsg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Encode(c.conn, MsgCommand, msg)
}

// Steer asks for a manual direction change.
func (c *Client) Steer(dir pathfind.Direction) error {
	return c.Send(CommandMsg{Command: CommandSteer, Direction: dir})
}

// Close disconnects from the server.
func (c *Client) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.conn.Close()
}

func (c *Client) receiveLoop() {
	defer close(c.stateCh)

	for {
		select {
		case <-c.done:
			return
		default:
		}

		env, err := Decode(c.conn)
		if err != nil {
			return
		}

		switch env.Type {
		case MsgState:
			var stateMsg StateMsg
			if err := DecodePayload(env, &stateMsg); err != nil {
				continue
			}
			// Drop the oldest state if the consumer is slow; the latest matters most
			select {
			case c.stateCh <- stateMsg.State:
			default:
				select {
				case <-c.stateCh:
				default:
				}
				c.stateCh <- stateMsg.State
			}
		case MsgError:
			var errMsg ErrorMsg
			if err := DecodePayload(env, &errMsg); err != nil {
				continue
			}
			select {
			case c.errCh <- errMsg.Message:
			default:
			}
		}
	}
}
