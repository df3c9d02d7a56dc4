package network

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-snakepilot/internal/game"
	"github.com/amalg/go-snakepilot/internal/pathfind"
)

func testConfig() game.Config {
	config := game.DefaultConfig()
	config.Width = 10
	config.Height = 10
	config.TickRate = 50
	config.Seed = 7
	return config
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPlanEndpoint(t *testing.T) {
	s := NewServer("127.0.0.1:0", "", testConfig())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/plan")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{
		"board": {"posX": 10, "posY": 10, "blockSize": 50},
		"snake": {"x": 200, "y": 200, "speedX": 0, "speedY": 0, "body": []},
		"food":  {"x": 250, "y": 200}
	}`)))
	var resp PlanResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, pathfind.Right, resp.Direction)

	// Bad requests are answered, not dropped
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{}`)))
	resp = PlanResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "invalid board: expected object", resp.Error)
}

func TestStateEndpointSendsInitialState(t *testing.T) {
	s := NewServer("127.0.0.1:0", "", testConfig())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv, "/ws/state")

	var msg StateMsg
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, 10, msg.State.Width)
	assert.Equal(t, 10, msg.State.Height)
	assert.Equal(t, 0, msg.State.Score)
}

func TestServerClientSession(t *testing.T) {
	s := NewServer("127.0.0.1:0", "", testConfig())
	require.NoError(t, s.Start())
	defer s.Stop()

	c, err := NewClient(s.Addr(), "tester")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, s.SessionID(), c.SessionID())
	assert.NotEmpty(t, c.SpectatorID())
	assert.Equal(t, 10, c.Config().Width)

	select {
	case state := <-c.StateChan():
		assert.Equal(t, 10, state.Width)
	case <-time.After(2 * time.Second):
		t.Fatal("no state received")
	}

	// Rejected commands come back as error messages
	require.NoError(t, c.Send(CommandMsg{Command: "teleport"}))
	select {
	case msg := <-c.Errors():
		assert.Contains(t, msg, "teleport")
	case <-time.After(2 * time.Second):
		t.Fatal("no error received")
	}

	require.NoError(t, c.Send(CommandMsg{Command: CommandPause}))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-c.StateChan():
			if state.Status == game.StatusPaused {
				return
			}
		case <-deadline:
			t.Fatal("session never paused")
		}
	}
}

func startHTTPServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", "127.0.0.1:0", testConfig())
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s
}

func dialAddr(t *testing.T, addr, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStateEndpointStreamsTicks(t *testing.T) {
	s := startHTTPServer(t)
	conn := dialAddr(t, s.HTTPAddr(), "/ws/state")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	var first StateMsg
	require.NoError(t, conn.ReadJSON(&first))

	last := first.State.Tick
	for i := 0; i < 2; i++ {
		var msg StateMsg
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Greater(t, msg.State.Tick, last)
		last = msg.State.Tick
	}
	assert.Equal(t, 1, s.SpectatorCount())

	// A feed whose peer is gone is dropped
	conn.Close()
	assert.Eventually(t, func() bool { return s.SpectatorCount() == 0 }, 2*time.Second, 20*time.Millisecond)
}

func TestStopClosesWebSocketConnections(t *testing.T) {
	s := startHTTPServer(t)
	plan := dialAddr(t, s.HTTPAddr(), "/ws/plan")
	feed := dialAddr(t, s.HTTPAddr(), "/ws/state")

	// Confirm both handlers are running before stopping
	require.NoError(t, plan.WriteMessage(websocket.TextMessage, []byte(`{}`)))
	var resp PlanResponse
	require.NoError(t, plan.ReadJSON(&resp))
	var initial StateMsg
	require.NoError(t, feed.ReadJSON(&initial))

	s.Stop()

	request := []byte(`{
		"board": {"posX": 10, "posY": 10, "blockSize": 50},
		"snake": {"x": 200, "y": 200, "speedX": 0, "speedY": 0, "body": []},
		"food":  {"x": 200, "y": 150}
	}`)
	require.NoError(t, plan.SetReadDeadline(time.Now().Add(2*time.Second)))
	plan.WriteMessage(websocket.TextMessage, request)
	_, _, err := plan.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "plan connection still open after Stop")
	}

	require.NoError(t, feed.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := feed.ReadMessage(); err != nil {
			if errors.As(err, &netErr) {
				assert.False(t, netErr.Timeout(), "state feed still open after Stop")
			}
			break
		}
	}
}

func TestStopRemovesSpectators(t *testing.T) {
	s := NewServer("127.0.0.1:0", "", testConfig())
	require.NoError(t, s.Start())

	c, err := NewClient(s.Addr(), "tester")
	require.NoError(t, err)
	defer c.Close()
	assert.Eventually(t, func() bool { return s.SpectatorCount() == 1 }, 2*time.Second, 20*time.Millisecond)

	s.Stop()
	assert.Eventually(t, func() bool { return s.SpectatorCount() == 0 }, 2*time.Second, 20*time.Millisecond)
}
