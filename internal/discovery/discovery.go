package discovery

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sort"
	"sync"
	"time"
)

const (
	// AdvertisePort is the UDP port sessions are announced on.
	AdvertisePort = 9998
	// AdvertiseInterval is how often a host re-announces its session.
	AdvertiseInterval = 1 * time.Second
	// SessionExpiry is how long a session stays listed after its last announcement.
	SessionExpiry = 4 * time.Second
)

// SessionInfo describes a running autopilot session on the network.
type SessionInfo struct {
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name"`
	HostName    string `json:"host_name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Spectators  int    `json:"spectators"`
	GameAddr    string `json:"game_addr"`         // TCP host:port for spectators
	WSAddr      string `json:"ws_addr,omitempty"` // host:port of the WebSocket endpoints
}

// Advertiser periodically announces a session over UDP.
type Advertiser struct {
	info SessionInfo
	done chan struct{}
	mu   sync.Mutex
}

// NewAdvertiser creates an advertiser for the given session.
func NewAdvertiser(info SessionInfo) *Advertiser {
	return &Advertiser{
		info: info,
		done: make(chan struct{}),
	}
}

// UpdateSpectators updates the advertised spectator count.
func (a *Advertiser) UpdateSpectators(count int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.info.Spectators = count
}

// Info returns the currently advertised session.
func (a *Advertiser) Info() SessionInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info
}

// Start begins announcing in the background.
func (a *Advertiser) Start() error {
	// ListenPacket rather than DialUDP: Linux needs SO_BROADCAST for 255.255.255.255.
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("open advertise socket: %w", err)
	}
	go a.advertiseLoop(conn)
	return nil
}

// Stop stops announcing. Safe to call more than once.
func (a *Advertiser) Stop() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
}

func (a *Advertiser) advertiseLoop(conn net.PacketConn) {
	defer conn.Close()

	ticker := time.NewTicker(AdvertiseInterval)
	defer ticker.Stop()

	a.announce(conn)
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.announce(conn)
		}
	}
}

func (a *Advertiser) announce(conn net.PacketConn) {
	data, err := json.Marshal(a.Info())
	if err != nil {
		log.Printf("[DISCOVERY] Failed to encode session: %v", err)
		return
	}

	// Loopback first: the global broadcast is often filtered on the same host
	conn.WriteTo(data, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: AdvertisePort})
	conn.WriteTo(data, &net.UDPAddr{IP: net.IPv4bcast, Port: AdvertisePort})

	for _, dst := range interfaceBroadcasts() {
		conn.WriteTo(data, &net.UDPAddr{IP: dst, Port: AdvertisePort})
	}
}

// interfaceBroadcasts lists the directed broadcast address of every IPv4
// interface that is up and supports broadcast.
func interfaceBroadcasts() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	var out []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if b := broadcastAddr(ipnet); b != nil {
				out = append(out, b)
			}
		}
	}
	return out
}

// broadcastAddr returns IP | ^Mask for an IPv4 network, nil otherwise.
func broadcastAddr(ipnet *net.IPNet) net.IP {
	ip4 := ipnet.IP.To4()
	if ip4 == nil || len(ipnet.Mask) != net.IPv4len {
		return nil
	}
	b := make(net.IP, net.IPv4len)
	for i := range b {
		b[i] = ip4[i] | ^ipnet.Mask[i]
	}
	return b
}

// seenSession holds a session and when it was last announced.
type seenSession struct {
	info     SessionInfo
	lastSeen time.Time
}

// Listener collects session announcements.
type Listener struct {
	sessions map[string]seenSession // keyed by SessionID
	mu       sync.RWMutex
	conn     *net.UDPConn
	done     chan struct{}
}

// NewListener creates a new session listener.
func NewListener() *Listener {
	return &Listener{
		sessions: make(map[string]seenSession),
		done:     make(chan struct{}),
	}
}

// Start begins listening for announcements.
func (l *Listener) Start() error {
	var err error
	l.conn, err = net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: AdvertisePort})
	if err != nil {
		return fmt.Errorf("listen UDP on port %d: %w (is another instance browsing?)", AdvertisePort, err)
	}

	go l.listenLoop()
	go l.expireLoop()

	return nil
}

// Stop stops the listener.
func (l *Listener) Stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
	if l.conn != nil {
		l.conn.Close()
	}
}

// Sessions returns the visible sessions ordered by name, then ID.
func (l *Listener) Sessions() []SessionInfo {
	l.mu.RLock()
	out := make([]SessionInfo, 0, len(l.sessions))
	for _, s := range l.sessions {
		out = append(out, s.info)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionName != out[j].SessionName {
			return out[i].SessionName < out[j].SessionName
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out
}

// record stores an announcement. Packets without a session ID or address are ignored.
func (l *Listener) record(data []byte, now time.Time) bool {
	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return false
	}
	if info.SessionID == "" || info.GameAddr == "" {
		return false
	}

	l.mu.Lock()
	l.sessions[info.SessionID] = seenSession{info: info, lastSeen: now}
	l.mu.Unlock()
	return true
}

// expire drops sessions not announced within SessionExpiry of now.
func (l *Listener) expire(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, s := range l.sessions {
		if now.Sub(s.lastSeen) > SessionExpiry {
			delete(l.sessions, id)
		}
	}
}

func (l *Listener) listenLoop() {
	buf := make([]byte, 4096)
	for {
		select {
		case <-l.done:
			return
		default:
		}

		l.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}
		l.record(buf[:n], time.Now())
	}
}

func (l *Listener) expireLoop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.expire(now)
		}
	}
}
