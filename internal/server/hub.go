package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-skybattle/internal/level"
)

const (
	// MaxSpectators is the maximum number of websocket connections.
	MaxSpectators = 200

	// DefaultSnapshotRate is how many snapshots per second each attempt
	// sends to spectators.
	DefaultSnapshotRate = 10.0

	writeWait = 5 * time.Second
)

// Event is a message of the spectator feed.
type Event struct {
	Event   string `json:"event"` // "snapshot", "finish" or "closed"
	Session string `json:"session"`
	Data    any    `json:"data,omitempty"`
}

// SessionInfo describes a running attempt.
type SessionInfo struct {
	Session string         `json:"session"`
	Level   string         `json:"level"`
	State   string         `json:"state"`
	Kills   int            `json:"kills"`
	Health  int            `json:"health"`
	Elapsed float64        `json:"elapsed"`
	Result  *level.Result  `json:"result,omitempty"`
	Updated time.Time      `json:"updated"`
	Last    level.Snapshot `json:"-"`
}

type spectator struct {
	conn *websocket.Conn
	send chan []byte
	// session filters the feed; empty follows every session.
	session string
}

// Hub fans attempt snapshots out to websocket spectators.
type Hub struct {
	mu         sync.RWMutex
	spectators map[*spectator]struct{}
	sessions   map[string]*SessionInfo

	rate          rate.Limit
	maxSpectators int
	metrics       *Metrics
	logger        *log.Logger
	upgrader      websocket.Upgrader
}

// NewHub creates a hub. Each attempt broadcasts at most snapshotRate
// snapshots per second; finish events are never throttled.
func NewHub(snapshotRate float64, metrics *Metrics, logger *log.Logger) *Hub {
	if snapshotRate <= 0 {
		snapshotRate = DefaultSnapshotRate
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		spectators:    make(map[*spectator]struct{}),
		sessions:      make(map[string]*SessionInfo),
		rate:          rate.Limit(snapshotRate),
		maxSpectators: MaxSpectators,
		metrics:       metrics,
		logger:        logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Read-only feed; any page may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Observer returns a level.Observer that publishes one attempt under the
// session name.
func (h *Hub) Observer(session string) level.Observer {
	return &feed{
		hub:     h,
		session: session,
		limiter: rate.NewLimiter(h.rate, 1),
	}
}

// Sessions lists the running attempts sorted by session name.
func (h *Hub) Sessions() []SessionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]SessionInfo, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Session < out[j].Session })
	return out
}

// Session returns the latest snapshot of a running attempt.
func (h *Hub) Session(session string) (level.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[session]
	if !ok {
		return level.Snapshot{}, false
	}
	return s.Last, true
}

// SpectatorCount returns the number of connected spectators.
func (h *Hub) SpectatorCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.spectators)
}

func (h *Hub) update(session string, snap level.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	info, ok := h.sessions[session]
	if !ok {
		info = &SessionInfo{Session: session}
		h.sessions[session] = info
	}
	info.Level = snap.Level
	info.State = snap.State
	info.Kills = snap.Kills
	info.Health = snap.Health
	info.Elapsed = snap.Elapsed
	info.Result = snap.Result
	info.Updated = time.Now()
	info.Last = snap
}

func (h *Hub) finish(session string, r level.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if info, ok := h.sessions[session]; ok {
		info.Result = &r
		info.Kills = r.Kills
		info.Elapsed = r.Elapsed
		info.Updated = time.Now()
	}
}

func (h *Hub) remove(session string) {
	h.mu.Lock()
	delete(h.sessions, session)
	h.mu.Unlock()
}

// broadcast queues an event for every matching spectator. Slow
// spectators miss events instead of blocking the simulation.
func (h *Hub) broadcast(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("cannot encode event", "event", ev.Event, "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sp := range h.spectators {
		if sp.session != "" && sp.session != ev.Session {
			continue
		}
		select {
		case sp.send <- msg:
			if h.metrics != nil {
				h.metrics.wsMessages.Inc()
			}
		default:
		}
	}
}

// HandleWebSocket upgrades a spectator connection. The optional session
// query parameter restricts the feed to one attempt.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Cheap rejection before the upgrade. register enforces the cap.
	if h.SpectatorCount() >= h.maxSpectators {
		h.rejectSpectator()
		http.Error(w, "Too many spectators", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	sp := &spectator{
		conn:    conn,
		send:    make(chan []byte, 64),
		session: r.URL.Query().Get("session"),
	}
	count, ok := h.register(sp)
	if !ok {
		h.rejectSpectator()
		//nolint:errcheck // Best-effort close frame
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many spectators"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Debug("spectator connected", "remote", conn.RemoteAddr().String(), "total", count)

	go h.writeLoop(sp)
	go h.readLoop(sp)
}

// register adds sp unless the hub is full. The check and the insert
// happen under one lock.
func (h *Hub) register(sp *spectator) (int, bool) {
	h.mu.Lock()
	if len(h.spectators) >= h.maxSpectators {
		h.mu.Unlock()
		return 0, false
	}
	h.spectators[sp] = struct{}{}
	count := len(h.spectators)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.wsConnections.Set(float64(count))
	}
	return count, true
}

func (h *Hub) rejectSpectator() {
	if h.metrics != nil {
		h.metrics.RecordRejected("ws_limit")
	}
}

func (h *Hub) unregister(sp *spectator) {
	h.mu.Lock()
	if _, ok := h.spectators[sp]; ok {
		delete(h.spectators, sp)
		close(sp.send)
	}
	count := len(h.spectators)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.wsConnections.Set(float64(count))
	}
	h.logger.Debug("spectator disconnected", "total", count)
}

// readLoop discards client messages and unregisters on disconnect.
func (h *Hub) readLoop(sp *spectator) {
	defer h.unregister(sp)
	for {
		if _, _, err := sp.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(sp *spectator) {
	defer sp.conn.Close()
	for msg := range sp.send {
		//nolint:errcheck // A failed deadline surfaces as a write error
		sp.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sp.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	//nolint:errcheck // Best-effort close frame
	sp.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	spectators := make([]*spectator, 0, len(h.spectators))
	for sp := range h.spectators {
		spectators = append(spectators, sp)
	}
	h.mu.Unlock()

	for _, sp := range spectators {
		sp.conn.Close()
	}
}

// feed publishes one attempt.
type feed struct {
	hub     *Hub
	session string
	limiter *rate.Limiter
}

func (f *feed) OnTick(s level.Snapshot, _ level.TickStats) {
	f.hub.update(f.session, s)
	if !f.limiter.Allow() {
		return
	}
	f.hub.broadcast(Event{Event: "snapshot", Session: f.session, Data: s})
}

func (f *feed) OnFinish(r level.Result) {
	f.hub.finish(f.session, r)
	f.hub.broadcast(Event{Event: "finish", Session: f.session, Data: r})
}

// OnClose implements level.CloseObserver.
func (f *feed) OnClose(string) {
	f.hub.remove(f.session)
	f.hub.broadcast(Event{Event: "closed", Session: f.session})
}
