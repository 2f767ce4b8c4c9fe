package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-skybattle/internal/collision"
	"github.com/vovakirdan/tui-skybattle/internal/entity"
	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/registry"
	"github.com/vovakirdan/tui-skybattle/internal/storage"
)

func testCatalog(t *testing.T) *registry.Catalog {
	t.Helper()
	c, err := registry.New(
		level.Definition{ID: "one", Name: "One", Next: "two", PlayerHealth: 5, Goal: level.GoalKills, KillTarget: 10},
		level.Definition{ID: "two", Name: "Two", PlayerHealth: 5, Goal: level.GoalKills, KillTarget: 20},
	)
	require.NoError(t, err)
	return c
}

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// newTestServer returns a server with a generous rate limit. times may be
// nil.
func newTestServer(t *testing.T, times TimeSource, snapshotRate float64) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{SnapshotRate: snapshotRate}, testCatalog(t), times, nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil, 0)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestListLevels(t *testing.T) {
	_, ts := newTestServer(t, nil, 0)

	var levels []registry.LevelInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/levels", &levels))
	require.Len(t, levels, 2)
	assert.Equal(t, "one", levels[0].ID)
	assert.Equal(t, "two", levels[0].Next)
}

func TestGetLevel(t *testing.T) {
	_, ts := newTestServer(t, nil, 0)

	var detail levelDetail
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/levels/two", &detail))
	assert.Equal(t, "Two", detail.Title)
	assert.Equal(t, 20, detail.KillTarget)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/levels/nope", nil))
}

func TestTimesWithoutStore(t *testing.T) {
	_, ts := newTestServer(t, nil, 0)

	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/api/times", nil))
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/api/times/one", nil))
}

func TestLevelTimes(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetBestTime("one", 42.5))
	_, err := store.RecordAttempt(level.Result{Level: "one", Won: true, Elapsed: 42.5, Kills: 10})
	require.NoError(t, err)
	_, err = store.RecordAttempt(level.Result{Level: "one", Won: false, Elapsed: 12, Kills: 3})
	require.NoError(t, err)

	_, ts := newTestServer(t, store, 0)

	var out levelTimes
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/times/one", &out))
	require.NotNil(t, out.Best)
	assert.InDelta(t, 42.5, *out.Best, 1e-9)
	assert.Len(t, out.Attempts, 2)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 2, out.Stats.Attempts)
	assert.Equal(t, 1, out.Stats.Wins)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/times/one?limit=1", &out))
	assert.Len(t, out.Attempts, 1)

	var empty levelTimes
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/times/two", &empty))
	assert.Nil(t, empty.Best)
	assert.Empty(t, empty.Attempts)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/times/one?limit=x", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/times/nope", nil))

	var all []storage.BestTimeEntry
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/times", &all))
	require.Len(t, all, 1)
	assert.Equal(t, "one", all[0].LevelID)
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetrics()
	obs := m.Observer()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))

	snap := level.Snapshot{Entities: []level.EntityView{
		{ID: 1, Faction: entity.Player},
		{ID: 2, Faction: entity.Enemy},
		{ID: 3, Faction: entity.Enemy},
	}}
	obs.OnTick(snap, level.TickStats{Collisions: collision.Report{Kills: 2, Penetrations: 1}, Duration: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.kills))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.penetrations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.entities.WithLabelValues(entity.Enemy.String())))

	obs.OnFinish(level.Result{Won: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("won")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.entities.WithLabelValues(entity.Enemy.String())))

	// Closing a finished attempt does not count it twice.
	obs.(level.CloseObserver).OnClose("")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.attempts.WithLabelValues("abandoned")))
}

func TestMetricsAbandonedAttempt(t *testing.T) {
	m := NewMetrics()
	obs := m.Observer()
	obs.(level.CloseObserver).OnClose("one")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("abandoned")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeSessions))
}

func TestMetricsEndpoint(t *testing.T) {
	s, ts := newTestServer(t, nil, 0)
	s.Observe("alice").OnFinish(level.Result{Won: false})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), `skybattle_attempts_total{outcome="lost"} 1`)
}

func TestSessionsEndpoint(t *testing.T) {
	s, ts := newTestServer(t, nil, 0)
	obs := s.Observe("alice")
	obs.OnTick(level.Snapshot{Level: "one", State: "none", Kills: 4, Health: 3}, level.TickStats{})

	var sessions []SessionInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/sessions", &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "alice", sessions[0].Session)
	assert.Equal(t, 4, sessions[0].Kills)

	var snap level.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/sessions/alice", &snap))
	assert.Equal(t, "one", snap.Level)

	obs.(level.CloseObserver).OnClose("one")
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/sessions/alice", nil))
}

func dialFeed(t *testing.T, s *Server, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return s.Hub().SpectatorCount() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebSocketFeedThrottlesSnapshots(t *testing.T) {
	// One snapshot per 1000 s: only the first tick gets through.
	s, ts := newTestServer(t, nil, 0.001)
	conn := dialFeed(t, s, ts, "")

	obs := s.Observe("alice")
	obs.OnTick(level.Snapshot{Level: "one", Tick: 1}, level.TickStats{})
	obs.OnTick(level.Snapshot{Level: "one", Tick: 2}, level.TickStats{})
	obs.OnFinish(level.Result{Level: "one", Won: true})

	ev := readEvent(t, conn)
	assert.Equal(t, "snapshot", ev.Event)
	assert.Equal(t, "alice", ev.Session)

	ev = readEvent(t, conn)
	assert.Equal(t, "finish", ev.Event, "second snapshot should have been throttled")
}

func TestWebSocketFeedFiltersSession(t *testing.T) {
	s, ts := newTestServer(t, nil, 0)
	conn := dialFeed(t, s, ts, "?session=bob")

	s.Observe("alice").OnFinish(level.Result{Level: "one"})
	s.Observe("bob").OnFinish(level.Result{Level: "two"})

	ev := readEvent(t, conn)
	assert.Equal(t, "bob", ev.Session)
}

func TestRateLimiter(t *testing.T) {
	rejected := 0
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}, func() { rejected++ })
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, 1, rejected)

	// Another client has its own bucket.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.1")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSpectatorCapHoldsUnderConcurrentRegistration(t *testing.T) {
	h := NewHub(0, nil, nil)
	h.maxSpectators = 10

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := h.register(&spectator{send: make(chan []byte, 1)}); ok {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), accepted.Load())
	assert.Equal(t, 10, h.SpectatorCount())
}

func TestWebSocketRejectsSpectatorsOverCap(t *testing.T) {
	s, ts := newTestServer(t, nil, 0)
	s.Hub().maxSpectators = 1
	dialFeed(t, s, ts, "")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("second spectator should be refused")
	}
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 1, s.Hub().SpectatorCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics().rejected.WithLabelValues("ws_limit")))
}
