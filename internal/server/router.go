package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/registry"
	"github.com/vovakirdan/tui-skybattle/internal/storage"
)

// LevelSource is the level catalog used by the API.
type LevelSource interface {
	List() []registry.LevelInfo
	Lookup(id string) (level.Definition, error)
}

// TimeSource is the best-time store used by the API.
type TimeSource interface {
	BestTime(levelID string) (float64, bool, error)
	BestTimes() ([]storage.BestTimeEntry, error)
	RecentAttempts(levelID string, limit int) ([]storage.Attempt, error)
	GetLevelStats(levelID string) (*storage.LevelStats, error)
}

// RouterConfig contains the dependencies of the HTTP router.
type RouterConfig struct {
	// Levels is the level catalog (required).
	Levels LevelSource

	// Times is optional; without it the times endpoints return 503.
	Times TimeSource

	// Hub serves /ws and /api/sessions (required).
	Hub *Hub

	// Metrics serves /metrics (required).
	Metrics *Metrics

	// RateLimit overrides DefaultRateLimitConfig.
	RateLimit *RateLimitConfig

	// CORSOrigins lists the origins allowed to call the API. Nil allows
	// localhost only.
	CORSOrigins []string

	Logger *log.Logger
}

const maxAttemptsLimit = 100

type routerHandlers struct {
	levels LevelSource
	times  TimeSource
	hub    *Hub
}

// NewRouter builds the HTTP router. It starts no goroutines and opens no
// listeners, so tests can wrap it in httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	rlCfg := DefaultRateLimitConfig
	if cfg.RateLimit != nil {
		rlCfg = *cfg.RateLimit
	}
	limiter := NewIPRateLimiter(rlCfg, func() { cfg.Metrics.RecordRejected("rate_limit") })
	r.Use(limiter.Middleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &routerHandlers{levels: cfg.Levels, times: cfg.Times, hub: cfg.Hub}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // Best-effort body
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/ws", cfg.Hub.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/levels", h.handleListLevels)
		r.Get("/levels/{level}", h.handleGetLevel)
		r.Get("/times", h.handleListTimes)
		r.Get("/times/{level}", h.handleLevelTimes)
		r.Get("/sessions", h.handleListSessions)
		r.Get("/sessions/{session}", h.handleGetSession)
	})

	return r
}

// requestLogger logs each request with charmbracelet/log.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (h *routerHandlers) handleListLevels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.levels.List())
}

func (h *routerHandlers) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	def, err := h.levels.Lookup(chi.URLParam(r, "level"))
	if err != nil {
		if errors.Is(err, registry.ErrUnknownLevel) {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, levelDetail{
		ID:            def.ID,
		Title:         def.Title(),
		Next:          def.Next,
		Goal:          def.Goal,
		KillTarget:    def.KillTarget,
		Waves:         len(def.Waves),
		Allies:        len(def.Allies),
		PlayerHealth:  def.PlayerHealth,
		ShieldCharges: def.ShieldCharges,
	})
}

type levelDetail struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Next          string     `json:"next,omitempty"`
	Goal          level.Goal `json:"goal"`
	KillTarget    int        `json:"kill_target,omitempty"`
	Waves         int        `json:"waves"`
	Allies        int        `json:"allies"`
	PlayerHealth  int        `json:"player_health"`
	ShieldCharges int        `json:"shield_charges"`
}

func (h *routerHandlers) handleListTimes(w http.ResponseWriter, _ *http.Request) {
	if h.times == nil {
		writeError(w, "no database", http.StatusServiceUnavailable)
		return
	}
	entries, err := h.times.BestTimes()
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []storage.BestTimeEntry{}
	}
	writeJSON(w, entries)
}

type levelTimes struct {
	Level    string              `json:"level"`
	Best     *float64            `json:"best"`
	Stats    *storage.LevelStats `json:"stats"`
	Attempts []storage.Attempt   `json:"attempts"`
}

func (h *routerHandlers) handleLevelTimes(w http.ResponseWriter, r *http.Request) {
	if h.times == nil {
		writeError(w, "no database", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "level")
	if _, err := h.levels.Lookup(id); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxAttemptsLimit)
	}

	out := levelTimes{Level: id, Attempts: []storage.Attempt{}}
	best, ok, err := h.times.BestTime(id)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ok {
		out.Best = &best
	}
	if out.Stats, err = h.times.GetLevelStats(id); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	attempts, err := h.times.RecentAttempts(id, limit)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if attempts != nil {
		out.Attempts = attempts
	}
	writeJSON(w, out)
}

func (h *routerHandlers) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.hub.Sessions())
}

func (h *routerHandlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.hub.Session(chi.URLParam(r, "session"))
	if !ok {
		writeError(w, "unknown session", http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck // Client went away
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	//nolint:errcheck // Client went away
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
