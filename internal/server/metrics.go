// Package server exposes running attempts over HTTP: Prometheus metrics,
// a JSON API for levels and best times, and a websocket spectator feed.
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// Metrics with bounded cardinality: no per-session or per-player labels.
type Metrics struct {
	registry *prometheus.Registry

	tickDuration   prometheus.Histogram
	entities       *prometheus.GaugeVec
	activeSessions prometheus.Gauge
	kills          prometheus.Counter
	penetrations   prometheus.Counter
	playerHits     prometheus.Counter
	absorbed       prometheus.Counter
	attempts       *prometheus.CounterVec

	wsConnections prometheus.Gauge
	wsMessages    prometheus.Counter
	rejected      *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "skybattle_tick_duration_seconds",
			Help:    "Time spent in a simulation tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		entities: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "skybattle_entities",
			Help: "Live entities across running attempts",
		}, []string{"faction"}), // Bounded: the six factions
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "skybattle_active_attempts",
			Help: "Attempts currently running",
		}),
		kills: f.NewCounter(prometheus.CounterOpts{
			Name: "skybattle_kills_total",
			Help: "Enemies destroyed by the player's side",
		}),
		penetrations: f.NewCounter(prometheus.CounterOpts{
			Name: "skybattle_penetrations_total",
			Help: "Enemies that crossed the left edge",
		}),
		playerHits: f.NewCounter(prometheus.CounterOpts{
			Name: "skybattle_player_hits_total",
			Help: "Hostile projectiles that struck the player",
		}),
		absorbed: f.NewCounter(prometheus.CounterOpts{
			Name: "skybattle_shield_absorbed_total",
			Help: "Hits absorbed by shields",
		}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skybattle_attempts_total",
			Help: "Finished attempts",
		}, []string{"outcome"}), // Bounded: "won", "lost", "abandoned"
		wsConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "skybattle_websocket_connections_active",
			Help: "Currently connected spectators",
		}),
		wsMessages: f.NewCounter(prometheus.CounterOpts{
			Name: "skybattle_websocket_messages_total",
			Help: "Messages broadcast to spectators",
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skybattle_requests_rejected_total",
			Help: "Requests rejected by the rate limiter or connection limits",
		}, []string{"reason"}), // Bounded: "rate_limit", "ws_limit"
	}
}

// Registry returns the registry serving /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observer returns a level.Observer that records one attempt.
func (m *Metrics) Observer() level.Observer {
	m.activeSessions.Inc()
	return &attemptMetrics{m: m, counts: make(map[string]int)}
}

// RecordRejected increments the rejection counter.
func (m *Metrics) RecordRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// attemptMetrics keeps the entity counts it last reported so gauges
// stay correct with several attempts running.
type attemptMetrics struct {
	m        *Metrics
	counts   map[string]int
	finished bool
}

func (a *attemptMetrics) OnTick(s level.Snapshot, stats level.TickStats) {
	if a.finished {
		return
	}
	a.m.tickDuration.Observe(stats.Duration.Seconds())

	r := stats.Collisions
	a.m.kills.Add(float64(r.Kills))
	a.m.penetrations.Add(float64(r.Penetrations))
	a.m.playerHits.Add(float64(r.PlayerHits))
	a.m.absorbed.Add(float64(r.Absorbed))

	counts := make(map[string]int, len(a.counts))
	for _, e := range s.Entities {
		counts[e.Faction.String()]++
	}
	a.setCounts(counts)
}

func (a *attemptMetrics) OnFinish(r level.Result) {
	outcome := "lost"
	if r.Won {
		outcome = "won"
	}
	a.end(outcome)
}

// OnClose implements level.CloseObserver.
func (a *attemptMetrics) OnClose(string) {
	a.end("abandoned")
}

func (a *attemptMetrics) end(outcome string) {
	if a.finished {
		return
	}
	a.finished = true
	a.m.attempts.WithLabelValues(outcome).Inc()
	a.m.activeSessions.Dec()
	a.setCounts(nil)
}

func (a *attemptMetrics) setCounts(counts map[string]int) {
	for f, n := range a.counts {
		a.m.entities.WithLabelValues(f).Sub(float64(n))
	}
	for f, n := range counts {
		a.m.entities.WithLabelValues(f).Add(float64(n))
	}
	a.counts = counts
}
