// Package observability exposes curio's Prometheus metrics and the
// in-memory toast feed of recently unlocked achievements.
//
// Metrics implements progression.Observer and session.Observer so the
// engine and the session manager report without importing Prometheus.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/curio-cabinet/curio/internal/domain"
)

const namespace = "curio"

// ═══════════════════════════════════════════════════════════════════════════
// Metrics
// ═══════════════════════════════════════════════════════════════════════════

// Metrics owns a private registry so tests and multiple servers never
// collide on the global default registerer.
type Metrics struct {
	reg *prometheus.Registry

	// ─── Checker Metrics ────────────────────────────────────────────────
	ChecksTotal *prometheus.CounterVec

	// ─── Progression Metrics ────────────────────────────────────────────
	CompletionsTotal     *prometheus.CounterVec
	XPAwardedTotal       *prometheus.CounterVec
	AchievementsUnlocked *prometheus.CounterVec
	CurrentStreak        prometheus.Gauge
	CurrentLevel         prometheus.Gauge

	// ─── Session Metrics ────────────────────────────────────────────────
	SessionsOpen   prometheus.Gauge
	SessionsClosed *prometheus.CounterVec

	// ─── HTTP Metrics ───────────────────────────────────────────────────
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,

		ChecksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checker",
			Name:      "checks_total",
			Help:      "Puzzle checks by module and outcome (correct, partial, incorrect, invalid).",
		}, []string{"module", "outcome"}),

		CompletionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "module_completions_total",
			Help:      "Module completions, split by first completion or replay.",
		}, []string{"module", "first"}),

		XPAwardedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "xp_awarded_total",
			Help:      "XP awarded by source.",
		}, []string{"source"}),

		AchievementsUnlocked: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked by id and rarity.",
		}, []string{"achievement", "rarity"}),

		CurrentStreak: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "current_streak_days",
			Help:      "Current daily streak.",
		}),

		CurrentLevel: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "level",
			Help:      "Current learner level.",
		}),

		SessionsOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "open",
			Help:      "Completion sessions currently open.",
		}),

		SessionsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "closed_total",
			Help:      "Completion sessions closed by reason (closed, expired).",
		}, []string{"reason"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),

		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"method", "route"}),
	}
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ─── Checker ────────────────────────────────────────────────────────────────

// ObserveCheck records one checker invocation.
func (m *Metrics) ObserveCheck(module string, r domain.CheckResult) {
	m.ChecksTotal.WithLabelValues(module, r.Outcome()).Inc()
}

// ObserveInvalidCheck records a check whose state could not be decoded.
func (m *Metrics) ObserveInvalidCheck(module string) {
	m.ChecksTotal.WithLabelValues(module, "invalid").Inc()
}

// ─── progression.Observer ───────────────────────────────────────────────────

func (m *Metrics) ModuleCompleted(moduleID string, first bool) {
	m.CompletionsTotal.WithLabelValues(moduleID, strconv.FormatBool(first)).Inc()
}

func (m *Metrics) XPAwarded(source domain.XPSource, amount int64) {
	m.XPAwardedTotal.WithLabelValues(string(source)).Add(float64(amount))
}

func (m *Metrics) AchievementUnlocked(id string, rarity domain.Rarity) {
	m.AchievementsUnlocked.WithLabelValues(id, string(rarity)).Inc()
}

func (m *Metrics) StreakUpdated(days int) { m.CurrentStreak.Set(float64(days)) }

func (m *Metrics) LevelChanged(level int) { m.CurrentLevel.Set(float64(level)) }

// ─── session.Observer ───────────────────────────────────────────────────────

func (m *Metrics) SessionOpened(string) { m.SessionsOpen.Inc() }

func (m *Metrics) SessionClosed(reason string) {
	m.SessionsOpen.Dec()
	m.SessionsClosed.WithLabelValues(reason).Inc()
}

// ─── HTTP ───────────────────────────────────────────────────────────────────

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
