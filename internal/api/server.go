// Package api provides the HTTP server for curio: module catalog, puzzle
// checks, completion sessions, progression and the glossary.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/curio-cabinet/curio/internal/app/glossary"
	"github.com/curio-cabinet/curio/internal/app/progression"
	"github.com/curio-cabinet/curio/internal/app/registry"
	"github.com/curio-cabinet/curio/internal/app/session"
	"github.com/curio-cabinet/curio/internal/domain"
	"github.com/curio-cabinet/curio/internal/infra/logger"
	"github.com/curio-cabinet/curio/internal/infra/observability"
)

// Version is reported by /api/version.
const Version = "0.3.0"

// maxStateBytes caps puzzle state and other request bodies.
const maxStateBytes = 1 << 20

// Server is the curio HTTP API server.
type Server struct {
	modules  *registry.Registry
	engine   *progression.Engine
	sessions *session.Manager
	glossary *glossary.Glossary
	log      *logger.Logger

	metrics *observability.Metrics // nil when /metrics is disabled
	feed    *observability.Feed    // nil when toasts are not collected
}

// NewServer creates a new API server.
func NewServer(modules *registry.Registry, engine *progression.Engine, sessions *session.Manager, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		modules:  modules,
		engine:   engine,
		sessions: sessions,
		glossary: glossary.Default(),
		log:      log,
	}
}

// EnableMetrics mounts /metrics and records request metrics.
func (s *Server) EnableMetrics(m *observability.Metrics) { s.metrics = m }

// SetFeed exposes the achievement toast feed.
func (s *Server) SetFeed(f *observability.Feed) { s.feed = f }

// SetGlossary replaces the embedded dictionary.
func (s *Server) SetGlossary(g *glossary.Glossary) { s.glossary = g }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)
	if s.metrics != nil {
		r.Use(s.metricsMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"modules": s.modules.Len(),
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	r.Route("/api/modules", func(r chi.Router) {
		r.Get("/", s.handleListModules)
		r.Get("/{slug}", s.handleGetModule)
		r.Post("/{slug}/check", s.handleCheck)
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleOpenSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/hints", s.handleSessionHint)
		r.Post("/{id}/complete", s.handleCompleteSession)
		r.Delete("/{id}", s.handleCloseSession)
	})

	r.Route("/api/progress", func(r chi.Router) {
		r.Post("/visit", s.handleVisit)
		r.Get("/stats", s.handleStats)
		r.Get("/streak", s.handleStreak)
		r.Get("/modules", s.handleModuleProgress)
		r.Post("/modules/{slug}/attempts", s.handleRecordAttempt)
		r.Get("/achievements", s.handleAchievements)
		r.Post("/achievements/check", s.handleCheckAchievements)
		r.Post("/xp", s.handleAddXP)
		r.Get("/xp-history", s.handleXPHistory)
		r.Get("/summary", s.handleSummary)
		r.Get("/notifications", s.handleNotifications)
		r.Post("/reset", s.handleReset)
	})

	r.Route("/api/glossary", func(r chi.Router) {
		r.Get("/", s.handleGlossarySearch)
		r.Get("/{term}", s.handleGlossaryTerm)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    errorType(status),
		},
	})
}

// writeDomainError maps domain sentinels to status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		s.log.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrModuleNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrTermNotFound),
		errors.Is(err, domain.ErrUnknownAchievement):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoChecker):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrXPHistoryUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrStateConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid_request"
	case http.StatusNotImplemented:
		return "unsupported"
	case http.StatusConflict:
		return "conflict"
	}
	return "error"
}

// corsMiddleware adds CORS headers for the browser front end.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records count and latency per route pattern.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}

// requestLogger logs one debug line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
