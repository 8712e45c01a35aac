// Package server exposes the dashboard pipeline over HTTP. It is a thin
// render boundary: every endpoint returns metrics, trend rows and chart specs
// as plain JSON for a frontend to draw.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/esgdash/esgdash/internal/config"
	"github.com/esgdash/esgdash/internal/session"
)

// Server routes dashboard requests onto a session manager. When the dataset
// failed to load the server still runs against an empty table and reports the
// failure in every session payload instead of crashing.
type Server struct {
	cfg      config.ServerConfig
	sessions *session.Manager
	dataErr  string
	limiter  *rate.Limiter
}

// New creates a Server. dataErr carries a user-visible dataset load failure,
// empty when the load succeeded.
func New(cfg config.ServerConfig, sessions *session.Manager, dataErr string) *Server {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 50
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 100
	}
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		dataErr:  dataErr,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Router builds the chi handler with logging, recovery, CORS and rate
// limiting applied to every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.throttle)

	r.Get("/health", s.handleHealth)
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}/dashboard", s.handleDashboard)
		r.Put("/{id}/filters", s.handleUpdateFilters)
		r.Post("/{id}/reset", s.handleReset)
	})

	return r
}

// logRequests records one zap entry per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// throttle applies a global request rate cap.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
