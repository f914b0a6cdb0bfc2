package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aura-clinic/aura/internal/auth"
	"github.com/aura-clinic/aura/internal/config"
	"github.com/aura-clinic/aura/internal/http/handlers"
	"github.com/aura-clinic/aura/internal/http/respond"
	"github.com/aura-clinic/aura/internal/middleware"
	"github.com/aura-clinic/aura/internal/storage"
)

const (
	authRatePerSecond = 5
	authRateBurst     = 10
	limiterIdle       = 3 * time.Minute
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	limiter *middleware.RateLimiter
	stop    chan struct{}
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, logger *slog.Logger) *Server {
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	limiter := middleware.NewRateLimiter(authRatePerSecond, authRateBurst)
	authed := func(next http.Handler) http.Handler { return middleware.Auth(tokenManager, next) }

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	handlers.NewHealthHandler(time.Now).Register(r)
	handlers.NewAuthHandler(store, tokenManager, logger, !cfg.Production()).Register(r, authed, limiter.Limit)
	handlers.NewPatientHandler(store, logger).Register(r, authed)
	handlers.NewAppointmentHandler(store, store, logger).Register(r, authed)
	handlers.NewFinanceHandler(store, logger).Register(r, authed)

	handler := middleware.Logging(logger, middleware.CORS(cfg.CORSOrigins, r))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, limiter: limiter, stop: make(chan struct{})}
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	go s.sweepLimiter()
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	return s.inner.Shutdown(ctx)
}

func (s *Server) sweepLimiter() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.limiter.Sweep(limiterIdle)
		}
	}
}
