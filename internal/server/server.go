// Package server wires handlers, middleware, and routes, and owns the HTTP
// server lifecycle. This is the composition root: every dependency chain is
// assembled in New, nothing constructs its own collaborators.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/friendcircle/internal/auth"
	"github.com/sakif/friendcircle/internal/config"
	"github.com/sakif/friendcircle/internal/handler"
	"github.com/sakif/friendcircle/internal/metrics"
	"github.com/sakif/friendcircle/internal/middleware"
	sqliteRepo "github.com/sakif/friendcircle/internal/repository/sqlite"
	"github.com/sakif/friendcircle/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph:
//
//	sqlite.DB → AuthService/FriendService → handlers → routes
//
// The token service receives the secret from config here and nowhere else.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and registers every route.
//
// Route map:
//
//	GET    /healthz                    → liveness
//	GET    /metrics                    → Prometheus exposition
//	POST   /api/auth/signup            → register identity
//	POST   /api/auth/login             → authenticate, mint token
//	GET    /api/me                     → own profile            (gated)
//	GET    /api/friends                → list friends           (gated)
//	GET    /api/friends/search?query=  → friendship candidates  (gated)
//	POST   /api/friends                → add friend             (gated)
//	DELETE /api/friends/{friendId}     → remove friend          (gated)
//	GET    /api/users                  → strangers view         (gated)
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	friendService := service.NewFriendService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	friendHandler := handler.NewFriendHandler(friendService, s.logger)
	healthHandler := handler.NewHealthHandler(time.Now())

	m := metrics.New()

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.CORSOrigins))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(m.Middleware)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", m.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Everything below passes the access gate: token extracted,
		// verified, and the acting identity bound to the context before
		// any handler runs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Get("/friends", friendHandler.HandleList)
			r.Get("/friends/search", friendHandler.HandleSearch)
			r.Post("/friends", friendHandler.HandleAdd)
			r.Delete("/friends/{friendId}", friendHandler.HandleRemove)
			r.Get("/users", friendHandler.HandleListStrangers)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Handler exposes the assembled router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
