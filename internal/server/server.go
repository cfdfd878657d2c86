// Package server wires handlers, middleware and routes, and runs the HTTP
// server until it is told to stop.
//
// DEPENDENCY FLOW:
//
//	cli (composition root) -> content.Cache -> server.New
//	server.New creates: GameService, ReloadService, AdminService -> handlers -> routes
//
// The server does not own the content source; whoever built the cache closes
// it after Start returns.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/truthdare/truthdare-api/internal/auth"
	"github.com/truthdare/truthdare-api/internal/config"
	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/handler"
	"github.com/truthdare/truthdare-api/internal/middleware"
	"github.com/truthdare/truthdare-api/internal/service"
)

const (
	requestTimeout  = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Server is the HTTP front of the content cache.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	cache   *content.Cache
	reloads *service.ReloadService
}

// New builds the router for cfg on top of an initialized cache.
//
// Admin routes are only mounted when both ADMIN_JWT_SECRET and
// ADMIN_PASSWORD_HASH are configured.
func New(cfg config.Config, cache *content.Cache, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		cache:   cache,
		reloads: service.NewReloadService(cache, logger),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTES ({p} is APIPrefix, /api/v1 by default):
//
//	GET  /                          welcome
//	GET  {p}/truth                  random truth
//	GET  {p}/truth/categories/list  categories with truths
//	GET  {p}/truth/{category}       random truth of a category
//	GET  {p}/dare                   random dare
//	GET  {p}/dare/difficulties/list difficulties with dares
//	GET  {p}/dare/{difficulty}      random dare of a difficulty
//	GET  {p}/game/random            truth or dare, 50/50
//	GET  {p}/health                 cache health
//	GET  {p}/stats                  per-tag counts
//	POST {p}/admin/login            password -> bearer token
//	POST {p}/admin/reload           reload content (bearer token)
//
// MIDDLEWARE ORDER: RequestID, RealIP, Logger, Recoverer, Timeout, CORS.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(requestTimeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	game := service.NewGameService(s.cache, nil, s.logger)
	contentHandler := handler.NewContentHandler(game, s.logger)
	infoHandler := handler.NewInfoHandler(game, s.config.AppName, s.config.AppVersion, s.config.APIPrefix, s.logger)

	var adminHandler *handler.AdminHandler
	var tokens *auth.TokenService
	if s.config.AdminEnabled() {
		var err error
		tokens, err = auth.NewTokenService(s.config.AdminJWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		admin := service.NewAdminService(tokens, auth.NewPasswordService(), s.config.AdminPasswordHash, s.logger)
		adminHandler = handler.NewAdminHandler(admin, s.reloads, s.logger)
	} else {
		s.logger.Warn("admin endpoints disabled: ADMIN_JWT_SECRET or ADMIN_PASSWORD_HASH not set")
	}

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	s.router.Get("/", infoHandler.HandleRoot)

	s.router.Route(s.config.APIPrefix, func(r chi.Router) {
		// Static segments are registered before the {tag} patterns for readability;
		// chi prefers static matches either way.
		r.Get("/truth", contentHandler.HandleRandomTruth)
		r.Get("/truth/categories/list", contentHandler.HandleTruthCategories)
		r.Get("/truth/{category}", contentHandler.HandleTruthByCategory)

		r.Get("/dare", contentHandler.HandleRandomDare)
		r.Get("/dare/difficulties/list", contentHandler.HandleDareDifficulties)
		r.Get("/dare/{difficulty}", contentHandler.HandleDareByDifficulty)

		r.Get("/game/random", contentHandler.HandleRandomGame)
		r.Get("/health", infoHandler.HandleHealth)
		r.Get("/stats", infoHandler.HandleStats)

		if adminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Post("/login", adminHandler.HandleLogin)
				r.With(auth.RequireAdmin(tokens, handler.WriteError)).Post("/reload", adminHandler.HandleReload)
			})
		}
	})

	return nil
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
//
// While running:
//   - SIGHUP reloads every kind
//   - when ReloadInterval > 0, every kind is reloaded on that period
//
// A failed reload is logged and the previous snapshots keep serving.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	// Start does not return while a reload is still reading the source, so the
	// caller can close the source afterwards.
	runCtx, cancel := context.WithCancel(ctx)
	var watchers sync.WaitGroup
	defer func() {
		cancel()
		watchers.Wait()
	}()
	watchers.Add(1)
	go func() {
		defer watchers.Done()
		s.watchReloads(runCtx, hup)
	}()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", "http://"+srv.Addr+s.config.APIPrefix),
			slog.String("source", s.config.Source),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	case <-ctx.Done():
		s.logger.Info("shutdown requested", slog.String("reason", context.Cause(ctx).Error()))
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

// watchReloads runs reloads triggered by SIGHUP or the refresh ticker until
// ctx is done.
func (s *Server) watchReloads(ctx context.Context, hup <-chan os.Signal) {
	var tick <-chan time.Time
	if s.config.ReloadInterval > 0 {
		ticker := time.NewTicker(s.config.ReloadInterval)
		defer ticker.Stop()
		tick = ticker.C
		s.logger.Info("periodic reload enabled", slog.Duration("interval", s.config.ReloadInterval))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			s.reload(ctx, "sighup")
		case <-tick:
			s.reload(ctx, "interval")
		}
	}
}

// reload relies on the Loader's LOAD_TIMEOUT to bound each kind.
// ReloadService logs the per-kind outcome.
func (s *Server) reload(ctx context.Context, trigger string) {
	_, _ = s.reloads.Reload(ctx, trigger)
}
