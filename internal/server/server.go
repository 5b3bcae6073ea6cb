// Package server is the composition root: it opens the store, builds the
// services and handlers, mounts the routes and runs the HTTP server with
// graceful shutdown.
//
// DEPENDENCY CHAIN:
//
//	config → store (sqlite | postgres) ─┐
//	         github.Client ─────────────┼→ services → handlers → chi router
//	         TokenService, PasswordService ┘
//
// Nothing below this package knows which store driver is in use.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/portfolio-api/internal/auth"
	"github.com/sakif/portfolio-api/internal/config"
	"github.com/sakif/portfolio-api/internal/github"
	"github.com/sakif/portfolio-api/internal/handler"
	"github.com/sakif/portfolio-api/internal/middleware"
	"github.com/sakif/portfolio-api/internal/repository"
	"github.com/sakif/portfolio-api/internal/repository/postgres"
	sqliteRepo "github.com/sakif/portfolio-api/internal/repository/sqlite"
	"github.com/sakif/portfolio-api/internal/service"
)

// Store is what the server needs from a storage backend. Both sqlite.DB and
// postgres.DB satisfy it.
type Store interface {
	repository.ProjectRepository
	repository.AdminRepository
	Close() error
}

// Deps are the fully built services the router mounts.
type Deps struct {
	Projects *service.ProjectService
	Auth     *service.AuthService
	GitHub   *service.GitHubService
}

type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   Store
	handler http.Handler
}

// New opens the configured store and wires every dependency.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.TokenTTL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	gh := github.NewClient(github.Config{
		BaseURL:       cfg.GitHub.APIURL,
		Token:         cfg.GitHub.Token,
		Timeout:       cfg.GitHub.Timeout,
		RatePerSecond: cfg.GitHub.RatePerSecond,
		Burst:         cfg.GitHub.RateBurst,
	})
	if cfg.GitHub.Token == "" {
		logger.Warn("GITHUB_TOKEN not set, upstream calls are unauthenticated and heavily rate limited")
	}

	deps := Deps{
		Projects: service.NewProjectService(store, gh, logger),
		Auth:     service.NewAuthService(store, tokens, auth.NewPasswordService(auth.DefaultCost), logger),
		GitHub:   service.NewGitHubService(gh, logger),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		handler: NewRouter(deps, registry, logger),
	}, nil
}

func openStore(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return db, nil
	default:
		if cfg.Path != ":memory:" {
			// mkdir -p for the database file's directory
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, nil
	}
}

// NewRouter builds the chi router.
//
// ROUTES:
//
//	GET    /                          health
//	GET    /metrics                   Prometheus exposition
//	GET    /projects                  list
//	POST   /projects                  create          (bearer)
//	DELETE /projects                  delete all      (bearer)
//	GET    /projects/{id}             get
//	PUT    /projects/{id}             partial update  (bearer)
//	DELETE /projects/{id}             delete          (bearer)
//	GET    /projects/github/{githubID} get by GitHub id
//	GET    /github/repos              upstream repository list
//	POST   /admin/register            register admin
//	POST   /admin/login               issue token
//	GET    /admin/me                  current admin   (bearer)
//
// MIDDLEWARE ORDER:
// RequestID first so the logger can print it, Recoverer last so a panic in
// a handler is still logged and counted as a 500.
func NewRouter(d Deps, registry *prometheus.Registry, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	metrics := middleware.NewMetrics(registry)

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Handler)
	r.Use(chimiddleware.Recoverer)

	projects := handler.NewProjectHandler(d.Projects, logger)
	admins := handler.NewAdminHandler(d.Auth, logger)
	repos := handler.NewGitHubHandler(d.GitHub, logger)
	requireAuth := auth.RequireAuth(d.Auth)

	r.Get("/", handler.HandleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", projects.HandleList)
		r.Get("/{id}", projects.HandleGet)
		r.Get("/github/{githubID}", projects.HandleGetByGitHubID)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", projects.HandleCreate)
			r.Delete("/", projects.HandleDeleteAll)
			r.Put("/{id}", projects.HandleUpdate)
			r.Delete("/{id}", projects.HandleDelete)
		})
	})

	r.Get("/github/repos", repos.HandleListRepos)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/register", admins.HandleRegister)
		r.Post("/login", admins.HandleLogin)
		r.With(requireAuth).Get("/me", admins.HandleMe)
	})

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully:
//  1. stop accepting connections
//  2. give in-flight requests up to 30s
//  3. close the store (flushes the sqlite WAL, releases postgres connections)
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Server.Port),
			slog.String("store", s.cfg.Store.Driver),
			slog.String("github_api", s.cfg.GitHub.APIURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
