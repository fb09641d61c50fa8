// Package api exposes analysis runs and their results over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fredricj/SingleCellProteogenomics/internal"
	"github.com/fredricj/SingleCellProteogenomics/ports"
)

// Config holds API server configuration
type Config struct {
	Addr string
}

// App wires the result repository to the HTTP routes
type App struct {
	router *chi.Mux
	repo   ports.ResultsRepository
	logger *internal.Logger
	config Config
}

// NewApp creates the API application
func NewApp(config Config, repo ports.ResultsRepository, logger *internal.Logger) *App {
	app := &App{
		router: chi.NewRouter(),
		repo:   repo,
		logger: logger,
		config: config,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api/runs", func(r chi.Router) {
		r.Get("/", a.handleListRuns)
		r.Get("/{id}", a.handleGetRun)
		r.Get("/{id}/report", a.handleRunReport)
		r.Get("/{id}/genes", a.handleGeneResults)
		r.Get("/{id}/proteins", a.handleProteinResults)
		r.Get("/{id}/stability", a.handleStabilityComparisons)
	})
}

// Start runs the HTTP server until ctx is cancelled
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{Addr: a.config.Addr, Handler: a.router}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening on %s", a.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}
