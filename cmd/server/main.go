package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flavourheaven/costonomy/internal/config"
	"github.com/flavourheaven/costonomy/internal/costonomy"
	"github.com/flavourheaven/costonomy/internal/db"
	applog "github.com/flavourheaven/costonomy/internal/log"
	"github.com/flavourheaven/costonomy/internal/metrics"
	"github.com/flavourheaven/costonomy/internal/migrations"
	"github.com/flavourheaven/costonomy/internal/session"
)

type server struct {
	sessions *session.Service
	metrics  *metrics.Recorder
}

func main() {
	if err := run(); err != nil {
		applog.Error(context.Background(), "server stopped", "error", err)
		_ = applog.Sync()
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	defer applog.Sync()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			return err
		}
	} else if v, err := migrations.Version(ctx, database); err != nil || v == 0 {
		applog.Warn(ctx, "session schema is not migrated; run migrations before serving", "version", v, "error", err)
	}

	rec := metrics.New()
	client, err := costonomy.New(cfg.API.BaseURL,
		costonomy.Operator{OutletID: cfg.API.OutletID, UserID: cfg.API.UserID},
		costonomy.WithTimeout(cfg.API.Timeout),
		costonomy.WithMetrics(rec),
	)
	if err != nil {
		return err
	}

	srv := &server{
		sessions: session.NewService(session.NewSQLiteStore(database), client,
			session.WithMetrics(rec),
			session.WithLocation(cfg.Location()),
		),
		metrics: rec,
	}

	go srv.pruneSessions(ctx, cfg.SessionTTL)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "listening", "addr", httpServer.Addr, "env", cfg.Env)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	applog.Info(shutdownCtx, "shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(operatorMiddleware)

		r.Post("/sessions/base-items/{id}", s.handleOpenBaseItem)
		r.Post("/sessions/recipes/{id}", s.handleOpenRecipe)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
		r.Delete("/sessions/{sessionID}", s.handleDeleteSession)
		r.Post("/sessions/{sessionID}/rescale", s.handleRescale)
		r.Post("/sessions/{sessionID}/multiply", s.handleMultiply)
		r.Post("/sessions/{sessionID}/reset", s.handleReset)
		r.Patch("/sessions/{sessionID}/lines/{itemID}", s.handleEditLine)
		r.Post("/sessions/{sessionID}/lines/{itemID}/save", s.handleSaveLine)
		r.Post("/sessions/{sessionID}/purchase", s.handlePurchase)
		r.Post("/sessions/{sessionID}/clone", s.handleClone)

		r.Get("/departments", s.handleDepartments)
		r.Get("/items", s.handleItems)
		r.Get("/products", s.handleProducts)

		r.Get("/recipes/{id}/breakdown", s.handleRecipeBreakdown)
		r.Post("/recipes/{id}/ingredients", s.handleAddIngredients)
		r.Delete("/recipes/{id}/ingredients/{itemID}", s.handleRemoveIngredient)
	})

	return r
}

// pruneSessions drops stale sessions at start and then periodically until ctx ends.
func (s *server) pruneSessions(ctx context.Context, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.sessions.Prune(ctx, ttl); err != nil && ctx.Err() == nil {
			applog.Warn(ctx, "session prune failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
