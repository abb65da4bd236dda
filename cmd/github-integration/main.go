package main

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
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gitrello/github-integration/internal/adapter/github"
	"github.com/gitrello/github-integration/internal/adapter/gitrello"
	ghihttp "github.com/gitrello/github-integration/internal/adapter/http"
	ghinats "github.com/gitrello/github-integration/internal/adapter/nats"
	"github.com/gitrello/github-integration/internal/adapter/otel"
	"github.com/gitrello/github-integration/internal/adapter/postgres"
	"github.com/gitrello/github-integration/internal/adapter/ristretto"
	"github.com/gitrello/github-integration/internal/config"
	"github.com/gitrello/github-integration/internal/logger"
	"github.com/gitrello/github-integration/internal/middleware"
	"github.com/gitrello/github-integration/internal/port/messagequeue"
	"github.com/gitrello/github-integration/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"github_api", cfg.GitHub.BaseURL,
		"callback_url", cfg.GitHub.CallbackURL,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// NATS publishing is optional; without a URL events stay local.
	var publisher messagequeue.Publisher
	if cfg.NATS.URL != "" {
		queue, err := ghinats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()
		publisher = queue
	}

	permCache, err := ristretto.New(cfg.Cache.MaxCostBytes)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer permCache.Close()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Services ---

	store := postgres.NewStore(pool)
	providerFactory := github.NewFactory(cfg.GitHub.BaseURL, cfg.GitHub.Timeout)
	boardClient := gitrello.NewClient(cfg.GITrello.URL, cfg.GITrello.AccessToken, cfg.GITrello.Timeout)

	permSvc := service.NewPermissionService(boardClient, permCache, cfg.Cache.PermissionTTL, log)
	reconciler := service.NewWebhookReconciler(store, cfg.GitHub.CallbackURL, metrics, log)
	linkSvc := service.NewLinkService(store, providerFactory, reconciler, permSvc, log)
	profileSvc := service.NewProfileService(store, providerFactory, log)
	ingestSvc := service.NewIngestService(store, boardClient, publisher, metrics, log)

	// --- HTTP ---

	handlers := ghihttp.NewHandlers(linkSvc, profileSvc, ingestSvc)

	r := chi.NewRouter()
	r.Use(ghihttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(ghihttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.Auth([]byte(cfg.Auth.JWTSecret)))

	ghihttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
