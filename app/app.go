package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"

	"github.com/trycohn/1337-sub004/app/modules/round"
	"github.com/trycohn/1337-sub004/app/modules/tournament"
	"github.com/trycohn/1337-sub004/config"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/locks"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// App wires the tournament and round modules together with their shared
// infrastructure: Postgres, the NATS event bus, the Watermill router, and
// the HTTP read API.
type App struct {
	Config           *config.Config
	Logger           *slog.Logger
	DB               *bun.DB
	EventBus         eventbus.EventBus
	WatermillRouter  *message.Router
	TournamentModule *tournament.Module
	RoundModule      *round.Module

	registry      *prometheus.Registry
	httpServer    *http.Server
	metricsServer *http.Server
	cancelFunc    context.CancelFunc
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.Environment)

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	eventBus, err := eventbus.New(cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	watermillRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	watermillRouter.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry, "tournament_engine")
	tracer := otel.Tracer("tournament-engine")

	helpers := utils.NewHelpers()
	keyedLocks := locks.NewKeyedMutex()
	httpRouter := chi.NewRouter()

	roundModule, err := round.NewRoundModule(ctx, cfg, logger, db, eventBus, watermillRouter, helpers, metrics, tracer, registry, keyedLocks)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize round module: %w", err)
	}

	tournamentModule, err := tournament.NewTournamentModule(ctx, cfg, logger, db, eventBus, watermillRouter, helpers, metrics, tracer, registry, keyedLocks, roundModule.RoundService, httpRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tournament module: %w", err)
	}

	httpRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	app := &App{
		Config:           cfg,
		Logger:           logger,
		DB:               db,
		EventBus:         eventBus,
		WatermillRouter:  watermillRouter,
		TournamentModule: tournamentModule,
		RoundModule:      roundModule,
		registry:         registry,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpRouter,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	if cfg.Observability.MetricsAddress != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		app.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return app, nil
}

// Run starts the Watermill router, both modules, and the HTTP servers, then
// blocks until the context is cancelled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	app.cancelFunc = cancel
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.WatermillRouter.Run(ctx); err != nil && ctx.Err() == nil {
			app.Logger.Error("Watermill router stopped", attr.Error(err))
			cancel()
		}
	}()

	// Wait for the router to be ready before the modules start publishing.
	select {
	case <-app.WatermillRouter.Running():
	case <-ctx.Done():
		return ctx.Err()
	}

	wg.Add(2)
	go app.RoundModule.Run(ctx, &wg)
	go app.TournamentModule.Run(ctx, &wg)

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Logger.Info("Starting HTTP server", attr.String("addr", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error("HTTP server stopped", attr.Error(err))
			cancel()
		}
	}()

	if app.metricsServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.Logger.Info("Starting metrics server", attr.String("addr", app.metricsServer.Addr))
			if err := app.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				app.Logger.Error("Metrics server stopped", attr.Error(err))
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("HTTP server shutdown failed", attr.Error(err))
	}
	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Metrics server shutdown failed", attr.Error(err))
		}
	}

	wg.Wait()
	return nil
}

// Close releases all application resources.
func (app *App) Close() error {
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err := app.RoundModule.Close(); err != nil {
		app.Logger.Error("Failed to close round module", attr.Error(err))
	}
	if err := app.TournamentModule.Close(); err != nil {
		app.Logger.Error("Failed to close tournament module", attr.Error(err))
	}

	if err := app.WatermillRouter.Close(); err != nil {
		app.Logger.Error("Failed to close message router", attr.Error(err))
	}
	if err := app.EventBus.Close(); err != nil {
		app.Logger.Error("Failed to close event bus", attr.Error(err))
	}
	if err := app.DB.Close(); err != nil {
		app.Logger.Error("Failed to close database", attr.Error(err))
	}

	return nil
}
