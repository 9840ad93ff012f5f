package tournament

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	roundservice "github.com/trycohn/1337-sub004/app/modules/round/application"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	tournamentservice "github.com/trycohn/1337-sub004/app/modules/tournament/application"
	tournamenthandlers "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/handlers"
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	tournamentrouter "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/router"
	"github.com/trycohn/1337-sub004/config"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/locks"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// Module bundles tournament setup and the standings read path.
type Module struct {
	EventBus          eventbus.EventBus
	TournamentService tournamentservice.Service
	TournamentRouter  *tournamentrouter.TournamentRouter
	logger            *slog.Logger
	config            *config.Config
	cancelFunc        context.CancelFunc
}

// NewTournamentModule creates and wires the tournament module.
func NewTournamentModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	metrics observability.Metrics,
	tracer trace.Tracer,
	registry *prometheus.Registry,
	keyedLocks *locks.KeyedMutex,
	roundService roundservice.Service,
	httpRouter chi.Router,
) (*Module, error) {
	repo := tournamentdb.NewRepository()
	roundRepo := rounddb.NewRepository()

	tournamentService := tournamentservice.NewTournamentService(db, repo, roundRepo, eventBus, logger, metrics, tracer, keyedLocks)
	handlers := tournamenthandlers.NewTournamentHandlers(tournamentService, logger, tracer, helpers, metrics)

	tournamentRouter := tournamentrouter.NewTournamentRouter(logger, router, eventBus, eventBus, registry)
	if err := tournamentRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure tournament router: %w", err)
	}

	// Register HTTP routes for the read API.
	if httpRouter != nil {
		httpHandlers := tournamenthandlers.NewHTTPHandlers(tournamentService, roundService, logger)
		limiter := tournamenthandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst)
		httpHandlers.RegisterRoutes(httpRouter, limiter)
	}

	return &Module{
		EventBus:          eventBus,
		TournamentService: tournamentService,
		TournamentRouter:  tournamentRouter,
		logger:            logger,
		config:            cfg,
	}, nil
}

// Run keeps the module alive until the context is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	m.logger.Info("Starting tournament module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	<-ctx.Done()
	m.logger.Info("Tournament module goroutine stopped")
}

// Close stops the module.
func (m *Module) Close() error {
	m.logger.Info("Stopping tournament module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Tournament module stopped")
	return nil
}
