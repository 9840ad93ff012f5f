package round

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	roundservice "github.com/trycohn/1337-sub004/app/modules/round/application"
	roundhandlers "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/handlers"
	roundqueue "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/queue"
	rounddb "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/repositories"
	roundrouter "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/router"
	tournamentdb "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/repositories"
	"github.com/trycohn/1337-sub004/config"
	"github.com/trycohn/1337-sub004/internal/eventbus"
	"github.com/trycohn/1337-sub004/internal/locks"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// Module bundles the round lifecycle engine: service, handlers, router, and
// the reminder queue.
type Module struct {
	EventBus     eventbus.EventBus
	RoundService roundservice.Service
	QueueService roundqueue.QueueService
	RoundRouter  *roundrouter.RoundRouter
	logger       *slog.Logger
	config       *config.Config
	cancelFunc   context.CancelFunc
}

// NewRoundModule creates and wires the round module.
func NewRoundModule(
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
) (*Module, error) {
	repo := rounddb.NewRepository()
	poolRepo := tournamentdb.NewRepository()

	roundService := roundservice.NewRoundService(db, repo, poolRepo, eventBus, logger, metrics, tracer, keyedLocks)

	// The queue must exist before the handlers so draft and approval commands
	// can schedule and cancel reminder jobs.
	var queueService roundqueue.QueueService
	if cfg.Queue.Enabled {
		qs, err := roundqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, metrics, repo, eventBus, helpers)
		if err != nil {
			return nil, fmt.Errorf("failed to create round queue service: %w", err)
		}
		queueService = qs
	}

	handlers := roundhandlers.NewRoundHandlers(roundService, queueService, cfg.Queue.ReminderDelay, logger, tracer, helpers, metrics)

	roundRouter := roundrouter.NewRoundRouter(logger, router, eventBus, eventBus, registry)
	if err := roundRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure round router: %w", err)
	}

	return &Module{
		EventBus:     eventBus,
		RoundService: roundService,
		QueueService: queueService,
		RoundRouter:  roundRouter,
		logger:       logger,
		config:       cfg,
	}, nil
}

// Run keeps the module alive until the context is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	m.logger.Info("Starting round module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			m.logger.Error("Failed to start round queue service", "error", err)
		}
	}

	<-ctx.Done()
	m.logger.Info("Round module goroutine stopped")
}

// Close stops the module.
func (m *Module) Close() error {
	m.logger.Info("Stopping round module")

	if m.QueueService != nil {
		if err := m.QueueService.Stop(context.Background()); err != nil {
			m.logger.Error("Failed to stop round queue service", "error", err)
		}
	}

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Round module stopped")
	return nil
}
