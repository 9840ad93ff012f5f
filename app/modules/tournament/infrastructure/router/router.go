package tournamentrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	tournamentevents "github.com/trycohn/1337-sub004/app/modules/tournament/domain/events"
	tournamenthandlers "github.com/trycohn/1337-sub004/app/modules/tournament/infrastructure/handlers"
	"github.com/trycohn/1337-sub004/internal/eventbus"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// TournamentRouter wires tournament command topics to their handlers.
type TournamentRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus

	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewTournamentRouter creates a new TournamentRouter.
func NewTournamentRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	registry *prometheus.Registry,
) *TournamentRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &b
	}

	return &TournamentRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure attaches router metrics and registers all tournament handlers.
func (r *TournamentRouter) Configure(_ context.Context, handlers tournamenthandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.registerHandlers(handlers)
	return nil
}

func (r *TournamentRouter) registerHandler(topic string, handler message.HandlerFunc) {
	r.Router.AddHandler(
		"tournament."+topic,
		topic,
		r.subscriber,
		"",
		r.publisher,
		handler,
	)
}

func (r *TournamentRouter) registerHandlers(h tournamenthandlers.Handlers) {
	r.registerHandler(tournamentevents.CreateRequestedV1, h.HandleCreateRequested)
	r.registerHandler(tournamentevents.ParticipantsRegisterRequestedV1, h.HandleParticipantsRegisterRequested)
}
