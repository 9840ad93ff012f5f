package roundrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundhandlers "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/handlers"
	"github.com/trycohn/1337-sub004/internal/eventbus"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// RoundRouter wires round command topics to their handlers.
type RoundRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus

	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewRoundRouter creates a new RoundRouter.
func NewRoundRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	registry *prometheus.Registry,
) *RoundRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		metricsBuilder = &b
	}

	return &RoundRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure attaches router metrics and registers all round handlers.
func (r *RoundRouter) Configure(_ context.Context, handlers roundhandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.registerHandlers(handlers)
	return nil
}

// registerHandler binds one command topic. The publish topic is empty:
// Watermill reads the destination from message metadata, so a handler can
// fan out to several topics.
func (r *RoundRouter) registerHandler(topic string, handler message.HandlerFunc) {
	r.Router.AddHandler(
		"round."+topic,
		topic,
		r.subscriber,
		"",
		r.publisher,
		handler,
	)
}

func (r *RoundRouter) registerHandlers(h roundhandlers.Handlers) {
	r.registerHandler(roundevents.DraftRequestedV1, h.HandleDraftRequested)
	r.registerHandler(roundevents.TeamsApprovalRequestedV1, h.HandleTeamsApprovalRequested)
	r.registerHandler(roundevents.PairingRequestedV1, h.HandlePairingRequested)
	r.registerHandler(roundevents.MatchesApprovalRequestedV1, h.HandleMatchesApprovalRequested)
	r.registerHandler(roundevents.MatchResultReportedV1, h.HandleMatchResultReported)
	r.registerHandler(roundevents.CompletionRequestedV1, h.HandleCompletionRequested)
	r.registerHandler(roundevents.ResultsImportRequestedV1, h.HandleResultsImportRequested)
}
