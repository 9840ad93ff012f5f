package roundhandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	roundservice "github.com/trycohn/1337-sub004/app/modules/round/application"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	roundqueue "github.com/trycohn/1337-sub004/app/modules/round/infrastructure/queue"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// Handlers is the message-driven surface of the round module.
type Handlers interface {
	HandleDraftRequested(msg *message.Message) ([]*message.Message, error)
	HandleTeamsApprovalRequested(msg *message.Message) ([]*message.Message, error)
	HandlePairingRequested(msg *message.Message) ([]*message.Message, error)
	HandleMatchesApprovalRequested(msg *message.Message) ([]*message.Message, error)
	HandleMatchResultReported(msg *message.Message) ([]*message.Message, error)
	HandleCompletionRequested(msg *message.Message) ([]*message.Message, error)
	HandleResultsImportRequested(msg *message.Message) ([]*message.Message, error)
}

// RoundHandlers handles round lifecycle commands.
type RoundHandlers struct {
	roundService   roundservice.Service
	queue          roundqueue.QueueService
	reminderDelay  time.Duration
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        observability.Metrics
	helpers        utils.Helpers
	handlerWrapper func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc
}

// NewRoundHandlers creates a new RoundHandlers. The queue is optional; when
// nil, no approval reminders are scheduled.
func NewRoundHandlers(
	roundService roundservice.Service,
	queue roundqueue.QueueService,
	reminderDelay time.Duration,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	metrics observability.Metrics,
) Handlers {
	return &RoundHandlers{
		roundService:  roundService,
		queue:         queue,
		reminderDelay: reminderDelay,
		logger:        logger,
		tracer:        tracer,
		helpers:       helpers,
		metrics:       metrics,
		handlerWrapper: func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc {
			return handlerWrapper(handlerName, unmarshalTo, handlerFunc, logger, metrics, tracer, helpers)
		},
	}
}

// scheduleApprovalReminder enqueues a delayed nudge for a round that just
// entered a pre-approval status. Reminders are best effort: a scheduling
// failure is logged, never surfaced to the command flow.
func (h *RoundHandlers) scheduleApprovalReminder(ctx context.Context, tournamentID uuid.UUID, round int, status roundtypes.Status) {
	if h.queue == nil || h.reminderDelay <= 0 {
		return
	}
	remindAt := time.Now().Add(h.reminderDelay)
	if err := h.queue.ScheduleApprovalReminder(ctx, tournamentID, round, remindAt, status); err != nil {
		h.logger.ErrorContext(ctx, "Failed to schedule approval reminder",
			attr.TournamentID(tournamentID),
			attr.RoundNumber(round),
			attr.Error(err),
		)
	}
}

// cancelReminders drops the tournament's pending reminder jobs once the
// round has moved past the status they were watching.
func (h *RoundHandlers) cancelReminders(ctx context.Context, tournamentID uuid.UUID) {
	if h.queue == nil {
		return
	}
	if err := h.queue.CancelTournamentJobs(ctx, tournamentID); err != nil {
		h.logger.ErrorContext(ctx, "Failed to cancel reminder jobs",
			attr.TournamentID(tournamentID),
			attr.Error(err),
		)
	}
}

// handlerWrapper is a standalone function that handles common tracing,
// logging, and metrics for handlers.
func handlerWrapper(
	handlerName string,
	unmarshalTo interface{},
	handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error),
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	helpers utils.Helpers,
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := tracer.Start(msg.Context(), handlerName)
		defer span.End()

		metrics.RecordHandlerAttempt(handlerName)

		startTime := time.Now()
		defer func() {
			duration := time.Since(startTime).Seconds()
			metrics.RecordHandlerDuration(handlerName, duration)
		}()

		logger.InfoContext(ctx, handlerName+" triggered",
			attr.CorrelationIDFromMsg(msg),
			attr.String("message_id", msg.UUID),
		)

		payloadInstance := unmarshalTo
		if payloadInstance != nil {
			if err := helpers.UnmarshalPayload(msg, payloadInstance); err != nil {
				logger.ErrorContext(ctx, "Failed to unmarshal payload",
					attr.CorrelationIDFromMsg(msg),
					attr.Error(err),
				)
				metrics.RecordHandlerFailure(handlerName)
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		result, err := handlerFunc(ctx, msg, payloadInstance)
		if err != nil {
			logger.ErrorContext(ctx, "Error in "+handlerName,
				attr.CorrelationIDFromMsg(msg),
				attr.Error(err),
			)
			metrics.RecordHandlerFailure(handlerName)
			return nil, err
		}

		logger.InfoContext(ctx, handlerName+" completed successfully", attr.CorrelationIDFromMsg(msg))
		metrics.RecordHandlerSuccess(handlerName)
		return result, nil
	}
}
