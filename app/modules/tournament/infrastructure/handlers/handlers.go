package tournamenthandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	tournamentservice "github.com/trycohn/1337-sub004/app/modules/tournament/application"
	tournamentevents "github.com/trycohn/1337-sub004/app/modules/tournament/domain/events"
	"github.com/trycohn/1337-sub004/internal/observability"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
	"github.com/trycohn/1337-sub004/internal/utils"
)

// Handlers is the message-driven surface of the tournament module.
type Handlers interface {
	HandleCreateRequested(msg *message.Message) ([]*message.Message, error)
	HandleParticipantsRegisterRequested(msg *message.Message) ([]*message.Message, error)
}

// TournamentHandlers handles tournament setup commands.
type TournamentHandlers struct {
	tournamentService tournamentservice.Service
	logger            *slog.Logger
	tracer            trace.Tracer
	metrics           observability.Metrics
	helpers           utils.Helpers
	handlerWrapper    func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc
}

// NewTournamentHandlers creates a new TournamentHandlers.
func NewTournamentHandlers(
	tournamentService tournamentservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	metrics observability.Metrics,
) Handlers {
	return &TournamentHandlers{
		tournamentService: tournamentService,
		logger:            logger,
		tracer:            tracer,
		helpers:           helpers,
		metrics:           metrics,
		handlerWrapper: func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc {
			return handlerWrapper(handlerName, unmarshalTo, handlerFunc, logger, metrics, tracer, helpers)
		},
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
			metrics.RecordHandlerDuration(handlerName, time.Since(startTime).Seconds())
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

		metrics.RecordHandlerSuccess(handlerName)
		return result, nil
	}
}

// HandleCreateRequested sets up a new tournament with round 1 in draft.
func (h *TournamentHandlers) HandleCreateRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleCreateRequested",
		&tournamentevents.CreateRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*tournamentevents.CreateRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleCreateRequested")
			}

			result, err := h.tournamentService.CreateTournament(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, tournamentevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			createdMsg, err := h.helpers.CreateResultMessage(msg, result.Success, tournamentevents.CreatedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create tournament created message: %w", err)
			}
			return []*message.Message{createdMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandleParticipantsRegisterRequested adds participants to the pool.
func (h *TournamentHandlers) HandleParticipantsRegisterRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleParticipantsRegisterRequested",
		&tournamentevents.ParticipantsRegisterRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*tournamentevents.ParticipantsRegisterRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleParticipantsRegisterRequested")
			}

			result, err := h.tournamentService.RegisterParticipants(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, tournamentevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, tournamentevents.ParticipantsRegisteredV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create participants registered message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
