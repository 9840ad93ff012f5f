package roundhandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
)

// HandleMatchResultReported records a finished score from the match-play
// subsystem.
func (h *RoundHandlers) HandleMatchResultReported(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleMatchResultReported",
		&roundevents.MatchResultReportedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*roundevents.MatchResultReportedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleMatchResultReported")
			}

			result, err := h.roundService.ReportMatchResult(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.InfoContext(ctx, "Match result rejected",
					attr.CorrelationIDFromMsg(msg),
					attr.String("code", result.Failure.Code),
				)
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, roundevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, roundevents.MatchUpdatedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create match updated message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandleResultsImportRequested applies an uploaded results sheet as a batch
// of match results.
func (h *RoundHandlers) HandleResultsImportRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleResultsImportRequested",
		&roundevents.ResultsImportRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*roundevents.ResultsImportRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleResultsImportRequested")
			}

			result, err := h.roundService.ImportResults(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.InfoContext(ctx, "Results import rejected",
					attr.CorrelationIDFromMsg(msg),
					attr.String("code", result.Failure.Code),
				)
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, roundevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, roundevents.ResultsImportedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create results imported message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
