package roundhandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
)

// HandleCompletionRequested closes out the round and fans out the outcome.
// A final-round completion additionally announces the tournament winner.
func (h *RoundHandlers) HandleCompletionRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleCompletionRequested",
		&roundevents.CompletionRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*roundevents.CompletionRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleCompletionRequested")
			}

			result, err := h.roundService.CompleteRound(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.InfoContext(ctx, "Round completion rejected",
					attr.CorrelationIDFromMsg(msg),
					attr.String("code", result.Failure.Code),
				)
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, roundevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			h.cancelReminders(ctx, requestPayload.TournamentID)

			completedMsg, err := h.helpers.CreateResultMessage(msg, result.Success.Completed, roundevents.RoundCompletedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create round completed message: %w", err)
			}
			out := []*message.Message{completedMsg}

			if result.Success.Won != nil {
				wonMsg, err := h.helpers.CreateResultMessage(msg, result.Success.Won, roundevents.TournamentWonV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create tournament won message: %w", err)
				}
				out = append(out, wonMsg)
			}

			return out, nil
		},
	)

	return wrappedHandler(msg)
}
