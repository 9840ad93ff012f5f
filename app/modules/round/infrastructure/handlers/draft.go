package roundhandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
)

// HandleDraftRequested regenerates the current round's roster draft.
func (h *RoundHandlers) HandleDraftRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleDraftRequested",
		&roundevents.DraftRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*roundevents.DraftRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleDraftRequested")
			}

			result, err := h.roundService.GenerateDraft(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.InfoContext(ctx, "Draft generation rejected",
					attr.CorrelationIDFromMsg(msg),
					attr.String("code", result.Failure.Code),
				)
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, roundevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			h.scheduleApprovalReminder(ctx, requestPayload.TournamentID, requestPayload.Round, roundtypes.StatusDraft)

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, roundevents.DraftRegeneratedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create draft regenerated message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
