package roundhandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
)

// HandleTeamsApprovalRequested locks the current draft roster.
func (h *RoundHandlers) HandleTeamsApprovalRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleTeamsApprovalRequested",
		&roundevents.ApprovalRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*roundevents.ApprovalRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleTeamsApprovalRequested")
			}

			result, err := h.roundService.ApproveTeams(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.InfoContext(ctx, "Teams approval rejected",
					attr.CorrelationIDFromMsg(msg),
					attr.String("code", result.Failure.Code),
				)
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, roundevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			// The draft reminder is obsolete now; the pairing gate gets its own.
			h.cancelReminders(ctx, requestPayload.TournamentID)
			h.scheduleApprovalReminder(ctx, requestPayload.TournamentID, requestPayload.Round, roundtypes.StatusTeamsApproved)

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, roundevents.RostersConfirmedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create rosters confirmed message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}

// HandleMatchesApprovalRequested locks the generated pairing.
func (h *RoundHandlers) HandleMatchesApprovalRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandleMatchesApprovalRequested",
		&roundevents.ApprovalRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*roundevents.ApprovalRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandleMatchesApprovalRequested")
			}

			result, err := h.roundService.ApproveMatches(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.InfoContext(ctx, "Matches approval rejected",
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

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, roundevents.MatchesConfirmedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create matches confirmed message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
