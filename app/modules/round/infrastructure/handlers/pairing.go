package roundhandlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	roundevents "github.com/trycohn/1337-sub004/app/modules/round/domain/events"
	"github.com/trycohn/1337-sub004/internal/observability/attr"
)

// HandlePairingRequested generates match pairs over the approved roster.
func (h *RoundHandlers) HandlePairingRequested(msg *message.Message) ([]*message.Message, error) {
	wrappedHandler := h.handlerWrapper(
		"HandlePairingRequested",
		&roundevents.PairingRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			requestPayload, ok := payload.(*roundevents.PairingRequestedPayloadV1)
			if !ok {
				return nil, fmt.Errorf("invalid payload type for HandlePairingRequested")
			}

			result, err := h.roundService.GeneratePairing(ctx, *requestPayload)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				h.logger.InfoContext(ctx, "Pairing generation rejected",
					attr.CorrelationIDFromMsg(msg),
					attr.String("code", result.Failure.Code),
				)
				failMsg, err := h.helpers.CreateResultMessage(msg, result.Failure, roundevents.OperationFailedV1)
				if err != nil {
					return nil, fmt.Errorf("failed to create failure message: %w", err)
				}
				return []*message.Message{failMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, roundevents.PairingGeneratedV1)
			if err != nil {
				return nil, fmt.Errorf("failed to create pairing generated message: %w", err)
			}
			return []*message.Message{successMsg}, nil
		},
	)

	return wrappedHandler(msg)
}
