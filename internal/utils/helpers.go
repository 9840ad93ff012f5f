package utils

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// TopicMetadataKey carries the destination topic on result messages. Handlers
// return messages with this key set and the event bus routes on it, so one
// handler can fan out to several topics.
const TopicMetadataKey = "topic"

// Helpers bundles the message plumbing shared by every handler.
type Helpers interface {
	UnmarshalPayload(msg *message.Message, target any) error
	CreateResultMessage(origin *message.Message, payload any, topic string) (*message.Message, error)
	CreateNewMessage(payload any, topic string) (*message.Message, error)
}

type helpers struct{}

func NewHelpers() Helpers {
	return helpers{}
}

// UnmarshalPayload decodes the message payload into target.
func (helpers) UnmarshalPayload(msg *message.Message, target any) error {
	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// CreateResultMessage builds a message destined for topic, carrying over the
// correlation ID from the originating message.
func (h helpers) CreateResultMessage(origin *message.Message, payload any, topic string) (*message.Message, error) {
	msg, err := h.CreateNewMessage(payload, topic)
	if err != nil {
		return nil, err
	}

	correlationID := origin.Metadata.Get(middleware.CorrelationIDMetadataKey)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	msg.Metadata.Set(middleware.CorrelationIDMetadataKey, correlationID)

	return msg, nil
}

// CreateNewMessage builds a message destined for topic with a fresh correlation ID.
func (helpers) CreateNewMessage(payload any, topic string) (*message.Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for topic %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	msg.Metadata.Set(TopicMetadataKey, topic)
	msg.Metadata.Set(middleware.CorrelationIDMetadataKey, watermill.NewUUID())
	return msg, nil
}
