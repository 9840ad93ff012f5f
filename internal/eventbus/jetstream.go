package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/trycohn/1337-sub004/internal/utils"
)

// EventBus is the pub/sub surface the modules talk to. It satisfies both
// message.Publisher and message.Subscriber so it can be handed straight to a
// watermill router.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type natsEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// New connects to NATS JetStream and returns the event bus.
func New(natsURL string, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
		nc.Timeout(30 * time.Second),
	}

	jsConfig := wmnats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: true,
	}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         &wmnats.GobMarshaler{},
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Unmarshaler:       &wmnats.GobMarshaler{},
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		wmLogger,
	)
	if err != nil {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Warn("failed to close publisher after subscriber error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &natsEventBus{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
	}, nil
}

// Publish sends messages to topic. An empty topic means each message routes by
// its own topic metadata, which is how handler result messages reach their
// destinations.
func (b *natsEventBus) Publish(topic string, messages ...*message.Message) error {
	if topic != "" {
		return b.publisher.Publish(topic, messages...)
	}

	for _, msg := range messages {
		dest := msg.Metadata.Get(utils.TopicMetadataKey)
		if dest == "" {
			return fmt.Errorf("message %s has no destination topic", msg.UUID)
		}
		if err := b.publisher.Publish(dest, msg); err != nil {
			return fmt.Errorf("failed to publish message %s to %s: %w", msg.UUID, dest, err)
		}
	}
	return nil
}

func (b *natsEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *natsEventBus) Close() error {
	var errs []error
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}
	return nil
}
