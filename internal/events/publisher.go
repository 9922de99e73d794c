package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher publishes events after ledger transactions commit.
// Publishing is best-effort from the caller's perspective: a failed publish
// must never roll back the mutation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// EventSubscriber is the consuming side of the event stream.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Bus is an in-process pub/sub built on watermill's gochannel. It is the
// default transport; Kafka replaces the publisher side when brokers are
// configured.
type Bus struct {
	channel *gochannel.GoChannel
}

// NewBus creates the in-process event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		channel: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewSlogLogger(logger),
		),
	}
}

func (b *Bus) Publish(ctx context.Context, event *Event) error {
	msg, err := marshalEvent(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	return b.channel.Publish(Topic, msg)
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.channel.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.channel.Close()
}

// KafkaPublisher publishes events to a Kafka cluster for deployments where
// the notification consumer runs out of process.
type KafkaPublisher struct {
	publisher *kafka.Publisher
}

// NewKafkaPublisher connects to the given brokers.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (*KafkaPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &KafkaPublisher{publisher: publisher}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	msg, err := marshalEvent(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	return p.publisher.Publish(Topic, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// FanoutPublisher mirrors every event to multiple publishers, typically the
// in-process bus plus Kafka.
type FanoutPublisher struct {
	publishers []EventPublisher
}

func NewFanoutPublisher(publishers ...EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

func (f *FanoutPublisher) Publish(ctx context.Context, event *Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutPublisher) Close() error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func marshalEvent(event *Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("type", event.Type)
	msg.Metadata.Set("source", event.Source)
	return msg, nil
}

// UnmarshalEvent decodes an envelope from a watermill message.
func UnmarshalEvent(msg *message.Message) (*Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}
