package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	applog "lecture-sync/internal/log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-logr/logr"
)

// Bus est un bus en mémoire : un pub/sub gochannel et un router watermill
// qui distribue les messages aux handlers enregistrés avant Run.
type Bus struct {
	pubSub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter
}

func NewBus(logger logr.Logger) (*Bus, error) {
	wl := applog.NewWatermillAdapter(logger.WithName("events"))

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wl)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, wl)
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
	)

	return &Bus{pubSub: pubSub, router: router, logger: wl}, nil
}

func (b *Bus) PublishJobSubmitted(ctx context.Context, evt JobSubmitted) error {
	return b.publish(ctx, TopicJobSubmitted, evt.RequestID, evt)
}

func (b *Bus) PublishStatusChanged(ctx context.Context, evt StatusChanged) error {
	return b.publish(ctx, TopicStatusChanged, "", evt)
}

func (b *Bus) publish(ctx context.Context, topic, correlationID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}

	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}
	return nil
}

// OnJobSubmitted enregistre un handler ; doit être appelé avant Run
func (b *Bus) OnJobSubmitted(name string, fn func(ctx context.Context, evt JobSubmitted) error) {
	b.router.AddNoPublisherHandler(name, TopicJobSubmitted, b.pubSub, func(msg *message.Message) error {
		var evt JobSubmitted
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			b.logger.Error("dropping malformed event", err, watermill.LogFields{"topic": TopicJobSubmitted})
			return nil
		}
		return fn(msg.Context(), evt)
	})
}

// OnStatusChanged enregistre un handler ; doit être appelé avant Run
func (b *Bus) OnStatusChanged(name string, fn func(ctx context.Context, evt StatusChanged) error) {
	b.router.AddNoPublisherHandler(name, TopicStatusChanged, b.pubSub, func(msg *message.Message) error {
		var evt StatusChanged
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			b.logger.Error("dropping malformed event", err, watermill.LogFields{"topic": TopicStatusChanged})
			return nil
		}
		return fn(msg.Context(), evt)
	})
}

// ForwardTo republie tous les messages de topic vers un publisher externe (AMQP)
func (b *Bus) ForwardTo(name, topic string, publisher message.Publisher) {
	b.router.AddHandler(name, topic, b.pubSub, topic, publisher, func(msg *message.Message) ([]*message.Message, error) {
		out := message.NewMessage(msg.UUID, msg.Payload)
		for k, v := range msg.Metadata {
			out.Metadata.Set(k, v)
		}
		return []*message.Message{out}, nil
	})
}

// Run bloque jusqu'à l'annulation du contexte ou Close
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return err
	}
	return b.pubSub.Close()
}
