package events

import (
	"fmt"

	applog "lecture-sync/internal/log"

	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-logr/logr"
)

// NewAMQPPublisher crée un publisher vers des queues durables nommées d'après le topic
func NewAMQPPublisher(url string, logger logr.Logger) (message.Publisher, error) {
	publisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(url),
		applog.NewWatermillAdapter(logger.WithName("amqp")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create amqp publisher: %w", err)
	}
	return publisher, nil
}

// ExportToAMQP branche l'export des deux topics vers AMQP. À appeler avant Run.
func (b *Bus) ExportToAMQP(url string, logger logr.Logger) (message.Publisher, error) {
	publisher, err := NewAMQPPublisher(url, logger)
	if err != nil {
		return nil, err
	}
	b.ForwardTo("amqp-export-submitted", TopicJobSubmitted, publisher)
	b.ForwardTo("amqp-export-status", TopicStatusChanged, publisher)
	return publisher, nil
}
