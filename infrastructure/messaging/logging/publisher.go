// Package logging provides an event publisher that only logs, for local
// runs without an event bus.
package logging

import (
	"context"

	"go.uber.org/zap"

	"loopsite/domain/events"
)

// Publisher implements ports.EventPublisher by logging each event
type Publisher struct {
	logger *zap.Logger
}

// NewPublisher creates a logging publisher
func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish logs the event
func (p *Publisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Info("Content event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs every event
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		_ = p.Publish(ctx, event)
	}
	return nil
}
