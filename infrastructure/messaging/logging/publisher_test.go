package logging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"loopsite/domain/events"
)

func TestPublisher_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	publisher := NewPublisher(zap.New(core))
	now := time.Now()

	require.NoError(t, publisher.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewPageDeleted("blog/a", now),
		events.NewSlotsUpdated("", []string{"hero_title"}, now),
	}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypePageDeleted, entries[0].ContextMap()["eventType"])
	assert.Equal(t, "/", entries[1].ContextMap()["aggregateID"])
}
