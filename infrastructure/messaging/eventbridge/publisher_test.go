package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loopsite/domain/events"
)

type fakeEventBridge struct {
	inputs []*eventbridge.PutEventsInput
	output *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

var ts = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	client := &fakeEventBridge{}
	publisher := NewPublisher(client, "loopsite-bus", zap.NewNop())

	// Act
	err := publisher.Publish(context.Background(), events.NewPagePublished("blog/a", "A", 2, ts))

	// Assert
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)
	entry := client.inputs[0].Entries[0]
	assert.Equal(t, "loopsite-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypePagePublished, aws.ToString(entry.DetailType))
	assert.Equal(t, []string{"loopsite:page:/blog/a"}, entry.Resources)

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "blog/a", detail["path"])
	assert.EqualValues(t, 2, detail["section_count"])
}

func TestPublisher_PublishBatchChunksByTen(t *testing.T) {
	client := &fakeEventBridge{}
	publisher := NewPublisher(client, "bus", zap.NewNop())
	batch := make([]events.DomainEvent, 23)
	for i := range batch {
		batch[i] = events.NewPageDeleted("blog/x", ts)
	}

	require.NoError(t, publisher.PublishBatch(context.Background(), batch))

	require.Len(t, client.inputs, 3)
	assert.Len(t, client.inputs[0].Entries, 10)
	assert.Len(t, client.inputs[2].Entries, 3)
	assert.NoError(t, publisher.PublishBatch(context.Background(), nil))
	assert.Len(t, client.inputs, 3)
}

func TestPublisher_Failures(t *testing.T) {
	ctx := context.Background()
	event := events.NewSlotsUpdated("podcast", []string{"hero_title"}, ts)

	t.Run("client error", func(t *testing.T) {
		client := &fakeEventBridge{err: errors.New("throttled")}
		err := NewPublisher(client, "bus", zap.NewNop()).Publish(ctx, event)
		assert.ErrorIs(t, err, client.err)
	})

	t.Run("failed entries", func(t *testing.T) {
		client := &fakeEventBridge{output: &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}}
		err := NewPublisher(client, "bus", zap.NewNop()).Publish(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 events failed")
	})
}
