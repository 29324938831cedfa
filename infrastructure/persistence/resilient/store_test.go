package resilient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loopsite/application/ports/mocks"
	"loopsite/domain/pages"
)

type storageCall struct {
	operation string
	failed    bool
}

// recordingMetrics captures storage operations and ignores the rest
type recordingMetrics struct {
	calls []storageCall
}

func (r *recordingMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
func (r *recordingMetrics) RecordSectionSkipped(string, string)                  {}
func (r *recordingMetrics) RecordRender(string, int, time.Duration)              {}
func (r *recordingMetrics) RecordStorageOperation(op string, err error, _ time.Duration) {
	r.calls = append(r.calls, storageCall{operation: op, failed: err != nil})
}

func testConfig() BreakerConfig {
	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 2
	cfg.FailureThreshold = 1
	cfg.Timeout = time.Hour
	return cfg
}

func TestStore_PassesThroughAndRecords(t *testing.T) {
	// Arrange
	ctx := context.Background()
	inner := new(mocks.MockPageStore)
	page := &pages.Page{Path: "blog/a", Title: "A"}
	inner.On("FetchPage", ctx, "blog/a").Return(page, true, nil)
	inner.On("FetchPage", ctx, "blog/missing").Return(nil, false, nil)
	inner.On("DeletePage", ctx, "blog/a").Return(true, nil)
	metrics := &recordingMetrics{}
	store := NewStore(inner, testConfig(), metrics, zap.NewNop())

	// Act
	got, found, err := store.FetchPage(ctx, "blog/a")
	require.NoError(t, err)
	_, missing, err := store.FetchPage(ctx, "blog/missing")
	require.NoError(t, err)
	deleted, err := store.DeletePage(ctx, "blog/a")
	require.NoError(t, err)

	// Assert
	assert.Same(t, page, got)
	assert.True(t, found)
	assert.False(t, missing)
	assert.True(t, deleted)
	assert.Equal(t, []storageCall{
		{operation: "fetch_page"},
		{operation: "fetch_page"},
		{operation: "delete_page"},
	}, metrics.calls)
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestStore_OpensAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	inner := new(mocks.MockPageStore)
	cause := errors.New("connection refused")
	inner.On("ListPages", ctx).Return(nil, cause)
	store := NewStore(inner, testConfig(), nil, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := store.ListPages(ctx)
		assert.ErrorIs(t, err, cause)
	}
	_, err := store.ListPages(ctx)

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, gobreaker.StateOpen, store.State())
	assert.ErrorIs(t, store.Ping(ctx), ErrCircuitOpen)
	inner.AssertNumberOfCalls(t, "ListPages", 2)
}

func TestStore_CancellationDoesNotTrip(t *testing.T) {
	ctx := context.Background()
	inner := new(mocks.MockPageStore)
	inner.On("SavePage", ctx, mock.Anything).Return(context.Canceled)
	store := NewStore(inner, testConfig(), nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, store.SavePage(ctx, &pages.Page{Path: "blog/a"}), context.Canceled)
	}

	assert.Equal(t, gobreaker.StateClosed, store.State())
}
