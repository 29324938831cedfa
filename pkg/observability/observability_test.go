package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollector_RecordsSkippedSections(t *testing.T) {
	// Arrange
	c := NewCollector("loopsite")

	// Act
	c.RecordSectionSkipped("unknown_section_type", "doesNotExist")
	c.RecordSectionSkipped("unknown_section_type", "doesNotExist")
	c.RecordSectionSkipped("malformed_section_props", "hero")

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(c.SectionsSkipped.WithLabelValues("unknown_section_type", "doesNotExist")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SectionsSkipped.WithLabelValues("malformed_section_props", "hero")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("loopsite")
	c.RecordHTTPRequest(http.MethodGet, "/*", http.StatusOK, 12*time.Millisecond)
	c.RecordStorageOperation("fetch_page", errors.New("down"), time.Millisecond)
	rec := httptest.NewRecorder()

	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `loopsite_http_requests_total{method="GET",route="/*",status="200"} 1`)
	assert.Contains(t, body, `loopsite_storage_operations_total{operation="fetch_page",status="failure"} 1`)
}

func TestCollectors_AreIndependent(t *testing.T) {
	a, b := NewCollector("loopsite"), NewCollector("loopsite")

	a.RecordSectionSkipped("k", "t")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.SectionsSkipped.WithLabelValues("k", "t")))
}

type fakeCloudWatch struct {
	calls [][]int
	err   error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.calls = append(f.calls, []int{len(in.MetricData)})
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCloudWatchMetrics_FlushBatches(t *testing.T) {
	fake := &fakeCloudWatch{}
	m := NewCloudWatchMetrics("Loopsite/test", fake, zap.NewNop())
	for i := 0; i < 1500; i++ {
		m.RecordSectionSkipped("unknown_section_type", "x")
	}
	m.RecordRender("generic", 3, time.Millisecond)

	m.Flush(context.Background())

	assert.Equal(t, [][]int{{1000}, {502}}, fake.calls)
	assert.Equal(t, 0, m.Pending())
}

func TestCloudWatchMetrics_FailureIsSwallowed(t *testing.T) {
	fake := &fakeCloudWatch{err: errors.New("throttled")}
	m := NewCloudWatchMetrics("Loopsite/test", fake, zap.NewNop())
	m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)

	assert.NotPanics(t, func() { m.Flush(context.Background()) })
	assert.Equal(t, 0, m.Pending())
}

func TestCloudWatchMetrics_RunFlushesOnCancel(t *testing.T) {
	fake := &fakeCloudWatch{}
	m := NewCloudWatchMetrics("Loopsite/test", fake, zap.NewNop())
	m.RecordStorageOperation("list_pages", nil, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		m.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done

	assert.Len(t, fake.calls, 1)
}

func TestTracer_DisabledRunsFunction(t *testing.T) {
	tracer := NewTracer("loopsite", false)
	called := false

	err := tracer.TraceFunction(context.Background(), "render", func(context.Context) error {
		called = true
		return errors.New("render failed")
	})

	assert.True(t, called)
	assert.EqualError(t, err, "render failed")
	assert.False(t, tracer.Enabled())
}

func TestTracer_EnabledWithoutSegmentRunsUntraced(t *testing.T) {
	tracer := NewTracer("loopsite", true)

	err := tracer.TraceFunction(context.Background(), "resolve", func(context.Context) error { return nil })

	assert.NoError(t, err)
}

func TestTracer_AddMetadata(t *testing.T) {
	// Arrange
	seg := &xray.Segment{Name: "loopsite"}
	ctx := context.WithValue(context.Background(), xray.ContextKey, seg)
	value := map[string]int{"rendered": 2, "skipped": 1}

	// Act
	NewTracer("loopsite", false).AddMetadata(ctx, "sections", value)
	disabled := seg.Metadata
	NewTracer("loopsite", true).AddMetadata(ctx, "sections", value)

	// Assert
	assert.Nil(t, disabled)
	require.Contains(t, seg.Metadata, "default")
	assert.Equal(t, value, seg.Metadata["default"]["sections"])
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	assert.NotPanics(t, func() {
		r.RecordHTTPRequest("GET", "/", 200, 0)
		r.RecordSectionSkipped("k", "t")
		r.RecordRender("designed", 1, 0)
		r.RecordStorageOperation("op", nil, 0)
	})
}
