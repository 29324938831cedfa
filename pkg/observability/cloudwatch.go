package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxDatumsPerCall is the PutMetricData request limit.
const maxDatumsPerCall = 1000

// CloudWatchAPI is the part of the CloudWatch client the sink uses
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers datums in memory and ships them in batches, so
// recording never blocks a request on the network.
type CloudWatchMetrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewCloudWatchMetrics creates a buffered CloudWatch sink
func NewCloudWatchMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

func (m *CloudWatchMetrics) add(name string, value float64, unit types.StandardUnit, dims ...string) {
	datum := types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
	}
	for i := 0; i+1 < len(dims); i += 2 {
		datum.Dimensions = append(datum.Dimensions, types.Dimension{
			Name:  aws.String(dims[i]),
			Value: aws.String(dims[i+1]),
		})
	}

	m.mu.Lock()
	m.pending = append(m.pending, datum)
	m.mu.Unlock()
}

func (m *CloudWatchMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.add("HTTPRequestLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds,
		"Method", method, "Route", route, "Status", strconv.Itoa(status))
}

func (m *CloudWatchMetrics) RecordSectionSkipped(kind, sectionType string) {
	m.add("SectionsSkipped", 1, types.StandardUnitCount, "Kind", kind, "SectionType", sectionType)
}

func (m *CloudWatchMetrics) RecordRender(planKind string, fragments int, duration time.Duration) {
	m.add("RenderLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, "Plan", planKind)
	m.add("RenderedFragments", float64(fragments), types.StandardUnitCount, "Plan", planKind)
}

func (m *CloudWatchMetrics) RecordStorageOperation(operation string, err error, duration time.Duration) {
	m.add("StorageLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds,
		"Operation", operation, "Status", statusLabel(err))
}

// Pending returns the number of buffered datums
func (m *CloudWatchMetrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush sends every buffered datum. Datums from a failed batch are dropped
// and the failure is logged; metrics never fail the caller.
func (m *CloudWatchMetrics) Flush(ctx context.Context) {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for start := 0; start < len(batch); start += maxDatumsPerCall {
		end := min(start+maxDatumsPerCall, len(batch))
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			m.logger.Warn("Failed to send metrics",
				zap.Error(err),
				zap.Int("datums", end-start),
			)
		}
	}
}

// Run flushes every interval until ctx is done, then flushes once more.
func (m *CloudWatchMetrics) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			m.Flush(ctx)
		}
	}
}
