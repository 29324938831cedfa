// Package resilient decorates a page store with a circuit breaker and
// per-operation metrics.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"loopsite/application/ports"
	"loopsite/domain/pages"
	"loopsite/domain/slots"
	"loopsite/pkg/observability"
)

// ErrCircuitOpen is returned while the breaker rejects calls
var ErrCircuitOpen = errors.New("page store circuit breaker is open")

// BreakerConfig holds configuration for the storage circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker used in front of the page store
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "page-store",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      10,
	}
}

// Store wraps a ports.PageStore. Storage failures count against the
// breaker; absence and caller cancellation do not.
type Store struct {
	inner   ports.PageStore
	breaker *gobreaker.CircuitBreaker
	metrics observability.Recorder
	logger  *zap.Logger
}

// NewStore creates a resilient store around inner
func NewStore(inner ports.PageStore, cfg BreakerConfig, metrics observability.Recorder, logger *zap.Logger) *Store {
	if metrics == nil {
		metrics = observability.Noop{}
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Store{inner: inner, breaker: breaker, metrics: metrics, logger: logger}
}

// State returns the breaker state, for readiness reporting
func (s *Store) State() gobreaker.State { return s.breaker.State() }

func (s *Store) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	s.metrics.RecordStorageOperation(operation, err, time.Since(start))
	return result, err
}

type fetchedPage struct {
	page  *pages.Page
	found bool
}

type fetchedOverrides struct {
	overrides slots.Overrides
	found     bool
}

// FetchPage implements ports.PageReader
func (s *Store) FetchPage(ctx context.Context, path string) (*pages.Page, bool, error) {
	result, err := s.execute("fetch_page", func() (interface{}, error) {
		page, found, err := s.inner.FetchPage(ctx, path)
		return fetchedPage{page: page, found: found}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := result.(fetchedPage)
	return r.page, r.found, nil
}

// FetchSlotOverrides implements ports.PageReader
func (s *Store) FetchSlotOverrides(ctx context.Context, path string) (slots.Overrides, bool, error) {
	result, err := s.execute("fetch_slot_overrides", func() (interface{}, error) {
		overrides, found, err := s.inner.FetchSlotOverrides(ctx, path)
		return fetchedOverrides{overrides: overrides, found: found}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := result.(fetchedOverrides)
	return r.overrides, r.found, nil
}

// SavePage implements ports.PageWriter
func (s *Store) SavePage(ctx context.Context, page *pages.Page) error {
	_, err := s.execute("save_page", func() (interface{}, error) {
		return nil, s.inner.SavePage(ctx, page)
	})
	return err
}

// DeletePage implements ports.PageWriter
func (s *Store) DeletePage(ctx context.Context, path string) (bool, error) {
	result, err := s.execute("delete_page", func() (interface{}, error) {
		return s.inner.DeletePage(ctx, path)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// SaveSlotOverrides implements ports.PageWriter
func (s *Store) SaveSlotOverrides(ctx context.Context, path string, overrides slots.Overrides) error {
	_, err := s.execute("save_slot_overrides", func() (interface{}, error) {
		return nil, s.inner.SaveSlotOverrides(ctx, path, overrides)
	})
	return err
}

// ListPages implements ports.PageLister
func (s *Store) ListPages(ctx context.Context) ([]pages.Summary, error) {
	result, err := s.execute("list_pages", func() (interface{}, error) {
		return s.inner.ListPages(ctx)
	})
	if err != nil {
		return nil, err
	}
	list, _ := result.([]pages.Summary)
	return list, nil
}

// Ping reports readiness: an open breaker is not ready, otherwise the
// inner store is asked when it can answer.
func (s *Store) Ping(ctx context.Context) error {
	if s.breaker.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}
	if hc, ok := s.inner.(ports.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}
