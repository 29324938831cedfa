package ports

import (
	"context"

	"loopsite/domain/events"
	"loopsite/domain/pages"
	"loopsite/domain/slots"
)

// PageReader defines the read side of page storage
// Absence is reported through the bool, never as an error
type PageReader interface {
	// FetchPage retrieves the stored page for a normalized path
	FetchPage(ctx context.Context, path string) (*pages.Page, bool, error)

	// FetchSlotOverrides retrieves persisted slot overrides for a designed page
	FetchSlotOverrides(ctx context.Context, path string) (slots.Overrides, bool, error)
}

// PageWriter defines the write side of page storage
type PageWriter interface {
	// SavePage persists a page (create or replace)
	SavePage(ctx context.Context, page *pages.Page) error

	// DeletePage removes a page; it reports false when nothing was stored
	DeletePage(ctx context.Context, path string) (bool, error)

	// SaveSlotOverrides replaces the slot overrides stored for a path
	SaveSlotOverrides(ctx context.Context, path string, overrides slots.Overrides) error
}

// PageLister lists stored pages
type PageLister interface {
	// ListPages returns summaries ordered by path
	ListPages(ctx context.Context) ([]pages.Summary, error)
}

// PageStore is the full storage port used by the DI container
type PageStore interface {
	PageReader
	PageWriter
	PageLister
}

// HealthChecker is implemented by stores that can report readiness
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
