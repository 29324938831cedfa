package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypePagePublished = "page.published"
	TypePageDeleted   = "page.deleted"
	TypeSlotsUpdated  = "slots.updated"
)

// Page Events

// PagePublished is raised when a stored page is saved in published state
type PagePublished struct {
	BaseEvent
	Path         string `json:"path"`
	Title        string `json:"title"`
	SectionCount int    `json:"section_count"`
}

// NewPagePublished creates a PagePublished event
func NewPagePublished(path, title string, sectionCount int, timestamp time.Time) PagePublished {
	return PagePublished{
		BaseEvent: BaseEvent{
			AggregateID: aggregateID(path),
			EventType:   TypePagePublished,
			Timestamp:   timestamp,
			Version:     1,
		},
		Path:         path,
		Title:        title,
		SectionCount: sectionCount,
	}
}

// PageDeleted is raised when a stored page is removed
type PageDeleted struct {
	BaseEvent
	Path string `json:"path"`
}

// NewPageDeleted creates a PageDeleted event
func NewPageDeleted(path string, timestamp time.Time) PageDeleted {
	return PageDeleted{
		BaseEvent: BaseEvent{
			AggregateID: aggregateID(path),
			EventType:   TypePageDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		Path: path,
	}
}

// Slot Events

// SlotsUpdated is raised when the slot overrides of a designed page change
type SlotsUpdated struct {
	BaseEvent
	Path    string   `json:"path"`
	SlotIDs []string `json:"slot_ids"`
}

// NewSlotsUpdated creates a SlotsUpdated event
func NewSlotsUpdated(path string, slotIDs []string, timestamp time.Time) SlotsUpdated {
	return SlotsUpdated{
		BaseEvent: BaseEvent{
			AggregateID: aggregateID(path),
			EventType:   TypeSlotsUpdated,
			Timestamp:   timestamp,
			Version:     1,
		},
		Path:    path,
		SlotIDs: slotIDs,
	}
}

// aggregateID keys events by page path; the home page is "/".
func aggregateID(path string) string {
	return "/" + path
}
