// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"loopsite/domain/events"
	"loopsite/domain/pages"
	"loopsite/domain/slots"
)

// MockPageStore mocks ports.PageStore
type MockPageStore struct {
	mock.Mock
}

func (m *MockPageStore) FetchPage(ctx context.Context, path string) (*pages.Page, bool, error) {
	args := m.Called(ctx, path)
	page, _ := args.Get(0).(*pages.Page)
	return page, args.Bool(1), args.Error(2)
}

func (m *MockPageStore) FetchSlotOverrides(ctx context.Context, path string) (slots.Overrides, bool, error) {
	args := m.Called(ctx, path)
	overrides, _ := args.Get(0).(slots.Overrides)
	return overrides, args.Bool(1), args.Error(2)
}

func (m *MockPageStore) SavePage(ctx context.Context, page *pages.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageStore) DeletePage(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockPageStore) SaveSlotOverrides(ctx context.Context, path string, overrides slots.Overrides) error {
	args := m.Called(ctx, path, overrides)
	return args.Error(0)
}

func (m *MockPageStore) ListPages(ctx context.Context) ([]pages.Summary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]pages.Summary)
	return summaries, args.Error(1)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}
