package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loopsite/application/commands"
	"loopsite/application/commands/bus"
	"loopsite/application/designed"
	"loopsite/application/ports/mocks"
	"loopsite/domain/events"
	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
	apperrors "loopsite/pkg/errors"
	"loopsite/pkg/utils"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func samplePage(published bool) pages.Page {
	return pages.Page{
		Path:      "blog/hello",
		Title:     "Hello",
		Published: published,
		Sections:  []sections.Section{sections.New("a", sections.HeroProps{Headline: "Hello"})},
	}
}

func TestSavePageHandler_NewPublishedPage(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockPageStore)
	publisher := new(mocks.MockEventPublisher)
	store.On("FetchPage", ctx, "blog/hello").Return(nil, false, nil)
	store.On("SavePage", ctx, mock.AnythingOfType("*pages.Page")).Return(nil)
	publisher.On("Publish", ctx, mock.AnythingOfType("events.PagePublished")).Return(nil)
	handler := NewSavePageHandler(store, designed.Default(), publisher, utils.FixedClock(now), zap.NewNop())

	// Act
	saved, err := handler.Handle(ctx, commands.SavePageCommand{Page: samplePage(true)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, now, saved.CreatedAt)
	assert.Equal(t, now, saved.UpdatedAt)
	store.AssertExpectations(t)
	publisher.AssertExpectations(t)

	event := publisher.Calls[0].Arguments.Get(1).(events.PagePublished)
	assert.Equal(t, "/blog/hello", event.GetAggregateID())
	assert.Equal(t, 1, event.SectionCount)
}

func TestSavePageHandler_PreservesCreatedAtAndSkipsDraftEvent(t *testing.T) {
	ctx := context.Background()
	created := now.Add(-48 * time.Hour)
	store := new(mocks.MockPageStore)
	publisher := new(mocks.MockEventPublisher)
	store.On("FetchPage", ctx, "blog/hello").Return(&pages.Page{Path: "blog/hello", CreatedAt: created}, true, nil)
	store.On("SavePage", ctx, mock.AnythingOfType("*pages.Page")).Return(nil)
	handler := NewSavePageHandler(store, designed.Default(), publisher, utils.FixedClock(now), zap.NewNop())

	saved, err := handler.Handle(ctx, commands.SavePageCommand{Page: samplePage(false)})

	require.NoError(t, err)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, now, saved.UpdatedAt)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSavePageHandler_DesignedPathConflicts(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockPageStore)
	handler := NewSavePageHandler(store, designed.Default(), new(mocks.MockEventPublisher), utils.FixedClock(now), zap.NewNop())

	for _, path := range []string{"loops/marketing", "spiritual-side-of-leadership/week-1"} {
		page := samplePage(true)
		page.Path = path

		_, err := handler.Handle(ctx, commands.SavePageCommand{Page: page})

		assert.True(t, apperrors.IsConflict(err), path)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeDesignedPath), path)
	}
	store.AssertNotCalled(t, "SavePage", mock.Anything, mock.Anything)
}

func TestSavePageHandler_StorageAndPublishFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("save fails", func(t *testing.T) {
		store := new(mocks.MockPageStore)
		store.On("FetchPage", ctx, "blog/hello").Return(nil, false, nil)
		store.On("SavePage", ctx, mock.Anything).Return(errors.New("disk full"))
		handler := NewSavePageHandler(store, designed.Default(), new(mocks.MockEventPublisher), utils.FixedClock(now), zap.NewNop())

		_, err := handler.Handle(ctx, commands.SavePageCommand{Page: samplePage(true)})

		assert.True(t, apperrors.IsStorageUnavailable(err))
	})

	t.Run("publish fails", func(t *testing.T) {
		store := new(mocks.MockPageStore)
		publisher := new(mocks.MockEventPublisher)
		store.On("FetchPage", ctx, "blog/hello").Return(nil, false, nil)
		store.On("SavePage", ctx, mock.Anything).Return(nil)
		publisher.On("Publish", ctx, mock.Anything).Return(errors.New("throttled"))
		handler := NewSavePageHandler(store, designed.Default(), publisher, utils.FixedClock(now), zap.NewNop())

		_, err := handler.Handle(ctx, commands.SavePageCommand{Page: samplePage(true)})

		assert.NoError(t, err)
	})
}

func TestDeletePageHandler(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockPageStore)
	publisher := new(mocks.MockEventPublisher)
	store.On("DeletePage", ctx, "blog/hello").Return(true, nil)
	store.On("DeletePage", ctx, "blog/missing").Return(false, nil)
	publisher.On("Publish", ctx, mock.AnythingOfType("events.PageDeleted")).Return(nil)
	handler := NewDeletePageHandler(store, publisher, utils.FixedClock(now), zap.NewNop())

	assert.NoError(t, handler.Handle(ctx, commands.DeletePageCommand{Path: "/blog/hello"}))
	assert.True(t, apperrors.IsContentNotFound(handler.Handle(ctx, commands.DeletePageCommand{Path: "blog/missing"})))
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestSaveSlotOverridesHandler(t *testing.T) {
	ctx := context.Background()
	title := slots.Text("Loops, not funnels")
	stages := slots.List("Attract", "Engage")
	tooMany := slots.List("a", "b")

	tests := []struct {
		name      string
		path      string
		overrides slots.Overrides
		check     func(t *testing.T, err error)
	}{
		{
			name:      "valid overrides",
			path:      "/loops/marketing",
			overrides: slots.Overrides{"hero_title": &title, "stages": &stages},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:      "undeclared slot",
			path:      "loops/marketing",
			overrides: slots.Overrides{"nope": &title},
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidSlots))
			},
		},
		{
			name:      "wrong kind",
			path:      "loops/marketing",
			overrides: slots.Overrides{"hero_title": &tooMany},
			check:     func(t *testing.T, err error) { assert.True(t, apperrors.IsValidation(err)) },
		},
		{
			name:      "not designed",
			path:      "blog/hello",
			overrides: slots.Overrides{},
			check:     func(t *testing.T, err error) { assert.True(t, apperrors.IsNotFound(err)) },
		},
		{
			name:      "subtree child",
			path:      "spiritual-side-of-leadership/week-1",
			overrides: slots.Overrides{},
			check:     func(t *testing.T, err error) { assert.True(t, apperrors.IsNotFound(err)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockPageStore)
			publisher := new(mocks.MockEventPublisher)
			store.On("SaveSlotOverrides", ctx, "loops/marketing", mock.Anything).Return(nil)
			publisher.On("Publish", ctx, mock.AnythingOfType("events.SlotsUpdated")).Return(nil)
			handler := NewSaveSlotOverridesHandler(store, designed.Default(), publisher, utils.FixedClock(now), zap.NewNop())

			err := handler.Handle(ctx, commands.SaveSlotOverridesCommand{Path: tt.path, Overrides: tt.overrides})

			tt.check(t, err)
		})
	}
}

func TestCommandBus_Dispatch(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockPageStore)
	store.On("DeletePage", ctx, "blog/hello").Return(false, nil)
	handler := NewDeletePageHandler(store, new(mocks.MockEventPublisher), utils.FixedClock(now), zap.NewNop())
	cb := bus.NewCommandBus(bus.LoggingMiddleware(zap.NewNop()))
	require.NoError(t, cb.Register(commands.DeletePageCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return handler.Handle(ctx, cmd.(commands.DeletePageCommand))
		},
	)))

	assert.True(t, apperrors.IsContentNotFound(cb.Send(ctx, commands.DeletePageCommand{Path: "blog/hello"})))
	assert.True(t, apperrors.IsValidation(cb.Send(ctx, commands.DeletePageCommand{})))
	assert.True(t, apperrors.IsType(cb.Send(ctx, commands.SaveSlotOverridesCommand{}), apperrors.ErrorTypeInternal))
}
