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

	"loopsite/application/blocks"
	"loopsite/application/designed"
	"loopsite/application/ports/mocks"
	"loopsite/application/queries"
	"loopsite/application/queries/bus"
	"loopsite/application/rendering"
	"loopsite/application/resolution"
	"loopsite/domain/pages"
	"loopsite/domain/sections"
	apperrors "loopsite/pkg/errors"
	"loopsite/pkg/observability"
)

func newGetPageHandler(store *mocks.MockPageStore, observer rendering.DiagnosticObserver) *GetPageHandler {
	logger := zap.NewNop()
	return NewGetPageHandler(
		resolution.NewResolver(designed.Default(), store, logger),
		blocks.MustDefault(),
		observer,
		observability.Noop{},
		observability.NewTracer("loopsite", false),
		logger,
	)
}

func TestGetPageHandler_DesignedPage(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockPageStore)
	store.On("FetchSlotOverrides", ctx, "loops/marketing").Return(nil, false, nil)
	handler := newGetPageHandler(store, nil)

	// Act
	page, err := handler.Handle(ctx, queries.GetPageQuery{Path: "/loops/marketing"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, resolution.PlanDesigned, page.Kind)
	assert.Equal(t, "Marketing Loop", page.Title)
	require.Len(t, page.Fragments, 3)
	assert.Contains(t, string(page.Fragments[1].HTML), "Listen")
	assert.Zero(t, page.Skipped)
	store.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything)
}

func TestGetPageHandler_GenericPageCountsSkipped(t *testing.T) {
	ctx := context.Background()
	list, err := sections.Decode([]byte(`[
		{"id":"a","type":"hero","props":{"headline":"X"}},
		{"id":"b","type":"doesNotExist","props":{}},
		{"id":"c","type":"faqSection","props":{"items":[]}}
	]`))
	require.NoError(t, err)
	store := new(mocks.MockPageStore)
	store.On("FetchPage", ctx, "blog/my-post").Return(&pages.Page{
		Path: "blog/my-post", Title: "My Post", Published: true, Sections: list,
	}, true, nil)
	rec := &rendering.Recorder{}
	handler := newGetPageHandler(store, rec)

	page, err := handler.Handle(ctx, queries.GetPageQuery{Path: "blog/my-post"})

	require.NoError(t, err)
	assert.Equal(t, resolution.PlanGeneric, page.Kind)
	assert.Equal(t, "My Post", page.Title)
	assert.Len(t, page.Fragments, 2)
	assert.Equal(t, 1, page.Skipped)
	require.Len(t, rec.Diagnostics, 1)
	assert.Equal(t, "b", rec.Diagnostics[0].SectionID)
}

func TestGetPageHandler_ThroughBus(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockPageStore)
	store.On("FetchPage", ctx, "nonexistent/path").Return(nil, false, nil)
	handler := newGetPageHandler(store, nil)
	qb := bus.NewQueryBus(bus.LoggingMiddleware(zap.NewNop(), time.Second))
	require.NoError(t, qb.Register(queries.GetPageQuery{}, bus.QueryHandlerFunc(
		func(ctx context.Context, q bus.Query) (interface{}, error) {
			return handler.Handle(ctx, q.(queries.GetPageQuery))
		},
	)))

	_, err := qb.Ask(ctx, queries.GetPageQuery{Path: "nonexistent/path"})
	assert.True(t, apperrors.IsContentNotFound(err))

	_, err = qb.Ask(ctx, queries.GetPageQuery{Path: "bad\x00path"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = qb.Ask(ctx, queries.ListPagesQuery{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestGetPageContentHandler(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockPageStore)
	draft := &pages.Page{Path: "blog/draft", Title: "Draft"}
	store.On("FetchPage", ctx, "blog/draft").Return(draft, true, nil)
	store.On("FetchPage", ctx, "blog/missing").Return(nil, false, nil)
	store.On("FetchPage", ctx, "blog/down").Return(nil, false, errors.New("timeout"))
	handler := NewGetPageContentHandler(store, zap.NewNop())

	page, err := handler.Handle(ctx, queries.GetPageContentQuery{Path: "/blog/draft/"})
	require.NoError(t, err)
	assert.Same(t, draft, page)

	_, err = handler.Handle(ctx, queries.GetPageContentQuery{Path: "blog/missing"})
	assert.True(t, apperrors.IsContentNotFound(err))

	_, err = handler.Handle(ctx, queries.GetPageContentQuery{Path: "blog/down"})
	assert.True(t, apperrors.IsStorageUnavailable(err))
}

func TestListPagesHandler(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := new(mocks.MockPageStore)
	store.On("ListPages", ctx).Return([]pages.Summary{
		{Path: "blog/z", Title: "Z", Published: true, UpdatedAt: updated},
		{Path: "blog/a", Title: "A", Published: false, UpdatedAt: updated},
		{Path: "podcast", Title: "Shadowed", Published: true, UpdatedAt: updated},
	}, nil)
	handler := NewListPagesHandler(store, designed.Default(), zap.NewNop())

	published, err := handler.Handle(ctx, queries.ListPagesQuery{})
	require.NoError(t, err)
	withDrafts, err := handler.Handle(ctx, queries.ListPagesQuery{IncludeDrafts: true})
	require.NoError(t, err)

	require.Len(t, published.Pages, 7)
	assert.Equal(t, "designed", published.Pages[0].Kind)
	assert.Contains(t, published.Pages[0].Slots, "hero_title")
	assert.Equal(t, "blog/z", published.Pages[6].Path)
	assert.Equal(t, "generic", published.Pages[6].Kind)

	require.Len(t, withDrafts.Pages, 8)
	assert.Equal(t, "blog/a", withDrafts.Pages[6].Path)
}
