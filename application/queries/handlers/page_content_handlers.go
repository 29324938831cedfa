package handlers

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"loopsite/application/designed"
	"loopsite/application/ports"
	"loopsite/application/queries"
	"loopsite/domain/pages"
	apperrors "loopsite/pkg/errors"
)

// GetPageContentHandler returns the stored content of a generic page
type GetPageContentHandler struct {
	store  ports.PageReader
	logger *zap.Logger
}

// NewGetPageContentHandler creates a new page content handler
func NewGetPageContentHandler(store ports.PageReader, logger *zap.Logger) *GetPageContentHandler {
	return &GetPageContentHandler{store: store, logger: logger}
}

// Handle executes the page content query. Drafts are returned too; this is
// the authoring read path.
func (h *GetPageContentHandler) Handle(ctx context.Context, query queries.GetPageContentQuery) (*pages.Page, error) {
	path := pages.NormalizePath(query.Path)

	page, found, err := h.store.FetchPage(ctx, path)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("fetch page", err)
	}
	if !found {
		return nil, apperrors.NewContentNotFoundError(path)
	}
	return page, nil
}

// ListPagesHandler lists designed and stored pages
type ListPagesHandler struct {
	store    ports.PageLister
	designed *designed.Registry
	logger   *zap.Logger
}

// NewListPagesHandler creates a new list pages handler
func NewListPagesHandler(store ports.PageLister, registry *designed.Registry, logger *zap.Logger) *ListPagesHandler {
	return &ListPagesHandler{store: store, designed: registry, logger: logger}
}

// Handle executes the list pages query
func (h *ListPagesHandler) Handle(ctx context.Context, query queries.ListPagesQuery) (*queries.ListPagesResult, error) {
	stored, err := h.store.ListPages(ctx)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("list pages", err)
	}

	result := &queries.ListPagesResult{Pages: make([]queries.PageListing, 0, len(stored)+len(h.designed.Paths()))}
	for _, p := range h.designed.Pages() {
		listing := queries.PageListing{Path: p.Path(), Title: p.Title(), Kind: "designed", Published: true}
		for _, s := range p.Slots().Slots() {
			listing.Slots = append(listing.Slots, s.ID)
		}
		result.Pages = append(result.Pages, listing)
	}

	sort.Slice(stored, func(i, j int) bool { return stored[i].Path < stored[j].Path })
	for _, s := range stored {
		if !s.Published && !query.IncludeDrafts {
			continue
		}
		// A stored row shadowed by a designed page is never served.
		if h.designed.Contains(s.Path) {
			h.logger.Warn("Stored page shadowed by designed page", zap.String("path", s.Path))
			continue
		}
		updated := s.UpdatedAt
		result.Pages = append(result.Pages, queries.PageListing{
			Path:      s.Path,
			Title:     s.Title,
			Kind:      "generic",
			Published: s.Published,
			UpdatedAt: &updated,
		})
	}
	return result, nil
}
