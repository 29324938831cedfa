package handlers

import (
	"context"

	"go.uber.org/zap"

	"loopsite/application/commands"
	"loopsite/application/designed"
	"loopsite/application/ports"
	"loopsite/domain/events"
	"loopsite/domain/pages"
	"loopsite/domain/slots"
	apperrors "loopsite/pkg/errors"
	"loopsite/pkg/utils"
)

// SavePageHandler handles page save commands
type SavePageHandler struct {
	store     ports.PageStore
	designed  *designed.Registry
	publisher ports.EventPublisher
	clock     utils.Clock
	logger    *zap.Logger
}

// NewSavePageHandler creates a new save page handler
func NewSavePageHandler(
	store ports.PageStore,
	registry *designed.Registry,
	publisher ports.EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) *SavePageHandler {
	return &SavePageHandler{
		store:     store,
		designed:  registry,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Handle executes the save page command
func (h *SavePageHandler) Handle(ctx context.Context, cmd commands.SavePageCommand) (*pages.Page, error) {
	page := cmd.Page
	page.Path = pages.NormalizePath(page.Path)

	// A stored page on a designed path would never be served
	if h.designed.Contains(page.Path) {
		return nil, apperrors.NewConflictError("path is served by a designed page").
			WithCode(apperrors.CodeDesignedPath).
			WithDetails(map[string]interface{}{"path": "/" + page.Path})
	}

	existing, found, err := h.store.FetchPage(ctx, page.Path)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("fetch page", err)
	}

	now := h.clock.Now()
	page.UpdatedAt = now
	if found && !existing.CreatedAt.IsZero() {
		page.CreatedAt = existing.CreatedAt
	} else {
		page.CreatedAt = now
	}

	if err := h.store.SavePage(ctx, &page); err != nil {
		return nil, apperrors.NewStorageUnavailableError("save page", err)
	}

	if page.Published {
		event := events.NewPagePublished(page.Path, page.Title, len(page.Sections), now)
		if err := h.publisher.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish page event", zap.String("path", page.Path), zap.Error(err))
		}
	}

	h.logger.Info("Page saved",
		zap.String("path", page.Path),
		zap.Bool("published", page.Published),
		zap.Int("sections", len(page.Sections)),
	)
	return &page, nil
}

// DeletePageHandler handles page deletion commands
type DeletePageHandler struct {
	store     ports.PageWriter
	publisher ports.EventPublisher
	clock     utils.Clock
	logger    *zap.Logger
}

// NewDeletePageHandler creates a new delete page handler
func NewDeletePageHandler(store ports.PageWriter, publisher ports.EventPublisher, clock utils.Clock, logger *zap.Logger) *DeletePageHandler {
	return &DeletePageHandler{store: store, publisher: publisher, clock: clock, logger: logger}
}

// Handle executes the delete page command
func (h *DeletePageHandler) Handle(ctx context.Context, cmd commands.DeletePageCommand) error {
	path := pages.NormalizePath(cmd.Path)

	deleted, err := h.store.DeletePage(ctx, path)
	if err != nil {
		return apperrors.NewStorageUnavailableError("delete page", err)
	}
	if !deleted {
		return apperrors.NewContentNotFoundError(path)
	}

	if err := h.publisher.Publish(ctx, events.NewPageDeleted(path, h.clock.Now())); err != nil {
		h.logger.Warn("Failed to publish deletion event", zap.String("path", path), zap.Error(err))
	}

	h.logger.Info("Page deleted", zap.String("path", path))
	return nil
}

// SaveSlotOverridesHandler handles slot override commands
type SaveSlotOverridesHandler struct {
	store     ports.PageWriter
	designed  *designed.Registry
	publisher ports.EventPublisher
	clock     utils.Clock
	logger    *zap.Logger
}

// NewSaveSlotOverridesHandler creates a new slot overrides handler
func NewSaveSlotOverridesHandler(
	store ports.PageWriter,
	registry *designed.Registry,
	publisher ports.EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) *SaveSlotOverridesHandler {
	return &SaveSlotOverridesHandler{
		store:     store,
		designed:  registry,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Handle executes the save slot overrides command. Overrides are keyed by
// the designed page's own path, so subtree paths are rejected.
func (h *SaveSlotOverridesHandler) Handle(ctx context.Context, cmd commands.SaveSlotOverridesCommand) error {
	path := pages.NormalizePath(cmd.Path)

	page, ok := h.designed.Lookup(path)
	if !ok || page.Path() != path || page.Slots().Len() == 0 {
		return apperrors.NewNotFoundError("designed page with slots").
			WithDetails(map[string]interface{}{"path": "/" + path})
	}

	if err := slots.CheckOverrides(page.Slots(), cmd.Overrides); err != nil {
		return apperrors.NewValidationError(err.Error()).
			WithCode(apperrors.CodeInvalidSlots).
			WithCause(err)
	}

	overrides := cmd.Overrides
	if overrides == nil {
		overrides = slots.Overrides{}
	}
	if err := h.store.SaveSlotOverrides(ctx, path, overrides); err != nil {
		return apperrors.NewStorageUnavailableError("save slot overrides", err)
	}

	event := events.NewSlotsUpdated(path, overrides.IDs(), h.clock.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish slots event", zap.String("path", path), zap.Error(err))
	}

	h.logger.Info("Slot overrides saved", zap.String("path", path), zap.Int("count", len(overrides)))
	return nil
}
