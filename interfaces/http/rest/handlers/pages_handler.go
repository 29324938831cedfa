package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"loopsite/application/commands"
	"loopsite/application/commands/bus"
	"loopsite/application/queries"
	querybus "loopsite/application/queries/bus"
	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
	"loopsite/pkg/common"
	apperrors "loopsite/pkg/errors"
)

// PageHandler handles the JSON content API
type PageHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *PageHandler {
	return &PageHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// SavePageRequest represents the request body for saving a page
type SavePageRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Published   bool            `json:"published"`
	Sections    json.RawMessage `json:"sections"`
}

// SaveSlotsRequest represents the request body for saving slot overrides
type SaveSlotsRequest struct {
	Overrides slots.Overrides `json:"overrides"`
}

// ValidateSectionsRequest represents the request body for a dry-run check
type ValidateSectionsRequest struct {
	Sections json.RawMessage `json:"sections"`
}

// ValidateSectionsResponse reports whether a section list would be accepted
type ValidateSectionsResponse struct {
	Valid    bool               `json:"valid"`
	Count    int                `json:"count"`
	Problems []sections.Problem `json:"problems"`
}

// ListPages handles GET /pages
func (h *PageHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	includeDrafts, _ := strconv.ParseBool(r.URL.Query().Get("drafts"))

	result, err := h.queryBus.Ask(r.Context(), queries.ListPagesQuery{IncludeDrafts: includeDrafts})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	listing := result.(*queries.ListPagesResult)
	common.RespondWithMeta(w, http.StatusOK, listing.Pages, &common.MetaInfo{Count: len(listing.Pages)})
}

// GetPage handles GET /pages/*
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPageContentQuery{Path: wildcardPath(r)})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// RenderPage handles GET /render/*
func (h *PageHandler) RenderPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPageQuery{Path: wildcardPath(r)})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// SavePage handles PUT /pages/*
func (h *PageHandler) SavePage(w http.ResponseWriter, r *http.Request) {
	var req SavePageRequest
	if err := common.ParseJSONBody(w, r, &req, common.DefaultMaxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	list, err := decodeSections(req.Sections)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	cmd := commands.NewSavePageCommand(pages.Page{
		Path:        wildcardPath(r),
		Title:       req.Title,
		Description: req.Description,
		Published:   req.Published,
		Sections:    list,
	})
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	saved, err := h.queryBus.Ask(r.Context(), queries.GetPageContentQuery{Path: cmd.Page.Path})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("Page saved",
		zap.String("path", cmd.Page.Path),
		zap.Int("sections", len(cmd.Page.Sections)),
		zap.Bool("published", cmd.Page.Published),
	)
	common.RespondJSON(w, http.StatusOK, saved)
}

// DeletePage handles DELETE /pages/*
func (h *PageHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeletePageCommand{Path: pages.NormalizePath(wildcardPath(r))}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

// SaveSlots handles PUT /slots/*
func (h *PageHandler) SaveSlots(w http.ResponseWriter, r *http.Request) {
	var req SaveSlotsRequest
	if err := common.ParseJSONBody(w, r, &req, common.DefaultMaxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	cmd := commands.SaveSlotOverridesCommand{
		Path:      pages.NormalizePath(wildcardPath(r)),
		Overrides: req.Overrides,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"path":  cmd.Path,
		"slots": cmd.Overrides.IDs(),
	})
}

// ValidateSections handles POST /sections/validate. Invalid content is a
// successful response that lists the problems.
func (h *PageHandler) ValidateSections(w http.ResponseWriter, r *http.Request) {
	var req ValidateSectionsRequest
	if err := common.ParseJSONBody(w, r, &req, common.DefaultMaxBodyBytes); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}

	resp := ValidateSectionsResponse{Problems: []sections.Problem{}}
	list, err := sections.DecodeStrict(req.Sections)
	if err == nil {
		err = sections.Validate(list)
	}
	if err != nil {
		verr, ok := sections.AsValidationError(err)
		if !ok {
			h.errorHandler.Handle(w, r, apperrors.NewValidationError(err.Error()).WithCode(apperrors.CodeInvalidSections))
			return
		}
		resp.Problems = verr.Problems
	}
	resp.Valid = len(resp.Problems) == 0
	resp.Count = len(list)

	common.RespondJSON(w, http.StatusOK, resp)
}

// decodeSections strictly decodes an authored section list
func decodeSections(raw json.RawMessage) ([]sections.Section, error) {
	list, err := sections.DecodeStrict(raw)
	if err == nil {
		return list, nil
	}
	appErr := apperrors.NewValidationError("invalid sections").WithCode(apperrors.CodeInvalidSections)
	if verr, ok := sections.AsValidationError(err); ok {
		return nil, appErr.WithDetails(map[string]interface{}{"problems": verr.Problems})
	}
	return nil, appErr.WithCause(err)
}

// wildcardPath returns the page path captured by a trailing /* route
func wildcardPath(r *http.Request) string {
	return chi.URLParam(r, "*")
}
