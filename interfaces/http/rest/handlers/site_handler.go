package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"loopsite/application/queries"
	querybus "loopsite/application/queries/bus"
	"loopsite/interfaces/web"
	apperrors "loopsite/pkg/errors"
)

// SiteHandler serves rendered HTML pages
type SiteHandler struct {
	queryBus     *querybus.QueryBus
	layout       *web.Layout
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(
	queryBus *querybus.QueryBus,
	layout *web.Layout,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *SiteHandler {
	return &SiteHandler{
		queryBus:     queryBus,
		layout:       layout,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ServePage handles GET /*
func (h *SiteHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPageQuery{Path: r.URL.Path})
	if err != nil {
		h.errorHandler.Log(r, err)
		h.renderError(w, r, pageStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.layout.RenderPage(w, result.(*queries.RenderedPage)); err != nil {
		h.logger.Error("Failed to render layout", zap.String("path", r.URL.Path), zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError)
	}
}

func (h *SiteHandler) renderError(w http.ResponseWriter, r *http.Request, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := h.layout.RenderError(w, status); err != nil {
		h.logger.Error("Failed to render error page",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
}

// pageStatus maps a resolution failure to the status of the HTML page.
// Invalid paths cannot name content, so they read as not found.
func pageStatus(err error) int {
	switch {
	case apperrors.IsContentNotFound(err), apperrors.IsValidation(err):
		return http.StatusNotFound
	case apperrors.IsStorageUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
