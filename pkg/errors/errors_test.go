package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContentErrors(t *testing.T) {
	notFound := NewContentNotFoundError("nonexistent/path")
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsContentNotFound(notFound))
	assert.False(t, IsStorageUnavailable(notFound))
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
	assert.Equal(t, "/nonexistent/path", notFound.Details["path"])

	cause := stderrors.New("connection refused")
	unavailable := NewStorageUnavailableError("fetch page", cause)
	wrapped := fmt.Errorf("resolve: %w", unavailable)
	assert.True(t, IsStorageUnavailable(wrapped))
	assert.True(t, IsUnavailable(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, http.StatusServiceUnavailable, GetAppError(wrapped).HTTPStatus)
}

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
		wantLevel  zapcore.Level
	}{
		{"not found", NewContentNotFoundError("x"), http.StatusNotFound, "NOT_FOUND", CodeContentNotFound, zapcore.InfoLevel},
		{"validation", NewValidationError("bad").WithCode(CodeInvalidSections), http.StatusBadRequest, "VALIDATION", CodeInvalidSections, zapcore.WarnLevel},
		{"storage", NewStorageUnavailableError("fetch", stderrors.New("x")), http.StatusServiceUnavailable, "UNAVAILABLE", CodeStorageUnavailable, zapcore.ErrorLevel},
		{"plain", stderrors.New("boom"), http.StatusInternalServerError, "INTERNAL", "", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			core, logs := observer.New(zapcore.DebugLevel)
			h := NewErrorHandler(zap.New(core), false)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v2/pages/x", nil)

			// Act
			h.Handle(rec, req, tt.err)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantCode, body.Code)
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.wantLevel, logs.All()[0].Level)
		})
	}
}

func TestErrorHandler_HidesInternalsUnlessDebug(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), false).Handle(rec, req, stderrors.New("secret dsn"))
	assert.NotContains(t, rec.Body.String(), "secret dsn")

	rec = httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), true).Handle(rec, req, stderrors.New("secret dsn"))
	assert.Contains(t, rec.Body.String(), "secret dsn")
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	handler := h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestErrorHandler_HandleStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantType string
	}{
		{http.StatusBadRequest, "VALIDATION"},
		{http.StatusNotFound, "NOT_FOUND"},
		{http.StatusMethodNotAllowed, "NOT_FOUND"},
		{http.StatusConflict, "CONFLICT"},
		{http.StatusServiceUnavailable, "UNAVAILABLE"},
		{http.StatusBadGateway, "INTERNAL"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		NewErrorHandler(zap.NewNop(), false).HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.status, "msg")

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.status, rec.Code)
		assert.Equal(t, tt.wantType, body.Type, http.StatusText(tt.status))
	}
}
