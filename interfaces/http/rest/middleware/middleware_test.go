package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"loopsite/pkg/auth"
)

type httpCall struct {
	method, route string
	status        int
}

type recordingMetrics struct{ calls []httpCall }

func (r *recordingMetrics) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	r.calls = append(r.calls, httpCall{method: method, route: route, status: status})
}
func (r *recordingMetrics) RecordSectionSkipped(string, string)                {}
func (r *recordingMetrics) RecordRender(string, int, time.Duration)            {}
func (r *recordingMetrics) RecordStorageOperation(string, error, time.Duration) {}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestMetrics_UsesRoutePattern(t *testing.T) {
	metrics := &recordingMetrics{}
	r := chi.NewRouter()
	r.Use(Metrics(metrics))
	r.Get("/api/v2/pages/*", ok)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v2/pages/blog/a", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, metrics.calls, 2)
	assert.Equal(t, httpCall{method: "GET", route: "/api/v2/pages/*", status: 200}, metrics.calls[0])
	assert.Equal(t, http.StatusNotFound, metrics.calls[1].status)
}

func TestLogger_LevelByStatusAndPath(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(Logger(zap.New(core)))
	r.Get("/health", ok)
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRequireToken(t *testing.T) {
	handler := RequireToken("s3cret", zap.NewNop())(http.HandlerFunc(ok))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer s3cret", status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong", header: "Bearer nope", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v2/pages/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}

	open := RequireToken("", zap.NewNop())(http.HandlerFunc(ok))
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(auth.NewIPRateLimiter(1))(http.HandlerFunc(ok))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPut, "/", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPut, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}
