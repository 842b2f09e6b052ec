package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/polyglot-faq/internal/infra/config"
	apperrors "github.com/yanqian/polyglot-faq/pkg/errors"
)

func TestWithRetry_ReplaysIdempotentRequests(t *testing.T) {
	attempts := 0
	flaky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("X-Attempt", "first")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	handler := withRetry(flaky, config.RetryConfig{Enabled: true, MaxAttempts: 3}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/faqs", nil))

	require.Equal(t, 2, attempts)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Empty(t, rec.Header().Get("X-Attempt"))
}

func TestWithRetry_NeverReplaysPost(t *testing.T) {
	attempts := 0
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := withRetry(failing, config.RetryConfig{Enabled: true, MaxAttempts: 3}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/faqs", strings.NewReader(`{}`)))

	require.Equal(t, 1, attempts)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWithRetry_SkipsExcludedPaths(t *testing.T) {
	attempts := 0
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	handler := withRetry(failing, config.RetryConfig{Enabled: true, MaxAttempts: 3, Exclude: []string{"/healthz"}}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, 1, attempts)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWithRetry_ReplaysBodyOnPut(t *testing.T) {
	var bodies []string
	handler := withRetry(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bodies = append(bodies, string(data))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), config.RetryConfig{Enabled: true, MaxAttempts: 2}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/faqs/1", strings.NewReader(`{"question":"q"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{`{"question":"q"}`, `{"question":"q"}`}, bodies)
}

func TestIPRateLimiter_RefillsOverTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}, func() time.Time { return now })

	require.True(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.2"))

	now = now.Add(30 * time.Second)
	require.True(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("10.0.0.3"))
	require.Len(t, limiter.visitors, 1)
}

func TestRateLimitMiddleware_RejectsWithRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(errorHandlingMiddleware(newTestLogger()), rateLimitMiddleware(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 30, Burst: 1}, newTestLogger()))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "2", second.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, second.Body.Bytes())["error"]["code"])
}

func TestResolveOrigin(t *testing.T) {
	require.Equal(t, "*", resolveOrigin("https://a.example", nil))
	require.Equal(t, "https://A.example", resolveOrigin("https://A.example", []string{"https://b.example", "https://a.example"}))
	require.Equal(t, "https://b.example", resolveOrigin("https://c.example", []string{"https://b.example"}))
	require.Equal(t, "*", resolveOrigin("https://c.example", []string{"*"}))
}

func TestFromAppError(t *testing.T) {
	notFound := fromAppError(apperrors.Wrap(apperrors.CodeNotFound, "faq 7 not found", nil))
	require.Equal(t, http.StatusNotFound, notFound.Status)
	require.Equal(t, "not_found", notFound.Code)
	require.Equal(t, "faq 7 not found", notFound.Message)

	store := fromAppError(apperrors.Wrap(apperrors.CodeStore, "failed to list faqs", errors.New("dial tcp: refused")))
	require.Equal(t, http.StatusInternalServerError, store.Status)
	require.Equal(t, "failed to list faqs", store.Message)

	unknown := fromAppError(errors.New("plain"))
	require.Equal(t, http.StatusInternalServerError, unknown.Status)
	require.Equal(t, "internal_error", unknown.Code)
}
