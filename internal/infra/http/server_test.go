package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandler_Health(t *testing.T) {
	code, body := get(t, Handler(Options{}), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)

	var lastErr error = errors.New("session expired")
	h := Handler(Options{Health: func() error { return lastErr }})
	code, body = get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "session expired", body)

	lastErr = nil
	code, _ = get(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
}

func TestHandler_OptionalRoutes(t *testing.T) {
	code, _ := get(t, Handler(Options{}), "/metrics")
	assert.Equal(t, http.StatusNotFound, code)

	code, body := get(t, Handler(Options{Metrics: true}), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "go_goroutines")

	status := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"active_assets":3}`))
	})
	code, body = get(t, Handler(Options{Status: status}), "/status")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"active_assets":3}`, body)
}
