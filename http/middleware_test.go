package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoggerMiddlewareSetsRequestID(t *testing.T) {
	var seen string
	handler := LoggerMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := CORSMiddleware([]string{"http://allowed.example"})(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "http://allowed.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/api/predict", nil)
	req.Header.Set("Origin", "http://other.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestSizeMiddleware(t *testing.T) {
	config := DefaultServerConfig()
	config.MaxBodyBytes = 16
	server := NewServer(config, &fakePredictor{}, zap.NewNop())

	body := `{"Open":1,"High":1,"Low":1,"Close":1,"Volume":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
