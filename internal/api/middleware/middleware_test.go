package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/Stockbroker-Backend/internal/api/middleware"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
)

func TestLogger(t *testing.T) {
	t.Run("logs method path and status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewWithOutput("debug", "json", &buf)

		handler := chimiddleware.RequestID(middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})))

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/missing", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		out := buf.String()
		assert.Contains(t, out, `"method":"GET"`)
		assert.Contains(t, out, `"path":"/api/portfolio/missing"`)
		assert.Contains(t, out, `"status":404`)
		assert.Contains(t, out, `"level":"warn"`)
		assert.Contains(t, out, `"requestId":"`)
	})

	t.Run("strips newlines from the path", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewWithOutput("debug", "json", &buf)

		handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		req.URL.Path = "/api/system\r\n/health"
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, buf.String(), `"path":"/api/system/health"`)
	})
}

func TestNewCORS(t *testing.T) {
	cors := middleware.NewCORS([]string{"http://localhost:3000"})
	handler := cors.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
