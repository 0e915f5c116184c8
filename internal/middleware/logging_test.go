package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
	}{
		{
			name:          "GET request",
			method:        "GET",
			path:          "/test",
			handlerStatus: http.StatusOK,
		},
		{
			name:          "POST request",
			method:        "POST",
			path:          "/api/v1/weekends",
			handlerStatus: http.StatusCreated,
		},
		{
			name:          "404 request",
			method:        "GET",
			path:          "/notfound",
			handlerStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			wrapped := Logging(zap.NewNop())(handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			resp := w.Result()
			defer func() {
				_ = resp.Body.Close() // Ignore error in test
			}()

			if resp.StatusCode != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, resp.StatusCode)
			}
		})
	}
}

func TestLoggingResponseWriter(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("test")) // Ignore error in test
	})

	wrapped := Logging(zap.NewNop())(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	resp := w.Result()
	defer func() {
		_ = resp.Body.Close() // Ignore error in test
	}()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}
}
