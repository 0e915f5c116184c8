package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/weekendly/planner/internal/cache"
	"github.com/weekendly/planner/internal/database"
	transport "github.com/weekendly/planner/internal/sync"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	db        *database.DB
	cache     cache.Cache
	publisher transport.Publisher
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *database.DB, c cache.Cache, publisher transport.Publisher) *HealthChecker {
	return &HealthChecker{db: db, cache: c, publisher: publisher}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if mode == "extended" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]string)

		if err := h.db.HealthCheck(ctx); err != nil {
			response.Status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}

		if h.cache != nil {
			if err := h.cache.HealthCheck(ctx); err != nil {
				response.Status = "unhealthy"
				checks["cache"] = "unhealthy: " + err.Error()
			} else {
				checks["cache"] = "healthy"
			}
		}

		if h.publisher != nil {
			if err := h.publisher.HealthCheck(ctx); err != nil {
				response.Status = "unhealthy"
				checks["sync_transport"] = "unhealthy: " + err.Error()
			} else {
				checks["sync_transport"] = "healthy"
			}
		}

		response.Checks = checks

		statusCode := http.StatusOK
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
		return
	}

	// Basic mode reports only that the server is running
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
