package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/weekendly/planner/internal/models"
	"github.com/weekendly/planner/internal/store"
)

// AdminStore is the persistence surface the admin handler needs
type AdminStore interface {
	ExportData(ctx context.Context) (*models.ExportEnvelope, error)
	ImportData(ctx context.Context, envelope *models.ExportEnvelope) error
	CompactDatabase(ctx context.Context) error
	StorageUsage(ctx context.Context) store.Usage
	SyncData(ctx context.Context) error
	LastSyncTime(ctx context.Context) (time.Time, bool, error)
	PendingChanges(ctx context.Context) ([]*models.PendingChange, error)
	Online() bool
	SetOnline(online bool)
	LastError() error
}

// AdminHandler serves data management and sync control endpoints
type AdminHandler struct {
	store AdminStore
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store AdminStore) *AdminHandler {
	return &AdminHandler{store: store}
}

// RegisterRoutes registers admin routes on the given router.
// The router should already have the /admin prefix.
func (h *AdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/export", h.Export).Methods("GET")
	r.HandleFunc("/import", h.Import).Methods("POST")
	r.HandleFunc("/compact", h.Compact).Methods("POST")
	r.HandleFunc("/storage", h.Storage).Methods("GET")
	r.HandleFunc("/sync", h.SyncStatus).Methods("GET")
	r.HandleFunc("/sync", h.TriggerSync).Methods("POST")
	r.HandleFunc("/connectivity", h.SetConnectivity).Methods("POST")
}

// ConnectivityRequest flips the simulated connectivity state
type ConnectivityRequest struct {
	Online bool `json:"online"`
}

// SyncStatusResponse reports the state of the pending-change queue
type SyncStatusResponse struct {
	Online       bool   `json:"online"`
	PendingCount int    `json:"pending_count"`
	LastSyncTime string `json:"last_sync_time,omitempty"`
	LastError    string `json:"last_error,omitempty"`
}

// Export returns a full data export envelope
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.store.ExportData(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to export data")
		return
	}

	respondJSON(w, http.StatusOK, envelope)
}

// Import restores a previously exported envelope
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	var envelope models.ExportEnvelope
	if !decodeBody(w, r, &envelope) {
		return
	}

	if err := h.store.ImportData(r.Context(), &envelope); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// Compact trims old weekends and purges stale pending changes
func (h *AdminHandler) Compact(w http.ResponseWriter, r *http.Request) {
	if err := h.store.CompactDatabase(r.Context()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compact database")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "compacted"})
}

// Storage reports database usage
func (h *AdminHandler) Storage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.StorageUsage(r.Context()))
}

// SyncStatus reports connectivity, queue depth, and the last flush outcome
func (h *AdminHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	response := SyncStatusResponse{Online: h.store.Online()}

	pending, err := h.store.PendingChanges(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to read pending changes")
		return
	}
	response.PendingCount = len(pending)

	if last, ok, err := h.store.LastSyncTime(r.Context()); err == nil && ok {
		response.LastSyncTime = last.Format(time.RFC3339)
	}
	if lastErr := h.store.LastError(); lastErr != nil {
		response.LastError = lastErr.Error()
	}

	respondJSON(w, http.StatusOK, response)
}

// TriggerSync flushes the pending-change queue now. Flush failures surface
// through the sync status, not this response.
func (h *AdminHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if err := h.store.SyncData(r.Context()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start sync")
		return
	}

	h.SyncStatus(w, r)
}

// SetConnectivity flips the online flag. Going online triggers a flush.
func (h *AdminHandler) SetConnectivity(w http.ResponseWriter, r *http.Request) {
	var req ConnectivityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.store.SetOnline(req.Online)

	respondJSON(w, http.StatusOK, map[string]bool{"online": h.store.Online()})
}
