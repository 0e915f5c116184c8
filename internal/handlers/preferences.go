package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/weekendly/planner/internal/models"
	"github.com/weekendly/planner/internal/validation"
)

// PreferencesStore is the persistence surface the preferences handler needs
type PreferencesStore interface {
	LoadPreferences(ctx context.Context) (*models.Preferences, error)
	SavePreferences(ctx context.Context, prefs *models.Preferences) error
}

// PreferencesHandler serves the singleton user preferences
type PreferencesHandler struct {
	store PreferencesStore
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(store PreferencesStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// RegisterRoutes registers preference routes on the given router.
// The router should already have the /preferences prefix.
func (h *PreferencesHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetPreferences).Methods("GET")
	r.HandleFunc("", h.PutPreferences).Methods("PUT")
}

// GetPreferences returns stored preferences, or defaults when none exist
func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.store.LoadPreferences(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve preferences")
		return
	}
	if prefs == nil {
		prefs = &models.Preferences{
			Theme:                "light",
			DefaultView:          "weekend",
			PreferredStartPeriod: models.PeriodMorning,
		}
	}

	respondJSON(w, http.StatusOK, prefs)
}

// PutPreferences replaces the stored preferences
func (h *PreferencesHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if !decodeBody(w, r, &prefs) {
		return
	}
	if prefs.PreferredStartPeriod != "" {
		if err := validation.ValidatePeriod(string(prefs.PreferredStartPeriod)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	if err := h.store.SavePreferences(r.Context(), &prefs); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save preferences")
		return
	}

	respondJSON(w, http.StatusOK, &prefs)
}
