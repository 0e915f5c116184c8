package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/weekendly/planner/internal/models"
)

// CatalogStore is the persistence surface the catalog handler needs
type CatalogStore interface {
	LoadActivities(ctx context.Context, limit, offset int) ([]*models.Activity, error)
	SaveActivities(ctx context.Context, activities []*models.Activity) error
	LoadCategories(ctx context.Context) ([]*models.ActivityCategory, error)
	SaveCategories(ctx context.Context, categories []*models.ActivityCategory) error
}

// CatalogHandler serves the activity catalog and its categories
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterActivityRoutes registers activity routes on the given router.
// The router should already have the /activities prefix.
func (h *CatalogHandler) RegisterActivityRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListActivities).Methods("GET")
	r.HandleFunc("", h.ReplaceActivities).Methods("PUT")
}

// RegisterCategoryRoutes registers category routes on the given router.
// The router should already have the /categories prefix.
func (h *CatalogHandler) RegisterCategoryRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCategories).Methods("GET")
	r.HandleFunc("", h.ReplaceCategories).Methods("PUT")
}

// ListActivitiesResponse represents the paginated activity listing
type ListActivitiesResponse struct {
	Activities []*models.Activity `json:"activities"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// ListActivities lists catalog activities ordered by title
func (h *CatalogHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)

	activities, err := h.store.LoadActivities(r.Context(), limit, offset)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve activities")
		return
	}
	if activities == nil {
		activities = []*models.Activity{}
	}

	respondJSON(w, http.StatusOK, ListActivitiesResponse{
		Activities: activities,
		Limit:      limit,
		Offset:     offset,
	})
}

// ReplaceActivities upserts the given catalog activities
func (h *CatalogHandler) ReplaceActivities(w http.ResponseWriter, r *http.Request) {
	var activities []*models.Activity
	if !decodeBody(w, r, &activities) {
		return
	}
	for _, activity := range activities {
		if activity.DurationMinutes <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Activity duration must be positive")
			return
		}
	}

	if err := h.store.SaveActivities(r.Context(), activities); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save activities")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"saved": len(activities)})
}

// ListCategories lists catalog categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.LoadCategories(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve categories")
		return
	}
	if categories == nil {
		categories = []*models.ActivityCategory{}
	}

	respondJSON(w, http.StatusOK, categories)
}

// ReplaceCategories upserts the given catalog categories
func (h *CatalogHandler) ReplaceCategories(w http.ResponseWriter, r *http.Request) {
	var categories []*models.ActivityCategory
	if !decodeBody(w, r, &categories) {
		return
	}

	if err := h.store.SaveCategories(r.Context(), categories); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save categories")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"saved": len(categories)})
}
