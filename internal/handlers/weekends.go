package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	stdsync "sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/weekendly/planner/internal/engine"
	"github.com/weekendly/planner/internal/models"
	"github.com/weekendly/planner/internal/validation"
)

const (
	// MaxTitleLength is the maximum length for a weekend title
	MaxTitleLength = 200
	// DefaultListLimit is the default page size for listings
	DefaultListLimit = 50
	// MaxListLimit is the maximum page size for listings
	MaxListLimit = 500
	// catalogLookupLimit bounds the catalog scan when resolving an activity id
	catalogLookupLimit = 10000
)

// ScheduleStore is the persistence surface the weekend handler needs
type ScheduleStore interface {
	SaveWeekend(ctx context.Context, weekend *models.WeekendSchedule) error
	LoadWeekend(ctx context.Context, id uuid.UUID) (*models.WeekendSchedule, error)
	LoadAllWeekends(ctx context.Context, limit, offset int) ([]*models.WeekendSchedule, error)
	DeleteWeekend(ctx context.Context, id uuid.UUID) error
	LoadActivities(ctx context.Context, limit, offset int) ([]*models.Activity, error)
	LastError() error
}

// WeekendHandler handles weekend schedule requests. Schedule mutations run
// through a single engine instance guarded by a mutex, so concurrent edits
// of the same weekend serialize instead of clobbering each other.
type WeekendHandler struct {
	store   ScheduleStore
	planner *engine.Planner

	mu stdsync.Mutex
}

// NewWeekendHandler creates a new weekend handler
func NewWeekendHandler(store ScheduleStore) *WeekendHandler {
	return &WeekendHandler{store: store, planner: engine.New()}
}

// RegisterRoutes registers weekend routes on the given router.
// The router should already have the /weekends prefix.
func (h *WeekendHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListWeekends).Methods("GET")
	r.HandleFunc("", h.CreateWeekend).Methods("POST")
	r.HandleFunc("/{id}", h.GetWeekend).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateWeekend).Methods("PUT", "PATCH")
	r.HandleFunc("/{id}", h.DeleteWeekend).Methods("DELETE")
	r.HandleFunc("/{id}/activities", h.PlaceActivity).Methods("POST")
	r.HandleFunc("/{id}/activities/{activityId}", h.UpdateScheduledActivity).Methods("PATCH")
	r.HandleFunc("/{id}/activities/{activityId}", h.RemoveActivity).Methods("DELETE")
	r.HandleFunc("/{id}/activities/{activityId}/move", h.MoveActivity).Methods("POST")
	r.HandleFunc("/{id}/reorder", h.ReorderActivities).Methods("POST")
	r.HandleFunc("/{id}/conflicts", h.GetConflicts).Methods("GET")
	r.HandleFunc("/{id}/duration", h.GetDuration).Methods("GET")
}

// CreateWeekendRequest represents a create weekend request
type CreateWeekendRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	Theme string `json:"theme" validate:"max=100"`
}

// UpdateWeekendRequest represents a partial weekend update
type UpdateWeekendRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Theme *string `json:"theme,omitempty" validate:"omitempty,max=100"`
}

// SlotRequest addresses a (day, period) pair with an optional time range
type SlotRequest struct {
	Day       string `json:"day" validate:"required,weekend_day"`
	Period    string `json:"period" validate:"required,day_period"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (s SlotRequest) toModel() models.TimeSlot {
	return models.TimeSlot{
		Day:       models.Day(s.Day),
		Period:    models.Period(s.Period),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

// PlaceActivityRequest schedules a catalog activity into a slot
type PlaceActivityRequest struct {
	ActivityID uuid.UUID   `json:"activity_id" validate:"required"`
	Slot       SlotRequest `json:"slot" validate:"required"`
}

// MoveActivityRequest moves a scheduled activity to a new slot
type MoveActivityRequest struct {
	Slot SlotRequest `json:"slot" validate:"required"`
}

// ReorderRequest replaces the order of one (day, period) partition
type ReorderRequest struct {
	Day        string      `json:"day" validate:"required,weekend_day"`
	Period     string      `json:"period" validate:"required,day_period"`
	OrderedIDs []uuid.UUID `json:"ordered_ids" validate:"required,min=1"`
}

// UpdateScheduledActivityRequest updates notes or flips completion
type UpdateScheduledActivityRequest struct {
	Notes            *string `json:"notes,omitempty"`
	ToggleCompletion bool    `json:"toggle_completion,omitempty"`
}

// ListWeekendsResponse represents the paginated weekend listing
type ListWeekendsResponse struct {
	Weekends []*models.WeekendSchedule `json:"weekends"`
	Limit    int                       `json:"limit"`
	Offset   int                       `json:"offset"`
}

// DurationResponse reports scheduled minutes per day
type DurationResponse struct {
	Saturday int `json:"saturday_minutes"`
	Sunday   int `json:"sunday_minutes"`
}

// ListWeekends lists stored weekends ordered by recency
func (h *WeekendHandler) ListWeekends(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)

	weekends, err := h.store.LoadAllWeekends(r.Context(), limit, offset)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve weekends")
		return
	}
	if weekends == nil {
		weekends = []*models.WeekendSchedule{}
	}

	respondJSON(w, http.StatusOK, ListWeekendsResponse{
		Weekends: weekends,
		Limit:    limit,
		Offset:   offset,
	})
}

// CreateWeekend creates a new empty weekend schedule
func (h *WeekendHandler) CreateWeekend(w http.ResponseWriter, r *http.Request) {
	var req CreateWeekendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Title = validation.SanitizeText(req.Title)
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	weekend := h.planner.CreateWeekend(req.Title)
	weekend.Theme = req.Theme

	if err := h.store.SaveWeekend(r.Context(), weekend); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save weekend")
		return
	}

	respondJSON(w, http.StatusCreated, weekend)
}

// GetWeekend returns a single weekend by id
func (h *WeekendHandler) GetWeekend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}

	weekend, err := h.store.LoadWeekend(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve weekend")
		return
	}
	if weekend == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Weekend not found")
		return
	}

	respondJSON(w, http.StatusOK, weekend)
}

// UpdateWeekend updates weekend metadata (title, theme)
func (h *WeekendHandler) UpdateWeekend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateWeekendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title != nil {
		trimmed := validation.SanitizeText(*req.Title)
		req.Title = &trimmed
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	weekend, ok := h.loadCurrent(w, r, id)
	if !ok {
		return
	}

	if req.Title != nil {
		weekend.Title = *req.Title
	}
	if req.Theme != nil {
		weekend.Theme = *req.Theme
	}
	weekend.Touch()

	h.persistCurrent(w, r)
}

// DeleteWeekend deletes a weekend. Deleting an unknown id succeeds.
func (h *WeekendHandler) DeleteWeekend(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteWeekend(r.Context(), id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete weekend")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PlaceActivity schedules a catalog activity into a slot on the weekend
func (h *WeekendHandler) PlaceActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}

	var req PlaceActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	activity, err := h.lookupActivity(r.Context(), req.ActivityID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to look up activity")
		return
	}
	if activity == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Activity not found in catalog")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.loadCurrent(w, r, id); !ok {
		return
	}

	entry, err := h.planner.AddActivity(*activity, req.Slot.toModel())
	if err != nil {
		respondEngineError(w, err)
		return
	}

	if !h.saveCurrent(w, r) {
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// RemoveActivity removes a scheduled activity from the weekend
func (h *WeekendHandler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	activityID, ok := parseUUID(w, r, "activityId")
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.loadCurrent(w, r, id); !ok {
		return
	}

	if err := h.planner.RemoveActivity(activityID); err != nil {
		respondEngineError(w, err)
		return
	}

	h.persistCurrent(w, r)
}

// MoveActivity moves a scheduled activity to a different slot
func (h *WeekendHandler) MoveActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	activityID, ok := parseUUID(w, r, "activityId")
	if !ok {
		return
	}

	var req MoveActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.loadCurrent(w, r, id); !ok {
		return
	}

	if err := h.planner.MoveActivity(activityID, req.Slot.toModel()); err != nil {
		respondEngineError(w, err)
		return
	}

	h.persistCurrent(w, r)
}

// ReorderActivities replaces the order within one (day, period) partition
func (h *WeekendHandler) ReorderActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}

	var req ReorderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.loadCurrent(w, r, id); !ok {
		return
	}

	if err := h.planner.ReorderActivities(models.Day(req.Day), models.Period(req.Period), req.OrderedIDs); err != nil {
		respondEngineError(w, err)
		return
	}

	h.persistCurrent(w, r)
}

// UpdateScheduledActivity updates notes or toggles completion on an entry
func (h *WeekendHandler) UpdateScheduledActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	activityID, ok := parseUUID(w, r, "activityId")
	if !ok {
		return
	}

	var req UpdateScheduledActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.loadCurrent(w, r, id); !ok {
		return
	}

	if req.Notes != nil {
		if err := h.planner.UpdateNotes(activityID, validation.SanitizeText(*req.Notes)); err != nil {
			respondEngineError(w, err)
			return
		}
	}
	if req.ToggleCompletion {
		if err := h.planner.ToggleCompletion(activityID); err != nil {
			respondEngineError(w, err)
			return
		}
	}

	h.persistCurrent(w, r)
}

// GetConflicts returns the conflicts detected on the weekend
func (h *WeekendHandler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.loadCurrent(w, r, id); !ok {
		return
	}

	conflicts := h.planner.Conflicts()
	if conflicts == nil {
		conflicts = []*models.Conflict{}
	}
	respondJSON(w, http.StatusOK, conflicts)
}

// GetDuration returns the total scheduled minutes per day. With ?day= only
// that day is reported.
func (h *WeekendHandler) GetDuration(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}

	day := r.URL.Query().Get("day")
	if day != "" {
		if err := validation.ValidateDay(day); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.loadCurrent(w, r, id); !ok {
		return
	}

	if day != "" {
		respondJSON(w, http.StatusOK, map[string]int{"minutes": h.planner.TotalDuration(models.Day(day))})
		return
	}

	respondJSON(w, http.StatusOK, DurationResponse{
		Saturday: h.planner.TotalDuration(models.DaySaturday),
		Sunday:   h.planner.TotalDuration(models.DaySunday),
	})
}

// loadCurrent loads the weekend and binds it to the engine. Callers must
// hold h.mu. Returns false when a response has already been written.
func (h *WeekendHandler) loadCurrent(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*models.WeekendSchedule, bool) {
	weekend, err := h.store.LoadWeekend(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve weekend")
		return nil, false
	}
	if weekend == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Weekend not found")
		return nil, false
	}
	h.planner.SetCurrent(weekend)
	return weekend, true
}

// saveCurrent persists the engine's schedule. Callers must hold h.mu.
func (h *WeekendHandler) saveCurrent(w http.ResponseWriter, r *http.Request) bool {
	if err := h.store.SaveWeekend(r.Context(), h.planner.Current()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save weekend")
		return false
	}
	return true
}

// persistCurrent saves the current schedule and responds with it
func (h *WeekendHandler) persistCurrent(w http.ResponseWriter, r *http.Request) {
	if !h.saveCurrent(w, r) {
		return
	}
	respondJSON(w, http.StatusOK, h.planner.Current())
}

func (h *WeekendHandler) lookupActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	activities, err := h.store.LoadActivities(ctx, catalogLookupLimit, 0)
	if err != nil {
		return nil, err
	}
	for _, activity := range activities {
		if activity.ID == id {
			return activity, nil
		}
	}
	return nil, nil
}

// respondEngineError maps engine errors to HTTP responses
func respondEngineError(w http.ResponseWriter, err error) {
	var permErr *engine.InvalidPermutationError
	switch {
	case errors.Is(err, engine.ErrNoActiveSchedule):
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &permErr):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Schedule operation failed")
	}
}

func parseUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid id format")
		return uuid.Nil, false
	}
	return id, true
}

func parseListParams(r *http.Request) (limit, offset int) {
	limit = DefaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
			if limit > MaxListLimit {
				limit = MaxListLimit
			}
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
