package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/weekendly/planner/internal/models"
)

type fakeScheduleStore struct {
	weekends   map[uuid.UUID]*models.WeekendSchedule
	activities []*models.Activity
	saveErr    error
	loadErr    error
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{weekends: make(map[uuid.UUID]*models.WeekendSchedule)}
}

func (f *fakeScheduleStore) SaveWeekend(_ context.Context, w *models.WeekendSchedule) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.weekends[w.ID] = w
	return nil
}

func (f *fakeScheduleStore) LoadWeekend(_ context.Context, id uuid.UUID) (*models.WeekendSchedule, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.weekends[id], nil
}

func (f *fakeScheduleStore) LoadAllWeekends(_ context.Context, limit, offset int) ([]*models.WeekendSchedule, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]*models.WeekendSchedule, 0, len(f.weekends))
	for _, w := range f.weekends {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeScheduleStore) DeleteWeekend(_ context.Context, id uuid.UUID) error {
	delete(f.weekends, id)
	return nil
}

func (f *fakeScheduleStore) LoadActivities(_ context.Context, limit, offset int) ([]*models.Activity, error) {
	return f.activities, nil
}

func (f *fakeScheduleStore) LastError() error { return nil }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newWeekendRouter(store *fakeScheduleStore) *mux.Router {
	h := NewWeekendHandler(store)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/api/v1/weekends").Subrouter())
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return w, env
}

func seededStore(t *testing.T) (*fakeScheduleStore, *models.WeekendSchedule, *models.Activity) {
	t.Helper()

	store := newFakeScheduleStore()
	activity := &models.Activity{
		ID:              uuid.New(),
		Title:           "Morning hike",
		DurationMinutes: 120,
		EnergyLevel:     models.EnergyHigh,
	}
	store.activities = []*models.Activity{activity}

	weekend := &models.WeekendSchedule{
		ID:        uuid.New(),
		Title:     "Lake trip",
		Saturday:  []*models.ScheduledActivity{},
		Sunday:    []*models.ScheduledActivity{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	store.weekends[weekend.ID] = weekend
	return store, weekend, activity
}

func TestCreateWeekend(t *testing.T) {
	t.Parallel()

	store := newFakeScheduleStore()
	router := newWeekendRouter(store)

	w, env := doJSON(t, router, "POST", "/api/v1/weekends", CreateWeekendRequest{Title: "Lake trip", Theme: "outdoors"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created models.WeekendSchedule
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode weekend: %v", err)
	}
	if created.Title != "Lake trip" || created.Theme != "outdoors" {
		t.Errorf("unexpected weekend: %+v", created)
	}
	if _, ok := store.weekends[created.ID]; !ok {
		t.Error("expected created weekend persisted")
	}
}

func TestCreateWeekend_MissingTitle(t *testing.T) {
	t.Parallel()

	router := newWeekendRouter(newFakeScheduleStore())

	w, _ := doJSON(t, router, "POST", "/api/v1/weekends", CreateWeekendRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetWeekend_NotFound(t *testing.T) {
	t.Parallel()

	router := newWeekendRouter(newFakeScheduleStore())

	w, _ := doJSON(t, router, "GET", "/api/v1/weekends/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetWeekend_BadID(t *testing.T) {
	t.Parallel()

	router := newWeekendRouter(newFakeScheduleStore())

	w, _ := doJSON(t, router, "GET", "/api/v1/weekends/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPlaceActivity(t *testing.T) {
	t.Parallel()

	store, weekend, activity := seededStore(t)
	router := newWeekendRouter(store)

	req := PlaceActivityRequest{
		ActivityID: activity.ID,
		Slot:       SlotRequest{Day: "saturday", Period: "morning"},
	}
	w, env := doJSON(t, router, "POST", fmt.Sprintf("/api/v1/weekends/%s/activities", weekend.ID), req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var entry models.ScheduledActivity
	if err := json.Unmarshal(env.Data, &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Activity.ID != activity.ID {
		t.Error("expected scheduled entry to snapshot the catalog activity")
	}
	if len(store.weekends[weekend.ID].Saturday) != 1 {
		t.Error("expected activity persisted on saturday")
	}
}

func TestPlaceActivity_UnknownActivity(t *testing.T) {
	t.Parallel()

	store, weekend, _ := seededStore(t)
	router := newWeekendRouter(store)

	req := PlaceActivityRequest{
		ActivityID: uuid.New(),
		Slot:       SlotRequest{Day: "saturday", Period: "morning"},
	}
	w, _ := doJSON(t, router, "POST", fmt.Sprintf("/api/v1/weekends/%s/activities", weekend.ID), req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPlaceActivity_InvalidDay(t *testing.T) {
	t.Parallel()

	store, weekend, activity := seededStore(t)
	router := newWeekendRouter(store)

	req := PlaceActivityRequest{
		ActivityID: activity.ID,
		Slot:       SlotRequest{Day: "monday", Period: "morning"},
	}
	w, _ := doJSON(t, router, "POST", fmt.Sprintf("/api/v1/weekends/%s/activities", weekend.ID), req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMoveActivity_CrossDay(t *testing.T) {
	t.Parallel()

	store, weekend, activity := seededStore(t)
	entry := &models.ScheduledActivity{
		ID:       uuid.New(),
		Activity: *activity,
		Slot:     models.TimeSlot{Day: models.DaySaturday, Period: models.PeriodMorning},
	}
	weekend.Saturday = append(weekend.Saturday, entry)
	router := newWeekendRouter(store)

	req := MoveActivityRequest{Slot: SlotRequest{Day: "sunday", Period: "evening"}}
	w, _ := doJSON(t, router, "POST",
		fmt.Sprintf("/api/v1/weekends/%s/activities/%s/move", weekend.ID, entry.ID), req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	stored := store.weekends[weekend.ID]
	if len(stored.Saturday) != 0 || len(stored.Sunday) != 1 {
		t.Errorf("expected entry moved to sunday, got sat=%d sun=%d", len(stored.Saturday), len(stored.Sunday))
	}
}

func TestReorderActivities_InvalidPermutation(t *testing.T) {
	t.Parallel()

	store, weekend, activity := seededStore(t)
	entry := &models.ScheduledActivity{
		ID:       uuid.New(),
		Activity: *activity,
		Slot:     models.TimeSlot{Day: models.DaySaturday, Period: models.PeriodMorning},
	}
	weekend.Saturday = append(weekend.Saturday, entry)
	router := newWeekendRouter(store)

	// Wrong id set for the partition
	req := ReorderRequest{Day: "saturday", Period: "morning", OrderedIDs: []uuid.UUID{uuid.New()}}
	w, _ := doJSON(t, router, "POST", fmt.Sprintf("/api/v1/weekends/%s/reorder", weekend.ID), req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateScheduledActivity_ToggleAndNotes(t *testing.T) {
	t.Parallel()

	store, weekend, activity := seededStore(t)
	entry := &models.ScheduledActivity{
		ID:       uuid.New(),
		Activity: *activity,
		Slot:     models.TimeSlot{Day: models.DaySaturday, Period: models.PeriodMorning},
	}
	weekend.Saturday = append(weekend.Saturday, entry)
	router := newWeekendRouter(store)

	notes := "bring water"
	req := UpdateScheduledActivityRequest{Notes: &notes, ToggleCompletion: true}
	w, _ := doJSON(t, router, "PATCH",
		fmt.Sprintf("/api/v1/weekends/%s/activities/%s", weekend.ID, entry.ID), req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	stored := store.weekends[weekend.ID].Saturday[0]
	if stored.Notes != "bring water" {
		t.Errorf("expected notes updated, got %q", stored.Notes)
	}
	if !stored.Completed {
		t.Error("expected completion toggled on")
	}
}

func TestGetConflicts_SharedSlot(t *testing.T) {
	t.Parallel()

	store, weekend, activity := seededStore(t)
	slot := models.TimeSlot{Day: models.DaySaturday, Period: models.PeriodMorning}
	weekend.Saturday = append(weekend.Saturday,
		&models.ScheduledActivity{ID: uuid.New(), Activity: *activity, Slot: slot},
		&models.ScheduledActivity{ID: uuid.New(), Activity: *activity, Slot: slot},
	)
	router := newWeekendRouter(store)

	w, env := doJSON(t, router, "GET", fmt.Sprintf("/api/v1/weekends/%s/conflicts", weekend.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var conflicts []*models.Conflict
	if err := json.Unmarshal(env.Data, &conflicts); err != nil {
		t.Fatalf("decode conflicts: %v", err)
	}
	if len(conflicts) == 0 {
		t.Error("expected conflicts for two activities sharing a slot")
	}
}

func TestGetDuration(t *testing.T) {
	t.Parallel()

	store, weekend, activity := seededStore(t)
	weekend.Saturday = append(weekend.Saturday, &models.ScheduledActivity{
		ID:       uuid.New(),
		Activity: *activity,
		Slot:     models.TimeSlot{Day: models.DaySaturday, Period: models.PeriodMorning},
	})
	router := newWeekendRouter(store)

	w, env := doJSON(t, router, "GET", fmt.Sprintf("/api/v1/weekends/%s/duration", weekend.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp DurationResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode duration: %v", err)
	}
	if resp.Saturday != activity.DurationMinutes || resp.Sunday != 0 {
		t.Errorf("unexpected durations: %+v", resp)
	}
}

func TestDeleteWeekend_Idempotent(t *testing.T) {
	t.Parallel()

	router := newWeekendRouter(newFakeScheduleStore())

	w, _ := doJSON(t, router, "DELETE", "/api/v1/weekends/"+uuid.NewString(), nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for unknown delete, got %d", w.Code)
	}
}

func TestListWeekends_StorageError(t *testing.T) {
	t.Parallel()

	store := newFakeScheduleStore()
	store.loadErr = errors.New("db down")
	router := newWeekendRouter(store)

	w, env := doJSON(t, router, "GET", "/api/v1/weekends", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if env.Success {
		t.Error("expected success=false on storage error")
	}
}
