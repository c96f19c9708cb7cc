package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxline-media/voxline/internal/db"
	"github.com/voxline-media/voxline/internal/http/api"
	"github.com/voxline-media/voxline/internal/model"
)

// memStore is an in-memory db.Store so controllers can be exercised over
// httptest without Postgres.
type memStore struct {
	nextID    int
	schedules map[int]model.ScheduleRecord
	content   map[int]model.Content
	sessions  map[int]model.PlayerSession
	assigned  map[int]map[int]bool // schedule -> session set
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    1,
		schedules: make(map[int]model.ScheduleRecord),
		content:   make(map[int]model.Content),
		sessions:  make(map[int]model.PlayerSession),
		assigned:  make(map[int]map[int]bool),
	}
}

func (m *memStore) id() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) CreateSchedule(rec model.ScheduleRecord) (model.ScheduleRecord, error) {
	rec.ID = m.id()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.schedules[rec.ID] = rec
	return rec, nil
}

func (m *memStore) GetSchedule(scheduleID int) (model.ScheduleRecord, error) {
	rec, ok := m.schedules[scheduleID]
	if !ok {
		return model.ScheduleRecord{}, fmt.Errorf("schedule %d not found", scheduleID)
	}
	return rec, nil
}

func (m *memStore) ListSchedules() ([]model.ScheduleRecord, error) {
	out := make([]model.ScheduleRecord, 0, len(m.schedules))
	for _, rec := range m.schedules {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStore) UpdateSchedule(rec model.ScheduleRecord) error {
	stored, ok := m.schedules[rec.ID]
	if !ok {
		return fmt.Errorf("schedule %d not found", rec.ID)
	}
	rec.State = stored.State
	rec.ContentItems = stored.ContentItems
	m.schedules[rec.ID] = rec
	return nil
}

func (m *memStore) UpdateScheduleState(scheduleID int, state model.ScheduleState) error {
	rec, ok := m.schedules[scheduleID]
	if !ok {
		return fmt.Errorf("schedule %d not found", scheduleID)
	}
	rec.State = state
	m.schedules[scheduleID] = rec
	return nil
}

func (m *memStore) UpdateLastPlayed(scheduleID int, playedAt time.Time) error {
	rec, ok := m.schedules[scheduleID]
	if !ok {
		return fmt.Errorf("schedule %d not found", scheduleID)
	}
	rec.LastPlayedAt = &playedAt
	m.schedules[scheduleID] = rec
	return nil
}

func (m *memStore) DeleteSchedule(scheduleID int) error {
	delete(m.schedules, scheduleID)
	delete(m.assigned, scheduleID)
	return nil
}

func (m *memStore) ReplaceScheduleContent(scheduleID int, refs []model.ContentRef) error {
	rec, ok := m.schedules[scheduleID]
	if !ok {
		return fmt.Errorf("schedule %d not found", scheduleID)
	}
	rec.ContentItems = refs
	m.schedules[scheduleID] = rec
	return nil
}

func (m *memStore) GetScheduleContent(scheduleID int) ([]model.ContentRef, error) {
	return m.schedules[scheduleID].ContentItems, nil
}

func (m *memStore) AssignScheduleToSession(scheduleID, sessionID int) error {
	if m.assigned[scheduleID] == nil {
		m.assigned[scheduleID] = make(map[int]bool)
	}
	m.assigned[scheduleID][sessionID] = true
	return nil
}

func (m *memStore) UnassignScheduleFromSession(scheduleID, sessionID int) error {
	delete(m.assigned[scheduleID], sessionID)
	return nil
}

func (m *memStore) ListActiveSchedulesForSession(sessionID int) ([]model.ScheduleRecord, error) {
	var out []model.ScheduleRecord
	for scheduleID, sessions := range m.assigned {
		if sessions[sessionID] && m.schedules[scheduleID].State != model.ScheduleCompleted {
			out = append(out, m.schedules[scheduleID])
		}
	}
	return out, nil
}

func (m *memStore) CreateContent(name, typ, url string, durationSeconds, createdBy int) (model.Content, error) {
	c := model.Content{
		ID: m.id(), Name: name, Type: typ, URL: url,
		DurationSeconds: durationSeconds, CreatedBy: createdBy, CreatedAt: time.Now(),
	}
	m.content[c.ID] = c
	return c, nil
}

func (m *memStore) GetContentByID(contentID int) (model.Content, error) {
	c, ok := m.content[contentID]
	if !ok {
		return model.Content{}, fmt.Errorf("content %d not found", contentID)
	}
	return c, nil
}

func (m *memStore) ListContent() ([]model.Content, error) {
	out := make([]model.Content, 0, len(m.content))
	for _, c := range m.content {
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) CreateSession(name string, deviceID *string, createdBy int) (model.PlayerSession, error) {
	s := model.PlayerSession{ID: m.id(), Name: name, DeviceID: deviceID, CreatedBy: createdBy, CreatedAt: time.Now()}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memStore) GetSession(sessionID int) (model.PlayerSession, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return model.PlayerSession{}, fmt.Errorf("session %d not found", sessionID)
	}
	return s, nil
}

func (m *memStore) ListSessions() ([]model.PlayerSession, error) {
	out := make([]model.PlayerSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

var _ db.Store = (*memStore)(nil)

func setupRouter(store db.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"},
		ScheduleModule(store),
		ContentModule(store),
		SessionModule(store),
	)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validCreateBody() map[string]any {
	return map[string]any{
		"description": "lunch menu announcement",
		"recurrence": map[string]any{
			"kind": "daily",
			"daily": map[string]any{
				"mode":        "every_n_days",
				"n_days":      2,
				"window_from": "11:00",
				"window_to":   "14:00",
			},
		},
		"audio_mode":        "duck_and_fade",
		"frequency_minutes": 30,
		"daily_window_from": "08:00",
		"daily_window_to":   "22:00",
		"valid_from":        "2025-03-01",
	}
}

func TestCreateAndGetSchedule(t *testing.T) {
	router := setupRouter(newMemStore())

	w := doJSON(t, router, "POST", "/api/admin/schedules", validCreateBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "active", created["state"])

	w = doJSON(t, router, "GET", "/api/admin/schedules/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/admin/schedules/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateScheduleRejectsBadRecurrence(t *testing.T) {
	router := setupRouter(newMemStore())

	body := validCreateBody()
	body["recurrence"] = map[string]any{
		"kind": "daily",
		"daily": map[string]any{
			"mode":        "every_n_days",
			"window_from": "11:00",
			"window_to":   "14:00",
		},
	}

	w := doJSON(t, router, "POST", "/api/admin/schedules", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "daily.n_days", "error names the offending field")
}

func TestCreateScheduleRejectsBadFrequency(t *testing.T) {
	router := setupRouter(newMemStore())

	body := validCreateBody()
	body["frequency_minutes"] = 7

	w := doJSON(t, router, "POST", "/api/admin/schedules", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPauseResumeLifecycle(t *testing.T) {
	store := newMemStore()
	router := setupRouter(store)

	w := doJSON(t, router, "POST", "/api/admin/schedules", validCreateBody())
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/admin/schedules/1/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "paused")

	// pause again: state machine no-op, still 200
	w = doJSON(t, router, "POST", "/api/admin/schedules/1/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "paused")

	w = doJSON(t, router, "POST", "/api/admin/schedules/1/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "active")
}

func TestUpdateCanClearValidUntil(t *testing.T) {
	store := newMemStore()
	router := setupRouter(store)

	body := validCreateBody()
	body["valid_until"] = "2025-06-30"
	w := doJSON(t, router, "POST", "/api/admin/schedules", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec, err := store.GetSchedule(1)
	require.NoError(t, err)
	require.NotNil(t, rec.ValidUntil)

	// a patch that omits valid_until leaves it alone
	w = doJSON(t, router, "PUT", "/api/admin/schedules/1", map[string]any{"description": "renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec, err = store.GetSchedule(1)
	require.NoError(t, err)
	require.NotNil(t, rec.ValidUntil)

	w = doJSON(t, router, "PUT", "/api/admin/schedules/1", map[string]any{"clear_valid_until": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec, err = store.GetSchedule(1)
	require.NoError(t, err)
	assert.Nil(t, rec.ValidUntil, "schedule is open-ended again")
}

func TestCompletedScheduleRejectsEdits(t *testing.T) {
	store := newMemStore()
	router := setupRouter(store)

	w := doJSON(t, router, "POST", "/api/admin/schedules", validCreateBody())
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, store.UpdateScheduleState(1, model.ScheduleCompleted))

	desc := map[string]any{"description": "new text"}
	w = doJSON(t, router, "PUT", "/api/admin/schedules/1", desc)
	assert.Equal(t, http.StatusConflict, w.Code)

	items := map[string]any{"items": []map[string]any{{"content_id": 1, "active": true}}}
	w = doJSON(t, router, "PUT", "/api/admin/schedules/1/content", items)
	assert.Equal(t, http.StatusConflict, w.Code)

	// pause on completed stays a no-op, not an error
	w = doJSON(t, router, "POST", "/api/admin/schedules/1/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "completed")
}

func TestReplaceContentOrdersItems(t *testing.T) {
	store := newMemStore()
	router := setupRouter(store)

	w := doJSON(t, router, "POST", "/api/admin/content", map[string]any{
		"name": "jingle", "type": "audio", "url": "https://cdn.example.com/jingle.mp3", "duration_seconds": 12,
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, "POST", "/api/admin/content", map[string]any{
		"name": "promo", "type": "audio", "url": "https://cdn.example.com/promo.mp3", "duration_seconds": 30,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/admin/schedules", validCreateBody())
	require.Equal(t, http.StatusOK, w.Code)
	scheduleID := 3

	items := map[string]any{"items": []map[string]any{
		{"content_id": 2, "active": true},
		{"content_id": 1, "active": false},
	}}
	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/admin/schedules/%d/content", scheduleID), items)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec, err := store.GetSchedule(scheduleID)
	require.NoError(t, err)
	require.Len(t, rec.ContentItems, 2)
	assert.Equal(t, 2, rec.ContentItems[0].ContentID)
	assert.Equal(t, 0, rec.ContentItems[0].Position)
	assert.Equal(t, 1, rec.ContentItems[1].ContentID)
	assert.False(t, rec.ContentItems[1].Active)
}

func TestReplaceContentAllowsRepeatedItem(t *testing.T) {
	store := newMemStore()
	router := setupRouter(store)

	w := doJSON(t, router, "POST", "/api/admin/content", map[string]any{
		"name": "jingle", "type": "audio", "url": "https://cdn.example.com/jingle.mp3", "duration_seconds": 12,
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, "POST", "/api/admin/content", map[string]any{
		"name": "promo", "type": "audio", "url": "https://cdn.example.com/promo.mp3", "duration_seconds": 30,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/admin/schedules", validCreateBody())
	require.Equal(t, http.StatusOK, w.Code)
	scheduleID := 3

	// the jingle bookends the promo
	items := map[string]any{"items": []map[string]any{
		{"content_id": 1, "active": true},
		{"content_id": 2, "active": true},
		{"content_id": 1, "active": true},
	}}
	w = doJSON(t, router, "PUT", fmt.Sprintf("/api/admin/schedules/%d/content", scheduleID), items)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rec, err := store.GetSchedule(scheduleID)
	require.NoError(t, err)
	require.Len(t, rec.ContentItems, 3)
	assert.Equal(t, []int{1, 2, 1}, []int{
		rec.ContentItems[0].ContentID,
		rec.ContentItems[1].ContentID,
		rec.ContentItems[2].ContentID,
	})
	assert.Equal(t, []int{0, 1, 2}, []int{
		rec.ContentItems[0].Position,
		rec.ContentItems[1].Position,
		rec.ContentItems[2].Position,
	})
}

func TestAssignUnassignSession(t *testing.T) {
	store := newMemStore()
	router := setupRouter(store)

	w := doJSON(t, router, "POST", "/api/admin/sessions", map[string]any{"name": "store 12"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/admin/schedules", validCreateBody())
	require.Equal(t, http.StatusOK, w.Code)
	scheduleID := 2

	w = doJSON(t, router, "POST", fmt.Sprintf("/api/admin/schedules/%d/sessions", scheduleID), map[string]any{"session_id": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list, err := store.ListActiveSchedulesForSession(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/api/admin/schedules/%d/sessions/1", scheduleID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	list, err = store.ListActiveSchedulesForSession(1)
	require.NoError(t, err)
	assert.Len(t, list, 0)
}
