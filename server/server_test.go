package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kotlang/summitGo/auth"
	"github.com/Kotlang/summitGo/dashboard"
	"github.com/Kotlang/summitGo/db"
	"github.com/Kotlang/summitGo/mocks"
	"github.com/Kotlang/summitGo/models"
	"github.com/Kotlang/summitGo/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "summit-admin"

type testEnv struct {
	handler   http.Handler
	issuer    *auth.SessionIssuer
	api       *Api
	leads     *mocks.FailingCollection[models.LeadModel]
	events    *mocks.FailingCollection[models.EventModel]
	notifier  *mocks.MockNotifier
	presigner *mocks.MockImagePresigner
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithClock(t, nil, time.Now)
}

// newTestEnvWithClock stamps leads with storeClock and runs the board on now.
func newTestEnvWithClock(t *testing.T, storeClock db.Clock, now func() time.Time) *testEnv {
	env := &testEnv{
		issuer:    auth.NewSessionIssuer(testPassword, "0123456789abcdef0123", time.Hour),
		leads:     mocks.NewFailingCollection[models.LeadModel](db.NewMemoryCollection[models.LeadModel]()),
		events:    mocks.NewFailingCollection[models.EventModel](db.NewMemoryCollection[models.EventModel]()),
		notifier:  &mocks.MockNotifier{},
		presigner: &mocks.MockImagePresigner{},
	}

	summitDb := db.NewSummitDb(env.leads, env.events, storeClock)
	leadService := service.ProvideLeadService(summitDb, env.notifier)
	eventService := service.ProvideEventService(summitDb, env.notifier)
	env.api = &Api{
		Leads:     leadService,
		Events:    eventService,
		Board:     dashboard.NewBoard(leadService, eventService).WithClock(now),
		Issuer:    env.issuer,
		Presigner: env.presigner,
		Db:        summitDb,
	}

	handler, err := NewHandler(env.api, nil, []string{"*"})
	require.NoError(t, err)
	env.handler = handler
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	res := map[string]interface{}{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec.Code, res
}

func (e *testEnv) login(t *testing.T) string {
	code, res := e.do(t, http.MethodPost, "/api/admin/session", map[string]string{"password": testPassword}, "")
	require.Equal(t, http.StatusOK, code)
	return res["token"].(string)
}

func retreat() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Retreat",
		"location":    "Aspen, Colorado",
		"date":        "2025-01-15",
		"time":        "18:30",
		"timeZone":    "America/Denver",
		"description": "Three days in the mountains",
		"image":       "https://cdn.example.com/retreat.jpg",
		"capacity":    2,
	}
}

func attendee(name string) map[string]string {
	return map[string]string{"name": name, "business": "Biz", "email": strings.ToLower(name) + "@biz.com", "phone": "555"}
}

func TestAdminSession(t *testing.T) {
	env := newTestEnv(t)

	code, res := env.do(t, http.MethodPost, "/api/admin/session", map[string]string{"password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Incorrect password", res["error"])

	code, _ = env.do(t, http.MethodGet, "/api/admin/leads", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(t, http.MethodGet, "/api/admin/leads", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, code)

	expired, _, err := auth.NewSessionIssuer(testPassword, "0123456789abcdef0123", -time.Minute).Login(testPassword)
	require.NoError(t, err)
	code, _ = env.do(t, http.MethodGet, "/api/admin/leads", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res = env.do(t, http.MethodGet, "/api/admin/leads", nil, env.login(t))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", res["state"])
}

func TestLeadIntakeAndBoard(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	code, res := env.do(t, http.MethodPost, "/api/leads", map[string]string{
		"name": "Jane Doe", "business": "Doe Ventures", "email": "jane@doe.com", "phone": "555-123-4567",
	}, "")
	require.Equal(t, http.StatusCreated, code)
	janeId := res["id"].(string)

	code, res = env.do(t, http.MethodPost, "/api/leads", map[string]string{
		"name": "John Roe", "business": "Roe Inc", "email": "john@roe.com", "phone": "555.123.4567",
	}, "")
	require.Equal(t, http.StatusCreated, code)

	code, res = env.do(t, http.MethodPost, "/api/leads", map[string]string{"name": "Bad"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, res["success"])
	assert.Equal(t, "Business name is required", res["errors"].(map[string]interface{})["business"])

	code, res = env.do(t, http.MethodGet, "/api/admin/leads?search=DOE&date=today", nil, token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), res["shown"])
	assert.Equal(t, float64(2), res["total"])
	leads := res["leads"].([]interface{})
	assert.Equal(t, janeId, leads[0].(map[string]interface{})["id"])

	code, _ = env.do(t, http.MethodGet, "/api/admin/leads?date=yesterday", nil, token)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodDelete, "/api/admin/leads/"+janeId, nil, token)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodDelete, "/api/admin/leads/never-created", nil, token)
	assert.Equal(t, http.StatusOK, code)

	_, res = env.do(t, http.MethodGet, "/api/admin/leads?refresh=true", nil, token)
	assert.Equal(t, float64(1), res["total"])
}

func TestAdminLeadsTimeZone(t *testing.T) {
	// The lead lands at 20:00 UTC on May 14; the admin looks at 03:00 UTC on
	// May 15, which is still May 14 in Los Angeles.
	createdAt := time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 15, 3, 0, 0, 0, time.UTC)
	env := newTestEnvWithClock(t, func() time.Time { return createdAt }, func() time.Time { return now })
	token := env.login(t)

	code, _ := env.do(t, http.MethodPost, "/api/leads", map[string]string{
		"name": "Jane Doe", "business": "Doe Ventures", "email": "jane@doe.com", "phone": "555-123-4567",
	}, "")
	require.Equal(t, http.StatusCreated, code)

	code, res := env.do(t, http.MethodGet, "/api/admin/leads?date=today&tz=UTC", nil, token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), res["shown"])
	assert.Equal(t, float64(1), res["total"])

	code, res = env.do(t, http.MethodGet, "/api/admin/leads?date=today&tz=America/Los_Angeles", nil, token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), res["shown"])

	code, _ = env.do(t, http.MethodGet, "/api/admin/leads?date=today&tz=Mars/Olympus_Mons", nil, token)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEventLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	code, _ := env.do(t, http.MethodPost, "/api/admin/events", retreat(), "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res := env.do(t, http.MethodPost, "/api/admin/events", retreat(), token)
	require.Equal(t, http.StatusCreated, code)
	eventId := res["id"].(string)

	_, res = env.do(t, http.MethodGet, "/api/admin/events?search=aspen", nil, token)
	assert.Equal(t, float64(1), res["shown"])

	for _, name := range []string{"Ann", "Bob"} {
		code, _ = env.do(t, http.MethodPost, "/api/events/"+eventId+"/attendees", attendee(name), "")
		require.Equal(t, http.StatusCreated, code)
	}

	code, res = env.do(t, http.MethodGet, "/api/events/"+eventId, nil, "")
	require.Equal(t, http.StatusOK, code)
	event := res["event"].(map[string]interface{})
	assert.Equal(t, "2025-01-15 at 18:30 (Denver)", event["date"])
	assert.Equal(t, float64(2), event["capacity"])
	assert.Equal(t, float64(2), event["attendeeCount"])
	assert.Equal(t, float64(0), event["spotsLeft"])
	attendees := event["attendees"].([]interface{})
	assert.Equal(t, "Bob", attendees[1].(map[string]interface{})["name"])

	code, res = env.do(t, http.MethodGet, "/api/events", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, res["events"], 1)

	code, res = env.do(t, http.MethodPost, "/api/events/"+eventId+"/attendees", map[string]string{"name": "X"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res["errors"], "email")

	code, _ = env.do(t, http.MethodPost, "/api/events/missing/attendees", attendee("Cy"), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodDelete, "/api/admin/events/"+eventId, nil, token)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(t, http.MethodGet, "/api/events/"+eventId, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = env.do(t, http.MethodDelete, "/api/admin/events/"+eventId, nil, token)
	assert.Equal(t, http.StatusOK, code)

	assert.Eventually(t, func() bool {
		return len(env.notifier.Kinds()) == 3
	}, time.Second, 10*time.Millisecond)
}

func TestReadFailures(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.leads.FailFind = true
	env.events.FailFind = true

	code, res := env.do(t, http.MethodGet, "/api/admin/leads", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", res["state"])
	assert.Equal(t, []interface{}{}, res["leads"])

	code, res = env.do(t, http.MethodGet, "/api/events", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, []interface{}{}, res["events"])

	code, _ = env.do(t, http.MethodGet, "/api/events/any", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	env.leads.FailFind = false
	code, res = env.do(t, http.MethodGet, "/api/admin/leads?refresh=true", nil, token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", res["state"])
}

func TestWriteFailures(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.leads.FailSave = true
	env.events.FailDelete = true

	code, res := env.do(t, http.MethodPost, "/api/leads", map[string]string{
		"name": "Jane", "business": "Biz", "email": "jane@biz.com", "phone": "5551234567",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, res["success"])

	code, _ = env.do(t, http.MethodDelete, "/api/admin/events/any", nil, token)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestImageUploadUrl(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	code, res := env.do(t, http.MethodPost, "/api/admin/events/image-upload-url", map[string]string{"extension": "png"}, token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, res["uploadUrl"], "event.png")
	assert.Contains(t, res["downloadUrl"], "event.png")

	env.presigner.Err = errors.New("s3 down")
	code, _ = env.do(t, http.MethodPost, "/api/admin/events/image-upload-url", map[string]string{"extension": "png"}, token)
	assert.Equal(t, http.StatusInternalServerError, code)

	env.api.Presigner = nil
	code, _ = env.do(t, http.MethodPost, "/api/admin/events/image-upload-url", map[string]string{"extension": "png"}, token)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestOpsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	code, res := env.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", res["status"])

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summit_http_requests_total")
}
