package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/attendant"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/session"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/settings"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/stats"
	"github.com/elfabitto/sistema-de-atendimento/internal/clock"
	"github.com/elfabitto/sistema-de-atendimento/internal/config"
	"github.com/elfabitto/sistema-de-atendimento/internal/lock"
	"github.com/elfabitto/sistema-de-atendimento/internal/notify/notifytest"
	queuemanager "github.com/elfabitto/sistema-de-atendimento/internal/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/memory"
	attendantservice "github.com/elfabitto/sistema-de-atendimento/internal/service/attendant"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/assignment"
	requestservice "github.com/elfabitto/sistema-de-atendimento/internal/service/request"
	sessionservice "github.com/elfabitto/sistema-de-atendimento/internal/service/session"
	settingsservice "github.com/elfabitto/sistema-de-atendimento/internal/service/settings"
	statsservice "github.com/elfabitto/sistema-de-atendimento/internal/service/stats"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]int  `json:"meta"`
}

type testServer struct {
	handler http.Handler
	clock   *clock.Fake
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	rec := &notifytest.Recorder{}
	clk := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	src := settingsservice.NewSettingsService(store, 20*time.Minute, logger)
	qm := queuemanager.NewManager(store, locker, rec, clk, logger)
	dist := assignment.NewDistributor(store, locker, qm, rec, clk, src, logger)
	ctrl := sessionservice.NewController(store, locker, qm, dist, rec, clk, src, true, logger)
	reqs := requestservice.NewRequestService(store, dist, nil, clk, logger)

	srv := New(config.TestEnv, logger)
	srv.SetupAPIRoutes(Handlers{
		Attendant: attendant.New(attendantservice.NewAttendantService(store, nil, logger)),
		Queue:     queue.New(qm, ctrl),
		Request:   request.New(reqs),
		Session:   session.New(ctrl, reqs),
		Stats:     stats.New(statsservice.NewStatsService(store)),
		Settings:  settings.New(src),
	}, nil)

	return &testServer{handler: srv.Handler(), clock: clk}
}

func (ts *testServer) do(t *testing.T, method, path string, user int64, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user > 0 {
		req.Header.Set("X-Auth-User-Id", fmt.Sprint(user))
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (ts *testServer) register(t *testing.T, name string) int64 {
	t.Helper()
	code, env := ts.do(t, http.MethodPost, "/v1/attendants", 0, map[string]string{
		"name":  name,
		"email": name + "@example.com",
	})
	require.Equal(t, http.StatusCreated, code)

	var a struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &a))
	return a.ID
}

func TestRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodGet, "/v1/queue", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodGet, "/v1/queue", nil)
	req.Header.Set("X-Auth-User-Id", "abc")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQueueJoinConflicts(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "ana")

	code, _ := ts.do(t, http.MethodPost, "/v1/queue/join", id, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodPost, "/v1/queue/join", id, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = ts.do(t, http.MethodPost, "/v1/queue/join", 999, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ana := ts.register(t, "ana")
	bia := ts.register(t, "bia")
	for _, id := range []int64{ana, bia} {
		code, _ := ts.do(t, http.MethodPost, "/v1/queue/join", id, nil)
		require.Equal(t, http.StatusOK, code)
	}

	code, env := ts.do(t, http.MethodPost, "/v1/requests", ana, map[string]string{
		"description":   "printer is on fire",
		"customer_name": "carla",
	})
	require.Equal(t, http.StatusCreated, code)

	var created struct {
		Request struct {
			ID int64 `json:"id"`
		} `json:"request"`
		Assigned    bool   `json:"assigned"`
		AttendantID *int64 `json:"attendant_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.True(t, created.Assigned)
	require.NotNil(t, created.AttendantID)
	assert.Equal(t, ana, *created.AttendantID)

	// bia cannot touch ana's session
	code, _ = ts.do(t, http.MethodPost, "/v1/sessions/finish", bia, map[string]interface{}{"request_id": created.Request.ID})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = ts.do(t, http.MethodPost, "/v1/sessions/skip", ana, map[string]interface{}{"request_id": created.Request.ID})
	require.Equal(t, http.StatusOK, code)

	var skipped struct {
		NextAttendantID *int64 `json:"next_attendant_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &skipped))
	require.NotNil(t, skipped.NextAttendantID)
	assert.Equal(t, bia, *skipped.NextAttendantID)

	code, env = ts.do(t, http.MethodGet, "/v1/sessions/current", bia, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "printer is on fire")

	ts.clock.Advance(3 * time.Minute)
	code, _ = ts.do(t, http.MethodPost, "/v1/sessions/finish", bia, map[string]interface{}{"request_id": created.Request.ID, "note": "replaced"})
	require.Equal(t, http.StatusOK, code)

	code, env = ts.do(t, http.MethodGet, "/v1/sessions/current", bia, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", string(env.Data))

	code, env = ts.do(t, http.MethodGet, fmt.Sprintf("/v1/requests/%d", created.Request.ID), ana, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"concluded"`)

	code, env = ts.do(t, http.MethodGet, "/v1/stats/me", bia, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"concluded":1`)
}

func TestRequestListPaginates(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "ana")

	for i := 0; i < 3; i++ {
		code, _ := ts.do(t, http.MethodPost, "/v1/requests", id, map[string]string{"description": fmt.Sprintf("r%d", i)})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := ts.do(t, http.MethodGet, "/v1/requests?status=pending&page=1&page_size=2", id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, env.Meta["total"])
	assert.Equal(t, 2, env.Meta["page_size"])

	code, _ = ts.do(t, http.MethodGet, "/v1/requests?status=lost", id, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSetTimeoutValidates(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "ana")

	code, _ := ts.do(t, http.MethodPut, "/v1/settings/timeout", id, map[string]int{"minutes": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, http.MethodPut, "/v1/settings/timeout", id, map[string]int{"minutes": 7})
	require.Equal(t, http.StatusOK, code)

	code, env := ts.do(t, http.MethodGet, "/v1/settings/timeout", id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"minutes":7}`, string(env.Data))
}

func TestAttendantProfileAndEmptyActivity(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "ana")

	code, env := ts.do(t, http.MethodGet, "/v1/attendants/me", id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"email":"ana@example.com"`)

	code, env = ts.do(t, http.MethodGet, "/v1/attendants/me/events?page_size=5", id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", string(env.Data))
	assert.Equal(t, 5, env.Meta["page_size"])
	assert.Equal(t, 0, env.Meta["total"])
}
