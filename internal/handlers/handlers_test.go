package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "skill-assessment/docs"
	"skill-assessment/internal/cache"
	"skill-assessment/internal/config"
	"skill-assessment/internal/events"
	"skill-assessment/internal/middleware"
	"skill-assessment/internal/models"
	"skill-assessment/internal/service"
	"skill-assessment/internal/testutil"
)

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(context.Context) error { return f.err }

type testServer struct {
	handler   http.Handler
	questions *testutil.MemoryQuestionStore
	recorder  *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithAuth(t, config.AuthConfig{})
}

func newTestServerWithAuth(t *testing.T, auth config.AuthConfig) *testServer {
	t.Helper()

	rounds := testutil.NewMemoryRoundStore()
	sessions := testutil.NewMemorySessionStore()
	questions := testutil.NewMemoryQuestionStore()
	questions.AddLegacy(10)
	recorder := &events.Recorder{}
	caps := models.BankCapabilities{DifficultyLevel: true, SetNumber: true}

	sessionService := service.NewSessionService(sessions, service.NewSourceResolver("structural"))
	sampler := service.NewSampler(questions, service.NewRandomPicker(7), caps)
	delivery := service.NewDeliveryService(rounds, sessionService, sessions, sampler, service.NewHydrator(questions), recorder)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Routes{
		Rounds:       NewRoundHandler(service.NewRoundService(rounds, recorder)),
		Delivery:     NewDeliveryHandler(delivery, service.NewGradingService(rounds, sessions, nil)),
		Availability: NewAvailabilityHandler(service.NewAvailabilityService(cache.NewMemoryStore())),
		Health:       NewHealthHandler(fakeDB{}, "test", sampler.Capabilities()),
		Docs:         httpSwagger.WrapHandler,
	}, middleware.NewActorMiddleware(&auth).Authenticate)

	return &testServer{handler: mux, questions: questions, recorder: recorder}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func (s *testServer) createRound(t *testing.T, body string) string {
	t.Helper()
	rec, resp := s.do(t, http.MethodPost, "/rounds", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := resp["data"].(map[string]any)
	return data["id"].(string)
}

func TestCreateRound(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := srv.do(t, http.MethodPost, "/rounds",
		`{"category":"structural","title":"Q3 structural"}`, middleware.ActorHeader, "admin-1")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, MsgCreated, resp["message"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	data := resp["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.EqualValues(t, models.DefaultQuestionCount, data["questionCount"])
	assert.Equal(t, models.RoundStatusDraft, data["status"])
	assert.Equal(t, map[string]any{}, data["subcategoryQuotas"])

	history := data["history"].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, "admin-1", entry["actor"])
	assert.Equal(t, models.HistoryActionCreated, entry["action"])

	assert.Equal(t, []string{events.RoundCreated}, srv.recorder.Types())
}

func TestCreateRoundErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.createRound(t, `{"category":"structural","title":"Taken"}`)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed body", `{"category":`, http.StatusBadRequest, ErrCodeInvalidBody},
		{"trailing data", `{"category":"a","title":"b"} {}`, http.StatusBadRequest, ErrCodeInvalidBody},
		{"missing category", `{"title":"x"}`, http.StatusBadRequest, service.CodeInvalidCategory},
		{"missing title", `{"category":"structural"}`, http.StatusBadRequest, service.CodeInvalidTitle},
		{"bad question count", `{"category":"structural","title":"x","questionCount":0}`, http.StatusBadRequest, "invalid_questionCount"},
		{"duplicate title", `{"category":"structural","title":"taken"}`, http.StatusConflict, service.CodeDuplicateTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := srv.do(t, http.MethodPost, "/rounds", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.code, resp["message"])
		})
	}
}

func TestListRounds(t *testing.T) {
	srv := newTestServer(t)
	srv.createRound(t, `{"category":"structural","title":"One"}`)
	srv.createRound(t, `{"category":"structural","title":"Two","status":"active"}`)
	srv.createRound(t, `{"category":"billing","title":"Three"}`)

	rec, resp := srv.do(t, http.MethodGet, "/rounds", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, resp["count"])

	_, resp = srv.do(t, http.MethodGet, "/rounds?category=structural&status=active", "")
	assert.EqualValues(t, 1, resp["count"])
	items := resp["items"].([]any)
	assert.Equal(t, "Two", items[0].(map[string]any)["title"])

	_, resp = srv.do(t, http.MethodGet, "/rounds?category=none", "")
	assert.EqualValues(t, 0, resp["count"])
	assert.Equal(t, []any{}, resp["items"])

	rec, resp = srv.do(t, http.MethodGet, "/rounds?active=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeInvalidActive, resp["message"])
}

func TestGetRoundNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := srv.do(t, http.MethodGet, "/rounds/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.CodeNotFound, resp["message"])
}

func TestUpdateRound(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createRound(t, `{"category":"structural","title":"Editable"}`)

	rec, resp := srv.do(t, http.MethodPut, "/rounds/"+id, `{"passingScore":75}`, middleware.ActorHeader, "editor")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MsgUpdated, resp["message"])
	assert.EqualValues(t, 75, resp["data"].(map[string]any)["passingScore"])

	rec, resp = srv.do(t, http.MethodPut, "/rounds/"+id, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeNoFieldsToUpdate, resp["message"])

	rec, _ = srv.do(t, http.MethodPut, "/rounds/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = srv.do(t, http.MethodGet, "/rounds/"+id+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, resp["count"])
	latest := resp["items"].([]any)[1].(map[string]any)
	assert.Equal(t, "editor", latest["actor"])
	changes := latest["changes"].([]any)
	require.Len(t, changes, 1)
	assert.Equal(t, "passingScore", changes[0].(map[string]any)["field"])
}

func TestDeleteRound(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createRound(t, `{"category":"structural","title":"Doomed"}`)

	rec, resp := srv.do(t, http.MethodDelete, "/rounds/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MsgDeleted, resp["message"])
	assert.NotContains(t, resp, "data")

	_, resp = srv.do(t, http.MethodGet, "/rounds/"+id, "")
	data := resp["data"].(map[string]any)
	assert.Equal(t, models.RoundStatusArchived, data["status"])
	assert.Equal(t, false, data["active"])

	rec, _ = srv.do(t, http.MethodDelete, "/rounds/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func questionIDs(t *testing.T, resp map[string]any) []string {
	t.Helper()
	var ids []string
	for i, q := range resp["questions"].([]any) {
		question := q.(map[string]any)
		assert.EqualValues(t, i+1, question["order"])
		ids = append(ids, question["id"].(string))
	}
	return ids
}

func TestWorkerQuestionsLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createRound(t, `{"category":"structural","title":"Live","questionCount":5}`)
	path := "/worker/rounds/" + id + "/questions?sessionId=s-1&workerId=w-1"

	rec, resp := srv.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, service.CodeRoundNotActive, resp["message"])

	rec, _ = srv.do(t, http.MethodPut, "/rounds/"+id, `{"status":"active"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = srv.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "s-1", resp["sessionId"])

	round := resp["round"].(map[string]any)
	assert.Equal(t, id, round["id"])
	assert.EqualValues(t, 5, round["questionCount"])
	assert.NotContains(t, round, "history")

	first := questionIDs(t, resp)
	assert.Len(t, first, 5)

	_, resp = srv.do(t, http.MethodGet, path, "")
	assert.Equal(t, first, questionIDs(t, resp))
}

func TestWorkerQuestionsGeneratesSessionID(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createRound(t, `{"category":"structural","title":"Anon","questionCount":3,"status":"active"}`)

	rec, resp := srv.do(t, http.MethodGet, "/worker/rounds/"+id+"/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp["sessionId"])
}

func TestWorkerQuestionsErrors(t *testing.T) {
	srv := newTestServer(t)
	first := srv.createRound(t, `{"category":"structural","title":"First","questionCount":3,"status":"active"}`)
	second := srv.createRound(t, `{"category":"structural","title":"Second","questionCount":3,"status":"active"}`)
	empty := srv.createRound(t, `{"category":"billing","title":"Empty","questionCount":3,"status":"active"}`)

	rec, _ := srv.do(t, http.MethodGet, "/worker/rounds/"+first+"/questions?sessionId=shared", "")
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"unknown round", "/worker/rounds/missing/questions", http.StatusNotFound, service.CodeNotFound},
		{"session of another round", "/worker/rounds/" + second + "/questions?sessionId=shared", http.StatusBadRequest, service.CodeInvalidSessionRound},
		{"malformed session id", "/worker/rounds/" + second + "/questions?sessionId=bad%20id", http.StatusBadRequest, service.CodeInvalidSessionID},
		{"empty bank", "/worker/rounds/" + empty + "/questions", http.StatusNotFound, service.CodeNoQuestions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := srv.do(t, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, resp["message"])
		})
	}
}

func TestWorkerQuestionsGenericBank(t *testing.T) {
	srv := newTestServer(t)
	srv.questions.AddGeneric(models.BankQuestion{
		ID: "bill-1", Category: "billing", QuestionText: "Which invoice?", IsActive: true,
		Options: []models.BankOption{{OptionText: "second", SortOrder: 2}, {OptionText: "first", SortOrder: 1}},
	})
	id := srv.createRound(t, `{"category":"billing","title":"Billing","questionCount":3,"status":"active"}`)

	rec, resp := srv.do(t, http.MethodGet, "/worker/rounds/"+id+"/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	questions := resp["questions"].([]any)
	require.Len(t, questions, 1)
	q := questions[0].(map[string]any)
	assert.Equal(t, "bill-1", q["id"])
	assert.Equal(t, []any{"first", "second"}, q["choices"])
}

func TestSubmit(t *testing.T) {
	srv := newTestServer(t)
	id := srv.createRound(t, `{"category":"structural","title":"Graded","questionCount":2,"status":"active"}`)
	rec, _ := srv.do(t, http.MethodGet, "/worker/rounds/"+id+"/questions?sessionId=sub-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := srv.do(t, http.MethodPost, "/worker/rounds/"+id+"/submit",
		`{"sessionId":"sub-1","workerId":"w-9","answers":{"1":"A"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, id, resp["roundId"])
	assert.Equal(t, "sub-1", resp["sessionId"])
	assert.Equal(t, "w-9", resp["workerId"])
	assert.Equal(t, map[string]any{"1": "A"}, resp["answers"])
	assert.Equal(t, map[string]any{"score": 0.0, "passed": false, "graded": false}, resp["result"])

	rec, resp = srv.do(t, http.MethodPost, "/worker/rounds/"+id+"/submit", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{}, resp["answers"])

	rec, _ = srv.do(t, http.MethodPost, "/worker/rounds/missing/submit", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = srv.do(t, http.MethodPost, "/worker/rounds/"+id+"/submit", `{"sessionId":"unknown"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.CodeNotFound, resp["message"])
}

func TestAvailability(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := srv.do(t, http.MethodGet, "/worker/availability?workerId=w-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "offline", resp["status"])
	assert.Equal(t, "w-1", resp["workerId"])

	rec, resp = srv.do(t, http.MethodPut, "/worker/availability", `{"workerId":"w-1","status":"Busy"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "busy", resp["status"])
	assert.NotNil(t, resp["updatedAt"])

	_, resp = srv.do(t, http.MethodGet, "/worker/availability?workerId=w-1", "")
	assert.Equal(t, "busy", resp["status"])

	rec, resp = srv.do(t, http.MethodPut, "/worker/availability", `{"workerId":"w-1","status":"asleep"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.CodeInvalidStatus, resp["message"])

	rec, _ = srv.do(t, http.MethodGet, "/worker/availability", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	caps := models.BankCapabilities{DifficultyLevel: true}

	rec := httptest.NewRecorder()
	NewHealthHandler(fakeDB{}, "1.2.3", caps).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"status":"healthy","database":"ok","version":"1.2.3",
		"capabilities":{"difficultyLevel":true,"setNumber":false}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewHealthHandler(fakeDB{err: errors.New("down")}, "1.2.3", caps).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
}

func TestHealthReportsSamplerCapabilities(t *testing.T) {
	srv := newTestServer(t)

	rec, body := srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"difficultyLevel": true, "setNumber": true}, body["capabilities"])
}

func TestSwaggerDocServed(t *testing.T) {
	srv := newTestServer(t)

	rec, body := srv.do(t, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0", body["swagger"])
	paths, ok := body["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/rounds/{id}/history")
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(rec, req, service.NewInternalError("list rounds", errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal_error"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := map[service.ErrorKind]int{
		service.KindInvalidInput: http.StatusBadRequest,
		service.KindNotFound:     http.StatusNotFound,
		service.KindUnavailable:  http.StatusNotFound,
		service.KindForbidden:    http.StatusForbidden,
		service.KindConflict:     http.StatusConflict,
		service.KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusFor(kind), string(kind))
	}
}

func TestActorRequiredWhenAuthEnabled(t *testing.T) {
	srv := newTestServerWithAuth(t, config.AuthConfig{Enabled: true, JWTSecret: "s3cret"})
	body := `{"category":"structural","title":"Protected"}`

	rec, resp := srv.do(t, http.MethodPost, "/rounds", body, middleware.ActorHeader, "spoofed")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", resp["message"])

	token, err := middleware.IssueActorToken("s3cret", "", "maint-2", time.Hour)
	require.NoError(t, err)
	rec, resp = srv.do(t, http.MethodPost, "/rounds", body, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "maint-2", resp["data"].(map[string]any)["createdBy"])

	// worker and system routes stay public
	rec, _ = srv.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = srv.do(t, http.MethodGet, "/worker/availability?workerId=w", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNormalizeSlices(t *testing.T) {
	type inner struct {
		Tags []string `json:"tags"`
	}
	type payload struct {
		Items   []inner           `json:"items"`
		Nested  *inner            `json:"nested"`
		Labels  map[string]string `json:"labels"`
		Raw     json.RawMessage   `json:"raw"`
		Any     any               `json:"any"`
		Missing *inner            `json:"missing"`
		hidden  []string
	}

	in := payload{
		Items:  []inner{{}},
		Nested: &inner{},
		Raw:    json.RawMessage(`{"a":1}`),
		Any:    []int(nil),
		hidden: []string{"x"},
	}
	b, err := json.Marshal(normalizeSlices(in))
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"tags":[]}],"nested":{"tags":[]},"labels":{},"raw":{"a":1},"any":[],"missing":null}`, string(b))

	// the input is not modified
	assert.Nil(t, in.Nested.Tags)
	assert.Nil(t, normalizeSlices(nil))
	assert.Equal(t, "3", normalizeSlices("3"))
}
