package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"investigation-canvas/application/services"
	"investigation-canvas/infrastructure/persistence"
	"investigation-canvas/infrastructure/persistence/memory"
	"investigation-canvas/infrastructure/prompts"
	"investigation-canvas/infrastructure/render/raster"
	"investigation-canvas/interfaces/http/rest"
	"investigation-canvas/interfaces/http/rest/handlers"
	appErrors "investigation-canvas/pkg/errors"
	"investigation-canvas/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const seedBody = `{"seed":{"events":[
	{"source":"git","type":"commit","description":"bump deps","timestamp":"2026-01-01T10:00:00Z"},
	{"source":"ci","type":"build_failed","timestamp":"2026-01-01T10:05:00Z"}
],"annotations":[
	{"content":"Started after the deploy","author":"oncall","timestamp":"2026-01-01T10:10:00Z"}
]},"width":640,"height":480}`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

type testServer struct {
	handler  http.Handler
	broker   *prompts.Broker
	sessions *services.SessionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store := persistence.NewAdapter(memory.NewStore(), nil, logger)
	broker := prompts.NewBroker(0, logger)
	metrics := observability.NewCollector("canvas")

	sessions := services.NewSessionManager(context.Background(), services.SessionDeps{
		Store:     store,
		Editor:    broker,
		Confirmer: broker,
		Notifier:  broker,
		Telemetry: metrics,
		NewSurface: func(w, h int) (services.Surface, error) {
			return raster.NewSurface(w, h)
		},
		Logger: logger,
	})
	t.Cleanup(func() { _ = sessions.Shutdown() })

	errorHandler := appErrors.NewErrorHandler(logger, false)
	router := rest.NewRouter(
		handlers.NewCanvasHandler(sessions, broker, errorHandler, logger),
		handlers.NewCatalogHandler(store, store, errorHandler, logger),
		metrics,
		errorHandler,
		rest.RouterOptions{EnableCORS: true},
		logger,
	)
	return &testServer{handler: router.Setup(), broker: broker, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) scene(t *testing.T, id string) handlers.SceneResponse {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/investigations/"+id+"/canvas", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var scene handlers.SceneResponse
	require.NoError(t, json.Unmarshal(env.Data, &scene))
	return scene
}

func (s *testServer) waitPrompt(t *testing.T, id string) prompts.Pending {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p, err := s.broker.Wait(ctx, id)
	require.NoError(t, err)
	return p
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRouter_OpenCanvas(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", "")
	assert.Equal(t, http.StatusOK, rec.Code, "second open returns the running session")

	scene := srv.scene(t, "inv-1")
	assert.Equal(t, "inv-1", scene.InvestigationID)
	assert.Len(t, scene.Nodes, 3)
	assert.Empty(t, scene.Connections)
	assert.False(t, scene.Dirty)
	assert.Equal(t, "idle", scene.State)
	assert.Equal(t, 640, scene.Width)
	assert.Equal(t, 480, scene.Height)

	rec = srv.do(t, http.MethodGet, "/api/v1/sessions", "")
	assert.Contains(t, rec.Body.String(), "inv-1")
}

func TestRouter_Errors(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "unknown session", method: http.MethodPost, path: "/api/v1/investigations/nope/canvas/pointer", body: `{"type":"down","x":1,"y":1}`, status: http.StatusNotFound},
		{name: "bad pointer type", method: http.MethodPost, path: "/api/v1/investigations/inv-1/canvas/pointer", body: `{"type":"hover","x":1,"y":1}`, status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/v1/investigations/inv-1/canvas/pointer", body: `{"type":"down","z":1}`, status: http.StatusBadRequest},
		{name: "bad node type", method: http.MethodPost, path: "/api/v1/investigations/inv-1/canvas/nodes", body: `{"type":"widget"}`, status: http.StatusBadRequest},
		{name: "bad size", method: http.MethodPut, path: "/api/v1/investigations/inv-1/canvas/size", body: `{"width":0,"height":10}`, status: http.StatusBadRequest},
		{name: "unknown prompt", method: http.MethodPost, path: "/api/v1/investigations/inv-1/canvas/prompts/missing", body: `{"confirm":true}`, status: http.StatusNotFound},
		{name: "bad wait", method: http.MethodGet, path: "/api/v1/investigations/inv-1/canvas/prompts?wait=soon", status: http.StatusBadRequest},
		{name: "missing saved canvas", method: http.MethodGet, path: "/api/v1/canvases/inv-9", status: http.StatusNotFound},
		{name: "invalid seed", method: http.MethodPost, path: "/api/v1/investigations/inv-2/canvas", body: `{"seed":{"events":[{"type":"commit"}]}}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_UnmatchedRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		wantType string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/api/v1/widgets", status: http.StatusNotFound, wantType: "NOT_FOUND"},
		{name: "wrong method", method: http.MethodPatch, path: "/health", status: http.StatusMethodNotAllowed, wantType: "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, "")
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body appErrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, tt.wantType, body.Type)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestRouter_CatalogPageOutOfRange(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/save", "").Code)

	for _, page := range []string{"9223372036854775807", "92233720368547758", "2"} {
		t.Run(page, func(t *testing.T) {
			rec := srv.do(t, http.MethodGet, "/api/v1/canvases?page_size=100&page="+page, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var env envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.JSONEq(t, `[]`, string(env.Data))
			assert.Equal(t, 1, env.Meta.Pagination.Total)
		})
	}
}

func TestRouter_AddNodeAndEdit(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)

	rec := srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/nodes", `{"type":"event"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var added map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &added))

	prompt := srv.waitPrompt(t, "inv-1")
	assert.Equal(t, prompts.KindEdit, prompt.Kind)
	assert.Equal(t, added["id"], prompt.NodeID)
	assert.True(t, prompt.Created)
	require.NotNil(t, prompt.Fields)
	assert.Equal(t, "New Event", prompt.Fields.Title)

	rec = srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/prompts/"+prompt.ID,
		`{"update":{"title":"Rollback","description":"Reverted release 42"}}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		for _, n := range srv.scene(t, "inv-1").Nodes {
			if n.ID == added["id"] {
				return n.Title == "Rollback"
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	scene := srv.scene(t, "inv-1")
	assert.Len(t, scene.Nodes, 4)
	assert.True(t, scene.Dirty)
	assert.Equal(t, added["id"], scene.Selection.NodeID)
}

func TestRouter_ConnectWithModifierClicks(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)

	steps := []string{
		`{"type":"down","x":150,"y":130,"modifier":true}`,
		`{"type":"up","x":150,"y":130}`,
		`{"type":"down","x":350,"y":130}`,
		`{"type":"up","x":350,"y":130}`,
	}
	for _, body := range steps {
		rec := srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/pointer", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	scene := srv.scene(t, "inv-1")
	require.Len(t, scene.Connections, 1)
	assert.Equal(t, scene.Nodes[0].ID, scene.Connections[0].From)
	assert.Equal(t, scene.Nodes[1].ID, scene.Connections[0].To)
	assert.True(t, scene.Dirty)
}

func TestRouter_ClearWithConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		confirm bool
		nodes   int
	}{
		{name: "confirmed", confirm: true, nodes: 0},
		{name: "declined", confirm: false, nodes: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)

			rec := srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/clear", "")
			require.Equal(t, http.StatusAccepted, rec.Code)

			prompt := srv.waitPrompt(t, "inv-1")
			assert.Equal(t, prompts.KindConfirm, prompt.Kind)
			body, _ := json.Marshal(prompts.Answer{Confirm: tt.confirm})
			require.Equal(t, http.StatusNoContent,
				srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/prompts/"+prompt.ID, string(body)).Code)

			require.Eventually(t, func() bool {
				return len(srv.broker.Pending("inv-1")) == 0 && len(srv.scene(t, "inv-1").Nodes) == tt.nodes
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestRouter_SaveAndCatalog(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)

	// Drag the first node so there is something to save
	for _, body := range []string{
		`{"type":"down","x":150,"y":130}`,
		`{"type":"move","x":250,"y":330}`,
		`{"type":"up","x":250,"y":330}`,
	} {
		require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/pointer", body).Code)
	}
	require.True(t, srv.scene(t, "inv-1").Dirty)

	rec := srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas/save", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, srv.scene(t, "inv-1").Dirty)

	rec = srv.do(t, http.MethodGet, "/api/v1/canvases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.JSONEq(t, `["inv-1"]`, string(env.Data))
	assert.Equal(t, 1, env.Meta.Pagination.Total)

	rec = srv.do(t, http.MethodGet, "/api/v1/canvases/inv-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"x":200`)

	rec = srv.do(t, http.MethodGet, "/api/v1/investigations/inv-1/canvas/notices", "")
	assert.Contains(t, rec.Body.String(), "Diagram saved")

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/v1/canvases/inv-1", "").Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/v1/canvases/inv-1", "").Code)
}

func TestRouter_FrameAndResize(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)

	rec := srv.do(t, http.MethodPut, "/api/v1/investigations/inv-1/canvas/size", `{"width":320,"height":200}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	scene := srv.scene(t, "inv-1")
	assert.Equal(t, 320, scene.Width)
	assert.Equal(t, 2, scene.Frames)
	assert.False(t, scene.Dirty)

	rec = srv.do(t, http.MethodGet, "/api/v1/investigations/inv-1/canvas/frame.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestRouter_CloseCanvas(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/investigations/inv-1/canvas", seedBody).Code)

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/v1/investigations/inv-1/canvas", "").Code)
	require.Eventually(t, func() bool {
		_, ok := srv.sessions.Get("inv-1")
		return !ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, "/api/v1/investigations/inv-1/canvas", "").Code)
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/health", "")

	rec := srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `canvas_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
