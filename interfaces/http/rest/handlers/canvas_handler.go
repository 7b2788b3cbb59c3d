package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"investigation-canvas/application/interaction"
	"investigation-canvas/application/ports"
	"investigation-canvas/application/services"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	domainServices "investigation-canvas/domain/services"
	"investigation-canvas/infrastructure/persistence/codec"
	"investigation-canvas/infrastructure/prompts"
	"investigation-canvas/pkg/common"
	appErrors "investigation-canvas/pkg/errors"
	"investigation-canvas/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxPromptWait caps how long GET /prompts?wait= holds a request
const MaxPromptWait = 30 * time.Second

// CanvasHandler exposes editor sessions over HTTP
type CanvasHandler struct {
	sessions *services.SessionManager
	broker   *prompts.Broker
	errors   *appErrors.ErrorHandler
	logger   *zap.Logger
}

// NewCanvasHandler creates a canvas handler
func NewCanvasHandler(
	sessions *services.SessionManager,
	broker *prompts.Broker,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *CanvasHandler {
	return &CanvasHandler{
		sessions: sessions,
		broker:   broker,
		errors:   errorHandler,
		logger:   logger,
	}
}

type openCanvasRequest struct {
	Seed   domainServices.Seed `json:"seed"`
	Width  int                 `json:"width" validate:"omitempty,min=1,max=8192"`
	Height int                 `json:"height" validate:"omitempty,min=1,max=8192"`
}

type pointerRequest struct {
	Type     string  `json:"type" validate:"required,oneof=down move up dblclick contextmenu"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Modifier bool    `json:"modifier"`
}

type addNodeRequest struct {
	Type string `json:"type" validate:"required,oneof=event annotation"`
}

type resizeRequest struct {
	Width  int `json:"width" validate:"required,min=1,max=8192"`
	Height int `json:"height" validate:"required,min=1,max=8192"`
}

type selectionResponse struct {
	NodeID       string `json:"nodeId,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// SceneResponse is the JSON view of a running session
type SceneResponse struct {
	codec.Record
	Version     int               `json:"version"`
	State       string            `json:"state"`
	ConnectMode bool              `json:"connectMode"`
	Selection   selectionResponse `json:"selection"`
	Dirty       bool              `json:"dirty"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Frames      int               `json:"frames"`
}

type pointerResponse struct {
	SceneChanged bool   `json:"sceneChanged"`
	EditNode     string `json:"editNode,omitempty"`
	DeleteNode   string `json:"deleteNode,omitempty"`
	State        string `json:"state"`
}

func sceneResponse(v services.View) SceneResponse {
	resp := SceneResponse{
		Record:      codec.ToRecord(v.Scene),
		Version:     v.Scene.Version(),
		State:       v.Snapshot.State.Name(),
		ConnectMode: v.Snapshot.ConnectModeActive(),
		Dirty:       v.Dirty,
		Width:       v.Width,
		Height:      v.Height,
		Frames:      v.Frames,
	}
	if !v.Snapshot.Selection.Node.IsZero() {
		resp.Selection.NodeID = v.Snapshot.Selection.Node.String()
	}
	if !v.Snapshot.Selection.Connection.IsZero() {
		resp.Selection.ConnectionID = v.Snapshot.Selection.Connection.String()
	}
	return resp
}

// OpenCanvas handles POST /investigations/{investigationID}/canvas
func (h *CanvasHandler) OpenCanvas(w http.ResponseWriter, r *http.Request) {
	investigationID := chi.URLParam(r, "investigationID")

	var req openCanvasRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, created, err := h.sessions.Open(r.Context(), services.SessionOptions{
		InvestigationID: investigationID,
		Seed:            req.Seed,
		Width:           req.Width,
		Height:          req.Height,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.respondScene(w, r, session, status)
}

// GetCanvas handles GET /investigations/{investigationID}/canvas
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondScene(w, r, session, http.StatusOK)
}

// CloseCanvas handles DELETE /investigations/{investigationID}/canvas.
// Unsaved changes are discarded.
func (h *CanvasHandler) CloseCanvas(w http.ResponseWriter, r *http.Request) {
	investigationID := chi.URLParam(r, "investigationID")
	if !h.sessions.Close(investigationID) {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("canvas session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pointer handles POST /investigations/{investigationID}/canvas/pointer
func (h *CanvasHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req pointerRequest
	if !h.decode(w, r, &req) {
		return
	}
	kind, err := interaction.ParsePointerKind(req.Type)
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError(err.Error()))
		return
	}

	out, err := session.Dispatch(r.Context(), interaction.PointerEvent{
		Kind:     kind,
		Position: valueobjects.NewPosition(req.X, req.Y),
		Modifier: req.Modifier,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := pointerResponse{SceneChanged: out.SceneChanged}
	if out.WantsEdit() {
		resp.EditNode = out.EditNode.String()
	}
	if out.WantsDelete() {
		resp.DeleteNode = out.DeleteNode.String()
	}
	if err := session.Inspect(r.Context(), func(v services.View) {
		resp.State = v.Snapshot.State.Name()
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// AddNode handles POST /investigations/{investigationID}/canvas/nodes
func (h *CanvasHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addNodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := session.AddNode(r.Context(), entities.NodeKind(req.Type))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// DeleteSelectedConnection handles DELETE /investigations/{investigationID}/canvas/connections/selected
func (h *CanvasHandler) DeleteSelectedConnection(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	removed, err := session.DeleteSelectedConnection(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// ClearCanvas handles POST /investigations/{investigationID}/canvas/clear.
// The clear waits for a confirm prompt; with ?wait=true the response waits too.
func (h *CanvasHandler) ClearCanvas(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	result := session.Clear(r.Context())
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); !wait {
		common.RespondJSON(w, http.StatusAccepted, map[string]bool{"pending": true})
		return
	}

	select {
	case cleared := <-result:
		common.RespondJSON(w, http.StatusOK, map[string]bool{"cleared": cleared})
	case <-r.Context().Done():
	}
}

// SaveCanvas handles POST /investigations/{investigationID}/canvas/save
func (h *CanvasHandler) SaveCanvas(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	select {
	case err := <-session.Save(r.Context()):
		if err != nil {
			h.fail(w, r, err)
			return
		}
	case <-r.Context().Done():
		return
	}
	h.respondScene(w, r, session, http.StatusOK)
}

// ResizeCanvas handles PUT /investigations/{investigationID}/canvas/size
func (h *CanvasHandler) ResizeCanvas(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req resizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := session.Resize(r.Context(), req.Width, req.Height); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondScene(w, r, session, http.StatusOK)
}

// GetFrame handles GET /investigations/{investigationID}/canvas/frame.png
func (h *CanvasHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := session.WriteFrame(r.Context(), &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("Failed to write frame", zap.Error(err))
	}
}

// ListPrompts handles GET /investigations/{investigationID}/canvas/prompts.
// ?wait=<duration> holds the request until a prompt opens.
func (h *CanvasHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	investigationID := chi.URLParam(r, "investigationID")

	if raw := r.URL.Query().Get("wait"); raw != "" {
		wait, err := time.ParseDuration(raw)
		if err != nil || wait < 0 {
			h.errors.Handle(w, r, appErrors.NewValidationError("wait must be a non-negative duration"))
			return
		}
		if wait > MaxPromptWait {
			wait = MaxPromptWait
		}
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		_, err = h.broker.Wait(ctx, investigationID)
		cancel()
		if err != nil && r.Context().Err() != nil {
			return
		}
	}

	common.RespondJSON(w, http.StatusOK, h.broker.Pending(investigationID))
}

// ResolvePrompt handles POST /investigations/{investigationID}/canvas/prompts/{promptID}
func (h *CanvasHandler) ResolvePrompt(w http.ResponseWriter, r *http.Request) {
	var answer prompts.Answer
	if !h.decode(w, r, &answer) {
		return
	}
	if err := h.broker.Resolve(chi.URLParam(r, "promptID"), answer); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotices handles GET /investigations/{investigationID}/canvas/notices
func (h *CanvasHandler) ListNotices(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.broker.Notices(chi.URLParam(r, "investigationID")))
}

// ClearNotices handles DELETE /investigations/{investigationID}/canvas/notices
func (h *CanvasHandler) ClearNotices(w http.ResponseWriter, r *http.Request) {
	h.broker.ClearNotices(chi.URLParam(r, "investigationID"))
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /sessions
func (h *CanvasHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.sessions.IDs())
}

func (h *CanvasHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	session, ok := h.sessions.Get(chi.URLParam(r, "investigationID"))
	if !ok {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("canvas session"))
		return nil, false
	}
	return session, true
}

func (h *CanvasHandler) respondScene(w http.ResponseWriter, r *http.Request, session *services.Session, status int) {
	var resp SceneResponse
	if err := session.Inspect(r.Context(), func(v services.View) {
		resp = sceneResponse(v)
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondWithMeta(w, status, resp, &common.MetaInfo{RequestID: common.ExtractRequestID(r)})
}

// decode parses and validates a JSON body, answering 400 on failure
func (h *CanvasHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(w, r, v, common.DefaultMaxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("invalid request body").WithCause(err))
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError(err.Error()))
		return false
	}
	return true
}

func (h *CanvasHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ports.ErrSessionClosed) {
		err = appErrors.NewNotFoundError("canvas session").WithCause(err)
	}
	h.errors.Handle(w, r, err)
}
