package handlers

import (
	"net/http"

	"investigation-canvas/application/ports"
	"investigation-canvas/infrastructure/persistence/codec"
	"investigation-canvas/pkg/common"
	appErrors "investigation-canvas/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves saved diagrams straight from the store
type CatalogHandler struct {
	store   ports.SceneStore
	catalog ports.SceneCatalog
	errors  *appErrors.ErrorHandler
	logger  *zap.Logger
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(
	store ports.SceneStore,
	catalog ports.SceneCatalog,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		store:   store,
		catalog: catalog,
		errors:  errorHandler,
		logger:  logger,
	}
}

// ListCanvases handles GET /canvases
func (h *CatalogHandler) ListCanvases(w http.ResponseWriter, r *http.Request) {
	ids, err := h.catalog.List(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	params := common.ExtractPaginationParams(r)
	common.RespondWithMeta(w, http.StatusOK, common.Paginate(ids, params), &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(ids)),
	})
}

// GetCanvas handles GET /canvases/{investigationID}
func (h *CatalogHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	investigationID := chi.URLParam(r, "investigationID")
	scene, err := h.store.Load(r.Context(), investigationID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if scene == nil {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("saved canvas"))
		return
	}
	common.RespondJSON(w, http.StatusOK, codec.ToRecord(scene))
}

// DeleteCanvas handles DELETE /canvases/{investigationID}
func (h *CatalogHandler) DeleteCanvas(w http.ResponseWriter, r *http.Request) {
	investigationID := chi.URLParam(r, "investigationID")
	if err := h.catalog.Delete(r.Context(), investigationID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.logger.Info("Deleted saved canvas", zap.String("investigationID", investigationID))
	w.WriteHeader(http.StatusNoContent)
}
