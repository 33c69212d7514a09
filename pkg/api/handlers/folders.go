package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/metadata"
	"github.com/snapfile/snapfile/pkg/metrics"
)

// FolderHandler serves the folder tree endpoints.
type FolderHandler struct {
	meta    *metadata.Service
	metrics *metrics.HTTPMetrics
}

// NewFolderHandler creates a FolderHandler.
func NewFolderHandler(meta *metadata.Service, m *metrics.HTTPMetrics) *FolderHandler {
	return &FolderHandler{meta: meta, metrics: m}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

type moveFolderRequest struct {
	ParentID *string `json:"parent_id"`
}

// List returns the child folders of the given parent, with summaries and
// breadcrumbs. An absent parent_id query parameter means the root level.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	parentID := optionalIDParam(r, "parent_id")

	listing, err := h.meta.List(parentID)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	WriteJSONOK(w, listing)
}

// Create creates a folder and returns its summary.
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	summary, err := h.meta.CreateFolder(req.Name, req.ParentID)
	h.metrics.RecordMetadataOp("create_folder", err)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "folder created",
		logger.FolderID(summary.ID),
		logger.FolderName(summary.Name))
	WriteJSONCreated(w, summary)
}

// Delete removes an empty folder.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.meta.DeleteFolder(id)
	h.metrics.RecordMetadataOp("delete_folder", err)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "folder deleted", logger.FolderID(id))
	WriteNoContent(w)
}

// Move reparents a folder. A null parent_id moves it to the root level.
func (h *FolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req moveFolderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	err := h.meta.MoveFolder(id, req.ParentID)
	h.metrics.RecordMetadataOp("move_folder", err)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "folder moved", logger.FolderID(id))
	WriteNoContent(w)
}

// optionalIDParam returns the named query parameter, or nil when absent
// or empty.
func optionalIDParam(r *http.Request, name string) *string {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil
	}
	return &value
}
