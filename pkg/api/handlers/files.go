package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/metadata"
	"github.com/snapfile/snapfile/pkg/metrics"
	"github.com/snapfile/snapfile/pkg/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// FileHandler serves the file index endpoints. It owns the pairing of
// the metadata index with the byte store: deletes remove bytes first and
// the index entry second, so a crash in between leaves an orphaned index
// entry rather than an unreachable file.
type FileHandler struct {
	meta    *metadata.Service
	store   storage.Store
	metrics *metrics.HTTPMetrics
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(meta *metadata.Service, store storage.Store, m *metrics.HTTPMetrics) *FileHandler {
	return &FileHandler{meta: meta, store: store, metrics: m}
}

type moveFileRequest struct {
	FolderID *string `json:"folder_id"`
}

// fileListing is the combined browse response for one folder level:
// child folders with summaries, the files at this level (paged, newest
// first), and the breadcrumb trail.
type fileListing struct {
	Folders       []metadata.FolderSummary `json:"folders"`
	CurrentFolder *metadata.FolderSummary  `json:"current_folder,omitempty"`
	Breadcrumbs   []metadata.FolderSummary `json:"breadcrumbs"`
	Files         []metadata.File          `json:"files"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"page_size"`
	TotalFiles    int                      `json:"total_files"`
}

// List returns the contents of one folder level. An absent folder_id
// query parameter means the root level.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	folderID := optionalIDParam(r, "folder_id")

	listing, err := h.meta.List(folderID)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	files, err := h.meta.ListFiles(folderID)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	page, pageSize := pageParams(r)
	total := len(files)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	WriteJSONOK(w, fileListing{
		Folders:       listing.Folders,
		CurrentFolder: listing.CurrentFolder,
		Breadcrumbs:   listing.Breadcrumbs,
		Files:         files[start:end],
		Page:          page,
		PageSize:      pageSize,
		TotalFiles:    total,
	})
}

// Delete removes a file's bytes and its index entry.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	if err := h.store.Delete(filename); err != nil {
		logger.ErrorCtx(r.Context(), "failed to delete file bytes",
			logger.Filename(filename), logger.Err(err))
		InternalServerError(w)
		return
	}

	err := h.meta.RemoveFile(filename)
	h.metrics.RecordMetadataOp("remove_file", err)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "file deleted", logger.Filename(filename))
	WriteNoContent(w)
}

// Move re-homes a file into another folder. A null folder_id moves it to
// the root level. The size recorded in the index is refreshed from the
// byte store.
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	var req moveFileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if !h.store.Exists(filename) {
		NotFound(w, "file not found: "+filename)
		return
	}

	size, err := h.store.Size(filename)
	if err != nil {
		logger.ErrorCtx(r.Context(), "failed to stat file",
			logger.Filename(filename), logger.Err(err))
		InternalServerError(w)
		return
	}

	err = h.meta.AssignFile(filename, req.FolderID, size)
	h.metrics.RecordMetadataOp("assign_file", err)
	if err != nil {
		writeMetadataError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "file moved", logger.Filename(filename))
	WriteNoContent(w)
}

// pageParams reads page and page_size from the query, clamped to sane
// bounds.
func pageParams(r *http.Request) (page, pageSize int) {
	page = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	pageSize = defaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
