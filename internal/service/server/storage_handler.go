package server

import (
	"net/http"
	"path"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/port"
	"github.com/vertextoedge/label-portal/internal/service/upload"
)

type pathRequest struct {
	Path string `json:"path"`
}

type searchRequest struct {
	Path  string `json:"path"`
	Query string `json:"query"`
}

type moveRequest struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

// StorageHandler exposes the remote storage browser to admins
type StorageHandler struct {
	storage port.RemoteStorage
	uploads *upload.Service
	limit   int64
	logger  *zap.Logger
}

// NewStorageHandler creates a new StorageHandler
func NewStorageHandler(storage port.RemoteStorage, uploads *upload.Service, limit int64, logger *zap.Logger) *StorageHandler {
	return &StorageHandler{
		storage: storage,
		uploads: uploads,
		limit:   limit,
		logger:  logger,
	}
}

// HandleList lists one directory. An empty path lists the base.
func (h *StorageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	files, err := h.storage.ListFiles(r.Context(), req.Path)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if files == nil {
		files = []domain.RemoteFile{}
	}
	writeSuccess(w, map[string]any{"files": files})
}

// HandleUpload stores a multipart "file" into the directory named by "path"
func (h *StorageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	defer cleanupMultipart(r)

	filename, data, err := readUpload(w, r, h.limit)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	result, err := h.uploads.AdminUpload(r.Context(), r.FormValue("path"), filename, data)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"file": result})
}

// HandleDownload sends a file as an attachment
func (h *StorageHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	h.sendFile(w, r, "attachment")
}

// HandleStream sends a file inline for previews
func (h *StorageHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	h.sendFile(w, r, "inline")
}

func (h *StorageHandler) sendFile(w http.ResponseWriter, r *http.Request, disposition string) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Path == "" {
		writeError(w, r, domain.NewValidationError("path is required"), h.logger)
		return
	}

	data, err := h.storage.DownloadFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeFile(w, path.Base(req.Path), data, disposition)
}

// HandleDelete removes a file or a directory tree
func (h *StorageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Path == "" {
		writeError(w, r, domain.NewValidationError("path is required"), h.logger)
		return
	}

	if err := h.storage.DeleteFile(r.Context(), req.Path); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.logger.Info("admin storage entry deleted", zap.String("path", req.Path))
	writeSuccess(w, nil)
}

// HandleCreateFolder creates a directory and its parents
func (h *StorageHandler) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Path == "" {
		writeError(w, r, domain.NewValidationError("path is required"), h.logger)
		return
	}

	folder, err := h.storage.CreateDirectory(r.Context(), req.Path)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"folder": folder})
}

// HandleSearch finds entries below path whose name contains query
func (h *StorageHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Query == "" {
		writeError(w, r, domain.NewValidationError("query is required"), h.logger)
		return
	}

	files, err := h.storage.Search(r.Context(), req.Path, req.Query)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if files == nil {
		files = []domain.RemoteFile{}
	}
	writeSuccess(w, map[string]any{"files": files})
}

// HandleMove renames or moves an entry
func (h *StorageHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.OldPath == "" || req.NewPath == "" {
		writeError(w, r, domain.NewValidationError("oldPath and newPath are required"), h.logger)
		return
	}

	if err := h.storage.MoveFile(r.Context(), req.OldPath, req.NewPath); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.logger.Info("admin storage entry moved",
		zap.String("from", req.OldPath), zap.String("to", req.NewPath))
	writeSuccess(w, nil)
}

// HandleInfo returns metadata of one entry
func (h *StorageHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	info, err := h.storage.FileInfo(r.Context(), req.Path)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"file": info})
}
