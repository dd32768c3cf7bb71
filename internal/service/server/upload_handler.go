package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/service/upload"
)

// UploadHandler handles end-user uploads
type UploadHandler struct {
	uploads *upload.Service
	limit   int64
	logger  *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploads *upload.Service, limit int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, limit: limit, logger: logger}
}

// HandleUpload stores a multipart "file" under the category named by "type"
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	defer cleanupMultipart(r)

	filename, data, err := readUpload(w, r, h.limit)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	category, ok := domain.ParseUploadCategory(r.FormValue("type"))
	if !ok || !category.IsPublic() {
		writeError(w, r, domain.NewValidationError("Invalid upload type"), h.logger)
		return
	}

	result, err := h.uploads.Upload(r.Context(), callerID(r), category, filename, data)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, map[string]any{
		"url":      result.URL,
		"filename": result.Filename,
	})
}
