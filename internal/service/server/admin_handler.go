package server

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/port"
	"github.com/vertextoedge/label-portal/internal/service/upload"
)

// AdminHandler handles demo review and role assignment
type AdminHandler struct {
	uploads *upload.Service
	roles   port.RoleResolver
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(uploads *upload.Service, roles port.RoleResolver, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{uploads: uploads, roles: roles, logger: logger}
}

// HandleListSubmissions returns demo submissions, optionally filtered by ?status=
func (h *AdminHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.uploads.Submissions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"submissions": subs})
}

// HandleReviewSubmission sets the status of a submission
func (h *AdminHandler) HandleReviewSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, domain.NewValidationError("Invalid submission id"), h.logger)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.uploads.ReviewSubmission(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"id": id, "status": req.Status})
}

// HandleSetRole assigns a role to a user profile
func (h *AdminHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.roles.SetRole(r.Context(), userID, req.Role); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"userId": userID, "role": req.Role})
}
