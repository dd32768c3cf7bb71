package server

import (
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
	"github.com/vertextoedge/label-portal/internal/port"
	"github.com/vertextoedge/label-portal/internal/service/sharelink"
	"github.com/vertextoedge/label-portal/internal/util/ratelimiter"
)

// sharedInfo is the public description of a share link
type sharedInfo struct {
	Name             string     `json:"name"`
	Size             int64      `json:"size"`
	RequiresPassword bool       `json:"requiresPassword"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	MaxDownloads     *int       `json:"maxDownloads"`
	DownloadCount    int        `json:"downloadCount"`
	Remaining        *int       `json:"remainingDownloads"`
	IsActive         bool       `json:"isActive"`
}

type downloadRequest struct {
	Password string `json:"password"`
}

// PublicHandler serves share links to anonymous recipients
type PublicHandler struct {
	shares  *sharelink.Service
	storage port.RemoteStorage
	guard   *ratelimiter.Limiter
	logger  *zap.Logger
}

// NewPublicHandler creates a new PublicHandler. A nil guard disables
// password attempt throttling.
func NewPublicHandler(shares *sharelink.Service, storage port.RemoteStorage, guard *ratelimiter.Limiter, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		shares:  shares,
		storage: storage,
		guard:   guard,
		logger:  logger,
	}
}

// HandleInfo describes the link without validating it
func (h *PublicHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	link, err := h.shares.GetLink(r.Context(), token)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if link == nil {
		writeFailure(w, http.StatusNotFound, domain.ReasonNotFound)
		return
	}

	info := sharedInfo{
		Name:             link.FileName,
		Size:             link.FileSize,
		RequiresPassword: link.HasPassword(),
		ExpiresAt:        link.ExpiresAt,
		MaxDownloads:     link.MaxDownloads,
		DownloadCount:    link.DownloadCount,
		IsActive:         link.IsActive,
	}
	if link.MaxDownloads != nil {
		remaining := link.RemainingDownloads()
		info.Remaining = &remaining
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleDownload validates the link and streams the file as an attachment
func (h *PublicHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var req downloadRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	key := token + "|" + clientIP(r)
	if h.guard != nil {
		if ok, wait := h.guard.Allow(key); !ok {
			h.logger.Warn("share password attempts throttled",
				zap.String("token", vo.MaskToken(token)),
				zap.String("remote_addr", r.RemoteAddr))
			writeError(w, r, domain.NewRetryableError(domain.ErrRateLimited, wait), h.logger)
			return
		}
	}

	result, err := h.shares.ValidateLink(r.Context(), token, req.Password)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if !result.Valid {
		if h.guard != nil && result.Reason == domain.ReasonInvalidPassword {
			h.guard.Block(key)
		}
		writeError(w, r, domain.NewForbiddenError(result.Reason), h.logger)
		return
	}
	if h.guard != nil {
		h.guard.Reset(key)
	}

	link := result.Link
	data, err := h.storage.DownloadFile(r.Context(), link.FilePath)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.shares.IncrementDownloadCount(r.Context(), token); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.logger.Info("serving shared file",
		zap.String("token", vo.MaskToken(token)),
		zap.String("path", link.FilePath),
		zap.Int("bytes", len(data)))

	writeFile(w, link.FileName, data, "attachment")
}

// writeFile sends data with a content type guessed from name
func writeFile(w http.ResponseWriter, name string, data []byte, disposition string) {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
