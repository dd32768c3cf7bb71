package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/service/sharelink"
)

// shareLinkView is the JSON shape of a share link. The password hash never
// leaves the server.
type shareLinkView struct {
	ID             int64      `json:"id"`
	FilePath       string     `json:"filePath"`
	FileName       string     `json:"fileName"`
	FileSize       int64      `json:"fileSize"`
	Token          string     `json:"token"`
	CreatedBy      string     `json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	HasPassword    bool       `json:"hasPassword"`
	MaxDownloads   *int       `json:"maxDownloads"`
	DownloadCount  int        `json:"downloadCount"`
	IsActive       bool       `json:"isActive"`
	LastAccessedAt *time.Time `json:"lastAccessedAt"`
	URL            string     `json:"url"`
}

func newShareLinkView(link *domain.ShareLink, url string) shareLinkView {
	return shareLinkView{
		ID:             link.ID,
		FilePath:       link.FilePath,
		FileName:       link.FileName,
		FileSize:       link.FileSize,
		Token:          link.Token,
		CreatedBy:      link.CreatedBy,
		CreatedAt:      link.CreatedAt,
		ExpiresAt:      link.ExpiresAt,
		HasPassword:    link.HasPassword(),
		MaxDownloads:   link.MaxDownloads,
		DownloadCount:  link.DownloadCount,
		IsActive:       link.IsActive,
		LastAccessedAt: link.LastAccessedAt,
		URL:            url,
	}
}

// maxExpiresIn is the largest expiresIn, in milliseconds, that fits a time.Duration
const maxExpiresIn = math.MaxInt64 / int64(time.Millisecond)

// createShareRequest is the body of POST /api/share/create.
// ExpiresIn is in milliseconds.
type createShareRequest struct {
	FilePath     string `json:"filePath"`
	FileName     string `json:"fileName"`
	FileSize     int64  `json:"fileSize"`
	ExpiresIn    *int64 `json:"expiresIn"`
	Password     string `json:"password"`
	MaxDownloads *int   `json:"maxDownloads"`
}

// ShareHandler handles share-link administration
type ShareHandler struct {
	shares *sharelink.Service
	logger *zap.Logger
}

// NewShareHandler creates a new ShareHandler
func NewShareHandler(shares *sharelink.Service, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{shares: shares, logger: logger}
}

// HandleCreate issues a new share link
func (h *ShareHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createShareRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	in := sharelink.CreateLinkInput{
		FilePath:     req.FilePath,
		FileName:     req.FileName,
		FileSize:     req.FileSize,
		CreatedBy:    callerID(r),
		Password:     req.Password,
		MaxDownloads: req.MaxDownloads,
	}
	if req.ExpiresIn != nil {
		if ms := *req.ExpiresIn; ms > maxExpiresIn || ms < -maxExpiresIn {
			writeError(w, r, domain.NewValidationError("expiresIn is out of range"), h.logger)
			return
		}
		d := time.Duration(*req.ExpiresIn) * time.Millisecond
		in.ExpiresIn = &d
	}

	link, err := h.shares.CreateLink(r.Context(), in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	url := h.shares.PublicURL(link.Token)
	writeSuccess(w, map[string]any{
		"shareLink": newShareLinkView(link, url),
		"url":       url,
	})
}

// HandleList returns the caller's share links, newest first
func (h *ShareHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	links, err := h.shares.ListLinksByCreator(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	views := make([]shareLinkView, 0, len(links))
	for _, link := range links {
		views = append(views, newShareLinkView(link, h.shares.PublicURL(link.Token)))
	}
	writeSuccess(w, map[string]any{"shareLinks": views})
}

// HandleDeactivate disables one of the caller's links
func (h *ShareHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.shares.Deactivate(r.Context(), id, callerID(r)); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, nil)
}

// HandleDelete removes one of the caller's links
func (h *ShareHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.shares.Delete(r.Context(), id, callerID(r)); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, nil)
}

func linkID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("Invalid share link id")
	}
	return id, nil
}
