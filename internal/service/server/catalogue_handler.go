package server

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/service/catalogue"
)

// CatalogueHandler exposes the artist and release collections to admins
type CatalogueHandler struct {
	catalogue *catalogue.Service
	logger    *zap.Logger
}

// NewCatalogueHandler creates a new CatalogueHandler
func NewCatalogueHandler(svc *catalogue.Service, logger *zap.Logger) *CatalogueHandler {
	return &CatalogueHandler{catalogue: svc, logger: logger}
}

func catalogueID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("Invalid id")
	}
	return id, nil
}

// HandleListArtists returns every artist
func (h *CatalogueHandler) HandleListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalogue.ListArtists(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if artists == nil {
		artists = []domain.Artist{}
	}
	writeSuccess(w, map[string]any{"artists": artists})
}

// HandleGetArtist returns one artist
func (h *CatalogueHandler) HandleGetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := catalogueID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	artist, err := h.catalogue.GetArtist(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"artist": artist})
}

// HandleCreateArtist appends an artist
func (h *CatalogueHandler) HandleCreateArtist(w http.ResponseWriter, r *http.Request) {
	var in domain.Artist
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	artist, err := h.catalogue.CreateArtist(r.Context(), in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"artist": artist})
}

// HandleUpdateArtist replaces an artist
func (h *CatalogueHandler) HandleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := catalogueID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var in domain.Artist
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	artist, err := h.catalogue.UpdateArtist(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"artist": artist})
}

// HandleDeleteArtist removes an artist
func (h *CatalogueHandler) HandleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := catalogueID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.catalogue.DeleteArtist(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, nil)
}

// HandleListReleases returns every release, newest first
func (h *CatalogueHandler) HandleListReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := h.catalogue.ListReleases(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if releases == nil {
		releases = []domain.Release{}
	}
	writeSuccess(w, map[string]any{"releases": releases})
}

// HandleGetRelease returns one release
func (h *CatalogueHandler) HandleGetRelease(w http.ResponseWriter, r *http.Request) {
	id, err := catalogueID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	release, err := h.catalogue.GetRelease(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"release": release})
}

// HandleCreateRelease prepends a release
func (h *CatalogueHandler) HandleCreateRelease(w http.ResponseWriter, r *http.Request) {
	var in domain.Release
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	release, err := h.catalogue.CreateRelease(r.Context(), in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"release": release})
}

// HandleUpdateRelease replaces a release
func (h *CatalogueHandler) HandleUpdateRelease(w http.ResponseWriter, r *http.Request) {
	id, err := catalogueID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var in domain.Release
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	release, err := h.catalogue.UpdateRelease(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, map[string]any{"release": release})
}

// HandleDeleteRelease removes a release
func (h *CatalogueHandler) HandleDeleteRelease(w http.ResponseWriter, r *http.Request) {
	id, err := catalogueID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.catalogue.DeleteRelease(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, nil)
}
