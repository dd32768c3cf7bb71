package port

import (
	"context"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// CatalogueStore persists the artist and release collections as whole documents
type CatalogueStore interface {
	ReadArtists(ctx context.Context) ([]domain.Artist, error)
	WriteArtists(ctx context.Context, artists []domain.Artist) error
	ReadReleases(ctx context.Context) ([]domain.Release, error)
	WriteReleases(ctx context.Context, releases []domain.Release) error

	// UpdateArtists runs fn on the current artists and writes back the result
	// while holding the artist file lock.
	UpdateArtists(ctx context.Context, fn func([]domain.Artist) ([]domain.Artist, error)) error

	// UpdateReleases is UpdateArtists for releases
	UpdateReleases(ctx context.Context, fn func([]domain.Release) ([]domain.Release, error)) error
}
