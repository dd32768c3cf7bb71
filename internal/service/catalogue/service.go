package catalogue

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/port"
)

// Service edits the artist roster and the release list
type Service struct {
	store  port.CatalogueStore
	logger *zap.Logger
}

// New creates a new catalogue Service
func New(store port.CatalogueStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListArtists returns the roster in file order
func (s *Service) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	return s.store.ReadArtists(ctx)
}

// GetArtist returns one artist by id
func (s *Service) GetArtist(ctx context.Context, id int) (domain.Artist, error) {
	artists, err := s.store.ReadArtists(ctx)
	if err != nil {
		return domain.Artist{}, err
	}
	if i := indexOfArtist(artists, id); i >= 0 {
		return artists[i], nil
	}
	return domain.Artist{}, fmt.Errorf("artist %d: %w", id, domain.ErrNotFound)
}

// CreateArtist appends an artist with the next free id
func (s *Service) CreateArtist(ctx context.Context, in domain.Artist) (domain.Artist, error) {
	if err := validateArtist(in); err != nil {
		return domain.Artist{}, err
	}

	var created domain.Artist
	err := s.store.UpdateArtists(ctx, func(artists []domain.Artist) ([]domain.Artist, error) {
		created = normalizeArtist(in)
		created.ID = domain.NextArtistID(artists)
		created.Slug = uniqueSlug(artistSlugBase(created), artists, created.ID)
		return append(artists, created), nil
	})
	if err != nil {
		return domain.Artist{}, err
	}

	s.logger.Info("artist created", zap.Int("id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

// UpdateArtist replaces the fields of an existing artist
func (s *Service) UpdateArtist(ctx context.Context, id int, in domain.Artist) (domain.Artist, error) {
	if err := validateArtist(in); err != nil {
		return domain.Artist{}, err
	}

	var updated domain.Artist
	err := s.store.UpdateArtists(ctx, func(artists []domain.Artist) ([]domain.Artist, error) {
		i := indexOfArtist(artists, id)
		if i < 0 {
			return nil, fmt.Errorf("artist %d: %w", id, domain.ErrNotFound)
		}
		updated = normalizeArtist(in)
		updated.ID = id
		updated.Slug = uniqueSlug(artistSlugBase(updated), artists, id)
		artists[i] = updated
		return artists, nil
	})
	if err != nil {
		return domain.Artist{}, err
	}

	s.logger.Info("artist updated", zap.Int("id", id))
	return updated, nil
}

// DeleteArtist removes an artist
func (s *Service) DeleteArtist(ctx context.Context, id int) error {
	err := s.store.UpdateArtists(ctx, func(artists []domain.Artist) ([]domain.Artist, error) {
		i := indexOfArtist(artists, id)
		if i < 0 {
			return nil, fmt.Errorf("artist %d: %w", id, domain.ErrNotFound)
		}
		return append(artists[:i], artists[i+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("artist deleted", zap.Int("id", id))
	return nil
}

// ListReleases returns releases in file order, newest additions first
func (s *Service) ListReleases(ctx context.Context) ([]domain.Release, error) {
	return s.store.ReadReleases(ctx)
}

// GetRelease returns one release by id
func (s *Service) GetRelease(ctx context.Context, id int) (domain.Release, error) {
	releases, err := s.store.ReadReleases(ctx)
	if err != nil {
		return domain.Release{}, err
	}
	if i := indexOfRelease(releases, id); i >= 0 {
		return releases[i], nil
	}
	return domain.Release{}, fmt.Errorf("release %d: %w", id, domain.ErrNotFound)
}

// CreateRelease prepends a release with the next free id
func (s *Service) CreateRelease(ctx context.Context, in domain.Release) (domain.Release, error) {
	if err := validateRelease(in); err != nil {
		return domain.Release{}, err
	}

	var created domain.Release
	err := s.store.UpdateReleases(ctx, func(releases []domain.Release) ([]domain.Release, error) {
		created = normalizeRelease(in)
		created.ID = domain.NextReleaseID(releases)
		return append([]domain.Release{created}, releases...), nil
	})
	if err != nil {
		return domain.Release{}, err
	}

	s.logger.Info("release created", zap.Int("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// UpdateRelease replaces the fields of an existing release
func (s *Service) UpdateRelease(ctx context.Context, id int, in domain.Release) (domain.Release, error) {
	if err := validateRelease(in); err != nil {
		return domain.Release{}, err
	}

	var updated domain.Release
	err := s.store.UpdateReleases(ctx, func(releases []domain.Release) ([]domain.Release, error) {
		i := indexOfRelease(releases, id)
		if i < 0 {
			return nil, fmt.Errorf("release %d: %w", id, domain.ErrNotFound)
		}
		updated = normalizeRelease(in)
		updated.ID = id
		releases[i] = updated
		return releases, nil
	})
	if err != nil {
		return domain.Release{}, err
	}

	s.logger.Info("release updated", zap.Int("id", id))
	return updated, nil
}

// DeleteRelease removes a release
func (s *Service) DeleteRelease(ctx context.Context, id int) error {
	err := s.store.UpdateReleases(ctx, func(releases []domain.Release) ([]domain.Release, error) {
		i := indexOfRelease(releases, id)
		if i < 0 {
			return nil, fmt.Errorf("release %d: %w", id, domain.ErrNotFound)
		}
		return append(releases[:i], releases[i+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("release deleted", zap.Int("id", id))
	return nil
}

func validateArtist(a domain.Artist) error {
	if strings.TrimSpace(a.Name) == "" {
		return domain.NewValidationError("name is required")
	}
	return nil
}

func validateRelease(r domain.Release) error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return domain.NewValidationError("title is required")
	case strings.TrimSpace(r.Artist) == "":
		return domain.NewValidationError("artist is required")
	}
	return nil
}

func normalizeArtist(a domain.Artist) domain.Artist {
	if a.Styles == nil {
		a.Styles = []string{}
	}
	if a.Social == nil {
		a.Social = map[string]string{}
	}
	if len(a.Videos) == 0 {
		a.Videos = nil
	}
	return a
}

func normalizeRelease(r domain.Release) domain.Release {
	if r.ExternalIDs == nil {
		r.ExternalIDs = map[string]string{}
	}
	if len(r.Tracks) == 0 {
		r.Tracks = nil
	}
	return r
}

func artistSlugBase(a domain.Artist) string {
	if a.Slug != "" {
		return slug.Make(a.Slug)
	}
	if a.Act != "" {
		return slug.Make(a.Act)
	}
	return slug.Make(a.Name)
}

// uniqueSlug suffixes base with -2, -3, ... until no other artist uses it
func uniqueSlug(base string, artists []domain.Artist, selfID int) string {
	if base == "" {
		base = "artist"
	}
	taken := make(map[string]bool, len(artists))
	for _, a := range artists {
		if a.ID != selfID {
			taken[a.Slug] = true
		}
	}
	candidate := base
	for n := 2; taken[candidate]; n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate
}

func indexOfArtist(artists []domain.Artist, id int) int {
	for i, a := range artists {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func indexOfRelease(releases []domain.Release, id int) int {
	for i, r := range releases {
		if r.ID == id {
			return i
		}
	}
	return -1
}
