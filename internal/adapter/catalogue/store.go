package catalogue

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/port"
)

// Ensure Store implements port.CatalogueStore
var _ port.CatalogueStore = (*Store)(nil)

// Config points at the catalogue source files
type Config struct {
	ArtistsFile  string
	ReleasesFile string
}

// Store keeps artists and releases as literal arrays in TypeScript source
// files. Every write regenerates the whole file into a temporary sibling and
// renames it over the original. Writers within the process are serialized per
// file; other processes are not coordinated.
type Store struct {
	config     Config
	artistsMu  sync.Mutex
	releasesMu sync.Mutex
	logger     *zap.Logger
}

// New creates a catalogue Store
func New(cfg Config, logger *zap.Logger) *Store {
	return &Store{config: cfg, logger: logger}
}

// ReadArtists returns all artists in file order
func (s *Store) ReadArtists(ctx context.Context) ([]domain.Artist, error) {
	s.artistsMu.Lock()
	defer s.artistsMu.Unlock()
	return s.readArtists()
}

// WriteArtists replaces the artist file
func (s *Store) WriteArtists(ctx context.Context, artists []domain.Artist) error {
	s.artistsMu.Lock()
	defer s.artistsMu.Unlock()
	return s.write(s.config.ArtistsFile, generateArtists(artists), len(artists))
}

// UpdateArtists applies fn to the artists under the artist file lock
func (s *Store) UpdateArtists(ctx context.Context, fn func([]domain.Artist) ([]domain.Artist, error)) error {
	s.artistsMu.Lock()
	defer s.artistsMu.Unlock()

	artists, err := s.readArtists()
	if err != nil {
		return err
	}
	updated, err := fn(artists)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(s.config.ArtistsFile, generateArtists(updated), len(updated))
}

// ReadReleases returns all releases in file order
func (s *Store) ReadReleases(ctx context.Context) ([]domain.Release, error) {
	s.releasesMu.Lock()
	defer s.releasesMu.Unlock()
	return s.readReleases()
}

// WriteReleases replaces the release file
func (s *Store) WriteReleases(ctx context.Context, releases []domain.Release) error {
	s.releasesMu.Lock()
	defer s.releasesMu.Unlock()
	return s.write(s.config.ReleasesFile, generateReleases(releases), len(releases))
}

// UpdateReleases applies fn to the releases under the release file lock
func (s *Store) UpdateReleases(ctx context.Context, fn func([]domain.Release) ([]domain.Release, error)) error {
	s.releasesMu.Lock()
	defer s.releasesMu.Unlock()

	releases, err := s.readReleases()
	if err != nil {
		return err
	}
	updated, err := fn(releases)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(s.config.ReleasesFile, generateReleases(updated), len(updated))
}

func (s *Store) readArtists() ([]domain.Artist, error) {
	src, err := s.read(s.config.ArtistsFile)
	if err != nil || src == nil {
		return []domain.Artist{}, err
	}
	artists, err := readArtists(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.config.ArtistsFile, err)
	}
	return artists, nil
}

func (s *Store) readReleases() ([]domain.Release, error) {
	src, err := s.read(s.config.ReleasesFile)
	if err != nil || src == nil {
		return []domain.Release{}, err
	}
	releases, err := readReleases(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.config.ReleasesFile, err)
	}
	return releases, nil
}

// read returns nil content when the file does not exist yet
func (s *Store) read(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("catalogue file missing, starting empty", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}
	return src, nil
}

func (s *Store) write(path string, content []byte, entries int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalogue directory: %w", err)
	}

	// Write next to the target, then rename over it so readers never see a
	// half-written file
	tempPath := path + ".writing"
	if err := os.WriteFile(tempPath, content, 0o644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write catalogue file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename catalogue file: %w", err)
	}
	s.logger.Info("catalogue file written",
		zap.String("path", path),
		zap.Int("entries", entries),
		zap.String("size", humanize.Bytes(uint64(len(content)))))
	return nil
}
