package sharelink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
	"github.com/vertextoedge/label-portal/internal/port"
)

// PasswordHasher hashes and verifies share passwords
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// TokenGenerator draws new share tokens
type TokenGenerator func() (vo.ShareToken, error)

// CreateLinkInput describes a share link to create
type CreateLinkInput struct {
	FilePath     string
	FileName     string
	FileSize     int64
	CreatedBy    string
	ExpiresIn    *time.Duration // relative to now, may be negative
	Password     string
	MaxDownloads *int
}

// Config contains share-link service configuration
type Config struct {
	// PublicBaseURL is the portal origin used to build share URLs
	PublicBaseURL string

	// MaxTokenAttempts bounds collision retries. Zero means unbounded.
	MaxTokenAttempts int
}

// Service manages the share-link lifecycle
type Service struct {
	config   *Config
	repo     port.ShareLinkRepository
	hasher   PasswordHasher
	logger   *zap.Logger
	now      func() time.Time
	newToken TokenGenerator
}

// Option customizes a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTokenGenerator overrides token generation
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Service) { s.newToken = gen }
}

// New creates a new share-link Service
func New(cfg *Config, repo port.ShareLinkRepository, hasher PasswordHasher, logger *zap.Logger, opts ...Option) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	s := &Service{
		config:   cfg,
		repo:     repo,
		hasher:   hasher,
		logger:   logger,
		now:      time.Now,
		newToken: vo.GenerateShareToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLink issues a new share link with a unique token
func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (*domain.ShareLink, error) {
	if in.FilePath == "" || in.FileName == "" {
		return nil, domain.NewValidationError("filePath and fileName are required")
	}
	if in.CreatedBy == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.MaxDownloads != nil && *in.MaxDownloads < 1 {
		return nil, domain.NewValidationError("maxDownloads must be at least 1")
	}

	token, err := s.uniqueToken(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	link := &domain.ShareLink{
		FilePath:     in.FilePath,
		FileName:     in.FileName,
		FileSize:     in.FileSize,
		Token:        token.String(),
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		MaxDownloads: in.MaxDownloads,
		IsActive:     true,
	}

	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash share password: %w", err)
		}
		link.PasswordHash = hash
	}

	if in.ExpiresIn != nil {
		expiresAt := now.Add(*in.ExpiresIn)
		link.ExpiresAt = &expiresAt
	}

	if err := s.repo.CreateShareLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to store share link: %w", err)
	}

	s.logger.Info("share link created",
		zap.Int64("id", link.ID),
		zap.String("token", token.Masked()),
		zap.String("path", link.FilePath),
		zap.String("size", humanize.Bytes(uint64(max(link.FileSize, 0)))),
		zap.String("created_by", link.CreatedBy),
		zap.Bool("password", link.HasPassword()),
	)

	return link, nil
}

// uniqueToken draws tokens until one is not used by any stored link
func (s *Service) uniqueToken(ctx context.Context) (vo.ShareToken, error) {
	for attempt := 1; ; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return vo.ShareToken{}, err
		}

		exists, err := s.repo.TokenExists(ctx, token.String())
		if err != nil {
			return vo.ShareToken{}, fmt.Errorf("failed to check token uniqueness: %w", err)
		}
		if !exists {
			return token, nil
		}

		s.logger.Warn("share token collision, regenerating", zap.Int("attempt", attempt))
		if s.config.MaxTokenAttempts > 0 && attempt >= s.config.MaxTokenAttempts {
			return vo.ShareToken{}, fmt.Errorf("no unique share token after %d attempts", attempt)
		}
	}
}

// GetLink returns the link for token, or nil when there is none. Malformed
// tokens never reach the repository.
func (s *Service) GetLink(ctx context.Context, token string) (*domain.ShareLink, error) {
	st, err := vo.NewShareToken(token)
	if err != nil {
		return nil, nil
	}
	link, err := s.repo.GetShareLinkByToken(ctx, st.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load share link: %w", err)
	}
	return link, nil
}

// ValidateLink checks existence, active flag, expiry, download quota and
// password, in that order, and reports the first failure.
func (s *Service) ValidateLink(ctx context.Context, token, password string) (domain.ValidationResult, error) {
	link, err := s.GetLink(ctx, token)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if link == nil {
		return domain.Denied(domain.ReasonNotFound), nil
	}

	if reason := link.CheckAccess(s.now()); reason != "" {
		return domain.Denied(reason), nil
	}

	if link.HasPassword() {
		if password == "" {
			return domain.Denied(domain.ReasonPasswordRequired), nil
		}
		ok, err := s.hasher.Verify(password, link.PasswordHash)
		if err != nil {
			return domain.ValidationResult{}, fmt.Errorf("failed to verify share password: %w", err)
		}
		if !ok {
			return domain.Denied(domain.ReasonInvalidPassword), nil
		}
	}

	return domain.Granted(link), nil
}

// IncrementDownloadCount records one download of the link
func (s *Service) IncrementDownloadCount(ctx context.Context, token string) error {
	count, err := s.repo.IncrementDownloadCount(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrShareNotFound) {
			return err
		}
		return fmt.Errorf("failed to increment download count: %w", err)
	}

	s.logger.Debug("share link downloaded",
		zap.String("token", vo.MaskToken(token)),
		zap.Int("download_count", count))
	return nil
}

// ListLinksByCreator returns the caller's links, newest first
func (s *Service) ListLinksByCreator(ctx context.Context, creatorID string) ([]*domain.ShareLink, error) {
	links, err := s.repo.ListShareLinksByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list share links: %w", err)
	}
	return links, nil
}

// Deactivate disables a link. Links of other users are silently left alone.
func (s *Service) Deactivate(ctx context.Context, linkID int64, userID string) error {
	n, err := s.repo.DeactivateShareLink(ctx, linkID, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate share link: %w", err)
	}
	s.logger.Info("share link deactivated",
		zap.Int64("id", linkID), zap.String("user", userID), zap.Int64("affected", n))
	return nil
}

// Delete removes a link. Links of other users are silently left alone.
func (s *Service) Delete(ctx context.Context, linkID int64, userID string) error {
	n, err := s.repo.DeleteShareLink(ctx, linkID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete share link: %w", err)
	}
	s.logger.Info("share link deleted",
		zap.Int64("id", linkID), zap.String("user", userID), zap.Int64("affected", n))
	return nil
}

// SweepExpired hard-deletes every expired link and returns how many were
// removed. Failures are logged and reported as zero.
func (s *Service) SweepExpired(ctx context.Context) int {
	n, err := s.repo.DeleteExpiredShareLinks(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error("failed to sweep expired share links", zap.Error(err))
		return 0
	}
	if n > 0 {
		s.logger.Info("swept expired share links", zap.Int64("count", n))
	}
	return int(n)
}

// PublicURL returns the portal URL of a share token
func (s *Service) PublicURL(token string) string {
	return strings.TrimSuffix(s.config.PublicBaseURL, "/") + "/share/" + token
}
