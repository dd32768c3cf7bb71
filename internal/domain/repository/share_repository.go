package repository

import (
	"context"
	"time"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// ShareLinkRepository defines the interface for share link persistence operations
type ShareLinkRepository interface {
	// CreateShareLink inserts a link and fills in its ID and CreatedAt
	CreateShareLink(ctx context.Context, link *domain.ShareLink) error

	// GetShareLinkByToken returns nil, nil when no link uses token
	GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error)

	// TokenExists reports whether any link, active or not, uses token
	TokenExists(ctx context.Context, token string) (bool, error)

	// IncrementDownloadCount atomically adds one download and stamps the access time.
	// Returns the new count, or domain.ErrShareNotFound if no link uses token.
	IncrementDownloadCount(ctx context.Context, token string, accessedAt time.Time) (int, error)

	// ListShareLinksByCreator returns links newest first
	ListShareLinksByCreator(ctx context.Context, createdBy string) ([]*domain.ShareLink, error)

	// DeactivateShareLink clears the active flag of a link owned by createdBy.
	// Returns the number of rows affected.
	DeactivateShareLink(ctx context.Context, id int64, createdBy string) (int64, error)

	// DeleteShareLink removes a link owned by createdBy. Returns rows affected.
	DeleteShareLink(ctx context.Context, id int64, createdBy string) (int64, error)

	// DeleteExpiredShareLinks removes every link whose expiry is before now
	DeleteExpiredShareLinks(ctx context.Context, now time.Time) (int64, error)
}
