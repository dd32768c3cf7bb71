package port

import (
	"context"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// IdentityVerifier turns a bearer token into a caller identity
type IdentityVerifier interface {
	Verify(ctx context.Context, bearer string) (domain.Identity, error)
}

// RoleResolver looks up and assigns user roles
type RoleResolver interface {
	Role(ctx context.Context, userID string) (string, error)
	SetRole(ctx context.Context, userID, role string) error
}
