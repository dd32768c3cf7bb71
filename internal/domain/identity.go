package domain

import "context"

// Profile roles. Only RoleAdmin may use admin routes.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role can be assigned to a profile
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Identity is an authenticated caller
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin returns true for admin-role callers
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type identityKey struct{}

// WithIdentity stores the caller identity in ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity stored by WithIdentity
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
