package roles

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/port"
)

// Cache stores role lookups. Get returns nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Resolver reads user roles from the profile store, optionally through a cache
type Resolver struct {
	profiles port.ProfileRepository
	cache    Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// Ensure Resolver implements port.RoleResolver
var _ port.RoleResolver = (*Resolver)(nil)

// New creates a Resolver. cache may be nil.
func New(profiles port.ProfileRepository, cache Cache, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{profiles: profiles, cache: cache, ttl: ttl, logger: logger}
}

// cacheKey namespaces role entries. Users without a profile are cached as "".
func cacheKey(userID string) string {
	return "label-portal:role:" + userID
}

// Role returns the role of userID, or "" when the user has no profile
func (r *Resolver) Role(ctx context.Context, userID string) (string, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, cacheKey(userID))
		switch {
		case err != nil:
			r.logger.Warn("role cache read failed, using profile store", zap.Error(err))
		case cached != nil:
			return string(cached), nil
		}
	}

	role, err := r.profiles.GetProfileRole(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up role: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey(userID), []byte(role), r.ttl); err != nil {
			r.logger.Warn("role cache write failed", zap.Error(err))
		}
	}
	return role, nil
}

// SetRole stores role for userID and refreshes the cached entry
func (r *Resolver) SetRole(ctx context.Context, userID, role string) error {
	if userID == "" || !domain.ValidRole(role) {
		return domain.NewValidationError("Invalid role")
	}
	if err := r.profiles.UpsertProfileRole(ctx, userID, role); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey(userID), []byte(role), r.ttl); err != nil {
			r.logger.Warn("role cache write failed", zap.Error(err))
		}
	}
	r.logger.Info("role assigned", zap.String("user", userID), zap.String("role", role))
	return nil
}
