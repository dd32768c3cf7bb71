package port

import (
	"github.com/vertextoedge/label-portal/internal/domain/repository"
)

// ShareLinkRepository is an alias to domain repository interface
type ShareLinkRepository = repository.ShareLinkRepository

// ProfileRepository is an alias to domain repository interface
type ProfileRepository = repository.ProfileRepository

// SubmissionRepository is an alias to domain repository interface
type SubmissionRepository = repository.SubmissionRepository

// Store is an alias to domain repository interface
type Store = repository.Store
