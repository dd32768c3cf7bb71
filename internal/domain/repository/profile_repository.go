package repository

import (
	"context"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// ProfileRepository exposes user profiles kept alongside share links
type ProfileRepository interface {
	// GetProfileRole returns the role of a user, or "" if the user has no profile
	GetProfileRole(ctx context.Context, userID string) (string, error)

	// UpsertProfileRole sets the role of a user
	UpsertProfileRole(ctx context.Context, userID, role string) error
}

// SubmissionRepository exposes demo submissions for quota checks and review
type SubmissionRepository interface {
	// CountActiveSubmissions counts pending and under-review submissions of a user
	CountActiveSubmissions(ctx context.Context, userID string) (int, error)

	// CreateSubmission records a new pending submission for an uploaded file
	CreateSubmission(ctx context.Context, userID, fileURL string) error

	// ListSubmissions returns submissions newest first, all of them when
	// status is empty
	ListSubmissions(ctx context.Context, status string) ([]domain.Submission, error)

	// UpdateSubmissionStatus sets the status of a submission and returns the
	// number of affected rows
	UpdateSubmissionStatus(ctx context.Context, id int64, status string) (int64, error)
}
