package repository

import "context"

// Store combines all repository interfaces
type Store interface {
	ShareLinkRepository
	ProfileRepository
	SubmissionRepository

	// Close closes the database connection
	Close() error

	// Ping checks database connectivity
	Ping(ctx context.Context) error
}
