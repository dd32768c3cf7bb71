package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// GetProfileRole returns the role stored for a user
func (s *Store) GetProfileRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM profiles WHERE id = ?`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return role, err
}

// UpsertProfileRole sets the role of a user
func (s *Store) UpsertProfileRole(ctx context.Context, userID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, role, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET role = excluded.role, updated_at = excluded.updated_at
	`, userID, role, time.Now().UnixMilli())
	return err
}

// CountActiveSubmissions counts submissions still waiting for a decision
func (s *Store) CountActiveSubmissions(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE user_id = ? AND status IN (?, ?)`,
		userID, domain.SubmissionPending, domain.SubmissionUnderReview,
	).Scan(&n)
	return n, err
}

// CreateSubmission records a pending submission
func (s *Store) CreateSubmission(ctx context.Context, userID, fileURL string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (user_id, file_url, status, created_at) VALUES (?, ?, ?, ?)`,
		userID, fileURL, domain.SubmissionPending, time.Now().UnixMilli())
	return err
}

// ListSubmissions returns submissions newest first, filtered by status when set
func (s *Store) ListSubmissions(ctx context.Context, status string) ([]domain.Submission, error) {
	query := `SELECT id, user_id, file_url, status, created_at FROM submissions`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]domain.Submission, 0)
	for rows.Next() {
		var sub domain.Submission
		var createdAt int64
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.FileURL, &sub.Status, &createdAt); err != nil {
			return nil, err
		}
		sub.CreatedAt = time.UnixMilli(createdAt).UTC()
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

// UpdateSubmissionStatus sets the status of one submission
func (s *Store) UpdateSubmissionStatus(ctx context.Context, id int64, status string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE submissions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
