package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// GetProfileRole returns the role stored for a user
func (s *Store) GetProfileRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.pool.QueryRow(ctx, `SELECT role FROM profiles WHERE id = $1`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return role, err
}

// UpsertProfileRole sets the role of a user
func (s *Store) UpsertProfileRole(ctx context.Context, userID, role string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, role, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role, updated_at = now()
	`, userID, role)
	return err
}

// CountActiveSubmissions counts submissions still waiting for a decision
func (s *Store) CountActiveSubmissions(ctx context.Context, userID string) (int, error) {
	query, args, err := s.sb.Select("COUNT(*)").
		From("submissions").
		Where(sq.Eq{
			"user_id": userID,
			"status":  []string{domain.SubmissionPending, domain.SubmissionUnderReview},
		}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	err = s.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

// CreateSubmission records a pending submission
func (s *Store) CreateSubmission(ctx context.Context, userID, fileURL string) error {
	query, args, err := s.sb.Insert("submissions").
		Columns("user_id", "file_url", "status").
		Values(userID, fileURL, domain.SubmissionPending).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query, args...)
	return err
}

// ListSubmissions returns submissions newest first, filtered by status when set
func (s *Store) ListSubmissions(ctx context.Context, status string) ([]domain.Submission, error) {
	builder := s.sb.Select("id", "user_id", "file_url", "status", "created_at").
		From("submissions").
		OrderBy("created_at DESC", "id DESC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]domain.Submission, 0)
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.FileURL, &sub.Status, &sub.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

// UpdateSubmissionStatus sets the status of one submission
func (s *Store) UpdateSubmissionStatus(ctx context.Context, id int64, status string) (int64, error) {
	query, args, err := s.sb.Update("submissions").
		Set("status", status).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
