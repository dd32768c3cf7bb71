package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vertextoedge/label-portal/internal/domain"
)

const shareLinkColumns = `id, file_path, file_name, file_size, token, created_by, created_at,
	expires_at, password_hash, max_downloads, download_count, is_active, last_accessed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShareLink(row rowScanner) (*domain.ShareLink, error) {
	link := &domain.ShareLink{}
	var createdAt int64
	var expiresAt, lastAccessedAt, maxDownloads sql.NullInt64
	var passwordHash sql.NullString

	err := row.Scan(
		&link.ID, &link.FilePath, &link.FileName, &link.FileSize, &link.Token, &link.CreatedBy, &createdAt,
		&expiresAt, &passwordHash, &maxDownloads, &link.DownloadCount, &link.IsActive, &lastAccessedAt,
	)
	if err != nil {
		return nil, err
	}

	link.CreatedAt = time.UnixMilli(createdAt).UTC()
	link.ExpiresAt = fromNullMillis(expiresAt)
	link.LastAccessedAt = fromNullMillis(lastAccessedAt)
	if passwordHash.Valid {
		link.PasswordHash = passwordHash.String
	}
	if maxDownloads.Valid {
		m := int(maxDownloads.Int64)
		link.MaxDownloads = &m
	}
	return link, nil
}

// CreateShareLink inserts a new share link
func (s *Store) CreateShareLink(ctx context.Context, link *domain.ShareLink) error {
	query := `
		INSERT INTO share_links (file_path, file_name, file_size, token, created_by, created_at,
			expires_at, password_hash, max_downloads, download_count, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	var passwordHash sql.NullString
	if link.PasswordHash != "" {
		passwordHash = sql.NullString{String: link.PasswordHash, Valid: true}
	}
	var maxDownloads sql.NullInt64
	if link.MaxDownloads != nil {
		maxDownloads = sql.NullInt64{Int64: int64(*link.MaxDownloads), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		link.FilePath, link.FileName, link.FileSize, link.Token, link.CreatedBy, toMillis(link.CreatedAt),
		nullMillis(link.ExpiresAt), passwordHash, maxDownloads, link.DownloadCount, link.IsActive,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	link.ID = id
	return nil
}

// GetShareLinkByToken retrieves a share link by its token
func (s *Store) GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	query := `SELECT ` + shareLinkColumns + ` FROM share_links WHERE token = ?`

	link, err := scanShareLink(s.db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// TokenExists reports whether a token is already taken
func (s *Store) TokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM share_links WHERE token = ?)`, token).Scan(&exists)
	return exists, err
}

// IncrementDownloadCount atomically bumps the download counter
func (s *Store) IncrementDownloadCount(ctx context.Context, token string, accessedAt time.Time) (int, error) {
	query := `
		UPDATE share_links
		SET download_count = download_count + 1, last_accessed_at = ?
		WHERE token = ?
		RETURNING download_count
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, toMillis(accessedAt), token).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrShareNotFound
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListShareLinksByCreator lists the links created by a user, newest first
func (s *Store) ListShareLinksByCreator(ctx context.Context, createdBy string) ([]*domain.ShareLink, error) {
	query := `SELECT ` + shareLinkColumns + ` FROM share_links WHERE created_by = ? ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*domain.ShareLink, 0)
	for rows.Next() {
		link, err := scanShareLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// DeactivateShareLink soft-deletes a link owned by createdBy
func (s *Store) DeactivateShareLink(ctx context.Context, id int64, createdBy string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE share_links SET is_active = FALSE WHERE id = ? AND created_by = ?`, id, createdBy)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteShareLink removes a link owned by createdBy
func (s *Store) DeleteShareLink(ctx context.Context, id int64, createdBy string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE id = ? AND created_by = ?`, id, createdBy)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteExpiredShareLinks removes all links that expired before now
func (s *Store) DeleteExpiredShareLinks(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM share_links WHERE expires_at IS NOT NULL AND expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
