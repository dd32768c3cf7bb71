package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/vertextoedge/label-portal/internal/domain"
)

var shareLinkColumns = []string{
	"id", "file_path", "file_name", "file_size", "token", "created_by", "created_at",
	"expires_at", "password_hash", "max_downloads", "download_count", "is_active", "last_accessed_at",
}

func scanShareLink(row pgx.Row) (*domain.ShareLink, error) {
	link := &domain.ShareLink{}
	var passwordHash *string
	var maxDownloads *int32

	err := row.Scan(
		&link.ID, &link.FilePath, &link.FileName, &link.FileSize, &link.Token, &link.CreatedBy, &link.CreatedAt,
		&link.ExpiresAt, &passwordHash, &maxDownloads, &link.DownloadCount, &link.IsActive, &link.LastAccessedAt,
	)
	if err != nil {
		return nil, err
	}
	if passwordHash != nil {
		link.PasswordHash = *passwordHash
	}
	if maxDownloads != nil {
		m := int(*maxDownloads)
		link.MaxDownloads = &m
	}
	return link, nil
}

// CreateShareLink inserts a new share link
func (s *Store) CreateShareLink(ctx context.Context, link *domain.ShareLink) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	var passwordHash *string
	if link.PasswordHash != "" {
		passwordHash = &link.PasswordHash
	}

	query, args, err := s.sb.Insert("share_links").
		Columns("file_path", "file_name", "file_size", "token", "created_by", "created_at",
			"expires_at", "password_hash", "max_downloads", "download_count", "is_active").
		Values(link.FilePath, link.FileName, link.FileSize, link.Token, link.CreatedBy, link.CreatedAt,
			link.ExpiresAt, passwordHash, link.MaxDownloads, link.DownloadCount, link.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	return s.pool.QueryRow(ctx, query, args...).Scan(&link.ID)
}

// GetShareLinkByToken retrieves a share link by its token
func (s *Store) GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	query, args, err := s.sb.Select(shareLinkColumns...).
		From("share_links").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, err
	}

	link, err := scanShareLink(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
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
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM share_links WHERE token = $1)`, token).Scan(&exists)
	return exists, err
}

// IncrementDownloadCount atomically bumps the download counter
func (s *Store) IncrementDownloadCount(ctx context.Context, token string, accessedAt time.Time) (int, error) {
	query, args, err := s.sb.Update("share_links").
		Set("download_count", sq.Expr("download_count + 1")).
		Set("last_accessed_at", accessedAt).
		Where(sq.Eq{"token": token}).
		Suffix("RETURNING download_count").
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.pool.QueryRow(ctx, query, args...).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrShareNotFound
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListShareLinksByCreator lists the links created by a user, newest first
func (s *Store) ListShareLinksByCreator(ctx context.Context, createdBy string) ([]*domain.ShareLink, error) {
	query, args, err := s.sb.Select(shareLinkColumns...).
		From("share_links").
		Where(sq.Eq{"created_by": createdBy}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
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
	query, args, err := s.sb.Update("share_links").
		Set("is_active", false).
		Where(sq.Eq{"id": id, "created_by": createdBy}).
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

// DeleteShareLink removes a link owned by createdBy
func (s *Store) DeleteShareLink(ctx context.Context, id int64, createdBy string) (int64, error) {
	query, args, err := s.sb.Delete("share_links").
		Where(sq.Eq{"id": id, "created_by": createdBy}).
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

// DeleteExpiredShareLinks removes all links that expired before now
func (s *Store) DeleteExpiredShareLinks(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := s.sb.Delete("share_links").
		Where(sq.Lt{"expires_at": now}).
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
