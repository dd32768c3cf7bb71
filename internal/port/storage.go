package port

import (
	"context"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// RemoteStorage is the operation contract shared by the SFTP and FTPS clients.
// Paths are relative to the configured base path.
type RemoteStorage interface {
	// Connect establishes the shared connection. Concurrent callers wait for
	// one in-flight handshake; an established connection is reused.
	Connect(ctx context.Context) error

	// Disconnect releases the connection. Safe to call repeatedly.
	Disconnect() error

	// UploadFile writes data under the root of category, creating parents
	UploadFile(ctx context.Context, data []byte, path string, category domain.UploadCategory) (domain.UploadResult, error)

	// DownloadFile reads a whole file into memory
	DownloadFile(ctx context.Context, path string) ([]byte, error)

	// DeleteFile removes a file, or a directory recursively
	DeleteFile(ctx context.Context, path string) error

	// ListFiles lists the immediate children of a directory
	ListFiles(ctx context.Context, path string) ([]domain.RemoteFile, error)

	// Search walks the subtree at path and returns entries whose name contains query
	Search(ctx context.Context, path, query string) ([]domain.RemoteFile, error)

	// CreateDirectory creates a directory and its parents
	CreateDirectory(ctx context.Context, path string) (domain.RemoteFile, error)

	// MoveFile renames oldPath to newPath
	MoveFile(ctx context.Context, oldPath, newPath string) error

	// Exists reports whether path exists
	Exists(ctx context.Context, path string) (bool, error)

	// FileInfo stats a single path
	FileInfo(ctx context.Context, path string) (domain.RemoteFile, error)
}
