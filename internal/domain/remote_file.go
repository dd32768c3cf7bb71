package domain

import (
	"time"
)

// RemoteFileType distinguishes files from directories on the remote host
type RemoteFileType string

const (
	RemoteTypeFile      RemoteFileType = "file"
	RemoteTypeDirectory RemoteFileType = "directory"
	RemoteTypeSymlink   RemoteFileType = "symlink"
)

// RemoteRights holds rwx strings for user, group and other
type RemoteRights struct {
	User  string `json:"user"`
	Group string `json:"group"`
	Other string `json:"other"`
}

// RemoteFile is a node of the remote storage tree. Path is relative to the
// configured base path.
type RemoteFile struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Type       RemoteFileType `json:"type"`
	Size       int64          `json:"size"`
	ModifyTime time.Time      `json:"modifyTime"`
	AccessTime time.Time      `json:"accessTime"`
	Rights     RemoteRights   `json:"rights"`
	Owner      int            `json:"owner"`
	Group      int            `json:"group"`
}

// IsDir returns true if the node is a directory
func (f *RemoteFile) IsDir() bool {
	return f.Type == RemoteTypeDirectory
}

// UploadResult describes where an upload ended up
type UploadResult struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}
