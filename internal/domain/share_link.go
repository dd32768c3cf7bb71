package domain

import "time"

// Reasons reported by share-link validation, in evaluation order
const (
	ReasonNotFound         = "Link not found"
	ReasonDeactivated      = "Link has been deactivated"
	ReasonExpired          = "Link has expired"
	ReasonLimitReached     = "Download limit reached"
	ReasonPasswordRequired = "Password required"
	ReasonInvalidPassword  = "Invalid password"
)

// ShareLink is a revocable, time and usage bounded grant to download one remote file
type ShareLink struct {
	ID             int64
	FilePath       string
	FileName       string
	FileSize       int64
	Token          string
	CreatedBy      string
	CreatedAt      time.Time
	ExpiresAt      *time.Time
	PasswordHash   string // empty when no password is set
	MaxDownloads   *int
	DownloadCount  int
	IsActive       bool
	LastAccessedAt *time.Time
}

// HasPassword returns true if the link is password protected
func (l *ShareLink) HasPassword() bool {
	return l.PasswordHash != ""
}

// IsExpired returns true if the expiry lies before now
func (l *ShareLink) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return l.ExpiresAt.Before(now)
}

// LimitReached returns true if the download quota is used up
func (l *ShareLink) LimitReached() bool {
	if l.MaxDownloads == nil {
		return false
	}
	return l.DownloadCount >= *l.MaxDownloads
}

// CheckAccess evaluates the active flag, expiry and download quota in that
// order. It returns the reason of the first failing check, or "" when the
// link may be used. Password checks are left to the caller.
func (l *ShareLink) CheckAccess(now time.Time) string {
	if !l.IsActive {
		return ReasonDeactivated
	}
	if l.IsExpired(now) {
		return ReasonExpired
	}
	if l.LimitReached() {
		return ReasonLimitReached
	}
	return ""
}

// RemainingDownloads returns how many downloads are left, or -1 when unlimited
func (l *ShareLink) RemainingDownloads() int {
	if l.MaxDownloads == nil {
		return -1
	}
	remaining := *l.MaxDownloads - l.DownloadCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ValidationResult is the outcome of validating a share token
type ValidationResult struct {
	Valid  bool
	Link   *ShareLink
	Reason string
}

// Granted builds a successful result
func Granted(link *ShareLink) ValidationResult {
	return ValidationResult{Valid: true, Link: link}
}

// Denied builds a failed result with a reason
func Denied(reason string) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}
