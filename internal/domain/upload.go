package domain

import "time"

// UploadCategory selects the target namespace of an upload
type UploadCategory string

const (
	CategoryAdmin            UploadCategory = "admin"
	CategoryLabelSubmissions UploadCategory = "label-submissions"
	CategoryStudioRequests   UploadCategory = "studio-requests"
)

// ParseUploadCategory validates a category name
func ParseUploadCategory(s string) (UploadCategory, bool) {
	switch c := UploadCategory(s); c {
	case CategoryAdmin, CategoryLabelSubmissions, CategoryStudioRequests:
		return c, true
	}
	return "", false
}

// IsPublic returns true if files of this category get a public URL
func (c UploadCategory) IsPublic() bool {
	return c == CategoryLabelSubmissions || c == CategoryStudioRequests
}

// Submission statuses. Pending and under-review submissions count against the
// demo quota; accepted and rejected ones are decided.
const (
	SubmissionPending     = "pending"
	SubmissionUnderReview = "under_review"
	SubmissionAccepted    = "accepted"
	SubmissionRejected    = "rejected"
)

// ValidSubmissionStatus reports whether status is a known submission status
func ValidSubmissionStatus(status string) bool {
	switch status {
	case SubmissionPending, SubmissionUnderReview, SubmissionAccepted, SubmissionRejected:
		return true
	}
	return false
}

// Submission is a demo sent in through the label-submissions category
type Submission struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	FileURL   string    `json:"fileUrl"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
