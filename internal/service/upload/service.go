package upload

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/port"
)

// Config contains upload limits
type Config struct {
	MaxFileSize          int64
	MaxAdminFileSize     int64
	MaxActiveSubmissions int
	AllowedDemoMIMETypes []string
}

// Result describes a stored end-user upload
type Result struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Service validates uploads and hands them to remote storage
type Service struct {
	config      *Config
	storage     port.RemoteStorage
	submissions port.SubmissionRepository
	logger      *zap.Logger
	now         func() time.Time
}

// New creates a new upload Service
func New(cfg *Config, storage port.RemoteStorage, submissions port.SubmissionRepository, logger *zap.Logger) *Service {
	return &Service{
		config:      cfg,
		storage:     storage,
		submissions: submissions,
		logger:      logger,
		now:         time.Now,
	}
}

// Upload stores an end-user file in a public category. Label submissions must
// be audio of an allowed type and count against the demo quota.
func (s *Service) Upload(ctx context.Context, userID string, category domain.UploadCategory, filename string, data []byte) (Result, error) {
	if userID == "" {
		return Result{}, domain.ErrUnauthorized
	}
	if !category.IsPublic() {
		return Result{}, domain.NewValidationError("Invalid upload type")
	}
	if len(data) == 0 {
		return Result{}, domain.NewValidationError("No file provided")
	}
	if int64(len(data)) > s.config.MaxFileSize {
		return Result{}, domain.NewValidationError(fmt.Sprintf("File too large (max %s)",
			humanize.IBytes(uint64(s.config.MaxFileSize))))
	}

	mtype := mimetype.Detect(data)

	if category == domain.CategoryLabelSubmissions {
		if !s.allowedDemoType(mtype) {
			return Result{}, domain.NewValidationError(fmt.Sprintf("File type %s is not allowed for demos", mtype.String()))
		}

		active, err := s.submissions.CountActiveSubmissions(ctx, userID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to count submissions: %w", err)
		}
		if active >= s.config.MaxActiveSubmissions {
			return Result{}, &domain.ValidationError{
				Kind:    domain.ErrQuotaExceeded,
				Message: fmt.Sprintf("You already have %d active submissions", active),
			}
		}
	}

	name := s.storedName(filename, mtype)
	stored, err := s.storage.UploadFile(ctx, data, name, category)
	if err != nil {
		return Result{}, err
	}

	if category == domain.CategoryLabelSubmissions {
		if err := s.submissions.CreateSubmission(ctx, userID, stored.URL); err != nil {
			return Result{}, fmt.Errorf("failed to record submission: %w", err)
		}
	}

	s.logger.Info("file uploaded",
		zap.String("user", userID),
		zap.String("category", string(category)),
		zap.String("path", stored.Path),
		zap.String("mime", mtype.String()),
		zap.String("size", humanize.Bytes(uint64(len(data)))))

	return Result{URL: stored.URL, Filename: name, Path: stored.Path}, nil
}

// AdminUpload stores a file into admin storage under dir
func (s *Service) AdminUpload(ctx context.Context, dir, filename string, data []byte) (domain.UploadResult, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return domain.UploadResult{}, domain.NewValidationError("filename is required")
	}
	if int64(len(data)) > s.config.MaxAdminFileSize {
		return domain.UploadResult{}, domain.NewValidationError(fmt.Sprintf("File too large (max %s)",
			humanize.IBytes(uint64(s.config.MaxAdminFileSize))))
	}

	stored, err := s.storage.UploadFile(ctx, data, path.Join(dir, name), domain.CategoryAdmin)
	if err != nil {
		return domain.UploadResult{}, err
	}

	s.logger.Info("admin file uploaded",
		zap.String("path", stored.Path),
		zap.String("size", humanize.Bytes(uint64(len(data)))))
	return stored, nil
}

// Submissions lists demo submissions, filtered by status when set
func (s *Service) Submissions(ctx context.Context, status string) ([]domain.Submission, error) {
	if status != "" && !domain.ValidSubmissionStatus(status) {
		return nil, domain.NewValidationError("Invalid submission status")
	}
	subs, err := s.submissions.ListSubmissions(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// ReviewSubmission moves a submission to status. Accepted and rejected
// submissions no longer count against the demo quota.
func (s *Service) ReviewSubmission(ctx context.Context, id int64, status string) error {
	if !domain.ValidSubmissionStatus(status) {
		return domain.NewValidationError("Invalid submission status")
	}
	n, err := s.submissions.UpdateSubmissionStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if n == 0 {
		return domain.ErrSubmissionNotFound
	}

	s.logger.Info("submission reviewed", zap.Int64("id", id), zap.String("status", status))
	return nil
}

func (s *Service) allowedDemoType(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if mimetype.EqualsAny(m.String(), s.config.AllowedDemoMIMETypes...) {
			return true
		}
	}
	return false
}

var extensionPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// storedName builds "<unix-ms>-<uuid><ext>" so uploads never collide
func (s *Service) storedName(original string, mtype *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !extensionPattern.MatchString(ext) {
		ext = mtype.Extension()
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
}
