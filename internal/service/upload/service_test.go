package upload

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// mockStorage implements port.RemoteStorage and records uploads
type mockStorage struct {
	uploads   map[string][]byte
	uploadErr error
}

func newMockStorage() *mockStorage { return &mockStorage{uploads: make(map[string][]byte)} }

func (m *mockStorage) Connect(ctx context.Context) error { return nil }
func (m *mockStorage) Disconnect() error                 { return nil }

func (m *mockStorage) UploadFile(ctx context.Context, data []byte, p string, category domain.UploadCategory) (domain.UploadResult, error) {
	if m.uploadErr != nil {
		return domain.UploadResult{}, m.uploadErr
	}
	key := string(category) + "/" + p
	m.uploads[key] = data
	res := domain.UploadResult{Path: key}
	if category.IsPublic() {
		res.URL = "https://cdn.example/" + key
	}
	return res, nil
}

func (m *mockStorage) DownloadFile(ctx context.Context, p string) ([]byte, error) { return nil, nil }
func (m *mockStorage) DeleteFile(ctx context.Context, p string) error             { return nil }
func (m *mockStorage) ListFiles(ctx context.Context, p string) ([]domain.RemoteFile, error) {
	return nil, nil
}
func (m *mockStorage) Search(ctx context.Context, p, q string) ([]domain.RemoteFile, error) {
	return nil, nil
}
func (m *mockStorage) CreateDirectory(ctx context.Context, p string) (domain.RemoteFile, error) {
	return domain.RemoteFile{}, nil
}
func (m *mockStorage) MoveFile(ctx context.Context, o, n string) error        { return nil }
func (m *mockStorage) Exists(ctx context.Context, p string) (bool, error)     { return false, nil }
func (m *mockStorage) FileInfo(ctx context.Context, p string) (domain.RemoteFile, error) {
	return domain.RemoteFile{}, nil
}

type mockSubmissions struct {
	subs []domain.Submission
}

func (m *mockSubmissions) CountActiveSubmissions(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, sub := range m.subs {
		if sub.UserID == userID && (sub.Status == domain.SubmissionPending || sub.Status == domain.SubmissionUnderReview) {
			n++
		}
	}
	return n, nil
}

func (m *mockSubmissions) CreateSubmission(ctx context.Context, userID, fileURL string) error {
	m.subs = append(m.subs, domain.Submission{
		ID:      int64(len(m.subs) + 1),
		UserID:  userID,
		FileURL: fileURL,
		Status:  domain.SubmissionPending,
	})
	return nil
}

func (m *mockSubmissions) ListSubmissions(ctx context.Context, status string) ([]domain.Submission, error) {
	out := make([]domain.Submission, 0)
	for _, sub := range m.subs {
		if status == "" || sub.Status == status {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *mockSubmissions) UpdateSubmissionStatus(ctx context.Context, id int64, status string) (int64, error) {
	for i := range m.subs {
		if m.subs[i].ID == id {
			m.subs[i].Status = status
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockSubmissions) urls() []string {
	out := make([]string, 0, len(m.subs))
	for _, sub := range m.subs {
		out = append(out, sub.FileURL)
	}
	return out
}

var mp3Data = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0}, 64)...)

func newTestService() (*Service, *mockStorage, *mockSubmissions) {
	storage := newMockStorage()
	subs := &mockSubmissions{}
	svc := New(&Config{
		MaxFileSize:          1024,
		MaxAdminFileSize:     4096,
		MaxActiveSubmissions: 2,
		AllowedDemoMIMETypes: []string{"audio/mpeg", "audio/wav"},
	}, storage, subs, zap.NewNop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, storage, subs
}

var storedNamePattern = regexp.MustCompile(`^1700000000000-[0-9a-f-]{36}\.mp3$`)

func TestService_Upload_LabelSubmission(t *testing.T) {
	svc, storage, subs := newTestService()

	res, err := svc.Upload(context.Background(), "u1", domain.CategoryLabelSubmissions, "My Demo.MP3", mp3Data)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !storedNamePattern.MatchString(res.Filename) {
		t.Errorf("Filename = %q, want <ms>-<uuid>.mp3", res.Filename)
	}
	if !strings.HasPrefix(res.URL, "https://cdn.example/label-submissions/") {
		t.Errorf("URL = %q", res.URL)
	}
	if len(storage.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(storage.uploads))
	}
	if urls := subs.urls(); len(urls) != 1 || urls[0] != res.URL {
		t.Errorf("submission not recorded: %v", urls)
	}
}

func TestService_Upload_DemoQuota(t *testing.T) {
	svc, storage, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Upload(ctx, "u1", domain.CategoryLabelSubmissions, "d.mp3", mp3Data); err != nil {
			t.Fatalf("upload %d error = %v", i, err)
		}
	}

	_, err := svc.Upload(ctx, "u1", domain.CategoryLabelSubmissions, "d.mp3", mp3Data)
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("Upload() over quota error = %v, want ErrQuotaExceeded", err)
	}
	if len(storage.uploads) != 2 {
		t.Errorf("uploads = %d, want 2", len(storage.uploads))
	}

	if _, err := svc.Upload(ctx, "u2", domain.CategoryLabelSubmissions, "d.mp3", mp3Data); err != nil {
		t.Errorf("other user's upload error = %v", err)
	}
}

func TestService_ReviewSubmissionFreesQuota(t *testing.T) {
	svc, _, subs := newTestService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Upload(ctx, "u1", domain.CategoryLabelSubmissions, "d.mp3", mp3Data); err != nil {
			t.Fatalf("upload %d error = %v", i, err)
		}
	}

	// Moving to review keeps the slot taken
	if err := svc.ReviewSubmission(ctx, 1, domain.SubmissionUnderReview); err != nil {
		t.Fatalf("ReviewSubmission(under_review) error = %v", err)
	}
	if _, err := svc.Upload(ctx, "u1", domain.CategoryLabelSubmissions, "d.mp3", mp3Data); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("Upload() error = %v, want ErrQuotaExceeded", err)
	}

	if err := svc.ReviewSubmission(ctx, 1, domain.SubmissionRejected); err != nil {
		t.Fatalf("ReviewSubmission(rejected) error = %v", err)
	}
	if _, err := svc.Upload(ctx, "u1", domain.CategoryLabelSubmissions, "d.mp3", mp3Data); err != nil {
		t.Errorf("Upload() after decision error = %v", err)
	}

	pending, err := svc.Submissions(ctx, domain.SubmissionPending)
	if err != nil || len(pending) != 2 {
		t.Errorf("Submissions(pending) = (%d, %v), want (2, nil)", len(pending), err)
	}
	if len(subs.subs) != 3 {
		t.Errorf("submissions = %d, want 3", len(subs.subs))
	}
}

func TestService_ReviewSubmissionRejects(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if err := svc.ReviewSubmission(ctx, 1, "archived"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("ReviewSubmission(bad status) error = %v, want ErrInvalidInput", err)
	}
	if err := svc.ReviewSubmission(ctx, 99, domain.SubmissionAccepted); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ReviewSubmission(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Submissions(ctx, "archived"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Submissions(bad status) error = %v, want ErrInvalidInput", err)
	}
}

func TestService_Upload_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		category domain.UploadCategory
		data     []byte
		wantErr  error
	}{
		{name: "anonymous", userID: "", category: domain.CategoryStudioRequests, data: mp3Data, wantErr: domain.ErrUnauthorized},
		{name: "admin category", userID: "u", category: domain.CategoryAdmin, data: mp3Data, wantErr: domain.ErrInvalidInput},
		{name: "empty", userID: "u", category: domain.CategoryStudioRequests, data: nil, wantErr: domain.ErrInvalidInput},
		{name: "too large", userID: "u", category: domain.CategoryStudioRequests, data: make([]byte, 2048), wantErr: domain.ErrInvalidInput},
		{name: "demo not audio", userID: "u", category: domain.CategoryLabelSubmissions, data: []byte("just some text"), wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, storage, _ := newTestService()
			_, err := svc.Upload(context.Background(), tt.userID, tt.category, "file.mp3", tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if len(storage.uploads) != 0 {
				t.Error("rejected upload reached storage")
			}
		})
	}
}

func TestService_Upload_StudioRequestAnyType(t *testing.T) {
	svc, _, subs := newTestService()

	res, err := svc.Upload(context.Background(), "u1", domain.CategoryStudioRequests, "brief", []byte("plain text brief"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasSuffix(res.Filename, ".txt") {
		t.Errorf("Filename = %q, want sniffed .txt extension", res.Filename)
	}
	if len(subs.subs) != 0 {
		t.Error("studio requests must not create submissions")
	}
}

func TestService_AdminUpload(t *testing.T) {
	svc, storage, _ := newTestService()
	ctx := context.Background()

	res, err := svc.AdminUpload(ctx, "masters/LBL001", `C:\Users\me\final.wav`, []byte("RIFF"))
	if err != nil {
		t.Fatalf("AdminUpload() error = %v", err)
	}
	if res.Path != "admin/masters/LBL001/final.wav" || res.URL != "" {
		t.Errorf("AdminUpload() = %+v", res)
	}
	if _, ok := storage.uploads["admin/masters/LBL001/final.wav"]; !ok {
		t.Error("file not stored")
	}

	if _, err := svc.AdminUpload(ctx, "", "big.bin", make([]byte, 5000)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("AdminUpload(too large) error = %v", err)
	}
}

func TestService_Upload_StorageError(t *testing.T) {
	svc, storage, subs := newTestService()
	storage.uploadErr = errors.New("connection reset")

	if _, err := svc.Upload(context.Background(), "u1", domain.CategoryLabelSubmissions, "d.mp3", mp3Data); err == nil {
		t.Fatal("Upload() should fail when storage fails")
	}
	if len(subs.subs) != 0 {
		t.Error("submission recorded for failed upload")
	}
}
