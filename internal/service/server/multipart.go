package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// multipartMemory is how much of a multipart body is kept in memory
// before spilling to temp files
const multipartMemory = 32 << 20

// readUpload parses a multipart body capped at limit and returns the
// "file" part. Callers must call r.MultipartForm.RemoveAll when done.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) (string, []byte, error) {
	if limit > 0 {
		// leave room for the other form fields
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, domain.NewValidationError(fmt.Sprintf("File too large (max %s)", humanize.IBytes(uint64(limit))))
		}
		return "", nil, domain.NewValidationError("Invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, domain.NewValidationError("No file provided")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, data, nil
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
