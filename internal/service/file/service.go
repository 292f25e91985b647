package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
)

type FileService interface {
	// UploadDataFile stores an uploaded CSV or XLSX export and returns its storage path
	UploadDataFile(ctx context.Context, year *int, file io.Reader, filename string) (string, error)

	// OpenFile opens a stored file for reading
	OpenFile(ctx context.Context, path string) (io.ReadCloser, error)

	// DeleteFile removes a stored file
	DeleteFile(ctx context.Context, path string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

var contentTypes = map[string]string{
	etl.KindCSV:  "text/csv",
	etl.KindXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// UploadDataFile stores the file as uploads/{year}/{timestamp}_{uuid}_{name}.
func (s *fileServiceImpl) UploadDataFile(ctx context.Context, year *int, file io.Reader, filename string) (string, error) {
	kind := etl.FileKind(filename)
	if kind == "" {
		return "", etl.ErrUnsupportedFileType
	}

	yearDir := "unknown"
	if year != nil {
		yearDir = fmt.Sprintf("%d", *year)
	}

	newFilename := fmt.Sprintf("%s_%s_%s", s.now().UTC().Format("20060102T150405"), uuid.New().String(), sanitizeFilename(filename))
	path := filepath.Join("uploads", yearDir, newFilename)

	uploadedPath, err := s.storage.Upload(ctx, file, path, contentTypes[kind])
	if err != nil {
		return "", fmt.Errorf("failed to upload data file: %w", err)
	}

	return uploadedPath, nil
}

// OpenFile opens a stored file
func (s *fileServiceImpl) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, path)
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// sanitizeFilename keeps the base name and replaces characters that are
// awkward in paths.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
}
