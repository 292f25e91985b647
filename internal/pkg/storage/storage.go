package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidPath  = errors.New("path escapes storage root")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage keeps uploaded data files so imports can be re-run from the
// exact bytes that were submitted.
type FileStorage interface {
	// Upload writes file to path and returns the stored key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download opens a stored file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file; missing files are not an error
	Delete(ctx context.Context, path string) error
}
