package etl

import (
	"context"
	"io"
)

// ETLService loads time-clock exports into storage.
type ETLService interface {
	// Import parses a CSV or XLSX stream and writes it in one transaction
	Import(ctx context.Context, r io.Reader, kind string, opts ImportOptions) (ImportResult, error)

	// ProcessUpload stores an uploaded file, imports it and tracks its status
	ProcessUpload(ctx context.Context, req UploadRequest) (UploadResponse, error)

	// SyncDirectory imports the data files found in the sync directory
	SyncDirectory(ctx context.Context, req SyncRequest) (SyncResponse, error)

	// ListUploads returns recent uploads
	ListUploads(ctx context.Context, limit int) ([]UploadResponse, error)

	// History returns recent import runs
	History(ctx context.Context, limit int) ([]HistoryResponse, error)
}
