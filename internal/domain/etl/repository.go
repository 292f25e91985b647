package etl

import "context"

// ETLHistoryRepository records import runs.
type ETLHistoryRepository interface {
	// Create inserts a running history row and returns it with its ID
	Create(ctx context.Context, h ETLHistory) (ETLHistory, error)

	// Finish stores the final status and counters of a run
	Finish(ctx context.Context, h ETLHistory) error

	// List returns the most recent runs first
	List(ctx context.Context, limit int) ([]ETLHistory, error)

	// LatestSuccess returns the newest successful run, or nil when none exists
	LatestSuccess(ctx context.Context) (*ETLHistory, error)
}

// DataUploadRepository tracks uploaded data files.
type DataUploadRepository interface {
	Create(ctx context.Context, u DataUpload) (DataUpload, error)
	UpdateStatus(ctx context.Context, u DataUpload) error
	GetByID(ctx context.Context, id string) (DataUpload, error)
	List(ctx context.Context, limit int) ([]DataUpload, error)
}
