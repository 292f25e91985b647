package etl

import "errors"

// ETL domain errors
var (
	// Input errors
	ErrUnsupportedFileType = errors.New("unsupported file type, expected .csv or .xlsx")
	ErrEmptyFile           = errors.New("data file contains no rows")
	ErrMissingColumns      = errors.New("data file is missing required columns")
	ErrFileTooLarge        = errors.New("data file exceeds maximum upload size")

	// Lookup errors
	ErrUploadNotFound = errors.New("upload not found")
	ErrNoDataFiles    = errors.New("no data files found in sync directory")
	ErrSyncDisabled   = errors.New("directory sync is not configured")
)
