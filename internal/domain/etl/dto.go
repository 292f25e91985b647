package etl

import (
	"io"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
)

// ImportOptions controls how parsed entries are written.
type ImportOptions struct {
	// Year tags every entry and overrides the file's year column.
	Year *int
	// FallbackYear tags entries that carry no year of their own. When both
	// are nil the year of the entry's week ending is used.
	FallbackYear *int
	// ReplaceYear deletes the year's existing entries inside the import transaction.
	ReplaceYear bool
	SourceFile  string
}

// ImportResult summarises a completed import.
type ImportResult struct {
	HistoryID         int64   `json:"history_id"`
	Year              int     `json:"year"`
	SourceFile        string  `json:"source_file"`
	RecordsProcessed  int     `json:"records_processed"`
	RecordsInserted   int     `json:"records_inserted"`
	RecordsDeleted    int64   `json:"records_deleted"`
	RecordsMismatched int     `json:"records_mismatched"`
	DurationSeconds   float64 `json:"duration_seconds"`
}

// UploadRequest carries a multipart data file into the service.
type UploadRequest struct {
	File        io.Reader
	FileName    string
	FileSize    int64
	Year        *int
	ReplaceYear bool
	UploadedBy  *string
}

const MaxUploadSize = 100 << 20

func (r *UploadRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file is required",
		})
	}
	if validator.IsEmpty(r.FileName) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file name is required",
		})
	} else if !IsSupportedFile(r.FileName) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file must be .csv or .xlsx",
		})
	}
	if r.FileSize > MaxUploadSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "file must not exceed 100MB",
		})
	}
	if r.Year != nil && !validator.IsValidYear(*r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SyncRequest triggers an import from the configured data directory.
type SyncRequest struct {
	Year        *int   `json:"year,omitempty"`
	ReplaceYear bool   `json:"clear"`
	Dir         string `json:"-"`
	// ModifiedAfter skips files not modified since the given time.
	ModifiedAfter *time.Time `json:"-"`
}

func (r *SyncRequest) Validate() error {
	if r.Year != nil && !validator.IsValidYear(*r.Year) {
		return validator.ValidationErrors{{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		}}
	}
	return nil
}

type SyncResponse struct {
	Imports []ImportResult `json:"imports"`
	Skipped []string       `json:"skipped,omitempty"`
}

type UploadResponse struct {
	ID             string     `json:"id"`
	FileName       string     `json:"file_name"`
	FileSize       int64      `json:"file_size"`
	Year           *int       `json:"year"`
	Status         string     `json:"status"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	ProcessedAt    *time.Time `json:"processed_at"`
	RecordsCreated int        `json:"records_created"`
	ErrorMessage   *string    `json:"error_message"`
}

func (u DataUpload) ToResponse() UploadResponse {
	return UploadResponse{
		ID:             u.ID,
		FileName:       u.FileName,
		FileSize:       u.FileSize,
		Year:           u.Year,
		Status:         u.Status,
		UploadedAt:     u.UploadedAt,
		ProcessedAt:    u.ProcessedAt,
		RecordsCreated: u.RecordsCreated,
		ErrorMessage:   u.ErrorMessage,
	}
}

type HistoryResponse struct {
	ID                int64     `json:"id"`
	RunDate           time.Time `json:"run_date"`
	Year              *int      `json:"year"`
	SourceFile        string    `json:"source_file"`
	RecordsProcessed  int       `json:"records_processed"`
	RecordsInserted   int       `json:"records_inserted"`
	RecordsMismatched int       `json:"records_mismatched"`
	Status            string    `json:"status"`
	Message           *string   `json:"message"`
	DurationSeconds   *float64  `json:"duration_seconds"`
}

func (h ETLHistory) ToResponse() HistoryResponse {
	return HistoryResponse{
		ID:                h.ID,
		RunDate:           h.RunDate,
		Year:              h.Year,
		SourceFile:        h.SourceFile,
		RecordsProcessed:  h.RecordsProcessed,
		RecordsInserted:   h.RecordsInserted,
		RecordsMismatched: h.RecordsMismatched,
		Status:            h.Status,
		Message:           h.Message,
		DurationSeconds:   h.DurationSeconds,
	}
}

// IsSupportedFile reports whether the name has an importable extension.
func IsSupportedFile(name string) bool {
	switch FileKind(name) {
	case KindCSV, KindXLSX:
		return true
	}
	return false
}
