package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Time entry domain errors
	case errors.Is(err, timeentry.ErrInvalidFilter),
		errors.Is(err, timeentry.ErrInvalidSortKey),
		errors.Is(err, timeentry.ErrYearRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, timeentry.ErrNoEntries):
		NotFound(w, "No time entries match the filter")

	// ETL domain errors
	case errors.Is(err, etl.ErrUnsupportedFileType),
		errors.Is(err, etl.ErrEmptyFile),
		errors.Is(err, etl.ErrMissingColumns):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, etl.ErrFileTooLarge):
		PayloadTooLarge(w, "Data file exceeds the 100MB upload limit")
	case errors.Is(err, etl.ErrUploadNotFound):
		NotFound(w, "Upload not found")
	case errors.Is(err, etl.ErrNoDataFiles):
		NotFound(w, "No data files found in sync directory")
	case errors.Is(err, etl.ErrSyncDisabled):
		Conflict(w, "Directory sync is not configured")

	// Report domain errors
	case errors.Is(err, report.ErrInvalidYear):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrReportGenerationFailed):
		InternalServerError(w, "Failed to generate report")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
