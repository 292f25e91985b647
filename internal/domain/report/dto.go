package report

import (
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
)

// Report kinds, also used as metric labels.
const (
	KindFull          = "full"
	KindWeeklySummary = "weekly_summary"
)

// ReportRequest selects the entries a workbook is built from.
type ReportRequest struct {
	Filter timeentry.Filter
	// Year is printed on the report; defaults to the filter year or the current year.
	Year *int
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := r.Filter.Validate(); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, ve...)
		} else {
			return err
		}
	}
	if r.Year != nil && !validator.IsValidYear(*r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: ErrInvalidYear.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Report is a generated workbook ready to be downloaded.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}
