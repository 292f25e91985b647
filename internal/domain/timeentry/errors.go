package timeentry

import "errors"

// Time entry domain errors
var (
	ErrInvalidFilter  = errors.New("invalid time entry filter")
	ErrNoEntries      = errors.New("no time entries match the filter")
	ErrYearRequired   = errors.New("year is required")
	ErrInvalidSortKey = errors.New("invalid sort field")
)
