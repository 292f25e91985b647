package timeentry

import "context"

// TimeEntryRepository defines data access methods for imported time entries.
type TimeEntryRepository interface {
	// List returns every entry matching the filter, ordered by week ending then applicant.
	List(ctx context.Context, filter Filter) ([]TimeEntry, error)

	// ListPage returns one page of matching entries and the total match count
	ListPage(ctx context.Context, req ListRequest) ([]TimeEntry, int64, error)

	// Summary computes totals and the entry type breakdown in the database
	Summary(ctx context.Context, filter Filter) (SummaryStats, error)

	// FilterOptions lists the distinct values available for filtering
	FilterOptions(ctx context.Context) (FilterOptions, error)

	// DataStats describes the stored dataset as a whole
	DataStats(ctx context.Context) (DataStats, error)

	// DeleteByYear removes a year's entries and reports how many were deleted
	DeleteByYear(ctx context.Context, year int) (int64, error)

	// BulkInsert copies entries into storage and reports how many were written
	BulkInsert(ctx context.Context, entries []TimeEntry) (int64, error)
}
