package timeentry

import "context"

// TimeEntryService exposes read access to the imported entries.
type TimeEntryService interface {
	// List retrieves entries with filters, sorting and pagination
	List(ctx context.Context, req ListRequest) (ListResponse, error)

	// Summary retrieves totals and the entry type breakdown for a filter
	Summary(ctx context.Context, filter Filter) (SummaryResponse, error)

	// FilterOptions retrieves the values a client can filter on
	FilterOptions(ctx context.Context) (FilterOptions, error)

	// DataQuality reports dataset size, coverage and freshness
	DataQuality(ctx context.Context) (DataQualityResponse, error)
}
