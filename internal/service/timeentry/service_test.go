package timeentry

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntryRepo struct {
	timeentry.TimeEntryRepository
	page    []timeentry.TimeEntry
	total   int64
	summary timeentry.SummaryStats
	stats   timeentry.DataStats
	lastReq timeentry.ListRequest
}

func (f *fakeEntryRepo) ListPage(_ context.Context, req timeentry.ListRequest) ([]timeentry.TimeEntry, int64, error) {
	f.lastReq = req
	return f.page, f.total, nil
}

func (f *fakeEntryRepo) Summary(_ context.Context, _ timeentry.Filter) (timeentry.SummaryStats, error) {
	return f.summary, nil
}

func (f *fakeEntryRepo) DataStats(_ context.Context) (timeentry.DataStats, error) {
	return f.stats, nil
}

type fakeHistoryRepo struct {
	etl.ETLHistoryRepository
	latest *etl.ETLHistory
}

func (f *fakeHistoryRepo) LatestSuccess(_ context.Context) (*etl.ETLHistory, error) {
	return f.latest, nil
}

func day(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func TestTimeEntryService_List(t *testing.T) {
	repo := &fakeEntryRepo{
		page:  []timeentry.TimeEntry{{ID: 1, FullName: "A", WeekEnding: *day("2025-03-08"), EntryType: timeentry.EntryTypeFinger}},
		total: 201,
	}
	svc := NewTimeEntryService(repo, &fakeHistoryRepo{})

	resp, err := svc.List(context.Background(), timeentry.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 100, resp.Limit)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "2025-03-08", resp.Entries[0].WeekEnding)
	assert.Equal(t, "Finger", resp.Entries[0].EntryType)
	assert.Equal(t, "week_ending", repo.lastReq.SortBy)

	_, err = svc.List(context.Background(), timeentry.ListRequest{Limit: 5000})
	assert.Error(t, err)
}

func TestTimeEntryService_Summary(t *testing.T) {
	repo := &fakeEntryRepo{summary: timeentry.SummaryStats{
		TotalEntries:    3,
		TotalHours:      120,
		MinWeekEnding:   day("2025-01-04"),
		MaxWeekEnding:   day("2025-03-08"),
		EntryTypeCounts: map[string]int64{"Finger": 2, "Write-In": 1},
	}}
	svc := NewTimeEntryService(repo, &fakeHistoryRepo{})

	resp, err := svc.Summary(context.Background(), timeentry.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-04 to 2025-03-08", resp.DateRange)
	assert.Equal(t, map[string]int64{
		"Finger": 2, "Missing c/o": 0, "Provisional Entry": 0, "Write-In": 1,
	}, resp.EntryTypeBreakdown)
}

func TestTimeEntryService_DataQuality(t *testing.T) {
	repo := &fakeEntryRepo{stats: timeentry.DataStats{
		TotalRecords:  10,
		MinWeekEnding: day("2025-01-04"),
		MaxWeekEnding: day("2025-03-08"),
		Years:         []timeentry.YearCount{{Year: 2025, Count: 10}},
	}}
	history := &fakeHistoryRepo{latest: &etl.ETLHistory{
		RunDate:         time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		Status:          etl.StatusSuccess,
		RecordsInserted: 10,
	}}
	svc := NewTimeEntryService(repo, history).(*TimeEntryServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC) }

	resp, err := svc.DataQuality(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.TotalRecords)
	assert.Equal(t, "2025-01-04", *resp.MinDate)
	assert.Equal(t, timeentry.FreshnessRecent, resp.DataFreshness)
	require.NotNil(t, resp.LastETLRun)
	assert.Equal(t, "2025-03-10T08:00:00Z", *resp.LastETLRun)
	assert.Equal(t, 10, resp.LastETLRecords)
}

func TestTimeEntryService_DataQuality_Empty(t *testing.T) {
	svc := NewTimeEntryService(&fakeEntryRepo{}, &fakeHistoryRepo{})

	resp, err := svc.DataQuality(context.Background())
	require.NoError(t, err)
	assert.Equal(t, timeentry.FreshnessUnknown, resp.DataFreshness)
	assert.Nil(t, resp.MinDate)
	assert.Nil(t, resp.LastETLRun)
}

func TestFreshness(t *testing.T) {
	now := time.Date(2025, 3, 31, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		last     string
		expected string
	}{
		{"2025-03-31", timeentry.FreshnessCurrent},
		{"2025-03-24", timeentry.FreshnessCurrent},
		{"2025-03-23", timeentry.FreshnessRecent},
		{"2025-03-17", timeentry.FreshnessRecent},
		{"2025-03-16", timeentry.FreshnessStale},
		{"2025-03-01", timeentry.FreshnessStale},
		{"2025-02-28", timeentry.FreshnessOutdated},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, timeentry.Freshness(day(tt.last), now), tt.last)
	}
	assert.Equal(t, timeentry.FreshnessUnknown, timeentry.Freshness(nil, now))
}
