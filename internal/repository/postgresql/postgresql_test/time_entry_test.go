//go:build integration

package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/bstt-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(applicantID, office, department, weekEnding, in, out string) timeentry.TimeEntry {
	d, _ := time.Parse("2006-01-02", weekEnding)
	week, year := utils.ISOWeek(d)
	return timeentry.TimeEntry{
		Year:           d.Year(),
		OfficeName:     office + " Office",
		Office:         office,
		WeekEnding:     d,
		WeekNumber:     week,
		WeekYear:       year,
		ApplicantID:    applicantID,
		FirstName:      "Test",
		LastName:       applicantID,
		FullName:       "Test " + applicantID,
		ShiftNumber:    "1",
		Department:     department,
		RegHours:       38.5,
		OTHours:        1.5,
		TotalHours:     40,
		ClockInTries:   1,
		ClockInMethod:  in,
		ClockOutTries:  1,
		ClockOutMethod: out,
	}.Classified()
}

func seedEntries(t *testing.T, ctx context.Context, repo timeentry.TimeEntryRepository) []timeentry.TimeEntry {
	entries := []timeentry.TimeEntry{
		testEntry("A1", "Dallas", "Warehouse North", "2025-01-04", "Finger", "Finger"),
		testEntry("A2", "Dallas", "Warehouse North", "2025-01-04", "Provisional Entry", "Finger"),
		testEntry("A3", "Austin", "Receiving", "2025-01-05", "Write-In", "Finger"),
		testEntry("A1", "Dallas", "Warehouse North", "2025-01-11", "Finger", ""),
	}
	n, err := repo.BulkInsert(ctx, entries)
	require.NoError(t, err)
	require.Equal(t, int64(len(entries)), n)
	return entries
}

func TestTimeEntryRepository_BulkInsertAndList(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewTimeEntryRepository(setup.DB)

	seedEntries(t, ctx, repo)

	all, err := repo.List(ctx, timeentry.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 40.0, all[0].TotalHours)
	assert.Equal(t, 1.5, all[0].OTHours)
	assert.Equal(t, 2025, all[0].WeekYear)
	assert.Equal(t, 1, all[0].WeekNumber)

	office := "dallas"
	dallas, err := repo.List(ctx, timeentry.Filter{Office: &office})
	require.NoError(t, err)
	assert.Len(t, dallas, 3)

	dept := "warehouse"
	byDept, err := repo.List(ctx, timeentry.Filter{Department: &dept})
	require.NoError(t, err)
	assert.Len(t, byDept, 3)

	week := 1
	weekYear := 2025
	byWeek, err := repo.List(ctx, timeentry.Filter{WeekNumber: &week, WeekYear: &weekYear})
	require.NoError(t, err)
	assert.Len(t, byWeek, 3, "Saturday and Sunday week endings share ISO week 1")

	et := "missing c/o"
	missing, err := repo.List(ctx, timeentry.Filter{EntryType: &et})
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, timeentry.EntryTypeMissingClockOut, missing[0].EntryType)

	from, to := "2025-01-05", "2025-01-11"
	ranged, err := repo.List(ctx, timeentry.Filter{WeekEndingGTE: &from, WeekEndingLTE: &to})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestTimeEntryRepository_ListPage(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewTimeEntryRepository(setup.DB)
	seedEntries(t, ctx, repo)

	page, total, err := repo.ListPage(ctx, timeentry.ListRequest{Page: 2, Limit: 3, SortBy: "full_name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 1)
	assert.Equal(t, "Test A3", page[0].FullName)
}

func TestTimeEntryRepository_SummaryAndStats(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewTimeEntryRepository(setup.DB)
	seedEntries(t, ctx, repo)

	s, err := repo.Summary(ctx, timeentry.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.TotalEntries)
	assert.Equal(t, 160.0, s.TotalHours)
	assert.Equal(t, int64(3), s.UniqueEmployees)
	assert.Equal(t, int64(2), s.UniqueOffices)
	assert.Equal(t, int64(1), s.EntryTypeCounts[string(timeentry.EntryTypeFinger)])
	require.NotNil(t, s.MaxWeekEnding)
	assert.Equal(t, "2025-01-11", s.MaxWeekEnding.Format("2006-01-02"))

	opts, err := repo.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2025}, opts.Years)
	assert.Equal(t, []string{"Austin", "Dallas"}, opts.Offices)
	assert.Equal(t, []string{"2025-01-11", "2025-01-05", "2025-01-04"}, opts.Weeks)

	stats, err := repo.DataStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalRecords)
	assert.Equal(t, []timeentry.YearCount{{Year: 2025, Count: 4}}, stats.Years)
}

func TestTimeEntryRepository_DeleteByYearInTransaction(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewTimeEntryRepository(setup.DB)
	seedEntries(t, ctx, repo)

	rollback := errors.New("rollback")
	err := postgresql.WithTransaction(ctx, setup.DB, func(txCtx context.Context) error {
		deleted, err := repo.DeleteByYear(txCtx, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(4), deleted)
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	all, err := repo.List(ctx, timeentry.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4, "delete rolled back")

	deleted, err := repo.DeleteByYear(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestETLHistoryRepository(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewETLHistoryRepository(setup.DB)

	latest, err := repo.LatestSuccess(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	year := 2025
	h, err := repo.Create(ctx, etl.ETLHistory{Year: &year, SourceFile: "bstt_data_2025.csv"})
	require.NoError(t, err)
	assert.NotZero(t, h.ID)
	assert.Equal(t, etl.StatusRunning, h.Status)

	duration := 1.25
	h.Status = etl.StatusSuccess
	h.RecordsProcessed = 10
	h.RecordsInserted = 10
	h.DurationSeconds = &duration
	require.NoError(t, repo.Finish(ctx, h))

	latest, err = repo.LatestSuccess(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 10, latest.RecordsInserted)

	list, err := repo.List(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDataUploadRepository(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewDataUploadRepository(setup.DB)

	u, err := repo.Create(ctx, etl.DataUpload{FileName: "data.csv", FilePath: "uploads/2025/data.csv", FileSize: 42})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, etl.StatusPending, u.Status)

	now := time.Now()
	u.Status = etl.StatusCompleted
	u.ProcessedAt = &now
	u.RecordsCreated = 7
	require.NoError(t, repo.UpdateStatus(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, etl.StatusCompleted, got.Status)
	assert.Equal(t, 7, got.RecordsCreated)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, etl.ErrUploadNotFound)
}
