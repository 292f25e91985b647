package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/excel"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
	kpiservice "github.com/cmlabs-hris/bstt-backend-go/internal/service/kpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeRepo struct {
	timeentry.TimeEntryRepository
	entries []timeentry.TimeEntry
	err     error
}

func (f *fakeRepo) List(_ context.Context, _ timeentry.Filter) ([]timeentry.TimeEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]timeentry.TimeEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func entry(id, name, office, weekEnding, in, out string, hours float64) timeentry.TimeEntry {
	we, err := time.Parse("2006-01-02", weekEnding)
	if err != nil {
		panic(err)
	}
	week, year := utils.ISOWeek(we)
	return timeentry.TimeEntry{
		Year:           we.Year(),
		Office:         office,
		WeekEnding:     we,
		WeekNumber:     week,
		WeekYear:       year,
		ApplicantID:    id,
		FullName:       name,
		Department:     "Receiving",
		ShiftNumber:    "1",
		TotalHours:     hours,
		ClockInTries:   1,
		ClockInMethod:  in,
		ClockOutTries:  1,
		ClockOutMethod: out,
	}
}

func sampleEntries() []timeentry.TimeEntry {
	return []timeentry.TimeEntry{
		entry("A1", "Doe, Jane", "Dallas", "2025-03-01", "Finger", "Finger", 40),
		entry("A1", "Doe, Jane", "Dallas", "2025-03-08", "Finger", "Finger", 38),
		entry("A2", "Roe, Rich", "Dallas", "2025-03-01", "Provisional", "Finger", 40),
		entry("A2", "Roe, Rich", "Dallas", "2025-03-08", "Provisional", "Finger", 40),
		entry("A2", "Roe, Rich", "Dallas", "2025-03-08", "Provisional", "Finger", 4),
		entry("A3", "Poe, Pat", "North/South: Ops", "2025-03-08", "Write-In", "Finger", 8),
		entry("A4", "Loe, Lee", "North/South: Ops", "2025-03-08", "Finger", "", 8),
	}
}

func newTestService(entries []timeentry.TimeEntry) (*ReportServiceImpl, *fakeRepo) {
	repo := &fakeRepo{entries: entries}
	svc := &ReportServiceImpl{
		TimeEntryRepository: repo,
		calc:                kpiservice.NewCalculator(kpi.DefaultThresholds()),
		now: func() time.Time {
			return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
		},
	}
	return svc, repo
}

func openReport(t *testing.T, rep report.Report) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(rep.Content))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFullReport_Sheets(t *testing.T) {
	svc, _ := newTestService(sampleEntries())
	year := 2025

	rep, err := svc.FullReport(context.Background(), report.ReportRequest{
		Filter: timeentry.Filter{Year: &year},
	})
	require.NoError(t, err)
	assert.Equal(t, "BSTT_Report_2025_20250310.xlsx", rep.FileName)
	assert.Equal(t, excel.ContentType, rep.ContentType)

	f := openReport(t, rep)
	assert.Equal(t, []string{
		"CheckingTheFile", "Directions", "Data", "All", "Prov", "Write Ins", "Provisional",
		"Dallas", "North-South- Ops",
	}, f.GetSheetList())

	checking, err := f.GetRows("CheckingTheFile")
	require.NoError(t, err)
	assert.Contains(t, checking, []string{"Total Records:", "7"})
	assert.Contains(t, checking, []string{"Unique Offices:", "2"})
	assert.Contains(t, checking, []string{"Unique Weeks:", "2"})
	assert.Contains(t, checking, []string{"  year:", "2025"})

	all, err := f.GetRows("All")
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee", "Finger", "Missing c/o", "Provisional Entry", "Write-In", "Grand Total"}, all[0])
	assert.Equal(t, []string{"Roe, Rich", "0", "0", "3", "0", "3"}, all[1])
	assert.Equal(t, []string{"Doe, Jane", "2", "0", "0", "0", "2"}, all[2])

	prov, err := f.GetRows("Prov")
	require.NoError(t, err)
	assert.Equal(t, []string{"OfcName", "FullName", "1-Mar", "8-Mar", "Total", "Average", "Enrollment of Fingerprint Needed"}, prov[0])
	assert.Equal(t, []string{"Dallas", "Roe, Rich", "1", "2", "3", "1.5", "Yes"}, prov[1])

	data, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, data, 7) // header + 6 groups; the two A2 rows for 8-Mar merge
	assert.Equal(t, []string{"Dallas", "2025-03-01", "A1", "1", "Receiving", "Finger", "Doe, Jane", "40", "1", "Saturday", "1-Mar"}, data[1])

	dallas, err := f.GetRows("Dallas")
	require.NoError(t, err)
	require.Len(t, dallas, 2) // Doe has only finger entries and is omitted
	assert.Equal(t, []string{"Roe, Rich", "0", "3", "0", "3", "Yes"}, dallas[1])

	ops, err := f.GetRows("North-South- Ops")
	require.NoError(t, err)
	require.Len(t, ops, 3)
}

func TestFullReport_EmptyData(t *testing.T) {
	svc, _ := newTestService(nil)

	rep, err := svc.FullReport(context.Background(), report.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "BSTT_Report_2025_20250310.xlsx", rep.FileName)

	f := openReport(t, rep)
	assert.Equal(t, []string{
		"CheckingTheFile", "Directions", "Data", "All", "Prov", "Write Ins", "Provisional",
	}, f.GetSheetList())

	prov, err := f.GetRows("Prov")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"No Data"}, {"No provisional entries found"}}, prov)

	checking, err := f.GetRows("CheckingTheFile")
	require.NoError(t, err)
	assert.Contains(t, checking, []string{"Start Date:", "N/A"})
	assert.Contains(t, checking, []string{"  None"})
}

func TestFullReport_Errors(t *testing.T) {
	svc, repo := newTestService(nil)

	week := 99
	_, err := svc.FullReport(context.Background(), report.ReportRequest{
		Filter: timeentry.Filter{WeekNumber: &week},
	})
	var ve validator.ValidationErrors
	assert.ErrorAs(t, err, &ve)

	repo.err = errors.New("db down")
	_, err = svc.FullReport(context.Background(), report.ReportRequest{})
	assert.ErrorIs(t, err, repo.err)
}

func TestWeeklySummary(t *testing.T) {
	svc, _ := newTestService(sampleEntries())
	year := 2024

	rep, err := svc.WeeklySummary(context.Background(), report.ReportRequest{Year: &year})
	require.NoError(t, err)
	assert.Equal(t, "BSTT_Weekly_Summary_20250310.xlsx", rep.FileName)

	f := openReport(t, rep)
	assert.Equal(t, []string{"Summary", "Weekly Trends"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Contains(t, summary, []string{"Year:", "2024"})
	assert.Contains(t, summary, []string{"Total Entries", "7"})

	trends, err := f.GetRows("Weekly Trends")
	require.NoError(t, err)
	require.Len(t, trends, 3)
	assert.Equal(t, "2025-03-02", trends[1][0])
	assert.Equal(t, "2025-03-09", trends[2][0])
}

func TestOfficeSheets_SkipsFingerOnlyOffices(t *testing.T) {
	entries := []timeentry.TimeEntry{
		entry("A1", "Doe, Jane", "Austin", "2025-03-08", "Finger", "Finger", 8),
		entry("A2", "Roe, Rich", "", "2025-03-08", "Write-In", "Finger", 8),
	}
	for i := range entries {
		entries[i] = entries[i].Classified()
	}
	assert.Empty(t, officeSheets(entries, kpi.DefaultThresholds()))
}
