package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timeEntryRepository struct {
	db *database.DB
}

const timeEntryColumns = `
	id, year, ofc_name, xlc_operation, dt_end_cli_work_week, work_date, date_range,
	week_number, week_year, applicant_id, last_name, first_name, full_name, employee_type_id,
	shift_number, department_name, allocation_method, time_start, time_end,
	reg_hours, ot_hours, dt_hours, hol_wrk_hours, total_hours,
	clock_in_local, clock_in_tries, clock_in_method,
	clock_out_local, clock_out_tries, clock_out_method, entry_type`

// copyColumns are written by BulkInsert; id and created_at are generated.
var copyColumns = []string{
	"year", "ofc_name", "xlc_operation", "dt_end_cli_work_week", "work_date", "date_range",
	"week_number", "week_year", "applicant_id", "last_name", "first_name", "full_name", "employee_type_id",
	"shift_number", "department_name", "allocation_method", "time_start", "time_end",
	"reg_hours", "ot_hours", "dt_hours", "hol_wrk_hours", "total_hours",
	"clock_in_local", "clock_in_tries", "clock_in_method",
	"clock_out_local", "clock_out_tries", "clock_out_method", "entry_type",
}

func scanTimeEntry(row pgx.Row) (timeentry.TimeEntry, error) {
	var e timeentry.TimeEntry
	var entryType string
	err := row.Scan(
		&e.ID, &e.Year, &e.OfficeName, &e.Office, &e.WeekEnding, &e.WorkDate, &e.DateRange,
		&e.WeekNumber, &e.WeekYear, &e.ApplicantID, &e.LastName, &e.FirstName, &e.FullName, &e.EmployeeTypeID,
		&e.ShiftNumber, &e.Department, &e.AllocationMethod, &e.TimeStart, &e.TimeEnd,
		&e.RegHours, &e.OTHours, &e.DTHours, &e.HolHours, &e.TotalHours,
		&e.ClockInLocal, &e.ClockInTries, &e.ClockInMethod,
		&e.ClockOutLocal, &e.ClockOutTries, &e.ClockOutMethod, &entryType,
	)
	e.EntryType = timeentry.EntryType(entryType)
	return e, err
}

// buildFilterWhere renders the filter as a WHERE clause body with positional
// arguments starting at $argIdx.
func buildFilterWhere(filter timeentry.Filter, argIdx int) (string, []interface{}, int) {
	where := []string{"1=1"}
	var args []interface{}

	add := func(clause string, arg interface{}) {
		where = append(where, fmt.Sprintf(clause, argIdx))
		args = append(args, arg)
		argIdx++
	}
	addDate := func(clause string, v *string) {
		if v == nil || *v == "" {
			return
		}
		if d, err := time.Parse("2006-01-02", *v); err == nil {
			add(clause, d)
		}
	}

	// Year
	if filter.Year != nil {
		add("year = $%d", *filter.Year)
	}
	if filter.YearGTE != nil {
		add("year >= $%d", *filter.YearGTE)
	}
	if filter.YearLTE != nil {
		add("year <= $%d", *filter.YearLTE)
	}

	// Office
	if filter.Office != nil && *filter.Office != "" {
		add("LOWER(xlc_operation) = LOWER($%d)", *filter.Office)
	}
	if len(filter.Offices) > 0 {
		add("xlc_operation = ANY($%d)", filter.Offices)
	}

	// Entry type
	if filter.EntryType != nil && *filter.EntryType != "" {
		et, _ := timeentry.ParseEntryType(*filter.EntryType)
		add("entry_type = $%d", string(et))
	}
	if len(filter.EntryTypes) > 0 {
		types := make([]string, 0, len(filter.EntryTypes))
		for _, raw := range filter.EntryTypes {
			if et, ok := timeentry.ParseEntryType(raw); ok {
				types = append(types, string(et))
			}
		}
		add("entry_type = ANY($%d)", types)
	}

	// Week ending date
	addDate("dt_end_cli_work_week = $%d", filter.WeekEnding)
	addDate("dt_end_cli_work_week >= $%d", filter.WeekEndingGTE)
	addDate("dt_end_cli_work_week <= $%d", filter.WeekEndingLTE)

	// ISO week
	if filter.WeekNumber != nil {
		add("week_number = $%d", *filter.WeekNumber)
	}
	if filter.WeekNumberGTE != nil {
		add("week_number >= $%d", *filter.WeekNumberGTE)
	}
	if filter.WeekNumberLTE != nil {
		add("week_number <= $%d", *filter.WeekNumberLTE)
	}
	if filter.WeekYear != nil {
		add("week_year = $%d", *filter.WeekYear)
	}
	if filter.WeekYearGTE != nil {
		add("week_year >= $%d", *filter.WeekYearGTE)
	}
	if filter.WeekYearLTE != nil {
		add("week_year <= $%d", *filter.WeekYearLTE)
	}

	// Department
	if filter.Department != nil && *filter.Department != "" {
		add("department_name ILIKE '%%' || $%d || '%%'", *filter.Department)
	}
	if len(filter.Departments) > 0 {
		add("department_name = ANY($%d)", filter.Departments)
	}

	// Employee and shift
	if filter.ApplicantID != nil && *filter.ApplicantID != "" {
		add("applicant_id = $%d", *filter.ApplicantID)
	}
	if filter.FullName != nil && *filter.FullName != "" {
		add("full_name ILIKE '%%' || $%d || '%%'", *filter.FullName)
	}
	if filter.Shift != nil && *filter.Shift != "" {
		add("shift_number = $%d", *filter.Shift)
	}

	return strings.Join(where, " AND "), args, argIdx
}

// List implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) List(ctx context.Context, filter timeentry.Filter) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	where, args, _ := buildFilterWhere(filter, 1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM time_entries
		WHERE %s
		ORDER BY dt_end_cli_work_week, applicant_id, id
	`, timeEntryColumns, where)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time entries: %w", err)
	}

	return entries, nil
}

// ListPage implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) ListPage(ctx context.Context, req timeentry.ListRequest) ([]timeentry.TimeEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args, argIdx := buildFilterWhere(req.Filter, 1)

	// Count total
	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM time_entries WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time entries: %w", err)
	}

	// Build ORDER BY
	orderByField := "dt_end_cli_work_week"
	switch req.SortBy {
	case "office":
		orderByField = "xlc_operation"
	case "full_name":
		orderByField = "full_name"
	case "total_hours":
		orderByField = "total_hours"
	}
	sortOrder := "DESC"
	if strings.ToLower(req.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM time_entries
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, timeEntryColumns, where, orderByField, sortOrder, argIdx, argIdx+1)

	limit := req.Limit
	if limit == 0 {
		limit = 100
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}

// Summary implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) Summary(ctx context.Context, filter timeentry.Filter) (timeentry.SummaryStats, error) {
	q := GetQuerier(ctx, r.db)

	where, args, _ := buildFilterWhere(filter, 1)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_hours), 0)::float8,
			COALESCE(SUM(reg_hours), 0)::float8,
			COALESCE(SUM(ot_hours), 0)::float8,
			COUNT(DISTINCT NULLIF(applicant_id, '')),
			COUNT(DISTINCT NULLIF(xlc_operation, '')),
			MIN(dt_end_cli_work_week),
			MAX(dt_end_cli_work_week)
		FROM time_entries
		WHERE ` + where

	var s timeentry.SummaryStats
	err := q.QueryRow(ctx, query, args...).Scan(
		&s.TotalEntries, &s.TotalHours, &s.TotalRegHours, &s.TotalOTHours,
		&s.UniqueEmployees, &s.UniqueOffices, &s.MinWeekEnding, &s.MaxWeekEnding,
	)
	if err != nil {
		return timeentry.SummaryStats{}, fmt.Errorf("failed to summarize time entries: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT entry_type, COUNT(*)
		FROM time_entries
		WHERE `+where+`
		GROUP BY entry_type`, args...)
	if err != nil {
		return timeentry.SummaryStats{}, fmt.Errorf("failed to count entry types: %w", err)
	}
	defer rows.Close()

	s.EntryTypeCounts = make(map[string]int64)
	for rows.Next() {
		var et string
		var count int64
		if err := rows.Scan(&et, &count); err != nil {
			return timeentry.SummaryStats{}, fmt.Errorf("failed to scan entry type count: %w", err)
		}
		s.EntryTypeCounts[et] = count
	}

	return s, rows.Err()
}

func queryStrings(ctx context.Context, q database.Querier, query string) ([]string, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FilterOptions implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) FilterOptions(ctx context.Context) (timeentry.FilterOptions, error) {
	q := GetQuerier(ctx, r.db)

	var opts timeentry.FilterOptions
	var err error

	rows, err := q.Query(ctx, "SELECT DISTINCT year FROM time_entries ORDER BY year DESC")
	if err != nil {
		return opts, fmt.Errorf("failed to query years: %w", err)
	}
	opts.Years = []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			rows.Close()
			return opts, fmt.Errorf("failed to scan year: %w", err)
		}
		opts.Years = append(opts.Years, y)
	}
	rows.Close()

	if opts.Offices, err = queryStrings(ctx, q, `
		SELECT DISTINCT xlc_operation FROM time_entries
		WHERE xlc_operation <> '' ORDER BY xlc_operation`); err != nil {
		return opts, fmt.Errorf("failed to query offices: %w", err)
	}
	if opts.Departments, err = queryStrings(ctx, q, `
		SELECT DISTINCT department_name FROM time_entries
		WHERE department_name <> '' ORDER BY department_name`); err != nil {
		return opts, fmt.Errorf("failed to query departments: %w", err)
	}
	if opts.EntryTypes, err = queryStrings(ctx, q, `
		SELECT DISTINCT entry_type FROM time_entries ORDER BY entry_type`); err != nil {
		return opts, fmt.Errorf("failed to query entry types: %w", err)
	}
	if opts.Weeks, err = queryStrings(ctx, q, `
		SELECT DISTINCT to_char(dt_end_cli_work_week, 'YYYY-MM-DD') AS week
		FROM time_entries ORDER BY week DESC`); err != nil {
		return opts, fmt.Errorf("failed to query week endings: %w", err)
	}

	return opts, nil
}

// DataStats implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) DataStats(ctx context.Context) (timeentry.DataStats, error) {
	q := GetQuerier(ctx, r.db)

	var s timeentry.DataStats
	err := q.QueryRow(ctx, `
		SELECT COUNT(*), MIN(dt_end_cli_work_week), MAX(dt_end_cli_work_week)
		FROM time_entries
	`).Scan(&s.TotalRecords, &s.MinWeekEnding, &s.MaxWeekEnding)
	if err != nil {
		return s, fmt.Errorf("failed to query data stats: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT year, COUNT(*) FROM time_entries
		GROUP BY year ORDER BY year DESC
	`)
	if err != nil {
		return s, fmt.Errorf("failed to query year counts: %w", err)
	}
	defer rows.Close()

	s.Years = []timeentry.YearCount{}
	for rows.Next() {
		var yc timeentry.YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return s, fmt.Errorf("failed to scan year count: %w", err)
		}
		s.Years = append(s.Years, yc)
	}

	return s, rows.Err()
}

// DeleteByYear implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) DeleteByYear(ctx context.Context, year int) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM time_entries WHERE year = $1", year)
	if err != nil {
		return 0, fmt.Errorf("failed to delete time entries for %d: %w", year, err)
	}
	return tag.RowsAffected(), nil
}

// BulkInsert implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) BulkInsert(ctx context.Context, entries []timeentry.TimeEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	n, err := q.CopyFrom(ctx, pgx.Identifier{"time_entries"}, copyColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]interface{}, error) {
			e := entries[i]
			return []interface{}{
				e.Year, e.OfficeName, e.Office, e.WeekEnding, e.WorkDate, e.DateRange,
				e.WeekNumber, e.WeekYear, e.ApplicantID, e.LastName, e.FirstName, e.FullName, e.EmployeeTypeID,
				e.ShiftNumber, e.Department, e.AllocationMethod, e.TimeStart, e.TimeEnd,
				e.RegHours, e.OTHours, e.DTHours, e.HolHours, e.TotalHours,
				e.ClockInLocal, e.ClockInTries, e.ClockInMethod,
				e.ClockOutLocal, e.ClockOutTries, e.ClockOutMethod, string(e.EntryType),
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy time entries: %w", err)
	}
	return n, nil
}

func NewTimeEntryRepository(db *database.DB) timeentry.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}
