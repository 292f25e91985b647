package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/utils"
	"github.com/xuri/excelize/v2"
)

type field int

const (
	fieldYear field = iota
	fieldOfficeName
	fieldOffice
	fieldWeekEnding
	fieldWorkDate
	fieldDateRange
	fieldApplicantID
	fieldLastName
	fieldFirstName
	fieldFullName
	fieldEmployeeTypeID
	fieldShiftNumber
	fieldDepartment
	fieldAllocationMethod
	fieldTimeStart
	fieldTimeEnd
	fieldRegHours
	fieldOTHours
	fieldDTHours
	fieldHolHours
	fieldTotalHours
	fieldClockInLocal
	fieldClockInTries
	fieldClockInMethod
	fieldClockOutLocal
	fieldClockOutTries
	fieldClockOutMethod
	fieldEntryType
)

// headerFields maps normalised export headers to entry fields. Normalising
// drops case, spaces and underscores, so "XLC Operation", "XLC_Operation" and
// "xlc_operation" all resolve to the same field.
var headerFields = map[string]field{
	"year":             fieldYear,
	"ofcname":          fieldOfficeName,
	"xlcoperation":     fieldOffice,
	"office":           fieldOffice,
	"dtendcliworkweek": fieldWeekEnding,
	"weekending":       fieldWeekEnding,
	"workdate":         fieldWorkDate,
	"daterange":        fieldDateRange,
	"applicantid":      fieldApplicantID,
	"lastname":         fieldLastName,
	"firstname":        fieldFirstName,
	"fullname":         fieldFullName,
	"employeetypeid":   fieldEmployeeTypeID,
	"shiftnumber":      fieldShiftNumber,
	"budeptname":       fieldDepartment,
	"departmentname":   fieldDepartment,
	"department":       fieldDepartment,
	"allocationmethod": fieldAllocationMethod,
	"dttimestart":      fieldTimeStart,
	"timestart":        fieldTimeStart,
	"dttimeend":        fieldTimeEnd,
	"timeend":          fieldTimeEnd,
	"reghours":         fieldRegHours,
	"othours":          fieldOTHours,
	"dthours":          fieldDTHours,
	"holwrkhours":      fieldHolHours,
	"totalhours":       fieldTotalHours,
	"clockinlocal":     fieldClockInLocal,
	"clockintries":     fieldClockInTries,
	"clockinmethod":    fieldClockInMethod,
	"clockoutlocal":    fieldClockOutLocal,
	"clockouttries":    fieldClockOutTries,
	"clockoutmethod":   fieldClockOutMethod,
	"entrytype":        fieldEntryType,
}

var requiredFields = map[field]string{
	fieldWeekEnding:     "dtEndCliWorkWeek",
	fieldApplicantID:    "ApplicantID",
	fieldClockInMethod:  "ClockIn_Method",
	fieldClockOutMethod: "ClockOut_Method",
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// parseResult holds the entries read from one data file.
type parseResult struct {
	Entries []timeentry.TimeEntry
	// Mismatched counts rows whose supplied entry type disagreed with the
	// classification derived from their clock methods.
	Mismatched int
	// Skipped counts rows dropped for an unreadable week ending.
	Skipped int
}

// parse reads a CSV or XLSX stream into classified time entries.
func parse(r io.Reader, kind string) (parseResult, error) {
	var rows [][]string
	var err error

	switch kind {
	case etl.KindCSV:
		rows, err = readCSV(r)
	case etl.KindXLSX:
		rows, err = readXLSX(r)
	default:
		return parseResult{}, etl.ErrUnsupportedFileType
	}
	if err != nil {
		return parseResult{}, err
	}
	return parseRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, etl.ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func parseRows(rows [][]string) (parseResult, error) {
	if len(rows) < 2 {
		return parseResult{}, etl.ErrEmptyFile
	}

	columns := make(map[field]int)
	for i, h := range rows[0] {
		if f, ok := headerFields[normalizeHeader(h)]; ok {
			if _, seen := columns[f]; !seen {
				columns[f] = i
			}
		}
	}

	var missing []string
	for f, name := range requiredFields {
		if _, ok := columns[f]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return parseResult{}, fmt.Errorf("%w: %s", etl.ErrMissingColumns, strings.Join(missing, ", "))
	}

	var result parseResult
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		cell := func(f field) string {
			i, ok := columns[f]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		weekEnding, ok := parseDate(cell(fieldWeekEnding))
		if !ok {
			result.Skipped++
			continue
		}

		e := timeentry.TimeEntry{
			Year:             parseInt(cell(fieldYear)),
			OfficeName:       cell(fieldOfficeName),
			Office:           cell(fieldOffice),
			WeekEnding:       weekEnding,
			WorkDate:         parseDatePtr(cell(fieldWorkDate)),
			DateRange:        cell(fieldDateRange),
			ApplicantID:      cell(fieldApplicantID),
			LastName:         cell(fieldLastName),
			FirstName:        cell(fieldFirstName),
			FullName:         cell(fieldFullName),
			EmployeeTypeID:   cell(fieldEmployeeTypeID),
			ShiftNumber:      cell(fieldShiftNumber),
			Department:       cell(fieldDepartment),
			AllocationMethod: cell(fieldAllocationMethod),
			TimeStart:        parseDateTimePtr(cell(fieldTimeStart)),
			TimeEnd:          parseDateTimePtr(cell(fieldTimeEnd)),
			RegHours:         parseFloat(cell(fieldRegHours)),
			OTHours:          parseFloat(cell(fieldOTHours)),
			DTHours:          parseFloat(cell(fieldDTHours)),
			HolHours:         parseFloat(cell(fieldHolHours)),
			TotalHours:       parseFloat(cell(fieldTotalHours)),
			ClockInLocal:     cell(fieldClockInLocal),
			ClockInTries:     parseInt(cell(fieldClockInTries)),
			ClockInMethod:    cell(fieldClockInMethod),
			ClockOutLocal:    cell(fieldClockOutLocal),
			ClockOutTries:    parseInt(cell(fieldClockOutTries)),
			ClockOutMethod:   cell(fieldClockOutMethod),
		}
		e.WeekNumber, e.WeekYear = utils.ISOWeek(e.WeekEnding)
		e = e.Classified()

		if supplied, ok := timeentry.ParseEntryType(cell(fieldEntryType)); ok && supplied != e.EntryType {
			result.Mismatched++
		}
		result.Entries = append(result.Entries, e)
	}

	if len(result.Entries) == 0 {
		return result, etl.ErrEmptyFile
	}
	return result, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
	"2-Jan-06",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
}

// parseTime accepts the layouts seen in exports, plus spreadsheet serial
// numbers for cells excelize returns unformatted.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 1 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, bool) {
	t, ok := parseTime(s)
	if !ok {
		return time.Time{}, false
	}
	return utils.DateOnly(t), true
}

func parseDatePtr(s string) *time.Time {
	if t, ok := parseDate(s); ok {
		return &t
	}
	return nil
}

func parseDateTimePtr(s string) *time.Time {
	if t, ok := parseTime(s); ok {
		return &t
	}
	return nil
}

// parseFloat coerces a numeric cell; anything unreadable is 0.
func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseInt(s string) int {
	return int(parseFloat(s))
}

// yearOf picks the year for an entry: override, then the entry's own year
// column, then fallback, then the calendar year of its week ending.
func yearOf(e timeentry.TimeEntry, override, fallback *int) int {
	switch {
	case override != nil:
		return *override
	case e.Year != 0:
		return e.Year
	case fallback != nil:
		return *fallback
	}
	return e.WeekEnding.Year()
}
