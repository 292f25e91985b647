package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/excel"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/utils"
)

const (
	enrollmentColumn = "Enrollment of Fingerprint Needed"
	dateLayout       = "2006-01-02"
)

// weekLabel formats a week ending as a column header such as "9-Nov".
func weekLabel(t time.Time) string {
	return t.Format("2-Jan")
}

func noData(name, message string) excel.Sheet {
	return excel.Sheet{
		Name:    name,
		Headers: []string{"No Data"},
		Rows:    [][]interface{}{{message}},
	}
}

func enrollmentFlag(t kpi.Thresholds, provisional int) string {
	if t.NeedsEnrollment(provisional) {
		return "Yes"
	}
	return ""
}

func filterByType(entries []timeentry.TimeEntry, et timeentry.EntryType) []timeentry.TimeEntry {
	var out []timeentry.TimeEntry
	for _, e := range entries {
		if e.EntryType == et {
			out = append(out, e)
		}
	}
	return out
}

// reportMeta describes the dataset for the metadata sheet.
type reportMeta struct {
	generatedAt time.Time
	year        int
	filters     [][2]string
}

func checkingSheet(entries []timeentry.TimeEntry, meta reportMeta) excel.Sheet {
	employees := make(map[string]struct{})
	offices := make(map[string]struct{})
	weeks := make(map[time.Time]struct{})
	var minDate, maxDate time.Time

	for _, e := range entries {
		if e.ApplicantID != "" {
			employees[e.ApplicantID] = struct{}{}
		}
		if e.Office != "" {
			offices[e.Office] = struct{}{}
		}
		weeks[e.WeekEnding] = struct{}{}
		if minDate.IsZero() || e.WeekEnding.Before(minDate) {
			minDate = e.WeekEnding
		}
		if e.WeekEnding.After(maxDate) {
			maxDate = e.WeekEnding
		}
	}

	dateOrNA := func(t time.Time) string {
		if t.IsZero() {
			return "N/A"
		}
		return t.Format(dateLayout)
	}

	rows := [][]interface{}{
		{"BSTT Compliance Report - File Information", ""},
		{"", ""},
		{"Generated:", meta.generatedAt.Format("2006-01-02 15:04:05")},
		{"Year:", meta.year},
		{"", ""},
		{"Data Range:", ""},
		{"Start Date:", dateOrNA(minDate)},
		{"End Date:", dateOrNA(maxDate)},
		{"", ""},
		{"Record Counts:", ""},
		{"Total Records:", len(entries)},
		{"Unique Employees:", len(employees)},
		{"Unique Offices:", len(offices)},
		{"Unique Weeks:", len(weeks)},
		{"", ""},
		{"Filters Applied:", ""},
	}
	for _, f := range meta.filters {
		rows = append(rows, []interface{}{"  " + f[0] + ":", f[1]})
	}
	if len(meta.filters) == 0 {
		rows = append(rows, []interface{}{"  None", ""})
	}

	return excel.Sheet{Name: "CheckingTheFile", Headers: []string{"Field", "Value"}, Rows: rows}
}

func directionsSheet(t kpi.Thresholds) excel.Sheet {
	num := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	rows := [][]interface{}{
		{"BSTT Compliance Report - Directions", ""},
		{"", ""},
		{"Sheet Descriptions:", ""},
		{"", ""},
		{"CheckingTheFile", "Report metadata and filter information"},
		{"Directions", "This sheet - instructions for using the report"},
		{"Data", "Consolidated time entry data with aggregations"},
		{"All", "Entry type pivot by employee - shows count of each entry type per employee"},
		{"Prov", "Weekly provisional tracking with enrollment status"},
		{"Write Ins", "Write-in entries tracking by employee"},
		{"Provisional", "Detailed list of employees with provisional entries"},
		{"[Office Name]", "Office-specific entry type analysis"},
		{"", ""},
		{"Entry Types:", ""},
		{string(timeentry.EntryTypeFinger), "Biometric (fingerprint) clock entry - Target: " + num(t.FingerGreen) + "%+"},
		{string(timeentry.EntryTypeProvisional), "Temporary entry pending fingerprint enrollment - Target: <" + num(t.ProvisionalGreen) + "%"},
		{string(timeentry.EntryTypeWriteIn), "Manual write-in entry - Target: <" + num(t.WriteInGreen) + "%"},
		{string(timeentry.EntryTypeMissingClockOut), "Missing clock-out entry - Target: <" + num(t.MissingCOGreen) + "%"},
		{"", ""},
		{enrollmentColumn + ":", ""},
		{"Yes", fmt.Sprintf("Employee has %d or more provisional entries and needs fingerprint enrollment", t.EnrollmentThreshold)},
		{"(blank)", "Employee does not require immediate enrollment action"},
		{"", ""},
		{"Color Coding:", ""},
		{"Green (" + num(t.FingerGreen) + "%+)", "Meeting finger rate target"},
		{"Yellow (" + num(t.FingerYellow) + "-" + num(t.FingerGreen) + "%)", "Below target but acceptable"},
		{"Red (<" + num(t.FingerYellow) + "%)", "Requires immediate attention"},
	}

	return excel.Sheet{Name: "Directions", Headers: []string{"Topic", "Description"}, Rows: rows}
}

type dataKey struct {
	office     string
	weekEnding time.Time
	applicant  string
	shift      string
	department string
	entryType  timeentry.EntryType
	fullName   string
}

func dataSheet(entries []timeentry.TimeEntry) excel.Sheet {
	if len(entries) == 0 {
		return noData("Data", "No records found")
	}

	type agg struct {
		hours float64
		count int
	}
	groups := make(map[dataKey]*agg)
	var keys []dataKey
	for _, e := range entries {
		k := dataKey{e.Office, e.WeekEnding, e.ApplicantID, e.ShiftNumber, e.Department, e.EntryType, e.FullName}
		g, ok := groups[k]
		if !ok {
			g = &agg{}
			groups[k] = g
			keys = append(keys, k)
		}
		g.hours += e.TotalHours
		g.count++
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.office != b.office {
			return a.office < b.office
		}
		if !a.weekEnding.Equal(b.weekEnding) {
			return a.weekEnding.Before(b.weekEnding)
		}
		if a.fullName != b.fullName {
			return a.fullName < b.fullName
		}
		if a.applicant != b.applicant {
			return a.applicant < b.applicant
		}
		return a.entryType < b.entryType
	})

	rows := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rows = append(rows, []interface{}{
			k.office, k.weekEnding.Format(dateLayout), k.applicant, k.shift, k.department,
			string(k.entryType), k.fullName, utils.Round(g.hours, 2), g.count,
			k.weekEnding.Weekday().String(), weekLabel(k.weekEnding),
		})
	}

	return excel.Sheet{
		Name: "Data",
		Headers: []string{
			"OfcName", "dtEndCliWorkWeek", "ApplicantID", "ShiftNumber", "BUDeptName",
			"EntryType", "FullName", "Total Hours", "TotalEntries", "weekday", "w-e",
		},
		Rows: rows,
	}
}

// typeCounts tallies entries per name for each entry type.
type typeCounts struct {
	names  []string
	counts map[string]map[timeentry.EntryType]int
}

func countByName(entries []timeentry.TimeEntry) typeCounts {
	tc := typeCounts{counts: make(map[string]map[timeentry.EntryType]int)}
	for _, e := range entries {
		c, ok := tc.counts[e.FullName]
		if !ok {
			c = make(map[timeentry.EntryType]int)
			tc.counts[e.FullName] = c
			tc.names = append(tc.names, e.FullName)
		}
		c[e.EntryType]++
	}
	return tc
}

func (tc typeCounts) total(name string, types []timeentry.EntryType) int {
	var n int
	for _, et := range types {
		n += tc.counts[name][et]
	}
	return n
}

// sortByTotalDesc orders names by total descending, then by name.
func sortByTotalDesc(names []string, total func(string) int) {
	sort.SliceStable(names, func(i, j int) bool {
		ti, tj := total(names[i]), total(names[j])
		if ti != tj {
			return ti > tj
		}
		return names[i] < names[j]
	})
}

func allSheet(entries []timeentry.TimeEntry) excel.Sheet {
	if len(entries) == 0 {
		return noData("All", "No records found")
	}

	tc := countByName(entries)
	total := func(name string) int { return tc.total(name, timeentry.EntryTypes) }
	sortByTotalDesc(tc.names, total)

	headers := []string{"Employee"}
	for _, et := range timeentry.EntryTypes {
		headers = append(headers, string(et))
	}
	headers = append(headers, "Grand Total")

	rows := make([][]interface{}, 0, len(tc.names))
	for _, name := range tc.names {
		row := []interface{}{name}
		for _, et := range timeentry.EntryTypes {
			row = append(row, tc.counts[name][et])
		}
		rows = append(rows, append(row, total(name)))
	}

	return excel.Sheet{Name: "All", Headers: headers, Rows: rows}
}

type officeEmployee struct {
	office   string
	fullName string
}

// weeklyPivot counts entries per office and employee for each week ending.
type weeklyPivot struct {
	weeks  []time.Time
	keys   []officeEmployee
	counts map[officeEmployee]map[time.Time]int
	totals map[officeEmployee]int
}

func pivotByWeek(entries []timeentry.TimeEntry) weeklyPivot {
	p := weeklyPivot{
		counts: make(map[officeEmployee]map[time.Time]int),
		totals: make(map[officeEmployee]int),
	}
	seenWeeks := make(map[time.Time]struct{})
	for _, e := range entries {
		k := officeEmployee{e.Office, e.FullName}
		c, ok := p.counts[k]
		if !ok {
			c = make(map[time.Time]int)
			p.counts[k] = c
			p.keys = append(p.keys, k)
		}
		c[e.WeekEnding]++
		p.totals[k]++
		if _, ok := seenWeeks[e.WeekEnding]; !ok {
			seenWeeks[e.WeekEnding] = struct{}{}
			p.weeks = append(p.weeks, e.WeekEnding)
		}
	}

	sort.Slice(p.weeks, func(i, j int) bool { return p.weeks[i].Before(p.weeks[j]) })
	sort.SliceStable(p.keys, func(i, j int) bool {
		a, b := p.keys[i], p.keys[j]
		if p.totals[a] != p.totals[b] {
			return p.totals[a] > p.totals[b]
		}
		if a.office != b.office {
			return a.office < b.office
		}
		return a.fullName < b.fullName
	})
	return p
}

func (p weeklyPivot) headers(extra ...string) []string {
	headers := []string{"OfcName", "FullName"}
	for _, w := range p.weeks {
		headers = append(headers, weekLabel(w))
	}
	return append(headers, extra...)
}

func (p weeklyPivot) row(k officeEmployee) []interface{} {
	row := []interface{}{k.office, k.fullName}
	for _, w := range p.weeks {
		row = append(row, p.counts[k][w])
	}
	return row
}

func provWeeklySheet(entries []timeentry.TimeEntry, t kpi.Thresholds) excel.Sheet {
	prov := filterByType(entries, timeentry.EntryTypeProvisional)
	if len(prov) == 0 {
		return noData("Prov", "No provisional entries found")
	}

	p := pivotByWeek(prov)
	rows := make([][]interface{}, 0, len(p.keys))
	for _, k := range p.keys {
		total := p.totals[k]
		avg := utils.Round(float64(total)/float64(len(p.weeks)), 1)
		rows = append(rows, append(p.row(k), total, avg, enrollmentFlag(t, total)))
	}

	return excel.Sheet{Name: "Prov", Headers: p.headers("Total", "Average", enrollmentColumn), Rows: rows}
}

func writeInsSheet(entries []timeentry.TimeEntry) excel.Sheet {
	writeIns := filterByType(entries, timeentry.EntryTypeWriteIn)
	if len(writeIns) == 0 {
		return noData("Write Ins", "No write-in entries found")
	}

	p := pivotByWeek(writeIns)
	rows := make([][]interface{}, 0, len(p.keys))
	for _, k := range p.keys {
		rows = append(rows, append(p.row(k), p.totals[k]))
	}

	return excel.Sheet{Name: "Write Ins", Headers: p.headers("Total"), Rows: rows}
}

func provisionalDetailSheet(entries []timeentry.TimeEntry, t kpi.Thresholds) excel.Sheet {
	prov := filterByType(entries, timeentry.EntryTypeProvisional)
	if len(prov) == 0 {
		return noData("Provisional", "No provisional entries found")
	}

	type key struct {
		office, fullName, applicant, department string
	}
	type agg struct {
		count int
		hours float64
	}
	groups := make(map[key]*agg)
	var keys []key
	for _, e := range prov {
		k := key{e.Office, e.FullName, e.ApplicantID, e.Department}
		g, ok := groups[k]
		if !ok {
			g = &agg{}
			groups[k] = g
			keys = append(keys, k)
		}
		g.count++
		g.hours += e.TotalHours
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := groups[keys[i]], groups[keys[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		if keys[i].office != keys[j].office {
			return keys[i].office < keys[j].office
		}
		return keys[i].fullName < keys[j].fullName
	})

	rows := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rows = append(rows, []interface{}{
			k.office, k.fullName, k.applicant, k.department,
			g.count, utils.Round(g.hours, 2), enrollmentFlag(t, g.count),
		})
	}

	return excel.Sheet{
		Name: "Provisional",
		Headers: []string{
			"Office", "Employee", "Employee ID", "Department",
			"Provisional Count", "Total Hours", enrollmentColumn,
		},
		Rows: rows,
	}
}

var nonFingerTypes = []timeentry.EntryType{
	timeentry.EntryTypeMissingClockOut,
	timeentry.EntryTypeProvisional,
	timeentry.EntryTypeWriteIn,
}

// officeSheets returns one sheet per non-empty office listing employees with
// at least one non-finger entry. Offices without such employees get no sheet.
func officeSheets(entries []timeentry.TimeEntry, t kpi.Thresholds) []excel.Sheet {
	byOffice := make(map[string][]timeentry.TimeEntry)
	var offices []string
	for _, e := range entries {
		if e.Office == "" {
			continue
		}
		if _, ok := byOffice[e.Office]; !ok {
			offices = append(offices, e.Office)
		}
		byOffice[e.Office] = append(byOffice[e.Office], e)
	}
	sort.Strings(offices)

	headers := []string{"Full Name"}
	for _, et := range nonFingerTypes {
		headers = append(headers, string(et))
	}
	headers = append(headers, "Grand Total", enrollmentColumn)

	var sheets []excel.Sheet
	for _, office := range offices {
		tc := countByName(byOffice[office])
		total := func(name string) int { return tc.total(name, nonFingerTypes) }
		sortByTotalDesc(tc.names, total)

		var rows [][]interface{}
		for _, name := range tc.names {
			gt := total(name)
			if gt == 0 {
				continue
			}
			row := []interface{}{name}
			for _, et := range nonFingerTypes {
				row = append(row, tc.counts[name][et])
			}
			rows = append(rows, append(row, gt, enrollmentFlag(t, tc.counts[name][timeentry.EntryTypeProvisional])))
		}
		if len(rows) == 0 {
			continue
		}
		sheets = append(sheets, excel.Sheet{Name: office, Headers: headers, Rows: rows})
	}
	return sheets
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func summarySheet(r kpi.KPIResult, meta reportMeta) excel.Sheet {
	rows := [][]interface{}{
		{"BSTT Compliance Dashboard - Executive Summary", "", ""},
		{"Generated:", meta.generatedAt.Format("2006-01-02 15:04"), ""},
		{"Year:", meta.year, ""},
		{"", "", ""},
		{"COMPLIANCE METRICS", "", ""},
		{"Finger Rate", pct(r.FingerRate), string(r.Status.FingerRate)},
		{"Provisional Rate", pct(r.ProvisionalRate), string(r.Status.ProvisionalRate)},
		{"Write-In Rate", pct(r.WriteInRate), string(r.Status.WriteInRate)},
		{"Missing C/O Rate", pct(r.MissingCORate), string(r.Status.MissingCORate)},
		{"Manual Entry Rate", pct(r.ManualRate), ""},
		{"", "", ""},
		{"VOLUME METRICS", "", ""},
		{"Total Entries", r.TotalEntries, ""},
		{"Total Hours", r.TotalHours, ""},
		{"Unique Employees", r.UniqueEmployees, ""},
		{"Unique Offices", r.UniqueOffices, ""},
		{"Weeks Covered", r.UniqueWeeks, ""},
		{"", "", ""},
		{"EFFICIENCY METRICS", "", ""},
		{"First-Try Clock-In Rate", pct(r.FirstTryClockInRate), ""},
		{"First-Try Clock-Out Rate", pct(r.FirstTryClockOutRate), ""},
		{"Avg Clock-In Tries", r.AvgClockInTries, ""},
		{"Avg Clock-Out Tries", r.AvgClockOutTries, ""},
	}
	return excel.Sheet{Name: "Summary", Headers: []string{"Metric", "Value", "Status"}, Rows: rows}
}

func weeklyTrendsSheet(weeks []kpi.WeekKPI) excel.Sheet {
	if len(weeks) == 0 {
		return noData("Weekly Trends", "No records found")
	}

	rows := make([][]interface{}, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, []interface{}{
			w.WeekDisplay, w.WeekYear, w.WeekNumber, w.TotalEntries,
			w.FingerRate, w.ProvisionalRate, w.TotalHours, w.UniqueEmployees,
		})
	}
	return excel.Sheet{
		Name: "Weekly Trends",
		Headers: []string{
			"Week", "Week Year", "Week Number", "Entries",
			"Finger %", "Provisional %", "Total Hours", "Employees",
		},
		Rows: rows,
	}
}
