package kpi

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/utils"
)

// Calculator computes KPI results from classified entries. It holds no state
// besides its thresholds and is safe for concurrent use.
type Calculator struct {
	thresholds kpi.Thresholds
}

func NewCalculator(thresholds kpi.Thresholds) *Calculator {
	return &Calculator{thresholds: thresholds}
}

func (c *Calculator) Thresholds() kpi.Thresholds {
	return c.thresholds
}

// accumulator gathers one group's sums in a single pass.
type accumulator struct {
	n int

	totalHours, regHours, otHours, dtHours, holHours float64

	finger, provisional, writeIn, missingCO int

	employees map[string]struct{}
	offices   map[string]struct{}
	weeks     map[timeentry.WeekKey]struct{}

	clockInSum, clockInPresent, clockInFirst    int
	clockOutSum, clockOutPresent, clockOutFirst int
	multiTry                                    int
}

func newAccumulator() *accumulator {
	return &accumulator{
		employees: make(map[string]struct{}),
		offices:   make(map[string]struct{}),
		weeks:     make(map[timeentry.WeekKey]struct{}),
	}
}

func (a *accumulator) add(e timeentry.TimeEntry) {
	a.n++

	a.totalHours += e.TotalHours
	a.regHours += e.RegHours
	a.otHours += e.OTHours
	a.dtHours += e.DTHours
	a.holHours += e.HolHours

	switch e.EntryType {
	case timeentry.EntryTypeFinger:
		a.finger++
	case timeentry.EntryTypeProvisional:
		a.provisional++
	case timeentry.EntryTypeWriteIn:
		a.writeIn++
	case timeentry.EntryTypeMissingClockOut:
		a.missingCO++
	}

	if e.ApplicantID != "" {
		a.employees[e.ApplicantID] = struct{}{}
	}
	if e.Office != "" {
		a.offices[e.Office] = struct{}{}
	}
	if wk := e.Week(); wk.Number != 0 {
		a.weeks[wk] = struct{}{}
	}

	if e.HasClockInTries() {
		a.clockInPresent++
		a.clockInSum += e.ClockInTries
		if e.ClockInTries == 1 {
			a.clockInFirst++
		}
	}
	if e.HasClockOutTries() {
		a.clockOutPresent++
		a.clockOutSum += e.ClockOutTries
		if e.ClockOutTries == 1 {
			a.clockOutFirst++
		}
	}
	if e.IsMultiTry() {
		a.multiTry++
	}
}

func (a *accumulator) result(t kpi.Thresholds) kpi.KPIResult {
	n := float64(a.n)
	emps := len(a.employees)
	weeks := len(a.weeks)

	fingerRate := utils.Percent(float64(a.finger), n)
	writeInRate := utils.Percent(float64(a.writeIn), n)

	r := kpi.KPIResult{
		TotalEntries:       a.n,
		TotalHours:         utils.Round(a.totalHours, 2),
		TotalRegHours:      utils.Round(a.regHours, 2),
		TotalOTHours:       utils.Round(a.otHours, 2),
		TotalDTHours:       utils.Round(a.dtHours, 2),
		TotalHolHours:      utils.Round(a.holHours, 2),
		UniqueEmployees:    emps,
		UniqueOffices:      len(a.offices),
		UniqueWeeks:        weeks,
		EntriesPerEmployee: utils.Round(utils.SafeDiv(n, float64(emps)), 2),
		AvgHoursPerEntry:   utils.Round(utils.SafeDiv(a.totalHours, n), 2),
		OTPercentage:       utils.Round(utils.Percent(a.otHours, a.totalHours), 1),

		FingerCount:      a.finger,
		ProvisionalCount: a.provisional,
		WriteInCount:     a.writeIn,
		MissingCOCount:   a.missingCO,

		FingerRate:          utils.Round(fingerRate, 1),
		ProvisionalRate:     utils.Round(utils.Percent(float64(a.provisional), n), 2),
		WriteInRate:         utils.Round(writeInRate, 1),
		MissingCORate:       utils.Round(utils.Percent(float64(a.missingCO), n), 1),
		ManualRate:          utils.Round(writeInRate, 1),
		BiometricCompliance: utils.Round(fingerRate, 1),
		AutoClockRate:       utils.Round(utils.Percent(float64(a.finger+a.provisional), n), 1),

		AvgClockInTries:      utils.Round(utils.SafeDiv(float64(a.clockInSum), float64(a.clockInPresent)), 2),
		AvgClockOutTries:     utils.Round(utils.SafeDiv(float64(a.clockOutSum), float64(a.clockOutPresent)), 2),
		FirstTryClockInRate:  utils.Round(utils.Percent(float64(a.clockInFirst), float64(a.clockInPresent)), 1),
		FirstTryClockOutRate: utils.Round(utils.Percent(float64(a.clockOutFirst), float64(a.clockOutPresent)), 1),
		MultiTryRate:         utils.Round(utils.Percent(float64(a.multiTry), n), 1),
	}

	if emps > 0 && weeks > 0 {
		r.AvgHoursPerEmpWeek = utils.Round(a.totalHours/float64(emps*weeks), 2)
	}
	if a.n > 0 {
		r.ExceptionRate = utils.Round(100-fingerRate, 1)
		r.Status = t.Grade(r)
	}
	return r
}

// Aggregate computes one result over every entry.
func (c *Calculator) Aggregate(entries []timeentry.TimeEntry) kpi.KPIResult {
	acc := newAccumulator()
	for _, e := range entries {
		acc.add(e)
	}
	return acc.result(c.thresholds)
}

// groupBy partitions entries by key and returns the keys in first-seen order.
func groupBy(entries []timeentry.TimeEntry, key func(timeentry.TimeEntry) string) ([]string, map[string]*accumulator) {
	var keys []string
	groups := make(map[string]*accumulator)
	for _, e := range entries {
		k := key(e)
		acc, ok := groups[k]
		if !ok {
			acc = newAccumulator()
			groups[k] = acc
			keys = append(keys, k)
		}
		acc.add(e)
	}
	return keys, groups
}

// ByOffice returns one result per office, ordered by office name.
func (c *Calculator) ByOffice(entries []timeentry.TimeEntry) []kpi.OfficeKPI {
	keys, groups := groupBy(entries, func(e timeentry.TimeEntry) string { return e.Office })
	sort.Strings(keys)

	out := make([]kpi.OfficeKPI, 0, len(keys))
	for _, k := range keys {
		out = append(out, kpi.OfficeKPI{Office: k, KPIResult: groups[k].result(c.thresholds)})
	}
	return out
}

// ByWeek returns one result per ISO week in chronological order. Entries from
// Saturday-ending and Sunday-ending offices in the same week share a result.
func (c *Calculator) ByWeek(entries []timeentry.TimeEntry) []kpi.WeekKPI {
	var keys []timeentry.WeekKey
	groups := make(map[timeentry.WeekKey]*accumulator)
	for _, e := range entries {
		k := e.Week()
		acc, ok := groups[k]
		if !ok {
			acc = newAccumulator()
			groups[k] = acc
			keys = append(keys, k)
		}
		acc.add(e)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]kpi.WeekKPI, 0, len(keys))
	for _, k := range keys {
		display := ""
		if d := utils.WeekDisplayDate(k.Year, k.Number); !d.IsZero() {
			display = d.Format("2006-01-02")
		}
		out = append(out, kpi.WeekKPI{
			WeekYear:    k.Year,
			WeekNumber:  k.Number,
			WeekDisplay: display,
			KPIResult:   groups[k].result(c.thresholds),
		})
	}
	return out
}

// ByDepartment returns one result per department, ordered by name.
func (c *Calculator) ByDepartment(entries []timeentry.TimeEntry) []kpi.DepartmentKPI {
	keys, groups := groupBy(entries, func(e timeentry.TimeEntry) string { return e.Department })
	sort.Strings(keys)

	out := make([]kpi.DepartmentKPI, 0, len(keys))
	for _, k := range keys {
		out = append(out, kpi.DepartmentKPI{Department: k, KPIResult: groups[k].result(c.thresholds)})
	}
	return out
}

// ByShift returns one result per shift. A non-empty department keeps only
// entries of that department (case-insensitive).
func (c *Calculator) ByShift(entries []timeentry.TimeEntry, department string) []kpi.ShiftKPI {
	department = strings.TrimSpace(department)
	if department != "" {
		scoped := make([]timeentry.TimeEntry, 0, len(entries))
		for _, e := range entries {
			if strings.EqualFold(e.Department, department) {
				scoped = append(scoped, e)
			}
		}
		entries = scoped
	}

	keys, groups := groupBy(entries, func(e timeentry.TimeEntry) string { return e.ShiftNumber })
	sort.Strings(keys)

	out := make([]kpi.ShiftKPI, 0, len(keys))
	for _, k := range keys {
		out = append(out, kpi.ShiftKPI{Shift: k, KPIResult: groups[k].result(c.thresholds)})
	}
	return out
}

// identity tracks the name and office of an employee's most recent week.
type identity struct {
	week     timeentry.WeekKey
	fullName string
	office   string
	seen     bool
}

func (id *identity) observe(e timeentry.TimeEntry) {
	if !id.seen || !e.Week().Less(id.week) {
		id.week = e.Week()
		id.fullName = e.FullName
		id.office = e.Office
		id.seen = true
	}
}

// ByEmployee returns one result per applicant, ordered by applicant id.
func (c *Calculator) ByEmployee(entries []timeentry.TimeEntry) []kpi.EmployeeKPI {
	ids := make(map[string]*identity)
	keys, groups := groupBy(entries, func(e timeentry.TimeEntry) string {
		id, ok := ids[e.ApplicantID]
		if !ok {
			id = &identity{}
			ids[e.ApplicantID] = id
		}
		id.observe(e)
		return e.ApplicantID
	})
	sort.Strings(keys)

	out := make([]kpi.EmployeeKPI, 0, len(keys))
	for _, k := range keys {
		r := groups[k].result(c.thresholds)
		out = append(out, kpi.EmployeeKPI{
			ApplicantID:     k,
			FullName:        ids[k].fullName,
			Office:          ids[k].office,
			NeedsEnrollment: c.thresholds.NeedsEnrollment(r.ProvisionalCount),
			KPIResult:       r,
		})
	}
	return out
}

// Trends returns the weekly compliance series with week-over-week changes.
func (c *Calculator) Trends(entries []timeentry.TimeEntry) []kpi.TrendPoint {
	weeks := c.ByWeek(entries)
	out := make([]kpi.TrendPoint, 0, len(weeks))
	for i, w := range weeks {
		p := kpi.TrendPoint{
			WeekYear:        w.WeekYear,
			WeekNumber:      w.WeekNumber,
			WeekDisplay:     w.WeekDisplay,
			TotalEntries:    w.TotalEntries,
			FingerRate:      w.FingerRate,
			ProvisionalRate: w.ProvisionalRate,
			WriteInRate:     w.WriteInRate,
			MissingCORate:   w.MissingCORate,
		}
		if i > 0 {
			prev := weeks[i-1]
			diff := w.TotalEntries - prev.TotalEntries
			p.EntriesChange = &diff
			p.FingerRateChange = delta(w.FingerRate, prev.FingerRate, 1)
			p.ProvisionalRateChange = delta(w.ProvisionalRate, prev.ProvisionalRate, 2)
			p.WriteInRateChange = delta(w.WriteInRate, prev.WriteInRate, 1)
			p.MissingCORateChange = delta(w.MissingCORate, prev.MissingCORate, 1)
		}
		out = append(out, p)
	}
	return out
}

func delta(cur, prev float64, places int) *float64 {
	d := utils.Round(cur-prev, places)
	return &d
}

var bucketLabels = []string{"1", "2", "3", "4", "5+"}

func bucketIndex(tries int) int {
	if tries >= len(bucketLabels) {
		return len(bucketLabels) - 1
	}
	return tries - 1
}

func buckets(counts []int, total int) []kpi.TriesBucket {
	out := make([]kpi.TriesBucket, len(bucketLabels))
	for i, label := range bucketLabels {
		out[i] = kpi.TriesBucket{
			Tries:      label,
			Count:      counts[i],
			Percentage: utils.Round(utils.Percent(float64(counts[i]), float64(total)), 1),
		}
	}
	return out
}

type problemAcc struct {
	id                         identity
	entries, multi             int
	inSum, inPresent, inMax    int
	outSum, outPresent, outMax int
	flagged                    bool
}

// ClockBehavior computes the attempt distributions and the problem employee
// list, ordered by multi-try count descending then applicant id. A positive
// limit truncates the list; the summary still counts every problem employee.
func (c *Calculator) ClockBehavior(entries []timeentry.TimeEntry, limit int) kpi.ClockBehavior {
	acc := newAccumulator()
	inCounts := make([]int, len(bucketLabels))
	outCounts := make([]int, len(bucketLabels))
	employees := make(map[string]*problemAcc)

	for _, e := range entries {
		acc.add(e)

		p, ok := employees[e.ApplicantID]
		if !ok {
			p = &problemAcc{}
			employees[e.ApplicantID] = p
		}
		p.id.observe(e)
		p.entries++

		if e.HasClockInTries() {
			inCounts[bucketIndex(e.ClockInTries)]++
			p.inSum += e.ClockInTries
			p.inPresent++
			p.inMax = max(p.inMax, e.ClockInTries)
			if e.ClockInTries > 1 {
				p.flagged = true
			}
		}
		if e.ClockOutTries > 1 {
			p.flagged = true
		}
		if e.HasClockOutTries() {
			outCounts[bucketIndex(e.ClockOutTries)]++
			p.outSum += e.ClockOutTries
			p.outPresent++
			p.outMax = max(p.outMax, e.ClockOutTries)
		}
		if e.IsMultiTry() {
			p.multi++
		}
	}

	problems := make([]kpi.ProblemEmployee, 0)
	for applicantID, p := range employees {
		if !p.flagged {
			continue
		}
		problems = append(problems, kpi.ProblemEmployee{
			ApplicantID:      applicantID,
			FullName:         p.id.fullName,
			Office:           p.id.office,
			TotalEntries:     p.entries,
			MultiTryCount:    p.multi,
			AvgClockInTries:  utils.Round(utils.SafeDiv(float64(p.inSum), float64(p.inPresent)), 2),
			AvgClockOutTries: utils.Round(utils.SafeDiv(float64(p.outSum), float64(p.outPresent)), 2),
			MaxClockInTries:  p.inMax,
			MaxClockOutTries: p.outMax,
		})
	}
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].MultiTryCount != problems[j].MultiTryCount {
			return problems[i].MultiTryCount > problems[j].MultiTryCount
		}
		return problems[i].ApplicantID < problems[j].ApplicantID
	})
	problemCount := len(problems)
	if limit > 0 && len(problems) > limit {
		problems = problems[:limit]
	}

	r := acc.result(c.thresholds)
	return kpi.ClockBehavior{
		ClockIn:  buckets(inCounts, acc.clockInPresent),
		ClockOut: buckets(outCounts, acc.clockOutPresent),
		Summary: kpi.ClockSummary{
			TotalEntries:         r.TotalEntries,
			ClockInWithTries:     acc.clockInPresent,
			ClockOutWithTries:    acc.clockOutPresent,
			AvgClockInTries:      r.AvgClockInTries,
			AvgClockOutTries:     r.AvgClockOutTries,
			FirstTryClockInRate:  r.FirstTryClockInRate,
			FirstTryClockOutRate: r.FirstTryClockOutRate,
			MultiTryEntries:      acc.multiTry,
			MultiTryRate:         r.MultiTryRate,
			ProblemEmployeeCount: problemCount,
		},
		ProblemEmployees: problems,
	}
}
