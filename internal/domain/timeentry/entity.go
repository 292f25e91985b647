package timeentry

import (
	"time"
)

// TimeEntry is one employee's work-week record for one office, as delivered by
// the time-clock export. Entries are immutable once imported.
type TimeEntry struct {
	ID   int64
	Year int

	// Office
	OfficeName string
	Office     string

	// Period
	WeekEnding time.Time
	WorkDate   *time.Time
	DateRange  string
	WeekNumber int
	WeekYear   int

	// Employee
	ApplicantID    string
	LastName       string
	FirstName      string
	FullName       string
	EmployeeTypeID string

	// Shift / department
	ShiftNumber      string
	Department       string
	AllocationMethod string

	TimeStart *time.Time
	TimeEnd   *time.Time

	// Hours
	RegHours   float64
	OTHours    float64
	DTHours    float64
	HolHours   float64
	TotalHours float64

	// Clock behavior
	ClockInLocal   string
	ClockInTries   int
	ClockInMethod  string
	ClockOutLocal  string
	ClockOutTries  int
	ClockOutMethod string

	EntryType EntryType
}

// WeekKey identifies an ISO week. Offices that close their week on Saturday
// and offices that close it on Sunday share the same key.
type WeekKey struct {
	Year   int
	Number int
}

// Less orders week keys chronologically.
func (k WeekKey) Less(other WeekKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Number < other.Number
}

// Week returns the ISO week key of the entry.
func (e TimeEntry) Week() WeekKey {
	return WeekKey{Year: e.WeekYear, Number: e.WeekNumber}
}

// Classified returns a copy of e with EntryType derived from its method codes.
func (e TimeEntry) Classified() TimeEntry {
	e.EntryType = Classify(e.ClockInMethod, e.ClockOutMethod)
	return e
}

// HasClockInTries reports whether a usable clock-in attempt count exists.
func (e TimeEntry) HasClockInTries() bool {
	return e.ClockInTries > 0
}

// HasClockOutTries reports whether a usable clock-out attempt count exists.
// Entries without a clock-out never carry a meaningful count.
func (e TimeEntry) HasClockOutTries() bool {
	return e.ClockOutTries > 0 && e.EntryType != EntryTypeMissingClockOut
}

// IsMultiTry reports whether either clock event needed more than one attempt.
// Clock-out attempts count even when the entry has no clock-out method.
func (e TimeEntry) IsMultiTry() bool {
	return e.ClockInTries > 1 || e.ClockOutTries > 1
}
