package kpi

// KPIResult is the full metric set for one group of entries. Rates are
// percentages in [0, 100]. Every ratio with a zero denominator is 0.
type KPIResult struct {
	// Volume
	TotalEntries       int     `json:"total_entries"`
	TotalHours         float64 `json:"total_hours"`
	TotalRegHours      float64 `json:"total_reg_hours"`
	TotalOTHours       float64 `json:"total_ot_hours"`
	TotalDTHours       float64 `json:"total_dt_hours"`
	TotalHolHours      float64 `json:"total_hol_hours"`
	UniqueEmployees    int     `json:"unique_employees"`
	UniqueOffices      int     `json:"unique_offices"`
	UniqueWeeks        int     `json:"unique_weeks"`
	EntriesPerEmployee float64 `json:"entries_per_employee"`
	AvgHoursPerEntry   float64 `json:"avg_hours_per_entry"`
	AvgHoursPerEmpWeek float64 `json:"avg_hours_per_emp_week"`
	OTPercentage       float64 `json:"ot_percentage"`

	// Entry type counts
	FingerCount      int `json:"finger_count"`
	ProvisionalCount int `json:"provisional_count"`
	WriteInCount     int `json:"write_in_count"`
	MissingCOCount   int `json:"missing_co_count"`

	// Compliance
	FingerRate      float64 `json:"finger_rate"`
	ProvisionalRate float64 `json:"provisional_rate"`
	WriteInRate     float64 `json:"write_in_rate"`
	MissingCORate   float64 `json:"missing_co_rate"`
	// ManualRate duplicates WriteInRate and BiometricCompliance duplicates
	// FingerRate. Both are kept for API compatibility.
	ManualRate          float64 `json:"manual_rate"`
	BiometricCompliance float64 `json:"biometric_compliance"`
	AutoClockRate       float64 `json:"auto_clock_rate"`
	ExceptionRate       float64 `json:"exception_rate"`

	// Efficiency
	AvgClockInTries      float64 `json:"avg_clock_in_tries"`
	AvgClockOutTries     float64 `json:"avg_clock_out_tries"`
	FirstTryClockInRate  float64 `json:"first_try_clock_in_rate"`
	FirstTryClockOutRate float64 `json:"first_try_clock_out_rate"`
	MultiTryRate         float64 `json:"multi_try_rate"`

	Status StatusBlock `json:"status"`
}

type OfficeKPI struct {
	Office string `json:"office"`
	KPIResult
}

type WeekKPI struct {
	WeekYear    int    `json:"week_year"`
	WeekNumber  int    `json:"week_number"`
	WeekDisplay string `json:"week_display"` // Sunday of the ISO week, label only
	KPIResult
}

type DepartmentKPI struct {
	Department string `json:"department"`
	KPIResult
}

type ShiftKPI struct {
	Shift string `json:"shift"`
	KPIResult
}

// EmployeeKPI carries the identity of the employee, taken from their most
// recent week, alongside their metrics.
type EmployeeKPI struct {
	ApplicantID     string `json:"applicant_id"`
	FullName        string `json:"full_name"`
	Office          string `json:"office"`
	NeedsEnrollment bool   `json:"needs_enrollment"`
	KPIResult
}

// TrendPoint is one week of the compliance trend with changes against the
// previous week. Changes are nil for the first week.
type TrendPoint struct {
	WeekYear        int     `json:"week_year"`
	WeekNumber      int     `json:"week_number"`
	WeekDisplay     string  `json:"week_display"`
	TotalEntries    int     `json:"total_entries"`
	FingerRate      float64 `json:"finger_rate"`
	ProvisionalRate float64 `json:"provisional_rate"`
	WriteInRate     float64 `json:"write_in_rate"`
	MissingCORate   float64 `json:"missing_co_rate"`

	EntriesChange         *int     `json:"entries_change"`
	FingerRateChange      *float64 `json:"finger_rate_change"`
	ProvisionalRateChange *float64 `json:"provisional_rate_change"`
	WriteInRateChange     *float64 `json:"write_in_rate_change"`
	MissingCORateChange   *float64 `json:"missing_co_rate_change"`
}

// TriesBucket counts clock events that took a given number of attempts.
type TriesBucket struct {
	Tries      string  `json:"tries"` // "1".."4", "5+"
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ClockSummary struct {
	TotalEntries         int     `json:"total_entries"`
	ClockInWithTries     int     `json:"clock_in_with_tries"`
	ClockOutWithTries    int     `json:"clock_out_with_tries"`
	AvgClockInTries      float64 `json:"avg_clock_in_tries"`
	AvgClockOutTries     float64 `json:"avg_clock_out_tries"`
	FirstTryClockInRate  float64 `json:"first_try_clock_in_rate"`
	FirstTryClockOutRate float64 `json:"first_try_clock_out_rate"`
	MultiTryEntries      int     `json:"multi_try_entries"`
	MultiTryRate         float64 `json:"multi_try_rate"`
	ProblemEmployeeCount int     `json:"problem_employee_count"`
}

// ProblemEmployee is an employee with at least one multi-attempt clock event.
type ProblemEmployee struct {
	ApplicantID      string  `json:"applicant_id"`
	FullName         string  `json:"full_name"`
	Office           string  `json:"office"`
	TotalEntries     int     `json:"total_entries"`
	MultiTryCount    int     `json:"multi_try_count"`
	AvgClockInTries  float64 `json:"avg_clock_in_tries"`
	AvgClockOutTries float64 `json:"avg_clock_out_tries"`
	MaxClockInTries  int     `json:"max_clock_in_tries"`
	MaxClockOutTries int     `json:"max_clock_out_tries"`
}

type ClockBehavior struct {
	ClockIn          []TriesBucket     `json:"clock_in_distribution"`
	ClockOut         []TriesBucket     `json:"clock_out_distribution"`
	Summary          ClockSummary      `json:"summary"`
	ProblemEmployees []ProblemEmployee `json:"problem_employees"`
}
