package kpi

import (
	"strings"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
)

// ComplianceKPI is the compliance projection of a KPIResult.
type ComplianceKPI struct {
	TotalEntries        int         `json:"total_entries"`
	FingerCount         int         `json:"finger_count"`
	ProvisionalCount    int         `json:"provisional_count"`
	WriteInCount        int         `json:"write_in_count"`
	MissingCOCount      int         `json:"missing_co_count"`
	FingerRate          float64     `json:"finger_rate"`
	ProvisionalRate     float64     `json:"provisional_rate"`
	WriteInRate         float64     `json:"write_in_rate"`
	MissingCORate       float64     `json:"missing_co_rate"`
	ManualRate          float64     `json:"manual_rate"`
	BiometricCompliance float64     `json:"biometric_compliance"`
	AutoClockRate       float64     `json:"auto_clock_rate"`
	ExceptionRate       float64     `json:"exception_rate"`
	Status              StatusBlock `json:"status"`
}

// VolumeKPI is the volume projection of a KPIResult.
type VolumeKPI struct {
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
}

// EfficiencyKPI is the clock-attempt projection of a KPIResult.
type EfficiencyKPI struct {
	TotalEntries         int     `json:"total_entries"`
	AvgClockInTries      float64 `json:"avg_clock_in_tries"`
	AvgClockOutTries     float64 `json:"avg_clock_out_tries"`
	FirstTryClockInRate  float64 `json:"first_try_clock_in_rate"`
	FirstTryClockOutRate float64 `json:"first_try_clock_out_rate"`
	MultiTryRate         float64 `json:"multi_try_rate"`
}

func (r KPIResult) Compliance() ComplianceKPI {
	return ComplianceKPI{
		TotalEntries:        r.TotalEntries,
		FingerCount:         r.FingerCount,
		ProvisionalCount:    r.ProvisionalCount,
		WriteInCount:        r.WriteInCount,
		MissingCOCount:      r.MissingCOCount,
		FingerRate:          r.FingerRate,
		ProvisionalRate:     r.ProvisionalRate,
		WriteInRate:         r.WriteInRate,
		MissingCORate:       r.MissingCORate,
		ManualRate:          r.ManualRate,
		BiometricCompliance: r.BiometricCompliance,
		AutoClockRate:       r.AutoClockRate,
		ExceptionRate:       r.ExceptionRate,
		Status:              r.Status,
	}
}

func (r KPIResult) Volume() VolumeKPI {
	return VolumeKPI{
		TotalEntries:       r.TotalEntries,
		TotalHours:         r.TotalHours,
		TotalRegHours:      r.TotalRegHours,
		TotalOTHours:       r.TotalOTHours,
		TotalDTHours:       r.TotalDTHours,
		TotalHolHours:      r.TotalHolHours,
		UniqueEmployees:    r.UniqueEmployees,
		UniqueOffices:      r.UniqueOffices,
		UniqueWeeks:        r.UniqueWeeks,
		EntriesPerEmployee: r.EntriesPerEmployee,
		AvgHoursPerEntry:   r.AvgHoursPerEntry,
		AvgHoursPerEmpWeek: r.AvgHoursPerEmpWeek,
		OTPercentage:       r.OTPercentage,
	}
}

func (r KPIResult) Efficiency() EfficiencyKPI {
	return EfficiencyKPI{
		TotalEntries:         r.TotalEntries,
		AvgClockInTries:      r.AvgClockInTries,
		AvgClockOutTries:     r.AvgClockOutTries,
		FirstTryClockInRate:  r.FirstTryClockInRate,
		FirstTryClockOutRate: r.FirstTryClockOutRate,
		MultiTryRate:         r.MultiTryRate,
	}
}

// ShiftRequest scopes the by-shift breakdown to one department when set.
type ShiftRequest struct {
	Filter     timeentry.Filter
	Department string `json:"department"`
}

// EmployeeRequest pages through the by-employee breakdown.
type EmployeeRequest struct {
	Filter timeentry.Filter

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"` // applicant_id, full_name, total_entries, finger_rate, provisional_count
	SortOrder string `json:"sort_order"`

	// NeedsEnrollment keeps only employees flagged for re-enrollment.
	NeedsEnrollment bool `json:"needs_enrollment"`
}

var validEmployeeSortFields = []string{"applicant_id", "full_name", "total_entries", "finger_rate", "provisional_count"}

func (r *EmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := r.Filter.Validate(); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, ve...)
		}
	}

	if r.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit < 0 || r.Limit > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 1000",
		})
	}
	if r.Limit == 0 {
		r.Limit = 100
	}

	if r.SortBy == "" {
		r.SortBy = "applicant_id"
	} else if !validator.IsInSlice(r.SortBy, validEmployeeSortFields) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: " + strings.Join(validEmployeeSortFields, ", "),
		})
	}

	r.SortOrder = strings.ToLower(r.SortOrder)
	if r.SortOrder == "" {
		r.SortOrder = "asc"
	} else if r.SortOrder != "asc" && r.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be one of: asc, desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeListResponse struct {
	Employees  []EmployeeKPI `json:"employees"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// ClockBehaviorRequest bounds the problem employee list to Limit entries.
// A zero Limit falls back to the configured problem employee limit.
type ClockBehaviorRequest struct {
	Filter timeentry.Filter
	Limit  int `json:"limit"`
}

func (r *ClockBehaviorRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := r.Filter.Validate(); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, ve...)
		}
	}
	if r.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
