package timeentry

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
)

// Filter selects the entries an aggregation or listing runs over. Every field
// is optional; nil or empty fields do not restrict the result.
type Filter struct {
	Year    *int `json:"year,omitempty"`
	YearGTE *int `json:"year_gte,omitempty"`
	YearLTE *int `json:"year_lte,omitempty"`

	Office  *string  `json:"office,omitempty"` // case-insensitive exact match
	Offices []string `json:"offices,omitempty"`

	EntryType  *string  `json:"entry_type,omitempty"`
	EntryTypes []string `json:"entry_types,omitempty"`

	WeekEnding    *string `json:"week_ending,omitempty"`     // YYYY-MM-DD
	WeekEndingGTE *string `json:"week_ending_gte,omitempty"` // YYYY-MM-DD
	WeekEndingLTE *string `json:"week_ending_lte,omitempty"` // YYYY-MM-DD

	WeekNumber    *int `json:"week_number,omitempty"`
	WeekNumberGTE *int `json:"week_number_gte,omitempty"`
	WeekNumberLTE *int `json:"week_number_lte,omitempty"`
	WeekYear      *int `json:"week_year,omitempty"`
	WeekYearGTE   *int `json:"week_year_gte,omitempty"`
	WeekYearLTE   *int `json:"week_year_lte,omitempty"`

	Department  *string  `json:"department,omitempty"` // case-insensitive substring
	Departments []string `json:"departments,omitempty"`

	Shift       *string `json:"shift,omitempty"`
	ApplicantID *string `json:"applicant_id,omitempty"`
	FullName    *string `json:"full_name,omitempty"` // case-insensitive substring
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	checkYear := func(field string, v *int) {
		if v != nil && !validator.IsValidYear(*v) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s must be between 2000 and 2100", field),
			})
		}
	}
	checkYear("year", f.Year)
	checkYear("year_gte", f.YearGTE)
	checkYear("year_lte", f.YearLTE)
	checkYear("week_year", f.WeekYear)
	checkYear("week_year_gte", f.WeekYearGTE)
	checkYear("week_year_lte", f.WeekYearLTE)

	if f.YearGTE != nil && f.YearLTE != nil && *f.YearGTE > *f.YearLTE {
		errs = append(errs, validator.ValidationError{
			Field:   "year_lte",
			Message: "year_lte must not be before year_gte",
		})
	}

	checkWeek := func(field string, v *int) {
		if v != nil && !validator.IsValidISOWeek(*v) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s must be between 1 and 53", field),
			})
		}
	}
	checkWeek("week_number", f.WeekNumber)
	checkWeek("week_number_gte", f.WeekNumberGTE)
	checkWeek("week_number_lte", f.WeekNumberLTE)

	if f.WeekNumberGTE != nil && f.WeekNumberLTE != nil && *f.WeekNumberGTE > *f.WeekNumberLTE {
		errs = append(errs, validator.ValidationError{
			Field:   "week_number_lte",
			Message: "week_number_lte must not be before week_number_gte",
		})
	}

	var gte, lte time.Time
	checkDate := func(field string, v *string) time.Time {
		if v == nil || *v == "" {
			return time.Time{}
		}
		d, ok := validator.IsValidDate(*v)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s must be in YYYY-MM-DD format", field),
			})
		}
		return d
	}
	checkDate("week_ending", f.WeekEnding)
	gte = checkDate("week_ending_gte", f.WeekEndingGTE)
	lte = checkDate("week_ending_lte", f.WeekEndingLTE)
	if !gte.IsZero() && !lte.IsZero() && gte.After(lte) {
		errs = append(errs, validator.ValidationError{
			Field:   "week_ending_lte",
			Message: "week_ending_lte must be after week_ending_gte",
		})
	}

	if f.EntryType != nil {
		if _, ok := ParseEntryType(*f.EntryType); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "entry_type",
				Message: "entry_type must be one of: " + entryTypeList(),
			})
		}
	}
	for _, et := range f.EntryTypes {
		if _, ok := ParseEntryType(et); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "entry_types",
				Message: "entry_types must only contain: " + entryTypeList(),
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsEmpty reports whether the filter restricts nothing.
func (f Filter) IsEmpty() bool {
	return len(f.Params()) == 0
}

// Params lists the active filter values by their query-parameter name, in a
// stable order. Reports print it on their metadata sheet.
func (f Filter) Params() [][2]string {
	var out [][2]string
	addInt := func(name string, v *int) {
		if v != nil {
			out = append(out, [2]string{name, fmt.Sprint(*v)})
		}
	}
	addStr := func(name string, v *string) {
		if v != nil && *v != "" {
			out = append(out, [2]string{name, *v})
		}
	}
	addList := func(name string, v []string) {
		if len(v) > 0 {
			out = append(out, [2]string{name, strings.Join(v, ",")})
		}
	}

	addInt("year", f.Year)
	addInt("year_gte", f.YearGTE)
	addInt("year_lte", f.YearLTE)
	addStr("office", f.Office)
	addList("offices", f.Offices)
	addStr("entry_type", f.EntryType)
	addList("entry_types", f.EntryTypes)
	addStr("week_ending", f.WeekEnding)
	addStr("week_ending_gte", f.WeekEndingGTE)
	addStr("week_ending_lte", f.WeekEndingLTE)
	addInt("week_number", f.WeekNumber)
	addInt("week_number_gte", f.WeekNumberGTE)
	addInt("week_number_lte", f.WeekNumberLTE)
	addInt("week_year", f.WeekYear)
	addInt("week_year_gte", f.WeekYearGTE)
	addInt("week_year_lte", f.WeekYearLTE)
	addStr("department", f.Department)
	addList("departments", f.Departments)
	addStr("shift", f.Shift)
	addStr("applicant_id", f.ApplicantID)
	addStr("full_name", f.FullName)
	return out
}

func entryTypeList() string {
	names := make([]string, len(EntryTypes))
	for i, et := range EntryTypes {
		names[i] = string(et)
	}
	return strings.Join(names, ", ")
}

// ListRequest pages through the filtered entries.
type ListRequest struct {
	Filter Filter

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // week_ending, office, full_name, total_hours
	SortOrder string `json:"sort_order"` // asc, desc
}

var validSortFields = []string{"week_ending", "office", "full_name", "total_hours"}

func (r *ListRequest) Validate() error {
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

	if r.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if r.Limit == 0 {
		r.Limit = 100
	}
	if r.Limit > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 1000",
		})
	}

	if r.SortBy != "" {
		if !validator.IsInSlice(r.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(validSortFields, ", "),
			})
		}
	} else {
		r.SortBy = "week_ending"
	}

	if r.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(r.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		r.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EntryResponse is the list representation of an entry.
type EntryResponse struct {
	ID             int64   `json:"id"`
	Year           int     `json:"year"`
	Office         string  `json:"office"`
	FullName       string  `json:"full_name"`
	ApplicantID    string  `json:"applicant_id"`
	EntryType      string  `json:"entry_type"`
	WeekEnding     string  `json:"week_ending"`
	WeekNumber     int     `json:"week_number"`
	WeekYear       int     `json:"week_year"`
	Department     string  `json:"department"`
	ShiftNumber    string  `json:"shift_number"`
	TotalHours     float64 `json:"total_hours"`
	RegHours       float64 `json:"reg_hours"`
	OTHours        float64 `json:"ot_hours"`
	DTHours        float64 `json:"dt_hours"`
	HolHours       float64 `json:"hol_hours"`
	ClockInMethod  string  `json:"clock_in_method"`
	ClockInTries   int     `json:"clock_in_tries"`
	ClockOutMethod string  `json:"clock_out_method"`
	ClockOutTries  int     `json:"clock_out_tries"`
}

// ToResponse maps the entity to its list representation.
func (e TimeEntry) ToResponse() EntryResponse {
	weekEnding := ""
	if !e.WeekEnding.IsZero() {
		weekEnding = e.WeekEnding.Format("2006-01-02")
	}
	return EntryResponse{
		ID:             e.ID,
		Year:           e.Year,
		Office:         e.Office,
		FullName:       e.FullName,
		ApplicantID:    e.ApplicantID,
		EntryType:      string(e.EntryType),
		WeekEnding:     weekEnding,
		WeekNumber:     e.WeekNumber,
		WeekYear:       e.WeekYear,
		Department:     e.Department,
		ShiftNumber:    e.ShiftNumber,
		TotalHours:     e.TotalHours,
		RegHours:       e.RegHours,
		OTHours:        e.OTHours,
		DTHours:        e.DTHours,
		HolHours:       e.HolHours,
		ClockInMethod:  e.ClockInMethod,
		ClockInTries:   e.ClockInTries,
		ClockOutMethod: e.ClockOutMethod,
		ClockOutTries:  e.ClockOutTries,
	}
}

type ListResponse struct {
	Entries    []EntryResponse `json:"entries"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// SummaryStats is the raw aggregate the repository computes for a filter.
type SummaryStats struct {
	TotalEntries    int64
	TotalHours      float64
	TotalRegHours   float64
	TotalOTHours    float64
	UniqueEmployees int64
	UniqueOffices   int64
	MinWeekEnding   *time.Time
	MaxWeekEnding   *time.Time
	EntryTypeCounts map[string]int64
}

type SummaryResponse struct {
	TotalEntries       int64            `json:"total_entries"`
	TotalHours         float64          `json:"total_hours"`
	TotalRegHours      float64          `json:"total_reg_hours"`
	TotalOTHours       float64          `json:"total_ot_hours"`
	UniqueEmployees    int64            `json:"unique_employees"`
	UniqueOffices      int64            `json:"unique_offices"`
	DateRange          string           `json:"date_range"`
	EntryTypeBreakdown map[string]int64 `json:"entry_type_breakdown"`
}

type FilterOptions struct {
	Years       []int    `json:"years"`
	Offices     []string `json:"offices"`
	Departments []string `json:"departments"`
	EntryTypes  []string `json:"entry_types"`
	Weeks       []string `json:"weeks"`
}

// YearCount is the number of stored entries for one year.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// DataStats is what the repository knows about the stored dataset.
type DataStats struct {
	TotalRecords  int64
	MinWeekEnding *time.Time
	MaxWeekEnding *time.Time
	Years         []YearCount
}

// Data freshness levels, by age of the newest week ending.
const (
	FreshnessCurrent  = "current"
	FreshnessRecent   = "recent"
	FreshnessStale    = "stale"
	FreshnessOutdated = "outdated"
	FreshnessUnknown  = "unknown"
)

// Freshness grades how old the newest data is relative to now.
func Freshness(lastDataDate *time.Time, now time.Time) string {
	if lastDataDate == nil || lastDataDate.IsZero() {
		return FreshnessUnknown
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(lastDataDate.Year(), lastDataDate.Month(), lastDataDate.Day(), 0, 0, 0, 0, time.UTC)
	daysOld := int(today.Sub(last).Hours() / 24)
	switch {
	case daysOld <= 7:
		return FreshnessCurrent
	case daysOld <= 14:
		return FreshnessRecent
	case daysOld <= 30:
		return FreshnessStale
	default:
		return FreshnessOutdated
	}
}

type DataQualityResponse struct {
	TotalRecords   int64       `json:"total_records"`
	MinDate        *string     `json:"min_date"`
	MaxDate        *string     `json:"max_date"`
	DataFreshness  string      `json:"data_freshness"`
	LastETLRun     *string     `json:"last_etl_run"`
	LastETLStatus  *string     `json:"last_etl_status"`
	LastETLRecords int         `json:"last_etl_records"`
	YearsData      []YearCount `json:"years_data"`
}
