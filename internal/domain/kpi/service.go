package kpi

import (
	"context"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
)

// KPIService computes compliance KPIs over filtered time entries. Results are
// computed on every call and never stored.
type KPIService interface {
	All(ctx context.Context, filter timeentry.Filter) (KPIResult, error)
	Compliance(ctx context.Context, filter timeentry.Filter) (ComplianceKPI, error)
	Volume(ctx context.Context, filter timeentry.Filter) (VolumeKPI, error)
	Efficiency(ctx context.Context, filter timeentry.Filter) (EfficiencyKPI, error)

	ByOffice(ctx context.Context, filter timeentry.Filter) ([]OfficeKPI, error)
	ByWeek(ctx context.Context, filter timeentry.Filter) ([]WeekKPI, error)
	Trends(ctx context.Context, filter timeentry.Filter) ([]TrendPoint, error)
	ByDepartment(ctx context.Context, filter timeentry.Filter) ([]DepartmentKPI, error)
	ByShift(ctx context.Context, req ShiftRequest) ([]ShiftKPI, error)
	ByEmployee(ctx context.Context, req EmployeeRequest) (EmployeeListResponse, error)
	ClockBehavior(ctx context.Context, req ClockBehaviorRequest) (ClockBehavior, error)

	// Thresholds returns the grading bands in effect
	Thresholds() Thresholds
}
