package kpi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/metrics"
)

type KPIServiceImpl struct {
	timeentry.TimeEntryRepository
	calc                 *Calculator
	problemEmployeeLimit int
}

func NewKPIService(repo timeentry.TimeEntryRepository, calc *Calculator, problemEmployeeLimit int) kpi.KPIService {
	return &KPIServiceImpl{
		TimeEntryRepository:  repo,
		calc:                 calc,
		problemEmployeeLimit: problemEmployeeLimit,
	}
}

// load fetches the filtered entries and reclassifies them from their method codes.
func (s *KPIServiceImpl) load(ctx context.Context, filter timeentry.Filter) ([]timeentry.TimeEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}
	for i := range entries {
		entries[i] = entries[i].Classified()
	}
	return entries, nil
}

// compute loads entries and runs fn over them, recording metrics for grouping.
func compute[T any](ctx context.Context, s *KPIServiceImpl, grouping string, filter timeentry.Filter, fn func([]timeentry.TimeEntry) T) (T, error) {
	started := time.Now()
	var zero T

	entries, err := s.load(ctx, filter)
	if err != nil {
		return zero, err
	}
	result := fn(entries)

	metrics.ObserveKPI(grouping, started, len(entries))
	slog.DebugContext(ctx, "kpi computed",
		"grouping", grouping,
		"entries", len(entries),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}

// All implements kpi.KPIService.
func (s *KPIServiceImpl) All(ctx context.Context, filter timeentry.Filter) (kpi.KPIResult, error) {
	return compute(ctx, s, "all", filter, s.calc.Aggregate)
}

// Compliance implements kpi.KPIService.
func (s *KPIServiceImpl) Compliance(ctx context.Context, filter timeentry.Filter) (kpi.ComplianceKPI, error) {
	r, err := compute(ctx, s, "compliance", filter, s.calc.Aggregate)
	return r.Compliance(), err
}

// Volume implements kpi.KPIService.
func (s *KPIServiceImpl) Volume(ctx context.Context, filter timeentry.Filter) (kpi.VolumeKPI, error) {
	r, err := compute(ctx, s, "volume", filter, s.calc.Aggregate)
	return r.Volume(), err
}

// Efficiency implements kpi.KPIService.
func (s *KPIServiceImpl) Efficiency(ctx context.Context, filter timeentry.Filter) (kpi.EfficiencyKPI, error) {
	r, err := compute(ctx, s, "efficiency", filter, s.calc.Aggregate)
	return r.Efficiency(), err
}

// ByOffice implements kpi.KPIService.
func (s *KPIServiceImpl) ByOffice(ctx context.Context, filter timeentry.Filter) ([]kpi.OfficeKPI, error) {
	return compute(ctx, s, "by_office", filter, s.calc.ByOffice)
}

// ByWeek implements kpi.KPIService.
func (s *KPIServiceImpl) ByWeek(ctx context.Context, filter timeentry.Filter) ([]kpi.WeekKPI, error) {
	return compute(ctx, s, "by_week", filter, s.calc.ByWeek)
}

// Trends implements kpi.KPIService.
func (s *KPIServiceImpl) Trends(ctx context.Context, filter timeentry.Filter) ([]kpi.TrendPoint, error) {
	return compute(ctx, s, "trends", filter, s.calc.Trends)
}

// ByDepartment implements kpi.KPIService.
func (s *KPIServiceImpl) ByDepartment(ctx context.Context, filter timeentry.Filter) ([]kpi.DepartmentKPI, error) {
	return compute(ctx, s, "by_department", filter, s.calc.ByDepartment)
}

// ByShift implements kpi.KPIService.
func (s *KPIServiceImpl) ByShift(ctx context.Context, req kpi.ShiftRequest) ([]kpi.ShiftKPI, error) {
	return compute(ctx, s, "by_shift", req.Filter, func(entries []timeentry.TimeEntry) []kpi.ShiftKPI {
		return s.calc.ByShift(entries, req.Department)
	})
}

// ByEmployee implements kpi.KPIService.
func (s *KPIServiceImpl) ByEmployee(ctx context.Context, req kpi.EmployeeRequest) (kpi.EmployeeListResponse, error) {
	if err := req.Validate(); err != nil {
		return kpi.EmployeeListResponse{}, err
	}

	employees, err := compute(ctx, s, "by_employee", req.Filter, s.calc.ByEmployee)
	if err != nil {
		return kpi.EmployeeListResponse{}, err
	}

	if req.NeedsEnrollment {
		flagged := employees[:0]
		for _, e := range employees {
			if e.NeedsEnrollment {
				flagged = append(flagged, e)
			}
		}
		employees = flagged
	}

	sortEmployees(employees, req.SortBy, req.SortOrder == "desc")

	total := len(employees)
	start := (req.Page - 1) * req.Limit
	end := start + req.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	totalPages := 0
	if req.Limit > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}

	return kpi.EmployeeListResponse{
		Employees:  employees[start:end],
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

func sortEmployees(employees []kpi.EmployeeKPI, sortBy string, desc bool) {
	less := func(a, b kpi.EmployeeKPI) bool {
		switch sortBy {
		case "full_name":
			if !strings.EqualFold(a.FullName, b.FullName) {
				return strings.ToLower(a.FullName) < strings.ToLower(b.FullName)
			}
		case "total_entries":
			if a.TotalEntries != b.TotalEntries {
				return a.TotalEntries < b.TotalEntries
			}
		case "finger_rate":
			if a.FingerRate != b.FingerRate {
				return a.FingerRate < b.FingerRate
			}
		case "provisional_count":
			if a.ProvisionalCount != b.ProvisionalCount {
				return a.ProvisionalCount < b.ProvisionalCount
			}
		}
		return a.ApplicantID < b.ApplicantID
	}
	sort.SliceStable(employees, func(i, j int) bool {
		if desc {
			return less(employees[j], employees[i])
		}
		return less(employees[i], employees[j])
	})
}

// ClockBehavior implements kpi.KPIService.
func (s *KPIServiceImpl) ClockBehavior(ctx context.Context, req kpi.ClockBehaviorRequest) (kpi.ClockBehavior, error) {
	if err := req.Validate(); err != nil {
		return kpi.ClockBehavior{}, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.problemEmployeeLimit
	}
	return compute(ctx, s, "clock_behavior", req.Filter, func(entries []timeentry.TimeEntry) kpi.ClockBehavior {
		return s.calc.ClockBehavior(entries, limit)
	})
}

// Thresholds implements kpi.KPIService.
func (s *KPIServiceImpl) Thresholds() kpi.Thresholds {
	return s.calc.Thresholds()
}
