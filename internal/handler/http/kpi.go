package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/handler/http/response"
)

type KPIHandler interface {
	All(w http.ResponseWriter, r *http.Request)
	Compliance(w http.ResponseWriter, r *http.Request)
	Volume(w http.ResponseWriter, r *http.Request)
	Efficiency(w http.ResponseWriter, r *http.Request)
	ByOffice(w http.ResponseWriter, r *http.Request)
	ByWeek(w http.ResponseWriter, r *http.Request)
	Trends(w http.ResponseWriter, r *http.Request)
	ByDepartment(w http.ResponseWriter, r *http.Request)
	ByShift(w http.ResponseWriter, r *http.Request)
	ByEmployee(w http.ResponseWriter, r *http.Request)
	ClockBehavior(w http.ResponseWriter, r *http.Request)
	Thresholds(w http.ResponseWriter, r *http.Request)
}

type kpiHandlerImpl struct {
	kpiService kpi.KPIService
}

func NewKPIHandler(kpiService kpi.KPIService) KPIHandler {
	return &kpiHandlerImpl{
		kpiService: kpiService,
	}
}

// serveFiltered parses the query filter, runs fn and writes its result.
func serveFiltered[T any](w http.ResponseWriter, r *http.Request, fn func(context.Context, timeentry.Filter) (T, error)) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := fn(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// All handles GET /kpis
func (h *kpiHandlerImpl) All(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.All)
}

// Compliance handles GET /kpis/compliance
func (h *kpiHandlerImpl) Compliance(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.Compliance)
}

// Volume handles GET /kpis/volume
func (h *kpiHandlerImpl) Volume(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.Volume)
}

// Efficiency handles GET /kpis/efficiency
func (h *kpiHandlerImpl) Efficiency(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.Efficiency)
}

// ByOffice handles GET /kpis/by-office
func (h *kpiHandlerImpl) ByOffice(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.ByOffice)
}

// ByWeek handles GET /kpis/by-week
func (h *kpiHandlerImpl) ByWeek(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.ByWeek)
}

// Trends handles GET /kpis/trends
func (h *kpiHandlerImpl) Trends(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.Trends)
}

// ByDepartment handles GET /kpis/by-department
func (h *kpiHandlerImpl) ByDepartment(w http.ResponseWriter, r *http.Request) {
	serveFiltered(w, r, h.kpiService.ByDepartment)
}

// ByShift handles GET /kpis/by-shift
func (h *kpiHandlerImpl) ByShift(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	req := kpi.ShiftRequest{
		Filter:     p.filter(),
		Department: r.URL.Query().Get("department"),
	}
	if err := p.err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.kpiService.ByShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ByEmployee handles GET /kpis/by-employee
func (h *kpiHandlerImpl) ByEmployee(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	req := kpi.EmployeeRequest{
		Filter:          p.filter(),
		Page:            p.intValue("page"),
		Limit:           p.intValue("limit"),
		SortBy:          r.URL.Query().Get("sort_by"),
		SortOrder:       r.URL.Query().Get("sort_order"),
		NeedsEnrollment: p.boolValue("needs_enrollment"),
	}
	if err := p.err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.kpiService.ByEmployee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Employees, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: int64(result.TotalCount),
		TotalPages: result.TotalPages,
	})
}

// ClockBehavior handles GET /kpis/clock-behavior
func (h *kpiHandlerImpl) ClockBehavior(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	req := kpi.ClockBehaviorRequest{
		Filter: p.filter(),
		Limit:  p.intValue("limit"),
	}
	if err := p.err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.kpiService.ClockBehavior(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Thresholds handles GET /kpis/thresholds
func (h *kpiHandlerImpl) Thresholds(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.kpiService.Thresholds())
}
