package http

import (
	"net/http"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/handler/http/response"
)

type TimeEntryHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	FilterOptions(w http.ResponseWriter, r *http.Request)
	DataQuality(w http.ResponseWriter, r *http.Request)
}

type timeEntryHandlerImpl struct {
	timeEntryService timeentry.TimeEntryService
}

func NewTimeEntryHandler(timeEntryService timeentry.TimeEntryService) TimeEntryHandler {
	return &timeEntryHandlerImpl{
		timeEntryService: timeEntryService,
	}
}

// List handles GET /entries
func (h *timeEntryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	req := timeentry.ListRequest{
		Filter: p.filter(),

		// Pagination
		Page:  p.intValue("page"),
		Limit: p.intValue("limit"),

		// Sorting
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	if err := p.err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Entries, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Summary handles GET /entries/summary
func (h *timeEntryHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timeEntryService.Summary(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// FilterOptions handles GET /filters
func (h *timeEntryHandlerImpl) FilterOptions(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeEntryService.FilterOptions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DataQuality handles GET /data-quality
func (h *timeEntryHandlerImpl) DataQuality(w http.ResponseWriter, r *http.Request) {
	result, err := h.timeEntryService.DataQuality(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
