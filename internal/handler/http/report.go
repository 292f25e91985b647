package http

import (
	"net/http"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/bstt-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Full compliance workbook
	Full(w http.ResponseWriter, r *http.Request)

	// Weekly KPI summary workbook
	WeeklySummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func parseReportRequest(r *http.Request) (report.ReportRequest, error) {
	p := newQueryParser(r.URL.Query())
	req := report.ReportRequest{
		Filter: p.filter(),
		Year:   p.intPtr("report_year"),
	}
	return req, p.err()
}

// Full handles GET /reports/full
func (h *reportHandlerImpl) Full(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rep, err := h.reportService.FullReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, rep.FileName, rep.ContentType, rep.Content)
}

// WeeklySummary handles GET /reports/weekly-summary
func (h *reportHandlerImpl) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rep, err := h.reportService.WeeklySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, rep.FileName, rep.ContentType, rep.Content)
}
