package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// FullReport builds the compliance workbook: metadata, data, pivots and office sheets
	FullReport(ctx context.Context, req ReportRequest) (Report, error)

	// WeeklySummary builds the executive summary and weekly trend workbook
	WeeklySummary(ctx context.Context, req ReportRequest) (Report, error)
}
