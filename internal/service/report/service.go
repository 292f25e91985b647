package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/excel"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/metrics"
	kpiservice "github.com/cmlabs-hris/bstt-backend-go/internal/service/kpi"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	timeentry.TimeEntryRepository
	calc *kpiservice.Calculator
	now  func() time.Time
}

func NewReportService(repo timeentry.TimeEntryRepository, calc *kpiservice.Calculator) report.ReportService {
	return &ReportServiceImpl{
		TimeEntryRepository: repo,
		calc:                calc,
		now:                 time.Now,
	}
}

func (s *ReportServiceImpl) load(ctx context.Context, req report.ReportRequest) ([]timeentry.TimeEntry, reportMeta, error) {
	if err := req.Validate(); err != nil {
		return nil, reportMeta{}, err
	}

	entries, err := s.List(ctx, req.Filter)
	if err != nil {
		return nil, reportMeta{}, fmt.Errorf("failed to load time entries: %w", err)
	}
	for i := range entries {
		entries[i] = entries[i].Classified()
	}

	meta := reportMeta{
		generatedAt: s.now(),
		filters:     req.Filter.Params(),
	}
	switch {
	case req.Year != nil:
		meta.year = *req.Year
	case req.Filter.Year != nil:
		meta.year = *req.Filter.Year
	default:
		meta.year = meta.generatedAt.Year()
	}
	return entries, meta, nil
}

// build writes sheets in order into a new workbook.
func build(sheets []excel.Sheet) ([]byte, error) {
	wb, err := excel.NewWorkbook()
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	for _, sheet := range sheets {
		if _, err := wb.AddSheet(sheet); err != nil {
			return nil, err
		}
	}
	return wb.Bytes()
}

// FullReport implements report.ReportService.
func (s *ReportServiceImpl) FullReport(ctx context.Context, req report.ReportRequest) (rep report.Report, err error) {
	started := s.now()
	defer func() { metrics.RecordReport(report.KindFull, err) }()

	entries, meta, err := s.load(ctx, req)
	if err != nil {
		return report.Report{}, err
	}
	t := s.calc.Thresholds()

	// Fixed sheets keep their slot; office sheets are appended after them.
	builders := []func() excel.Sheet{
		func() excel.Sheet { return checkingSheet(entries, meta) },
		func() excel.Sheet { return directionsSheet(t) },
		func() excel.Sheet { return dataSheet(entries) },
		func() excel.Sheet { return allSheet(entries) },
		func() excel.Sheet { return provWeeklySheet(entries, t) },
		func() excel.Sheet { return writeInsSheet(entries) },
		func() excel.Sheet { return provisionalDetailSheet(entries, t) },
	}
	sheets := make([]excel.Sheet, len(builders))
	var offices []excel.Sheet

	g, gCtx := errgroup.WithContext(ctx)
	for i, b := range builders {
		i, b := i, b
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			sheets[i] = b()
			return nil
		})
	}
	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		offices = officeSheets(entries, t)
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Report{}, err
	}

	content, err := build(append(sheets, offices...))
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	slog.InfoContext(ctx, "full report generated",
		"year", meta.year,
		"entries", len(entries),
		"office_sheets", len(offices),
		"bytes", len(content),
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)

	return report.Report{
		FileName:    fmt.Sprintf("BSTT_Report_%d_%s.xlsx", meta.year, meta.generatedAt.Format("20060102")),
		ContentType: excel.ContentType,
		Content:     content,
	}, nil
}

// WeeklySummary implements report.ReportService.
func (s *ReportServiceImpl) WeeklySummary(ctx context.Context, req report.ReportRequest) (rep report.Report, err error) {
	started := s.now()
	defer func() { metrics.RecordReport(report.KindWeeklySummary, err) }()

	entries, meta, err := s.load(ctx, req)
	if err != nil {
		return report.Report{}, err
	}

	var (
		overall kpi.KPIResult
		weeks   []kpi.WeekKPI
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		overall = s.calc.Aggregate(entries)
		return nil
	})
	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		weeks = s.calc.ByWeek(entries)
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Report{}, err
	}

	content, err := build([]excel.Sheet{
		summarySheet(overall, meta),
		weeklyTrendsSheet(weeks),
	})
	if err != nil {
		return report.Report{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	slog.InfoContext(ctx, "weekly summary generated",
		"year", meta.year,
		"entries", len(entries),
		"weeks", len(weeks),
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)

	return report.Report{
		FileName:    fmt.Sprintf("BSTT_Weekly_Summary_%s.xlsx", meta.generatedAt.Format("20060102")),
		ContentType: excel.ContentType,
		Content:     content,
	}, nil
}
