package timeentry

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
)

type TimeEntryServiceImpl struct {
	timeentry.TimeEntryRepository
	etlHistoryRepo etl.ETLHistoryRepository
	now            func() time.Time
}

func NewTimeEntryService(repo timeentry.TimeEntryRepository, etlHistoryRepo etl.ETLHistoryRepository) timeentry.TimeEntryService {
	return &TimeEntryServiceImpl{
		TimeEntryRepository: repo,
		etlHistoryRepo:      etlHistoryRepo,
		now:                 time.Now,
	}
}

// List implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) List(ctx context.Context, req timeentry.ListRequest) (timeentry.ListResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.ListResponse{}, err
	}

	entries, total, err := s.ListPage(ctx, req)
	if err != nil {
		return timeentry.ListResponse{}, fmt.Errorf("failed to list time entries: %w", err)
	}

	items := make([]timeentry.EntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.ToResponse())
	}

	totalPages := int(total) / req.Limit
	if int(total)%req.Limit > 0 {
		totalPages++
	}

	return timeentry.ListResponse{
		Entries:    items,
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// Summary implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Summary(ctx context.Context, filter timeentry.Filter) (timeentry.SummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return timeentry.SummaryResponse{}, err
	}

	stats, err := s.TimeEntryRepository.Summary(ctx, filter)
	if err != nil {
		return timeentry.SummaryResponse{}, fmt.Errorf("failed to summarize time entries: %w", err)
	}

	breakdown := make(map[string]int64, len(timeentry.EntryTypes))
	for _, et := range timeentry.EntryTypes {
		breakdown[string(et)] = stats.EntryTypeCounts[string(et)]
	}

	return timeentry.SummaryResponse{
		TotalEntries:       stats.TotalEntries,
		TotalHours:         stats.TotalHours,
		TotalRegHours:      stats.TotalRegHours,
		TotalOTHours:       stats.TotalOTHours,
		UniqueEmployees:    stats.UniqueEmployees,
		UniqueOffices:      stats.UniqueOffices,
		DateRange:          formatDateRange(stats.MinWeekEnding, stats.MaxWeekEnding),
		EntryTypeBreakdown: breakdown,
	}, nil
}

func formatDateRange(from, to *time.Time) string {
	if from == nil || to == nil {
		return ""
	}
	return from.Format("2006-01-02") + " to " + to.Format("2006-01-02")
}

// DataQuality implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) DataQuality(ctx context.Context) (timeentry.DataQualityResponse, error) {
	stats, err := s.DataStats(ctx)
	if err != nil {
		return timeentry.DataQualityResponse{}, fmt.Errorf("failed to load data stats: %w", err)
	}

	resp := timeentry.DataQualityResponse{
		TotalRecords:  stats.TotalRecords,
		DataFreshness: timeentry.Freshness(stats.MaxWeekEnding, s.now()),
		YearsData:     stats.Years,
	}
	if stats.MinWeekEnding != nil {
		d := stats.MinWeekEnding.Format("2006-01-02")
		resp.MinDate = &d
	}
	if stats.MaxWeekEnding != nil {
		d := stats.MaxWeekEnding.Format("2006-01-02")
		resp.MaxDate = &d
	}

	last, err := s.etlHistoryRepo.LatestSuccess(ctx)
	if err != nil {
		return timeentry.DataQualityResponse{}, fmt.Errorf("failed to load latest etl run: %w", err)
	}
	if last != nil {
		run := last.RunDate.Format(time.RFC3339)
		resp.LastETLRun = &run
		resp.LastETLStatus = &last.Status
		resp.LastETLRecords = last.RecordsInserted
	}

	return resp, nil
}
