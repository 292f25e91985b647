package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
)

// SyncJobs re-imports data files dropped into the sync directory
type SyncJobs struct {
	etlService etl.ETLService
	dir        string
	interval   time.Duration

	mu      sync.Mutex
	lastRun *time.Time
	now     func() time.Time
}

// NewSyncJobs creates the directory sync job
func NewSyncJobs(etlService etl.ETLService, dir string, interval time.Duration) *SyncJobs {
	return &SyncJobs{
		etlService: etlService,
		dir:        dir,
		interval:   interval,
		now:        time.Now,
	}
}

// RegisterJobs registers the sync job. A run must finish before the next one is due.
func (j *SyncJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.Add(Job{
		Name:     "sync_data_directory",
		Interval: j.interval,
		Timeout:  j.interval,
		Fn:       j.SyncDataDirectory,
	})
}

// SyncDataDirectory imports every data file modified since the previous
// successful run. The first run imports everything.
func (j *SyncJobs) SyncDataDirectory(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	started := j.now()
	resp, err := j.etlService.SyncDirectory(ctx, etl.SyncRequest{
		Dir:           j.dir,
		ReplaceYear:   true,
		ModifiedAfter: j.lastRun,
	})
	if err != nil {
		return err
	}
	j.lastRun = &started

	records := 0
	for _, imp := range resp.Imports {
		records += imp.RecordsInserted
	}
	slog.Info("Cron: data directory synced",
		"dir", j.dir,
		"files", len(resp.Imports),
		"unchanged", len(resp.Skipped),
		"records", records,
	)
	return nil
}
