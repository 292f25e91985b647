package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeETLService struct {
	etl.ETLService
	requests []etl.SyncRequest
	resp     etl.SyncResponse
	err      error
}

func (f *fakeETLService) SyncDirectory(_ context.Context, req etl.SyncRequest) (etl.SyncResponse, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func TestSyncDataDirectory_TracksLastRun(t *testing.T) {
	svc := &fakeETLService{resp: etl.SyncResponse{
		Imports: []etl.ImportResult{{Year: 2025, RecordsInserted: 12}},
	}}
	jobs := NewSyncJobs(svc, "/data", time.Hour)

	first := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return first }
	require.NoError(t, jobs.SyncDataDirectory(context.Background()))

	jobs.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, jobs.SyncDataDirectory(context.Background()))

	require.Len(t, svc.requests, 2)
	assert.Equal(t, "/data", svc.requests[0].Dir)
	assert.True(t, svc.requests[0].ReplaceYear)
	assert.Nil(t, svc.requests[0].ModifiedAfter)
	require.NotNil(t, svc.requests[1].ModifiedAfter)
	assert.Equal(t, first, *svc.requests[1].ModifiedAfter)
}

func TestSyncDataDirectory_FailureKeepsWatermark(t *testing.T) {
	svc := &fakeETLService{err: errors.New("no data files")}
	jobs := NewSyncJobs(svc, "/data", time.Hour)

	assert.Error(t, jobs.SyncDataDirectory(context.Background()))
	assert.Error(t, jobs.SyncDataDirectory(context.Background()))

	require.Len(t, svc.requests, 2)
	assert.Nil(t, svc.requests[1].ModifiedAfter)
}

func TestScheduler_RunOnce(t *testing.T) {
	svc := &fakeETLService{}
	s := NewScheduler()
	NewSyncJobs(svc, "/data", time.Hour).RegisterJobs(s)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Len(t, svc.requests, 1)

	svc.err = errors.New("disk unavailable")
	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync_data_directory")
	assert.ErrorIs(t, err, svc.err)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := NewScheduler()
	s.Add(Job{
		Name:     "slow",
		Interval: time.Hour,
		Timeout:  10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_StartStop(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewScheduler()
	s.AddJob("probe", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	s.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
