package etl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/bstt-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/bstt-backend-go/internal/service/file"
)

// txRunner runs fn in a transaction carried by the context it receives.
type txRunner func(ctx context.Context, fn func(txCtx context.Context) error) error

type ETLServiceImpl struct {
	timeentry.TimeEntryRepository
	historyRepo etl.ETLHistoryRepository
	uploadRepo  etl.DataUploadRepository
	fileService file.FileService
	withTx      txRunner
	syncDir     string
	now         func() time.Time
}

func NewETLService(
	db *database.DB,
	entryRepo timeentry.TimeEntryRepository,
	historyRepo etl.ETLHistoryRepository,
	uploadRepo etl.DataUploadRepository,
	fileService file.FileService,
	syncDir string,
) etl.ETLService {
	return &ETLServiceImpl{
		TimeEntryRepository: entryRepo,
		historyRepo:         historyRepo,
		uploadRepo:          uploadRepo,
		fileService:         fileService,
		withTx: func(ctx context.Context, fn func(txCtx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
		syncDir: syncDir,
		now:     time.Now,
	}
}

// Import implements etl.ETLService.
func (s *ETLServiceImpl) Import(ctx context.Context, r io.Reader, kind string, opts etl.ImportOptions) (etl.ImportResult, error) {
	started := s.now()

	history, err := s.historyRepo.Create(ctx, etl.ETLHistory{
		RunDate:    started,
		Year:       opts.Year,
		SourceFile: opts.SourceFile,
		Status:     etl.StatusRunning,
	})
	if err != nil {
		return etl.ImportResult{}, fmt.Errorf("failed to create etl history: %w", err)
	}

	result, err := s.runImport(ctx, r, kind, opts)
	result.HistoryID = history.ID
	result.SourceFile = opts.SourceFile
	result.DurationSeconds = s.now().Sub(started).Seconds()

	history.RecordsProcessed = result.RecordsProcessed
	history.RecordsInserted = result.RecordsInserted
	history.RecordsMismatched = result.RecordsMismatched
	history.DurationSeconds = &result.DurationSeconds
	if result.Year != 0 {
		year := result.Year
		history.Year = &year
	}

	var message string
	if err != nil {
		history.Status = etl.StatusFailed
		message = err.Error()
	} else {
		history.Status = etl.StatusSuccess
		message = fmt.Sprintf("imported %d of %d records (%d deleted, %d reclassified)",
			result.RecordsInserted, result.RecordsProcessed, result.RecordsDeleted, result.RecordsMismatched)
	}
	history.Message = &message

	// The history row is finished outside the import transaction so failed
	// runs are recorded too.
	if finishErr := s.historyRepo.Finish(ctx, history); finishErr != nil {
		slog.ErrorContext(ctx, "failed to finish etl history", "history_id", history.ID, "error", finishErr)
	}

	metrics.RecordETLRun(result.RecordsInserted, err)
	if err != nil {
		slog.ErrorContext(ctx, "etl import failed",
			"source_file", opts.SourceFile,
			"history_id", history.ID,
			"error", err,
		)
		return result, err
	}

	slog.InfoContext(ctx, "etl import completed",
		"source_file", opts.SourceFile,
		"year", result.Year,
		"processed", result.RecordsProcessed,
		"inserted", result.RecordsInserted,
		"deleted", result.RecordsDeleted,
		"mismatched", result.RecordsMismatched,
		"duration_seconds", result.DurationSeconds,
	)
	return result, nil
}

func (s *ETLServiceImpl) runImport(ctx context.Context, r io.Reader, kind string, opts etl.ImportOptions) (etl.ImportResult, error) {
	parsed, err := parse(r, kind)
	if err != nil {
		return etl.ImportResult{RecordsProcessed: parsed.Skipped}, err
	}

	years := make(map[int]struct{})
	for i := range parsed.Entries {
		parsed.Entries[i].Year = yearOf(parsed.Entries[i], opts.Year, opts.FallbackYear)
		years[parsed.Entries[i].Year] = struct{}{}
	}

	result := etl.ImportResult{
		Year:              parsed.Entries[0].Year,
		RecordsProcessed:  len(parsed.Entries) + parsed.Skipped,
		RecordsMismatched: parsed.Mismatched,
	}
	if parsed.Skipped > 0 {
		slog.WarnContext(ctx, "skipped rows without a readable week ending",
			"source_file", opts.SourceFile,
			"skipped", parsed.Skipped,
		)
	}

	err = s.withTx(ctx, func(txCtx context.Context) error {
		if opts.ReplaceYear {
			for _, year := range sortedYears(years) {
				deleted, err := s.DeleteByYear(txCtx, year)
				if err != nil {
					return fmt.Errorf("failed to delete entries for %d: %w", year, err)
				}
				result.RecordsDeleted += deleted
			}
		}

		inserted, err := s.BulkInsert(txCtx, parsed.Entries)
		if err != nil {
			return fmt.Errorf("failed to insert entries: %w", err)
		}
		result.RecordsInserted = int(inserted)
		return nil
	})
	if err != nil {
		result.RecordsInserted = 0
		result.RecordsDeleted = 0
		return result, err
	}
	return result, nil
}

func sortedYears(years map[int]struct{}) []int {
	out := make([]int, 0, len(years))
	for y := range years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// ProcessUpload implements etl.ETLService.
func (s *ETLServiceImpl) ProcessUpload(ctx context.Context, req etl.UploadRequest) (etl.UploadResponse, error) {
	if err := req.Validate(); err != nil {
		return etl.UploadResponse{}, err
	}

	year := req.Year
	if year == nil {
		year = yearFromName(req.FileName)
	}

	path, err := s.fileService.UploadDataFile(ctx, year, req.File, req.FileName)
	if err != nil {
		return etl.UploadResponse{}, err
	}

	upload, err := s.uploadRepo.Create(ctx, etl.DataUpload{
		FileName:   req.FileName,
		FilePath:   path,
		FileSize:   req.FileSize,
		Year:       year,
		Status:     etl.StatusProcessing,
		UploadedAt: s.now(),
		UploadedBy: req.UploadedBy,
	})
	if err != nil {
		if delErr := s.fileService.DeleteFile(ctx, path); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned upload", "path", path, "error", delErr)
		}
		return etl.UploadResponse{}, fmt.Errorf("failed to create upload record: %w", err)
	}

	result, importErr := s.importStored(ctx, path, etl.ImportOptions{
		Year:         req.Year,
		FallbackYear: year,
		ReplaceYear:  req.ReplaceYear,
		SourceFile:   req.FileName,
	})

	processedAt := s.now()
	upload.ProcessedAt = &processedAt
	if importErr != nil {
		msg := importErr.Error()
		upload.Status = etl.StatusFailed
		upload.ErrorMessage = &msg
	} else {
		upload.Status = etl.StatusCompleted
		upload.RecordsCreated = result.RecordsInserted
		if upload.Year == nil {
			upload.Year = &result.Year
		}
	}

	if err := s.uploadRepo.UpdateStatus(ctx, upload); err != nil {
		slog.ErrorContext(ctx, "failed to update upload status", "upload_id", upload.ID, "error", err)
	}

	if importErr != nil {
		return upload.ToResponse(), importErr
	}
	return upload.ToResponse(), nil
}

func (s *ETLServiceImpl) importStored(ctx context.Context, path string, opts etl.ImportOptions) (etl.ImportResult, error) {
	rc, err := s.fileService.OpenFile(ctx, path)
	if err != nil {
		return etl.ImportResult{}, fmt.Errorf("failed to open stored upload: %w", err)
	}
	defer rc.Close()

	return s.Import(ctx, rc, etl.FileKind(path), opts)
}

// syncFile is a data file discovered in the sync directory.
type syncFile struct {
	Path string
	// Year detected from the directory or file name, used when rows carry none.
	Year *int
}

const (
	ytdFileName      = "YTD_Data_Weekly.csv"
	legacyFilePrefix = "bstt_data_"
)

var yearPattern = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)[0-9]{2})(?:[^0-9]|$)`)

// yearFromName extracts a four digit year from a file or directory name.
func yearFromName(name string) *int {
	m := yearPattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &year
}

// detectYear prefers a four digit parent directory, then the file name.
func detectYear(path string) *int {
	parent := filepath.Base(filepath.Dir(path))
	if len(parent) == 4 {
		if year, err := strconv.Atoi(parent); err == nil {
			return &year
		}
	}
	return yearFromName(path)
}

// discoverFiles finds the data files to sync. With a year it looks for
// <dir>/<year>/YTD_Data_Weekly.csv, then <dir>/bstt_data_<year>.csv. Without
// one it takes every <dir>/*/YTD_Data_Weekly.csv, or bstt_data_*.csv files
// when no year directories exist.
func discoverFiles(dir string, year *int) ([]syncFile, error) {
	if year != nil {
		candidates := []string{
			filepath.Join(dir, strconv.Itoa(*year), ytdFileName),
			filepath.Join(dir, fmt.Sprintf("%s%d.csv", legacyFilePrefix, *year)),
		}
		for _, path := range candidates {
			if _, err := os.Stat(path); err == nil {
				return []syncFile{{Path: path, Year: year}}, nil
			}
		}
		return nil, etl.ErrNoDataFiles
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*", ytdFileName))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		paths, err = filepath.Glob(filepath.Join(dir, legacyFilePrefix+"*.csv"))
		if err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, etl.ErrNoDataFiles
	}

	sort.Strings(paths)
	files := make([]syncFile, 0, len(paths))
	for _, path := range paths {
		files = append(files, syncFile{Path: path, Year: detectYear(path)})
	}
	return files, nil
}

// SyncDirectory implements etl.ETLService. Each file replaces the stored
// entries of the years it contains, so repeated syncs never duplicate rows.
func (s *ETLServiceImpl) SyncDirectory(ctx context.Context, req etl.SyncRequest) (etl.SyncResponse, error) {
	if err := req.Validate(); err != nil {
		return etl.SyncResponse{}, err
	}

	dir := req.Dir
	if dir == "" {
		dir = s.syncDir
	}
	if dir == "" {
		return etl.SyncResponse{}, etl.ErrSyncDisabled
	}

	files, err := discoverFiles(dir, req.Year)
	if err != nil {
		return etl.SyncResponse{}, err
	}

	slog.InfoContext(ctx, "directory sync started", "dir", dir, "files", len(files), "clear", req.ReplaceYear)

	resp := etl.SyncResponse{Imports: make([]etl.ImportResult, 0, len(files))}
	for _, f := range files {
		if req.ModifiedAfter != nil {
			info, err := os.Stat(f.Path)
			if err != nil {
				return resp, fmt.Errorf("failed to stat %s: %w", f.Path, err)
			}
			if !info.ModTime().After(*req.ModifiedAfter) {
				resp.Skipped = append(resp.Skipped, f.Path)
				continue
			}
		}

		result, err := s.importFile(ctx, f)
		if err != nil {
			return resp, fmt.Errorf("failed to sync %s: %w", f.Path, err)
		}
		resp.Imports = append(resp.Imports, result)
	}

	return resp, nil
}

func (s *ETLServiceImpl) importFile(ctx context.Context, f syncFile) (etl.ImportResult, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return etl.ImportResult{}, err
	}
	defer fh.Close()

	return s.Import(ctx, fh, etl.FileKind(f.Path), etl.ImportOptions{
		FallbackYear: f.Year,
		ReplaceYear:  true,
		SourceFile:   f.Path,
	})
}

// ListUploads implements etl.ETLService.
func (s *ETLServiceImpl) ListUploads(ctx context.Context, limit int) ([]etl.UploadResponse, error) {
	uploads, err := s.uploadRepo.List(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	resp := make([]etl.UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		resp = append(resp, u.ToResponse())
	}
	return resp, nil
}

// History implements etl.ETLService.
func (s *ETLServiceImpl) History(ctx context.Context, limit int) ([]etl.HistoryResponse, error) {
	runs, err := s.historyRepo.List(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list etl history: %w", err)
	}

	resp := make([]etl.HistoryResponse, 0, len(runs))
	for _, h := range runs {
		resp = append(resp, h.ToResponse())
	}
	return resp, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 200 {
		return 200
	}
	return limit
}
