// Command sync imports the data files found in the sync directory once and
// exits. Every year it imports replaces the entries stored for that year.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/bstt-backend-go/internal/config"
	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/migrate"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/bstt-backend-go/internal/repository/postgresql"
	etlService "github.com/cmlabs-hris/bstt-backend-go/internal/service/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/service/file"
)

func main() {
	year := flag.Int("year", 0, "import only this year (default: every year found)")
	replace := flag.Bool("clear", false, "log that existing data for the imported years is being replaced")
	dir := flag.String("dir", "", "data directory (default: SYNC_DATA_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if err := migrate.Run(ctx, db, logger); err != nil {
		log.Fatal("Failed to apply migrations: ", err)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}

	svc := etlService.NewETLService(
		db,
		postgresql.NewTimeEntryRepository(db),
		postgresql.NewETLHistoryRepository(db),
		postgresql.NewDataUploadRepository(db),
		file.NewFileService(fileStorage),
		cfg.Sync.Dir,
	)

	req := etl.SyncRequest{
		ReplaceYear: *replace,
		Dir:         *dir,
	}
	if *year != 0 {
		req.Year = year
	}

	resp, err := svc.SyncDirectory(ctx, req)
	if err != nil {
		slog.Error("sync failed", "error", err)
		os.Exit(1)
	}

	total := 0
	for _, imp := range resp.Imports {
		total += imp.RecordsInserted
		slog.Info("imported",
			"file", imp.SourceFile,
			"year", imp.Year,
			"records", imp.RecordsInserted,
			"deleted", imp.RecordsDeleted,
			"mismatched", imp.RecordsMismatched,
		)
	}
	slog.Info("sync complete", "files", len(resp.Imports), "records", total)
}
