package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/bstt-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/bstt-backend-go/internal/migrate"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/bstt-backend-go/internal/repository/postgresql"
	etlService "github.com/cmlabs-hris/bstt-backend-go/internal/service/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/service/file"
	kpiService "github.com/cmlabs-hris/bstt-backend-go/internal/service/kpi"
	reportService "github.com/cmlabs-hris/bstt-backend-go/internal/service/report"
	timeEntryService "github.com/cmlabs-hris/bstt-backend-go/internal/service/timeentry"
	"github.com/go-chi/httplog/v3"
)

func newLogger(cfg *config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "bstt-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = migrate.Run(migrateCtx, db, logger)
	cancelMigrate()
	if err != nil {
		log.Fatal("Failed to apply migrations: ", err)
	}

	timeEntryRepo := postgresql.NewTimeEntryRepository(db)
	etlHistoryRepo := postgresql.NewETLHistoryRepository(db)
	dataUploadRepo := postgresql.NewDataUploadRepository(db)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}
	fileService := file.NewFileService(fileStorage)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	calculator := kpiService.NewCalculator(cfg.KPI.Thresholds)

	entrySvc := timeEntryService.NewTimeEntryService(timeEntryRepo, etlHistoryRepo)
	kpiSvc := kpiService.NewKPIService(timeEntryRepo, calculator, cfg.KPI.ProblemEmployeeLimit)
	reportSvc := reportService.NewReportService(timeEntryRepo, calculator)
	etlSvc := etlService.NewETLService(db, timeEntryRepo, etlHistoryRepo, dataUploadRepo, fileService, cfg.Sync.Dir)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.NewTimeEntryHandler(entrySvc),
		appHTTP.NewKPIHandler(kpiSvc),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewETLHandler(etlSvc),
	)

	scheduler := cron.NewScheduler()
	if cfg.Sync.Enabled {
		cron.NewSyncJobs(etlSvc, cfg.Sync.Dir, cfg.Sync.Interval).RegisterJobs(scheduler)
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	if cfg.Sync.Enabled {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
