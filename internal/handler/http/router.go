package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/bstt-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the cross-cutting settings the router needs.
type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	timeEntryHandler TimeEntryHandler,
	kpiHandler KPIHandler,
	reportHandler ReportHandler,
	etlHandler ETLHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  cfg.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/entries", timeEntryHandler.List)
		r.Get("/entries/summary", timeEntryHandler.Summary)
		r.Get("/filters", timeEntryHandler.FilterOptions)
		r.Get("/data-quality", timeEntryHandler.DataQuality)

		r.Route("/kpis", func(r chi.Router) {
			r.Get("/", kpiHandler.All)
			r.Get("/compliance", kpiHandler.Compliance)
			r.Get("/volume", kpiHandler.Volume)
			r.Get("/efficiency", kpiHandler.Efficiency)
			r.Get("/by-office", kpiHandler.ByOffice)
			r.Get("/by-week", kpiHandler.ByWeek)
			r.Get("/trends", kpiHandler.Trends)
			r.Get("/by-department", kpiHandler.ByDepartment)
			r.Get("/by-shift", kpiHandler.ByShift)
			r.Get("/by-employee", kpiHandler.ByEmployee)
			r.Get("/clock-behavior", kpiHandler.ClockBehavior)
			r.Get("/thresholds", kpiHandler.Thresholds)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/full", reportHandler.Full)
			r.Get("/weekly-summary", reportHandler.WeeklySummary)
		})

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.AdminOnly)

			r.Post("/uploads", etlHandler.Upload)
			r.Get("/uploads", etlHandler.ListUploads)
			r.Get("/etl-history", etlHandler.History)
			r.Post("/sync", etlHandler.Sync)
		})
	})
	return r
}
