package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bstt"

var (
	kpiComputations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "kpi",
		Name:      "computation_duration_seconds",
		Help:      "Time spent loading entries and computing one KPI grouping.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"grouping"})

	kpiEntries = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "kpi",
		Name:      "entries_per_computation",
		Help:      "Number of time entries aggregated per KPI computation.",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
	}, []string{"grouping"})

	reportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "report",
		Name:      "generated_total",
		Help:      "Workbooks generated, by report kind and outcome.",
	}, []string{"kind", "status"})

	etlRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "etl",
		Name:      "runs_total",
		Help:      "Import runs, by outcome.",
	}, []string{"status"})

	etlRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "etl",
		Name:      "records_imported_total",
		Help:      "Time entries written by import runs.",
	})

	etlLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "etl",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful import.",
	})
)

func init() {
	prometheus.MustRegister(kpiComputations, kpiEntries, reportsGenerated, etlRuns, etlRecords, etlLastSuccess)
}

// ObserveKPI records the duration and input size of one KPI computation.
func ObserveKPI(grouping string, started time.Time, entries int) {
	kpiComputations.WithLabelValues(grouping).Observe(time.Since(started).Seconds())
	kpiEntries.WithLabelValues(grouping).Observe(float64(entries))
}

// RecordReport counts a generated workbook.
func RecordReport(kind string, err error) {
	reportsGenerated.WithLabelValues(kind, outcome(err)).Inc()
}

// RecordETLRun counts an import run and, on success, its records.
func RecordETLRun(records int, err error) {
	etlRuns.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	etlRecords.Add(float64(records))
	etlLastSuccess.Set(float64(time.Now().Unix()))
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
