package etl

import "time"

// Run status values shared by ETL history rows and uploads.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusRunning    = "running"
	StatusSuccess    = "success"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ETLHistory records one import run.
type ETLHistory struct {
	ID                int64
	RunDate           time.Time
	Year              *int
	SourceFile        string
	RecordsProcessed  int
	RecordsInserted   int
	RecordsMismatched int
	Status            string
	Message           *string
	DurationSeconds   *float64
}

// DataUpload is a data file submitted through the API.
type DataUpload struct {
	ID             string
	FileName       string
	FilePath       string
	FileSize       int64
	Year           *int
	Status         string
	UploadedAt     time.Time
	ProcessedAt    *time.Time
	RecordsCreated int
	ErrorMessage   *string
	UploadedBy     *string
}
