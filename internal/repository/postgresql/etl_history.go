package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type etlHistoryRepository struct {
	db *database.DB
}

const etlHistoryColumns = `
	id, run_date, year, source_file, records_processed, records_inserted,
	records_mismatched, status, message, duration_seconds`

func scanETLHistory(row pgx.Row) (etl.ETLHistory, error) {
	var h etl.ETLHistory
	err := row.Scan(
		&h.ID, &h.RunDate, &h.Year, &h.SourceFile, &h.RecordsProcessed, &h.RecordsInserted,
		&h.RecordsMismatched, &h.Status, &h.Message, &h.DurationSeconds,
	)
	return h, err
}

// Create implements etl.ETLHistoryRepository.
func (r *etlHistoryRepository) Create(ctx context.Context, h etl.ETLHistory) (etl.ETLHistory, error) {
	q := GetQuerier(ctx, r.db)

	if h.Status == "" {
		h.Status = etl.StatusRunning
	}

	err := q.QueryRow(ctx, `
		INSERT INTO etl_history (year, source_file, status)
		VALUES ($1, $2, $3)
		RETURNING id, run_date
	`, h.Year, h.SourceFile, h.Status).Scan(&h.ID, &h.RunDate)
	if err != nil {
		return etl.ETLHistory{}, fmt.Errorf("failed to create etl history: %w", err)
	}
	return h, nil
}

// Finish implements etl.ETLHistoryRepository.
func (r *etlHistoryRepository) Finish(ctx context.Context, h etl.ETLHistory) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE etl_history
		SET year = $2, records_processed = $3, records_inserted = $4, records_mismatched = $5,
			status = $6, message = $7, duration_seconds = $8
		WHERE id = $1
	`, h.ID, h.Year, h.RecordsProcessed, h.RecordsInserted, h.RecordsMismatched,
		h.Status, h.Message, h.DurationSeconds)
	if err != nil {
		return fmt.Errorf("failed to finish etl history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("etl history %d not found", h.ID)
	}
	return nil
}

// List implements etl.ETLHistoryRepository.
func (r *etlHistoryRepository) List(ctx context.Context, limit int) ([]etl.ETLHistory, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 20
	}
	rows, err := q.Query(ctx, `
		SELECT `+etlHistoryColumns+`
		FROM etl_history
		ORDER BY run_date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query etl history: %w", err)
	}
	defer rows.Close()

	history := []etl.ETLHistory{}
	for rows.Next() {
		h, err := scanETLHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan etl history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// LatestSuccess implements etl.ETLHistoryRepository.
func (r *etlHistoryRepository) LatestSuccess(ctx context.Context) (*etl.ETLHistory, error) {
	q := GetQuerier(ctx, r.db)

	h, err := scanETLHistory(q.QueryRow(ctx, `
		SELECT `+etlHistoryColumns+`
		FROM etl_history
		WHERE status = $1
		ORDER BY run_date DESC, id DESC
		LIMIT 1
	`, etl.StatusSuccess))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest etl run: %w", err)
	}
	return &h, nil
}

func NewETLHistoryRepository(db *database.DB) etl.ETLHistoryRepository {
	return &etlHistoryRepository{db: db}
}
