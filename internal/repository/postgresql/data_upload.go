package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type dataUploadRepository struct {
	db *database.DB
}

const dataUploadColumns = `
	id, file_name, file_path, file_size, year, status, uploaded_at,
	processed_at, records_created, error_message, uploaded_by`

func scanDataUpload(row pgx.Row) (etl.DataUpload, error) {
	var u etl.DataUpload
	err := row.Scan(
		&u.ID, &u.FileName, &u.FilePath, &u.FileSize, &u.Year, &u.Status, &u.UploadedAt,
		&u.ProcessedAt, &u.RecordsCreated, &u.ErrorMessage, &u.UploadedBy,
	)
	return u, err
}

// Create implements etl.DataUploadRepository.
func (r *dataUploadRepository) Create(ctx context.Context, u etl.DataUpload) (etl.DataUpload, error) {
	q := GetQuerier(ctx, r.db)

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = etl.StatusPending
	}

	err := q.QueryRow(ctx, `
		INSERT INTO data_uploads (id, file_name, file_path, file_size, year, status, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING uploaded_at
	`, u.ID, u.FileName, u.FilePath, u.FileSize, u.Year, u.Status, u.UploadedBy).Scan(&u.UploadedAt)
	if err != nil {
		return etl.DataUpload{}, fmt.Errorf("failed to create data upload: %w", err)
	}
	return u, nil
}

// UpdateStatus implements etl.DataUploadRepository.
func (r *dataUploadRepository) UpdateStatus(ctx context.Context, u etl.DataUpload) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE data_uploads
		SET status = $2, year = $3, processed_at = $4, records_created = $5, error_message = $6
		WHERE id = $1
	`, u.ID, u.Status, u.Year, u.ProcessedAt, u.RecordsCreated, u.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update data upload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return etl.ErrUploadNotFound
	}
	return nil
}

// GetByID implements etl.DataUploadRepository.
func (r *dataUploadRepository) GetByID(ctx context.Context, id string) (etl.DataUpload, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanDataUpload(q.QueryRow(ctx, `
		SELECT `+dataUploadColumns+`
		FROM data_uploads
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return etl.DataUpload{}, etl.ErrUploadNotFound
		}
		return etl.DataUpload{}, fmt.Errorf("failed to get data upload: %w", err)
	}
	return u, nil
}

// List implements etl.DataUploadRepository.
func (r *dataUploadRepository) List(ctx context.Context, limit int) ([]etl.DataUpload, error) {
	q := GetQuerier(ctx, r.db)

	if limit <= 0 {
		limit = 20
	}
	rows, err := q.Query(ctx, `
		SELECT `+dataUploadColumns+`
		FROM data_uploads
		ORDER BY uploaded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query data uploads: %w", err)
	}
	defer rows.Close()

	uploads := []etl.DataUpload{}
	for rows.Next() {
		u, err := scanDataUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func NewDataUploadRepository(db *database.DB) etl.DataUploadRepository {
	return &dataUploadRepository{db: db}
}
