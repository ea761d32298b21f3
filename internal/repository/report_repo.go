package repository

import (
	"context"
	"time"

	"github.com/famechasepro/genewell-new/internal/models"
)

type CreateReportInput struct {
	ID         string
	OrderID    string
	Filename   string
	PageCount  int
	StorageURL string
}

type ReportRepository struct {
	db DBTX
}

func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, input CreateReportInput) (*models.Report, error) {
	query := `
		INSERT INTO reports (id, order_id, filename, page_count, storage_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO UPDATE
		SET filename = EXCLUDED.filename,
			page_count = EXCLUDED.page_count,
			storage_url = EXCLUDED.storage_url,
			generated_at = NOW()
		RETURNING id, order_id, filename, page_count, storage_url, generated_at
	`
	var report models.Report
	err := r.db.QueryRow(ctx, query,
		input.ID, input.OrderID, input.Filename, input.PageCount, input.StorageURL,
	).Scan(
		&report.ID,
		&report.OrderID,
		&report.Filename,
		&report.PageCount,
		&report.StorageURL,
		&report.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Report, error) {
	query := `
		SELECT id, order_id, filename, page_count, storage_url, generated_at
		FROM reports
		WHERE order_id = $1
	`
	var report models.Report
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&report.ID,
		&report.OrderID,
		&report.Filename,
		&report.PageCount,
		&report.StorageURL,
		&report.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) ListGeneratedBefore(ctx context.Context, cutoff time.Time) ([]models.Report, error) {
	query := `
		SELECT id, order_id, filename, page_count, storage_url, generated_at
		FROM reports
		WHERE generated_at < $1 AND storage_url <> ''
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]models.Report, 0)
	for rows.Next() {
		var report models.Report
		if err := rows.Scan(
			&report.ID,
			&report.OrderID,
			&report.Filename,
			&report.PageCount,
			&report.StorageURL,
			&report.GeneratedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ClearStorageURL marks a report's stored copy as purged. The report row
// stays so page-count metadata survives cleanup; the PDF regenerates on
// demand.
func (r *ReportRepository) ClearStorageURL(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE reports SET storage_url = '' WHERE id = $1`, id)
	return err
}
