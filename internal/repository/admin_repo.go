package repository

import (
	"context"

	"github.com/famechasepro/genewell-new/internal/models"
)

type AdminRepository struct {
	db DBTX
}

func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM admin_users
		WHERE email = $1
	`
	var admin models.AdminUser
	err := r.db.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// ExportRow is one line of the admin CSV export: a submission joined with
// its latest order, if any.
type ExportRow struct {
	SubmissionID string
	Name         string
	Email        string
	CreatedAt    string
	Tier         *string
	OrderStatus  *string
	AmountPaise  *int64
}

func (r *AdminRepository) ListExportRows(ctx context.Context) ([]ExportRow, error) {
	query := `
		SELECT s.id, s.name, s.email, to_char(s.created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"'),
			   o.tier, o.status, o.amount_paise
		FROM quiz_submissions s
		LEFT JOIN LATERAL (
			SELECT tier, status, amount_paise
			FROM orders
			WHERE submission_id = s.id
			ORDER BY created_at DESC
			LIMIT 1
		) o ON TRUE
		ORDER BY s.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	export := make([]ExportRow, 0)
	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(
			&row.SubmissionID,
			&row.Name,
			&row.Email,
			&row.CreatedAt,
			&row.Tier,
			&row.OrderStatus,
			&row.AmountPaise,
		); err != nil {
			return nil, err
		}
		export = append(export, row)
	}
	return export, rows.Err()
}
