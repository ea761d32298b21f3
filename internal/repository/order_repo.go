package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/famechasepro/genewell-new/internal/models"
)

type CreateOrderInput struct {
	ID             string
	SubmissionID   string
	Tier           models.Tier
	AddOns         []string
	AmountPaise    int64
	Currency       string
	GatewayOrderID string
	Status         string
	Language       string
}

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, submission_id, tier, addons, amount_paise, currency, gateway_order_id, status, language, created_at, updated_at`

func (r *OrderRepository) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	query := `
		INSERT INTO orders (id, submission_id, tier, addons, amount_paise, currency, gateway_order_id, status, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + orderColumns
	return scanOrder(r.db.QueryRow(ctx, query,
		input.ID,
		input.SubmissionID,
		input.Tier,
		input.AddOns,
		input.AmountPaise,
		input.Currency,
		input.GatewayOrderID,
		input.Status,
		input.Language,
	))
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(ctx, query, id))
}

func (r *OrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE gateway_order_id = $1`
	return scanOrder(r.db.QueryRow(ctx, query, gatewayOrderID))
}

// UpdateStatusIfCurrent transitions the order only when it still holds the
// expected status, so a duplicate webhook or double verify is harmless.
func (r *OrderRepository) UpdateStatusIfCurrent(ctx context.Context, id string, currentStatus, nextStatus string) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns
	return scanOrder(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus))
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	return count, err
}

func (r *OrderRepository) PaidRevenue(ctx context.Context) (int64, error) {
	var revenue int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_paise), 0) FROM orders WHERE status = $1`,
		models.OrderStatusPaid,
	).Scan(&revenue)
	return revenue, err
}

func (r *OrderRepository) PaidTierBreakdown(ctx context.Context) ([]models.TierCount, error) {
	query := `
		SELECT tier, COUNT(*)
		FROM orders
		WHERE status = $1
		GROUP BY tier
		ORDER BY tier
	`
	rows, err := r.db.Query(ctx, query, models.OrderStatusPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := make([]models.TierCount, 0, 4)
	for rows.Next() {
		var entry models.TierCount
		if err := rows.Scan(&entry.Tier, &entry.Count); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, entry)
	}
	return breakdown, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.SubmissionID,
		&order.Tier,
		&order.AddOns,
		&order.AmountPaise,
		&order.Currency,
		&order.GatewayOrderID,
		&order.Status,
		&order.Language,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
