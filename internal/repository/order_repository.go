package repository

import (
	"context"
	"errors"
	"fmt"

	"lorryops/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `
	id, code, type, status, customer_id,
	subtotal, discount, delivery_fee, return_delivery_fee, penalty_fee,
	total, paid_amount, balance, delivery_date,
	parent_id, idempotency_key, cancel_reason, created_at, updated_at
`

const insertOrderQuery = `
	INSERT INTO orders (
		id, code, type, status, customer_id,
		subtotal, discount, delivery_fee, return_delivery_fee, penalty_fee,
		total, paid_amount, balance, delivery_date,
		parent_id, idempotency_key, cancel_reason, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
`

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	_, err := tx.Exec(ctx, insertOrderQuery, orderInsertArgs(order)...)
	if err != nil {
		if isUniqueViolation(err, "orders_code_key") {
			r.logger.Warn().
				Str("code", order.Code).
				Msg("order code already taken")
			return model.ErrDuplicateOrderCode
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("code", order.Code).
		Msg("order created successfully")

	return nil
}

// TryCreateAdjustment inserts an adjustment order using the unique index on
// orders(code) as the existence check. ON CONFLICT DO NOTHING keeps the
// surrounding transaction usable when the candidate code loses the race.
func (r *orderRepository) TryCreateAdjustment(ctx context.Context, tx pgx.Tx, order *model.Order) (bool, error) {
	query := insertOrderQuery + ` ON CONFLICT (code) DO NOTHING`

	tag, err := tx.Exec(ctx, query, orderInsertArgs(order)...)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("code", order.Code).
			Msg("failed to insert adjustment order")
		return false, fmt.Errorf("failed to insert adjustment order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("code", order.Code).
			Msg("adjustment code already taken, caller should probe next candidate")
		return false, nil
	}

	return true, nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, description, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.Description, item.Quantity, item.UnitPrice, item.LineTotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items and payments.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.loadChildrenRecords(ctx, r.pool, order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetByIDForUpdate retrieves an order inside the transaction with a row lock.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := r.scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order row")
		return nil, fmt.Errorf("failed to lock order row: %w", err)
	}

	// The payment snapshot must be read after the lock is taken.
	if err := r.loadChildrenRecords(ctx, tx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetByIdempotencyKey retrieves the order created under the given key.
func (r *orderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query order by idempotency key")
		return nil, fmt.Errorf("failed to query order by idempotency key: %w", err)
	}

	if err := r.loadChildrenRecords(ctx, r.pool, order); err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateStatus sets the order's lifecycle status and cancel reason.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, reason *string) error {
	query := `
		UPDATE orders
		SET status = $2, cancel_reason = COALESCE($3, cancel_reason), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, status, reason)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// UpdateTotals persists the recomputed paid amount and balance.
func (r *orderRepository) UpdateTotals(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET paid_amount = $2, balance = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, order.ID, order.PaidAmount, order.Balance)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order totals")
		return fmt.Errorf("failed to update order totals: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("paid_amount", order.PaidAmount.StringFixed(2)).
		Str("balance", order.Balance.StringFixed(2)).
		Msg("order totals updated")

	return nil
}

// scanOrder scans a single order row.
func (r *orderRepository) scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.Code,
		&order.Type,
		&order.Status,
		&order.CustomerID,
		&order.Subtotal,
		&order.Discount,
		&order.DeliveryFee,
		&order.ReturnDeliveryFee,
		&order.PenaltyFee,
		&order.Total,
		&order.PaidAmount,
		&order.Balance,
		&order.DeliveryDate,
		&order.ParentID,
		&order.IdempotencyKey,
		&order.CancelReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// loadChildrenRecords attaches the order's items and payments.
func (r *orderRepository) loadChildrenRecords(ctx context.Context, q Querier, order *model.Order) error {
	itemsQuery := `
		SELECT id, order_id, description, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, itemsQuery, order.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Description, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	paymentsQuery := `
		SELECT id, order_id, amount, status, created_at, voided_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	payRows, err := q.Query(ctx, paymentsQuery, order.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to query payments")
		return fmt.Errorf("failed to query payments: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var p model.Payment
		if err := payRows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Status, &p.CreatedAt, &p.VoidedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment row")
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		order.Payments = append(order.Payments, p)
	}
	if err := payRows.Err(); err != nil {
		return fmt.Errorf("error iterating payments: %w", err)
	}

	return nil
}

// orderInsertArgs builds the positional arguments for insertOrderQuery.
func orderInsertArgs(order *model.Order) []any {
	return []any{
		order.ID,
		order.Code,
		order.Type,
		order.Status,
		order.CustomerID,
		order.Subtotal,
		order.Discount,
		order.DeliveryFee,
		order.ReturnDeliveryFee,
		order.PenaltyFee,
		order.Total,
		order.PaidAmount,
		order.Balance,
		order.DeliveryDate,
		order.ParentID,
		order.IdempotencyKey,
		order.CancelReason,
		order.CreatedAt,
		order.UpdatedAt,
	}
}
