package repository

import (
	"context"
	"fmt"
	"time"

	"lorryops/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

// Create inserts a payment within the provided transaction.
func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, amount, status, created_at, voided_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Amount,
		payment.Status,
		payment.CreatedAt,
		payment.VoidedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", payment.OrderID.String()).
			Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.logger.Debug().
		Str("payment_id", payment.ID.String()).
		Str("order_id", payment.OrderID.String()).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("payment created successfully")

	return nil
}

// ListByOrder retrieves all payments for an order.
func (r *paymentRepository) ListByOrder(ctx context.Context, q Querier, orderID uuid.UUID) ([]model.Payment, error) {
	query := `
		SELECT id, order_id, amount, status, created_at, voided_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query payments")
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Status, &p.CreatedAt, &p.VoidedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment row")
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// Void transitions a POSTED payment to VOIDED. The status predicate makes the
// update a compare-and-swap: a payment that is already voided is left alone.
func (r *paymentRepository) Void(ctx context.Context, tx pgx.Tx, orderID, paymentID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = $4, voided_at = $3
		WHERE id = $1 AND order_id = $2 AND status = $5
	`

	tag, err := tx.Exec(ctx, query, paymentID, orderID, at, model.PaymentStatusVoided, model.PaymentStatusPosted)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", paymentID.String()).
			Msg("failed to void payment")
		return false, fmt.Errorf("failed to void payment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("payment_id", paymentID.String()).
			Msg("payment not voidable")
		return false, nil
	}

	return true, nil
}
