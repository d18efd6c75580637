package repository

import (
	"context"
	"time"

	"lorryops/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so read helpers can
// run inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// A code collision is reported as model.ErrDuplicateOrderCode.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// TryCreateAdjustment inserts an adjustment order, relying on the unique
	// index on orders(code) as the authoritative existence check. It returns
	// false without error when the candidate code is already taken, so the
	// caller can probe the next candidate.
	TryCreateAdjustment(ctx context.Context, tx pgx.Tx, order *model.Order) (bool, error)

	// GetByID retrieves an order with its items and payments.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate retrieves an order inside the transaction with a row
	// lock, serialising payment mutations per order. Payments are loaded
	// after the lock is taken so the set is a consistent snapshot.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetByIdempotencyKey retrieves the order created under the given key,
	// or nil when no such order exists.
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)

	// UpdateStatus sets the order's lifecycle status and cancel reason.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, reason *string) error

	// UpdateTotals persists the recomputed paid amount and balance.
	UpdateTotals(ctx context.Context, tx pgx.Tx, order *model.Order) error
}

// PaymentRepository defines the interface for payment data access operations.
type PaymentRepository interface {
	// Create inserts a payment within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// ListByOrder retrieves all payments for an order through q, which may be
	// a transaction when a consistent in-tx snapshot is required.
	ListByOrder(ctx context.Context, q Querier, orderID uuid.UUID) ([]model.Payment, error)

	// Void transitions a POSTED payment to VOIDED. Returns false when the
	// payment does not exist or is not POSTED.
	Void(ctx context.Context, tx pgx.Tx, orderID, paymentID uuid.UUID, at time.Time) (bool, error)
}

// IdempotencyRepository records first executions of guarded actions.
type IdempotencyRepository interface {
	// Register atomically inserts the request if its key is unseen. Returns
	// false when the key already exists; the uniqueness constraint at the
	// store is the enforcement mechanism, not an in-process check.
	Register(ctx context.Context, tx pgx.Tx, req *model.IdempotentRequest) (bool, error)
}

// ShiftRepository defines the interface for driver shift data access operations.
type ShiftRepository interface {
	// Create opens a shift. Returns false when the driver already has an
	// open shift.
	Create(ctx context.Context, shift *model.DriverShift) (bool, error)

	// GetByID retrieves a single shift.
	GetByID(ctx context.Context, id uuid.UUID) (*model.DriverShift, error)

	// ListOpen retrieves every shift that has not been clocked out.
	ListOpen(ctx context.Context) ([]model.DriverShift, error)

	// CloseIfOpen completes a shift only if it is still OPEN at the moment
	// of write, so a sweep racing a manual clock-out never overwrites it.
	// Returns false when the compare-and-swap found the shift already closed.
	CloseIfOpen(ctx context.Context, id uuid.UUID, clockOutAt time.Time, reason string, hours decimal.Decimal) (bool, error)
}
