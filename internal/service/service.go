package service

import (
	"context"
	"time"

	"lorryops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService defines order lifecycle operations. Every mutating operation
// accepts an optional idempotency key; an empty key disables deduplication
// for that call.
type OrderService interface {
	// CreateOrder creates a new order with its line items.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order with items and payments, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// RecordPayment posts a payment against an order and reconciles its
	// derived totals from the resulting payment set.
	RecordPayment(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, idempotencyKey string) (*model.PaymentActionResult, error)

	// VoidPayment voids a POSTED payment and reconciles the order's totals.
	VoidPayment(ctx context.Context, orderID, paymentID uuid.UUID, idempotencyKey string) (*model.PaymentActionResult, error)

	// Cancel marks the order cancelled and spawns an adjustment order with a
	// collision-free code derived from the parent's code.
	Cancel(ctx context.Context, orderID uuid.UUID, reason, idempotencyKey string) (*model.AdjustmentResult, error)

	// MarkReturned marks a rental order returned and spawns an adjustment
	// order, same machinery as Cancel.
	MarkReturned(ctx context.Context, orderID uuid.UUID, reason, idempotencyKey string) (*model.AdjustmentResult, error)
}

// ShiftService defines driver shift operations.
type ShiftService interface {
	// ClockIn opens a shift for the driver.
	ClockIn(ctx context.Context, driverID uuid.UUID, at time.Time) (*model.DriverShift, error)

	// ClockOut manually completes an open shift.
	ClockOut(ctx context.Context, shiftID uuid.UUID, at time.Time) (*model.DriverShift, error)

	// CloseStaleShifts closes every open shift whose daily cutoff has passed
	// as of now. Returns the number of shifts closed.
	CloseStaleShifts(ctx context.Context, now time.Time) (int, error)
}
