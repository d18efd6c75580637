package model

import (
	"time"

	"github.com/google/uuid"
)

// Guarded action names recorded against idempotent requests.
const (
	ActionRecordPayment = "order.record_payment"
	ActionVoidPayment   = "order.void_payment"
	ActionCancelOrder   = "order.cancel"
	ActionReturnOrder   = "order.return"
)

// MaxIdempotencyKeyLength is the longest accepted client-supplied key.
const MaxIdempotencyKeyLength = 64

// IdempotentRequest records the first execution of a guarded mutating action.
// Rows are created once, never mutated and never deleted; the uniqueness of
// Key at the store is what makes retried submissions observable as duplicates.
type IdempotentRequest struct {
	Key       string    `json:"key" db:"key"`
	OrderID   uuid.UUID `json:"orderId" db:"order_id"`
	Action    string    `json:"action" db:"action"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
