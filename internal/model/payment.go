package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a payment event. A payment is immutable once
// POSTED except for the transition to VOIDED. Voided payments stay on record
// for audit but are excluded from reconciliation.
type PaymentStatus string

const (
	PaymentStatusPosted PaymentStatus = "POSTED"
	PaymentStatusVoided PaymentStatus = "VOIDED"
)

// Payment is a single ledger event against an order.
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Status    PaymentStatus   `json:"status" db:"status"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	VoidedAt  *time.Time      `json:"voidedAt,omitempty" db:"voided_at"`
}

// PaymentRequest represents the request payload for posting a payment.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
