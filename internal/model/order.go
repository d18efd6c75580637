package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType distinguishes outright sales from rentals.
type OrderType string

const (
	OrderTypeOutright OrderType = "OUTRIGHT"
	OrderTypeRental   OrderType = "RENTAL"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusReturned  OrderStatus = "RETURNED"
)

// Order represents a customer order. PaidAmount and Balance are derived from
// the order's payment set by the ledger package; they are a cache of that
// computation and must never be written directly by callers.
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Code              string          `json:"code" db:"code"`
	Type              OrderType       `json:"type" db:"type"`
	Status            OrderStatus     `json:"status" db:"status"`
	CustomerID        uuid.UUID       `json:"customerId" db:"customer_id"`
	Subtotal          decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount          decimal.Decimal `json:"discount" db:"discount"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee" db:"delivery_fee"`
	ReturnDeliveryFee decimal.Decimal `json:"returnDeliveryFee" db:"return_delivery_fee"`
	PenaltyFee        decimal.Decimal `json:"penaltyFee" db:"penalty_fee"`
	Total             decimal.Decimal `json:"total" db:"total"`
	PaidAmount        decimal.Decimal `json:"paidAmount" db:"paid_amount"`
	Balance           decimal.Decimal `json:"balance" db:"balance"`
	DeliveryDate      *time.Time      `json:"deliveryDate,omitempty" db:"delivery_date"`
	ParentID          *uuid.UUID      `json:"parentId,omitempty" db:"parent_id"`
	IdempotencyKey    *string         `json:"-" db:"idempotency_key"`
	CancelReason      *string         `json:"cancelReason,omitempty" db:"cancel_reason"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`

	Items    []OrderItem `json:"items,omitempty"`
	Payments []Payment   `json:"payments,omitempty"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	Description string          `json:"description" db:"description"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	LineTotal   decimal.Decimal `json:"lineTotal" db:"line_total"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Code              string             `json:"code"`
	Type              OrderType          `json:"type"`
	CustomerID        uuid.UUID          `json:"customerId"`
	Discount          decimal.Decimal    `json:"discount"`
	DeliveryFee       decimal.Decimal    `json:"deliveryFee"`
	ReturnDeliveryFee decimal.Decimal    `json:"returnDeliveryFee"`
	PenaltyFee        decimal.Decimal    `json:"penaltyFee"`
	// DeliveryDate is free text, often hand-typed ("19/8", "2025-08-19");
	// parsed best-effort, unparsable input means no delivery date.
	DeliveryDate string             `json:"deliveryDate"`
	Items        []OrderItemRequest `json:"items"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// AdjustmentResult is the outcome of a cancel/return action. Duplicate is set
// when the action was deduplicated by its idempotency key, in which case
// Adjustment is the previously created adjustment order.
type AdjustmentResult struct {
	Adjustment *Order `json:"adjustment"`
	Duplicate  bool   `json:"duplicate"`
}

// PaymentActionResult is the outcome of a payment mutation. Duplicate is set
// when the action was deduplicated by its idempotency key; Order then reflects
// the state left behind by the first execution.
type PaymentActionResult struct {
	Order     *Order `json:"order"`
	Duplicate bool   `json:"duplicate"`
}
