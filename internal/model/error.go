package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeDuplicateOrderCode  = "DUPLICATE_ORDER_CODE"
	ErrCodeAdjustmentExhausted = "ADJUSTMENT_CODE_EXHAUSTED"
	ErrCodeKeyTooLong          = "IDEMPOTENCY_KEY_TOO_LONG"
	ErrCodePaymentNotVoidable  = "PAYMENT_NOT_VOIDABLE"
	ErrCodeShiftAlreadyOpen    = "SHIFT_ALREADY_OPEN"
	ErrCodeShiftNotOpen        = "SHIFT_NOT_OPEN"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a stable machine-readable code alongside the message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidAmount       = NewDomainError(ErrCodeInvalidAmount, "Payment amount must be greater than zero")
	ErrDuplicateOrderCode  = NewDomainError(ErrCodeDuplicateOrderCode, "An order with this code already exists")
	ErrAdjustmentExhausted = NewDomainError(ErrCodeAdjustmentExhausted, "Could not find a free adjustment code within the probe bound")
	ErrKeyTooLong          = NewDomainError(ErrCodeKeyTooLong, "Idempotency key exceeds the maximum length")
	ErrPaymentNotVoidable  = NewDomainError(ErrCodePaymentNotVoidable, "Payment is not in a voidable state")
	ErrShiftAlreadyOpen    = NewDomainError(ErrCodeShiftAlreadyOpen, "Driver already has an open shift")
	ErrShiftNotOpen        = NewDomainError(ErrCodeShiftNotOpen, "Shift is not open")
)
