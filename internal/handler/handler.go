package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"lorryops/internal/middleware"
	"lorryops/internal/model"

	"github.com/rs/zerolog"
)

// statusByCode maps domain error codes to HTTP status codes.
var statusByCode = map[string]int{
	model.ErrCodeOrderNotFound:       http.StatusNotFound,
	model.ErrCodeInvalidQuantity:     http.StatusBadRequest,
	model.ErrCodeInvalidAmount:       http.StatusBadRequest,
	model.ErrCodeDuplicateOrderCode:  http.StatusConflict,
	model.ErrCodeAdjustmentExhausted: http.StatusConflict,
	model.ErrCodeKeyTooLong:          http.StatusBadRequest,
	model.ErrCodePaymentNotVoidable:  http.StatusConflict,
	model.ErrCodeShiftAlreadyOpen:    http.StatusConflict,
	model.ErrCodeShiftNotOpen:        http.StatusConflict,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
// The correlation ID assigned by the middleware is included so clients can
// quote it when reporting a failure.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	correlationID := middleware.CorrelationIDFromContext(r.Context())
	logger.Error().
		Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("correlation_id", correlationID).
		Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message, CorrelationID: correlationID})
}

// writeServiceError translates a service error into an HTTP response. Domain
// errors carry their own code and status; anything else is an internal error
// reported with the given fallback message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeError(w, r, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
}

// idempotencyKey extracts the optional Idempotency-Key request header.
func idempotencyKey(r *http.Request) string {
	return r.Header.Get("Idempotency-Key")
}
