package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lorryops/internal/model"
	"lorryops/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		var domainErr *model.DomainError
		if !errors.As(err, &domainErr) &&
			(strings.Contains(err.Error(), "required") ||
				strings.Contains(err.Error(), "must contain") ||
				strings.Contains(err.Error(), "invalid order type") ||
				strings.Contains(err.Error(), "nil")) {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, err.Error(), h.logger)
			return
		}

		writeServiceError(w, r, err, "failed to create order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request, orderIDStr string) {
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve order", h.logger)
		return
	}

	if order == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeOrderNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request, orderIDStr string) {
	h.adjust(w, r, orderIDStr, h.service.Cancel, "failed to cancel order")
}

// Return handles POST /api/orders/{id}/return requests.
func (h *OrderHandler) Return(w http.ResponseWriter, r *http.Request, orderIDStr string) {
	h.adjust(w, r, orderIDStr, h.service.MarkReturned, "failed to return order")
}

// adjust runs a terminal-state transition. The request body is optional; a
// repeated Idempotency-Key returns the adjustment created the first time with
// 200 instead of 201.
func (h *OrderHandler) adjust(
	w http.ResponseWriter,
	r *http.Request,
	orderIDStr string,
	op func(ctx context.Context, orderID uuid.UUID, reason, idempotencyKey string) (*model.AdjustmentResult, error),
	fallback string,
) {
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
			return
		}
	}

	result, err := op(r.Context(), orderID, req.Reason, idempotencyKey(r))
	if err != nil {
		writeServiceError(w, r, err, fallback, h.logger)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result.Adjustment)
}

// RecordPayment handles POST /api/orders/{id}/payments requests.
func (h *OrderHandler) RecordPayment(w http.ResponseWriter, r *http.Request, orderIDStr string) {
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	var req model.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), orderID, req.Amount, idempotencyKey(r))
	if err != nil {
		writeServiceError(w, r, err, "failed to record payment", h.logger)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result.Order)
}

// VoidPayment handles POST /api/orders/{id}/payments/{paymentID}/void requests.
func (h *OrderHandler) VoidPayment(w http.ResponseWriter, r *http.Request, orderIDStr, paymentIDStr string) {
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	paymentID, err := uuid.Parse(paymentIDStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid payment ID format", h.logger)
		return
	}

	result, err := h.service.VoidPayment(r.Context(), orderID, paymentID, idempotencyKey(r))
	if err != nil {
		writeServiceError(w, r, err, "failed to void payment", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result.Order)
}
