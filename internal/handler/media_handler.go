package handler

import (
	"io"
	"net/http"

	"lorryops/internal/media"
	"lorryops/internal/model"
	"lorryops/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxProofBytes bounds the accepted proof-of-delivery upload size.
const maxProofBytes = 10 << 20

// MediaHandler handles proof-of-delivery uploads.
type MediaHandler struct {
	orders   service.OrderService
	uploader media.Uploader
	logger   zerolog.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(orders service.OrderService, uploader media.Uploader, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		orders:   orders,
		uploader: uploader,
		logger:   logger.With().Str("handler", "media").Logger(),
	}
}

// UploadProof handles POST /api/orders/{id}/proof requests. The request body
// is the raw media bytes; Content-Type is carried through to storage.
func (h *MediaHandler) UploadProof(w http.ResponseWriter, r *http.Request, orderIDStr string) {
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve order", h.logger)
		return
	}
	if order == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeOrderNotFound, "order not found", h.logger)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxProofBytes+1))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "failed to read request body", h.logger)
		return
	}
	if len(data) == 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "request body is empty", h.logger)
		return
	}
	if len(data) > maxProofBytes {
		writeError(w, r, http.StatusRequestEntityTooLarge, model.ErrCodeMissingField, "upload exceeds size limit", h.logger)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.uploader.Upload(r.Context(), order.Code, contentType, data)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, model.ErrCodeInternalError, "failed to store proof of delivery", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
