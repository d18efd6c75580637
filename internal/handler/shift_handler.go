package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"lorryops/internal/model"
	"lorryops/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ShiftHandler handles driver shift HTTP requests.
type ShiftHandler struct {
	service service.ShiftService
	logger  zerolog.Logger
}

// NewShiftHandler creates a new shift handler.
func NewShiftHandler(service service.ShiftService, logger zerolog.Logger) *ShiftHandler {
	return &ShiftHandler{
		service: service,
		logger:  logger.With().Str("handler", "shift").Logger(),
	}
}

// ClockIn handles POST /api/shifts requests.
func (h *ShiftHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req model.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.DriverID == uuid.Nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "driver ID is required", h.logger)
		return
	}

	shift, err := h.service.ClockIn(r.Context(), req.DriverID, time.Now().UTC())
	if err != nil {
		writeServiceError(w, r, err, "failed to clock in", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, shift)
}

// ClockOut handles POST /api/shifts/{id}/clock-out requests.
func (h *ShiftHandler) ClockOut(w http.ResponseWriter, r *http.Request, shiftIDStr string) {
	shiftID, err := uuid.Parse(shiftIDStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid shift ID format", h.logger)
		return
	}

	shift, err := h.service.ClockOut(r.Context(), shiftID, time.Now().UTC())
	if err != nil {
		writeServiceError(w, r, err, "failed to clock out", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, shift)
}
