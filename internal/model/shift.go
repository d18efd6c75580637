package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShiftStatus is the state of a driver work shift.
type ShiftStatus string

const (
	ShiftStatusOpen      ShiftStatus = "OPEN"
	ShiftStatusCompleted ShiftStatus = "COMPLETED"
)

// AutoClosureReason marks shifts that were closed by the sweep rather than an
// explicit clock-out.
const AutoClosureReason = "auto-closed by schedule"

// DriverShift is a driver's work shift. TotalWorkingHours is derived and only
// defined once ClockOutAt is set; it equals the elapsed time between clock-in
// and clock-out in hours.
type DriverShift struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	DriverID          uuid.UUID        `json:"driverId" db:"driver_id"`
	ClockInAt         time.Time        `json:"clockInAt" db:"clock_in_at"`
	ClockOutAt        *time.Time       `json:"clockOutAt,omitempty" db:"clock_out_at"`
	Status            ShiftStatus      `json:"status" db:"status"`
	ClosureReason     *string          `json:"closureReason,omitempty" db:"closure_reason"`
	TotalWorkingHours *decimal.Decimal `json:"totalWorkingHours,omitempty" db:"total_working_hours"`
}

// ClockInRequest represents the request payload for opening a shift.
type ClockInRequest struct {
	DriverID uuid.UUID `json:"driverId"`
}
