package service

import (
	"context"
	"fmt"
	"time"

	"lorryops/internal/model"
	"lorryops/internal/money"
	"lorryops/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// shiftService implements ShiftService.
type shiftService struct {
	shiftRepo  repository.ShiftRepository
	homeTZ     *time.Location
	cutoffHour int
	logger     zerolog.Logger
}

// NewShiftService creates a new shift service. homeTZOffsetHours is the fixed
// UTC offset of the home timezone; cutoffHour is the local hour at which open
// shifts become stale.
func NewShiftService(
	shiftRepo repository.ShiftRepository,
	homeTZOffsetHours int,
	cutoffHour int,
	logger zerolog.Logger,
) ShiftService {
	name := fmt.Sprintf("UTC%+d", homeTZOffsetHours)
	return &shiftService{
		shiftRepo:  shiftRepo,
		homeTZ:     time.FixedZone(name, homeTZOffsetHours*3600),
		cutoffHour: cutoffHour,
		logger:     logger.With().Str("service", "shift").Logger(),
	}
}

// ClockIn opens a shift for the driver.
func (s *shiftService) ClockIn(ctx context.Context, driverID uuid.UUID, at time.Time) (*model.DriverShift, error) {
	shift := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  driverID,
		ClockInAt: at,
		Status:    model.ShiftStatusOpen,
	}

	created, err := s.shiftRepo.Create(ctx, shift)
	if err != nil {
		return nil, fmt.Errorf("failed to clock in: %w", err)
	}
	if !created {
		return nil, model.ErrShiftAlreadyOpen
	}

	s.logger.Info().
		Str("shift_id", shift.ID.String()).
		Str("driver_id", driverID.String()).
		Time("clock_in_at", at).
		Msg("driver clocked in")

	return shift, nil
}

// ClockOut manually completes an open shift.
func (s *shiftService) ClockOut(ctx context.Context, shiftID uuid.UUID, at time.Time) (*model.DriverShift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to clock out: %w", err)
	}
	if shift == nil || shift.Status != model.ShiftStatusOpen {
		return nil, model.ErrShiftNotOpen
	}

	hours := workingHours(shift.ClockInAt, at)

	closed, err := s.shiftRepo.CloseIfOpen(ctx, shiftID, at, "clocked out", hours)
	if err != nil {
		return nil, fmt.Errorf("failed to clock out: %w", err)
	}
	if !closed {
		// Lost the race to the sweep or a concurrent clock-out.
		return nil, model.ErrShiftNotOpen
	}

	shift, err = s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to clock out: %w", err)
	}

	s.logger.Info().
		Str("shift_id", shiftID.String()).
		Time("clock_out_at", at).
		Str("hours", hours.StringFixed(2)).
		Msg("driver clocked out")

	return shift, nil
}

// CloseStaleShifts closes every open shift whose cutoff has passed as of now.
// Each closure is a compare-and-swap conditioned on the shift still being
// OPEN, and is backdated to the cutoff instant rather than the sweep time.
// A failure on one shift is logged and does not abort the rest of the sweep.
func (s *shiftService) CloseStaleShifts(ctx context.Context, now time.Time) (int, error) {
	shifts, err := s.shiftRepo.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list open shifts: %w", err)
	}

	closed := 0
	for _, shift := range shifts {
		cutoff := s.nextCutoff(shift.ClockInAt)
		if now.Before(cutoff) {
			continue
		}

		hours := workingHours(shift.ClockInAt, cutoff)

		ok, err := s.shiftRepo.CloseIfOpen(ctx, shift.ID, cutoff, model.AutoClosureReason, hours)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("shift_id", shift.ID.String()).
				Msg("failed to auto-close shift, continuing sweep")
			continue
		}
		if !ok {
			s.logger.Debug().
				Str("shift_id", shift.ID.String()).
				Msg("shift closed concurrently, skipping")
			continue
		}

		closed++
		s.logger.Info().
			Str("shift_id", shift.ID.String()).
			Str("driver_id", shift.DriverID.String()).
			Time("clock_in_at", shift.ClockInAt).
			Time("cutoff", cutoff).
			Str("hours", hours.StringFixed(2)).
			Msg("stale shift auto-closed")
	}

	if closed > 0 || len(shifts) > 0 {
		s.logger.Info().
			Int("open", len(shifts)).
			Int("closed", closed).
			Msg("stale shift sweep completed")
	}

	return closed, nil
}

// nextCutoff returns the first cutoff boundary strictly after clockIn: the
// same home-timezone day's cutoff hour if clock-in is before it, otherwise
// the following day's.
func (s *shiftService) nextCutoff(clockIn time.Time) time.Time {
	local := clockIn.In(s.homeTZ)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), s.cutoffHour, 0, 0, 0, s.homeTZ)
	if !local.Before(cutoff) {
		cutoff = cutoff.AddDate(0, 0, 1)
	}
	return cutoff
}

// workingHours is the elapsed time between clock-in and clock-out in hours,
// held at the standard two-decimal scale.
func workingHours(clockIn, clockOut time.Time) decimal.Decimal {
	return decimal.NewFromFloat(clockOut.Sub(clockIn).Hours()).RoundBank(money.Scale)
}
