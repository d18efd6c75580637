package repository

import (
	"context"
	"fmt"
	"time"

	"lorryops/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// shiftRepository implements the ShiftRepository interface using PostgreSQL.
type shiftRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShiftRepository creates a new PostgreSQL-backed shift repository.
func NewShiftRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShiftRepository {
	return &shiftRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shift").Logger(),
	}
}

// Create opens a shift. The partial unique index on driver_shifts(driver_id)
// WHERE status = 'OPEN' enforces one open shift per driver at the store.
func (r *shiftRepository) Create(ctx context.Context, shift *model.DriverShift) (bool, error) {
	query := `
		INSERT INTO driver_shifts (id, driver_id, clock_in_at, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (driver_id) WHERE status = 'OPEN' DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, shift.ID, shift.DriverID, shift.ClockInAt, shift.Status)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("driver_id", shift.DriverID.String()).
			Msg("failed to create shift")
		return false, fmt.Errorf("failed to create shift: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("driver_id", shift.DriverID.String()).
			Msg("driver already has an open shift")
		return false, nil
	}

	r.logger.Debug().
		Str("shift_id", shift.ID.String()).
		Str("driver_id", shift.DriverID.String()).
		Msg("shift opened")

	return true, nil
}

// GetByID retrieves a single shift.
func (r *shiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DriverShift, error) {
	query := `
		SELECT id, driver_id, clock_in_at, clock_out_at, status, closure_reason, total_working_hours
		FROM driver_shifts
		WHERE id = $1
	`

	var s model.DriverShift
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.DriverID,
		&s.ClockInAt,
		&s.ClockOutAt,
		&s.Status,
		&s.ClosureReason,
		&s.TotalWorkingHours,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("shift_id", id.String()).Msg("failed to query shift")
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}

	return &s, nil
}

// ListOpen retrieves every shift that has not been clocked out.
func (r *shiftRepository) ListOpen(ctx context.Context) ([]model.DriverShift, error) {
	query := `
		SELECT id, driver_id, clock_in_at, clock_out_at, status, closure_reason, total_working_hours
		FROM driver_shifts
		WHERE status = $1
		ORDER BY clock_in_at
	`

	rows, err := r.pool.Query(ctx, query, model.ShiftStatusOpen)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query open shifts")
		return nil, fmt.Errorf("failed to query open shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.DriverShift
	for rows.Next() {
		var s model.DriverShift
		if err := rows.Scan(&s.ID, &s.DriverID, &s.ClockInAt, &s.ClockOutAt, &s.Status, &s.ClosureReason, &s.TotalWorkingHours); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shift row")
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// CloseIfOpen completes a shift only if it is still OPEN at the moment of
// write. An existing closure reason is kept; the given one is recorded only
// when none is present.
func (r *shiftRepository) CloseIfOpen(ctx context.Context, id uuid.UUID, clockOutAt time.Time, reason string, hours decimal.Decimal) (bool, error) {
	query := `
		UPDATE driver_shifts
		SET clock_out_at = $2,
			status = $3,
			closure_reason = COALESCE(closure_reason, $4),
			total_working_hours = $5
		WHERE id = $1 AND status = $6
	`

	tag, err := r.pool.Exec(ctx, query, id, clockOutAt, model.ShiftStatusCompleted, reason, hours, model.ShiftStatusOpen)
	if err != nil {
		r.logger.Error().Err(err).Str("shift_id", id.String()).Msg("failed to close shift")
		return false, fmt.Errorf("failed to close shift: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("shift_id", id.String()).
			Msg("shift no longer open, skipping close")
		return false, nil
	}

	return true, nil
}
