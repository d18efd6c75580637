package repository

import (
	"context"
	"testing"
	"time"

	"lorryops/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftRepository_Create_OneOpenShiftPerDriver(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewShiftRepository(pool, zerolog.Nop())
	ctx := context.Background()

	driverID := uuid.New()
	first := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  driverID,
		ClockInAt: time.Now().UTC(),
		Status:    model.ShiftStatusOpen,
	}

	created, err := repo.Create(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	// Second open shift for the same driver is rejected by the partial index
	second := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  driverID,
		ClockInAt: time.Now().UTC(),
		Status:    model.ShiftStatusOpen,
	}
	created, err = repo.Create(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)

	// A different driver is unaffected
	other := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  uuid.New(),
		ClockInAt: time.Now().UTC(),
		Status:    model.ShiftStatusOpen,
	}
	created, err = repo.Create(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestShiftRepository_Create_AfterClose(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewShiftRepository(pool, zerolog.Nop())
	ctx := context.Background()

	driverID := uuid.New()
	shift := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  driverID,
		ClockInAt: time.Now().UTC().Add(-8 * time.Hour),
		Status:    model.ShiftStatusOpen,
	}

	created, err := repo.Create(ctx, shift)
	require.NoError(t, err)
	require.True(t, created)

	closed, err := repo.CloseIfOpen(ctx, shift.ID, time.Now().UTC(), "clocked out", decimal.RequireFromString("8.00"))
	require.NoError(t, err)
	require.True(t, closed)

	// A completed shift no longer blocks a new clock-in
	next := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  driverID,
		ClockInAt: time.Now().UTC(),
		Status:    model.ShiftStatusOpen,
	}
	created, err = repo.Create(ctx, next)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestShiftRepository_CloseIfOpen(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewShiftRepository(pool, zerolog.Nop())
	ctx := context.Background()

	clockIn := time.Now().UTC().Add(-5 * time.Hour)
	shift := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  uuid.New(),
		ClockInAt: clockIn,
		Status:    model.ShiftStatusOpen,
	}
	created, err := repo.Create(ctx, shift)
	require.NoError(t, err)
	require.True(t, created)

	clockOut := clockIn.Add(5 * time.Hour)
	closed, err := repo.CloseIfOpen(ctx, shift.ID, clockOut, model.AutoClosureReason, decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	assert.True(t, closed)

	loaded, err := repo.GetByID(ctx, shift.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, model.ShiftStatusCompleted, loaded.Status)
	require.NotNil(t, loaded.ClockOutAt)
	assert.WithinDuration(t, clockOut, *loaded.ClockOutAt, time.Second)
	require.NotNil(t, loaded.ClosureReason)
	assert.Equal(t, model.AutoClosureReason, *loaded.ClosureReason)
	require.NotNil(t, loaded.TotalWorkingHours)
	assert.Equal(t, "5.00", loaded.TotalWorkingHours.StringFixed(2))

	// Closing again is a no-op; the original closure reason survives
	closed, err = repo.CloseIfOpen(ctx, shift.ID, time.Now().UTC(), "clocked out", decimal.RequireFromString("9.99"))
	require.NoError(t, err)
	assert.False(t, closed)

	reloaded, err := repo.GetByID(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AutoClosureReason, *reloaded.ClosureReason)
	assert.Equal(t, "5.00", reloaded.TotalWorkingHours.StringFixed(2))
}

func TestShiftRepository_ListOpen(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewShiftRepository(pool, zerolog.Nop())
	ctx := context.Background()

	// No shifts yet
	shifts, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, shifts)

	earlier := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  uuid.New(),
		ClockInAt: time.Now().UTC().Add(-6 * time.Hour),
		Status:    model.ShiftStatusOpen,
	}
	later := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  uuid.New(),
		ClockInAt: time.Now().UTC().Add(-2 * time.Hour),
		Status:    model.ShiftStatusOpen,
	}

	for _, s := range []*model.DriverShift{later, earlier} {
		created, err := repo.Create(ctx, s)
		require.NoError(t, err)
		require.True(t, created)
	}

	closedShift := &model.DriverShift{
		ID:        uuid.New(),
		DriverID:  uuid.New(),
		ClockInAt: time.Now().UTC().Add(-10 * time.Hour),
		Status:    model.ShiftStatusOpen,
	}
	created, err := repo.Create(ctx, closedShift)
	require.NoError(t, err)
	require.True(t, created)
	ok, err := repo.CloseIfOpen(ctx, closedShift.ID, time.Now().UTC(), "clocked out", decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	require.True(t, ok)

	// Only open shifts come back, ordered by clock-in time
	shifts, err = repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, earlier.ID, shifts[0].ID)
	assert.Equal(t, later.ID, shifts[1].ID)
}

func TestShiftRepository_GetByID_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewShiftRepository(pool, zerolog.Nop())

	shift, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, shift)
}
