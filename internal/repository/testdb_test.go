package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container, creates the schema and returns a
// connection pool plus a cleanup function.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Create schema
	createSchema(t, pool)

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createSchema creates the database schema for testing. The unique constraints
// here are load-bearing: orders_code_key backs the adjustment-code probe,
// idempotent_requests(key) backs the idempotency guard and the partial index
// on driver_shifts enforces one open shift per driver.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			customer_id UUID NOT NULL,
			subtotal DECIMAL(12,2) NOT NULL DEFAULT 0,
			discount DECIMAL(12,2) NOT NULL DEFAULT 0,
			delivery_fee DECIMAL(12,2) NOT NULL DEFAULT 0,
			return_delivery_fee DECIMAL(12,2) NOT NULL DEFAULT 0,
			penalty_fee DECIMAL(12,2) NOT NULL DEFAULT 0,
			total DECIMAL(12,2) NOT NULL DEFAULT 0,
			paid_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
			balance DECIMAL(12,2) NOT NULL DEFAULT 0,
			delivery_date DATE,
			parent_id UUID REFERENCES orders(id),
			idempotency_key TEXT,
			cancel_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT orders_code_key UNIQUE (code)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS orders_idempotency_key_idx
			ON orders (idempotency_key) WHERE idempotency_key IS NOT NULL;

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price DECIMAL(12,2) NOT NULL DEFAULT 0,
			line_total DECIMAL(12,2) NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			amount DECIMAL(12,2) NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			voided_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS idempotent_requests (
			key TEXT PRIMARY KEY,
			order_id UUID NOT NULL,
			action TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS driver_shifts (
			id UUID PRIMARY KEY,
			driver_id UUID NOT NULL,
			clock_in_at TIMESTAMPTZ NOT NULL,
			clock_out_at TIMESTAMPTZ,
			status TEXT NOT NULL,
			closure_reason TEXT,
			total_working_hours DECIMAL(8,2)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS driver_shifts_open_driver_idx
			ON driver_shifts (driver_id) WHERE status = 'OPEN';
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}
