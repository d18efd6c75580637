package repository

import (
	"context"
	"fmt"

	"lorryops/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// idempotencyRepository implements IdempotencyRepository using PostgreSQL.
type idempotencyRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewIdempotencyRepository creates a new PostgreSQL-backed idempotency repository.
func NewIdempotencyRepository(pool *pgxpool.Pool, logger zerolog.Logger) IdempotencyRepository {
	return &idempotencyRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "idempotency").Logger(),
	}
}

// Register atomically inserts the request if its key is unseen. The primary
// key on idempotent_requests(key) is what makes concurrent duplicate
// submissions resolve to exactly one winner; ON CONFLICT DO NOTHING turns the
// loser's constraint hit into rows-affected = 0 without aborting the
// surrounding transaction.
func (r *idempotencyRepository) Register(ctx context.Context, tx pgx.Tx, req *model.IdempotentRequest) (bool, error) {
	query := `
		INSERT INTO idempotent_requests (key, order_id, action, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, req.Key, req.OrderID, req.Action, req.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("action", req.Action).
			Msg("failed to register idempotent request")
		return false, fmt.Errorf("failed to register idempotent request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Info().
			Str("key", req.Key).
			Str("action", req.Action).
			Msg("duplicate request detected by idempotency key")
		return false, nil
	}

	return true, nil
}
