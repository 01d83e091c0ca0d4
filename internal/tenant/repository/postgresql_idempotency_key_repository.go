package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// PostgreSQLIdempotencyKeyRepository implements idempotency key persistence
// for PostgreSQL. Keys are delivery ids of expiry messages; a key that is
// already present means the delivery has been processed.
type PostgreSQLIdempotencyKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLIdempotencyKeyRepository creates a new PostgreSQL idempotency key repository.
func NewPostgreSQLIdempotencyKeyRepository(db *sql.DB) *PostgreSQLIdempotencyKeyRepository {
	return &PostgreSQLIdempotencyKeyRepository{db: db}
}

// Exists reports whether the key has already been processed. Expired keys are
// treated as absent.
func (p *PostgreSQLIdempotencyKeyRepository) Exists(ctx context.Context, key string, now time.Time) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
			  SELECT 1 FROM idempotency_keys WHERE key = $1 AND expires_at > $2
			  )`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, key, now).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check idempotency key")
	}
	return exists, nil
}

// Create records a processed delivery. Inserting an existing key is a no-op,
// so concurrent duplicate deliveries both succeed without error.
func (p *PostgreSQLIdempotencyKeyRepository) Create(ctx context.Context, idempotencyKey *tenantDomain.IdempotencyKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO idempotency_keys (key, processed_at, expires_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (key) DO NOTHING`

	_, err := querier.ExecContext(
		ctx,
		query,
		idempotencyKey.Key,
		idempotencyKey.ProcessedAt,
		idempotencyKey.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create idempotency key")
	}
	return nil
}

// DeleteExpired removes keys whose retention window has passed and returns
// the number of rows deleted.
func (p *PostgreSQLIdempotencyKeyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM idempotency_keys WHERE expires_at <= $1`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired idempotency keys")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return deleted, nil
}
