// Package repository implements persistence for wrapped data keys.
//
// Data keys are stored in their KMS-wrapped form only; plaintext key material
// never reaches the database. The repository supports transaction context via
// database.GetTx(), so data key creation can participate in the same
// transaction as the workspace row that owns it.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
)

// PostgreSQLDataKeyRepository implements data key persistence for PostgreSQL.
//
// Database schema requirements:
//   - id: UUID PRIMARY KEY
//   - algorithm: TEXT (e.g., "aes-gcm", "chacha20-poly1305")
//   - wrapped_key: BYTEA (KMS-wrapped key bytes)
//   - created_at: TIMESTAMP WITH TIME ZONE
type PostgreSQLDataKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLDataKeyRepository creates a new PostgreSQL data key repository.
func NewPostgreSQLDataKeyRepository(db *sql.DB) *PostgreSQLDataKeyRepository {
	return &PostgreSQLDataKeyRepository{db: db}
}

// Create inserts a new wrapped data key. The plaintext Key field is ignored.
func (p *PostgreSQLDataKeyRepository) Create(ctx context.Context, dataKey *cryptoDomain.DataKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO data_keys (id, algorithm, wrapped_key, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		dataKey.ID,
		dataKey.Algorithm,
		dataKey.WrappedKey,
		dataKey.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create data key")
	}
	return nil
}

// Get retrieves a wrapped data key by ID.
func (p *PostgreSQLDataKeyRepository) Get(
	ctx context.Context,
	dataKeyID uuid.UUID,
) (*cryptoDomain.DataKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, algorithm, wrapped_key, created_at
			  FROM data_keys
			  WHERE id = $1`

	var dataKey cryptoDomain.DataKey
	err := querier.QueryRowContext(ctx, query, dataKeyID).Scan(
		&dataKey.ID,
		&dataKey.Algorithm,
		&dataKey.WrappedKey,
		&dataKey.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "data key not found")
		}
		return nil, apperrors.Wrap(err, "failed to get data key")
	}

	return &dataKey, nil
}
