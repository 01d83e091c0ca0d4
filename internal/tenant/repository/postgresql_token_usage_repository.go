package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
)

// PostgreSQLTokenUsageRepository tracks issued token counts per workspace and
// calendar month, backing the monthly quota check on free-tier workspaces.
type PostgreSQLTokenUsageRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenUsageRepository creates a new PostgreSQL token usage repository.
func NewPostgreSQLTokenUsageRepository(db *sql.DB) *PostgreSQLTokenUsageRepository {
	return &PostgreSQLTokenUsageRepository{db: db}
}

// Increment adds one issued token to the workspace's counter for the period
// (formatted "2006-01").
func (p *PostgreSQLTokenUsageRepository) Increment(ctx context.Context, workspaceID uuid.UUID, period string) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO token_usage (workspace_id, period, tokens_issued)
			  VALUES ($1, $2, 1)
			  ON CONFLICT (workspace_id, period)
			  DO UPDATE SET tokens_issued = token_usage.tokens_issued + 1`

	if _, err := querier.ExecContext(ctx, query, workspaceID, period); err != nil {
		return apperrors.Wrap(err, "failed to increment token usage")
	}
	return nil
}

// Get returns the issued token count for the workspace and period. Missing
// rows count as zero.
func (p *PostgreSQLTokenUsageRepository) Get(ctx context.Context, workspaceID uuid.UUID, period string) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT tokens_issued FROM token_usage WHERE workspace_id = $1 AND period = $2`

	var count int64
	err := querier.QueryRowContext(ctx, query, workspaceID, period).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, apperrors.Wrap(err, "failed to get token usage")
	}
	return count, nil
}
