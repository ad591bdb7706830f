package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-pop/internal/storage/postgres"
)

const createSchemaMigrations = `
	CREATE TABLE IF NOT EXISTS pop_schema_migrations (
		name        TEXT PRIMARY KEY,
		applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// migrationLockKey serialises concurrent popd instances migrating the same database.
const migrationLockKey = 7_160_501

// RunPostgresMigrations applies the embedded files not yet listed in
// pop_schema_migrations, each in its own transaction together with its
// bookkeeping row. Returns the names applied by this call.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) ([]string, error) {
	files, err := load(postgresFiles, "postgres")
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, createSchemaMigrations); err != nil {
		return nil, fmt.Errorf("create pop_schema_migrations: %w", err)
	}

	var applied []string
	for _, m := range files {
		ok, err := applyPostgres(ctx, pool, m)
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if ok {
			applied = append(applied, m.name)
		}
	}
	return applied, nil
}

// applyPostgres runs m unless it is already recorded. Reports whether it ran.
func applyPostgres(ctx context.Context, pool *postgres.Pool, m migration) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return false, fmt.Errorf("lock: %w", err)
	}

	var done bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pop_schema_migrations WHERE name = $1)`, m.name,
	).Scan(&done)
	if err != nil {
		return false, fmt.Errorf("check applied: %w", err)
	}
	if done {
		return false, nil
	}

	// Simple protocol lets one file hold several statements.
	if _, err := tx.Exec(ctx, m.sql, pgx.QueryExecModeSimpleProtocol); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO pop_schema_migrations (name) VALUES ($1)`, m.name); err != nil {
		return false, fmt.Errorf("record: %w", err)
	}
	return true, tx.Commit(ctx)
}
