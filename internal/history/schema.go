package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var baseSchema string

// migrations[i] upgrades a database at user_version i to i+1. Append only.
var migrations = []string{
	baseSchema,
}

// ErrNewerSchema reports a database written by a build with more migrations.
var ErrNewerSchema = errors.New("history: database schema is newer than this build")

// migrate brings the database up to len(migrations), one transaction per step.
func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > len(migrations) {
		return fmt.Errorf("%w: %s is at version %d, expected at most %d", ErrNewerSchema, s.path, current, len(migrations))
	}
	for version := current; version < len(migrations); version++ {
		if err := s.applyMigration(ctx, version); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, version int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version+1, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrations[version]); err != nil {
		return fmt.Errorf("apply migration %d: %w", version+1, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version+1)); err != nil {
		return fmt.Errorf("record schema version %d: %w", version+1, err)
	}
	return tx.Commit()
}
