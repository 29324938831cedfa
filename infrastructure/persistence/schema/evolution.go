// Package schema applies versioned migrations to SQL page stores.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Migration moves the schema from Version-1 to Version
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
}

// SchemaVersion is one applied migration as recorded in the database
type SchemaVersion struct {
	Version     int
	Description string
	AppliedAt   time.Time
}

// Evolution runs migrations in version order and records each one in the
// schema_version table inside the same transaction.
type Evolution struct {
	migrations []Migration
}

// NewEvolution creates a migration runner. Versions must start at 1 and be
// contiguous.
func NewEvolution(migrations ...Migration) (*Evolution, error) {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for i, m := range sorted {
		if m.Version != i+1 {
			return nil, fmt.Errorf("migration versions must be contiguous from 1: got %d at position %d", m.Version, i)
		}
		if m.Up == nil {
			return nil, fmt.Errorf("migration %d has no Up step", m.Version)
		}
	}
	return &Evolution{migrations: sorted}, nil
}

// Latest returns the version the schema reaches after Migrate
func (e *Evolution) Latest() int { return len(e.migrations) }

// Current returns the highest applied version, 0 for a fresh database
func (e *Evolution) Current(ctx context.Context, db *sql.DB) (int, error) {
	if err := ensureVersionTable(ctx, db); err != nil {
		return 0, err
	}
	var version int
	row := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration above the current version
func (e *Evolution) Migrate(ctx context.Context, db *sql.DB) error {
	current, err := e.Current(ctx, db)
	if err != nil {
		return err
	}
	if current > e.Latest() {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, e.Latest())
	}

	for _, m := range e.migrations[current:] {
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
	}
	return nil
}

// History returns the applied migrations, oldest first
func (e *Evolution) History(ctx context.Context, db *sql.DB) ([]SchemaVersion, error) {
	if err := ensureVersionTable(ctx, db); err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT version, description, applied_at FROM schema_version ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema history: %w", err)
	}
	defer rows.Close()

	var history []SchemaVersion
	for rows.Next() {
		var v SchemaVersion
		var appliedAt string
		if err := rows.Scan(&v.Version, &v.Description, &appliedAt); err != nil {
			return nil, err
		}
		if v.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt); err != nil {
			return nil, fmt.Errorf("invalid applied_at for schema version %d: %w", v.Version, err)
		}
		history = append(history, v)
	}
	return history, rows.Err()
}

func ensureVersionTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Up(ctx, tx); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Exec returns an Up step that runs a fixed list of statements
func Exec(statements ...string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}
