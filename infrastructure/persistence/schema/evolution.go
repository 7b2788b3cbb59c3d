package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Migration moves a SQL store schema from Version-1 to Version
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
}

// AppliedVersion is one row of the schema history
type AppliedVersion struct {
	Version     int
	Description string
	AppliedAt   string
}

// Evolution applies registered migrations in version order
type Evolution struct {
	migrations []Migration
}

// NewEvolution creates an empty migration set
func NewEvolution() *Evolution {
	return &Evolution{}
}

// Register adds a migration. Versions start at 1 and must be unique.
func (e *Evolution) Register(m Migration) error {
	if m.Version < 1 {
		return fmt.Errorf("invalid migration version %d", m.Version)
	}
	if m.Up == nil {
		return fmt.Errorf("migration %d has no Up step", m.Version)
	}
	for _, existing := range e.migrations {
		if existing.Version == m.Version {
			return fmt.Errorf("migration %d already registered", m.Version)
		}
	}
	e.migrations = append(e.migrations, m)
	sort.Slice(e.migrations, func(i, j int) bool {
		return e.migrations[i].Version < e.migrations[j].Version
	})
	return nil
}

// Latest returns the highest registered version
func (e *Evolution) Latest() int {
	if len(e.migrations) == 0 {
		return 0
	}
	return e.migrations[len(e.migrations)-1].Version
}

const historyTable = `CREATE TABLE IF NOT EXISTS schema_version (
	version     INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at  TEXT NOT NULL
)`

// Current returns the highest applied version, 0 for a fresh database
func (e *Evolution) Current(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, historyTable); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// Migrate applies every migration above the current version, each in its own transaction
func (e *Evolution) Migrate(ctx context.Context, db *sql.DB) error {
	current, err := e.Current(ctx, db)
	if err != nil {
		return err
	}
	if current > e.Latest() {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, e.Latest())
	}

	for _, m := range e.migrations {
		if m.Version <= current {
			continue
		}
		if err := e.apply(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evolution) apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if err := m.Up(ctx, tx); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version(version, description, applied_at) VALUES(?, ?, ?)",
		m.Version, m.Description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}

// History returns applied versions, oldest first
func (e *Evolution) History(ctx context.Context, db *sql.DB) ([]AppliedVersion, error) {
	rows, err := db.QueryContext(ctx, "SELECT version, description, applied_at FROM schema_version ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("read schema history: %w", err)
	}
	defer rows.Close()

	var out []AppliedVersion
	for rows.Next() {
		var v AppliedVersion
		if err := rows.Scan(&v.Version, &v.Description, &v.AppliedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
