package schema

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTable(name string) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "CREATE TABLE "+name+" (id INTEGER)")
		return err
	}
}

func TestEvolution_Register(t *testing.T) {
	tests := []struct {
		name    string
		m       Migration
		wantErr bool
	}{
		{name: "valid", m: Migration{Version: 2, Up: createTable("b")}},
		{name: "zero version", m: Migration{Version: 0, Up: createTable("x")}, wantErr: true},
		{name: "duplicate", m: Migration{Version: 1, Up: createTable("x")}, wantErr: true},
		{name: "no up", m: Migration{Version: 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvolution()
			require.NoError(t, e.Register(Migration{Version: 1, Up: createTable("a")}))
			err := e.Register(tt.m)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 2, e.Latest())
			}
		})
	}
}

func TestEvolution_MigrateInOrderOnce(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	e := NewEvolution()
	require.NoError(t, e.Register(Migration{Version: 2, Description: "b", Up: createTable("b")}))
	require.NoError(t, e.Register(Migration{Version: 1, Description: "a", Up: createTable("a")}))

	require.NoError(t, e.Migrate(ctx, db))
	require.NoError(t, e.Migrate(ctx, db), "second run is a no-op")

	current, err := e.Current(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, current)

	history, err := e.History(ctx, db)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "a", history[0].Description)
	assert.Equal(t, "b", history[1].Description)
}

func TestEvolution_FailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	e := NewEvolution()
	require.NoError(t, e.Register(Migration{Version: 1, Up: createTable("a")}))
	require.NoError(t, e.Register(Migration{Version: 2, Up: func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "CREATE TABLE b (id INTEGER)"); err != nil {
			return err
		}
		return errors.New("boom")
	}}))

	require.Error(t, e.Migrate(ctx, db))

	current, err := e.Current(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, current)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'b'").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestEvolution_RejectsNewerDatabase(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	newer := NewEvolution()
	require.NoError(t, newer.Register(Migration{Version: 1, Up: createTable("a")}))
	require.NoError(t, newer.Register(Migration{Version: 2, Up: createTable("b")}))
	require.NoError(t, newer.Migrate(ctx, db))

	older := NewEvolution()
	require.NoError(t, older.Register(Migration{Version: 1, Up: createTable("a")}))
	assert.Error(t, older.Migrate(ctx, db))
}
