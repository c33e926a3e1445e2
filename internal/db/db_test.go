package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"":         DialectSQLite,
		"sqlite":   DialectSQLite,
		"SQLite3":  DialectSQLite,
		"postgres": DialectPostgres,
		"pgx":      DialectPostgres,
	}
	for in, want := range cases {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"file:rooms.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		sqliteDSN("rooms.db"))
	assert.Equal(t,
		"file:rooms.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		sqliteDSN("file:rooms.db?cache=shared"))
	assert.Equal(t, "file:x.db?_pragma=foreign_keys(0)", sqliteDSN("file:x.db?_pragma=foreign_keys(0)"))
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	handle, err := Open(ctx, DialectSQLite, filepath.Join(t.TempDir(), "bookings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	version, err := Migrate(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Running again is a no-op.
	version, err = Migrate(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_, err = handle.ExecContext(ctx, "INSERT INTO rooms (name) VALUES ('Aquarium')")
	require.NoError(t, err)
	_, err = handle.ExecContext(ctx, "INSERT INTO rooms (name) VALUES ('Aquarium')")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	handle, err := Open(ctx, DialectSQLite, filepath.Join(t.TempDir(), "bookings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })
	_, err = Migrate(ctx, handle)
	require.NoError(t, err)

	sentinel := assert.AnError
	err = handle.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO rooms (name) VALUES ('Lobby')"); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, handle.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count))
	assert.Zero(t, count)
}

func TestBuilderPlaceholders(t *testing.T) {
	lite := &DB{Dialect: DialectSQLite}
	query, _, err := lite.Builder().Select("id").From("rooms").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM rooms WHERE id = ?", query)
	assert.Empty(t, lite.LockSuffix())

	pg := &DB{Dialect: DialectPostgres}
	query, _, err = pg.Builder().Select("id").From("rooms").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM rooms WHERE id = $1", query)
	assert.Equal(t, "FOR UPDATE", pg.LockSuffix())
}
