package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), Config{
		Driver:       DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "portal.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "mysql", DSN: "x"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/a.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", sqliteDSN("/tmp/a.db"))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN("file::memory:?cache=shared"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", (&DB{driver: DriverSQLite}).Placeholder(2))
	assert.Equal(t, "$2", (&DB{driver: DriverPostgres}).Placeholder(2))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 10;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, Migration{Version: 2, Name: "second", SQL: "SELECT 2;"}, migrations[0])
	assert.Equal(t, 10, migrations[1].Version)
}

func TestLoadMigrations_BadFilename(t *testing.T) {
	_, err := LoadMigrations(fstest.MapFS{"schema.sql": {Data: []byte("SELECT 1;")}})
	assert.ErrorContains(t, err, "invalid migration filename")
}

func TestMigrator_RunMigrations(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, zap.NewNop())
	ctx := context.Background()

	applied, err := m.RunMigrations(ctx, Migrations())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = m.RunMigrations(ctx, Migrations())
	require.NoError(t, err)
	assert.Zero(t, applied)

	for _, table := range []string{"locations", "users", "daily_reconciliation", "billing_inquiries",
		"bills_payment", "order_requests", "refund_requests", "it_requests"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n), table)
		assert.Zero(t, n, table)
	}
}

func TestMigrator_FailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, zap.NewNop())
	ctx := context.Background()

	_, err := m.RunMigrations(ctx, fstest.MapFS{
		"001_bad.sql": {Data: []byte("CREATE TABLE ok (id TEXT); NOT SQL;")},
	})
	require.Error(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Zero(t, n)
}
