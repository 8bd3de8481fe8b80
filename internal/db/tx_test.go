package db

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(`CREATE TABLE positions (uri TEXT PRIMARY KEY, position_ms INTEGER)`)
	require.NoError(t, err)
	return conn
}

func countRows(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&n))
	return n
}

func TestWithTx_Success(t *testing.T) {
	conn := setupTestDB(t)

	err := WithTx(conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO positions VALUES (?, ?)`, "file:///a.mkv", 1000)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, conn))
}

func TestWithTx_Rollback(t *testing.T) {
	conn := setupTestDB(t)
	boom := errors.New("boom")

	err := WithTx(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO positions VALUES (?, ?)`, "file:///a.mkv", 1000); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Zero(t, countRows(t, conn))
}

func TestWithTx_PartialRollback(t *testing.T) {
	conn := setupTestDB(t)

	err := WithTx(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO positions VALUES (?, ?)`, "file:///a.mkv", 1); err != nil {
			return err
		}
		// duplicate primary key
		_, err := tx.Exec(`INSERT INTO positions VALUES (?, ?)`, "file:///a.mkv", 2)
		return err
	})

	require.Error(t, err)
	assert.Zero(t, countRows(t, conn))
}

func TestNullMillis(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want sql.NullInt64
	}{
		{"positive", 1500 * time.Millisecond, sql.NullInt64{Int64: 1500, Valid: true}},
		{"truncates sub-millisecond", 1500*time.Millisecond + 999*time.Microsecond, sql.NullInt64{Int64: 1500, Valid: true}},
		{"zero is null", 0, sql.NullInt64{}},
		{"negative is null", -time.Second, sql.NullInt64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NullMillis(tt.in))
		})
	}
}

func TestMillisValue(t *testing.T) {
	assert.Equal(t, 2*time.Second, MillisValue(sql.NullInt64{Int64: 2000, Valid: true}))
	assert.Zero(t, MillisValue(sql.NullInt64{Int64: 2000}))
}
