package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemoryMigrates(t *testing.T) {
	db, err := Open("", 5000)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='signature_components'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpen_FileDatabaseReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regestra.db")

	db, err := Open(path, 5000)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tags (name) VALUES ('korespondencja')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := Open(path, 5000)
	require.NoError(t, err)
	defer db2.Close()

	var name string
	require.NoError(t, db2.QueryRow(`SELECT name FROM tags`).Scan(&name))
	assert.Equal(t, "korespondencja", name)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, err := Open("", 5000)
	require.NoError(t, err)
	defer db.Close()

	err = db.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO tags (name) VALUES ('fotografie')`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, err := Open("", 5000)
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	err = db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO tags (name) VALUES ('mapy')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&count))
	assert.Equal(t, 0, count, "insert must not survive rollback")
}

func TestLockMaintenance_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regestra.db")

	db, err := Open(path, 5000)
	require.NoError(t, err)
	defer db.Close()

	unlock, err := db.LockMaintenance(context.Background())
	require.NoError(t, err)
	unlock()

	// Re-acquire after release works
	unlock2, err := db.LockMaintenance(context.Background())
	require.NoError(t, err)
	unlock2()
}

func TestLockMaintenance_InMemoryNoop(t *testing.T) {
	db, err := Open("", 5000)
	require.NoError(t, err)
	defer db.Close()

	unlock, err := db.LockMaintenance(context.Background())
	require.NoError(t, err)
	unlock()
}

func TestOpen_ForeignKeysEnforced(t *testing.T) {
	db, err := Open("", 5000)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO signature_elements
		(signature_component_id, name, created_on, modified_on)
		VALUES (999, 'orphan', '2026-01-01', '2026-01-01')`)
	require.Error(t, err, "FK violation must be rejected")
}
