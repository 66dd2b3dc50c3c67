// Package store provides the SQLite bootstrap for Regestra: opening the
// database with the right pragmas, schema migration, transaction helpers
// and the maintenance lock used by re-indexing.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	apperr "github.com/regestra/regestra/internal/errors"
)

// DB wraps the SQLite handle together with the advisory maintenance lock.
type DB struct {
	*sql.DB
	path  string
	flock *flock.Flock
}

// Open opens (or creates) the Regestra database at path.
// An empty path opens an in-memory database for testing.
func Open(path string, busyTimeoutMS int) (*DB, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, apperr.New(apperr.ErrCodeDatabaseOpen,
				fmt.Sprintf("failed to create database directory %s", filepath.Dir(path)), err)
		}

		if err := validateIntegrity(path); err != nil {
			return nil, apperr.New(apperr.ErrCodeDatabaseCorrupt,
				fmt.Sprintf("database at %s failed integrity check", path), err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperr.New(apperr.ErrCodeDatabaseOpen, "failed to open database", err)
	}

	// Single writer prevents SQLITE_BUSY storms; readers go through WAL.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Pragmas must be set via statements; DSN params are not honored by
	// the modernc driver.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS),
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, apperr.New(apperr.ErrCodeDatabaseOpen, "failed to set pragma", err)
		}
	}

	d := &DB{DB: db, path: path}
	if path != "" {
		d.flock = flock.New(path + ".maintenance.lock")
	}

	if err := d.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

// validateIntegrity checks an existing database file before opening it for
// real. A missing file is fine; it will be created.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. The pool is capped at a single connection, so write
// transactions serialize at the pool boundary; counter increments and edge
// rewrites never interleave.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return apperr.TransactionAborted("begin", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("tx_rollback_failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.TransactionAborted("commit", err)
	}
	return nil
}

// LockMaintenance takes the advisory file lock guarding exclusive
// maintenance operations (re-indexing). Returns an unlock function.
// In-memory databases have no lock file; the unlock is then a no-op.
func (d *DB) LockMaintenance(ctx context.Context) (func(), error) {
	if d.flock == nil {
		return func() {}, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ok, err := d.flock.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil {
		return nil, apperr.New(apperr.ErrCodeMaintenanceLock, "failed to acquire maintenance lock", err)
	}
	if !ok {
		return nil, apperr.New(apperr.ErrCodeMaintenanceLock,
			"another maintenance operation is in progress", nil)
	}

	return func() {
		if err := d.flock.Unlock(); err != nil {
			slog.Warn("maintenance_unlock_failed", "error", err)
		}
	}, nil
}

// Close closes the database handle.
func (d *DB) Close() error {
	return d.DB.Close()
}
