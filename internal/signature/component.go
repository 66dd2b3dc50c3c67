package signature

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperr "github.com/regestra/regestra/internal/errors"
	"github.com/regestra/regestra/internal/store"
)

// Component is a named classification axis with its own numbering scheme
// and a monotonic counter feeding auto-generated element indices.
type Component struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IndexCount  int       `json:"indexCount"`
	IndexType   IndexType `json:"indexType"`
	CreatedOn   time.Time `json:"createdOn"`
	ModifiedOn  time.Time `json:"modifiedOn"`
}

// ComponentPatch carries optional field updates. Nil means "leave as is".
// The counter is deliberately absent: it is owned by the store and only
// moves through increment/reset/set.
type ComponentPatch struct {
	Name        *string
	Description *string
	IndexType   *IndexType
}

// ComponentStore owns signature components and their counters.
type ComponentStore struct {
	db *store.DB
}

// NewComponentStore creates a component store over the given database.
func NewComponentStore(db *store.DB) *ComponentStore {
	return &ComponentStore{db: db}
}

// Create inserts a new component with a zero counter.
// Duplicate names fail with a Conflict error.
func (s *ComponentStore) Create(ctx context.Context, name, description string, indexType IndexType) (*Component, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidInput("component name must not be empty")
	}
	if _, err := ParseIndexType(string(indexType)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var id int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO signature_components (name, description, index_count, index_type, created_on, modified_on)
			 VALUES (?, ?, 0, ?, ?, ?)
			 RETURNING id`,
			name, description, string(indexType), formatTime(now), formatTime(now),
		).Scan(&id)
		if isUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("component name %q already exists", name))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("signature_component_created",
		slog.Int64("component_id", id),
		slog.String("name", name),
		slog.String("index_type", string(indexType)))

	return s.GetByID(ctx, id)
}

// GetByID fetches a component by id.
func (s *ComponentStore) GetByID(ctx context.Context, id int64) (*Component, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, ''), index_count, index_type, created_on, modified_on
		 FROM signature_components WHERE id = ?`, id)
	return scanComponent(row, id)
}

// List returns all components ordered by name.
func (s *ComponentStore) List(ctx context.Context) ([]*Component, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), index_count, index_type, created_on, modified_on
		 FROM signature_components ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Component
	for rows.Next() {
		c, err := scanComponentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update applies a patch. Name uniqueness is re-checked; the counter cannot
// be written through this path.
func (s *ComponentStore) Update(ctx context.Context, id int64, patch ComponentPatch) (*Component, error) {
	if patch.IndexType != nil {
		if _, err := ParseIndexType(string(*patch.IndexType)); err != nil {
			return nil, err
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.InvalidInput("component name must not be empty")
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var sets []string
		var args []any
		if patch.Name != nil {
			sets = append(sets, "name = ?")
			args = append(args, *patch.Name)
		}
		if patch.Description != nil {
			sets = append(sets, "description = ?")
			args = append(args, *patch.Description)
		}
		if patch.IndexType != nil {
			sets = append(sets, "index_type = ?")
			args = append(args, string(*patch.IndexType))
		}
		if len(sets) == 0 {
			return nil
		}
		sets = append(sets, "modified_on = ?")
		args = append(args, formatTime(time.Now().UTC()))
		args = append(args, id)

		res, err := tx.ExecContext(ctx,
			`UPDATE signature_components SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if isUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("component name %q already exists", *patch.Name))
		}
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("component", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a component. Owned elements and their DAG edges cascade.
func (s *ComponentStore) Delete(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM signature_components WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("component", id)
		}
		slog.Info("signature_component_deleted", slog.Int64("component_id", id))
		return nil
	})
}

// IncrementCounter atomically increments the counter and returns the new
// value. Used once per element creation.
func (s *ComponentStore) IncrementCounter(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		count, err = incrementCounterTx(ctx, tx, id)
		return err
	})
	return count, err
}

// incrementCounterTx is the single atomic read-modify-write on the counter.
// RETURNING removes the read-then-write race window.
func incrementCounterTx(ctx context.Context, tx *sql.Tx, id int64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`UPDATE signature_components
		 SET index_count = index_count + 1, modified_on = ?
		 WHERE id = ?
		 RETURNING index_count`,
		formatTime(time.Now().UTC()), id,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, apperr.NotFound("component", id)
	}
	return count, err
}

// resetCounterTx and setCounterTx exist solely for re-indexing and must
// only run inside the re-index transaction.
func resetCounterTx(ctx context.Context, tx *sql.Tx, id int64) error {
	return setCounterTx(ctx, tx, id, 0)
}

func setCounterTx(ctx context.Context, tx *sql.Tx, id int64, n int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE signature_components SET index_count = ?, modified_on = ? WHERE id = ?`,
		n, formatTime(time.Now().UTC()), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("component", id)
	}
	return nil
}

func scanComponent(row *sql.Row, id int64) (*Component, error) {
	var c Component
	var indexType, created, modified string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IndexCount, &indexType, &created, &modified)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("component", id)
	}
	if err != nil {
		return nil, err
	}
	c.IndexType = IndexType(indexType)
	c.CreatedOn = parseTime(created)
	c.ModifiedOn = parseTime(modified)
	return &c, nil
}

func scanComponentRow(rows *sql.Rows) (*Component, error) {
	var c Component
	var indexType, created, modified string
	if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IndexCount, &indexType, &created, &modified); err != nil {
		return nil, err
	}
	c.IndexType = IndexType(indexType)
	c.CreatedOn = parseTime(created)
	c.ModifiedOn = parseTime(modified)
	return &c, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation detects SQLite UNIQUE constraint failures. The modernc
// driver surfaces them as plain errors, so we match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
