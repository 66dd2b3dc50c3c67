package signature

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	apperr "github.com/regestra/regestra/internal/errors"
	"github.com/regestra/regestra/internal/store"
)

// Element is a node of a component's classification DAG. Each element
// belongs to exactly one component and may have any number of parent
// elements (but never itself).
type Element struct {
	ID          int64   `json:"id"`
	ComponentID int64   `json:"signatureComponentId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Index       string  `json:"index,omitempty"`
	ParentIDs   []int64 `json:"parentIds"`

	// Populated on request only.
	Parents   []*Element `json:"parents,omitempty"`
	Component *Component `json:"component,omitempty"`

	CreatedOn  time.Time `json:"createdOn"`
	ModifiedOn time.Time `json:"modifiedOn"`
}

// CreateElementInput carries the fields for element creation.
// Index is optional: when empty, the component counter is incremented and
// formatted with the component's numbering scheme.
type CreateElementInput struct {
	ComponentID int64
	Name        string
	Description string
	Index       string
	ParentIDs   []int64
}

// ElementPatch carries optional element updates. Nil means "leave as is".
// ParentIDs, when present, replaces the whole parent edge set.
type ElementPatch struct {
	Name        *string
	Description *string
	Index       *string
	ParentIDs   *[]int64
}

// ElementStore owns signature elements and their parent DAG.
type ElementStore struct {
	db     *store.DB
	labels *lru.Cache[int64, string]
}

// NewElementStore creates an element store with a label cache of the given
// size (used by signature path resolution).
func NewElementStore(db *store.DB, labelCacheSize int) (*ElementStore, error) {
	if labelCacheSize < 1 {
		labelCacheSize = 1024
	}
	cache, err := lru.New[int64, string](labelCacheSize)
	if err != nil {
		return nil, err
	}
	return &ElementStore{db: db, labels: cache}, nil
}

// Create inserts an element, its counter bump and its parent edges in one
// transaction. A missing component fails with NotFound before the counter
// moves; any later failure rolls the whole thing back.
func (s *ElementStore) Create(ctx context.Context, in CreateElementInput) (*Element, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.InvalidInput("element name must not be empty")
	}

	now := formatTime(time.Now().UTC())
	var id int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var indexType string
		err := tx.QueryRowContext(ctx,
			`SELECT index_type FROM signature_components WHERE id = ?`, in.ComponentID,
		).Scan(&indexType)
		if err == sql.ErrNoRows {
			return apperr.NotFound("component", in.ComponentID)
		}
		if err != nil {
			return err
		}

		// The counter moves even when the caller supplies an explicit
		// index, so later auto-generated indices stay meaningful.
		count, err := incrementCounterTx(ctx, tx, in.ComponentID)
		if err != nil {
			return err
		}

		index := in.Index
		if index == "" {
			index, err = FormatIndex(count, IndexType(indexType))
			if err != nil {
				return err
			}
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO signature_elements
				(signature_component_id, name, description, element_index, created_on, modified_on)
			 VALUES (?, ?, ?, ?, ?, ?)
			 RETURNING id`,
			in.ComponentID, in.Name, in.Description, index, now, now,
		).Scan(&id)
		if err != nil {
			return err
		}

		return insertParentEdges(ctx, tx, id, in.ParentIDs)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("signature_element_created",
		slog.Int64("element_id", id),
		slog.Int64("component_id", in.ComponentID),
		slog.String("name", in.Name))

	return s.GetByID(ctx, id)
}

// Update patches an element. Index overrides go straight through (they do
// not touch the component counter); a ParentIDs patch is a transactional
// full replace of the edge set.
func (s *ElementStore) Update(ctx context.Context, id int64, patch ElementPatch) (*Element, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.InvalidInput("element name must not be empty")
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
		if patch.Index != nil {
			sets = append(sets, "element_index = ?")
			args = append(args, *patch.Index)
		}

		sets = append(sets, "modified_on = ?")
		args = append(args, formatTime(time.Now().UTC()), id)

		res, err := tx.ExecContext(ctx,
			`UPDATE signature_elements SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("element", id)
		}

		if patch.ParentIDs != nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM signature_element_parents WHERE element_id = ?`, id); err != nil {
				return err
			}
			if err := insertParentEdges(ctx, tx, id, *patch.ParentIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.labels.Remove(id)
	return s.GetByID(ctx, id)
}

// Delete removes an element. Edges where it appears as parent or child
// cascade away; the component counter is left alone. Gaps are permanent
// until an operator re-indexes.
func (s *ElementStore) Delete(ctx context.Context, id int64) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM signature_elements WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("element", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.labels.Remove(id)
	slog.Info("signature_element_deleted", slog.Int64("element_id", id))
	return nil
}

// GetByID fetches an element. Optional populate values: "parents" loads the
// parent elements, "component" loads the owning component.
func (s *ElementStore) GetByID(ctx context.Context, id int64, populate ...string) (*Element, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, signature_component_id, name, COALESCE(description, ''),
		        COALESCE(element_index, ''), created_on, modified_on
		 FROM signature_elements WHERE id = ?`, id)

	el, err := scanElement(row, id)
	if err != nil {
		return nil, err
	}

	el.ParentIDs, err = s.parentIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, p := range populate {
		switch p {
		case "parents":
			for _, pid := range el.ParentIDs {
				parent, err := s.GetByID(ctx, pid)
				if err != nil {
					if apperr.IsNotFound(err) {
						continue
					}
					return nil, err
				}
				el.Parents = append(el.Parents, parent)
			}
		case "component":
			el.Component, err = NewComponentStore(s.db).GetByID(ctx, el.ComponentID)
			if err != nil {
				return nil, err
			}
		default:
			slog.Warn("element_populate_unknown", slog.String("populate", p))
		}
	}

	return el, nil
}

// ListByComponent returns a component's elements ordered by index, then name.
func (s *ElementStore) ListByComponent(ctx context.Context, componentID int64) ([]*Element, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, signature_component_id, name, COALESCE(description, ''),
		        COALESCE(element_index, ''), created_on, modified_on
		 FROM signature_elements
		 WHERE signature_component_id = ?
		 ORDER BY element_index, name COLLATE NOCASE`, componentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Element
	for rows.Next() {
		el, err := scanElementRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, el := range out {
		if el.ParentIDs, err = s.parentIDs(ctx, el.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Reindex deterministically regenerates every index in a component:
// elements ordered by case-insensitive name, counter reset, one increment
// per element, final counter set to the element count. Runs under the
// maintenance lock and a single transaction; any failure leaves all prior
// indices untouched. Returns the final counter value.
func (s *ElementStore) Reindex(ctx context.Context, componentID int64) (int, error) {
	unlock, err := s.db.LockMaintenance(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var final int
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var indexType string
		err := tx.QueryRowContext(ctx,
			`SELECT index_type FROM signature_components WHERE id = ?`, componentID,
		).Scan(&indexType)
		if err == sql.ErrNoRows {
			return apperr.NotFound("component", componentID)
		}
		if err != nil {
			return err
		}

		// Stable order: case-insensitive name, id as tiebreaker.
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM signature_elements
			 WHERE signature_component_id = ?
			 ORDER BY name COLLATE NOCASE, id`, componentID)
		if err != nil {
			return err
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if err := resetCounterTx(ctx, tx, componentID); err != nil {
			return err
		}

		for _, id := range ids {
			count, err := incrementCounterTx(ctx, tx, componentID)
			if err != nil {
				return err
			}
			index, err := FormatIndex(count, IndexType(indexType))
			if err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx,
				`UPDATE signature_elements SET element_index = ?, modified_on = ? WHERE id = ?`,
				index, formatTime(time.Now().UTC()), id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n != 1 {
				// Element vanished mid-run; abort the whole re-index.
				return apperr.TransactionAborted("reindex",
					fmt.Errorf("element %d disappeared during re-index", id))
			}
		}

		final = len(ids)
		return setCounterTx(ctx, tx, componentID, final)
	})
	if err != nil {
		return 0, err
	}

	s.labels.Purge()
	slog.Info("signature_component_reindexed",
		slog.Int64("component_id", componentID),
		slog.Int("final_count", final))
	return final, nil
}

// insertParentEdges validates and inserts the parent edge set for an
// element. Self-parenting and dangling parent ids are rejected here, at the
// edge-insertion boundary.
func insertParentEdges(ctx context.Context, tx *sql.Tx, elementID int64, parentIDs []int64) error {
	seen := make(map[int64]struct{}, len(parentIDs))
	for _, pid := range parentIDs {
		if pid == elementID {
			return apperr.New(apperr.ErrCodeSelfParent,
				fmt.Sprintf("element %d cannot be its own parent", elementID), nil)
		}
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}

		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM signature_elements WHERE id = ?`, pid).Scan(&exists)
		if err == sql.ErrNoRows {
			return apperr.NotFound("parent element", pid)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO signature_element_parents (element_id, parent_id) VALUES (?, ?)`,
			elementID, pid); err != nil {
			return err
		}
	}
	return nil
}

func (s *ElementStore) parentIDs(ctx context.Context, elementID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT parent_id FROM signature_element_parents
		 WHERE element_id = ? ORDER BY parent_id`, elementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanElement(row *sql.Row, id int64) (*Element, error) {
	var el Element
	var created, modified string
	err := row.Scan(&el.ID, &el.ComponentID, &el.Name, &el.Description, &el.Index, &created, &modified)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("element", id)
	}
	if err != nil {
		return nil, err
	}
	el.CreatedOn = parseTime(created)
	el.ModifiedOn = parseTime(modified)
	return &el, nil
}

func scanElementRow(rows *sql.Rows) (*Element, error) {
	var el Element
	var created, modified string
	if err := rows.Scan(&el.ID, &el.ComponentID, &el.Name, &el.Description, &el.Index, &created, &modified); err != nil {
		return nil, err
	}
	el.CreatedOn = parseTime(created)
	el.ModifiedOn = parseTime(modified)
	return &el, nil
}
