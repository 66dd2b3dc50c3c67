package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperr "github.com/regestra/regestra/internal/errors"
	"github.com/regestra/regestra/internal/store"
)

// Tag labels documents for filtered search.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TagStore persists tags.
type TagStore struct {
	db *store.DB
}

func NewTagStore(db *store.DB) *TagStore {
	return &TagStore{db: db}
}

// Create inserts a tag. Names are unique.
func (s *TagStore) Create(ctx context.Context, name, description string) (*Tag, error) {
	if name == "" {
		return nil, apperr.InvalidInput("tag name must not be empty")
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tags (name, description) VALUES (?, ?) RETURNING id`,
		name, description).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict(fmt.Sprintf("tag %q already exists", name))
		}
		return nil, apperr.New(apperr.ErrCodeInternal, "failed to create tag", err)
	}

	return &Tag{ID: id, Name: name, Description: description}, nil
}

// List returns all tags ordered by name.
func (s *TagStore) List(ctx context.Context) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM tags ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, apperr.New(apperr.ErrCodeInternal, "failed to list tags", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

// Delete removes a tag; document links go with it.
func (s *TagStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return apperr.New(apperr.ErrCodeInternal, "failed to delete tag", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("tag", id)
	}
	return nil
}

// The modernc driver has no typed constraint errors; matching the message
// is the documented recourse.
func isUniqueViolation(err error) bool {
	if err == nil || err == sql.ErrNoRows {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
