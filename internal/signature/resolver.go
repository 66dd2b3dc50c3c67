package signature

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PathSeparator joins element labels when rendering a full signature path.
const PathSeparator = " / "

// ResolvePath renders a signature path as a human-readable label chain,
// e.g. "[I] Fonds / [3] Box". Ids that no longer resolve render as an
// explicit placeholder; a path never silently loses positions.
func (s *ElementStore) ResolvePath(ctx context.Context, path Path) (string, error) {
	if len(path) == 0 {
		return "", nil
	}

	labels := make([]string, 0, len(path))
	for _, id := range path {
		label, err := s.elementLabel(ctx, id)
		if err != nil {
			return "", err
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, PathSeparator), nil
}

// ResolvePaths resolves a list of paths, preserving order and length.
func (s *ElementStore) ResolvePaths(ctx context.Context, paths []Path) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		label, err := s.ResolvePath(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, label)
	}
	return out, nil
}

// elementLabel renders one element as "[index] name" ("name" alone when the
// element has no index). Results are cached; mutation paths invalidate.
func (s *ElementStore) elementLabel(ctx context.Context, id int64) (string, error) {
	if label, ok := s.labels.Get(id); ok {
		return label, nil
	}

	var name, index string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, COALESCE(element_index, '') FROM signature_elements WHERE id = ?`,
		id).Scan(&name, &index)
	if err == sql.ErrNoRows {
		// Deliberately not cached: the element may be created later.
		return fmt.Sprintf("[missing element %d]", id), nil
	}
	if err != nil {
		return "", err
	}

	label := name
	if index != "" {
		label = fmt.Sprintf("[%s] %s", index, name)
	}
	s.labels.Add(id, label)
	return label, nil
}
