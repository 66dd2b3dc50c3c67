package signature

import (
	"context"
	"database/sql"
	"strings"

	"github.com/regestra/regestra/internal/search"
)

// PathHandler resolves signature path conditions against a column holding a
// canonical JSON array of paths (e.g. [[1,2],[7]]). Matching is
// substring-based over the canonical text, which is reliable exactly
// because the codec never emits whitespace.
//
// The value is one path ([1,2]) or a list of paths ([[1,2],[3]]); multiple
// paths OR-combine before negation. Malformed input degrades to a
// guaranteed non-match instead of failing the search.
type PathHandler struct {
	Column string
}

// Resolve implements search.FieldHandler.
func (h PathHandler) Resolve(el search.QueryElement) (*search.Predicate, error) {
	var patterns func(Path) []string
	switch el.Condition {
	case search.CondEQ, search.CondAnyOf:
		patterns = ExactPatterns
	case search.CondStartsWith:
		patterns = PrefixPatterns
	case search.CondContainsSequence:
		patterns = SequencePatterns
	default:
		return nil, nil
	}

	paths, ok := pathsFromValue(el.Value)
	if !ok || len(paths) == 0 {
		// Invalid input matches nothing (everything under negation).
		return &search.Predicate{Where: "1 = 0"}, nil
	}

	var ors []string
	var params []any
	for _, path := range paths {
		pats := patterns(path)
		if len(pats) == 0 {
			continue
		}
		for _, p := range pats {
			ors = append(ors, h.Column+` LIKE ? ESCAPE '\'`)
			params = append(params, "%"+search.EscapeLike(p)+"%")
		}
	}
	if len(ors) == 0 {
		return &search.Predicate{Where: "1 = 0"}, nil
	}

	return &search.Predicate{
		Where:  "(" + strings.Join(ors, " OR ") + ")",
		Params: params,
	}, nil
}

// pathsFromValue normalizes the JSON-decoded value into a path list.
// Accepts a single path ([]any of numbers) or a list of paths ([]any of
// []any). Returns false for anything else.
func pathsFromValue(v any) ([]Path, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	if len(list) == 0 {
		return nil, false
	}

	// A list of paths has lists as elements; a single path has numbers.
	if _, nested := list[0].([]any); nested {
		var paths []Path
		for _, item := range list {
			inner, ok := item.([]any)
			if !ok {
				return nil, false
			}
			p, ok := pathFromList(inner)
			if !ok {
				return nil, false
			}
			paths = append(paths, p)
		}
		return paths, true
	}

	p, ok := pathFromList(list)
	if !ok {
		return nil, false
	}
	return []Path{p}, true
}

func pathFromList(list []any) (Path, bool) {
	path := make(Path, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case float64:
			if n != float64(int64(n)) || n < 0 {
				return nil, false
			}
			path = append(path, int64(n))
		case int64:
			path = append(path, n)
		case int:
			path = append(path, int64(n))
		default:
			return nil, false
		}
	}
	return path, true
}

// elementCompiler builds the element search compiler. Field names follow
// the public API surface, not the column names.
func elementCompiler() *search.Compiler {
	return &search.Compiler{
		Table:      "signature_elements",
		Alias:      "se",
		PrimaryKey: "se.id",
		Columns: map[string]string{
			"name":                 "se.name",
			"description":          "se.description",
			"index":                "se.element_index",
			"signatureComponentId": "se.signature_component_id",
			"createdOn":            "se.created_on",
			"modifiedOn":           "se.modified_on",
		},
		Handlers: map[string]search.FieldHandler{
			"parentIds": search.JoinHandler{
				Join:   "JOIN signature_element_parents sep ON sep.element_id = se.id",
				Column: "sep.parent_id",
			},
			"hasParents": search.ExistsHandler{
				Subquery: "SELECT 1 FROM signature_element_parents hp WHERE hp.element_id = se.id",
			},
		},
	}
}

// Search runs an abstract query over elements. Results carry parent ids;
// use populate on GetByID for full parent records.
func (s *ElementStore) Search(ctx context.Context, req search.Request) (*search.Response[*Element], error) {
	req.Normalize(search.DefaultPageSize, search.MaxPageSize)

	compiled := elementCompiler().Compile(req,
		`DISTINCT se.id, se.signature_component_id, se.name,
		 COALESCE(se.description, ''), COALESCE(se.element_index, ''),
		 se.created_on, se.modified_on`)

	resp, err := search.Execute(ctx, s.db, compiled, func(rows *sql.Rows) (*Element, error) {
		return scanElementRow(rows)
	})
	if err != nil {
		return nil, err
	}

	for _, el := range resp.Data {
		ids, err := s.parentIDs(ctx, el.ID)
		if err != nil {
			return nil, err
		}
		el.ParentIDs = ids
	}
	return resp, nil
}
