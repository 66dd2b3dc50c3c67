package search

import "fmt"

// ColumnHandler resolves a field whose column name differs from its API
// name, with the full plain-column condition set.
type ColumnHandler struct {
	Column string
}

// Resolve implements FieldHandler.
func (h ColumnHandler) Resolve(el QueryElement) (*Predicate, error) {
	return CompileColumn(h.Column, el)
}

// JoinHandler resolves a field living on a joined table. Identical join
// clauses are deduplicated by the compiler, so several predicates can share
// one join.
type JoinHandler struct {
	Join   string
	Column string
}

// Resolve implements FieldHandler.
func (h JoinHandler) Resolve(el QueryElement) (*Predicate, error) {
	pred, err := CompileColumn(h.Column, el)
	if pred == nil || err != nil {
		return pred, err
	}
	pred.Join = h.Join
	return pred, nil
}

// ExistsHandler resolves a boolean field backed by an EXISTS subquery
// (e.g. "hasParents" over the element parent edge table). Only EQ with a
// boolean value is meaningful; everything else is not handled.
type ExistsHandler struct {
	Subquery string
}

// Resolve implements FieldHandler.
func (h ExistsHandler) Resolve(el QueryElement) (*Predicate, error) {
	if el.Condition != CondEQ {
		return nil, nil
	}
	want, ok := el.Value.(bool)
	if !ok {
		return nil, fmt.Errorf("EXISTS field requires a boolean value, got %T", el.Value)
	}

	where := "EXISTS (" + h.Subquery + ")"
	if !want {
		where = "NOT " + where
	}
	return &Predicate{Where: where}, nil
}
