// Package search compiles abstract, client-supplied queries into
// parameterized SQL and executes them into paginated result envelopes.
// Fields outside a table's allow-list dispatch to pluggable handlers;
// unrecognized predicates degrade to warnings, never failures.
package search

// Condition is the comparison operator of one query predicate.
type Condition string

const (
	CondEQ               Condition = "EQ"
	CondNEQ              Condition = "NEQ"
	CondGT               Condition = "GT"
	CondLT               Condition = "LT"
	CondGTE              Condition = "GTE"
	CondLTE              Condition = "LTE"
	CondFragment         Condition = "FRAGMENT"
	CondAnyOf            Condition = "ANY_OF"
	CondStartsWith       Condition = "STARTS_WITH"
	CondContainsSequence Condition = "CONTAINS_SEQUENCE"
)

// QueryElement is one field/condition/value predicate. Elements of a query
// are AND-combined; Not negates the resolved predicate.
type QueryElement struct {
	Field     string    `json:"field"`
	Condition Condition `json:"condition"`
	Value     any       `json:"value"`
	Not       bool      `json:"not"`
}

// SortDirection orders a sort column.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// SortElement is one column of a multi-column sort.
type SortElement struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// Default pagination bounds, used when a caller has no configured ones.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Request is an abstract search request. PageSize -1 means unbounded.
type Request struct {
	Query    []QueryElement `json:"query"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Sort     []SortElement  `json:"sort,omitempty"`
}

// Normalize clamps pagination into a sane range: page is at least 1,
// a missing or nonsense pageSize becomes defaultSize, bounded sizes are
// capped at maxSize. -1 (unbounded) passes through.
func (r *Request) Normalize(defaultSize, maxSize int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize == 0 || r.PageSize < -1 {
		r.PageSize = defaultSize
	}
	if r.PageSize > maxSize {
		r.PageSize = maxSize
	}
}

// Response is a paginated result envelope.
// TotalPages is ceil(TotalSize/PageSize) for bounded requests, 1 otherwise.
type Response[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int64 `json:"totalPages"`
	TotalSize  int64 `json:"totalSize"`
}
