package search

import (
	"fmt"
	"log/slog"
	"strings"
)

// Predicate is one resolved WHERE fragment, optionally pulling in a join.
// Where uses ? placeholders matched positionally by Params.
type Predicate struct {
	Join   string
	Where  string
	Params []any
}

// FieldHandler resolves a query element that cannot be expressed as a
// plain allow-listed column comparison. Returning a nil Predicate (with a
// nil error) means "not handled": the compiler logs a warning and skips
// the predicate instead of failing the search.
type FieldHandler interface {
	Resolve(el QueryElement) (*Predicate, error)
}

// Compiler translates abstract requests into a data query and a count
// query over one table. Only allow-listed columns and registered handlers
// ever reach the SQL text; everything else is skipped.
type Compiler struct {
	// Table and Alias name the queried table, e.g. "archive_documents ad".
	Table string
	Alias string

	// PrimaryKey is the alias-qualified key column counted by the count
	// query. DISTINCT guards against join-multiplied rows.
	PrimaryKey string

	// Columns maps API field names to alias-qualified column expressions.
	// This is the allow-list for both predicates and sort fields.
	Columns map[string]string

	// Handlers maps API field names to custom handlers, consulted when a
	// field is absent from Columns.
	Handlers map[string]FieldHandler
}

// Compiled holds the two queries produced from one request. Both share
// identical WHERE/JOIN clauses and parameters, so the count is always
// consistent with the data page.
type Compiled struct {
	DataQuery   string
	CountQuery  string
	DataParams  []any
	CountParams []any
	Page        int
	PageSize    int
}

// Compile resolves every query element, merges handler joins and emits the
// data/count query pair. selectColumns is the projection of the data query
// (e.g. "ad.id, ad.title").
func (c *Compiler) Compile(req Request, selectColumns string) *Compiled {
	var (
		wheres []string
		joins  []string
		params []any
	)

	seenJoins := make(map[string]struct{})
	addJoin := func(j string) {
		if j == "" {
			return
		}
		if _, ok := seenJoins[j]; ok {
			return
		}
		seenJoins[j] = struct{}{}
		joins = append(joins, j)
	}

	for _, el := range req.Query {
		var pred *Predicate
		var err error

		if column, ok := c.Columns[el.Field]; ok {
			pred, err = CompileColumn(column, el)
		} else if handler, ok := c.Handlers[el.Field]; ok {
			pred, err = handler.Resolve(el)
		}

		if err != nil {
			slog.Warn("search_predicate_invalid",
				slog.String("table", c.Table),
				slog.String("field", el.Field),
				slog.String("condition", string(el.Condition)),
				slog.String("error", err.Error()))
			continue
		}
		if pred == nil {
			slog.Warn("search_predicate_skipped",
				slog.String("table", c.Table),
				slog.String("field", el.Field),
				slog.String("condition", string(el.Condition)))
			continue
		}

		addJoin(pred.Join)
		where := pred.Where
		if el.Not {
			where = "NOT (" + where + ")"
		}
		wheres = append(wheres, where)
		params = append(params, pred.Params...)
	}

	from := fmt.Sprintf("FROM %s %s", c.Table, c.Alias)
	if len(joins) > 0 {
		from += " " + strings.Join(joins, " ")
	}

	whereClause := ""
	if len(wheres) > 0 {
		whereClause = " WHERE " + strings.Join(wheres, " AND ")
	}

	countDistinct := c.PrimaryKey
	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT %s) %s%s", countDistinct, from, whereClause)

	dataQuery := fmt.Sprintf("SELECT %s %s%s ORDER BY %s",
		selectColumns, from, whereClause, c.orderBy(req.Sort))

	dataParams := append([]any{}, params...)
	if req.PageSize != -1 {
		dataQuery += " LIMIT ? OFFSET ?"
		dataParams = append(dataParams, req.PageSize, (req.Page-1)*req.PageSize)
	}

	return &Compiled{
		DataQuery:   dataQuery,
		CountQuery:  countQuery,
		DataParams:  dataParams,
		CountParams: params,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
}

// orderBy validates sort fields against the allow-list. Unknown fields are
// dropped with a warning; with nothing left, the primary key keeps the
// order deterministic.
func (c *Compiler) orderBy(sort []SortElement) string {
	var parts []string
	for _, s := range sort {
		column, ok := c.Columns[s.Field]
		if !ok {
			slog.Warn("search_sort_skipped",
				slog.String("table", c.Table),
				slog.String("field", s.Field))
			continue
		}
		dir := "ASC"
		if s.Direction == SortDesc {
			dir = "DESC"
		}
		parts = append(parts, column+" "+dir)
	}

	parts = append(parts, c.PrimaryKey+" ASC")
	return strings.Join(parts, ", ")
}

// CompileColumn emits a parameterized comparison for a plain column.
// Shared by the allow-list path and the column/join handler variants.
func CompileColumn(column string, el QueryElement) (*Predicate, error) {
	switch el.Condition {
	case CondEQ:
		if el.Value == nil {
			return &Predicate{Where: column + " IS NULL"}, nil
		}
		return &Predicate{Where: column + " = ?", Params: []any{el.Value}}, nil

	case CondNEQ:
		if el.Value == nil {
			return &Predicate{Where: column + " IS NOT NULL"}, nil
		}
		return &Predicate{Where: column + " <> ?", Params: []any{el.Value}}, nil

	case CondGT, CondLT, CondGTE, CondLTE:
		op := map[Condition]string{
			CondGT: ">", CondLT: "<", CondGTE: ">=", CondLTE: "<=",
		}[el.Condition]
		return &Predicate{
			Where:  fmt.Sprintf("%s %s ?", column, op),
			Params: []any{el.Value},
		}, nil

	case CondFragment:
		s, ok := el.Value.(string)
		if !ok {
			return nil, fmt.Errorf("FRAGMENT requires a string value, got %T", el.Value)
		}
		return &Predicate{
			Where:  column + ` LIKE ? ESCAPE '\'`,
			Params: []any{"%" + EscapeLike(s) + "%"},
		}, nil

	case CondStartsWith:
		s, ok := el.Value.(string)
		if !ok {
			return nil, fmt.Errorf("STARTS_WITH requires a string value, got %T", el.Value)
		}
		return &Predicate{
			Where:  column + ` LIKE ? ESCAPE '\'`,
			Params: []any{EscapeLike(s) + "%"},
		}, nil

	case CondAnyOf:
		values, ok := el.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("ANY_OF requires a list value, got %T", el.Value)
		}
		if len(values) == 0 {
			// Guaranteed non-match; negation turns it into match-all.
			return &Predicate{Where: "1 = 0"}, nil
		}
		placeholders := strings.Repeat("?, ", len(values))
		return &Predicate{
			Where:  fmt.Sprintf("%s IN (%s)", column, placeholders[:len(placeholders)-2]),
			Params: values,
		}, nil
	}

	// CONTAINS_SEQUENCE and anything unknown have no plain-column meaning.
	return nil, nil
}

// EscapeLike escapes LIKE wildcards in user-supplied fragments.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
