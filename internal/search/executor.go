package search

import (
	"context"
	"database/sql"

	"golang.org/x/sync/errgroup"

	apperr "github.com/regestra/regestra/internal/errors"
)

// Querier is the read surface the executor needs; *sql.DB and *store.DB
// both satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Execute runs the compiled data and count queries and assembles the
// paginated envelope. The two queries run concurrently; a failure in
// either fails the whole search with no partial result.
func Execute[T any](ctx context.Context, db Querier, c *Compiled, scan func(*sql.Rows) (T, error)) (*Response[T], error) {
	var (
		data  = []T{}
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := db.QueryContext(gctx, c.DataQuery, c.DataParams...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return err
			}
			data = append(data, item)
		}
		return rows.Err()
	})

	g.Go(func() error {
		return db.QueryRowContext(gctx, c.CountQuery, c.CountParams...).Scan(&total)
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.New(apperr.ErrCodeSearchFailed, "search query failed", err)
	}

	return &Response[T]{
		Data:       data,
		Page:       c.Page,
		PageSize:   c.PageSize,
		TotalPages: totalPages(total, c.PageSize),
		TotalSize:  total,
	}, nil
}

// totalPages is ceil(total/pageSize) for bounded requests, 1 for
// unbounded ones.
func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 1
	}
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return pages
}
