package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/schema"
)

// Executor runs compiled queries.
type Executor interface {
	Dialect() querysql.Dialect
	Query(ctx context.Context, q *querysql.CompiledQuery) (*sql.Rows, error)
	QueryInt(ctx context.Context, q *querysql.CompiledQuery) (int, error)
}

// Scanner hydrates one result row. Row columns are the column map's
// properties, in map order.
type Scanner[T any] func(rows *sql.Rows, m *schema.EntityColumnMap) (T, error)

// observer is implemented by executors that log searches.
type observer interface {
	Logger() *slog.Logger
	NewSearchID() string
}

// Search resolves entity, compiles c and runs the results query followed by
// the count query when c's paging asks for one.
func Search[T any](ctx context.Context, exec Executor, provider schema.Provider, entity string, c criteria.Criteria, scan Scanner[T]) (*criteria.SearchResult[T], error) {
	logger, searchID := slog.Default(), ""
	if o, ok := exec.(observer); ok {
		logger, searchID = o.Logger(), o.NewSearchID()
	}
	logger = logger.With("search_id", searchID, "entity", entity)

	m, err := provider.Resolve(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("resolve entity: %w", err)
	}

	results, count, err := querysql.NewCompiler(exec.Dialect()).Compile(m, c)
	if err != nil {
		return nil, fmt.Errorf("compile criteria: %w", err)
	}
	logger.Debug("search compiled",
		"sql", results.Text,
		"params", len(results.Params),
		"count_query", count != nil)

	rows, err := exec.Query(ctx, results)
	if err != nil {
		logger.Error("results query failed", "error", err)
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := &criteria.SearchResult[T]{Results: []T{}}
	for rows.Next() {
		item, err := scan(rows, m)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out.Results = append(out.Results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	if count != nil {
		n, err := exec.QueryInt(ctx, count)
		if err != nil {
			logger.Error("count query failed", "error", err)
			return nil, fmt.Errorf("query count: %w", err)
		}
		out.TotalCount = &n
	}

	logger.Debug("search complete", "rows", len(out.Results), "total", out.TotalCount)
	return out, nil
}
