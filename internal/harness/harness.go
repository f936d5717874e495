package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/memfilter"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/store"
	"github.com/roach88/sieve/internal/testutil"
)

// Harness holds the per-run state of one scenario.
type Harness struct {
	store   *store.Store
	columns *schema.EntityColumnMap
	pk      schema.Column
	records []store.Record
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The
// returned error covers setup failures (bad schema, bad rows, SQLite errors);
// expectation mismatches are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	m, err := scenario.columnMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build column map: %w", err)
	}
	pk, ok := primaryKeyColumn(m)
	if !ok {
		return nil, fmt.Errorf("primary key %q is not a mapped column", m.PrimaryKey)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(":memory:",
		store.WithLogger(logger),
		store.WithIDGenerator(testutil.NewSequentialIDs(scenario.Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, columns: m, pk: pk, logger: logger}
	if err := h.seed(ctx, scenario.Rows); err != nil {
		return nil, err
	}

	set, err := scenario.Criteria.Set()
	if err != nil {
		return nil, fmt.Errorf("failed to build criteria: %w", err)
	}

	result := NewResult()
	if results, count, err := querysql.NewCompiler(st.Dialect()).Compile(m, set); err == nil {
		result.SQL = renderQueries(results, count)
	}

	sqlErr := h.runSQL(ctx, set, result)
	memErr := h.runMemory(set, result)

	checkPath(result, "sql", scenario.Expect, sqlErr, result.SQLIDs, result.SQLCount)
	checkPath(result, "memory", scenario.Expect, memErr, result.MemoryIDs, result.MemoryCount)
	return result, nil
}

func primaryKeyColumn(m *schema.EntityColumnMap) (schema.Column, bool) {
	key := schema.Fold(m.PrimaryKey)
	for _, c := range m.Columns {
		if schema.Fold(c.Name) == key {
			return c, true
		}
	}
	return schema.Column{}, false
}

// seed creates the table and inserts rows, keeping an in-memory Record copy
// of each row for the memory path.
func (h *Harness) seed(ctx context.Context, rows []map[string]yaml.Node) error {
	d := h.store.Dialect()
	m := h.columns

	defs := make([]string, len(m.Columns))
	names := make([]string, len(m.Columns))
	marks := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = d.QuoteIdent(c.Name)
		defs[i] = strings.TrimSpace(names[i] + " " + sqliteType(c.Type))
		marks[i] = "?"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", d.QuoteIdent(m.Table), strings.Join(defs, ", "))
	if _, err := h.store.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(m.Table), strings.Join(names, ", "), strings.Join(marks, ", "))
	for i, row := range rows {
		rec, args, err := h.parseRow(row)
		if err != nil {
			return fmt.Errorf("rows[%d]: %w", i, err)
		}
		if _, err := h.store.DB().ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("rows[%d]: failed to insert: %w", i, err)
		}
		h.records = append(h.records, rec)
	}
	h.logger.Debug("scenario seeded", "table", m.Table, "rows", len(h.records))
	return nil
}

// parseRow converts one YAML row into a Record and the matching insert
// arguments, in column-map order.
func (h *Harness) parseRow(row map[string]yaml.Node) (store.Record, []any, error) {
	m := h.columns
	values := make([]any, len(m.Columns))
	for key, node := range row {
		col, ok := m.Lookup(key)
		if !ok {
			return nil, nil, fmt.Errorf("unknown property %q", key)
		}
		if node.Kind != yaml.ScalarNode {
			return nil, nil, fmt.Errorf("property %q: value must be a scalar", key)
		}
		if node.ShortTag() == "!!null" {
			continue
		}
		idx := slices.IndexFunc(m.Columns, func(c schema.Column) bool { return c.Name == col.Name })
		if col.Type == criteria.ValueUnknown {
			values[idx] = node.Value
			continue
		}
		v, err := criteria.ParseValue(col.Type, node.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("property %q: %w", key, err)
		}
		values[idx] = v
	}

	rec := make(store.Record, len(m.Columns))
	args := make([]any, len(m.Columns))
	for i, col := range m.Columns {
		rec[i] = store.Field{Property: col.Property, Value: values[i]}
		args[i] = bindValue(col.Type, values[i])
	}
	return rec, args, nil
}

// bindValue renders v the way the SQL path compares it: timestamps in UTC
// text, decimals as their exact text.
func bindValue(t criteria.ValueType, v any) any {
	switch val := v.(type) {
	case *apd.Decimal:
		return val.String()
	case time.Time:
		if t == criteria.ValueDateTime {
			return criteria.WallClock(val)
		}
		return val.UTC()
	default:
		return v
	}
}

func sqliteType(t criteria.ValueType) string {
	switch t {
	case criteria.ValueString:
		return "TEXT"
	case criteria.ValueInteger:
		return "INTEGER"
	case criteria.ValueDecimal:
		return "DECIMAL"
	case criteria.ValueDateTime:
		return "DATETIME"
	case criteria.ValueDateTimeOffset:
		return "DATETIMEOFFSET"
	case criteria.ValueBoolean:
		return "BOOLEAN"
	default:
		return ""
	}
}

func (h *Harness) runSQL(ctx context.Context, set criteria.Criteria, result *Result) error {
	provider, err := schema.NewStatic(h.columns)
	if err != nil {
		return err
	}
	out, err := store.Search(ctx, h.store, provider, h.columns.Entity, set, store.ScanRecord)
	if err != nil {
		return err
	}
	result.SQLIDs = h.ids(out.Results)
	result.SQLCount = out.TotalCount
	return nil
}

func (h *Harness) runMemory(set criteria.Criteria, result *Result) error {
	accessors := make([]memfilter.Accessor[store.Record], len(h.columns.Columns))
	for i, col := range h.columns.Columns {
		accessors[i] = memfilter.Dynamic(col.Property, col.Type, func(r store.Record) any {
			return r[i].Value
		})
	}
	out, err := memfilter.Search(h.records, memfilter.NewProperties(accessors...).WithPrimaryKey(h.pk.Property), set)
	if err != nil {
		return err
	}
	result.MemoryIDs = h.ids(out.Results)
	result.MemoryCount = out.TotalCount
	return nil
}

func (h *Harness) ids(records []store.Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		v, _ := r.Get(h.pk.Property)
		ids[i] = formatID(v)
	}
	return ids
}

func formatID(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case *apd.Decimal:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}

// checkPath compares one path's outcome against the expectation.
func checkPath(result *Result, path string, expect ExpectClause, err error, ids []string, count *int) {
	if expect.Error != "" {
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("%s: expected error containing %q, got %d rows", path, expect.Error, len(ids)))
		case !strings.Contains(err.Error(), expect.Error):
			result.AddError(fmt.Sprintf("%s: expected error containing %q, got %q", path, expect.Error, err.Error()))
		}
		return
	}
	if err != nil {
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", path, err))
		return
	}

	want := make([]string, len(expect.IDs))
	for i, n := range expect.IDs {
		want[i] = n.Value
	}
	if !slices.Equal(want, ids) {
		result.AddError(fmt.Sprintf("%s: ids = [%s], want [%s]", path, strings.Join(ids, ", "), strings.Join(want, ", ")))
	}

	if expect.TotalCount == nil {
		return
	}
	switch {
	case *expect.TotalCount < 0 && count != nil:
		result.AddError(fmt.Sprintf("%s: total_count = %d, want none", path, *count))
	case *expect.TotalCount >= 0 && count == nil:
		result.AddError(fmt.Sprintf("%s: total_count missing, want %d", path, *expect.TotalCount))
	case *expect.TotalCount >= 0 && *count != *expect.TotalCount:
		result.AddError(fmt.Sprintf("%s: total_count = %d, want %d", path, *count, *expect.TotalCount))
	}
}

func renderQueries(results, count *querysql.CompiledQuery) string {
	var b strings.Builder
	b.WriteString(results.String())
	b.WriteString("\n\n")
	if count != nil {
		b.WriteString(count.String())
	} else {
		b.WriteString("-- no count query")
	}
	b.WriteString("\n")
	return b.String()
}
