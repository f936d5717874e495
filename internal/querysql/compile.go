package querysql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/schema"
)

// Param is one named query parameter.
type Param struct {
	Name  string
	Value any
}

// CompiledQuery is a query text and the parameters it references.
type CompiledQuery struct {
	Text   string
	Params []Param

	dialect Dialect
}

// Args returns the parameters as database/sql arguments for the dialect the
// query was compiled for.
func (q *CompiledQuery) Args() []any {
	d := q.dialect
	if d == nil {
		d = SQLServer
	}
	return d.Bind(q.Params)
}

// String renders the query followed by one comment line per parameter.
func (q *CompiledQuery) String() string {
	var b strings.Builder
	b.WriteString(q.Text)
	for _, p := range q.Params {
		fmt.Fprintf(&b, "\n-- %s = %s", p.Name, FormatValue(p.Value))
	}
	return b.String()
}

// FormatValue renders a parameter value as a SQL-style literal for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case *apd.Decimal:
		return val.String()
	case time.Time:
		return "'" + val.Format(time.RFC3339Nano) + "'"
	default:
		return fmt.Sprint(val)
	}
}

// Sort is one ORDER BY key.
type Sort struct {
	Column    string
	Direction criteria.SortDirection
	Order     int
}

// Fragments is the output of the criteria compiler.
type Fragments struct {
	Predicates []string
	Params     []Param

	// Sorts are ordered by Order; ties keep column-map order.
	Sorts []Sort
}

// Compiler turns criteria into SQL for one dialect.
type Compiler struct {
	Dialect Dialect
}

// NewCompiler creates a compiler for d.
func NewCompiler(d Dialect) *Compiler {
	return &Compiler{Dialect: d}
}

// Compile compiles with the default SQL Server dialect.
func Compile(m *schema.EntityColumnMap, c criteria.Criteria) (results, count *CompiledQuery, err error) {
	return NewCompiler(SQLServer).Compile(m, c)
}

func (c *Compiler) dialect() Dialect {
	if c.Dialect == nil {
		return SQLServer
	}
	return c.Dialect
}

// CompileFragments walks the column map in order and emits one predicate and
// one parameter per active criteria field.
//
// Field names match properties case-insensitively. Parameters are named pN,
// where N counts the matched fields supplied so far, including ones whose
// comparison is None; so names can skip numbers.
func (c *Compiler) CompileFragments(m *schema.EntityColumnMap, crit criteria.Criteria) (*Fragments, error) {
	d := c.dialect()

	byName := make(map[string]criteria.Field)
	for _, f := range crit.Fields() {
		key := schema.Fold(f.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = f
		}
	}

	frags := &Fragments{}
	index := 0
	for _, col := range m.Columns {
		f, ok := byName[schema.Fold(col.Property)]
		if !ok || !f.Present {
			continue
		}
		n := index
		index++

		if f.Sorted() {
			frags.Sorts = append(frags.Sorts, Sort{Column: col.Name, Direction: f.Sort, Order: f.SortOrder})
		}

		op, err := f.Operator()
		if err != nil {
			return nil, err
		}
		if op == criteria.OpNone {
			continue
		}
		if col.Type != criteria.ValueUnknown && col.Type != f.Type {
			return nil, &criteria.TypeMismatchError{Field: f.Name, Want: col.Type, Got: f.Type}
		}

		name := "p" + strconv.Itoa(n)
		placeholder := d.Placeholder(name, len(frags.Params)+1)
		pred, err := predicate(d, d.QuoteIdent(col.Name), op, f.Type, placeholder)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		frags.Predicates = append(frags.Predicates, pred)
		frags.Params = append(frags.Params, Param{Name: name, Value: f.Operand()})
	}

	criteria.SortBySortOrder(frags.Sorts, func(s Sort) int { return s.Order })
	return frags, nil
}

// predicate renders one comparison. Values are always referenced through
// the placeholder.
func predicate(d Dialect, column string, op criteria.Operator, t criteria.ValueType, placeholder string) (string, error) {
	switch op {
	case criteria.OpEqual:
		return column + " = " + placeholder, nil
	case criteria.OpNotEqual:
		if t == criteria.ValueString {
			return column + " != " + placeholder, nil
		}
		return column + " <> " + placeholder, nil
	case criteria.OpLess:
		return column + " < " + placeholder, nil
	case criteria.OpLessOrEqual:
		return column + " <= " + placeholder, nil
	case criteria.OpGreaterOrEqual:
		return column + " >= " + placeholder, nil
	case criteria.OpGreater:
		return column + " > " + placeholder, nil
	case criteria.OpStartsWith:
		return column + " LIKE " + d.Concat(placeholder, "'%'"), nil
	case criteria.OpEndsWith:
		return column + " LIKE " + d.Concat("'%'", placeholder), nil
	case criteria.OpContains:
		return column + " LIKE " + d.Concat(d.Concat("'%'", placeholder), "'%'"), nil
	default:
		return "", fmt.Errorf("operator %s has no SQL form", op)
	}
}
