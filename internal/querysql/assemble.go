package querysql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/schema"
)

// Compile builds the results query and, when the paging envelope asks for a
// total, the count query. count is nil otherwise.
//
// Paged queries always carry an ORDER BY: the caller's sort keys, or the
// primary key when nothing is sorted.
func (c *Compiler) Compile(m *schema.EntityColumnMap, crit criteria.Criteria) (results, count *CompiledQuery, err error) {
	if m == nil {
		return nil, nil, fmt.Errorf("cannot compile without a column map")
	}
	if crit == nil {
		return nil, nil, fmt.Errorf("cannot compile nil criteria")
	}

	page := crit.Page().Normalized()
	if err := page.Validate(); err != nil {
		return nil, nil, err
	}

	frags, err := c.CompileFragments(m, crit)
	if err != nil {
		return nil, nil, err
	}

	d := c.dialect()
	from := c.fromClause(m)
	where := whereClause(frags)

	var b strings.Builder
	b.WriteString(c.selectClause(m))
	b.WriteString(from)
	b.WriteString(where)

	switch {
	case len(frags.Sorts) > 0:
		b.WriteString(" ORDER BY ")
		for i, s := range frags.Sorts {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.QuoteIdent(s.Column))
			if s.Direction == criteria.Descending {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	case !page.ReturnAllResults:
		b.WriteString(" ORDER BY ")
		b.WriteString(d.QuoteIdent(m.PrimaryKey))
	}

	if !page.ReturnAllResults {
		d.Paginate(&b, page.Offset(), page.PageSize)
	}

	results = &CompiledQuery{Text: b.String(), Params: frags.Params, dialect: d}
	if page.WantsTotalCount() {
		count = &CompiledQuery{
			Text:    "SELECT COUNT(1)" + from + where,
			Params:  slices.Clone(frags.Params),
			dialect: d,
		}
	}
	return results, count, nil
}

func (c *Compiler) selectClause(m *schema.EntityColumnMap) string {
	d := c.dialect()
	cols := make([]string, len(m.Columns))
	for i, col := range m.Columns {
		cols[i] = d.QuoteIdent(col.Name) + " AS " + d.QuoteIdent(col.Property)
	}
	return "SELECT " + strings.Join(cols, ", ")
}

func (c *Compiler) fromClause(m *schema.EntityColumnMap) string {
	d := c.dialect()
	s := m.Schema
	if s == "" {
		s = d.DefaultSchema()
	}
	return " FROM " + d.QuoteIdent(s) + "." + d.QuoteIdent(m.Table)
}

func whereClause(frags *Fragments) string {
	if len(frags.Predicates) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(frags.Predicates, " AND ")
}
