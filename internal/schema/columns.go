package schema

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sieve/internal/criteria"
)

// Column maps one entity property to a physical column.
type Column struct {
	Property string
	Name     string

	// Type is optional. ValueUnknown disables type checks for the column.
	Type criteria.ValueType
}

// EntityColumnMap is the ordered property-to-column mapping for one entity.
type EntityColumnMap struct {
	Entity     string
	Schema     string
	Table      string
	PrimaryKey string
	Columns    []Column
}

// Fold returns the comparison key for a property or entity name.
func Fold(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}

// Lookup finds the column for a property, case-insensitively.
func (m *EntityColumnMap) Lookup(property string) (Column, bool) {
	key := Fold(property)
	for _, c := range m.Columns {
		if Fold(c.Property) == key {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks the map is usable for query generation.
func (m *EntityColumnMap) Validate() error {
	invalid := func(format string, args ...any) error {
		return &ResolveError{Entity: m.Entity, Code: ErrCodeInvalidMap, Message: fmt.Sprintf(format, args...)}
	}
	if m.Table == "" {
		return invalid("table is required")
	}
	if m.PrimaryKey == "" {
		return invalid("primary key is required")
	}
	if len(m.Columns) == 0 {
		return invalid("at least one column is required")
	}
	seen := make(map[string]bool, len(m.Columns))
	for i, c := range m.Columns {
		if c.Property == "" || c.Name == "" {
			return invalid("columns[%d]: property and name are required", i)
		}
		key := Fold(c.Property)
		if seen[key] {
			return invalid("duplicate property %q", c.Property)
		}
		seen[key] = true
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *EntityColumnMap) Clone() *EntityColumnMap {
	out := *m
	out.Columns = append([]Column(nil), m.Columns...)
	return &out
}
