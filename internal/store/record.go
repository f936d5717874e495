package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/schema"
)

// Field is one property of a Record.
type Field struct {
	Property string
	Value    any
}

// Record is an untyped result row in column-map order. Values are the
// canonical Go types of criteria.Coerce, or nil for NULL.
type Record []Field

// Get returns the value of property (case-insensitive).
func (r Record) Get(property string) (any, bool) {
	key := schema.Fold(property)
	for _, f := range r {
		if schema.Fold(f.Property) == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, f := range r {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(f.Property)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(jsonValue(f.Value))
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case *apd.Decimal:
		return json.Number(val.String())
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// ScanRecord is a Scanner that reads a row into a Record, coercing each
// value to its column's declared type.
func ScanRecord(rows *sql.Rows, m *schema.EntityColumnMap) (Record, error) {
	raw := make([]any, len(m.Columns))
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	rec := make(Record, len(m.Columns))
	for i, col := range m.Columns {
		v, err := criteria.Coerce(col.Type, raw[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		rec[i] = Field{Property: col.Property, Value: v}
	}
	return rec, nil
}
