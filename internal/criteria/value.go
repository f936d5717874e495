package criteria

import (
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// SearchResult is one page of results. TotalCount is nil unless the paging
// envelope asked for a count.
type SearchResult[T any] struct {
	TotalCount *int `json:"total_count,omitempty"`
	Results    []T  `json:"results"`
}

// Coerce converts v to the canonical Go type for t: string, int64,
// *apd.Decimal, time.Time or bool. It accepts the values database/sql
// drivers return (int64, float64, []byte, string, time.Time, bool) and the
// common Go numeric types. nil stays nil.
func Coerce(t ValueType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch t {
	case ValueString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case ValueInteger:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case uint32:
			return int64(n), nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		case string:
			return ParseValue(t, n)
		}
	case ValueDecimal:
		switch n := v.(type) {
		case *apd.Decimal:
			return n, nil
		case apd.Decimal:
			return &n, nil
		case int64:
			return apd.New(n, 0), nil
		case int:
			return apd.New(int64(n), 0), nil
		case float64:
			d := new(apd.Decimal)
			if _, err := d.SetFloat64(n); err != nil {
				return nil, fmt.Errorf("invalid decimal %v: %w", n, err)
			}
			return d, nil
		case string:
			return ParseValue(t, n)
		}
	case ValueDateTime, ValueDateTimeOffset:
		switch ts := v.(type) {
		case time.Time:
			return ts, nil
		case string:
			return ParseValue(t, ts)
		}
	case ValueBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		case int:
			return b != 0, nil
		case string:
			return ParseValue(t, b)
		}
	case ValueUnknown:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}
