package criteria

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// SortDirection requests ordering on a field.
type SortDirection int

const (
	SortNone SortDirection = iota
	Ascending
	Descending
)

func (d SortDirection) String() string {
	switch d {
	case SortNone:
		return "none"
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return fmt.Sprintf("SortDirection(%d)", int(d))
	}
}

// ParseSortDirection accepts none/ascending/descending and asc/desc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return SortNone, fmt.Errorf("unknown sort direction %q", s)
}

// Criterion is one field's comparison rule plus its optional sort directive.
//
// SortOrder positions the field among all fields requesting a sort (lowest
// first). Callers must use distinct SortOrder values for deterministic output.
type Criterion[T any, K Comparison] struct {
	Comparison K
	Value      T
	Sort       SortDirection
	SortOrder  int
}

type (
	StringCriterion         = Criterion[string, StringComparison]
	IntegerCriterion        = Criterion[int64, IntegerComparison]
	DecimalCriterion        = Criterion[apd.Decimal, DecimalComparison]
	DateTimeCriterion       = Criterion[time.Time, DateTimeComparison]
	DateTimeOffsetCriterion = Criterion[time.Time, DateTimeOffsetComparison]
	BooleanCriterion        = Criterion[bool, BooleanComparison]
)

// Field is the explicit descriptor of one named criterion. Build it with the
// typed constructors (String, Integer, ...) so Value always matches Type.
type Field struct {
	Name       string
	Type       ValueType
	Comparison Comparison
	Value      any
	Sort       SortDirection
	SortOrder  int

	// Present is false when the criterion was not supplied at all.
	Present bool
}

func newField[T any, K Comparison](name string, t ValueType, c *Criterion[T, K], value func(T) any) Field {
	if c == nil {
		return Field{Name: name, Type: t}
	}
	return Field{
		Name:       name,
		Type:       t,
		Comparison: c.Comparison,
		Value:      value(c.Value),
		Sort:       c.Sort,
		SortOrder:  c.SortOrder,
		Present:    true,
	}
}

func identity[T any](v T) any { return v }

// String describes a string criterion. A nil c yields an absent field.
func String(name string, c *StringCriterion) Field {
	return newField(name, ValueString, c, identity[string])
}

// Integer describes an integer criterion.
func Integer(name string, c *IntegerCriterion) Field {
	return newField(name, ValueInteger, c, identity[int64])
}

// Decimal describes a decimal criterion. The value is carried as *apd.Decimal.
func Decimal(name string, c *DecimalCriterion) Field {
	return newField(name, ValueDecimal, c, func(d apd.Decimal) any {
		out := new(apd.Decimal)
		out.Set(&d)
		return out
	})
}

// DateTime describes a wall-clock timestamp criterion.
func DateTime(name string, c *DateTimeCriterion) Field {
	return newField(name, ValueDateTime, c, identity[time.Time])
}

// DateTimeOffset describes an absolute-instant criterion.
func DateTimeOffset(name string, c *DateTimeOffsetCriterion) Field {
	return newField(name, ValueDateTimeOffset, c, identity[time.Time])
}

// Boolean describes a boolean criterion.
func Boolean(name string, c *BooleanCriterion) Field {
	return newField(name, ValueBoolean, c, identity[bool])
}

// Operator resolves the field's comparison. Absent fields resolve to OpNone.
func (f Field) Operator() (Operator, error) {
	if !f.Present || f.Comparison == nil {
		return OpNone, nil
	}
	if got := f.Comparison.ValueType(); got != f.Type {
		return OpNone, &TypeMismatchError{Field: f.Name, Want: f.Type, Got: got}
	}
	return f.Comparison.Operator()
}

// Sorted reports whether the field requests ordering.
func (f Field) Sorted() bool {
	return f.Present && f.Sort != SortNone
}

// Operand returns the value both renderers compare against. DateTime values
// are reduced to their wall clock (see WallClock); other values pass through.
func (f Field) Operand() any {
	if t, ok := f.Value.(time.Time); ok && f.Type == ValueDateTime {
		return WallClock(t)
	}
	return f.Value
}

// WallClock drops the location of t, keeping its wall-clock reading as UTC.
// DateTime comparisons use it on both sides so zones never shift results.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// SortBySortOrder stably orders sort keys by ascending SortOrder. Ties keep
// their current order, so callers collect keys in property registration order.
func SortBySortOrder[K any](keys []K, sortOrder func(K) int) {
	slices.SortStableFunc(keys, func(a, b K) int {
		return cmp.Compare(sortOrder(a), sortOrder(b))
	})
}

// Criteria is a search request: a paging envelope plus named fields.
type Criteria interface {
	Page() Paging
	Fields() []Field
}

// Set is a dynamically built Criteria, used when criteria come from
// configuration rather than a Go struct.
type Set struct {
	Paging
	Entries []Field
}

// NewSet creates a Set with default paging.
func NewSet(fields ...Field) *Set {
	return &Set{Paging: NewPaging(), Entries: fields}
}

// Fields implements Criteria.
func (s *Set) Fields() []Field {
	return s.Entries
}

// Lookup returns the field with the given name.
func (s *Set) Lookup(name string) (Field, bool) {
	for _, f := range s.Entries {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
