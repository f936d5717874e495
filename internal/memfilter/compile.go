package memfilter

import (
	"cmp"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/sieve/internal/criteria"
)

// Predicate reports whether an element satisfies the compiled criteria.
type Predicate[T any] func(T) bool

// propertyName strips the conventional "Filter" suffix from a criteria
// field name.
func propertyName(field string) string {
	return strings.TrimSuffix(field, "Filter")
}

// Compile builds the conjunction of one predicate per active criteria field.
// Unknown comparison kinds and type mismatches fail here, before any
// element is evaluated.
func Compile[T any](props *Properties[T], crit criteria.Criteria) (Predicate[T], error) {
	var preds []Predicate[T]
	for _, f := range crit.Fields() {
		if !f.Present {
			continue
		}
		acc, _, ok := props.Lookup(propertyName(f.Name))
		if !ok {
			continue
		}
		op, err := f.Operator()
		if err != nil {
			return nil, err
		}
		if op == criteria.OpNone {
			continue
		}
		if acc.Type != f.Type {
			return nil, &criteria.TypeMismatchError{Field: f.Name, Want: acc.Type, Got: f.Type}
		}
		pred, err := comparePredicate(acc, op, f.Operand())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		preds = append(preds, pred)
	}

	return func(item T) bool {
		for _, p := range preds {
			if !p(item) {
				return false
			}
		}
		return true
	}, nil
}

func comparePredicate[T any](acc Accessor[T], op criteria.Operator, operand any) (Predicate[T], error) {
	if operand == nil {
		// Comparing against NULL is never true.
		return func(T) bool { return false }, nil
	}

	switch op {
	case criteria.OpStartsWith, criteria.OpEndsWith, criteria.OpContains:
		want, ok := operand.(string)
		if !ok {
			return nil, fmt.Errorf("operator %s needs a string operand, got %T", op, operand)
		}
		match := map[criteria.Operator]func(string, string) bool{
			criteria.OpStartsWith: strings.HasPrefix,
			criteria.OpEndsWith:   strings.HasSuffix,
			criteria.OpContains:   strings.Contains,
		}[op]
		return func(item T) bool {
			v, ok := acc.get(item)
			if !ok {
				return false
			}
			s, ok := v.(string)
			return ok && match(s, want)
		}, nil
	}

	accept, err := orderTest(op)
	if err != nil {
		return nil, err
	}
	return func(item T) bool {
		v, ok := acc.get(item)
		if !ok {
			return false
		}
		c, ok := compareValues(acc.Type, v, operand)
		return ok && accept(c)
	}, nil
}

// orderTest maps an operator to a test on a three-way comparison result.
func orderTest(op criteria.Operator) (func(int) bool, error) {
	switch op {
	case criteria.OpEqual:
		return func(c int) bool { return c == 0 }, nil
	case criteria.OpNotEqual:
		return func(c int) bool { return c != 0 }, nil
	case criteria.OpLess:
		return func(c int) bool { return c < 0 }, nil
	case criteria.OpLessOrEqual:
		return func(c int) bool { return c <= 0 }, nil
	case criteria.OpGreaterOrEqual:
		return func(c int) bool { return c >= 0 }, nil
	case criteria.OpGreater:
		return func(c int) bool { return c > 0 }, nil
	default:
		return nil, fmt.Errorf("operator %s has no in-memory form", op)
	}
}

// compareValues three-way compares two canonical values of type t. It
// returns false when either value has the wrong Go type. Booleans order
// false before true.
func compareValues(t criteria.ValueType, a, b any) (int, bool) {
	switch t {
	case criteria.ValueString:
		x, ok1 := a.(string)
		y, ok2 := b.(string)
		return strings.Compare(x, y), ok1 && ok2
	case criteria.ValueInteger:
		x, ok1 := a.(int64)
		y, ok2 := b.(int64)
		return cmp.Compare(x, y), ok1 && ok2
	case criteria.ValueDecimal:
		x, ok1 := a.(*apd.Decimal)
		y, ok2 := b.(*apd.Decimal)
		if !ok1 || !ok2 {
			return 0, false
		}
		return x.Cmp(y), true
	case criteria.ValueDateTime:
		x, ok1 := a.(time.Time)
		y, ok2 := b.(time.Time)
		return criteria.WallClock(x).Compare(criteria.WallClock(y)), ok1 && ok2
	case criteria.ValueDateTimeOffset:
		x, ok1 := a.(time.Time)
		y, ok2 := b.(time.Time)
		return x.Compare(y), ok1 && ok2
	case criteria.ValueBoolean:
		x, ok1 := a.(bool)
		y, ok2 := b.(bool)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

// Filter returns the items that satisfy pred, in order.
func Filter[T any](items []T, pred Predicate[T]) []T {
	var out []T
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// All lazily yields the elements of seq that satisfy pred.
func All[T any](seq iter.Seq[T], pred Predicate[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range seq {
			if pred(item) && !yield(item) {
				return
			}
		}
	}
}
