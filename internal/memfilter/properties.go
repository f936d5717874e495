package memfilter

import (
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/sieve/internal/criteria"
)

// Accessor reads one named, typed property from an element.
type Accessor[T any] struct {
	Name string
	Type criteria.ValueType

	// get returns the canonical value and false when the value is absent.
	get func(T) (any, bool)
}

func pointer[T, V any](name string, t criteria.ValueType, get func(T) *V) Accessor[T] {
	return Accessor[T]{Name: name, Type: t, get: func(item T) (any, bool) {
		p := get(item)
		if p == nil {
			return nil, false
		}
		return *p, true
	}}
}

// String reads a string property. A nil pointer is an absent value.
func String[T any](name string, get func(T) *string) Accessor[T] {
	return pointer(name, criteria.ValueString, get)
}

// Integer reads an integer property.
func Integer[T any](name string, get func(T) *int64) Accessor[T] {
	return pointer(name, criteria.ValueInteger, get)
}

// Decimal reads a decimal property.
func Decimal[T any](name string, get func(T) *apd.Decimal) Accessor[T] {
	return Accessor[T]{Name: name, Type: criteria.ValueDecimal, get: func(item T) (any, bool) {
		d := get(item)
		if d == nil {
			return nil, false
		}
		return d, true
	}}
}

// DateTime reads a wall-clock timestamp property.
func DateTime[T any](name string, get func(T) *time.Time) Accessor[T] {
	return pointer(name, criteria.ValueDateTime, get)
}

// DateTimeOffset reads an absolute-instant property.
func DateTimeOffset[T any](name string, get func(T) *time.Time) Accessor[T] {
	return pointer(name, criteria.ValueDateTimeOffset, get)
}

// Boolean reads a boolean property.
func Boolean[T any](name string, get func(T) *bool) Accessor[T] {
	return pointer(name, criteria.ValueBoolean, get)
}

// Dynamic reads an untyped value and coerces it to t (see criteria.Coerce).
// Values that cannot be coerced are treated as absent.
func Dynamic[T any](name string, t criteria.ValueType, get func(T) any) Accessor[T] {
	return Accessor[T]{Name: name, Type: t, get: func(item T) (any, bool) {
		v, err := criteria.Coerce(t, get(item))
		if err != nil || v == nil {
			return nil, false
		}
		return v, true
	}}
}

// Properties is the ordered accessor registry for element type T.
type Properties[T any] struct {
	accessors []Accessor[T]
	pk        string
}

// NewProperties registers accessors in order. Order breaks sort-order ties.
func NewProperties[T any](accessors ...Accessor[T]) *Properties[T] {
	return &Properties[T]{accessors: accessors}
}

// WithPrimaryKey names the registered property that orders paged searches
// without sort keys, the way the SQL path orders by the primary key column.
func (p *Properties[T]) WithPrimaryKey(name string) *Properties[T] {
	p.pk = name
	return p
}

func (p *Properties[T]) primaryKey() (Accessor[T], bool) {
	if p.pk == "" {
		return Accessor[T]{}, false
	}
	a, _, ok := p.Lookup(p.pk)
	return a, ok
}

// Lookup finds the accessor with exactly this name.
func (p *Properties[T]) Lookup(name string) (Accessor[T], int, bool) {
	for i, a := range p.accessors {
		if a.Name == name {
			return a, i, true
		}
	}
	return Accessor[T]{}, -1, false
}

// Value reads the named property of item.
func (p *Properties[T]) Value(item T, name string) (any, bool) {
	a, _, ok := p.Lookup(name)
	if !ok {
		return nil, false
	}
	return a.get(item)
}
