package memfilter

import (
	"slices"

	"github.com/roach88/sieve/internal/criteria"
)

type sortKey[T any] struct {
	acc   Accessor[T]
	desc  bool
	order int
}

// Search filters, sorts and pages items the way the SQL path does.
//
// Sort keys follow SortOrder, ties broken by property registration order.
// Absent values sort first ascending and last descending. A paged search
// without sort keys orders by the primary key when Properties has one (see
// WithPrimaryKey), and keeps the input order otherwise.
func Search[T any](items []T, props *Properties[T], crit criteria.Criteria) (*criteria.SearchResult[T], error) {
	page := crit.Page().Normalized()
	if err := page.Validate(); err != nil {
		return nil, err
	}

	pred, err := Compile(props, crit)
	if err != nil {
		return nil, err
	}
	matched := Filter(items, pred)

	keys := sortKeys(props, crit)
	if len(keys) == 0 && !page.ReturnAllResults {
		if pk, ok := props.primaryKey(); ok {
			keys = []sortKey[T]{{acc: pk}}
		}
	}
	if len(keys) > 0 {
		slices.SortStableFunc(matched, func(a, b T) int {
			for _, k := range keys {
				if c := compareForSort(k, a, b); c != 0 {
					return c
				}
			}
			return 0
		})
	}

	result := &criteria.SearchResult[T]{}
	if page.WantsTotalCount() {
		total := len(matched)
		result.TotalCount = &total
	}

	if page.ReturnAllResults {
		result.Results = matched
		return result, nil
	}
	start := min(page.Offset(), len(matched))
	end := start + min(page.PageSize, len(matched)-start)
	result.Results = matched[start:end]
	return result, nil
}

// sortKeys collects the sorted fields in property registration order, then
// orders them by SortOrder.
func sortKeys[T any](props *Properties[T], crit criteria.Criteria) []sortKey[T] {
	byName := make(map[string]criteria.Field)
	for _, f := range crit.Fields() {
		name := propertyName(f.Name)
		if _, dup := byName[name]; !dup {
			byName[name] = f
		}
	}

	var keys []sortKey[T]
	for _, acc := range props.accessors {
		if f, ok := byName[acc.Name]; ok && f.Sorted() {
			keys = append(keys, sortKey[T]{acc: acc, desc: f.Sort == criteria.Descending, order: f.SortOrder})
		}
	}
	criteria.SortBySortOrder(keys, func(k sortKey[T]) int { return k.order })
	return keys
}

func compareForSort[T any](k sortKey[T], a, b T) int {
	va, okA := k.acc.get(a)
	vb, okB := k.acc.get(b)

	var c int
	switch {
	case !okA && !okB:
		c = 0
	case !okA:
		c = -1
	case !okB:
		c = 1
	default:
		c, _ = compareValues(k.acc.Type, va, vb)
	}
	if k.desc {
		return -c
	}
	return c
}
