// Package criteria defines the search criteria model shared by the SQL
// compiler (internal/querysql) and the in-memory predicate compiler
// (internal/memfilter).
//
// The package has three layers:
//
//	comparison kinds  - one closed enum per value type (StringComparison, ...)
//	Operator          - the shared vocabulary every kind resolves to
//	Field / Criteria  - explicit field descriptors plus a paging envelope
//
// Renderers never switch on the per-type kinds. They call Operator() and
// switch on the shared Operator, so the SQL and in-memory paths cannot drift
// apart.
//
// Criteria values are described explicitly rather than discovered by
// reflection. A caller's criteria struct embeds Paging and lists its fields
// once:
//
//	type PersonSearch struct {
//		criteria.Paging
//		Name *criteria.StringCriterion
//		Age  *criteria.IntegerCriterion
//	}
//
//	func (s *PersonSearch) Fields() []criteria.Field {
//		return []criteria.Field{
//			criteria.String("Name", s.Name),
//			criteria.Integer("Age", s.Age),
//		}
//	}
//
// A nil criterion pointer means the field is absent. A present criterion with
// a None comparison emits no predicate but can still request sorting.
//
// String wildcards are not escaped. A StartsWith value of "50%" matches
// "50" followed by anything when rendered to SQL LIKE, while the in-memory
// path treats '%' literally. Callers that accept raw user input should strip
// or reject '%' and '_' before building criteria.
package criteria
