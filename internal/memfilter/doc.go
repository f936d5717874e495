// Package memfilter compiles search criteria into in-memory predicates with
// the same semantics as the SQL compiler.
//
// Element values are read through an explicit Properties registry rather
// than reflection. A criteria field named X (or XFilter) applies to the
// property named X; fields with no matching property are ignored.
//
// A nil element value never satisfies an active comparison, mirroring SQL
// NULL. String comparisons are ordinal and case-sensitive, as with a binary
// collation. LIKE-style operators treat % and _ in the criterion value as
// literal characters, unlike SQL.
package memfilter
