// Package harness runs conformance scenarios for search criteria.
//
// A scenario declares an entity, a handful of rows, a criteria document and
// the rows the search must return. Run executes it twice: once through the
// SQL path against a fresh SQLite database and once through the in-memory
// path over the same rows. Both must agree with the expectation.
//
// # Scenario Format
//
//	name: starts_with_skips_nulls
//	description: "StartsWith never matches a NULL name"
//	entity: Person
//	table: people
//	primary_key: id
//	columns:
//	  - { property: Id, name: id, type: integer }
//	  - { property: Name, name: name, type: string }
//	rows:
//	  - { Id: 1, Name: a }
//	  - { Id: 2, Name: null }
//	criteria:
//	  include_total_count: true
//	  fields:
//	    - { name: Name, type: string, comparison: StartsWith, value: a }
//	expect:
//	  ids: [1]
//	  total_count: 1
//
// Instead of inline columns a scenario may name a CUE schema directory
// (see schema.LoadCUE) relative to the scenario file:
//
//	entity: Person
//	schema: ../schemas
//
// Row keys are property names. Values are parsed with the column's type;
// null or a missing key stores NULL.
//
// An expectation is either ids (primary key values in result order), with an
// optional total_count, or error, a substring both paths must fail with.
//
// # Determinism
//
// Every run opens its own in-memory SQLite database, logs to a discard
// handler, and draws search IDs from testutil.SequentialIDs, so the compiled
// SQL can be compared against golden files with AssertGolden.
package harness
