// Package store executes compiled searches against a database/sql backend.
//
// Store wraps a *sql.DB together with the dialect its queries are compiled
// for. Open configures a SQLite database; New wraps any other connection
// (for example a lib/pq Postgres pool).
//
// Search is the entry point: it resolves an entity's column map, compiles
// the criteria, runs the results query and then, when requested, the count
// query, both with the caller's context. Each search is logged at debug
// level under a search_id.
//
// # SQLite configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - case_sensitive_like=ON: LIKE matches the in-memory predicates
//
// SQLite stores timestamps as text. Offset timestamps must be written in UTC
// for comparisons to follow time order; the SQLite dialect binds them in UTC.
package store
