// Package schema maps result entities to physical tables and columns.
//
// An EntityColumnMap is the unit of metadata: the schema and table an entity
// is read from, its primary key, and its columns in select order. Column maps
// are immutable once a Provider hands them out and may be shared freely.
//
// Providers:
//
//   - Static holds maps registered in code or loaded from CUE files (LoadCUE).
//   - SQLiteIntrospector reads table_info from a live SQLite database.
//   - Cache memoizes any Provider per entity.
//
// Property and entity names match case-insensitively (Unicode case folding
// over NFC-normalized text, see Fold).
package schema
