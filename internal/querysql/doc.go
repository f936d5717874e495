// Package querysql compiles search criteria into parameterized SQL.
//
// Compilation happens in two steps. CompileFragments walks an entity's
// column map in order and, for every criteria field that matches a column,
// emits one predicate fragment and one bound parameter. Compile assembles the
// fragments into the results query:
//
//	SELECT [col] AS [prop], ... FROM [schema].[table]
//	  WHERE <fragments joined by AND>
//	  ORDER BY <sort keys, or the primary key when paging unsorted>
//	  <dialect row window>
//
// and, when the paging envelope asks for it, a count query sharing the same
// WHERE clause and parameters.
//
// Values are never interpolated into the text. Only identifiers from the
// column map and the integer row window are rendered literally. LIKE
// wildcards (% and _) inside string values are not escaped.
package querysql
