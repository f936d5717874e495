package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/criteria"
)

// SQLiteIntrospector derives column maps from a live SQLite database. The
// entity name is the table name; properties are the column names.
type SQLiteIntrospector struct {
	DB *sql.DB

	// Schema is the attached database to read from. Empty means "main".
	Schema string
}

// Resolve implements Provider.
func (s *SQLiteIntrospector) Resolve(ctx context.Context, entity string) (*EntityColumnMap, error) {
	dbName := s.Schema
	if dbName == "" {
		dbName = "main"
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT name, type, pk FROM pragma_table_info(?, ?) ORDER BY cid", entity, dbName)
	if err != nil {
		return nil, &ResolveError{Entity: entity, Code: ErrCodeLoadFailed, Message: fmt.Sprintf("read table info: %v", err)}
	}
	defer rows.Close()

	m := &EntityColumnMap{Entity: entity, Schema: dbName, Table: entity}
	for rows.Next() {
		var name, declared string
		var pk int
		if err := rows.Scan(&name, &declared, &pk); err != nil {
			return nil, &ResolveError{Entity: entity, Code: ErrCodeLoadFailed, Message: fmt.Sprintf("scan table info: %v", err)}
		}
		m.Columns = append(m.Columns, Column{Property: name, Name: name, Type: affinity(declared)})
		if pk == 1 {
			m.PrimaryKey = name
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &ResolveError{Entity: entity, Code: ErrCodeLoadFailed, Message: fmt.Sprintf("iterate table info: %v", err)}
	}

	if len(m.Columns) == 0 {
		return nil, &ResolveError{Entity: entity, Code: ErrCodeUnknownEntity, Message: fmt.Sprintf("no table %q in %s", entity, dbName)}
	}
	if m.PrimaryKey == "" {
		m.PrimaryKey = "rowid"
	}
	return m, nil
}

// affinity maps a declared SQLite column type onto a criteria value type.
func affinity(declared string) criteria.ValueType {
	t := strings.ToUpper(declared)
	switch {
	case strings.Contains(t, "DATETIMEOFFSET"):
		return criteria.ValueDateTimeOffset
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return criteria.ValueDateTime
	case strings.Contains(t, "BOOL"), t == "BIT":
		return criteria.ValueBoolean
	case strings.Contains(t, "INT"):
		return criteria.ValueInteger
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"), strings.Contains(t, "CLOB"):
		return criteria.ValueString
	case strings.Contains(t, "DEC"), strings.Contains(t, "NUM"), strings.Contains(t, "REAL"),
		strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"), strings.Contains(t, "MONEY"):
		return criteria.ValueDecimal
	default:
		return criteria.ValueUnknown
	}
}
