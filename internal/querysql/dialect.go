package querysql

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/lib/pq"
)

// Dialect renders the store-specific parts of a query.
type Dialect interface {
	// Name is the flag value that selects the dialect.
	Name() string

	// QuoteIdent quotes a schema, table, or column identifier.
	QuoteIdent(name string) string

	// Placeholder renders a reference to the param called name, the
	// position-th (1-based) bound parameter of the query.
	Placeholder(name string, position int) string

	// Concat joins two string expressions.
	Concat(a, b string) string

	// DefaultSchema is used when a column map leaves Schema empty.
	DefaultSchema() string

	// Paginate appends the row-window clause. An ORDER BY is already present.
	Paginate(b *strings.Builder, offset, limit int)

	// Bind converts params into database/sql arguments.
	Bind(params []Param) []any
}

// Dialects supported by the compiler.
var (
	SQLServer Dialect = sqlServer{}
	SQLite    Dialect = sqlite{}
	Postgres  Dialect = postgres{}
)

// ParseDialect returns the dialect with the given name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return nil, fmt.Errorf("unknown dialect %q (valid: sqlserver, sqlite, postgres)", name)
}

func bracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// driverValue resolves decimals and other driver.Valuer values. Some
// drivers (go-sqlite3) accept any named value without calling Value and bind
// unknown types as NULL.
func driverValue(v any) any {
	if d, ok := v.(*apd.Decimal); ok {
		if d == nil {
			return nil
		}
		return d.String()
	}
	valuer, ok := v.(driver.Valuer)
	if !ok {
		return v
	}
	dv, err := valuer.Value()
	if err != nil {
		return v
	}
	return dv
}

func namedArgs(params []Param) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = sql.Named(p.Name, driverValue(p.Value))
	}
	return args
}

type sqlServer struct{}

func (sqlServer) Name() string { return "sqlserver" }
func (sqlServer) QuoteIdent(name string) string { return bracket(name) }
func (sqlServer) Placeholder(name string, _ int) string { return "@" + name }
func (sqlServer) Concat(a, b string) string { return a + " + " + b }
func (sqlServer) DefaultSchema() string { return "dbo" }
func (sqlServer) Bind(params []Param) []any { return namedArgs(params) }
func (sqlServer) Paginate(b *strings.Builder, offset, limit int) {
	fmt.Fprintf(b, " OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", offset, limit)
}

// sqlite accepts bracket quoting and @name parameters, which go-sqlite3
// binds from sql.NamedArg.
type sqlite struct{}

func (sqlite) Name() string { return "sqlite" }
func (sqlite) QuoteIdent(name string) string { return bracket(name) }
func (sqlite) Placeholder(name string, _ int) string { return "@" + name }
func (sqlite) Concat(a, b string) string { return a + " || " + b }
func (sqlite) DefaultSchema() string { return "main" }

// Bind converts timestamps to UTC. SQLite compares them as text, which only
// follows time order within one zone.
func (sqlite) Bind(params []Param) []any {
	args := namedArgs(params)
	for i, p := range params {
		if t, ok := p.Value.(time.Time); ok {
			args[i] = sql.Named(p.Name, t.UTC())
		}
	}
	return args
}

func (sqlite) Paginate(b *strings.Builder, offset, limit int) {
	fmt.Fprintf(b, " LIMIT %d OFFSET %d", limit, offset)
}

// postgres binds positionally; lib/pq has no named parameters.
type postgres struct{}

func (postgres) Name() string { return "postgres" }
func (postgres) QuoteIdent(name string) string { return pq.QuoteIdentifier(name) }
func (postgres) Placeholder(_ string, position int) string {
	return "$" + strconv.Itoa(position)
}
func (postgres) Concat(a, b string) string { return a + " || " + b }
func (postgres) DefaultSchema() string { return "public" }
func (postgres) Bind(params []Param) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = driverValue(p.Value)
	}
	return args
}
func (postgres) Paginate(b *strings.Builder, offset, limit int) {
	fmt.Fprintf(b, " LIMIT %d OFFSET %d", limit, offset)
}
