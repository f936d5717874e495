package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sieve/internal/querysql"
)

// IDGenerator produces search correlation IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 search IDs.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Store runs compiled queries against a database.
type Store struct {
	db      *sql.DB
	dialect querysql.Dialect
	logger  *slog.Logger
	ids     IDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator sets the search ID source. The default is UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithDialect overrides the dialect queries are compiled for.
func WithDialect(d querysql.Dialect) Option {
	return func(s *Store) { s.dialect = d }
}

// New wraps an open database. Queries are compiled for SQL Server unless
// WithDialect says otherwise.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: querysql.SQLServer,
		logger:  slog.Default(),
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates or opens a SQLite database at the given path and applies the
// required pragmas. Queries are compiled for the SQLite dialect.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and pragmas are per
	// connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return New(db, append([]Option{WithDialect(querysql.SQLite)}, opts...)...), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect implements Executor.
func (s *Store) Dialect() querysql.Dialect {
	return s.dialect
}

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// NewSearchID returns a fresh correlation ID.
func (s *Store) NewSearchID() string {
	return s.ids.Generate()
}

// Query implements Executor. Callers close the returned rows.
func (s *Store) Query(ctx context.Context, q *querysql.CompiledQuery) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, q.Text, q.Args()...)
}

// QueryInt implements Executor for single-value integer queries.
func (s *Store) QueryInt(ctx context.Context, q *querysql.CompiledQuery) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, q.Text, q.Args()...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA case_sensitive_like = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
