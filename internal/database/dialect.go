package database

//go:generate mockgen -destination=mocks/mock_dialect.go -package=mocks github.com/koba/schemasync/internal/database Dialect

import (
	"context"
	"database/sql"
	"errors"

	"github.com/koba/schemasync/internal/schema"
)

var (
	// ErrUnsupportedProvider is returned for a provider name no dialect answers to
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrInvalidConnectionString is returned when the selected driver cannot parse the connection string
	ErrInvalidConnectionString = errors.New("invalid connection string")
	// ErrUnsupportedType is returned when a data type has no native form in a dialect
	ErrUnsupportedType = errors.New("unsupported data type")
	// ErrNoConnection is returned when catalog lookups are attempted on a session without a connection
	ErrNoConnection = errors.New("session has no connection")
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx used by a write session
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect reads catalog metadata into the schema model and renders DDL for one database engine.
//
// Generate* methods return the statement text only; execution belongs to the caller.
// Statements that need catalog lookups (table and column counts) run them on the
// session's connection.
type Dialect interface {
	// Name returns the canonical provider name
	Name() string

	// Connect opens a connection using the configured connection string.
	// The caller owns the returned handle.
	Connect(ctx context.Context) (*sql.DB, error)

	// Initialize prepares a write session on an open connection
	Initialize(ctx context.Context, q Querier) (*Session, error)

	// GetColumns appends the columns of every base table, creating tables as needed
	GetColumns(ctx context.Context, tables *schema.TableSet) error

	// GetIndexes appends indexes and constraints to tables already present in the set
	GetIndexes(ctx context.Context, tables *schema.TableSet) error

	GenerateAddTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error)
	GenerateAlterTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error)
	GenerateAlterColumnDefault(s *Session, schemaName, table string, column *schema.Column) (string, error)
	GenerateDropTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error)

	GenerateCreateIndex(s *Session, schemaName, table string, index *schema.Index) (string, error)
	// GenerateAlterIndex drops existingName and recreates the index
	GenerateAlterIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error)
	GenerateDropIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error)

	// GenerateCreateTableObjects creates the table when it is missing, otherwise adds
	// the columns, then creates the indexes.
	GenerateCreateTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error)

	// GenerateDeleteTableObjects drops the table when every column is being removed,
	// otherwise drops the listed columns and non primary key indexes.
	GenerateDeleteTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error)
}

// Session is the state of one write session. It is not safe for concurrent use.
type Session struct {
	q        Querier
	defaults map[string]string
}

// NewSession creates a session bound to q. A nil q gives a session that can only
// render statements that need no catalog lookups.
func NewSession(q Querier) *Session {
	return &Session{q: q, defaults: make(map[string]string)}
}

// DefaultConstraint returns the name of the default constraint bound to a column
func (s *Session) DefaultConstraint(schemaName, table, column string) (string, bool) {
	name, ok := s.defaults[defaultKey(schemaName, table, column)]
	return name, ok
}

// SetDefaultConstraint records the default constraint bound to a column
func (s *Session) SetDefaultConstraint(schemaName, table, column, name string) {
	s.defaults[defaultKey(schemaName, table, column)] = name
}

// ForgetDefaultConstraint removes a recorded default constraint
func (s *Session) ForgetDefaultConstraint(schemaName, table, column string) {
	delete(s.defaults, defaultKey(schemaName, table, column))
}

func defaultKey(schemaName, table, column string) string {
	return schemaName + "." + table + "." + column
}

func (s *Session) count(ctx context.Context, query string, args ...any) (int, error) {
	if s == nil || s.q == nil {
		return 0, ErrNoConnection
	}
	var n int
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
