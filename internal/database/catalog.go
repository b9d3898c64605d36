package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/koba/schemasync/internal/schema"
)

// catalogColumn is one row of a dialect's column query. Every column query
// selects the same eleven columns in this order.
type catalogColumn struct {
	Schema    string
	Table     string
	Name      string
	Ordinal   int
	DataType  string
	Length    sql.NullInt64
	Precision sql.NullInt64
	Scale     sql.NullInt64
	Nullable  string
	Default   sql.NullString
	Identity  sql.NullString
}

func (c catalogColumn) length() int64 {
	if !c.Length.Valid {
		return -1
	}
	return c.Length.Int64
}

func (c catalogColumn) notNull() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Nullable), "YES")
}

// catalogIndex is one key or included column of an index
type catalogIndex struct {
	Schema     string
	Table      string
	Index      string
	Column     string
	PrimaryKey bool
	Unique     bool
	Clustered  bool
	Constraint bool
	Included   bool
}

// catalogQuery applies the caller's predicate around a catalog query so it can
// reference any column the query returns.
func catalogQuery(inner, where, orderBy string) string {
	q := "SELECT * FROM (" + strings.TrimSpace(inner) + ") T1"
	if strings.TrimSpace(where) != "" {
		q += " WHERE (" + where + ")"
	}
	if orderBy != "" {
		q += " ORDER BY " + orderBy
	}
	return q
}

// loadColumns runs a column query and appends the mapped columns to tables
func loadColumns(ctx context.Context, db *sql.DB, query string, tables *schema.TableSet, read func(catalogColumn) schema.Column) (int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var c catalogColumn
		if err := rows.Scan(
			&c.Schema,
			&c.Table,
			&c.Name,
			&c.Ordinal,
			&c.DataType,
			&c.Length,
			&c.Precision,
			&c.Scale,
			&c.Nullable,
			&c.Default,
			&c.Identity,
		); err != nil {
			return count, fmt.Errorf("failed to scan column: %w", err)
		}

		t := tables.Ensure(c.Schema, c.Table)
		t.Columns = append(t.Columns, read(c))
		count++
	}

	return count, rows.Err()
}

// loadIndexes runs an index query and merges the per-column rows into one
// Index per table and index name. Rows for tables not in the set are ignored.
func loadIndexes(ctx context.Context, db *sql.DB, query string, tables *schema.TableSet) (int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to get indexes: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var r catalogIndex
		if err := rows.Scan(
			&r.Schema,
			&r.Table,
			&r.Index,
			&r.Column,
			&r.PrimaryKey,
			&r.Unique,
			&r.Clustered,
			&r.Constraint,
			&r.Included,
		); err != nil {
			return count, fmt.Errorf("failed to scan index: %w", err)
		}

		t, ok := tables.Get(r.Schema, r.Table)
		if !ok {
			continue
		}

		idx := t.FindIndex(r.Index)
		if idx == nil {
			indexType := schema.IndexTypeIndex
			if r.PrimaryKey || r.Constraint {
				indexType = schema.IndexTypeConstraint
			}
			t.Indexes = append(t.Indexes, schema.Index{
				Name:       r.Index,
				PrimaryKey: r.PrimaryKey,
				Unique:     r.Unique,
				Clustered:  r.Clustered,
				Type:       indexType,
			})
			idx = &t.Indexes[len(t.Indexes)-1]
			count++
		}

		if r.Included {
			idx.Include = append(idx.Include, r.Column)
		} else {
			idx.Columns = append(idx.Columns, r.Column)
		}
	}

	return count, rows.Err()
}

// quoteList quotes every name with quote and joins them with a comma
func quoteList(names []string, quote func(string) string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ",")
}

// hasIdentityKey reports whether the engine creates the primary key through an identity column
func hasIdentityKey(t *schema.Table) bool {
	for i := range t.Columns {
		if inlineKey(t, &t.Columns[i]) {
			return true
		}
	}
	return false
}

func inlineKey(t *schema.Table, c *schema.Column) bool {
	return c.Identity && (c.PrimaryKey || t.IsPrimaryKey(c.Name))
}

func joinStatements(statements []string) string {
	return strings.Join(statements, "\n")
}
