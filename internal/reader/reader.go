package reader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/koba/schemasync/internal/database"
	"github.com/koba/schemasync/internal/schema"
)

// Options controls discovery
type Options struct {
	Schema          string // exact schema filter, ignoring case
	Table           string // exact table filter, ignoring case
	IndexNameFormat string
}

// Row is one discovered column, index or constraint in the flat form handed
// to a diff engine. ID is the native object name; Name is the synchronization name.
type Row struct {
	ID            string `json:"id" yaml:"id"`
	Schema        string `json:"Schema" yaml:"Schema"`
	ObjectType    string `json:"ObjectType" yaml:"ObjectType"`
	TableName     string `json:"TableName" yaml:"TableName"`
	Name          string `json:"Name" yaml:"Name"`
	DataType      string `json:"DataType,omitempty" yaml:"DataType,omitempty"`
	Length        int    `json:"Length" yaml:"Length"`
	Precision     int    `json:"Precision" yaml:"Precision"`
	Scale         int    `json:"Scale" yaml:"Scale"`
	NotNull       bool   `json:"NotNull" yaml:"NotNull"`
	ColumnDefault string `json:"ColumnDefault,omitempty" yaml:"ColumnDefault,omitempty"`
	IsIdentity    bool   `json:"IsIdentity" yaml:"IsIdentity"`
	IsPrimaryKey  bool   `json:"IsPrimaryKey" yaml:"IsPrimaryKey"`
	IsClustered   bool   `json:"IsClustered" yaml:"IsClustered"`
	IsUnique      bool   `json:"IsUnique" yaml:"IsUnique"`
	Include       string `json:"Include,omitempty" yaml:"Include,omitempty"`
	Columns       string `json:"Columns,omitempty" yaml:"Columns,omitempty"`
}

// Fields returns the row as a field dictionary. Column rows and index rows
// carry different fields.
func (r Row) Fields() map[string]any {
	fields := map[string]any{
		"Schema":       r.Schema,
		"ObjectType":   r.ObjectType,
		"TableName":    r.TableName,
		"Name":         r.Name,
		"IsPrimaryKey": r.IsPrimaryKey,
		"IsClustered":  r.IsClustered,
		"IsUnique":     r.IsUnique,
	}
	if r.ObjectType == schema.ObjectTypeColumn {
		fields["DataType"] = r.DataType
		fields["Length"] = r.Length
		fields["Precision"] = r.Precision
		fields["Scale"] = r.Scale
		fields["NotNull"] = r.NotNull
		fields["ColumnDefault"] = r.ColumnDefault
		fields["IsIdentity"] = r.IsIdentity
	} else {
		fields["Columns"] = r.Columns
		fields["Include"] = r.Include
	}
	return fields
}

// Reader discovers a database's tables through a dialect
type Reader struct {
	dialect database.Dialect
	opts    Options
	logger  *slog.Logger
}

// New creates a reader. A nil logger uses slog.Default().
func New(dialect database.Dialect, opts Options, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{dialect: dialect, opts: opts, logger: logger}
}

// Discover reads columns then indexes and returns one row per column followed
// by one row per index, table by table in catalog order
func (r *Reader) Discover(ctx context.Context) ([]Row, error) {
	tables := schema.NewTableSet()

	if err := r.dialect.GetColumns(ctx, tables); err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	r.logger.Debug("read columns", "provider", r.dialect.Name(), "tables", tables.Len())

	if err := r.dialect.GetIndexes(ctx, tables); err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}

	var rows []Row
	for _, t := range tables.Tables() {
		if !r.include(t) {
			continue
		}
		rows = append(rows, r.tableRows(t)...)
	}

	r.logger.Info("discovered schema", "provider", r.dialect.Name(), "rows", len(rows))
	return rows, nil
}

// include applies the schema and table filters; an unset filter matches everything
func (r *Reader) include(t *schema.Table) bool {
	if r.opts.Schema != "" && !strings.EqualFold(r.opts.Schema, t.Schema) {
		return false
	}
	if r.opts.Table != "" && !strings.EqualFold(r.opts.Table, t.Name) {
		return false
	}
	return true
}

func (r *Reader) tableRows(t *schema.Table) []Row {
	rows := make([]Row, 0, len(t.Columns)+len(t.Indexes))

	for i := range t.Columns {
		c := &t.Columns[i]
		row := Row{
			ID:            c.Name,
			Schema:        t.Schema,
			ObjectType:    schema.ObjectTypeColumn,
			TableName:     t.Name,
			Name:          c.Name,
			DataType:      c.Type.String(),
			Length:        c.Length,
			NotNull:       c.NotNull,
			ColumnDefault: c.Default.String(),
			IsIdentity:    c.Identity,
			IsPrimaryKey:  t.IsPrimaryKey(c.Name),
			IsClustered:   t.IsClustered(c.Name),
			IsUnique:      t.IsUnique(c.Name),
		}
		if c.IsPrecisionScaleType() {
			row.Precision = c.Precision
			row.Scale = c.Scale
		}
		rows = append(rows, row)
	}

	for i := range t.Indexes {
		idx := &t.Indexes[i]
		rows = append(rows, Row{
			ID:           idx.Name,
			Schema:       t.Schema,
			ObjectType:   idx.ObjectType(),
			TableName:    t.Name,
			Name:         idx.ComputeName(t, r.opts.IndexNameFormat),
			IsPrimaryKey: idx.PrimaryKey,
			IsClustered:  idx.Clustered,
			IsUnique:     idx.Unique,
			Columns:      strings.Join(idx.Columns, ","),
			Include:      strings.Join(idx.Include, ","),
		})
	}

	return rows
}
