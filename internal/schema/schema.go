package schema

import "strings"

// Column represents a table column in the dialect-neutral model
type Column struct {
	Name       string   `json:"name"`
	Type       DataType `json:"type"`
	Identity   bool     `json:"identity"`
	PrimaryKey bool     `json:"primary_key"`
	NotNull    bool     `json:"not_null"`
	Length     int      `json:"length"` // -1 when unbounded or not applicable
	Precision  int      `json:"precision"`
	Scale      int      `json:"scale"`
	Default    Default  `json:"default"`
}

// NewColumn returns a column with an unbounded length
func NewColumn(name string, t DataType) Column {
	return Column{Name: name, Type: t, Length: -1}
}

// IsPrecisionScaleType reports whether Precision and Scale carry meaning
func (c *Column) IsPrecisionScaleType() bool {
	return c.Type == Decimal
}

// Index represents an index or a constraint backed by an index
type Index struct {
	Name       string    `json:"name"`
	Columns    []string  `json:"columns"`
	Include    []string  `json:"include,omitempty"`
	PrimaryKey bool      `json:"primary_key"`
	Clustered  bool      `json:"clustered"`
	Unique     bool      `json:"unique"`
	Type       IndexType `json:"type"`
}

// ObjectType returns the row object type this index is reported as
func (i *Index) ObjectType() string {
	if i.Type == IndexTypeConstraint {
		return ObjectTypeConstraint
	}
	return ObjectTypeIndex
}

// HasColumn reports whether name is one of the key columns
func (i *Index) HasColumn(name string) bool {
	for _, c := range i.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Table represents a table with its columns and indexes
type Table struct {
	Schema  string   `json:"schema"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Indexes []Index  `json:"indexes"`
}

// Key returns the "schema.table" lookup key
func (t *Table) Key() string {
	return TableKey(t.Schema, t.Name)
}

// IsPrimaryKey reports whether a primary key index references the column
func (t *Table) IsPrimaryKey(column string) bool {
	return t.anyIndex(column, func(i *Index) bool { return i.PrimaryKey })
}

// IsClustered reports whether a clustered index references the column
func (t *Table) IsClustered(column string) bool {
	return t.anyIndex(column, func(i *Index) bool { return i.Clustered })
}

// IsUnique reports whether a unique index references the column
func (t *Table) IsUnique(column string) bool {
	return t.anyIndex(column, func(i *Index) bool { return i.Unique })
}

// HasIdentity reports whether any column is engine-managed
func (t *Table) HasIdentity() bool {
	for i := range t.Columns {
		if t.Columns[i].Identity {
			return true
		}
	}
	return false
}

// FindIndex returns the index with the given name
func (t *Table) FindIndex(name string) *Index {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i]
		}
	}
	return nil
}

func (t *Table) anyIndex(column string, match func(*Index) bool) bool {
	for i := range t.Indexes {
		idx := &t.Indexes[i]
		if match(idx) && idx.HasColumn(column) {
			return true
		}
	}
	return false
}

// KeyFunc builds a "schema.table" identity key
type KeyFunc func(schemaName, table string) string

// TableKey builds the key used by TableSet. Names compare exactly.
func TableKey(schemaName, table string) string {
	return schemaName + "." + table
}

// FoldedTableKey builds a key for engines that compare identifiers in lower case
func FoldedTableKey(schemaName, table string) string {
	return strings.ToLower(TableKey(schemaName, table))
}

// TableSet is a "schema.table" keyed collection that keeps insertion order
type TableSet struct {
	tables map[string]*Table
	order  []string
}

// NewTableSet creates an empty table set
func NewTableSet() *TableSet {
	return &TableSet{tables: make(map[string]*Table)}
}

// Get returns the table for schema and name
func (s *TableSet) Get(schemaName, name string) (*Table, bool) {
	t, ok := s.tables[TableKey(schemaName, name)]
	return t, ok
}

// Ensure returns the table for schema and name, creating it when absent
func (s *TableSet) Ensure(schemaName, name string) *Table {
	key := TableKey(schemaName, name)
	if t, ok := s.tables[key]; ok {
		return t
	}
	t := &Table{Schema: schemaName, Name: name}
	s.tables[key] = t
	s.order = append(s.order, key)
	return t
}

// Tables returns the tables in the order they were first seen
func (s *TableSet) Tables() []*Table {
	out := make([]*Table, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.tables[key])
	}
	return out
}

// Len returns the number of tables
func (s *TableSet) Len() int {
	return len(s.order)
}
