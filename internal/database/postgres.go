package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/koba/schemasync/internal/schema"
)

const (
	postgresColumnsQuery = `
		SELECT
			c.table_schema,
			c.table_name,
			c.column_name,
			c.ordinal_position,
			c.data_type,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.is_nullable,
			c.column_default,
			c.is_identity
		FROM information_schema.columns c
		LEFT JOIN information_schema.views v ON v.table_schema = c.table_schema AND v.table_name = c.table_name
		WHERE v.table_name IS NULL
			AND c.table_schema NOT IN ('pg_catalog', 'information_schema')
			AND c.table_schema NOT LIKE 'pg_toast%'
	`

	// Key columns only: ord runs past indnkeyatts for INCLUDE columns.
	postgresIndexesQuery = `
		SELECT
			n.nspname AS table_schema,
			c.relname AS table_name,
			i.relname AS index_name,
			a.attname AS column_name,
			x.indisprimary AS is_primary_key,
			x.indisunique AS is_unique,
			x.indisclustered AS is_clustered,
			(con.oid IS NOT NULL) AS is_constraint,
			false AS is_included
		FROM pg_index x
		JOIN pg_class c ON c.oid = x.indrelid
		JOIN pg_class i ON i.oid = x.indexrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		CROSS JOIN LATERAL unnest(x.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = k.attnum
		LEFT JOIN pg_constraint con ON con.conindid = x.indexrelid AND con.contype IN ('p', 'u')
		WHERE c.relkind IN ('r', 'p')
			AND k.ord <= x.indnkeyatts
			AND n.nspname NOT IN ('pg_catalog', 'information_schema')
			AND n.nspname NOT LIKE 'pg_toast%'
		ORDER BY n.nspname, c.relname, i.relname, k.ord
	`

	postgresTableCountQuery  = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2"
	postgresColumnCountQuery = "SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2"
)

// postgresTypes maps data types onto PostgreSQL types. VarString is sized separately
// and identity integers use the serial types.
var postgresTypes = map[schema.DataType]string{
	schema.Integer:          "int",
	schema.BigInteger:       "bigint",
	schema.Boolean:          "int",
	schema.DateTime:         "timestamp",
	schema.Text:             "text",
	schema.UniqueIdentifier: "uuid",
	schema.Blob:             "bytea",
}

var postgresSerialTypes = map[schema.DataType]string{
	schema.Integer:    "serial",
	schema.BigInteger: "bigserial",
}

// NewUniqueIdentifier has no PostgreSQL form and is treated as no default.
var postgresDefaults = map[schema.Default]string{
	schema.DefaultCurrentDateTime: "CURRENT_TIMESTAMP",
	schema.DefaultZero:            "0",
	schema.DefaultOne:             "1",
	schema.DefaultTwo:             "2",
	schema.DefaultThree:           "3",
}

var postgresCatalogDefaults = map[string]schema.Default{
	"current_timestamp": schema.DefaultCurrentDateTime,
	"now()":             schema.DefaultCurrentDateTime,
	"0":                 schema.DefaultZero,
	"1":                 schema.DefaultOne,
	"2":                 schema.DefaultTwo,
	"3":                 schema.DefaultThree,
}

// Postgres implements Dialect for PostgreSQL. Schema, table and column names are
// folded to lower case.
type Postgres struct {
	connector
}

// NewPostgres creates a PostgreSQL dialect using lib/pq, or pgx when config.Driver is "pgx"
func NewPostgres(config Config) *Postgres {
	d := &Postgres{connector: connector{name: "PostgreSQL", config: config}}
	d.open = func() (*sql.DB, error) {
		if strings.EqualFold(config.Driver, DriverPGX) {
			connConfig, err := pgx.ParseConfig(config.ConnectionString)
			if err != nil {
				return nil, err
			}
			// DDL scripts hold several statements
			connConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
			return stdlib.OpenDB(*connConfig), nil
		}
		return sql.Open(DriverPQ, config.ConnectionString)
	}
	return d
}

func (d *Postgres) Name() string {
	return ProviderPostgres
}

func (d *Postgres) Initialize(ctx context.Context, q Querier) (*Session, error) {
	return NewSession(q), nil
}

func (d *Postgres) GetColumns(ctx context.Context, tables *schema.TableSet) error {
	query := catalogQuery(postgresColumnsQuery, d.config.CommandWhere, "table_schema, table_name, ordinal_position")
	return d.withDB(ctx, func(db *sql.DB) error {
		_, err := loadColumns(ctx, db, query, tables, postgresColumn)
		return err
	})
}

func (d *Postgres) GetIndexes(ctx context.Context, tables *schema.TableSet) error {
	return d.withDB(ctx, func(db *sql.DB) error {
		_, err := loadIndexes(ctx, db, postgresIndexesQuery, tables)
		return err
	})
}

func postgresColumn(c catalogColumn) schema.Column {
	return schema.Column{
		Name:     c.Name,
		Type:     postgresDataType(c.DataType),
		Identity: postgresIdentity(c.Identity.String, c.Default.String),
		NotNull:  c.notNull(),
		Length:   int(c.length()),
		Default:  postgresDefault(c.Default.String),
	}
}

// postgresDataType maps a PostgreSQL data_type onto a data type. Unknown types read as Text.
func postgresDataType(native string) schema.DataType {
	switch strings.ToLower(native) {
	case "bigint", "int8", "bigserial":
		return schema.BigInteger
	case "int", "integer", "int4", "serial":
		return schema.Integer
	case "uuid":
		return schema.UniqueIdentifier
	case "bit", "boolean", "bool":
		return schema.Boolean
	case "timestamp", "timestamp without time zone":
		return schema.DateTime
	case "bytea":
		return schema.Blob
	case "varchar", "character varying":
		return schema.VarString
	}
	return schema.Text
}

func postgresIdentity(isIdentity, columnDefault string) bool {
	return strings.EqualFold(isIdentity, "YES") || strings.HasPrefix(strings.ToLower(columnDefault), "nextval(")
}

func postgresDefault(native string) schema.Default {
	if d, ok := postgresCatalogDefaults[strings.ToLower(strings.TrimSpace(native))]; ok {
		return d
	}
	return schema.DefaultNone
}

func (d *Postgres) nativeType(c *schema.Column, serial bool) (string, error) {
	if serial && c.Identity {
		if t, ok := postgresSerialTypes[c.Type]; ok {
			return t, nil
		}
	}
	if c.Type == schema.VarString {
		if c.Length <= 0 {
			return "varchar", nil
		}
		return fmt.Sprintf("varchar(%d)", c.Length), nil
	}
	if t, ok := postgresTypes[c.Type]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedType, c.Type, d.Name())
}

func quotePostgres(name string) string {
	return pgx.Identifier{strings.ToLower(name)}.Sanitize()
}

// quotePostgresName quotes without folding, for index and constraint names
func quotePostgresName(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func postgresTable(schemaName, table string) string {
	return pgx.Identifier{strings.ToLower(schemaName), strings.ToLower(table)}.Sanitize()
}

func postgresNullability(c *schema.Column) string {
	if c.NotNull {
		return "NOT NULL"
	}
	return "NULL"
}

func (d *Postgres) columnDefinition(c *schema.Column, key bool) (string, error) {
	nativeType, err := d.nativeType(c, true)
	if err != nil {
		return "", err
	}

	parts := []string{quotePostgres(c.Name), nativeType}
	if key {
		parts = append(parts, "PRIMARY KEY")
	}
	if expr, ok := postgresDefaults[c.Default]; ok {
		parts = append(parts, "DEFAULT("+expr+")")
	}
	parts = append(parts, postgresNullability(c))
	return strings.Join(parts, " "), nil
}

func (d *Postgres) GenerateAddTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	def, err := d.columnDefinition(column, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD %s;", postgresTable(schemaName, table), def), nil
}

// GenerateAlterTableColumn changes the type and nullability. Identity columns keep
// their sequence, so the plain integer types are used.
func (d *Postgres) GenerateAlterTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	nativeType, err := d.nativeType(column, false)
	if err != nil {
		return "", err
	}

	name := quotePostgres(column.Name)
	nullability := "DROP NOT NULL"
	if column.NotNull {
		nullability = "SET NOT NULL"
	}

	return fmt.Sprintf("ALTER TABLE ONLY %s ALTER COLUMN %s TYPE %s, ALTER COLUMN %s %s;",
		postgresTable(schemaName, table), name, nativeType, name, nullability), nil
}

func (d *Postgres) GenerateAlterColumnDefault(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	action := "DROP DEFAULT"
	if expr, ok := postgresDefaults[column.Default]; ok {
		action = "SET DEFAULT " + expr
	}
	return fmt.Sprintf("ALTER TABLE ONLY %s ALTER COLUMN %s %s;",
		postgresTable(schemaName, table), quotePostgres(column.Name), action), nil
}

func (d *Postgres) GenerateDropTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", postgresTable(schemaName, table), quotePostgres(column.Name)), nil
}

func (d *Postgres) createIndex(schemaName, table string, index *schema.Index) string {
	var sb strings.Builder
	target := postgresTable(schemaName, table)
	columns := quoteList(index.Columns, quotePostgres)

	if index.Type == schema.IndexTypeConstraint || index.PrimaryKey {
		fmt.Fprintf(&sb, "ALTER TABLE %s ADD CONSTRAINT %s ", target, quotePostgresName(index.Name))
		if index.PrimaryKey {
			sb.WriteString("PRIMARY KEY ")
		} else if index.Unique {
			sb.WriteString("UNIQUE ")
		}
		fmt.Fprintf(&sb, "(%s);", columns)
		return sb.String()
	}

	sb.WriteString("CREATE ")
	if index.Unique {
		sb.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&sb, "INDEX %s ON %s (%s);", quotePostgresName(index.Name), target, columns)
	return sb.String()
}

func (d *Postgres) dropIndex(schemaName, table, name string) []string {
	return []string{
		fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;", postgresTable(schemaName, table), quotePostgresName(name)),
		fmt.Sprintf("DROP INDEX IF EXISTS %s;", pgx.Identifier{strings.ToLower(schemaName), name}.Sanitize()),
	}
}

func (d *Postgres) GenerateCreateIndex(s *Session, schemaName, table string, index *schema.Index) (string, error) {
	return d.createIndex(schemaName, table, index), nil
}

func (d *Postgres) GenerateAlterIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error) {
	statements := d.dropIndex(schemaName, table, existingName)
	statements = append(statements, d.createIndex(schemaName, table, index))
	return joinStatements(statements), nil
}

func (d *Postgres) GenerateDropIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error) {
	return joinStatements(d.dropIndex(schemaName, table, existingName)), nil
}

func (d *Postgres) GenerateCreateTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error) {
	var statements []string
	target := postgresTable(table.Schema, table.Name)

	if len(table.Columns) > 0 {
		// Check if the table already exists
		n, err := s.count(ctx, postgresTableCountQuery, strings.ToLower(table.Schema), strings.ToLower(table.Name))
		if err != nil {
			return "", fmt.Errorf("failed to count tables: %w", err)
		}

		lines := make([]string, 0, len(table.Columns))
		for i := range table.Columns {
			c := &table.Columns[i]
			def, err := d.columnDefinition(c, inlineKey(table, c))
			if err != nil {
				return "", err
			}
			if n == 0 {
				lines = append(lines, "\t"+def)
			} else {
				lines = append(lines, "\tADD COLUMN "+def)
			}
		}

		if n == 0 {
			statements = append(statements, "CREATE TABLE "+target+" (\n"+strings.Join(lines, ",\n")+"\n);")
		} else {
			statements = append(statements, "ALTER TABLE "+target+"\n"+strings.Join(lines, ",\n")+";")
		}
	}

	skipKey := hasIdentityKey(table)
	for i := range table.Indexes {
		idx := &table.Indexes[i]
		if idx.PrimaryKey && skipKey {
			continue
		}
		statements = append(statements, d.createIndex(table.Schema, table.Name, idx))
	}

	return joinStatements(statements), nil
}

func (d *Postgres) GenerateDeleteTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error) {
	var statements []string
	target := postgresTable(table.Schema, table.Name)

	var dropColumns []string
	if len(table.Columns) > 0 {
		n, err := s.count(ctx, postgresColumnCountQuery, strings.ToLower(table.Schema), strings.ToLower(table.Name))
		if err != nil {
			return "", fmt.Errorf("failed to count columns: %w", err)
		}

		if len(table.Columns) == n {
			return "DROP TABLE " + target + ";", nil
		}

		for _, c := range table.Columns {
			dropColumns = append(dropColumns, "DROP COLUMN "+quotePostgres(c.Name))
		}
	}

	for i := range table.Indexes {
		idx := &table.Indexes[i]
		if idx.PrimaryKey {
			continue
		}
		statements = append(statements, d.dropIndex(table.Schema, table.Name, idx.Name)...)
	}

	if len(dropColumns) > 0 {
		statements = append(statements, "ALTER TABLE "+target+" "+strings.Join(dropColumns, ", ")+";")
	}

	return joinStatements(statements), nil
}
