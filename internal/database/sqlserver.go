package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/koba/schemasync/internal/schema"
)

const (
	sqlServerColumnsQuery = `
		SELECT
			c.TABLE_SCHEMA,
			c.TABLE_NAME,
			c.COLUMN_NAME,
			c.ORDINAL_POSITION,
			c.DATA_TYPE,
			c.CHARACTER_MAXIMUM_LENGTH,
			c.NUMERIC_PRECISION,
			c.NUMERIC_SCALE,
			c.IS_NULLABLE,
			c.COLUMN_DEFAULT,
			CAST(COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity') AS varchar(1)) AS IS_IDENTITY
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN INFORMATION_SCHEMA.VIEWS v ON v.TABLE_SCHEMA = c.TABLE_SCHEMA AND v.TABLE_NAME = c.TABLE_NAME
		WHERE v.TABLE_NAME IS NULL AND c.TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')
	`

	sqlServerIndexesQuery = `
		SELECT
			OBJECT_SCHEMA_NAME(T.[object_id], DB_ID()) AS TABLE_SCHEMA,
			T.[name] AS TABLE_NAME,
			I.[name] AS INDEX_NAME,
			AC.[name] AS COLUMN_NAME,
			I.[is_primary_key],
			I.[is_unique],
			CAST(CASE WHEN I.[type_desc] = 'CLUSTERED' THEN 1 ELSE 0 END AS bit) AS IS_CLUSTERED,
			CAST(CASE WHEN I.[is_primary_key] = 1 OR I.[is_unique_constraint] = 1 THEN 1 ELSE 0 END AS bit) AS IS_CONSTRAINT,
			IC.[is_included_column]
		FROM sys.[tables] AS T
		INNER JOIN sys.[indexes] I ON T.[object_id] = I.[object_id]
		INNER JOIN sys.[index_columns] IC ON I.[object_id] = IC.[object_id] AND I.[index_id] = IC.[index_id]
		INNER JOIN sys.[all_columns] AC ON T.[object_id] = AC.[object_id] AND IC.[column_id] = AC.[column_id]
		WHERE T.[is_ms_shipped] = 0 AND I.[type_desc] <> 'HEAP'
		ORDER BY TABLE_SCHEMA, T.[name], I.[index_id], IC.[key_ordinal], IC.[index_column_id]
	`

	sqlServerDefaultsQuery = `
		SELECT con.[name], SCHEMA_NAME(t.[schema_id]), t.[name], col.[name]
		FROM sys.default_constraints con
		LEFT OUTER JOIN sys.objects t ON con.[parent_object_id] = t.[object_id]
		LEFT OUTER JOIN sys.all_columns col ON con.[parent_column_id] = col.[column_id] AND con.[parent_object_id] = col.[object_id]
		ORDER BY con.[name]
	`

	sqlServerTableCountQuery  = "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2"
	sqlServerColumnCountQuery = "SELECT COUNT(*) FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2"
)

// sqlServerTypes maps data types onto T-SQL types. VarString is sized separately.
var sqlServerTypes = map[schema.DataType]string{
	schema.Integer:          "int",
	schema.BigInteger:       "bigint",
	schema.Boolean:          "bit",
	schema.DateTime:         "datetime",
	schema.Text:             "nvarchar(MAX)",
	schema.UniqueIdentifier: "uniqueidentifier",
	schema.Blob:             "varbinary(MAX)",
}

var sqlServerDefaults = map[schema.Default]string{
	schema.DefaultCurrentDateTime:     "getutcdate()",
	schema.DefaultNewUniqueIdentifier: "newid()",
	schema.DefaultZero:                "0",
	schema.DefaultOne:                 "1",
	schema.DefaultTwo:                 "2",
	schema.DefaultThree:               "3",
}

// sqlServerCatalogDefaults is the form COLUMN_DEFAULT reports the defaults in
var sqlServerCatalogDefaults = map[string]schema.Default{
	"(getutcdate())": schema.DefaultCurrentDateTime,
	"(newid())":      schema.DefaultNewUniqueIdentifier,
	"((0))":          schema.DefaultZero,
	"((1))":          schema.DefaultOne,
	"((2))":          schema.DefaultTwo,
	"((3))":          schema.DefaultThree,
}

// SQLServer implements Dialect for Microsoft SQL Server
type SQLServer struct {
	connector
}

// NewSQLServer creates a SQL Server dialect
func NewSQLServer(config Config) *SQLServer {
	d := &SQLServer{connector: connector{name: "SQL Server", config: config}}
	d.open = func() (*sql.DB, error) {
		return sql.Open("sqlserver", config.ConnectionString)
	}
	return d
}

func (d *SQLServer) Name() string {
	return ProviderSQLServer
}

// Initialize loads the names of the existing default constraints into the session
func (d *SQLServer) Initialize(ctx context.Context, q Querier) (*Session, error) {
	s := NewSession(q)

	rows, err := q.QueryContext(ctx, sqlServerDefaultsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get default constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var schemaName, table, column sql.NullString
		if err := rows.Scan(&name, &schemaName, &table, &column); err != nil {
			return nil, fmt.Errorf("failed to scan default constraint: %w", err)
		}
		s.SetDefaultConstraint(schemaName.String, table.String, column.String, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *SQLServer) GetColumns(ctx context.Context, tables *schema.TableSet) error {
	query := catalogQuery(sqlServerColumnsQuery, d.config.CommandWhere, "TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION")
	return d.withDB(ctx, func(db *sql.DB) error {
		_, err := loadColumns(ctx, db, query, tables, sqlServerColumn)
		return err
	})
}

func (d *SQLServer) GetIndexes(ctx context.Context, tables *schema.TableSet) error {
	return d.withDB(ctx, func(db *sql.DB) error {
		_, err := loadIndexes(ctx, db, sqlServerIndexesQuery, tables)
		return err
	})
}

// sqlServerColumn maps a catalog row onto a column
func sqlServerColumn(c catalogColumn) schema.Column {
	col := schema.Column{
		Name:     c.Name,
		Type:     sqlServerDataType(c.DataType, c.length()),
		Identity: strings.TrimSpace(c.Identity.String) == "1",
		NotNull:  c.notNull(),
		Length:   int(c.length()),
		Default:  sqlServerDefault(c.Default.String),
	}
	return col
}

// sqlServerDataType maps a T-SQL DATA_TYPE onto a data type. Unknown types read as Text.
func sqlServerDataType(native string, length int64) schema.DataType {
	switch strings.ToLower(native) {
	case "bigint":
		return schema.BigInteger
	case "int":
		return schema.Integer
	case "uniqueidentifier":
		return schema.UniqueIdentifier
	case "bit":
		return schema.Boolean
	case "datetime":
		return schema.DateTime
	case "varbinary":
		return schema.Blob
	case "nvarchar":
		if length > 0 {
			return schema.VarString
		}
		return schema.Text
	}
	return schema.Text
}

func sqlServerDefault(native string) schema.Default {
	if d, ok := sqlServerCatalogDefaults[strings.ToLower(strings.TrimSpace(native))]; ok {
		return d
	}
	return schema.DefaultNone
}

func (d *SQLServer) nativeType(c *schema.Column) (string, error) {
	if c.Type == schema.VarString {
		if c.Length <= 0 {
			return "nvarchar(MAX)", nil
		}
		return fmt.Sprintf("nvarchar(%d)", c.Length), nil
	}
	if t, ok := sqlServerTypes[c.Type]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedType, c.Type, d.Name())
}

func quoteSQLServer(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func sqlServerTable(schemaName, table string) string {
	return quoteSQLServer(schemaName) + "." + quoteSQLServer(table)
}

func sqlServerNullability(c *schema.Column) string {
	if c.NotNull {
		return "NOT NULL"
	}
	return "NULL"
}

func sqlServerDefaultName(schemaName, table, column string) string {
	return fmt.Sprintf("DF_%s_%s_%s", schemaName, table, column)
}

// defaultClause renders "CONSTRAINT [DF_...] DEFAULT(x)" and records the name in the session
func (d *SQLServer) defaultClause(s *Session, schemaName, table string, c *schema.Column) string {
	expr, ok := sqlServerDefaults[c.Default]
	if !ok {
		return ""
	}
	name := sqlServerDefaultName(schemaName, table, c.Name)
	s.SetDefaultConstraint(schemaName, table, c.Name, name)
	return fmt.Sprintf("CONSTRAINT %s DEFAULT(%s)", quoteSQLServer(name), expr)
}

// columnDefinition renders "<type> <identity> <nullability>[ CONSTRAINT [DF_...] DEFAULT(x)]"
func (d *SQLServer) columnDefinition(s *Session, schemaName, table string, c *schema.Column, key bool) (string, error) {
	nativeType, err := d.nativeType(c)
	if err != nil {
		return "", err
	}

	identity := ""
	if c.Identity {
		identity = "IDENTITY(1,1)"
		if key {
			identity += " PRIMARY KEY"
		}
	}

	def := nativeType + " " + identity + " " + sqlServerNullability(c)
	if clause := d.defaultClause(s, schemaName, table, c); clause != "" {
		def += " " + clause
	}
	return def, nil
}

func (d *SQLServer) GenerateAddTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	def, err := d.columnDefinition(s, schemaName, table, column, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD %s %s", sqlServerTable(schemaName, table), quoteSQLServer(column.Name), def), nil
}

func (d *SQLServer) GenerateAlterTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	nativeType, err := d.nativeType(column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s %s",
		sqlServerTable(schemaName, table),
		quoteSQLServer(column.Name),
		nativeType,
		sqlServerNullability(column),
	), nil
}

// GenerateAlterColumnDefault drops the column's current default constraint and
// adds DF_<schema>_<table>_<column>. The session tracks the new name.
func (d *SQLServer) GenerateAlterColumnDefault(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	var statements []string
	target := sqlServerTable(schemaName, table)

	if name, ok := s.DefaultConstraint(schemaName, table, column.Name); ok {
		statements = append(statements, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", target, quoteSQLServer(name)))
		s.ForgetDefaultConstraint(schemaName, table, column.Name)
	}

	if expr, ok := sqlServerDefaults[column.Default]; ok {
		name := sqlServerDefaultName(schemaName, table, column.Name)
		statements = append(statements, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s DEFAULT(%s) FOR %s",
			target, quoteSQLServer(name), expr, quoteSQLServer(column.Name)))
		s.SetDefaultConstraint(schemaName, table, column.Name, name)
	}

	return joinStatements(statements), nil
}

// GenerateDropTableColumn drops the column's default constraint first when one is known
func (d *SQLServer) GenerateDropTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	target := sqlServerTable(schemaName, table)
	statements := d.dropDefaults(s, schemaName, table, []string{column.Name})
	statements = append(statements, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", target, quoteSQLServer(column.Name)))
	return joinStatements(statements), nil
}

func (d *SQLServer) dropDefaults(s *Session, schemaName, table string, columns []string) []string {
	var statements []string
	for _, column := range columns {
		if name, ok := s.DefaultConstraint(schemaName, table, column); ok {
			statements = append(statements, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s",
				sqlServerTable(schemaName, table), quoteSQLServer(name)))
			s.ForgetDefaultConstraint(schemaName, table, column)
		}
	}
	return statements
}

func (d *SQLServer) createIndex(schemaName, table string, index *schema.Index) string {
	var sb strings.Builder
	target := sqlServerTable(schemaName, table)
	columns := quoteList(index.Columns, quoteSQLServer)

	clustered := "NONCLUSTERED"
	if index.Clustered {
		clustered = "CLUSTERED"
	}

	if index.Type == schema.IndexTypeConstraint || index.PrimaryKey {
		fmt.Fprintf(&sb, "ALTER TABLE %s ADD CONSTRAINT %s ", target, quoteSQLServer(index.Name))
		if index.PrimaryKey {
			sb.WriteString("PRIMARY KEY ")
		} else if index.Unique {
			sb.WriteString("UNIQUE ")
		}
		fmt.Fprintf(&sb, "%s (%s)", clustered, columns)
		return sb.String()
	}

	sb.WriteString("CREATE ")
	if index.Unique {
		sb.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&sb, "%s INDEX %s ON %s (%s)", clustered, quoteSQLServer(index.Name), target, columns)
	if len(index.Include) > 0 {
		fmt.Fprintf(&sb, " INCLUDE (%s)", quoteList(index.Include, quoteSQLServer))
	}
	return sb.String()
}

func (d *SQLServer) dropIndex(schemaName, table, name string) []string {
	target := sqlServerTable(schemaName, table)
	return []string{
		fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", target, quoteSQLServer(name)),
		fmt.Sprintf("DROP INDEX IF EXISTS %s ON %s", quoteSQLServer(name), target),
	}
}

func (d *SQLServer) GenerateCreateIndex(s *Session, schemaName, table string, index *schema.Index) (string, error) {
	return d.createIndex(schemaName, table, index), nil
}

func (d *SQLServer) GenerateAlterIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error) {
	statements := d.dropIndex(schemaName, table, existingName)
	statements = append(statements, d.createIndex(schemaName, table, index))
	return joinStatements(statements), nil
}

func (d *SQLServer) GenerateDropIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error) {
	return joinStatements(d.dropIndex(schemaName, table, existingName)), nil
}

func (d *SQLServer) GenerateCreateTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error) {
	var statements []string
	target := sqlServerTable(table.Schema, table.Name)

	if len(table.Columns) > 0 {
		// Check if the table already exists
		n, err := s.count(ctx, sqlServerTableCountQuery, table.Schema, table.Name)
		if err != nil {
			return "", fmt.Errorf("failed to count tables: %w", err)
		}

		lines := make([]string, 0, len(table.Columns))
		for i := range table.Columns {
			c := &table.Columns[i]
			def, err := d.columnDefinition(s, table.Schema, table.Name, c, inlineKey(table, c))
			if err != nil {
				return "", err
			}
			lines = append(lines, "\t"+quoteSQLServer(c.Name)+" "+def)
		}

		if n == 0 {
			statements = append(statements, "CREATE TABLE "+target+" (\n"+strings.Join(lines, ",\n")+"\n)")
		} else {
			statements = append(statements, "ALTER TABLE "+target+" ADD\n"+strings.Join(lines, ",\n"))
		}
	}

	skipKey := hasIdentityKey(table)
	for i := range table.Indexes {
		idx := &table.Indexes[i]
		// the identity column already declared the primary key
		if idx.PrimaryKey && skipKey {
			continue
		}
		statements = append(statements, d.createIndex(table.Schema, table.Name, idx))
	}

	return joinStatements(statements), nil
}

func (d *SQLServer) GenerateDeleteTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error) {
	var statements []string
	target := sqlServerTable(table.Schema, table.Name)

	var dropColumns []string
	if len(table.Columns) > 0 {
		n, err := s.count(ctx, sqlServerColumnCountQuery, table.Schema, table.Name)
		if err != nil {
			return "", fmt.Errorf("failed to count columns: %w", err)
		}

		if len(table.Columns) == n {
			return "DROP TABLE " + target, nil
		}

		for _, c := range table.Columns {
			dropColumns = append(dropColumns, c.Name)
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
		statements = append(statements, d.dropDefaults(s, table.Schema, table.Name, dropColumns)...)
		statements = append(statements, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", target, quoteList(dropColumns, quoteSQLServer)))
	}

	return joinStatements(statements), nil
}
