package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/koba/schemasync/internal/schema"
)

const (
	mysqlColumnsQuery = `
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
			c.EXTRA
		FROM information_schema.COLUMNS c
		LEFT JOIN information_schema.VIEWS v ON v.TABLE_SCHEMA = c.TABLE_SCHEMA AND v.TABLE_NAME = c.TABLE_NAME
		WHERE v.TABLE_NAME IS NULL
			AND c.TABLE_SCHEMA NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
	`

	mysqlIndexesQuery = `
		SELECT
			s.TABLE_SCHEMA,
			s.TABLE_NAME,
			s.INDEX_NAME,
			s.COLUMN_NAME,
			s.INDEX_NAME = 'PRIMARY' AS IS_PRIMARY_KEY,
			s.NON_UNIQUE = 0 AS IS_UNIQUE,
			s.INDEX_NAME = 'PRIMARY' AS IS_CLUSTERED,
			(s.INDEX_NAME = 'PRIMARY' OR s.NON_UNIQUE = 0) AS IS_CONSTRAINT,
			0 AS IS_INCLUDED
		FROM information_schema.STATISTICS s
		WHERE s.TABLE_SCHEMA NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
			AND s.COLUMN_NAME IS NOT NULL
		ORDER BY s.TABLE_SCHEMA, s.TABLE_NAME, s.INDEX_NAME, s.SEQ_IN_INDEX
	`

	mysqlTableCountQuery  = "SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?"
	mysqlColumnCountQuery = "SELECT COUNT(*) FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?"

	// mysqlMaxLength is the MEDIUMTEXT length; longer character columns read as unbounded
	mysqlMaxLength = 16777215
)

// mysqlTypes maps data types onto MySQL types. VarString and Decimal are sized separately.
var mysqlTypes = map[schema.DataType]string{
	schema.TinyInt:          "tinyint",
	schema.Integer:          "int",
	schema.BigInteger:       "bigint",
	schema.Double:           "float",
	schema.Boolean:          "bit",
	schema.DateTime:         "datetime",
	schema.Text:             "mediumtext",
	schema.UniqueIdentifier: "char(38)",
	schema.Blob:             "mediumblob",
}

var mysqlDefaults = map[schema.Default]string{
	schema.DefaultCurrentDateTime:     "CURRENT_TIMESTAMP()",
	schema.DefaultNewUniqueIdentifier: "(UUID())",
	schema.DefaultZero:                "0",
	schema.DefaultOne:                 "1",
	schema.DefaultTwo:                 "2",
	schema.DefaultThree:               "3",
}

var mysqlCatalogDefaults = map[string]schema.Default{
	"current_timestamp()": schema.DefaultCurrentDateTime,
	"current_timestamp":   schema.DefaultCurrentDateTime,
	"uuid()":              schema.DefaultNewUniqueIdentifier,
	"b'0'":                schema.DefaultZero,
	"b'1'":                schema.DefaultOne,
}

// MySQL implements Dialect for MySQL. The database name is the schema.
type MySQL struct {
	connector
}

// NewMySQL creates a MySQL dialect
func NewMySQL(config Config) *MySQL {
	d := &MySQL{connector: connector{name: "MySQL", config: config}}
	d.open = func() (*sql.DB, error) {
		cfg, err := mysql.ParseDSN(config.ConnectionString)
		if err != nil {
			return nil, err
		}
		// DDL scripts hold several statements
		cfg.MultiStatements = true

		conn, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(conn), nil
	}
	return d
}

func (d *MySQL) Name() string {
	return ProviderMySQL
}

func (d *MySQL) Initialize(ctx context.Context, q Querier) (*Session, error) {
	return NewSession(q), nil
}

func (d *MySQL) GetColumns(ctx context.Context, tables *schema.TableSet) error {
	query := catalogQuery(mysqlColumnsQuery, d.config.CommandWhere, "TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION")
	return d.withDB(ctx, func(db *sql.DB) error {
		_, err := loadColumns(ctx, db, query, tables, mysqlColumn)
		return err
	})
}

func (d *MySQL) GetIndexes(ctx context.Context, tables *schema.TableSet) error {
	return d.withDB(ctx, func(db *sql.DB) error {
		_, err := loadIndexes(ctx, db, mysqlIndexesQuery, tables)
		return err
	})
}

func mysqlColumn(c catalogColumn) schema.Column {
	dataType := mysqlDataType(c.DataType, c.length())

	length := c.length()
	if length >= mysqlMaxLength || dataType == schema.UniqueIdentifier {
		length = -1
	}

	return schema.Column{
		Name:      c.Name,
		Type:      dataType,
		Identity:  strings.HasPrefix(strings.ToLower(c.Identity.String), "auto_increment"),
		NotNull:   c.notNull(),
		Length:    int(length),
		Precision: int(c.Precision.Int64),
		Scale:     int(c.Scale.Int64),
		Default:   mysqlDefault(c.Default.String),
	}
}

// mysqlDataType maps a MySQL DATA_TYPE onto a data type. Unknown types read as Text.
func mysqlDataType(native string, length int64) schema.DataType {
	switch strings.ToLower(native) {
	case "bigint":
		return schema.BigInteger
	case "int":
		return schema.Integer
	case "tinyint":
		return schema.TinyInt
	case "real", "float":
		return schema.Double
	case "numeric", "decimal":
		return schema.Decimal
	case "bit":
		return schema.Boolean
	case "timestamp", "datetime":
		return schema.DateTime
	case "longblob", "mediumblob":
		return schema.Blob
	case "varchar":
		return schema.VarString
	case "char":
		if length == 38 {
			return schema.UniqueIdentifier
		}
		return schema.VarString
	case "longtext", "mediumtext", "text":
		return schema.Text
	case "binary":
		if length == 16 {
			return schema.UniqueIdentifier
		}
		return schema.Blob
	}
	return schema.Text
}

func mysqlDefault(native string) schema.Default {
	native = strings.ToLower(strings.TrimSpace(native))
	if native == "" {
		return schema.DefaultNone
	}
	if d, ok := mysqlCatalogDefaults[native]; ok {
		return d
	}
	if v, err := strconv.Atoi(native); err == nil {
		if d, ok := schema.DefaultFromLiteral(v); ok {
			return d
		}
	}
	return schema.DefaultNone
}

func (d *MySQL) nativeType(c *schema.Column) (string, error) {
	switch c.Type {
	case schema.VarString:
		if c.Length <= 0 {
			return "mediumtext", nil
		}
		return fmt.Sprintf("varchar(%d)", c.Length), nil
	case schema.Decimal:
		return fmt.Sprintf("decimal(%d, %d)", c.Precision, c.Scale), nil
	}
	if t, ok := mysqlTypes[c.Type]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedType, c.Type, d.Name())
}

func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func mysqlTable(schemaName, table string) string {
	if schemaName == "" {
		return quoteMySQL(table)
	}
	return quoteMySQL(schemaName) + "." + quoteMySQL(table)
}

// columnDefinition renders "`name` <type> <nullability>[ auto_increment primary key][ DEFAULT x]"
func (d *MySQL) columnDefinition(c *schema.Column, key bool) (string, error) {
	nativeType, err := d.nativeType(c)
	if err != nil {
		return "", err
	}

	parts := []string{quoteMySQL(c.Name), nativeType}
	if c.NotNull {
		parts = append(parts, "NOT NULL")
	} else {
		parts = append(parts, "NULL")
	}
	if c.Identity {
		parts = append(parts, "auto_increment")
		if key {
			parts = append(parts, "primary key")
		}
	}
	if expr, ok := mysqlDefaults[c.Default]; ok {
		parts = append(parts, "DEFAULT "+expr)
	}
	return strings.Join(parts, " "), nil
}

func (d *MySQL) GenerateAddTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	def, err := d.columnDefinition(column, column.Identity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", mysqlTable(schemaName, table), def), nil
}

// GenerateAlterTableColumn redefines the column, carrying its default along
func (d *MySQL) GenerateAlterTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	def, err := d.columnDefinition(column, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", mysqlTable(schemaName, table), def), nil
}

func (d *MySQL) GenerateAlterColumnDefault(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	action := "DROP DEFAULT"
	if expr, ok := mysqlDefaults[column.Default]; ok {
		action = "SET DEFAULT " + expr
	}
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", mysqlTable(schemaName, table), quoteMySQL(column.Name), action), nil
}

func (d *MySQL) GenerateDropTableColumn(s *Session, schemaName, table string, column *schema.Column) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", mysqlTable(schemaName, table), quoteMySQL(column.Name)), nil
}

func (d *MySQL) createIndex(schemaName, table string, index *schema.Index) string {
	var sb strings.Builder
	target := mysqlTable(schemaName, table)
	columns := quoteList(index.Columns, quoteMySQL)

	if index.Type == schema.IndexTypeConstraint || index.PrimaryKey {
		fmt.Fprintf(&sb, "ALTER TABLE %s ADD CONSTRAINT %s ", target, quoteMySQL(index.Name))
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
	fmt.Fprintf(&sb, "INDEX %s ON %s (%s);", quoteMySQL(index.Name), target, columns)
	return sb.String()
}

// dropIndex removes a secondary index or unique constraint by name. MySQL names
// every primary key PRIMARY, so it is dropped without one.
func (d *MySQL) dropIndex(schemaName, table string, index *schema.Index, name string) string {
	target := mysqlTable(schemaName, table)
	if index.PrimaryKey || strings.EqualFold(name, "PRIMARY") {
		return fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY;", target)
	}
	return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s;", target, quoteMySQL(name))
}

func (d *MySQL) GenerateCreateIndex(s *Session, schemaName, table string, index *schema.Index) (string, error) {
	return d.createIndex(schemaName, table, index), nil
}

func (d *MySQL) GenerateAlterIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error) {
	return joinStatements([]string{
		d.dropIndex(schemaName, table, index, existingName),
		d.createIndex(schemaName, table, index),
	}), nil
}

func (d *MySQL) GenerateDropIndex(s *Session, schemaName, table string, index *schema.Index, existingName string) (string, error) {
	return d.dropIndex(schemaName, table, index, existingName), nil
}

func (d *MySQL) GenerateCreateTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error) {
	var statements []string
	target := mysqlTable(table.Schema, table.Name)

	if len(table.Columns) > 0 {
		// Check if the table already exists
		n, err := s.count(ctx, mysqlTableCountQuery, table.Schema, table.Name)
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

func (d *MySQL) GenerateDeleteTableObjects(ctx context.Context, s *Session, table *schema.Table) (string, error) {
	var statements []string
	target := mysqlTable(table.Schema, table.Name)

	var dropColumns []string
	if len(table.Columns) > 0 {
		n, err := s.count(ctx, mysqlColumnCountQuery, table.Schema, table.Name)
		if err != nil {
			return "", fmt.Errorf("failed to count columns: %w", err)
		}

		if len(table.Columns) == n {
			return "DROP TABLE " + target + ";", nil
		}

		for _, c := range table.Columns {
			dropColumns = append(dropColumns, "DROP COLUMN "+quoteMySQL(c.Name))
		}
	}

	for i := range table.Indexes {
		idx := &table.Indexes[i]
		if idx.PrimaryKey {
			continue
		}
		statements = append(statements, d.dropIndex(table.Schema, table.Name, idx, idx.Name))
	}

	if len(dropColumns) > 0 {
		statements = append(statements, "ALTER TABLE "+target+" "+strings.Join(dropColumns, ", ")+";")
	}

	return joinStatements(statements), nil
}
