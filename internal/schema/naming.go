package schema

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// DefaultIndexNameFormat is substituted with the table schema and name
const DefaultIndexNameFormat = "Schema_Name"

// ComputeName derives the index name used for synchronization identity.
//
// The result is {PK|IX}_<format>_<hash6> where the literal tokens "Schema" and
// "Name" in format are replaced with the table's schema and name, and hash6 is
// the first six hex digits of the MD5 of the ordered key column list. An empty
// format uses the table name alone.
func (i *Index) ComputeName(t *Table, format string) string {
	prefix := "IX"
	if i.PrimaryKey {
		prefix = "PK"
	}
	return prefix + "_" + expandNameFormat(t, format) + "_" + ColumnsHash(i.Columns)
}

// ColumnsHash returns the six character hash of an ordered column list
func ColumnsHash(columns []string) string {
	sum := md5.Sum([]byte(strings.Join(columns, ",")))
	return hex.EncodeToString(sum[:])[:6]
}

func expandNameFormat(t *Table, format string) string {
	if format == "" {
		return t.Name
	}
	// single pass so a schema containing "Name" is not substituted twice
	return strings.NewReplacer("Schema", t.Schema, "Name", t.Name).Replace(format)
}
