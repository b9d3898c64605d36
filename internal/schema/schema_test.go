package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personTable() *Table {
	return &Table{
		Schema: "dbo",
		Name:   "Person",
		Columns: []Column{
			{Name: "Id", Type: Integer, Identity: true, NotNull: true, Length: -1},
			{Name: "Email", Type: VarString, Length: 255},
			{Name: "Age", Type: Integer, Length: -1},
		},
		Indexes: []Index{
			{Name: "PK_Person", Columns: []string{"Id"}, PrimaryKey: true, Clustered: true, Unique: true, Type: IndexTypeConstraint},
			{Name: "IX_Person_Email", Columns: []string{"Email"}, Unique: true},
		},
	}
}

func TestTableDerivedFlags(t *testing.T) {
	table := personTable()

	assert.True(t, table.IsPrimaryKey("Id"))
	assert.True(t, table.IsClustered("Id"))
	assert.True(t, table.IsUnique("Id"))

	assert.False(t, table.IsPrimaryKey("Email"))
	assert.False(t, table.IsClustered("Email"))
	assert.True(t, table.IsUnique("Email"))

	assert.False(t, table.IsPrimaryKey("Age"))
	assert.False(t, table.IsUnique("Age"))
	assert.True(t, table.HasIdentity())
}

func TestTableDerivedFlagsFollowIndexChanges(t *testing.T) {
	table := personTable()
	require.True(t, table.IsUnique("Email"))

	table.Indexes[1].Unique = false
	assert.False(t, table.IsUnique("Email"))
}

func TestTableSetKeepsInsertionOrder(t *testing.T) {
	set := NewTableSet()
	set.Ensure("public", "b").Columns = append(set.Ensure("public", "b").Columns, NewColumn("x", Text))
	set.Ensure("public", "a")
	set.Ensure("public", "b")

	tables := set.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "b", tables[0].Name)
	assert.Equal(t, "a", tables[1].Name)
	assert.Len(t, tables[0].Columns, 1)

	got, ok := set.Get("public", "a")
	assert.True(t, ok)
	assert.Same(t, tables[1], got)

	_, ok = set.Get("other", "a")
	assert.False(t, ok)
}

func TestTableKeys(t *testing.T) {
	assert.Equal(t, "public.Person", TableKey("public", "Person"))
	assert.NotEqual(t, TableKey("public", "Person"), TableKey("public", "person"))

	assert.Equal(t, "public.person", FoldedTableKey("Public", "Person"))
	assert.Equal(t, FoldedTableKey("public", "Person"), FoldedTableKey("PUBLIC", "person"))
}

func TestIsPrecisionScaleType(t *testing.T) {
	for _, dt := range DataTypes() {
		c := Column{Type: dt}
		assert.Equal(t, dt == Decimal, c.IsPrecisionScaleType(), dt.String())
	}
}

func TestIndexObjectType(t *testing.T) {
	idx := Index{Type: IndexTypeIndex}
	assert.Equal(t, ObjectTypeIndex, idx.ObjectType())

	idx.Type = IndexTypeConstraint
	assert.Equal(t, ObjectTypeConstraint, idx.ObjectType())

	assert.Equal(t, IndexTypeIndex, IndexTypeFromObjectType(ObjectTypeIndex))
	assert.Equal(t, IndexTypeConstraint, IndexTypeFromObjectType(ObjectTypeConstraint))
}

func TestParseDataType(t *testing.T) {
	for _, dt := range DataTypes() {
		got, err := ParseDataType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}

	got, err := ParseDataType("varstring")
	require.NoError(t, err)
	assert.Equal(t, VarString, got)

	_, err = ParseDataType("money")
	assert.Error(t, err)
}

func TestParseDefault(t *testing.T) {
	got, err := ParseDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNone, got)

	got, err = ParseDefault("currentdatetime")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrentDateTime, got)

	_, err = ParseDefault("getdate()")
	assert.Error(t, err)
}

func TestDefaultLiterals(t *testing.T) {
	for v := 0; v <= 3; v++ {
		d, ok := DefaultFromLiteral(v)
		require.True(t, ok)
		lit, ok := d.Literal()
		require.True(t, ok)
		assert.Equal(t, v, lit)
	}

	_, ok := DefaultFromLiteral(4)
	assert.False(t, ok)
	_, ok = DefaultCurrentDateTime.Literal()
	assert.False(t, ok)
}

func TestColumnJSONUsesNames(t *testing.T) {
	c := Column{Name: "Created", Type: DateTime, Default: DefaultCurrentDateTime, Length: -1}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"DateTime"`)
	assert.Contains(t, string(b), `"default":"CurrentDateTime"`)

	var back Column
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)
}
