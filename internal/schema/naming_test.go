package schema

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeNameIsDeterministic(t *testing.T) {
	table := &Table{Schema: "dbo", Name: "Person"}
	idx := Index{Columns: []string{"LastName", "FirstName"}}

	first := idx.ComputeName(table, DefaultIndexNameFormat)
	second := (&Index{Columns: []string{"LastName", "FirstName"}}).ComputeName(table, DefaultIndexNameFormat)

	assert.Equal(t, first, second)
	assert.Regexp(t, regexp.MustCompile(`^IX_dbo_Person_[0-9a-f]{6}$`), first)
}

func TestComputeNameDependsOnColumnOrder(t *testing.T) {
	table := &Table{Schema: "dbo", Name: "Person"}
	a := (&Index{Columns: []string{"LastName", "FirstName"}}).ComputeName(table, DefaultIndexNameFormat)
	b := (&Index{Columns: []string{"FirstName", "LastName"}}).ComputeName(table, DefaultIndexNameFormat)

	assert.NotEqual(t, a, b)
}

func TestComputeNamePrimaryKeyPrefix(t *testing.T) {
	table := &Table{Schema: "public", Name: "users"}
	idx := Index{Columns: []string{"id"}, PrimaryKey: true}

	assert.Equal(t, "PK_public_users_"+ColumnsHash([]string{"id"}), idx.ComputeName(table, DefaultIndexNameFormat))
}

func TestComputeNameFormats(t *testing.T) {
	table := &Table{Schema: "sales", Name: "Orders"}
	idx := Index{Columns: []string{"CustomerId"}}
	hash := ColumnsHash(idx.Columns)

	tests := []struct {
		format string
		want   string
	}{
		{"Schema_Name", "IX_sales_Orders_" + hash},
		{"Name", "IX_Orders_" + hash},
		{"", "IX_Orders_" + hash},
		{"tbl_Name_Schema", "IX_tbl_Orders_sales_" + hash},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.ComputeName(table, tt.format))
		})
	}
}

func TestComputeNameSchemaContainingToken(t *testing.T) {
	table := &Table{Schema: "Names", Name: "t"}
	idx := Index{Columns: []string{"a"}}

	assert.Equal(t, "IX_Names_t_"+ColumnsHash(idx.Columns), idx.ComputeName(table, DefaultIndexNameFormat))
}

func TestColumnsHash(t *testing.T) {
	// md5("id") = b80bb7740288fda1f201890375a60c8f
	assert.Equal(t, "b80bb7", ColumnsHash([]string{"id"}))
	assert.Len(t, ColumnsHash(nil), 6)
}
