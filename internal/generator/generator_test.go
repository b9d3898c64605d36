package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/koba/schemasync/internal/changeset"
	"github.com/koba/schemasync/internal/database"
	"github.com/koba/schemasync/internal/database/mocks"
	"github.com/koba/schemasync/internal/schema"
)

func columnItem(table, name string, extra map[string]any) *changeset.Item {
	fields := map[string]any{
		"Schema":     "dbo",
		"ObjectType": schema.ObjectTypeColumn,
		"TableName":  table,
		"Name":       name,
		"DataType":   "Integer",
	}
	for k, v := range extra {
		fields[k] = v
	}
	return &changeset.Item{Sync: true, Fields: fields}
}

func indexItem(table, name, id string, columns ...string) *changeset.Item {
	return &changeset.Item{
		ID:   id,
		Sync: true,
		Fields: map[string]any{
			"Schema":     "dbo",
			"ObjectType": schema.ObjectTypeIndex,
			"TableName":  table,
			"Name":       name,
			"Columns":    columns,
		},
	}
}

func TestAddColumn(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	s := database.NewSession(nil)

	item := columnItem("Person", "Age", map[string]any{"NotNull": true, "ColumnDefault": "Zero"})
	want := schema.Column{Name: "Age", Type: schema.Integer, NotNull: true, Length: -1, Default: schema.DefaultZero}

	d.EXPECT().GenerateAddTableColumn(s, "dbo", "Person", &want).Return("ADD", nil)

	got, err := New(d).Add(s, item)
	require.NoError(t, err)
	assert.Equal(t, "ADD", got)
}

func TestAddIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	s := database.NewSession(nil)

	item := indexItem("Person", "IX_dbo_Person_abc123", "", "LastName")
	d.EXPECT().GenerateCreateIndex(s, "dbo", "Person", gomock.Any()).
		DoAndReturn(func(_ *database.Session, _, _ string, idx *schema.Index) (string, error) {
			assert.Equal(t, "IX_dbo_Person_abc123", idx.Name)
			assert.Equal(t, []string{"LastName"}, idx.Columns)
			return "CREATE INDEX", nil
		})

	got, err := New(d).Add(s, item)
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX", got)
}

func TestAddUnknownObjectType(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)

	item := &changeset.Item{Sync: true, Fields: map[string]any{"ObjectType": "VIEW"}}
	_, err := New(d).Add(database.NewSession(nil), item)
	assert.ErrorIs(t, err, changeset.ErrUnknownObjectType)
}

func TestUpdateDefaultOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	s := database.NewSession(nil)

	item := columnItem("Person", "Age", map[string]any{"ColumnDefault": "One"})
	item.Changed = []string{"ColumnDefault"}

	d.EXPECT().GenerateAlterColumnDefault(s, "dbo", "Person", gomock.Any()).Return("DEFAULT", nil)
	d.EXPECT().GenerateAlterTableColumn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	got, err := New(d).Update(s, item)
	require.NoError(t, err)
	assert.Equal(t, []string{"DEFAULT"}, got)
}

func TestUpdateColumnTriggers(t *testing.T) {
	for _, field := range []string{"Length", "NotNull", "DataType", "Precision", "Scale"} {
		t.Run(field, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			d := mocks.NewMockDialect(ctrl)
			s := database.NewSession(nil)

			item := columnItem("Person", "Age", nil)
			item.Changed = []string{field}

			d.EXPECT().GenerateAlterTableColumn(s, "dbo", "Person", gomock.Any()).Return("ALTER", nil)

			got, err := New(d).Update(s, item)
			require.NoError(t, err)
			assert.Equal(t, []string{"ALTER"}, got)
		})
	}
}

func TestUpdateColumnAndDefaultInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	s := database.NewSession(nil)

	item := columnItem("Person", "Age", nil)
	item.Changed = []string{"NotNull", "ColumnDefault"}

	gomock.InOrder(
		d.EXPECT().GenerateAlterTableColumn(s, "dbo", "Person", gomock.Any()).Return("ALTER", nil),
		d.EXPECT().GenerateAlterColumnDefault(s, "dbo", "Person", gomock.Any()).Return("DEFAULT", nil),
	)

	got, err := New(d).Update(s, item)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER", "DEFAULT"}, got)
}

func TestUpdateIndexUsesExistingName(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	s := database.NewSession(nil)

	item := indexItem("Person", "IX_dbo_Person_abc123", "ix_person_last", "LastName")
	item.Changed = []string{"Columns"}

	d.EXPECT().GenerateAlterIndex(s, "dbo", "Person", gomock.Any(), "ix_person_last").Return("DROP+CREATE", nil)

	got, err := New(d).Update(s, item)
	require.NoError(t, err)
	assert.Equal(t, []string{"DROP+CREATE"}, got)
}

func TestUpdatePropagatesDialectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)

	item := columnItem("Person", "Age", nil)
	item.Changed = []string{"Length"}

	d.EXPECT().GenerateAlterTableColumn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", database.ErrUnsupportedType)

	_, err := New(d).Update(database.NewSession(nil), item)
	assert.ErrorIs(t, err, database.ErrUnsupportedType)
}

func TestGroupDeletes(t *testing.T) {
	skipped := columnItem("Person", "Skipped", nil)
	skipped.Sync = false
	bad := &changeset.Item{Sync: true, Fields: map[string]any{"Schema": "dbo", "TableName": "Person", "ObjectType": "TRIGGER"}}

	items := []*changeset.Item{
		columnItem("Person", "Nickname", nil),
		columnItem("Order", "Note", nil),
		indexItem("Person", "IX_dbo_Person_abc123", "ix_person_nickname", "Nickname"),
		skipped,
		bad,
		columnItem("Person", "Age", nil),
	}

	batches, failures := GroupDeletes(items, schema.TableKey)
	require.Len(t, batches, 2)
	require.Len(t, failures, 1)
	assert.Same(t, bad, failures[0].Item)
	assert.True(t, errors.Is(failures[0].Err, changeset.ErrUnknownObjectType))

	person := batches[0]
	assert.Equal(t, "Person", person.Table.Name)
	require.Len(t, person.Table.Columns, 2)
	assert.Equal(t, "Nickname", person.Table.Columns[0].Name)
	assert.Equal(t, "Age", person.Table.Columns[1].Name)
	require.Len(t, person.Table.Indexes, 1)
	assert.Equal(t, "ix_person_nickname", person.Table.Indexes[0].Name)
	assert.Len(t, person.Items, 3)

	assert.Equal(t, "Order", batches[1].Table.Name)
}

func TestGroupDeletesFoldsTableNames(t *testing.T) {
	upper := columnItem("Person", "Nickname", nil)
	lower := columnItem("person", "Age", nil)
	upper.Fields["Schema"] = "public"
	lower.Fields["Schema"] = "public"
	items := []*changeset.Item{upper, lower}

	batches, failures := GroupDeletes(items, schema.FoldedTableKey)
	require.Empty(t, failures)
	require.Len(t, batches, 1)
	assert.Equal(t, "Person", batches[0].Table.Name)
	require.Len(t, batches[0].Table.Columns, 2)
	assert.Equal(t, "Nickname", batches[0].Table.Columns[0].Name)
	assert.Equal(t, "Age", batches[0].Table.Columns[1].Name)

	batches, _ = GroupDeletes(items, schema.TableKey)
	assert.Len(t, batches, 2)
}

func TestGroupCreatesKeepsSyncName(t *testing.T) {
	batches, failures := GroupCreates([]*changeset.Item{
		indexItem("Person", "IX_dbo_Person_abc123", "ix_person_nickname", "Nickname"),
	}, schema.TableKey)
	require.Empty(t, failures)
	require.Len(t, batches, 1)
	assert.Equal(t, "IX_dbo_Person_abc123", batches[0].Table.Indexes[0].Name)
}

func TestGroupSkipsBatchForOnlyFailedItems(t *testing.T) {
	batches, failures := GroupDeletes([]*changeset.Item{
		{Sync: true, Fields: map[string]any{"Schema": "dbo", "TableName": "T", "ObjectType": "TABLE_COLUMN", "Name": "c"}},
	}, schema.TableKey)
	assert.Empty(t, batches)
	assert.Len(t, failures, 1)
}

func TestTableObjects(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	s := database.NewSession(nil)
	ctx := context.Background()

	b := &Batch{Table: &schema.Table{Schema: "dbo", Name: "Person"}}
	d.EXPECT().GenerateCreateTableObjects(ctx, s, b.Table).Return("CREATE", nil)
	d.EXPECT().GenerateDeleteTableObjects(ctx, s, b.Table).Return("DROP", nil)

	g := New(d)
	got, err := g.CreateTableObjects(ctx, s, b)
	require.NoError(t, err)
	assert.Equal(t, "CREATE", got)

	got, err = g.DeleteTableObjects(ctx, s, b)
	require.NoError(t, err)
	assert.Equal(t, "DROP", got)
}
