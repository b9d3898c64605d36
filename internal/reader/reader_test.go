package reader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/koba/schemasync/internal/changeset"
	"github.com/koba/schemasync/internal/database/mocks"
	"github.com/koba/schemasync/internal/schema"
)

func mockCatalog(t *testing.T) *mocks.MockDialect {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	d.EXPECT().Name().Return("sqlserver").AnyTimes()

	gomock.InOrder(
		d.EXPECT().GetColumns(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tables *schema.TableSet) error {
			person := tables.Ensure("dbo", "Person")
			person.Columns = append(person.Columns,
				schema.Column{Name: "Id", Type: schema.Integer, Identity: true, NotNull: true, Length: -1},
				schema.Column{Name: "Price", Type: schema.Decimal, Precision: 10, Scale: 2, Length: -1},
				schema.Column{Name: "Code", Type: schema.VarString, Length: 20, Precision: 5, Default: schema.DefaultOne},
			)
			audit := tables.Ensure("audit", "Log")
			audit.Columns = append(audit.Columns, schema.Column{Name: "Id", Type: schema.BigInteger, Length: -1})
			return nil
		}),
		d.EXPECT().GetIndexes(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tables *schema.TableSet) error {
			person, _ := tables.Get("dbo", "Person")
			person.Indexes = append(person.Indexes,
				schema.Index{Name: "PK_Person", Columns: []string{"Id"}, PrimaryKey: true, Clustered: true, Unique: true, Type: schema.IndexTypeConstraint},
				schema.Index{Name: "IX_Person_Code", Columns: []string{"Code", "Price"}, Include: []string{"Id"}},
			)
			return nil
		}),
	)
	return d
}

func TestDiscover(t *testing.T) {
	d := mockCatalog(t)

	rows, err := New(d, Options{IndexNameFormat: schema.DefaultIndexNameFormat}, nil).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	id := rows[0]
	assert.Equal(t, "Id", id.ID)
	assert.Equal(t, schema.ObjectTypeColumn, id.ObjectType)
	assert.Equal(t, "Integer", id.DataType)
	assert.True(t, id.IsIdentity)
	assert.True(t, id.IsPrimaryKey)
	assert.True(t, id.IsClustered)
	assert.True(t, id.IsUnique)

	price := rows[1]
	assert.Equal(t, 10, price.Precision)
	assert.Equal(t, 2, price.Scale)
	assert.False(t, price.IsPrimaryKey)

	code := rows[2]
	assert.Zero(t, code.Precision)
	assert.Equal(t, 20, code.Length)
	assert.Equal(t, "One", code.ColumnDefault)

	pk := rows[3]
	assert.Equal(t, "PK_Person", pk.ID)
	assert.Equal(t, schema.ObjectTypeConstraint, pk.ObjectType)
	assert.Equal(t, "PK_dbo_Person_"+schema.ColumnsHash([]string{"Id"}), pk.Name)
	assert.Equal(t, "Id", pk.Columns)

	ix := rows[4]
	assert.Equal(t, "IX_Person_Code", ix.ID)
	assert.Equal(t, schema.ObjectTypeIndex, ix.ObjectType)
	assert.Equal(t, "IX_dbo_Person_"+schema.ColumnsHash([]string{"Code", "Price"}), ix.Name)
	assert.Equal(t, "Code,Price", ix.Columns)
	assert.Equal(t, "Id", ix.Include)

	assert.Equal(t, "audit", rows[5].Schema)
}

func TestDiscoverIsDeterministic(t *testing.T) {
	first, err := New(mockCatalog(t), Options{IndexNameFormat: "Name"}, nil).Discover(context.Background())
	require.NoError(t, err)
	second, err := New(mockCatalog(t), Options{IndexNameFormat: "Name"}, nil).Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDiscoverFilters(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		tables []string
	}{
		{"none", Options{}, []string{"dbo.Person", "audit.Log"}},
		{"schema", Options{Schema: "AUDIT"}, []string{"audit.Log"}},
		{"table", Options{Table: "person"}, []string{"dbo.Person"}},
		{"both match", Options{Schema: "dbo", Table: "Person"}, []string{"dbo.Person"}},
		{"both must match", Options{Schema: "audit", Table: "Person"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := New(mockCatalog(t), tt.opts, nil).Discover(context.Background())
			require.NoError(t, err)

			var tables []string
			seen := map[string]bool{}
			for _, r := range rows {
				key := schema.TableKey(r.Schema, r.TableName)
				if !seen[key] {
					seen[key] = true
					tables = append(tables, key)
				}
			}
			assert.Equal(t, tt.tables, tables)
		})
	}
}

func TestDiscoverErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDialect(ctrl)
	boom := errors.New("connection refused")

	d.EXPECT().GetColumns(gomock.Any(), gomock.Any()).Return(boom)

	_, err := New(d, Options{}, nil).Discover(context.Background())
	assert.ErrorIs(t, err, boom)

	d.EXPECT().GetColumns(gomock.Any(), gomock.Any()).Return(nil)
	d.EXPECT().Name().Return("mysql").AnyTimes()
	d.EXPECT().GetIndexes(gomock.Any(), gomock.Any()).Return(boom)

	_, err = New(d, Options{}, nil).Discover(context.Background())
	assert.ErrorIs(t, err, boom)
}

// Rows feed back into compare items without loss
func TestRowFieldsHydrate(t *testing.T) {
	rows, err := New(mockCatalog(t), Options{IndexNameFormat: schema.DefaultIndexNameFormat}, nil).Discover(context.Background())
	require.NoError(t, err)

	item := &changeset.Item{Fields: rows[1].Fields()}
	c, err := item.Column()
	require.NoError(t, err)
	assert.Equal(t, schema.Column{Name: "Price", Type: schema.Decimal, Precision: 10, Scale: 2, Length: -1}, c)

	item = &changeset.Item{Fields: rows[4].Fields()}
	idx, err := item.Index()
	require.NoError(t, err)
	assert.Equal(t, []string{"Code", "Price"}, idx.Columns)
	assert.Equal(t, []string{"Id"}, idx.Include)
	assert.Equal(t, rows[4].Name, idx.Name)

	assert.NotContains(t, rows[0].Fields(), "Columns")
	assert.NotContains(t, rows[3].Fields(), "DataType")
}
