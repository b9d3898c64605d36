package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koba/schemasync/internal/reader"
	"github.com/koba/schemasync/internal/schema"
)

func sampleRows() []reader.Row {
	return []reader.Row{
		{ID: "Id", Schema: "dbo", ObjectType: schema.ObjectTypeColumn, TableName: "Person", Name: "Id", DataType: "Integer", Length: -1, NotNull: true, IsIdentity: true, IsPrimaryKey: true},
		{ID: "Email", Schema: "dbo", ObjectType: schema.ObjectTypeColumn, TableName: "Person", Name: "Email", DataType: "VarString", Length: 200, ColumnDefault: "None"},
		{ID: "PK_Person", Schema: "dbo", ObjectType: schema.ObjectTypeConstraint, TableName: "Person", Name: "PK_dbo_Person_b80bb7", IsPrimaryKey: true, Columns: "Id"},
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "snap.db")

	err := Save(ctx, path, sampleRows(), map[string]string{MetaProvider: "sqlserver", MetaIndexNameFormat: "Schema_Name"})
	require.NoError(t, err)

	snap, err := Load(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, sampleRows(), snap.Rows)
	assert.Equal(t, "sqlserver", snap.Metadata[MetaProvider])
	assert.Equal(t, "Schema_Name", snap.Metadata[MetaIndexNameFormat])
	assert.NotEmpty(t, snap.Metadata[MetaCreatedAt])
}

func TestSaveReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snap.db")

	require.NoError(t, Save(ctx, path, sampleRows(), nil))
	require.NoError(t, Save(ctx, path, sampleRows()[:1], nil))

	snap, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Len(t, snap.Rows, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0644))

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
}
