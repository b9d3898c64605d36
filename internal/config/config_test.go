package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koba/schemasync/internal/database"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.True(t, cfg.OutputSQLTrace)
	assert.True(t, cfg.DoNotExecute)
	assert.Equal(t, "Schema_Name", cfg.IndexNameFormat)
	assert.False(t, cfg.FailOnError)
	assert.False(t, cfg.BatchAdd)
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		EnvProvider:         "Npgsql",
		EnvConnectionString: " postgres://localhost/app ",
		EnvDriver:           "pgx",
		EnvCommandWhere:     "TABLE_SCHEMA = 'public'",
		EnvOutputSQLTrace:   "false",
		EnvDoNotExecute:     "0",
		EnvIndexNameFormat:  "Name",
		EnvFilterSchema:     "public",
		EnvFilterTable:      "person",
		EnvFailOnError:      "TRUE",
		EnvBatchAdd:         "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, database.Config{
		Provider:         "Npgsql",
		ConnectionString: "postgres://localhost/app",
		Driver:           "pgx",
		CommandWhere:     "TABLE_SCHEMA = 'public'",
	}, cfg.Database)
	assert.False(t, cfg.OutputSQLTrace)
	assert.False(t, cfg.DoNotExecute)
	assert.Equal(t, "Name", cfg.IndexNameFormat)
	assert.Equal(t, "public", cfg.FilterSchema)
	assert.Equal(t, "person", cfg.FilterTable)
	assert.True(t, cfg.FailOnError)
	assert.True(t, cfg.BatchAdd)
}

func TestFromEnvRejectsBadFlags(t *testing.T) {
	_, err := FromEnv(lookupFrom(map[string]string{EnvDoNotExecute: "maybe", EnvBatchAdd: "sometimes"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDoNotExecute)
	assert.Contains(t, err.Error(), EnvBatchAdd)
}

func TestFromEnvEmptyFlagKeepsDefault(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{EnvDoNotExecute: ""}))
	require.NoError(t, err)
	assert.True(t, cfg.DoNotExecute)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Provider = "mysql"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingConnectionString)

	cfg.Database.ConnectionString = "app:secret@tcp(localhost:3306)/app"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Provider = "sqlite"
	assert.ErrorIs(t, cfg.Validate(), database.ErrUnsupportedProvider)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PROVIDER=mariadb\nDB_FILTER_TABLE=person\n"), 0644))

	t.Setenv(EnvProvider, "")
	os.Unsetenv(EnvProvider)
	t.Setenv(EnvFilterTable, "orders")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mariadb", cfg.Database.Provider)
	assert.Equal(t, "orders", cfg.FilterTable)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
