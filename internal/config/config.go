package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/koba/schemasync/internal/database"
	"github.com/koba/schemasync/internal/schema"
)

// ErrMissingConnectionString is returned when no connection string is configured
var ErrMissingConnectionString = errors.New("connection string is required")

// Environment keys
const (
	EnvProvider         = "DB_PROVIDER"
	EnvConnectionString = "DB_CONNECTION_STRING"
	EnvDriver           = "DB_DRIVER"
	EnvCommandWhere     = "DB_COMMAND_WHERE"
	EnvOutputSQLTrace   = "DB_OUTPUT_SQL_TRACE"
	EnvDoNotExecute     = "DB_DO_NOT_EXECUTE"
	EnvIndexNameFormat  = "DB_INDEX_NAME_FORMAT"
	EnvFilterSchema     = "DB_FILTER_SCHEMA"
	EnvFilterTable      = "DB_FILTER_TABLE"
	EnvFailOnError      = "DB_FAIL_ON_ERROR"
	EnvBatchAdd         = "DB_BATCH_ADD"
)

// Config holds every setting of a discovery or synchronization run
type Config struct {
	Database        database.Config
	OutputSQLTrace  bool
	DoNotExecute    bool
	IndexNameFormat string
	FilterSchema    string
	FilterTable     string
	FailOnError     bool
	BatchAdd        bool
}

// Default returns the safe defaults: trace statements, execute nothing
func Default() Config {
	return Config{
		OutputSQLTrace:  true,
		DoNotExecute:    true,
		IndexNameFormat: schema.DefaultIndexNameFormat,
	}
}

// Load reads envFile, when it exists, into the process environment and then
// builds the configuration from the environment. Variables already set win
// over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from lookup, starting from Default
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	flag := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		b, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*dst = b
	}

	str(EnvProvider, &cfg.Database.Provider)
	str(EnvConnectionString, &cfg.Database.ConnectionString)
	str(EnvDriver, &cfg.Database.Driver)
	str(EnvCommandWhere, &cfg.Database.CommandWhere)
	str(EnvIndexNameFormat, &cfg.IndexNameFormat)
	str(EnvFilterSchema, &cfg.FilterSchema)
	str(EnvFilterTable, &cfg.FilterTable)
	flag(EnvOutputSQLTrace, &cfg.OutputSQLTrace)
	flag(EnvDoNotExecute, &cfg.DoNotExecute)
	flag(EnvFailOnError, &cfg.FailOnError)
	flag(EnvBatchAdd, &cfg.BatchAdd)

	return cfg, errors.Join(errs...)
}

// Validate checks the connection settings
func (c Config) Validate() error {
	if c.Database.ConnectionString == "" {
		return fmt.Errorf("%w (set %s or --connection)", ErrMissingConnectionString, EnvConnectionString)
	}
	return c.Database.Validate()
}
