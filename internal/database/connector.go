package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/koba/schemasync/internal/schema"
)

// Canonical provider names
const (
	ProviderSQLServer = "sqlserver"
	ProviderPostgres  = "postgres"
	ProviderMySQL     = "mysql"
)

// PostgreSQL driver names
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Config holds the connection settings shared by every dialect
type Config struct {
	Provider         string
	ConnectionString string
	Driver           string // PostgreSQL only: "postgres" (lib/pq, default) or "pgx"
	CommandWhere     string // raw predicate applied to the column catalog query
}

// ProviderInfo describes a supported provider
type ProviderInfo struct {
	Name        string
	Aliases     []string
	Description string
}

var providers = []ProviderInfo{
	{
		Name:        ProviderSQLServer,
		Aliases:     []string{"sqlclient", "mssql"},
		Description: "Microsoft SQL Server (T-SQL)",
	},
	{
		Name:        ProviderPostgres,
		Aliases:     []string{"postgresql", "npgsql", "pgsql"},
		Description: "PostgreSQL",
	},
	{
		Name:        ProviderMySQL,
		Aliases:     []string{"mariadb"},
		Description: "MySQL / MariaDB",
	},
}

// Providers lists the supported providers
func Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(providers))
	copy(out, providers)
	return out
}

// ResolveProvider maps a provider name or alias, ignoring case, onto its canonical name
func ResolveProvider(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range providers {
		if key == p.Name {
			return p.Name, nil
		}
		for _, alias := range p.Aliases {
			if key == alias {
				return p.Name, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedProvider, name, strings.Join(providerNames(), ", "))
}

func providerNames() []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// TableKeyFunc returns how a provider compares table identity. SQL Server keeps
// names as given; PostgreSQL and MySQL compare them in lower case.
func TableKeyFunc(provider string) schema.KeyFunc {
	name, err := ResolveProvider(provider)
	if err != nil || name == ProviderSQLServer {
		return schema.TableKey
	}
	return schema.FoldedTableKey
}

// Validate checks the provider and that its driver can parse the connection string
func (c Config) Validate() error {
	provider, err := ResolveProvider(c.Provider)
	if err != nil {
		return err
	}

	switch provider {
	case ProviderSQLServer:
		if _, err := msdsn.Parse(c.ConnectionString); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
	case ProviderPostgres:
		switch strings.ToLower(c.Driver) {
		case "", DriverPQ, DriverPGX:
		default:
			return fmt.Errorf("unsupported postgres driver: %q", c.Driver)
		}
		if _, err := pgx.ParseConfig(c.ConnectionString); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
	case ProviderMySQL:
		if _, err := mysql.ParseDSN(c.ConnectionString); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
	}
	return nil
}

// NewDialect creates the dialect selected by config.Provider
func NewDialect(config Config) (Dialect, error) {
	provider, err := ResolveProvider(config.Provider)
	if err != nil {
		return nil, err
	}

	switch provider {
	case ProviderSQLServer:
		return NewSQLServer(config), nil
	case ProviderPostgres:
		return NewPostgres(config), nil
	default:
		return NewMySQL(config), nil
	}
}

// connector opens connections for a dialect. open is replaced in tests.
type connector struct {
	name   string
	config Config
	open   func() (*sql.DB, error)
}

// Connect opens a single-connection pool and pings it
func (c *connector) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := c.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", c.name, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", c.name, err)
	}

	return db, nil
}

// withDB runs fn on a connection that is closed afterwards
func (c *connector) withDB(ctx context.Context, fn func(*sql.DB) error) error {
	db, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}
