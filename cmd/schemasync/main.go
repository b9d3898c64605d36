package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/koba/schemasync/internal/changeset"
	"github.com/koba/schemasync/internal/config"
	"github.com/koba/schemasync/internal/database"
	"github.com/koba/schemasync/internal/reader"
	"github.com/koba/schemasync/internal/snapshot"
	"github.com/koba/schemasync/internal/status"
	"github.com/koba/schemasync/internal/writer"
)

var (
	envFile    string
	provider   string
	connection string
	driver     string
	logLevel   string
	logFormat  string

	filterSchema    string
	filterTable     string
	indexNameFormat string
	commandWhere    string
	outputFormat    string
	snapshotPath    string

	execute     bool
	trace       bool
	failOnError bool
	batchAdd    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "schemasync",
	Short: "Database schema discovery and synchronization",
	Long: `schemasync reads the tables, columns and indexes of a SQL Server, PostgreSQL
or MySQL database into flat rows, and applies add/update/delete change sets
to a database as dialect-specific DDL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Read the database schema as rows",
	Long:  `Read every column and index of the database and print one row per object.`,
	Args:  cobra.NoArgs,
	RunE:  runDiscover,
}

var applyCmd = &cobra.Command{
	Use:   "apply <changes.yaml>",
	Short: "Apply a change set",
	Long: `Render the DDL for a change set and, with --execute, run it.

The add, update and delete lists are applied in that order. Without --execute
the statements are only printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tALIASES\tDESCRIPTION")
		for _, p := range database.Providers() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, strings.Join(p.Aliases, ", "), p.Description)
		}
		return w.Flush()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "Environment file to load")
	pf.StringVar(&provider, "provider", "", "Database provider (overrides "+config.EnvProvider+")")
	pf.StringVar(&connection, "connection", "", "Connection string (overrides "+config.EnvConnectionString+")")
	pf.StringVar(&driver, "driver", "", "PostgreSQL driver: postgres or pgx (overrides "+config.EnvDriver+")")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	discoverCmd.Flags().StringVar(&filterSchema, "schema", "", "Only include this schema")
	discoverCmd.Flags().StringVar(&filterTable, "table", "", "Only include this table")
	discoverCmd.Flags().StringVar(&indexNameFormat, "index-name-format", "", "Index name template using the tokens Schema and Name")
	discoverCmd.Flags().StringVar(&commandWhere, "command-where", "", "Predicate applied to the column catalog query")
	discoverCmd.Flags().StringVar(&outputFormat, "format", "json", "Output format: json or yaml")
	discoverCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Also store the rows in this SQLite file")

	applyCmd.Flags().BoolVar(&execute, "execute", false, "Execute the statements instead of only rendering them")
	applyCmd.Flags().BoolVar(&trace, "trace", true, "Print each statement")
	applyCmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Stop at the first failed item")
	applyCmd.Flags().BoolVar(&batchAdd, "batch-add", false, "Create tables and add their objects per table")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(providersCmd)
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", format)
}

// loadConfig layers flags the user set over the environment
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Database.Provider = provider
	}
	if flags.Changed("connection") {
		cfg.Database.ConnectionString = connection
	}
	if flags.Changed("driver") {
		cfg.Database.Driver = driver
	}
	if flags.Changed("command-where") {
		cfg.Database.CommandWhere = commandWhere
	}
	if flags.Changed("schema") {
		cfg.FilterSchema = filterSchema
	}
	if flags.Changed("table") {
		cfg.FilterTable = filterTable
	}
	if flags.Changed("index-name-format") {
		cfg.IndexNameFormat = indexNameFormat
	}
	if flags.Changed("execute") {
		cfg.DoNotExecute = !execute
	}
	if flags.Changed("trace") {
		cfg.OutputSQLTrace = trace
	}
	if flags.Changed("fail-on-error") {
		cfg.FailOnError = failOnError
	}
	if flags.Changed("batch-add") {
		cfg.BatchAdd = batchAdd
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dialect, err := database.NewDialect(cfg.Database)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	r := reader.New(dialect, reader.Options{
		Schema:          cfg.FilterSchema,
		Table:           cfg.FilterTable,
		IndexNameFormat: cfg.IndexNameFormat,
	}, slog.Default())

	rows, err := r.Discover(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover schema: %w", err)
	}

	if snapshotPath != "" {
		meta := map[string]string{
			snapshot.MetaProvider:        dialect.Name(),
			snapshot.MetaIndexNameFormat: cfg.IndexNameFormat,
		}
		if err := snapshot.Save(ctx, snapshotPath, rows, meta); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		slog.Info("snapshot saved", "path", snapshotPath, "rows", len(rows))
	}

	return writeRows(cmd.OutOrStdout(), rows, outputFormat)
}

func writeRows(w io.Writer, rows []reader.Row, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format: %q", format)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	set, err := changeset.Load(args[0])
	if err != nil {
		return err
	}
	changeset.Display(cmd.ErrOrStderr(), set)

	dialect, err := database.NewDialect(cfg.Database)
	if err != nil {
		return err
	}

	console := status.NewConsole(cmd.OutOrStdout(), slog.Default(), cfg.FailOnError)

	// An interrupt stops after the current item; the running statement is not cancelled
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	release := console.StopOnDone(sigCtx)
	defer release()

	w := writer.New(dialect, writer.Options{
		OutputSQLTrace: cfg.OutputSQLTrace,
		DoNotExecute:   cfg.DoNotExecute,
		BatchAdd:       cfg.BatchAdd,
	}, slog.Default())

	if err := w.Execute(cmd.Context(), set, console); err != nil {
		return err
	}

	if cfg.DoNotExecute {
		slog.Info("dry run, nothing executed; pass --execute to apply")
	}
	return nil
}
