package snapshot

import (
	"context"
	"database/sql"
)

const (
	// SQLite schema for storing snapshots
	createMetadataTable = `
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	createRowsTable = `
		CREATE TABLE IF NOT EXISTS discovered_rows (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			table_schema TEXT NOT NULL,
			table_name TEXT NOT NULL,
			object_type TEXT NOT NULL,
			name TEXT NOT NULL,
			row_json TEXT NOT NULL
		);
	`

	createRowsIndex = `
		CREATE INDEX IF NOT EXISTS idx_discovered_rows_table
		ON discovered_rows(table_schema, table_name);
	`
)

// initializeSchema creates the necessary tables in the SQLite snapshot database
func initializeSchema(ctx context.Context, db *sql.DB) error {
	schemas := []string{
		createMetadataTable,
		createRowsTable,
		createRowsIndex,
	}

	for _, schema := range schemas {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}

	return nil
}
