package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/koba/schemasync/internal/reader"
)

// Metadata keys
const (
	MetaProvider        = "provider"
	MetaCreatedAt       = "created_at"
	MetaIndexNameFormat = "index_name_format"
)

// Snapshot is a stored discovery pass
type Snapshot struct {
	Metadata map[string]string
	Rows     []reader.Row
}

// Save writes rows and metadata to a new SQLite file at outputPath, replacing any existing file
func Save(ctx context.Context, outputPath string, rows []reader.Row, metadata map[string]string) error {
	// Ensure output directory exists
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Remove existing snapshot file if it exists
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("failed to remove existing snapshot: %w", err)
		}
	}

	snapshotDB, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot database: %w", err)
	}
	defer snapshotDB.Close()

	if err := initializeSchema(ctx, snapshotDB); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	meta := map[string]string{MetaCreatedAt: time.Now().UTC().Format(time.RFC3339)}
	for key, value := range metadata {
		meta[key] = value
	}

	tx, err := snapshotDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO metadata (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO discovered_rows (table_schema, table_name, object_type, name, row_json) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, row.Schema, row.TableName, row.ObjectType, row.Name, string(rowJSON)); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load reads a snapshot back, rows in discovery order
func Load(ctx context.Context, snapshotPath string) (*Snapshot, error) {
	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot file does not exist: %s", snapshotPath)
	}

	db, err := sql.Open("sqlite", snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	snap := &Snapshot{Metadata: make(map[string]string)}

	rows, err := db.QueryContext(ctx, "SELECT key, value FROM metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		snap.Metadata[key] = value
	}
	rows.Close()

	dataRows, err := db.QueryContext(ctx, "SELECT row_json FROM discovered_rows ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer dataRows.Close()

	for dataRows.Next() {
		var rowJSON string
		if err := dataRows.Scan(&rowJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var row reader.Row
		if err := json.Unmarshal([]byte(rowJSON), &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row: %w", err)
		}
		snap.Rows = append(snap.Rows, row)
	}

	return snap, dataRows.Err()
}
