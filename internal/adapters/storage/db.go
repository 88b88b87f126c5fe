package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by the SQLite-hosted workbook.
// *sql.DB satisfies it; tests may pass a wrapper.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// schemaVersion is bumped whenever the schema below changes.
const schemaVersion = 1

// LatestSchemaVersion returns the schema version InitDB produces.
func LatestSchemaVersion() int {
	return schemaVersion
}

// DSN returns the connection string for a file database with WAL mode,
// foreign keys and a busy timeout.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: sheet tables exist and user_version is set
func InitDB(db *sql.DB) error {
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Each sheet keeps its header as a JSON array; rows keep cells the same way.
	schema := `
	CREATE TABLE IF NOT EXISTS sheet (
		name TEXT PRIMARY KEY COLLATE NOCASE,
		header TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheet_row (
		sheet TEXT NOT NULL COLLATE NOCASE,
		idx INTEGER NOT NULL,
		cells TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (sheet, idx),
		FOREIGN KEY (sheet) REFERENCES sheet(name)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}
