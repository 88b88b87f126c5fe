package sheets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"frontdesk/internal/adapters/storage"
)

// SQLiteWorkbook hosts sheets in two SQLite tables (see storage.InitDB).
// Row indexes are dense and 0-based, matching the xlsx backend.
type SQLiteWorkbook struct {
	db storage.SQLDB
}

// Compile-time check that *SQLiteWorkbook satisfies Workbook.
var _ Workbook = (*SQLiteWorkbook)(nil)

// NewSQLiteWorkbook creates a workbook over an initialized database.
// PRE: storage.InitDB has run against db
func NewSQLiteWorkbook(db storage.SQLDB) *SQLiteWorkbook {
	return &SQLiteWorkbook{db: db}
}

// EnsureSheet creates the sheet with header if absent, or verifies its header.
// PRE: name is a valid sheet name, header is non-empty
// POST: sheet exists and its header equals header
func (w *SQLiteWorkbook) EnsureSheet(ctx context.Context, name string, header []string) error {
	if err := ValidateSheetName(name); err != nil {
		return err
	}
	stored, err := w.header(ctx, name)
	if err == nil {
		return checkHeader(name, stored, header)
	}
	if !errors.Is(err, ErrSheetNotFound) {
		return err
	}

	encoded, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, err = w.db.ExecContext(ctx,
		"INSERT INTO sheet (name, header, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING",
		name, string(encoded), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	slog.Info("sheet_created", "backend", BackendSQLite, "sheet", name)
	return nil
}

// HasSheet reports whether a sheet exists.
func (w *SQLiteWorkbook) HasSheet(ctx context.Context, name string) (bool, error) {
	_, err := w.header(ctx, name)
	if errors.Is(err, ErrSheetNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Rows returns the data rows of a sheet in index order, padded to the header width.
// PRE: none
// POST: Returns ErrSheetNotFound if the sheet does not exist
func (w *SQLiteWorkbook) Rows(ctx context.Context, name string) ([][]string, error) {
	header, err := w.header(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := w.db.QueryContext(ctx, "SELECT cells FROM sheet_row WHERE sheet = ? ORDER BY idx", name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	defer rows.Close()

	data := [][]string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("decode row of sheet %q: %w", name, err)
		}
		data = append(data, Pad(cells, len(header)))
	}
	return data, rows.Err()
}

// AppendRow writes row after the last data row.
// PRE: sheet exists
// POST: row stored at index = previous row count
func (w *SQLiteWorkbook) AppendRow(ctx context.Context, name string, row []string) error {
	if _, err := w.header(ctx, name); err != nil {
		return err
	}
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(idx) + 1, 0) FROM sheet_row WHERE sheet = ?", name).Scan(&next); err != nil {
		return fmt.Errorf("next row of sheet %q: %w", name, err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO sheet_row (sheet, idx, cells, updated_at) VALUES (?, ?, ?, ?)",
		name, next, string(encoded), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append to sheet %q: %w", name, err)
	}
	return tx.Commit()
}

// UpdateRow overwrites the data row at index.
// PRE: 0 <= index < number of data rows
// POST: row replaced in place
func (w *SQLiteWorkbook) UpdateRow(ctx context.Context, name string, index int, row []string) error {
	if _, err := w.header(ctx, name); err != nil {
		return err
	}
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}
	res, err := w.db.ExecContext(ctx,
		"UPDATE sheet_row SET cells = ?, updated_at = ? WHERE sheet = ? AND idx = ?",
		string(encoded), time.Now().UTC().Format(time.RFC3339), name, index)
	if err != nil {
		return fmt.Errorf("update sheet %q row %d: %w", name, index, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q row %d", ErrRowOutOfRange, name, index)
	}
	return nil
}

func (w *SQLiteWorkbook) header(ctx context.Context, name string) ([]string, error) {
	var raw string
	err := w.db.QueryRowContext(ctx, "SELECT header FROM sheet WHERE name = ?", name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	var header []string
	if err := json.Unmarshal([]byte(raw), &header); err != nil {
		return nil, fmt.Errorf("decode header of sheet %q: %w", name, err)
	}
	return header, nil
}
