package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize puts in a new file.
const defaultSheet = "Sheet1"

// XLSXWorkbook keeps the workbook in a single .xlsx file on disk.
// Every write is saved immediately so the file is always the source of truth.
type XLSXWorkbook struct {
	mu   sync.Mutex // guards file; excelize.File is not safe for concurrent use
	path string
	file *excelize.File
}

// Compile-time check that *XLSXWorkbook satisfies Workbook.
var _ Workbook = (*XLSXWorkbook)(nil)

// OpenXLSX opens the workbook at path, creating an empty one if it does not exist.
// PRE: path is non-empty
// POST: Returns a workbook backed by the file at path
func OpenXLSX(path string) (*XLSXWorkbook, error) {
	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create workbook dir: %w", err)
			}
		}
		f = excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook %s: %w", path, err)
		}
		slog.Info("workbook_created", "path", path)
	default:
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &XLSXWorkbook{path: path, file: f}, nil
}

// Path returns the file backing the workbook.
func (w *XLSXWorkbook) Path() string {
	return w.path
}

// Close releases the underlying file handle.
func (w *XLSXWorkbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// EnsureSheet creates the sheet with header if absent, or verifies its header.
// PRE: name is a valid sheet name, header is non-empty
// POST: sheet exists and its first row equals header
func (w *XLSXWorkbook) EnsureSheet(ctx context.Context, name string, header []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateSheetName(name); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if sheet, ok := w.lookup(name); ok {
		rows, err := w.file.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read sheet %q: %w", name, err)
		}
		if len(rows) > 0 {
			return checkHeader(name, rows[0], header)
		}
		return w.writeAndSave(sheet, 1, header)
	}

	if w.onlyBlankDefault() {
		if err := w.file.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("rename default sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	slog.Info("sheet_created", "backend", BackendXLSX, "sheet", name)
	return w.writeAndSave(name, 1, header)
}

// HasSheet reports whether a sheet exists.
func (w *XLSXWorkbook) HasSheet(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.lookup(name)
	return ok, nil
}

// Rows returns the data rows of a sheet, padded to the header width.
// Cells hold raw values; see DateCell and TimeCell.
// PRE: none
// POST: Returns ErrSheetNotFound if the sheet does not exist
func (w *XLSXWorkbook) Rows(ctx context.Context, name string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	sheet, ok := w.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	// Raw values: a typed date comes back as its serial, not its display text.
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) < 2 {
		return [][]string{}, nil
	}
	width := len(rows[0])
	data := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		data = append(data, Pad(r, width))
	}
	return data, nil
}

// AppendRow writes row after the last row of the sheet.
// PRE: sheet exists with a header
// POST: row is the new last data row and the file is saved
func (w *XLSXWorkbook) AppendRow(ctx context.Context, name string, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	sheet, ok := w.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %q has no header row", ErrHeaderMismatch, name)
	}
	return w.writeAndSave(sheet, len(rows)+1, row)
}

// UpdateRow overwrites the data row at index.
// PRE: 0 <= index < number of data rows
// POST: row replaced in place and the file is saved
func (w *XLSXWorkbook) UpdateRow(ctx context.Context, name string, index int, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	sheet, ok := w.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", name, err)
	}
	if index < 0 || index >= len(rows)-1 {
		return fmt.Errorf("%w: %q row %d", ErrRowOutOfRange, name, index)
	}
	// Data row 0 lives on spreadsheet row 2, under the header.
	return w.writeAndSave(sheet, index+2, row)
}

// lookup finds a sheet by case-insensitive name, as spreadsheets do.
func (w *XLSXWorkbook) lookup(name string) (string, bool) {
	for _, s := range w.file.GetSheetList() {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

// onlyBlankDefault is true for a freshly created file that still holds just "Sheet1".
func (w *XLSXWorkbook) onlyBlankDefault() bool {
	list := w.file.GetSheetList()
	if len(list) != 1 || list[0] != defaultSheet {
		return false
	}
	rows, err := w.file.GetRows(defaultSheet)
	return err == nil && len(rows) == 0
}

func (w *XLSXWorkbook) writeAndSave(sheet string, excelRow int, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, excelRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write sheet %q row %d: %w", sheet, excelRow, err)
	}
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}
