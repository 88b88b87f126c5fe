// Package sheets is the tabular store the front desk uses as its system of record.
//
// A Workbook is a set of named sheets. The first row of every sheet is its
// header; the remaining rows are data rows addressed by a 0-based index.
// Two backends exist: an .xlsx file (XLSXWorkbook) and sheets hosted in
// SQLite tables (SQLiteWorkbook). Both are wrapped by Timed for slow-call
// logging.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Backend names accepted by configuration.
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
)

// Cell layouts written by the stores.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// maxDateSerial is 9999-12-31, the last day a spreadsheet can hold.
const maxDateSerial = 2958465

// MaxSheetNameLength is the spreadsheet limit on sheet names.
const MaxSheetNameLength = 31

// Store errors
var (
	ErrSheetNotFound    = errors.New("sheet not found")
	ErrHeaderMismatch   = errors.New("sheet header does not match")
	ErrRowOutOfRange    = errors.New("row index out of range")
	ErrInvalidSheetName = errors.New("invalid sheet name")
)

// Workbook is the remote tabular API the stores read and write.
type Workbook interface {
	// EnsureSheet creates the sheet with header if absent, or verifies the
	// header of an existing sheet.
	EnsureSheet(ctx context.Context, name string, header []string) error
	// HasSheet reports whether a sheet exists.
	HasSheet(ctx context.Context, name string) (bool, error)
	// Rows returns the data rows (header excluded), each padded to the
	// header width. A missing sheet yields ErrSheetNotFound.
	Rows(ctx context.Context, name string) ([][]string, error)
	// AppendRow writes row after the last data row.
	AppendRow(ctx context.Context, name string, row []string) error
	// UpdateRow overwrites the data row at index.
	UpdateRow(ctx context.Context, name string, index int, row []string) error
}

// ValidateSheetName rejects names a spreadsheet would refuse.
func ValidateSheetName(name string) error {
	if strings.TrimSpace(name) == "" || len(name) > MaxSheetNameLength {
		return fmt.Errorf("%w: %q", ErrInvalidSheetName, name)
	}
	if strings.ContainsAny(name, `:\/?*[]`) {
		return fmt.Errorf("%w: %q", ErrInvalidSheetName, name)
	}
	return nil
}

// Pad returns row extended with empty cells to width n.
// Cells beyond n are kept.
func Pad(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// checkHeader compares a stored header against the expected one,
// ignoring surrounding whitespace in the stored cells.
func checkHeader(name string, got, want []string) error {
	got = Pad(got, len(want))
	for i, w := range want {
		if strings.TrimSpace(got[i]) != w {
			return fmt.Errorf("%w: sheet %q column %d is %q, want %q", ErrHeaderMismatch, name, i+1, got[i], w)
		}
	}
	return nil
}

// IsNotFound reports whether err means the sheet does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSheetNotFound)
}

// ParseIntCell reads a whole-number cell. Spreadsheet edits often leave
// "1000.0" or "1,000"; both parse as 1000.
func ParseIntCell(cell string) (int, error) {
	cell = strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cell == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(cell); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", cell)
	}
	return int(math.Round(f)), nil
}

// DateCell reads a date cell. A date typed into the spreadsheet is stored as
// a day serial; it is returned in DateLayout. Any other text is returned trimmed.
func DateCell(cell string) string {
	cell = strings.TrimSpace(cell)
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || serial < 1 || serial > maxDateSerial {
		return cell
	}
	return excelize.ExcelDateToTime(math.Floor(serial), false).Format(DateLayout)
}

// TimeCell reads a time-of-day cell. A time typed into the spreadsheet is
// stored as a fraction of a day (a full date-time serial keeps only its
// fraction); it is returned in TimeLayout rounded to the minute. Any other
// text is returned trimmed.
func TimeCell(cell string) string {
	cell = strings.TrimSpace(cell)
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || serial < 0 || serial > maxDateSerial+1 {
		return cell
	}
	_, frac := math.Modf(serial)
	minutes := int(math.Round(frac*24*60)) % (24 * 60)
	d := time.Duration(minutes) * time.Minute
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format(TimeLayout)
}
