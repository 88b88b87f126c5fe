package sheets

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"frontdesk/internal/adapters/http/perf"
	"frontdesk/internal/adapters/storage"
)

var testHeader = []string{"ID", "Name", "Phone"}

// backends returns a fresh workbook of each kind.
func backends(t *testing.T) map[string]Workbook {
	t.Helper()

	xlsx, err := OpenXLSX(filepath.Join(t.TempDir(), "gym.xlsx"))
	if err != nil {
		t.Fatalf("OpenXLSX: %v", err)
	}
	t.Cleanup(func() { xlsx.Close() })

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}

	return map[string]Workbook{
		BackendXLSX:   xlsx,
		BackendSQLite: NewSQLiteWorkbook(db),
	}
}

// TestWorkbook_EnsureAppendUpdate exercises the full row lifecycle on every backend.
func TestWorkbook_EnsureAppendUpdate(t *testing.T) {
	ctx := context.Background()
	for name, wb := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if ok, err := wb.HasSheet(ctx, "Members"); err != nil || ok {
				t.Fatalf("HasSheet before ensure = %v, %v", ok, err)
			}
			if _, err := wb.Rows(ctx, "Members"); !IsNotFound(err) {
				t.Fatalf("Rows on missing sheet err = %v, want ErrSheetNotFound", err)
			}
			if err := wb.EnsureSheet(ctx, "Members", testHeader); err != nil {
				t.Fatalf("EnsureSheet: %v", err)
			}
			// Idempotent.
			if err := wb.EnsureSheet(ctx, "Members", testHeader); err != nil {
				t.Fatalf("second EnsureSheet: %v", err)
			}

			rows, err := wb.Rows(ctx, "Members")
			if err != nil || len(rows) != 0 {
				t.Fatalf("Rows on empty sheet = %v, %v", rows, err)
			}

			if err := wb.AppendRow(ctx, "Members", []string{"M001", "Alice", "021"}); err != nil {
				t.Fatalf("AppendRow: %v", err)
			}
			if err := wb.AppendRow(ctx, "Members", []string{"M002", "Bob"}); err != nil {
				t.Fatalf("AppendRow short row: %v", err)
			}
			if err := wb.UpdateRow(ctx, "Members", 0, []string{"M001", "Alice B", "022"}); err != nil {
				t.Fatalf("UpdateRow: %v", err)
			}

			rows, err = wb.Rows(ctx, "Members")
			if err != nil {
				t.Fatalf("Rows: %v", err)
			}
			if len(rows) != 2 {
				t.Fatalf("len(rows) = %d, want 2", len(rows))
			}
			if rows[0][1] != "Alice B" || rows[0][2] != "022" {
				t.Errorf("row 0 = %v, want updated Alice", rows[0])
			}
			if len(rows[1]) != 3 || rows[1][2] != "" {
				t.Errorf("row 1 = %v, want padded to 3 columns", rows[1])
			}

			if err := wb.UpdateRow(ctx, "Members", 5, []string{"x"}); !errors.Is(err, ErrRowOutOfRange) {
				t.Errorf("UpdateRow out of range err = %v, want ErrRowOutOfRange", err)
			}
			if err := wb.AppendRow(ctx, "Nope", []string{"x"}); !IsNotFound(err) {
				t.Errorf("AppendRow missing sheet err = %v, want ErrSheetNotFound", err)
			}
		})
	}
}

// TestWorkbook_HeaderMismatch rejects sheets whose columns were renamed.
func TestWorkbook_HeaderMismatch(t *testing.T) {
	ctx := context.Background()
	for name, wb := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := wb.EnsureSheet(ctx, "Payments", []string{"Transaction ID", "Amount"}); err != nil {
				t.Fatalf("EnsureSheet: %v", err)
			}
			err := wb.EnsureSheet(ctx, "Payments", []string{"Transaction ID", "Total"})
			if !errors.Is(err, ErrHeaderMismatch) {
				t.Errorf("err = %v, want ErrHeaderMismatch", err)
			}
		})
	}
}

// TestWorkbook_SheetsAreIndependent verifies per-day sheets do not share rows.
func TestWorkbook_SheetsAreIndependent(t *testing.T) {
	ctx := context.Background()
	header := []string{"Member ID", "Name", "In Time", "Out Time", "Date"}
	for name, wb := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, day := range []string{"Attendance 2026-10-18", "Attendance 2026-10-19"} {
				if err := wb.EnsureSheet(ctx, day, header); err != nil {
					t.Fatalf("EnsureSheet(%s): %v", day, err)
				}
			}
			if err := wb.AppendRow(ctx, "Attendance 2026-10-19", []string{"M001", "Alice", "06:30", "", "2026-10-19"}); err != nil {
				t.Fatalf("AppendRow: %v", err)
			}
			rows, err := wb.Rows(ctx, "Attendance 2026-10-18")
			if err != nil || len(rows) != 0 {
				t.Errorf("yesterday rows = %v, %v; want empty", rows, err)
			}
		})
	}
}

// TestXLSX_PersistsAcrossReopen verifies every write is saved to disk.
func TestXLSX_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "gym.xlsx")

	wb, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("OpenXLSX: %v", err)
	}
	if err := wb.EnsureSheet(ctx, "Members", testHeader); err != nil {
		t.Fatalf("EnsureSheet: %v", err)
	}
	if err := wb.AppendRow(ctx, "Members", []string{"M001", "Alice", "021"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	wb.Close()

	reopened, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	rows, err := reopened.Rows(ctx, "Members")
	if err != nil || len(rows) != 1 || rows[0][0] != "M001" {
		t.Fatalf("rows after reopen = %v, %v", rows, err)
	}
	// The default sheet was renamed rather than left behind.
	if ok, _ := reopened.HasSheet(ctx, defaultSheet); ok {
		t.Errorf("default sheet %q should have been renamed", defaultSheet)
	}
}

// TestValidateSheetName rejects names spreadsheets refuse.
func TestValidateSheetName(t *testing.T) {
	for _, bad := range []string{"", "a/b", "what?", "[x]", "this sheet name is far too long for excel"} {
		if err := ValidateSheetName(bad); !errors.Is(err, ErrInvalidSheetName) {
			t.Errorf("ValidateSheetName(%q) = %v", bad, err)
		}
	}
	if err := ValidateSheetName("Attendance 2026-10-19"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
}

// TestTimed_RecordsOperations verifies the timing decorator feeds the collector.
func TestTimed_RecordsOperations(t *testing.T) {
	ctx := context.Background()
	collector := perf.NewCollector(16)
	wb := Timed(backends(t)[BackendSQLite], collector, 250)

	if err := wb.EnsureSheet(ctx, "Members", testHeader); err != nil {
		t.Fatalf("EnsureSheet: %v", err)
	}
	_, _ = wb.Rows(ctx, "Missing")
	_ = wb.AppendRow(ctx, "Missing", []string{"x"})

	if collector.TotalRecorded() != 3 {
		t.Errorf("TotalRecorded = %d, want 3", collector.TotalRecorded())
	}
	// Rows on a missing sheet is a normal read; AppendRow on it is a failure.
	if collector.TotalFailed() != 1 {
		t.Errorf("TotalFailed = %d, want 1", collector.TotalFailed())
	}
}

// TestParseIntCell accepts the number shapes spreadsheet edits produce.
func TestParseIntCell(t *testing.T) {
	cases := map[string]int{"1000": 1000, " 1000.0 ": 1000, "1,500": 1500, "": 0, "99.6": 100}
	for in, want := range cases {
		got, err := ParseIntCell(in)
		if err != nil || got != want {
			t.Errorf("ParseIntCell(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := ParseIntCell("ten"); err == nil {
		t.Error("expected error for non-numeric cell")
	}
}

// TestDateCell converts day serials and leaves text dates alone.
func TestDateCell(t *testing.T) {
	cases := map[string]string{
		"46387":        "2026-12-31",
		"46387.75":     "2026-12-31",
		" 2026-10-19 ": "2026-10-19",
		"":             "",
		"soon":         "soon",
		"0":            "0",
	}
	for in, want := range cases {
		if got := DateCell(in); got != want {
			t.Errorf("DateCell(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestTimeCell converts day fractions and leaves text times alone.
func TestTimeCell(t *testing.T) {
	cases := map[string]string{
		"0.2708333333": "06:30",
		"0.75":         "18:00",
		"46387.5":      "12:00",
		"0":            "00:00",
		"0.99999":      "00:00",
		"07:15":        "07:15",
		"":             "",
	}
	for in, want := range cases {
		if got := TimeCell(in); got != want {
			t.Errorf("TimeCell(%q) = %q, want %q", in, got, want)
		}
	}
}
