package sheets

import (
	"context"
	"log/slog"
	"time"

	"frontdesk/internal/adapters/http/perf"
)

// TimedWorkbook wraps a Workbook to log slow calls and record them to a collector.
type TimedWorkbook struct {
	inner     Workbook
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *TimedWorkbook satisfies Workbook.
var _ Workbook = (*TimedWorkbook)(nil)

// Timed wraps wb with timing instrumentation. collector may be nil.
// Calls at or above slowMs log at WARN; slowMs <= 0 turns the warning off.
// PRE: wb is non-nil
// POST: Returns a Workbook that logs slow calls and records to collector
func Timed(wb Workbook, collector *perf.Collector, slowMs float64) *TimedWorkbook {
	return &TimedWorkbook{
		inner:     wb,
		collector: collector,
		threshold: slowMs,
	}
}

// Unwrap returns the instrumented workbook.
func (t *TimedWorkbook) Unwrap() Workbook {
	return t.inner
}

func (t *TimedWorkbook) observe(op, sheet string, start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	switch {
	case err != nil:
		slog.Warn("sheet_op_failed", "op", op, "sheet", sheet, "duration_ms", durationMs, "error", err.Error())
	case t.threshold > 0 && durationMs >= t.threshold:
		slog.Warn("slow_sheet_op", "op", op, "sheet", sheet, "duration_ms", durationMs)
	default:
		slog.Debug("sheet_op", "op", op, "sheet", sheet, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindSheetOp,
			Path:       op + " " + sheet,
			Failed:     err != nil,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// EnsureSheet wraps Workbook.EnsureSheet with timing.
func (t *TimedWorkbook) EnsureSheet(ctx context.Context, name string, header []string) error {
	start := time.Now()
	err := t.inner.EnsureSheet(ctx, name, header)
	t.observe("EnsureSheet", name, start, err)
	return err
}

// HasSheet wraps Workbook.HasSheet with timing.
func (t *TimedWorkbook) HasSheet(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	ok, err := t.inner.HasSheet(ctx, name)
	t.observe("HasSheet", name, start, err)
	return ok, err
}

// Rows wraps Workbook.Rows with timing. A missing sheet is not counted as a failure.
func (t *TimedWorkbook) Rows(ctx context.Context, name string) ([][]string, error) {
	start := time.Now()
	rows, err := t.inner.Rows(ctx, name)
	observed := err
	if IsNotFound(err) {
		observed = nil
	}
	t.observe("Rows", name, start, observed)
	return rows, err
}

// AppendRow wraps Workbook.AppendRow with timing.
func (t *TimedWorkbook) AppendRow(ctx context.Context, name string, row []string) error {
	start := time.Now()
	err := t.inner.AppendRow(ctx, name, row)
	t.observe("AppendRow", name, start, err)
	return err
}

// UpdateRow wraps Workbook.UpdateRow with timing.
func (t *TimedWorkbook) UpdateRow(ctx context.Context, name string, index int, row []string) error {
	start := time.Now()
	err := t.inner.UpdateRow(ctx, name, index, row)
	t.observe("UpdateRow", name, start, err)
	return err
}
