package worker

import (
	"context"
	"fmt"
	"time"

	"factures/internal/amqp"
	"factures/internal/core"
	"factures/internal/export"
	"factures/internal/log"
	"factures/internal/sheets"
)

// RowSource lists the export rows of a period.
type RowSource interface {
	ExportRows(ctx context.Context, from, to core.Date) ([]core.ExportRow, error)
}

// ExportWorker keeps one spreadsheet tab per year in line with the invoice
// store. Every event rewrites the tab of the year the invoice was issued in.
type ExportWorker struct {
	rows      RowSource
	sheets    sheets.RowWriter
	sheetBase string
	logger    *log.Logger
}

func NewExportWorker(rows RowSource, writer sheets.RowWriter, sheetBase string, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Default().WithComponent(log.ComponentWorker)
	}
	return &ExportWorker{
		rows:      rows,
		sheets:    writer,
		sheetBase: sheetBase,
		logger:    logger,
	}
}

// HandleInvoiceEvent rewrites the affected year. When an update moved an
// invoice to another year, the year named by PreviousIssueDate is rewritten too.
func (w *ExportWorker) HandleInvoiceEvent(ctx context.Context, ev *amqp.InvoiceEvent) error {
	year := eventYear(ev)
	fields := log.NewFields().WithInvoice(ev.InvoiceID, ev.Number).WithOperation(string(ev.Type))
	w.logger.InfoContext(ctx, "Processing invoice event", append(fields.ToSlice(), "year", year)...)

	years := []int{year}
	if prev := ev.PreviousIssueDate; !prev.IsZero() && prev.Year() != year {
		years = append(years, prev.Year())
	}

	for _, y := range years {
		if err := w.SyncYear(ctx, y); err != nil {
			return fmt.Errorf("handle %s for invoice %d: %w", ev.Type, ev.InvoiceID, err)
		}
	}
	return nil
}

// SyncYear replaces the sheet of year with every invoice issued that year.
func (w *ExportWorker) SyncYear(ctx context.Context, year int) error {
	from, to := core.NewDate(year, 1, 1), core.NewDate(year, 12, 31)
	rows, err := w.rows.ExportRows(ctx, from, to)
	if err != nil {
		return fmt.Errorf("export rows %d: %w", year, err)
	}

	sheet := sheets.YearSheetName(w.sheetBase, year)
	if err := w.sheets.WriteRows(ctx, sheet, export.SheetValues(rows)); err != nil {
		w.logger.ErrorContext(ctx, "Failed to write sheet", "sheet", sheet, log.FieldError, err)
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}
	w.logger.InfoContext(ctx, "Sheet synchronised", "sheet", sheet, "invoices", len(rows))
	return nil
}

// StartupSync rewrites the current and previous year, covering events
// missed while the worker was down.
func (w *ExportWorker) StartupSync(ctx context.Context, now time.Time) error {
	for _, y := range []int{now.Year() - 1, now.Year()} {
		if err := w.SyncYear(ctx, y); err != nil {
			return fmt.Errorf("startup sync: %w", err)
		}
	}
	return nil
}

func eventYear(ev *amqp.InvoiceEvent) int {
	if !ev.IssueDate.IsZero() {
		return ev.IssueDate.Year()
	}
	if !ev.Timestamp.IsZero() {
		return ev.Timestamp.Year()
	}
	return time.Now().Year()
}
