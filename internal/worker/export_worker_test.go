package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"factures/internal/amqp"
	"factures/internal/core"
	"factures/internal/sheets/memory"
)

type fakeRows struct {
	rows    []core.ExportRow
	periods [][2]string
	err     error
}

func (f *fakeRows) ExportRows(_ context.Context, from, to core.Date) ([]core.ExportRow, error) {
	f.periods = append(f.periods, [2]string{from.String(), to.String()})
	if f.err != nil {
		return nil, f.err
	}
	var out []core.ExportRow
	for _, r := range f.rows {
		if !r.IssueDate.Before(from.Time) && !r.IssueDate.After(to.Time) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestHandleInvoiceEventRewritesYear(t *testing.T) {
	src := &fakeRows{rows: []core.ExportRow{
		{Number: "FAC-2025-0001", IssueDate: core.NewDate(2025, 2, 1), Status: core.StatusPaid, Total: 120},
		{Number: "FAC-2024-0009", IssueDate: core.NewDate(2024, 12, 30), Status: core.StatusSent, Total: 60},
	}}
	store := memory.New()
	w := NewExportWorker(src, store, "Factures", nil)

	ev := &amqp.InvoiceEvent{Type: amqp.EventInvoiceCreated, InvoiceID: 1, IssueDate: core.NewDate(2025, 2, 1)}
	if err := w.HandleInvoiceEvent(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(src.periods) != 1 || src.periods[0] != [2]string{"2025-01-01", "2025-12-31"} {
		t.Fatalf("unexpected period %v", src.periods)
	}
	rows := store.Rows("2025 Factures")
	if len(rows) != 2 || rows[1][0] != "FAC-2025-0001" {
		t.Fatalf("unexpected sheet content %v", rows)
	}
}

func TestHandleInvoiceEventMovedYear(t *testing.T) {
	src := &fakeRows{rows: []core.ExportRow{
		{Number: "FAC-2023-0004", IssueDate: core.NewDate(2023, 5, 10), Status: core.StatusSent, Total: 90},
	}}
	store := memory.New()
	ctx := context.Background()

	if err := NewExportWorker(src, store, "Factures", nil).HandleInvoiceEvent(ctx,
		&amqp.InvoiceEvent{Type: amqp.EventInvoiceCreated, InvoiceID: 7, IssueDate: core.NewDate(2023, 5, 10)}); err != nil {
		t.Fatalf("handle create: %v", err)
	}
	if rows := store.Rows("2023 Factures"); len(rows) != 2 {
		t.Fatalf("2023 sheet should list the invoice, got %v", rows)
	}

	// The invoice moves to 2026 and the event reaches a freshly started worker.
	src.rows[0].IssueDate = core.NewDate(2026, 1, 15)
	restarted := NewExportWorker(src, store, "Factures", nil)
	ev := &amqp.InvoiceEvent{
		Type:              amqp.EventInvoiceUpdated,
		InvoiceID:         7,
		IssueDate:         core.NewDate(2026, 1, 15),
		PreviousIssueDate: core.NewDate(2023, 5, 10),
	}
	if err := restarted.HandleInvoiceEvent(ctx, ev); err != nil {
		t.Fatalf("handle update: %v", err)
	}
	if rows := store.Rows("2023 Factures"); len(rows) != 1 {
		t.Fatalf("2023 sheet should only keep the header, got %v", rows)
	}
	if rows := store.Rows("2026 Factures"); len(rows) != 2 || rows[1][0] != "FAC-2023-0004" {
		t.Fatalf("2026 sheet should list the moved invoice, got %v", rows)
	}
}

func TestHandleInvoiceEventYears(t *testing.T) {
	tests := []struct {
		name     string
		previous core.Date
		want     int
	}{
		{"no previous date", core.Date{}, 1},
		{"same year", core.NewDate(2025, 1, 3), 1},
		{"other year", core.NewDate(2024, 12, 31), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			w := NewExportWorker(&fakeRows{}, store, "Factures", nil)
			ev := &amqp.InvoiceEvent{Type: amqp.EventInvoiceUpdated, InvoiceID: 1, IssueDate: core.NewDate(2025, 6, 1), PreviousIssueDate: tt.previous}
			if err := w.HandleInvoiceEvent(context.Background(), ev); err != nil {
				t.Fatalf("handle: %v", err)
			}
			if store.Writes() != tt.want {
				t.Fatalf("expected %d writes, got %d", tt.want, store.Writes())
			}
		})
	}
}

func TestHandleInvoiceEventPropagatesErrors(t *testing.T) {
	src := &fakeRows{err: errors.New("db locked")}
	w := NewExportWorker(src, memory.New(), "Factures", nil)
	err := w.HandleInvoiceEvent(context.Background(), &amqp.InvoiceEvent{Type: amqp.EventInvoiceCreated, InvoiceID: 1, IssueDate: core.NewDate(2025, 1, 1)})
	if err == nil || !errors.Is(err, src.err) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestStartupSync(t *testing.T) {
	store := memory.New()
	w := NewExportWorker(&fakeRows{}, store, "Ventes", nil)
	if err := w.StartupSync(context.Background(), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("startup sync: %v", err)
	}
	got := store.Sheets()
	if len(got) != 2 || got[0] != "2024 Ventes" || got[1] != "2025 Ventes" {
		t.Fatalf("unexpected sheets %v", got)
	}
	if rows := store.Rows("2025 Ventes"); len(rows) != 1 {
		t.Fatalf("empty year should still carry the header, got %v", rows)
	}
}

func TestEventYearFallback(t *testing.T) {
	ev := &amqp.InvoiceEvent{Timestamp: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)}
	if eventYear(ev) != 2023 {
		t.Fatalf("expected timestamp year")
	}
}
