package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"factures/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "factures.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustClient(t *testing.T, repo *SQLiteRepository, name string) int64 {
	t.Helper()
	id, err := repo.CreateClient(context.Background(), core.ClientInput{Name: name})
	if err != nil {
		t.Fatalf("create client %s: %v", name, err)
	}
	return id
}

func mustInvoice(t *testing.T, repo *SQLiteRepository, in core.InvoiceInput) core.Invoice {
	t.Helper()
	inv, err := repo.CreateInvoice(context.Background(), in)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func invoiceInput(clientID int64, issue core.Date, status core.Status, lines ...core.LineInput) core.InvoiceInput {
	return core.InvoiceInput{ClientID: clientID, IssueDate: issue, Status: status, Lines: lines}
}

func line(desc string, qty, price float64) core.LineInput {
	return core.LineInput{Description: desc, Quantity: qty, UnitPrice: price}
}

func TestCompanyProfileSeeded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p, err := repo.GetCompanyProfile(ctx)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Name != "Mon Entreprise" || p.IBAN == "" {
		t.Fatalf("unexpected seeded profile %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("seeded profile should validate: %v", err)
	}

	p.Name = "Atelier Dupont"
	p.LogoPath = "/tmp/logo.png"
	if err := repo.UpdateCompanyProfile(ctx, p); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	got, err := repo.GetCompanyProfile(ctx)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.Name != "Atelier Dupont" || got.LogoPath != "/tmp/logo.png" {
		t.Fatalf("profile not updated: %+v", got)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factures.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 2 || dirty {
		t.Fatalf("expected clean version 2, got %d dirty=%v", version, dirty)
	}
}

func TestClientCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateClient(ctx, core.ClientInput{Name: " ACME ", Email: "a@acme.fr", SIRET: "732 829 320 00074"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	detail, err := repo.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Name != "ACME" || detail.SIRET != "73282932000074" || detail.Phone != "" {
		t.Fatalf("unexpected client %+v", detail.Client)
	}
	if detail.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
	if detail.Invoices == nil || len(detail.Invoices) != 0 {
		t.Fatalf("expected empty invoice list, got %#v", detail.Invoices)
	}

	changed, err := repo.UpdateClient(ctx, id, core.ClientInput{Name: "ACME SAS", Phone: "0102030405"})
	if err != nil || !changed {
		t.Fatalf("update: changed=%v err=%v", changed, err)
	}
	detail, _ = repo.GetClient(ctx, id)
	if detail.Name != "ACME SAS" || detail.Email != "" || detail.Phone != "0102030405" {
		t.Fatalf("update is not a full replace: %+v", detail.Client)
	}

	changed, err = repo.UpdateClient(ctx, id+100, core.ClientInput{Name: "ghost"})
	if err != nil || changed {
		t.Fatalf("update unknown: changed=%v err=%v", changed, err)
	}

	if _, err := repo.GetClient(ctx, id+100); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	deleted, err := repo.DeleteClient(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = repo.DeleteClient(ctx, id)
	if err != nil || deleted {
		t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
	}
}

func TestDeleteClientWithInvoicesIsRefused(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clientID := mustClient(t, repo, "Blocked")
	inv := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2025, 1, 10), "", line("x", 1, 10)))

	deleted, err := repo.DeleteClient(ctx, clientID)
	if !errors.Is(err, core.ErrClientHasInvoices) || deleted {
		t.Fatalf("expected ErrClientHasInvoices, got deleted=%v err=%v", deleted, err)
	}
	if _, err := repo.GetClient(ctx, clientID); err != nil {
		t.Fatalf("client should still exist: %v", err)
	}

	if ok, err := repo.DeleteInvoice(ctx, inv.ID); err != nil || !ok {
		t.Fatalf("delete invoice: %v %v", ok, err)
	}
	if ok, err := repo.DeleteClient(ctx, clientID); err != nil || !ok {
		t.Fatalf("delete client after invoices removed: %v %v", ok, err)
	}
}

func TestListAndSearchClients(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	zeta := mustClient(t, repo, "zeta")
	alpha, _ := repo.CreateClient(ctx, core.ClientInput{Name: "Alpha", Email: "hello@alpha.io"})
	mustClient(t, repo, "100% Bio")

	mustInvoice(t, repo, invoiceInput(zeta, core.NewDate(2025, 1, 1), core.StatusPaid, line("a", 1, 100)))
	mustInvoice(t, repo, invoiceInput(zeta, core.NewDate(2025, 2, 1), core.StatusDraft, line("b", 1, 50)))

	clients, err := repo.ListClients(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clients) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(clients))
	}
	if clients[0].Name != "100% Bio" || clients[1].ID != alpha || clients[2].ID != zeta {
		t.Fatalf("unexpected order: %s, %s, %s", clients[0].Name, clients[1].Name, clients[2].Name)
	}
	if clients[2].InvoiceCount != 2 || clients[2].TotalRevenue != 180 {
		t.Fatalf("unexpected stats for zeta: %+v", clients[2])
	}
	if clients[1].InvoiceCount != 0 || clients[1].TotalRevenue != 0 {
		t.Fatalf("unexpected stats for alpha: %+v", clients[1])
	}

	found, err := repo.SearchClients(ctx, "ALPHA.IO")
	if err != nil || len(found) != 1 || found[0].ID != alpha {
		t.Fatalf("search by email: %+v %v", found, err)
	}
	found, _ = repo.SearchClients(ctx, "%")
	if len(found) != 1 || found[0].Name != "100% Bio" {
		t.Fatalf("percent should match literally, got %+v", found)
	}
	found, _ = repo.SearchClients(ctx, "nobody")
	if found == nil || len(found) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", found)
	}

	n, err := repo.ClientCount(ctx)
	if err != nil || n != 3 {
		t.Fatalf("client count: %d %v", n, err)
	}
}

func TestCreateInvoiceAllocatesNumbers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Numbers")

	next, err := repo.NextInvoiceNumber(ctx, 2025)
	if err != nil || next != "FAC-2025-0001" {
		t.Fatalf("first preview: %s %v", next, err)
	}

	a := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2025, 3, 1), ""))
	b := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2025, 3, 2), ""))
	c := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2026, 1, 2), ""))
	if a.Number != "FAC-2025-0001" || b.Number != "FAC-2025-0002" || c.Number != "FAC-2026-0001" {
		t.Fatalf("unexpected numbers %s %s %s", a.Number, b.Number, c.Number)
	}

	next, _ = repo.NextInvoiceNumber(ctx, 2025)
	if next != "FAC-2025-0003" {
		t.Fatalf("expected FAC-2025-0003, got %s", next)
	}

	// Next number follows the greatest, not the count.
	mustInvoice(t, repo, core.InvoiceInput{Number: "FAC-2025-0041", ClientID: clientID, IssueDate: core.NewDate(2025, 4, 1)})
	next, _ = repo.NextInvoiceNumber(ctx, 2025)
	if next != "FAC-2025-0042" {
		t.Fatalf("expected FAC-2025-0042, got %s", next)
	}
}

func TestCreateInvoiceRejectsDuplicateAndUnknownClient(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Dup")

	mustInvoice(t, repo, core.InvoiceInput{Number: "FAC-2025-0007", ClientID: clientID, IssueDate: core.NewDate(2025, 1, 1)})
	_, err := repo.CreateInvoice(ctx, core.InvoiceInput{Number: "FAC-2025-0007", ClientID: clientID, IssueDate: core.NewDate(2025, 1, 1)})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error for duplicate number, got %v", err)
	}

	_, err = repo.CreateInvoice(ctx, invoiceInput(clientID+99, core.NewDate(2025, 1, 1), "", line("x", 1, 1)))
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error for unknown client, got %v", err)
	}

	list, _ := repo.ListInvoices(ctx, core.InvoiceFilter{})
	if len(list) != 1 {
		t.Fatalf("failed creates must not persist anything, got %d invoices", len(list))
	}
}

func TestCreateInvoiceRejectsMalformedNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Numbers")
	issue := core.NewDate(2026, 2, 1)

	for _, number := range []string{"whatever", "FAC-2026-ABCD", "FAC-2026-5", "FAC-2025-0003"} {
		_, err := repo.CreateInvoice(ctx, core.InvoiceInput{Number: number, ClientID: clientID, IssueDate: issue})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", number, err)
		}
	}

	// The year's sequence stays usable.
	inv := mustInvoice(t, repo, invoiceInput(clientID, issue, ""))
	if inv.Number != "FAC-2026-0001" {
		t.Fatalf("expected FAC-2026-0001, got %s", inv.Number)
	}
	if next, err := repo.NextInvoiceNumber(ctx, 2026); err != nil || next != "FAC-2026-0002" {
		t.Fatalf("expected FAC-2026-0002, got %s %v", next, err)
	}
}

func TestSequenceExhausted(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Busy")

	mustInvoice(t, repo, core.InvoiceInput{Number: "FAC-2025-9999", ClientID: clientID, IssueDate: core.NewDate(2025, 12, 31)})
	_, err := repo.CreateInvoice(ctx, invoiceInput(clientID, core.NewDate(2025, 12, 31), ""))
	if !errors.Is(err, core.ErrSequenceExhausted) {
		t.Fatalf("expected ErrSequenceExhausted, got %v", err)
	}
	if _, err := repo.NextInvoiceNumber(ctx, 2025); !errors.Is(err, core.ErrSequenceExhausted) {
		t.Fatalf("expected ErrSequenceExhausted on preview, got %v", err)
	}
}

func TestInvoiceTotalsAndDetail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID, _ := repo.CreateClient(ctx, core.ClientInput{Name: "Detail", Email: "d@x.fr", Address: "1 rue X"})

	inv := mustInvoice(t, repo, core.InvoiceInput{
		ClientID:  clientID,
		IssueDate: core.NewDate(2025, 5, 1),
		DueDate:   core.NewDate(2025, 5, 31),
		Notes:     "merci",
		Lines:     []core.LineInput{line("Dev", 2, 50), line("Support", 1, 30)},
	})

	d, err := repo.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if d.Subtotal != 130 || d.TaxRate != 20 || d.TaxAmount != 26 || d.Total != 156 {
		t.Fatalf("unexpected totals %+v", d.Invoice)
	}
	if d.Status != core.StatusDraft || d.Notes != "merci" || d.DueDate.String() != "2025-05-31" {
		t.Fatalf("unexpected fields %+v", d.Invoice)
	}
	if d.Client.Name != "Detail" || d.Client.Address != "1 rue X" {
		t.Fatalf("unexpected client %+v", d.Client)
	}
	if len(d.Lines) != 2 || d.Lines[0].Description != "Dev" || d.Lines[0].Total != 100 || d.Lines[1].Total != 30 {
		t.Fatalf("unexpected lines %+v", d.Lines)
	}

	if _, err := repo.GetInvoice(ctx, inv.ID+1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateInvoiceReplacesLines(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Update")

	inv := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2025, 6, 1), core.StatusSent,
		line("a", 1, 10), line("b", 1, 20), line("c", 1, 30)))

	rate := 10.0
	changed, err := repo.UpdateInvoice(ctx, inv.ID, core.InvoiceInput{
		Number:    "FAC-2099-0001",
		ClientID:  clientID,
		IssueDate: core.NewDate(2025, 6, 2),
		TaxRate:   &rate,
		Lines:     []core.LineInput{line("only", 4, 25)},
	})
	if err != nil || !changed {
		t.Fatalf("update: changed=%v err=%v", changed, err)
	}

	d, _ := repo.GetInvoice(ctx, inv.ID)
	if d.Number != inv.Number {
		t.Fatalf("number must be immutable: %s -> %s", inv.Number, d.Number)
	}
	if d.Status != core.StatusSent {
		t.Fatalf("empty status should keep stored status, got %s", d.Status)
	}
	if len(d.Lines) != 1 || d.Lines[0].Description != "only" {
		t.Fatalf("lines not replaced: %+v", d.Lines)
	}
	if d.Subtotal != 100 || d.TaxAmount != 10 || d.Total != 110 {
		t.Fatalf("totals not recomputed: %+v", d.Invoice)
	}

	changed, err = repo.UpdateInvoice(ctx, inv.ID+50, invoiceInput(clientID, core.NewDate(2025, 6, 2), "", line("x", 1, 1)))
	if err != nil || changed {
		t.Fatalf("update unknown: changed=%v err=%v", changed, err)
	}
}

// rejectLine makes SQLite abort any line insert with the given description.
func rejectLine(t *testing.T, repo *SQLiteRepository, desc string) {
	t.Helper()
	_, err := repo.db.Exec(`CREATE TRIGGER reject_line BEFORE INSERT ON invoice_lines
		WHEN NEW.description = '` + desc + `'
		BEGIN SELECT RAISE(ABORT, 'line rejected'); END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}
}

func TestCreateInvoiceRollsBackOnLineFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Rollback")
	rejectLine(t, repo, "boom")

	_, err := repo.CreateInvoice(ctx, invoiceInput(clientID, core.NewDate(2025, 4, 1), "", line("ok", 1, 10), line("boom", 1, 5)))
	if err == nil {
		t.Fatalf("expected line insert failure")
	}

	list, err := repo.ListInvoices(ctx, core.InvoiceFilter{})
	if err != nil || len(list) != 0 {
		t.Fatalf("no invoice should remain, got %+v %v", list, err)
	}
	var lines int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM invoice_lines`).Scan(&lines); err != nil || lines != 0 {
		t.Fatalf("no line should remain, got %d %v", lines, err)
	}
	if next, _ := repo.NextInvoiceNumber(ctx, 2025); next != "FAC-2025-0001" {
		t.Fatalf("number must not be consumed, next is %s", next)
	}
}

func TestUpdateInvoiceRollsBackOnLineFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Rollback")
	inv := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2025, 4, 1), core.StatusSent, line("a", 1, 10), line("b", 2, 20)))
	rejectLine(t, repo, "boom")

	changed, err := repo.UpdateInvoice(ctx, inv.ID, invoiceInput(clientID, core.NewDate(2025, 5, 1), core.StatusPaid, line("boom", 1, 99)))
	if err == nil || changed {
		t.Fatalf("expected failed update, got changed=%v err=%v", changed, err)
	}

	d, err := repo.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(d.Lines) != 2 || d.Lines[0].Description != "a" || d.Lines[1].Description != "b" {
		t.Fatalf("old lines should survive, got %+v", d.Lines)
	}
	if d.IssueDate.String() != "2025-04-01" || d.Status != core.StatusSent || d.Total != inv.Total {
		t.Fatalf("invoice fields should be unchanged, got %+v", d.Invoice)
	}
}

func TestSetInvoiceStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Status")
	inv := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2025, 6, 1), ""))

	ok, err := repo.SetInvoiceStatus(ctx, inv.ID, core.StatusPaid)
	if err != nil || !ok {
		t.Fatalf("set status: %v %v", ok, err)
	}
	d, _ := repo.GetInvoice(ctx, inv.ID)
	if d.Status != core.StatusPaid {
		t.Fatalf("expected paid, got %s", d.Status)
	}
	ok, err = repo.SetInvoiceStatus(ctx, inv.ID+1, core.StatusPaid)
	if err != nil || ok {
		t.Fatalf("set status unknown: %v %v", ok, err)
	}
}

func TestDeleteInvoiceCascadesLines(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustClient(t, repo, "Cascade")
	inv := mustInvoice(t, repo, invoiceInput(clientID, core.NewDate(2025, 6, 1), "", line("a", 1, 1), line("b", 2, 2)))

	ok, err := repo.DeleteInvoice(ctx, inv.ID)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	lines, err := repo.queries.ListInvoiceLines(ctx, inv.ID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected lines to be cascaded, got %d", len(lines))
	}
	ok, err = repo.DeleteInvoice(ctx, inv.ID)
	if err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}

func TestListInvoicesFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	acme := mustClient(t, repo, "Acme")
	other := mustClient(t, repo, "Other_Co")

	jan := mustInvoice(t, repo, invoiceInput(acme, core.NewDate(2025, 1, 15), core.StatusPaid, line("a", 1, 100)))
	feb := mustInvoice(t, repo, invoiceInput(other, core.NewDate(2025, 2, 15), core.StatusSent, line("a", 1, 200)))
	mar := mustInvoice(t, repo, invoiceInput(acme, core.NewDate(2025, 3, 15), core.StatusDraft, line("a", 1, 300)))
	mar2 := mustInvoice(t, repo, invoiceInput(other, core.NewDate(2025, 3, 15), core.StatusPaid, line("a", 1, 400)))

	ids := func(list []core.InvoiceSummary) []int64 {
		out := make([]int64, len(list))
		for i, s := range list {
			out[i] = s.ID
		}
		return out
	}
	equal := func(a, b []int64) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	cases := []struct {
		name   string
		filter core.InvoiceFilter
		want   []int64
	}{
		{"all newest first", core.InvoiceFilter{}, []int64{mar2.ID, mar.ID, feb.ID, jan.ID}},
		{"by client", core.InvoiceFilter{ClientID: acme}, []int64{mar.ID, jan.ID}},
		{"by status", core.InvoiceFilter{Status: core.StatusPaid}, []int64{mar2.ID, jan.ID}},
		{"search client name", core.InvoiceFilter{Search: "acm"}, []int64{mar.ID, jan.ID}},
		{"search number", core.InvoiceFilter{Search: feb.Number}, []int64{feb.ID}},
		{"underscore is literal", core.InvoiceFilter{Search: "r_c"}, []int64{mar2.ID, feb.ID}},
		{"underscore no wildcard", core.InvoiceFilter{Search: "a_m"}, []int64{}},
		{"date range inclusive", core.InvoiceFilter{DateFrom: core.NewDate(2025, 2, 15), DateTo: core.NewDate(2025, 3, 15)}, []int64{mar2.ID, mar.ID, feb.ID}},
		{"limit", core.InvoiceFilter{Limit: 2}, []int64{mar2.ID, mar.ID}},
		{"limit offset", core.InvoiceFilter{Limit: 2, Offset: 2}, []int64{feb.ID, jan.ID}},
		{"offset only", core.InvoiceFilter{Offset: 3}, []int64{jan.ID}},
	}
	for _, tc := range cases {
		got, err := repo.ListInvoices(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !equal(ids(got), tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, ids(got))
		}
	}

	list, _ := repo.ListInvoices(ctx, core.InvoiceFilter{ClientID: acme, Limit: 1})
	if list[0].ClientName != "Acme" {
		t.Fatalf("expected joined client name, got %+v", list[0])
	}
}

func TestReportQueries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := mustClient(t, repo, "A")
	b := mustClient(t, repo, "B")
	mustClient(t, repo, "Idle")

	mustInvoice(t, repo, invoiceInput(a, core.NewDate(2025, 1, 10), core.StatusPaid, line("x", 1, 100)))
	mustInvoice(t, repo, invoiceInput(a, core.NewDate(2025, 2, 10), core.StatusPaid, line("x", 1, 200)))
	mustInvoice(t, repo, invoiceInput(b, core.NewDate(2025, 2, 20), core.StatusPaid, line("x", 1, 500)))
	mustInvoice(t, repo, invoiceInput(b, core.NewDate(2025, 2, 21), core.StatusSent, line("x", 1, 50)))
	mustInvoice(t, repo, invoiceInput(b, core.NewDate(2025, 3, 1), core.StatusCancelled, line("x", 1, 10)))
	mustInvoice(t, repo, invoiceInput(a, core.NewDate(2025, 3, 2), core.StatusDraft))

	stats, err := repo.PeriodStats(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 2, 28))
	if err != nil {
		t.Fatalf("period stats: %v", err)
	}
	if stats.TotalInvoices != 4 || stats.PaidInvoices != 3 || stats.SentInvoices != 1 || stats.DraftInvoices != 0 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.RevenueTotal != 960 || stats.RevenueSubtotal != 800 || stats.TaxTotal != 160 {
		t.Fatalf("unexpected revenue %+v", stats)
	}

	empty, err := repo.PeriodStats(ctx, core.NewDate(2030, 1, 1), core.NewDate(2030, 12, 31))
	if err != nil || empty != (core.PeriodStats{}) {
		t.Fatalf("expected zero stats for empty period, got %+v %v", empty, err)
	}

	top, err := repo.TopClients(ctx, 5, core.Date{}, core.Date{})
	if err != nil {
		t.Fatalf("top clients: %v", err)
	}
	if len(top) != 2 || top[0].ID != b || top[0].Revenue != 600 || top[1].Revenue != 360 || top[1].InvoiceCount != 2 {
		t.Fatalf("unexpected top clients %+v", top)
	}
	top, _ = repo.TopClients(ctx, 1, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))
	if len(top) != 1 || top[0].ID != a || top[0].Revenue != 120 {
		t.Fatalf("unexpected bounded top clients %+v", top)
	}

	months, err := repo.PaidRevenueByMonth(ctx, core.NewDate(2025, 1, 1), core.Date{})
	if err != nil {
		t.Fatalf("revenue by month: %v", err)
	}
	if len(months) != 2 || months[0].Month != "2025-01" || months[0].Revenue != 120 || months[1].Revenue != 840 || months[1].InvoiceCount != 2 {
		t.Fatalf("unexpected months %+v", months)
	}

	byStatus, err := repo.InvoiceStats(ctx)
	if err != nil {
		t.Fatalf("invoice stats: %v", err)
	}
	counts := map[core.Status]int{}
	for _, s := range byStatus {
		counts[s.Status] = s.Count
	}
	if counts[core.StatusPaid] != 3 || counts[core.StatusSent] != 1 || counts[core.StatusCancelled] != 1 || counts[core.StatusDraft] != 1 {
		t.Fatalf("unexpected status stats %+v", byStatus)
	}

	rev, n, err := repo.PaidRevenueForMonth(ctx, "2025-02")
	if err != nil || rev != 840 || n != 2 {
		t.Fatalf("paid revenue for month: %v %d %v", rev, n, err)
	}
	count, amount, err := repo.PendingInvoices(ctx)
	if err != nil || count != 1 || amount != 60 {
		t.Fatalf("pending: %d %v %v", count, amount, err)
	}
	active, err := repo.ActiveClients(ctx)
	if err != nil || active != 2 {
		t.Fatalf("active clients: %d %v", active, err)
	}

	rows, err := repo.ExportRows(ctx, core.NewDate(2025, 2, 1), core.NewDate(2025, 3, 31))
	if err != nil {
		t.Fatalf("export rows: %v", err)
	}
	if len(rows) != 5 || rows[0].IssueDate.String() != "2025-03-02" || rows[len(rows)-1].ClientName != "A" {
		t.Fatalf("unexpected export rows %+v", rows)
	}
}
