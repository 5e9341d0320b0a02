package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name  string
		lines []LineInput
		rate  float64
		want  Totals
	}{
		{"empty", nil, 20, Totals{}},
		{"single line", []LineInput{{Description: "a", Quantity: 2, UnitPrice: 50}}, 20, Totals{100, 20, 120}},
		{"several lines", []LineInput{
			{Description: "a", Quantity: 1, UnitPrice: 100},
			{Description: "b", Quantity: 3, UnitPrice: 10.5},
		}, 10, Totals{131.5, 13.15, 144.65}},
		{"zero rate", []LineInput{{Description: "a", Quantity: 1, UnitPrice: 99}}, 0, Totals{99, 0, 99}},
		{"reduced rate", []LineInput{{Description: "a", Quantity: 1, UnitPrice: 200}}, 5.5, Totals{200, 11, 211}},
	}
	for _, tc := range cases {
		got := ComputeTotals(tc.lines, tc.rate)
		if !almostEqual(got.Subtotal, tc.want.Subtotal) || !almostEqual(got.TaxAmount, tc.want.TaxAmount) || !almostEqual(got.Total, tc.want.Total) {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	in := InvoiceInput{
		ClientID:  1,
		IssueDate: NewDate(2025, 3, 1),
		Lines:     []LineInput{{Description: "Consulting", Quantity: 2, UnitPrice: 50}},
	}
	inv, lines := in.Apply()
	if inv.Status != StatusDraft {
		t.Fatalf("expected draft status, got %q", inv.Status)
	}
	if inv.TaxRate != DefaultTaxRate {
		t.Fatalf("expected default rate, got %v", inv.TaxRate)
	}
	if inv.Subtotal != 100 || inv.TaxAmount != 20 || inv.Total != 120 {
		t.Fatalf("unexpected totals %+v", inv)
	}
	if len(lines) != 1 || lines[0].Total != 100 {
		t.Fatalf("unexpected lines %+v", lines)
	}
}

func TestApplyExplicitZeroRate(t *testing.T) {
	zero := 0.0
	in := InvoiceInput{
		ClientID:  1,
		IssueDate: NewDate(2025, 3, 1),
		TaxRate:   &zero,
		Status:    StatusSent,
		Lines:     []LineInput{{Description: "x", Quantity: 1, UnitPrice: 80}},
	}
	inv, _ := in.Apply()
	if inv.TaxRate != 0 || inv.TaxAmount != 0 || inv.Total != 80 {
		t.Fatalf("unexpected totals %+v", inv)
	}
	if inv.Status != StatusSent {
		t.Fatalf("status not kept: %q", inv.Status)
	}
}

func TestApplyEmptyLines(t *testing.T) {
	inv, lines := InvoiceInput{ClientID: 1, IssueDate: NewDate(2025, 1, 1)}.Apply()
	if inv.Subtotal != 0 || inv.TaxAmount != 0 || inv.Total != 0 {
		t.Fatalf("expected zero totals, got %+v", inv)
	}
	if lines == nil || len(lines) != 0 {
		t.Fatalf("expected empty non-nil lines, got %#v", lines)
	}
}
