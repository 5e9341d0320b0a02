package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidSIRET(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"73282932000074", true},
		{"55208131766522", true},
		{"44306184100047", true},
		{"12345678901234", false},
		{"7328293200007", false},
		{"7328293200007A", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidSIRET(tc.in); got != tc.ok {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.ok, got)
		}
	}
}

func TestNormalizeSIRET(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"73282932000074", "73282932000074"},
		{" 732 829 320 00074 ", "73282932000074"},
		{"732.829.320.00074", "73282932000074"},
		{"732-829-320-00074", "73282932000074"},
		{"732\t829/320_00074", "73282932000074"},
		{"732 829 320 0007A", "7328293200007A"},
	}
	for _, tc := range cases {
		if got := NormalizeSIRET(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestClientInputValidate(t *testing.T) {
	good := []ClientInput{
		{Name: "ACME"},
		{Name: " ACME ", Email: "contact@acme.fr", SIRET: "732 829 320 00074"},
		{Name: "ACME", SIRET: "732.829.320.00074"},
		{Name: "ACME", SIRET: "732-829-320-00074"},
		{Name: "ACME", SIRET: "732\u00a0829\u00a0320\u00a000074"},
	}
	for i, in := range good {
		if err := in.Validate(); err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
	}

	bads := []struct {
		in    ClientInput
		field string
	}{
		{ClientInput{Name: "  "}, "name"},
		{ClientInput{Name: "ACME", Email: "not-an-email"}, "email"},
		{ClientInput{Name: "ACME", SIRET: "12345678901234"}, "siret"},
		{ClientInput{Name: "ACME", SIRET: "732.829.320.0007A"}, "siret"},
	}
	for i, tc := range bads {
		err := tc.in.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("case %d expected validation error on %s, got %v", i, tc.field, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected to match ErrValidation", i)
		}
	}
}

func TestInvoiceInputValidate(t *testing.T) {
	neg := -1.0
	base := InvoiceInput{ClientID: 1, IssueDate: NewDate(2025, 2, 1), Lines: []LineInput{{Description: "x", Quantity: 1}}}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []InvoiceInput{
		{IssueDate: NewDate(2025, 2, 1)},
		{ClientID: 1},
		{ClientID: 1, IssueDate: NewDate(2025, 2, 1), DueDate: NewDate(2025, 1, 1)},
		{ClientID: 1, IssueDate: NewDate(2025, 2, 1), Status: "archived"},
		{ClientID: 1, IssueDate: NewDate(2025, 2, 1), TaxRate: &neg},
		{ClientID: 1, IssueDate: NewDate(2025, 2, 1), Lines: []LineInput{{Description: " "}}},
	}
	for i, in := range bads {
		if err := in.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestInvoiceInputValidateCreate(t *testing.T) {
	in := InvoiceInput{ClientID: 1, IssueDate: NewDate(2025, 2, 1)}
	if err := in.ValidateCreate(); err != nil {
		t.Fatalf("empty number should be allocated later, got %v", err)
	}
	in.Number = "FAC-2025-0012"
	if err := in.ValidateCreate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	for _, number := range []string{"whatever", "FAC-2025-ABCD", "FAC-2025-5", "FAC-2024-0012"} {
		in.Number = number
		var ve *ValidationError
		if err := in.ValidateCreate(); !errors.As(err, &ve) || ve.Field != "number" {
			t.Fatalf("%q: expected validation error on number, got %v", number, err)
		}
	}

	// Updates keep the stored number, so Validate ignores it.
	in.Number = "whatever"
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate must not check the number, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus(" Paid "); err != nil || s != StatusPaid {
		t.Fatalf("expected paid, got %q (%v)", s, err)
	}
	if _, err := ParseStatus("payée"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		Issue Date `json:"issue"`
		Due   Date `json:"due"`
	}
	if err := json.Unmarshal([]byte(`{"issue":"2025-04-30","due":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.Issue.Equal(NewDate(2025, 4, 30).Time) || !v.Due.IsZero() {
		t.Fatalf("unexpected dates %+v", v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"issue":"2025-04-30","due":null}` {
		t.Fatalf("unexpected json %s", b)
	}
	if err := json.Unmarshal([]byte(`{"issue":"30/04/2025"}`), &v); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}
