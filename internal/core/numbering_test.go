package core

import (
	"errors"
	"testing"
)

func TestNextInvoiceNumber(t *testing.T) {
	cases := []struct {
		year int
		last string
		want string
	}{
		{2025, "", "FAC-2025-0001"},
		{2025, "FAC-2025-0001", "FAC-2025-0002"},
		{2025, "FAC-2025-0041", "FAC-2025-0042"},
		{2026, "", "FAC-2026-0001"},
		{2025, "FAC-2025-9998", "FAC-2025-9999"},
	}
	for _, tc := range cases {
		got, err := NextInvoiceNumber(tc.year, tc.last)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.last, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.last, tc.want, got)
		}
	}
}

func TestNextInvoiceNumberExhausted(t *testing.T) {
	_, err := NextInvoiceNumber(2025, "FAC-2025-9999")
	if !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("expected ErrSequenceExhausted, got %v", err)
	}
}

func TestNextInvoiceNumberMalformed(t *testing.T) {
	for _, last := range []string{"FAC-2025-ABCD", "FAC-2024-0001", "FAC-2025-"} {
		if _, err := NextInvoiceNumber(2025, last); !errors.Is(err, ErrMalformedInvoiceNumber) {
			t.Fatalf("%q: expected ErrMalformedInvoiceNumber, got %v", last, err)
		}
	}
}

func TestParseInvoiceNumber(t *testing.T) {
	year, seq, err := ParseInvoiceNumber("FAC-2026-0042")
	if err != nil || year != 2026 || seq != 42 {
		t.Fatalf("expected 2026/42, got %d/%d %v", year, seq, err)
	}
	for _, bad := range []string{"whatever", "FAC-2026-ABCD", "FAC-2026-5", "FAC-2026-00010", "FAC-26-0001", "FAC-2026-0000", "fac-2026-0001"} {
		if _, _, err := ParseInvoiceNumber(bad); !errors.Is(err, ErrMalformedInvoiceNumber) {
			t.Fatalf("%q: expected ErrMalformedInvoiceNumber, got %v", bad, err)
		}
	}
}

func TestCheckInvoiceNumber(t *testing.T) {
	issue := NewDate(2026, 3, 1)
	if err := CheckInvoiceNumber("FAC-2026-0007", issue); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, bad := range []string{"FAC-2026-ABCD", "FAC-2025-0007", "FAC-2026-7"} {
		err := CheckInvoiceNumber(bad, issue)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "number" {
			t.Fatalf("%q: expected validation error on number, got %v", bad, err)
		}
	}
}
