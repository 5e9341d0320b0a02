// Package core holds the invoicing domain: entities, validation, numbering and totals.
//
// Amounts are float64 at full precision. This file converts them to fixed
// two-decimal strings for presentation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount converts a float amount to a decimal rounded to cents.
func Amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatAmount renders v with a dot separator and two decimals, e.g. "1234.50".
func FormatAmount(v float64) string {
	return Amount(v).StringFixed(2)
}

// FormatEuros renders v the French way: "1 234,50 €".
func FormatEuros(v float64) string {
	s := FormatAmount(v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac + " €"
	if neg {
		return "-" + out
	}
	return out
}

// FormatRate renders a tax percentage without trailing zeros, e.g. "20" or "5.5".
func FormatRate(v float64) string {
	return decimal.NewFromFloat(v).String()
}
